package compress

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// applyCircleMask multiplies the alpha channel of a square image by an
// anti-aliased circular mask inscribed in its bounds, leaving transparent
// corners. The edge is feathered over one pixel to avoid jagged rims on the
// small round pump-head screens this exists for.
func applyCircleMask(img image.Image) *image.NRGBA {
	src := imaging.Clone(img)
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	cx := float64(w)/2 - 0.5
	cy := float64(h)/2 - 0.5
	radius := math.Min(float64(w), float64(h)) / 2

	for y := 0; y < h; y++ {
		dy := float64(y) - cy
		for x := 0; x < w; x++ {
			dx := float64(x) - cx
			dist := math.Sqrt(dx*dx + dy*dy)

			var coverage float64
			switch {
			case dist <= radius-0.5:
				coverage = 1
			case dist >= radius+0.5:
				coverage = 0
			default:
				coverage = radius + 0.5 - dist
			}

			off := y*src.Stride + x*4
			src.Pix[off+3] = uint8(float64(src.Pix[off+3])*coverage + 0.5)
		}
	}
	return src
}
