package compress

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color/palette"
	stddraw "image/draw"
	"image/gif"
	"time"

	"github.com/HugoSmits86/nativewebp"
	xdraw "golang.org/x/image/draw"
)

// compressAnimated handles multi-frame GIF input: decode all frames,
// coalesce partial frames onto a shared canvas, enforce the frame budget,
// resize, and re-encode as animated WebP or a 256-color GIF.
func (e *LocalEngine) compressAnimated(ctx context.Context, data []byte, filename string, opts Options, start time.Time) Result {
	decoded, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		return failure(start, fmt.Sprintf("decode animation: %v", err))
	}
	if len(decoded.Image) == 0 {
		return failure(start, "animation has no frames")
	}

	frames, delays := coalesceFrames(decoded)

	if opts.MaxFrames > 0 && len(frames) > opts.MaxFrames {
		frames, delays = sampleFrames(frames, delays, opts.MaxFrames)
	}
	if opts.FrameRate > 0 {
		// Uniform timing: delays are centiseconds, GIF's native unit.
		uniform := 100 / opts.FrameRate
		if uniform < 1 {
			uniform = 1
		}
		for i := range delays {
			delays[i] = uniform
		}
	}

	if opts.Width > 0 || opts.Height > 0 {
		frames = resizeFrames(frames, opts)
	}
	if err := ctx.Err(); err != nil {
		return failure(start, err.Error())
	}

	format := opts.Format
	if format == FormatAuto {
		format = FormatWebP
	}

	var encoded []byte
	switch format {
	case FormatWebP:
		encoded, err = encodeAnimatedWebP(frames, delays, decoded.LoopCount)
	case FormatGIF:
		encoded, err = encodeAnimatedGIF(frames, delays, decoded.LoopCount)
	default:
		err = fmt.Errorf("animated output supports webp or gif, got %q", format)
	}
	if err != nil {
		return failure(start, err.Error())
	}

	key, err := e.store.Write(ctx, outputName(filename, format, "compressed"), encoded)
	if err != nil {
		return failure(start, err.Error())
	}

	bounds := frames[0].Bounds()
	return Result{
		Success:          true,
		OriginalSize:     int64(len(data)),
		CompressedSize:   int64(len(encoded)),
		CompressionRatio: CompressionRatio(int64(len(data)), int64(len(encoded))),
		OutputURL:        e.store.PublicURL(key),
		Format:           format,
		Width:            bounds.Dx(),
		Height:           bounds.Dy(),
		ProcessingTime:   time.Since(start),
	}
}

// coalesceFrames composites each (possibly partial) GIF frame over the
// running canvas so every output frame is complete. Delays stay in
// centiseconds.
func coalesceFrames(g *gif.GIF) ([]*image.NRGBA, []int) {
	width, height := g.Config.Width, g.Config.Height
	if width == 0 || height == 0 {
		b := g.Image[0].Bounds()
		width, height = b.Max.X, b.Max.Y
	}
	canvas := image.NewNRGBA(image.Rect(0, 0, width, height))

	frames := make([]*image.NRGBA, 0, len(g.Image))
	delays := make([]int, 0, len(g.Image))
	for i, frame := range g.Image {
		stddraw.Draw(canvas, frame.Bounds(), frame, frame.Bounds().Min, stddraw.Over)

		snapshot := image.NewNRGBA(canvas.Bounds())
		copy(snapshot.Pix, canvas.Pix)
		frames = append(frames, snapshot)

		delay := 10
		if i < len(g.Delay) && g.Delay[i] > 0 {
			delay = g.Delay[i]
		}
		delays = append(delays, delay)
	}
	return frames, delays
}

// sampleFrames reduces the sequence to at most limit frames by stride
// sampling, keeping total duration by summing dropped delays into the kept
// neighbors' slots proportionally (stride delay accumulation).
func sampleFrames(frames []*image.NRGBA, delays []int, limit int) ([]*image.NRGBA, []int) {
	if limit <= 0 || len(frames) <= limit {
		return frames, delays
	}
	sampled := make([]*image.NRGBA, 0, limit)
	sampledDelays := make([]int, 0, limit)
	step := float64(len(frames)) / float64(limit)
	next := 0.0
	var carry int
	for i := range frames {
		carry += delays[i]
		if float64(i) >= next && len(sampled) < limit {
			sampled = append(sampled, frames[i])
			sampledDelays = append(sampledDelays, carry)
			carry = 0
			next += step
		}
	}
	if carry > 0 && len(sampledDelays) > 0 {
		sampledDelays[len(sampledDelays)-1] += carry
	}
	return sampled, sampledDelays
}

// resizeFrames scales every frame to the requested geometry: fit-inside when
// aspect ratio is preserved, exact stretch when it is not.
func resizeFrames(frames []*image.NRGBA, opts Options) []*image.NRGBA {
	src := frames[0].Bounds()
	targetW, targetH := opts.Width, opts.Height
	if targetW <= 0 {
		targetW = src.Dx()
	}
	if targetH <= 0 {
		targetH = src.Dy()
	}
	if opts.PreserveAspect() {
		targetW, targetH = fitInside(src.Dx(), src.Dy(), targetW, targetH)
	}
	if targetW == src.Dx() && targetH == src.Dy() {
		return frames
	}

	out := make([]*image.NRGBA, len(frames))
	for i, frame := range frames {
		dst := image.NewNRGBA(image.Rect(0, 0, targetW, targetH))
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), frame, frame.Bounds(), xdraw.Over, nil)
		out[i] = dst
	}
	return out
}

func encodeAnimatedWebP(frames []*image.NRGBA, delays []int, loopCount int) ([]byte, error) {
	images := make([]image.Image, len(frames))
	durations := make([]uint, len(frames))
	for i, frame := range frames {
		images[i] = frame
		durations[i] = uint(delays[i]) * 10 // centiseconds to milliseconds
	}
	if loopCount < 0 {
		loopCount = 1
	}
	animation := nativewebp.Animation{
		Images:    images,
		Durations: durations,
		Disposals: make([]uint, len(frames)),
		LoopCount: uint16(loopCount),
	}

	var buf bytes.Buffer
	if err := nativewebp.EncodeAll(&buf, &animation, nil); err != nil {
		return nil, fmt.Errorf("encode animated webp: %w", err)
	}
	return buf.Bytes(), nil
}

func encodeAnimatedGIF(frames []*image.NRGBA, delays []int, loopCount int) ([]byte, error) {
	out := &gif.GIF{LoopCount: loopCount}
	for i, frame := range frames {
		paletted := image.NewPaletted(frame.Bounds(), palette.Plan9)
		stddraw.FloydSteinberg.Draw(paletted, frame.Bounds(), frame, frame.Bounds().Min)
		out.Image = append(out.Image, paletted)
		out.Delay = append(out.Delay, delays[i])
	}

	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, out); err != nil {
		return nil, fmt.Errorf("encode animated gif: %w", err)
	}
	return buf.Bytes(), nil
}
