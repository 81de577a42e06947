package compress

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"

	"github.com/chai2010/webp"
	"github.com/gen2brain/avif"
)

// Default encoder qualities per format, applied when the caller leaves
// Quality unset.
const (
	defaultJPEGQuality = 85
	defaultWebPQuality = 80
	defaultAVIFQuality = 75
)

// avifSpeed trades encode time for density; lower is slower and smaller.
const avifSpeed = 4

// decodeImage decodes raw bytes into an image, trying the registered stdlib
// codecs first and then the formats the stdlib cannot handle.
func decodeImage(data []byte) (image.Image, Format, error) {
	img, name, err := image.Decode(bytes.NewReader(data))
	if err == nil {
		return img, NormalizeFormat(name), nil
	}

	if img, werr := webp.Decode(bytes.NewReader(data)); werr == nil {
		return img, FormatWebP, nil
	}
	if img, aerr := avif.Decode(bytes.NewReader(data)); aerr == nil {
		return img, FormatAVIF, nil
	}
	return nil, FormatAuto, fmt.Errorf("decode image: %w", err)
}

// decodeDimensions reads only the header of encoded bytes. Falls back to a
// full decode for formats whose config decoders are not registered.
func decodeDimensions(data []byte) (int, int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err == nil {
		return cfg.Width, cfg.Height, nil
	}
	img, _, derr := decodeImage(data)
	if derr != nil {
		return 0, 0, derr
	}
	b := img.Bounds()
	return b.Dx(), b.Dy(), nil
}

// encodeStatic serializes a single frame with the per-format tunables.
// Progressive/interlaced output is accepted as a hint only: the stdlib JPEG
// and PNG encoders expose no scan-ordering control.
func encodeStatic(img image.Image, format Format, opts Options) ([]byte, error) {
	quality := opts.Quality
	var buf bytes.Buffer

	switch format {
	case FormatJPEG:
		if quality == 0 {
			quality = defaultJPEGQuality
		}
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("encode jpeg: %w", err)
		}
	case FormatWebP:
		if quality == 0 {
			quality = defaultWebPQuality
		}
		if err := webp.Encode(&buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
			return nil, fmt.Errorf("encode webp: %w", err)
		}
	case FormatAVIF:
		if quality == 0 {
			quality = defaultAVIFQuality
		}
		if err := avif.Encode(&buf, img, avif.Options{Quality: quality, Speed: avifSpeed}); err != nil {
			return nil, fmt.Errorf("encode avif: %w", err)
		}
	case FormatPNG:
		encoder := png.Encoder{CompressionLevel: png.DefaultCompression}
		if err := encoder.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encode png: %w", err)
		}
	case FormatGIF:
		if err := gif.Encode(&buf, img, &gif.Options{NumColors: 256}); err != nil {
			return nil, fmt.Errorf("encode gif: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
	return buf.Bytes(), nil
}
