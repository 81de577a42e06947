package compress

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"

	"coolpress/internal/storage"
)

// Water-cooling enhancement tunables. The chain order matters: sharpening
// runs before the color adjustments so the boosts do not amplify halo
// artifacts around sharpened edges.
const (
	sharpenSigma       = 0.8
	brightnessBoostPct = 10 // x1.10
	saturationBoostPct = 15 // x1.15
	gammaCorrection    = 1.05
	contrastBoostPct   = 8
)

// LocalEngine performs deterministic, fully in-process compression.
type LocalEngine struct {
	store  *storage.FileStore
	logger zerolog.Logger
	stats  statsRecorder
}

// NewLocalEngine wires the free-tier engine against the output store.
func NewLocalEngine(store *storage.FileStore, logger zerolog.Logger) *LocalEngine {
	return &LocalEngine{store: store, logger: logger}
}

var _ Engine = (*LocalEngine)(nil)

// CompressImage validates, transforms and encodes a single image. Every
// failure is translated into a Result; nothing escapes the engine boundary.
func (e *LocalEngine) CompressImage(ctx context.Context, input Input, filename string, opts Options) Result {
	start := time.Now()
	if len(input.Data) == 0 && input.URL != "" {
		return failure(start, "local engine requires image bytes, not a source url")
	}
	validation := ValidateImage(input.Data)
	if !validation.Valid {
		return failure(start, validation.Reason)
	}
	if err := ValidateOptions(opts); err != nil {
		return failure(start, err.Error())
	}
	if err := ctx.Err(); err != nil {
		return failure(start, err.Error())
	}

	var result Result
	if validation.Format == FormatGIF && opts.OptimizeAnimation {
		result = e.compressAnimated(ctx, input.Data, filename, opts, start)
	} else {
		result = e.compressStatic(ctx, input.Data, validation.Format, filename, opts, start)
	}
	e.stats.record(result)
	return result
}

func (e *LocalEngine) compressStatic(ctx context.Context, data []byte, source Format, filename string, opts Options, start time.Time) Result {
	img, _, err := decodeImage(data)
	if err != nil {
		return failure(start, err.Error())
	}

	frame := applyGeometry(img, opts)
	if opts.RemoveMetadata && !opts.CropToCircle {
		// Circular crop takes precedence: its alpha channel is the point.
		frame = flattenAlpha(frame)
	}
	if opts.WaterCoolingOptimization {
		frame = applyWaterCoolingEnhancement(frame)
	}

	format := ResolveEffectiveFormat(opts, source)
	if opts.CropToCircle && opts.Format == FormatJPEG {
		e.logger.Warn().
			Str("filename", filename).
			Msg("circular crop requires alpha, substituting png for jpg")
	}

	encoded, err := encodeStatic(frame, format, opts)
	if err != nil {
		return failure(start, err.Error())
	}

	key, err := e.store.Write(ctx, outputName(filename, format, "compressed"), encoded)
	if err != nil {
		return failure(start, err.Error())
	}

	bounds := frame.Bounds()
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

// CompressBatch processes items sequentially, preserving input order. One
// failed item never aborts the rest.
func (e *LocalEngine) CompressBatch(ctx context.Context, items []BatchItem) []Result {
	results := make([]Result, 0, len(items))
	for _, item := range items {
		results = append(results, e.CompressImage(ctx, item.Input, item.Filename, item.Options))
	}
	return results
}

// SupportsFormat reports whether the engine can encode to the given format.
func (e *LocalEngine) SupportsFormat(format Format) bool {
	switch format {
	case FormatPNG, FormatJPEG, FormatWebP, FormatAVIF, FormatGIF:
		return true
	}
	return false
}

// RecommendedOptions suggests defaults for the described input, biased
// towards WebP and gentler than the cloud engine's heuristic.
func (e *LocalEngine) RecommendedOptions(source Format, sizeBytes int64, width, height int) Options {
	opts := DefaultOptions()
	switch {
	case sizeBytes > 5<<20:
		opts.Quality = 70
	case sizeBytes > 2<<20:
		opts.Quality = 75
	}
	if source == FormatGIF {
		opts.Format = FormatWebP
		opts.OptimizeAnimation = true
		opts.MaxFrames = 50
		opts.FrameRate = 15
	}
	if width > 3840 || height > 2160 {
		opts.Width, opts.Height = fitInside(width, height, 3840, 2160)
	}
	return opts
}

// Stats returns a snapshot of the running aggregates.
func (e *LocalEngine) Stats() Stats { return e.stats.snapshot() }

// ResetStats clears the running aggregates.
func (e *LocalEngine) ResetStats() { e.stats.reset() }

// applyGeometry resizes and crops according to the option model. With a
// circular crop the target square is the smaller requested dimension; with
// aspect preservation disabled the image is stretched; otherwise it is
// cover-cropped from the center.
func applyGeometry(img image.Image, opts Options) *image.NRGBA {
	width, height := opts.Width, opts.Height

	if opts.CropToCircle {
		size := minPositive(width, height)
		if size == 0 {
			b := img.Bounds()
			size = minPositive(b.Dx(), b.Dy())
		}
		square := imaging.Fill(img, size, size, imaging.Center, imaging.Lanczos)
		return applyCircleMask(square)
	}

	if width <= 0 && height <= 0 {
		return imaging.Clone(img)
	}
	if width > 0 && height > 0 {
		if !opts.PreserveAspect() {
			return imaging.Resize(img, width, height, imaging.Lanczos)
		}
		return imaging.Fill(img, width, height, imaging.Center, imaging.Lanczos)
	}
	// Single dimension: proportional resize.
	return imaging.Resize(img, max(width, 0), max(height, 0), imaging.Lanczos)
}

// flattenAlpha composites the image over white, discarding the alpha channel
// along with any auxiliary data the decoder carried through.
func flattenAlpha(img *image.NRGBA) *image.NRGBA {
	b := img.Bounds()
	background := imaging.New(b.Dx(), b.Dy(), color.White)
	return imaging.Overlay(background, img, image.Pt(0, 0), 1.0)
}

// applyWaterCoolingEnhancement runs the fixed cosmetic chain tuned for small
// round/square cooling-loop screens.
func applyWaterCoolingEnhancement(img *image.NRGBA) *image.NRGBA {
	out := imaging.Sharpen(img, sharpenSigma)
	out = imaging.AdjustBrightness(out, brightnessBoostPct)
	out = imaging.AdjustSaturation(out, saturationBoostPct)
	out = imaging.AdjustGamma(out, gammaCorrection)
	out = imaging.AdjustContrast(out, contrastBoostPct)
	return out
}

// outputName builds the collision-resistant flat filename for an artifact:
// {timestamp}_{basename}_{suffix}.{ext}.
func outputName(filename string, format Format, suffix string) string {
	return fmt.Sprintf("%d_%s_%s.%s", time.Now().UnixMilli(), sanitizeBaseName(filename), suffix, format.Ext())
}

// sanitizeBaseName strips the extension and any character that has no
// business in a filename or URL path segment.
func sanitizeBaseName(filename string) string {
	base := filename
	if idx := strings.LastIndexByte(base, '/'); idx >= 0 {
		base = base[idx+1:]
	}
	if idx := strings.LastIndexByte(base, '.'); idx > 0 {
		base = base[:idx]
	}
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "image"
	}
	return b.String()
}

// fitInside shrinks (never grows) w x h to fit within maxW x maxH while
// preserving aspect ratio.
func fitInside(w, h, maxW, maxH int) (int, int) {
	if w <= 0 || h <= 0 || (w <= maxW && h <= maxH) {
		return w, h
	}
	scaleW := float64(maxW) / float64(w)
	scaleH := float64(maxH) / float64(h)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}
	return int(float64(w)*scale + 0.5), int(float64(h)*scale + 0.5)
}

func minPositive(a, b int) int {
	switch {
	case a > 0 && b > 0:
		if a < b {
			return a
		}
		return b
	case a > 0:
		return a
	case b > 0:
		return b
	default:
		return 0
	}
}
