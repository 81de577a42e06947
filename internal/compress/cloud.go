package compress

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"coolpress/internal/providers/cloudinary"
	"coolpress/internal/storage"
)

// CloudEngine offloads the transform to the remote asset service, trading
// local CPU for network latency and the service's own optimization
// heuristics. A failed download degrades to a same-origin proxy URL rather
// than failing the whole operation: the UI must stay usable when the remote
// service is flaky.
type CloudEngine struct {
	client    *cloudinary.Client
	store     *storage.FileStore
	proxyPath string
	logger    zerolog.Logger
	stats     statsRecorder
}

// NewCloudEngine wires the AI-tier engine. proxyPath is the same-origin
// endpoint degraded results are routed through (e.g. "/api/proxy").
func NewCloudEngine(client *cloudinary.Client, store *storage.FileStore, proxyPath string, logger zerolog.Logger) *CloudEngine {
	if proxyPath == "" {
		proxyPath = "/api/proxy"
	}
	return &CloudEngine{client: client, store: store, proxyPath: proxyPath, logger: logger}
}

var _ Engine = (*CloudEngine)(nil)

// CompressImage uploads the input, requests a transformation by URL, pulls
// the processed asset back to local storage and reports the outcome.
func (e *CloudEngine) CompressImage(ctx context.Context, input Input, filename string, opts Options) Result {
	start := time.Now()
	if !e.client.HasCredentials() {
		return failure(start, "cloud engine is not configured: missing remote service credentials")
	}
	if err := ValidateOptions(opts); err != nil {
		return failure(start, err.Error())
	}
	if len(input.Data) > 0 {
		if v := ValidateImage(input.Data); !v.Valid {
			return failure(start, v.Reason)
		}
	} else if input.URL == "" {
		return failure(start, "empty file")
	}

	publicID := fmt.Sprintf("%d_%s", time.Now().UnixMilli(), sanitizeBaseName(filename))
	uploaded, err := e.client.Upload(ctx, input.Data, input.URL, publicID)
	if err != nil {
		return failure(start, err.Error())
	}
	originalSize := int64(len(input.Data))
	if originalSize == 0 {
		originalSize = uploaded.Bytes
	}

	format := ResolveEffectiveFormat(opts, NormalizeFormat(uploaded.Format))
	if opts.Format == FormatAuto {
		// The URL-building path always pins an explicit format; "auto" is
		// reserved for descriptor-only call sites and must not leak into the
		// fetch URL.
		format = FormatJPEG
		if opts.CropToCircle {
			format = FormatPNG
		}
	}
	transformURL := e.client.TransformURL(uploaded.PublicID, e.transformation(opts, format))

	data, err := e.client.Download(ctx, transformURL)
	if err != nil {
		// Degrade gracefully: hand back a proxy route to the uploaded asset
		// so the caller can still display something.
		e.logger.Warn().
			Err(err).
			Str("public_id", uploaded.PublicID).
			Msg("transformed asset fetch failed, falling back to proxy")
		result := Result{
			Success:        true,
			Degraded:       true,
			DegradedReason: err.Error(),
			OriginalSize:   originalSize,
			OutputURL:      e.proxyPath + "?url=" + url.QueryEscape(uploaded.SecureURL),
			ProcessingTime: time.Since(start),
		}
		return result
	}

	key, err := e.store.Write(ctx, outputName(filename, format, "ai"), data)
	if err != nil {
		return failure(start, err.Error())
	}
	width, height, err := decodeDimensions(data)
	if err != nil {
		e.logger.Warn().Err(err).Msg("could not decode processed asset dimensions")
	}

	result := Result{
		Success:          true,
		OriginalSize:     originalSize,
		CompressedSize:   int64(len(data)),
		CompressionRatio: CompressionRatio(originalSize, int64(len(data))),
		OutputURL:        e.store.PublicURL(key),
		Format:           format,
		Width:            width,
		Height:           height,
		ProcessingTime:   time.Since(start),
	}
	e.stats.record(result)
	return result
}

// transformation maps the option model onto the remote descriptor, deciding
// fit the same way the local engine does.
func (e *CloudEngine) transformation(opts Options, format Format) cloudinary.Transformation {
	t := cloudinary.Transformation{
		Quality: opts.Quality,
		Format:  string(format),
	}
	if t.Quality == 0 {
		t.Quality = 80
	}
	if opts.CropToCircle {
		size := minPositive(opts.Width, opts.Height)
		t.Width, t.Height = size, size
		t.Crop = "fill"
		t.Radius = "max"
		return t
	}
	t.Width, t.Height = opts.Width, opts.Height
	if opts.PreserveAspect() {
		t.Crop = "fill"
	} else {
		t.Crop = "scale"
	}
	return t
}

// CompressBatch processes items sequentially, preserving input order.
func (e *CloudEngine) CompressBatch(ctx context.Context, items []BatchItem) []Result {
	results := make([]Result, 0, len(items))
	for _, item := range items {
		results = append(results, e.CompressImage(ctx, item.Input, item.Filename, item.Options))
	}
	return results
}

// SupportsFormat reports whether the remote service can deliver the format.
func (e *CloudEngine) SupportsFormat(format Format) bool {
	switch format {
	case FormatPNG, FormatJPEG, FormatWebP, FormatAVIF, FormatGIF:
		return true
	}
	return false
}

// RecommendedOptions is more aggressive than the local heuristic: the remote
// service is trusted to pick format and quality, super-high-resolution
// inputs are capped at 2560x1440, and GIFs convert to animated WebP with a
// higher frame ceiling.
func (e *CloudEngine) RecommendedOptions(source Format, sizeBytes int64, width, height int) Options {
	opts := Options{
		Format:         FormatWebP,
		AIOptimization: true,
		AutoFormat:     true,
		AutoQuality:    true,
		SmartCrop:      true,
	}
	if width > 2560 || height > 1440 {
		opts.Width, opts.Height = fitInside(width, height, 2560, 1440)
	}
	if sizeBytes > 2<<20 {
		opts.Quality = 75
	}
	if source == FormatGIF {
		opts.OptimizeAnimation = true
		opts.MaxFrames = 100
	}
	return opts
}

// Usage exposes the remote account usage report.
func (e *CloudEngine) Usage(ctx context.Context) (*cloudinary.UsageReport, error) {
	return e.client.Usage(ctx)
}

// Stats returns a snapshot of the running aggregates.
func (e *CloudEngine) Stats() Stats { return e.stats.snapshot() }

// ResetStats clears the running aggregates.
func (e *CloudEngine) ResetStats() { e.stats.reset() }
