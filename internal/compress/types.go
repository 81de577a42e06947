// Package compress implements the dual-strategy image compression pipeline:
// a fully local raster engine and a cloud engine that offloads the transform
// to a remote asset service. Both engines satisfy the same Engine contract
// and are selected per request through the Factory.
package compress

import (
	"context"
	"strings"
	"time"
)

// Format identifies an image encoding.
type Format string

const (
	// FormatAuto keeps the source format (or lets the cloud service pick).
	FormatAuto Format = ""
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpg"
	FormatWebP Format = "webp"
	FormatAVIF Format = "avif"
	FormatGIF  Format = "gif"
)

// NormalizeFormat sanitizes free-form user input into a known Format.
func NormalizeFormat(raw string) Format {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "png":
		return FormatPNG
	case "jpg", "jpeg":
		return FormatJPEG
	case "webp":
		return FormatWebP
	case "avif":
		return FormatAVIF
	case "gif":
		return FormatGIF
	default:
		return FormatAuto
	}
}

// SupportsAlpha reports whether the format can carry an alpha channel.
func (f Format) SupportsAlpha() bool {
	return f != FormatJPEG
}

// Ext returns the file extension for the format, without a dot.
func (f Format) Ext() string {
	if f == FormatAuto {
		return "webp"
	}
	return string(f)
}

// Version selects which engine handles a request.
type Version string

const (
	// VersionFree is the local, in-process engine.
	VersionFree Version = "free"
	// VersionAI is the cloud engine backed by the remote asset service.
	VersionAI Version = "ai"
)

// NormalizeVersion maps a caller-supplied tag onto a known Version. Anything
// that is not recognizably "ai" falls back to the free engine.
func NormalizeVersion(raw string) Version {
	if strings.EqualFold(strings.TrimSpace(raw), string(VersionAI)) {
		return VersionAI
	}
	return VersionFree
}

// Options configures a single compression call. Zero values mean "unset":
// unset fields fall back to preset or engine defaults. PreserveAspectRatio is
// a pointer because its default is true.
type Options struct {
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
	Quality int    `json:"quality,omitempty"` // 1-100; 0 = encoder default
	Format  Format `json:"format,omitempty"`  // FormatAuto = keep source format

	// PreserveAspectRatio nil or true crops-to-cover; false stretches to the
	// exact target dimensions.
	PreserveAspectRatio *bool `json:"preserveAspectRatio,omitempty"`

	RemoveMetadata bool `json:"removeMetadata,omitempty"`
	Progressive    bool `json:"progressive,omitempty"`

	OptimizeAnimation bool `json:"optimizeAnimation,omitempty"`
	MaxFrames         int  `json:"maxFrames,omitempty"`
	FrameRate         int  `json:"frameRate,omitempty"`

	// CropToCircle applies a circular alpha mask after square-cropping and
	// forces an alpha-capable output format.
	CropToCircle bool `json:"cropToCircle,omitempty"`

	// WaterCoolingOptimization applies the fixed enhancement chain tuned for
	// small pump-head screens: sharpen, brightness, saturation, gamma,
	// contrast normalization.
	WaterCoolingOptimization bool `json:"waterCoolingOptimization,omitempty"`

	// Cloud-engine hints; the local engine ignores them.
	AIOptimization bool `json:"aiOptimization,omitempty"`
	AutoFormat     bool `json:"autoFormat,omitempty"`
	AutoQuality    bool `json:"autoQuality,omitempty"`
	SmartCrop      bool `json:"smartCrop,omitempty"`
}

// PreserveAspect resolves the tri-state PreserveAspectRatio field.
func (o Options) PreserveAspect() bool {
	return o.PreserveAspectRatio == nil || *o.PreserveAspectRatio
}

// Input carries the image to compress: raw bytes, or a source URL that the
// cloud engine can ingest directly.
type Input struct {
	Data []byte
	URL  string
}

// BatchItem is one unit of work for CompressBatch.
type BatchItem struct {
	Input    Input
	Filename string
	Options  Options
}

// Result is the outcome of one compression call. Engines always return a
// Result; internal failures are translated, never propagated as panics or
// errors past the engine boundary.
type Result struct {
	Success bool `json:"success"`

	OriginalSize     int64   `json:"originalSize"`
	CompressedSize   int64   `json:"compressedSize"`
	CompressionRatio float64 `json:"compressionRatio"`

	// OutputURL is a locally servable path, or a same-origin proxy path on a
	// degraded cloud result. Never a bare remote URL.
	OutputURL string `json:"outputUrl,omitempty"`

	Format Format `json:"format,omitempty"`
	Width  int    `json:"width"`
	Height int    `json:"height"`

	ProcessingTime time.Duration `json:"processingTime"`

	// Degraded marks a cloud result whose processed asset could not be
	// fetched: the operation still succeeded from the caller's point of view,
	// but sizes and dimensions are zeroed and OutputURL points at the proxy.
	Degraded       bool   `json:"degraded,omitempty"`
	DegradedReason string `json:"degradedReason,omitempty"`

	Error string `json:"error,omitempty"`
}

// Stats is a snapshot of an engine's running aggregates.
type Stats struct {
	TotalFiles           int64         `json:"totalFiles"`
	TotalOriginalBytes   int64         `json:"totalOriginalBytes"`
	TotalCompressedBytes int64         `json:"totalCompressedBytes"`
	AverageRatio         float64       `json:"averageRatio"`
	AverageTime          time.Duration `json:"averageTime"`
}

// Engine is the shared contract both compression strategies implement.
type Engine interface {
	CompressImage(ctx context.Context, input Input, filename string, opts Options) Result
	CompressBatch(ctx context.Context, items []BatchItem) []Result
	SupportsFormat(format Format) bool
	RecommendedOptions(source Format, sizeBytes int64, width, height int) Options
	Stats() Stats
	ResetStats()
}

// CompressionRatio computes the percentage of bytes saved. A zero original
// size yields 0; a result larger than the input yields a negative ratio.
func CompressionRatio(originalSize, compressedSize int64) float64 {
	if originalSize == 0 {
		return 0
	}
	return float64(originalSize-compressedSize) / float64(originalSize) * 100
}

// failure builds the uniform failed Result with timing attached.
func failure(start time.Time, msg string) Result {
	return Result{
		Success:        false,
		Error:          msg,
		ProcessingTime: time.Since(start),
	}
}
