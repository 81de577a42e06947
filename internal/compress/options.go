package compress

import (
	"fmt"
	"sort"
	"strings"
)

// Preset names a complete, ready-to-use Options bundle.
type Preset string

const (
	PresetHighQuality        Preset = "high_quality"
	PresetBalanced           Preset = "balanced"
	PresetHighCompression    Preset = "high_compression"
	PresetWaterCooling360    Preset = "water_cooling_360"
	PresetWaterCoolingRound  Preset = "water_cooling_round"
	PresetAnimationOptimized Preset = "animation_optimized"
)

func boolPtr(b bool) *bool { return &b }

// presetTable holds the canonical preset definitions. PresetOptions returns
// copies, so callers can never mutate the table through a returned value.
var presetTable = map[Preset]Options{
	PresetHighQuality: {
		Quality:        95,
		Format:         FormatPNG,
		RemoveMetadata: false,
	},
	PresetBalanced: {
		Quality:        85,
		Format:         FormatWebP,
		RemoveMetadata: true,
	},
	PresetHighCompression: {
		Quality:        70,
		Format:         FormatWebP,
		RemoveMetadata: true,
	},
	PresetWaterCooling360: {
		Quality:                  90,
		Format:                   FormatWebP,
		Width:                    640,
		Height:                   640,
		PreserveAspectRatio:      boolPtr(false),
		WaterCoolingOptimization: true,
	},
	PresetWaterCoolingRound: {
		Quality:                  90,
		Format:                   FormatPNG,
		Width:                    640,
		Height:                   640,
		PreserveAspectRatio:      boolPtr(false),
		CropToCircle:             true,
		WaterCoolingOptimization: true,
	},
	PresetAnimationOptimized: {
		Quality:           75,
		Format:            FormatWebP,
		OptimizeAnimation: true,
		MaxFrames:         50,
		FrameRate:         15,
	},
}

// PresetOptions returns the Options for a named preset.
func PresetOptions(p Preset) (Options, bool) {
	opts, ok := presetTable[p]
	if !ok {
		return Options{}, false
	}
	if opts.PreserveAspectRatio != nil {
		opts.PreserveAspectRatio = boolPtr(*opts.PreserveAspectRatio)
	}
	return opts, true
}

// DefaultOptions is the balanced preset, the service-wide default.
func DefaultOptions() Options {
	opts, _ := PresetOptions(PresetBalanced)
	return opts
}

// PresetNames lists the available presets in stable order.
func PresetNames() []string {
	names := make([]string, 0, len(presetTable))
	for p := range presetTable {
		names = append(names, string(p))
	}
	sort.Strings(names)
	return names
}

// ScreenPreset fixes the exact output geometry of a known water-cooling
// display. Round screens force PNG because the circular mask needs alpha.
type ScreenPreset struct {
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Round  bool   `json:"round"`
}

var screenPresets = []ScreenPreset{
	{Name: "screen_480x480", Width: 480, Height: 480},
	{Name: "screen_640x480", Width: 640, Height: 480},
	{Name: "screen_854x480", Width: 854, Height: 480},
	{Name: "screen_480x640", Width: 480, Height: 640},
	{Name: "screen_640x640", Width: 640, Height: 640},
	{Name: "round_480", Width: 480, Height: 480, Round: true},
	{Name: "round_640", Width: 640, Height: 640, Round: true},
}

// ScreenPresets lists the known screen geometries.
func ScreenPresets() []ScreenPreset {
	out := make([]ScreenPreset, len(screenPresets))
	copy(out, screenPresets)
	return out
}

// ScreenOptions resolves a screen preset name into complete Options.
func ScreenOptions(name string) (Options, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, sp := range screenPresets {
		if sp.Name != name {
			continue
		}
		opts := Options{
			Width:                    sp.Width,
			Height:                   sp.Height,
			Quality:                  90,
			Format:                   FormatWebP,
			PreserveAspectRatio:      boolPtr(false),
			WaterCoolingOptimization: true,
		}
		if sp.Round {
			opts.Format = FormatPNG
			opts.CropToCircle = true
		}
		return opts, true
	}
	return Options{}, false
}

// Merge overlays caller options onto a base field-by-field: set override
// fields win, unset fields fall back to the base.
func Merge(base, override Options) Options {
	merged := base
	if override.Width > 0 {
		merged.Width = override.Width
	}
	if override.Height > 0 {
		merged.Height = override.Height
	}
	if override.Quality > 0 {
		merged.Quality = override.Quality
	}
	if override.Format != FormatAuto {
		merged.Format = override.Format
	}
	if override.PreserveAspectRatio != nil {
		merged.PreserveAspectRatio = boolPtr(*override.PreserveAspectRatio)
	}
	if override.RemoveMetadata {
		merged.RemoveMetadata = true
	}
	if override.Progressive {
		merged.Progressive = true
	}
	if override.OptimizeAnimation {
		merged.OptimizeAnimation = true
	}
	if override.MaxFrames > 0 {
		merged.MaxFrames = override.MaxFrames
	}
	if override.FrameRate > 0 {
		merged.FrameRate = override.FrameRate
	}
	if override.CropToCircle {
		merged.CropToCircle = true
	}
	if override.WaterCoolingOptimization {
		merged.WaterCoolingOptimization = true
	}
	if override.AIOptimization {
		merged.AIOptimization = true
	}
	if override.AutoFormat {
		merged.AutoFormat = true
	}
	if override.AutoQuality {
		merged.AutoQuality = true
	}
	if override.SmartCrop {
		merged.SmartCrop = true
	}
	return merged
}

// ResolveEffectiveFormat decides the actual output format for a request.
// A circular crop structurally requires alpha, so a JPEG request is rewritten
// to PNG rather than rejected.
func ResolveEffectiveFormat(opts Options, source Format) Format {
	format := opts.Format
	if format == FormatAuto {
		format = source
	}
	if format == FormatAuto {
		format = FormatWebP
	}
	if opts.CropToCircle && !format.SupportsAlpha() {
		return FormatPNG
	}
	return format
}

// ValidateOptions checks numeric bounds before any decoding or I/O begins.
// Both engines call this independently so each is safe to invoke on its own.
func ValidateOptions(opts Options) error {
	if opts.Quality != 0 && (opts.Quality < 1 || opts.Quality > 100) {
		return fmt.Errorf("quality must be between 1 and 100, got %d", opts.Quality)
	}
	if opts.Width < 0 {
		return fmt.Errorf("width must be positive, got %d", opts.Width)
	}
	if opts.Height < 0 {
		return fmt.Errorf("height must be positive, got %d", opts.Height)
	}
	if opts.MaxFrames < 0 {
		return fmt.Errorf("maxFrames must be positive, got %d", opts.MaxFrames)
	}
	if opts.FrameRate < 0 {
		return fmt.Errorf("frameRate must be positive, got %d", opts.FrameRate)
	}
	return nil
}
