package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"coolpress/internal/compress"
	"coolpress/internal/evaluate"
	"coolpress/internal/middleware"
)

// Compress handles a single compression request: multipart file (or source
// url) plus option fields, engine chosen by the "version" form value.
func (a *App) Compress(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(a.Cfg.MaxUploadBytes); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid multipart form")
		return
	}

	input, filename, err := a.readUpload(r)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	opts, err := parseOptions(r)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	version := r.FormValue("version")
	engine := a.Engines.Engine(version)
	result := engine.CompressImage(r.Context(), input, filename, opts)

	evaluation := evaluate.Compression(
		result.CompressionRatio,
		result.OriginalSize,
		result.CompressedSize,
		result.ProcessingTime,
		string(compress.NormalizeVersion(version)),
		middleware.LocaleFromContext(r.Context()),
	)

	a.json(w, http.StatusOK, map[string]any{
		"result":     result,
		"evaluation": evaluation,
	})
}

// readUpload extracts the image payload: a "file" part when present,
// otherwise a "url" field for the cloud engine's remote ingestion.
func (a *App) readUpload(r *http.Request) (compress.Input, string, error) {
	file, header, err := r.FormFile("file")
	if err == nil {
		defer file.Close()
		data, readErr := io.ReadAll(io.LimitReader(file, a.Cfg.MaxUploadBytes+1))
		if readErr != nil {
			return compress.Input{}, "", fmt.Errorf("read upload: %w", readErr)
		}
		return compress.Input{Data: data}, header.Filename, nil
	}
	if src := strings.TrimSpace(r.FormValue("url")); src != "" {
		name := r.FormValue("filename")
		if name == "" {
			name = "remote"
		}
		return compress.Input{URL: src}, name, nil
	}
	return compress.Input{}, "", fmt.Errorf("missing file upload or source url")
}

// parseOptions builds the option set: a preset (or screen preset) as the
// base, caller fields merged on top.
func parseOptions(r *http.Request) (compress.Options, error) {
	var base compress.Options
	if name := strings.TrimSpace(r.FormValue("preset")); name != "" {
		preset, ok := compress.PresetOptions(compress.Preset(name))
		if !ok {
			return compress.Options{}, fmt.Errorf("unknown preset %q", name)
		}
		base = preset
	} else if name := strings.TrimSpace(r.FormValue("screen")); name != "" {
		screen, ok := compress.ScreenOptions(name)
		if !ok {
			return compress.Options{}, fmt.Errorf("unknown screen preset %q", name)
		}
		base = screen
	} else {
		base = compress.DefaultOptions()
	}

	override := compress.Options{
		Width:                    formInt(r, "width"),
		Height:                   formInt(r, "height"),
		Quality:                  formInt(r, "quality"),
		Format:                   compress.NormalizeFormat(r.FormValue("format")),
		RemoveMetadata:           formBool(r, "removeMetadata"),
		Progressive:              formBool(r, "progressive"),
		OptimizeAnimation:        formBool(r, "optimizeAnimation"),
		MaxFrames:                formInt(r, "maxFrames"),
		FrameRate:                formInt(r, "frameRate"),
		CropToCircle:             formBool(r, "cropToCircle"),
		WaterCoolingOptimization: formBool(r, "waterCoolingOptimization"),
		AIOptimization:           formBool(r, "aiOptimization"),
		AutoFormat:               formBool(r, "autoFormat"),
		AutoQuality:              formBool(r, "autoQuality"),
		SmartCrop:                formBool(r, "smartCrop"),
	}
	if raw := strings.TrimSpace(r.FormValue("preserveAspectRatio")); raw != "" {
		v := raw == "true" || raw == "1"
		override.PreserveAspectRatio = &v
	}

	return compress.Merge(base, override), nil
}

func formInt(r *http.Request, key string) int {
	v, _ := strconv.Atoi(strings.TrimSpace(r.FormValue(key)))
	return v
}

func formBool(r *http.Request, key string) bool {
	raw := strings.TrimSpace(r.FormValue(key))
	return raw == "true" || raw == "1"
}
