package handlers

import (
	"net/http"
	"strconv"

	"coolpress/internal/compress"
)

// Presets returns the preset and screen-preset catalogue the UI renders.
func (a *App) Presets(w http.ResponseWriter, r *http.Request) {
	presets := make(map[string]compress.Options)
	for _, name := range compress.PresetNames() {
		opts, _ := compress.PresetOptions(compress.Preset(name))
		presets[name] = opts
	}
	a.json(w, http.StatusOK, map[string]any{
		"presets": presets,
		"screens": compress.ScreenPresets(),
	})
}

// Recommend maps a described input (format, size, dimensions) onto the
// selected engine's recommended option set.
func (a *App) Recommend(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	size, _ := strconv.ParseInt(query.Get("size"), 10, 64)
	width, _ := strconv.Atoi(query.Get("width"))
	height, _ := strconv.Atoi(query.Get("height"))
	source := compress.NormalizeFormat(query.Get("format"))

	engine := a.Engines.Engine(query.Get("version"))
	a.json(w, http.StatusOK, map[string]any{
		"options": engine.RecommendedOptions(source, size, width, height),
	})
}
