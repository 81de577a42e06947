package handlers

import (
	"net/http"

	"coolpress/internal/compress"
)

// Stats reports the running aggregates of one engine, or of both when no
// version is given.
func (a *App) Stats(w http.ResponseWriter, r *http.Request) {
	if version := r.URL.Query().Get("version"); version != "" {
		a.json(w, http.StatusOK, map[string]any{
			string(compress.NormalizeVersion(version)): a.Engines.Engine(version).Stats(),
		})
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		string(compress.VersionFree): a.Engines.Engine(string(compress.VersionFree)).Stats(),
		string(compress.VersionAI):   a.Engines.Engine(string(compress.VersionAI)).Stats(),
	})
}

// ResetStats clears the aggregates of both engines.
func (a *App) ResetStats(w http.ResponseWriter, r *http.Request) {
	a.Engines.Engine(string(compress.VersionFree)).ResetStats()
	a.Engines.Engine(string(compress.VersionAI)).ResetStats()
	a.json(w, http.StatusOK, map[string]string{"status": "reset"})
}

// CloudUsage surfaces the remote service's account usage report.
func (a *App) CloudUsage(w http.ResponseWriter, r *http.Request) {
	engine, ok := a.Engines.Engine(string(compress.VersionAI)).(*compress.CloudEngine)
	if !ok {
		a.error(w, http.StatusInternalServerError, "internal", "cloud engine unavailable")
		return
	}
	report, err := engine.Usage(r.Context())
	if err != nil {
		a.error(w, http.StatusBadGateway, "upstream", err.Error())
		return
	}
	a.json(w, http.StatusOK, report)
}
