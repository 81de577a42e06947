package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"coolpress/internal/compress"
	"coolpress/internal/infra"
	"coolpress/internal/storage"
)

// App is the handler container: it owns the engine factory, the output store
// and the configuration the routes need.
type App struct {
	Logger  zerolog.Logger
	Engines *compress.Factory
	Store   *storage.FileStore
	Cfg     *infra.Config

	// ProxyClient performs the same-origin proxy fetches. Injectable so
	// tests can stub the transport.
	ProxyClient *http.Client
}

// NewApp wires the handler container.
func NewApp(cfg *infra.Config, logger zerolog.Logger, engines *compress.Factory, store *storage.FileStore) *App {
	return &App{
		Logger:      logger,
		Engines:     engines,
		Store:       store,
		Cfg:         cfg,
		ProxyClient: &http.Client{Timeout: cfg.CloudRequestTimeout},
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, tag, msg string) {
	a.json(w, code, map[string]string{"error": tag, "message": msg})
}
