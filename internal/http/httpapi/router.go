package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"coolpress/internal/http/handlers"
	"coolpress/internal/middleware"
)

// NewRouter assembles the full route table and middleware chain.
func NewRouter(app *handlers.App) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(app.Logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(app.Cfg.AllowedOrigins))
	r.Use(middleware.I18N("en"))

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/images", func(r chi.Router) {
		r.Get("/presets", app.Presets)
		r.Get("/recommend", app.Recommend)
		r.Get("/stats", app.Stats)
		r.Post("/stats/reset", app.ResetStats)
		r.Get("/usage", app.CloudUsage)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(app.Cfg.RateLimitPerMin, time.Minute))
			r.Post("/compress", app.Compress)
			r.Post("/compress/batch", app.CompressBatch)
		})
	})

	r.Get("/api/proxy", app.Proxy)

	// Compressed artifacts are served straight off the output directory.
	fileServer := http.StripPrefix(app.Cfg.PublicBasePath, http.FileServer(http.Dir(app.Cfg.OutputDir)))
	r.Get(app.Cfg.PublicBasePath+"/*", fileServer.ServeHTTP)

	return r
}
