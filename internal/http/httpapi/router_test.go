package httpapi

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"coolpress/internal/compress"
	"coolpress/internal/http/handlers"
	"coolpress/internal/infra"
	"coolpress/internal/storage"
)

func newTestRouter(t *testing.T) (http.Handler, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFileStore(dir, "/static")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	logger := zerolog.New(io.Discard)
	engines := compress.NewFactory(
		func() compress.Engine { return compress.NewLocalEngine(store, logger) },
		func() compress.Engine { return compress.NewLocalEngine(store, logger) },
	)
	cfg := &infra.Config{
		MaxUploadBytes:  50 << 20,
		OutputDir:       dir,
		PublicBasePath:  "/static",
		AllowedOrigins:  []string{"http://localhost:3000"},
		RateLimitPerMin: 100,
	}
	app := handlers.NewApp(cfg, logger, engines, store)
	return NewRouter(app), dir
}

func TestRouterHealthz(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestRouterPresets(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/images/presets", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestRouterServesStaticOutput(t *testing.T) {
	router, dir := newTestRouter(t)
	if err := os.WriteFile(filepath.Join(dir, "123_art_compressed.webp"), []byte("artifact"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/123_art_compressed.webp", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Body.String() != "artifact" {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestRouterUnknownRoute(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
