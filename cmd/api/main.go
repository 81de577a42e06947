package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"coolpress/internal/compress"
	"coolpress/internal/http/handlers"
	httpapi "coolpress/internal/http/httpapi"
	"coolpress/internal/infra"
	"coolpress/internal/providers/cloudinary"
	"coolpress/internal/storage"
)

func main() {
	// Load .env (optional)
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	store, err := storage.NewFileStore(cfg.OutputDir, cfg.PublicBasePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to prepare output directory")
	}

	cloudClient := cloudinary.NewClient(cloudinary.Options{
		CloudName:      cfg.CloudinaryCloudName,
		APIKey:         cfg.CloudinaryAPIKey,
		APISecret:      cfg.CloudinaryAPISecret,
		UploadBaseURL:  cfg.CloudinaryUploadBase,
		DeliveryBase:   cfg.CloudinaryDeliveryURL,
		RequestTimeout: cfg.CloudRequestTimeout,
		Logger:         &logger,
	})

	engines := compress.NewFactory(
		func() compress.Engine { return compress.NewLocalEngine(store, logger) },
		func() compress.Engine { return compress.NewCloudEngine(cloudClient, store, "/api/proxy", logger) },
	)

	app := handlers.NewApp(cfg, logger, engines, store)
	router := httpapi.NewRouter(app)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != os.ErrClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
