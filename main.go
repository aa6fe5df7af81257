package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	appLogger "github.com/FACorreiaa/go-travel-assistant/app/logger"
	appMiddleware "github.com/FACorreiaa/go-travel-assistant/app/middleware"
	"github.com/FACorreiaa/go-travel-assistant/app/observability/metrics"
	"github.com/FACorreiaa/go-travel-assistant/app/tracer"
	"github.com/FACorreiaa/go-travel-assistant/config"
	"github.com/FACorreiaa/go-travel-assistant/internal/container"
	"github.com/FACorreiaa/go-travel-assistant/internal/router"
)

const serviceName = "travel-assistant"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found or error loading:", err)
	}

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("FATAL: Error initializing config: %v", err)
	}

	logger := setupLogger()
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	providers, err := tracer.InitTracingAndMetrics(serviceName)
	if err != nil {
		logger.Error("Failed to initialize telemetry", slog.Any("error", err))
		os.Exit(1)
	}
	metrics.InitAppMetrics()

	c, err := container.NewContainer(ctx, &cfg, logger)
	if err != nil {
		logger.Error("Failed to build application container", slog.Any("error", err))
		os.Exit(1)
	}
	defer c.Close()

	timeout := cfg.Server.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	r := chi.NewMux()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(appMiddleware.ClientIP)
	r.Use(appLogger.StructuredLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	r.Use(middleware.Timeout(timeout))
	r.Use(middleware.Compress(5, "application/json"))
	r.Mount("/", router.SetupRouter(&router.Config{
		ChatHandler:      c.ChatHandler,
		SearchLogHandler: c.SearchLogHandler,
		MetricsHandler:   providers.MetricsHandler,
		AllowedOrigins:   cfg.Server.AllowedOrigins,
	}))

	serverAddress := fmt.Sprintf(":%s", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         serverAddress,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: timeout + 5*time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	go func() {
		logger.Info("Starting HTTP server", slog.String("address", serverAddress))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server ListenAndServe error", slog.Any("error", err))
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutdown signal received, starting graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server graceful shutdown failed", slog.Any("error", err))
	} else {
		logger.Info("HTTP server gracefully stopped")
	}
	if err := providers.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Telemetry shutdown failed", slog.Any("error", err))
	}
	logger.Info("Application shut down complete.")
}

// setupLogger returns a tint logger in development and JSON otherwise.
func setupLogger() *slog.Logger {
	env := os.Getenv("APP_ENV")
	if env == "development" || env == "" {
		return slog.New(tint.NewHandler(os.Stdout, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.Kitchen,
			AddSource:  true,
		}))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
}
