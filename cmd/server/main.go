// THRESHOLD - anomaly-bearing assistant server
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/mosaic-lumen/threshold/internal/api"
	"github.com/mosaic-lumen/threshold/internal/config"
	"github.com/mosaic-lumen/threshold/internal/generate"
	"github.com/mosaic-lumen/threshold/internal/identity"
	"github.com/mosaic-lumen/threshold/internal/middleware"
	"github.com/mosaic-lumen/threshold/internal/mirror"
	"github.com/mosaic-lumen/threshold/internal/store"
	"github.com/mosaic-lumen/threshold/web"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment())

	// Initialize dependencies.
	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected")

	// Generation gateway (optional): without an API key the server still
	// runs, serving intercepts and static puzzle content.
	var gen generate.Client
	if cfg.Generation.APIKey != "" {
		client, err := generate.NewOpenAIClient(cfg.Generation, logger)
		if err != nil {
			slog.Warn("Failed to initialize generation client, running without generation", "error", err)
		} else {
			gen = client
			slog.Info("Generation client initialized",
				"model", cfg.Generation.Model,
				"classifier_model", cfg.Generation.ClassifierModel,
			)
		}
	} else {
		slog.Info("Generation disabled (GENERATION_API_KEY not set)")
	}

	var mirrorSvc *mirror.Service
	if gen != nil {
		mirrorSvc = mirror.NewService(gen)
	}

	// Initialize handlers.
	apiHandler := api.NewHandler(repo, gen, mirrorSvc, cfg)
	healthHandler := api.NewHealthHandler(repo)

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/ping"))
	r.Use(middleware.CORS([]string{"*"}))
	r.Use(identity.Middleware(repo, cfg.IsDevelopment()))

	healthHandler.RegisterHealth(r)

	// All routes use identity middleware (no auth needed).
	apiHandler.RegisterRoutes(r)

	// Serve embedded frontend (SPA catch-all).
	r.Handle("/*", web.SPAHandler())

	// Note: streamed chat responses require long write timeouts.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0,                 // 0 = no timeout for streaming support
		IdleTimeout:  120 * time.Second, // 2 minutes for idle connections
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store.StartTTLWorker(ctx, repo, cfg.SessionTTL)

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
