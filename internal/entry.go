// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/gourmet/internal/api"
	"github.com/starford/gourmet/internal/gourmet"
	"github.com/starford/gourmet/internal/ingredient"
	"github.com/starford/gourmet/internal/mcpserver"
	"github.com/starford/gourmet/internal/scraper"
	"github.com/starford/gourmet/internal/sse"
	"github.com/starford/gourmet/internal/storage"
)

// Run starts the HTTP application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("cache_path", cfg.Cache.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// SSE broker, fed by service mutations.
	broker := sse.NewBroker(2 * time.Second)

	svc, staples, err := buildService(cfg, logger,
		gourmet.WithChangeListener(broker.PublishDataEvent))
	if err != nil {
		broker.Close()
		return err
	}
	defer svc.Close()

	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker, broker.ClientCount)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Watch the staples vocabulary file, if one is configured.
	if cfg.Staples.Path != "" {
		if err := staples.LoadFile(cfg.Staples.Path); err != nil {
			logger.Warn("staples file load failed, using built-in vocabulary",
				slog.String("error", err.Error()))
		}
		g.Go(func() error {
			return ingredient.Watch(gCtx, staples, cfg.Staples.Path, logger)
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		broker.Close()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP starts the MCP stdio server instead of the HTTP server. Logs go to
// stderr because stdout carries the protocol.
func RunMCP(cfg *Config) error {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	svc, _, err := buildService(cfg, logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	logger.Info("Starting MCP server on stdio")
	return mcpserver.New(svc).ServeStdio()
}

// buildService wires storage backends, staples, and the scraper into the
// service facade.
func buildService(cfg *Config, logger *slog.Logger, opts ...gourmet.Option) (*gourmet.Service, *ingredient.Staples, error) {
	primary, err := storage.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("init primary storage: %w", err)
	}

	fallback, err := storage.NewFileCache(cfg.Cache.Path)
	if err != nil {
		primary.Close()
		return nil, nil, fmt.Errorf("init fallback cache: %w", err)
	}

	staples := ingredient.NewStaples()
	sc := scraper.New(cfg.Scraper.Timeout(), cfg.Scraper.UserAgent, logger)

	svc := gourmet.New(primary, fallback, staples, sc, logger, opts...)
	return svc, staples, nil
}
