// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/txtshelf/internal/accesslog"
	"github.com/starford/txtshelf/internal/api"
	"github.com/starford/txtshelf/internal/fileservice"
	"github.com/starford/txtshelf/internal/index"
	"github.com/starford/txtshelf/internal/mcpserver"
	"github.com/starford/txtshelf/internal/models"
	"github.com/starford/txtshelf/internal/sse"
	"github.com/starford/txtshelf/internal/storage"
	"github.com/starford/txtshelf/internal/web"
)

// Run starts the HTTP server with the given options and blocks until ctx is
// cancelled or a shutdown signal arrives.
func Run(ctx context.Context, opts ...Option) error {
	app := newApplication(opts)
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
		slog.String("version", app.version),
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("data_path", cfg.Data.Path),
		slog.String("index_path", cfg.Index.Path),
		slog.String("access_log", cfg.App.AccessLog),
		slog.String("log_level", cfg.App.LogLevel.String()))

	store, db, err := openStorage(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	accessLogger, accessCloser, err := accesslog.Open(cfg.App.AccessLog)
	if err != nil {
		return fmt.Errorf("open access log: %w", err)
	}
	defer accessCloser.Close()

	broker := sse.NewBroker(cfg.Events.ListThrottle)
	defer broker.Close()

	svc := fileservice.NewService(store, db, broker, logger)

	handler, err := newRouter(svc, store, db, broker, accessLogger)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Keep the index in step with edits made outside the application.
	if cfg.Index.Watch {
		g.Go(func() error {
			err := index.Watch(gCtx, db, store, store.Root(), logger, func(kind, name string) {
				broker.PublishFileEvent(models.Event{Kind: kind, Name: name})
			})
			if err != nil {
				logger.Warn("watcher disabled", slog.String("error", err.Error()))
			}
			return nil
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
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		// Open SSE and WebSocket feeds only end when the broker closes them.
		broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP serves the MCP tools on stdin/stdout. Logs go to stderr because
// stdout carries the protocol.
func RunMCP(_ context.Context, opts ...Option) error {
	app := newApplication(opts)
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	cfg := app.config

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	store, db, err := openStorage(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	// A running HTTP server's watcher announces MCP changes to browsers.
	svc := fileservice.NewService(store, db, nil, logger)

	logger.Info("MCP server starting", slog.String("data_path", cfg.Data.Path))
	return mcpserver.New(svc, app.version).ServeStdio()
}

// openStorage prepares the data directory and brings the search index up to
// date with it.
func openStorage(cfg *Config, logger *slog.Logger) (*storage.FS, *index.DB, error) {
	store, err := storage.NewFS(cfg.Data.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("init storage: %w", err)
	}
	if cfg.Data.Create {
		if err := store.EnsureRoot(); err != nil {
			return nil, nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	db, err := index.Open(cfg.Index.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("init index: %w", err)
	}

	if err := index.Sync(db, store, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}
	return store, db, nil
}

// newRouter assembles the HTTP surface: health checks, the JSON API with its
// change feeds, and the browser UI.
func newRouter(svc *fileservice.Service, store storage.Provider, db *index.DB, broker *sse.Broker, accessLogger *slog.Logger) (http.Handler, error) {
	webRouter, err := web.NewRouter(svc)
	if err != nil {
		return nil, fmt.Errorf("init web: %w", err)
	}

	r := chi.NewRouter()
	r.Use(baseMiddleware(accessLogger)...)

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		writeHealth(w, nil)
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		if _, err := store.List(); err != nil {
			writeHealth(w, fmt.Errorf("data directory: %w", err))
			return
		}
		if err := db.Ping(); err != nil {
			writeHealth(w, fmt.Errorf("index: %w", err))
			return
		}
		writeHealth(w, nil)
	})

	r.Mount("/api", api.NewRouter(svc, broker, sse.NewWebSocketHandler(broker, slog.Default())))
	r.Mount("/", webRouter)

	return r, nil
}

// baseMiddleware is the stack every route runs behind. The access log sits
// outside Recoverer so a panicking request still gets its line.
func baseMiddleware(accessLogger *slog.Logger) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		accesslog.Middleware(accessLogger),
		middleware.Recoverer,
	}
}

func writeHealth(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		slog.Warn("readiness check failed", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, `{"status":"unavailable"}`)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, `{"status":"ok"}`)
}
