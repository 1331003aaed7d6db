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

	"github.com/starford/memos/internal/api"
	"github.com/starford/memos/internal/index"
	"github.com/starford/memos/internal/journal"
	"github.com/starford/memos/internal/memoservice"
	"github.com/starford/memos/internal/sse"
	"github.com/starford/memos/internal/storage"
)

// statsThrottle is the minimum interval between stats.updated events.
const statsThrottle = 2 * time.Second

// NewLogger returns the structured JSON logger used by every command.
func NewLogger(cfg *Config, w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
}

// Components are the wired memo services over one vault.
type Components struct {
	Store   *storage.FS
	Repo    *journal.Repository
	Index   *index.Index
	Service *memoservice.Service
}

// Open creates the vault directory if needed and wires storage, the journal
// repository, the memo index and the memo service.
func Open(cfg *Config, logger *slog.Logger, opts ...memoservice.Option) (*Components, error) {
	if err := os.MkdirAll(cfg.Vault.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create vault dir: %w", err)
	}

	store, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	groups := cfg.Tags.Groups()
	engine := cfg.Tags.Engine()
	if engine.Smart.Fallback() {
		logger.Warn("config: smart keywords are not a JSON object, smart tagging disabled")
	}
	if engine.Habit.Fallback() {
		logger.Warn("config: habit keywords are not a JSON object, habit tagging disabled")
	}

	repo := journal.NewRepository(store, cfg.Journal.Options(groups), logger)
	idx := index.New(repo, logger)

	base := []memoservice.Option{
		memoservice.WithLogger(logger),
		memoservice.WithPageSize(cfg.Journal.ItemsPerPage),
	}
	svc := memoservice.NewService(repo, idx, engine, append(base, opts...)...)

	return &Components{Store: store, Repo: repo, Index: idx, Service: svc}, nil
}

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	logger := app.logger
	if logger == nil {
		logger = NewLogger(cfg, os.Stdout)
	}
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("journal_folder", cfg.Journal.Folder),
		slog.String("date_format", cfg.Journal.DateFormat),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// SSE broker.
	broker := sse.NewBroker(statsThrottle)
	defer broker.Close()

	comp, err := Open(cfg, logger, memoservice.WithPublisher(broker))
	if err != nil {
		return err
	}

	// Warm the cache so the first request does not pay for the scan.
	if _, err := comp.Service.Stats(ctx); err != nil {
		logger.Warn("initial load failed", slog.String("error", err.Error()))
	}

	apiRouter := api.NewRouter(comp.Service, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

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
	r.Get("/health/ready", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if !comp.Index.Valid() {
			if _, err := comp.Service.Stats(req.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"unavailable"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Watch the vault for edits made outside this process.
	g.Go(func() error {
		err := index.Watch(gCtx, comp.Index, cfg.Vault.Path, logger, func(kind, path string) {
			broker.PublishJournalChange(kind, path)
		})
		if err != nil {
			logger.Warn("watcher stopped", slog.String("error", err.Error()))
		}
		return nil
	})

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

		// Ends open event streams so Shutdown does not wait on them.
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
