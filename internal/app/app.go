// Package app provides application orchestration and component lifecycle
// management.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"

	"carelingo/internal/chat"
	"carelingo/internal/config"
	"carelingo/internal/database"
	"carelingo/internal/gemini"
	"carelingo/internal/scheduler"
	"carelingo/internal/server"
	"carelingo/internal/storage"
)

const maintenanceTimeout = 5 * time.Minute

// App holds the application's wired components.
type App struct {
	cfg    *config.Config
	log    *slog.Logger
	db     *sqlx.DB
	store  database.Store
	sched  *scheduler.Scheduler
	server *http.Server
}

// New loads configuration and constructs every component: logging, database,
// AI client, blob storage, ingestion service, maintenance scheduler, and the
// HTTP server.
func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := newLogger(cfg.Log)
	logger.Info("configuration loaded",
		"log_level", cfg.Log.Level,
		"ai_model", cfg.AI.Model,
		"db_path", cfg.Database.Path)

	db, err := database.NewDB(cfg.Database.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	store := database.NewStore(db, logger)

	aiClient, err := gemini.New(ctx, cfg.AI, logger)
	if err != nil {
		database.CloseDB(db, logger)
		return nil, fmt.Errorf("failed to initialize AI client: %w", err)
	}

	audioStore, err := storage.NewAudioStore(cfg.Storage.AudioDir, cfg.Storage.URLPrefix, logger)
	if err != nil {
		database.CloseDB(db, logger)
		return nil, fmt.Errorf("failed to initialize audio storage: %w", err)
	}

	svc := chat.NewService(store, aiClient, audioStore, logger)

	sched, err := scheduler.New(logger)
	if err != nil {
		database.CloseDB(db, logger)
		return nil, fmt.Errorf("failed to initialize scheduler: %w", err)
	}
	if err := sched.AddJob("db-maintenance", cfg.Database.MaintenanceCron, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), maintenanceTimeout)
		defer cancel()
		if err := store.RunMaintenance(jobCtx); err != nil {
			logger.Error("scheduled database maintenance failed", "error", err)
		}
	}); err != nil {
		if stopErr := sched.Stop(); stopErr != nil {
			logger.Error("failed to stop scheduler", "error", stopErr)
		}
		database.CloseDB(db, logger)
		return nil, fmt.Errorf("failed to schedule maintenance job: %w", err)
	}

	router := server.NewRouter(svc, store, cfg.Server, audioStore.Dir(), audioStore.URLPrefix(), logger)
	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return &App{
		cfg:    cfg,
		log:    logger,
		db:     db,
		store:  store,
		sched:  sched,
		server: srv,
	}, nil
}

// Run serves HTTP until ctx is cancelled, then shuts the server down within
// the configured timeout.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.log.Info("server starting", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		a.log.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// Close releases the application's resources.
func (a *App) Close() {
	if a.sched != nil {
		if err := a.sched.Stop(); err != nil {
			a.log.Error("failed to stop scheduler", "error", err)
		}
	}
	database.CloseDB(a.db, a.log)
	a.log.Info("application stopped")
}
