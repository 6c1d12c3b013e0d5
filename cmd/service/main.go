// cmd/service/main.go
package main

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

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"

	"city-events-sync/internal/api"
	"city-events-sync/internal/config"
	"city-events-sync/internal/eventbrite"
	"city-events-sync/internal/source"
	"city-events-sync/internal/store"
	"city-events-sync/internal/syncer"
	"city-events-sync/internal/ticketmaster"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Application startup error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Initialize structured logger
	logLevel := new(slog.LevelVar)
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger := slog.New(handler)
	slog.SetDefault(logger)

	// 2. Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	setLogLevel(cfg.LogLevel, logLevel)
	logger.Info("Configuration loaded successfully")

	// 3. Setup context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// 4. Initialize database connection and run migrations
	dbpool, err := pgxpool.New(ctx, cfg.DBURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer dbpool.Close()
	logger.Info("Database connection established")

	if err := runMigrations(cfg.DBURL); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}
	logger.Info("Database migrations applied successfully")

	// 5. Initialize application components
	repo := store.NewPostgres(dbpool)

	tmClient := ticketmaster.NewClient(logger)
	sources := []source.Source{
		ticketmaster.NewSource(tmClient, cfg.City, cfg.CountryCode, cfg.TicketmasterAPIKey),
	}
	if cfg.EventbriteAPIToken != "" {
		ebClient := eventbrite.NewClient(cfg.EventbriteAPIToken, logger)
		sources = append(sources, eventbrite.NewSource(ebClient, cfg.EventbriteOrgID, cfg.EventbriteAPIToken))
	}

	appSyncer := syncer.NewSyncer(repo, sources, logger, cfg.SyncInterval)

	// 6. Start the syncer and the HTTP API
	go appSyncer.Start(ctx)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: api.NewRouter(repo, appSyncer, logger),
	}
	go func() {
		logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			cancel()
		}
	}()

	// 7. Wait for shutdown signal
	logger.Info("Application started. Waiting for shutdown signal...")
	<-ctx.Done()
	logger.Info("Shutdown signal received. Exiting.")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	return srv.Shutdown(shutdownCtx)
}

func runMigrations(dbURL string) error {
	m, err := migrate.New("file://migrations", dbURL)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}

func setLogLevel(level string, v *slog.LevelVar) {
	switch level {
	case "debug":
		v.Set(slog.LevelDebug)
	case "warn":
		v.Set(slog.LevelWarn)
	case "error":
		v.Set(slog.LevelError)
	default:
		v.Set(slog.LevelInfo)
	}
}
