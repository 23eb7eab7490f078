package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/danielhkuo/know-you/cliparse"
	"github.com/danielhkuo/know-you/db"
	"github.com/danielhkuo/know-you/logger"
	"github.com/danielhkuo/know-you/ratelimit"
	"github.com/danielhkuo/know-you/retention"
	"github.com/danielhkuo/know-you/router"
	"github.com/danielhkuo/know-you/service"
)

func main() {
	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(logger.New(os.Stderr, cfg.Environment, cfg.LogLevel))

	dialect, err := db.ParseDialect(cfg.DatabaseType)
	if err != nil {
		slog.Error("invalid database type", "error", err)
		os.Exit(1)
	}

	// signal.NotifyContext cancels on the first Ctrl-C or SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to the store; failing here is fatal
	startCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	dbConn, err := db.Open(startCtx, dialect, cfg.DatabaseURL)
	cancel()
	if err != nil {
		slog.Error("database connection failed", "error", err, "type", dialect)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(ctx, dbConn, dialect); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "type", dialect)

	if cfg.SeedCatalog {
		seedCatalog(ctx, dbConn, cfg)
	}

	// Background workers
	sweeper := retention.New(service.NewSessionService(dbConn), cfg.SessionTTL, cfg.SweepInterval)
	go sweeper.Run(ctx)

	var limiter *ratelimit.KeyedLimiter
	if cfg.RateLimitRPS > 0 {
		limiter = ratelimit.New(cfg.RateLimitRPS, cfg.RateLimitBurst, 10*time.Minute)
		go limiter.Run(ctx, time.Minute)
	}

	// Create server
	server := &http.Server{
		Handler:           router.NewRouter(dbConn, cfg, limiter),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("graceful shutdown failed", "error", err)
			server.Close()
		}
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port, "env", cfg.Environment)
	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server closed", "error", err)
		os.Exit(1)
	}

	// Let in-flight requests finish
	<-shutdownDone
	slog.Info("Server closed")
}

func seedCatalog(ctx context.Context, dbConn *sql.DB, cfg cliparse.Config) {
	catalog, err := db.DefaultSeed()
	if err != nil {
		slog.Error("failed to load seed catalog", "error", err)
		return
	}

	n, err := service.NewCatalogService(dbConn, cfg.LikertMin, cfg.LikertMax).Seed(ctx, catalog)
	if err != nil {
		slog.Error("failed to seed catalog", "error", err)
		return
	}
	if n > 0 {
		slog.Info("Seeded sample catalog", "questions", n)
	}
}
