package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"black-oil/internal/config"
	"black-oil/internal/database"
	"black-oil/internal/server"
	"black-oil/internal/store"
)

func main() {
	configPath := flag.String("config", "", "YAML config file")
	port := flag.Int("port", 0, "Server port (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *dbPath != "" {
		cfg.Storage.DBPath = *dbPath
	}
	// Env wins so PaaS deployments can inject PORT and DATABASE_URL.
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "invalid config:", err)
		os.Exit(1)
	}

	logger := cfg.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	catalog, err := cfg.Catalog()
	if err != nil {
		logger.Error("invalid scenarios", "err", err)
		os.Exit(1)
	}

	st, err := openStore(context.Background(), cfg.Storage, logger)
	if err != nil {
		logger.Error("store initialization failed", "err", err)
		os.Exit(1)
	}

	srv := server.New(server.Config{
		Addr:           ":" + strconv.Itoa(cfg.Server.Port),
		Store:          st,
		Catalog:        catalog,
		Logger:         logger,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			done <- syscall.SIGTERM
		}
	}()

	<-done
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Stop(ctx); err != nil {
		logger.Error("server shutdown error", "err", err)
	}
	logger.Info("server stopped")
}

// openStore picks PostgreSQL when a database URL is set and SQLite
// otherwise, with an optional Redis cache in front.
func openStore(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (store.Store, error) {
	var st store.Store
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		pg := store.NewPostgresStore(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		st = pg
		logger.Info("connected to PostgreSQL")
	} else {
		db, err := database.Open(ctx, database.Options{
			Path:        cfg.DBPath,
			JournalMode: cfg.JournalMode,
			BusyTimeout: cfg.BusyTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		st = db
		logger.Info("using SQLite database", "path", cfg.DBPath)
	}

	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		st = store.NewCachedStore(st, redis.NewClient(opt), cfg.CacheTTL)
		logger.Info("Redis cache enabled", "ttl", cfg.CacheTTL)
	}
	return st, nil
}
