package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/JonMunkholm/datagrid/internal/config"
	"github.com/JonMunkholm/datagrid/internal/core"
	_ "github.com/JonMunkholm/datagrid/internal/core/tables" // Register all tables
	"github.com/JonMunkholm/datagrid/internal/grid"
	"github.com/JonMunkholm/datagrid/internal/logging"
	"github.com/JonMunkholm/datagrid/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logger := logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("configuration loaded", "config", cfg.String())

	ctx := context.Background()

	source, closeSource, err := openSource(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open row source", "error", err)
		os.Exit(1)
	}
	defer closeSource()

	limiter := core.NewFetchLimiter(cfg.Grid.MaxConcurrentFetches, cfg.Grid.FetchWaitTime)
	service := core.NewService(source, core.ServiceConfig{
		MaxClientRows:    cfg.Grid.MaxClientRows,
		MaxFilterOptions: cfg.Grid.MaxFilterOptions,
		PageSize:         cfg.Grid.PageSize,
		PageSizes:        cfg.Grid.PageSizes,
		Widths: grid.Widths{
			Default:   cfg.Grid.ColumnWidth,
			Min:       cfg.Grid.MinColumnWidth,
			Selection: cfg.Grid.SelectionWidth,
		},
		SessionTTL:      cfg.Session.TTL,
		CleanupInterval: cfg.Session.CleanupInterval,
		MaxSessions:     cfg.Session.MaxSessions,
	}, limiter, logger)

	// Log registered tables
	logger.Info("tables registered",
		"count", core.TableCount(),
		"groups", len(core.Groups()),
	)
	for _, group := range core.Groups() {
		logger.Debug("table group", "group", group, "tables", len(core.ByGroup(group)))
	}

	server := web.NewServer(service, cfg)

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		logger.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", "error", err)
		}

		// Let in-flight table loads finish before the pool closes
		if status := limiter.Status(); status.Active > 0 {
			logger.Info("waiting for table loads to complete", "active", status.Active)
			if err := limiter.WaitForDrain(shutdownCtx); err != nil {
				logger.Warn("table loads did not complete in time", "error", err)
			}
		}
	}()

	if err := server.Start(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
	<-done
	logger.Info("server stopped")
}

// openSource connects to PostgreSQL when a database URL is configured and
// otherwise seeds an in-memory source from the CSV directory.
func openSource(ctx context.Context, cfg *config.Config, logger *slog.Logger) (core.RowSource, func(), error) {
	if cfg.Database.URL == "" {
		mem := core.NewMemorySource()
		if err := mem.LoadDir(ctx, cfg.Grid.SeedDir, logger); err != nil {
			return nil, nil, err
		}
		logger.Info("serving seeded tables", "dir", cfg.Grid.SeedDir)
		return mem, func() {}, nil
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, nil, err
	}

	// Apply pool configuration from config
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}

	// Log which database we connected to
	if u, err := url.Parse(cfg.Database.URL); err == nil {
		logger.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		logger.Info("connected to database")
	}

	return core.NewPostgresSource(pool, logger), pool.Close, nil
}
