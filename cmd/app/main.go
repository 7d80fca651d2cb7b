// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"demo-service/internal/config"
	"demo-service/internal/infra/api"
	pg "demo-service/internal/infra/db/postgres"
	httpserver "demo-service/internal/infra/http"
	"demo-service/internal/infra/logging"
	"demo-service/internal/infra/metrics"
	red "demo-service/internal/infra/redis"
	"demo-service/internal/usecase"
)

func main() {
	os.Exit(run())
}

func run() int {
	// ---- CLI flags ----
	cfgPath := flag.String("config", os.Getenv("CONFIG_FILE"), "path to optional YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Printf("config: %v", err)
		return 1
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ---- Postgres (optional) ----
	db, err := pg.NewDatabase(ctx, cfg.Database)
	if err != nil {
		logger.Error().Err(err).Msg("postgres")
		return 1
	}
	defer db.Close()
	if db.Configured() {
		logger.Info().Str("host", cfg.Database.Host).Int("port", cfg.Database.Port).
			Bool("ssl", cfg.Database.SSL).Msg("database configured")
	} else {
		logger.Info().Msg("database not configured; DB_HOST is unset")
	}

	// ---- Redis (optional) ----
	cache := red.NewClient(cfg.Redis)
	defer cache.Close()

	// ---- Metrics ----
	registry := metrics.NewRegistry(logger)
	defer registry.Close()
	httpMetrics := metrics.NewHTTPMetrics(registry)
	depMetrics := metrics.NewDependencyMetrics(registry)
	metrics.RegisterBuildInfo(registry, cfg.Build.Version, cfg.Build.Commit)
	registry.CollectDefaults(ctx, cfg.Metrics.Interval, depMetrics.PoolStatsRefresher(db))

	// ---- Use cases ----
	dbProbe := usecase.NewDatabaseProbe(db, logger)
	cacheProbe := usecase.NewCacheProbe(cache, logger)

	// ---- HTTP ----
	srv := api.NewServer(dbProbe, cacheProbe, registry, httpMetrics, depMetrics, logger)
	server := httpserver.NewServer(
		fmt.Sprintf(":%d", cfg.Server.Port),
		srv.Routes(),
		cfg.Server.ShutdownTimeout,
		cfg.Server.ReadHeaderTimeout,
		logger,
	)
	if err := server.Listen(); err != nil {
		logger.Error().Err(err).Msg("http server failed to start")
		return 1
	}

	// ---- Graceful shutdown ----
	if err := server.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("http server")
		return 1
	}
	return 0
}
