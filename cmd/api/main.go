package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"codemint/internal/cache"
	"codemint/internal/config"
	"codemint/internal/database"
	"codemint/internal/handlers"
	"codemint/internal/jobs"
	"codemint/internal/log"
	"codemint/internal/render"
	"codemint/internal/repository"
	"codemint/internal/server"
	"codemint/internal/service"
	"codemint/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment)

	ctx := context.Background()

	dbPool, err := database.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect postgres")
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		// The scan cache is optional; lookups fall through to postgres.
		logger.Warn().Err(err).Msg("redis unavailable, scan cache disabled")
		redisClient = nil
	}

	objectStore, err := storage.NewObjectStore(cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init object store")
	}
	if err := objectStore.EnsureBuckets(ctx); err != nil {
		logger.Warn().Err(err).Msg("ensure buckets failed")
	}

	codeRepo := repository.NewCodeRepository(dbPool)
	records := service.NewCachedCodeRecords(codeRepo, redisClient, cfg.Redis.ScanTTL, logger)
	renderer := render.NewPNGRenderer(cfg.Render.QRSize)
	generateService := service.NewGenerateService(renderer, objectStore, records, cfg.Storage, logger)

	handlerSet := handlers.NewHandlerSet(logger, cfg, generateService, dbPool, redisClient)
	httpServer := server.NewHTTPServer(cfg, logger, handlerSet)

	var sweeper *jobs.Sweeper
	if cfg.Sweeper.Enabled {
		sweeper = jobs.NewSweeper(objectStore, codeRepo, cfg, logger)
		if err := sweeper.Start(); err != nil {
			logger.Error().Err(err).Msg("sweeper start failed")
		}
	}

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, sweeper, dbPool, redisClient)
}

func waitForShutdown(logger zerolog.Logger, srv *server.HTTPServer, sweeper *jobs.Sweeper, db *pgxpool.Pool, redisClient *redis.Client) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
		if err := srv.Shutdown(context.Background()); err != nil {
			logger.Error().Err(err).Msg("forced shutdown failed")
		}
	}

	if sweeper != nil {
		sweeper.Stop()
	}

	db.Close()
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("redis close error")
		}
	}

	logger.Info().Msg("server exited cleanly")
}
