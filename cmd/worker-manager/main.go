// cmd/worker-manager/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"move-improve-workers/internal/common/camunda"
	"move-improve-workers/internal/common/config"
	"move-improve-workers/internal/common/database"
	"move-improve-workers/internal/common/logger"
	"move-improve-workers/internal/common/observability"
	"move-improve-workers/internal/common/validation"
	"move-improve-workers/internal/store"
	cs "move-improve-workers/internal/workers/assessment/compute-score"
	rr "move-improve-workers/internal/workers/assessment/render-report"
	"move-improve-workers/pkg/registry"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("app", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name, log)
	defer obs.Shutdown()

	ctx := context.Background()

	shutdownTracing, err := observability.InitTracing(ctx, cfg.Tracing, cfg.App.Name)
	if err != nil {
		zapLog.Fatal("tracing init failed", zap.Error(err))
	}

	// --- Zeebe ---
	zeebe, err := camunda.Connect(ctx, camunda.ConfigFrom(cfg.Camunda), log)
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- PostgreSQL ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	records := store.NewPostgresStore(pg.GetDB())

	// --- Redis ---
	// The result cache is optional: workers fall back to the store without it.
	var cache store.ResultCache
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rdb.Ping(ctx)
	}, 5, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Warn("redis unavailable, result cache disabled", zap.Error(err))
	} else {
		defer rdb.Close()
		cache = store.NewRedisResultCache(rdb.GetClient(), cfg.Scoring.ResultCacheTTLDuration(), cfg.Scoring.CacheKeyPrefix)
		zapLog.Info("Redis connected successfully")
	}

	// --- Input schemas ---
	reg, err := registry.LoadRegistry(cfg.Scoring.RegistryPath)
	if err != nil {
		zapLog.Fatal("activity registry load failed", zap.Error(err))
	}
	if err := reg.Validate(); err != nil {
		zapLog.Fatal("activity registry invalid", zap.Error(err))
	}
	validator, err := validation.NewSchemaValidator(reg)
	if err != nil {
		zapLog.Fatal("input schema compilation failed", zap.Error(err))
	}

	// --- Workers ---
	workers := camunda.NewWorkers(zeebe.GetClient(), log)

	workers.Start(cs.TaskType, config.GetWorkerConfig(cfg, cs.TaskType), cs.NewHandler(
		cs.LoadConfig(cfg),
		cs.Dependencies{Store: records, Cache: cache, Validator: validator, Observability: obs},
		log,
	))

	workers.Start(rr.TaskType, config.GetWorkerConfig(cfg, rr.TaskType), rr.NewHandler(
		rr.LoadConfig(cfg),
		rr.Dependencies{Store: records, Cache: cache, Validator: validator, Observability: obs},
		log,
	))

	zapLog.Info("All workers registered", zap.Strings("taskTypes", workers.Started()))

	// --- Health & Metrics Server ---
	router := NewRouter(cfg.Metrics.Path, map[string]Checker{
		"postgres": pg.Ping,
		"zeebe":    zeebe.HealthCheck,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Metrics.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	workers.Stop()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping metrics server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		zapLog.Error("Error flushing traces", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}
