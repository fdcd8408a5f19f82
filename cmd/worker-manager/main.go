// cmd/worker-manager/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.uber.org/zap"

	"event-insights-workers/internal/analytics/similarity"
	"event-insights-workers/internal/common/camunda"
	"event-insights-workers/internal/common/config"
	"event-insights-workers/internal/common/database"
	"event-insights-workers/internal/common/logger"
	"event-insights-workers/internal/common/observability"
	"event-insights-workers/internal/store"
	"event-insights-workers/internal/workers/analytics/forecastjob"

	aer "event-insights-workers/internal/workers/analytics/analyze-event-reviews"
	pa "event-insights-workers/internal/workers/analytics/predict-attendance"
	pr "event-insights-workers/internal/workers/analytics/predict-rating"
	ps "event-insights-workers/internal/workers/analytics/predict-sentiment"
	re "event-insights-workers/internal/workers/analytics/recommend-events"
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
	bootLog := logger.New("info", "console")

	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal("config load failed", zap.Error(err))
	}
	_ = bootLog.Sync()

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("app", cfg.App.Name),
		zap.String("environment", cfg.App.Environment),
		zap.String("similaritySource", cfg.Analytics.SimilaritySource),
	)

	obs := observability.New("worker-manager", log)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Zeebe ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClient(cfg.Camunda)
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
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
	zapLog.Info("PostgreSQL connected successfully")

	if missing, err := pg.MissingTables(ctx, database.AnalyticsTables...); err != nil {
		zapLog.Warn("could not verify analytics tables", zap.Error(err))
	} else if len(missing) > 0 {
		zapLog.Warn("analytics tables missing, jobs reading them will fail", zap.Strings("tables", missing))
	}

	// --- Redis ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	zapLog.Info("Redis connected successfully")

	deps := map[string]database.Pinger{
		"zeebe":    zeebe,
		"postgres": pg,
		"redis":    rdb,
	}

	// --- Elasticsearch, only when comparable events are searched there ---
	var comparableSource similarity.EventSource = store.NewPostgresEventStore(pg.DB)
	if cfg.Analytics.SimilaritySource == config.SimilaritySourceElasticsearch {
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		exists, err := esClient.IndexExists(ctx, cfg.Analytics.EventsIndex)
		if err != nil {
			zapLog.Fatal("elasticsearch index check failed", zap.Error(err))
		}
		if !exists {
			zapLog.Fatal("elasticsearch events index not found", zap.String("index", cfg.Analytics.EventsIndex))
		}
		zapLog.Info("Elasticsearch connected successfully", zap.String("index", cfg.Analytics.EventsIndex))

		comparableSource = store.NewElasticsearchEventSource(esClient.Client, cfg.Analytics.EventsIndex)
		deps["elasticsearch"] = esClient
	}

	// --- Analytics wiring ---
	events := store.NewPostgresEventStore(pg.DB)
	reviews := store.NewPostgresReviewStore(pg.DB)
	selector := similarity.NewSelector(comparableSource, reviews, store.NewPostgresAttendanceStore(pg.DB), log)
	cache := store.NewResultCache(rdb.Client, cfg.Analytics.CacheTTL)
	runner := forecastjob.NewRunner(events, selector, cache, log)

	handlers := map[string]camunda.JobHandler{
		pa.TaskType: pa.NewHandler(pa.LoadConfig(config.GetWorkerConfig(cfg, pa.TaskType)), runner, log),
		ps.TaskType: ps.NewHandler(ps.LoadConfig(config.GetWorkerConfig(cfg, ps.TaskType)), runner, log),
		pr.TaskType: pr.NewHandler(pr.LoadConfig(config.GetWorkerConfig(cfg, pr.TaskType)), runner, log),
		aer.TaskType: aer.NewHandler(
			aer.LoadConfig(config.GetWorkerConfig(cfg, aer.TaskType)), events, reviews, log,
		),
		re.TaskType: re.NewHandler(
			re.LoadConfig(config.GetWorkerConfig(cfg, re.TaskType), cfg.Analytics), pg.DB, rdb.Client, log,
		),
	}

	var jobWorkers []worker.JobWorker
	for taskType, handler := range handlers {
		jw := camunda.StartWorker(zeebe.GetClient(), taskType, config.GetWorkerConfig(cfg, taskType), handler, obs, log)
		if jw != nil {
			jobWorkers = append(jobWorkers, jw)
		}
	}
	zapLog.Info("workers registered", zap.Int("active", len(jobWorkers)), zap.Int("known", len(handlers)))

	// --- Health & Metrics Server ---
	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           newServeMux(deps, 5*time.Second),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	for _, jw := range jobWorkers {
		jw.Close()
		jw.AwaitClose()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}

	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}
	if err := rdb.Close(); err != nil {
		zapLog.Error("Error closing Redis client", zap.Error(err))
	}
	if err := pg.Close(); err != nil {
		zapLog.Error("Error closing PostgreSQL client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped")
}
