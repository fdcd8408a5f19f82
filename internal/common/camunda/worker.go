// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"

	"event-insights-workers/internal/common/config"
	"event-insights-workers/internal/common/logger"
	"event-insights-workers/internal/common/metrics"
	"event-insights-workers/internal/common/observability"
)

// JobHandler reports the job outcome to the engine itself and returns the
// error it reported, if any.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job) error
}

// Instrument wraps handler with the job metrics every worker records.
func Instrument(taskType string, handler JobHandler, obs *observability.Observability, log logger.Logger) worker.JobHandler {
	return func(client worker.JobClient, job entities.Job) {
		active := metrics.WorkerJobsActive.WithLabelValues(taskType)
		active.Inc()
		defer active.Dec()

		start := time.Now()
		err := handler.Handle(client, job)
		elapsed := time.Since(start)

		status := "completed"
		if err != nil {
			status = "failed"
			log.Debug("handler returned error", map[string]interface{}{
				"taskType": taskType,
				"jobKey":   job.Key,
				"error":    err.Error(),
			})
		}

		metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(elapsed.Seconds())
		obs.RecordJobProcessed(context.Background(), taskType, status)
		obs.RecordJobDuration(context.Background(), taskType, elapsed, status)
	}
}

// StartWorker opens a job worker for taskType. It returns nil when the worker
// is disabled in configuration.
func StartWorker(
	client zbc.Client,
	taskType string,
	wcfg config.WorkerConfig,
	handler JobHandler,
	obs *observability.Observability,
	log logger.Logger,
) worker.JobWorker {
	if !wcfg.Enabled {
		log.Info("worker disabled", map[string]interface{}{"taskType": taskType})
		return nil
	}

	jobWorker := client.NewJobWorker().
		JobType(taskType).
		Handler(Instrument(taskType, handler, obs, log)).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(config.GetDuration(wcfg.Timeout)).
		Name(taskType + "-worker").
		Open()

	log.Info("worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": wcfg.MaxJobsActive,
		"timeout_ms":    wcfg.Timeout,
	})

	return jobWorker
}
