package predictrating

import (
	"context"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"event-insights-workers/internal/analytics/forecast"
	"event-insights-workers/internal/common/camunda"
	apperrors "event-insights-workers/internal/common/errors"
	"event-insights-workers/internal/common/logger"
	"event-insights-workers/internal/models"
	"event-insights-workers/internal/store"
	"event-insights-workers/internal/workers/analytics/forecastjob"
)

const (
	TaskType = "predict-rating"
)

var Model = forecastjob.Model[Output]{
	Name:      "rating",
	CacheKind: store.KindRating,
	Predict:   forecast.PredictRating,
	Summary: func(f Output) (models.ConfidenceLevel, bool) {
		return f.ConfidenceLevel, f.TotalReviewsAnalyzed == 0
	},
}

type Handler struct {
	config       *Config
	runner       *forecastjob.Runner
	logger       logger.Logger
	errorHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, runner *forecastjob.Runner, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		runner:       runner,
		logger:       log,
		errorHandler: apperrors.NewErrorHandler(log),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := camunda.DecodeVariables(job, InputSchema, &input); err != nil {
		h.errorHandler.HandleJobError(context.Background(), client, job, err)
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.errorHandler.HandleJobError(context.Background(), client, job, err)
		return err
	}

	if err := camunda.CompleteJob(context.Background(), client, job, output); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return err
	}
	return nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	return forecastjob.Run(ctx, h.runner, Model, input, h.logger)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
