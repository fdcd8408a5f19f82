// internal/workers/analytics/analyze-event-reviews/handler.go
package analyzeeventreviews

import (
	"context"
	"errors"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"event-insights-workers/internal/analytics/insights"
	"event-insights-workers/internal/common/camunda"
	apperrors "event-insights-workers/internal/common/errors"
	"event-insights-workers/internal/common/logger"
	"event-insights-workers/internal/models"
	"event-insights-workers/internal/store"
)

const (
	TaskType = "analyze-event-reviews"
)

type EventGetter interface {
	GetEvent(ctx context.Context, id string) (*models.Event, error)
}

type ReviewFinder interface {
	FindByEvent(ctx context.Context, eventID string) ([]models.Review, error)
}

type Handler struct {
	config       *Config
	events       EventGetter
	reviews      ReviewFinder
	logger       logger.Logger
	errorHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, events EventGetter, reviews ReviewFinder, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		events:       events,
		reviews:      reviews,
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
	event, err := h.events.GetEvent(ctx, input.EventID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperrors.NewEventNotFoundError(input.EventID)
	}
	if err != nil {
		return nil, store.JobError("get event", err)
	}

	reviews, err := h.reviews.FindByEvent(ctx, input.EventID)
	if err != nil {
		return nil, store.JobError("find reviews", err)
	}

	result := insights.AnalyzeEventReviews(*event, reviews)

	h.logger.Info("reviews analyzed", map[string]interface{}{
		"eventId":       input.EventID,
		"reviewCount":   result.ReviewCount,
		"averageRating": result.AverageRating,
		"topics":        len(result.TopTopics),
	})

	return &result, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
