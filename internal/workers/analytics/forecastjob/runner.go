// Package forecastjob runs one forecast model for one event. The three
// forecast workers share it; they differ only in the model they plug in.
package forecastjob

import (
	"context"
	"errors"
	"time"

	apperrors "event-insights-workers/internal/common/errors"
	"event-insights-workers/internal/common/logger"
	"event-insights-workers/internal/common/metrics"
	"event-insights-workers/internal/common/validation"
	"event-insights-workers/internal/models"
	"event-insights-workers/internal/store"
)

type Input struct {
	EventID string `json:"eventId"`
	Refresh bool   `json:"refresh,omitempty"`
}

// InputSchema validates the variables of every forecast job.
var InputSchema = validation.JSONSchema{
	Type:     "object",
	Required: []string{"eventId"},
	Properties: map[string]validation.Property{
		"eventId": {
			Type:        "string",
			Pattern:     validation.StringPtr(validation.UUIDPattern),
			Description: "Event to forecast",
		},
		"refresh": {
			Type:        "boolean",
			Description: "Bypass and overwrite the cached forecast",
		},
	},
}

// EventGetter loads the target event.
type EventGetter interface {
	GetEvent(ctx context.Context, id string) (*models.Event, error)
}

// ComparableSelector finds the past events a forecast is based on.
type ComparableSelector interface {
	Select(ctx context.Context, target models.Event, now time.Time) ([]models.ComparableEvent, error)
}

// Model plugs a forecast function into the runner.
type Model[T any] struct {
	Name      string
	CacheKind string
	Predict   func(target models.Event, comparables []models.ComparableEvent) T
	// Summary reports the confidence of a result and whether it was built
	// from defaults for lack of data.
	Summary func(result T) (models.ConfidenceLevel, bool)
}

type Runner struct {
	events   EventGetter
	selector ComparableSelector
	cache    *store.ResultCache
	logger   logger.Logger
	now      func() time.Time
}

type Option func(*Runner)

// WithClock replaces time.Now as the cut-off for comparable events.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

func NewRunner(events EventGetter, selector ComparableSelector, cache *store.ResultCache, log logger.Logger, opts ...Option) *Runner {
	r := &Runner{
		events:   events,
		selector: selector,
		cache:    cache,
		logger:   log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run produces the forecast for input.EventID, serving it from the cache
// unless a refresh was requested.
func Run[T any](ctx context.Context, r *Runner, m Model[T], input *Input, log logger.Logger) (*T, error) {
	if log == nil {
		log = r.logger
	}
	fields := map[string]interface{}{"eventId": input.EventID, "model": m.Name}

	if !input.Refresh {
		var cached T
		found, err := r.cache.Get(ctx, m.CacheKind, input.EventID, &cached)
		if err != nil {
			log.Warn("cache read failed", merge(fields, map[string]interface{}{"error": err.Error()}))
		} else if found {
			log.Debug("forecast served from cache", fields)
			return &cached, nil
		}
	}

	event, err := r.events.GetEvent(ctx, input.EventID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperrors.NewEventNotFoundError(input.EventID)
	}
	if err != nil {
		return nil, store.JobError("get event", err)
	}

	comparables, err := r.selector.Select(ctx, *event, r.now())
	if err != nil {
		return nil, store.JobError("select comparable events", err)
	}

	result := m.Predict(*event, comparables)
	confidence, fallback := m.Summary(result)
	metrics.ObserveForecast(m.Name, string(confidence), fallback)

	log.Info("forecast computed", merge(fields, map[string]interface{}{
		"similarEvents": len(comparables),
		"confidence":    string(confidence),
		"usedFallback":  fallback,
	}))

	if err := r.cache.Set(ctx, m.CacheKind, input.EventID, result); err != nil {
		log.Warn("cache write failed", merge(fields, map[string]interface{}{"error": err.Error()}))
	}
	return &result, nil
}

func merge(base, extra map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}
