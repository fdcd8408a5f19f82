// Package similarity finds past events comparable to a target event and joins
// them with their attendance and reviews.
package similarity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"event-insights-workers/internal/common/logger"
	"event-insights-workers/internal/models"
)

// EventSource returns candidate events of a category dated before a cut-off.
type EventSource interface {
	FindByCategoryBefore(ctx context.Context, category string, before time.Time) ([]models.Event, error)
}

type ReviewSource interface {
	FindByEvents(ctx context.Context, eventIDs []string) ([]models.Review, error)
}

type AttendanceSource interface {
	FindByEvents(ctx context.Context, eventIDs []string) ([]models.AttendanceSnapshot, error)
}

type Selector struct {
	events     EventSource
	reviews    ReviewSource
	attendance AttendanceSource
	logger     logger.Logger
}

func NewSelector(events EventSource, reviews ReviewSource, attendance AttendanceSource, log logger.Logger) *Selector {
	return &Selector{
		events:     events,
		reviews:    reviews,
		attendance: attendance,
		logger:     log.WithFields(map[string]interface{}{"component": "similarity"}),
	}
}

// FilterComparable keeps events of the target's category dated strictly
// before now, excluding the target itself.
func FilterComparable(target models.Event, candidates []models.Event, now time.Time) []models.Event {
	out := make([]models.Event, 0, len(candidates))
	for _, c := range candidates {
		if c.ID == target.ID {
			continue
		}
		if !strings.EqualFold(strings.TrimSpace(c.Category), strings.TrimSpace(target.Category)) {
			continue
		}
		if !c.Date.Before(now) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Select returns the comparable events for target. An empty slice is a valid result.
func (s *Selector) Select(ctx context.Context, target models.Event, now time.Time) ([]models.ComparableEvent, error) {
	candidates, err := s.events.FindByCategoryBefore(ctx, target.Category, now)
	if err != nil {
		return nil, fmt.Errorf("find comparable events: %w", err)
	}

	events := FilterComparable(target, candidates, now)
	if len(events) == 0 {
		s.logger.Debug("no comparable events", map[string]interface{}{
			"eventId":  target.ID,
			"category": target.Category,
		})
		return []models.ComparableEvent{}, nil
	}

	ids := make([]string, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}

	snapshots, err := s.attendance.FindByEvents(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load attendance: %w", err)
	}
	reviews, err := s.reviews.FindByEvents(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load reviews: %w", err)
	}

	return Join(events, snapshots, reviews), nil
}

// Join attaches attendance snapshots and reviews to each event, preserving event order.
func Join(events []models.Event, snapshots []models.AttendanceSnapshot, reviews []models.Review) []models.ComparableEvent {
	byEvent := make(map[string]*models.AttendanceSnapshot, len(snapshots))
	for i := range snapshots {
		byEvent[snapshots[i].EventID] = &snapshots[i]
	}
	reviewsByEvent := make(map[string][]models.Review)
	for _, r := range reviews {
		reviewsByEvent[r.EventID] = append(reviewsByEvent[r.EventID], r)
	}

	out := make([]models.ComparableEvent, len(events))
	for i, e := range events {
		out[i] = models.ComparableEvent{
			Event:      e,
			Attendance: byEvent[e.ID],
			Reviews:    reviewsByEvent[e.ID],
		}
	}
	return out
}
