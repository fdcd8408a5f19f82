// Package store reads events, reviews, attendance and users from PostgreSQL
// and Elasticsearch, and caches computed analytics in Redis.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"event-insights-workers/internal/models"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrInvalidID    = errors.New("invalid id")
	ErrSearchFailed = errors.New("search failed")
)

type EventStore interface {
	GetEvent(ctx context.Context, id string) (*models.Event, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.Event, error)
	FindByCategoryBefore(ctx context.Context, category string, before time.Time) ([]models.Event, error)
	FindUpcoming(ctx context.Context, after time.Time) ([]models.Event, error)
}

type ReviewStore interface {
	FindByEvent(ctx context.Context, eventID string) ([]models.Review, error)
	FindByEvents(ctx context.Context, eventIDs []string) ([]models.Review, error)
	FindByUser(ctx context.Context, userID string) ([]models.Review, error)
	// FindPeerReviews returns reviews by anyone but userID on eventIDs rated at least minRating.
	FindPeerReviews(ctx context.Context, userID string, eventIDs []string, minRating int) ([]models.Review, error)
	FindByUsers(ctx context.Context, userIDs []string, minRating int) ([]models.Review, error)
	RatingStats(ctx context.Context, eventIDs []string) ([]models.EventRatingStats, error)
}

type AttendanceStore interface {
	FindByEvents(ctx context.Context, eventIDs []string) ([]models.AttendanceSnapshot, error)
}

type UserStore interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// ValidateID rejects anything that is not a UUID.
func ValidateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

func validateIDs(ids []string) error {
	for _, id := range ids {
		if err := ValidateID(id); err != nil {
			return err
		}
	}
	return nil
}
