// internal/store/postgres.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"event-insights-workers/internal/models"
)

// UpcomingLimit bounds the candidate catalogue loaded for recommendations.
const UpcomingLimit = 500

const eventColumns = `id, title, description, category, location, date, start_time, image, creator_id`

const reviewColumns = `id, event_id, user_id, rating, comment, sentiment, admin_response, created_at`

type PostgresEventStore struct {
	db *sql.DB
}

func NewPostgresEventStore(db *sql.DB) *PostgresEventStore {
	return &PostgresEventStore{db: db}
}

func (s *PostgresEventStore) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT `+eventColumns+`
		FROM events
		WHERE id = $1`, id)

	event, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("event %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	return &event, nil
}

func (s *PostgresEventStore) FindByIDs(ctx context.Context, ids []string) ([]models.Event, error) {
	if len(ids) == 0 {
		return []models.Event{}, nil
	}
	if err := validateIDs(ids); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+eventColumns+`
		FROM events
		WHERE id = ANY($1)
		ORDER BY date ASC`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("find events by id: %w", err)
	}
	return collectEvents(rows)
}

func (s *PostgresEventStore) FindByCategoryBefore(ctx context.Context, category string, before time.Time) ([]models.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+eventColumns+`
		FROM events
		WHERE LOWER(category) = LOWER($1) AND date < $2
		ORDER BY date DESC`, category, before)
	if err != nil {
		return nil, fmt.Errorf("find events by category: %w", err)
	}
	return collectEvents(rows)
}

// FindUpcoming returns up to UpcomingLimit events after the given time. Rated
// events come first, best average rating first, so a late but popular event is
// not cut off by the limit; unrated events follow in date order.
func (s *PostgresEventStore) FindUpcoming(ctx context.Context, after time.Time) ([]models.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+eventColumns+`
		FROM events
		LEFT JOIN (
			SELECT event_id, AVG(rating) AS avg_rating
			FROM reviews
			WHERE rating > 0
			GROUP BY event_id
		) ratings ON ratings.event_id = events.id
		WHERE date > $1
		ORDER BY ratings.avg_rating IS NULL, ratings.avg_rating DESC, date ASC
		LIMIT $2`, after, UpcomingLimit)
	if err != nil {
		return nil, fmt.Errorf("find upcoming events: %w", err)
	}
	return collectEvents(rows)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(row rowScanner) (models.Event, error) {
	var e models.Event
	var description, startTime, image, creator sql.NullString
	err := row.Scan(&e.ID, &e.Title, &description, &e.Category, &e.Location,
		&e.Date, &startTime, &image, &creator)
	if err != nil {
		return models.Event{}, err
	}
	e.Description = description.String
	e.StartTime = startTime.String
	e.ImageURL = image.String
	e.CreatorID = creator.String
	return e, nil
}

func collectEvents(rows *sql.Rows) ([]models.Event, error) {
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

type PostgresReviewStore struct {
	db *sql.DB
}

func NewPostgresReviewStore(db *sql.DB) *PostgresReviewStore {
	return &PostgresReviewStore{db: db}
}

func (s *PostgresReviewStore) FindByEvent(ctx context.Context, eventID string) ([]models.Review, error) {
	if err := ValidateID(eventID); err != nil {
		return nil, err
	}
	return s.query(ctx, "find reviews by event", `
		SELECT `+reviewColumns+`
		FROM reviews
		WHERE event_id = $1
		ORDER BY created_at ASC`, eventID)
}

func (s *PostgresReviewStore) FindByEvents(ctx context.Context, eventIDs []string) ([]models.Review, error) {
	if len(eventIDs) == 0 {
		return []models.Review{}, nil
	}
	if err := validateIDs(eventIDs); err != nil {
		return nil, err
	}
	return s.query(ctx, "find reviews by events", `
		SELECT `+reviewColumns+`
		FROM reviews
		WHERE event_id = ANY($1)
		ORDER BY created_at ASC`, pq.Array(eventIDs))
}

func (s *PostgresReviewStore) FindByUser(ctx context.Context, userID string) ([]models.Review, error) {
	if err := ValidateID(userID); err != nil {
		return nil, err
	}
	return s.query(ctx, "find reviews by user", `
		SELECT `+reviewColumns+`
		FROM reviews
		WHERE user_id = $1
		ORDER BY created_at ASC`, userID)
}

func (s *PostgresReviewStore) FindPeerReviews(ctx context.Context, userID string, eventIDs []string, minRating int) ([]models.Review, error) {
	if len(eventIDs) == 0 {
		return []models.Review{}, nil
	}
	if err := validateIDs(append([]string{userID}, eventIDs...)); err != nil {
		return nil, err
	}
	return s.query(ctx, "find peer reviews", `
		SELECT `+reviewColumns+`
		FROM reviews
		WHERE event_id = ANY($1) AND user_id <> $2 AND rating >= $3
		ORDER BY created_at ASC`, pq.Array(eventIDs), userID, minRating)
}

func (s *PostgresReviewStore) FindByUsers(ctx context.Context, userIDs []string, minRating int) ([]models.Review, error) {
	if len(userIDs) == 0 {
		return []models.Review{}, nil
	}
	if err := validateIDs(userIDs); err != nil {
		return nil, err
	}
	return s.query(ctx, "find reviews by users", `
		SELECT `+reviewColumns+`
		FROM reviews
		WHERE user_id = ANY($1) AND rating >= $2
		ORDER BY created_at ASC`, pq.Array(userIDs), minRating)
}

func (s *PostgresReviewStore) RatingStats(ctx context.Context, eventIDs []string) ([]models.EventRatingStats, error) {
	if len(eventIDs) == 0 {
		return []models.EventRatingStats{}, nil
	}
	if err := validateIDs(eventIDs); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT event_id, AVG(rating)::float8, COUNT(*)
		FROM reviews
		WHERE event_id = ANY($1) AND rating > 0
		GROUP BY event_id`, pq.Array(eventIDs))
	if err != nil {
		return nil, fmt.Errorf("rating stats: %w", err)
	}
	defer rows.Close()

	stats := []models.EventRatingStats{}
	for rows.Next() {
		var st models.EventRatingStats
		if err := rows.Scan(&st.EventID, &st.AverageRating, &st.ReviewCount); err != nil {
			return nil, fmt.Errorf("scan rating stats: %w", err)
		}
		stats = append(stats, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rating stats: %w", err)
	}
	return stats, nil
}

func (s *PostgresReviewStore) query(ctx context.Context, op, query string, args ...interface{}) ([]models.Review, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	reviews := []models.Review{}
	for rows.Next() {
		var r models.Review
		var comment, sentiment, adminResponse sql.NullString
		if err := rows.Scan(&r.ID, &r.EventID, &r.UserID, &r.Rating, &comment,
			&sentiment, &adminResponse, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		r.Comment = comment.String
		r.Sentiment = models.Sentiment(sentiment.String)
		r.AdminResponse = adminResponse.String
		reviews = append(reviews, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: iterate: %w", op, err)
	}
	return reviews, nil
}

type PostgresAttendanceStore struct {
	db *sql.DB
}

func NewPostgresAttendanceStore(db *sql.DB) *PostgresAttendanceStore {
	return &PostgresAttendanceStore{db: db}
}

// FindByEvents reads the attendance snapshot of each event. Events without a
// snapshot are simply absent from the result.
func (s *PostgresAttendanceStore) FindByEvents(ctx context.Context, eventIDs []string) ([]models.AttendanceSnapshot, error) {
	if len(eventIDs) == 0 {
		return []models.AttendanceSnapshot{}, nil
	}
	if err := validateIDs(eventIDs); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT event_id, total_attendance, daily_breakdown
		FROM event_analytics
		WHERE event_id = ANY($1)`, pq.Array(eventIDs))
	if err != nil {
		return nil, fmt.Errorf("find attendance: %w", err)
	}
	defer rows.Close()

	snapshots := []models.AttendanceSnapshot{}
	for rows.Next() {
		var snap models.AttendanceSnapshot
		var breakdown []byte
		if err := rows.Scan(&snap.EventID, &snap.TotalAttendance, &breakdown); err != nil {
			return nil, fmt.Errorf("scan attendance: %w", err)
		}
		if len(breakdown) > 0 {
			if err := json.Unmarshal(breakdown, &snap.DailyBreakdown); err != nil {
				return nil, fmt.Errorf("decode daily breakdown for %s: %w", snap.EventID, err)
			}
		}
		snapshots = append(snapshots, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attendance: %w", err)
	}
	return snapshots, nil
}

type PostgresUserStore struct {
	db *sql.DB
}

func NewPostgresUserStore(db *sql.DB) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

func (s *PostgresUserStore) Exists(ctx context.Context, id string) (bool, error) {
	if err := ValidateID(id); err != nil {
		return false, err
	}
	var exists bool
	if err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("check user: %w", err)
	}
	return exists, nil
}
