// internal/workers/analytics/recommend-events/handler_test.go
package recommendevents

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"event-insights-workers/internal/common/config"
	apperrors "event-insights-workers/internal/common/errors"
	"event-insights-workers/internal/common/logger"
	"event-insights-workers/internal/models"
	"event-insights-workers/internal/store"
)

const (
	userID    = "9d1e2f30-4a5b-4c6d-8e7f-0a1b2c3d4e5f"
	peerID    = "8c0d1e2f-3a4b-4c5d-9e6f-7a8b9c0d1e2f"
	pastID    = "0a6b3c55-8f7e-4d2c-b1a0-9e8d7c6b5a41"
	upcoming1 = "1b7c4d66-9a8f-4e3d-a2b1-0f9e8d7c6b52"
	upcoming2 = "2c8d5e77-0b9a-4f4e-b3c2-1a0f9e8d7c63"
	upcoming3 = "3d9e6f88-1c0b-4a5f-84d3-2b1a0f9e8d74"
)

var (
	eventCols  = []string{"id", "title", "description", "category", "location", "date", "start_time", "image", "creator_id"}
	reviewCols = []string{"id", "event_id", "user_id", "rating", "comment", "sentiment", "admin_response", "created_at"}
	now        = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		Timeout:  10 * time.Second,
		CacheTTL: 5 * time.Minute,
		Limit:    10,
	}
}

func createTestHandler(t *testing.T, db *sql.DB, redisClient *redis.Client, config *Config) *Handler {
	if config == nil {
		config = createTestConfig()
	}
	handler := NewHandler(config, db, redisClient, logger.NewTestLogger(t))
	handler.now = func() time.Time { return now }
	return handler
}

func setupMocks(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *miniredis.Miniredis, *redis.Client) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mr := miniredis.RunT(t)
	return db, mock, mr, redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func expectUserExists(mock sqlmock.Sqlmock, exists bool) {
	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM users WHERE id = \$1\)`).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(exists))
}

func expectUpcoming(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(`SELECT (.+) FROM events LEFT JOIN \((.+)\) ratings ON ratings.event_id = events.id WHERE date > \$1 ORDER BY ratings.avg_rating IS NULL, ratings.avg_rating DESC, date ASC LIMIT \$2`).
		WithArgs(now, store.UpcomingLimit).
		WillReturnRows(sqlmock.NewRows(eventCols).
			AddRow(upcoming1, "Go Workshop", nil, "Workshop", "Community Hall", now.AddDate(0, 0, 5), "10:00", nil, nil).
			AddRow(upcoming2, "Jazz Night", "Live jazz trio", "Concert", "Blue Note", now.AddDate(0, 0, 9), "20:00", "https://img.example.com/jazz.png", nil).
			AddRow(upcoming3, "Rust Workshop", nil, "Workshop", "Community Hall", now.AddDate(0, 0, 12), "10:00", nil, nil))
}

func ids(items []models.RecommendationItem) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_ReturningUser(t *testing.T) {
	db, mock, mr, redisClient := setupMocks(t)

	expectUserExists(mock, true)
	mock.ExpectQuery(`SELECT (.+) FROM reviews WHERE user_id = \$1`).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows(reviewCols).
			AddRow("r1", pastID, userID, 5, "Loved the labs", "positive", nil, now.AddDate(0, -1, 0)))
	mock.ExpectQuery(`SELECT (.+) FROM events WHERE id = ANY\(\$1\)`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(eventCols).
			AddRow(pastID, "Python Workshop", nil, "Workshop", "Community Hall", now.AddDate(0, -1, -1), "10:00", nil, nil))
	mock.ExpectQuery(`SELECT (.+) FROM reviews WHERE event_id = ANY\(\$1\) AND user_id <> \$2 AND rating >= \$3`).
		WithArgs(sqlmock.AnyArg(), userID, 4).
		WillReturnRows(sqlmock.NewRows(reviewCols).
			AddRow("r2", pastID, peerID, 5, "Great", "positive", nil, now.AddDate(0, -1, 0)))
	mock.ExpectQuery(`SELECT (.+) FROM reviews WHERE user_id = ANY\(\$1\) AND rating >= \$2`).
		WithArgs(sqlmock.AnyArg(), 4).
		WillReturnRows(sqlmock.NewRows(reviewCols).
			AddRow("r2", pastID, peerID, 5, "Great", "positive", nil, now.AddDate(0, -1, 0)).
			AddRow("r3", upcoming1, peerID, 5, "Preview session was great", "positive", nil, now.AddDate(0, 0, -1)))
	expectUpcoming(mock)
	mock.ExpectQuery(`SELECT event_id, AVG\(rating\)::float8, COUNT\(\*\) FROM reviews`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"event_id", "avg", "count"}).
			AddRow(upcoming2, 4.8, 10))

	handler := createTestHandler(t, db, redisClient, nil)
	output, err := handler.Execute(context.Background(), &Input{UserID: userID})
	require.NoError(t, err)

	// popularity 100, content-based 75, collaborative 20
	require.Len(t, output.Recommendations, 3)
	assert.Equal(t, []string{upcoming2, upcoming3, upcoming1}, ids(output.Recommendations))
	assert.Equal(t, 100, output.Recommendations[0].MatchScore)
	assert.Equal(t, "https://img.example.com/jazz.png", output.Recommendations[0].Image)
	assert.Equal(t, "Because you enjoyed Workshop events", output.Recommendations[1].Reason)
	assert.Equal(t, "Liked by 1 attendees with similar taste", output.Recommendations[2].Reason)
	assert.NoError(t, mock.ExpectationsWereMet())

	assert.True(t, mr.Exists(store.CacheKey(store.KindRecommendations, userID)))
}

func TestHandler_Execute_ColdStart(t *testing.T) {
	tests := []struct {
		name      string
		interests []string
		stats     *sqlmock.Rows
		wantIDs   []string
	}{
		{
			name:      "interests match title and category",
			interests: []string{"  JAZZ ", ""},
			stats:     sqlmock.NewRows([]string{"event_id", "avg", "count"}),
			wantIDs:   []string{upcoming2},
		},
		{
			name:    "popular events without interests",
			stats:   sqlmock.NewRows([]string{"event_id", "avg", "count"}).AddRow(upcoming1, 3.5, 2).AddRow(upcoming3, 4.5, 4),
			wantIDs: []string{upcoming3, upcoming1},
		},
		{
			name:    "nothing rated yet",
			stats:   sqlmock.NewRows([]string{"event_id", "avg", "count"}),
			wantIDs: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, _, redisClient := setupMocks(t)

			expectUserExists(mock, true)
			mock.ExpectQuery(`SELECT (.+) FROM reviews WHERE user_id = \$1`).
				WithArgs(userID).
				WillReturnRows(sqlmock.NewRows(reviewCols))
			expectUpcoming(mock)
			mock.ExpectQuery(`SELECT event_id, AVG\(rating\)::float8, COUNT\(\*\) FROM reviews`).
				WithArgs(sqlmock.AnyArg()).
				WillReturnRows(tt.stats)

			handler := createTestHandler(t, db, redisClient, nil)
			output, err := handler.Execute(context.Background(), &Input{UserID: userID, Interests: tt.interests})
			require.NoError(t, err)

			assert.Equal(t, tt.wantIDs, ids(output.Recommendations))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestHandler_Execute_CacheHit(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	redisClient, redisMock := redismock.NewClientMock()
	cached := Output{Recommendations: []models.RecommendationItem{{
		ID:         upcoming2,
		Title:      "Jazz Night",
		Date:       now.AddDate(0, 0, 9),
		Category:   "Concert",
		Location:   "Blue Note",
		MatchScore: 70,
		Reason:     "Matches your interest in jazz",
	}}}
	payload, _ := json.Marshal(cached)
	redisMock.ExpectGet(store.CacheKey(store.KindRecommendations, userID+":jazz")).SetVal(string(payload))
	mock.ExpectQuery(`SELECT (.+) FROM reviews WHERE user_id = \$1`).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows(reviewCols))

	handler := createTestHandler(t, db, redisClient, nil)
	output, err := handler.Execute(context.Background(), &Input{UserID: userID, Interests: []string{"Jazz"}})

	require.NoError(t, err)
	assert.Equal(t, cached, *output)
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestHandler_Execute_CacheHitDropsStaleItems(t *testing.T) {
	db, mock, _, redisClient := setupMocks(t)
	handler := createTestHandler(t, db, redisClient, nil)

	require.NoError(t, handler.cache.Set(context.Background(), store.KindRecommendations, userID, Output{
		Recommendations: []models.RecommendationItem{
			{ID: upcoming1, Title: "Go Workshop", Date: now.Add(30 * time.Second), MatchScore: 90},
			{ID: upcoming2, Title: "Jazz Night", Date: now.AddDate(0, 0, 9), MatchScore: 80},
			{ID: upcoming3, Title: "Rust Workshop", Date: now.AddDate(0, 0, 12), MatchScore: 70},
		},
	}))
	mock.ExpectQuery(`SELECT (.+) FROM reviews WHERE user_id = \$1`).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows(reviewCols).
			AddRow("r9", upcoming3, userID, 4, "Early access session", "positive", nil, now.Add(time.Minute)))

	handler.now = func() time.Time { return now.Add(2 * time.Minute) }
	output, err := handler.Execute(context.Background(), &Input{UserID: userID})

	require.NoError(t, err)
	assert.Equal(t, []string{upcoming2}, ids(output.Recommendations))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_CacheHitReviewLookupFails(t *testing.T) {
	db, mock, _, redisClient := setupMocks(t)
	handler := createTestHandler(t, db, redisClient, nil)

	require.NoError(t, handler.cache.Set(context.Background(), store.KindRecommendations, userID, Output{
		Recommendations: []models.RecommendationItem{{ID: upcoming2, Date: now.AddDate(0, 0, 9)}},
	}))
	mock.ExpectQuery(`SELECT (.+) FROM reviews WHERE user_id = \$1`).
		WithArgs(userID).
		WillReturnError(errors.New("pq: connection reset"))

	output, err := handler.Execute(context.Background(), &Input{UserID: userID})

	assert.Nil(t, output)
	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeQueryExecutionFailed, stdErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		wantCode  apperrors.ErrorCode
	}{
		{
			name: "unknown user",
			setupMock: func(mock sqlmock.Sqlmock) {
				expectUserExists(mock, false)
			},
			wantCode: apperrors.ErrCodeUserNotFound,
		},
		{
			name: "user lookup times out",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM users WHERE id = \$1\)`).
					WithArgs(userID).
					WillReturnError(context.DeadlineExceeded)
			},
			wantCode: apperrors.ErrCodeQueryTimeout,
		},
		{
			name: "upcoming query fails",
			setupMock: func(mock sqlmock.Sqlmock) {
				expectUserExists(mock, true)
				mock.ExpectQuery(`SELECT (.+) FROM reviews WHERE user_id = \$1`).
					WithArgs(userID).
					WillReturnRows(sqlmock.NewRows(reviewCols))
				mock.ExpectQuery(`SELECT (.+) FROM events LEFT JOIN (.+) WHERE date > \$1`).
					WillReturnError(errors.New("pq: too many connections"))
			},
			wantCode: apperrors.ErrCodeQueryExecutionFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, _, redisClient := setupMocks(t)
			tt.setupMock(mock)

			output, err := createTestHandler(t, db, redisClient, nil).
				Execute(context.Background(), &Input{UserID: userID})
			assert.Nil(t, output)

			stdErr, ok := apperrors.AsStandardError(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, stdErr.Code)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCacheID(t *testing.T) {
	assert.Equal(t, userID, cacheID(userID, nil))
	assert.Equal(t, userID, cacheID(userID, []string{" ", ""}))
	assert.Equal(t, userID+":art,jazz", cacheID(userID, []string{"Jazz", " art"}))
}

func TestLoadConfig(t *testing.T) {
	cfg := LoadConfig(config.WorkerConfig{Timeout: 15000}, config.AnalyticsConfig{CacheTTL: time.Minute})
	assert.Equal(t, 15*time.Second, cfg.Timeout)
	assert.Equal(t, time.Minute, cfg.CacheTTL)
	assert.Equal(t, 10, cfg.Limit)
}
