package forecastjob

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "event-insights-workers/internal/common/errors"
	"event-insights-workers/internal/common/logger"
	"event-insights-workers/internal/models"
	"event-insights-workers/internal/store"
)

const testEventID = "6f1c2a9e-0b7d-4c1e-9a35-2d8e7f4b1c60"

type mockEvents struct{ mock.Mock }

func (m *mockEvents) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	args := m.Called(ctx, id)
	if e, ok := args.Get(0).(*models.Event); ok {
		return e, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockSelector struct{ mock.Mock }

func (m *mockSelector) Select(ctx context.Context, target models.Event, now time.Time) ([]models.ComparableEvent, error) {
	args := m.Called(ctx, target, now)
	if c, ok := args.Get(0).([]models.ComparableEvent); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

// countModel reports how many comparables it saw, so tests can tell a cached
// result from a fresh one.
var countModel = Model[models.AttendanceForecast]{
	Name:      "attendance",
	CacheKind: store.KindAttendance,
	Predict: func(_ models.Event, comparables []models.ComparableEvent) models.AttendanceForecast {
		return models.AttendanceForecast{
			PredictedAttendance: 100,
			ConfidenceLevel:     models.ConfidenceMedium,
			SimilarEventsCount:  len(comparables),
			InfluencingFactors:  []models.Factor{},
		}
	},
	Summary: func(f models.AttendanceForecast) (models.ConfidenceLevel, bool) {
		return f.ConfidenceLevel, f.SimilarEventsCount == 0
	},
}

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func createTestEvent() *models.Event {
	return &models.Event{
		ID:       testEventID,
		Title:    "Summer Jazz Night",
		Category: "music",
		Location: "Riverside Park",
		Date:     fixedNow.AddDate(0, 0, 14),
	}
}

func createTestRunner(t *testing.T, events EventGetter, selector ComparableSelector, redisClient *redis.Client) *Runner {
	cache := store.NewResultCache(redisClient, time.Minute)
	return NewRunner(events, selector, cache, logger.NewTestLogger(t), WithClock(func() time.Time { return fixedNow }))
}

func setupMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr := miniredis.RunT(t)
	return mr, redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestRun_ComputesAndCaches(t *testing.T) {
	mr, client := setupMiniredis(t)
	events := &mockEvents{}
	selector := &mockSelector{}

	events.On("GetEvent", mock.Anything, testEventID).Return(createTestEvent(), nil).Once()
	selector.On("Select", mock.Anything, *createTestEvent(), fixedNow).
		Return(make([]models.ComparableEvent, 3), nil).Once()

	runner := createTestRunner(t, events, selector, client)
	got, err := Run(context.Background(), runner, countModel, &Input{EventID: testEventID}, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, got.SimilarEventsCount)

	raw, err := mr.Get(store.CacheKey(store.KindAttendance, testEventID))
	require.NoError(t, err)
	var cached models.AttendanceForecast
	require.NoError(t, json.Unmarshal([]byte(raw), &cached))
	assert.Equal(t, *got, cached)

	events.AssertExpectations(t)
	selector.AssertExpectations(t)
}

func TestRun_CacheHitSkipsStorage(t *testing.T) {
	mr, client := setupMiniredis(t)
	payload, _ := json.Marshal(models.AttendanceForecast{PredictedAttendance: 42, SimilarEventsCount: 9})
	require.NoError(t, mr.Set(store.CacheKey(store.KindAttendance, testEventID), string(payload)))

	events := &mockEvents{}
	selector := &mockSelector{}
	runner := createTestRunner(t, events, selector, client)

	got, err := Run(context.Background(), runner, countModel, &Input{EventID: testEventID}, nil)
	require.NoError(t, err)
	assert.Equal(t, 42, got.PredictedAttendance)
	events.AssertNotCalled(t, "GetEvent", mock.Anything, mock.Anything)
}

func TestRun_RefreshOverwritesCache(t *testing.T) {
	mr, client := setupMiniredis(t)
	payload, _ := json.Marshal(models.AttendanceForecast{PredictedAttendance: 42, SimilarEventsCount: 9})
	require.NoError(t, mr.Set(store.CacheKey(store.KindAttendance, testEventID), string(payload)))

	events := &mockEvents{}
	selector := &mockSelector{}
	events.On("GetEvent", mock.Anything, testEventID).Return(createTestEvent(), nil)
	selector.On("Select", mock.Anything, mock.Anything, fixedNow).Return([]models.ComparableEvent{}, nil)

	runner := createTestRunner(t, events, selector, client)
	got, err := Run(context.Background(), runner, countModel, &Input{EventID: testEventID, Refresh: true}, nil)
	require.NoError(t, err)
	assert.Equal(t, 100, got.PredictedAttendance)
	assert.Equal(t, 0, got.SimilarEventsCount)

	raw, _ := mr.Get(store.CacheKey(store.KindAttendance, testEventID))
	assert.Contains(t, raw, `"predictedAttendance":100`)
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name      string
		eventErr  error
		selectErr error
		wantCode  apperrors.ErrorCode
	}{
		{
			name:     "unknown event",
			eventErr: fmt.Errorf("event %s: %w", testEventID, store.ErrNotFound),
			wantCode: apperrors.ErrCodeEventNotFound,
		},
		{
			name:     "event query timeout",
			eventErr: fmt.Errorf("get event: %w", context.DeadlineExceeded),
			wantCode: apperrors.ErrCodeQueryTimeout,
		},
		{
			name:      "comparable search failure",
			selectErr: fmt.Errorf("find comparable events: %w: search events: 503", store.ErrSearchFailed),
			wantCode:  apperrors.ErrCodeSearchQueryFailed,
		},
		{
			name:      "review query failure",
			selectErr: fmt.Errorf("load reviews: %w", errors.New("pq: connection reset")),
			wantCode:  apperrors.ErrCodeQueryExecutionFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, client := setupMiniredis(t)
			events := &mockEvents{}
			selector := &mockSelector{}
			if tt.eventErr != nil {
				events.On("GetEvent", mock.Anything, testEventID).Return(nil, tt.eventErr)
			} else {
				events.On("GetEvent", mock.Anything, testEventID).Return(createTestEvent(), nil)
				selector.On("Select", mock.Anything, mock.Anything, fixedNow).Return(nil, tt.selectErr)
			}

			runner := createTestRunner(t, events, selector, client)
			_, err := Run(context.Background(), runner, countModel, &Input{EventID: testEventID}, nil)

			stdErr, ok := apperrors.AsStandardError(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, stdErr.Code)
		})
	}
}

func TestRun_CacheOutageDoesNotFailJob(t *testing.T) {
	mr, client := setupMiniredis(t)
	mr.Close()

	events := &mockEvents{}
	selector := &mockSelector{}
	events.On("GetEvent", mock.Anything, testEventID).Return(createTestEvent(), nil)
	selector.On("Select", mock.Anything, mock.Anything, fixedNow).Return(make([]models.ComparableEvent, 2), nil)

	runner := createTestRunner(t, events, selector, client)
	got, err := Run(context.Background(), runner, countModel, &Input{EventID: testEventID}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, got.SimilarEventsCount)
}

func TestRun_DisabledCache(t *testing.T) {
	events := &mockEvents{}
	selector := &mockSelector{}
	events.On("GetEvent", mock.Anything, testEventID).Return(createTestEvent(), nil).Twice()
	selector.On("Select", mock.Anything, mock.Anything, fixedNow).Return([]models.ComparableEvent{}, nil).Twice()

	runner := NewRunner(events, selector, store.NewResultCache(nil, 0), logger.NewNoOpLogger(),
		WithClock(func() time.Time { return fixedNow }))

	for i := 0; i < 2; i++ {
		_, err := Run(context.Background(), runner, countModel, &Input{EventID: testEventID}, nil)
		require.NoError(t, err)
	}
	events.AssertExpectations(t)
}
