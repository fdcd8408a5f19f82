// internal/workers/analytics/recommend-events/handler.go
package recommendevents

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"

	"event-insights-workers/internal/analytics/recommend"
	"event-insights-workers/internal/common/camunda"
	apperrors "event-insights-workers/internal/common/errors"
	"event-insights-workers/internal/common/logger"
	"event-insights-workers/internal/models"
	"event-insights-workers/internal/store"
)

const (
	TaskType = "recommend-events"
)

type Handler struct {
	config       *Config
	users        store.UserStore
	events       store.EventStore
	reviews      store.ReviewStore
	cache        *store.ResultCache
	engine       *recommend.Engine
	logger       logger.Logger
	errorHandler *apperrors.ErrorHandler
	now          func() time.Time
}

func NewHandler(config *Config, db *sql.DB, redis *redis.Client, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		users:        store.NewPostgresUserStore(db),
		events:       store.NewPostgresEventStore(db),
		reviews:      store.NewPostgresReviewStore(db),
		cache:        store.NewResultCache(redis, config.CacheTTL),
		engine:       recommend.NewEngine(config.Limit),
		logger:       log,
		errorHandler: apperrors.NewErrorHandler(log),
		now:          time.Now,
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
	key := cacheID(input.UserID, input.Interests)
	if !input.Refresh {
		var cached Output
		found, err := h.cache.Get(ctx, store.KindRecommendations, key, &cached)
		if err != nil {
			h.logger.Warn("cache read failed", map[string]interface{}{"userId": input.UserID, "error": err.Error()})
		} else if found {
			return h.dropExpired(ctx, input.UserID, &cached)
		}
	}

	exists, err := h.users.Exists(ctx, input.UserID)
	if err != nil {
		return nil, store.JobError("check user", err)
	}
	if !exists {
		return nil, apperrors.NewUserNotFoundError(input.UserID)
	}

	now := h.now()
	in, err := h.loadInput(ctx, input, now)
	if err != nil {
		return nil, err
	}

	output := &Output{Recommendations: h.engine.Recommend(in, now)}

	h.logger.Info("recommendations computed", map[string]interface{}{
		"userId":          input.UserID,
		"reviewCount":     len(in.UserReviews),
		"peers":           len(distinct(in.PeerReviews, func(r models.Review) string { return r.UserID })),
		"candidates":      len(in.Upcoming),
		"recommendations": len(output.Recommendations),
		"coldStart":       len(in.UserReviews) == 0,
	})

	if err := h.cache.Set(ctx, store.KindRecommendations, key, output); err != nil {
		h.logger.Warn("cache write failed", map[string]interface{}{"userId": input.UserID, "error": err.Error()})
	}
	return output, nil
}

// dropExpired removes cached items that have started or that the user has
// reviewed since the list was computed.
func (h *Handler) dropExpired(ctx context.Context, userID string, cached *Output) (*Output, error) {
	userReviews, err := h.reviews.FindByUser(ctx, userID)
	if err != nil {
		return nil, store.JobError("find user reviews", err)
	}
	reviewed := make(map[string]struct{}, len(userReviews))
	for _, r := range userReviews {
		reviewed[r.EventID] = struct{}{}
	}

	now := h.now()
	kept := make([]models.RecommendationItem, 0, len(cached.Recommendations))
	for _, item := range cached.Recommendations {
		if _, ok := reviewed[item.ID]; ok || !item.Date.After(now) {
			continue
		}
		kept = append(kept, item)
	}
	if dropped := len(cached.Recommendations) - len(kept); dropped > 0 {
		h.logger.Debug("dropped stale cached recommendations", map[string]interface{}{"userId": userID, "dropped": dropped})
	}
	return &Output{Recommendations: kept}, nil
}

// loadInput gathers everything the engine ranks with: the user's reviews,
// their peers' likes, and the upcoming catalogue with its rating aggregates.
func (h *Handler) loadInput(ctx context.Context, input *Input, now time.Time) (recommend.Input, error) {
	in := recommend.Input{UserID: input.UserID, Interests: input.Interests}

	userReviews, err := h.reviews.FindByUser(ctx, input.UserID)
	if err != nil {
		return in, store.JobError("find user reviews", err)
	}
	in.UserReviews = userReviews

	reviewedIDs := distinct(userReviews, func(r models.Review) string { return r.EventID })
	if in.ReviewedEvents, err = h.events.FindByIDs(ctx, reviewedIDs); err != nil {
		return in, store.JobError("find reviewed events", err)
	}

	var liked []models.Review
	for _, r := range userReviews {
		if r.Rating >= recommend.LikedRating {
			liked = append(liked, r)
		}
	}
	likedIDs := distinct(liked, func(r models.Review) string { return r.EventID })
	if in.PeerReviews, err = h.reviews.FindPeerReviews(ctx, input.UserID, likedIDs, recommend.LikedRating); err != nil {
		return in, store.JobError("find peer reviews", err)
	}

	peers := distinct(in.PeerReviews, func(r models.Review) string { return r.UserID })
	if in.PeerLikes, err = h.reviews.FindByUsers(ctx, peers, recommend.LikedRating); err != nil {
		return in, store.JobError("find peer likes", err)
	}

	if in.Upcoming, err = h.events.FindUpcoming(ctx, now); err != nil {
		return in, store.JobError("find upcoming events", err)
	}

	upcomingIDs := make([]string, len(in.Upcoming))
	for i, e := range in.Upcoming {
		upcomingIDs[i] = e.ID
	}
	stats, err := h.reviews.RatingStats(ctx, upcomingIDs)
	if err != nil {
		return in, store.JobError("rating stats", err)
	}
	in.Ratings = make(map[string]models.EventRatingStats, len(stats))
	for _, st := range stats {
		in.Ratings[st.EventID] = st
	}

	return in, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

// distinct returns the unique keys of reviews in first-seen order.
func distinct(reviews []models.Review, key func(models.Review) string) []string {
	seen := make(map[string]struct{}, len(reviews))
	out := []string{}
	for _, r := range reviews {
		k := key(r)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// cacheID scopes cached recommendations to the user and the normalized
// interest list they were computed for.
func cacheID(userID string, interests []string) string {
	normalized := make([]string, 0, len(interests))
	for _, i := range interests {
		if i = strings.ToLower(strings.TrimSpace(i)); i != "" {
			normalized = append(normalized, i)
		}
	}
	if len(normalized) == 0 {
		return userID
	}
	sort.Strings(normalized)
	return userID + ":" + strings.Join(normalized, ",")
}
