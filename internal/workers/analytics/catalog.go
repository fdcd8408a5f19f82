// Package analytics lists the analytics job workers as activity registry entries.
package analytics

import (
	apperrors "event-insights-workers/internal/common/errors"
	"event-insights-workers/pkg/registry"

	aer "event-insights-workers/internal/workers/analytics/analyze-event-reviews"
	pa "event-insights-workers/internal/workers/analytics/predict-attendance"
	pr "event-insights-workers/internal/workers/analytics/predict-rating"
	ps "event-insights-workers/internal/workers/analytics/predict-sentiment"
	re "event-insights-workers/internal/workers/analytics/recommend-events"
)

const (
	category       = "analytics"
	defaultTimeout = "30s"
)

var storageErrors = []string{
	string(apperrors.ErrCodeInvalidInput),
	string(apperrors.ErrCodeQueryExecutionFailed),
	string(apperrors.ErrCodeQueryTimeout),
}

func objectSchema(props map[string]string) map[string]interface{} {
	properties := make(map[string]interface{}, len(props))
	for name, typ := range props {
		properties[name] = map[string]interface{}{"type": typ}
	}
	return map[string]interface{}{"type": "object", "properties": properties}
}

func forecastErrors() []string {
	return append([]string{
		string(apperrors.ErrCodeEventNotFound),
		string(apperrors.ErrCodeSearchQueryFailed),
		string(apperrors.ErrCodeSearchTimeout),
	}, storageErrors...)
}

// Activities returns one registry entry per worker, with the input schema
// each worker validates its variables against.
func Activities() []registry.Activity {
	forecastTags := []string{"forecast", "events"}
	return []registry.Activity{
		{
			ID:          "analytics.attendance.predict",
			DisplayName: "Predict Attendance",
			Description: "Forecasts attendance for an event from comparable past events",
			TaskType:    pa.TaskType,
			InputSchema: registry.SchemaMap(pa.InputSchema),
			OutputSchema: objectSchema(map[string]string{
				"predictedAttendance": "integer",
				"minAttendance":       "integer",
				"maxAttendance":       "integer",
				"confidenceLevel":     "string",
				"similarEventsCount":  "integer",
				"influencingFactors":  "array",
			}),
			ErrorCodes: forecastErrors(),
			Tags:       forecastTags,
		},
		{
			ID:          "analytics.sentiment.predict",
			DisplayName: "Predict Sentiment",
			Description: "Forecasts the review sentiment split for an event",
			TaskType:    ps.TaskType,
			InputSchema: registry.SchemaMap(ps.InputSchema),
			OutputSchema: objectSchema(map[string]string{
				"sentimentPrediction":     "object",
				"confidenceLevel":         "string",
				"similarEventsCount":      "integer",
				"totalReviewsAnalyzed":    "integer",
				"insights":                "array",
				"risksAndRecommendations": "object",
			}),
			ErrorCodes: forecastErrors(),
			Tags:       forecastTags,
		},
		{
			ID:          "analytics.rating.predict",
			DisplayName: "Predict Rating",
			Description: "Forecasts the average star rating and rating distribution for an event",
			TaskType:    pr.TaskType,
			InputSchema: registry.SchemaMap(pr.InputSchema),
			OutputSchema: objectSchema(map[string]string{
				"predictedRating":      "number",
				"confidenceLevel":      "string",
				"similarEventsCount":   "integer",
				"totalReviewsAnalyzed": "integer",
				"ratingDistribution":   "object",
				"factors":              "array",
			}),
			ErrorCodes: forecastErrors(),
			Tags:       forecastTags,
		},
		{
			ID:          "analytics.reviews.analyze",
			DisplayName: "Analyze Event Reviews",
			Description: "Summarizes the sentiment, rating and topics of an event's reviews",
			TaskType:    aer.TaskType,
			InputSchema: registry.SchemaMap(aer.InputSchema),
			OutputSchema: objectSchema(map[string]string{
				"event":              "object",
				"insights":           "array",
				"sentimentBreakdown": "object",
				"averageRating":      "number",
				"reviewCount":        "integer",
				"topTopics":          "array",
			}),
			ErrorCodes: append([]string{string(apperrors.ErrCodeEventNotFound)}, storageErrors...),
			Tags:       []string{"reviews", "sentiment"},
		},
		{
			ID:           "analytics.events.recommend",
			DisplayName:  "Recommend Events",
			Description:  "Ranks upcoming events for a user from their reviews, peers and interests",
			TaskType:     re.TaskType,
			InputSchema:  registry.SchemaMap(re.InputSchema),
			OutputSchema: objectSchema(map[string]string{"recommendations": "array"}),
			ErrorCodes:   append([]string{string(apperrors.ErrCodeUserNotFound)}, storageErrors...),
			Tags:         []string{"recommendations", "users"},
		},
	}
}

// Definitions fills in the fields shared by every analytics activity.
func Definitions() []registry.Activity {
	activities := Activities()
	for i := range activities {
		a := &activities[i]
		a.Category = category
		a.Version = "1.0.0"
		a.ImplementationStatus = registry.StatusCompleted
		a.Timeout = defaultTimeout
		a.Retries = maxRetries(a.ErrorCodes)
		a.Workflows = []string{}
	}
	return activities
}

// maxRetries is the largest retry budget among the codes an activity can raise.
func maxRetries(codes []string) int {
	max := 0
	for _, c := range codes {
		if n := apperrors.GetRetryCount(apperrors.ErrorCode(c)); n > max {
			max = n
		}
	}
	return max
}
