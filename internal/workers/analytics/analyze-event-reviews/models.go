package analyzeeventreviews

import (
	"event-insights-workers/internal/common/validation"
	"event-insights-workers/internal/models"
)

type Input struct {
	EventID string `json:"eventId"`
}

// Output is the review insight for one event.
type Output = models.EventReviewInsight

var InputSchema = validation.JSONSchema{
	Type:     "object",
	Required: []string{"eventId"},
	Properties: map[string]validation.Property{
		"eventId": {
			Type:        "string",
			Pattern:     validation.StringPtr(validation.UUIDPattern),
			Description: "Event whose reviews are analyzed",
		},
	},
}
