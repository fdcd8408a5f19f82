// internal/workers/analytics/recommend-events/models.go
package recommendevents

import (
	"event-insights-workers/internal/common/validation"
	"event-insights-workers/internal/models"
)

type Input struct {
	UserID    string   `json:"userId"`
	Interests []string `json:"interests,omitempty"`
	Refresh   bool     `json:"refresh,omitempty"`
}

type Output struct {
	Recommendations []models.RecommendationItem `json:"recommendations"`
}

var InputSchema = validation.JSONSchema{
	Type:     "object",
	Required: []string{"userId"},
	Properties: map[string]validation.Property{
		"userId": {
			Type:        "string",
			Pattern:     validation.StringPtr(validation.UUIDPattern),
			Description: "User to recommend events for",
		},
		"interests": {
			Type:        "array",
			Description: "Free-text interests matched against event categories",
			MaxItems:    validation.IntPtr(50),
			Items:       &validation.Property{Type: "string"},
		},
		"refresh": {
			Type:        "boolean",
			Description: "Bypass and overwrite the cached recommendations",
		},
	},
}
