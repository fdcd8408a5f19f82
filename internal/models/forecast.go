// internal/models/forecast.go
package models

import "time"

type ConfidenceLevel string

const (
	ConfidenceLow    ConfidenceLevel = "low"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceHigh   ConfidenceLevel = "high"
)

// Rank orders confidence levels low < medium < high.
func (c ConfidenceLevel) Rank() int {
	switch c {
	case ConfidenceHigh:
		return 2
	case ConfidenceMedium:
		return 1
	default:
		return 0
	}
}

const (
	ImpactPositive = "positive"
	ImpactNegative = "negative"
)

// Factor is a named, directional explanation attached to a forecast.
type Factor struct {
	Name        string `json:"name"`
	Impact      string `json:"impact"`
	Description string `json:"description"`
}

type AttendanceForecast struct {
	PredictedAttendance int             `json:"predictedAttendance"`
	MinAttendance       int             `json:"minAttendance"`
	MaxAttendance       int             `json:"maxAttendance"`
	ConfidenceLevel     ConfidenceLevel `json:"confidenceLevel"`
	SimilarEventsCount  int             `json:"similarEventsCount"`
	InfluencingFactors  []Factor        `json:"influencingFactors"`
}

// SentimentSplit holds whole-number percentages for the three sentiment buckets.
type SentimentSplit struct {
	Positive int `json:"positive"`
	Neutral  int `json:"neutral"`
	Negative int `json:"negative"`
}

func (s SentimentSplit) Total() int {
	return s.Positive + s.Neutral + s.Negative
}

type Risk struct {
	Level       string `json:"level"`
	Description string `json:"description"`
}

type RisksAndRecommendations struct {
	Risks           []Risk   `json:"risks"`
	Recommendations []string `json:"recommendations"`
}

type SentimentForecast struct {
	SentimentPrediction     SentimentSplit          `json:"sentimentPrediction"`
	ConfidenceLevel         ConfidenceLevel         `json:"confidenceLevel"`
	SimilarEventsCount      int                     `json:"similarEventsCount"`
	TotalReviewsAnalyzed    int                     `json:"totalReviewsAnalyzed"`
	Insights                []string                `json:"insights"`
	RisksAndRecommendations RisksAndRecommendations `json:"risksAndRecommendations"`
}

// RatingDistribution is the percentage of ratings expected per star.
type RatingDistribution struct {
	One   int `json:"1"`
	Two   int `json:"2"`
	Three int `json:"3"`
	Four  int `json:"4"`
	Five  int `json:"5"`
}

func (d RatingDistribution) Total() int {
	return d.One + d.Two + d.Three + d.Four + d.Five
}

type RatingForecast struct {
	PredictedRating      float64            `json:"predictedRating"`
	ConfidenceLevel      ConfidenceLevel    `json:"confidenceLevel"`
	SimilarEventsCount   int                `json:"similarEventsCount"`
	TotalReviewsAnalyzed int                `json:"totalReviewsAnalyzed"`
	RatingDistribution   RatingDistribution `json:"ratingDistribution"`
	Factors              []Factor           `json:"factors"`
}

type EventReviewInsight struct {
	Event              Event          `json:"event"`
	Insights           []string       `json:"insights"`
	SentimentBreakdown SentimentSplit `json:"sentimentBreakdown"`
	AverageRating      float64        `json:"averageRating"`
	ReviewCount        int            `json:"reviewCount"`
	TopTopics          []string       `json:"topTopics"`
}

type RecommendationItem struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Date       time.Time `json:"date"`
	Category   string    `json:"category"`
	Location   string    `json:"location"`
	Image      string    `json:"image,omitempty"`
	MatchScore int       `json:"matchScore"`
	Reason     string    `json:"reason"`
}
