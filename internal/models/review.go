// internal/models/review.go
package models

import "time"

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

type Review struct {
	ID            string    `json:"id"`
	EventID       string    `json:"eventId"`
	UserID        string    `json:"userId"`
	Rating        int       `json:"rating"`
	Comment       string    `json:"comment"`
	Sentiment     Sentiment `json:"sentiment,omitempty"`
	AdminResponse string    `json:"adminResponse,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// EventRatingStats is the per-event review aggregate used for popularity ranking.
type EventRatingStats struct {
	EventID       string  `json:"eventId"`
	AverageRating float64 `json:"averageRating"`
	ReviewCount   int     `json:"reviewCount"`
}
