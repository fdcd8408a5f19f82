// Package insights aggregates the reviews of a single event into a sentiment
// breakdown, topic list and human-readable insight lines.
package insights

import (
	"fmt"
	"math"
	"strings"

	"event-insights-workers/internal/analytics/forecast"
	"event-insights-workers/internal/analytics/textsentiment"
	"event-insights-workers/internal/models"
)

const (
	TopTopicsLimit     = 10
	topAspectsLimit    = 5
	aspectLimit        = 3
	strongPositive     = 70
	concerningNegative = 30
)

// NotEnoughReviews is the only insight returned for an event without reviews.
const NotEnoughReviews = "Not enough reviews to generate insights."

// AnalyzeEventReviews labels every review, then aggregates sentiment, rating and topics.
// A stored sentiment label takes precedence over the computed one.
func AnalyzeEventReviews(event models.Event, reviews []models.Review) models.EventReviewInsight {
	if len(reviews) == 0 {
		return models.EventReviewInsight{
			Event:              event,
			Insights:           []string{NotEnoughReviews},
			SentimentBreakdown: models.SentimentSplit{},
			AverageRating:      0,
			ReviewCount:        0,
			TopTopics:          []string{},
		}
	}

	var pos, neu, neg, ratingSum, rated int
	allTerms := make([][]string, 0, len(reviews))
	var positiveTerms, negativeTerms [][]string

	for _, r := range reviews {
		analysis := textsentiment.AnalyzeText(r.Comment)
		label := r.Sentiment
		if label == "" {
			label = analysis.Sentiment
		}

		switch label {
		case models.SentimentPositive:
			pos++
			positiveTerms = append(positiveTerms, analysis.TopTerms)
		case models.SentimentNegative:
			neg++
			negativeTerms = append(negativeTerms, analysis.TopTerms)
		default:
			neu++
		}

		if r.Rating > 0 {
			ratingSum += r.Rating
			rated++
		}
		allTerms = append(allTerms, analysis.TopTerms)
	}

	breakdown := forecast.Percentages(pos, neu, neg)
	avg := 0.0
	if rated > 0 {
		avg = math.Round(float64(ratingSum)/float64(rated)*100) / 100
	}
	topics := textsentiment.MergeTermLists(allTerms, TopTopicsLimit)

	lines := []string{
		fmt.Sprintf("Average rating is %.1f out of 5 from %d reviews.", avg, len(reviews)),
		fmt.Sprintf("Sentiment breakdown: %d%% positive, %d%% neutral, %d%% negative.",
			breakdown.Positive, breakdown.Neutral, breakdown.Negative),
	}
	if len(topics) > 0 {
		lines = append(lines, "Most discussed aspects: "+strings.Join(head(topics, topAspectsLimit), ", ")+".")
	}
	if liked := textsentiment.MergeTermLists(positiveTerms, aspectLimit); len(liked) > 0 {
		lines = append(lines, "Attendees appreciated: "+strings.Join(liked, ", ")+".")
	}
	if disliked := textsentiment.MergeTermLists(negativeTerms, aspectLimit); len(disliked) > 0 {
		lines = append(lines, "Areas for improvement: "+strings.Join(disliked, ", ")+".")
	}
	lines = append(lines, closingLine(breakdown))

	return models.EventReviewInsight{
		Event:              event,
		Insights:           lines,
		SentimentBreakdown: breakdown,
		AverageRating:      avg,
		ReviewCount:        len(reviews),
		TopTopics:          topics,
	}
}

func closingLine(b models.SentimentSplit) string {
	switch {
	case b.Positive > strongPositive:
		return "Attendees loved this event. Consider running it again with a similar format."
	case b.Negative > concerningNegative:
		return "A significant share of attendees were unhappy. Address the improvement areas before the next edition."
	default:
		return "Feedback is mixed. Small improvements to the weaker areas could lift satisfaction."
	}
}

func head(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
