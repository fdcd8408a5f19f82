// internal/analytics/forecast/sentiment.go
package forecast

import (
	"fmt"
	"math"
	"strings"

	"event-insights-workers/internal/analytics/textsentiment"
	"event-insights-workers/internal/models"
)

const (
	riskNegativeThreshold = 15
	highRiskThreshold     = 25
	complaintKeywordLimit = 10

	earlyStartMinutes = 10 * 60
	lateStartMinutes  = 20 * 60
)

// PredictSentiment estimates the positive/neutral/negative split for target.
func PredictSentiment(target models.Event, comparables []models.ComparableEvent) models.SentimentForecast {
	var pos, neu, neg, withReviews int
	var complaints []string
	for _, c := range comparables {
		p, n, g := c.SentimentCounts(textsentiment.ReviewSentiment)
		if p+n+g > 0 {
			withReviews++
		}
		pos += p
		neu += n
		neg += g
		for _, r := range c.Reviews {
			if textsentiment.ReviewSentiment(r) == models.SentimentNegative && strings.TrimSpace(r.Comment) != "" {
				complaints = append(complaints, r.Comment)
			}
		}
	}

	total := pos + neu + neg
	if len(comparables) == 0 || total == 0 {
		return defaultSentimentForecast(target, len(comparables))
	}

	split := Percentages(pos, neu, neg)
	insights := []string{
		fmt.Sprintf("Based on %d reviews from %d similar %s events.", total, withReviews, categoryLabel(target.Category)),
	}

	switch lf := LocationFactor(target.Location); {
	case lf > 1.1:
		moved := minInt(5, split.Negative)
		split.Negative -= moved
		split.Positive += moved
		insights = append(insights, fmt.Sprintf("Events at %s tend to receive more favourable reviews.", strings.TrimSpace(target.Location)))
	case lf < 0.9:
		moved := minInt(3, split.Positive)
		split.Positive -= moved
		split.Negative += moved
		insights = append(insights, fmt.Sprintf("Events at %s tend to receive less favourable reviews.", strings.TrimSpace(target.Location)))
	}

	if mins, ok := target.StartMinutes(); ok && (mins < earlyStartMinutes || mins > lateStartMinutes) {
		moved := minInt(2, split.Positive)
		split.Positive -= moved
		split.Neutral += moved
		insights = append(insights, "The unusual start time may temper attendee enthusiasm.")
	}

	switch sf := seasonalFactor(target.Date.Month()); {
	case sf > 1.1:
		fromNeg := minInt(2, split.Negative)
		split.Negative -= fromNeg
		rest := 3 - fromNeg
		fromNeu := minInt(rest, split.Neutral)
		split.Neutral -= fromNeu
		rest -= fromNeu
		extra := minInt(rest, split.Negative)
		split.Negative -= extra
		split.Positive += fromNeg + fromNeu + extra
		insights = append(insights, fmt.Sprintf("%s is a popular month for events, which tends to lift sentiment.", target.Date.Month()))
	case sf < 0.9:
		give := minInt(3, split.Positive)
		split.Positive -= give
		toNeg := (give + 1) / 2
		split.Negative += toNeg
		split.Neutral += give - toNeg
		insights = append(insights, fmt.Sprintf("Events in %s historically receive more muted reviews.", target.Date.Month()))
	}

	split = renormalize(split)
	insights = append(insights, fmt.Sprintf("Expected sentiment: %d%% positive, %d%% neutral, %d%% negative.",
		split.Positive, split.Neutral, split.Negative))

	return models.SentimentForecast{
		SentimentPrediction:     split,
		ConfidenceLevel:         reviewConfidence.level(withReviews, total),
		SimilarEventsCount:      len(comparables),
		TotalReviewsAnalyzed:    total,
		Insights:                insights,
		RisksAndRecommendations: risksAndRecommendations(split, complaints),
	}
}

func defaultSentimentForecast(target models.Event, similar int) models.SentimentForecast {
	return models.SentimentForecast{
		SentimentPrediction:  DefaultSentiment,
		ConfidenceLevel:      models.ConfidenceLow,
		SimilarEventsCount:   similar,
		TotalReviewsAnalyzed: 0,
		Insights: []string{
			fmt.Sprintf("No reviewed %s events are available yet; showing the typical sentiment split.", categoryLabel(target.Category)),
		},
		RisksAndRecommendations: models.RisksAndRecommendations{
			Risks:           []models.Risk{},
			Recommendations: append([]string(nil), genericRecommendations...),
		},
	}
}

func risksAndRecommendations(split models.SentimentSplit, complaints []string) models.RisksAndRecommendations {
	out := models.RisksAndRecommendations{Risks: []models.Risk{}, Recommendations: []string{}}

	if split.Negative > riskNegativeThreshold {
		level := "medium"
		if split.Negative > highRiskThreshold {
			level = "high"
		}
		out.Risks = append(out.Risks, models.Risk{
			Level:       level,
			Description: fmt.Sprintf("Predicted negative sentiment of %d%% is above the %d%% comfort level.", split.Negative, riskNegativeThreshold),
		})
	}

	keywords := textsentiment.KeywordFrequencies(complaints, complaintKeywordLimit)
	out.Recommendations = adviceFor(keywords)
	if len(out.Recommendations) == 0 {
		out.Recommendations = append(out.Recommendations, genericRecommendations...)
	}
	return out
}

// adviceFor returns each matching advice line once, in table order.
func adviceFor(keywords []string) []string {
	advice := []string{}
	for _, entry := range KeywordRecommendations {
		if matchesAny(keywords, entry.triggers) {
			advice = append(advice, entry.advice)
		}
	}
	return advice
}

func matchesAny(keywords, triggers []string) bool {
	for _, k := range keywords {
		for _, t := range triggers {
			if matchesTrigger(k, t) {
				return true
			}
		}
	}
	return false
}

// inflections are the endings a keyword may add to a trigger and still count
// as the same word ("delays", "waiting", "scheduled").
var inflections = []string{"", "s", "es", "d", "ed", "ing"}

func matchesTrigger(keyword, trigger string) bool {
	if !strings.HasPrefix(keyword, trigger) {
		return false
	}
	rest := keyword[len(trigger):]
	for _, suffix := range inflections {
		if rest == suffix {
			return true
		}
	}
	return false
}

// Percentages rounds the positive and neutral shares; negative takes the remainder.
func Percentages(pos, neu, neg int) models.SentimentSplit {
	total := pos + neu + neg
	if total == 0 {
		return models.SentimentSplit{}
	}
	p := int(math.Round(float64(pos) / float64(total) * 100))
	n := int(math.Round(float64(neu) / float64(total) * 100))
	g := 100 - p - n
	if g < 0 {
		n += g
		g = 0
	}
	return models.SentimentSplit{Positive: p, Neutral: n, Negative: g}
}

func renormalize(s models.SentimentSplit) models.SentimentSplit {
	total := s.Total()
	if total == 100 || total <= 0 {
		return s
	}
	return Percentages(s.Positive, s.Neutral, s.Negative)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
