// internal/analytics/forecast/rating.go
package forecast

import (
	"fmt"
	"math"
	"strings"

	"event-insights-workers/internal/models"
)

const (
	maxReviewWeight = 50
	locationAdjust  = 0.2
	seasonalAdjust  = 0.1
	minRating       = 1.0
	maxRating       = 5.0
)

// PredictRating estimates the average star rating for target. Each comparable
// contributes its mean rating weighted by min(reviewCount, 50).
func PredictRating(target models.Event, comparables []models.ComparableEvent) models.RatingForecast {
	var weighted, totalWeight float64
	rated, reviews := 0, 0
	for _, c := range comparables {
		avg, count := c.AverageRating()
		if count == 0 {
			continue
		}
		w := float64(minInt(count, maxReviewWeight))
		weighted += avg * w
		totalWeight += w
		rated++
		reviews += count
	}

	if totalWeight == 0 {
		return models.RatingForecast{
			PredictedRating:      DefaultRating,
			ConfidenceLevel:      models.ConfidenceLow,
			SimilarEventsCount:   len(comparables),
			TotalReviewsAnalyzed: 0,
			RatingDistribution:   DistributionFor(DefaultRating),
			Factors:              []models.Factor{},
		}
	}

	rating := weighted / totalWeight
	factors := []models.Factor{}

	switch lf := LocationFactor(target.Location); {
	case lf > 1.1:
		rating += locationAdjust
		factors = append(factors, models.Factor{
			Name:        "Location",
			Impact:      models.ImpactPositive,
			Description: fmt.Sprintf("Events at %s are usually rated higher", strings.TrimSpace(target.Location)),
		})
	case lf < 0.9:
		rating -= locationAdjust
		factors = append(factors, models.Factor{
			Name:        "Location",
			Impact:      models.ImpactNegative,
			Description: fmt.Sprintf("Events at %s are usually rated lower", strings.TrimSpace(target.Location)),
		})
	}

	switch sf := seasonalFactor(target.Date.Month()); {
	case sf > 1.1:
		rating += seasonalAdjust
		factors = append(factors, models.Factor{
			Name:        "Season",
			Impact:      models.ImpactPositive,
			Description: fmt.Sprintf("Events held in %s tend to receive better ratings", target.Date.Month()),
		})
	case sf < 0.9:
		rating -= seasonalAdjust
		factors = append(factors, models.Factor{
			Name:        "Season",
			Impact:      models.ImpactNegative,
			Description: fmt.Sprintf("Events held in %s tend to receive lower ratings", target.Date.Month()),
		})
	}

	rating = math.Round(clamp(rating, minRating, maxRating)*10) / 10
	factors = append(factors, categoryFactors(target.Category, rating)...)

	return models.RatingForecast{
		PredictedRating:      rating,
		ConfidenceLevel:      reviewConfidence.level(rated, int(totalWeight)),
		SimilarEventsCount:   len(comparables),
		TotalReviewsAnalyzed: reviews,
		RatingDistribution:   DistributionFor(rating),
		Factors:              factors,
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
