// internal/analytics/forecast/tables.go
package forecast

import (
	"strings"
	"time"

	"event-insights-workers/internal/models"
)

// CategoryDefaultAttendance is the fallback attendance estimate per category.
var CategoryDefaultAttendance = map[string]int{
	"Conference": 200,
	"Workshop":   40,
	"Seminar":    75,
	"Social":     100,
	"Concert":    300,
	"Exhibition": 150,
	"Sports":     250,
	"Webinar":    120,
}

const (
	defaultAttendance  = 80
	defaultBandPercent = 0.30
)

// DefaultAttendanceFor looks the category up case-insensitively.
func DefaultAttendanceFor(category string) int {
	c := strings.TrimSpace(category)
	for name, v := range CategoryDefaultAttendance {
		if strings.EqualFold(name, c) {
			return v
		}
	}
	return defaultAttendance
}

type locationFactor struct {
	keyword string
	factor  float64
}

// LocationFactors is matched in order against the event location; the first hit wins.
var LocationFactors = []locationFactor{
	{keyword: "virtual event", factor: 1.2},
	{keyword: "online", factor: 1.2},
	{keyword: "new york", factor: 1.2},
	{keyword: "san francisco", factor: 1.15},
	{keyword: "london", factor: 1.1},
	{keyword: "chicago", factor: 1.05},
	{keyword: "rural", factor: 0.85},
	{keyword: "outskirts", factor: 0.85},
}

// LocationFactor returns the traffic multiplier for a location, 1.0 when unknown.
func LocationFactor(location string) float64 {
	loc := strings.ToLower(location)
	if loc == "" {
		return 1.0
	}
	for _, lf := range LocationFactors {
		if strings.Contains(loc, lf.keyword) {
			return lf.factor
		}
	}
	return 1.0
}

// SeasonalFactors holds the fixed monthly multiplier used by the sentiment and rating models.
var SeasonalFactors = map[time.Month]float64{
	time.January:   0.85,
	time.February:  0.9,
	time.March:     1.0,
	time.April:     1.05,
	time.May:       1.15,
	time.June:      1.2,
	time.July:      1.15,
	time.August:    1.1,
	time.September: 1.05,
	time.October:   1.0,
	time.November:  0.9,
	time.December:  1.15,
}

func seasonalFactor(month time.Month) float64 {
	if f, ok := SeasonalFactors[month]; ok {
		return f
	}
	return 1.0
}

type distributionBand struct {
	min          float64
	distribution models.RatingDistribution
}

// RatingDistributionBands is ordered from the highest band down.
var RatingDistributionBands = []distributionBand{
	{min: 4.5, distribution: models.RatingDistribution{Five: 60, Four: 30, Three: 7, Two: 2, One: 1}},
	{min: 4.0, distribution: models.RatingDistribution{Five: 40, Four: 40, Three: 12, Two: 5, One: 3}},
	{min: 3.5, distribution: models.RatingDistribution{Five: 25, Four: 35, Three: 25, Two: 10, One: 5}},
	{min: 3.0, distribution: models.RatingDistribution{Five: 15, Four: 25, Three: 30, Two: 20, One: 10}},
	{min: 2.5, distribution: models.RatingDistribution{Five: 8, Four: 15, Three: 30, Two: 27, One: 20}},
}

var lowestRatingBand = models.RatingDistribution{Five: 5, Four: 10, Three: 20, Two: 30, One: 35}

// DistributionFor returns the fixed star split for an average rating.
func DistributionFor(rating float64) models.RatingDistribution {
	for _, b := range RatingDistributionBands {
		if rating >= b.min {
			return b.distribution
		}
	}
	return lowestRatingBand
}

type keywordAdvice struct {
	triggers []string
	advice   string
}

// KeywordRecommendations maps complaint keywords to canned advice, in priority order.
var KeywordRecommendations = []keywordAdvice{
	{
		triggers: []string{"time", "schedule", "late", "delay", "wait"},
		advice:   "Review the event schedule and build in buffers so sessions start and finish on time.",
	},
	{
		triggers: []string{"staff", "service", "rude", "help"},
		advice:   "Provide additional staff training focused on attendee service and responsiveness.",
	},
	{
		triggers: []string{"expensive", "cost", "price", "overpriced"},
		advice:   "Reassess ticket pricing or add early-bird and group discounts to improve perceived value.",
	},
	{
		triggers: []string{"venue", "facility", "crowded", "seating", "parking"},
		advice:   "Evaluate venue capacity and facilities, including seating, signage and parking.",
	},
}

var genericRecommendations = []string{
	"Gather attendee feedback during the event to address issues early.",
	"Communicate event details clearly ahead of time to set expectations.",
}

// DefaultSentiment is returned when no comparable reviews exist.
var DefaultSentiment = models.SentimentSplit{Positive: 65, Neutral: 25, Negative: 10}

const DefaultRating = 4.0

type categoryRule struct {
	category string
	atLeast  float64
	below    float64
	factor   models.Factor
}

// CategoryRatingRules attach qualitative factors to a predicted rating.
// A rule fires when the rating is >= atLeast (if set) or < below (if set).
var CategoryRatingRules = []categoryRule{
	{category: "Conference", atLeast: 4.3, factor: models.Factor{Name: "Content Quality", Impact: models.ImpactPositive, Description: "Similar conferences are consistently praised for the quality of their content"}},
	{category: "Conference", below: 3.5, factor: models.Factor{Name: "Content Quality", Impact: models.ImpactNegative, Description: "Similar conferences were criticised for content that missed attendee expectations"}},
	{category: "Workshop", atLeast: 4.3, factor: models.Factor{Name: "Hands-on Learning", Impact: models.ImpactPositive, Description: "Attendees value the hands-on learning in workshops like this one"}},
	{category: "Workshop", below: 3.5, factor: models.Factor{Name: "Practical Exercises", Impact: models.ImpactNegative, Description: "Similar workshops lacked practical exercises"}},
	{category: "Concert", atLeast: 4.3, factor: models.Factor{Name: "Performance", Impact: models.ImpactPositive, Description: "Performances at similar concerts were highly rated"}},
	{category: "Concert", below: 3.5, factor: models.Factor{Name: "Sound & Logistics", Impact: models.ImpactNegative, Description: "Similar concerts drew complaints about sound and logistics"}},
	{category: "Social", atLeast: 4.0, factor: models.Factor{Name: "Networking", Impact: models.ImpactPositive, Description: "Social events in this category offer strong networking opportunities"}},
	{category: "Sports", atLeast: 4.3, factor: models.Factor{Name: "Atmosphere", Impact: models.ImpactPositive, Description: "Similar sports events are known for their atmosphere"}},
	{category: "Webinar", below: 3.5, factor: models.Factor{Name: "Technical Quality", Impact: models.ImpactNegative, Description: "Similar webinars suffered from audio, video or platform issues"}},
}

func categoryFactors(category string, rating float64) []models.Factor {
	var out []models.Factor
	for _, r := range CategoryRatingRules {
		if !strings.EqualFold(r.category, strings.TrimSpace(category)) {
			continue
		}
		if (r.atLeast > 0 && rating >= r.atLeast) || (r.below > 0 && rating < r.below) {
			out = append(out, r.factor)
		}
	}
	return out
}

// Confidence thresholds shared by the models. Review volume is ignored when volumeHigh is zero.
type confidenceRule struct {
	highSamples int
	lowSamples  int
	volumeHigh  int
	volumeLow   int
}

var (
	attendanceConfidence = confidenceRule{highSamples: 5, lowSamples: 2}
	reviewConfidence     = confidenceRule{highSamples: 5, lowSamples: 2, volumeHigh: 50, volumeLow: 10}
)

func (c confidenceRule) level(samples, volume int) models.ConfidenceLevel {
	if samples < c.lowSamples || (c.volumeHigh > 0 && volume < c.volumeLow) {
		return models.ConfidenceLow
	}
	if samples >= c.highSamples && (c.volumeHigh == 0 || volume >= c.volumeHigh) {
		return models.ConfidenceHigh
	}
	return models.ConfidenceMedium
}
