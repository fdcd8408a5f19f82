// Package forecast holds the attendance, sentiment and rating models. All
// functions are pure: they work on comparable events already fetched by the caller.
package forecast

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"event-insights-workers/internal/analytics/textsentiment"
	"event-insights-workers/internal/models"
)

const (
	splitThreshold      = 10.0
	ratingThreshold     = 15.0
	sentimentThreshold  = 15.0
	seasonThreshold     = 0.15
	highRatingCutoff    = 4.0
	goodSentimentCutoff = 70.0
)

// BaselineFactor names the factor attached when attendance falls back to the
// category default.
const BaselineFactor = "Category Baseline"

type dataPoint struct {
	attendance float64
	weekend    bool
	evening    bool
	month      time.Month
	sentiment  float64
	rating     float64
	rated      bool
}

func attendancePoints(comparables []models.ComparableEvent) []dataPoint {
	points := make([]dataPoint, 0, len(comparables))
	for _, c := range comparables {
		count := c.AttendanceCount()
		if count <= 0 {
			continue
		}
		rating, rated := c.AverageRating()
		points = append(points, dataPoint{
			attendance: float64(count),
			weekend:    c.Event.IsWeekend(),
			evening:    c.Event.IsEvening(),
			month:      c.Event.Date.Month(),
			sentiment:  sentimentScore(c),
			rating:     rating,
			rated:      rated > 0,
		})
	}
	return points
}

// sentimentScore is 100 per positive and 50 per neutral review over all
// classifiable reviews, or 50 when none can be classified.
func sentimentScore(c models.ComparableEvent) float64 {
	pos, neu, neg := c.SentimentCounts(textsentiment.ReviewSentiment)
	total := pos + neu + neg
	if total == 0 {
		return 50
	}
	return (100*float64(pos) + 50*float64(neu)) / float64(total)
}

// PredictAttendance estimates attendance for target from its comparable events.
func PredictAttendance(target models.Event, comparables []models.ComparableEvent) models.AttendanceForecast {
	points := attendancePoints(comparables)
	if len(points) == 0 {
		return defaultAttendanceForecast(target, len(comparables))
	}

	all := make([]float64, len(points))
	for i, p := range points {
		all[i] = p.attendance
	}
	estimate := mean(all)
	factors := []models.Factor{}

	weekend, weekday := splitAttendance(points, func(p dataPoint) bool { return p.weekend })
	if len(weekend) > 0 && len(weekday) > 0 {
		we, wd := mean(weekend), mean(weekday)
		if target.IsWeekend() {
			estimate = we
		} else {
			estimate = wd
		}
		if diff := percentDiff(we, wd); math.Abs(diff) > splitThreshold {
			factors = append(factors, weekendFactor(target.IsWeekend(), diff))
		}
	}

	evening, daytime := splitAttendance(points, func(p dataPoint) bool { return p.evening })
	if len(evening) > 0 && len(daytime) > 0 {
		ev, day := mean(evening), mean(daytime)
		if target.IsEvening() {
			estimate *= ev / day
		}
		if diff := percentDiff(ev, day); math.Abs(diff) > splitThreshold {
			factors = append(factors, eveningFactor(target.IsEvening(), diff))
		}
	}

	if sf, ok := monthFactor(points, target.Date.Month()); ok {
		estimate *= sf
		if math.Abs(sf-1) > seasonThreshold {
			factors = append(factors, seasonFactor(target.Date.Month(), sf))
		}
	}

	lf := LocationFactor(target.Location)
	estimate *= lf
	if lf != 1.0 {
		factors = append(factors, locationFactorDescription(target.Location, lf))
	}

	if f, ok := ratingSplitFactor(points); ok {
		factors = append(factors, f)
	}
	if f, ok := sentimentSplitFactor(points); ok {
		factors = append(factors, f)
	}

	predicted := int(math.Round(estimate))
	spread := int(math.Round(stdDev(all)))

	return models.AttendanceForecast{
		PredictedAttendance: predicted,
		MinAttendance:       maxInt(0, predicted-spread),
		MaxAttendance:       predicted + spread,
		ConfidenceLevel:     attendanceConfidence.level(len(points), 0),
		SimilarEventsCount:  len(comparables),
		InfluencingFactors:  factors,
	}
}

func defaultAttendanceForecast(target models.Event, similar int) models.AttendanceForecast {
	base := DefaultAttendanceFor(target.Category)
	return models.AttendanceForecast{
		PredictedAttendance: base,
		MinAttendance:       int(math.Round(float64(base) * (1 - defaultBandPercent))),
		MaxAttendance:       int(math.Round(float64(base) * (1 + defaultBandPercent))),
		ConfidenceLevel:     models.ConfidenceLow,
		SimilarEventsCount:  similar,
		InfluencingFactors: []models.Factor{{
			Name:        BaselineFactor,
			Impact:      models.ImpactPositive,
			Description: fmt.Sprintf("No attendance history for similar events; using the typical %s turnout", categoryLabel(target.Category)),
		}},
	}
}

func splitAttendance(points []dataPoint, pred func(dataPoint) bool) (yes, no []float64) {
	for _, p := range points {
		if pred(p) {
			yes = append(yes, p.attendance)
		} else {
			no = append(no, p.attendance)
		}
	}
	return yes, no
}

// monthFactor compares the target month's mean against the mean of all month means.
func monthFactor(points []dataPoint, month time.Month) (float64, bool) {
	byMonth := make(map[time.Month][]float64)
	for _, p := range points {
		byMonth[p.month] = append(byMonth[p.month], p.attendance)
	}
	target, ok := byMonth[month]
	if len(byMonth) <= 1 || !ok {
		return 1, false
	}

	months := make([]int, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, int(m))
	}
	sort.Ints(months)
	means := make([]float64, 0, len(months))
	for _, m := range months {
		means = append(means, mean(byMonth[time.Month(m)]))
	}
	overall := mean(means)
	if overall == 0 {
		return 1, false
	}
	return mean(target) / overall, true
}

func ratingSplitFactor(points []dataPoint) (models.Factor, bool) {
	var high, low []float64
	for _, p := range points {
		if !p.rated {
			continue
		}
		if p.rating >= highRatingCutoff {
			high = append(high, p.attendance)
		} else {
			low = append(low, p.attendance)
		}
	}
	if len(high) == 0 || len(low) == 0 {
		return models.Factor{}, false
	}
	diff := percentDiff(mean(high), mean(low))
	if math.Abs(diff) <= ratingThreshold {
		return models.Factor{}, false
	}
	return models.Factor{
		Name:        "Event Rating",
		Impact:      impactOf(diff > 0),
		Description: fmt.Sprintf("Highly rated events in this category draw %d%% %s attendees", absPercent(diff), moreOrFewer(diff)),
	}, true
}

func sentimentSplitFactor(points []dataPoint) (models.Factor, bool) {
	var good, rest []float64
	for _, p := range points {
		if p.sentiment >= goodSentimentCutoff {
			good = append(good, p.attendance)
		} else {
			rest = append(rest, p.attendance)
		}
	}
	if len(good) == 0 || len(rest) == 0 {
		return models.Factor{}, false
	}
	diff := percentDiff(mean(good), mean(rest))
	if math.Abs(diff) <= sentimentThreshold {
		return models.Factor{}, false
	}
	return models.Factor{
		Name:        "Attendee Sentiment",
		Impact:      impactOf(diff > 0),
		Description: fmt.Sprintf("Events with mostly positive reviews draw %d%% %s attendees", absPercent(diff), moreOrFewer(diff)),
	}, true
}

func weekendFactor(targetWeekend bool, diff float64) models.Factor {
	if targetWeekend {
		return models.Factor{
			Name:        "Weekend",
			Impact:      impactOf(diff > 0),
			Description: fmt.Sprintf("Weekend events attract %d%% %s attendees than weekday events", absPercent(diff), moreOrFewer(diff)),
		}
	}
	return models.Factor{
		Name:        "Weekday",
		Impact:      impactOf(diff < 0),
		Description: fmt.Sprintf("Weekday events attract %d%% %s attendees than weekend events", absPercent(-diff), moreOrFewer(-diff)),
	}
}

func eveningFactor(targetEvening bool, diff float64) models.Factor {
	if targetEvening {
		return models.Factor{
			Name:        "Time of Day",
			Impact:      impactOf(diff > 0),
			Description: fmt.Sprintf("Evening events attract %d%% %s attendees than daytime events", absPercent(diff), moreOrFewer(diff)),
		}
	}
	return models.Factor{
		Name:        "Time of Day",
		Impact:      impactOf(diff < 0),
		Description: fmt.Sprintf("Daytime events attract %d%% %s attendees than evening events", absPercent(-diff), moreOrFewer(-diff)),
	}
}

func seasonFactor(month time.Month, factor float64) models.Factor {
	diff := (factor - 1) * 100
	return models.Factor{
		Name:        "Season",
		Impact:      impactOf(diff > 0),
		Description: fmt.Sprintf("Events in %s draw %d%% %s attendees than the yearly average", month, absPercent(diff), moreOrFewer(diff)),
	}
}

func locationFactorDescription(location string, factor float64) models.Factor {
	diff := (factor - 1) * 100
	return models.Factor{
		Name:        "Location",
		Impact:      impactOf(diff > 0),
		Description: fmt.Sprintf("Events at %s typically draw %d%% %s attendees", strings.TrimSpace(location), absPercent(diff), moreOrFewer(diff)),
	}
}

func impactOf(positive bool) string {
	if positive {
		return models.ImpactPositive
	}
	return models.ImpactNegative
}

func moreOrFewer(diff float64) string {
	if diff >= 0 {
		return "more"
	}
	return "fewer"
}

func percentDiff(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return (a - b) / b * 100
}

func absPercent(diff float64) int {
	return int(math.Round(math.Abs(diff)))
}

func categoryLabel(category string) string {
	c := strings.TrimSpace(category)
	if c == "" {
		return "event"
	}
	return c
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdDev is the population standard deviation.
func stdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	variance := 0.0
	for _, v := range values {
		variance += (v - m) * (v - m)
	}
	return math.Sqrt(variance / float64(len(values)))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
