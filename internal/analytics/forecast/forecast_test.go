// internal/analytics/forecast/forecast_test.go
package forecast

import (
	"fmt"
	"testing"
	"time"

	"event-insights-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func createTestEvent(category, location string, date time.Time, start string) models.Event {
	return models.Event{
		ID:        "target",
		Title:     "Upcoming " + category,
		Category:  category,
		Location:  location,
		Date:      date,
		StartTime: start,
	}
}

func createComparable(id string, date time.Time, start string, attendance int, reviews ...models.Review) models.ComparableEvent {
	c := models.ComparableEvent{
		Event: models.Event{
			ID:        id,
			Category:  "Conference",
			Location:  "Berlin",
			Date:      date,
			StartTime: start,
		},
		Reviews: reviews,
	}
	if attendance >= 0 {
		c.Attendance = &models.AttendanceSnapshot{EventID: id, TotalAttendance: attendance}
	}
	return c
}

func createReviews(eventID string, n int, rating int, sentiment models.Sentiment, comment string) []models.Review {
	out := make([]models.Review, n)
	for i := range out {
		out[i] = models.Review{
			ID:        fmt.Sprintf("%s-%s-%d", eventID, sentiment, i),
			EventID:   eventID,
			Rating:    rating,
			Sentiment: sentiment,
			Comment:   comment,
		}
	}
	return out
}

func concat(groups ...[]models.Review) []models.Review {
	var out []models.Review
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// six weekday March conferences with no time-of-day or seasonal signal
func createConferenceHistory() []models.ComparableEvent {
	return []models.ComparableEvent{
		createComparable("c1", day(2024, time.March, 4), "", 100),
		createComparable("c2", day(2024, time.March, 5), "", 150),
		createComparable("c3", day(2024, time.March, 6), "", 120),
		createComparable("c4", day(2024, time.March, 7), "", 180),
		createComparable("c5", day(2024, time.March, 8), "", 90),
		createComparable("c6", day(2024, time.March, 11), "", 140),
	}
}

// ==========================
// Attendance
// ==========================

func TestPredictAttendance_MeanScenario(t *testing.T) {
	target := createTestEvent("Conference", "Berlin", day(2024, time.September, 10), "")

	result := PredictAttendance(target, createConferenceHistory())

	assert.Equal(t, 130, result.PredictedAttendance)
	assert.Equal(t, 99, result.MinAttendance)
	assert.Equal(t, 161, result.MaxAttendance)
	assert.Equal(t, models.ConfidenceHigh, result.ConfidenceLevel)
	assert.Equal(t, 6, result.SimilarEventsCount)
	assert.Empty(t, result.InfluencingFactors)
}

func TestPredictAttendance_CategoryDefaults(t *testing.T) {
	tests := []struct {
		category string
		expected int
		min      int
		max      int
	}{
		{category: "Workshop", expected: 40, min: 28, max: 52},
		{category: "Conference", expected: 200, min: 140, max: 260},
		{category: "Concert", expected: 300, min: 210, max: 390},
		{category: "webinar", expected: 120, min: 84, max: 156},
		{category: "Meetup", expected: 80, min: 56, max: 104},
	}

	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			target := createTestEvent(tt.category, "Berlin", day(2025, time.March, 4), "")
			for i := 0; i < 3; i++ {
				result := PredictAttendance(target, nil)
				assert.Equal(t, tt.expected, result.PredictedAttendance)
				assert.Equal(t, tt.min, result.MinAttendance)
				assert.Equal(t, tt.max, result.MaxAttendance)
				assert.Equal(t, models.ConfidenceLow, result.ConfidenceLevel)
				assert.Equal(t, 0, result.SimilarEventsCount)
			}
		})
	}
}

func TestPredictAttendance_IgnoresZeroAndMissingAttendance(t *testing.T) {
	target := createTestEvent("Workshop", "Berlin", day(2025, time.March, 4), "")
	comparables := []models.ComparableEvent{
		createComparable("z1", day(2024, time.March, 4), "", 0),
		createComparable("z2", day(2024, time.March, 5), "", -1),
	}

	result := PredictAttendance(target, comparables)

	assert.Equal(t, 40, result.PredictedAttendance)
	assert.Equal(t, models.ConfidenceLow, result.ConfidenceLevel)
	assert.Equal(t, 2, result.SimilarEventsCount)
}

func TestPredictAttendance_WeekendSubstitution(t *testing.T) {
	comparables := []models.ComparableEvent{
		createComparable("we1", day(2024, time.March, 9), "", 200),
		createComparable("we2", day(2024, time.March, 10), "", 220),
		createComparable("wd1", day(2024, time.March, 4), "", 100),
		createComparable("wd2", day(2024, time.March, 5), "", 120),
	}
	target := createTestEvent("Conference", "Berlin", day(2024, time.September, 14), "")

	result := PredictAttendance(target, comparables)

	assert.Equal(t, 210, result.PredictedAttendance)
	assert.Equal(t, 159, result.MinAttendance)
	assert.Equal(t, 261, result.MaxAttendance)
	assert.Equal(t, models.ConfidenceMedium, result.ConfidenceLevel)
	require.Len(t, result.InfluencingFactors, 1)
	assert.Equal(t, "Weekend", result.InfluencingFactors[0].Name)
	assert.Equal(t, models.ImpactPositive, result.InfluencingFactors[0].Impact)
	assert.Contains(t, result.InfluencingFactors[0].Description, "91% more")

	weekday := PredictAttendance(createTestEvent("Conference", "Berlin", day(2024, time.September, 10), ""), comparables)
	assert.Equal(t, 110, weekday.PredictedAttendance)
	require.Len(t, weekday.InfluencingFactors, 1)
	assert.Equal(t, "Weekday", weekday.InfluencingFactors[0].Name)
	assert.Equal(t, models.ImpactNegative, weekday.InfluencingFactors[0].Impact)
}

func TestPredictAttendance_EveningFactor(t *testing.T) {
	comparables := []models.ComparableEvent{
		createComparable("e1", day(2024, time.March, 4), "19:00", 150),
		createComparable("e2", day(2024, time.March, 5), "18:30", 150),
		createComparable("d1", day(2024, time.March, 6), "10:00", 100),
		createComparable("d2", day(2024, time.March, 7), "09:00:00", 100),
	}
	target := createTestEvent("Conference", "Berlin", day(2024, time.September, 10), "19:30")

	result := PredictAttendance(target, comparables)

	assert.Equal(t, 188, result.PredictedAttendance)
	assert.Equal(t, 163, result.MinAttendance)
	assert.Equal(t, 213, result.MaxAttendance)
	require.Len(t, result.InfluencingFactors, 1)
	assert.Equal(t, "Time of Day", result.InfluencingFactors[0].Name)
	assert.Contains(t, result.InfluencingFactors[0].Description, "50% more")

	daytime := PredictAttendance(createTestEvent("Conference", "Berlin", day(2024, time.September, 10), "11:00"), comparables)
	assert.Equal(t, 125, daytime.PredictedAttendance)
}

func TestPredictAttendance_SeasonalFactor(t *testing.T) {
	comparables := []models.ComparableEvent{
		createComparable("m1", day(2024, time.March, 4), "", 100),
		createComparable("m2", day(2024, time.March, 5), "", 100),
		createComparable("j1", day(2024, time.June, 3), "", 200),
		createComparable("j2", day(2024, time.June, 4), "", 200),
	}
	target := createTestEvent("Conference", "Berlin", day(2025, time.June, 10), "")

	result := PredictAttendance(target, comparables)

	assert.Equal(t, 200, result.PredictedAttendance)
	assert.Equal(t, 150, result.MinAttendance)
	assert.Equal(t, 250, result.MaxAttendance)
	require.Len(t, result.InfluencingFactors, 1)
	assert.Equal(t, "Season", result.InfluencingFactors[0].Name)
	assert.Equal(t, models.ImpactPositive, result.InfluencingFactors[0].Impact)

	// no data for the target month leaves the mean untouched
	october := PredictAttendance(createTestEvent("Conference", "Berlin", day(2025, time.October, 7), ""), comparables)
	assert.Equal(t, 150, october.PredictedAttendance)
}

func TestPredictAttendance_LocationFactor(t *testing.T) {
	target := createTestEvent("Conference", "Online (Zoom)", day(2024, time.September, 10), "")

	result := PredictAttendance(target, createConferenceHistory())

	assert.Equal(t, 156, result.PredictedAttendance)
	assert.Equal(t, 125, result.MinAttendance)
	assert.Equal(t, 187, result.MaxAttendance)
	require.Len(t, result.InfluencingFactors, 1)
	assert.Equal(t, "Location", result.InfluencingFactors[0].Name)
	assert.Contains(t, result.InfluencingFactors[0].Description, "20% more")
}

func TestLocationFactor(t *testing.T) {
	tests := []struct {
		location string
		expected float64
	}{
		{"Moscone Center, San Francisco", 1.15},
		{"virtual event", 1.2},
		{"New York City", 1.2},
		{"Rural community hall", 0.85},
		{"Berlin", 1.0},
		{"", 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			assert.Equal(t, tt.expected, LocationFactor(tt.location))
		})
	}
}

// ==========================
// Confidence
// ==========================

func TestConfidence_MonotonicInComparables(t *testing.T) {
	target := createTestEvent("Conference", "Berlin", day(2024, time.September, 10), "")
	build := func(n int) []models.ComparableEvent {
		out := make([]models.ComparableEvent, n)
		for i := range out {
			id := fmt.Sprintf("c%d", i)
			out[i] = createComparable(id, day(2024, time.March, 4+i), "", 100+10*i,
				createReviews(id, 12, 4, models.SentimentPositive, "great")...)
		}
		return out
	}

	expected := map[int]models.ConfidenceLevel{
		1: models.ConfidenceLow,
		2: models.ConfidenceMedium,
		5: models.ConfidenceHigh,
	}

	prev := -1
	for _, n := range []int{1, 2, 5} {
		comparables := build(n)
		a := PredictAttendance(target, comparables).ConfidenceLevel
		s := PredictSentiment(target, comparables).ConfidenceLevel
		r := PredictRating(target, comparables).ConfidenceLevel

		assert.Equal(t, expected[n], a, "attendance n=%d", n)
		assert.Equal(t, expected[n], s, "sentiment n=%d", n)
		assert.Equal(t, expected[n], r, "rating n=%d", n)
		assert.GreaterOrEqual(t, a.Rank(), prev)
		prev = a.Rank()
	}
}

func TestConfidence_ReviewVolume(t *testing.T) {
	rule := reviewConfidence
	assert.Equal(t, models.ConfidenceLow, rule.level(6, 9))
	assert.Equal(t, models.ConfidenceMedium, rule.level(6, 49))
	assert.Equal(t, models.ConfidenceHigh, rule.level(5, 50))
	assert.Equal(t, models.ConfidenceMedium, rule.level(4, 500))
}

// ==========================
// Sentiment
// ==========================

func createSentimentHistory() []models.ComparableEvent {
	ev1 := concat(
		createReviews("s1", 6, 5, models.SentimentPositive, "Loved it"),
		createReviews("s1", 2, 3, models.SentimentNeutral, "It was fine"),
		createReviews("s1", 2, 2, models.SentimentNegative, "The schedule slipped and sessions started late"),
	)
	ev2 := concat(
		createReviews("s2", 4, 5, models.SentimentPositive, "Great speakers"),
		createReviews("s2", 4, 3, models.SentimentNeutral, "Average"),
		createReviews("s2", 2, 1, models.SentimentNegative, "Seating was cramped"),
	)
	return []models.ComparableEvent{
		createComparable("s1", day(2024, time.March, 4), "", 100, ev1...),
		createComparable("s2", day(2024, time.March, 5), "", 100, ev2...),
	}
}

func TestPredictSentiment_BaseSplit(t *testing.T) {
	target := createTestEvent("Conference", "Berlin", day(2025, time.March, 4), "")

	result := PredictSentiment(target, createSentimentHistory())

	assert.Equal(t, models.SentimentSplit{Positive: 50, Neutral: 30, Negative: 20}, result.SentimentPrediction)
	assert.Equal(t, models.ConfidenceMedium, result.ConfidenceLevel)
	assert.Equal(t, 2, result.SimilarEventsCount)
	assert.Equal(t, 20, result.TotalReviewsAnalyzed)
	assert.NotEmpty(t, result.Insights)

	require.Len(t, result.RisksAndRecommendations.Risks, 1)
	assert.Equal(t, "medium", result.RisksAndRecommendations.Risks[0].Level)
	assert.Equal(t, []string{
		KeywordRecommendations[0].advice,
		KeywordRecommendations[3].advice,
	}, result.RisksAndRecommendations.Recommendations)
}

func TestPredictSentiment_Shifts(t *testing.T) {
	tests := []struct {
		name     string
		target   models.Event
		expected models.SentimentSplit
		risks    int
	}{
		{
			name:     "busy location, late start, peak season",
			target:   createTestEvent("Conference", "Online", day(2025, time.June, 10), "21:00"),
			expected: models.SentimentSplit{Positive: 56, Neutral: 31, Negative: 13},
			risks:    0,
		},
		{
			name:     "quiet location, off season",
			target:   createTestEvent("Conference", "Rural Hall", day(2025, time.January, 14), "12:00"),
			expected: models.SentimentSplit{Positive: 44, Neutral: 31, Negative: 25},
			risks:    1,
		},
		{
			name:     "early start only",
			target:   createTestEvent("Conference", "Berlin", day(2025, time.March, 4), "08:30"),
			expected: models.SentimentSplit{Positive: 48, Neutral: 32, Negative: 20},
			risks:    1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := PredictSentiment(tt.target, createSentimentHistory())
			assert.Equal(t, tt.expected, result.SentimentPrediction)
			assert.Equal(t, 100, result.SentimentPrediction.Total())
			assert.Len(t, result.RisksAndRecommendations.Risks, tt.risks)
		})
	}
}

func TestPredictSentiment_ShiftsNeverGoNegative(t *testing.T) {
	comparables := []models.ComparableEvent{
		createComparable("p1", day(2024, time.March, 4), "", 100, createReviews("p1", 3, 5, models.SentimentPositive, "great")...),
	}
	target := createTestEvent("Conference", "Online", day(2025, time.June, 10), "")

	result := PredictSentiment(target, comparables)

	assert.Equal(t, models.SentimentSplit{Positive: 100, Neutral: 0, Negative: 0}, result.SentimentPrediction)
	assert.Empty(t, result.RisksAndRecommendations.Risks)
	assert.Equal(t, genericRecommendations, result.RisksAndRecommendations.Recommendations)
}

func TestPredictSentiment_HighRiskAndGenericAdvice(t *testing.T) {
	reviews := concat(
		createReviews("n1", 1, 4, models.SentimentPositive, "good"),
		createReviews("n1", 3, 1, models.SentimentNegative, "Terrible sound and bad food"),
	)
	comparables := []models.ComparableEvent{createComparable("n1", day(2024, time.March, 4), "", 50, reviews...)}
	target := createTestEvent("Conference", "Berlin", day(2025, time.March, 4), "")

	result := PredictSentiment(target, comparables)

	assert.Equal(t, models.SentimentSplit{Positive: 25, Neutral: 0, Negative: 75}, result.SentimentPrediction)
	require.Len(t, result.RisksAndRecommendations.Risks, 1)
	assert.Equal(t, "high", result.RisksAndRecommendations.Risks[0].Level)
	assert.Equal(t, genericRecommendations, result.RisksAndRecommendations.Recommendations)
	assert.Equal(t, models.ConfidenceLow, result.ConfidenceLevel)
}

func TestPredictSentiment_Default(t *testing.T) {
	target := createTestEvent("Workshop", "Berlin", day(2025, time.March, 4), "")
	unlabelled := []models.ComparableEvent{
		createComparable("u1", day(2024, time.March, 4), "", 40, models.Review{ID: "r", EventID: "u1", Rating: 4}),
	}

	for _, comparables := range [][]models.ComparableEvent{nil, unlabelled} {
		result := PredictSentiment(target, comparables)
		assert.Equal(t, DefaultSentiment, result.SentimentPrediction)
		assert.Equal(t, models.ConfidenceLow, result.ConfidenceLevel)
		assert.Equal(t, 0, result.TotalReviewsAnalyzed)
		assert.Len(t, result.RisksAndRecommendations.Recommendations, 2)
		assert.Empty(t, result.RisksAndRecommendations.Risks)
	}
}

func TestPredictSentiment_ClassifiesUnlabelledReviews(t *testing.T) {
	target := createTestEvent("Conference", "Berlin", day(2025, time.March, 4), "")
	comparables := []models.ComparableEvent{
		createComparable("c1", day(2024, time.March, 4), "", 80, concat(
			createReviews("c1", 3, 5, "", "Loved it, great speakers"),
			createReviews("c1", 1, 1, "", "Terrible and boring"),
		)...),
	}

	result := PredictSentiment(target, comparables)

	assert.Equal(t, models.SentimentSplit{Positive: 75, Neutral: 0, Negative: 25}, result.SentimentPrediction)
	assert.Equal(t, 4, result.TotalReviewsAnalyzed)
	require.Len(t, result.RisksAndRecommendations.Risks, 1)
	assert.Equal(t, "medium", result.RisksAndRecommendations.Risks[0].Level)
}

func TestAdviceFor(t *testing.T) {
	tests := []struct {
		name     string
		keywords []string
		expected []string
	}{
		{
			name:     "longer words sharing a trigger prefix",
			keywords: []string{"helpful", "lifetime", "sometimes", "translated", "costume"},
			expected: []string{},
		},
		{
			name:     "inflected triggers",
			keywords: []string{"delays", "waiting", "prices"},
			expected: []string{KeywordRecommendations[0].advice, KeywordRecommendations[2].advice},
		},
		{
			name:     "exact triggers keep table order",
			keywords: []string{"parking", "rude", "schedule"},
			expected: []string{
				KeywordRecommendations[0].advice,
				KeywordRecommendations[1].advice,
				KeywordRecommendations[3].advice,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, adviceFor(tt.keywords))
		})
	}
}

func TestPercentages(t *testing.T) {
	tests := []struct {
		pos, neu, neg int
		expected      models.SentimentSplit
	}{
		{2, 0, 1, models.SentimentSplit{Positive: 67, Neutral: 0, Negative: 33}},
		{1, 1, 1, models.SentimentSplit{Positive: 33, Neutral: 33, Negative: 34}},
		{1, 1, 0, models.SentimentSplit{Positive: 50, Neutral: 50, Negative: 0}},
		{0, 0, 0, models.SentimentSplit{}},
	}
	for _, tt := range tests {
		got := Percentages(tt.pos, tt.neu, tt.neg)
		assert.Equal(t, tt.expected, got)
		if tt.pos+tt.neu+tt.neg > 0 {
			assert.Equal(t, 100, got.Total())
		}
	}
}

// ==========================
// Rating
// ==========================

func TestPredictRating_WeightedMean(t *testing.T) {
	comparables := []models.ComparableEvent{
		createComparable("r1", day(2024, time.March, 4), "", 100, createReviews("r1", 60, 5, models.SentimentPositive, "")...),
		createComparable("r2", day(2024, time.March, 5), "", 100, createReviews("r2", 10, 3, models.SentimentNeutral, "")...),
		createComparable("r3", day(2024, time.March, 6), "", 100),
	}
	target := createTestEvent("Conference", "Berlin", day(2025, time.March, 4), "")

	result := PredictRating(target, comparables)

	assert.Equal(t, 4.7, result.PredictedRating)
	assert.Equal(t, models.ConfidenceMedium, result.ConfidenceLevel)
	assert.Equal(t, 3, result.SimilarEventsCount)
	assert.Equal(t, 70, result.TotalReviewsAnalyzed)
	assert.Equal(t, DistributionFor(4.5), result.RatingDistribution)
	require.Len(t, result.Factors, 1)
	assert.Equal(t, "Content Quality", result.Factors[0].Name)
	assert.Equal(t, models.ImpactPositive, result.Factors[0].Impact)
}

func TestPredictRating_Adjustments(t *testing.T) {
	single := func(rating int) []models.ComparableEvent {
		return []models.ComparableEvent{
			createComparable("a1", day(2024, time.March, 4), "", 30, createReviews("a1", 5, rating, models.SentimentNeutral, "")...),
		}
	}

	tests := []struct {
		name          string
		target        models.Event
		rating        int
		expected      float64
		expectedNames []string
	}{
		{
			name:          "location and season lift",
			target:        createTestEvent("Workshop", "Online", day(2025, time.June, 10), ""),
			rating:        4,
			expected:      4.3,
			expectedNames: []string{"Location", "Season", "Hands-on Learning"},
		},
		{
			name:          "clamped at five",
			target:        createTestEvent("Workshop", "Online", day(2025, time.June, 10), ""),
			rating:        5,
			expected:      5.0,
			expectedNames: []string{"Location", "Season", "Hands-on Learning"},
		},
		{
			name:          "clamped at one",
			target:        createTestEvent("Webinar", "Rural venue", day(2025, time.January, 14), ""),
			rating:        1,
			expected:      1.0,
			expectedNames: []string{"Location", "Season", "Technical Quality"},
		},
		{
			name:          "no adjustment",
			target:        createTestEvent("Social", "Berlin", day(2025, time.March, 4), ""),
			rating:        4,
			expected:      4.0,
			expectedNames: []string{"Networking"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := PredictRating(tt.target, single(tt.rating))
			assert.Equal(t, tt.expected, result.PredictedRating)
			assert.Equal(t, models.ConfidenceLow, result.ConfidenceLevel)
			names := make([]string, 0, len(result.Factors))
			for _, f := range result.Factors {
				names = append(names, f.Name)
			}
			assert.Equal(t, tt.expectedNames, names)
		})
	}
}

func TestPredictRating_Default(t *testing.T) {
	target := createTestEvent("Workshop", "Online", day(2025, time.June, 10), "")

	result := PredictRating(target, []models.ComparableEvent{
		createComparable("e1", day(2024, time.March, 4), "", 30),
	})

	assert.Equal(t, 4.0, result.PredictedRating)
	assert.Equal(t, models.ConfidenceLow, result.ConfidenceLevel)
	assert.Equal(t, models.RatingDistribution{Five: 40, Four: 40, Three: 12, Two: 5, One: 3}, result.RatingDistribution)
	assert.Equal(t, 1, result.SimilarEventsCount)
	assert.Empty(t, result.Factors)
}

func TestDistributionFor(t *testing.T) {
	tests := []struct {
		rating   float64
		expected models.RatingDistribution
	}{
		{5.0, models.RatingDistribution{Five: 60, Four: 30, Three: 7, Two: 2, One: 1}},
		{4.5, models.RatingDistribution{Five: 60, Four: 30, Three: 7, Two: 2, One: 1}},
		{4.4, models.RatingDistribution{Five: 40, Four: 40, Three: 12, Two: 5, One: 3}},
		{3.5, models.RatingDistribution{Five: 25, Four: 35, Three: 25, Two: 10, One: 5}},
		{3.0, models.RatingDistribution{Five: 15, Four: 25, Three: 30, Two: 20, One: 10}},
		{2.5, models.RatingDistribution{Five: 8, Four: 15, Three: 30, Two: 27, One: 20}},
		{1.0, models.RatingDistribution{Five: 5, Four: 10, Three: 20, Two: 30, One: 35}},
	}
	for _, tt := range tests {
		got := DistributionFor(tt.rating)
		assert.Equal(t, tt.expected, got, "rating %.1f", tt.rating)
		assert.Equal(t, 100, got.Total())
	}
}
