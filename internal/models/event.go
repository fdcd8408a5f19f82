// internal/models/event.go
package models

import (
	"strconv"
	"strings"
	"time"
)

// Event is a row of the events table as seen by the analytics workers.
// StartTime is the optional "HH:MM" (or "HH:MM:SS") start of the event.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category"`
	Location    string    `json:"location"`
	Date        time.Time `json:"date"`
	StartTime   string    `json:"time,omitempty"`
	ImageURL    string    `json:"image,omitempty"`
	CreatorID   string    `json:"creatorId,omitempty"`
}

// IsWeekend reports whether the event falls on a Saturday or Sunday.
func (e Event) IsWeekend() bool {
	wd := e.Date.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// StartMinutes returns the start time as minutes after midnight.
func (e Event) StartMinutes() (int, bool) {
	s := strings.TrimSpace(e.StartTime)
	if s == "" {
		return 0, false
	}
	parts := strings.Split(s, ":")
	if len(parts) < 2 {
		return 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

// IsEvening reports whether the event starts at or after 17:00.
func (e Event) IsEvening() bool {
	mins, ok := e.StartMinutes()
	return ok && mins >= 17*60
}

// AttendanceSnapshot is the aggregate attendance recorded for a past event.
type AttendanceSnapshot struct {
	EventID         string         `json:"eventId"`
	TotalAttendance int            `json:"totalAttendance"`
	DailyBreakdown  map[string]int `json:"dailyBreakdown,omitempty"`
}

// ComparableEvent is a past event joined with its attendance and reviews.
type ComparableEvent struct {
	Event      Event               `json:"event"`
	Attendance *AttendanceSnapshot `json:"attendance,omitempty"`
	Reviews    []Review            `json:"reviews,omitempty"`
}

// AttendanceCount returns the recorded attendance or zero.
func (c ComparableEvent) AttendanceCount() int {
	if c.Attendance == nil {
		return 0
	}
	return c.Attendance.TotalAttendance
}

// SentimentCounts counts reviews per bucket using label to resolve each
// review's sentiment. Reviews labelled "" are skipped.
func (c ComparableEvent) SentimentCounts(label func(Review) Sentiment) (positive, neutral, negative int) {
	for _, r := range c.Reviews {
		switch label(r) {
		case SentimentPositive:
			positive++
		case SentimentNeutral:
			neutral++
		case SentimentNegative:
			negative++
		}
	}
	return positive, neutral, negative
}

// AverageRating returns the mean star rating and the number of rated reviews.
func (c ComparableEvent) AverageRating() (float64, int) {
	sum, n := 0, 0
	for _, r := range c.Reviews {
		if r.Rating <= 0 {
			continue
		}
		sum += r.Rating
		n++
	}
	if n == 0 {
		return 0, 0
	}
	return float64(sum) / float64(n), n
}
