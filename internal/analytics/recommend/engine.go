// Package recommend ranks upcoming events for a user by merging collaborative,
// content-based and interest-based candidates.
package recommend

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"event-insights-workers/internal/models"
)

const (
	DefaultLimit = 10
	// LikedRating is the lowest rating that counts as liking an event.
	LikedRating = 4

	collaborativeWeight = 20
	collaborativeCap    = 85
	contentScore        = 75
	interestScore       = 70
	popularityBonusStep = 2
	popularityBonusCap  = 20
)

// Input is everything the engine needs, already fetched from storage.
type Input struct {
	UserID    string
	Interests []string

	// UserReviews are the requesting user's reviews; ReviewedEvents are the events they belong to.
	UserReviews    []models.Review
	ReviewedEvents []models.Event

	// PeerReviews are other users' reviews on events the user liked.
	PeerReviews []models.Review
	// PeerLikes are reviews written by those peers on any event.
	PeerLikes []models.Review

	// Upcoming is the catalogue of candidate events.
	Upcoming []models.Event
	// Ratings holds review aggregates for upcoming events, keyed by event id.
	Ratings map[string]models.EventRatingStats
}

type Engine struct {
	limit int
}

func NewEngine(limit int) *Engine {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Engine{limit: limit}
}

type candidate struct {
	event  models.Event
	score  int
	reason string
}

// Recommend returns at most the engine limit of items sorted by match score.
// Duplicates across generators keep the first occurrence, in the order
// collaborative, content-based, interest-based (or popularity).
func (e *Engine) Recommend(in Input, now time.Time) []models.RecommendationItem {
	reviewed := make(map[string]struct{}, len(in.UserReviews))
	for _, r := range in.UserReviews {
		reviewed[r.EventID] = struct{}{}
	}
	eligible := func(ev models.Event) bool {
		if _, ok := reviewed[ev.ID]; ok {
			return false
		}
		return ev.Date.After(now)
	}

	var lists [][]candidate
	if len(in.UserReviews) == 0 {
		lists = append(lists, e.fallback(in, eligible))
	} else {
		lists = append(lists,
			collaborative(in, eligible),
			contentBased(in, eligible),
			e.fallback(in, eligible),
		)
	}

	return e.merge(lists, eligible)
}

func (e *Engine) fallback(in Input, eligible func(models.Event) bool) []candidate {
	if len(normalizeInterests(in.Interests)) > 0 {
		return interestBased(in, eligible)
	}
	return popularity(in, eligible)
}

func (e *Engine) merge(lists [][]candidate, eligible func(models.Event) bool) []models.RecommendationItem {
	seen := make(map[string]struct{})
	merged := []candidate{}
	for _, list := range lists {
		for _, c := range list {
			if _, dup := seen[c.event.ID]; dup || !eligible(c.event) {
				continue
			}
			seen[c.event.ID] = struct{}{}
			merged = append(merged, c)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].score > merged[j].score
	})
	if len(merged) > e.limit {
		merged = merged[:e.limit]
	}

	items := make([]models.RecommendationItem, len(merged))
	for i, c := range merged {
		items[i] = models.RecommendationItem{
			ID:         c.event.ID,
			Title:      c.event.Title,
			Date:       c.event.Date,
			Category:   c.event.Category,
			Location:   c.event.Location,
			Image:      c.event.ImageURL,
			MatchScore: clampScore(c.score),
			Reason:     c.reason,
		}
	}
	return items
}

// collaborative counts, per upcoming event, the peers who liked it. Peers are
// users who liked an event the requesting user also liked.
func collaborative(in Input, eligible func(models.Event) bool) []candidate {
	liked := make(map[string]struct{})
	for _, r := range in.UserReviews {
		if r.Rating >= LikedRating {
			liked[r.EventID] = struct{}{}
		}
	}
	if len(liked) == 0 {
		return nil
	}

	peers := make(map[string]struct{})
	for _, r := range in.PeerReviews {
		if r.UserID == in.UserID || r.Rating < LikedRating {
			continue
		}
		if _, ok := liked[r.EventID]; ok {
			peers[r.UserID] = struct{}{}
		}
	}

	counts := make(map[string]map[string]struct{})
	for _, r := range in.PeerLikes {
		if _, ok := peers[r.UserID]; !ok || r.Rating < LikedRating {
			continue
		}
		if counts[r.EventID] == nil {
			counts[r.EventID] = make(map[string]struct{})
		}
		counts[r.EventID][r.UserID] = struct{}{}
	}

	out := []candidate{}
	for _, ev := range in.Upcoming {
		n := len(counts[ev.ID])
		if n == 0 || !eligible(ev) {
			continue
		}
		out = append(out, candidate{
			event:  ev,
			score:  CollaborativeScore(n),
			reason: fmt.Sprintf("Liked by %d attendees with similar taste", n),
		})
	}
	return out
}

// CollaborativeScore is 20 points per co-occurrence, capped at 85.
func CollaborativeScore(count int) int {
	return clampScore(minInt(count*collaborativeWeight, collaborativeCap))
}

func contentBased(in Input, eligible func(models.Event) bool) []candidate {
	byID := make(map[string]models.Event, len(in.ReviewedEvents))
	for _, ev := range in.ReviewedEvents {
		byID[ev.ID] = ev
	}
	categories := make(map[string]string)
	for _, r := range in.UserReviews {
		if r.Rating < LikedRating {
			continue
		}
		if ev, ok := byID[r.EventID]; ok && strings.TrimSpace(ev.Category) != "" {
			categories[strings.ToLower(strings.TrimSpace(ev.Category))] = strings.TrimSpace(ev.Category)
		}
	}
	if len(categories) == 0 {
		return nil
	}

	out := []candidate{}
	for _, ev := range in.Upcoming {
		name, ok := categories[strings.ToLower(strings.TrimSpace(ev.Category))]
		if !ok || !eligible(ev) {
			continue
		}
		out = append(out, candidate{
			event:  ev,
			score:  contentScore,
			reason: fmt.Sprintf("Because you enjoyed %s events", name),
		})
	}
	return out
}

func interestBased(in Input, eligible func(models.Event) bool) []candidate {
	interests := normalizeInterests(in.Interests)
	out := []candidate{}
	for _, ev := range in.Upcoming {
		if !eligible(ev) {
			continue
		}
		haystack := strings.ToLower(ev.Category + "\n" + ev.Title + "\n" + ev.Description)
		for _, interest := range interests {
			if strings.Contains(haystack, interest) {
				out = append(out, candidate{
					event:  ev,
					score:  interestScore,
					reason: fmt.Sprintf("Matches your interest in %s", interest),
				})
				break
			}
		}
	}
	return out
}

func popularity(in Input, eligible func(models.Event) bool) []candidate {
	out := []candidate{}
	for _, ev := range in.Upcoming {
		stats, ok := in.Ratings[ev.ID]
		if !ok || stats.ReviewCount < 1 || !eligible(ev) {
			continue
		}
		out = append(out, candidate{
			event:  ev,
			score:  PopularityScore(stats.AverageRating, stats.ReviewCount),
			reason: fmt.Sprintf("Popular with attendees: rated %.1f from %d reviews", stats.AverageRating, stats.ReviewCount),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := in.Ratings[out[i].event.ID], in.Ratings[out[j].event.ID]
		if a.AverageRating != b.AverageRating {
			return a.AverageRating > b.AverageRating
		}
		return a.ReviewCount > b.ReviewCount
	})
	return out
}

// PopularityScore maps the 1-5 average linearly onto 0-100 and adds up to
// 20 points for review volume.
func PopularityScore(avg float64, count int) int {
	base := int(math.Round((avg - 1) / 4 * 100))
	return clampScore(base + minInt(count*popularityBonusStep, popularityBonusCap))
}

func normalizeInterests(interests []string) []string {
	out := make([]string, 0, len(interests))
	seen := make(map[string]struct{})
	for _, i := range interests {
		i = strings.ToLower(strings.TrimSpace(i))
		if i == "" {
			continue
		}
		if _, dup := seen[i]; dup {
			continue
		}
		seen[i] = struct{}{}
		out = append(out, i)
	}
	return out
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
