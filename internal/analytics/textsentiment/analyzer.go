// Package textsentiment scores free text against a polarity lexicon and
// extracts the most frequent salient terms.
package textsentiment

import (
	"sort"
	"strings"
	"unicode"

	"event-insights-workers/internal/models"
)

const (
	// TopTermsLimit is the number of terms kept per analysed text.
	TopTermsLimit = 5
	minTermLength = 4
)

type Analysis struct {
	Score       int              `json:"score"`
	Comparative float64          `json:"comparative"`
	Sentiment   models.Sentiment `json:"sentiment"`
	TopTerms    []string         `json:"topTerms"`
	Positive    []string         `json:"positive"`
	Negative    []string         `json:"negative"`
}

// AnalyzeText is a pure function of its input.
func AnalyzeText(text string) Analysis {
	tokens := Tokenize(text)

	score := 0
	positive := []string{}
	negative := []string{}
	for _, tok := range tokens {
		w, ok := lexicon[tok]
		if !ok || w == 0 {
			continue
		}
		score += w
		if w > 0 {
			positive = append(positive, tok)
		} else {
			negative = append(negative, tok)
		}
	}

	comparative := 0.0
	if len(tokens) > 0 {
		comparative = float64(score) / float64(len(tokens))
	}

	return Analysis{
		Score:       score,
		Comparative: comparative,
		Sentiment:   Classify(score),
		TopTerms:    RankTerms(tokens, TopTermsLimit),
		Positive:    positive,
		Negative:    negative,
	}
}

// ReviewSentiment returns the stored label of r, or classifies its comment
// when no label was stored. Reviews with neither yield "".
func ReviewSentiment(r models.Review) models.Sentiment {
	if r.Sentiment != "" {
		return r.Sentiment
	}
	if strings.TrimSpace(r.Comment) == "" {
		return ""
	}
	return AnalyzeText(r.Comment).Sentiment
}

// Classify maps a lexicon score to a sentiment bucket. Only scores strictly
// above 1 or strictly below -1 leave the neutral bucket.
func Classify(score int) models.Sentiment {
	switch {
	case score > 1:
		return models.SentimentPositive
	case score < -1:
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}

// Tokenize lower-cases text and splits it into runs of letters, digits and apostrophes.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'')
	})
}

// RankTerms drops short tokens and stop words, then orders the remaining terms
// by frequency. Equal counts keep first-seen order.
func RankTerms(tokens []string, limit int) []string {
	counts := make(map[string]int)
	order := []string{}
	for _, tok := range tokens {
		tok = strings.Trim(tok, "'")
		if len([]rune(tok)) < minTermLength || IsStopWord(tok) {
			continue
		}
		if _, seen := counts[tok]; !seen {
			order = append(order, tok)
		}
		counts[tok]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if limit > 0 && len(order) > limit {
		order = order[:limit]
	}
	return order
}

// KeywordFrequencies ranks the salient terms across all texts together.
func KeywordFrequencies(texts []string, limit int) []string {
	var tokens []string
	for _, t := range texts {
		tokens = append(tokens, Tokenize(t)...)
	}
	return RankTerms(tokens, limit)
}

// MergeTermLists counts how many lists each term appears in and returns the
// most common terms, ties broken by first appearance.
func MergeTermLists(lists [][]string, limit int) []string {
	counts := make(map[string]int)
	order := []string{}
	for _, list := range lists {
		for _, term := range list {
			if _, seen := counts[term]; !seen {
				order = append(order, term)
			}
			counts[term]++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if limit > 0 && len(order) > limit {
		order = order[:limit]
	}
	return order
}
