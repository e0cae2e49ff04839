package match

import (
	"math"
	"strings"

	"github.com/evanhutch/helpbot/internal/knowledge"
)

// TopicAIGenerated marks results produced by the generative fallback rather
// than a knowledge entry.
const TopicAIGenerated = "ai_generated"

// Result is a scored answer for a single query.
type Result struct {
	Answer string
	Score  float64
	Topic  string
}

// Strategy selects the best knowledge entry for a question, if any clears
// the strategy's acceptance rule. Implementations are deterministic for a
// fixed entry order.
type Strategy interface {
	Name() string
	FindBestMatch(question string, entries []knowledge.Entry, threshold float64) (Result, bool)
}

// ForProfile maps a deployment profile to its matching strategy. The
// "enhanced" profile scans keywords first; "basic" scores set similarity.
func ForProfile(profile string) Strategy {
	if strings.EqualFold(strings.TrimSpace(profile), "basic") {
		return SimilarityFirst{}
	}
	return KeywordFirst{}
}

// KeywordFirst returns the first entry whose keyword appears verbatim in the
// normalized question, scored 1.0. This is a first-match scan, not a
// best-match one: it short-circuits in entry order. When no keyword hits it
// falls back to a weighted containment score accepted only above 0.3
// (strictly greater; the threshold argument is not consulted).
type KeywordFirst struct{}

func (KeywordFirst) Name() string { return "keyword-first" }

func (KeywordFirst) FindBestMatch(question string, entries []knowledge.Entry, _ float64) (Result, bool) {
	normalized := Normalize(question)

	for _, entry := range entries {
		for _, keyword := range entry.Keywords {
			if keyword == "" {
				continue
			}
			if strings.Contains(normalized, strings.ToLower(keyword)) {
				return Result{Answer: entry.Answer, Score: 1.0, Topic: entry.Topic}, true
			}
		}
	}

	var best Result
	bestScore := 0.0
	found := false
	for _, entry := range entries {
		score := containmentScore(normalized, entry)
		// Strict > on both comparisons: ties keep the first entry, and a
		// score of exactly 0.3 is rejected.
		if score > bestScore && score > 0.3 {
			bestScore = score
			best = Result{Answer: entry.Answer, Score: score, Topic: entry.Topic}
			found = true
		}
	}
	return best, found
}

func containmentScore(question string, entry knowledge.Entry) float64 {
	score := 0.0
	for _, keyword := range entry.Keywords {
		if keyword != "" && strings.Contains(question, strings.ToLower(keyword)) {
			score += 0.3
		}
	}
	if reference := Normalize(entry.Question); reference != "" && strings.Contains(question, reference) {
		score += 0.5
	}
	return math.Min(score, 1.0)
}

// SimilarityFirst scores every entry by the better of question similarity
// and best keyword similarity, both Jaccard over word sets. Acceptance is
// inclusive (>= threshold), unlike KeywordFirst's fallback.
type SimilarityFirst struct{}

func (SimilarityFirst) Name() string { return "similarity-first" }

func (SimilarityFirst) FindBestMatch(question string, entries []knowledge.Entry, threshold float64) (Result, bool) {
	normalized := Normalize(question)

	var best Result
	bestScore := 0.0
	found := false
	for _, entry := range entries {
		score := Similarity(normalized, entry.Question)
		for _, keyword := range entry.Keywords {
			if keywordScore := Similarity(normalized, keyword); keywordScore > score {
				score = keywordScore
			}
		}
		if score > bestScore && score >= threshold {
			bestScore = score
			best = Result{Answer: entry.Answer, Score: score, Topic: entry.Topic}
			found = true
		}
	}
	return best, found
}
