package match

import "strings"

// helpKeywords are stored pre-normalized so substring checks against
// Normalize output behave the same for phrases with punctuation.
var helpKeywords = []string{
	"help", "how to", "how do i", "what is", "where is",
	"can someone", "does anyone know", "question", "support",
	"trouble with", "problem with", "issue with", "anyone know",
	"need help", "looking for", "where can i", "how can i",
	"not working", "broken", "error", "cant find",
}

var interrogatives = []string{"how", "what", "where", "when", "why", "can", "does", "is"}

// Detector classifies ambient messages as help requests. Mentions and slash
// commands bypass it entirely.
//
// With Strict set, a bare question mark is only accepted when the normalized
// text also carries an interrogative word; this filters rhetorical questions
// at the cost of missing terse ones.
type Detector struct {
	Strict bool
}

func (d Detector) IsHelpRequest(raw string) bool {
	if strings.TrimSpace(raw) == "" {
		return false
	}

	normalized := Normalize(raw)
	for _, keyword := range helpKeywords {
		if strings.Contains(normalized, keyword) {
			return true
		}
	}

	// Question-mark heuristic. URLs carry query strings, so any message with
	// a scheme separator is excluded outright.
	if strings.Contains(raw, "?") && !strings.Contains(raw, "://") {
		if !d.Strict {
			return true
		}
		for _, word := range interrogatives {
			if strings.Contains(normalized, word) {
				return true
			}
		}
	}
	return false
}
