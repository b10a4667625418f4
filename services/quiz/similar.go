package quiz

import (
	"strings"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// findSimilarQuestion returns the first recent question within 20% edit
// distance of question.
func findSimilarQuestion(question string, recent []string) (string, bool) {
	q := normalizeQuestion(question)
	if q == "" {
		return "", false
	}

	for _, prev := range recent {
		p := normalizeQuestion(prev)
		if p == "" {
			continue
		}
		longest := max(utf8.RuneCountInString(q), utf8.RuneCountInString(p))
		if fuzzy.LevenshteinDistance(q, p)*5 <= longest {
			return prev, true
		}
	}
	return "", false
}

func normalizeQuestion(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
