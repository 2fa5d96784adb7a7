package state

import "github.com/omnidesk/autoreply-service/internal/services/analyzer"

// TokenOverlap computes the Jaccard similarity of the token sets of two
// messages, in [0, 1].
func TokenOverlap(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	var intersection int
	for tok := range setA {
		if setB[tok] {
			intersection++
		}
	}

	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func tokenSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range analyzer.Tokenize(text) {
		set[tok] = true
	}
	return set
}
