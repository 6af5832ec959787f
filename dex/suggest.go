package dex

import (
	"fmt"

	"github.com/agnivade/levenshtein"
)

// maxSuggestDistance is the largest edit distance still offered as a
// "did you mean" suggestion.
const maxSuggestDistance = 3

// suggest returns a " (did you mean ...?)" suffix for the closest candidate
// within the distance cutoff, or "" when nothing is close.
func suggest[S ~string](name string, candidates []S) string {
	best := ""
	bestDist := maxSuggestDistance + 1
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(name, string(c))
		if d < bestDist {
			bestDist = d
			best = string(c)
		}
	}
	if best == "" || bestDist > maxSuggestDistance {
		return ""
	}
	return fmt.Sprintf(" (did you mean %q?)", best)
}
