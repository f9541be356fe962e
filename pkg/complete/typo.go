package complete

import (
	"strings"

	"github.com/tentacle-scylla/cqlcomplete/pkg/types"
)

// statementKeywords returns the first keyword of every registered statement,
// in registration order.
func (r *Registry) statementKeywords() []string {
	var out []string
	seen := make(map[types.Keyword]bool)
	for _, h := range r.handlers {
		if kw := h.Leading[0]; !seen[kw] {
			seen[kw] = true
			out = append(out, kw.String())
		}
	}
	return out
}

// closestKeyword returns the candidate that word most likely misspells, or ""
// when nothing is close. Short words allow a single edit.
func closestKeyword(word string, candidates []string) string {
	word = strings.ToUpper(strings.TrimSpace(word))
	if len(word) < 3 {
		return ""
	}
	maxDistance := 2
	if len(word) < 5 {
		maxDistance = 1
	}

	best, bestDistance := "", maxDistance+1
	for _, kw := range candidates {
		if word == kw {
			return ""
		}
		if diff := len(kw) - len(word); diff > maxDistance || -diff > maxDistance {
			continue
		}
		if d := levenshtein(word, kw); d < bestDistance {
			best, bestDistance = kw, d
		}
	}
	return best
}

// levenshtein is the number of single-byte edits turning a into b.
func levenshtein(a, b string) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
