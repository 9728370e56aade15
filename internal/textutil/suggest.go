package textutil

import (
	"cmp"
	"slices"
	"strings"
)

// similarityThreshold is the minimum score for a candidate to be suggested.
const similarityThreshold = 0.5

// Suggest returns up to n candidates that look like target, best match first.
func Suggest(target string, candidates []string, n int) []string {
	if target == "" || n <= 0 {
		return []string{}
	}
	type scored struct {
		name  string
		score float64
	}
	var matches []scored
	for _, c := range candidates {
		if s := similarity(target, c); s > similarityThreshold {
			matches = append(matches, scored{c, s})
		}
	}
	slices.SortFunc(matches, func(a, b scored) int {
		if a.score == b.score {
			return cmp.Compare(a.name, b.name)
		}
		return cmp.Compare(b.score, a.score)
	})
	out := []string{}
	for _, m := range matches[:min(n, len(matches))] {
		out = append(out, m.name)
	}
	return out
}

func similarity(a, b string) float64 {
	a, b = strings.ToLower(a), strings.ToLower(b)
	if a == b {
		return 1.0
	}
	if strings.HasPrefix(b, a) {
		return 0.9
	}
	return 1.0 - float64(distance(a, b))/float64(max(len(a), len(b)))
}

// distance is the Levenshtein edit distance, computed over two rolling rows.
func distance(a, b string) int {
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
