// Package search ranks index items against a query using sahilm/fuzzy.
package search

import (
	"strings"
	"unicode/utf8"

	"github.com/sahilm/fuzzy"
)

// Match is one ranked item.
type Match struct {
	Path    string `json:"path"`
	Score   int    `json:"score"`
	Indexes []int  `json:"indexes,omitempty"` // byte offsets of matched characters
}

// Find returns up to max items matching query, best first. An empty query
// returns the first max items unranked. max <= 0 means no limit.
func Find(query string, items []string, max int) []Match {
	query = strings.TrimSpace(query)
	if query == "" {
		n := len(items)
		if max > 0 && max < n {
			n = max
		}
		out := make([]Match, n)
		for i := 0; i < n; i++ {
			out[i] = Match{Path: items[i]}
		}
		return out
	}

	found := fuzzy.Find(query, items)
	if max > 0 && len(found) > max {
		found = found[:max]
	}

	out := make([]Match, len(found))
	for i, m := range found {
		out[i] = Match{Path: m.Str, Score: m.Score, Indexes: m.MatchedIndexes}
	}
	return out
}

// Highlight wraps every run of matched characters in path with mark.
func Highlight(path string, indexes []int, mark func(string) string) string {
	if len(indexes) == 0 || mark == nil {
		return path
	}

	matched := make(map[int]bool, len(indexes))
	for _, i := range indexes {
		matched[i] = true
	}

	var b strings.Builder
	for i := 0; i < len(path); {
		_, size := utf8.DecodeRuneInString(path[i:])
		if !matched[i] {
			b.WriteString(path[i : i+size])
			i += size
			continue
		}
		j := i + size
		for j < len(path) && matched[j] {
			_, s := utf8.DecodeRuneInString(path[j:])
			j += s
		}
		b.WriteString(mark(path[i:j]))
		i = j
	}
	return b.String()
}
