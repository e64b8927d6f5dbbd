// Package ignore compiles ignore names into path matchers.
//
// Every configured name expands to three doublestar rules so that it matches
// at any depth, both as a leaf and as a directory prefix:
//
//	name
//	**/name
//	**/name/**
//
// Matching is case-sensitive and dotfile-inclusive. A rule without a slash
// also matches the final path segment on its own.
package ignore

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog/log"
)

// rule is a single compiled ignore rule.
type rule struct {
	pattern string
	// matchLeaf allows the pattern to match the base name alone.
	matchLeaf bool
}

// Matcher reports whether a path is excluded by any compiled rule.
type Matcher struct {
	rules []rule
}

// Variants returns the three rules generated for a raw ignore name.
func Variants(name string) []string {
	return []string{name, "**/" + name, "**/" + name + "/**"}
}

// Compile builds a Matcher from raw ignore names. Empty names are skipped and
// patterns doublestar cannot parse are dropped, so they never match.
func Compile(names []string) *Matcher {
	m := &Matcher{rules: make([]rule, 0, len(names)*3)}

	for _, name := range names {
		if name == "" {
			continue
		}
		for _, pattern := range Variants(name) {
			r, ok := compileRule(pattern)
			if !ok {
				log.Debug().Str("pattern", pattern).Msg("dropping invalid ignore pattern")
				continue
			}
			m.rules = append(m.rules, r)
		}
	}

	return m
}

func compileRule(pattern string) (rule, bool) {
	if !doublestar.ValidatePattern(pattern) {
		return rule{}, false
	}
	return rule{
		pattern:   pattern,
		matchLeaf: !strings.Contains(pattern, "/"),
	}, true
}

// IsIgnored returns true if any rule matches the path.
// A nil Matcher ignores nothing.
func (m *Matcher) IsIgnored(p string) bool {
	if m == nil || len(m.rules) == 0 {
		return false
	}

	rel := toMatchPath(p)
	if rel == "" {
		return false
	}
	base := path.Base(rel)

	for _, r := range m.rules {
		if match, _ := doublestar.Match(r.pattern, rel); match {
			return true
		}
		if r.matchLeaf {
			if match, _ := doublestar.Match(r.pattern, base); match {
				return true
			}
		}
	}

	return false
}

// Len returns the number of compiled rules.
func (m *Matcher) Len() int {
	if m == nil {
		return 0
	}
	return len(m.rules)
}

// toMatchPath converts an OS path into the unrooted slash form doublestar
// expects, e.g. "C:\proj\a.js" and "/proj/a.js" both become "proj/a.js".
func toMatchPath(p string) string {
	p = filepath.ToSlash(strings.TrimPrefix(p, filepath.VolumeName(p)))
	return strings.TrimLeft(p, "/")
}
