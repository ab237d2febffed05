package middleware

import (
	"path"
	"strings"
)

// PathMatcher matches request paths against patterns where "*" matches a
// single segment, and a trailing "*" matches any remaining segments.
type PathMatcher struct {
	patterns [][]string
}

// NewPathMatcher splits and cleans patterns once up front.
func NewPathMatcher(patterns []string) *PathMatcher {
	m := &PathMatcher{patterns: make([][]string, 0, len(patterns))}
	for _, p := range patterns {
		m.patterns = append(m.patterns, segments(p))
	}
	return m
}

// Match reports whether reqPath matches any pattern. A nil matcher matches
// nothing.
func (m *PathMatcher) Match(reqPath string) bool {
	if m == nil || len(m.patterns) == 0 {
		return false
	}

	reqSegments := segments(reqPath)
	for _, p := range m.patterns {
		if matchSegments(reqSegments, p) {
			return true
		}
	}
	return false
}

func segments(p string) []string {
	p = path.Clean("/" + p)
	return strings.Split(strings.Trim(p, "/"), "/")
}

// matchSegments performs segment-by-segment matching with wildcard support
func matchSegments(reqSegments, patternSegments []string) bool {
	if len(patternSegments) > 0 && patternSegments[len(patternSegments)-1] == "*" {
		prefix := patternSegments[:len(patternSegments)-1]
		return len(reqSegments) >= len(prefix) &&
			matchExactSegments(reqSegments[:len(prefix)], prefix)
	}

	if len(reqSegments) != len(patternSegments) {
		return false
	}
	return matchExactSegments(reqSegments, patternSegments)
}

// matchExactSegments compares segments allowing for wildcards
func matchExactSegments(reqSegments, patternSegments []string) bool {
	for i := range patternSegments {
		if patternSegments[i] != "*" && patternSegments[i] != reqSegments[i] {
			return false
		}
	}
	return true
}
