// pkg/adapter/middleware/matcher_test.go
package middleware

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestMatcher(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		patterns []string
		want     bool
	}{
		{
			name:     "empty patterns",
			path:     "/test",
			patterns: nil,
			want:     false,
		},
		{
			name:     "exact match",
			path:     "/test",
			patterns: []string{"/test"},
			want:     true,
		},
		{
			name:     "no match",
			path:     "/test",
			patterns: []string{"/other"},
			want:     false,
		},
		{
			name:     "wildcard match",
			path:     "/api/v1/users",
			patterns: []string{"/api/*"},
			want:     true,
		},
		{
			name:     "wildcard no match",
			path:     "/api/v1/users",
			patterns: []string{"/other/*"},
			want:     false,
		},
		{
			name:     "multiple patterns with match",
			path:     "/test",
			patterns: []string{"/other", "/test", "/another"},
			want:     true,
		},
		{
			name:     "path cleaning - trailing slash",
			path:     "/test/",
			patterns: []string{"/test"},
			want:     true,
		},
		{
			name:     "path cleaning - double slash",
			path:     "/test//path",
			patterns: []string{"/test/path"},
			want:     true,
		},
		{
			name:     "path cleaning - dot segments",
			path:     "/test/./path",
			patterns: []string{"/test/path"},
			want:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewPathMatcher(tt.patterns).Match(tt.path)
			assert.Equal(t, tt.want, got, "Match(%q) against %v", tt.path, tt.patterns)
		})
	}
}

func TestMatcherEdgeCases(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		patterns []string
		want     bool
	}{
		{
			name:     "empty path",
			path:     "",
			patterns: []string{"/"},
			want:     true,
		},
		{
			name:     "root path",
			path:     "/",
			patterns: []string{"/"},
			want:     true,
		},
		{
			name: "complex wildcard patterns",
			path: "/api/v1/users/123/profile",
			patterns: []string{
				"/api/v1/users/*/profile",
				"/api/v2/*",
			},
			want: true,
		},
		{
			name:     "case sensitivity",
			path:     "/API/users",
			patterns: []string{"/api/users"},
			want:     false,
		},
		{
			name:     "encoded characters",
			path:     "/test%20path",
			patterns: []string{"/test path"},
			want:     false,
		},
		{
			name:     "segment wildcard",
			path:     "/api/v1/users/123/profile",
			patterns: []string{"/api/v1/users/*/profile"},
			want:     true,
		},
		{
			name:     "segment wildcard no match",
			path:     "/api/v1/users/123/settings",
			patterns: []string{"/api/v1/users/*/profile"},
			want:     false,
		},
		{
			name:     "multiple segment wildcards",
			path:     "/api/v1/users/123/posts/456",
			patterns: []string{"/api/*/users/*/posts/*"},
			want:     true,
		},
		{
			name:     "trailing wildcard only matches remaining segments",
			path:     "/api/v1/users",
			patterns: []string{"/api/*"},
			want:     true,
		},
		{
			name:     "root path with trailing slash",
			path:     "/",
			patterns: []string{"/"},
			want:     true,
		},
		{
			name:     "empty paths",
			path:     "",
			patterns: []string{""},
			want:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewPathMatcher(tt.patterns).Match(tt.path)
			assert.Equal(t, tt.want, got, "Match(%q) against %v", tt.path, tt.patterns)
		})
	}
}

func TestMatcher_Nil(t *testing.T) {
	var m *PathMatcher
	assert.False(t, m.Match("/metrics"))
}

func TestMatcher_SilencedDefaults(t *testing.T) {
	m := NewPathMatcher([]string{"/metrics", "/internal/*"})

	assert.True(t, m.Match("/metrics"))
	assert.True(t, m.Match("/internal/logging"))
	assert.True(t, m.Match("/internal"))
	assert.False(t, m.Match("/orders"))
}
