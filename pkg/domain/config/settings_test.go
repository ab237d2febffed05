// pkg/domain/config/settings_test.go
package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damianoneill/go-pipeline/pkg/domain/pipeline"
)

func validSettings() Settings {
	return Settings{
		ServeStaticAssets: true,
		StaticRoot:        "public",
		CacheStore:        FileStore,
		CachePath:         "tmp/cache",
		Frameworks:        []string{FrameworkDatabase},
		SecretToken:       strings.Repeat("s", MinSecretTokenLength),
		ActionDispatch:    ActionDispatch{ShowExceptions: true, BestStandardsSupport: "true"},
		Session:           Session{Store: CookieStore, Key: "_app_session"},
	}
}

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(s *Settings)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(s *Settings) {},
		},
		{
			name:    "unknown cache store",
			mutate:  func(s *Settings) { s.CacheStore = "redis_store" },
			wantErr: "Settings.CacheStore",
		},
		{
			name:    "file store without path",
			mutate:  func(s *Settings) { s.CachePath = "" },
			wantErr: "Settings.CachePath",
		},
		{
			name:   "memory store without path",
			mutate: func(s *Settings) { s.CacheStore, s.CachePath = MemoryStore, "" },
		},
		{
			name:    "static assets without root",
			mutate:  func(s *Settings) { s.StaticRoot = "" },
			wantErr: "Settings.StaticRoot",
		},
		{
			name:    "unknown framework",
			mutate:  func(s *Settings) { s.Frameworks = []string{"mailer"} },
			wantErr: "Settings.Frameworks[0]",
		},
		{
			name:    "short secret",
			mutate:  func(s *Settings) { s.SecretToken = "short" },
			wantErr: "Settings.SecretToken",
		},
		{
			name:    "cookie store without secret",
			mutate:  func(s *Settings) { s.SecretToken = "" },
			wantErr: ErrSecretTokenRequired.Error(),
		},
		{
			name:   "sessions disabled without secret",
			mutate: func(s *Settings) { s.SecretToken, s.Session.Store = "", "disabled" },
		},
		{
			name: "directive without target",
			mutate: func(s *Settings) {
				s.Middleware = []pipeline.Directive{{Op: pipeline.OpInsertAfter, Name: "timeout"}}
			},
			wantErr: "Settings.Middleware[0].Target",
		},
		{
			name: "unknown directive op",
			mutate: func(s *Settings) {
				s.Middleware = []pipeline.Directive{{Op: "replace", Name: "timeout"}}
			},
			wantErr: "Settings.Middleware[0].Op",
		},
		{
			name: "delete directive",
			mutate: func(s *Settings) {
				s.Middleware = []pipeline.Directive{pipeline.Delete("static")}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSettings()
			tt.mutate(&s)

			err := s.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSettings_HasFramework(t *testing.T) {
	s := validSettings()
	assert.True(t, s.HasFramework(FrameworkDatabase))

	s.Frameworks = nil
	assert.False(t, s.HasFramework(FrameworkDatabase))
}

func TestActionDispatch_BestStandardsHeader(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{"true", "IE=Edge,chrome=1"},
		{"1", "IE=Edge,chrome=1"},
		{"builtin", "IE=Edge"},
		{"false", ""},
		{"0", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			a := ActionDispatch{BestStandardsSupport: tt.value}
			assert.Equal(t, tt.want, a.BestStandardsHeader())
		})
	}
}

func TestDefaultSettings(t *testing.T) {
	defaults := DefaultSettings()

	assert.Equal(t, FileStore, defaults["cache_store"])
	assert.Equal(t, []string{FrameworkDatabase}, defaults["frameworks"])
	assert.Equal(t, true, defaults["serve_static_assets"])
	assert.Equal(t, false, defaults["allow_concurrency"])
	assert.Equal(t, CookieStore, defaults["session.store"])
}
