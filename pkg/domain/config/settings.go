// pkg/domain/config/settings.go
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/damianoneill/go-pipeline/pkg/domain/pipeline"
)

// Cache store kinds.
const (
	MemoryStore = "memory_store"
	FileStore   = "file_store"
	NullStore   = "null_store"
)

// CookieStore is the only session store with middleware support.
const CookieStore = "cookie_store"

// FrameworkDatabase enables the database middleware.
const FrameworkDatabase = "database"

// MinSecretTokenLength is the shortest secret accepted for signing cookies.
const MinSecretTokenLength = 30

// Settings is the application configuration that drives the middleware stack.
type Settings struct {
	AllowConcurrency  bool     `mapstructure:"allow_concurrency" yaml:"allow_concurrency"`
	ServeStaticAssets bool     `mapstructure:"serve_static_assets" yaml:"serve_static_assets"`
	StaticRoot        string   `mapstructure:"static_root" yaml:"static_root" validate:"required_if=ServeStaticAssets true"`
	CacheStore        string   `mapstructure:"cache_store" yaml:"cache_store" validate:"oneof=memory_store file_store null_store"`
	CachePath         string   `mapstructure:"cache_path" yaml:"cache_path" validate:"required_if=CacheStore file_store"`
	Frameworks        []string `mapstructure:"frameworks" yaml:"frameworks" validate:"dive,oneof=database"`
	SecretToken       string   `mapstructure:"secret_token" yaml:"secret_token" validate:"omitempty,min=30"`

	ActionController ActionController `mapstructure:"action_controller" yaml:"action_controller"`
	ActionDispatch   ActionDispatch   `mapstructure:"action_dispatch" yaml:"action_dispatch"`
	Session          Session          `mapstructure:"session" yaml:"session"`
	Database         Database         `mapstructure:"database" yaml:"database"`
	Observability    Observability    `mapstructure:"observability" yaml:"observability"`

	// Middleware is applied to the default stack, in order, at boot.
	Middleware []pipeline.Directive `mapstructure:"middleware" yaml:"middleware" validate:"dive"`
}

type ActionController struct {
	PerformCaching bool `mapstructure:"perform_caching" yaml:"perform_caching"`
}

type ActionDispatch struct {
	ShowExceptions bool `mapstructure:"show_exceptions" yaml:"show_exceptions"`
	// BestStandardsSupport is "true", "builtin" or "false". Booleans read
	// from YAML arrive as "1" and "0".
	BestStandardsSupport string `mapstructure:"best_standards_support" yaml:"best_standards_support" validate:"omitempty,oneof=true false builtin 1 0"`
	XSendfileHeader      string `mapstructure:"x_sendfile_header" yaml:"x_sendfile_header" validate:"omitempty,oneof=X-Sendfile X-Accel-Redirect X-LIGHTTPD-send-file"`
}

type Session struct {
	Store string `mapstructure:"store" yaml:"store" validate:"omitempty,oneof=cookie_store disabled"`
	Key   string `mapstructure:"key" yaml:"key" validate:"required_if=Store cookie_store"`
}

type Database struct {
	URL      string `mapstructure:"url" yaml:"url" validate:"omitempty,url"`
	MaxConns int32  `mapstructure:"max_conns" yaml:"max_conns" validate:"gte=0"`
}

type Observability struct {
	RequestID       bool     `mapstructure:"request_id" yaml:"request_id"`
	Metrics         bool     `mapstructure:"metrics" yaml:"metrics"`
	TracingEndpoint string   `mapstructure:"tracing_endpoint" yaml:"tracing_endpoint"`
	SilencedPaths   []string `mapstructure:"silenced_paths" yaml:"silenced_paths"`
}

// DefaultSettings returns the defaults for every key in Settings, suitable
// for WithDefaults.
func DefaultSettings() map[string]interface{} {
	return map[string]interface{}{
		"allow_concurrency":                      false,
		"serve_static_assets":                    true,
		"static_root":                            "public",
		"cache_store":                            FileStore,
		"cache_path":                             "tmp/cache",
		"frameworks":                             []string{FrameworkDatabase},
		"secret_token":                           "",
		"action_controller.perform_caching":      false,
		"action_dispatch.show_exceptions":        true,
		"action_dispatch.best_standards_support": "true",
		"action_dispatch.x_sendfile_header":      "",
		"session.store":                          CookieStore,
		"session.key":                            "_app_session",
		"database.url":                           "",
		"database.max_conns":                     4,
		"observability.request_id":               false,
		"observability.metrics":                  false,
		"observability.tracing_endpoint":         "",
		"observability.silenced_paths":           []string{"/metrics", "/internal/*"},
		"middleware":                             []interface{}{},
	}
}

// ErrSecretTokenRequired is returned when cookie sessions are enabled without
// a secret.
var ErrSecretTokenRequired = errors.New("secret_token is required by the cookie session store")

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and the cross-section rules that struct
// tags cannot express.
func (s *Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid settings: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid settings: %w", err)
	}

	if s.SessionEnabled() && s.SecretToken == "" {
		return ErrSecretTokenRequired
	}
	return nil
}

// Load decodes the settings held by store and validates them.
func Load(store Store) (*Settings, error) {
	var s Settings
	if err := store.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("decoding settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// HasFramework reports whether name is listed in Frameworks.
func (s *Settings) HasFramework(name string) bool {
	return slices.Contains(s.Frameworks, name)
}

func (s *Settings) SessionEnabled() bool {
	return s.Session.Store == CookieStore
}

// BestStandardsHeader returns the X-UA-Compatible value, or "" when the
// header is disabled.
func (a ActionDispatch) BestStandardsHeader() string {
	switch strings.ToLower(a.BestStandardsSupport) {
	case "true", "1":
		return "IE=Edge,chrome=1"
	case "builtin":
		return "IE=Edge"
	default:
		return ""
	}
}
