package middleware

import (
	"context"
	"errors"
	"maps"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/damianoneill/go-pipeline/pkg/domain/logging"
)

// ErrNoCookieJar is returned when the session middleware runs without the
// cookies middleware ahead of it.
var ErrNoCookieJar = errors.New("session requires the cookies middleware")

type sessionKey struct{}

// Session holds the values stored in the session cookie.
type Session struct {
	mu      sync.Mutex
	values  map[string]any
	changed bool
}

// SessionFrom returns the request's session, or nil outside the session
// middleware.
func SessionFrom(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionKey{}).(*Session)
	return s
}

func (s *Session) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *Session) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	s.changed = true
}

func (s *Session) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[key]; ok {
		delete(s.values, key)
		s.changed = true
	}
}

// Clear empties the session; the cookie is removed on response.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.values)
	s.changed = true
}

func (s *Session) snapshot() (map[string]any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.values), s.changed
}

// CookieStore keeps the whole session in a cookie as an HS256 JWT.
type CookieStore struct {
	Key    string
	MaxAge time.Duration
	Logger logging.Logger

	signingKey []byte
}

// NewCookieStore derives the session signing key from keys.
func NewCookieStore(key string, keys *KeyGenerator, logger logging.Logger) *CookieStore {
	return &CookieStore{
		Key:        key,
		Logger:     logger,
		signingKey: keys.Generate("session cookie", 64),
	}
}

func (m *CookieStore) Handle(w http.ResponseWriter, r *http.Request, next http.Handler) {
	jar := CookiesFrom(r.Context())
	if jar == nil {
		m.Logger.Error(ErrNoCookieJar.Error())
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	session := &Session{values: m.load(jar)}
	hw := newHookWriter(w, func() { m.save(jar, session) })

	ctx := context.WithValue(r.Context(), sessionKey{}, session)
	next.ServeHTTP(hw, r.WithContext(ctx))
	hw.fire()
}

func (m *CookieStore) load(jar *Jar) map[string]any {
	raw, ok := jar.Get(m.Key)
	if !ok || raw == "" {
		return map[string]any{}
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return m.signingKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		m.Logger.WarnWith("Discarding session cookie", logging.Fields{"error": err.Error()})
		return map[string]any{}
	}

	values, _ := claims["data"].(map[string]any)
	if values == nil {
		values = map[string]any{}
	}
	return values
}

func (m *CookieStore) save(jar *Jar, session *Session) {
	values, changed := session.snapshot()
	if !changed {
		return
	}
	if len(values) == 0 {
		jar.Delete(m.Key)
		return
	}

	claims := jwt.MapClaims{
		"data": values,
		"iat":  time.Now().Unix(),
	}
	if m.MaxAge > 0 {
		claims["exp"] = time.Now().Add(m.MaxAge).Unix()
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.signingKey)
	if err != nil {
		m.Logger.ErrorWith("Failed to sign session", logging.Fields{"error": err.Error()})
		return
	}

	jar.Set(&http.Cookie{
		Name:     m.Key,
		Value:    token,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(m.MaxAge.Seconds()),
	})
}
