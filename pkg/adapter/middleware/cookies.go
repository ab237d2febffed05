package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/crypto/pbkdf2"
)

// ErrInvalidSignature is returned for signed cookies that fail verification.
var ErrInvalidSignature = errors.New("invalid cookie signature")

const keyIterations = 1000

// KeyGenerator derives purpose-specific keys from the application secret.
type KeyGenerator struct {
	secret []byte
}

func NewKeyGenerator(secret string) *KeyGenerator {
	return &KeyGenerator{secret: []byte(secret)}
}

// Generate derives a size-byte key for salt.
func (g *KeyGenerator) Generate(salt string, size int) []byte {
	return pbkdf2.Key(g.secret, []byte(salt), keyIterations, size, sha256.New)
}

type jarKey struct{}

// Jar is the request's cookie jar. Cookies set on it are written to the
// response just before its headers go out.
type Jar struct {
	r       *http.Request
	signKey []byte

	mu      sync.Mutex
	pending map[string]*http.Cookie
	order   []string
}

// CookiesFrom returns the jar installed by the cookies middleware, or nil.
func CookiesFrom(ctx context.Context) *Jar {
	j, _ := ctx.Value(jarKey{}).(*Jar)
	return j
}

// Get returns a cookie value, preferring one set during this request.
func (j *Jar) Get(name string) (string, bool) {
	j.mu.Lock()
	c, ok := j.pending[name]
	j.mu.Unlock()
	if ok {
		if c.MaxAge < 0 {
			return "", false
		}
		return c.Value, true
	}

	rc, err := j.r.Cookie(name)
	if err != nil {
		return "", false
	}
	return rc.Value, true
}

// Set queues c for the response. Path defaults to "/".
func (j *Jar) Set(c *http.Cookie) {
	if c.Path == "" {
		c.Path = "/"
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if _, ok := j.pending[c.Name]; !ok {
		j.order = append(j.order, c.Name)
	}
	j.pending[c.Name] = c
}

// Delete expires the cookie on the client.
func (j *Jar) Delete(name string) {
	j.Set(&http.Cookie{Name: name, Value: "", MaxAge: -1})
}

// SetSigned stores value with an HMAC so tampering is detected on read.
func (j *Jar) SetSigned(c *http.Cookie) {
	signed := *c
	signed.Value = sign(j.signKey, c.Value)
	j.Set(&signed)
}

// GetSigned returns the verified value of a signed cookie.
func (j *Jar) GetSigned(name string) (string, error) {
	raw, ok := j.Get(name)
	if !ok {
		return "", http.ErrNoCookie
	}
	return verify(j.signKey, raw)
}

func (j *Jar) flush(w http.ResponseWriter) {
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, name := range j.order {
		http.SetCookie(w, j.pending[name])
	}
	j.order = nil
	clear(j.pending)
}

func sign(key []byte, value string) string {
	data := base64.RawURLEncoding.EncodeToString([]byte(value))
	return data + "--" + digest(key, data)
}

func verify(key []byte, raw string) (string, error) {
	data, sig, ok := strings.Cut(raw, "--")
	if !ok || !hmac.Equal([]byte(sig), []byte(digest(key, data))) {
		return "", ErrInvalidSignature
	}
	value, err := base64.RawURLEncoding.DecodeString(data)
	if err != nil {
		return "", ErrInvalidSignature
	}
	return string(value), nil
}

func digest(key []byte, data string) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

// Cookies installs a Jar on each request.
type Cookies struct {
	signKey []byte
}

// NewCookies derives the signing key for signed cookies from keys.
func NewCookies(keys *KeyGenerator) *Cookies {
	return &Cookies{signKey: keys.Generate("signed cookie", 64)}
}

func (m *Cookies) Handle(w http.ResponseWriter, r *http.Request, next http.Handler) {
	jar := &Jar{r: r, signKey: m.signKey, pending: make(map[string]*http.Cookie)}
	hw := newHookWriter(w, func() { jar.flush(w) })

	ctx := context.WithValue(r.Context(), jarKey{}, jar)
	next.ServeHTTP(hw, r.WithContext(ctx))
	hw.fire()
}
