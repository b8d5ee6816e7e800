package cookie

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrymomot/malariainfo/pkg/backend"
	"github.com/dmitrymomot/malariainfo/pkg/locale"
)

var (
	ErrNotFound = errors.New("cookie: not found")
	ErrBadSig   = errors.New("cookie: invalid signature")
)

const (
	flashPrefix  = "flash_"
	minSecretLen = 32
)

// Manager writes the site's cookies with consistent attributes.
type Manager struct {
	secret   []byte
	secure   bool
	sameSite http.SameSite
}

// Option configures the Manager.
type Option func(*Manager)

// New creates a Manager. Without WithSecret a random signing key is generated,
// so flash cookies do not survive a restart.
func New(opts ...Option) *Manager {
	m := &Manager{sameSite: http.SameSiteLaxMode}
	for _, opt := range opts {
		opt(m)
	}
	if m.secret == nil {
		m.secret = make([]byte, minSecretLen)
		_, _ = rand.Read(m.secret)
	}
	return m
}

// WithSecret sets the flash signing key. Secrets shorter than 32 bytes are
// ignored.
func WithSecret(secret string) Option {
	return func(m *Manager) {
		if len(secret) >= minSecretLen {
			m.secret = []byte(secret)
		}
	}
}

// WithSecure sets the Secure flag on every cookie.
func WithSecure(secure bool) Option {
	return func(m *Manager) {
		m.secure = secure
	}
}

// WithSameSite overrides SameSite=Lax.
func WithSameSite(ss http.SameSite) Option {
	return func(m *Manager) {
		m.sameSite = ss
	}
}

// Secure reports whether cookies carry the Secure flag.
func (m *Manager) Secure() bool {
	return m.secure
}

// Get returns a cookie value.
func (m *Manager) Get(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", ErrNotFound
		}
		return "", err
	}
	return c.Value, nil
}

// SetLocale persists the preferred locale. The cookie stays readable by
// client scripts.
func (m *Manager) SetLocale(w http.ResponseWriter, l string) {
	c := locale.Cookie(l, m.secure)
	c.SameSite = m.sameSite
	http.SetCookie(w, c)
}

// Relay writes backend-issued auth cookies on the browser response,
// applying this site's Secure and SameSite settings.
func (m *Manager) Relay(w http.ResponseWriter, cookies []*http.Cookie) {
	for _, c := range cookies {
		cp := *c
		cp.Secure = m.secure
		cp.SameSite = m.sameSite
		cp.HttpOnly = true
		http.SetCookie(w, &cp)
	}
}

// Set writes an HttpOnly cookie scoped to the whole site.
func (m *Manager) Set(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, m.cookie(name, value, maxAge))
}

// Delete expires a cookie written by Set.
func (m *Manager) Delete(w http.ResponseWriter, name string) {
	http.SetCookie(w, m.cookie(name, "", -1))
}

// ClearAuth expires the auth cookies.
func (m *Manager) ClearAuth(w http.ResponseWriter) {
	for _, name := range []string{backend.AuthCookie, backend.RefreshCookie} {
		http.SetCookie(w, m.cookie(name, "", -1))
	}
}

// SetFlash stores a one-shot notice, typically a translation key shown
// after a redirect.
func (m *Manager) SetFlash(w http.ResponseWriter, key, value string) {
	http.SetCookie(w, m.cookie(flashPrefix+key, m.sign(value), 0))
}

// Flash reads and clears a notice set by SetFlash.
func (m *Manager) Flash(w http.ResponseWriter, r *http.Request, key string) (string, error) {
	raw, err := m.Get(r, flashPrefix+key)
	if err != nil {
		return "", err
	}
	http.SetCookie(w, m.cookie(flashPrefix+key, "", -1))
	return m.verify(raw)
}

func (m *Manager) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		Secure:   m.secure,
		HttpOnly: true,
		SameSite: m.sameSite,
	}
}

// sign encodes value as base64(value).base64(hmac).
func (m *Manager) sign(value string) string {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(value))
	return base64.RawURLEncoding.EncodeToString([]byte(value)) + "." +
		base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func (m *Manager) verify(raw string) (string, error) {
	v, s, ok := strings.Cut(raw, ".")
	if !ok {
		return "", ErrBadSig
	}
	value, err := base64.RawURLEncoding.DecodeString(v)
	if err != nil {
		return "", ErrBadSig
	}
	sig, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return "", ErrBadSig
	}

	mac := hmac.New(sha256.New, m.secret)
	mac.Write(value)
	if !hmac.Equal(sig, mac.Sum(nil)) {
		return "", ErrBadSig
	}
	return string(value), nil
}
