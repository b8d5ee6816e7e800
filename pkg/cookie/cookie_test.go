package cookie_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/malariainfo/pkg/backend"
	"github.com/dmitrymomot/malariainfo/pkg/cookie"
	"github.com/dmitrymomot/malariainfo/pkg/locale"
)

const secret = "0123456789abcdef0123456789abcdef"

func responseCookies(rec *httptest.ResponseRecorder) map[string]*http.Cookie {
	out := map[string]*http.Cookie{}
	for _, c := range rec.Result().Cookies() {
		out[c.Name] = c
	}
	return out
}

func TestManager_Get(t *testing.T) {
	t.Parallel()

	m := cookie.New()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "a", Value: "b"})

	v, err := m.Get(r, "a")
	require.NoError(t, err)
	require.Equal(t, "b", v)

	_, err = m.Get(r, "missing")
	require.ErrorIs(t, err, cookie.ErrNotFound)
}

func TestManager_SetLocale(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	cookie.New(cookie.WithSecure(true)).SetLocale(rec, "yo")

	c := responseCookies(rec)[locale.CookieName]
	require.NotNil(t, c)
	require.Equal(t, "yo", c.Value)
	require.Equal(t, "/", c.Path)
	require.Equal(t, locale.CookieMaxAge, c.MaxAge)
	require.False(t, c.HttpOnly)
	require.True(t, c.Secure)
	require.Equal(t, http.SameSiteLaxMode, c.SameSite)
}

func TestManager_RelayAndClear(t *testing.T) {
	t.Parallel()

	m := cookie.New(cookie.WithSecure(true))

	rec := httptest.NewRecorder()
	m.Relay(rec, []*http.Cookie{
		{Name: backend.AuthCookie, Value: "access", Path: "/", MaxAge: 900},
		{Name: backend.RefreshCookie, Value: "refresh", Path: "/", MaxAge: 3600},
	})
	got := responseCookies(rec)
	require.Equal(t, "access", got[backend.AuthCookie].Value)
	require.True(t, got[backend.AuthCookie].HttpOnly)
	require.True(t, got[backend.AuthCookie].Secure)
	require.Equal(t, 900, got[backend.AuthCookie].MaxAge)
	require.Equal(t, "refresh", got[backend.RefreshCookie].Value)

	rec = httptest.NewRecorder()
	m.ClearAuth(rec)
	got = responseCookies(rec)
	require.Negative(t, got[backend.AuthCookie].MaxAge)
	require.Negative(t, got[backend.RefreshCookie].MaxAge)
}

func TestManager_Flash(t *testing.T) {
	t.Parallel()

	m := cookie.New(cookie.WithSecret(secret))

	rec := httptest.NewRecorder()
	m.SetFlash(rec, "notice", "admin.documents.deleted")
	set := responseCookies(rec)["flash_notice"]
	require.NotNil(t, set)
	require.NotContains(t, set.Value, "admin.documents.deleted")

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(set)
	rec = httptest.NewRecorder()

	v, err := m.Flash(rec, r, "notice")
	require.NoError(t, err)
	require.Equal(t, "admin.documents.deleted", v)
	require.Negative(t, responseCookies(rec)["flash_notice"].MaxAge, "flash cleared after read")

	_, err = m.Flash(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), "notice")
	require.ErrorIs(t, err, cookie.ErrNotFound)
}

func TestManager_FlashTampered(t *testing.T) {
	t.Parallel()

	m := cookie.New(cookie.WithSecret(secret))
	other := cookie.New(cookie.WithSecret(strings.Repeat("x", 32)))

	rec := httptest.NewRecorder()
	other.SetFlash(rec, "notice", "errors.generic")

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(responseCookies(rec)["flash_notice"])
	_, err := m.Flash(httptest.NewRecorder(), r, "notice")
	require.ErrorIs(t, err, cookie.ErrBadSig)

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "flash_notice", Value: "garbage"})
	_, err = m.Flash(httptest.NewRecorder(), r, "notice")
	require.ErrorIs(t, err, cookie.ErrBadSig)
}

func TestManager_RandomSecretWhenShort(t *testing.T) {
	t.Parallel()

	m := cookie.New(cookie.WithSecret("short"))
	rec := httptest.NewRecorder()
	m.SetFlash(rec, "n", "v")

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(responseCookies(rec)["flash_n"])
	v, err := m.Flash(httptest.NewRecorder(), r, "n")
	require.NoError(t, err)
	require.Equal(t, "v", v)
}

func TestManager_SetAndDelete(t *testing.T) {
	t.Parallel()

	m := cookie.New(cookie.WithSecure(true))

	rec := httptest.NewRecorder()
	m.Set(rec, "chat_session", "abc", 3600)
	c := responseCookies(rec)["chat_session"]
	require.NotNil(t, c)
	require.Equal(t, "abc", c.Value)
	require.Equal(t, "/", c.Path)
	require.True(t, c.HttpOnly)
	require.True(t, c.Secure)
	require.Equal(t, 3600, c.MaxAge)

	rec = httptest.NewRecorder()
	m.Delete(rec, "chat_session")
	c = responseCookies(rec)["chat_session"]
	require.NotNil(t, c)
	require.Empty(t, c.Value)
	require.Negative(t, c.MaxAge)
}
