package middlewares

import (
	"net/http"
	"net/url"

	"github.com/dmitrymomot/malariainfo/internal"
	"github.com/dmitrymomot/malariainfo/pkg/backend"
)

// RequireAuthCookie guards admin routes. The backend owns the session, so
// this only checks that the browser holds one of its auth cookies; the
// backend still rejects stale tokens. Pages redirect to the login form with
// a next parameter, API calls get 401.
func RequireAuthCookie() internal.Middleware {
	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			if hasAuthCookie(c) {
				return next(c)
			}
			if c.IsAPI() {
				return internal.ErrUnauthorized("errors.unauthorized", internal.WithErrorCode("unauthorized"))
			}
			login := c.LocalePath("/admin/login") + "?next=" + url.QueryEscape(c.Request().URL.RequestURI())
			return c.Redirect(http.StatusSeeOther, login)
		}
	}
}

func hasAuthCookie(c internal.Context) bool {
	for _, name := range []string{backend.AuthCookie, backend.RefreshCookie} {
		if v, err := c.Cookie(name); err == nil && v != "" {
			return true
		}
	}
	return false
}
