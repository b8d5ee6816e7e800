package middlewares

import (
	"net/http"

	"github.com/dmitrymomot/malariainfo/internal"
	"github.com/dmitrymomot/malariainfo/pkg/locale"
	"github.com/dmitrymomot/malariainfo/pkg/logger"
)

// Locale routes every request through the resolver before chi matches it.
//
//   - Excluded paths (assets, /api/, health, files) pass through untouched.
//   - Unprefixed paths get a 307 to /{locale}{path} with the query kept and
//     the NEXT_LOCALE cookie set to the chosen locale.
//   - Prefixed paths are served. Extra locale segments are removed from the
//     request path in place (/en/en/x is served as /en/x), the locale is
//     stored on the request and the cookie is refreshed if it disagrees.
//
// Register it with WithMiddleware so the rewrite happens before routing.
func Locale(r *locale.Resolver) internal.Middleware {
	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			req := c.Request()
			cookieValue, _ := c.Cookie(locale.CookieName)
			res := r.Resolve(req.URL.Path, cookieValue, c.Header("Accept-Language"))

			switch res.State {
			case locale.Excluded:
				return next(c)

			case locale.Unprefixed:
				target := res.Target
				if req.URL.RawQuery != "" {
					target += "?" + req.URL.RawQuery
				}
				c.Cookies().SetLocale(c.Response(), res.Locale)
				c.Response().Header().Add("Vary", "Accept-Language, Cookie")
				c.LogDebug("locale redirect", "from", req.URL.Path, "to", res.Target)
				return c.Redirect(http.StatusTemporaryRedirect, target)
			}

			if res.Rewrite {
				c.Rewrite(res.Target)
			}
			if cookieValue != res.Locale {
				c.Cookies().SetLocale(c.Response(), res.Locale)
			}
			c.Set(internal.LocaleKey{}, res.Locale)
			c.SetHeader("Content-Language", res.Locale)
			return next(c)
		}
	}
}

// LocaleExtractor adds locale to log entries of locale-routed requests.
func LocaleExtractor() logger.ContextExtractor {
	return logger.StringExtractor("locale", internal.LocaleKey{})
}
