package handlers

import (
	"github.com/dmitrymomot/malariainfo"
	"github.com/dmitrymomot/malariainfo/middlewares"
	"github.com/dmitrymomot/malariainfo/pkg/backend"
	"github.com/dmitrymomot/malariainfo/pkg/locale"
	"github.com/dmitrymomot/malariainfo/pkg/messages"
	"github.com/dmitrymomot/malariainfo/views"
)

const flashKey = "notice"

// Site is shared by every page handler. It builds the view metadata of a
// request and knows the configured locales.
type Site struct {
	resolver *locale.Resolver
	loader   middlewares.BundleLoader
}

// NewSite creates a Site.
func NewSite(r *locale.Resolver, l middlewares.BundleLoader) *Site {
	return &Site{resolver: r, loader: l}
}

// Localized rejects requests the Locale middleware did not resolve. Page
// patterns start with {locale}, which would otherwise also match /api/...
// and other excluded prefixes.
func (s *Site) Localized() malariainfo.Middleware {
	return func(next malariainfo.HandlerFunc) malariainfo.HandlerFunc {
		return func(c malariainfo.Context) error {
			if c.Locale() == "" {
				return malariainfo.ErrNotFound("errors.not_found", malariainfo.WithErrorCode("not_found"))
			}
			return next(c)
		}
	}
}

// Meta collects what the layout needs. It consumes the pending flash.
func (s *Site) Meta(c malariainfo.Context) views.Meta {
	m := s.meta(c, c.Bundle())
	if key := c.Flash(flashKey); key != "" {
		m.Flash = m.T(key)
	}
	return m
}

func (s *Site) meta(c malariainfo.Context, b messages.Bundle) views.Meta {
	return views.Meta{
		Bundle:   b,
		Locale:   s.locale(c),
		Path:     s.resolver.Strip(c.Request().URL.Path),
		Locales:  s.resolver.Locales(),
		SignedIn: signedIn(c),
	}
}

// locale is the request locale, or the visitor's preferred one on paths
// the resolver excludes.
func (s *Site) locale(c malariainfo.Context) string {
	if l := c.Locale(); l != "" {
		return l
	}
	cookieValue, _ := c.Cookie(locale.CookieName)
	return s.resolver.Preferred(cookieValue, c.Header("Accept-Language"))
}

// bundle returns the request bundle, loading one for requests that never
// went through the Messages middleware.
func (s *Site) bundle(c malariainfo.Context) messages.Bundle {
	if b := c.Bundle(); len(b) > 0 {
		return b
	}
	if s.loader == nil {
		return messages.Bundle{}
	}
	return s.loader.Load(c, s.locale(c))
}

func signedIn(c malariainfo.Context) bool {
	for _, name := range []string{backend.AuthCookie, backend.RefreshCookie} {
		if v, err := c.Cookie(name); err == nil && v != "" {
			return true
		}
	}
	return false
}
