package middlewares

import (
	"context"

	"github.com/dmitrymomot/malariainfo/internal"
	"github.com/dmitrymomot/malariainfo/pkg/messages"
)

// BundleLoader provides the translation bundle of a locale. Implemented by
// *messages.Loader.
type BundleLoader interface {
	Load(ctx context.Context, locale string) messages.Bundle
}

// Messages stores the bundle of the request locale so handlers and views
// can call c.T. Requests without a locale (excluded paths) are left alone.
// A failed fetch yields an empty bundle, and pages then show raw keys.
func Messages(l BundleLoader) internal.Middleware {
	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			if loc := c.Locale(); loc != "" {
				c.Set(internal.BundleKey{}, l.Load(c, loc))
			}
			return next(c)
		}
	}
}
