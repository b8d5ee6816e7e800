package handlers

import (
	"net/http"

	"github.com/dmitrymomot/malariainfo"
	"github.com/dmitrymomot/malariainfo/middlewares"
	"github.com/dmitrymomot/malariainfo/pkg/locale"
)

// Translations serves cached bundles to client scripts.
type Translations struct {
	resolver *locale.Resolver
	loader   middlewares.BundleLoader
}

// NewTranslations creates the translations API handler.
func NewTranslations(r *locale.Resolver, l middlewares.BundleLoader) *Translations {
	return &Translations{resolver: r, loader: l}
}

// Routes implements malariainfo.Handler.
func (h *Translations) Routes(r malariainfo.Router) {
	r.GET("/api/translations/{locale}", h.bundle)
}

func (h *Translations) bundle(c malariainfo.Context) error {
	l, ok := h.resolver.Supported(c.Param("locale"))
	if !ok {
		return malariainfo.ErrNotFound("errors.not_found", malariainfo.WithErrorCode("unknown_locale"))
	}

	b := h.loader.Load(c, l)
	if len(b) == 0 {
		return malariainfo.ErrServiceUnavailable("errors.generic", malariainfo.WithErrorCode("translations_unavailable"))
	}

	c.SetHeader("Cache-Control", "public, max-age=300")
	c.SetHeader("Content-Language", l)
	return c.JSON(http.StatusOK, b)
}
