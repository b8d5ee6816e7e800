package handlers

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/malariainfo"
	"github.com/dmitrymomot/malariainfo/pkg/content"
	"github.com/dmitrymomot/malariainfo/views"
)

const homeSlug = "home"

// Pages serves the home page, the FAQ and the markdown content pages.
type Pages struct {
	site    *Site
	content *content.Store
}

// NewPages creates the content page handler.
func NewPages(site *Site, store *content.Store) *Pages {
	return &Pages{site: site, content: store}
}

// Routes implements malariainfo.Handler.
func (h *Pages) Routes(r malariainfo.Router) {
	r.Group(func(r malariainfo.Router) {
		r.Use(h.site.Localized())
		r.GET("/{locale}", h.home)
		r.GET("/{locale}/", h.home)
		r.GET("/{locale}/faq", h.faq)
		r.GET("/{locale}/{slug}", h.page)
	})
}

func (h *Pages) home(c malariainfo.Context) error {
	intro, err := h.content.Page(c.Locale(), homeSlug)
	if err != nil && !errors.Is(err, content.ErrPageNotFound) {
		return err
	}
	return c.Render(http.StatusOK, views.Home(h.site.Meta(c), intro))
}

func (h *Pages) faq(c malariainfo.Context) error {
	return c.Render(http.StatusOK, views.FAQ(h.site.Meta(c)))
}

func (h *Pages) page(c malariainfo.Context) error {
	slug := c.Param("slug")
	if slug == homeSlug {
		return c.Redirect(http.StatusMovedPermanently, c.LocalePath("/"))
	}
	p, err := h.content.Page(c.Locale(), slug)
	if errors.Is(err, content.ErrPageNotFound) {
		return malariainfo.ErrNotFound("errors.not_found", malariainfo.WithError(err), malariainfo.WithErrorCode("not_found"))
	}
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, views.ContentPage(h.site.Meta(c), p))
}
