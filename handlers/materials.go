package handlers

import (
	"context"
	"net/http"
	"net/url"
	"slices"

	"github.com/dmitrymomot/malariainfo"
	"github.com/dmitrymomot/malariainfo/pkg/backend"
	"github.com/dmitrymomot/malariainfo/views"
)

// Catalog reads published documents. Implemented by *backend.Client.
type Catalog interface {
	ListDocuments(ctx context.Context) ([]backend.Document, error)
	GetDocument(ctx context.Context, id string) (*backend.Document, error)
}

// Materials is the public materials library.
type Materials struct {
	site    *Site
	catalog Catalog
}

// NewMaterials creates the materials handler.
func NewMaterials(site *Site, catalog Catalog) *Materials {
	return &Materials{site: site, catalog: catalog}
}

// Routes implements malariainfo.Handler.
func (h *Materials) Routes(r malariainfo.Router) {
	r.Group(func(r malariainfo.Router) {
		r.Use(h.site.Localized())
		r.GET("/{locale}/materials", h.list)
		r.GET("/{locale}/materials/{id}", h.show)
	})
}

// list renders the library. A failing backend still renders the page, with
// a retry link in place of the list.
func (h *Materials) list(c malariainfo.Context) error {
	docs, err := h.catalog.ListDocuments(c)
	if err != nil {
		c.LogWarn("list materials failed", "error", err)
		return c.Render(http.StatusBadGateway, views.Materials(h.site.Meta(c), nil, true))
	}
	return c.Render(http.StatusOK, views.Materials(h.site.Meta(c), sortByLocale(docs, c.Locale()), false))
}

func (h *Materials) show(c malariainfo.Context) error {
	id := c.Param("id")
	d, err := h.catalog.GetDocument(c, id)
	if err != nil {
		return backendError(err, c.LocalePath("/materials/"+url.PathEscape(id)))
	}
	return c.Render(http.StatusOK, views.Material(h.site.Meta(c), *d))
}

// sortByLocale moves documents in the visitor's language first, keeping
// the backend order otherwise.
func sortByLocale(docs []backend.Document, l string) []backend.Document {
	out := slices.Clone(docs)
	slices.SortStableFunc(out, func(a, b backend.Document) int {
		switch {
		case a.Language == l && b.Language != l:
			return -1
		case a.Language != l && b.Language == l:
			return 1
		}
		return 0
	})
	return out
}
