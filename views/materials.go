package views

import (
	"fmt"
	"net/url"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/malariainfo/pkg/backend"
	"github.com/dmitrymomot/malariainfo/pkg/messages"
	"github.com/dmitrymomot/malariainfo/pkg/sanitizer"
)

const dateLayout = "2 Jan 2006"

// Materials lists the published documents. When failed is set the backend
// could not be reached and a retry link is shown instead of the list.
func Materials(m Meta, docs []backend.Document, failed bool) templ.Component {
	title := m.T("materials.title")
	body := component(func(h *html) {
		h.tag("h1", title)
		switch {
		case failed:
			unavailable(h, m, m.URL("/materials"))
		case len(docs) == 0:
			h.raw(`<p class="empty">`)
			h.text(m.T("materials.empty"))
			h.raw(`</p>`)
		default:
			h.raw(`<ul class="materials">`)
			for _, d := range docs {
				h.raw(`<li><a`)
				h.href(m.URL("/materials/" + url.PathEscape(d.ID)))
				h.raw(">")
				h.text(d.Title)
				h.raw(`</a>`)
				if d.Language != "" {
					h.raw(` <span class="tag"`)
					h.attr("lang", d.Language)
					h.raw(">")
					h.text(d.Language)
					h.raw(`</span>`)
				}
				if d.Description != "" {
					h.tag("p", sanitizer.Text(d.Description))
				}
				h.raw(`</li>`)
			}
			h.raw(`</ul>`)
		}
	})
	return Layout(m, title, body)
}

// Material shows one document with its download link.
func Material(m Meta, d backend.Document) templ.Component {
	body := component(func(h *html) {
		h.raw(`<article class="material">`)
		h.tag("h1", d.Title)
		if d.Category != "" {
			h.raw(`<p class="tag">`)
			h.text(d.Category)
			h.raw(`</p>`)
		}
		if d.Description != "" {
			h.tag("p", sanitizer.Text(d.Description))
		}
		if !d.UpdatedAt.IsZero() {
			h.raw(`<p class="meta"><time`)
			h.attr("datetime", d.UpdatedAt.Format("2006-01-02"))
			h.raw(">")
			h.text(m.T("materials.updated", messages.M{"date": d.UpdatedAt.Format(dateLayout)}))
			h.raw(`</time></p>`)
		}
		if d.FileURL != "" {
			h.raw(`<p><a class="button" rel="noopener" target="_blank"`)
			h.href(d.FileURL)
			h.raw(">")
			h.text(m.T("materials.download"))
			if d.FileSize > 0 {
				h.text(" (" + humanSize(d.FileSize) + ")")
			}
			h.raw(`</a></p>`)
		}
		h.raw(`<p><a`)
		h.href(m.URL("/materials"))
		h.raw(">")
		h.text(m.T("materials.back"))
		h.raw(`</a></p></article>`)
	})
	return Layout(m, d.Title, body)
}

func unavailable(h *html, m Meta, retry string) {
	h.raw(`<div class="error" role="alert"><p>`)
	h.text(m.T("materials.error"))
	h.raw(`</p><p><a class="button"`)
	h.href(retry)
	h.raw(">")
	h.text(m.T("materials.retry"))
	h.raw(`</a></p></div>`)
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGT"[exp])
}
