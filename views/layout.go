package views

import (
	"github.com/a-h/templ"
)

// Layout wraps a page body with the document head, navigation, language
// switcher and footer.
func Layout(m Meta, title string, body templ.Component) templ.Component {
	return component(func(h *html) {
		site := m.T("site.title")
		if title == "" || title == site {
			title = site
		} else {
			title += " · " + site
		}

		h.raw(`<!DOCTYPE html><html`)
		h.attr("lang", m.Locale)
		h.raw(`><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.tag("title", title)
		h.raw(`<meta name="description"`)
		h.attr("content", m.T("site.tagline"))
		h.raw(`><link rel="stylesheet" href="/static/app.css">`)
		for _, l := range m.Languages() {
			if l.Active {
				continue
			}
			h.raw(`<link rel="alternate"`)
			h.attr("hreflang", l.Locale)
			h.href(l.URL)
			h.raw(">")
		}
		h.raw(`</head><body>`)

		nav(h, m)

		h.raw(`<main>`)
		if m.Flash != "" {
			h.raw(`<p class="flash" role="status">`)
			h.text(m.Flash)
			h.raw(`</p>`)
		}
		h.render(body)
		h.raw(`</main><footer><p>`)
		h.text(m.T("footer.disclaimer"))
		h.raw(`</p></footer></body></html>`)
	})
}

func nav(h *html, m Meta) {
	h.raw(`<header><a class="brand"`)
	h.href(m.URL("/"))
	h.raw(">")
	h.text(m.T("site.title"))
	h.raw(`</a><nav><ul>`)

	links := []struct{ path, key string }{
		{"/", "nav.home"},
		{"/about", "nav.about"},
		{"/prevention", "nav.prevention"},
		{"/faq", "nav.faq"},
		{"/materials", "nav.materials"},
		{"/chat", "nav.chat"},
	}
	if m.SignedIn {
		links = append(links, struct{ path, key string }{"/admin/documents", "nav.admin"})
	}
	for _, l := range links {
		h.raw(`<li><a`)
		h.href(m.URL(l.path))
		if l.path == m.Path {
			h.raw(` aria-current="page"`)
		}
		h.raw(">")
		h.text(m.T(l.key))
		h.raw(`</a></li>`)
	}
	h.raw(`</ul></nav>`)

	h.raw(`<ul class="languages">`)
	for _, l := range m.Languages() {
		h.raw(`<li>`)
		if l.Active {
			h.raw(`<span aria-current="true"`)
			h.attr("lang", l.Locale)
			h.raw(">")
			h.text(l.Label)
			h.raw(`</span>`)
		} else {
			h.raw(`<a`)
			h.href(l.URL)
			h.attr("hreflang", l.Locale)
			h.attr("lang", l.Locale)
			h.raw(">")
			h.text(l.Label)
			h.raw(`</a>`)
		}
		h.raw(`</li>`)
	}
	h.raw(`</ul></header>`)
}
