package views

import (
	"strings"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/malariainfo/pkg/content"
)

// Home is the landing page: hero, calls to action, quick facts and the
// localized intro text.
func Home(m Meta, intro *content.Page) templ.Component {
	body := component(func(h *html) {
		h.raw(`<section class="hero">`)
		h.tag("h1", m.T("home.hero.title"))
		h.tag("p", m.T("home.hero.subtitle"))
		h.raw(`<p class="cta"><a class="button"`)
		h.href(m.URL("/chat"))
		h.raw(">")
		h.text(m.T("home.cta.chat"))
		h.raw(`</a> <a class="button secondary"`)
		h.href(m.URL("/materials"))
		h.raw(">")
		h.text(m.T("home.cta.materials"))
		h.raw(`</a></p></section>`)

		if facts := m.Bundle.Items("home.facts"); len(facts) > 0 {
			h.raw(`<section class="facts">`)
			for _, f := range facts {
				h.raw(`<article>`)
				h.tag("h2", f.Lookup("title"))
				h.tag("p", f.Lookup("body"))
				h.raw(`</article>`)
			}
			h.raw(`</section>`)
		}

		if intro != nil {
			h.raw(`<section class="prose">`, intro.HTML, `</section>`)
		}
	})
	return Layout(m, "", body)
}

// ContentPage renders a markdown page. Its HTML was sanitized when loaded.
func ContentPage(m Meta, p *content.Page) templ.Component {
	body := component(func(h *html) {
		h.raw(`<article class="prose"`)
		h.attr("lang", p.Locale)
		h.raw(">")
		if !strings.Contains(p.HTML, "<h1") {
			h.tag("h1", p.Title)
		}
		h.raw(p.HTML, `</article>`)
	})
	return Layout(m, p.Title, body)
}

// FAQ lists the question and answer pairs of faq.items.
func FAQ(m Meta) templ.Component {
	title := m.T("faq.title")
	body := component(func(h *html) {
		h.tag("h1", title)
		h.raw(`<div class="faq">`)
		for _, item := range m.Bundle.Items("faq.items") {
			h.raw(`<details><summary>`)
			h.text(item.Lookup("question"))
			h.raw(`</summary>`)
			h.tag("p", item.Lookup("answer"))
			h.raw(`</details>`)
		}
		h.raw(`</div>`)
	})
	return Layout(m, title, body)
}

// ErrorView describes an error page.
type ErrorView struct {
	Title    string
	Message  string
	RetryURL string
	Code     int
}

// Error renders an error page with an optional retry link.
func Error(m Meta, e ErrorView) templ.Component {
	body := component(func(h *html) {
		h.raw(`<section class="error">`)
		h.tag("h1", e.Title)
		h.tag("p", e.Message)
		h.raw(`<p>`)
		if e.RetryURL != "" {
			h.raw(`<a class="button"`)
			h.href(e.RetryURL)
			h.raw(">")
			h.text(m.T("materials.retry"))
			h.raw(`</a> `)
		}
		h.raw(`<a`)
		h.href(m.URL("/"))
		h.raw(">")
		h.text(m.T("errors.back_home"))
		h.raw(`</a></p></section>`)
	})
	return Layout(m, e.Title, body)
}
