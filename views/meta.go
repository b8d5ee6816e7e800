package views

import (
	"github.com/dmitrymomot/malariainfo/pkg/messages"
)

// Meta is the per-request data every page needs.
type Meta struct {
	Bundle messages.Bundle
	// Locale is the active locale.
	Locale string
	// Path is the current path without its locale prefix. The language
	// switcher links to it under every other locale.
	Path    string
	Locales []string
	Flash   string
	// SignedIn is true when the browser holds backend auth cookies.
	SignedIn bool
}

// T translates key with the page bundle.
func (m Meta) T(key string, args ...messages.M) string {
	return m.Bundle.T(key, args...)
}

// URL prefixes a locale-free path with the active locale.
func (m Meta) URL(p string) string {
	return localePath(m.Locale, p)
}

func localePath(l, p string) string {
	if p == "" || p == "/" {
		return "/" + l
	}
	if p[0] != '/' {
		p = "/" + p
	}
	return "/" + l + p
}

// LanguageLink is one entry of the language switcher.
type LanguageLink struct {
	Locale string
	Label  string
	URL    string
	Active bool
}

// Languages returns the switcher links for the current page.
func (m Meta) Languages() []LanguageLink {
	out := make([]LanguageLink, 0, len(m.Locales))
	for _, l := range m.Locales {
		out = append(out, LanguageLink{
			Locale: l,
			Label:  m.T("languages." + l),
			URL:    localePath(l, m.Path),
			Active: l == m.Locale,
		})
	}
	return out
}
