package content

import (
	"bytes"
	"cmp"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	"github.com/dmitrymomot/malariainfo/pkg/sanitizer"
)

const ext = ".md"

// Page is a rendered markdown document.
type Page struct {
	Slug        string
	Locale      string
	Title       string
	Description string
	HTML        string
	Order       int
}

// Store holds every rendered page keyed by locale and slug.
type Store struct {
	pages    map[string]map[string]*Page
	fallback string
}

// Option configures Load.
type Option func(*options)

type options struct {
	fallback string
	md       goldmark.Markdown
}

// WithFallbackLocale sets the locale used when a page is missing in the
// requested one.
func WithFallbackLocale(locale string) Option {
	return func(o *options) {
		o.fallback = locale
	}
}

// WithMarkdown replaces the goldmark renderer.
func WithMarkdown(md goldmark.Markdown) Option {
	return func(o *options) {
		if md != nil {
			o.md = md
		}
	}
}

func defaultMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	)
}

// Load walks fsys and renders every {locale}/{slug}.md file.
// Files outside a locale directory are ignored.
func Load(fsys fs.FS, opts ...Option) (*Store, error) {
	o := &options{md: defaultMarkdown()}
	for _, opt := range opts {
		opt(o)
	}

	s := &Store{
		pages:    make(map[string]map[string]*Page),
		fallback: o.fallback,
	}

	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(p) != ext {
			return nil
		}

		locale, name, ok := strings.Cut(p, "/")
		if !ok || strings.Contains(name, "/") {
			return nil
		}

		src, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}

		page, err := render(o.md, src)
		if err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		page.Locale = locale
		page.Slug = strings.TrimSuffix(name, ext)
		if page.Title == "" {
			page.Title = page.Slug
		}

		if s.pages[locale] == nil {
			s.pages[locale] = make(map[string]*Page)
		}
		s.pages[locale][page.Slug] = page
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s, nil
}

func render(md goldmark.Markdown, src []byte) (*Page, error) {
	meta, body, err := splitFrontmatter(src)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := md.Convert(body, &buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}

	return &Page{
		Title:       meta.Title,
		Description: meta.Description,
		Order:       meta.Order,
		HTML:        sanitizer.Content(buf.String()),
	}, nil
}

// Page returns the page for slug in locale, or in the fallback locale when
// the requested translation does not exist.
func (s *Store) Page(locale, slug string) (*Page, error) {
	if p, ok := s.pages[locale][slug]; ok {
		return p, nil
	}
	if s.fallback != "" && s.fallback != locale {
		if p, ok := s.pages[s.fallback][slug]; ok {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s/%s", ErrPageNotFound, locale, slug)
}

// Pages lists the pages available in locale ordered by their frontmatter
// order, then slug.
func (s *Store) Pages(locale string) []*Page {
	out := make([]*Page, 0, len(s.pages[locale]))
	for _, p := range s.pages[locale] {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b *Page) int {
		return cmp.Or(cmp.Compare(a.Order, b.Order), strings.Compare(a.Slug, b.Slug))
	})
	return out
}

// Locales returns the locales that have at least one page.
func (s *Store) Locales() []string {
	out := make([]string, 0, len(s.pages))
	for l := range s.pages {
		out = append(out, l)
	}
	slices.Sort(out)
	return out
}
