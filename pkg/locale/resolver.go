package locale

import (
	"net/http"
	"path"
	"slices"
	"strings"

	"golang.org/x/text/language"
)

const (
	// CookieName is the cookie that caches the last resolved locale.
	CookieName = "NEXT_LOCALE"

	// CookieMaxAge is the lifetime of the locale cookie in seconds (30 days).
	CookieMaxAge = 30 * 24 * 60 * 60

	// maxAcceptLanguageLength caps the header size we are willing to parse.
	maxAcceptLanguageLength = 4096
)

// DefaultExcludedPrefixes are path prefixes that never take part in locale routing.
var DefaultExcludedPrefixes = []string{
	"/api/",
	"/static/",
	"/assets/",
	"/images/",
	"/public/",
	"/health/",
	"/favicon.ico",
	"/robots.txt",
	"/sitemap.xml",
}

// State classifies a request path for locale routing.
type State int

const (
	// Unprefixed paths carry no locale segment and must be redirected.
	Unprefixed State = iota
	// Prefixed paths start with a configured locale and are routed as is.
	Prefixed
	// Excluded paths bypass locale routing.
	Excluded
)

func (s State) String() string {
	switch s {
	case Prefixed:
		return "prefixed"
	case Excluded:
		return "excluded"
	default:
		return "unprefixed"
	}
}

// Resolution is the outcome of resolving a single request.
type Resolution struct {
	// Locale is the resolved locale. Empty for excluded paths.
	Locale string
	// Path is the request path without any locale segment. Never empty.
	Path string
	// Target is the canonical locale-prefixed path.
	// For unprefixed requests this is the redirect location.
	Target string
	// State classifies the request.
	State State
	// Rewrite is set for prefixed requests whose path had to be normalized
	// (duplicate locale segments or non-canonical casing).
	Rewrite bool
}

// Resolver determines the locale and canonical path of requests.
// It is immutable after creation and safe for concurrent use.
type Resolver struct {
	lookup        map[string]string // lower-cased tag -> configured tag
	bases         map[string]string // base language -> first configured tag
	defaultLocale string
	locales       []string
	excluded      []string
	excludeFiles  bool
}

// Option configures the Resolver during construction.
type Option func(*Resolver) error

// New creates a Resolver. At least one locale must be configured.
// When no default is given, the first configured locale is used.
func New(opts ...Option) (*Resolver, error) {
	r := &Resolver{
		lookup:       make(map[string]string),
		bases:        make(map[string]string),
		excluded:     DefaultExcludedPrefixes,
		excludeFiles: true,
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	if len(r.locales) == 0 {
		return nil, ErrNoLocales
	}

	if r.defaultLocale == "" {
		r.defaultLocale = r.locales[0]
	}

	def, ok := r.lookup[strings.ToLower(r.defaultLocale)]
	if !ok {
		return nil, ErrUnsupportedDefault
	}
	r.defaultLocale = def

	return r, nil
}

// WithLocales sets the configured locales. Order matters for base-language
// matching: "en" in a header matches the first configured "en-*" locale.
func WithLocales(locales ...string) Option {
	return func(r *Resolver) error {
		for _, l := range locales {
			l = strings.TrimSpace(l)
			if l == "" {
				return ErrEmptyLocale
			}

			key := strings.ToLower(l)
			if _, exists := r.lookup[key]; exists {
				continue
			}

			r.lookup[key] = l
			r.locales = append(r.locales, l)

			base := key
			if tag, err := language.Parse(l); err == nil {
				b, _ := tag.Base()
				base = b.String()
			}
			if _, exists := r.bases[base]; !exists {
				r.bases[base] = l
			}
		}
		return nil
	}
}

// WithDefault sets the fallback locale.
func WithDefault(l string) Option {
	return func(r *Resolver) error {
		l = strings.TrimSpace(l)
		if l == "" {
			return ErrEmptyLocale
		}
		r.defaultLocale = l
		return nil
	}
}

// WithExcludedPrefixes replaces the reserved path prefixes.
func WithExcludedPrefixes(prefixes ...string) Option {
	return func(r *Resolver) error {
		r.excluded = slices.Clone(prefixes)
		return nil
	}
}

// WithFileExclusion controls whether paths whose last segment has a file
// extension bypass locale routing. Enabled by default.
func WithFileExclusion(enabled bool) Option {
	return func(r *Resolver) error {
		r.excludeFiles = enabled
		return nil
	}
}

// Locales returns the configured locales in configuration order.
func (r *Resolver) Locales() []string {
	return slices.Clone(r.locales)
}

// Default returns the fallback locale.
func (r *Resolver) Default() string {
	return r.defaultLocale
}

// Supported reports whether tag is a configured locale (case-insensitive)
// and returns its configured spelling.
func (r *Resolver) Supported(tag string) (string, bool) {
	l, ok := r.lookup[strings.ToLower(strings.TrimSpace(tag))]
	return l, ok
}

// Normalize returns the configured spelling of tag, or the default locale
// when tag is not configured.
func (r *Resolver) Normalize(tag string) string {
	if l, ok := r.Supported(tag); ok {
		return l
	}
	return r.defaultLocale
}

// IsExcluded reports whether the path bypasses locale routing.
func (r *Resolver) IsExcluded(p string) bool {
	for _, prefix := range r.excluded {
		if strings.HasPrefix(p, prefix) || p == strings.TrimSuffix(prefix, "/") {
			return true
		}
	}

	if r.excludeFiles {
		if last := path.Base(p); last != "/" && path.Ext(last) != "" {
			return true
		}
	}

	return false
}

// FromAcceptLanguage returns the first configured locale matched by the
// header, honouring quality values. Exact tags win over base-language matches
// at the same position.
func (r *Resolver) FromAcceptLanguage(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", false
	}
	if len(header) > maxAcceptLanguageLength {
		header = header[:maxAcceptLanguageLength]
		if i := strings.LastIndexByte(header, ','); i >= 0 {
			header = header[:i]
		}
	}

	for _, tag := range parseAcceptLanguage(header) {
		if l, ok := r.lookup[strings.ToLower(tag.String())]; ok {
			return l, true
		}
		base, conf := tag.Base()
		if conf == language.No {
			continue
		}
		if l, ok := r.bases[base.String()]; ok {
			return l, true
		}
	}

	return "", false
}

// parseAcceptLanguage returns the header's tags ordered by quality. When the
// header does not parse as a whole, malformed entries are dropped and the
// rest kept.
func parseAcceptLanguage(header string) []language.Tag {
	tags, _, err := language.ParseAcceptLanguage(header)
	if err == nil {
		return tags
	}

	valid := make([]string, 0, strings.Count(header, ",")+1)
	for entry := range strings.SplitSeq(header, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if _, _, err := language.ParseAcceptLanguage(entry); err == nil {
			valid = append(valid, entry)
		}
	}
	if len(valid) == 0 {
		return nil
	}

	tags, _, err = language.ParseAcceptLanguage(strings.Join(valid, ","))
	if err != nil {
		return nil
	}
	return tags
}

// Preferred picks the locale for an unprefixed request:
// configured cookie value, then Accept-Language, then the default.
func (r *Resolver) Preferred(cookieValue, acceptLanguage string) string {
	if l, ok := r.Supported(cookieValue); ok {
		return l
	}
	if l, ok := r.FromAcceptLanguage(acceptLanguage); ok {
		return l
	}
	return r.defaultLocale
}

// Strip removes every configured locale segment from the path.
// The result always starts with "/" and is "/" when nothing remains.
func (r *Resolver) Strip(p string) string {
	return joinSegments(r.withoutLocales(splitSegments(p)))
}

// Prefix builds the canonical path for locale and a locale-free path.
func (r *Resolver) Prefix(l, p string) string {
	if p == "" || p == "/" {
		return "/" + l
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return "/" + l + p
}

// Switch rewrites any path into the equivalent path for another locale.
// Unconfigured locales are normalized to the default.
func (r *Resolver) Switch(p, l string) string {
	return r.Prefix(r.Normalize(l), r.Strip(p))
}

// Resolve classifies the request path and determines its locale.
// It never fails: ambiguity always resolves to the default locale.
func (r *Resolver) Resolve(p, cookieValue, acceptLanguage string) Resolution {
	if r.IsExcluded(p) {
		return Resolution{State: Excluded, Path: p, Target: p}
	}

	segments := splitSegments(p)

	if len(segments) > 0 {
		if l, ok := r.Supported(segments[0]); ok {
			rest := segments[1:]
			clean := r.withoutLocales(rest)
			cleanPath := joinSegments(clean)

			return Resolution{
				State:   Prefixed,
				Locale:  l,
				Path:    cleanPath,
				Target:  r.Prefix(l, cleanPath),
				Rewrite: segments[0] != l || len(clean) != len(rest),
			}
		}
	}

	l := r.Preferred(cookieValue, acceptLanguage)
	cleanPath := joinSegments(r.withoutLocales(segments))

	return Resolution{
		State:  Unprefixed,
		Locale: l,
		Path:   cleanPath,
		Target: r.Prefix(l, cleanPath),
	}
}

func (r *Resolver) withoutLocales(segments []string) []string {
	out := make([]string, 0, len(segments))
	for _, s := range segments {
		if _, ok := r.Supported(s); ok {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Cookie builds the locale cookie for the given locale.
func Cookie(l string, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    l,
		Path:     "/",
		MaxAge:   CookieMaxAge,
		HttpOnly: false,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func splitSegments(p string) []string {
	parts := strings.Split(p, "/")
	out := make([]string, 0, len(parts))
	for _, s := range parts {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func joinSegments(segments []string) string {
	if len(segments) == 0 {
		return "/"
	}
	return "/" + strings.Join(segments, "/")
}
