// Package locale resolves the active locale of an HTTP request and produces
// canonical, locale-prefixed URL paths.
//
// Resolution is a pure function of three inputs: the request path, the value
// of the locale cookie, and the Accept-Language header. The cookie is treated
// as a cache of a previous decision, never as the authority: a path prefix
// always wins, and an unconfigured cookie value is ignored.
//
// # Basic Usage
//
//	res, err := locale.New(
//		locale.WithLocales("en", "yo"),
//		locale.WithDefault("en"),
//	)
//
//	out := res.Resolve("/dashboard", "", "yo,en;q=0.5")
//	// out.State  == locale.Unprefixed
//	// out.Locale == "yo"
//	// out.Target == "/yo/dashboard"
//
// # States
//
// Every path falls into exactly one State:
//
//   - Excluded: reserved prefixes (API routes, static assets, health probes)
//     and paths that name a file. These bypass locale handling entirely.
//   - Prefixed: the first segment is a configured locale. The request is
//     already canonical for routing. Extra locale segments further down the
//     path are stripped and reported through Resolution.Rewrite.
//   - Unprefixed: anything else. The caller should redirect to
//     Resolution.Target and persist Resolution.Locale in the locale cookie.
//
// # Cookie
//
// The locale cookie is named NEXT_LOCALE, lives for 30 days on path "/",
// is readable by client scripts and uses SameSite=Lax. Use Cookie to build it.
package locale
