// Package content serves localized markdown pages.
//
// Pages live in an fs.FS laid out as {locale}/{slug}.md. Each file may start
// with a YAML frontmatter block:
//
//	---
//	title: Prevention
//	description: Sleep under a treated net.
//	---
//
//	# Prevention
//	...
//
// Load renders every page once with goldmark and runs the output through
// sanitizer.Content. The resulting Store is immutable and safe for concurrent
// use.
//
//	store, err := content.Load(data.Content(), content.WithFallbackLocale("en"))
//	page, err := store.Page("yo", "prevention")
//
// A slug missing in the requested locale falls back to the fallback locale.
// Page.Locale reports which translation was actually served.
package content
