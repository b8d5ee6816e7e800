// Package views renders the site's pages as templ components.
//
// Components are plain templ.ComponentFunc values, so handlers pass them to
// Context.Render like any generated component. All text is escaped with
// templ.EscapeString; only markdown already run through the sanitizer is
// written raw.
package views
