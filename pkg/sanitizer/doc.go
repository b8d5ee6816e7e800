// Package sanitizer cleans HTML coming from markdown content and from the
// document backend before it is rendered into pages.
package sanitizer
