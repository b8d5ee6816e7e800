package sanitizer

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	plainPolicy   *bluemonday.Policy
	contentPolicy *bluemonday.Policy
	policiesOnce  sync.Once
)

func policies() {
	policiesOnce.Do(func() {
		plainPolicy = bluemonday.StrictPolicy()

		// Rendered markdown pages: headings, lists, links, tables and images.
		contentPolicy = bluemonday.NewPolicy()
		contentPolicy.AllowStandardURLs()
		contentPolicy.AllowRelativeURLs(true)
		contentPolicy.AllowElements(
			"h1", "h2", "h3", "h4", "h5", "h6",
			"p", "br", "hr",
			"strong", "b", "em", "i",
			"ul", "ol", "li",
			"blockquote", "code", "pre",
			"table", "thead", "tbody", "tr", "th", "td",
		)
		contentPolicy.AllowAttrs("href", "title").OnElements("a")
		contentPolicy.AllowImages()
		contentPolicy.AllowAttrs("id").Matching(bluemonday.SpaceSeparatedTokens).OnElements("h1", "h2", "h3", "h4")
		contentPolicy.RequireNoFollowOnFullyQualifiedLinks(true)
		contentPolicy.AddTargetBlankToFullyQualifiedLinks(true)
	})
}

// Content sanitizes rendered page HTML, keeping document structure and links
// but dropping scripts, styles and event handlers.
func Content(s string) string {
	policies()
	return contentPolicy.Sanitize(s)
}

// Text strips every tag and returns plain text with entities decoded and
// whitespace collapsed. Use it for backend-provided titles and descriptions.
func Text(s string) string {
	policies()
	return strings.Join(strings.Fields(html.UnescapeString(plainPolicy.Sanitize(s))), " ")
}
