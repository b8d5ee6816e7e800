// Package data embeds the files shipped with the server: the chat decision
// tree, markdown content pages, the stylesheet and the bundled translations
// used when no translation service is configured.
package data

import (
	"embed"
	"io/fs"
)

// DecisionTreeFile is the path of the chat tree inside FS.
const DecisionTreeFile = "decision_tree.json"

//go:embed decision_tree.json content translations static
var FS embed.FS

// Content returns the markdown pages, laid out as {locale}/{slug}.md.
func Content() fs.FS {
	sub, _ := fs.Sub(FS, "content")
	return sub
}

// StaticDir is the directory of FS served under /static/.
const StaticDir = "static"

// Translations returns the bundled translation files, {locale}.json.
func Translations() fs.FS {
	sub, _ := fs.Sub(FS, "translations")
	return sub
}
