package content

import "errors"

var (
	ErrPageNotFound       = errors.New("content: page not found")
	ErrInvalidFrontmatter = errors.New("content: invalid frontmatter")
	ErrRender             = errors.New("content: failed to render markdown")
)
