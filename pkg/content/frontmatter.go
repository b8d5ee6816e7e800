package content

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

var delimiter = []byte("---")

type frontmatter struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Order       int    `yaml:"order"`
}

// splitFrontmatter separates the YAML header from the markdown body.
// Files without a leading delimiter are all body.
func splitFrontmatter(src []byte) (frontmatter, []byte, error) {
	var meta frontmatter

	if !bytes.HasPrefix(src, delimiter) {
		return meta, src, nil
	}

	rest := bytes.TrimLeft(bytes.TrimPrefix(src, delimiter), "\r\n")
	end := bytes.Index(rest, delimiter)
	if end == -1 {
		return meta, nil, fmt.Errorf("%w: closing delimiter not found", ErrInvalidFrontmatter)
	}

	header := rest[:end]
	body := bytes.TrimLeft(rest[end+len(delimiter):], "\r\n")

	if len(bytes.TrimSpace(header)) > 0 {
		if err := yaml.Unmarshal(header, &meta); err != nil {
			return meta, nil, fmt.Errorf("%w: %v", ErrInvalidFrontmatter, err)
		}
	}

	return meta, body, nil
}
