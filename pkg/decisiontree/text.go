package decisiontree

import (
	"bytes"
	"encoding/json"
	"errors"
	"maps"
	"slices"

	"gopkg.in/yaml.v3"
)

// FallbackLocale is used when a text has no entry for the requested locale.
const FallbackLocale = "en"

// Text is a string translated per locale.
type Text map[string]string

// In returns the text for locale, then FallbackLocale, then the first
// non-empty translation in locale order. Empty when nothing is set.
func (t Text) In(locale string) string {
	if s := t[locale]; s != "" {
		return s
	}
	if s := t[FallbackLocale]; s != "" {
		return s
	}
	for _, k := range slices.Sorted(maps.Keys(t)) {
		if t[k] != "" {
			return t[k]
		}
	}
	return ""
}

// Result is the answer that ends a conversation branch. It holds either a
// single string shown for every locale or a per-locale Text.
type Result struct {
	localized Text
	plain     string
}

// PlainText builds a Result shown verbatim in every locale.
func PlainText(s string) Result {
	return Result{plain: s}
}

// Localized builds a per-locale Result.
func Localized(t Text) Result {
	return Result{localized: t}
}

// Text resolves the result for locale.
func (r Result) Text(locale string) string {
	if r.localized != nil {
		return r.localized.In(locale)
	}
	return r.plain
}

// IsZero reports whether the result carries no text at all.
func (r Result) IsZero() bool {
	return r.plain == "" && r.Text(FallbackLocale) == ""
}

// IsLocalized reports whether the result varies by locale.
func (r Result) IsLocalized() bool {
	return r.localized != nil
}

func (r Result) MarshalJSON() ([]byte, error) {
	switch {
	case r.localized != nil:
		return json.Marshal(map[string]string(r.localized))
	case r.plain != "":
		return json.Marshal(r.plain)
	default:
		return []byte("null"), nil
	}
}

func (r *Result) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return errors.Join(ErrInvalidResult, err)
		}
		*r = PlainText(s)
	case '{':
		var t Text
		if err := json.Unmarshal(data, &t); err != nil {
			return errors.Join(ErrInvalidResult, err)
		}
		*r = Localized(t)
	default:
		return ErrInvalidResult
	}
	return nil
}

func (r *Result) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			return nil
		}
		var s string
		if err := node.Decode(&s); err != nil {
			return errors.Join(ErrInvalidResult, err)
		}
		*r = PlainText(s)
	case yaml.MappingNode:
		var t Text
		if err := node.Decode(&t); err != nil {
			return errors.Join(ErrInvalidResult, err)
		}
		*r = Localized(t)
	default:
		return ErrInvalidResult
	}
	return nil
}
