package messages

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Bundle is a nested translation tree for a single locale.
// Bundles are shared between requests and must not be modified.
type Bundle map[string]any

// M carries placeholder values for T.
type M map[string]any

// Lookup resolves a dotted key. A missing segment, or a key that points at a
// nested object rather than a value, yields the key itself.
func (b Bundle) Lookup(key string) string {
	v, ok := b.Value(key)
	if !ok {
		return key
	}

	switch v := v.(type) {
	case string:
		return v
	case float64, int, int64, bool:
		return fmt.Sprint(v)
	default:
		return key
	}
}

// T resolves key and substitutes {{name}} placeholders.
func (b Bundle) T(key string, args ...M) string {
	s := b.Lookup(key)
	for _, m := range args {
		s = interpolate(s, m)
	}
	return s
}

// Has reports whether key resolves to a leaf value.
func (b Bundle) Has(key string) bool {
	v, ok := b.Value(key)
	if !ok {
		return false
	}
	switch v.(type) {
	case map[string]any, Bundle, []any:
		return false
	}
	return true
}

// Value returns the raw node at key. Numeric segments index into arrays.
func (b Bundle) Value(key string) (any, bool) {
	if key == "" || len(b) == 0 {
		return nil, false
	}

	var cur any = map[string]any(b)
	for seg := range strings.SplitSeq(key, ".") {
		switch node := cur.(type) {
		case map[string]any:
			next, ok := node[seg]
			if !ok {
				return nil, false
			}
			cur = next
		case Bundle:
			next, ok := node[seg]
			if !ok {
				return nil, false
			}
			cur = next
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			cur = node[i]
		default:
			return nil, false
		}
	}

	return cur, true
}

// Section returns the nested object at key, or an empty Bundle.
func (b Bundle) Section(key string) Bundle {
	v, ok := b.Value(key)
	if !ok {
		return Bundle{}
	}
	switch node := v.(type) {
	case map[string]any:
		return Bundle(node)
	case Bundle:
		return node
	}
	return Bundle{}
}

// Items returns the list of objects at key. Both JSON arrays and objects
// keyed "0", "1", ... are accepted; the latter are ordered numerically.
func (b Bundle) Items(key string) []Bundle {
	v, ok := b.Value(key)
	if !ok {
		return nil
	}

	var out []Bundle
	switch node := v.(type) {
	case []any:
		for _, item := range node {
			if m, ok := item.(map[string]any); ok {
				out = append(out, Bundle(m))
			}
		}
	case map[string]any:
		keys := slices.Collect(maps.Keys(node))
		slices.SortFunc(keys, func(a, c string) int {
			ai, aerr := strconv.Atoi(a)
			ci, cerr := strconv.Atoi(c)
			if aerr == nil && cerr == nil {
				return ai - ci
			}
			return strings.Compare(a, c)
		})
		for _, k := range keys {
			if m, ok := node[k].(map[string]any); ok {
				out = append(out, Bundle(m))
			}
		}
	}
	return out
}

// Flatten returns every leaf string keyed by its dotted path.
func (b Bundle) Flatten() map[string]string {
	out := make(map[string]string)
	flatten(out, "", map[string]any(b))
	return out
}

func flatten(out map[string]string, prefix string, node any) {
	join := func(k string) string {
		if prefix == "" {
			return k
		}
		return prefix + "." + k
	}

	switch n := node.(type) {
	case map[string]any:
		for k, v := range n {
			flatten(out, join(k), v)
		}
	case Bundle:
		flatten(out, prefix, map[string]any(n))
	case []any:
		for i, v := range n {
			flatten(out, join(strconv.Itoa(i)), v)
		}
	case string:
		out[prefix] = n
	case nil:
	default:
		out[prefix] = fmt.Sprint(n)
	}
}

// interpolate replaces {{name}} placeholders. Unknown names are left alone.
func interpolate(s string, m M) string {
	if len(m) == 0 || !strings.Contains(s, "{{") {
		return s
	}
	for k, v := range m {
		s = strings.ReplaceAll(s, "{{"+k+"}}", fmt.Sprint(v))
	}
	return s
}
