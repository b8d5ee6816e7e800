package decisiontree

import (
	"maps"
	"slices"
	"unicode"
	"unicode/utf8"
)

// Node is one step of the conversation. Nodes are owned by a Tree and must
// not be modified after loading.
type Node struct {
	Options  map[string]Text   `json:"options" yaml:"options"`
	Next     map[string]string `json:"next,omitempty" yaml:"next,omitempty"`
	Results  map[string]Result `json:"results,omitempty" yaml:"results,omitempty"`
	Question Text              `json:"question" yaml:"question"`
	Result   Result            `json:"result" yaml:"result"`
	ID       string            `json:"-" yaml:"-"`
}

// OptionCodes returns the option letters in order.
func (n *Node) OptionCodes() []string {
	return slices.Sorted(maps.Keys(n.Options))
}

// HasOption reports whether code is one of the node's options.
func (n *Node) HasOption(code string) bool {
	_, ok := n.Options[code]
	return ok
}

// Label returns the option label for locale.
func (n *Node) Label(code, locale string) (string, bool) {
	t, ok := n.Options[code]
	if !ok {
		return "", false
	}
	return t.In(locale), true
}

// NextID returns the node that option code leads to, if any.
func (n *Node) NextID(code string) (string, bool) {
	id, ok := n.Next[code]
	return id, ok && id != ""
}

// Outcome returns the result for option code: the per-option result if set,
// else the node default.
func (n *Node) Outcome(code string) (Result, bool) {
	if r, ok := n.Results[code]; ok && !r.IsZero() {
		return r, true
	}
	if !n.Result.IsZero() {
		return n.Result, true
	}
	return Result{}, false
}

// IsTerminal reports whether the node offers no options.
func (n *Node) IsTerminal() bool {
	return len(n.Options) == 0
}

func validOptionCode(code string) bool {
	r, size := utf8.DecodeRuneInString(code)
	return size == len(code) && size > 0 && unicode.IsLetter(r)
}
