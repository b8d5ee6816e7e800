package decisiontree

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"path"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultRoot is the id of the node a conversation starts at.
const DefaultRoot = "start"

// Tree is an immutable, validated set of nodes.
type Tree struct {
	nodes map[string]*Node
	root  string
}

// Option configures tree loading.
type Option func(*Tree)

// WithRoot sets the entry node id. Default: "start".
func WithRoot(id string) Option {
	return func(t *Tree) { t.root = id }
}

// New validates nodes and builds a Tree. Node ids are taken from the map keys.
// All structural problems are reported together.
func New(nodes map[string]*Node, opts ...Option) (*Tree, error) {
	t := &Tree{
		nodes: make(map[string]*Node, len(nodes)),
		root:  DefaultRoot,
	}
	for _, opt := range opts {
		opt(t)
	}

	for id, n := range nodes {
		var cp Node
		if n != nil {
			cp = *n
		}
		cp.ID = id
		t.nodes[id] = &cp
	}

	if err := t.validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// LoadJSON reads a tree from a JSON object keyed by node id.
func LoadJSON(r io.Reader, opts ...Option) (*Tree, error) {
	var nodes map[string]*Node
	if err := json.NewDecoder(r).Decode(&nodes); err != nil {
		return nil, fmt.Errorf("decisiontree: decode json: %w", err)
	}
	return New(nodes, opts...)
}

// LoadYAML reads a tree from a YAML mapping keyed by node id.
func LoadYAML(r io.Reader, opts ...Option) (*Tree, error) {
	var nodes map[string]*Node
	if err := yaml.NewDecoder(r).Decode(&nodes); err != nil {
		return nil, fmt.Errorf("decisiontree: decode yaml: %w", err)
	}
	return New(nodes, opts...)
}

// LoadFS reads name from fsys, choosing the decoder by file extension.
func LoadFS(fsys fs.FS, name string, opts ...Option) (*Tree, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("decisiontree: open %s: %w", name, err)
	}
	defer f.Close()

	switch strings.ToLower(path.Ext(name)) {
	case ".json":
		return LoadJSON(f, opts...)
	case ".yaml", ".yml":
		return LoadYAML(f, opts...)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
}

// RootID returns the entry node id.
func (t *Tree) RootID() string {
	return t.root
}

// Root returns the entry node.
func (t *Tree) Root() *Node {
	return t.nodes[t.root]
}

// Node returns the node with id.
func (t *Tree) Node(id string) (*Node, error) {
	n, ok := t.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNodeNotFound, id)
	}
	return n, nil
}

// IDs returns every node id, sorted.
func (t *Tree) IDs() []string {
	return slices.Sorted(maps.Keys(t.nodes))
}

// Len returns the number of nodes.
func (t *Tree) Len() int {
	return len(t.nodes)
}

func (t *Tree) validate() error {
	if len(t.nodes) == 0 {
		return ErrEmptyTree
	}

	var errs []error
	if _, ok := t.nodes[t.root]; !ok {
		errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownRoot, t.root))
	}

	for _, id := range t.IDs() {
		n := t.nodes[id]

		for _, code := range n.OptionCodes() {
			if !validOptionCode(code) {
				errs = append(errs, fmt.Errorf("%w: node %q option %q", ErrInvalidOptionCode, id, code))
			}

			if next, ok := n.NextID(code); ok {
				if _, exists := t.nodes[next]; !exists {
					errs = append(errs, fmt.Errorf("%w: node %q option %q -> %q", ErrDanglingNext, id, code, next))
				}
				continue
			}

			if _, ok := n.Outcome(code); !ok {
				errs = append(errs, fmt.Errorf("%w: node %q option %q", ErrUnresolvedOption, id, code))
			}
		}

		for _, code := range slices.Sorted(maps.Keys(n.Next)) {
			if !n.HasOption(code) {
				errs = append(errs, fmt.Errorf("%w: node %q next %q", ErrOrphanTransition, id, code))
			}
		}
		for _, code := range slices.Sorted(maps.Keys(n.Results)) {
			if !n.HasOption(code) {
				errs = append(errs, fmt.Errorf("%w: node %q result %q", ErrOrphanTransition, id, code))
			}
		}
	}

	return errors.Join(errs...)
}
