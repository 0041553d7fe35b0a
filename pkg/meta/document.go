package meta

import "errors"

// ErrNotFound is returned when a path does not address a node.
var ErrNotFound = errors.New("meta: node not found")

// DefaultSelectThreshold is the item count above which choices render as a
// dropdown when neither the document nor the caller configures one.
const DefaultSelectThreshold = 4

// Options are the rendering defaults a document may declare under `_options`.
// Zero values mean "not declared".
type Options struct {
	UniSelectThreshold   int `yaml:"N_UNI_SELECT"`
	MultiSelectThreshold int `yaml:"N_MULTI_SELECT"`
}

// Document is the immutable root of a metadata tree.
type Document struct {
	roots   map[string]Node
	names   []string
	options Options
}

// NewDocument builds a document from named top-level nodes. names fixes the
// iteration order reported by Names; roots missing from names are appended in
// no particular order.
func NewDocument(roots map[string]Node, names []string, options Options) *Document {
	doc := &Document{
		roots:   make(map[string]Node, len(roots)),
		options: options,
	}
	seen := make(map[string]struct{}, len(roots))
	for _, name := range names {
		node, ok := roots[name]
		if !ok || node == nil {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		doc.roots[name] = node
		doc.names = append(doc.names, name)
	}
	for name, node := range roots {
		if _, ok := seen[name]; ok || node == nil {
			continue
		}
		doc.roots[name] = node
		doc.names = append(doc.names, name)
	}
	return doc
}

// Root returns the named top-level node.
func (d *Document) Root(name string) (Node, bool) {
	if d == nil {
		return nil, false
	}
	node, ok := d.roots[name]
	return node, ok
}

// Names lists the top-level node names in document order.
func (d *Document) Names() []string {
	if d == nil {
		return nil
	}
	return append([]string(nil), d.names...)
}

// Options returns the rendering defaults declared by the document.
func (d *Document) Options() Options {
	if d == nil {
		return Options{}
	}
	return d.options
}

// Walk visits every node reachable from the top-level roots depth first,
// passing the path each node is addressed by. Returning false from fn skips
// the node's children.
func (d *Document) Walk(fn func(node Node, path Path) bool) {
	if d == nil || fn == nil {
		return
	}
	for _, name := range d.names {
		walk(d.roots[name], Path{name}, fn)
	}
}

func walk(node Node, path Path, fn func(Node, Path) bool) {
	if node == nil || !fn(node, path) {
		return
	}
	for i, child := range node.Children() {
		walk(child, path.Item(i), fn)
	}
}
