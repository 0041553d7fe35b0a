package meta

import (
	"sort"
	"strings"
)

// Kind identifies how a node is rendered. The zero value is never produced by
// the loader: a node without a type decodes as KindBlock.
type Kind string

const (
	KindBlock       Kind = "block"
	KindForm        Kind = "form"
	KindHeader      Kind = "header"
	KindInput       Kind = "input"
	KindLink        Kind = "link"
	KindUniSelect   Kind = "uniSelect"
	KindMultiSelect Kind = "multiSelect"
	KindPara        Kind = "para"
	KindSegment     Kind = "segment"
	KindSubmit      Kind = "submit"
)

// kindAliases maps the descriptive type names accepted in documents onto the
// canonical kinds.
var kindAliases = map[string]Kind{
	"container":      KindBlock,
	"heading":        KindHeader,
	"text-input":     KindInput,
	"single-choice":  KindUniSelect,
	"multi-choice":   KindMultiSelect,
	"paragraph":      KindPara,
	"inline-text":    KindSegment,
	"submit-control": KindSubmit,
}

// ParseKind maps a document type tag onto a Kind. Unknown tags report false.
func ParseKind(tag string) (Kind, bool) {
	trimmed := strings.TrimSpace(tag)
	if trimmed == "" {
		return KindBlock, true
	}
	switch kind := Kind(trimmed); kind {
	case KindBlock, KindForm, KindHeader, KindInput, KindLink,
		KindUniSelect, KindMultiSelect, KindPara, KindSegment, KindSubmit:
		return kind, true
	}
	if kind, ok := kindAliases[trimmed]; ok {
		return kind, true
	}
	return "", false
}

// Node is implemented by every metadata variant.
type Node interface {
	Kind() Kind
	Attributes() Attrs
	Children() []Node
}

// Attrs holds presentational attributes copied onto rendered elements. Only
// the `id` key carries meaning for the engine.
type Attrs map[string]string

// ID returns the identifier override, if any.
func (a Attrs) ID() string {
	return strings.TrimSpace(a["id"])
}

// Name returns the declared field name, if any.
func (a Attrs) Name() string {
	return strings.TrimSpace(a["name"])
}

// Merge returns a copy of a with extra applied on top.
func (a Attrs) Merge(extra map[string]string) map[string]string {
	out := make(map[string]string, len(a)+len(extra))
	for key, value := range a {
		out[key] = value
	}
	for key, value := range extra {
		out[key] = value
	}
	return out
}

// Keys returns the attribute names in sorted order.
func (a Attrs) Keys() []string {
	keys := make([]string, 0, len(a))
	for key := range a {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Field carries the label and validation declaration shared by interactive
// nodes. Check and ErrMsg name entries in a validation registry.
type Field struct {
	Text     string
	Required bool
	Check    string
	ErrMsg   string
}

// Interactive is implemented by nodes that render a named control.
type Interactive interface {
	Node
	FieldSpec() Field
}

// Option is a single choice offered by a select node.
type Option struct {
	Key  string
	Text string
}

// Label returns the option text, falling back to its key.
func (o Option) Label() string {
	if o.Text != "" {
		return o.Text
	}
	return o.Key
}

// Block is a generic container.
type Block struct {
	Attr  Attrs
	Items []Node
}

func (n *Block) Kind() Kind        { return KindBlock }
func (n *Block) Attributes() Attrs { return n.Attr }
func (n *Block) Children() []Node  { return n.Items }

// Form is a container whose submission is intercepted by the form controller.
type Form struct {
	Attr  Attrs
	Items []Node
}

func (n *Form) Kind() Kind        { return KindForm }
func (n *Form) Attributes() Attrs { return n.Attr }
func (n *Form) Children() []Node  { return n.Items }

// Para is a paragraph container.
type Para struct {
	Attr  Attrs
	Items []Node
}

func (n *Para) Kind() Kind        { return KindPara }
func (n *Para) Attributes() Attrs { return n.Attr }
func (n *Para) Children() []Node  { return n.Items }

// Segment is inline text: either literal Text or a run of inline children.
type Segment struct {
	Attr  Attrs
	Text  *string
	Items []Node
}

func (n *Segment) Kind() Kind        { return KindSegment }
func (n *Segment) Attributes() Attrs { return n.Attr }
func (n *Segment) Children() []Node  { return n.Items }

// Header is a heading of rank Level (1 when unset).
type Header struct {
	Attr  Attrs
	Text  string
	Level int
}

func (n *Header) Kind() Kind        { return KindHeader }
func (n *Header) Attributes() Attrs { return n.Attr }
func (n *Header) Children() []Node  { return nil }

// Link points at another top-level subtree of the same document.
type Link struct {
	Attr Attrs
	Text string
	Ref  string
}

func (n *Link) Kind() Kind        { return KindLink }
func (n *Link) Attributes() Attrs { return n.Attr }
func (n *Link) Children() []Node  { return nil }

// Submit is the form submission button.
type Submit struct {
	Attr Attrs
	Text string
}

func (n *Submit) Kind() Kind        { return KindSubmit }
func (n *Submit) Attributes() Attrs { return n.Attr }
func (n *Submit) Children() []Node  { return nil }

// Input is a single text control; SubType "textarea" selects the multi-line
// variant and any other value becomes the input type.
type Input struct {
	Field
	Attr    Attrs
	SubType string
}

func (n *Input) Kind() Kind        { return KindInput }
func (n *Input) Attributes() Attrs { return n.Attr }
func (n *Input) Children() []Node  { return nil }
func (n *Input) FieldSpec() Field  { return n.Field }

// Multiline reports whether the input renders as a textarea.
func (n *Input) Multiline() bool {
	return strings.EqualFold(strings.TrimSpace(n.SubType), "textarea")
}

// Choice is a single- or multi-valued selection over Options. Its options are
// not nodes and cannot be addressed by a path.
type Choice struct {
	Field
	Attr     Attrs
	Multiple bool
	Options  []Option
}

func (n *Choice) Kind() Kind {
	if n.Multiple {
		return KindMultiSelect
	}
	return KindUniSelect
}

func (n *Choice) Attributes() Attrs { return n.Attr }
func (n *Choice) Children() []Node  { return nil }
func (n *Choice) FieldSpec() Field  { return n.Field }

// Unknown preserves a node whose type tag this version does not understand.
type Unknown struct {
	Type  string
	Attr  Attrs
	Items []Node
}

func (n *Unknown) Kind() Kind        { return Kind(n.Type) }
func (n *Unknown) Attributes() Attrs { return n.Attr }
func (n *Unknown) Children() []Node  { return n.Items }

var (
	_ Interactive = (*Input)(nil)
	_ Interactive = (*Choice)(nil)
)

// ElementID returns the DOM identifier for a node rendered at path.
func ElementID(node Node, path Path) string {
	if node != nil {
		if id := node.Attributes().ID(); id != "" {
			return id
		}
	}
	return path.ID()
}

// FieldName returns the submission name for a node rendered at path,
// defaulting to its element identifier.
func FieldName(node Node, path Path) string {
	if node != nil {
		if name := node.Attributes().Name(); name != "" {
			return name
		}
	}
	return ElementID(node, path)
}
