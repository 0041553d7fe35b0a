// Package validation checks field values as controls fire blur and change
// events and writes the resulting message into each field's error slot.
package validation

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/goliatone/go-metaform/pkg/dom"
	"github.com/goliatone/go-metaform/pkg/meta"
)

// Value is the extracted value of a field. Multiple marks fields that may
// hold several values (checkbox groups and multi-selects).
type Value struct {
	Values   []string
	Multiple bool
}

// Empty reports whether no non-blank value was extracted.
func (v Value) Empty() bool {
	for _, value := range v.Values {
		if value != "" {
			return false
		}
	}
	return true
}

func (v Value) String() string {
	return strings.Join(v.Values, ",")
}

// Extract selects how a field's value is read from the element tree.
type Extract int

const (
	// ExtractText reads the trimmed value of an input or textarea.
	ExtractText Extract = iota
	// ExtractSelect reads the selected options of a select.
	ExtractSelect
	// ExtractChecked reads the checked inputs inside a radio or checkbox group.
	ExtractChecked
)

// Binding ties a rendered control to the node it was rendered from and to the
// error slot the handler owns for it.
type Binding struct {
	Node    meta.Interactive
	Extract Extract
	Control *html.Node
	Slot    *html.Node
}

// Handler runs field validation against a document's registered checks.
type Handler struct {
	doc      *meta.Document
	registry *Registry
}

// NewHandler creates a handler. A nil registry means the built-ins.
func NewHandler(doc *meta.Document, registry *Registry) *Handler {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Handler{doc: doc, registry: registry}
}

// Listener returns a dom listener running Handle for b.
func (h *Handler) Listener(b Binding) dom.Listener {
	return func(ev *dom.Event) {
		h.Handle(b, ev)
	}
}

// Handle re-validates the bound field and rewrites its error slot. It touches
// nothing else.
func (h *Handler) Handle(b Binding, _ *dom.Event) {
	if b.Slot == nil {
		return
	}
	dom.SetText(b.Slot, h.Validate(b))
}

// Validate returns the error message for the bound field's current value, or
// "" when it is acceptable.
func (h *Handler) Validate(b Binding) string {
	if b.Node == nil {
		return ""
	}
	value := ExtractValue(b)
	spec := b.Node.FieldSpec()

	if value.Empty() {
		if spec.Required {
			return fmt.Sprintf("The field %s must be specified.", DisplayName(b.Node))
		}
		return ""
	}
	if spec.Check == "" {
		return ""
	}
	check, err := h.registry.Check(spec.Check)
	if err != nil {
		// unresolvable references are rejected by Registry.Verify at load time
		return ""
	}
	if check(value, b.Node, h.doc) {
		return ""
	}
	if spec.ErrMsg != "" {
		if message, err := h.registry.Message(spec.ErrMsg); err == nil {
			return message(value, b.Node, h.doc)
		}
	}
	return fmt.Sprintf("invalid value %s", value)
}

// ExtractValue reads the bound control's current value.
func ExtractValue(b Binding) Value {
	switch b.Extract {
	case ExtractSelect:
		return Value{
			Values:   dom.SelectedValues(b.Control),
			Multiple: dom.IsMultiple(b.Control),
		}
	case ExtractChecked:
		value := Value{}
		if choice, ok := b.Node.(*meta.Choice); ok {
			value.Multiple = choice.Multiple
		}
		for _, input := range dom.FindAll(b.Control, dom.IsCheckable) {
			if dom.Checked(input) {
				value.Values = append(value.Values, dom.Value(input))
			}
		}
		return value
	default:
		text := strings.TrimSpace(dom.Value(b.Control))
		if text == "" {
			return Value{}
		}
		return Value{Values: []string{text}}
	}
}

// DisplayName is the label text used in messages about node.
func DisplayName(node meta.Node) string {
	if field, ok := node.(meta.Interactive); ok {
		if text := strings.TrimSpace(field.FieldSpec().Text); text != "" {
			return text
		}
	}
	if node != nil {
		return node.Attributes().Name()
	}
	return ""
}
