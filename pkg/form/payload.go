package form

import (
	"encoding/json"
	"net/url"
	"sort"

	"golang.org/x/net/html"

	"github.com/goliatone/go-metaform/pkg/dom"
)

// FieldValue is a serialized field. Multi fields always encode as a list,
// single fields as one string.
type FieldValue struct {
	Values []string
	Multi  bool
}

// MarshalJSON encodes multi fields as arrays and single fields as strings.
func (v FieldValue) MarshalJSON() ([]byte, error) {
	if v.Multi {
		values := v.Values
		if values == nil {
			values = []string{}
		}
		return json.Marshal(values)
	}
	if len(v.Values) == 0 {
		return json.Marshal("")
	}
	return json.Marshal(v.Values[len(v.Values)-1])
}

// Payload maps field names to their submitted values.
type Payload map[string]FieldValue

// Get returns the single value of name.
func (p Payload) Get(name string) string {
	field, ok := p[name]
	if !ok || len(field.Values) == 0 {
		return ""
	}
	return field.Values[len(field.Values)-1]
}

// Names lists the field names in sorted order.
func (p Payload) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// URLValues flattens the payload into form-encoded values.
func (p Payload) URLValues() url.Values {
	out := make(url.Values, len(p))
	for name, field := range p {
		out[name] = append([]string(nil), field.Values...)
	}
	return out
}

// Serialize collects the named controls under formEl. Checkbox groups gather
// their checked values in document order, radio groups keep the checked one
// and every other control contributes its raw value. Unchecked groups and
// empty multi-selects are left out.
func Serialize(formEl *html.Node) Payload {
	payload := make(Payload)
	for _, control := range dom.Controls(formEl) {
		name, ok := dom.Attr(control, "name")
		if !ok || name == "" {
			continue
		}
		if _, disabled := dom.Attr(control, "disabled"); disabled {
			continue
		}
		switch kind := dom.InputType(control); {
		case kind == "submit" || kind == "button" || kind == "reset":
		case kind == "checkbox":
			if dom.Checked(control) {
				field := payload[name]
				field.Multi = true
				field.Values = append(field.Values, dom.Value(control))
				payload[name] = field
			}
		case kind == "radio":
			if dom.Checked(control) {
				payload[name] = FieldValue{Values: []string{dom.Value(control)}}
			}
		case dom.IsElement(control, "select"):
			values := dom.SelectedValues(control)
			if dom.IsMultiple(control) {
				if len(values) > 0 {
					payload[name] = FieldValue{Values: values, Multi: true}
				}
				continue
			}
			if len(values) > 0 {
				payload[name] = FieldValue{Values: values[:1]}
			}
		default:
			payload[name] = FieldValue{Values: []string{dom.Value(control)}}
		}
	}
	return payload
}
