package dom

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// InputType returns the lower-cased type of an input element ("text" when
// absent).
func InputType(node *html.Node) string {
	if !IsElement(node, "input") {
		return ""
	}
	kind := strings.ToLower(strings.TrimSpace(AttrOr(node, "type", "text")))
	if kind == "" {
		return "text"
	}
	return kind
}

// IsCheckable reports whether node is a checkbox or radio input.
func IsCheckable(node *html.Node) bool {
	kind := InputType(node)
	return kind == "checkbox" || kind == "radio"
}

// IsControl reports whether node is a form control element.
func IsControl(node *html.Node) bool {
	return IsElement(node, "input", "select", "textarea")
}

// Controls returns the form controls under root in document order.
func Controls(root *html.Node) []*html.Node {
	return FindAll(root, IsControl)
}

// Value returns the current value of a control: the value attribute for
// inputs, the text for textareas and the first selected option for selects.
// Checkbox and radio inputs report "on" when they carry no value attribute.
func Value(node *html.Node) string {
	switch {
	case IsElement(node, "textarea"):
		return TextContent(node)
	case IsElement(node, "select"):
		selected := SelectedValues(node)
		if len(selected) == 0 {
			return ""
		}
		return selected[0]
	case IsCheckable(node):
		return AttrOr(node, "value", "on")
	case IsElement(node, "input"):
		return AttrOr(node, "value", "")
	}
	return ""
}

// SetValue writes a text value into an input or textarea, or selects the
// matching option of a select.
func SetValue(node *html.Node, value string) {
	switch {
	case IsElement(node, "textarea"):
		SetText(node, value)
	case IsElement(node, "select"):
		SetSelected(node, []string{value})
	case IsElement(node, "input"):
		SetAttr(node, "value", value)
	}
}

// Checked reports whether a checkbox or radio input is checked.
func Checked(node *html.Node) bool {
	_, ok := Attr(node, "checked")
	return ok
}

// SetChecked toggles the checked state of a checkbox or radio input.
func SetChecked(node *html.Node, checked bool) {
	if checked {
		SetAttr(node, "checked", "checked")
		return
	}
	RemoveAttr(node, "checked")
}

// Options returns the option elements of a select.
func Options(sel *html.Node) []*html.Node {
	return FindAll(sel, func(n *html.Node) bool { return IsElement(n, "option") })
}

func optionValue(option *html.Node) string {
	if value, ok := Attr(option, "value"); ok {
		return value
	}
	return TextContent(option)
}

// IsMultiple reports whether a select accepts several options.
func IsMultiple(sel *html.Node) bool {
	_, ok := Attr(sel, "multiple")
	return ok
}

// SelectedValues returns the values of the selected options. A single select
// with nothing explicitly selected reports its first option, as browsers do.
func SelectedValues(sel *html.Node) []string {
	options := Options(sel)
	var out []string
	for _, option := range options {
		if _, ok := Attr(option, "selected"); ok {
			out = append(out, optionValue(option))
		}
	}
	if len(out) == 0 && !IsMultiple(sel) && len(options) > 0 {
		return []string{optionValue(options[0])}
	}
	if !IsMultiple(sel) && len(out) > 1 {
		return out[len(out)-1:]
	}
	return out
}

// SetSelected marks the options whose values appear in values as selected
// and clears the rest.
func SetSelected(sel *html.Node, values []string) {
	wanted := make(map[string]struct{}, len(values))
	for _, value := range values {
		wanted[value] = struct{}{}
	}
	multiple := IsMultiple(sel)
	picked := false
	for _, option := range Options(sel) {
		_, ok := wanted[optionValue(option)]
		if ok && (multiple || !picked) {
			SetAttr(option, "selected", "selected")
			picked = true
			continue
		}
		RemoveAttr(option, "selected")
	}
}

// Fill writes submitted values into the named controls under root, the way a
// browser would have held them when the form was posted. Controls whose name
// is absent from values are reset.
func Fill(root *html.Node, values url.Values) {
	for _, control := range Controls(root) {
		name, ok := Attr(control, "name")
		if !ok || name == "" {
			continue
		}
		posted := values[name]
		switch {
		case IsCheckable(control):
			SetChecked(control, contains(posted, Value(control)))
		case IsElement(control, "select"):
			SetSelected(control, posted)
		case InputType(control) == "submit" || InputType(control) == "button":
		default:
			value := ""
			if len(posted) > 0 {
				value = posted[0]
			}
			SetValue(control, value)
		}
	}
}

func contains(values []string, value string) bool {
	for _, candidate := range values {
		if candidate == value {
			return true
		}
	}
	return false
}
