package render

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/net/html"

	"github.com/goliatone/go-metaform/pkg/dom"
)

// HiddenField is an input added to every rendered form without appearing in
// the metadata, such as a CSRF token.
type HiddenField struct {
	Name  string
	Value string
}

// Hidden returns a HiddenField for an arbitrary name/value pair.
func Hidden(name string, value any) HiddenField {
	return HiddenField{Name: strings.TrimSpace(name), Value: fmt.Sprint(value)}
}

// CSRFToken returns a hidden field carrying token under name, for example
// "_csrf".
func CSRFToken(name, token string) HiddenField {
	return Hidden(name, token)
}

// WithHiddenFields adds fields to every form. Empty names are ignored and a
// later field replaces an earlier one with the same name.
func WithHiddenFields(fields ...HiddenField) Option {
	return func(s *settings) {
		for _, field := range fields {
			name := strings.TrimSpace(field.Name)
			if name == "" {
				continue
			}
			if s.hidden == nil {
				s.hidden = make(map[string]string)
			}
			s.hidden[name] = field.Value
		}
	}
}

// sortedHidden orders fields by name so markup is deterministic.
func sortedHidden(fields map[string]string) []HiddenField {
	if len(fields) == 0 {
		return nil
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]HiddenField, 0, len(names))
	for _, name := range names {
		out = append(out, HiddenField{Name: name, Value: fields[name]})
	}
	return out
}

func appendHidden(formEl *html.Node, fields []HiddenField) {
	for _, field := range fields {
		dom.Append(formEl, dom.Element("input", map[string]string{
			"type":  "hidden",
			"name":  field.Name,
			"value": field.Value,
		}))
	}
}
