// Package prompt fills a rendered form from a terminal. Each field is asked
// for in document order, the answer is written into the element tree and the
// field's own validation listener decides whether to ask again.
package prompt

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/net/html"

	"github.com/goliatone/go-metaform/pkg/dom"
	"github.com/goliatone/go-metaform/pkg/form"
)

// NoneOption is offered first for single choices so a field can be left empty.
const NoneOption = "(none)"

// DefaultMaxAttempts bounds how often a rejected field is asked again.
const DefaultMaxAttempts = 3

type fieldKind int

const (
	fieldText fieldKind = iota
	fieldTextArea
	fieldSelect
	fieldGroup
)

type field struct {
	kind    fieldKind
	id      string
	label   string
	control *html.Node
	slot    *html.Node
}

// Option configures Fill.
type Option func(*filler)

// WithMaxAttempts overrides DefaultMaxAttempts.
func WithMaxAttempts(n int) Option {
	return func(f *filler) {
		if n > 0 {
			f.maxAttempts = n
		}
	}
}

type filler struct {
	driver      Driver
	page        *dom.Document
	maxAttempts int
}

// Fill asks for every field of formEl, then dispatches submit on it and
// returns what the form controller produced.
func Fill(ctx context.Context, driver Driver, page *dom.Document, formEl *html.Node, options ...Option) (form.Result, error) {
	if driver == nil {
		return form.Result{}, errors.New("prompt: driver is required")
	}
	if !dom.IsElement(formEl, "form") {
		return form.Result{}, form.ErrNotForm
	}
	f := &filler{driver: driver, page: page, maxAttempts: DefaultMaxAttempts}
	for _, opt := range options {
		if opt != nil {
			opt(f)
		}
	}

	for _, fld := range fields(formEl) {
		if err := f.ask(ctx, fld); err != nil {
			return form.Result{}, err
		}
	}

	ev := page.Dispatch(formEl, dom.EventSubmit)
	result, ok := ev.Result.(form.Result)
	if !ok {
		return form.Result{}, errors.New("prompt: form has no submit controller attached")
	}
	return result, nil
}

func (f *filler) ask(ctx context.Context, fld field) error {
	for attempt := 0; attempt < f.maxAttempts; attempt++ {
		if err := f.askOnce(ctx, fld); err != nil {
			return err
		}
		msg := strings.TrimSpace(dom.TextContent(fld.slot))
		if msg == "" {
			return nil
		}
		if err := f.driver.Info(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

func (f *filler) askOnce(ctx context.Context, fld field) error {
	switch fld.kind {
	case fieldText:
		value, err := f.driver.Input(ctx, InputConfig{
			Message:   fld.label,
			Default:   dom.Value(fld.control),
			Validator: f.validator(fld),
		})
		if err != nil {
			return err
		}
		dom.SetValue(fld.control, strings.TrimSpace(value))
		f.page.Dispatch(fld.control, dom.EventBlur)

	case fieldTextArea:
		value, err := f.driver.TextArea(ctx, TextAreaConfig{
			Message: fld.label,
			Default: dom.Value(fld.control),
		})
		if err != nil {
			return err
		}
		dom.SetValue(fld.control, value)
		f.page.Dispatch(fld.control, dom.EventBlur)

	case fieldSelect:
		var labels, values []string
		for _, option := range dom.Options(fld.control) {
			value := dom.AttrOr(option, "value", dom.TextContent(option))
			if value == "" {
				continue
			}
			labels = append(labels, dom.TextContent(option))
			values = append(values, value)
		}
		current := dom.SelectedValues(fld.control)
		picked, err := f.choose(ctx, fld.label, labels, values, current, dom.IsMultiple(fld.control))
		if err != nil {
			return err
		}
		dom.SetSelected(fld.control, picked)
		f.page.Dispatch(fld.control, dom.EventChange)

	case fieldGroup:
		inputs := dom.FindAll(fld.control, dom.IsCheckable)
		if len(inputs) == 0 {
			return nil
		}
		labels := make([]string, 0, len(inputs))
		values := make([]string, 0, len(inputs))
		var current []string
		for _, input := range inputs {
			labels = append(labels, labelFor(fld.control, dom.AttrOr(input, "id", ""), dom.Value(input)))
			values = append(values, dom.Value(input))
			if dom.Checked(input) {
				current = append(current, dom.Value(input))
			}
		}
		multiple := dom.InputType(inputs[0]) == "checkbox"
		picked, err := f.choose(ctx, fld.label, labels, values, current, multiple)
		if err != nil {
			return err
		}
		for _, input := range inputs {
			dom.SetChecked(input, contains(picked, dom.Value(input)))
		}
		f.page.Dispatch(inputs[0], dom.EventChange)
	}
	return nil
}

// choose asks for one or more of values, presented as labels. The values in
// current start out selected.
func (f *filler) choose(ctx context.Context, message string, labels, values, current []string, multiple bool) ([]string, error) {
	var selected []int
	for i, value := range values {
		if contains(current, value) {
			selected = append(selected, i)
		}
	}
	if multiple {
		indices, err := f.driver.MultiSelect(ctx, SelectConfig{Message: message, Options: labels, Selected: selected})
		if err != nil {
			return nil, err
		}
		var picked []string
		for _, idx := range indices {
			if idx >= 0 && idx < len(values) {
				picked = append(picked, values[idx])
			}
		}
		return picked, nil
	}
	options := append([]string{NoneOption}, labels...)
	first := []int{0}
	if len(selected) > 0 {
		first[0] = selected[0] + 1
	}
	idx, err := f.driver.Select(ctx, SelectConfig{Message: message, Options: options, Selected: first})
	if err != nil {
		return nil, err
	}
	if idx <= 0 || idx > len(values) {
		return nil, nil
	}
	return []string{values[idx-1]}, nil
}

// validator runs the field's own blur listener against a candidate answer so
// interactive drivers can reject it inline.
func (f *filler) validator(fld field) func(string) error {
	return func(answer string) error {
		previous := dom.Value(fld.control)
		dom.SetValue(fld.control, strings.TrimSpace(answer))
		f.page.Dispatch(fld.control, dom.EventBlur)
		msg := strings.TrimSpace(dom.TextContent(fld.slot))
		dom.SetValue(fld.control, previous)
		if msg != "" {
			return errors.New(msg)
		}
		return nil
	}
}

// fields lists the fillable fields under formEl in document order. A field is
// any control or choice group that owns an error slot.
func fields(formEl *html.Node) []field {
	var out []field
	dom.Walk(formEl, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return true
		}
		var fld field
		switch {
		case dom.IsElement(n, "div") && dom.HasClass(n, "fieldset"):
			fld.kind = fieldGroup
		case dom.IsElement(n, "select"):
			fld.kind = fieldSelect
		case dom.IsElement(n, "textarea"):
			fld.kind = fieldTextArea
		case dom.IsElement(n, "input") && !dom.IsCheckable(n):
			kind := dom.InputType(n)
			if kind == "submit" || kind == "button" || kind == "reset" || kind == "hidden" {
				return true
			}
			fld.kind = fieldText
		default:
			return true
		}
		fld.id = dom.AttrOr(n, "id", "")
		fld.slot = dom.FindByID(formEl, fld.id+"-err")
		if fld.id == "" || fld.slot == nil {
			return fld.kind != fieldGroup
		}
		fld.control = n
		fld.label = labelFor(formEl, fld.id, dom.AttrOr(n, "name", fld.id))
		out = append(out, fld)
		return false
	})
	return out
}

func labelFor(root *html.Node, id, fallback string) string {
	for _, label := range dom.FindAll(root, func(n *html.Node) bool {
		return dom.IsElement(n, "label") && dom.AttrOr(n, "for", "") == id
	}) {
		if text := strings.TrimSpace(dom.TextContent(label)); text != "" {
			return text
		}
	}
	return fallback
}

func contains(values []string, value string) bool {
	for _, candidate := range values {
		if candidate == value {
			return true
		}
	}
	return false
}
