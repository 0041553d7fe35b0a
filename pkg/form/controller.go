// Package form intercepts form submission: it serializes the fields, forces
// every field to re-validate and only hands the payload on when no error slot
// carries text.
package form

import (
	"errors"
	"strings"

	"golang.org/x/net/html"

	"github.com/goliatone/go-metaform/pkg/dom"
)

// ErrNotForm is returned when a controller is attached to something other
// than a form element.
var ErrNotForm = errors.New("form: element is not a form")

// ErrorClass marks the error slot elements scanned before submitting.
const ErrorClass = "error"

// Sink receives the payload of a submission that passed validation.
type Sink func(Payload)

// Result is what a submission produced. Blocked submissions still carry the
// serialized payload.
type Result struct {
	Payload Payload
	Blocked bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithSink hands accepted payloads to sink.
func WithSink(sink Sink) Option {
	return func(c *Controller) {
		c.sink = sink
	}
}

// Controller handles submit events for rendered forms.
type Controller struct {
	sink Sink
}

// NewController creates a controller.
func NewController(opts ...Option) *Controller {
	c := &Controller{}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Attach intercepts submit events reaching formEl. The default navigation is
// always prevented; the event's Result is set to the submission Result.
func (c *Controller) Attach(page *dom.Document, formEl *html.Node) error {
	if !dom.IsElement(formEl, "form") {
		return ErrNotForm
	}
	c.Bind(page, formEl)
	return nil
}

// Bind is Attach for a node the caller built as a form.
func (c *Controller) Bind(page *dom.Document, formEl *html.Node) {
	page.On(formEl, dom.EventSubmit, func(ev *dom.Event) {
		ev.PreventDefault()
		ev.Result = c.Submit(page, formEl)
	})
}

// Submit serializes formEl, re-runs validation on every control and reports
// whether any error slot is non-empty.
func (c *Controller) Submit(page *dom.Document, formEl *html.Node) Result {
	payload := Serialize(formEl)

	for _, control := range dom.Controls(formEl) {
		switch {
		case dom.IsElement(control, "textarea"):
			page.Dispatch(control, dom.EventBlur)
		case dom.IsElement(control, "select"), dom.IsCheckable(control):
			page.Dispatch(control, dom.EventChange)
		case dom.IsElement(control, "input"):
			page.Dispatch(control, dom.EventBlur)
		}
	}

	if HasErrors(formEl) {
		return Result{Payload: payload, Blocked: true}
	}
	if c.sink != nil {
		c.sink(payload)
	}
	return Result{Payload: payload}
}

// HasErrors reports whether any error slot under root holds text.
func HasErrors(root *html.Node) bool {
	return len(Errors(root)) > 0
}

// Errors returns the non-empty error messages under root keyed by slot id.
func Errors(root *html.Node) map[string]string {
	out := make(map[string]string)
	for _, slot := range dom.FindAll(root, isErrorSlot) {
		if text := strings.TrimSpace(dom.TextContent(slot)); text != "" {
			out[dom.AttrOr(slot, "id", "")] = text
		}
	}
	return out
}

func isErrorSlot(node *html.Node) bool {
	return dom.IsElement(node, "div") && dom.HasClass(node, ErrorClass)
}
