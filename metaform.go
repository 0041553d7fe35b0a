// Package metaform renders pages described by a metadata document and runs
// their form submissions. It ties the renderer, the page shell and the
// submission schema together behind one Engine.
package metaform

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/getkin/kin-openapi/openapi3"
	"golang.org/x/net/html"

	"github.com/goliatone/go-metaform/pkg/dom"
	"github.com/goliatone/go-metaform/pkg/form"
	"github.com/goliatone/go-metaform/pkg/meta"
	"github.com/goliatone/go-metaform/pkg/page"
	"github.com/goliatone/go-metaform/pkg/prompt"
	"github.com/goliatone/go-metaform/pkg/render"
	"github.com/goliatone/go-metaform/pkg/schema"
)

// DefaultTitle is used by the page shell when no title is configured.
const DefaultTitle = "metaform"

// ErrMissingForm is returned by Submit when the location carries no form
// query parameter.
var ErrMissingForm = errors.New("metaform: location has no form parameter")

// Option customises the engine.
type Option func(*Engine)

// WithRenderOptions forwards options to the underlying renderer.
func WithRenderOptions(opts ...render.Option) Option {
	return func(e *Engine) {
		e.renderOpts = append(e.renderOpts, opts...)
	}
}

// WithPages replaces the page shell engine.
func WithPages(pages *page.Engine) Option {
	return func(e *Engine) {
		if pages != nil {
			e.pages = pages
		}
	}
}

// WithTitle sets the page title.
func WithTitle(title string) Option {
	return func(e *Engine) {
		if title != "" {
			e.title = title
		}
	}
}

// WithSchemaOptions forwards options to schema.Build.
func WithSchemaOptions(opts ...schema.Option) Option {
	return func(e *Engine) {
		e.schemaOpts = append(e.schemaOpts, opts...)
	}
}

// Engine renders pages and processes submissions for one metadata document.
// It keeps no per-request state; every call builds a fresh page.
type Engine struct {
	doc        *meta.Document
	renderer   *render.Renderer
	pages      *page.Engine
	title      string
	renderOpts []render.Option
	schemaOpts []schema.Option
}

// New builds an engine for doc.
func New(doc *meta.Document, options ...Option) (*Engine, error) {
	e := &Engine{doc: doc, title: DefaultTitle}
	for _, opt := range options {
		if opt != nil {
			opt(e)
		}
	}

	renderer, err := render.New(doc, e.renderOpts...)
	if err != nil {
		return nil, fmt.Errorf("metaform: %w", err)
	}
	e.renderer = renderer

	if e.pages == nil {
		pages, err := page.New()
		if err != nil {
			return nil, fmt.Errorf("metaform: %w", err)
		}
		e.pages = pages
	}
	return e, nil
}

// NewFromFile loads the metadata document at path and builds an engine for it.
func NewFromFile(path string, options ...Option) (*Engine, error) {
	doc, err := meta.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return New(doc, options...)
}

// Document returns the metadata the engine renders.
func (e *Engine) Document() *meta.Document {
	return e.doc
}

// Renderer returns the configured renderer.
func (e *Engine) Renderer() *render.Renderer {
	return e.renderer
}

// Bootstrap renders the subtree selected by location into a new page and
// returns it together with the ref that was used.
func (e *Engine) Bootstrap(ctx context.Context, location *url.URL) (*dom.Document, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	if location == nil {
		location = &url.URL{Path: "/"}
	}
	pg := dom.NewDocument(location)
	ref := e.renderer.Bootstrap(pg)
	return pg, ref, nil
}

// RenderPage renders the page for location wrapped in the page shell.
func (e *Engine) RenderPage(ctx context.Context, location *url.URL) (string, error) {
	pg, ref, err := e.Bootstrap(ctx, location)
	if err != nil {
		return "", err
	}
	return e.wrap(pg, ref)
}

// Submission is the outcome of Submit. When the submission was blocked, HTML
// holds the re-rendered page and Errors the messages keyed by error slot id.
type Submission struct {
	Ref    string
	FormID string
	Result form.Result
	Errors map[string]string
	HTML   string
}

// Submit renders the page for location, writes values into the form named by
// the location's form parameter and submits it.
func (e *Engine) Submit(ctx context.Context, location *url.URL, values url.Values) (Submission, error) {
	if location == nil {
		return Submission{}, ErrMissingForm
	}
	formID := location.Query().Get("form")
	if formID == "" {
		return Submission{}, ErrMissingForm
	}

	pg, ref, err := e.Bootstrap(ctx, location)
	if err != nil {
		return Submission{}, err
	}
	formEl, err := findForm(pg, formID)
	if err != nil {
		return Submission{}, err
	}

	dom.Fill(formEl, values)
	ev := pg.Dispatch(formEl, dom.EventSubmit)
	result, ok := ev.Result.(form.Result)
	if !ok {
		return Submission{}, fmt.Errorf("metaform: form %q has no submit controller", formID)
	}

	sub := Submission{Ref: ref, FormID: formID, Result: result}
	if result.Blocked {
		sub.Errors = form.Errors(formEl)
		if sub.HTML, err = e.wrap(pg, ref); err != nil {
			return Submission{}, err
		}
	}
	return sub, nil
}

// Fill renders the page for location and asks for the fields of one form
// through driver. The form is the one named by the location's form parameter,
// or the first form on the page.
func (e *Engine) Fill(ctx context.Context, driver prompt.Driver, location *url.URL, opts ...prompt.Option) (form.Result, error) {
	pg, _, err := e.Bootstrap(ctx, location)
	if err != nil {
		return form.Result{}, err
	}

	var formEl *html.Node
	if id := pg.Location.Query().Get("form"); id != "" {
		if formEl, err = findForm(pg, id); err != nil {
			return form.Result{}, err
		}
	} else {
		forms := dom.FindAll(pg.Body, func(n *html.Node) bool { return dom.IsElement(n, "form") })
		if len(forms) == 0 {
			return form.Result{}, fmt.Errorf("metaform: page has no form: %w", meta.ErrNotFound)
		}
		formEl = forms[0]
	}
	return prompt.Fill(ctx, driver, pg, formEl, opts...)
}

// Schema describes every form's submission payload as an OpenAPI document.
func (e *Engine) Schema() (*openapi3.T, error) {
	opts := append([]schema.Option{schema.WithInfo(e.title, "")}, e.schemaOpts...)
	return schema.Build(e.doc, opts...)
}

func (e *Engine) wrap(pg *dom.Document, ref string) (string, error) {
	body, err := dom.InnerHTML(pg.Body)
	if err != nil {
		return "", fmt.Errorf("metaform: serialize body: %w", err)
	}
	return e.pages.RenderPage(page.Data{
		Title: e.title,
		Ref:   ref,
		Roots: e.doc.Names(),
		Body:  body,
	})
}

func findForm(pg *dom.Document, id string) (*html.Node, error) {
	formEl := dom.FindByID(pg.Body, id)
	if formEl == nil {
		return nil, fmt.Errorf("metaform: form %q: %w", id, meta.ErrNotFound)
	}
	if !dom.IsElement(formEl, "form") {
		return nil, fmt.Errorf("metaform: element %q: %w", id, form.ErrNotForm)
	}
	return formEl, nil
}
