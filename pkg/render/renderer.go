// Package render walks a metadata document and appends the markup for each
// node into a dom tree, wiring validation and submission handlers as it goes.
package render

import (
	"errors"
	"fmt"

	"golang.org/x/net/html"

	"github.com/goliatone/go-metaform/pkg/dom"
	"github.com/goliatone/go-metaform/pkg/form"
	"github.com/goliatone/go-metaform/pkg/meta"
	"github.com/goliatone/go-metaform/pkg/validation"
	"github.com/goliatone/go-metaform/pkg/widgets"
)

// Renderer turns metadata subtrees into elements. It holds no per-page state
// and may render any number of pages.
type Renderer struct {
	doc        *meta.Document
	config     Config
	thresholds widgets.Thresholds
	widgets    *widgets.Registry
	validators *validation.Registry
	handler    *validation.Handler
	controller *form.Controller
	hidden     []HiddenField
}

// New creates a renderer for doc. Field check and message references that the
// validator registry cannot resolve are reported here rather than at event
// time.
func New(doc *meta.Document, options ...Option) (*Renderer, error) {
	if doc == nil {
		return nil, errors.New("render: metadata document is required")
	}
	s := settings{config: Config{DefaultRef: DefaultRef}}
	for _, opt := range options {
		if opt != nil {
			opt(&s)
		}
	}
	if s.config.DefaultRef == "" {
		s.config.DefaultRef = DefaultRef
	}
	if s.widgets == nil {
		s.widgets = widgets.NewRegistry()
	}
	if s.validators == nil {
		s.validators = validation.NewRegistry()
	}
	if s.controller == nil {
		s.controller = form.NewController()
	}
	if err := s.validators.Verify(doc); err != nil {
		return nil, fmt.Errorf("render: verify validators: %w", err)
	}

	docOptions := doc.Options()
	cfg := s.config
	if cfg.UniSelectThreshold <= 0 {
		cfg.UniSelectThreshold = docOptions.UniSelectThreshold
	}
	if cfg.MultiSelectThreshold <= 0 {
		cfg.MultiSelectThreshold = docOptions.MultiSelectThreshold
	}

	return &Renderer{
		doc:    doc,
		config: cfg,
		thresholds: widgets.Thresholds{
			UniSelect:   cfg.UniSelectThreshold,
			MultiSelect: cfg.MultiSelectThreshold,
		},
		widgets:    s.widgets,
		validators: s.validators,
		handler:    validation.NewHandler(doc, s.validators),
		controller: s.controller,
		hidden:     sortedHidden(s.hidden),
	}, nil
}

// Config returns the effective configuration, document defaults included.
func (r *Renderer) Config() Config {
	return r.config
}

// Document returns the metadata the renderer reads.
func (r *Renderer) Document() *meta.Document {
	return r.doc
}

// Render appends the subtree addressed by path to target. Missing paths and
// unsupported kinds become visible placeholders.
func (r *Renderer) Render(page *dom.Document, path meta.Path, target *html.Node) {
	p := &pass{Renderer: r, page: page}
	p.render(path, target)
}

// Bootstrap renders the subtree selected by the page location's ref query
// parameter into the page body and returns the ref used.
func (r *Renderer) Bootstrap(page *dom.Document) string {
	ref := r.config.DefaultRef
	if page.Location != nil {
		if value := page.Location.Query().Get("ref"); value != "" {
			ref = value
		}
	}
	r.Render(page, meta.PathOf(ref), page.Body)
	return ref
}

// pass is a single Render call: the renderer plus the page being written.
type pass struct {
	*Renderer
	page *dom.Document
}

func (p *pass) render(path meta.Path, target *html.Node) {
	node, ok := p.doc.Resolve(path)
	if !ok {
		placeholder(target, fmt.Sprintf("Path %s not found", path.ID()))
		return
	}
	path = path.Normalize()
	switch node.Kind() {
	case meta.KindBlock:
		renderBlock(p, node, path, target)
	case meta.KindForm:
		renderForm(p, node, path, target)
	case meta.KindHeader:
		renderHeader(p, node, path, target)
	case meta.KindInput:
		renderInput(p, node, path, target)
	case meta.KindLink:
		renderLink(p, node, path, target)
	case meta.KindUniSelect, meta.KindMultiSelect:
		renderChoice(p, node, path, target)
	case meta.KindPara:
		renderPara(p, node, path, target)
	case meta.KindSegment:
		renderSegment(p, node, path, target)
	case meta.KindSubmit:
		renderSubmit(p, node, path, target)
	default:
		unsupported(target, node)
	}
}

func (p *pass) items(tag string, node meta.Node, path meta.Path, target *html.Node) *html.Node {
	el := dom.Element(tag, node.Attributes())
	for i := range node.Children() {
		p.render(path.Item(i), el)
	}
	dom.Append(target, el)
	return el
}

func unsupported(target *html.Node, node meta.Node) {
	placeholder(target, fmt.Sprintf("type %s not supported", node.Kind()))
}

func placeholder(target *html.Node, text string) {
	dom.Append(target, dom.Append(dom.Element("p", nil), dom.Text(text)))
}
