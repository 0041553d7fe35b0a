// Package page wraps rendered form markup in an HTML document shell using
// pongo2 templates. The default shell is embedded; callers may point the
// engine at their own template directory.
package page

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/flosch/pongo2/v6"
)

//go:embed templates/*.tpl
var embedded embed.FS

// DefaultTemplate is the shell file looked up when none is configured.
const DefaultTemplate = "page.tpl"

// TemplatesFS exposes the embedded default templates.
func TemplatesFS() fs.FS {
	sub, err := fs.Sub(embedded, "templates")
	if err != nil {
		return embedded
	}
	return sub
}

// Data is the view model for the page shell. Body is trusted markup produced
// by the renderer and is written unescaped.
type Data struct {
	Title string
	Ref   string
	Roots []string
	Body  string
}

func (d Data) context(globals pongo2.Context) pongo2.Context {
	ctx := make(pongo2.Context, len(globals)+4)
	ctx.Update(globals)
	roots := make([]any, 0, len(d.Roots))
	for _, root := range d.Roots {
		roots = append(roots, root)
	}
	ctx.Update(pongo2.Context{
		"title": d.Title,
		"ref":   d.Ref,
		"roots": roots,
		"body":  d.Body,
	})
	return ctx
}

// Option configures the engine before construction.
type Option func(*config)

type config struct {
	dir     string
	files   fs.FS
	name    string
	globals pongo2.Context
}

// WithTemplateDir looks the shell up in dir before the embedded defaults.
func WithTemplateDir(dir string) Option {
	return func(cfg *config) {
		cfg.dir = strings.TrimSpace(dir)
	}
}

// WithFS replaces the embedded templates.
func WithFS(files fs.FS) Option {
	return func(cfg *config) {
		if files != nil {
			cfg.files = files
		}
	}
}

// WithTemplate names the shell file, DefaultTemplate otherwise.
func WithTemplate(name string) Option {
	return func(cfg *config) {
		if name = strings.TrimSpace(name); name != "" {
			cfg.name = name
		}
	}
}

// WithGlobals adds values visible to the shell. Page data wins over globals
// of the same name.
func WithGlobals(values map[string]any) Option {
	return func(cfg *config) {
		for key, value := range values {
			if key = strings.TrimSpace(key); key != "" {
				cfg.globals[key] = value
			}
		}
	}
}

// Engine renders the page shell. The template is parsed once by New and is
// safe for concurrent use.
type Engine struct {
	shell   *pongo2.Template
	name    string
	globals pongo2.Context
}

// New parses the shell template.
func New(options ...Option) (*Engine, error) {
	cfg := &config{
		files:   TemplatesFS(),
		name:    DefaultTemplate,
		globals: pongo2.Context{},
	}
	for _, opt := range options {
		if opt != nil {
			opt(cfg)
		}
	}

	var loaders []pongo2.TemplateLoader
	if cfg.dir != "" {
		local, err := pongo2.NewLocalFileSystemLoader(cfg.dir)
		if err != nil {
			return nil, fmt.Errorf("page: template dir %q: %w", cfg.dir, err)
		}
		loaders = append(loaders, local)
	}
	loaders = append(loaders, pongo2.NewFSLoader(cfg.files))
	registerFilters()

	shell, err := pongo2.NewSet("metaform-page", loaders...).FromFile(cfg.name)
	if err != nil {
		return nil, fmt.Errorf("page: load template %q: %w", cfg.name, err)
	}
	return &Engine{shell: shell, name: cfg.name, globals: cfg.globals}, nil
}

// RenderPage renders the shell around data.Body and also writes the result
// to every out writer.
func (e *Engine) RenderPage(data Data, out ...io.Writer) (string, error) {
	rendered, err := e.shell.Execute(data.context(e.globals))
	if err != nil {
		return "", fmt.Errorf("page: execute template %q: %w", e.name, err)
	}
	for _, w := range out {
		if _, err := io.WriteString(w, rendered); err != nil {
			return "", err
		}
	}
	return rendered, nil
}

func registerFilters() {
	if !pongo2.FilterExists("trim") {
		_ = pongo2.RegisterFilter("trim", func(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
			return pongo2.AsValue(strings.TrimSpace(in.String())), nil
		})
	}
}
