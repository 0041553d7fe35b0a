// Package schema describes the submission payload of every form in a metadata
// document as an OpenAPI 3 document.
package schema

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-metaform/pkg/meta"
)

// FormContentType is the request body encoding browsers use for the rendered
// forms.
const FormContentType = "application/x-www-form-urlencoded"

const (
	extensionCheck   = "x-metaform-check"
	extensionMessage = "x-metaform-message"
	extensionForm    = "x-metaform-form"
)

// Option configures Build.
type Option func(*config)

type config struct {
	title   string
	version string
	path    string
}

// WithInfo sets the document title and version.
func WithInfo(title, version string) Option {
	return func(cfg *config) {
		if strings.TrimSpace(title) != "" {
			cfg.title = title
		}
		if strings.TrimSpace(version) != "" {
			cfg.version = version
		}
	}
}

// WithSubmitPath sets the path forms are posted to.
func WithSubmitPath(path string) Option {
	return func(cfg *config) {
		if strings.HasPrefix(path, "/") {
			cfg.path = path
		}
	}
}

// Build returns an OpenAPI document with one component schema per form and a
// POST operation accepting any of them.
func Build(doc *meta.Document, options ...Option) (*openapi3.T, error) {
	if doc == nil {
		return nil, errors.New("schema: metadata document is required")
	}
	cfg := config{title: "metaform", version: "1.0.0", path: "/"}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	spec := &openapi3.T{
		OpenAPI: "3.0.3",
		Info:    &openapi3.Info{Title: cfg.title, Version: cfg.version},
		Paths:   openapi3.NewPaths(),
		Components: &openapi3.Components{
			Schemas: openapi3.Schemas{},
		},
	}

	var formIDs []string
	var refs openapi3.SchemaRefs
	var errs []error
	doc.Walk(func(node meta.Node, path meta.Path) bool {
		if node.Kind() != meta.KindForm {
			return true
		}
		id := meta.ElementID(node, path)
		name := ComponentName(id)
		if _, dup := spec.Components.Schemas[name]; dup {
			errs = append(errs, fmt.Errorf("schema: forms %s collide on component %q", id, name))
			return true
		}
		value := formSchema(node, path, id)
		spec.Components.Schemas[name] = openapi3.NewSchemaRef("", value)
		refs = append(refs, openapi3.NewSchemaRef("#/components/schemas/"+name, value))
		formIDs = append(formIDs, id)
		return true
	})
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	if len(formIDs) == 0 {
		return spec, nil
	}

	bodyRef := refs[0]
	if len(refs) > 1 {
		bodyRef = openapi3.NewSchemaRef("", &openapi3.Schema{OneOf: refs})
	}

	formIDValues := make([]any, 0, len(formIDs))
	for _, id := range formIDs {
		formIDValues = append(formIDValues, id)
	}

	operation := &openapi3.Operation{
		OperationID: "submitForm",
		Summary:     "Submit a rendered form",
		Parameters: openapi3.Parameters{
			{Value: openapi3.NewQueryParameter("ref").
				WithDescription("top-level node the form was rendered from").
				WithSchema(openapi3.NewStringSchema())},
			{Value: openapi3.NewQueryParameter("form").
				WithDescription("element id of the submitted form").
				WithRequired(true).
				WithSchema(openapi3.NewStringSchema().WithEnum(formIDValues...))},
		},
		RequestBody: &openapi3.RequestBodyRef{
			Value: openapi3.NewRequestBody().
				WithRequired(true).
				WithContent(openapi3.NewContentWithSchemaRef(bodyRef, []string{FormContentType})),
		},
		Responses: openapi3.NewResponses(
			openapi3.WithStatus(200, &openapi3.ResponseRef{
				Value: openapi3.NewResponse().
					WithDescription("accepted submission payload").
					WithJSONSchema(openapi3.NewObjectSchema()),
			}),
			openapi3.WithStatus(422, &openapi3.ResponseRef{
				Value: openapi3.NewResponse().
					WithDescription("page re-rendered with field errors").
					WithContent(openapi3.NewContentWithSchema(openapi3.NewStringSchema(), []string{"text/html"})),
			}),
		),
	}
	spec.Paths.Set(cfg.path, &openapi3.PathItem{Post: operation})
	return spec, nil
}

// ComponentName turns a form element id into a component schema name.
func ComponentName(id string) string {
	trimmed := strings.Trim(id, "/")
	if trimmed == "" {
		return "form"
	}
	var b strings.Builder
	for _, r := range trimmed {
		switch {
		case r == '/':
			b.WriteByte('.')
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

func formSchema(node meta.Node, path meta.Path, id string) *openapi3.Schema {
	schema := openapi3.NewObjectSchema()
	schema.Title = id
	schema.Extensions = map[string]any{extensionForm: id}

	var required []string
	for i, child := range node.Children() {
		collectFields(child, path.Item(i), func(field meta.Interactive, at meta.Path) {
			name := meta.FieldName(field, at)
			schema.WithProperty(name, fieldSchema(field))
			if field.FieldSpec().Required {
				required = append(required, name)
			}
		})
	}
	sort.Strings(required)
	schema.Required = dedupe(required)
	return schema
}

// collectFields visits the interactive nodes under node without descending
// into nested forms.
func collectFields(node meta.Node, path meta.Path, fn func(meta.Interactive, meta.Path)) {
	if node == nil || node.Kind() == meta.KindForm {
		return
	}
	if field, ok := node.(meta.Interactive); ok {
		fn(field, path)
	}
	for i, child := range node.Children() {
		collectFields(child, path.Item(i), fn)
	}
}

func fieldSchema(field meta.Interactive) *openapi3.Schema {
	spec := field.FieldSpec()
	var schema *openapi3.Schema

	switch node := field.(type) {
	case *meta.Choice:
		keys := make([]any, 0, len(node.Options))
		for _, option := range node.Options {
			keys = append(keys, option.Key)
		}
		item := openapi3.NewStringSchema().WithEnum(keys...)
		if node.Multiple {
			schema = openapi3.NewArraySchema().WithItems(item)
		} else {
			schema = item
		}
	default:
		schema = openapi3.NewStringSchema()
		applyCheck(schema, spec.Check)
	}

	schema.Description = spec.Text
	if spec.Check != "" || spec.ErrMsg != "" {
		schema.Extensions = map[string]any{}
		if spec.Check != "" {
			schema.Extensions[extensionCheck] = spec.Check
		}
		if spec.ErrMsg != "" {
			schema.Extensions[extensionMessage] = spec.ErrMsg
		}
	}
	return schema
}

// applyCheck maps the built-in checks onto schema keywords where one exists.
func applyCheck(schema *openapi3.Schema, check string) {
	prefix, arg, _ := strings.Cut(check, ":")
	switch prefix {
	case "integer":
		schema.Pattern = `^[+-]?[0-9]+$`
	case "email":
		schema.Format = "email"
	case "pattern":
		schema.Pattern = "^(?:" + arg + ")$"
	case "oneOf":
		var values []any
		for _, entry := range strings.Split(arg, "|") {
			values = append(values, strings.TrimSpace(entry))
		}
		schema.WithEnum(values...)
	}
}

func dedupe(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, value := range values {
		if len(out) > 0 && out[len(out)-1] == value {
			continue
		}
		out = append(out, value)
	}
	return out
}
