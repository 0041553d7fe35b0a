package schema_test

import (
	"context"
	"sort"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-metaform/pkg/schema"
	"github.com/goliatone/go-metaform/pkg/testsupport"
)

func TestBuildBookstore(t *testing.T) {
	doc := testsupport.LoadBookstore(t)
	spec, err := schema.Build(doc, schema.WithInfo("Bookstore", "2.0.0"))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if err := spec.Validate(context.Background()); err != nil {
		t.Fatalf("generated document is invalid: %v", err)
	}
	if spec.Info.Title != "Bookstore" || spec.Info.Version != "2.0.0" {
		t.Fatalf("unexpected info %+v", spec.Info)
	}

	names := make([]string, 0, len(spec.Components.Schemas))
	for name := range spec.Components.Schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	if diff := cmp.Diff([]string{"cart", "search"}, names); diff != "" {
		t.Fatalf("components mismatch (-want +got):\n%s", diff)
	}

	cart := spec.Components.Schemas["cart"].Value
	if diff := cmp.Diff([]string{"email", "name", "payment", "quantity", "shipping"}, cart.Required); diff != "" {
		t.Fatalf("required mismatch (-want +got):\n%s", diff)
	}
	if got := cart.Properties["email"].Value.Format; got != "email" {
		t.Fatalf("expected email format, got %q", got)
	}
	extras := cart.Properties["extras"].Value
	if !extras.Type.Is(openapi3.TypeArray) || len(extras.Items.Value.Enum) != 3 {
		t.Fatalf("extras should be an array of three keys: %+v", extras)
	}
	if got := cart.Properties["quantity"].Value.Extensions["x-metaform-check"]; got != "integer" {
		t.Fatalf("expected check extension, got %v", got)
	}

	op := spec.Paths.Value("/").Post
	if op == nil || op.RequestBody.Value.Content.Get(schema.FormContentType) == nil {
		t.Fatalf("expected form-encoded POST operation")
	}
	if n := len(op.RequestBody.Value.Content.Get(schema.FormContentType).Schema.Value.OneOf); n != 2 {
		t.Fatalf("expected oneOf over two forms, got %d", n)
	}
}

func TestBuildWithoutForms(t *testing.T) {
	doc := testsupport.MustParse(t, `
_:
  type: header
  text: Nothing to submit
`)
	spec, err := schema.Build(doc)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if spec.Paths.Len() != 0 || len(spec.Components.Schemas) != 0 {
		t.Fatalf("expected empty document")
	}
}

func TestBuildSkipsNestedFormFields(t *testing.T) {
	doc := testsupport.MustParse(t, `
outer:
  type: form
  items:
    - type: input
      attr: {name: a}
    - type: form
      attr: {id: inner}
      items:
        - type: input
          attr: {name: b}
`)
	spec, err := schema.Build(doc)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	outer := spec.Components.Schemas["outer"].Value
	if _, ok := outer.Properties["b"]; ok {
		t.Fatalf("nested form field leaked into outer schema")
	}
	if _, ok := spec.Components.Schemas["inner"].Value.Properties["b"]; !ok {
		t.Fatalf("inner form should own its field")
	}
}

func TestComponentName(t *testing.T) {
	cases := map[string]string{
		"/cart":           "cart",
		"/_/items/2":      "_.items.2",
		"/":               "form",
		"checkout form#1": "checkout_form_1",
	}
	for in, want := range cases {
		if got := schema.ComponentName(in); got != want {
			t.Fatalf("ComponentName(%q) = %q, want %q", in, got, want)
		}
	}
}
