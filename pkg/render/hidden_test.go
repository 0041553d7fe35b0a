package render_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-metaform/pkg/form"
	"github.com/goliatone/go-metaform/pkg/render"
	"github.com/goliatone/go-metaform/pkg/testsupport"
)

func TestHiddenFieldsLeadEveryForm(t *testing.T) {
	doc := testsupport.MustParse(t, `
f:
  type: form
  items:
    - type: input
      attr: {name: q}
`)
	r := newRenderer(t, doc, render.WithHiddenFields(
		render.Hidden("version", 4),
		render.CSRFToken("_csrf", "stale"),
		render.Hidden("  ", "skipped"),
		render.CSRFToken("_csrf", "token123"),
	))
	page := testsupport.NewPage(t, "/?ref=f")
	r.Bootstrap(page)

	formEl := testsupport.MustFind(t, page.Body, "/f")
	want := `<input name="_csrf" type="hidden" value="token123"/><input name="version" type="hidden" value="4"/>`
	if got := testsupport.Markup(t, formEl); !strings.HasPrefix(got, want) {
		t.Fatalf("hidden fields should open the form:\nwant prefix %s\ngot %s", want, got)
	}

	payload := form.Serialize(formEl)
	if diff := cmp.Diff([]string{"_csrf", "q", "version"}, payload.Names()); diff != "" {
		t.Fatalf("payload names mismatch (-want +got):\n%s", diff)
	}
	if got := payload.Get("_csrf"); got != "token123" {
		t.Fatalf("expected token in payload, got %q", got)
	}
}
