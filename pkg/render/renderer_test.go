package render_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/net/html"

	"github.com/goliatone/go-metaform/pkg/dom"
	"github.com/goliatone/go-metaform/pkg/form"
	"github.com/goliatone/go-metaform/pkg/meta"
	"github.com/goliatone/go-metaform/pkg/render"
	"github.com/goliatone/go-metaform/pkg/testsupport"
	"github.com/goliatone/go-metaform/pkg/widgets"
)

func newRenderer(t *testing.T, doc *meta.Document, opts ...render.Option) *render.Renderer {
	t.Helper()
	r, err := render.New(doc, opts...)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return r
}

func TestRenderTextInputMarkup(t *testing.T) {
	doc := testsupport.MustParse(t, `
_:
  items:
    - type: input
      text: Title
      required: true
      attr:
        name: title
`)
	page := testsupport.NewPage(t, "http://example.test/?ref=_")
	newRenderer(t, doc).Bootstrap(page)

	want := `<div><label for="/_/items/0">Title*</label><div><input id="/_/items/0" name="title" type="text"/><div class="error" id="/_/items/0-err"></div></div></div>`
	if got := testsupport.Markup(t, page.Body); got != want {
		t.Fatalf("markup mismatch:\nwant %s\ngot  %s", want, got)
	}
}

func TestRenderTextareaAndIDOverride(t *testing.T) {
	doc := testsupport.MustParse(t, `
_:
  items:
    - type: input
      text: Notes
      subType: textarea
      attr:
        id: notes
        rows: 4
`)
	page := testsupport.NewPage(t, "/")
	newRenderer(t, doc).Bootstrap(page)

	want := `<div><label for="notes">Notes</label><div><textarea id="notes" name="notes" rows="4"></textarea><div class="error" id="notes-err"></div></div></div>`
	if got := testsupport.Markup(t, page.Body); got != want {
		t.Fatalf("markup mismatch:\nwant %s\ngot  %s", want, got)
	}
}

func TestRenderPlaceholders(t *testing.T) {
	doc := testsupport.MustParse(t, `
_:
  items:
    - type: carousel
    - type: segment
      text: still rendered
`)
	r := newRenderer(t, doc)

	page := testsupport.NewPage(t, "/")
	r.Render(page, meta.PathOf("nope", "items", 3), page.Body)
	if got := testsupport.Markup(t, page.Body); got != "<p>Path /nope/items/3 not found</p>" {
		t.Fatalf("unexpected missing path output %q", got)
	}

	page = testsupport.NewPage(t, "/")
	r.Bootstrap(page)
	want := `<div><p>type carousel not supported</p><span>still rendered</span></div>`
	if got := testsupport.Markup(t, page.Body); got != want {
		t.Fatalf("markup mismatch:\nwant %s\ngot  %s", want, got)
	}
}

func TestRenderDispatchesEveryKind(t *testing.T) {
	doc := testsupport.MustParse(t, `
_:
  items:
    - type: header
      text: Order
    - type: para
      items:
        - type: segment
          text: Back to
        - type: link
          ref: cart
          text: cart
    - type: form
      items:
        - type: input
          attr: {name: title}
        - type: uniSelect
          attr: {name: size}
          items: [{key: s}, {key: l}]
        - type: multiSelect
          attr: {name: tags}
          items: [{key: a}]
        - type: submit
    - type: bogus
`)
	page := testsupport.NewPage(t, "/")
	newRenderer(t, doc).Bootstrap(page)
	got := testsupport.Markup(t, page.Body)

	for _, want := range []string{
		"<h1>Order</h1>",
		"<p><span>Back to</span><a ",
		`<form action=`,
		`<input id="/_/items/2/items/0" name="title" type="text"/>`,
		`type="radio"`,
		`type="checkbox"`,
		`<button type="submit">Submit</button>`,
		"<p>type bogus not supported</p>",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in markup:\n%s", want, got)
		}
	}
}

func TestCustomWidgetWithoutInputTypeIsUnsupported(t *testing.T) {
	doc := testsupport.MustParse(t, `
_:
  items:
    - type: uniSelect
      text: Rating
      attr:
        name: rating
      items: [{key: "1"}, {key: "2"}]
    - type: segment
      text: after
`)
	reg := widgets.NewRegistry()
	reg.Register("slider", 100, func(*meta.Choice, widgets.Thresholds) bool { return true })
	page := testsupport.NewPage(t, "/")
	newRenderer(t, doc, render.WithWidgets(reg)).Bootstrap(page)

	want := `<div><p>type uniSelect not supported</p><span>after</span></div>`
	if got := testsupport.Markup(t, page.Body); got != want {
		t.Fatalf("markup mismatch:\nwant %s\ngot  %s", want, got)
	}
}

func TestRenderBlocksParagraphsAndHeaders(t *testing.T) {
	doc := testsupport.MustParse(t, `
_:
  attr:
    class: page
  items:
    - type: header
      text: Big
      level: 9
    - type: header
      text: Default
    - type: para
      items:
        - type: segment
          items:
            - type: segment
              text: a
            - type: segment
              text: b
    - type: submit
      attr:
        class: primary
`)
	page := testsupport.NewPage(t, "/")
	newRenderer(t, doc).Bootstrap(page)

	want := `<div class="page"><h6>Big</h6><h1>Default</h1><p><span><span>a</span><span>b</span></span></p><div></div><button class="primary" type="submit">Submit</button></div>`
	if got := testsupport.Markup(t, page.Body); got != want {
		t.Fatalf("markup mismatch:\nwant %s\ngot  %s", want, got)
	}
}

func TestBootstrapDefaultsRef(t *testing.T) {
	doc := testsupport.MustParse(t, `
_:
  type: header
  text: Home
alt:
  type: header
  text: Alternate
`)
	r := newRenderer(t, doc)

	page := testsupport.NewPage(t, "http://example.test/")
	if ref := r.Bootstrap(page); ref != "_" {
		t.Fatalf("expected default ref, got %q", ref)
	}
	if got := testsupport.Markup(t, page.Body); got != "<h1>Home</h1>" {
		t.Fatalf("unexpected markup %q", got)
	}

	page = testsupport.NewPage(t, "http://example.test/?ref=alt")
	r.Bootstrap(page)
	if got := testsupport.Markup(t, page.Body); got != "<h1>Alternate</h1>" {
		t.Fatalf("unexpected markup %q", got)
	}

	custom := newRenderer(t, doc, render.WithDefaultRef("alt"))
	page = testsupport.NewPage(t, "http://example.test/")
	if ref := custom.Bootstrap(page); ref != "alt" {
		t.Fatalf("expected configured default ref, got %q", ref)
	}
}

func TestLinkReplacesRefOnly(t *testing.T) {
	doc := testsupport.MustParse(t, `
_:
  items:
    - type: link
      ref: alt
      text: Elsewhere
      attr:
        class: nav
    - type: link
      text: Home
`)
	r := newRenderer(t, doc)

	cases := []struct {
		location string
		want     []string
	}{
		{location: "http://example.test/?ref=_", want: []string{"http://example.test/?ref=alt", "http://example.test/?ref=_"}},
		{location: "http://example.test/app?lang=en&ref=_&x=1", want: []string{"http://example.test/app?lang=en&ref=alt&x=1", "http://example.test/app?lang=en&ref=_&x=1"}},
		{location: "http://example.test/app", want: []string{"http://example.test/app?ref=alt", "http://example.test/app?ref=_"}},
	}
	for _, tc := range cases {
		page := testsupport.NewPage(t, tc.location)
		r.Bootstrap(page)
		links := dom.FindAll(page.Body, func(n *html.Node) bool { return dom.IsElement(n, "a") })
		var got []string
		for _, link := range links {
			got = append(got, dom.AttrOr(link, "href", ""))
		}
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Fatalf("%s: hrefs mismatch (-want +got):\n%s", tc.location, diff)
		}
		if dom.TextContent(links[0]) != "Elsewhere" || !dom.HasClass(links[0], "nav") {
			t.Fatalf("link text or attrs lost")
		}
	}
}

func TestChoiceWidgetThreshold(t *testing.T) {
	src := `
_:
  type: form
  items:
    - type: uniSelect
      text: Five
      attr:
        name: five
      items: [{key: a}, {key: b}, {key: c}, {key: d}, {key: e}]
    - type: uniSelect
      text: Three
      attr:
        name: three
      items: [{key: a}, {key: b}, {key: c}]
    - type: multiSelect
      text: Many
      attr:
        name: many
      items: [{key: a}, {key: b}, {key: c}, {key: d}, {key: e}]
`
	doc := testsupport.MustParse(t, src)
	page := testsupport.NewPage(t, "/")
	newRenderer(t, doc).Bootstrap(page)

	five := testsupport.MustFind(t, page.Body, "/_/items/0")
	if !dom.IsElement(five, "select") || dom.IsMultiple(five) {
		t.Fatalf("five items should render a single dropdown, got <%s>", five.Data)
	}
	if n := len(dom.Options(five)); n != 6 {
		t.Fatalf("expected placeholder plus five options, got %d", n)
	}

	three := testsupport.MustFind(t, page.Body, "/_/items/1")
	if !dom.HasClass(three, "fieldset") {
		t.Fatalf("three items should render an inline group")
	}
	radios := dom.FindAll(three, dom.IsCheckable)
	if len(radios) != 3 {
		t.Fatalf("expected 3 radios, got %d", len(radios))
	}
	for i, radio := range radios {
		if dom.InputType(radio) != "radio" || dom.AttrOr(radio, "name", "") != "three" {
			t.Fatalf("radio %d has wrong type or name", i)
		}
	}

	many := testsupport.MustFind(t, page.Body, "/_/items/2")
	if !dom.IsElement(many, "select") || !dom.IsMultiple(many) {
		t.Fatalf("five multi items should render a multi-select")
	}
	if n := len(dom.Options(many)); n != 5 {
		t.Fatalf("multi-select should not carry a placeholder, got %d options", n)
	}
}

func TestChoiceThresholdSources(t *testing.T) {
	src := `
_options:
  N_UNI_SELECT: 2
_:
  type: uniSelect
  text: Pick
  items: [{key: a}, {key: b}, {key: c}]
`
	doc := testsupport.MustParse(t, src)

	page := testsupport.NewPage(t, "/")
	r := newRenderer(t, doc)
	r.Bootstrap(page)
	if !dom.IsElement(testsupport.MustFind(t, page.Body, "/_"), "select") {
		t.Fatalf("document option should switch to dropdown")
	}
	if got := r.Config().UniSelectThreshold; got != 2 {
		t.Fatalf("expected effective threshold 2, got %d", got)
	}

	page = testsupport.NewPage(t, "/")
	newRenderer(t, doc, render.WithUniSelectThreshold(5)).Bootstrap(page)
	if !dom.HasClass(testsupport.MustFind(t, page.Body, "/_"), "fieldset") {
		t.Fatalf("explicit configuration should override document options")
	}
}

func TestChoiceLabelsUseText(t *testing.T) {
	doc := testsupport.MustParse(t, `
_:
  type: multiSelect
  text: Tags
  required: true
  attr:
    name: tags
  items:
    - key: a
      text: Alpha
    - key: b
`)
	page := testsupport.NewPage(t, "/")
	newRenderer(t, doc).Bootstrap(page)

	want := `<label for="/_">Tags*</label><div><div class="fieldset" id="/_">` +
		`<label for="/_-0">Alpha</label><input id="/_-0" name="tags" type="checkbox" value="a"/>` +
		`<label for="/_-1">b</label><input id="/_-1" name="tags" type="checkbox" value="b"/>` +
		`</div><div class="error" id="/_-err"></div></div>`
	if got := testsupport.Markup(t, page.Body); got != want {
		t.Fatalf("markup mismatch:\nwant %s\ngot  %s", want, got)
	}
}

func TestInputValidationOnBlur(t *testing.T) {
	doc := testsupport.LoadBookstore(t)
	page := testsupport.NewPage(t, "/?ref=cart")
	newRenderer(t, doc).Bootstrap(page)

	input := testsupport.MustFind(t, page.Body, "/cart/items/1")
	slot := testsupport.MustFind(t, page.Body, "/cart/items/1-err")

	page.Dispatch(input, dom.EventBlur)
	if got := dom.TextContent(slot); got != "The field Name must be specified." {
		t.Fatalf("unexpected error text %q", got)
	}

	dom.SetValue(input, "Ada")
	page.Dispatch(input, dom.EventBlur)
	if got := dom.TextContent(slot); got != "" {
		t.Fatalf("expected cleared slot, got %q", got)
	}

	quantity := testsupport.MustFind(t, page.Body, "/cart/items/3")
	dom.SetValue(quantity, "two")
	page.Dispatch(quantity, dom.EventBlur)
	if got := dom.TextContent(testsupport.MustFind(t, page.Body, "/cart/items/3-err")); got != "Quantity must be a whole number." {
		t.Fatalf("unexpected quantity error %q", got)
	}
	if dom.TextContent(slot) != "" {
		t.Fatalf("validating one field must not touch another")
	}
}

func TestUntouchedRequiredFieldBlocksSubmit(t *testing.T) {
	doc := testsupport.LoadBookstore(t)
	var sunk []form.Payload
	controller := form.NewController(form.WithSink(func(p form.Payload) { sunk = append(sunk, p) }))
	page := testsupport.NewPage(t, "/?ref=cart")
	newRenderer(t, doc, render.WithController(controller)).Bootstrap(page)

	formEl := testsupport.MustFind(t, page.Body, "/cart")
	ev := page.Dispatch(formEl, dom.EventSubmit)
	if !ev.DefaultPrevented() {
		t.Fatalf("submit default should always be prevented")
	}
	result, ok := ev.Result.(form.Result)
	if !ok || !result.Blocked {
		t.Fatalf("expected blocked submission, got %#v", ev.Result)
	}
	if len(sunk) != 0 {
		t.Fatalf("blocked submission reached the sink")
	}
	errs := form.Errors(formEl)
	for id, want := range map[string]string{
		"/cart/items/1-err": "The field Name must be specified.",
		"/cart/items/4-err": "The field Shipping must be specified.",
		"/cart/items/6-err": "The field Payment must be specified.",
	} {
		if errs[id] != want {
			t.Fatalf("%s: want %q, got %q", id, want, errs[id])
		}
	}
	if _, ok := errs["/cart/items/5-err"]; ok {
		t.Fatalf("optional group should not report an error")
	}
}

func TestCheckboxGroupSerializesInDocumentOrder(t *testing.T) {
	doc := testsupport.LoadBookstore(t)
	var sunk []form.Payload
	controller := form.NewController(form.WithSink(func(p form.Payload) { sunk = append(sunk, p) }))
	page := testsupport.NewPage(t, "/?ref=cart")
	newRenderer(t, doc, render.WithController(controller)).Bootstrap(page)
	body := page.Body

	dom.SetValue(testsupport.MustFind(t, body, "/cart/items/1"), "Ada")
	dom.SetValue(testsupport.MustFind(t, body, "/cart/items/2"), "ada@example.org")
	dom.SetValue(testsupport.MustFind(t, body, "/cart/items/3"), "2")
	dom.SetValue(testsupport.MustFind(t, body, "/cart/items/4"), "express")
	dom.SetChecked(testsupport.MustFind(t, body, "/cart/items/5-2"), true)
	dom.SetChecked(testsupport.MustFind(t, body, "/cart/items/5-0"), true)
	dom.SetChecked(testsupport.MustFind(t, body, "/cart/items/6-1"), true)

	ev := page.Dispatch(testsupport.MustFind(t, body, "/cart"), dom.EventSubmit)
	result := ev.Result.(form.Result)
	if result.Blocked {
		t.Fatalf("submission blocked: %v", form.Errors(body))
	}

	want := form.Payload{
		"name":     {Values: []string{"Ada"}},
		"email":    {Values: []string{"ada@example.org"}},
		"quantity": {Values: []string{"2"}},
		"shipping": {Values: []string{"express"}},
		"extras":   {Values: []string{"wrap", "ribbon"}, Multi: true},
		"payment":  {Values: []string{"invoice"}},
		"notes":    {Values: []string{""}},
	}
	if diff := cmp.Diff(want, result.Payload); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
	if len(sunk) != 1 {
		t.Fatalf("expected one sink call, got %d", len(sunk))
	}
}

func TestFormDefaults(t *testing.T) {
	doc := testsupport.LoadBookstore(t)
	page := testsupport.NewPage(t, "http://example.test/?ref=cart")
	newRenderer(t, doc).Bootstrap(page)

	formEl := testsupport.MustFind(t, page.Body, "/cart")
	if got := dom.AttrOr(formEl, "method", ""); got != "post" {
		t.Fatalf("unexpected method %q", got)
	}
	if got := dom.AttrOr(formEl, "action", ""); got != "http://example.test/?ref=cart&form=%2Fcart" {
		t.Fatalf("unexpected action %q", got)
	}
	button := dom.FindAll(formEl, func(n *html.Node) bool { return dom.IsElement(n, "button") })
	if len(button) != 1 || dom.TextContent(button[0]) != "Submit" {
		t.Fatalf("expected default submit label")
	}
}

func TestNewRejectsUnknownValidators(t *testing.T) {
	doc := testsupport.MustParse(t, `
_:
  type: input
  chkFn: nonsense
`)
	_, err := render.New(doc)
	if err == nil || !strings.Contains(err.Error(), `unknown check "nonsense"`) {
		t.Fatalf("expected validator verification error, got %v", err)
	}
	if _, err := render.New(nil); err == nil {
		t.Fatalf("expected error for nil document")
	}
}
