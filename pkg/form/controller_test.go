package form

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/net/html"

	"github.com/goliatone/go-metaform/pkg/dom"
)

func buildForm() (*dom.Document, *html.Node) {
	page := dom.NewDocument(nil)
	formEl := dom.Element("form", nil)
	sel := dom.Element("select", map[string]string{"name": "genres", "multiple": "multiple"})
	dom.Append(sel,
		dom.Element("option", map[string]string{"value": "fiction"}),
		dom.Element("option", map[string]string{"value": "poetry", "selected": "selected"}),
		dom.Element("option", map[string]string{"value": "travel", "selected": "selected"}),
	)
	dom.Append(formEl,
		dom.Element("input", map[string]string{"name": "title", "value": " Dune "}),
		dom.Element("input", map[string]string{"name": "tags", "type": "checkbox", "value": "a", "checked": "checked"}),
		dom.Element("input", map[string]string{"name": "tags", "type": "checkbox", "value": "b"}),
		dom.Element("input", map[string]string{"name": "tags", "type": "checkbox", "value": "c", "checked": "checked"}),
		dom.Element("input", map[string]string{"name": "fmt", "type": "radio", "value": "pb"}),
		dom.Element("input", map[string]string{"name": "none", "type": "checkbox", "value": "x"}),
		dom.Element("input", map[string]string{"name": "go", "type": "submit", "value": "Go"}),
		dom.Element("input", map[string]string{"value": "unnamed"}),
		sel,
		dom.Element("div", map[string]string{"class": "error", "id": "title-err"}),
	)
	dom.Append(page.Body, formEl)
	return page, formEl
}

func TestSerialize(t *testing.T) {
	_, formEl := buildForm()

	want := Payload{
		"title":  {Values: []string{" Dune "}},
		"tags":   {Values: []string{"a", "c"}, Multi: true},
		"genres": {Values: []string{"poetry", "travel"}, Multi: true},
	}
	if diff := cmp.Diff(want, Serialize(formEl)); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestPayloadJSON(t *testing.T) {
	payload := Payload{
		"title": {Values: []string{"Dune"}},
		"tags":  {Values: []string{"a"}, Multi: true},
		"empty": {Multi: true},
	}
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"empty":[],"tags":["a"],"title":"Dune"}`
	if string(data) != want {
		t.Fatalf("unexpected json:\nwant %s\ngot  %s", want, data)
	}
	if payload.Get("title") != "Dune" || payload.Get("missing") != "" {
		t.Fatalf("unexpected Get results")
	}
	if diff := cmp.Diff([]string{"empty", "tags", "title"}, payload.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestAttachRejectsNonForm(t *testing.T) {
	page := dom.NewDocument(nil)
	err := NewController().Attach(page, dom.Element("div", nil))
	if !errors.Is(err, ErrNotForm) {
		t.Fatalf("expected ErrNotForm, got %v", err)
	}
}

func TestSubmitForcesValidation(t *testing.T) {
	page, formEl := buildForm()
	title := dom.FindAll(formEl, func(n *html.Node) bool { return dom.AttrOr(n, "name", "") == "title" })[0]
	slot := dom.FindByID(formEl, "title-err")

	var events []string
	page.On(title, dom.EventBlur, func(ev *dom.Event) {
		events = append(events, ev.Type)
		dom.SetText(slot, "bad title")
	})
	page.On(formEl, dom.EventChange, func(ev *dom.Event) {
		events = append(events, ev.Type+":"+dom.AttrOr(ev.Target, "name", ""))
	})

	var sunk int
	ctrl := NewController(WithSink(func(Payload) { sunk++ }))
	if err := ctrl.Attach(page, formEl); err != nil {
		t.Fatalf("attach: %v", err)
	}
	ev := page.Dispatch(formEl, dom.EventSubmit)
	result := ev.Result.(Result)
	if !result.Blocked || sunk != 0 {
		t.Fatalf("expected blocked submission, got %+v (sunk=%d)", result, sunk)
	}

	want := []string{"blur", "change:tags", "change:tags", "change:tags", "change:fmt", "change:none", "change:genres"}
	if diff := cmp.Diff(want, events); diff != "" {
		t.Fatalf("forced events mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]string{"title-err": "bad title"}, Errors(formEl)); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}

	dom.SetText(slot, "")
	page = dom.NewDocument(nil)
	dom.Append(page.Body, formEl)
	if err := ctrl.Attach(page, formEl); err != nil {
		t.Fatalf("attach: %v", err)
	}
	ev = page.Dispatch(formEl, dom.EventSubmit)
	if ev.Result.(Result).Blocked || sunk != 1 {
		t.Fatalf("expected accepted submission, sunk=%d", sunk)
	}
}

func TestBindHandlesSubmit(t *testing.T) {
	page, formEl := buildForm()
	NewController().Bind(page, formEl)

	ev := page.Dispatch(formEl, dom.EventSubmit)
	if !ev.DefaultPrevented() {
		t.Fatalf("submit navigation should be prevented")
	}
	if _, ok := ev.Result.(Result); !ok {
		t.Fatalf("expected a submission result, got %T", ev.Result)
	}
}
