package render

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/goliatone/go-metaform/pkg/dom"
	"github.com/goliatone/go-metaform/pkg/meta"
	"github.com/goliatone/go-metaform/pkg/validation"
)

const defaultSubmitLabel = "Submit"

func renderBlock(p *pass, node meta.Node, path meta.Path, target *html.Node) {
	p.items("div", node, path, target)
}

func renderPara(p *pass, node meta.Node, path meta.Path, target *html.Node) {
	p.items("p", node, path, target)
}

func renderSegment(p *pass, node meta.Node, path meta.Path, target *html.Node) {
	segment, ok := node.(*meta.Segment)
	if ok && segment.Text != nil {
		span := dom.Element("span", node.Attributes())
		dom.SetText(span, *segment.Text)
		dom.Append(target, span)
		return
	}
	p.items("span", node, path, target)
}

func renderForm(p *pass, node meta.Node, path meta.Path, target *html.Node) {
	id := meta.ElementID(node, path)
	attrs := meta.Attrs{"id": id, "method": "post"}.Merge(node.Attributes())
	if _, ok := attrs["action"]; !ok {
		attrs["action"] = withQuery(p.page.Location, "form", id)
	}
	el := dom.Element("form", attrs)
	appendHidden(el, p.hidden)
	for i := range node.Children() {
		p.render(path.Item(i), el)
	}
	dom.Append(target, el)
	p.controller.Bind(p.page, el)
}

func renderHeader(p *pass, node meta.Node, _ meta.Path, target *html.Node) {
	header, _ := node.(*meta.Header)
	level, text := 1, ""
	if header != nil {
		level, text = header.Level, header.Text
	}
	if level < 1 {
		level = 1
	}
	if level > 6 {
		level = 6
	}
	el := dom.Element(fmt.Sprintf("h%d", level), node.Attributes())
	dom.SetText(el, text)
	dom.Append(target, el)
}

func renderLink(p *pass, node meta.Node, _ meta.Path, target *html.Node) {
	link, _ := node.(*meta.Link)
	ref, text := p.config.DefaultRef, ""
	if link != nil {
		if strings.TrimSpace(link.Ref) != "" {
			ref = link.Ref
		}
		text = link.Text
	}
	el := dom.Element("a", node.Attributes().Merge(map[string]string{
		"href": withQuery(p.page.Location, "ref", ref),
	}))
	dom.SetText(el, text)
	dom.Append(target, el)
}

func renderSubmit(p *pass, node meta.Node, _ meta.Path, target *html.Node) {
	text := defaultSubmitLabel
	if submit, ok := node.(*meta.Submit); ok && submit.Text != "" {
		text = submit.Text
	}
	button := dom.Element("button", node.Attributes().Merge(map[string]string{"type": "submit"}))
	dom.SetText(button, text)
	dom.Append(target, dom.Element("div", nil), button)
}

func renderInput(p *pass, node meta.Node, path meta.Path, target *html.Node) {
	input, ok := node.(*meta.Input)
	if !ok {
		unsupported(target, node)
		return
	}
	id := meta.ElementID(node, path)
	attrs := node.Attributes().Merge(map[string]string{
		"id":   id,
		"name": meta.FieldName(node, path),
	})

	var control *html.Node
	if input.Multiline() {
		control = dom.Element("textarea", attrs)
	} else {
		attrs["type"] = "text"
		if subType := strings.TrimSpace(input.SubType); subType != "" {
			attrs["type"] = subType
		}
		control = dom.Element("input", attrs)
	}

	label(target, id, input.Field)
	slot := errorSlot(id)
	dom.Append(target, dom.Append(dom.Element("div", nil), control, slot))

	binding := validation.Binding{Node: input, Extract: validation.ExtractText, Control: control, Slot: slot}
	p.page.On(control, dom.EventBlur, p.handler.Listener(binding))
}

// label appends the field label, marking required fields with "*".
func label(target *html.Node, id string, field meta.Field) {
	el := dom.Element("label", map[string]string{"for": id})
	text := field.Text
	if field.Required {
		text += "*"
	}
	dom.SetText(el, text)
	dom.Append(target, el)
}

func errorSlot(id string) *html.Node {
	return dom.Element("div", map[string]string{"class": "error", "id": id + "-err"})
}
