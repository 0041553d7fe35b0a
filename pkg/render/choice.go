package render

import (
	"strconv"

	"golang.org/x/net/html"

	"github.com/goliatone/go-metaform/pkg/dom"
	"github.com/goliatone/go-metaform/pkg/meta"
	"github.com/goliatone/go-metaform/pkg/validation"
	"github.com/goliatone/go-metaform/pkg/widgets"
)

// renderChoice lays a choice out as the widget the registry picks for it and
// validates it on change.
func renderChoice(p *pass, node meta.Node, path meta.Path, target *html.Node) {
	choice, ok := node.(*meta.Choice)
	if !ok {
		unsupported(target, node)
		return
	}
	widget, ok := p.widgets.Resolve(choice, p.thresholds)
	if !ok || (widget != widgets.WidgetDropdown && widget.InputType() == "") {
		unsupported(target, node)
		return
	}

	id := meta.ElementID(node, path)
	name := meta.FieldName(node, path)
	binding := validation.Binding{Node: choice}
	if widget == widgets.WidgetDropdown {
		binding.Control = selectControl(choice, id, name)
		binding.Extract = validation.ExtractSelect
	} else {
		binding.Control = groupControl(choice, widget, id, name)
		binding.Extract = validation.ExtractChecked
	}
	binding.Slot = errorSlot(id)

	label(target, id, choice.Field)
	dom.Append(target, dom.Append(dom.Element("div", nil), binding.Control, binding.Slot))
	p.page.On(binding.Control, dom.EventChange, p.handler.Listener(binding))
}

// selectControl builds a dropdown. Single selects lead with an empty option
// so an untouched required field reads as empty.
func selectControl(choice *meta.Choice, id, name string) *html.Node {
	extra := map[string]string{"id": id, "name": name}
	if choice.Multiple {
		extra["multiple"] = "multiple"
	}
	sel := dom.Element("select", choice.Attr.Merge(extra))
	if !choice.Multiple {
		dom.Append(sel, dom.Element("option", map[string]string{"value": ""}))
	}
	for _, option := range choice.Options {
		el := dom.Element("option", map[string]string{"value": option.Key})
		dom.SetText(el, option.Label())
		dom.Append(sel, el)
	}
	return sel
}

// groupControl builds an inline radio or checkbox group sharing one name.
func groupControl(choice *meta.Choice, widget widgets.Widget, id, name string) *html.Node {
	group := dom.Element("div", map[string]string{"class": "fieldset", "id": id})
	for i, option := range choice.Options {
		itemID := id + "-" + strconv.Itoa(i)
		lbl := dom.Element("label", map[string]string{"for": itemID})
		dom.SetText(lbl, option.Label())
		input := dom.Element("input", choice.Attr.Merge(map[string]string{
			"id":    itemID,
			"name":  name,
			"type":  widget.InputType(),
			"value": option.Key,
		}))
		dom.Append(group, lbl, input)
	}
	return group
}
