// Package dom is the element tree the renderer writes into. Elements are
// golang.org/x/net/html nodes; a Document adds the page location and a
// listener table so blur/change/submit events can be dispatched to handlers
// wired at render time. Everything runs on the caller's goroutine: a
// Document is not safe for concurrent use.
package dom

import (
	"bytes"
	"io"
	"net/url"
	"sort"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Event names dispatched by the engine.
const (
	EventBlur   = "blur"
	EventChange = "change"
	EventSubmit = "submit"
)

// bubbling lists the events that propagate to ancestors. blur does not.
var bubbling = map[string]bool{
	EventChange: true,
	EventSubmit: true,
}

// Event is passed to listeners. Result lets a listener hand a value back to
// the code that dispatched the event.
type Event struct {
	Type          string
	Target        *html.Node
	CurrentTarget *html.Node
	Result        any

	defaultPrevented bool
	stopped          bool
}

// PreventDefault marks the event's default action as cancelled.
func (e *Event) PreventDefault() { e.defaultPrevented = true }

// DefaultPrevented reports whether a listener cancelled the default action.
func (e *Event) DefaultPrevented() bool { return e.defaultPrevented }

// StopPropagation stops the event from reaching further ancestors.
func (e *Event) StopPropagation() { e.stopped = true }

// Listener handles a dispatched event.
type Listener func(*Event)

// Document is a page: its location, its body element and the listeners
// attached to elements inside it.
type Document struct {
	Location *url.URL
	Body     *html.Node

	listeners map[*html.Node]map[string][]Listener
}

// NewDocument creates an empty page at location.
func NewDocument(location *url.URL) *Document {
	if location == nil {
		location = &url.URL{}
	}
	return &Document{
		Location:  location,
		Body:      Element("body", nil),
		listeners: make(map[*html.Node]map[string][]Listener),
	}
}

// On attaches listener to node for events of type eventType.
func (d *Document) On(node *html.Node, eventType string, listener Listener) {
	if d == nil || node == nil || listener == nil {
		return
	}
	byType := d.listeners[node]
	if byType == nil {
		byType = make(map[string][]Listener)
		d.listeners[node] = byType
	}
	byType[eventType] = append(byType[eventType], listener)
}

// Dispatch fires an event at target, running target's listeners and then,
// for bubbling events, those of each ancestor. Listeners run to completion
// one at a time.
func (d *Document) Dispatch(target *html.Node, eventType string) *Event {
	ev := &Event{Type: eventType, Target: target}
	if d == nil || target == nil {
		return ev
	}
	for node := target; node != nil; node = node.Parent {
		ev.CurrentTarget = node
		for _, listener := range d.listeners[node][eventType] {
			listener(ev)
		}
		if ev.stopped || !bubbling[eventType] {
			break
		}
	}
	ev.CurrentTarget = nil
	return ev
}

// Element creates an element with attrs applied in sorted key order so the
// serialized markup is deterministic.
func Element(tag string, attrs map[string]string) *html.Node {
	node := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	keys := make([]string, 0, len(attrs))
	for key := range attrs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		node.Attr = append(node.Attr, html.Attribute{Key: key, Val: attrs[key]})
	}
	return node
}

// Text creates a text node.
func Text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// Append adds children to parent in order and returns parent.
func Append(parent *html.Node, children ...*html.Node) *html.Node {
	for _, child := range children {
		if child == nil {
			continue
		}
		if child.Parent != nil {
			child.Parent.RemoveChild(child)
		}
		parent.AppendChild(child)
	}
	return parent
}

// SetText replaces node's children with a single text node.
func SetText(node *html.Node, text string) {
	for child := node.FirstChild; child != nil; {
		next := child.NextSibling
		node.RemoveChild(child)
		child = next
	}
	if text != "" {
		node.AppendChild(Text(text))
	}
}

// TextContent concatenates all descendant text.
func TextContent(node *html.Node) string {
	if node == nil {
		return ""
	}
	var b strings.Builder
	Walk(node, func(n *html.Node) bool {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		return true
	})
	return b.String()
}

// Attr returns the value of key on node.
func Attr(node *html.Node, key string) (string, bool) {
	if node == nil {
		return "", false
	}
	for _, attr := range node.Attr {
		if attr.Namespace == "" && attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}

// AttrOr returns the value of key on node, or fallback when absent.
func AttrOr(node *html.Node, key, fallback string) string {
	if value, ok := Attr(node, key); ok {
		return value
	}
	return fallback
}

// SetAttr sets key on node, replacing any existing value.
func SetAttr(node *html.Node, key, value string) {
	for i, attr := range node.Attr {
		if attr.Namespace == "" && attr.Key == key {
			node.Attr[i].Val = value
			return
		}
	}
	node.Attr = append(node.Attr, html.Attribute{Key: key, Val: value})
}

// RemoveAttr removes key from node.
func RemoveAttr(node *html.Node, key string) {
	out := node.Attr[:0]
	for _, attr := range node.Attr {
		if attr.Namespace == "" && attr.Key == key {
			continue
		}
		out = append(out, attr)
	}
	node.Attr = out
}

// HasClass reports whether node's class list contains class.
func HasClass(node *html.Node, class string) bool {
	value, ok := Attr(node, "class")
	if !ok {
		return false
	}
	for _, field := range strings.Fields(value) {
		if field == class {
			return true
		}
	}
	return false
}

// IsElement reports whether node is an element with one of tags (any tag when
// none are given).
func IsElement(node *html.Node, tags ...string) bool {
	if node == nil || node.Type != html.ElementNode {
		return false
	}
	if len(tags) == 0 {
		return true
	}
	for _, tag := range tags {
		if node.Data == tag {
			return true
		}
	}
	return false
}

// Walk visits node and its descendants depth first in document order.
// Returning false skips the visited node's children.
func Walk(node *html.Node, fn func(*html.Node) bool) {
	if node == nil {
		return
	}
	if !fn(node) {
		return
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		Walk(child, fn)
	}
}

// FindAll returns the descendants of root (root included) matching pred.
func FindAll(root *html.Node, pred func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	Walk(root, func(n *html.Node) bool {
		if pred(n) {
			out = append(out, n)
		}
		return true
	})
	return out
}

// FindByID returns the first element under root with the given id.
func FindByID(root *html.Node, id string) *html.Node {
	var found *html.Node
	Walk(root, func(n *html.Node) bool {
		if found != nil {
			return false
		}
		if n.Type == html.ElementNode && AttrOr(n, "id", "") == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// Closest returns the nearest ancestor of node (node included) with tag.
func Closest(node *html.Node, tag string) *html.Node {
	for n := node; n != nil; n = n.Parent {
		if IsElement(n, tag) {
			return n
		}
	}
	return nil
}

// Render serializes node and its subtree.
func Render(w io.Writer, node *html.Node) error {
	return html.Render(w, node)
}

// InnerHTML serializes node's children.
func InnerHTML(node *html.Node) (string, error) {
	var buf bytes.Buffer
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if err := html.Render(&buf, child); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// OuterHTML serializes node.
func OuterHTML(node *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, node); err != nil {
		return "", err
	}
	return buf.String(), nil
}
