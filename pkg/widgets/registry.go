// Package widgets picks the control layout for choice nodes: an inline group
// of radio buttons or checkboxes, or a dropdown once the option count passes
// a configurable threshold.
package widgets

import (
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-metaform/pkg/meta"
)

// Widget names the control layout chosen for a choice node.
type Widget string

// Built-in widget identifiers exposed by the registry.
const (
	WidgetDropdown      Widget = "dropdown"
	WidgetRadioGroup    Widget = "radio"
	WidgetCheckboxGroup Widget = "checkbox"
)

// InputType returns the input type used by inline group widgets.
func (w Widget) InputType() string {
	switch w {
	case WidgetRadioGroup:
		return "radio"
	case WidgetCheckboxGroup:
		return "checkbox"
	}
	return ""
}

// Thresholds are the item counts above which each choice kind switches to a
// dropdown. Non-positive values mean meta.DefaultSelectThreshold.
type Thresholds struct {
	UniSelect   int
	MultiSelect int
}

// For returns the effective threshold for a single- or multi-valued choice.
func (t Thresholds) For(multiple bool) int {
	value := t.UniSelect
	if multiple {
		value = t.MultiSelect
	}
	if value <= 0 {
		return meta.DefaultSelectThreshold
	}
	return value
}

// Matcher decides whether a widget should handle the supplied choice.
type Matcher func(choice *meta.Choice, thresholds Thresholds) bool

type rule struct {
	name     Widget
	priority int
	match    Matcher
}

// Registry selects widgets for choice nodes. Rules are kept ordered by
// descending priority; equal priorities keep registration order.
type Registry struct {
	mu    sync.RWMutex
	rules []rule
}

// NewRegistry constructs a registry with the built-in matchers registered.
func NewRegistry() *Registry {
	reg := &Registry{}
	reg.Register(WidgetDropdown, 90, func(choice *meta.Choice, t Thresholds) bool {
		return len(choice.Options) > t.For(choice.Multiple)
	})
	reg.Register(WidgetCheckboxGroup, 50, func(choice *meta.Choice, _ Thresholds) bool {
		return choice.Multiple
	})
	reg.Register(WidgetRadioGroup, 40, func(choice *meta.Choice, _ Thresholds) bool {
		return !choice.Multiple
	})
	return reg
}

// Register adds a widget matcher. Blank names and nil matchers are ignored.
func (r *Registry) Register(name Widget, priority int, matcher Matcher) {
	name = Widget(strings.TrimSpace(string(name)))
	if r == nil || matcher == nil || name == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	at := sort.Search(len(r.rules), func(i int) bool { return r.rules[i].priority < priority })
	r.rules = slices.Insert(r.rules, at, rule{name: name, priority: priority, match: matcher})
}

// Resolve returns the widget for choice. An empty registry never resolves.
func (r *Registry) Resolve(choice *meta.Choice, thresholds Thresholds) (Widget, bool) {
	if r == nil || choice == nil {
		return "", false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, candidate := range r.rules {
		if candidate.match(choice, thresholds) {
			return candidate.name, true
		}
	}
	return "", false
}
