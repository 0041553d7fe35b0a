package widgets

import (
	"testing"

	"github.com/goliatone/go-metaform/pkg/meta"
)

func choiceWith(n int, multiple bool) *meta.Choice {
	choice := &meta.Choice{Multiple: multiple}
	for i := 0; i < n; i++ {
		choice.Options = append(choice.Options, meta.Option{Key: string(rune('a' + i))})
	}
	return choice
}

func TestResolve_Builtins(t *testing.T) {
	reg := NewRegistry()

	cases := []struct {
		name       string
		choice     *meta.Choice
		thresholds Thresholds
		expect     Widget
	}{
		{name: "five single default threshold", choice: choiceWith(5, false), expect: WidgetDropdown},
		{name: "three single default threshold", choice: choiceWith(3, false), expect: WidgetRadioGroup},
		{name: "four single stays inline", choice: choiceWith(4, false), expect: WidgetRadioGroup},
		{name: "three multi", choice: choiceWith(3, true), expect: WidgetCheckboxGroup},
		{name: "five multi", choice: choiceWith(5, true), expect: WidgetDropdown},
		{
			name:       "multi threshold raised independently",
			choice:     choiceWith(5, true),
			thresholds: Thresholds{UniSelect: 2, MultiSelect: 8},
			expect:     WidgetCheckboxGroup,
		},
		{
			name:       "uni threshold lowered",
			choice:     choiceWith(3, false),
			thresholds: Thresholds{UniSelect: 2},
			expect:     WidgetDropdown,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, ok := reg.Resolve(tc.choice, tc.thresholds)
			if !ok {
				t.Fatalf("expected resolution for %s", tc.name)
			}
			if got != tc.expect {
				t.Fatalf("resolve %s: want %q, got %q", tc.name, tc.expect, got)
			}
		})
	}
}

func TestResolve_PriorityOverride(t *testing.T) {
	reg := NewRegistry()
	reg.Register("segmented", 999, func(choice *meta.Choice, _ Thresholds) bool {
		return !choice.Multiple && len(choice.Options) == 2
	})

	got, ok := reg.Resolve(choiceWith(2, false), Thresholds{})
	if !ok || got != "segmented" {
		t.Fatalf("priority matcher should win, got %q (ok=%v)", got, ok)
	}
}

func TestResolve_EmptyRegistry(t *testing.T) {
	var reg Registry
	if got, ok := reg.Resolve(choiceWith(1, false), Thresholds{}); ok {
		t.Fatalf("empty registry resolved %q", got)
	}
}

func TestInputType(t *testing.T) {
	if WidgetRadioGroup.InputType() != "radio" || WidgetCheckboxGroup.InputType() != "checkbox" || WidgetDropdown.InputType() != "" {
		t.Fatalf("unexpected input types")
	}
}
