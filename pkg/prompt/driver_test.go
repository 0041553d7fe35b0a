package prompt

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPick(t *testing.T) {
	got := pick([]string{"a", "b", "c"}, []int{2, -1, 0, 7})
	if diff := cmp.Diff([]string{"c", "a"}, got); diff != "" {
		t.Fatalf("pick mismatch (-want +got):\n%s", diff)
	}
}

func TestPositionsOf(t *testing.T) {
	got := positionsOf([]string{"a", "b", "c"}, []string{"c", "a", "z"})
	if diff := cmp.Diff([]int{0, 2}, got); diff != "" {
		t.Fatalf("positions mismatch (-want +got):\n%s", diff)
	}
}

func TestSurveyDriverInfo(t *testing.T) {
	var buf bytes.Buffer
	d := &surveyDriver{info: &buf}
	if err := d.Info(context.Background(), "Quantity must be a whole number."); err != nil {
		t.Fatalf("info: %v", err)
	}
	if got := buf.String(); got != "Quantity must be a whole number.\n" {
		t.Fatalf("unexpected output %q", got)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := d.Info(ctx, "ignored"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if _, err := d.Input(ctx, InputConfig{Message: "Name"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled from Input, got %v", err)
	}
}

func TestWithPageSizeIgnoresNonPositive(t *testing.T) {
	d := NewSurveyDriver(WithPageSize(0), WithPageSize(12), WithPageSize(-1)).(*surveyDriver)
	if d.pageSize != 12 {
		t.Fatalf("expected page size 12, got %d", d.pageSize)
	}
}
