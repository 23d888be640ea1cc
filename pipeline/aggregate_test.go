package pipeline

import (
	"context"
	"errors"
	"slices"
	"testing"
)

type item struct {
	name  string
	kind  string
	score int
}

var items = []item{
	{"a", "x", 3},
	{"b", "y", 9},
	{"c", "x", 9},
	{"d", "z", 1},
}

func TestCount(t *testing.T) {
	tests := []struct {
		name string
		in   []item
		want int
	}{
		{"empty", nil, 0},
		{"four", items, 4},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Count(context.Background(), FromSlice(tc.in))
			if err != nil {
				t.Fatal(err)
			}
			if got != tc.want {
				t.Errorf("Count = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestSum(t *testing.T) {
	got, err := Sum(context.Background(), FromSlice(items), func(i item) int { return i.score })
	if err != nil {
		t.Fatal(err)
	}
	if got != 22 {
		t.Errorf("Sum = %d, want 22", got)
	}

	f, _ := Sum(context.Background(), FromSlice([]float64{0.5, 0.25}), func(v float64) float64 { return v })
	if f != 0.75 {
		t.Errorf("Sum = %v, want 0.75", f)
	}
}

func TestJoin(t *testing.T) {
	got, err := Join(context.Background(), FromSlice(items), ", ", func(i item) string { return i.name })
	if err != nil {
		t.Fatal(err)
	}
	if got != "a, b, c, d" {
		t.Errorf("Join = %q", got)
	}

	empty, _ := Join(context.Background(), FromSlice([]item{}), ", ", func(i item) string { return i.name })
	if empty != "" {
		t.Errorf("Join of empty = %q, want empty", empty)
	}
}

func TestMaxBy_LastWinsTies(t *testing.T) {
	got, ok, err := MaxBy(context.Background(), FromSlice(items), func(i item) int { return i.score })
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	if got.name != "c" {
		t.Errorf("MaxBy = %s, want c", got.name)
	}
}

func TestMinBy(t *testing.T) {
	got, ok, err := MinBy(context.Background(), FromSlice(items), func(i item) int { return i.score })
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	if got.name != "d" {
		t.Errorf("MinBy = %s, want d", got.name)
	}
}

func TestMaxBy_Empty(t *testing.T) {
	_, ok, err := MaxBy(context.Background(), FromSlice([]item{}), func(i item) int { return i.score })
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("expected ok=false for empty pipeline")
	}
}

func TestGroupBy_PreservesOrder(t *testing.T) {
	groups, err := GroupBy(context.Background(), FromSlice(items), func(i item) string { return i.kind })
	if err != nil {
		t.Fatal(err)
	}
	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(groups))
	}
	var names []string
	for _, i := range groups["x"] {
		names = append(names, i.name)
	}
	if !slices.Equal(names, []string{"a", "c"}) {
		t.Errorf("group x = %v, want [a c]", names)
	}
}

func TestFirst(t *testing.T) {
	got, ok, err := First(context.Background(), FromSlice(items))
	if err != nil || !ok || got.name != "a" {
		t.Errorf("First = %v ok=%v err=%v", got, ok, err)
	}
	_, ok, _ = First(context.Background(), FromSlice([]item{}))
	if ok {
		t.Error("expected ok=false for empty pipeline")
	}
}

func TestFold_ReturnsPartialOnError(t *testing.T) {
	boom := errors.New("boom")
	failing := Map(FromSlice([]int{1, 2, 3}), func(_ context.Context, n int) (int, error) {
		if n == 3 {
			return 0, boom
		}
		return n, nil
	})
	acc, err := Fold(context.Background(), failing, 0, func(a, n int) int { return a + n })
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if acc != 3 {
		t.Errorf("acc = %d, want 3", acc)
	}
}
