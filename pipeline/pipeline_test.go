package pipeline

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"
)

func TestFromSlice_Collect(t *testing.T) {
	got, err := Collect(context.Background(), FromSlice([]int{1, 2, 3}))
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(got, []int{1, 2, 3}) {
		t.Errorf("got %v, want [1 2 3]", got)
	}
}

func TestFromSlice_Empty(t *testing.T) {
	got, err := Collect(context.Background(), FromSlice([]int{}))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty, got %v", got)
	}
}

func TestFrom_Iterator(t *testing.T) {
	iter := &sliceIter[string]{items: []string{"a", "b"}}
	got, err := Collect(context.Background(), From[string](iter))
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("got %v, want [a b]", got)
	}
}

func TestFromSeq(t *testing.T) {
	p := FromSeq(slices.Values([]string{"x", "y", "z"}))
	got, err := Collect(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(got, []string{"x", "y", "z"}) {
		t.Errorf("got %v", got)
	}
}

func TestFromSeq_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Collect(ctx, FromSeq(slices.Values([]int{1})))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestMap(t *testing.T) {
	strs := Map(FromSlice([]int{1, 2, 3}), func(_ context.Context, n int) (string, error) {
		return fmt.Sprintf("#%d", n), nil
	})
	got, err := Collect(context.Background(), strs)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(got, []string{"#1", "#2", "#3"}) {
		t.Errorf("got %v", got)
	}
}

func TestMap_Error(t *testing.T) {
	fail := Map(FromSlice([]int{1, 2, 3}), func(_ context.Context, n int) (int, error) {
		if n == 2 {
			return 0, errors.New("bad value")
		}
		return n, nil
	})
	got, err := Collect(context.Background(), fail)
	if err == nil {
		t.Fatal("expected error")
	}
	if !slices.Equal(got, []int{1}) {
		t.Errorf("expected [1] before error, got %v", got)
	}
}

func TestFilter(t *testing.T) {
	evens := Filter(FromSlice([]int{1, 2, 3, 4, 5, 6}), func(n int) bool { return n%2 == 0 })
	got, err := Collect(context.Background(), evens)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(got, []int{2, 4, 6}) {
		t.Errorf("got %v, want [2 4 6]", got)
	}
}

func TestTap_Error(t *testing.T) {
	failing := Tap(FromSlice([]int{1, 2, 3}), func(_ context.Context, n int) error {
		if n == 2 {
			return errors.New("tap failed")
		}
		return nil
	})
	_, err := Collect(context.Background(), failing)
	if err == nil || !strings.Contains(err.Error(), "tap failed") {
		t.Errorf("expected tap error, got %v", err)
	}
}

func TestTake_StopsPulling(t *testing.T) {
	var pulled int
	src := Tap(FromSlice([]int{1, 2, 3, 4}), func(_ context.Context, _ int) error {
		pulled++
		return nil
	})
	got, err := Collect(context.Background(), Take(src, 2))
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(got, []int{1, 2}) {
		t.Errorf("got %v, want [1 2]", got)
	}
	if pulled != 2 {
		t.Errorf("pulled %d values, want 2", pulled)
	}
}

func TestReduce_Empty(t *testing.T) {
	sum := Reduce(FromSlice([]int{}), 100, func(acc, n int) int { return acc + n })
	got, err := Collect(context.Background(), sum)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != 100 {
		t.Errorf("expected [100], got %v", got)
	}
}

func TestConcat(t *testing.T) {
	got, err := Collect(context.Background(), Concat(FromSlice([]int{1, 2}), FromSlice([]int{}), FromSlice([]int{3})))
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(got, []int{1, 2, 3}) {
		t.Errorf("got %v, want [1 2 3]", got)
	}
}

func TestForEach(t *testing.T) {
	var sum int
	err := ForEach(context.Background(), FromSlice([]int{1, 2, 3}), func(_ context.Context, n int) error {
		sum += n
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if sum != 6 {
		t.Errorf("sum = %d, want 6", sum)
	}
}

func TestIter(t *testing.T) {
	ctx := context.Background()
	iter := FromSlice([]int{1, 2}).Iter(ctx)
	defer iter.Close()

	for _, want := range []int{1, 2} {
		v, ok, err := iter.Next(ctx)
		if err != nil || !ok || v != want {
			t.Errorf("Next: val=%d ok=%v err=%v, want %d", v, ok, err, want)
		}
	}
	_, ok, err := iter.Next(ctx)
	if err != nil || ok {
		t.Errorf("Next should be exhausted: ok=%v err=%v", ok, err)
	}
}

func TestAll_RangeOverFunc(t *testing.T) {
	seq := MapValues(FromSlice([]int{1, 2, 3}), func(n int) int { return n * 10 }).All(context.Background())
	var got []int
	for v := range seq.Values() {
		got = append(got, v)
	}
	if seq.Err() != nil {
		t.Fatal(seq.Err())
	}
	if !slices.Equal(got, []int{10, 20, 30}) {
		t.Errorf("got %v", got)
	}
}

func TestAll_RecordsError(t *testing.T) {
	failing := Map(FromSlice([]int{1, 2}), func(_ context.Context, n int) (int, error) {
		if n == 2 {
			return 0, errors.New("nope")
		}
		return n, nil
	})
	seq := failing.All(context.Background())
	var got []int
	for v := range seq.Values() {
		got = append(got, v)
	}
	if seq.Err() == nil {
		t.Fatal("expected error")
	}
	if !slices.Equal(got, []int{1}) {
		t.Errorf("got %v, want [1]", got)
	}
}

func TestChained_Pipeline(t *testing.T) {
	p := FromSlice([]int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})
	doubled := Map(p, func(_ context.Context, n int) (int, error) { return n * 2, nil })
	fours := Filter(doubled, func(n int) bool { return n%4 == 0 })
	sum := Reduce(fours, 0, func(acc, n int) int { return acc + n })

	got, err := Collect(context.Background(), sum)
	if err != nil {
		t.Fatal(err)
	}
	// 4+8+12+16+20
	if len(got) != 1 || got[0] != 60 {
		t.Errorf("expected [60], got %v", got)
	}
}
