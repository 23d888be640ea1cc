package pipeline

import (
	"cmp"
	"context"
	"strings"
)

// Number is the set of element types Sum accepts.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Fold pulls every value and folds it into acc. It is the terminal the other
// aggregations are built on.
func Fold[T, R any](ctx context.Context, p *Pipeline[T], init R, fn func(R, T) R) (R, error) {
	iter := p.create(ctx)
	defer iter.Close()
	acc := init
	for {
		val, ok, err := iter.Next(ctx)
		if err != nil {
			return acc, err
		}
		if !ok {
			return acc, nil
		}
		acc = fn(acc, val)
	}
}

// Collect runs the pipeline and returns all values as a slice.
// Values pulled before an error are returned alongside it.
func Collect[T any](ctx context.Context, p *Pipeline[T]) ([]T, error) {
	return Fold(ctx, p, []T(nil), func(acc []T, v T) []T {
		return append(acc, v)
	})
}

// Count returns the number of values.
func Count[T any](ctx context.Context, p *Pipeline[T]) (int, error) {
	return Fold(ctx, p, 0, func(n int, _ T) int { return n + 1 })
}

// Sum adds up the values selected by fn.
func Sum[T any, N Number](ctx context.Context, p *Pipeline[T], fn func(T) N) (N, error) {
	return Fold(ctx, p, N(0), func(acc N, v T) N { return acc + fn(v) })
}

// Join renders each value with fn and joins them with sep, in pipeline order.
func Join[T any](ctx context.Context, p *Pipeline[T], sep string, fn func(T) string) (string, error) {
	var b strings.Builder
	first := true
	_, err := Fold(ctx, p, struct{}{}, func(s struct{}, v T) struct{} {
		if !first {
			b.WriteString(sep)
		}
		first = false
		b.WriteString(fn(v))
		return s
	})
	return b.String(), err
}

// MaxBy returns the value with the greatest key. The latest value wins ties.
// ok is false when the pipeline is empty.
func MaxBy[T any, K cmp.Ordered](ctx context.Context, p *Pipeline[T], key func(T) K) (best T, ok bool, err error) {
	return extremeBy(ctx, p, key, func(c int) bool { return c >= 0 })
}

// MinBy returns the value with the smallest key. The earliest value wins ties.
// ok is false when the pipeline is empty.
func MinBy[T any, K cmp.Ordered](ctx context.Context, p *Pipeline[T], key func(T) K) (best T, ok bool, err error) {
	return extremeBy(ctx, p, key, func(c int) bool { return c < 0 })
}

type extreme[T any, K cmp.Ordered] struct {
	val T
	key K
	ok  bool
}

func extremeBy[T any, K cmp.Ordered](ctx context.Context, p *Pipeline[T], key func(T) K, better func(int) bool) (T, bool, error) {
	s, err := Fold(ctx, p, extreme[T, K]{}, func(s extreme[T, K], v T) extreme[T, K] {
		k := key(v)
		if !s.ok || better(cmp.Compare(k, s.key)) {
			return extreme[T, K]{val: v, key: k, ok: true}
		}
		return s
	})
	return s.val, s.ok, err
}

// GroupBy partitions values by key, preserving pipeline order within each group.
func GroupBy[T any, K comparable](ctx context.Context, p *Pipeline[T], key func(T) K) (map[K][]T, error) {
	return Fold(ctx, p, make(map[K][]T), func(m map[K][]T, v T) map[K][]T {
		k := key(v)
		m[k] = append(m[k], v)
		return m
	})
}

// First returns the first value and stops pulling. ok is false when the
// pipeline is empty.
func First[T any](ctx context.Context, p *Pipeline[T]) (val T, ok bool, err error) {
	iter := p.create(ctx)
	defer iter.Close()
	return iter.Next(ctx)
}
