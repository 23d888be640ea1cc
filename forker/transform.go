package forker

import (
	"context"
	"fmt"

	"github.com/kbukum/streamfork/pipeline"
)

// Transform computes a fork result from its lazy view of the source.
// The pipeline can be consumed once; elements arrive in source order.
type Transform[T any] func(ctx context.Context, seq *pipeline.Pipeline[T]) (any, error)

// Typed adapts a transform with a concrete result type.
func Typed[T, R any](fn func(ctx context.Context, seq *pipeline.Pipeline[T]) (R, error)) Transform[T] {
	if fn == nil {
		return nil
	}
	return func(ctx context.Context, seq *pipeline.Pipeline[T]) (any, error) {
		return fn(ctx, seq)
	}
}

// recovered turns a panic inside fn into an error.
func recovered[T any](fn Transform[T]) Transform[T] {
	return func(ctx context.Context, seq *pipeline.Pipeline[T]) (val any, err error) {
		defer func() {
			if r := recover(); r != nil {
				val, err = nil, fmt.Errorf("fork panicked: %v", r)
			}
		}()
		return fn(ctx, seq)
	}
}
