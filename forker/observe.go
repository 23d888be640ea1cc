package forker

import (
	"context"
	"fmt"
	"time"

	"github.com/kbukum/streamfork/logger"
	"github.com/kbukum/streamfork/observability"
	"github.com/kbukum/streamfork/pipeline"
)

// withTracing wraps a transform in a span named after the fork.
func withTracing[T any](key string, fn Transform[T]) Transform[T] {
	return func(ctx context.Context, seq *pipeline.Pipeline[T]) (any, error) {
		ctx, span := observability.StartSpan(ctx, observability.SpanFork+"."+key)
		defer span.End()

		observability.SetSpanAttribute(ctx, observability.AttrFork, key)
		if id, ok := logger.RunIDFromContext(ctx); ok {
			observability.SetSpanAttribute(ctx, observability.AttrRunID, id)
		}

		val, err := fn(ctx, seq)
		if err != nil {
			observability.SetSpanError(ctx, err)
		}
		return val, err
	}
}

// withMetrics records the fork's duration and terminal status.
func withMetrics[T any](key string, fn Transform[T], metrics *observability.Metrics) Transform[T] {
	return func(ctx context.Context, seq *pipeline.Pipeline[T]) (any, error) {
		metrics.RecordForkStart(ctx)
		start := time.Now()
		val, err := fn(ctx, seq)

		status := StateCompleted.String()
		if err != nil {
			status = StateFailed.String()
		}
		metrics.RecordForkEnd(ctx, key, status, time.Since(start))
		return val, err
	}
}

// withLogging logs the fork's outcome with its duration.
func withLogging[T any](key string, fn Transform[T], log *logger.Logger) Transform[T] {
	return func(ctx context.Context, seq *pipeline.Pipeline[T]) (any, error) {
		start := time.Now()
		val, err := fn(ctx, seq)
		duration := time.Since(start)

		fields := logger.Fields(
			logger.FieldFork, key,
			logger.FieldDuration, duration.Milliseconds(),
		)
		l := log.WithContext(ctx)
		if err != nil {
			l.WithError(err).Warn("fork failed", fields)
		} else {
			l.Debug("fork completed", fields)
		}
		return val, err
	}
}

func (f *Forker[K, T]) decorate(key K, fn Transform[T]) Transform[T] {
	name := fmt.Sprint(key)
	fn = recovered(fn)
	if f.opts.tracing {
		fn = withTracing(name, fn)
	}
	if f.opts.metrics != nil {
		fn = withMetrics(name, fn, f.opts.metrics)
	}
	return withLogging(name, fn, f.opts.log)
}
