package forker

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/streamfork/errors"
	"github.com/kbukum/streamfork/logger"
	"github.com/kbukum/streamfork/observability"
	"github.com/kbukum/streamfork/pipeline"
)

type fork[K comparable, T any] struct {
	key K
	fn  Transform[T]
}

// Forker fans one read-once source out to a set of keyed forks.
// Forks are registered first; Dispatch then reads the source exactly once.
type Forker[K comparable, T any] struct {
	mu         sync.Mutex
	src        pipeline.Iterator[T]
	forks      []fork[K, T]
	index      map[K]struct{}
	dispatched bool
	err        error

	opts options
}

// New creates a Forker over src.
//
//	f := forker.New[string](pipeline.FromSlice(items).Iter(ctx))
func New[K comparable, T any](src pipeline.Iterator[T], opts ...Option) *Forker[K, T] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	o.resolveExecutor()

	f := &Forker[K, T]{
		src:   src,
		index: make(map[K]struct{}),
		opts:  o,
	}
	if src == nil {
		f.err = errors.InvalidInput("source", "source is nil")
	}
	return f
}

// Register adds a fork under key. It fails with DUPLICATE_KEY for a key in
// use, INVALID_STATE once Dispatch has been called and INVALID_INPUT for a nil
// transform.
func (f *Forker[K, T]) Register(key K, fn Transform[T]) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.dispatched {
		return errors.InvalidState("register fork", "dispatched").WithDetail("key", key)
	}
	if fn == nil {
		return errors.InvalidInput("transform", "transform is nil").WithDetail("key", key)
	}
	if _, dup := f.index[key]; dup {
		return errors.DuplicateKey(key)
	}

	f.index[key] = struct{}{}
	f.forks = append(f.forks, fork[K, T]{key: key, fn: fn})
	return nil
}

// Fork is the chainable form of Register. The first failure is kept and
// returned by Err and Dispatch.
func (f *Forker[K, T]) Fork(key K, fn Transform[T]) *Forker[K, T] {
	if err := f.Register(key, fn); err != nil {
		f.mu.Lock()
		if f.err == nil {
			f.err = err
		}
		f.mu.Unlock()
	}
	return f
}

// Err returns the first error recorded by Fork.
func (f *Forker[K, T]) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Keys returns the registered keys in registration order.
func (f *Forker[K, T]) Keys() []K {
	f.mu.Lock()
	defer f.mu.Unlock()

	keys := make([]K, len(f.forks))
	for i, fk := range f.forks {
		keys[i] = fk.key
	}
	return keys
}

// Dispatch starts one worker per fork, then reads the source to the end on the
// calling goroutine and hands every element to every fork. It returns once the
// source is done; fork results are collected through the returned Results.
//
// A source failure is returned as SOURCE_FAILED and a done ctx as CANCELLED.
// In both cases the Results are still returned: every fork sees the elements
// read so far followed by the end of its sequence. After a CANCELLED dispatch
// the forks fail with the cancellation instead of completing.
//
// ctx bounds reading the source only. Forks keep its values but not its
// cancellation, so cancelling ctx after Dispatch returned does not affect them.
func (f *Forker[K, T]) Dispatch(ctx context.Context) (*Results[K], error) {
	f.mu.Lock()
	if f.dispatched {
		f.mu.Unlock()
		return nil, errors.InvalidState("dispatch", "dispatched")
	}
	if f.err != nil {
		f.mu.Unlock()
		return nil, f.err
	}
	f.dispatched = true
	forks := f.forks
	f.mu.Unlock()

	runID := uuid.NewString()
	ctx = logger.ContextWithRunID(ctx, runID)

	if f.opts.tracing {
		var span trace.Span
		ctx, span = observability.StartSpan(ctx, observability.SpanDispatch)
		defer span.End()
		observability.SetSpanAttribute(ctx, observability.AttrRunID, runID)
		observability.SetSpanAttribute(ctx, observability.AttrForks, len(forks))
	}
	log := f.opts.log.WithContext(ctx)

	// Released by the last fork to settle, or early by a cancelled dispatch.
	workCtx, cancelWork := context.WithCancel(context.WithoutCancel(ctx))

	keys := make([]K, len(forks))
	for i, fk := range forks {
		keys[i] = fk.key
	}
	res := newResults(runID, keys, cancelWork)

	channels := make([]*channel[T], len(forks))
	for i, fk := range forks {
		channels[i] = newChannel[T]()
		res.futures[i].setState(StateChannelBound)
		f.start(workCtx, res, i, f.decorate(fk.key, fk.fn), channels[i])
	}

	log.Info("dispatch started", logger.Fields(logger.FieldForks, len(forks)))

	start := time.Now()
	n, err := f.pump(ctx, channels, cancelWork, log)
	res.elements = n

	status := "ok"
	fields := logger.Fields(
		logger.FieldElements, n,
		logger.FieldDuration, time.Since(start).Milliseconds(),
	)
	if err != nil {
		res.sourceErr = err
		status = string(errors.ErrCodeSourceFailed)
		if errors.HasCode(err, errors.ErrCodeCancelled) {
			status = string(errors.ErrCodeCancelled)
		}
		log.WithError(err).Warn("dispatch ended early", fields)
	} else {
		log.Info("dispatch finished", fields)
	}
	if f.opts.tracing {
		observability.SetSpanAttribute(ctx, observability.AttrElements, n)
		if err != nil {
			observability.SetSpanError(ctx, err)
		}
	}
	if f.opts.metrics != nil {
		f.opts.metrics.RecordDispatch(ctx, status, n)
	}

	return res, err
}

// pump reads the source and fans elements out. Every channel receives its end
// marker and the source is closed however pumping stops. On cancellation the
// forks are cancelled before their end markers are written.
func (f *Forker[K, T]) pump(ctx context.Context, channels []*channel[T], cancelForks context.CancelFunc, log *logger.Logger) (n int64, err error) {
	defer func() {
		if errors.HasCode(err, errors.ErrCodeCancelled) {
			cancelForks()
		}
		for _, ch := range channels {
			ch.end()
		}
		if cerr := f.src.Close(); cerr != nil {
			log.Warn("closing source failed", logger.ErrorFields("dispatch", cerr))
		}
	}()

	for {
		if cerr := ctx.Err(); cerr != nil {
			return n, errors.Cancelled("dispatch", cerr)
		}

		v, ok, serr := f.src.Next(ctx)
		if serr != nil {
			if cerr := ctx.Err(); cerr != nil && stderrors.Is(serr, cerr) {
				return n, errors.Cancelled("dispatch", cerr)
			}
			return n, errors.SourceFailed(serr)
		}
		if !ok {
			return n, nil
		}

		for _, ch := range channels {
			ch.push(v)
		}
		n++
	}
}

func (f *Forker[K, T]) start(ctx context.Context, res *Results[K], i int, fn Transform[T], ch *channel[T]) {
	f.opts.executor.Go(ctx, func(ctx context.Context) {
		seq := newSequence(ch)
		defer seq.Close()

		res.futures[i].setState(StateRunning)
		if err := ctx.Err(); err != nil {
			res.settle(i, nil, errors.Cancelled("fork", err))
			return
		}

		val, err := fn(ctx, pipeline.From[T](seq))
		res.settle(i, val, err)
	})
}
