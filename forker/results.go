package forker

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/bits-and-blooms/bitset"

	"github.com/kbukum/streamfork/errors"
)

// State is the lifecycle phase of a fork.
type State int32

const (
	StateRegistered State = iota
	StateChannelBound
	StateRunning
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateRegistered:
		return "registered"
	case StateChannelBound:
		return "channel_bound"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Terminal reports whether the fork has an outcome.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// future holds one fork's outcome. It is written once and published by closing done.
type future struct {
	state atomic.Int32
	once  sync.Once
	done  chan struct{}
	val   any
	err   error
}

func newFuture() *future {
	return &future{done: make(chan struct{})}
}

func (f *future) setState(s State) {
	f.state.Store(int32(s))
}

func (f *future) settle(val any, err error) bool {
	settled := false
	f.once.Do(func() {
		f.val, f.err = val, err
		if err != nil {
			f.setState(StateFailed)
		} else {
			f.setState(StateCompleted)
		}
		close(f.done)
		settled = true
	})
	return settled
}

// Results gives keyed access to the outcomes of one dispatch run.
// The key table is fixed when the run starts.
type Results[K comparable] struct {
	runID   string
	keys    []K
	index   map[K]int
	futures []*future

	mu      sync.Mutex
	settled *bitset.BitSet
	release context.CancelFunc

	elements  int64
	sourceErr error
}

// newResults builds the table for keys. release is called once every fork
// has settled.
func newResults[K comparable](runID string, keys []K, release context.CancelFunc) *Results[K] {
	r := &Results[K]{
		runID:   runID,
		keys:    keys,
		index:   make(map[K]int, len(keys)),
		futures: make([]*future, len(keys)),
		settled: bitset.New(uint(len(keys))),
		release: release,
	}
	for i, k := range keys {
		r.index[k] = i
		r.futures[i] = newFuture()
	}
	if len(keys) == 0 && release != nil {
		release()
	}
	return r
}

func (r *Results[K]) settle(i int, val any, err error) {
	if !r.futures[i].settle(val, err) {
		return
	}
	r.mu.Lock()
	r.settled.Set(uint(i))
	all := r.settled.Count() == uint(len(r.keys))
	r.mu.Unlock()
	if all && r.release != nil {
		r.release()
	}
}

// RunID identifies the dispatch run in logs and spans.
func (r *Results[K]) RunID() string { return r.runID }

// Keys returns the fork keys in registration order.
func (r *Results[K]) Keys() []K {
	out := make([]K, len(r.keys))
	copy(out, r.keys)
	return out
}

// Elements returns the number of source elements dispatched.
func (r *Results[K]) Elements() int64 { return r.elements }

// SourceErr returns the source failure that ended dispatch, if any.
func (r *Results[K]) SourceErr() error { return r.sourceErr }

// Get blocks until the fork registered under key has finished or ctx is done.
// An unknown key fails immediately with UNKNOWN_KEY; a failed fork returns
// FORK_FAILED wrapping its error.
func (r *Results[K]) Get(ctx context.Context, key K) (any, error) {
	i, ok := r.index[key]
	if !ok {
		return nil, errors.UnknownKey(key)
	}
	f := r.futures[i]

	select {
	case <-f.done:
	default:
		select {
		case <-f.done:
		case <-ctx.Done():
			return nil, errors.Cancelled("get", ctx.Err()).WithDetail("key", key)
		}
	}

	if f.err != nil {
		return nil, errors.ForkFailed(key, f.err)
	}
	return f.val, nil
}

// MustGet is like Get but panics on error.
func (r *Results[K]) MustGet(ctx context.Context, key K) any {
	v, err := r.Get(ctx, key)
	if err != nil {
		panic(err)
	}
	return v
}

// GetAs is Get with a typed result. A nil result yields the zero value.
func GetAs[R any, K comparable](ctx context.Context, r *Results[K], key K) (R, error) {
	var zero R
	v, err := r.Get(ctx, key)
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	typed, ok := v.(R)
	if !ok {
		return zero, errors.TypeMismatch(key, reflect.TypeFor[R]().String(), fmt.Sprintf("%T", v))
	}
	return typed, nil
}

// Wait blocks until every fork has an outcome or ctx is done.
// Fork failures are reported by Get, not by Wait.
func (r *Results[K]) Wait(ctx context.Context) error {
	for i, f := range r.futures {
		select {
		case <-f.done:
		case <-ctx.Done():
			return errors.Cancelled("wait", ctx.Err()).WithDetail("key", r.keys[i])
		}
	}
	return nil
}

// Settled returns the keys of forks that have an outcome, in registration order.
func (r *Results[K]) Settled() []K {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]K, 0, r.settled.Count())
	for i, ok := r.settled.NextSet(0); ok; i, ok = r.settled.NextSet(i + 1) {
		out = append(out, r.keys[i])
	}
	return out
}

// State returns the lifecycle phase of the fork under key.
func (r *Results[K]) State(key K) (State, error) {
	i, ok := r.index[key]
	if !ok {
		return StateRegistered, errors.UnknownKey(key)
	}
	return State(r.futures[i].state.Load()), nil
}
