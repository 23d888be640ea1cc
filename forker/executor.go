package forker

import (
	"context"
	"sync/atomic"

	"github.com/kbukum/streamfork/logger"
	"github.com/kbukum/streamfork/observability"
	"github.com/kbukum/streamfork/resilience"
)

// Executor schedules fork workers. Go must not block the caller; the task
// must eventually run even if ctx is already done, so the fork can settle.
type Executor interface {
	Go(ctx context.Context, task func(context.Context))
}

// GoExecutor runs every task on its own goroutine.
type GoExecutor struct{}

// Go starts task on a new goroutine.
func (GoExecutor) Go(ctx context.Context, task func(context.Context)) {
	go task(ctx)
}

// BulkheadOption configures a BulkheadExecutor.
type BulkheadOption func(*BulkheadExecutor)

// BulkheadLogger logs slot waits to l.
func BulkheadLogger(l *logger.Logger) BulkheadOption {
	return func(e *BulkheadExecutor) {
		if l != nil {
			e.log = l
		}
	}
}

// BulkheadMetrics records the number of queued forks on m.
func BulkheadMetrics(m *observability.Metrics) BulkheadOption {
	return func(e *BulkheadExecutor) { e.metrics = m }
}

// BulkheadExecutor limits the number of forks running at once.
// Waiting forks keep buffering their elements.
type BulkheadExecutor struct {
	bulkhead *resilience.Bulkhead
	log      *logger.Logger
	metrics  *observability.Metrics
	queued   atomic.Int64
}

// NewBulkheadExecutor creates an executor that runs at most maxConcurrent tasks.
func NewBulkheadExecutor(maxConcurrent int, opts ...BulkheadOption) *BulkheadExecutor {
	e := &BulkheadExecutor{log: logger.Nop()}
	for _, opt := range opts {
		opt(e)
	}
	e.bulkhead = resilience.NewBulkhead(resilience.BulkheadConfig{
		Name:          "forker",
		MaxConcurrent: maxConcurrent,
		MaxWait:       resilience.WaitIndefinitely,
		OnAcquire:     e.onAcquire,
		OnRelease:     e.onRelease,
		OnReject:      e.onReject,
	})
	return e
}

// Go waits for a slot on a new goroutine, then runs task. If ctx ends before a
// slot frees up, task still runs with the done context.
func (e *BulkheadExecutor) Go(ctx context.Context, task func(context.Context)) {
	e.enqueue(1)
	go func() {
		err := e.bulkhead.Execute(ctx, func() error {
			task(ctx)
			return nil
		})
		if err != nil {
			task(ctx)
		}
	}()
}

// InUse returns the number of tasks currently holding a slot.
func (e *BulkheadExecutor) InUse() int {
	return e.bulkhead.InUse()
}

// Queued returns the number of tasks waiting for a slot.
func (e *BulkheadExecutor) Queued() int {
	return int(e.queued.Load())
}

// MaxConcurrent returns the slot count.
func (e *BulkheadExecutor) MaxConcurrent() int {
	return e.bulkhead.MaxConcurrent()
}

func (e *BulkheadExecutor) enqueue(delta int64) {
	e.queued.Add(delta)
	if e.metrics != nil {
		e.metrics.RecordForkQueued(context.Background(), delta)
	}
}

func (e *BulkheadExecutor) onAcquire(name string) {
	e.enqueue(-1)
	e.log.Debug("fork slot acquired", logger.Fields(
		logger.FieldExecutor, name,
		"available", e.bulkhead.Available(),
		"queued", e.Queued(),
	))
}

func (e *BulkheadExecutor) onRelease(name string) {
	e.log.Debug("fork slot released", logger.Fields(logger.FieldExecutor, name))
}

func (e *BulkheadExecutor) onReject(name string) {
	e.enqueue(-1)
	e.log.Warn("fork gave up waiting for a slot", logger.Fields(logger.FieldExecutor, name))
}
