package forker

import (
	"context"
	"sync"
)

// item is one slot of a fork channel: either a source element or the end marker.
type item[T any] struct {
	val T
	end bool
}

// channel is an unbounded FIFO between the dispatcher and one fork worker.
// Writes never block. The end marker is accepted once and is always the last item.
type channel[T any] struct {
	mu       sync.Mutex
	buf      []item[T]
	ended    bool
	detached bool
	signal   chan struct{}
}

func newChannel[T any]() *channel[T] {
	return &channel[T]{signal: make(chan struct{}, 1)}
}

// push appends a source element. Pushes after end or detach are dropped.
func (c *channel[T]) push(v T) {
	c.mu.Lock()
	if c.ended || c.detached {
		c.mu.Unlock()
		return
	}
	c.buf = append(c.buf, item[T]{val: v})
	c.mu.Unlock()
	c.notify()
}

// end appends the end marker. Only the first call has an effect.
func (c *channel[T]) end() {
	c.mu.Lock()
	if c.ended {
		c.mu.Unlock()
		return
	}
	c.ended = true
	if !c.detached {
		c.buf = append(c.buf, item[T]{end: true})
	}
	c.mu.Unlock()
	c.notify()
}

// take removes the head item, waiting until one is available or ctx is done.
func (c *channel[T]) take(ctx context.Context) (item[T], error) {
	for {
		c.mu.Lock()
		if len(c.buf) > 0 {
			it := c.buf[0]
			c.buf[0] = item[T]{}
			c.buf = c.buf[1:]
			c.mu.Unlock()
			return it, nil
		}
		c.mu.Unlock()

		select {
		case <-c.signal:
		case <-ctx.Done():
			return item[T]{}, ctx.Err()
		}
	}
}

// detach drops buffered items and makes later pushes no-ops.
func (c *channel[T]) detach() {
	c.mu.Lock()
	c.detached = true
	c.buf = nil
	c.mu.Unlock()
}

// pending reports the number of buffered items.
func (c *channel[T]) pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.buf)
}

func (c *channel[T]) notify() {
	select {
	case c.signal <- struct{}{}:
	default:
	}
}

// sequence is the read side of a channel handed to a fork. It is forward-only
// and stays exhausted once the end marker has been read.
type sequence[T any] struct {
	ch     *channel[T]
	done   bool
	closed bool
}

func newSequence[T any](ch *channel[T]) *sequence[T] {
	return &sequence[T]{ch: ch}
}

// Next blocks until the next element or the end marker arrives.
func (s *sequence[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	if s.done {
		return zero, false, nil
	}
	if err := ctx.Err(); err != nil {
		return zero, false, err
	}

	it, err := s.ch.take(ctx)
	if err != nil {
		return zero, false, err
	}
	if it.end {
		s.done = true
		return zero, false, nil
	}
	return it.val, true, nil
}

// Close detaches the sequence from its channel. Safe to call more than once.
func (s *sequence[T]) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.done = true
	s.ch.detach()
	return nil
}
