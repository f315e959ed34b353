package async

import (
	"errors"
)

// ErrClosed is returned by Recv on a closed, drained channel.
var ErrClosed = errors.New("async: channel closed")

// Chan is a channel whose endpoints are checkpoints: Send and Recv observe
// the calling task's cancellation both on entry and while suspended. The
// send/receive pairing is the only cross-task ordering the runtime
// guarantees besides the nursery join barrier.
type Chan[T any] struct {
	ch chan T
}

func NewChan[T any](buf int) *Chan[T] {
	return &Chan[T]{ch: make(chan T, buf)}
}

// Send delivers v, suspending until a receiver or buffer space is ready.
func (c *Chan[T]) Send(tc *TaskCtx, v T) error {
	if err := tc.Checkpoint(); err != nil {
		return err
	}
	select {
	case c.ch <- v:
		return nil
	case <-tc.h.token.Done():
		return tc.Checkpoint()
	}
}

// Recv takes the next value, suspending until one is available.
func (c *Chan[T]) Recv(tc *TaskCtx) (T, error) {
	var zero T
	if err := tc.Checkpoint(); err != nil {
		return zero, err
	}
	select {
	case v, ok := <-c.ch:
		if !ok {
			return zero, ErrClosed
		}
		return v, nil
	case <-tc.h.token.Done():
		return zero, tc.Checkpoint()
	}
}

// Close closes the sending side. Receivers drain the buffer, then get
// ErrClosed.
func (c *Chan[T]) Close() { close(c.ch) }
