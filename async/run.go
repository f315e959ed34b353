package async

import (
	"time"

	"github.com/NetPo4ki/go-nursery/task"
)

// Body is the executable of one task. The returned error becomes the task's
// ordinary failure outcome, unless it is the task's own CancellationError,
// in which case the task goes terminal as Cancelled.
type Body[T any] func(tc *TaskCtx) (T, error)

// Go runs body as the task identified by h, on its own goroutine. The report
// callback, when non-nil, receives the terminal outcome exactly once, before
// h.Done is closed. lim, when non-nil, gates admission.
func Go[T any](c *Context, h *Handle, lim Limiter, body Body[T], report func(task.Outcome[T])) {
	if c == nil || h == nil {
		panic("async: Go without an established Context")
	}
	if report == nil {
		report = func(task.Outcome[T]) {}
	}
	go execute(c, h, lim, body, report)
}

func execute[T any](c *Context, h *Handle, lim Limiter, body Body[T], report func(task.Outcome[T])) {
	defer close(h.done)

	// Cancel-before-dispatch: a token set while the task is Pending means
	// the body never runs.
	if h.token.IsSet() {
		h.cas(task.Pending, task.Cancelled)
		report(cancelledOutcome[T](h))
		return
	}

	if lim != nil {
		if err := lim.Acquire(tokenContext{tok: h.token}); err != nil {
			h.cas(task.Pending, task.Cancelled)
			report(cancelledOutcome[T](h))
			return
		}
		defer lim.Release()
		if h.token.IsSet() {
			h.cas(task.Pending, task.Cancelled)
			report(cancelledOutcome[T](h))
			return
		}
	}

	if !h.cas(task.Pending, task.Running) {
		// Lost the dispatch race against CancelIfPending; the token is set
		// immediately after that transition, so wait for the reason.
		<-h.token.Done()
		report(cancelledOutcome[T](h))
		return
	}

	start := time.Now()
	c.obs.TaskStarted(h.id)

	tc := &TaskCtx{h: h, c: c}
	out := runBody(tc, body)

	c.obs.TaskFinished(h.id, time.Since(start), h.State(), out.Err())
	report(out)
}

func runBody[T any](tc *TaskCtx, body Body[T]) (out task.Outcome[T]) {
	h := tc.h
	defer func() {
		if r := recover(); r != nil {
			if h.State() == task.Cancelling {
				// Panic while unwinding from cancellation is fatal to the
				// process, never a task outcome.
				panic(r)
			}
			h.cas(task.Running, task.Panicked)
			out = task.PanickedOutcome[T](h.id, r)
		}
	}()

	v, err := body(tc)

	// A token observed at a checkpoint wins over whatever the body returned
	// afterwards: cancellation is monotonic.
	if h.State() == task.Cancelling {
		h.cas(task.Cancelling, task.Cancelled)
		return cancelledOutcome[T](h)
	}
	if err == nil {
		h.cas(task.Running, task.Completed)
		return task.OkOutcome(v)
	}
	if ce, ok := task.AsCancellation(err); ok && ce.TaskID == h.id && h.token.IsSet() {
		// The body propagated a cancellation error it constructed from the
		// token without ever calling Checkpoint.
		if !h.cas(task.Running, task.Cancelling) {
			return cancelledOutcome[T](h)
		}
		h.cas(task.Cancelling, task.Cancelled)
		return task.CancelledOutcome[T](ce)
	}
	h.cas(task.Running, task.Completed)
	return task.ErrOutcome[T](err)
}

func cancelledOutcome[T any](h *Handle) task.Outcome[T] {
	return task.CancelledOutcome[T](&task.CancellationError{
		Reason: h.token.Reason(),
		TaskID: h.id,
	})
}
