package async

import (
	"context"
	"time"

	"github.com/NetPo4ki/go-nursery/task"
)

// TaskCtx is the per-task runtime surface passed to every Body. All
// suspension points live here; between calls into TaskCtx, execution is
// atomic with respect to cancellation, which is the interleaving contract
// callers may rely on.
type TaskCtx struct {
	h *Handle
	c *Context
}

func (tc *TaskCtx) ID() uint64 { return tc.h.id }

func (tc *TaskCtx) Scheduler() *Context { return tc.c }

func (tc *TaskCtx) EnclosingToken() *task.Token { return tc.h.token }

// Checkpoint polls the cancellation token. It returns nil while the task may
// continue, or the task's CancellationError once the token is set. The
// caller must propagate the error: the task is unwinding from the moment it
// is returned, and deferred cleanup runs as for any other error return.
func (tc *TaskCtx) Checkpoint() error {
	if !tc.h.token.IsSet() {
		return nil
	}
	tc.h.cas(task.Running, task.Cancelling)
	return &task.CancellationError{Reason: tc.h.token.Reason(), TaskID: tc.h.id}
}

// IsCancelled polls the token without beginning to unwind, for explicit
// early exit inside checkpoint-free regions.
func (tc *TaskCtx) IsCancelled() bool { return tc.h.token.IsSet() }

// Sleep suspends the task for d. Entry is a checkpoint, and a token set
// mid-sleep wakes the task immediately with its CancellationError.
func (tc *TaskCtx) Sleep(d time.Duration) error {
	if err := tc.Checkpoint(); err != nil {
		return err
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-tc.h.token.Done():
		return tc.Checkpoint()
	}
}

// Context bridges the task's token into the standard context tree for code
// that speaks context.Context. The returned context is done once the token
// is set; it carries no deadline and no values.
func (tc *TaskCtx) Context() context.Context {
	return tokenContext{tok: tc.h.token}
}

type tokenContext struct {
	tok *task.Token
}

func (tokenContext) Deadline() (time.Time, bool) { return time.Time{}, false }

func (t tokenContext) Done() <-chan struct{} { return t.tok.Done() }

func (t tokenContext) Err() error {
	if t.tok.IsSet() {
		return context.Canceled
	}
	return nil
}

func (tokenContext) Value(any) any { return nil }
