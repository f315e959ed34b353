package async

import (
	"github.com/NetPo4ki/go-nursery/task"
)

type spawnOptions struct {
	maxConcurrent int
	captured      []any
}

// SpawnOption configures one Spawn batch.
type SpawnOption func(*spawnOptions)

// WithMaxConcurrent bounds how many tasks from this batch run at once.
func WithMaxConcurrent(n int) SpawnOption {
	return func(o *spawnOptions) { o.maxConcurrent = n }
}

// WithCaptured declares the values moved into the batch's closures so they
// can be verified against the sendable gate when the Context requires it.
func WithCaptured(vals ...any) SpawnOption {
	return func(o *spawnOptions) { o.captured = append(o.captured, vals...) }
}

// Spawn hands tasks to the scheduler with no join handle and no completion
// barrier: the one primitive whose tasks may outlive the calling lexical
// scope. Results and errors are discarded unconditionally. When the
// detached registry is full, excess tasks are dropped with ResourceExhausted
// rather than failing the spawner; the only error Spawn itself can return is
// a sendable-gate rejection.
func Spawn[T any](env Env, bodies []Body[T], opts ...SpawnOption) error {
	c := env.Scheduler()
	var o spawnOptions
	for _, fn := range opts {
		fn(&o)
	}

	if c.VerifySendable() {
		for _, v := range o.captured {
			if err := task.CheckSendable(v); err != nil {
				return err
			}
		}
	}

	n := o.maxConcurrent
	if n <= 0 {
		n = c.cfg.DefaultMaxConcurrent
	}
	lim := NewLimiter(n)

	for _, body := range bodies {
		if body == nil {
			continue
		}
		h := c.NewTask()
		if !c.registerDetached(h) {
			h.CancelIfPending(task.ResourceExhausted)
			close(h.done)
			c.obs.TaskDropped(h.id)
			continue
		}
		Go(c, h, lim, body, func(task.Outcome[T]) {
			c.unregisterDetached(h.id)
		})
	}
	return nil
}
