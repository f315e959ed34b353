package nursery

import (
	"time"

	"github.com/NetPo4ki/go-nursery/async"
	"github.com/NetPo4ki/go-nursery/task"
)

// Timeout runs op with a deadline: a degenerate single-child nursery racing
// a timer. If the deadline fires before op produces a value, op's token is
// set and Timeout returns a CancellationError with reason Timeout once op
// has observed the token and unwound. An op with no checkpoints can overrun
// the deadline; that is the documented cost of cooperative cancellation, not
// an accident. A panicking op panics through to the caller.
func Timeout[T any](env async.Env, after time.Duration, op async.Body[T]) (T, error) {
	if op == nil {
		panic("nursery: Timeout with nil op")
	}
	results := Run(env, FailFast, func(n *SpawnHandle[T]) {
		n.Spawn(op)
	}, WithTimeout(after))

	out := results[0]
	if p, ok := out.Panicked(); ok {
		panic(p)
	}
	if ce, ok := out.Cancelled(); ok {
		var zero T
		return zero, &task.CancellationError{Reason: ce.Reason, TaskID: 0}
	}
	if v, ok := out.Ok(); ok {
		return v, nil
	}
	var zero T
	return zero, out.Err()
}
