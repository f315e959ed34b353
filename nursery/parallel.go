package nursery

import (
	"github.com/NetPo4ki/go-nursery/async"
	"github.com/NetPo4ki/go-nursery/task"
)

// Parallel executes bodies concurrently with all-settled semantics: every
// task runs to completion and failures come back as values in the result
// slice, never as an early return. Results are indexed by task order. An
// empty input returns an empty result without touching the scheduler.
func Parallel[T any](env async.Env, bodies []async.Body[T], opts ...Option) []task.Outcome[T] {
	if len(bodies) == 0 {
		return nil
	}
	return Run(env, CollectAll, func(n *SpawnHandle[T]) {
		for _, body := range bodies {
			n.Spawn(body)
		}
	}, opts...)
}
