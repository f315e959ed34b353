package async

import (
	"sync/atomic"

	"github.com/NetPo4ki/go-nursery/task"
)

// Handle identifies one scheduled task: its id, state, cancellation token,
// and terminal signal. The scheduler owns the task itself; a Handle is all a
// spawning scope ever holds.
type Handle struct {
	id    uint64
	state atomic.Int32
	token *task.Token
	done  chan struct{}
}

func (h *Handle) ID() uint64 { return h.id }

func (h *Handle) State() task.State { return task.State(h.state.Load()) }

func (h *Handle) Token() *task.Token { return h.token }

// Done returns a channel closed once the task is terminal and its outcome
// has been reported.
func (h *Handle) Done() <-chan struct{} { return h.done }

// cas performs a legality-checked state transition.
func (h *Handle) cas(from, to task.State) bool {
	if !task.ValidTransition(from, to) {
		panic("async: illegal task state transition " + from.String() + " -> " + to.String())
	}
	return h.state.CompareAndSwap(int32(from), int32(to))
}

// CancelIfPending cancels a task that has not started: the state moves
// straight to Cancelled and the token is set so the admission path reports
// the right reason. Reports false when the task already left Pending.
func (h *Handle) CancelIfPending(r task.Reason) bool {
	if h.cas(task.Pending, task.Cancelled) {
		h.token.Set(r)
		return true
	}
	return false
}
