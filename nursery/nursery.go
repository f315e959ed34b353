package nursery

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/NetPo4ki/go-nursery/async"
	"github.com/NetPo4ki/go-nursery/task"
)

// ErrorMode selects how a nursery reacts to the first child failure (an
// error result or a panic).
type ErrorMode int

const (
	// FailFast cancels every other child as soon as one fails; the nursery
	// still waits for all children to go terminal before returning.
	FailFast ErrorMode = iota
	// CancelRemaining cancels only children that have not started yet;
	// already-running children finish naturally.
	CancelRemaining
	// CollectAll never cancels on failure; every child runs to completion.
	// A configured deadline still cancels stragglers in this mode.
	CollectAll
)

func (m ErrorMode) String() string {
	switch m {
	case FailFast:
		return "fail_fast"
	case CancelRemaining:
		return "cancel_remaining"
	case CollectAll:
		return "collect_all"
	default:
		return "unknown"
	}
}

type options struct {
	timeout       time.Duration
	maxConcurrent int
}

type Option func(*options)

// WithTimeout sets a deadline for the whole nursery. At expiry every
// incomplete child is cancelled with Timeout, regardless of the error mode;
// without this override a CollectAll nursery could never return.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithMaxConcurrent bounds how many children run at once.
func WithMaxConcurrent(n int) Option {
	return func(o *options) { o.maxConcurrent = n }
}

// SpawnHandle enqueues children into one nursery. It is valid only until Run
// returns; spawning through a kept handle afterwards panics.
type SpawnHandle[T any] struct {
	n *nursery[T]
}

// Spawn enqueues one child task. It never blocks on the child; results come
// back from Run, indexed by spawn order.
func (s *SpawnHandle[T]) Spawn(body async.Body[T]) {
	if body == nil {
		return
	}
	s.n.spawn(body)
}

// SpawnCaptured is Spawn with the values moved into the closure declared, so
// the runtime can verify them against the sendable gate when its Context is
// configured for an untrusted front end.
func (s *SpawnHandle[T]) SpawnCaptured(body async.Body[T], captured ...any) error {
	if body == nil {
		return nil
	}
	if s.n.c.VerifySendable() {
		for _, v := range captured {
			if err := task.CheckSendable(v); err != nil {
				return err
			}
		}
	}
	s.n.spawn(body)
	return nil
}

type child[T any] struct {
	h       *async.Handle
	outcome task.Outcome[T]
}

// cancelDirective records a cancellation decision so that children spawned
// after the decision still come under it.
type cancelDirective struct {
	reason      task.Reason
	pendingOnly bool
}

type nursery[T any] struct {
	id   string
	c    *async.Context
	mode ErrorMode
	lim  async.Limiter

	mu       sync.Mutex
	children []*child[T]
	closed   bool
	failed   bool
	dir      *cancelDirective
}

// Run opens a nursery, executes body with its spawn handle, and blocks until
// every spawned child is terminal; returning control with a live child is
// impossible by construction, even when body panics. Results are indexed by
// spawn order and carry each child's own terminal outcome: ordinary errors
// unchanged, cancellations as CancellationError, panics as panic values.
func Run[T any](env async.Env, mode ErrorMode, body func(*SpawnHandle[T]), opts ...Option) []task.Outcome[T] {
	if env == nil {
		panic("nursery: Run outside an established async Context")
	}
	c := env.Scheduler()
	var o options
	for _, fn := range opts {
		fn(&o)
	}

	n := &nursery[T]{
		id:   uuid.NewString(),
		c:    c,
		mode: mode,
		lim:  async.NewLimiter(o.maxConcurrent),
	}
	obs := c.Observer()
	obs.NurseryOpened(n.id, mode.String())
	start := time.Now()

	// The deadline overrides the error mode: every incomplete child gets
	// Timeout so the nursery can return.
	var timer *time.Timer
	if o.timeout > 0 {
		timer = time.AfterFunc(o.timeout, func() {
			n.cancelIncomplete(task.Timeout)
		})
	}

	// A cancelled enclosing task propagates into the nursery under the
	// nursery's own mode; the nursery still drains fully before the outer
	// task can go terminal, because the caller is blocked right here.
	// Deregistering on return matters: a worker task looping over nurseries
	// would otherwise pile one retained nursery per iteration onto its token.
	if tok := env.EnclosingToken(); tok != nil {
		stop := tok.OnSet(n.propagate)
		defer stop()
	}

	bodyPanic := runNurseryBody(body, &SpawnHandle[T]{n: n})

	n.mu.Lock()
	n.closed = true
	children := n.children
	n.mu.Unlock()

	if bodyPanic != nil {
		// The scope itself failed: cancel everything, drain, then resume
		// the panic past the barrier.
		n.cancelIncomplete(task.NurseryExited)
	}
	for _, ch := range children {
		<-ch.h.Done()
	}
	if timer != nil {
		timer.Stop()
	}
	obs.NurseryClosed(n.id, time.Since(start))

	if bodyPanic != nil {
		panic(bodyPanic.value)
	}

	out := make([]task.Outcome[T], len(children))
	for i, ch := range children {
		out[i] = ch.outcome
	}
	return out
}

type recovered struct{ value any }

func runNurseryBody[T any](body func(*SpawnHandle[T]), h *SpawnHandle[T]) (p *recovered) {
	defer func() {
		if r := recover(); r != nil {
			p = &recovered{value: r}
		}
	}()
	body(h)
	return nil
}

func (n *nursery[T]) spawn(body async.Body[T]) {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		panic("nursery: spawn after Run returned")
	}
	h := n.c.NewTask()
	ch := &child[T]{h: h}
	n.children = append(n.children, ch)
	dir := n.dir
	n.mu.Unlock()

	// A cancellation already decided (failure, deadline, enclosing task)
	// covers late spawns too.
	if dir != nil {
		n.applyDirective(h, dir)
	}

	async.Go(n.c, h, n.lim, body, func(o task.Outcome[T]) {
		ch.outcome = o
		n.childDone(o)
	})
}

func (n *nursery[T]) applyDirective(h *async.Handle, dir *cancelDirective) {
	cancelled := false
	if dir.pendingOnly {
		cancelled = h.CancelIfPending(dir.reason)
	} else if !h.State().Terminal() {
		cancelled = h.Token().Set(dir.reason)
	}
	if cancelled {
		n.c.Observer().CancelRequested(h.ID(), dir.reason)
	}
}

func (n *nursery[T]) childDone(o task.Outcome[T]) {
	_, panicked := o.Panicked()
	_, cancelled := o.Cancelled()
	failed := panicked || (!cancelled && o.Err() != nil)
	if !failed {
		return
	}

	n.mu.Lock()
	first := !n.failed
	n.failed = true
	n.mu.Unlock()
	if !first {
		return
	}

	switch n.mode {
	case FailFast:
		n.cancelIncomplete(task.SiblingFailed)
	case CancelRemaining:
		n.cancelPending(task.SiblingFailed)
	case CollectAll:
		// Siblings are never disturbed by a failure.
	}
}

// propagate applies the enclosing task's cancellation to the children under
// this nursery's own mode.
func (n *nursery[T]) propagate(r task.Reason) {
	switch n.mode {
	case FailFast:
		n.cancelIncomplete(r)
	case CancelRemaining:
		n.cancelPending(r)
	case CollectAll:
		// Children drain naturally; the cooperative cost of the mode.
	}
}

// cancelIncomplete sets the token of every non-terminal child, present and
// future.
func (n *nursery[T]) cancelIncomplete(r task.Reason) {
	n.decide(&cancelDirective{reason: r})
}

// cancelPending cancels only children that have not been dispatched yet.
func (n *nursery[T]) cancelPending(r task.Reason) {
	n.decide(&cancelDirective{reason: r, pendingOnly: true})
}

func (n *nursery[T]) decide(dir *cancelDirective) {
	n.mu.Lock()
	// A full cancellation (deadline, fail-fast) supersedes a sticky
	// pending-only one; never the other way round.
	if n.dir == nil || (n.dir.pendingOnly && !dir.pendingOnly) {
		n.dir = dir
	}
	children := append([]*child[T](nil), n.children...)
	n.mu.Unlock()
	for _, ch := range children {
		n.applyDirective(ch.h, dir)
	}
}
