package task

import (
	"sync"
	"sync/atomic"
)

// Reason records why a task's cancellation token was set.
type Reason int

const (
	Timeout Reason = iota
	SiblingFailed
	NurseryExited
	ExplicitCancel
	ResourceExhausted
)

func (r Reason) String() string {
	switch r {
	case Timeout:
		return "timeout"
	case SiblingFailed:
		return "sibling_failed"
	case NurseryExited:
		return "nursery_exited"
	case ExplicitCancel:
		return "explicit_cancel"
	case ResourceExhausted:
		return "resource_exhausted"
	default:
		return "unknown"
	}
}

// Token is a per-task cancellation flag. Cancellation sources set it at most
// once; checkpoints poll it. Once set it is never cleared.
type Token struct {
	isSet atomic.Bool

	mu     sync.Mutex
	reason Reason
	done   chan struct{}
	nextCB uint64
	onSet  map[uint64]func(Reason)
}

func NewToken() *Token {
	return &Token{done: make(chan struct{})}
}

// Set requests cancellation with the given reason. The first call wins and
// reports true; every later call is a no-op.
func (t *Token) Set(r Reason) bool {
	t.mu.Lock()
	if t.isSet.Load() {
		t.mu.Unlock()
		return false
	}
	t.reason = r
	t.isSet.Store(true)
	close(t.done)
	cbs := make([]func(Reason), 0, len(t.onSet))
	for _, fn := range t.onSet {
		cbs = append(cbs, fn)
	}
	t.onSet = nil
	t.mu.Unlock()

	for _, fn := range cbs {
		fn(r)
	}
	return true
}

func (t *Token) IsSet() bool { return t.isSet.Load() }

// Reason is meaningful only after IsSet reports true.
func (t *Token) Reason() Reason {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.reason
}

// Done returns a channel closed when the token is set. Suspension points
// select on it to wake cancelled tasks.
func (t *Token) Done() <-chan struct{} { return t.done }

// OnSet registers fn to run once when the token is set. If the token is
// already set, fn runs immediately on the calling goroutine. The returned
// stop func deregisters fn; callers that may outlive their interest in the
// token (a nursery returning inside a long-lived task) must defer it, or the
// token retains fn for its whole life.
func (t *Token) OnSet(fn func(Reason)) (stop func()) {
	t.mu.Lock()
	if t.isSet.Load() {
		r := t.reason
		t.mu.Unlock()
		fn(r)
		return func() {}
	}
	if t.onSet == nil {
		t.onSet = make(map[uint64]func(Reason))
	}
	id := t.nextCB
	t.nextCB++
	t.onSet[id] = fn
	t.mu.Unlock()
	return func() {
		t.mu.Lock()
		delete(t.onSet, id)
		t.mu.Unlock()
	}
}
