package task

import "sync/atomic"

// Owned is a move box: a value handed to exactly one task. Take consumes the
// value and invalidates the original handle, so the spawning scope cannot
// keep a live binding the task could race on.
type Owned[T any] struct {
	taken atomic.Bool
	v     *T
}

func NewOwned[T any](v T) *Owned[T] {
	return &Owned[T]{v: &v}
}

// Take moves the value out. It panics when the value has already been moved.
func (o *Owned[T]) Take() T {
	if !o.taken.CompareAndSwap(false, true) {
		panic("task: value already moved across a task boundary")
	}
	v := *o.v
	o.v = nil
	return v
}

// Taken reports whether the value has been moved out.
func (o *Owned[T]) Taken() bool { return o.taken.Load() }

// SendableAcrossTasks marks Owned as safe to cross a task boundary; the move
// discipline is the point of the type.
func (*Owned[T]) SendableAcrossTasks() {}

// Shared is an immutable value shared across tasks by clone, with an atomic
// reference count. Concurrent tasks may Clone and Release without external
// locking.
type Shared[T any] struct {
	refs *atomic.Int64
	v    *T
}

func NewShared[T any](v T) Shared[T] {
	refs := new(atomic.Int64)
	refs.Store(1)
	return Shared[T]{refs: refs, v: &v}
}

// Clone adds a reference and returns a handle for another task.
func (s Shared[T]) Clone() Shared[T] {
	if s.refs.Add(1) <= 1 {
		panic("task: clone of a fully released value")
	}
	return s
}

// Release drops one reference.
func (s Shared[T]) Release() {
	if s.refs.Add(-1) < 0 {
		panic("task: release of a fully released value")
	}
}

// Value returns the shared value. It panics after the last Release.
func (s Shared[T]) Value() T {
	if s.refs.Load() <= 0 {
		panic("task: use after release")
	}
	return *s.v
}

// Refs returns the current reference count.
func (s Shared[T]) Refs() int64 { return s.refs.Load() }

// SendableAcrossTasks marks Shared as safe to cross a task boundary; the
// refcount is atomic and the value is immutable by contract.
func (Shared[T]) SendableAcrossTasks() {}
