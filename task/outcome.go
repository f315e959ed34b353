package task

// Outcome is the terminal result of one task. It distinguishes ordinary
// completion (with or without an error), cancellation observed at a
// checkpoint, and an unrecovered panic; callers must pattern-match rather
// than rely on any implicit coercion between the three.
type Outcome[T any] struct {
	state    State
	value    T
	err      error
	panicVal any
	taskID   uint64
}

// OkOutcome records a normal return.
func OkOutcome[T any](v T) Outcome[T] {
	return Outcome[T]{state: Completed, value: v}
}

// ErrOutcome records a task whose own logic failed. The error is carried
// unchanged.
func ErrOutcome[T any](err error) Outcome[T] {
	return Outcome[T]{state: Completed, err: err}
}

// CancelledOutcome records a task that observed a set token and unwound.
func CancelledOutcome[T any](ce *CancellationError) Outcome[T] {
	return Outcome[T]{state: Cancelled, err: ce, taskID: ce.TaskID}
}

// PanickedOutcome records an unrecovered panic as the terminal outcome.
func PanickedOutcome[T any](taskID uint64, v any) Outcome[T] {
	return Outcome[T]{state: Panicked, panicVal: v, taskID: taskID}
}

func (o Outcome[T]) State() State { return o.state }

// Ok returns the value of a successful completion.
func (o Outcome[T]) Ok() (T, bool) {
	if o.state == Completed && o.err == nil {
		return o.value, true
	}
	var zero T
	return zero, false
}

// Err returns the task's error: the original error for an ordinary failure,
// the *CancellationError for a cancelled task, nil otherwise.
func (o Outcome[T]) Err() error { return o.err }

// Cancelled returns the cancellation record if the task was cancelled.
func (o Outcome[T]) Cancelled() (*CancellationError, bool) {
	if o.state == Cancelled {
		ce, _ := AsCancellation(o.err)
		return ce, true
	}
	return nil, false
}

// Panicked returns the recovered panic value if the task panicked.
func (o Outcome[T]) Panicked() (any, bool) {
	if o.state == Panicked {
		return o.panicVal, true
	}
	return nil, false
}

// Unwrap flattens the outcome to (value, error), converting a panic into a
// *PanicError. Use the typed accessors when the distinction matters.
func (o Outcome[T]) Unwrap() (T, error) {
	if o.state == Panicked {
		var zero T
		return zero, &PanicError{TaskID: o.taskID, Value: o.panicVal}
	}
	return o.value, o.err
}
