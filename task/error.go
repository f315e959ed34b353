package task

import (
	"errors"
	"fmt"
)

// CancellationError is the outcome of a task that observed a set token at a
// checkpoint. A task that completed or panicked before observing the token
// keeps its original outcome; the two are never conflated.
type CancellationError struct {
	Reason Reason
	TaskID uint64
}

func (e *CancellationError) Error() string {
	return fmt.Sprintf("task %d cancelled: %s", e.TaskID, e.Reason)
}

// AsCancellation unwraps err as a *CancellationError.
func AsCancellation(err error) (*CancellationError, bool) {
	var ce *CancellationError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// PanicError wraps a recovered panic value when a caller asks for a task's
// terminal outcome as an error.
type PanicError struct {
	TaskID uint64
	Value  any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("task %d panicked: %v", e.TaskID, e.Value)
}
