package async

import (
	"time"

	"github.com/NetPo4ki/go-nursery/task"
)

// Observer receives lifecycle events from the scheduler and from nurseries.
// Implementations must be safe for concurrent use; hooks run on task
// goroutines and must not block.
type Observer interface {
	TaskStarted(id uint64)
	TaskFinished(id uint64, dur time.Duration, state task.State, err error)
	// TaskDropped fires when a detached task is discarded at admission
	// because the registry is full or the Context is shut down.
	TaskDropped(id uint64)
	CancelRequested(id uint64, reason task.Reason)
	NurseryOpened(nurseryID, mode string)
	NurseryClosed(nurseryID string, dur time.Duration)
}

// NopObserver discards all events.
type NopObserver struct{}

func (NopObserver) TaskStarted(uint64)                                 {}
func (NopObserver) TaskFinished(uint64, time.Duration, task.State, error) {}
func (NopObserver) TaskDropped(uint64)                                 {}
func (NopObserver) CancelRequested(uint64, task.Reason)                {}
func (NopObserver) NurseryOpened(string, string)                       {}
func (NopObserver) NurseryClosed(string, time.Duration)                {}
