package async

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Limiter bounds how many tasks from one batch or nursery run at once. A
// task waiting on the limiter is still Pending; Acquire must honour the
// cancellation context so a cancelled task never dispatches.
type Limiter interface {
	Acquire(ctx context.Context) error
	Release()
}

type semLimiter struct {
	sem *semaphore.Weighted
}

// NewLimiter returns a Limiter admitting at most n tasks, or nil when n <= 0
// (unbounded).
func NewLimiter(n int) Limiter {
	if n <= 0 {
		return nil
	}
	return &semLimiter{sem: semaphore.NewWeighted(int64(n))}
}

func (l *semLimiter) Acquire(ctx context.Context) error {
	return l.sem.Acquire(ctx, 1)
}

func (l *semLimiter) Release() {
	l.sem.Release(1)
}
