// Package errgroup provides an adapter that mimics golang.org/x/sync/errgroup
// semantics using the task runtime. It enables incremental migration without
// pulling errgroup into dependents.
package errgroup

import (
	"context"
	"fmt"
	"sync"

	"github.com/NetPo4ki/go-nursery/async"
	"github.com/NetPo4ki/go-nursery/task"
)

// Group is an errgroup-like wrapper over the runtime with fail-fast
// semantics: the first non-nil error cancels every other task's token.
type Group struct {
	c      *async.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	err     error
	handles []*async.Handle
}

// WithContext creates a Group scheduled on the default runtime Context. The
// returned context is canceled when any function passed to Go returns a
// non-nil error or panics.
func WithContext(ctx context.Context) (*Group, context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	return &Group{c: async.Default(), cancel: cancel}, ctx
}

// Go starts f as a task. A non-nil return signals failure; a panic is
// converted to an error rather than crashing the group.
func (g *Group) Go(f func() error) {
	if f == nil {
		return
	}
	g.mu.Lock()
	h := g.c.NewTask()
	g.handles = append(g.handles, h)
	g.mu.Unlock()

	async.Go(g.c, h, nil, func(*async.TaskCtx) (struct{}, error) {
		return struct{}{}, f()
	}, func(o task.Outcome[struct{}]) {
		if p, ok := o.Panicked(); ok {
			g.fail(fmt.Errorf("panic: %v", p))
			return
		}
		if err := o.Err(); err != nil {
			g.fail(err)
		}
	})
}

func (g *Group) fail(err error) {
	g.mu.Lock()
	first := g.err == nil
	if first {
		g.err = err
	}
	handles := append([]*async.Handle(nil), g.handles...)
	g.mu.Unlock()
	if !first {
		return
	}
	g.cancel()
	for _, h := range handles {
		h.Token().Set(task.SiblingFailed)
	}
}

// Wait blocks until all functions have returned, then returns the first
// non-nil error.
func (g *Group) Wait() error {
	g.mu.Lock()
	handles := append([]*async.Handle(nil), g.handles...)
	g.mu.Unlock()
	for _, h := range handles {
		<-h.Done()
	}
	g.cancel()
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.err
}
