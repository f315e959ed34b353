package async

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/NetPo4ki/go-nursery/task"
)

// Context is the scheduler environment. Task submission and every suspending
// operation require one; the outermost instance for a process is Default.
type Context struct {
	cfg    Config
	obs    Observer
	nextID atomic.Uint64

	mu       sync.Mutex
	detached map[uint64]*Handle
	closed   bool
}

// Env is anything tasks can be scheduled against: a Context at top level, or
// a TaskCtx when nesting inside a running task.
type Env interface {
	Scheduler() *Context
	// EnclosingToken returns the token of the task this environment runs
	// inside, or nil at top level.
	EnclosingToken() *task.Token
}

type Option func(*Context)

// WithObserver attaches an observer to the Context.
func WithObserver(obs Observer) Option {
	return func(c *Context) {
		if obs != nil {
			c.obs = obs
		}
	}
}

func New(cfg Config, opts ...Option) *Context {
	c := &Context{
		cfg:      cfg,
		obs:      NopObserver{},
		detached: make(map[uint64]*Handle),
	}
	for _, fn := range opts {
		fn(c)
	}
	return c
}

var (
	defaultCtx  *Context
	defaultOnce sync.Once
)

// Default returns the process-wide Context, creating it with defaults on
// first use. It lives until process exit.
func Default() *Context {
	defaultOnce.Do(func() {
		defaultCtx = New(DefaultConfig())
	})
	return defaultCtx
}

func (c *Context) Scheduler() *Context {
	if c == nil {
		panic("async: suspending operation outside an established Context")
	}
	return c
}

func (c *Context) EnclosingToken() *task.Token { return nil }

func (c *Context) Observer() Observer { return c.obs }

// VerifySendable reports whether captured values must pass the sendable gate.
func (c *Context) VerifySendable() bool { return c.cfg.VerifySendable }

// NewTask allocates a Pending handle owned by this Context.
func (c *Context) NewTask() *Handle {
	if c == nil {
		panic("async: suspending operation outside an established Context")
	}
	return &Handle{
		id:    c.nextID.Add(1),
		token: task.NewToken(),
		done:  make(chan struct{}),
	}
}

// registerDetached admits h into the detached registry. Reports false when
// the registry is full or the Context is shut down.
func (c *Context) registerDetached(h *Handle) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	if c.cfg.MaxDetached > 0 && len(c.detached) >= c.cfg.MaxDetached {
		return false
	}
	c.detached[h.id] = h
	return true
}

func (c *Context) unregisterDetached(id uint64) {
	c.mu.Lock()
	delete(c.detached, id)
	c.mu.Unlock()
}

// Detached returns how many fire-and-forget tasks are currently live.
func (c *Context) Detached() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.detached)
}

func (c *Context) snapshotDetached() []*Handle {
	c.mu.Lock()
	defer c.mu.Unlock()
	live := make([]*Handle, 0, len(c.detached))
	for _, h := range c.detached {
		live = append(live, h)
	}
	return live
}

// Drain waits for every currently registered detached task to go terminal
// without cancelling anything.
func (c *Context) Drain() {
	for _, h := range c.snapshotDetached() {
		<-h.done
	}
}

// Shutdown cancels every detached task with ExplicitCancel and waits up to
// the configured grace for them to drain. New detached spawns are refused
// from this point on. Cancellation stays cooperative: a detached task that
// never reaches a checkpoint is reported, not killed.
func (c *Context) Shutdown() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	live := c.snapshotDetached()
	for _, h := range live {
		if h.token.Set(task.ExplicitCancel) {
			c.obs.CancelRequested(h.id, task.ExplicitCancel)
		}
	}

	deadline := time.NewTimer(c.cfg.shutdownGrace())
	defer deadline.Stop()
	for i, h := range live {
		select {
		case <-h.done:
		case <-deadline.C:
			stuck := 0
			for _, rest := range live[i:] {
				if !rest.State().Terminal() {
					stuck++
				}
			}
			if stuck > 0 {
				return fmt.Errorf("async: %d detached task(s) still live after shutdown grace", stuck)
			}
		}
	}
	return nil
}
