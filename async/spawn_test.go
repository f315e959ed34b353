package async

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/NetPo4ki/go-nursery/task"
)

type countObserver struct {
	started   atomic.Int64
	finished  atomic.Int64
	dropped   atomic.Int64
	cancels   atomic.Int64
	onDropped func()
}

func (o *countObserver) TaskStarted(uint64) { o.started.Add(1) }
func (o *countObserver) TaskFinished(uint64, time.Duration, task.State, error) {
	o.finished.Add(1)
}
func (o *countObserver) TaskDropped(uint64) {
	o.dropped.Add(1)
	if o.onDropped != nil {
		o.onDropped()
	}
}
func (o *countObserver) CancelRequested(uint64, task.Reason) { o.cancels.Add(1) }
func (o *countObserver) NurseryOpened(string, string)        {}
func (o *countObserver) NurseryClosed(string, time.Duration) {}

func TestSpawnDetachment(t *testing.T) {
	t.Parallel()
	c := New(DefaultConfig())
	release := make(chan struct{})
	finished := atomic.Bool{}

	// The spawning function must return before the task completes, with no
	// result or error channel back to it.
	err := Spawn(c, []Body[int]{
		func(tc *TaskCtx) (int, error) {
			<-release
			finished.Store(true)
			return 7, nil
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if finished.Load() {
		t.Fatal("spawner observed task completion synchronously")
	}
	close(release)
	c.Drain()
	if !finished.Load() {
		t.Fatal("detached task never ran")
	}
}

func TestSpawnDiscardsErrors(t *testing.T) {
	t.Parallel()
	obs := &countObserver{}
	c := New(DefaultConfig(), WithObserver(obs))
	err := Spawn(c, []Body[int]{
		func(tc *TaskCtx) (int, error) { panic("silent") },
		func(tc *TaskCtx) (int, error) { return 0, ErrClosed },
		func(tc *TaskCtx) (int, error) { return 1, nil },
	})
	if err != nil {
		t.Fatal(err)
	}
	c.Drain()
	if got := obs.finished.Load(); got != 3 {
		t.Fatalf("finished = %d, want 3", got)
	}
}

func TestSpawnDropsExcessWithResourceExhausted(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	cfg.MaxDetached = 2
	obs := &countObserver{}
	c := New(cfg, WithObserver(obs))

	release := make(chan struct{})
	bodies := make([]Body[int], 4)
	for i := range bodies {
		bodies[i] = func(tc *TaskCtx) (int, error) {
			<-release
			return 0, nil
		}
	}
	if err := Spawn(c, bodies); err != nil {
		t.Fatal(err)
	}
	if got := obs.dropped.Load(); got != 2 {
		t.Fatalf("dropped = %d, want 2", got)
	}
	if got := c.Detached(); got != 2 {
		t.Fatalf("registry holds %d, want 2", got)
	}
	close(release)
	c.Drain()
}

func TestSpawnMaxConcurrentBound(t *testing.T) {
	t.Parallel()
	const bound = 3
	const total = 20
	c := New(DefaultConfig())
	var cur, maxSeen atomic.Int64
	block := make(chan struct{})
	bodies := make([]Body[int], total)
	for i := range bodies {
		bodies[i] = func(tc *TaskCtx) (int, error) {
			n := cur.Add(1)
			for {
				m := maxSeen.Load()
				if n <= m || maxSeen.CompareAndSwap(m, n) {
					break
				}
			}
			<-block
			cur.Add(-1)
			return 0, nil
		}
	}
	if err := Spawn(c, bodies, WithMaxConcurrent(bound)); err != nil {
		t.Fatal(err)
	}
	time.Sleep(50 * time.Millisecond)
	close(block)
	c.Drain()
	if got := maxSeen.Load(); got > bound {
		t.Fatalf("observed %d concurrent tasks, bound is %d", got, bound)
	}
}

func TestSpawnSendableGate(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	cfg.VerifySendable = true
	c := New(cfg)

	leaky := map[string]int{"a": 1}
	err := Spawn(c, []Body[int]{
		func(tc *TaskCtx) (int, error) { return leaky["a"], nil },
	}, WithCaptured(leaky))
	if err == nil {
		t.Fatal("aliasing capture must be rejected for an untrusted front end")
	}

	owned := task.NewOwned([]int{1, 2, 3})
	err = Spawn(c, []Body[int]{
		func(tc *TaskCtx) (int, error) { return len(owned.Take()), nil },
	}, WithCaptured(owned))
	if err != nil {
		t.Fatalf("moved capture rejected: %v", err)
	}
	c.Drain()
}
