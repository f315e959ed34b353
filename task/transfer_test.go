package task

import (
	"sync"
	"testing"
)

func TestOwnedMove(t *testing.T) {
	t.Parallel()
	o := NewOwned([]int{1, 2, 3})
	if o.Taken() {
		t.Fatal("fresh box must not be taken")
	}
	v := o.Take()
	if len(v) != 3 {
		t.Fatalf("moved value corrupted: %v", v)
	}
	if !o.Taken() {
		t.Fatal("box must record the move")
	}
}

func TestOwnedDoubleTakePanics(t *testing.T) {
	t.Parallel()
	o := NewOwned(1)
	_ = o.Take()
	defer func() {
		if recover() == nil {
			t.Fatal("second Take must panic: the spawning scope lost the binding")
		}
	}()
	_ = o.Take()
}

func TestOwnedConcurrentTakeSingleWinner(t *testing.T) {
	t.Parallel()
	o := NewOwned("x")
	var wg sync.WaitGroup
	wins := make(chan struct{}, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { _ = recover() }()
			_ = o.Take()
			wins <- struct{}{}
		}()
	}
	wg.Wait()
	close(wins)
	n := 0
	for range wins {
		n++
	}
	if n != 1 {
		t.Fatalf("exactly one goroutine may take the value, got %d", n)
	}
}

func TestSharedRefcount(t *testing.T) {
	t.Parallel()
	s := NewShared(100)
	c := s.Clone()
	if s.Refs() != 2 {
		t.Fatalf("refs = %d after clone", s.Refs())
	}
	if c.Value() != 100 {
		t.Fatalf("clone sees %d", c.Value())
	}
	c.Release()
	if s.Refs() != 1 {
		t.Fatalf("refs = %d after release", s.Refs())
	}
}

func TestSharedConcurrentCloneRelease(t *testing.T) {
	t.Parallel()
	s := NewShared(7)
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := s.Clone()
			if c.Value() != 7 {
				t.Error("shared value corrupted")
			}
			c.Release()
		}()
	}
	wg.Wait()
	if s.Refs() != 1 {
		t.Fatalf("refcount drifted to %d", s.Refs())
	}
}

func TestSharedUseAfterReleasePanics(t *testing.T) {
	t.Parallel()
	s := NewShared(1)
	s.Release()
	defer func() {
		if recover() == nil {
			t.Fatal("Value after final Release must panic")
		}
	}()
	_ = s.Value()
}
