package task

import (
	"sync"
	"testing"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestTokenSetOnce(t *testing.T) {
	t.Parallel()
	tok := NewToken()
	if tok.IsSet() {
		t.Fatal("fresh token must not be set")
	}
	if !tok.Set(Timeout) {
		t.Fatal("first Set must win")
	}
	if tok.Set(ExplicitCancel) {
		t.Fatal("second Set must be a no-op")
	}
	if got := tok.Reason(); got != Timeout {
		t.Fatalf("reason overwritten: got %s", got)
	}
	select {
	case <-tok.Done():
	default:
		t.Fatal("Done must be closed after Set")
	}
}

func TestTokenMonotonic(t *testing.T) {
	t.Parallel()
	tok := NewToken()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		r := Reason(i % 5)
		wg.Add(1)
		go func() {
			defer wg.Done()
			tok.Set(r)
		}()
	}
	wg.Wait()
	if !tok.IsSet() {
		t.Fatal("token must stay set")
	}
	// Once set, it never clears.
	for i := 0; i < 100; i++ {
		if !tok.IsSet() {
			t.Fatal("token un-set observed")
		}
	}
}

func TestTokenOnSet(t *testing.T) {
	t.Parallel()
	tok := NewToken()
	got := make(chan Reason, 2)
	tok.OnSet(func(r Reason) { got <- r })
	tok.Set(SiblingFailed)
	if r := <-got; r != SiblingFailed {
		t.Fatalf("callback reason = %s", r)
	}
	// Registration after Set runs immediately.
	tok.OnSet(func(r Reason) { got <- r })
	if r := <-got; r != SiblingFailed {
		t.Fatalf("late callback reason = %s", r)
	}
}

func TestTokenOnSetStop(t *testing.T) {
	t.Parallel()
	tok := NewToken()
	fired := 0
	stop := tok.OnSet(func(Reason) { fired++ })
	kept := make(chan Reason, 1)
	tok.OnSet(func(r Reason) { kept <- r })

	stop()
	tok.Set(Timeout)
	if fired != 0 {
		t.Fatal("deregistered callback must not run")
	}
	if r := <-kept; r != Timeout {
		t.Fatalf("surviving callback reason = %s", r)
	}
	// Stopping after Set, or twice, is a no-op.
	stop()
}

func TestReasonString(t *testing.T) {
	t.Parallel()
	for r, want := range map[Reason]string{
		Timeout:           "timeout",
		SiblingFailed:     "sibling_failed",
		NurseryExited:     "nursery_exited",
		ExplicitCancel:    "explicit_cancel",
		ResourceExhausted: "resource_exhausted",
	} {
		if got := r.String(); got != want {
			t.Errorf("Reason(%d).String() = %q, want %q", r, got, want)
		}
	}
}

func TestStateMachine(t *testing.T) {
	t.Parallel()
	legal := []struct{ from, to State }{
		{Pending, Running},
		{Pending, Cancelled},
		{Running, Cancelling},
		{Running, Completed},
		{Running, Panicked},
		{Cancelling, Cancelled},
	}
	for _, tr := range legal {
		if !ValidTransition(tr.from, tr.to) {
			t.Errorf("%s -> %s should be legal", tr.from, tr.to)
		}
	}
	illegal := []struct{ from, to State }{
		{Pending, Completed},
		{Cancelled, Running},
		{Completed, Cancelling},
		{Cancelling, Running},
		{Cancelling, Completed},
		{Panicked, Running},
	}
	for _, tr := range illegal {
		if ValidTransition(tr.from, tr.to) {
			t.Errorf("%s -> %s should be illegal", tr.from, tr.to)
		}
	}
	for _, s := range []State{Cancelled, Completed, Panicked} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []State{Pending, Running, Cancelling} {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}
