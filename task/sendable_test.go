package task

import (
	"errors"
	"testing"
)

type plainConfig struct {
	Name    string
	Retries int
	Ratio   float64
}

type aliased struct {
	Data []byte
}

type optIn struct {
	Data []byte
}

func (optIn) SendableAcrossTasks() {}

func TestCheckSendablePlainData(t *testing.T) {
	t.Parallel()
	for _, v := range []any{
		nil,
		true,
		42,
		uint64(9),
		3.14,
		"hello",
		[4]int{1, 2, 3, 4},
		plainConfig{Name: "a", Retries: 3, Ratio: 0.5},
	} {
		if err := CheckSendable(v); err != nil {
			t.Errorf("CheckSendable(%#v) = %v, want nil", v, err)
		}
	}
}

func TestCheckSendableRejectsAliasing(t *testing.T) {
	t.Parallel()
	x := 1
	for _, v := range []any{
		&x,
		map[string]int{"a": 1},
		[]int{1, 2},
		make(chan int),
		func() {},
		aliased{Data: []byte("x")},
	} {
		err := CheckSendable(v)
		if !errors.Is(err, ErrNotSendable) {
			t.Errorf("CheckSendable(%T) = %v, want ErrNotSendable", v, err)
		}
	}
}

func TestCheckSendableOptIn(t *testing.T) {
	t.Parallel()
	if err := CheckSendable(optIn{Data: []byte("x")}); err != nil {
		t.Fatalf("opted-in type rejected: %v", err)
	}
	// The transfer primitives are sendable by construction.
	if err := CheckSendable(NewOwned([]int{1})); err != nil {
		t.Fatalf("Owned rejected: %v", err)
	}
	if err := CheckSendable(NewShared([]int{1})); err != nil {
		t.Fatalf("Shared rejected: %v", err)
	}
	// A struct embedding an opted-in field passes even though the field
	// would be rejected on its own shape.
	type wrapper struct {
		Inner optIn
		N     int
	}
	if err := CheckSendable(wrapper{}); err != nil {
		t.Fatalf("wrapper rejected: %v", err)
	}
}
