package task

import (
	"errors"
	"fmt"
	"reflect"
)

// Sendable marks a type as safe to move across a task boundary. Types whose
// representation can carry cross-task mutable aliasing (pointers, maps,
// slices, channels, funcs) must opt in explicitly.
type Sendable interface {
	SendableAcrossTasks()
}

// ErrNotSendable is wrapped by every CheckSendable rejection.
var ErrNotSendable = errors.New("task: value is not sendable across tasks")

var sendableType = reflect.TypeOf((*Sendable)(nil)).Elem()

// CheckSendable reports whether v may cross a task boundary. Values are
// accepted when they are plain immutable data, or when the type (at any
// nesting level that would otherwise be rejected) implements Sendable. A
// trusted, type-checked front end may skip the call; an untrusted one must
// not.
func CheckSendable(v any) error {
	if v == nil {
		return nil
	}
	return checkSendable(reflect.TypeOf(v))
}

func checkSendable(t reflect.Type) error {
	if t.Implements(sendableType) || reflect.PointerTo(t).Implements(sendableType) {
		return nil
	}
	switch t.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return nil
	case reflect.Array:
		return checkSendable(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if err := checkSendable(t.Field(i).Type); err != nil {
				return fmt.Errorf("%s field %s: %w", t, t.Field(i).Name, err)
			}
		}
		return nil
	default:
		// Pointer, map, slice, chan, func, interface, unsafe pointer: all
		// can alias mutable state between the spawner and the task.
		return fmt.Errorf("%w: %s", ErrNotSendable, t)
	}
}
