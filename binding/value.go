package binding

import (
	"github.com/wippyai/avro-runtime/codec"
	"github.com/wippyai/avro-runtime/errors"
)

// ValueState describes what a ValueHandle currently holds.
type ValueState uint8

const (
	Empty ValueState = iota
	Owned
	Borrowed
)

func (s ValueState) String() string {
	switch s {
	case Owned:
		return "owned"
	case Borrowed:
		return "borrowed"
	default:
		return "empty"
	}
}

// ValueHandle is a stable wrapper around a codec value. When it owns its
// value it holds exactly one reference to it.
type ValueHandle struct {
	value codec.Value
	owns  bool
}

// Wrap stores v without adjusting its reference count. With owns set the
// caller hands over a reference it already holds; otherwise the handle
// borrows v.
func Wrap(v codec.Value, owns bool) *ValueHandle {
	return &ValueHandle{value: v, owns: owns && !v.IsZero()}
}

// State reports whether the handle is empty, owns its value or borrows it.
func (v *ValueHandle) State() ValueState {
	switch {
	case v.value.IsZero():
		return Empty
	case v.owns:
		return Owned
	default:
		return Borrowed
	}
}

// Owns reports whether the handle is responsible for releasing its value.
func (v *ValueHandle) Owns() bool {
	return v.owns
}

// Value returns the held value without taking a reference.
func (v *ValueHandle) Value() codec.Value {
	return v.value
}

// Reset releases the current value if owned and constructs a new one from
// iface in its place. On failure the handle is left empty and non-owning.
func (v *ValueHandle) Reset(iface *codec.Interface) error {
	v.Release()

	if iface == nil {
		return errors.ValueConstruction("", errors.InvalidInput(errors.PhaseConstruct, "nil interface"))
	}
	if err := iface.NewValue(&v.value); err != nil {
		v.value = codec.Value{}
		return errors.ValueConstruction(iface.Name(), err)
	}
	v.owns = true
	return nil
}

// Release drops the owned reference, if any, and clears the handle. A
// borrowed value is forgotten without being released. Safe to call more
// than once.
func (v *ValueHandle) Release() {
	if v.owns && !v.value.IsZero() {
		v.value.Decref()
	}
	v.value = codec.Value{}
	v.owns = false
}

// Drop is the finalizer hook used by resource tables.
func (v *ValueHandle) Drop() {
	v.Release()
}
