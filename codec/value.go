package codec

import (
	"github.com/wippyai/avro-runtime/errors"
)

// Value is a handle to a constructed datum. The zero Value holds nothing;
// IsZero is the "no value yet" check. Value is copied by value; copies
// share the datum and its reference count.
type Value struct {
	self *datum
}

type datum struct {
	iface  *Interface
	native any
	id     uint64
	refs   int32
}

// IsZero reports whether v holds no datum.
func (v Value) IsZero() bool {
	return v.self == nil
}

// Same reports whether v and o hold the same datum.
func (v Value) Same(o Value) bool {
	return v.self != nil && v.self == o.self
}

// ID returns the construction serial of the datum, or 0 for the zero Value.
func (v Value) ID() uint64 {
	if v.self == nil {
		return 0
	}
	return v.self.id
}

// Incref takes an additional reference and returns v.
func (v Value) Incref() Value {
	if v.self == nil || v.self.refs <= 0 {
		panic("codec: incref of released value")
	}
	v.self.refs++
	return v
}

// Decref releases one reference, freeing the datum at zero.
func (v Value) Decref() {
	d := v.self
	if d == nil || d.refs <= 0 {
		return
	}
	d.refs--
	if d.refs == 0 {
		d.iface.lib.freeValue(d)
	}
}

// Refs returns the current reference count, 0 for the zero Value.
func (v Value) Refs() int {
	if v.self == nil {
		return 0
	}
	return int(v.self.refs)
}

// Released reports whether the datum has been freed.
func (v Value) Released() bool {
	return v.self == nil || v.self.refs <= 0
}

// Type returns the kind of the value's schema.
func (v Value) Type() Type {
	if v.Released() {
		return TypeInvalid
	}
	return v.self.iface.typ
}

// Interface returns the interface the value was constructed from, without
// taking a reference.
func (v Value) Interface() *Interface {
	if v.Released() {
		return nil
	}
	return v.self.iface
}

// Native returns the datum in goavro's native form.
func (v Value) Native() any {
	if v.Released() {
		return nil
	}
	return v.self.native
}

// Set replaces the datum after checking it encodes against the schema.
func (v Value) Set(native any) error {
	d, err := v.live(errors.PhaseEncode)
	if err != nil {
		return err
	}
	if _, err := d.iface.codec.BinaryFromNative(nil, native); err != nil {
		return v.fail(errors.PhaseEncode, err, "datum does not match schema")
	}
	d.native = native
	return nil
}

// EncodeBinary appends the Avro binary encoding of the datum to buf.
func (v Value) EncodeBinary(buf []byte) ([]byte, error) {
	d, err := v.live(errors.PhaseEncode)
	if err != nil {
		return nil, err
	}
	out, err := d.iface.codec.BinaryFromNative(buf, d.native)
	if err != nil {
		return nil, v.fail(errors.PhaseEncode, err, "binary encode")
	}
	return out, nil
}

// DecodeBinary replaces the datum with one decoded from buf and returns
// the unread remainder. The datum is unchanged on failure.
func (v Value) DecodeBinary(buf []byte) ([]byte, error) {
	d, err := v.live(errors.PhaseDecode)
	if err != nil {
		return nil, err
	}
	native, rest, err := d.iface.codec.NativeFromBinary(buf)
	if err != nil {
		return nil, v.fail(errors.PhaseDecode, err, "binary decode")
	}
	d.native = native
	return rest, nil
}

// EncodeJSON appends the Avro JSON encoding of the datum to buf.
func (v Value) EncodeJSON(buf []byte) ([]byte, error) {
	d, err := v.live(errors.PhaseEncode)
	if err != nil {
		return nil, err
	}
	out, err := d.iface.codec.TextualFromNative(buf, d.native)
	if err != nil {
		return nil, v.fail(errors.PhaseEncode, err, "json encode")
	}
	return out, nil
}

// DecodeJSON replaces the datum with one decoded from Avro JSON text and
// returns the unread remainder. The datum is unchanged on failure.
func (v Value) DecodeJSON(buf []byte) ([]byte, error) {
	d, err := v.live(errors.PhaseDecode)
	if err != nil {
		return nil, err
	}
	native, rest, err := d.iface.codec.NativeFromTextual(buf)
	if err != nil {
		return nil, v.fail(errors.PhaseDecode, err, "json decode")
	}
	d.native = native
	return rest, nil
}

func (v Value) live(phase errors.Phase) (*datum, error) {
	if v.Released() {
		return nil, errors.Released(phase, "value")
	}
	return v.self, nil
}

func (v Value) fail(phase errors.Phase, cause error, detail string) error {
	e := errors.Wrap(phase, errors.KindInvalidData, cause, detail)
	e.Schema = v.self.iface.name
	return e
}
