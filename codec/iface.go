package codec

import (
	"github.com/linkedin/goavro/v2"

	"github.com/wippyai/avro-runtime/errors"
)

// Interface is a compiled reader/writer for one schema. It constructs
// values and is shared by every value it constructs.
type Interface struct {
	lib   *Library
	codec *goavro.Codec
	zero  func() any
	name  string
	typ   Type
	refs  int32
}

// Incref takes an additional reference and returns i.
func (i *Interface) Incref() *Interface {
	if i.refs <= 0 {
		panic("codec: incref of released interface")
	}
	i.refs++
	return i
}

// Decref releases one reference, freeing the interface at zero.
func (i *Interface) Decref() {
	if i.refs <= 0 {
		return
	}
	i.refs--
	if i.refs == 0 {
		i.lib.freeInterface(i)
	}
}

// Refs returns the current reference count.
func (i *Interface) Refs() int {
	return int(i.refs)
}

// Type returns the kind of the schema the interface was derived from.
func (i *Interface) Type() Type {
	return i.typ
}

// Name returns the full name of the schema the interface was derived from.
func (i *Interface) Name() string {
	return i.name
}

// NewValue constructs a new value into dst. dst is overwritten without
// releasing its previous contents; callers release first. On failure dst
// is left zero.
func (i *Interface) NewValue(dst *Value) error {
	if dst == nil {
		return errors.InvalidInput(errors.PhaseConstruct, "nil value storage")
	}
	*dst = Value{}

	if i.refs <= 0 {
		return errors.Released(errors.PhaseConstruct, "interface")
	}

	l := i.lib
	if l.opts.MaxValues > 0 && l.stats.LiveValues >= l.opts.MaxValues {
		return errors.AllocationFailed(errors.PhaseConstruct, l.stats.LiveValues, l.opts.MaxValues)
	}

	l.nextValue++
	*dst = Value{self: &datum{
		iface:  i.Incref(),
		native: i.zero(),
		id:     l.nextValue,
		refs:   1,
	}}
	l.stats.LiveValues++
	l.stats.Constructions++
	return nil
}
