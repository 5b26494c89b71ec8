package binding

import (
	"github.com/wippyai/avro-runtime/codec"
	"github.com/wippyai/avro-runtime/errors"
)

// SchemaHandle holds one reference to a schema and, once a value has been
// constructed from it, one reference to its derived interface.
type SchemaHandle struct {
	lib    *codec.Library
	schema *codec.Schema
	iface  *codec.Interface
}

// Type returns the schema kind, or codec.TypeInvalid after Release.
func (h *SchemaHandle) Type() codec.Type {
	if h.schema == nil {
		return codec.TypeInvalid
	}
	return h.schema.Type()
}

// Name returns the declared name of a record, enum or fixed schema and the
// type name otherwise. Empty after Release.
func (h *SchemaHandle) Name() string {
	if h.schema == nil {
		return ""
	}
	return h.schema.TypeName()
}

// Token returns the raw identity of the schema, or 0 after Release.
func (h *SchemaHandle) Token() codec.Token {
	if h.schema == nil {
		return 0
	}
	return h.schema.Token()
}

// Schema returns the underlying schema without taking a reference.
func (h *SchemaHandle) Schema() *codec.Schema {
	return h.schema
}

// Derived reports whether the interface has been derived.
func (h *SchemaHandle) Derived() bool {
	return h.iface != nil
}

// Interface derives the value interface on first use and returns the
// cached one afterwards. The handle keeps ownership.
func (h *SchemaHandle) Interface() (*codec.Interface, error) {
	return h.deriveInterface()
}

func (h *SchemaHandle) deriveInterface() (*codec.Interface, error) {
	if h.iface != nil {
		return h.iface, nil
	}
	if h.schema == nil {
		return nil, errors.NullSchema(errors.PhaseDerive, "schema handle has been released")
	}
	iface, err := h.lib.InterfaceFor(h.schema)
	if err != nil {
		return nil, err
	}
	h.iface = iface
	return iface, nil
}

// NewRawValue constructs a value of this schema. With existing nil a new
// owning handle is returned. Otherwise existing is reset in place (its
// current value released first) and returned.
func (h *SchemaHandle) NewRawValue(existing *ValueHandle) (*ValueHandle, error) {
	if h.schema == nil {
		return nil, errors.NullSchema(errors.PhaseConstruct, "schema handle has been released")
	}
	iface, err := h.deriveInterface()
	if err != nil {
		return nil, err
	}

	if existing != nil {
		if err := existing.Reset(iface); err != nil {
			return nil, err
		}
		return existing, nil
	}

	v := &ValueHandle{}
	if err := v.Reset(iface); err != nil {
		return nil, err
	}
	return v, nil
}

// Release drops the interface and schema references. Safe to call more
// than once.
func (h *SchemaHandle) Release() {
	if h.iface != nil {
		h.iface.Decref()
		h.iface = nil
	}
	if h.schema != nil {
		h.schema.Decref()
		h.schema = nil
	}
}

// Drop is the finalizer hook used by resource tables.
func (h *SchemaHandle) Drop() {
	h.Release()
}
