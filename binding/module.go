package binding

import (
	"github.com/wippyai/avro-runtime/codec"
	"github.com/wippyai/avro-runtime/errors"
)

// Module creates schema handles against one codec library.
type Module struct {
	lib *codec.Library
}

// New creates a module backed by lib.
func New(lib *codec.Library) *Module {
	return &Module{lib: lib}
}

// Library returns the backing codec library.
func (m *Module) Library() *codec.Library {
	return m.lib
}

// Schema returns a handle for a primitive name, schema JSON text, or an
// existing handle, along with the schema's raw token.
//
// An existing handle is passed through unchanged: the same pointer and
// token come back and no reference count moves. Raw tokens are rejected
// here; use NewRawSchema to adopt a token.
func (m *Module) Schema(v any) (*SchemaHandle, codec.Token, error) {
	in, err := Classify(v)
	if err != nil {
		return nil, 0, err
	}

	switch in.Kind {
	case InputHandle:
		if in.Handle.schema == nil {
			return nil, 0, errors.NullSchema(errors.PhaseBind, "schema handle has been released")
		}
		return in.Handle, in.Handle.Token(), nil

	case InputPrimitive:
		s, err := m.lib.Primitive(in.Primitive)
		if err != nil {
			return nil, 0, err
		}
		h := m.adopt(s)
		return h, h.Token(), nil

	case InputJSON:
		s, err := m.lib.Parse(in.Text)
		if err != nil {
			return nil, 0, err
		}
		h := m.adopt(s)
		return h, h.Token(), nil
	}

	return nil, 0, errors.New(errors.PhaseBind, errors.KindInvalidInput).
		Value(in.Token).
		Detail("raw schema token passed where a schema was expected").
		Build()
}

// NewRawSchema adopts a raw schema token. The caller transfers a reference
// it already holds, so no new reference is taken.
func (m *Module) NewRawSchema(tok codec.Token) (*SchemaHandle, codec.Token, error) {
	if tok == 0 {
		return nil, 0, errors.NullSchema(errors.PhaseBind, "null schema token")
	}
	s := m.lib.Lookup(tok)
	if s == nil {
		return nil, 0, errors.New(errors.PhaseBind, errors.KindInvalidInput).
			Value(tok).
			Detail("token %d does not name a live schema", tok).
			Build()
	}
	h := m.adopt(s)
	return h, tok, nil
}

// adopt wraps s in a handle that takes over the caller's reference.
// Parse, Primitive and an adopted token each hand over exactly one, which
// the handle gives back on Release.
func (m *Module) adopt(s *codec.Schema) *SchemaHandle {
	return &SchemaHandle{lib: m.lib, schema: s}
}
