package codec

import (
	"fmt"
	"strings"

	"github.com/linkedin/goavro/v2"
)

// Schema is a reference-counted Avro schema.
type Schema struct {
	lib       *Library
	compiled  *goavro.Codec
	name      string
	namespace string
	spec      string
	node      any
	symbols   []string
	typ       Type
	size      int
	refs      int32
	token     Token
	static    bool
}

// Incref takes an additional reference and returns s.
func (s *Schema) Incref() *Schema {
	if s.refs <= 0 {
		panic("codec: incref of released schema")
	}
	s.refs++
	return s
}

// Decref releases one reference, freeing the schema at zero.
func (s *Schema) Decref() {
	if s.refs <= 0 {
		return
	}
	s.refs--
	if s.refs == 0 {
		s.lib.freeSchema(s)
	}
}

// Refs returns the current reference count.
func (s *Schema) Refs() int {
	return int(s.refs)
}

// Released reports whether the schema has been freed.
func (s *Schema) Released() bool {
	return s.refs <= 0
}

// Token returns the raw identity of the schema.
func (s *Schema) Token() Token {
	return s.token
}

// Type returns the schema's kind.
func (s *Schema) Type() Type {
	return s.typ
}

// Static reports whether the schema is an interned primitive.
func (s *Schema) Static() bool {
	return s.static
}

// TypeName returns the declared name for record, enum and fixed schemas,
// and the type name ("int", "array", "union", ...) for the others.
func (s *Schema) TypeName() string {
	if s.typ.IsNamed() {
		return s.name
	}
	return s.typ.String()
}

// FullName returns the namespace-qualified name for named schemas and
// TypeName otherwise.
func (s *Schema) FullName() string {
	if s.typ.IsNamed() && s.namespace != "" {
		return s.namespace + "." + s.name
	}
	return s.TypeName()
}

// Namespace returns the namespace of a named schema.
func (s *Schema) Namespace() string {
	return s.namespace
}

// Symbols returns the symbols of an enum schema.
func (s *Schema) Symbols() []string {
	return s.symbols
}

// Size returns the byte size of a fixed schema.
func (s *Schema) Size() int {
	return s.size
}

// Canonical returns the Parsing Canonical Form of the schema.
// It is empty until the schema has been compiled by Parse or InterfaceFor.
func (s *Schema) Canonical() string {
	if s.compiled == nil {
		return ""
	}
	return s.compiled.CanonicalSchema()
}

// Fingerprint returns the CRC-64-AVRO Rabin fingerprint of the canonical
// form, or 0 when the schema has not been compiled.
func (s *Schema) Fingerprint() uint64 {
	if s.compiled == nil {
		return 0
	}
	return s.compiled.Rabin
}

// introspect fills kind and naming fields from decoded schema JSON.
func (s *Schema) introspect(node any) error {
	switch n := node.(type) {
	case string:
		t, ok := PrimitiveType(n)
		if !ok {
			return fmt.Errorf("unknown top-level type name %q", n)
		}
		s.typ = t
		return nil

	case []any:
		s.typ = TypeUnion
		return nil

	case map[string]any:
		return s.introspectObject(n)
	}
	return fmt.Errorf("schema must be a string, object or array, got %T", node)
}

func (s *Schema) introspectObject(obj map[string]any) error {
	switch t := obj["type"].(type) {
	case string:
		switch t {
		case "record", "error":
			s.typ = TypeRecord
		case "enum":
			s.typ = TypeEnum
			if syms, ok := obj["symbols"].([]any); ok {
				s.symbols = make([]string, 0, len(syms))
				for _, sym := range syms {
					if str, ok := sym.(string); ok {
						s.symbols = append(s.symbols, str)
					}
				}
			}
		case "fixed":
			s.typ = TypeFixed
			if size, ok := obj["size"].(float64); ok {
				s.size = int(size)
			}
		case "array":
			s.typ = TypeArray
		case "map":
			s.typ = TypeMap
		default:
			prim, ok := PrimitiveType(t)
			if !ok {
				return fmt.Errorf("unknown top-level type name %q", t)
			}
			s.typ = prim
			return nil
		}

	case map[string]any, []any:
		return s.introspect(t)

	default:
		return fmt.Errorf("schema object has no usable \"type\" attribute")
	}

	if s.typ.IsNamed() {
		name, _ := obj["name"].(string)
		namespace, _ := obj["namespace"].(string)
		if i := strings.LastIndexByte(name, '.'); i >= 0 {
			namespace = name[:i]
			name = name[i+1:]
		}
		s.name = name
		s.namespace = namespace
	}
	return nil
}
