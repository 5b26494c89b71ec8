package codec

// Type is the kind tag of a schema. The numbering follows avro-c's
// avro_type_t so hosts that exchanged numeric tags with the C library
// keep the same values.
type Type int

const (
	TypeString Type = iota
	TypeBytes
	TypeInt
	TypeLong
	TypeFloat
	TypeDouble
	TypeBoolean
	TypeNull
	TypeRecord
	TypeEnum
	TypeFixed
	TypeMap
	TypeArray
	TypeUnion

	// TypeInvalid is reported for released schemas.
	TypeInvalid Type = -1
)

var typeNames = [...]string{
	TypeString:  "string",
	TypeBytes:   "bytes",
	TypeInt:     "int",
	TypeLong:    "long",
	TypeFloat:   "float",
	TypeDouble:  "double",
	TypeBoolean: "boolean",
	TypeNull:    "null",
	TypeRecord:  "record",
	TypeEnum:    "enum",
	TypeFixed:   "fixed",
	TypeMap:     "map",
	TypeArray:   "array",
	TypeUnion:   "union",
}

// Primitives lists the primitive types in tag order.
var Primitives = []Type{
	TypeString, TypeBytes, TypeInt, TypeLong,
	TypeFloat, TypeDouble, TypeBoolean, TypeNull,
}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return "invalid"
	}
	return typeNames[t]
}

// IsPrimitive reports whether t is one of the eight primitive types.
func (t Type) IsPrimitive() bool {
	return t >= TypeString && t <= TypeNull
}

// IsNamed reports whether schemas of type t carry a declared name.
func (t Type) IsNamed() bool {
	return t == TypeRecord || t == TypeEnum || t == TypeFixed
}

// PrimitiveType maps a primitive type name to its tag.
func PrimitiveType(name string) (Type, bool) {
	switch name {
	case "string":
		return TypeString, true
	case "bytes":
		return TypeBytes, true
	case "int":
		return TypeInt, true
	case "long":
		return TypeLong, true
	case "float":
		return TypeFloat, true
	case "double":
		return TypeDouble, true
	case "boolean":
		return TypeBoolean, true
	case "null":
		return TypeNull, true
	}
	return TypeInvalid, false
}
