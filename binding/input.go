package binding

import (
	"fmt"

	"github.com/wippyai/avro-runtime/codec"
	"github.com/wippyai/avro-runtime/errors"
)

// InputKind is the tag of a classified schema argument.
type InputKind uint8

const (
	InputInvalid InputKind = iota
	InputPrimitive
	InputJSON
	InputHandle
	InputToken
)

var inputKindNames = [...]string{
	InputInvalid:   "invalid",
	InputPrimitive: "primitive",
	InputJSON:      "json",
	InputHandle:    "handle",
	InputToken:     "token",
}

func (k InputKind) String() string {
	if int(k) < len(inputKindNames) {
		return inputKindNames[k]
	}
	return fmt.Sprintf("InputKind(%d)", k)
}

// Input is a schema argument classified once at the boundary. Only the
// field matching Kind is set.
type Input struct {
	Handle    *SchemaHandle
	Text      string
	Kind      InputKind
	Primitive codec.Type
	Token     codec.Token
}

// Classify tags a host argument. Strings naming a primitive type become
// InputPrimitive, other strings and byte slices InputJSON. A nil handle or
// any other Go type is rejected with KindInvalidInput.
func Classify(v any) (Input, error) {
	switch x := v.(type) {
	case string:
		return classifyText(x), nil
	case []byte:
		return classifyText(string(x)), nil
	case *SchemaHandle:
		if x == nil {
			return Input{}, errors.InvalidInput(errors.PhaseBind, "nil schema handle")
		}
		return Input{Kind: InputHandle, Handle: x}, nil
	case codec.Token:
		return Input{Kind: InputToken, Token: x}, nil
	}
	return Input{}, errors.New(errors.PhaseBind, errors.KindInvalidInput).
		Value(v).
		Detail("expected a primitive name, schema JSON or schema handle, got %T", v).
		Build()
}

func classifyText(s string) Input {
	if t, ok := codec.PrimitiveType(s); ok {
		return Input{Kind: InputPrimitive, Primitive: t}
	}
	return Input{Kind: InputJSON, Text: s}
}
