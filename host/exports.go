package host

import (
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/avro-runtime/binding"
	"github.com/wippyai/avro-runtime/codec"
	"github.com/wippyai/avro-runtime/resource"
)

// Signature describes one exported host function.
type Signature struct {
	Name    string
	Params  []api.ValueType
	Results []api.ValueType
}

// Signatures lists the functions of ModuleName in registration order.
func Signatures() []Signature {
	out := make([]Signature, len(exports))
	for i, e := range exports {
		out[i] = Signature{Name: e.name, Params: e.params, Results: e.results}
	}
	return out
}

type export struct {
	call    func(m *Module, mod api.Module, stack []uint64) error
	name    string
	params  []api.ValueType
	results []api.ValueType
	onError []uint64
}

var (
	i32 = api.ValueTypeI32

	failHandle = []uint64{0, 0}
	failI32    = []uint64{api.EncodeI32(-1)}
)

var exports = []export{
	{name: "schema", params: []api.ValueType{i32, i32}, results: []api.ValueType{i32, i32}, onError: failHandle, call: callSchema},
	{name: "schema_handle", params: []api.ValueType{i32}, results: []api.ValueType{i32, i32}, onError: failHandle, call: callSchemaHandle},
	{name: "new_raw_schema", params: []api.ValueType{i32}, results: []api.ValueType{i32, i32}, onError: failHandle, call: callNewRawSchema},
	{name: "schema_type", params: []api.ValueType{i32}, results: []api.ValueType{i32}, onError: failI32, call: callSchemaType},
	{name: "schema_name", params: []api.ValueType{i32, i32, i32}, results: []api.ValueType{i32}, onError: failI32, call: callSchemaName},
	{name: "schema_new_raw_value", params: []api.ValueType{i32, i32}, results: []api.ValueType{i32}, onError: []uint64{0}, call: callSchemaNewRawValue},
	{name: "schema_drop", params: []api.ValueType{i32}, call: callSchemaDrop},
	{name: "value_drop", params: []api.ValueType{i32}, call: callValueDrop},
	{name: "value_encode", params: []api.ValueType{i32, i32, i32}, results: []api.ValueType{i32}, onError: failI32, call: callValueEncode},
	{name: "value_to_json", params: []api.ValueType{i32, i32, i32}, results: []api.ValueType{i32}, onError: failI32, call: callValueToJSON},
	{name: "value_decode", params: []api.ValueType{i32, i32, i32}, results: []api.ValueType{i32}, onError: failI32, call: callValueDecode},
	{name: "value_from_json", params: []api.ValueType{i32, i32, i32}, results: []api.ValueType{i32}, onError: failI32, call: callValueFromJSON},
	{name: "last_error", params: []api.ValueType{i32, i32}, results: []api.ValueType{i32}, onError: failI32, call: callLastError},
}

func callSchema(m *Module, mod api.Module, stack []uint64) error {
	mem, err := memoryOf(mod)
	if err != nil {
		return err
	}
	text, err := readString(mem, api.DecodeU32(stack[0]), api.DecodeU32(stack[1]))
	if err != nil {
		return err
	}
	sh, tok, err := m.bind.Schema(text)
	if err != nil {
		return err
	}
	h, err := m.insert(resource.TypeSchema, sh)
	if err != nil {
		return err
	}
	stack[0], stack[1] = uint64(h), uint64(tok)
	return nil
}

// callSchemaHandle passes an existing handle through: same handle, same
// token, no new table entry.
func callSchemaHandle(m *Module, _ api.Module, stack []uint64) error {
	h := api.DecodeU32(stack[0])
	sh, err := m.schemaAt(h)
	if err != nil {
		return err
	}
	_, tok, err := m.bind.Schema(sh)
	if err != nil {
		return err
	}
	stack[0], stack[1] = uint64(h), uint64(tok)
	return nil
}

func callNewRawSchema(m *Module, _ api.Module, stack []uint64) error {
	sh, tok, err := m.bind.NewRawSchema(codec.Token(api.DecodeU32(stack[0])))
	if err != nil {
		return err
	}
	h, err := m.insert(resource.TypeSchema, sh)
	if err != nil {
		return err
	}
	stack[0], stack[1] = uint64(h), uint64(tok)
	return nil
}

func callSchemaType(m *Module, _ api.Module, stack []uint64) error {
	sh, err := m.schemaAt(api.DecodeU32(stack[0]))
	if err != nil {
		return err
	}
	stack[0] = api.EncodeI32(int32(sh.Type()))
	return nil
}

func callSchemaName(m *Module, mod api.Module, stack []uint64) error {
	sh, err := m.schemaAt(api.DecodeU32(stack[0]))
	if err != nil {
		return err
	}
	mem, err := memoryOf(mod)
	if err != nil {
		return err
	}
	n, err := writeBounded(mem, api.DecodeU32(stack[1]), api.DecodeU32(stack[2]), []byte(sh.Name()))
	if err != nil {
		return err
	}
	stack[0] = uint64(n)
	return nil
}

func callSchemaNewRawValue(m *Module, _ api.Module, stack []uint64) error {
	sh, err := m.schemaAt(api.DecodeU32(stack[0]))
	if err != nil {
		return err
	}

	if vh := api.DecodeU32(stack[1]); vh != 0 {
		existing, err := m.valueAt(vh)
		if err != nil {
			return err
		}
		if _, err := sh.NewRawValue(existing); err != nil {
			return err
		}
		stack[0] = uint64(vh)
		return nil
	}

	v, err := sh.NewRawValue(nil)
	if err != nil {
		return err
	}
	h, err := m.insert(resource.TypeValue, v)
	if err != nil {
		return err
	}
	stack[0] = uint64(h)
	return nil
}

func callSchemaDrop(m *Module, _ api.Module, stack []uint64) error {
	h := api.DecodeU32(stack[0])
	if _, err := m.schemaAt(h); err != nil {
		return err
	}
	m.table.Remove(resource.Handle(h))
	return nil
}

func callValueDrop(m *Module, _ api.Module, stack []uint64) error {
	h := api.DecodeU32(stack[0])
	if _, err := m.valueAt(h); err != nil {
		return err
	}
	m.table.Remove(resource.Handle(h))
	return nil
}

func callValueEncode(m *Module, mod api.Module, stack []uint64) error {
	return encodeInto(m, mod, stack, codec.Value.EncodeBinary)
}

func callValueToJSON(m *Module, mod api.Module, stack []uint64) error {
	return encodeInto(m, mod, stack, codec.Value.EncodeJSON)
}

func callValueDecode(m *Module, mod api.Module, stack []uint64) error {
	return decodeFrom(m, mod, stack, codec.Value.DecodeBinary)
}

func callValueFromJSON(m *Module, mod api.Module, stack []uint64) error {
	return decodeFrom(m, mod, stack, codec.Value.DecodeJSON)
}

func encodeInto(m *Module, mod api.Module, stack []uint64, encode func(codec.Value, []byte) ([]byte, error)) error {
	vh, err := m.valueAt(api.DecodeU32(stack[0]))
	if err != nil {
		return err
	}
	mem, err := memoryOf(mod)
	if err != nil {
		return err
	}
	out, err := encode(vh.Value(), nil)
	if err != nil {
		return err
	}
	n, err := writeBounded(mem, api.DecodeU32(stack[1]), api.DecodeU32(stack[2]), out)
	if err != nil {
		return err
	}
	stack[0] = uint64(n)
	return nil
}

func decodeFrom(m *Module, mod api.Module, stack []uint64, decode func(codec.Value, []byte) ([]byte, error)) error {
	vh, err := m.valueAt(api.DecodeU32(stack[0]))
	if err != nil {
		return err
	}
	mem, err := memoryOf(mod)
	if err != nil {
		return err
	}
	in, err := mem.Read(api.DecodeU32(stack[1]), api.DecodeU32(stack[2]))
	if err != nil {
		return err
	}
	if _, err := decode(vh.Value(), in); err != nil {
		return err
	}
	stack[0] = 0
	return nil
}

// callLastError copies the most recent failure message, or nothing.
func callLastError(m *Module, mod api.Module, stack []uint64) error {
	var msg []byte
	if m.lastErr != nil {
		msg = []byte(m.lastErr.Error())
	}
	mem, err := memoryOf(mod)
	if err != nil {
		return err
	}
	n, err := writeBounded(mem, api.DecodeU32(stack[0]), api.DecodeU32(stack[1]), msg)
	if err != nil {
		return err
	}
	stack[0] = uint64(n)
	return nil
}

var (
	_ resource.Dropper = (*binding.SchemaHandle)(nil)
	_ resource.Dropper = (*binding.ValueHandle)(nil)
)
