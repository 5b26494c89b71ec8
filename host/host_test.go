package host

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/segmentio/encoding/json"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wippyai/avro-runtime/codec"
	"github.com/wippyai/avro-runtime/errors"
	"github.com/wippyai/avro-runtime/internal/guest"
)

const userSchema = `{"type":"record","name":"User","fields":[{"name":"name","type":"string"},{"name":"age","type":"int"}]}`

// Scratch offsets in guest memory.
const (
	inPtr  = 0
	outPtr = 4096
	outCap = 1024
)

type harness struct {
	t     *testing.T
	ctx   context.Context
	rt    wazero.Runtime
	host  *Module
	hmod  api.Module
	guest api.Module
	logs  *observer.ObservedLogs
}

func newHarness(t *testing.T, opts codec.Options) *harness {
	t.Helper()
	ctx := context.Background()

	core, logs := observer.New(zapcore.DebugLevel)
	h := New(codec.New(opts), Options{Logger: zap.New(core)})

	rt := wazero.NewRuntime(ctx)
	t.Cleanup(func() { rt.Close(ctx) })

	hmod, err := h.Instantiate(ctx, rt)
	if err != nil {
		t.Fatalf("instantiate host: %v", err)
	}

	b := guest.NewBuilder(ModuleName)
	for _, s := range Signatures() {
		b.Import(s.Name, s.Params, s.Results)
	}
	mod, err := rt.Instantiate(ctx, b.Build())
	if err != nil {
		t.Fatalf("instantiate guest: %v", err)
	}

	return &harness{t: t, ctx: ctx, rt: rt, host: h, hmod: hmod, guest: mod, logs: logs}
}

func (h *harness) call(name string, args ...uint64) []uint64 {
	h.t.Helper()
	fn := h.guest.ExportedFunction(guest.TrampolinePrefix + name)
	if fn == nil {
		h.t.Fatalf("guest has no trampoline for %s", name)
	}
	res, err := fn.Call(h.ctx, args...)
	if err != nil {
		h.t.Fatalf("%s: %v", name, err)
	}
	// Every result is an i32.
	for i := range res {
		res[i] = uint64(uint32(res[i]))
	}
	return res
}

func (h *harness) put(data string) uint64 {
	h.t.Helper()
	if !h.guest.Memory().Write(inPtr, []byte(data)) {
		h.t.Fatal("write guest memory")
	}
	return uint64(len(data))
}

func (h *harness) out(n uint64) []byte {
	h.t.Helper()
	b, ok := h.guest.Memory().Read(outPtr, uint32(n))
	if !ok {
		h.t.Fatal("read guest memory")
	}
	return append([]byte(nil), b...)
}

func (h *harness) schema(text string) (uint64, uint64) {
	h.t.Helper()
	res := h.call("schema", inPtr, h.put(text))
	if res[0] == 0 {
		h.t.Fatalf("schema(%q) failed: %v", text, h.host.LastError())
	}
	return res[0], res[1]
}

func asI32(v uint64) int32 {
	return api.DecodeI32(v)
}

func requireKind(t *testing.T, err error, kind errors.Kind) {
	t.Helper()
	if !errors.IsKind(err, kind) {
		t.Fatalf("expected %s error, got %v", kind, err)
	}
}

func TestSchemaPrimitive(t *testing.T) {
	h := newHarness(t, codec.DefaultOptions())

	sh, tok := h.schema("int")
	if tok == 0 {
		t.Fatal("expected non-zero token")
	}
	if got := asI32(h.call("schema_type", sh)[0]); got != int32(codec.TypeInt) {
		t.Fatalf("schema_type = %d, want %d", got, codec.TypeInt)
	}

	n := h.call("schema_name", sh, outPtr, outCap)[0]
	if got := string(h.out(n)); got != "int" {
		t.Fatalf("schema_name = %q", got)
	}
	if h.host.Library().Stats().Parses != 0 {
		t.Fatal("primitive name went through the parser")
	}
}

func TestSchemaRecordAndPassThrough(t *testing.T) {
	h := newHarness(t, codec.DefaultOptions())

	sh, tok := h.schema(userSchema)
	if got := asI32(h.call("schema_type", sh)[0]); got != int32(codec.TypeRecord) {
		t.Fatalf("schema_type = %d", got)
	}

	res := h.call("schema_handle", sh)
	if d := cmp.Diff([]uint64{sh, tok}, res); d != "" {
		t.Fatalf("pass-through (-want +got):\n%s", d)
	}
	if s, v := h.host.Handles(); s != 1 || v != 0 {
		t.Fatalf("handles = %d schemas, %d values", s, v)
	}
}

func TestSchemaNameBounded(t *testing.T) {
	h := newHarness(t, codec.DefaultOptions())

	sh, _ := h.schema(userSchema)
	h.guest.Memory().Write(outPtr, []byte("xx"))

	n := h.call("schema_name", sh, outPtr, 2)[0]
	if n != 4 {
		t.Fatalf("schema_name length = %d, want 4", n)
	}
	if got := string(h.out(2)); got != "xx" {
		t.Fatalf("short buffer was written: %q", got)
	}
}

func TestValueLifecycle(t *testing.T) {
	h := newHarness(t, codec.DefaultOptions())
	lib := h.host.Library()

	sh, _ := h.schema(userSchema)

	v := h.call("schema_new_raw_value", sh, 0)[0]
	if v == 0 {
		t.Fatalf("new value failed: %v", h.host.LastError())
	}

	for i, rec := range []string{"\x06bob\x3c", "\x04al\x0e"} {
		if got := h.call("schema_new_raw_value", sh, v)[0]; got != v {
			t.Fatalf("cycle %d: reuse returned %d, want %d", i, got, v)
		}
		if st := asI32(h.call("value_decode", v, inPtr, h.put(rec))[0]); st != 0 {
			t.Fatalf("cycle %d: decode status %d: %v", i, st, h.host.LastError())
		}
		n := h.call("value_encode", v, outPtr, outCap)[0]
		if got := string(h.out(n)); got != rec {
			t.Fatalf("cycle %d: encode = %x, want %x", i, got, rec)
		}
	}

	if got := lib.Stats().LiveValues; got != 1 {
		t.Fatalf("live values = %d, want 1", got)
	}
	if got := lib.Stats().Derivations; got != 1 {
		t.Fatalf("derivations = %d, want 1", got)
	}

	n := h.call("value_to_json", v, outPtr, outCap)[0]
	var doc map[string]any
	if err := json.Unmarshal(h.out(n), &doc); err != nil {
		t.Fatalf("value_to_json output: %v", err)
	}
	if d := cmp.Diff(map[string]any{"name": "al", "age": float64(7)}, doc); d != "" {
		t.Fatalf("json (-want +got):\n%s", d)
	}

	if st := asI32(h.call("value_from_json", v, inPtr, h.put(`{"name":"eve","age":1}`))[0]); st != 0 {
		t.Fatalf("value_from_json: %v", h.host.LastError())
	}
	n = h.call("value_encode", v, outPtr, outCap)[0]
	if d := cmp.Diff([]byte("\x06eve\x02"), h.out(n)); d != "" {
		t.Fatalf("encoded (-want +got):\n%s", d)
	}

	h.call("value_drop", v)
	h.call("schema_drop", sh)

	if s, vs := h.host.Handles(); s != 0 || vs != 0 {
		t.Fatalf("handles left: %d schemas, %d values", s, vs)
	}
	stats := lib.Stats()
	if stats.LiveSchemas != 0 || stats.LiveInterfaces != 0 || stats.LiveValues != 0 {
		t.Fatalf("live objects after drop: %+v", stats)
	}
}

func TestValueOutlivesSchemaHandle(t *testing.T) {
	h := newHarness(t, codec.DefaultOptions())

	sh, _ := h.schema("long")
	v := h.call("schema_new_raw_value", sh, 0)[0]
	h.call("schema_drop", sh)

	n := h.call("value_encode", v, outPtr, outCap)[0]
	if d := cmp.Diff([]byte{0x00}, h.out(n)); d != "" {
		t.Fatalf("encoded zero long (-want +got):\n%s", d)
	}
	h.call("value_drop", v)

	if got := h.host.Library().Stats().LiveInterfaces; got != 0 {
		t.Fatalf("live interfaces = %d", got)
	}
}

func TestErrors(t *testing.T) {
	h := newHarness(t, codec.DefaultOptions())

	sh, _ := h.schema("string")
	v := h.call("schema_new_raw_value", sh, 0)[0]

	tests := []struct {
		name string
		call func() []uint64
		want []uint64
		kind errors.Kind
	}{
		{
			name: "unknown handle",
			call: func() []uint64 { return h.call("schema_type", 999) },
			want: []uint64{uint64(uint32(0xffffffff))},
			kind: errors.KindNotFound,
		},
		{
			name: "value used as schema",
			call: func() []uint64 { return h.call("schema_type", v) },
			want: []uint64{uint64(uint32(0xffffffff))},
			kind: errors.KindTypeMismatch,
		},
		{
			name: "schema used as value",
			call: func() []uint64 { return h.call("schema_new_raw_value", sh, sh) },
			want: []uint64{0},
			kind: errors.KindTypeMismatch,
		},
		{
			name: "bad schema json",
			call: func() []uint64 { return h.call("schema", inPtr, h.put(`{"type":"nope"}`)) },
			want: []uint64{0, 0},
			kind: errors.KindSchema,
		},
		{
			name: "null token",
			call: func() []uint64 { return h.call("new_raw_schema", 0) },
			want: []uint64{0, 0},
			kind: errors.KindNullSchema,
		},
		{
			name: "unknown token",
			call: func() []uint64 { return h.call("new_raw_schema", 4242) },
			want: []uint64{0, 0},
			kind: errors.KindInvalidInput,
		},
		{
			name: "read out of range",
			call: func() []uint64 { return h.call("schema", 0xffff0000, 16) },
			want: []uint64{0, 0},
			kind: errors.KindInvalidInput,
		},
		{
			name: "truncated data",
			call: func() []uint64 { return h.call("value_decode", v, inPtr, h.put("\x10ab")) },
			want: []uint64{uint64(uint32(0xffffffff))},
			kind: errors.KindInvalidData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if d := cmp.Diff(tt.want, tt.call()); d != "" {
				t.Fatalf("results (-want +got):\n%s", d)
			}
			requireKind(t, h.host.LastError(), tt.kind)
		})
	}
}

func TestLastError(t *testing.T) {
	h := newHarness(t, codec.DefaultOptions())

	if n := h.call("last_error", outPtr, outCap)[0]; n != 0 {
		t.Fatalf("last_error before any failure = %d bytes", n)
	}

	h.call("schema_type", 77)
	n := h.call("last_error", outPtr, outCap)[0]
	msg := string(h.out(n))
	if !strings.Contains(msg, "not found") {
		t.Fatalf("last_error = %q", msg)
	}
	if msg != h.host.LastError().Error() {
		t.Fatalf("guest saw %q, host has %q", msg, h.host.LastError())
	}

	entries := h.logs.FilterMessage("host call failed").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 failure log, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["func"]; got != "schema_type" {
		t.Fatalf("logged func = %v", got)
	}
}

func TestDropWrongKind(t *testing.T) {
	h := newHarness(t, codec.DefaultOptions())

	sh, _ := h.schema("int")
	h.call("value_drop", sh)
	requireKind(t, h.host.LastError(), errors.KindTypeMismatch)

	if s, _ := h.host.Handles(); s != 1 {
		t.Fatal("value_drop removed a schema handle")
	}
}

func TestNewRawSchemaAdopts(t *testing.T) {
	h := newHarness(t, codec.DefaultOptions())
	lib := h.host.Library()

	s, err := lib.Parse(userSchema)
	if err != nil {
		t.Fatal(err)
	}

	res := h.call("new_raw_schema", uint64(s.Token()))
	if res[0] == 0 || res[1] != uint64(s.Token()) {
		t.Fatalf("new_raw_schema = %v: %v", res, h.host.LastError())
	}
	if s.Refs() != 1 {
		t.Fatalf("refs = %d, want 1", s.Refs())
	}

	h.call("schema_drop", res[0])
	if !s.Released() {
		t.Fatal("dropping the adopting handle did not free the schema")
	}
}

func TestValueLimit(t *testing.T) {
	h := newHarness(t, codec.Options{MaxValues: 1})

	sh, _ := h.schema("int")
	v := h.call("schema_new_raw_value", sh, 0)[0]
	if v == 0 {
		t.Fatal(h.host.LastError())
	}

	if got := h.call("schema_new_raw_value", sh, 0)[0]; got != 0 {
		t.Fatal("construction past the limit succeeded")
	}
	requireKind(t, h.host.LastError(), errors.KindValueConstruction)
	requireKind(t, h.host.LastError(), errors.KindAllocation)

	if got := h.call("schema_new_raw_value", sh, v)[0]; got != v {
		t.Fatalf("reuse within the limit failed: %v", h.host.LastError())
	}

	if got := asI32(h.call("value_encode", v, outPtr, outCap)[0]); got < 0 {
		t.Fatalf("encode after reuse: %v", h.host.LastError())
	}
}

func TestCloseReleasesHandles(t *testing.T) {
	h := newHarness(t, codec.DefaultOptions())
	lib := h.host.Library()

	sh, _ := h.schema(userSchema)
	h.call("schema_new_raw_value", sh, 0)
	h.call("schema_new_raw_value", sh, 0)

	if err := h.host.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	stats := lib.Stats()
	if stats.LiveSchemas != 0 || stats.LiveInterfaces != 0 || stats.LiveValues != 0 {
		t.Fatalf("live objects after Close: %+v", stats)
	}
	if n := h.logs.FilterMessage("handle dropped").Len(); n != 3 {
		t.Fatalf("expected 3 dropped handles, got %d", n)
	}

	if res := h.call("schema", inPtr, h.put("int")); res[0] != 0 {
		t.Fatal("schema succeeded after Close")
	}
	if s, _ := h.host.Handles(); s != 0 {
		t.Fatal("closed table accepted a handle")
	}
	if lib.Stats().LiveSchemas != 0 {
		t.Fatal("rejected handle leaked its schema")
	}
}

func TestInstantiateTwice(t *testing.T) {
	h := newHarness(t, codec.DefaultOptions())

	_, err := New(h.host.Library(), DefaultOptions()).Instantiate(h.ctx, h.rt)
	requireKind(t, err, errors.KindRegistration)
}

func TestGuestWithoutMemory(t *testing.T) {
	h := newHarness(t, codec.DefaultOptions())

	// The host module itself has no memory.
	stack := []uint64{0, 3}
	requireKind(t, callSchema(h.host, h.hmod, stack), errors.KindNotFound)

	b := guest.NewBuilder(ModuleName).WithoutMemory()
	for _, s := range Signatures() {
		b.Import(s.Name, s.Params, s.Results)
	}
	mod, err := h.rt.InstantiateWithConfig(h.ctx, b.Build(), wazero.NewModuleConfig().WithName("nomem"))
	if err != nil {
		t.Fatalf("instantiate guest: %v", err)
	}

	sh, _ := h.schema("int")
	fail := []uint64{uint64(uint32(0xffffffff))}
	tests := []struct {
		name string
		args []uint64
		want []uint64
	}{
		{"schema", []uint64{0, 3}, []uint64{0, 0}},
		{"schema_name", []uint64{sh, 0, 16}, fail},
		{"last_error", []uint64{0, 16}, fail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := mod.ExportedFunction(guest.TrampolinePrefix+tt.name).Call(h.ctx, tt.args...)
			if err != nil {
				t.Fatalf("call trapped: %v", err)
			}
			for i := range res {
				res[i] = uint64(uint32(res[i]))
			}
			if d := cmp.Diff(tt.want, res); d != "" {
				t.Errorf("results (-want +got):\n%s", d)
			}
			requireKind(t, h.host.LastError(), errors.KindNotFound)
		})
	}
}

func TestSignatures(t *testing.T) {
	var names []string
	for _, s := range Signatures() {
		names = append(names, s.Name)
	}
	want := []string{
		"schema", "schema_handle", "new_raw_schema", "schema_type", "schema_name",
		"schema_new_raw_value", "schema_drop", "value_drop",
		"value_encode", "value_to_json", "value_decode", "value_from_json", "last_error",
	}
	if d := cmp.Diff(want, names); d != "" {
		t.Fatalf("exports (-want +got):\n%s", d)
	}
}
