package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseEncode,
				Kind:   KindInvalidData,
				Path:   []string{"user", "address", "zip"},
				Schema: "com.example.User",
				Detail: "cannot encode",
			},
			contains: []string{"[encode]", "invalid_data", "user.address.zip", "com.example.User", "cannot encode"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseDecode,
				Kind:  KindInvalidData,
			},
			contains: []string{"[decode]", "invalid_data"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseConstruct,
				Kind:   KindAllocation,
				Detail: "value limit",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[construct]", "allocation", "value limit", "caused by", "underlying error"},
		},
		{
			name:     "no phase",
			err:      &Error{Kind: KindNullSchema},
			contains: []string{"null_schema"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseEncode,
		Kind:  KindInvalidData,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseParse,
		Kind:  KindSchema,
		Path:  []string{"foo"},
	}

	if !err.Is(&Error{Phase: PhaseParse, Kind: KindSchema}) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhaseDerive, Kind: KindSchema}) {
		t.Error("Is should not match different phase")
	}
	if err.Is(&Error{Phase: PhaseParse, Kind: KindInvalidInput}) {
		t.Error("Is should not match different kind")
	}
	if !errors.Is(err, ErrSchema) {
		t.Error("errors.Is should match the phase-less sentinel")
	}
	if errors.Is(err, ErrNullSchema) {
		t.Error("errors.Is should not match another kind's sentinel")
	}
}

func TestIsKind(t *testing.T) {
	inner := AllocationFailed(PhaseConstruct, 4, 4)
	outer := ValueConstruction("User", inner)

	if !IsKind(outer, KindValueConstruction) {
		t.Error("IsKind should match the outer kind")
	}
	if !IsKind(outer, KindAllocation) {
		t.Error("IsKind should match a kind further down the chain")
	}
	if IsKind(outer, KindSchema) {
		t.Error("IsKind should not match an absent kind")
	}
	if IsKind(errors.New("plain"), KindSchema) {
		t.Error("IsKind should not match a plain error")
	}
	if IsKind(nil, KindSchema) {
		t.Error("IsKind(nil) should be false")
	}
	if got := KindOf(outer); got != KindValueConstruction {
		t.Errorf("KindOf = %v, want %v", got, KindValueConstruction)
	}
	if got := KindOf(errors.New("plain")); got != "" {
		t.Errorf("KindOf(plain) = %v, want empty", got)
	}
}

func TestError_Message(t *testing.T) {
	cause := errors.New("Unknown type name: \"nope\"")
	err := SchemaFailed(PhaseParse, cause)
	if err.Message() != cause.Error() {
		t.Errorf("Message = %q, want verbatim cause %q", err.Message(), cause.Error())
	}

	err = InvalidInput(PhaseBind, "bad input")
	if err.Message() != "bad input" {
		t.Errorf("Message = %q, want detail", err.Message())
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseDecode, KindInvalidData).
		Path("user", "name").
		Schema("User").
		Value(42).
		Cause(cause).
		Detail("expected %s, got %s", "string", "int").
		Build()

	if err.Phase != PhaseDecode {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseDecode)
	}
	if err.Kind != KindInvalidData {
		t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidData)
	}
	if len(err.Path) != 2 || err.Path[0] != "user" || err.Path[1] != "name" {
		t.Errorf("Path = %v, want [user name]", err.Path)
	}
	if err.Schema != "User" {
		t.Errorf("Schema = %v, want 'User'", err.Schema)
	}
	if err.Value != 42 {
		t.Errorf("Value = %v, want 42", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "expected string, got int" {
		t.Errorf("Detail = %v, want 'expected string, got int'", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	tests := []struct {
		name  string
		err   *Error
		kind  Kind
		phase Phase
	}{
		{"InvalidInput", InvalidInput(PhaseBind, "x"), KindInvalidInput, PhaseBind},
		{"NullSchema", NullSchema(PhaseBind, "x"), KindNullSchema, PhaseBind},
		{"SchemaFailed", SchemaFailed(PhaseDerive, errors.New("x")), KindSchema, PhaseDerive},
		{"ValueConstruction", ValueConstruction("int", errors.New("x")), KindValueConstruction, PhaseConstruct},
		{"Released", Released(PhaseEncode, "value"), KindReleased, PhaseEncode},
		{"AllocationFailed", AllocationFailed(PhaseConstruct, 8, 8), KindAllocation, PhaseConstruct},
		{"NotFound", NotFound(PhaseHost, "handle", 7), KindNotFound, PhaseHost},
		{"TypeMismatch", TypeMismatch(PhaseHost, "schema", "value"), KindTypeMismatch, PhaseHost},
		{"Registration", Registration(PhaseHost, "avro.legacy", "schema", errors.New("x")), KindRegistration, PhaseHost},
		{"Wrap", Wrap(PhaseEncode, KindInvalidData, errors.New("x"), "d"), KindInvalidData, PhaseEncode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", tt.err.Kind, tt.kind)
			}
			if tt.err.Phase != tt.phase {
				t.Errorf("Phase = %v, want %v", tt.err.Phase, tt.phase)
			}
		})
	}

	t.Run("AllocationFailed detail", func(t *testing.T) {
		err := AllocationFailed(PhaseConstruct, 1024, 1024)
		if !strings.Contains(err.Detail, "1024") {
			t.Errorf("Detail = %v, should contain the limit", err.Detail)
		}
	})

	t.Run("NotFound value", func(t *testing.T) {
		err := NotFound(PhaseHost, "handle", 7)
		if err.Value != 7 {
			t.Errorf("Value = %v, want 7", err.Value)
		}
	})
}
