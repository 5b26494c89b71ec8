package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseBind      Phase = "bind"      // host boundary, input classification
	PhaseParse     Phase = "parse"     // schema JSON parsing
	PhaseDerive    Phase = "derive"    // interface derivation
	PhaseConstruct Phase = "construct" // value construction
	PhaseEncode    Phase = "encode"    // native to Avro
	PhaseDecode    Phase = "decode"    // Avro to native
	PhaseHost      Phase = "host"      // host module registration and calls
)

// Kind categorizes the error
type Kind string

const (
	KindInvalidInput      Kind = "invalid_input"
	KindNullSchema        Kind = "null_schema"
	KindSchema            Kind = "schema"
	KindValueConstruction Kind = "value_construction"
	KindAllocation        Kind = "allocation"
	KindReleased          Kind = "released"
	KindInvalidData       Kind = "invalid_data"
	KindTypeMismatch      Kind = "type_mismatch"
	KindNotFound          Kind = "not_found"
	KindRegistration      Kind = "registration"
)

// Error is the structured error type used throughout the module
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Schema string
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	if e.Phase != "" {
		b.WriteByte('[')
		b.WriteString(string(e.Phase))
		b.WriteString("] ")
	}
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Schema != "" {
		b.WriteString(": schema ")
		b.WriteString(e.Schema)
	}

	if e.Detail != "" {
		if e.Schema != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error.
// A target without a phase matches any phase of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Phase == "" || t.Phase == e.Phase
}

// Message returns the innermost human-readable message: the cause's text
// when one is set, the detail otherwise.
func (e *Error) Message() string {
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return e.Detail
}

// Sentinel values for errors.Is checks by kind.
var (
	ErrInvalidInput      = &Error{Kind: KindInvalidInput}
	ErrNullSchema        = &Error{Kind: KindNullSchema}
	ErrSchema            = &Error{Kind: KindSchema}
	ErrValueConstruction = &Error{Kind: KindValueConstruction}
	ErrReleased          = &Error{Kind: KindReleased}
	ErrAllocation        = &Error{Kind: KindAllocation}
)

// IsKind reports whether any error in err's chain is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	for err != nil {
		if stderrors.As(err, &e) {
			if e.Kind == kind {
				return true
			}
			err = e.Cause
			continue
		}
		return false
	}
	return false
}

// KindOf returns the kind of the outermost *Error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Schema sets the schema name the error refers to
func (b *Builder) Schema(name string) *Builder {
	b.err.Schema = name
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// NullSchema creates an error for a missing or released schema
func NullSchema(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNullSchema,
		Detail: detail,
	}
}

// SchemaFailed wraps a codec failure while parsing or deriving a schema.
// Message() on the result returns the cause's text verbatim.
func SchemaFailed(phase Phase, cause error) *Error {
	return &Error{
		Phase: phase,
		Kind:  KindSchema,
		Cause: cause,
	}
}

// ValueConstruction wraps a codec failure to instantiate a value
func ValueConstruction(schema string, cause error) *Error {
	return &Error{
		Phase:  PhaseConstruct,
		Kind:   KindValueConstruction,
		Schema: schema,
		Detail: "construct value",
		Cause:  cause,
	}
}

// Released creates an error for an operation on a released object
func Released(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindReleased,
		Detail: fmt.Sprintf("%s already released", what),
	}
}

// AllocationFailed creates an allocation failure error
func AllocationFailed(phase Phase, live, limit int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindAllocation,
		Detail: fmt.Sprintf("value limit reached (%d live, max %d)", live, limit),
		Value:  live,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what string, id any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %v not found", what, id),
		Value:  id,
	}
}

// TypeMismatch creates an error for a handle of the wrong type
func TypeMismatch(phase Phase, want, got string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Detail: fmt.Sprintf("expected %s, got %s", want, got),
	}
}

// Registration creates a registration error
func Registration(phase Phase, module, name string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindRegistration,
		Detail: fmt.Sprintf("register %s#%s", module, name),
		Cause:  cause,
	}
}
