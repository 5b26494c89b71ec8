// Package errors provides structured error types for the avro-runtime library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the schema name, field path, offending value and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDecode, errors.KindInvalidData).
//		Schema("com.example.User").
//		Path("address", "zip").
//		Detail("short buffer").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.NullSchema(errors.PhaseBind, "cannot create NULL schema wrapper")
//	err := errors.SchemaFailed(errors.PhaseParse, cause)
//
// Match by kind with the phase-less sentinels:
//
//	if errors.Is(err, avroerrors.ErrInvalidInput) { ... }
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
