// Package errors provides structured error types for the XR bridge.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the failing runtime entry point, its stringified result
// code, a record path, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseSession, errors.KindSpaceCreate).
//		Call("xrCreateReferenceSpace", res).
//		Detail("failed to create play space").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.KindMismatch("trigger", "float", "bool")
//	err := errors.Attached("player", "cannot suggest bindings")
//
// All errors implement the standard error interface and support errors.Is/As.
// The exported sentinels (ErrMissingExtension, ErrAttached, ...) match any
// error of the same Phase and Kind.
package errors
