// Package errors provides structured error types for the wheel binding surface.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: field path, Go/WIT type names, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseLift, errors.KindInvalidEnum).
//		Path("tire", "material").
//		WitType("material").
//		Value(7).
//		Detail("discriminant out of range").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.DivisionByZero(errors.PhaseValidate, []string{"height"})
//	err := errors.LengthMismatch(errors.PhaseValidate, []string{"dimensions"}, 3, 4)
//
// Every boundary maps Kind to its own representation: the WIT error-code
// enum for wasm guests and an integer status for C callers.
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
