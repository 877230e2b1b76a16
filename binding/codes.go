package binding

import (
	"go.bytecodealliance.org/wit"

	"github.com/wippyai/wheel-bindings/errors"
)

// ErrorCodeTypeName is the WIT name of the error enum added to every module.
const ErrorCodeTypeName = "error-code"

// ErrorCode is a case of the WIT error-code enum.
type ErrorCode uint8

const (
	CodeInvalidEnumValue ErrorCode = iota
	CodeDivisionByZero
	CodeBufferLengthMismatch
	CodeNullPointer
	CodeOutOfBounds
	CodeIOFailure
	CodeInternal
)

var errorCodes = [...]struct {
	name string
	kind errors.Kind
}{
	CodeInvalidEnumValue:     {"invalid-enum-value", errors.KindInvalidEnum},
	CodeDivisionByZero:       {"division-by-zero", errors.KindDivisionByZero},
	CodeBufferLengthMismatch: {"buffer-length-mismatch", errors.KindLengthMismatch},
	CodeNullPointer:          {"null-pointer", errors.KindNilPointer},
	CodeOutOfBounds:          {"out-of-bounds", errors.KindOutOfBounds},
	CodeIOFailure:            {"io-failure", errors.KindIO},
	CodeInternal:             {"internal", errors.KindInternal},
}

// NumErrorCodes is the number of error-code cases.
const NumErrorCodes = len(errorCodes)

func (c ErrorCode) String() string {
	if int(c) >= NumErrorCodes {
		return "unknown"
	}
	return errorCodes[c].name
}

// CodeOf maps err to its error-code case. Errors without a dedicated case,
// including non-structured errors, map to CodeInternal.
func CodeOf(err error) ErrorCode {
	kind := errors.KindOf(err)
	for i, ec := range errorCodes {
		if ec.kind == kind {
			return ErrorCode(i)
		}
	}
	return CodeInternal
}

// Err rebuilds a structured error from a code received across a boundary.
func (c ErrorCode) Err() error {
	if int(c) >= NumErrorCodes {
		return errors.InvalidEnum(errors.PhaseLift, nil, uint8(c), ErrorCodeTypeName)
	}
	return errors.New(errors.PhaseCall, errorCodes[c].kind).
		WitType(ErrorCodeTypeName).
		Value(uint8(c)).
		Detail("callee reported %s", c).
		Build()
}

// Status maps err to a C status: 0 on success, -(code+1) on failure.
func Status(err error) int32 {
	if err == nil {
		return 0
	}
	return -(int32(CodeOf(err)) + 1)
}

// FromStatus is the inverse of Status.
func FromStatus(status int32) error {
	if status == 0 {
		return nil
	}
	if status > 0 || -status > int32(NumErrorCodes) {
		return errors.InvalidEnum(errors.PhaseLift, nil, status, "status")
	}
	return ErrorCode(-status - 1).Err()
}

func newErrorCodeType() *wit.TypeDef {
	name := ErrorCodeTypeName
	cases := make([]wit.EnumCase, NumErrorCodes)
	for i, ec := range errorCodes {
		cases[i] = wit.EnumCase{Name: ec.name}
	}
	return &wit.TypeDef{
		Name: &name,
		Kind: &wit.Enum{Cases: cases},
		Docs: wit.Docs{Contents: "Failure reported by a fallible function"},
	}
}
