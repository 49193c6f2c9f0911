package union

import (
	"fmt"
	"reflect"
)

// ErrorCode categorizes union errors.
type ErrorCode string

const (
	// ErrCodeUnsupportedAlternative indicates a value whose runtime type is
	// not one of the union's alternatives.
	ErrCodeUnsupportedAlternative ErrorCode = "UNSUPPORTED_ALTERNATIVE"

	// ErrCodeDiscriminantMismatch indicates an unwrap as a type the union
	// does not currently hold, or an access to an unset union.
	ErrCodeDiscriminantMismatch ErrorCode = "DISCRIMINANT_MISMATCH"

	// ErrCodeNoConversion indicates no conversion exists between a type and
	// a union (the type is not an alternative, or the target is not a union).
	ErrCodeNoConversion ErrorCode = "NO_CONVERSION"
)

// Error is returned by every failing operation in this package.
// Match categories with errors.Is against the Err* sentinels.
type Error struct {
	Code    ErrorCode
	Union   reflect.Type
	Type    reflect.Type
	Message string
	Err     error
}

// Sentinels for errors.Is. Only Code is compared.
var (
	ErrUnsupportedAlternative = &Error{Code: ErrCodeUnsupportedAlternative}
	ErrDiscriminantMismatch   = &Error{Code: ErrCodeDiscriminantMismatch}
	ErrNoConversionAvailable  = &Error{Code: ErrCodeNoConversion}
)

func (e *Error) Error() string {
	msg := string(e.Code)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Union != nil {
		msg += fmt.Sprintf(" (union=%v", e.Union)
		if e.Type != nil {
			msg += fmt.Sprintf(", type=%v", e.Type)
		}
		msg += ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func newError(code ErrorCode, unionType, t reflect.Type, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Union:   unionType,
		Type:    t,
		Message: fmt.Sprintf(format, args...),
	}
}
