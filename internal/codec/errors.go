package codec

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes codec failures.
type ErrorCode string

const (
	// ErrCodeNullPayload indicates a union with no payload (unset, or a nil
	// pointer/map/slice alternative) was serialized.
	ErrCodeNullPayload ErrorCode = "NULL_PAYLOAD"

	// ErrCodeMalformedEnvelope indicates input that is not an envelope object.
	ErrCodeMalformedEnvelope ErrorCode = "MALFORMED_ENVELOPE"

	// ErrCodeMissingType indicates an absent, null or blank "type" field.
	ErrCodeMissingType ErrorCode = "MISSING_TYPE"

	// ErrCodeUnresolvableType indicates no registered type matches "type".
	ErrCodeUnresolvableType ErrorCode = "UNRESOLVABLE_TYPE"

	// ErrCodeAmbiguousType indicates "type" matches several registered types.
	ErrCodeAmbiguousType ErrorCode = "AMBIGUOUS_TYPE"

	// ErrCodeNotInUnion indicates "type" resolved to a type the target union
	// does not declare.
	ErrCodeNotInUnion ErrorCode = "NOT_IN_UNION"

	// ErrCodeEncoding wraps a failure of the structured-encoding engine.
	ErrCodeEncoding ErrorCode = "ENCODING"

	// ErrCodeWriteOnly indicates a decode through a transparent-mode codec.
	ErrCodeWriteOnly ErrorCode = "WRITE_ONLY_MODE"
)

// Error is returned by every failing codec operation.
// Match categories with errors.Is against the Err* sentinels; the cause,
// if any, stays reachable through Unwrap.
type Error struct {
	Code    ErrorCode
	TypeID  string
	Message string
	Err     error
}

// Sentinels for errors.Is. Only Code is compared.
var (
	ErrNullPayload       = &Error{Code: ErrCodeNullPayload}
	ErrMalformedEnvelope = &Error{Code: ErrCodeMalformedEnvelope}
	ErrMissingTypeField  = &Error{Code: ErrCodeMissingType}
	ErrUnresolvableType  = &Error{Code: ErrCodeUnresolvableType}
	ErrAmbiguousType     = &Error{Code: ErrCodeAmbiguousType}
	ErrNotInUnion        = &Error{Code: ErrCodeNotInUnion}
	ErrEncoding          = &Error{Code: ErrCodeEncoding}
	ErrWriteOnlyMode     = &Error{Code: ErrCodeWriteOnly}
)

func (e *Error) Error() string {
	msg := string(e.Code)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.TypeID != "" {
		msg += fmt.Sprintf(" (type=%q)", e.TypeID)
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

// CodeOf returns the code of the outermost codec error in err's chain, or
// "" if there is none.
func CodeOf(err error) ErrorCode {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}

func newError(code ErrorCode, typeID, format string, args ...any) *Error {
	return &Error{Code: code, TypeID: typeID, Message: fmt.Sprintf(format, args...)}
}

func wrapError(code ErrorCode, typeID string, err error, format string, args ...any) *Error {
	return &Error{Code: code, TypeID: typeID, Message: fmt.Sprintf(format, args...), Err: err}
}
