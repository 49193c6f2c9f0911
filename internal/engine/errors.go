package engine

import (
	"fmt"
	"reflect"
)

// Error is the engine's EncodingError: a shape mismatch between a Go type
// and a tree node, or a value the tree cannot represent.
type Error struct {
	// Path locates the failure, e.g. "$.items[2].name".
	Path string

	// Type is the Go type being encoded or decoded, if known.
	Type reflect.Type

	// Message is a human-readable description.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	msg := "encoding"
	if e.Path != "" {
		msg += " at " + e.Path
	}
	msg += ": " + e.Message
	if e.Type != nil {
		msg += fmt.Sprintf(" (type %v)", e.Type)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func errorf(path string, t reflect.Type, format string, args ...any) *Error {
	return &Error{Path: path, Type: t, Message: fmt.Sprintf(format, args...)}
}

func wrapError(path string, t reflect.Type, err error, format string, args ...any) *Error {
	return &Error{Path: path, Type: t, Message: fmt.Sprintf(format, args...), Err: err}
}
