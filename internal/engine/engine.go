// Package engine converts Go values to and from tree nodes by reflection.
//
// It plays the role of the structured-encoding engine: Encode walks a Go
// value into a tree.Node, Decode builds a value of a requested type from a
// node. Types with special wire shapes are handled by Converters, which the
// engine consults before its own rules. The envelope codec registers itself
// as the Converter for tagged unions, so union-typed fields anywhere in a
// value are routed to it.
//
// Built-in rules, in order of precedence:
//   - apd.Decimal encodes as its exact decimal string
//   - encoding.TextMarshaler / TextUnmarshaler types encode as strings
//   - []byte encodes as standard base64
//   - structs encode as objects in field order, honoring `json` tags
//   - maps with string or integer keys encode as objects in canonical key order
//   - nil pointers, slices, maps and interfaces encode as null
package engine

import (
	"fmt"
	"reflect"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/roach88/oneof/internal/tree"
)

// Converter handles types whose tree shape the engine does not own.
type Converter interface {
	// CanConvert reports whether the converter owns values of type t.
	CanConvert(t reflect.Type) bool

	// EncodeValue encodes v, whose type satisfied CanConvert.
	EncodeValue(e *Engine, v reflect.Value) (tree.Node, error)

	// DecodeValue builds a value of type t from n.
	DecodeValue(e *Engine, n tree.Node, t reflect.Type) (reflect.Value, error)
}

// Engine is safe for concurrent use once constructed.
type Engine struct {
	converters []Converter
	fields     *xsync.MapOf[reflect.Type, []field]
}

// New creates an engine that consults converters in order.
func New(converters ...Converter) *Engine {
	return &Engine{
		converters: converters,
		fields:     xsync.NewMapOf[reflect.Type, []field](),
	}
}

// converterFor returns the first converter owning t, or nil.
func (e *Engine) converterFor(t reflect.Type) Converter {
	for _, c := range e.converters {
		if c.CanConvert(t) {
			return c
		}
	}
	return nil
}

// Encode converts v into a tree. A nil v encodes as Null.
func (e *Engine) Encode(v any) (tree.Node, error) {
	return e.EncodeValue(reflect.ValueOf(v))
}

// EncodeValue converts v into a tree.
func (e *Engine) EncodeValue(v reflect.Value) (tree.Node, error) {
	return e.encode(v, "$")
}

// Decode builds a value of type t from n.
func (e *Engine) Decode(n tree.Node, t reflect.Type) (reflect.Value, error) {
	if n == nil {
		return reflect.Value{}, errorf("$", t, "missing value")
	}
	return e.decode(n, t, "$")
}

// DecodeInto decodes n into the value ptr points to.
func (e *Engine) DecodeInto(n tree.Node, ptr any) error {
	rv := reflect.ValueOf(ptr)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return errorf("$", reflect.TypeOf(ptr), "decode target must be a non-nil pointer")
	}
	v, err := e.Decode(n, rv.Type().Elem())
	if err != nil {
		return err
	}
	rv.Elem().Set(v)
	return nil
}

// Marshal encodes v as compact JSON text.
func (e *Engine) Marshal(v any) ([]byte, error) {
	n, err := e.Encode(v)
	if err != nil {
		return nil, err
	}
	data, err := tree.Marshal(n)
	if err != nil {
		return nil, wrapError("$", reflect.TypeOf(v), err, "writing JSON")
	}
	return data, nil
}

// Unmarshal parses JSON text and decodes it into the value ptr points to.
func (e *Engine) Unmarshal(data []byte, ptr any) error {
	n, err := tree.ParseJSON(data)
	if err != nil {
		return wrapError("$", reflect.TypeOf(ptr), err, "parsing JSON")
	}
	return e.DecodeInto(n, ptr)
}

func indexPath(path string, i int) string {
	return fmt.Sprintf("%s[%d]", path, i)
}

func keyPath(path, key string) string {
	return path + "." + key
}
