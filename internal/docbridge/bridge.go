// Package docbridge carries envelopes through BSON documents.
//
// The bridge does not implement the envelope protocol a second time.
// Writing runs the text codec, converts the resulting tree into an ordered
// bson.D and emits it as a raw document. Reading walks the raw document back
// into a tree and hands it to the text codec unchanged, so both encodings
// always agree on how alternatives are disambiguated.
//
// Strings are always written as BSON strings, never symbols, so the envelope
// "type" identifier compares byte-for-byte after a round-trip.
package docbridge

import (
	"errors"
	"fmt"
	"reflect"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/roach88/oneof/internal/codec"
	"github.com/roach88/oneof/internal/tree"
	"github.com/roach88/oneof/internal/union"
)

var (
	// ErrNotDocument indicates a top-level value that is not an object.
	// BSON can only carry documents at the top level.
	ErrNotDocument = errors.New("top-level value is not a document")

	// ErrUnsupportedElement indicates a BSON element type with no tree
	// equivalent (binary, datetime, object id, ...).
	ErrUnsupportedElement = errors.New("unsupported BSON element type")
)

// Bridge adapts a codec to BSON documents.
type Bridge struct {
	codec *codec.Codec
}

// New creates a bridge over c.
func New(c *codec.Codec) *Bridge {
	return &Bridge{codec: c}
}

// Codec returns the underlying text codec.
func (b *Bridge) Codec() *codec.Codec {
	return b.codec
}

// Marshal writes u as a BSON document.
func (b *Bridge) Marshal(u union.Union) (bson.Raw, error) {
	n, err := b.codec.EncodeUnion(u)
	if err != nil {
		return nil, err
	}
	return EncodeTree(n)
}

// Unmarshal reads a union of unionType from a BSON document.
func (b *Bridge) Unmarshal(doc []byte, unionType reflect.Type) (union.Union, error) {
	n, err := FromRaw(bson.Raw(doc))
	if err != nil {
		return nil, &codec.Error{
			Code:    codec.ErrCodeMalformedEnvelope,
			Message: "reading BSON document",
			Err:     err,
		}
	}
	return b.codec.DecodeUnion(n, unionType)
}

// Decode is the typed form of Unmarshal.
func Decode[U union.Union](b *Bridge, doc []byte) (U, error) {
	var zero U
	u, err := b.Unmarshal(doc, reflect.TypeFor[U]())
	if err != nil {
		return zero, err
	}
	return u.(U), nil
}

// MarshalValue writes any struct or map as a BSON document; unions inside
// it are written in the codec's mode.
func (b *Bridge) MarshalValue(v any) (bson.Raw, error) {
	n, err := b.codec.Engine().Encode(v)
	if err != nil {
		return nil, &codec.Error{Code: errorCode(err), Message: "encoding value", Err: err}
	}
	return EncodeTree(n)
}

// UnmarshalValue reads a BSON document into the value ptr points to.
func (b *Bridge) UnmarshalValue(doc []byte, ptr any) error {
	n, err := FromRaw(bson.Raw(doc))
	if err != nil {
		return &codec.Error{
			Code:    codec.ErrCodeMalformedEnvelope,
			Message: "reading BSON document",
			Err:     err,
		}
	}
	if err := b.codec.Engine().DecodeInto(n, ptr); err != nil {
		return &codec.Error{Code: errorCode(err), Message: "decoding value", Err: err}
	}
	return nil
}

// errorCode keeps the code of a nested union failure and files plain
// engine errors under ENCODING.
func errorCode(err error) codec.ErrorCode {
	if code := codec.CodeOf(err); code != "" {
		return code
	}
	return codec.ErrCodeEncoding
}

// EncodeTree writes an object tree as a BSON document.
func EncodeTree(n tree.Node) (bson.Raw, error) {
	d, err := ToDocument(n)
	if err != nil {
		return nil, &codec.Error{Code: codec.ErrCodeEncoding, Message: "building BSON document", Err: err}
	}
	raw, err := bson.Marshal(d)
	if err != nil {
		return nil, &codec.Error{Code: codec.ErrCodeEncoding, Message: "writing BSON document", Err: err}
	}
	return bson.Raw(raw), nil
}

// JSONToBSON converts envelope JSON text into a BSON document without
// resolving any types.
func JSONToBSON(data []byte) (bson.Raw, error) {
	n, err := tree.ParseJSON(data)
	if err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	d, err := ToDocument(n)
	if err != nil {
		return nil, err
	}
	raw, err := bson.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("writing BSON: %w", err)
	}
	return bson.Raw(raw), nil
}

// BSONToJSON converts a BSON document into compact JSON text without
// resolving any types.
func BSONToJSON(doc []byte) ([]byte, error) {
	n, err := FromRaw(bson.Raw(doc))
	if err != nil {
		return nil, err
	}
	return tree.Marshal(n)
}
