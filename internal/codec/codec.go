// Package codec serializes tagged unions as self-describing envelopes.
//
// In envelope mode a union is written as
//
//	{"value": <payload>, "type": "<type identifier>"}
//
// and can be read back without the caller naming the alternative: the
// identifier is resolved through the codec's type registry, checked against
// the target union's alternatives, the payload is decoded as that type and
// lifted into the union through the conversion resolver.
//
// Transparent mode writes only the payload. It exists for human-facing
// output and is write-only; decoding through a transparent codec fails with
// ErrWriteOnlyMode. The two modes are separate Codec values and never mix.
//
// Codec implements engine.Converter, so unions nested anywhere inside a
// value handled by Marshal/Unmarshal use the same rules.
package codec

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"strings"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/roach88/oneof/internal/engine"
	"github.com/roach88/oneof/internal/tree"
	"github.com/roach88/oneof/internal/typereg"
	"github.com/roach88/oneof/internal/union"
)

// Envelope field names.
const (
	FieldValue = "value"
	FieldType  = "type"
)

// Mode selects the wire shape.
type Mode int

const (
	// ModeEnvelope writes {"value","type"} and supports round-trips.
	ModeEnvelope Mode = iota

	// ModeTransparent writes the bare payload and cannot decode.
	ModeTransparent
)

func (m Mode) String() string {
	switch m {
	case ModeEnvelope:
		return "envelope"
	case ModeTransparent:
		return "transparent"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode parses "envelope" or "transparent".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "envelope", "":
		return ModeEnvelope, nil
	case "transparent":
		return ModeTransparent, nil
	}
	return 0, fmt.Errorf("invalid mode %q: must be envelope or transparent", s)
}

// Codec is safe for concurrent use.
type Codec struct {
	mode       Mode
	types      *typereg.Registry
	resolver   *union.Resolver
	engine     *engine.Engine
	logger     *slog.Logger
	registered *xsync.MapOf[reflect.Type, error]
}

// Option configures a Codec.
type Option func(*Codec)

// WithMode selects envelope or transparent mode. Default: envelope.
func WithMode(m Mode) Option {
	return func(c *Codec) { c.mode = m }
}

// WithRegistry sets the type registry. Default: typereg.NewDefault().
func WithRegistry(r *typereg.Registry) Option {
	return func(c *Codec) { c.types = r }
}

// WithResolver sets the conversion resolver. Default: union.DefaultResolver.
func WithResolver(r *union.Resolver) Option {
	return func(c *Codec) { c.resolver = r }
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Codec) { c.logger = l }
}

// New creates a codec.
func New(opts ...Option) *Codec {
	c := &Codec{
		mode:       ModeEnvelope,
		types:      typereg.NewDefault(),
		resolver:   union.DefaultResolver,
		registered: xsync.NewMapOf[reflect.Type, error](),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.engine = engine.New(c)
	return c
}

// Mode returns the codec's wire mode.
func (c *Codec) Mode() Mode { return c.mode }

// Registry returns the codec's type registry.
func (c *Codec) Registry() *typereg.Registry { return c.types }

// Engine returns the structured-encoding engine bound to this codec.
func (c *Codec) Engine() *engine.Engine { return c.engine }

func (c *Codec) log() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return slog.Default()
}

// alternatives returns unionType's alternatives, registering each of them
// with the type registry the first time the union is seen.
func (c *Codec) alternatives(unionType reflect.Type) ([]reflect.Type, error) {
	alts, err := c.resolver.Alternatives(unionType)
	if err != nil {
		return nil, err
	}
	regErr, _ := c.registered.LoadOrCompute(unionType, func() error {
		for _, alt := range alts {
			if _, err := c.types.NameOf(alt); err == nil {
				continue
			}
			if _, err := c.types.Register(alt); err != nil {
				return err
			}
		}
		return nil
	})
	if regErr != nil {
		return nil, wrapError(ErrCodeUnresolvableType, "", regErr,
			"cannot register alternatives of %v", unionType)
	}
	return alts, nil
}

// RegisterUnion registers every alternative of unionType with the codec's
// registry. Encoding and decoding do this on first use; callers that resolve
// identifiers through Registry before that call it up front.
func (c *Codec) RegisterUnion(unionType reflect.Type) error {
	_, err := c.alternatives(unionType)
	return err
}

// EncodeUnion serializes u into a tree: an envelope object in envelope
// mode, the bare payload in transparent mode.
func (c *Codec) EncodeUnion(u union.Union) (tree.Node, error) {
	payload, alt, err := union.Current(u)
	if err != nil {
		return nil, wrapError(ErrCodeNullPayload, "", err, "union holds no value")
	}
	if union.IsNull(payload) {
		return nil, newError(ErrCodeNullPayload, typereg.DeriveName(alt),
			"null payload is not serializable; declare union.None for an empty alternative")
	}

	valueNode, err := c.engine.Encode(payload)
	if err != nil {
		return nil, wrapError(ErrCodeEncoding, typereg.DeriveName(alt), err, "encoding payload")
	}
	if c.mode == ModeTransparent {
		return valueNode, nil
	}

	if _, err := c.alternatives(reflect.TypeOf(u)); err != nil {
		return nil, err
	}
	typeID, err := c.types.NameOf(alt)
	if err != nil {
		return nil, wrapError(ErrCodeUnresolvableType, "", err, "no identifier for %v", alt)
	}

	return tree.Object{
		tree.M(FieldValue, valueNode),
		tree.M(FieldType, tree.String(typeID)),
	}, nil
}

// DecodeUnion rebuilds a union of unionType from an envelope tree.
func (c *Codec) DecodeUnion(n tree.Node, unionType reflect.Type) (union.Union, error) {
	if c.mode == ModeTransparent {
		return nil, newError(ErrCodeWriteOnly, "", "transparent output cannot be decoded")
	}

	alts, err := c.alternatives(unionType)
	if err != nil {
		return nil, err
	}

	obj, ok := n.(tree.Object)
	if !ok {
		return nil, newError(ErrCodeMalformedEnvelope, "", "expected envelope object, got %s", tree.KindOf(n))
	}

	typeNode, ok := obj.Get(FieldType)
	if !ok || tree.IsNull(typeNode) {
		return nil, newError(ErrCodeMissingType, "", "envelope has no %q field", FieldType)
	}
	typeStr, ok := typeNode.(tree.String)
	if !ok {
		return nil, newError(ErrCodeMalformedEnvelope, "", "%q must be a string, got %s", FieldType, tree.KindOf(typeNode))
	}
	typeID := string(typeStr)
	if strings.TrimSpace(typeID) == "" {
		return nil, newError(ErrCodeMissingType, "", "envelope %q field is blank", FieldType)
	}

	t, err := c.types.Resolve(typeID)
	if err != nil {
		if errors.Is(err, typereg.ErrAmbiguousType) {
			return nil, wrapError(ErrCodeAmbiguousType, typeID, err, "cannot pick a type")
		}
		return nil, wrapError(ErrCodeUnresolvableType, typeID, err, "unknown type")
	}
	if !slices.Contains(alts, t) {
		return nil, newError(ErrCodeNotInUnion, typeID, "%v is not an alternative of %v", t, unionType)
	}

	valueNode, ok := obj.Get(FieldValue)
	if !ok {
		return nil, newError(ErrCodeMalformedEnvelope, typeID, "envelope has no %q field", FieldValue)
	}
	if tree.IsNull(valueNode) {
		return nil, newError(ErrCodeMalformedEnvelope, typeID, "envelope %q is null", FieldValue)
	}

	v, err := c.engine.Decode(valueNode, t)
	if err != nil {
		return nil, wrapError(ErrCodeEncoding, typeID, err, "decoding payload")
	}

	h, err := c.resolver.Resolve(unionType, t)
	if err != nil {
		return nil, err
	}
	return h.Into(v.Interface())
}

// Serialize writes u as JSON text.
func (c *Codec) Serialize(u union.Union) ([]byte, error) {
	n, err := c.EncodeUnion(u)
	if err != nil {
		return nil, err
	}
	data, err := tree.Marshal(n)
	if err != nil {
		return nil, wrapError(ErrCodeEncoding, "", err, "writing JSON")
	}
	return data, nil
}

// Deserialize reads a union of unionType from JSON text.
func (c *Codec) Deserialize(data []byte, unionType reflect.Type) (union.Union, error) {
	n, err := tree.ParseJSON(data)
	if err != nil {
		return nil, wrapError(ErrCodeMalformedEnvelope, "", err, "parsing JSON")
	}
	u, err := c.DecodeUnion(n, unionType)
	if err != nil {
		c.log().Debug("envelope rejected", "union", unionType.String(), "code", string(CodeOf(err)))
		return nil, err
	}
	return u, nil
}

// Decode is the typed form of Deserialize.
func Decode[U union.Union](c *Codec, data []byte) (U, error) {
	var zero U
	u, err := c.Deserialize(data, reflect.TypeFor[U]())
	if err != nil {
		return zero, err
	}
	return u.(U), nil
}

// Marshal encodes any value as JSON text; union-typed values inside it are
// written in the codec's mode.
func (c *Codec) Marshal(v any) ([]byte, error) {
	data, err := c.engine.Marshal(v)
	if err != nil {
		return nil, c.asCodecError(err)
	}
	return data, nil
}

// Unmarshal decodes JSON text into the value ptr points to.
func (c *Codec) Unmarshal(data []byte, ptr any) error {
	if err := c.engine.Unmarshal(data, ptr); err != nil {
		return c.asCodecError(err)
	}
	return nil
}

// asCodecError keeps a nested codec error's code visible at the top level
// and wraps anything else as ErrCodeEncoding.
func (c *Codec) asCodecError(err error) error {
	var ce *Error
	if errors.As(err, &ce) {
		return &Error{Code: ce.Code, TypeID: ce.TypeID, Message: "nested union", Err: err}
	}
	return wrapError(ErrCodeEncoding, "", err, "encoding value")
}

// CanConvert implements engine.Converter for tagged unions.
func (c *Codec) CanConvert(t reflect.Type) bool {
	return union.IsUnionType(t)
}

// EncodeValue implements engine.Converter.
func (c *Codec) EncodeValue(_ *engine.Engine, v reflect.Value) (tree.Node, error) {
	return c.EncodeUnion(v.Interface().(union.Union))
}

// DecodeValue implements engine.Converter.
func (c *Codec) DecodeValue(_ *engine.Engine, n tree.Node, t reflect.Type) (reflect.Value, error) {
	u, err := c.DecodeUnion(n, t)
	if err != nil {
		return reflect.Value{}, err
	}
	return reflect.ValueOf(u), nil
}
