package codec_test

import (
	"bytes"
	htmltemplate "html/template"
	"log/slog"
	"reflect"
	"sync"
	"testing"
	texttemplate "text/template"

	"github.com/cockroachdb/apd/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/oneof/internal/codec"
	"github.com/roach88/oneof/internal/sample"
	"github.com/roach88/oneof/internal/union"
)

const classBType = "github.com/roach88/oneof/internal/sample.ClassB"

func newCodec(opts ...codec.Option) *codec.Codec {
	opts = append([]codec.Option{
		codec.WithRegistry(sample.NewRegistry()),
		codec.WithResolver(union.NewResolver()),
	}, opts...)
	return codec.New(opts...)
}

func TestSerializeEnvelope(t *testing.T) {
	c := newCodec()
	u, err := union.Wrap[sample.Scalars]("A string value")
	require.NoError(t, err)

	data, err := c.Serialize(u)
	require.NoError(t, err)
	assert.Equal(t, `{"value":"A string value","type":"string"}`, string(data))
}

func TestSerializeTransparent(t *testing.T) {
	c := newCodec(codec.WithMode(codec.ModeTransparent))
	u, err := union.Wrap[sample.Scalars]("A string value")
	require.NoError(t, err)

	data, err := c.Serialize(u)
	require.NoError(t, err)
	assert.Equal(t, `"A string value"`, string(data))

	_, err = c.Deserialize(data, reflect.TypeFor[sample.Scalars]())
	require.ErrorIs(t, err, codec.ErrWriteOnlyMode)
	assert.Equal(t, codec.ErrCodeWriteOnly, codec.CodeOf(err))
}

func TestRoundTripEveryAlternative(t *testing.T) {
	c := newCodec()
	values := []any{"text", int32(-4), true}
	for _, v := range values {
		u, err := union.Wrap[sample.Scalars](v)
		require.NoError(t, err)

		data, err := c.Serialize(u)
		require.NoError(t, err)

		got, err := codec.Decode[sample.Scalars](c, data)
		require.NoError(t, err)
		assert.Equal(t, u.Index(), got.Index())
		assert.Equal(t, v, got.Value())
	}
}

func TestClassDisambiguation(t *testing.T) {
	c := newCodec()
	u, err := union.Wrap[sample.Classes](sample.ClassB{Name: "Savvas"})
	require.NoError(t, err)

	data, err := c.Serialize(u)
	require.NoError(t, err)
	assert.Equal(t, `{"value":{"name":"Savvas"},"type":"`+classBType+`"}`, string(data))

	got, err := codec.Decode[sample.Classes](c, data)
	require.NoError(t, err)
	assert.True(t, got.IsT1(), "ClassB must not decode as the identically shaped ClassA")
	b, _ := got.AsT1()
	assert.Equal(t, "Savvas", b.Name)
}

func TestDecodeShortAlias(t *testing.T) {
	c := newCodec()
	got, err := codec.Decode[sample.Classes](c, []byte(`{"value":{"name":"x"},"type":"sample.ClassA"}`))
	require.NoError(t, err)
	assert.True(t, got.IsT0())
}

func TestDecodeIgnoresMemberOrderAndExtras(t *testing.T) {
	c := newCodec()
	got, err := codec.Decode[sample.Scalars](c, []byte(`{"type":"int32","extra":1,"value":7}`))
	require.NoError(t, err)
	v, ok := got.AsT1()
	require.True(t, ok)
	assert.Equal(t, int32(7), v)
}

func TestDeserializeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  codec.ErrorCode
		want  error
	}{
		{"not json", `{"value":`, codec.ErrCodeMalformedEnvelope, codec.ErrMalformedEnvelope},
		{"not an object", `"A string value"`, codec.ErrCodeMalformedEnvelope, codec.ErrMalformedEnvelope},
		{"array", `[]`, codec.ErrCodeMalformedEnvelope, codec.ErrMalformedEnvelope},
		{"missing type", `{"value":"x"}`, codec.ErrCodeMissingType, codec.ErrMissingTypeField},
		{"null type", `{"value":"x","type":null}`, codec.ErrCodeMissingType, codec.ErrMissingTypeField},
		{"blank type", `{"value":"x","type":"  "}`, codec.ErrCodeMissingType, codec.ErrMissingTypeField},
		{"numeric type", `{"value":"x","type":5}`, codec.ErrCodeMalformedEnvelope, codec.ErrMalformedEnvelope},
		{"unknown type", `{"value":"x","type":"no.such.Type"}`, codec.ErrCodeUnresolvableType, codec.ErrUnresolvableType},
		{"not in union", `{"value":1.5,"type":"float64"}`, codec.ErrCodeNotInUnion, codec.ErrNotInUnion},
		{"missing value", `{"type":"string"}`, codec.ErrCodeMalformedEnvelope, codec.ErrMalformedEnvelope},
		{"null value", `{"value":null,"type":"string"}`, codec.ErrCodeMalformedEnvelope, codec.ErrMalformedEnvelope},
		{"payload mismatch", `{"value":{"name":"x"},"type":"string"}`, codec.ErrCodeEncoding, codec.ErrEncoding},
	}

	c := newCodec()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Deserialize([]byte(tt.input), reflect.TypeFor[sample.Classes]())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.code, codec.CodeOf(err))
		})
	}
}

func TestDecodeAmbiguousAlias(t *testing.T) {
	reg := sample.NewRegistry()
	_, err := reg.Register(reflect.TypeFor[texttemplate.Template]())
	require.NoError(t, err)
	_, err = reg.Register(reflect.TypeFor[htmltemplate.Template]())
	require.NoError(t, err)
	c := codec.New(codec.WithRegistry(reg), codec.WithResolver(union.NewResolver()))

	_, err = c.Deserialize([]byte(`{"value":{},"type":"template.Template"}`), reflect.TypeFor[sample.Classes]())
	require.ErrorIs(t, err, codec.ErrAmbiguousType)
	assert.Equal(t, codec.ErrCodeAmbiguousType, codec.CodeOf(err))
}

func TestNullPayload(t *testing.T) {
	c := newCodec()

	var unset sample.Scalars
	_, err := c.Serialize(unset)
	require.ErrorIs(t, err, codec.ErrNullPayload)

	var b sample.Blob
	require.NoError(t, b.Assign(1, nil))
	_, err = c.Serialize(b)
	require.ErrorIs(t, err, codec.ErrNullPayload)

	var empty sample.Blob
	empty.SetT0(nil)
	_, err = c.Serialize(empty)
	require.ErrorIs(t, err, codec.ErrNullPayload)
}

func TestNoneRoundTrip(t *testing.T) {
	c := newCodec()
	u, err := union.Wrap[sample.Optional](union.None{})
	require.NoError(t, err)

	data, err := c.Serialize(u)
	require.NoError(t, err)
	assert.Equal(t, `{"value":{},"type":"none"}`, string(data))

	got, err := codec.Decode[sample.Optional](c, data)
	require.NoError(t, err)
	assert.True(t, got.IsT0())
}

func TestInterfaceAlternativeRoundTrip(t *testing.T) {
	c := newCodec()
	var u union.OneOf2[any, int32]
	u.SetT0("hello")

	data, err := c.Serialize(u)
	require.NoError(t, err)
	assert.Equal(t, `{"value":"hello","type":"interface {}"}`, string(data))

	got, err := codec.Decode[union.OneOf2[any, int32]](c, data)
	require.NoError(t, err)
	v, ok := got.AsT0()
	require.True(t, ok)
	assert.Equal(t, "hello", v)

	u.SetT0(map[string]any{"k": true})
	data, err = c.Serialize(u)
	require.NoError(t, err)
	got, err = codec.Decode[union.OneOf2[any, int32]](c, data)
	require.NoError(t, err)
	v, ok = got.AsT0()
	require.True(t, ok)
	assert.Equal(t, map[string]any{"k": true}, v)
}

func TestNumbers(t *testing.T) {
	c := newCodec()

	d, _, err := apd.NewFromString("0.1000000000000000055511151231257827")
	require.NoError(t, err)
	u, err := union.Wrap[sample.Numbers](*d)
	require.NoError(t, err)

	data, err := c.Serialize(u)
	require.NoError(t, err)
	assert.Equal(t, `{"value":"0.1000000000000000055511151231257827","type":"decimal"}`, string(data))

	got, err := codec.Decode[sample.Numbers](c, data)
	require.NoError(t, err)
	back, ok := got.AsT2()
	require.True(t, ok)
	assert.Equal(t, 0, back.Cmp(d))

	f, err := codec.Decode[sample.Numbers](c, []byte(`{"value":2,"type":"float64"}`))
	require.NoError(t, err)
	fv, ok := f.AsT1()
	require.True(t, ok)
	assert.Equal(t, 2.0, fv)
}

func TestBytesAlternative(t *testing.T) {
	c := newCodec()
	u, err := union.Wrap[sample.Blob]([]byte("hi"))
	require.NoError(t, err)

	data, err := c.Serialize(u)
	require.NoError(t, err)
	assert.Equal(t, `{"value":"aGk=","type":"bytes"}`, string(data))

	p, err := union.Wrap[sample.Blob](&sample.ClassA{Name: "p"})
	require.NoError(t, err)
	data, err = c.Serialize(p)
	require.NoError(t, err)
	assert.Equal(t, `{"value":{"name":"p"},"type":"*github.com/roach88/oneof/internal/sample.ClassA"}`, string(data))

	got, err := codec.Decode[sample.Blob](c, data)
	require.NoError(t, err)
	ptr, ok := got.AsT1()
	require.True(t, ok)
	assert.Equal(t, "p", ptr.Name)
}

func TestNamedUnion(t *testing.T) {
	c := newCodec()
	s, err := union.Wrap[sample.Shape](sample.Circle{Radius: 1.5})
	require.NoError(t, err)

	data, err := c.Serialize(s)
	require.NoError(t, err)
	assert.Equal(t, `{"value":{"radius":1.5},"type":"circle"}`, string(data))

	got, err := codec.Decode[sample.Shape](c, data)
	require.NoError(t, err)
	circle, ok := got.AsT0()
	require.True(t, ok)
	assert.Equal(t, 1.5, circle.Radius)
}

func TestNestedUnionField(t *testing.T) {
	c := newCodec()
	var inner union.OneOf2[string, sample.SomeOtherThing]
	inner.SetT1(sample.SomeOtherThing{Value: 3})

	data, err := c.Marshal(sample.SomeThing{Value: inner})
	require.NoError(t, err)
	assert.Equal(t, `{"value":{"value":{"value":3},"type":"some-other-thing"}}`, string(data))

	var out sample.SomeThing
	require.NoError(t, c.Unmarshal(data, &out))
	got, ok := out.Value.AsT1()
	require.True(t, ok)
	assert.Equal(t, 3, got.Value)
}

func TestNestedUnionErrorKeepsCode(t *testing.T) {
	c := newCodec()
	var out sample.SomeThing
	err := c.Unmarshal([]byte(`{"value":{"value":1,"type":"int32"}}`), &out)
	require.Error(t, err)
	assert.Equal(t, codec.ErrCodeNotInUnion, codec.CodeOf(err))

	var unset sample.SomeThing
	_, err = c.Marshal(unset)
	assert.Equal(t, codec.ErrCodeNullPayload, codec.CodeOf(err))
}

func TestNestedUnionTransparent(t *testing.T) {
	c := newCodec(codec.WithMode(codec.ModeTransparent))
	var inner union.OneOf2[string, sample.SomeOtherThing]
	inner.SetT0("plain")

	data, err := c.Marshal(sample.SomeThing{Value: inner})
	require.NoError(t, err)
	assert.Equal(t, `{"value":"plain"}`, string(data))
}

func TestUnregisteredAlternativeIsRegisteredOnFirstUse(t *testing.T) {
	c := codec.New(codec.WithResolver(union.NewResolver()))
	u, err := union.Wrap[sample.Classes](sample.ClassA{Name: "a"})
	require.NoError(t, err)

	data, err := c.Serialize(u)
	require.NoError(t, err)
	assert.Contains(t, string(data), "sample.ClassA")

	_, err = c.Registry().Resolve("github.com/roach88/oneof/internal/sample.ClassB")
	require.NoError(t, err, "every alternative of a seen union is registered")
}

func TestConcurrentSerialize(t *testing.T) {
	c := newCodec()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u, err := union.Wrap[sample.Classes](sample.ClassB{Name: "x"})
			assert.NoError(t, err)
			data, err := c.Serialize(u)
			assert.NoError(t, err)
			_, err = codec.Decode[sample.Classes](c, data)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()
}

func TestRejectionIsLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	c := newCodec(codec.WithLogger(logger))

	_, err := c.Deserialize([]byte(`{"value":"x"}`), reflect.TypeFor[sample.Classes]())
	require.Error(t, err)
	assert.Contains(t, buf.String(), "envelope rejected")
	assert.Contains(t, buf.String(), "code=MISSING_TYPE")
}

func TestParseMode(t *testing.T) {
	m, err := codec.ParseMode("Transparent")
	require.NoError(t, err)
	assert.Equal(t, codec.ModeTransparent, m)

	m, err = codec.ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, codec.ModeEnvelope, m)

	_, err = codec.ParseMode("binary")
	require.Error(t, err)

	assert.Equal(t, "envelope", codec.ModeEnvelope.String())
	assert.Equal(t, "Mode(7)", codec.Mode(7).String())
}

func TestErrorFormatting(t *testing.T) {
	c := newCodec()
	_, err := c.Deserialize([]byte(`{"value":"x","type":"no.such.Type"}`), reflect.TypeFor[sample.Classes]())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UNRESOLVABLE_TYPE")
	assert.Contains(t, err.Error(), `(type="no.such.Type")`)
	assert.Equal(t, codec.ErrorCode(""), codec.CodeOf(nil))
}
