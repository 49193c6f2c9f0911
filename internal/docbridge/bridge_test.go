package docbridge_test

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/roach88/oneof/internal/codec"
	"github.com/roach88/oneof/internal/docbridge"
	"github.com/roach88/oneof/internal/sample"
	"github.com/roach88/oneof/internal/tree"
	"github.com/roach88/oneof/internal/union"
)

func newBridge(opts ...codec.Option) *docbridge.Bridge {
	opts = append([]codec.Option{
		codec.WithRegistry(sample.NewRegistry()),
		codec.WithResolver(union.NewResolver()),
	}, opts...)
	return docbridge.New(codec.New(opts...))
}

func TestMarshalMatchesJSONEnvelope(t *testing.T) {
	b := newBridge()
	u, err := union.Wrap[sample.Classes](sample.ClassB{Name: "Savvas"})
	require.NoError(t, err)

	raw, err := b.Marshal(u)
	require.NoError(t, err)

	text, err := b.Codec().Serialize(u)
	require.NoError(t, err)
	fromBSON, err := docbridge.BSONToJSON(raw)
	require.NoError(t, err)
	assert.Equal(t, string(text), string(fromBSON))

	elems, err := raw.Elements()
	require.NoError(t, err)
	require.Len(t, elems, 2)
	assert.Equal(t, codec.FieldValue, elems[0].Key())
	assert.Equal(t, codec.FieldType, elems[1].Key())
	assert.Equal(t, bsontype.String, elems[1].Value().Type)
}

func TestRoundTrip(t *testing.T) {
	b := newBridge()
	u, err := union.Wrap[sample.Classes](sample.ClassB{Name: "Savvas"})
	require.NoError(t, err)

	raw, err := b.Marshal(u)
	require.NoError(t, err)

	got, err := docbridge.Decode[sample.Classes](b, raw)
	require.NoError(t, err)
	cb, ok := got.AsT1()
	require.True(t, ok)
	assert.Equal(t, "Savvas", cb.Name)
}

func TestIntegerWidths(t *testing.T) {
	b := newBridge()

	small, err := union.Wrap[sample.Numbers](int64(7))
	require.NoError(t, err)
	raw, err := b.Marshal(small)
	require.NoError(t, err)
	assert.Equal(t, bsontype.Int32, raw.Lookup("value").Type)

	large, err := union.Wrap[sample.Numbers](int64(math.MaxInt32) + 1)
	require.NoError(t, err)
	raw, err = b.Marshal(large)
	require.NoError(t, err)
	assert.Equal(t, bsontype.Int64, raw.Lookup("value").Type)

	got, err := docbridge.Decode[sample.Numbers](b, raw)
	require.NoError(t, err)
	v, ok := got.AsT0()
	require.True(t, ok)
	assert.Equal(t, int64(math.MaxInt32)+1, v)
}

func TestUnmarshalRejectsUnsupportedElement(t *testing.T) {
	raw, err := bson.Marshal(bson.D{
		{Key: "value", Value: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{Key: "type", Value: "string"},
	})
	require.NoError(t, err)

	_, err = newBridge().Unmarshal(raw, reflect.TypeFor[sample.Scalars]())
	require.Error(t, err)
	assert.ErrorIs(t, err, docbridge.ErrUnsupportedElement)
	assert.Equal(t, codec.ErrCodeMalformedEnvelope, codec.CodeOf(err))
}

func TestUnmarshalRejectsGarbage(t *testing.T) {
	_, err := newBridge().Unmarshal([]byte{1, 2, 3}, reflect.TypeFor[sample.Scalars]())
	require.ErrorIs(t, err, codec.ErrMalformedEnvelope)
}

func TestUnmarshalCodecErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  bson.D
		code codec.ErrorCode
	}{
		{"missing type", bson.D{{Key: "value", Value: "x"}}, codec.ErrCodeMissingType},
		{"null value", bson.D{{Key: "value", Value: nil}, {Key: "type", Value: "string"}}, codec.ErrCodeMalformedEnvelope},
		{"not in union", bson.D{{Key: "value", Value: 1.5}, {Key: "type", Value: "float64"}}, codec.ErrCodeNotInUnion},
		{"unknown type", bson.D{{Key: "value", Value: "x"}, {Key: "type", Value: "nope"}}, codec.ErrCodeUnresolvableType},
	}

	b := newBridge()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := bson.Marshal(tt.doc)
			require.NoError(t, err)
			_, err = b.Unmarshal(raw, reflect.TypeFor[sample.Scalars]())
			assert.Equal(t, tt.code, codec.CodeOf(err))
		})
	}
}

func TestMarshalNullPayload(t *testing.T) {
	var unset sample.Scalars
	_, err := newBridge().Marshal(unset)
	require.ErrorIs(t, err, codec.ErrNullPayload)
}

func TestTransparentMode(t *testing.T) {
	b := newBridge(codec.WithMode(codec.ModeTransparent))

	// A bare scalar cannot be a top-level document.
	s, err := union.Wrap[sample.Scalars]("x")
	require.NoError(t, err)
	_, err = b.Marshal(s)
	require.ErrorIs(t, err, docbridge.ErrNotDocument)
	assert.Equal(t, codec.ErrCodeEncoding, codec.CodeOf(err))

	c, err := union.Wrap[sample.Classes](sample.ClassA{Name: "a"})
	require.NoError(t, err)
	raw, err := b.Marshal(c)
	require.NoError(t, err)
	assert.Equal(t, "a", raw.Lookup("name").StringValue())

	_, err = b.Unmarshal(raw, reflect.TypeFor[sample.Classes]())
	require.ErrorIs(t, err, codec.ErrWriteOnlyMode)
}

func TestMarshalValueNestedUnion(t *testing.T) {
	b := newBridge()
	var inner union.OneOf2[string, sample.SomeOtherThing]
	inner.SetT1(sample.SomeOtherThing{Value: 9})

	raw, err := b.MarshalValue(sample.SomeThing{Value: inner})
	require.NoError(t, err)
	assert.Equal(t, "some-other-thing", raw.Lookup("value", "type").StringValue())

	var out sample.SomeThing
	require.NoError(t, b.UnmarshalValue(raw, &out))
	got, ok := out.Value.AsT1()
	require.True(t, ok)
	assert.Equal(t, 9, got.Value)
}

func TestUnmarshalValueErrors(t *testing.T) {
	b := newBridge()

	raw, err := bson.Marshal(bson.D{{Key: "value", Value: bson.D{{Key: "value", Value: 1}, {Key: "type", Value: "int32"}}}})
	require.NoError(t, err)
	var out sample.SomeThing
	err = b.UnmarshalValue(raw, &out)
	assert.Equal(t, codec.ErrCodeNotInUnion, codec.CodeOf(err))

	raw, err = bson.Marshal(bson.D{{Key: "value", Value: true}})
	require.NoError(t, err)
	var other sample.SomeOtherThing
	err = b.UnmarshalValue(raw, &other)
	assert.Equal(t, codec.ErrCodeEncoding, codec.CodeOf(err))

	var unset sample.SomeThing
	_, err = b.MarshalValue(unset)
	assert.Equal(t, codec.ErrCodeNullPayload, codec.CodeOf(err))
}

func TestMarshalValueEngineErrorIsEncoding(t *testing.T) {
	type withChan struct {
		C chan int `json:"c"`
	}
	_, err := newBridge().MarshalValue(withChan{C: make(chan int)})
	require.ErrorIs(t, err, codec.ErrEncoding)
	assert.Equal(t, codec.ErrCodeEncoding, codec.CodeOf(err))
}

func TestJSONToBSON(t *testing.T) {
	raw, err := docbridge.JSONToBSON([]byte(`{"value":[1,2.5,"x",null,{"k":true}],"type":"anything"}`))
	require.NoError(t, err)

	back, err := docbridge.BSONToJSON(raw)
	require.NoError(t, err)
	assert.JSONEq(t, `{"value":[1,2.5,"x",null,{"k":true}],"type":"anything"}`, string(back))

	_, err = docbridge.JSONToBSON([]byte(`"scalar"`))
	require.ErrorIs(t, err, docbridge.ErrNotDocument)

	_, err = docbridge.JSONToBSON([]byte(`{`))
	require.Error(t, err)
}

func TestSymbolReadsAsString(t *testing.T) {
	raw, err := bson.Marshal(bson.D{{Key: "s", Value: primitive.Symbol("sym")}})
	require.NoError(t, err)
	obj, err := docbridge.FromRaw(raw)
	require.NoError(t, err)
	v, ok := obj.Get("s")
	require.True(t, ok)
	assert.Equal(t, tree.String("sym"), v)
}

func TestEncodeTreeRejectsNonFinite(t *testing.T) {
	_, err := docbridge.EncodeTree(tree.Object{tree.M("value", tree.Float(math.Inf(1)))})
	require.ErrorIs(t, err, codec.ErrEncoding)
	assert.Contains(t, err.Error(), `key "value"`)
}

func TestToDocumentKeepsOrder(t *testing.T) {
	d, err := docbridge.ToDocument(tree.Object{tree.M("z", tree.Int(1)), tree.M("a", tree.Int(2))})
	require.NoError(t, err)
	require.Len(t, d, 2)
	assert.Equal(t, "z", d[0].Key)
	assert.Equal(t, "a", d[1].Key)
}
