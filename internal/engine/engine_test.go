package engine

import (
	"errors"
	"net/netip"
	"reflect"
	"testing"

	"github.com/cockroachdb/apd/v3"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/oneof/internal/tree"
)

type inner struct {
	Label string `json:"label"`
}

type Base struct {
	ID int `json:"id"`
}

type record struct {
	Base
	Name     string         `json:"name"`
	Count    int32          `json:"count,omitempty"`
	Ratio    float64        `json:"ratio"`
	Tags     []string       `json:"tags"`
	Attrs    map[string]int `json:"attrs"`
	Nested   *inner         `json:"nested"`
	Raw      []byte         `json:"raw"`
	Amount   apd.Decimal    `json:"amount"`
	Addr     netip.Addr     `json:"addr"`
	Skipped  string         `json:"-"`
	Untagged bool
	hidden   string
	ByID     map[int]string `json:"by_id"`
	Any      any            `json:"any"`
	Fixed    [2]int         `json:"fixed"`
}

func TestEncodeStruct(t *testing.T) {
	e := New()
	r := record{
		Base:     Base{ID: 7},
		Name:     "widget",
		Ratio:    0.5,
		Tags:     []string{"a", "b"},
		Attrs:    map[string]int{"z": 1, "a": 2},
		Nested:   &inner{Label: "in"},
		Raw:      []byte("hi"),
		Amount:   *apd.New(12345, -2),
		Addr:     netip.MustParseAddr("10.0.0.1"),
		Skipped:  "nope",
		Untagged: true,
		hidden:   "nope",
		ByID:     map[int]string{2: "b", 10: "a"},
		Any:      "x",
		Fixed:    [2]int{1, 2},
	}

	got, err := e.Encode(r)
	require.NoError(t, err)

	want := tree.Object{
		tree.M("name", tree.String("widget")),
		tree.M("ratio", tree.Float(0.5)),
		tree.M("tags", tree.Array{tree.String("a"), tree.String("b")}),
		tree.M("attrs", tree.Object{tree.M("a", tree.Int(2)), tree.M("z", tree.Int(1))}),
		tree.M("nested", tree.Object{tree.M("label", tree.String("in"))}),
		tree.M("raw", tree.String("aGk=")),
		tree.M("amount", tree.String("123.45")),
		tree.M("addr", tree.String("10.0.0.1")),
		tree.M("Untagged", tree.Bool(true)),
		tree.M("by_id", tree.Object{tree.M("10", tree.String("a")), tree.M("2", tree.String("b"))}),
		tree.M("any", tree.String("x")),
		tree.M("fixed", tree.Array{tree.Int(1), tree.Int(2)}),
		tree.M("id", tree.Int(7)),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Encode mismatch (-want +got):\n%s", diff)
	}
}

func TestRoundTripStruct(t *testing.T) {
	e := New()
	in := record{
		Base:   Base{ID: 1},
		Name:   "n",
		Count:  3,
		Tags:   []string{},
		Attrs:  map[string]int{"k": 9},
		Raw:    []byte{0, 1, 2},
		Amount: *apd.New(-5, -1),
		Addr:   netip.MustParseAddr("::1"),
		ByID:   map[int]string{1: "one"},
		Fixed:  [2]int{3, 4},
	}

	data, err := e.Marshal(in)
	require.NoError(t, err)

	var out record
	require.NoError(t, e.Unmarshal(data, &out))

	assert.Equal(t, in.ID, out.ID)
	assert.Equal(t, in.Name, out.Name)
	assert.Equal(t, in.Count, out.Count)
	assert.Equal(t, in.Tags, out.Tags)
	assert.Equal(t, in.Attrs, out.Attrs)
	assert.Equal(t, in.Raw, out.Raw)
	assert.Equal(t, 0, in.Amount.Cmp(&out.Amount))
	assert.Equal(t, in.Addr, out.Addr)
	assert.Equal(t, in.ByID, out.ByID)
	assert.Equal(t, in.Fixed, out.Fixed)
	assert.Nil(t, out.Nested)
}

func TestEncodeNils(t *testing.T) {
	e := New()
	for _, v := range []any{nil, (*inner)(nil), []int(nil), map[string]int(nil)} {
		n, err := e.Encode(v)
		require.NoError(t, err)
		assert.Equal(t, tree.Null{}, n)
	}
}

func TestEncodeErrors(t *testing.T) {
	e := New()

	_, err := e.Encode(map[string]any{"f": func() {}})
	var ee *Error
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, "$.f", ee.Path)

	_, err = e.Encode(uint64(1 << 63))
	require.Error(t, err)

	_, err = e.Marshal([]float64{1, nan()})
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, "$[1]", ee.Path)

	_, err = e.Encode(map[float64]int{1: 1})
	require.Error(t, err)
}

func TestDecodeMismatch(t *testing.T) {
	e := New()
	tests := []struct {
		name  string
		input string
		ptr   any
		path  string
	}{
		{"string into int", `"x"`, new(int), "$"},
		{"fraction into int", `1.5`, new(int32), "$"},
		{"overflow", `300`, new(int8), "$"},
		{"negative uint", `-1`, new(uint), "$"},
		{"object into slice", `{}`, new([]int), "$"},
		{"nested field", `{"tags":[1]}`, new(record), "$.tags[0]"},
		{"bad base64", `{"raw":"!!"}`, new(record), "$.raw"},
		{"array too long", `{"fixed":[1,2,3]}`, new(record), "$.fixed"},
		{"bad map key", `{"by_id":{"x":"y"}}`, new(record), "$.by_id.x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := e.Unmarshal([]byte(tt.input), tt.ptr)
			var ee *Error
			require.ErrorAs(t, err, &ee)
			assert.Equal(t, tt.path, ee.Path)
		})
	}
}

func TestDecodeWholeFloatIntoInt(t *testing.T) {
	e := New()
	v, err := e.Decode(tree.Float(4), reflect.TypeFor[int64]())
	require.NoError(t, err)
	assert.Equal(t, int64(4), v.Int())
}

func TestDecodeDecimalForms(t *testing.T) {
	e := New()
	for _, n := range []tree.Node{tree.String("1.25"), tree.Float(1.25)} {
		var d apd.Decimal
		require.NoError(t, e.DecodeInto(n, &d))
		assert.Equal(t, "1.25", d.String())
	}

	var d apd.Decimal
	require.NoError(t, e.DecodeInto(tree.Int(7), &d))
	assert.Equal(t, "7", d.String())

	require.Error(t, e.DecodeInto(tree.String("seven"), &d))
}

func TestDecodeIgnoresUnknownMembersAndFoldsCase(t *testing.T) {
	e := New()
	var r record
	require.NoError(t, e.Unmarshal([]byte(`{"NAME":"x","unknown":1,"id":3}`), &r))
	assert.Equal(t, "x", r.Name)
	assert.Equal(t, 3, r.ID)
}

func TestDecodeIntoAny(t *testing.T) {
	e := New()
	var v any
	require.NoError(t, e.Unmarshal([]byte(`{"a":[1,"b"]}`), &v))
	assert.Equal(t, map[string]any{"a": []any{int64(1), "b"}}, v)

	var s error
	require.Error(t, e.Unmarshal([]byte(`"x"`), &s))
}

func TestDecodeIntoTargetValidation(t *testing.T) {
	e := New()
	var r record
	require.Error(t, e.DecodeInto(tree.Object{}, r))
	require.Error(t, e.DecodeInto(tree.Object{}, (*record)(nil)))

	_, err := e.Decode(nil, reflect.TypeFor[int]())
	require.Error(t, err)
}

// upper is a converter that owns string values and writes them upper-cased
// inside a wrapper object.
type upper struct{ fail bool }

func (upper) CanConvert(t reflect.Type) bool { return t.Kind() == reflect.String }

func (u upper) EncodeValue(_ *Engine, v reflect.Value) (tree.Node, error) {
	if u.fail {
		return nil, errors.New("boom")
	}
	return tree.Object{tree.M("s", tree.String(v.String()))}, nil
}

func (upper) DecodeValue(_ *Engine, n tree.Node, t reflect.Type) (reflect.Value, error) {
	obj, ok := n.(tree.Object)
	if !ok {
		return reflect.Value{}, errors.New("want object")
	}
	s, _ := obj.Get("s")
	return reflect.ValueOf(string(s.(tree.String))).Convert(t), nil
}

func TestConverterTakesPrecedence(t *testing.T) {
	e := New(upper{})

	data, err := e.Marshal(inner{Label: "x"})
	require.NoError(t, err)
	assert.Equal(t, `{"label":{"s":"x"}}`, string(data))

	var out inner
	require.NoError(t, e.Unmarshal(data, &out))
	assert.Equal(t, "x", out.Label)
}

func TestConverterErrorsCarryPath(t *testing.T) {
	e := New(upper{fail: true})
	_, err := e.Encode(inner{Label: "x"})
	var ee *Error
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, "$.label", ee.Path)
	assert.Contains(t, err.Error(), "boom")
}

func TestStructFieldsCached(t *testing.T) {
	e := New()
	a := e.structFields(reflect.TypeFor[record]())
	b := e.structFields(reflect.TypeFor[record]())
	require.NotEmpty(t, a)
	assert.Same(t, &a[0], &b[0])
}

func TestErrorMessage(t *testing.T) {
	err := errorf("$.x", reflect.TypeFor[int](), "cannot decode %s", "string")
	assert.Equal(t, "encoding at $.x: cannot decode string (type int)", err.Error())
}
