package union_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/oneof/internal/sample"
	"github.com/roach88/oneof/internal/union"
)

func TestZeroValueIsUnset(t *testing.T) {
	var u sample.Scalars
	assert.Equal(t, -1, u.Index())
	assert.Nil(t, u.Value())
	assert.Equal(t, "<unset>", u.String())

	_, _, err := union.Current(u)
	require.ErrorIs(t, err, union.ErrDiscriminantMismatch)
}

func TestSetAndAccessors(t *testing.T) {
	var u sample.Scalars
	u.SetT1(42)

	assert.Equal(t, 1, u.Index())
	assert.True(t, u.IsT1())
	assert.False(t, u.IsT0())

	v, ok := u.AsT1()
	require.True(t, ok)
	assert.Equal(t, int32(42), v)

	s, ok := u.AsT0()
	assert.False(t, ok)
	assert.Equal(t, "", s)

	assert.Equal(t, "int32(42)", u.String())
}

func TestSetReplacesWholeUnion(t *testing.T) {
	var u sample.Scalars
	u.SetT0("x")
	u.SetT2(true)

	assert.Equal(t, 2, u.Index())
	_, ok := u.AsT0()
	assert.False(t, ok)
}

func TestAlternativesOnZeroValue(t *testing.T) {
	var u sample.Classes
	assert.Equal(t, []reflect.Type{
		reflect.TypeFor[sample.ClassA](),
		reflect.TypeFor[sample.ClassB](),
		reflect.TypeFor[string](),
	}, u.Alternatives())
}

func TestAssign(t *testing.T) {
	var u sample.Classes
	require.NoError(t, u.Assign(1, sample.ClassB{Name: "b"}))
	assert.Equal(t, 1, u.Index())

	err := u.Assign(0, sample.ClassB{Name: "b"})
	require.ErrorIs(t, err, union.ErrUnsupportedAlternative)
	assert.Equal(t, 1, u.Index(), "failed Assign must leave the union unchanged")

	err = u.Assign(3, "x")
	require.ErrorIs(t, err, union.ErrUnsupportedAlternative)
	assert.Contains(t, err.Error(), "out of range")

	err = u.Assign(2, nil)
	require.ErrorIs(t, err, union.ErrUnsupportedAlternative)
}

func TestAssignNilToNilableAlternative(t *testing.T) {
	var u sample.Blob
	require.NoError(t, u.Assign(1, nil))
	assert.Equal(t, 1, u.Index())
	assert.True(t, union.IsNull(u.Value()))

	p, ok := u.AsT1()
	require.True(t, ok)
	assert.Nil(t, p)
}

func TestWrapPicksAlternativeByRuntimeType(t *testing.T) {
	u, err := union.Wrap[sample.Classes](sample.ClassB{Name: "Savvas"})
	require.NoError(t, err)
	assert.Equal(t, 1, u.Index())

	b, err := union.Unwrap[sample.ClassB](u)
	require.NoError(t, err)
	assert.Equal(t, "Savvas", b.Name)

	_, err = union.Unwrap[sample.ClassA](u)
	require.ErrorIs(t, err, union.ErrDiscriminantMismatch)
}

func TestWrapRejectsForeignType(t *testing.T) {
	_, err := union.Wrap[sample.Classes](3.5)
	require.ErrorIs(t, err, union.ErrUnsupportedAlternative)

	var ue *union.Error
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, reflect.TypeFor[float64](), ue.Type)
	assert.ErrorIs(t, err, union.ErrNoConversionAvailable)

	_, err = union.Wrap[sample.Classes](nil)
	require.ErrorIs(t, err, union.ErrUnsupportedAlternative)
}

func TestWrapNamedUnion(t *testing.T) {
	s, err := union.Wrap[sample.Shape](sample.Square{Side: 2})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Index())

	sq, ok := s.AsT1()
	require.True(t, ok)
	assert.Equal(t, 2.0, sq.Side)
}

func TestNone(t *testing.T) {
	u, err := union.Wrap[sample.Optional](union.None{})
	require.NoError(t, err)
	assert.True(t, u.IsT0())
	assert.Equal(t, "none", union.None{}.TypeName())
}

func TestIsUnionType(t *testing.T) {
	assert.True(t, union.IsUnionType(reflect.TypeFor[sample.Scalars]()))
	assert.True(t, union.IsUnionType(reflect.TypeFor[sample.Shape]()))
	assert.False(t, union.IsUnionType(reflect.TypeFor[*sample.Scalars]()))
	assert.False(t, union.IsUnionType(reflect.TypeFor[union.Union]()))
	assert.False(t, union.IsUnionType(reflect.TypeFor[string]()))
	assert.False(t, union.IsUnionType(nil))
}

func TestIsNull(t *testing.T) {
	var p *sample.ClassA
	var m map[string]int
	assert.True(t, union.IsNull(nil))
	assert.True(t, union.IsNull(p))
	assert.True(t, union.IsNull(m))
	assert.False(t, union.IsNull(""))
	assert.False(t, union.IsNull(0))
	assert.False(t, union.IsNull(union.None{}))
}

func TestErrorMessage(t *testing.T) {
	_, err := union.Wrap[sample.Scalars](1.5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UNSUPPORTED_ALTERNATIVE")
	assert.Contains(t, err.Error(), "type=float64")
}
