package union

import (
	"fmt"
	"reflect"
)

// Union is the tagged-union capability.
type Union interface {
	// Index returns the discriminant, 0..N-1, or -1 when unset.
	Index() int

	// Value returns the payload. It is nil only when unset or when the
	// current alternative is a nilable type holding nil.
	Value() any

	// Alternatives returns the declared alternative types in order.
	// It must be callable on the zero value.
	Alternatives() []reflect.Type
}

// Assigner is implemented by pointers to unions. Assign replaces the whole
// union with v as alternative index.
type Assigner interface {
	Assign(index int, v any) error
}

var (
	unionInterface    = reflect.TypeFor[Union]()
	assignerInterface = reflect.TypeFor[Assigner]()
)

// IsUnionType reports whether t is a tagged union: a non-pointer type whose
// values implement Union and whose pointers implement Assigner.
func IsUnionType(t reflect.Type) bool {
	if t == nil || t.Kind() == reflect.Pointer || t.Kind() == reflect.Interface {
		return false
	}
	return t.Implements(unionInterface) && reflect.PointerTo(t).Implements(assignerInterface)
}

// None is the explicit "no value" alternative. A union that may be empty
// declares None among its alternatives instead of holding a nil payload.
type None struct{}

// TypeName implements typereg.Named.
func (None) TypeName() string { return "none" }

// Current returns the payload and its declared alternative type. This is
// the type-erased view serializers work with.
func Current(u Union) (any, reflect.Type, error) {
	idx := u.Index()
	alts := u.Alternatives()
	if idx < 0 || idx >= len(alts) {
		return nil, nil, newError(ErrCodeDiscriminantMismatch, reflect.TypeOf(u), nil, "union is unset")
	}
	return u.Value(), alts[idx], nil
}

// Unwrap returns the payload as T. It fails with ErrDiscriminantMismatch
// unless the current alternative type is exactly T.
func Unwrap[T any](u Union) (T, error) {
	var zero T
	want := reflect.TypeFor[T]()
	v, got, err := Current(u)
	if err != nil {
		return zero, err
	}
	if got != want {
		return zero, newError(ErrCodeDiscriminantMismatch, reflect.TypeOf(u), want,
			"union holds %v", got)
	}
	if v == nil {
		return zero, nil
	}
	return v.(T), nil
}

// Wrap converts v into the union type U using the default resolver.
// It fails with ErrUnsupportedAlternative when v's runtime type is not one
// of U's alternatives.
func Wrap[U Union](v any) (U, error) {
	return WrapWith[U](DefaultResolver, v)
}

// WrapWith is Wrap with an explicit resolver.
func WrapWith[U Union](r *Resolver, v any) (U, error) {
	var zero U
	unionType := reflect.TypeFor[U]()
	if v == nil {
		return zero, newError(ErrCodeUnsupportedAlternative, unionType, nil,
			"untyped nil has no alternative")
	}

	h, err := r.Resolve(unionType, reflect.TypeOf(v))
	if err != nil {
		return zero, &Error{
			Code:    ErrCodeUnsupportedAlternative,
			Union:   unionType,
			Type:    reflect.TypeOf(v),
			Message: "cannot wrap value",
			Err:     err,
		}
	}
	u, err := h.Into(v)
	if err != nil {
		return zero, err
	}
	return u.(U), nil
}

// IsNull reports whether v is nil or a nil pointer, map, slice, func,
// channel or interface.
func IsNull(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func nilable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return true
	}
	return false
}

// assign validates v against alternative index and returns the tag and
// payload to store. Shared by every OneOfN.
func assign(u Union, index int, v any) (uint8, any, error) {
	alts := u.Alternatives()
	unionType := reflect.TypeOf(u)
	if index < 0 || index >= len(alts) {
		return 0, nil, newError(ErrCodeUnsupportedAlternative, unionType, nil,
			"alternative index %d out of range [0,%d)", index, len(alts))
	}
	alt := alts[index]

	if v == nil {
		if !nilable(alt) {
			return 0, nil, newError(ErrCodeUnsupportedAlternative, unionType, alt,
				"nil is not a valid %v", alt)
		}
		return uint8(index + 1), reflect.Zero(alt).Interface(), nil
	}

	t := reflect.TypeOf(v)
	if t != alt && !(alt.Kind() == reflect.Interface && t.Implements(alt)) {
		return 0, nil, newError(ErrCodeUnsupportedAlternative, unionType, t,
			"alternative %d is %v", index, alt)
	}
	return uint8(index + 1), v, nil
}

// as extracts the payload for alternative tag.
func as[T any](tag, want uint8, v any) (T, bool) {
	var zero T
	if tag != want {
		return zero, false
	}
	if v == nil {
		return zero, true
	}
	return v.(T), true
}

// format renders a union for %v and debugging.
func format(u Union) string {
	v, t, err := Current(u)
	if err != nil {
		return "<unset>"
	}
	return fmt.Sprintf("%v(%v)", t, v)
}
