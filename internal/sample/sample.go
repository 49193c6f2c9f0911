// Package sample provides the sample alternatives and unions the oneof
// binary ships with. Tests and the conformance harness use them too.
package sample

import (
	"github.com/cockroachdb/apd/v3"

	"github.com/roach88/oneof/internal/typereg"
	"github.com/roach88/oneof/internal/union"
)

// ClassA and ClassB have identical shapes; only the envelope "type"
// tells them apart.
type ClassA struct {
	Name string `json:"name"`
}

type ClassB struct {
	Name string `json:"name"`
}

// SomeOtherThing declares its own identifier.
type SomeOtherThing struct {
	Value int `json:"value"`
}

func (SomeOtherThing) TypeName() string { return "some-other-thing" }

// SomeThing carries a union as an ordinary struct field.
type SomeThing struct {
	Value union.OneOf2[string, SomeOtherThing] `json:"value"`
}

type Circle struct {
	Radius float64 `json:"radius"`
}

func (Circle) TypeName() string { return "circle" }

type Square struct {
	Side float64 `json:"side"`
}

func (Square) TypeName() string { return "square" }

// Shape is a named union: it gets the union methods by embedding.
type Shape struct {
	union.OneOf2[Circle, Square]
}

type (
	Scalars  = union.OneOf3[string, int32, bool]
	Classes  = union.OneOf3[ClassA, ClassB, string]
	Optional = union.OneOf2[union.None, string]
	Numbers  = union.OneOf3[int64, float64, apd.Decimal]
	Blob     = union.OneOf2[[]byte, *ClassA]
)

// NewRegistry returns a default registry with every sample type
// registered.
func NewRegistry() *typereg.Registry {
	r := typereg.NewDefault()
	r.MustRegister(
		ClassA{}, ClassB{}, SomeOtherThing{}, SomeThing{},
		Circle{}, Square{}, union.None{}, (*ClassA)(nil),
	)
	return r
}
