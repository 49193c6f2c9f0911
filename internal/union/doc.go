// Package union provides closed tagged unions and the conversion resolver
// that lifts concrete values into them.
//
// A tagged union holds exactly one of N declared alternative types. The
// package ships OneOf2 through OneOf6; any other type takes part by
// implementing Union on its value and Assigner on its pointer (a named
// struct embedding a OneOfN does so automatically).
//
//	type Shape struct {
//		union.OneOf2[Circle, Square]
//	}
//
// The zero value of a union is unset: Index returns -1 and nothing can be
// unwrapped from it. Unions are replaced wholesale (SetTk, Assign, Wrap);
// there is no in-place mutation of the payload slot.
//
// Code that cannot name the alternatives at compile time (serializers)
// works through Current, which returns the payload as an opaque value plus
// its declared alternative type, and through Resolver, which caches one
// conversion Handle per (union type, alternative type) pair.
package union
