package tree

import (
	"fmt"
	"math"
	"slices"
	"unicode/utf16"
)

// Node is a sealed interface over the structured value kinds.
// Only Null, String, Int, Float, Bool, Array and Object implement it.
type Node interface {
	node() // Sealed
}

// Null represents a JSON null.
type Null struct{}

func (Null) node() {}

// String represents a string scalar.
type String string

func (String) node() {}

// Int represents an integer scalar.
type Int int64

func (Int) node() {}

// Float represents a non-integral number. NaN and infinities are not
// representable in either encoding and are rejected on marshal.
type Float float64

func (Float) node() {}

// Bool represents a boolean scalar.
type Bool bool

func (Bool) node() {}

// Array represents an ordered list of nodes.
type Array []Node

func (Array) node() {}

// Member is one key/value entry of an Object.
type Member struct {
	Key   string
	Value Node
}

// Object is an ordered list of members. Keys are unique.
// Use Get for lookups and SortedKeys for canonical iteration.
type Object []Member

func (Object) node() {}

// M is a shorthand for Member.
// Example: Object{M("value", String("x")), M("type", String("string"))}
func M(key string, value Node) Member {
	return Member{Key: key, Value: value}
}

// Get returns the value stored under key.
func (obj Object) Get(key string) (Node, bool) {
	for _, m := range obj {
		if m.Key == key {
			return m.Value, true
		}
	}
	return nil, false
}

// Set replaces the value under key, appending a new member if the key is
// not present.
func (obj *Object) Set(key string, value Node) {
	for i := range *obj {
		if (*obj)[i].Key == key {
			(*obj)[i].Value = value
			return
		}
	}
	*obj = append(*obj, Member{Key: key, Value: value})
}

// Keys returns the keys in member order.
func (obj Object) Keys() []string {
	keys := make([]string, len(obj))
	for i, m := range obj {
		keys[i] = m.Key
	}
	return keys
}

// SortedKeys returns keys in RFC 8785 canonical order (UTF-16 code units).
// Go's sort.Strings orders by UTF-8 bytes, which differs for some inputs.
func (obj Object) SortedKeys() []string {
	keys := obj.Keys()
	slices.SortFunc(keys, compareKeysRFC8785)
	return keys
}

// Sorted returns a copy of obj with members in canonical key order.
func (obj Object) Sorted() Object {
	out := slices.Clone(obj)
	slices.SortFunc(out, func(a, b Member) int { return compareKeysRFC8785(a.Key, b.Key) })
	return out
}

// compareKeysRFC8785 compares strings by UTF-16 code units as required by
// RFC 8785.
func compareKeysRFC8785(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	minLen := min(len(a16), len(b16))
	for i := 0; i < minLen; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}

	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	}
	return 0
}

// KindOf names the node kind for error messages.
func KindOf(n Node) string {
	switch n.(type) {
	case nil:
		return "missing"
	case Null:
		return "null"
	case String:
		return "string"
	case Int:
		return "int"
	case Float:
		return "float"
	case Bool:
		return "bool"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return fmt.Sprintf("%T", n)
	}
}

// IsNull reports whether n is absent or Null.
func IsNull(n Node) bool {
	if n == nil {
		return true
	}
	_, ok := n.(Null)
	return ok
}

// Equal reports whether two trees are structurally equal. Object member
// order is ignored; Int and Float compare by numeric value.
func Equal(a, b Node) bool {
	switch av := a.(type) {
	case nil:
		return b == nil
	case Null:
		_, ok := b.(Null)
		return ok
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case Int:
		switch bv := b.(type) {
		case Int:
			return av == bv
		case Float:
			return float64(av) == float64(bv)
		}
		return false
	case Float:
		switch bv := b.(type) {
		case Float:
			return av == bv
		case Int:
			return float64(av) == float64(bv)
		}
		return false
	case Array:
		bv, ok := b.(Array)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case Object:
		bv, ok := b.(Object)
		if !ok || len(av) != len(bv) {
			return false
		}
		for _, m := range av {
			other, found := bv.Get(m.Key)
			if !found || !Equal(m.Value, other) {
				return false
			}
		}
		return true
	}
	return false
}

// FromGo converts a generic Go value (as produced by yaml.v3 or
// encoding/json decoding into any) into a Node.
func FromGo(v any) (Node, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Node:
		return val, nil
	case string:
		return String(val), nil
	case bool:
		return Bool(val), nil
	case int:
		return Int(val), nil
	case int32:
		return Int(val), nil
	case int64:
		return Int(val), nil
	case uint64:
		if val > math.MaxInt64 {
			return nil, fmt.Errorf("integer out of int64 range: %d", val)
		}
		return Int(val), nil
	case float32:
		return fromFloat(float64(val))
	case float64:
		return fromFloat(val)
	case []any:
		arr := make(Array, len(val))
		for i, elem := range val {
			n, err := FromGo(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			arr[i] = n
		}
		return arr, nil
	case map[string]any:
		obj := make(Object, 0, len(val))
		for k, elem := range val {
			n, err := FromGo(elem)
			if err != nil {
				return nil, fmt.Errorf("[%q]: %w", k, err)
			}
			obj = append(obj, Member{Key: k, Value: n})
		}
		// Map iteration order is random; fix it.
		return obj.Sorted(), nil
	default:
		return nil, fmt.Errorf("unsupported type: %T", v)
	}
}

// fromFloat keeps integral floats as Int so that YAML "3" and "3.0" agree.
func fromFloat(f float64) (Node, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("non-finite number: %v", f)
	}
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return Int(int64(f)), nil
	}
	return Float(f), nil
}

// ToGo converts a Node into generic Go values: nil, string, bool, int64,
// float64, []any and map[string]any.
func ToGo(n Node) any {
	switch val := n.(type) {
	case String:
		return string(val)
	case Bool:
		return bool(val)
	case Int:
		return int64(val)
	case Float:
		return float64(val)
	case Array:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = ToGo(elem)
		}
		return out
	case Object:
		out := make(map[string]any, len(val))
		for _, m := range val {
			out[m.Key] = ToGo(m.Value)
		}
		return out
	default:
		return nil
	}
}
