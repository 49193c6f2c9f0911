package engine

import (
	"encoding"
	"encoding/base64"
	"math"
	"reflect"
	"strconv"

	"github.com/cockroachdb/apd/v3"

	"github.com/roach88/oneof/internal/tree"
)

var textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()

func (e *Engine) decode(n tree.Node, t reflect.Type, path string) (reflect.Value, error) {
	if c := e.converterFor(t); c != nil {
		v, err := c.DecodeValue(e, n, t)
		if err != nil {
			return reflect.Value{}, wrapError(path, t, err, "converter failed")
		}
		return v, nil
	}

	out := reflect.New(t).Elem()

	if t.Kind() == reflect.Pointer {
		if tree.IsNull(n) {
			return out, nil
		}
		elem, err := e.decode(n, t.Elem(), path)
		if err != nil {
			return reflect.Value{}, err
		}
		p := reflect.New(t.Elem())
		p.Elem().Set(elem)
		return p, nil
	}

	// null leaves the zero value, as encoding/json does.
	if tree.IsNull(n) {
		return out, nil
	}

	if t == decimalType {
		d, err := decodeDecimal(n)
		if err != nil {
			return reflect.Value{}, wrapError(path, t, err, "invalid decimal")
		}
		out.Addr().Interface().(*apd.Decimal).Set(d)
		return out, nil
	}
	if t.Kind() != reflect.Interface && reflect.PointerTo(t).Implements(textUnmarshalerType) {
		s, ok := n.(tree.String)
		if !ok {
			return reflect.Value{}, mismatch(path, t, n)
		}
		if err := out.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s)); err != nil {
			return reflect.Value{}, wrapError(path, t, err, "UnmarshalText failed")
		}
		return out, nil
	}

	switch t.Kind() {
	case reflect.Bool:
		b, ok := n.(tree.Bool)
		if !ok {
			return reflect.Value{}, mismatch(path, t, n)
		}
		out.SetBool(bool(b))

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, ok := integral(n)
		if !ok {
			return reflect.Value{}, mismatch(path, t, n)
		}
		if out.OverflowInt(i) {
			return reflect.Value{}, errorf(path, t, "value %d overflows", i)
		}
		out.SetInt(i)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		i, ok := integral(n)
		if !ok {
			return reflect.Value{}, mismatch(path, t, n)
		}
		if i < 0 || out.OverflowUint(uint64(i)) {
			return reflect.Value{}, errorf(path, t, "value %d overflows", i)
		}
		out.SetUint(uint64(i))

	case reflect.Float32, reflect.Float64:
		var f float64
		switch num := n.(type) {
		case tree.Int:
			f = float64(num)
		case tree.Float:
			f = float64(num)
		default:
			return reflect.Value{}, mismatch(path, t, n)
		}
		if out.OverflowFloat(f) {
			return reflect.Value{}, errorf(path, t, "value %v overflows", f)
		}
		out.SetFloat(f)

	case reflect.String:
		s, ok := n.(tree.String)
		if !ok {
			return reflect.Value{}, mismatch(path, t, n)
		}
		out.SetString(string(s))

	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			s, ok := n.(tree.String)
			if !ok {
				return reflect.Value{}, mismatch(path, t, n)
			}
			b, err := base64.StdEncoding.DecodeString(string(s))
			if err != nil {
				return reflect.Value{}, wrapError(path, t, err, "invalid base64")
			}
			out.SetBytes(b)
			return out, nil
		}
		arr, ok := n.(tree.Array)
		if !ok {
			return reflect.Value{}, mismatch(path, t, n)
		}
		out.Set(reflect.MakeSlice(t, len(arr), len(arr)))
		if err := e.decodeElems(arr, out, path); err != nil {
			return reflect.Value{}, err
		}

	case reflect.Array:
		arr, ok := n.(tree.Array)
		if !ok {
			return reflect.Value{}, mismatch(path, t, n)
		}
		if len(arr) > t.Len() {
			return reflect.Value{}, errorf(path, t, "array has %d elements, want at most %d", len(arr), t.Len())
		}
		if err := e.decodeElems(arr, out, path); err != nil {
			return reflect.Value{}, err
		}

	case reflect.Map:
		obj, ok := n.(tree.Object)
		if !ok {
			return reflect.Value{}, mismatch(path, t, n)
		}
		out.Set(reflect.MakeMapWithSize(t, len(obj)))
		for _, m := range obj {
			key, err := mapKeyValue(m.Key, t.Key())
			if err != nil {
				return reflect.Value{}, wrapError(keyPath(path, m.Key), t, err, "map key")
			}
			val, err := e.decode(m.Value, t.Elem(), keyPath(path, m.Key))
			if err != nil {
				return reflect.Value{}, err
			}
			out.SetMapIndex(key, val)
		}

	case reflect.Struct:
		obj, ok := n.(tree.Object)
		if !ok {
			return reflect.Value{}, mismatch(path, t, n)
		}
		fields := e.structFields(t)
		for _, m := range obj {
			f, found := lookupField(fields, m.Key)
			if !found {
				continue // unknown members are ignored
			}
			val, err := e.decode(m.Value, f.typ, keyPath(path, f.name))
			if err != nil {
				return reflect.Value{}, err
			}
			out.FieldByIndex(f.index).Set(val)
		}

	case reflect.Interface:
		if t.NumMethod() != 0 {
			return reflect.Value{}, errorf(path, t, "cannot decode into non-empty interface")
		}
		if g := tree.ToGo(n); g != nil {
			out.Set(reflect.ValueOf(g))
		}

	default:
		return reflect.Value{}, errorf(path, t, "unsupported kind %s", t.Kind())
	}

	return out, nil
}

func (e *Engine) decodeElems(arr tree.Array, out reflect.Value, path string) error {
	for i, elem := range arr {
		v, err := e.decode(elem, out.Type().Elem(), indexPath(path, i))
		if err != nil {
			return err
		}
		out.Index(i).Set(v)
	}
	return nil
}

// integral accepts Int nodes and Float nodes with no fractional part, since
// binary documents may carry whole numbers as doubles.
func integral(n tree.Node) (int64, bool) {
	switch num := n.(type) {
	case tree.Int:
		return int64(num), true
	case tree.Float:
		f := float64(num)
		if f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 {
			return int64(f), true
		}
	}
	return 0, false
}

func mapKeyValue(key string, t reflect.Type) (reflect.Value, error) {
	switch t.Kind() {
	case reflect.String:
		return reflect.ValueOf(key).Convert(t), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := strconv.ParseInt(key, 10, t.Bits())
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(i).Convert(t), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := strconv.ParseUint(key, 10, t.Bits())
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(u).Convert(t), nil
	}
	return reflect.Value{}, errorf("", t, "unsupported map key kind %s", t.Kind())
}

func decodeDecimal(n tree.Node) (*apd.Decimal, error) {
	switch num := n.(type) {
	case tree.String:
		d, _, err := apd.NewFromString(string(num))
		return d, err
	case tree.Int:
		return apd.New(int64(num), 0), nil
	case tree.Float:
		d := new(apd.Decimal)
		_, err := d.SetFloat64(float64(num))
		return d, err
	}
	return nil, errorf("", decimalType, "cannot decode %s", tree.KindOf(n))
}

func mismatch(path string, t reflect.Type, n tree.Node) *Error {
	return errorf(path, t, "cannot decode %s", tree.KindOf(n))
}
