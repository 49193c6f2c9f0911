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

var (
	decimalType       = reflect.TypeFor[apd.Decimal]()
	textMarshalerType = reflect.TypeFor[encoding.TextMarshaler]()
)

func (e *Engine) encode(v reflect.Value, path string) (tree.Node, error) {
	if !v.IsValid() {
		return tree.Null{}, nil
	}
	t := v.Type()

	if c := e.converterFor(t); c != nil {
		n, err := c.EncodeValue(e, v)
		if err != nil {
			return nil, wrapError(path, t, err, "converter failed")
		}
		return n, nil
	}

	if t == decimalType {
		p := reflect.New(decimalType)
		p.Elem().Set(v)
		return tree.String(p.Interface().(*apd.Decimal).String()), nil
	}
	if t.Kind() != reflect.Pointer && t.Kind() != reflect.Interface && t.Implements(textMarshalerType) {
		text, err := v.Interface().(encoding.TextMarshaler).MarshalText()
		if err != nil {
			return nil, wrapError(path, t, err, "MarshalText failed")
		}
		return tree.String(text), nil
	}

	switch t.Kind() {
	case reflect.Bool:
		return tree.Bool(v.Bool()), nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return tree.Int(v.Int()), nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := v.Uint()
		if u > math.MaxInt64 {
			return nil, errorf(path, t, "unsigned value %d exceeds int64 range", u)
		}
		return tree.Int(int64(u)), nil

	case reflect.Float32, reflect.Float64:
		f := v.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, errorf(path, t, "non-finite number %v", f)
		}
		return tree.Float(f), nil

	case reflect.String:
		return tree.String(v.String()), nil

	case reflect.Slice:
		if v.IsNil() {
			return tree.Null{}, nil
		}
		if t.Elem().Kind() == reflect.Uint8 {
			return tree.String(base64.StdEncoding.EncodeToString(v.Bytes())), nil
		}
		return e.encodeList(v, path)

	case reflect.Array:
		return e.encodeList(v, path)

	case reflect.Map:
		if v.IsNil() {
			return tree.Null{}, nil
		}
		return e.encodeMap(v, path)

	case reflect.Struct:
		return e.encodeStruct(v, path)

	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return tree.Null{}, nil
		}
		return e.encode(v.Elem(), path)
	}

	return nil, errorf(path, t, "unsupported kind %s", t.Kind())
}

func (e *Engine) encodeList(v reflect.Value, path string) (tree.Node, error) {
	arr := make(tree.Array, v.Len())
	for i := range arr {
		n, err := e.encode(v.Index(i), indexPath(path, i))
		if err != nil {
			return nil, err
		}
		arr[i] = n
	}
	return arr, nil
}

func (e *Engine) encodeMap(v reflect.Value, path string) (tree.Node, error) {
	t := v.Type()
	obj := make(tree.Object, 0, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		key, err := mapKeyString(iter.Key())
		if err != nil {
			return nil, wrapError(path, t, err, "map key")
		}
		n, err := e.encode(iter.Value(), keyPath(path, key))
		if err != nil {
			return nil, err
		}
		obj = append(obj, tree.M(key, n))
	}
	return obj.Sorted(), nil
}

func mapKeyString(k reflect.Value) (string, error) {
	switch k.Kind() {
	case reflect.String:
		return k.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(k.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(k.Uint(), 10), nil
	}
	return "", errorf("", k.Type(), "unsupported map key kind %s", k.Kind())
}

func (e *Engine) encodeStruct(v reflect.Value, path string) (tree.Node, error) {
	fields := e.structFields(v.Type())
	obj := make(tree.Object, 0, len(fields))
	for _, f := range fields {
		fv := v.FieldByIndex(f.index)
		if f.omitEmpty && isEmptyValue(fv) {
			continue
		}
		n, err := e.encode(fv, keyPath(path, f.name))
		if err != nil {
			return nil, err
		}
		obj = append(obj, tree.M(f.name, n))
	}
	return obj, nil
}
