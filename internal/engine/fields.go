package engine

import (
	"reflect"
	"strings"
)

// field describes one encoded struct field.
type field struct {
	name      string
	index     []int
	omitEmpty bool
	typ       reflect.Type
}

// structFields returns the encoded fields of t in declaration order,
// honoring `json` tags. Untagged embedded structs are inlined; the
// shallowest field wins when names collide.
func (e *Engine) structFields(t reflect.Type) []field {
	if fields, ok := e.fields.Load(t); ok {
		return fields
	}
	fields, _ := e.fields.LoadOrStore(t, collectFields(t, nil, map[string]bool{}))
	return fields
}

func collectFields(t reflect.Type, parent []int, seen map[string]bool) []field {
	var fields []field
	var embedded []reflect.StructField

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tag := sf.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")

		if sf.Anonymous && name == "" && sf.Type.Kind() == reflect.Struct {
			embedded = append(embedded, sf)
			continue
		}
		if !sf.IsExported() {
			continue
		}
		if name == "" {
			name = sf.Name
		}
		if seen[name] {
			continue
		}
		seen[name] = true

		index := make([]int, len(parent)+1)
		copy(index, parent)
		index[len(parent)] = i
		fields = append(fields, field{
			name:      name,
			index:     index,
			omitEmpty: strings.Contains(opts, "omitempty"),
			typ:       sf.Type,
		})
	}

	for _, sf := range embedded {
		index := append(append([]int{}, parent...), sf.Index...)
		fields = append(fields, collectFields(sf.Type, index, seen)...)
	}
	return fields
}

// lookupField finds the field for key, preferring an exact match and
// falling back to a case-insensitive one.
func lookupField(fields []field, key string) (field, bool) {
	for _, f := range fields {
		if f.name == key {
			return f, true
		}
	}
	for _, f := range fields {
		if strings.EqualFold(f.name, key) {
			return f, true
		}
	}
	return field{}, false
}

func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Interface, reflect.Pointer:
		return v.IsNil()
	}
	return false
}
