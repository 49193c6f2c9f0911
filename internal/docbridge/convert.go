package docbridge

import (
	"fmt"
	"math"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"

	"github.com/roach88/oneof/internal/tree"
)

// ToDocument converts an object tree into an ordered BSON document.
// Member order is preserved.
func ToDocument(n tree.Node) (bson.D, error) {
	obj, ok := n.(tree.Object)
	if !ok {
		return nil, fmt.Errorf("%w: got %s", ErrNotDocument, tree.KindOf(n))
	}
	return toD(obj)
}

func toD(obj tree.Object) (bson.D, error) {
	d := make(bson.D, 0, len(obj))
	for _, m := range obj {
		v, err := toBSON(m.Value)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", m.Key, err)
		}
		d = append(d, bson.E{Key: m.Key, Value: v})
	}
	return d, nil
}

func toBSON(n tree.Node) (any, error) {
	switch val := n.(type) {
	case tree.Null:
		return nil, nil
	case tree.String:
		return string(val), nil
	case tree.Bool:
		return bool(val), nil
	case tree.Int:
		if val >= math.MinInt32 && val <= math.MaxInt32 {
			return int32(val), nil
		}
		return int64(val), nil
	case tree.Float:
		f := float64(val)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("non-finite number %v", f)
		}
		return f, nil
	case tree.Array:
		a := make(bson.A, len(val))
		for i, elem := range val {
			v, err := toBSON(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			a[i] = v
		}
		return a, nil
	case tree.Object:
		return toD(val)
	}
	return nil, fmt.Errorf("unknown node type %T", n)
}

// FromRaw walks a raw BSON document into an object tree, preserving
// element order.
func FromRaw(doc bson.Raw) (tree.Object, error) {
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid BSON: %w", err)
	}
	return fromDocument(doc)
}

func fromDocument(doc bson.Raw) (tree.Object, error) {
	elems, err := doc.Elements()
	if err != nil {
		return nil, err
	}
	obj := make(tree.Object, 0, len(elems))
	for _, elem := range elems {
		n, err := fromRawValue(elem.Value())
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", elem.Key(), err)
		}
		obj.Set(elem.Key(), n)
	}
	return obj, nil
}

func fromRawValue(rv bson.RawValue) (tree.Node, error) {
	switch rv.Type {
	case bsontype.Null, bsontype.Undefined:
		return tree.Null{}, nil
	case bsontype.String:
		return tree.String(rv.StringValue()), nil
	case bsontype.Symbol:
		return tree.String(rv.Symbol()), nil
	case bsontype.Boolean:
		return tree.Bool(rv.Boolean()), nil
	case bsontype.Int32:
		return tree.Int(rv.Int32()), nil
	case bsontype.Int64:
		return tree.Int(rv.Int64()), nil
	case bsontype.Double:
		return tree.Float(rv.Double()), nil
	case bsontype.EmbeddedDocument:
		return fromDocument(rv.Document())
	case bsontype.Array:
		values, err := rv.Array().Values()
		if err != nil {
			return nil, err
		}
		arr := make(tree.Array, len(values))
		for i, v := range values {
			n, err := fromRawValue(v)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			arr[i] = n
		}
		return arr, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedElement, rv.Type)
}
