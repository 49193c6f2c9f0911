package tree

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// ParseJSON decodes a single JSON document into a Node.
// Object member order is preserved. Numbers without a fraction or exponent
// become Int; everything else becomes Float. A repeated key keeps its first
// position and takes the last value.
func ParseJSON(data []byte) (Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	n, err := parseNode(dec)
	if err != nil {
		return nil, err
	}

	// Reject trailing garbage such as `{} {}`.
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err == nil {
			return nil, fmt.Errorf("unexpected data after top-level value")
		}
		return nil, err
	}
	return n, nil
}

func parseNode(dec *json.Decoder) (Node, error) {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty JSON value")
		}
		return nil, err
	}
	return parseToken(dec, tok)
}

func parseToken(dec *json.Decoder, tok json.Token) (Node, error) {
	switch t := tok.(type) {
	case nil:
		return Null{}, nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		return parseNumber(t)
	case json.Delim:
		switch t {
		case '[':
			arr := Array{}
			for dec.More() {
				elem, err := parseNode(dec)
				if err != nil {
					return nil, fmt.Errorf("array[%d]: %w", len(arr), err)
				}
				arr = append(arr, elem)
			}
			if _, err := dec.Token(); err != nil { // ]
				return nil, err
			}
			return arr, nil
		case '{':
			obj := Object{}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("object key is %T, not string", keyTok)
				}
				val, err := parseNode(dec)
				if err != nil {
					return nil, fmt.Errorf("object key %q: %w", key, err)
				}
				obj.Set(key, val)
			}
			if _, err := dec.Token(); err != nil { // }
				return nil, err
			}
			return obj, nil
		}
	}
	return nil, fmt.Errorf("unexpected JSON token %v", tok)
}

func parseNumber(n json.Number) (Node, error) {
	s := string(n)
	if !strings.ContainsAny(s, ".eE") {
		i, err := n.Int64()
		if err == nil {
			return Int(i), nil
		}
		// Integers beyond int64 fall through to Float.
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number %s: %w", s, err)
	}
	return Float(f), nil
}

// Marshal encodes n as compact JSON in member order.
// HTML characters are not escaped.
func Marshal(n Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, n, false); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalIndent is like Marshal but indents nested values.
func MarshalIndent(n Node, indent string) ([]byte, error) {
	compact, err := Marshal(n)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, compact, "", indent); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, n Node, canonical bool) error {
	switch val := n.(type) {
	case nil:
		return fmt.Errorf("missing value")
	case Null:
		buf.WriteString("null")
	case String:
		s, err := marshalString(string(val), canonical)
		if err != nil {
			return err
		}
		buf.Write(s)
	case Int:
		buf.WriteString(strconv.FormatInt(int64(val), 10))
	case Float:
		s, err := formatFloat(float64(val))
		if err != nil {
			return err
		}
		buf.WriteString(s)
	case Bool:
		buf.WriteString(strconv.FormatBool(bool(val)))
	case Array:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, elem, canonical); err != nil {
				return fmt.Errorf("array[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
	case Object:
		keys := val.Keys()
		if canonical {
			keys = val.SortedKeys()
		}
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			keyBytes, err := marshalString(k, canonical)
			if err != nil {
				return fmt.Errorf("key %q: %w", k, err)
			}
			buf.Write(keyBytes)
			buf.WriteByte(':')
			v, _ := val.Get(k)
			if err := writeJSON(buf, v, canonical); err != nil {
				return fmt.Errorf("value for key %q: %w", k, err)
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("unknown node type: %T", n)
	}
	return nil
}

// formatFloat renders finite floats in the shortest form that round-trips.
// Integral values keep a ".0" suffix so the text still parses as Float.
func formatFloat(f float64) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", fmt.Errorf("non-finite number %v is not representable", f)
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s, nil
}
