package tree

import (
	"bytes"
	"encoding/json"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces RFC 8785 style canonical JSON.
// This is the only serialization used for content hashes and golden files.
//
// Differences from Marshal:
//  1. Object keys sorted by UTF-16 code units
//  2. Strings are NFC normalized
//  3. U+2028 and U+2029 are emitted literally
func MarshalCanonical(n Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, n, true); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// marshalString encodes s as a JSON string without HTML escaping.
func marshalString(s string, canonical bool) ([]byte, error) {
	if canonical {
		s = norm.NFC.String(s)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}

	// json.Encoder adds a trailing newline.
	result := bytes.TrimSuffix(buf.Bytes(), []byte{'\n'})
	if canonical {
		result = unescapeLineSeparators(result)
	}
	return result, nil
}

// unescapeLineSeparators turns the \u2028 and \u2029 escapes that
// encoding/json always emits back into literal characters. An escape that is
// itself preceded by an odd run of backslashes is literal text and is left
// alone.
func unescapeLineSeparators(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u202`)) {
		return data
	}

	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if i+6 <= len(data) && data[i] == '\\' && string(data[i+1:i+5]) == "u202" &&
			(data[i+5] == '8' || data[i+5] == '9') {
			backslashes := 0
			for j := len(out) - 1; j >= 0 && out[j] == '\\'; j-- {
				backslashes++
			}
			if backslashes%2 == 0 {
				if data[i+5] == '8' {
					out = append(out, "\u2028"...)
				} else {
					out = append(out, "\u2029"...)
				}
				i += 5
				continue
			}
		}
		out = append(out, data[i])
	}
	return out
}
