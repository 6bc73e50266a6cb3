// Package jsonutil decodes model-produced JSON tolerantly. Providers
// occasionally return payloads with double-escaped unicode sequences
// (e.g. "\\u003e"); a strict json.Unmarshal rejects structs built from
// them, so decoding falls back to a normalization pass.
package jsonutil

import (
	"bytes"
	"encoding/json"
	"errors"
)

// UnmarshalRaw decodes a json.RawMessage into v, normalizing escape
// artifacts if a direct decode fails.
func UnmarshalRaw(raw json.RawMessage, v any) error {
	return UnmarshalFlex([]byte(raw), v)
}

// UnmarshalFlex tries a direct decode first and falls back to decoding a
// normalized copy.
func UnmarshalFlex(raw []byte, v any) error {
	if err := json.Unmarshal(raw, v); err == nil {
		return nil
	}
	norm, err := normalize(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(norm, v)
}

// MarshalNoEscape encodes v without escaping <, >, and & into \\u003c etc.
func MarshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// normalize re-parses raw, unwrapping a payload that arrived as a quoted
// JSON string and unescaping string values recursively.
func normalize(raw []byte) ([]byte, error) {
	var val any
	if err := json.Unmarshal(raw, &val); err != nil {
		var s string
		if err2 := json.Unmarshal(raw, &s); err2 != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(s), &val); err != nil {
			return nil, errors.New("jsonutil: payload is not JSON")
		}
	} else if s, ok := val.(string); ok {
		// The whole document was a quoted string; try the inner text.
		if err := json.Unmarshal([]byte(s), &val); err != nil {
			return nil, errors.New("jsonutil: payload is not JSON")
		}
	}
	return MarshalNoEscape(deepUnescape(val))
}

func deepUnescape(v any) any {
	switch x := v.(type) {
	case string:
		if s, err := unescapeString(x); err == nil {
			return s
		}
		return x
	case []any:
		out := make([]any, len(x))
		for i := range x {
			out[i] = deepUnescape(x[i])
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, vv := range x {
			out[k] = deepUnescape(vv)
		}
		return out
	default:
		return v
	}
}

// unescapeString converts residual unicode escapes like "\\u003e" inside a
// plain string into their characters by round-tripping through a quoted
// JSON string.
func unescapeString(s string) (string, error) {
	esc := bytes.ReplaceAll([]byte(s), []byte(`\`), []byte(`\\`))
	esc = bytes.ReplaceAll(esc, []byte(`"`), []byte(`\"`))
	var out string
	if err := json.Unmarshal(append(append([]byte(`"`), esc...), '"'), &out); err != nil {
		return "", err
	}
	return out, nil
}
