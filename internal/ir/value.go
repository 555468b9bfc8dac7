package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// FieldValue is a sealed interface representing the value of one row column.
// Only Null, Int and String implement it.
type FieldValue interface {
	fieldValue() // Sealed - only these types implement it

	// Text returns the string form used for value-based routing.
	Text() string
}

// Null represents an SQL NULL.
type Null struct{}

func (Null) fieldValue() {}

// Text returns the empty string.
func (Null) Text() string { return "" }

// MarshalJSON implements json.Marshaler for Null.
func (Null) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// Int represents a signed 64-bit integer column value.
type Int int64

func (Int) fieldValue() {}

// Text returns the base-10 representation.
func (v Int) Text() string { return strconv.FormatInt(int64(v), 10) }

// String represents a text column value.
type String string

func (String) fieldValue() {}

// Text returns the string itself.
func (v String) Text() string { return string(v) }

// IsNull reports whether v is Null. A nil FieldValue counts as Null.
func IsNull(v FieldValue) bool {
	if v == nil {
		return true
	}
	_, ok := v.(Null)
	return ok
}

// Contains reports whether v is one of vals.
func Contains(vals []FieldValue, v FieldValue) bool {
	for _, candidate := range vals {
		if candidate == v {
			return true
		}
	}
	return false
}

// MarshalFieldValue marshals a FieldValue to JSON: null, a number or a string.
func MarshalFieldValue(v FieldValue) ([]byte, error) {
	switch val := v.(type) {
	case nil, Null:
		return []byte("null"), nil
	case Int:
		return []byte(strconv.FormatInt(int64(val), 10)), nil
	case String:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(string(val)); err != nil {
			return nil, err
		}
		return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
	default:
		return nil, fmt.Errorf("unknown FieldValue type: %T", v)
	}
}

// UnmarshalFieldValue decodes a single JSON scalar into a FieldValue.
// Floats, bools, arrays and objects are rejected.
func UnmarshalFieldValue(data []byte) (FieldValue, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	return FieldValueFromAny(raw)
}

// FieldValueFromAny converts a decoded JSON (or YAML) scalar into a FieldValue.
// Numbers must be integral and fit in int64.
func FieldValueFromAny(v any) (FieldValue, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case FieldValue:
		return val, nil
	case string:
		return String(val), nil
	case json.Number:
		n, err := strconv.ParseInt(string(val), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("field values must be integers in int64 range: %s", val)
		}
		return Int(n), nil
	case int:
		return Int(val), nil
	case int64:
		return Int(val), nil
	case float64, float32:
		return nil, fmt.Errorf("floats are not valid field values: %v", val)
	default:
		return nil, fmt.Errorf("unsupported field value type: %T", v)
	}
}
