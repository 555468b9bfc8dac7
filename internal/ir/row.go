package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
)

// Row maps column names to values. Ingredients treat it as read-only.
type Row map[string]FieldValue

// Get returns the value of column. ok is false when the column is absent.
func (r Row) Get(column string) (FieldValue, bool) {
	v, ok := r[column]
	if !ok {
		return nil, false
	}
	if v == nil {
		return Null{}, true
	}
	return v, true
}

// Columns returns the column names in sorted order.
func (r Row) Columns() []string {
	cols := make([]string, 0, len(r))
	for k := range r {
		cols = append(cols, k)
	}
	slices.Sort(cols)
	return cols
}

// MarshalJSON implements json.Marshaler for Row with sorted keys.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	for i, col := range r.Columns() {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := MarshalFieldValue(String(col))
		if err != nil {
			return nil, fmt.Errorf("marshal column %q: %w", col, err)
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')

		valBytes, err := MarshalFieldValue(r[col])
		if err != nil {
			return nil, fmt.Errorf("marshal value for column %q: %w", col, err)
		}
		buf.Write(valBytes)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler for Row.
// Values must be null, integers or strings.
func (r *Row) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*r = make(Row, len(raw))
	for col, v := range raw {
		val, err := UnmarshalFieldValue(v)
		if err != nil {
			return fmt.Errorf("row column %q: %w", col, err)
		}
		(*r)[col] = val
	}
	return nil
}
