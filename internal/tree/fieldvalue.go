package tree

import (
	"fmt"

	"github.com/roach88/rowcook/internal/ir"
)

// FromFieldValue converts a FieldValue into its configuration node.
// Null becomes Null, Int becomes Int, String becomes String.
func FromFieldValue(v ir.FieldValue) Node {
	switch val := v.(type) {
	case ir.Int:
		return Int(val)
	case ir.String:
		return String(val)
	default:
		return Null{}
	}
}

// ToFieldValue converts a configuration node back into a FieldValue.
// Only null, integer and string nodes are field values.
func ToFieldValue(n Node) (ir.FieldValue, error) {
	switch val := n.(type) {
	case Null:
		return ir.Null{}, nil
	case Int:
		return ir.Int(val), nil
	case String:
		return ir.String(val), nil
	default:
		return nil, fmt.Errorf("expected null, integer or string, got %s", Kind(n))
	}
}

// FromFieldValues converts a list of field values into an Array.
func FromFieldValues(vals []ir.FieldValue) Array {
	arr := make(Array, len(vals))
	for i, v := range vals {
		arr[i] = FromFieldValue(v)
	}
	return arr
}
