package ingredient

import (
	"github.com/roach88/rowcook/internal/bookkeeper"
	"github.com/roach88/rowcook/internal/ir"
	"github.com/roach88/rowcook/internal/tree"
)

// Value passes a plain scalar column through unchanged in both directions.
type Value struct{}

// NewValue creates a Value ingredient.
func NewValue() Value { return Value{} }

// Tag implements Ingredient.
func (Value) Tag() Tag { return TagValue }

// Deps implements Ingredient. A Value has no dependencies.
func (Value) Deps(ir.FieldValue, ir.Row, bool) []ir.Dep { return nil }

// Serialize implements Ingredient.
func (Value) Serialize(value ir.FieldValue, _ ir.Row, _ bookkeeper.BookKeeper, _ bool) (ir.FieldValue, bool) {
	return value, true
}

// Deserialize implements Ingredient.
func (Value) Deserialize(value ir.FieldValue, _ ir.Row, _ bookkeeper.BookKeeper) (ir.DeserializedValue, bool) {
	return ir.NewDeserializedValue(nil, value), true
}

// RequiredExtraFields implements Ingredient.
func (Value) RequiredExtraFields() []string { return nil }

func (Value) config() tree.Object { return tree.Object{} }
