package ingredient

import (
	"github.com/roach88/rowcook/internal/bookkeeper"
	"github.com/roach88/rowcook/internal/ir"
	"github.com/roach88/rowcook/internal/tree"
)

// Raw replaces the column with a fixed value, ignoring its input.
type Raw struct {
	value ir.FieldValue
}

// NewRaw creates a Raw ingredient that always yields value.
func NewRaw(value ir.FieldValue) Raw {
	if value == nil {
		value = ir.Null{}
	}
	return Raw{value: value}
}

// Value returns the configured constant.
func (r Raw) Value() ir.FieldValue {
	if r.value == nil {
		return ir.Null{}
	}
	return r.value
}

// Tag implements Ingredient.
func (Raw) Tag() Tag { return TagRaw }

// Deps implements Ingredient. A Raw has no dependencies.
func (Raw) Deps(ir.FieldValue, ir.Row, bool) []ir.Dep { return nil }

// Serialize implements Ingredient.
func (r Raw) Serialize(ir.FieldValue, ir.Row, bookkeeper.BookKeeper, bool) (ir.FieldValue, bool) {
	return r.Value(), true
}

// Deserialize implements Ingredient.
func (r Raw) Deserialize(ir.FieldValue, ir.Row, bookkeeper.BookKeeper) (ir.DeserializedValue, bool) {
	return ir.NewDeserializedValue(nil, r.Value()), true
}

// RequiredExtraFields implements Ingredient.
func (Raw) RequiredExtraFields() []string { return nil }

func (r Raw) config() tree.Object {
	return tree.Object{tree.M("value", tree.FromFieldValue(r.Value()))}
}
