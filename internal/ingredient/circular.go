package ingredient

import (
	"slices"

	"github.com/roach88/rowcook/internal/bookkeeper"
	"github.com/roach88/rowcook/internal/ir"
	"github.com/roach88/rowcook/internal/tree"
)

// Circular breaks reference cycles such as a self-referential parent pointer.
//
// The caller passes circular=true on the pass that may follow the cycle and
// false on every other pass. Deps and Serialize use the primary ingredient
// when circular is true and the fallback otherwise, in both cases calling it
// with circular=false. Deserialize always uses the primary ingredient.
type Circular struct {
	primary  Ingredient
	fallback Ingredient
}

// NewCircular creates a Circular ingredient.
func NewCircular(primary, fallback Ingredient) Circular {
	return Circular{primary: primary, fallback: fallback}
}

// Primary returns the ingredient used when circular is true.
func (c Circular) Primary() Ingredient { return c.primary }

// Fallback returns the ingredient used when circular is false.
func (c Circular) Fallback() Ingredient { return c.fallback }

func (c Circular) pick(circular bool) Ingredient {
	if circular {
		return c.primary
	}
	return c.fallback
}

// Tag implements Ingredient.
func (Circular) Tag() Tag { return TagCircular }

// Deps implements Ingredient.
func (c Circular) Deps(value ir.FieldValue, row ir.Row, circular bool) []ir.Dep {
	return c.pick(circular).Deps(value, row, false)
}

// Serialize implements Ingredient.
func (c Circular) Serialize(value ir.FieldValue, row ir.Row, books bookkeeper.BookKeeper, circular bool) (ir.FieldValue, bool) {
	return c.pick(circular).Serialize(value, row, books, false)
}

// Deserialize implements Ingredient.
func (c Circular) Deserialize(value ir.FieldValue, row ir.Row, books bookkeeper.BookKeeper) (ir.DeserializedValue, bool) {
	return c.primary.Deserialize(value, row, books)
}

// RequiredExtraFields implements Ingredient. Both branches can run, so the
// fields of both are reported, primary first.
func (c Circular) RequiredExtraFields() []string {
	fields := slices.Clone(c.primary.RequiredExtraFields())
	for _, f := range c.fallback.RequiredExtraFields() {
		if !slices.Contains(fields, f) {
			fields = append(fields, f)
		}
	}
	return fields
}

func (c Circular) config() tree.Object {
	return tree.Object{
		tree.M("ingredient", Encode(c.primary)),
		tree.M("fallback", Encode(c.fallback)),
	}
}
