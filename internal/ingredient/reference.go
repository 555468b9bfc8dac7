package ingredient

import (
	"github.com/roach88/rowcook/internal/bookkeeper"
	"github.com/roach88/rowcook/internal/ir"
	"github.com/roach88/rowcook/internal/tree"
)

// Reference is a single foreign key to an entity of a fixed type.
//
// Values listed as optional (typically Null) mean "no reference": they bypass
// resolution and pass through unchanged.
type Reference struct {
	etype    ir.EntityType
	optional []ir.FieldValue
}

// NewReference creates a Reference to etype.
func NewReference(etype ir.EntityType, optional ...ir.FieldValue) Reference {
	return Reference{etype: etype, optional: cloneValues(optional)}
}

// Optional returns a copy of r whose optional values are vals.
// r itself is not modified.
func (r Reference) Optional(vals ...ir.FieldValue) Reference {
	return Reference{etype: r.etype, optional: cloneValues(vals)}
}

// EntityType returns the referenced entity type.
func (r Reference) EntityType() ir.EntityType { return r.etype }

// OptionalValues returns a copy of the optional values.
func (r Reference) OptionalValues() []ir.FieldValue { return cloneValues(r.optional) }

// Tag implements Ingredient.
func (Reference) Tag() Tag { return TagRef }

// Deps implements Ingredient.
func (r Reference) Deps(value ir.FieldValue, _ ir.Row, _ bool) []ir.Dep {
	if ir.Contains(r.optional, value) {
		return nil
	}
	id, ok := ir.FieldValueToID(value)
	if !ok {
		return nil
	}
	return []ir.Dep{ir.NewDep(r.etype, id)}
}

// Serialize implements Ingredient. The value is replaced by its resolved
// identifier.
func (r Reference) Serialize(value ir.FieldValue, _ ir.Row, books bookkeeper.BookKeeper, _ bool) (ir.FieldValue, bool) {
	if ir.Contains(r.optional, value) {
		return value, true
	}
	_, target, ok := resolve(books, r.etype, value)
	if !ok {
		return nil, false
	}
	return ir.IDToFieldValue(target), true
}

// Deserialize implements Ingredient. The dependency records the source
// identifier; the stored value is the resolved one.
func (r Reference) Deserialize(value ir.FieldValue, _ ir.Row, books bookkeeper.BookKeeper) (ir.DeserializedValue, bool) {
	if ir.Contains(r.optional, value) {
		return ir.NewDeserializedValue(nil, value), true
	}
	source, target, ok := resolve(books, r.etype, value)
	if !ok {
		return ir.DeserializedValue{}, false
	}
	return ir.NewDeserializedValue([]ir.Dep{ir.NewDep(r.etype, source)}, ir.IDToFieldValue(target)), true
}

// RequiredExtraFields implements Ingredient.
func (Reference) RequiredExtraFields() []string { return nil }

func (r Reference) config() tree.Object {
	return tree.Object{
		tree.M("type", tree.String(r.etype)),
		tree.M("optional_values", tree.FromFieldValues(r.optional)),
	}
}

func cloneValues(vals []ir.FieldValue) []ir.FieldValue {
	out := make([]ir.FieldValue, len(vals))
	for i, v := range vals {
		if v == nil {
			v = ir.Null{}
		}
		out[i] = v
	}
	return out
}
