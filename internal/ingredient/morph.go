package ingredient

import (
	"maps"
	"slices"

	"github.com/roach88/rowcook/internal/bookkeeper"
	"github.com/roach88/rowcook/internal/ir"
	"github.com/roach88/rowcook/internal/tree"
)

// Morph is a polymorphic association: the referenced entity type depends on
// a discriminator column of the same row.
//
// The morph map is keyed by the text form of the discriminator value
// (FieldValue.Text). Optional values are compared against both the
// discriminator and the column's own value; a match on either means the
// association is absent.
type Morph struct {
	field    string
	morphMap map[string]ir.EntityType
	optional []ir.FieldValue
}

// NewMorph creates a Morph reading its discriminator from field.
func NewMorph(field string, morphMap map[string]ir.EntityType, optional ...ir.FieldValue) Morph {
	return Morph{
		field:    field,
		morphMap: maps.Clone(morphMap),
		optional: cloneValues(optional),
	}
}

// Optional returns a copy of m whose optional values are vals.
// m itself is not modified.
func (m Morph) Optional(vals ...ir.FieldValue) Morph {
	return Morph{field: m.field, morphMap: m.morphMap, optional: cloneValues(vals)}
}

// Field returns the discriminator column.
func (m Morph) Field() string { return m.field }

// EntityTypeFor returns the entity type mapped to a discriminator value.
func (m Morph) EntityTypeFor(morphType ir.FieldValue) (ir.EntityType, bool) {
	etype, ok := m.morphMap[morphType.Text()]
	return etype, ok
}

// Tag implements Ingredient.
func (Morph) Tag() Tag { return TagMorph }

// morphState is the outcome of inspecting a row.
type morphState int

const (
	morphUnavailable morphState = iota // discriminator column missing
	morphAbsent                        // a sentinel value: no association
	morphPresent
)

// morphType reads the discriminator for value from row.
func (m Morph) morphType(value ir.FieldValue, row ir.Row) (ir.FieldValue, morphState) {
	morphType, ok := row.Get(m.field)
	if !ok {
		return nil, morphUnavailable
	}
	if ir.Contains(m.optional, value) || ir.Contains(m.optional, morphType) {
		return nil, morphAbsent
	}
	return morphType, morphPresent
}

// Deps implements Ingredient. The identifier is taken from the column value,
// the entity type from the discriminator.
func (m Morph) Deps(value ir.FieldValue, row ir.Row, _ bool) []ir.Dep {
	morphType, state := m.morphType(value, row)
	if state != morphPresent {
		return nil
	}
	etype, ok := m.EntityTypeFor(morphType)
	if !ok {
		return nil
	}
	id, ok := ir.FieldValueToID(value)
	if !ok {
		return nil
	}
	return []ir.Dep{ir.NewDep(etype, id)}
}

// Serialize implements Ingredient. A sentinel value passes through
// unchanged.
func (m Morph) Serialize(value ir.FieldValue, row ir.Row, books bookkeeper.BookKeeper, _ bool) (ir.FieldValue, bool) {
	morphType, state := m.morphType(value, row)
	switch state {
	case morphUnavailable:
		return nil, false
	case morphAbsent:
		return value, true
	}
	etype, ok := m.EntityTypeFor(morphType)
	if !ok {
		return nil, false
	}
	_, target, ok := resolve(books, etype, value)
	if !ok {
		return nil, false
	}
	return ir.IDToFieldValue(target), true
}

// Deserialize implements Ingredient. The stored value is the column value
// unchanged; the dependency carries the resolved identifier.
func (m Morph) Deserialize(value ir.FieldValue, row ir.Row, books bookkeeper.BookKeeper) (ir.DeserializedValue, bool) {
	morphType, state := m.morphType(value, row)
	switch state {
	case morphUnavailable:
		return ir.DeserializedValue{}, false
	case morphAbsent:
		return ir.NewDeserializedValue(nil, value), true
	}
	etype, ok := m.EntityTypeFor(morphType)
	if !ok {
		return ir.DeserializedValue{}, false
	}
	_, target, ok := resolve(books, etype, value)
	if !ok {
		return ir.DeserializedValue{}, false
	}
	return ir.NewDeserializedValue([]ir.Dep{ir.NewDep(etype, target)}, value), true
}

// RequiredExtraFields implements Ingredient.
func (m Morph) RequiredExtraFields() []string { return []string{m.field} }

func (m Morph) config() tree.Object {
	keys := slices.Sorted(maps.Keys(m.morphMap))
	morphMap := make(tree.Object, 0, len(keys))
	for _, k := range keys {
		morphMap = append(morphMap, tree.M(k, tree.String(m.morphMap[k])))
	}
	return tree.Object{
		tree.M("field", tree.String(m.field)),
		tree.M("morph_map", morphMap),
		tree.M("optional_values", tree.FromFieldValues(m.optional)),
	}
}
