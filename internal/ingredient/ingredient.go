package ingredient

import (
	"github.com/roach88/rowcook/internal/bookkeeper"
	"github.com/roach88/rowcook/internal/ir"
	"github.com/roach88/rowcook/internal/tree"
)

// Tag identifies an ingredient variant in a recipe document.
type Tag string

const (
	TagValue    Tag = "VALUE"
	TagRaw      Tag = "RAW"
	TagRef      Tag = "REF"
	TagMorph    Tag = "MORPH"
	TagMatch    Tag = "MATCH"
	TagCircular Tag = "CIRCULAR"
)

// ValidTags defines the allowed ingredient tags.
var ValidTags = map[Tag]bool{
	TagValue:    true,
	TagRaw:      true,
	TagRef:      true,
	TagMorph:    true,
	TagMatch:    true,
	TagCircular: true,
}

// Ingredient is a sealed interface implemented by Value, Raw, Reference,
// Morph, Matcher and Circular.
type Ingredient interface {
	// Tag returns the document tag of the variant.
	Tag() Tag

	// Deps lists what value depends on. It never consults a BookKeeper.
	Deps(value ir.FieldValue, row ir.Row, circular bool) []ir.Dep

	// Serialize returns the value to export. ok is false when the value
	// cannot be serialized under the BookKeeper's current state.
	Serialize(value ir.FieldValue, row ir.Row, books bookkeeper.BookKeeper, circular bool) (ir.FieldValue, bool)

	// Deserialize returns the value to store on import and the dependencies
	// it introduces. ok is false when the value cannot be resolved.
	Deserialize(value ir.FieldValue, row ir.Row, books bookkeeper.BookKeeper) (ir.DeserializedValue, bool)

	// RequiredExtraFields names the columns, besides the one the ingredient
	// is attached to, that must be present in row.
	RequiredExtraFields() []string

	// config returns the tag-specific configuration object.
	config() tree.Object
}

// resolve converts value to an identifier and resolves it without creating
// a mapping. source is the unresolved identifier.
func resolve(books bookkeeper.BookKeeper, etype ir.EntityType, value ir.FieldValue) (source, target ir.ID, ok bool) {
	source, ok = ir.FieldValueToID(value)
	if !ok {
		return nil, nil, false
	}
	target, ok = books.ResolveID(etype, source, false)
	if !ok {
		return nil, nil, false
	}
	return source, target, true
}
