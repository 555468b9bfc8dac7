// Package ingredient implements the per-column conversion rules of a recipe.
//
// An Ingredient is attached to one column. Given the column's value and the
// rest of its row it can:
//   - list the entities the value depends on (Deps)
//   - produce the value to export, resolving references (Serialize)
//   - produce the value to store on import plus its dependencies (Deserialize)
//   - name the other columns it reads (RequiredExtraFields)
//
// The set of ingredients is closed: Value, Raw, Reference, Morph, Matcher and
// Circular. Every operation is a pure function of its arguments and of the
// BookKeeper's state. An unresolvable value is reported with ok=false, never
// as an error.
//
// # Circular recursion limit
//
// Circular always calls its nested ingredient with circular=false. A nested
// Circular therefore only ever takes its fallback branch, which bounds
// recursion through self-referential schemas to exactly one level.
package ingredient
