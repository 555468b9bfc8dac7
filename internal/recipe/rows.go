package recipe

import (
	"slices"

	"github.com/roach88/rowcook/internal/bookkeeper"
	"github.com/roach88/rowcook/internal/ir"
)

// SerializedRow is the export form of one row.
type SerializedRow struct {
	// Row holds a value for every configured column that serialized.
	Row ir.Row

	// Unresolved lists, sorted, the configured columns that could not be
	// serialized.
	Unresolved []string
}

// DeserializedRow is the import form of one row.
type DeserializedRow struct {
	// Row holds the value to store for every configured column that
	// deserialized.
	Row ir.Row

	// Deps is the union of the dependencies recorded by each column, in
	// column order, without duplicates.
	Deps []ir.Dep

	// Unresolved lists, sorted, the configured columns that could not be
	// deserialized.
	Unresolved []string
}

// OK reports whether every configured column serialized.
func (s SerializedRow) OK() bool { return len(s.Unresolved) == 0 }

// OK reports whether every configured column deserialized.
func (d DeserializedRow) OK() bool { return len(d.Unresolved) == 0 }

// value returns the row's value for a configured column. A column missing
// from the row reads as Null.
func value(row ir.Row, column string) ir.FieldValue {
	v, ok := row.Get(column)
	if !ok {
		return ir.Null{}
	}
	return v
}

// Deps collects the dependencies of every configured column of row.
func (r *Recipe) Deps(row ir.Row, circular bool) []ir.Dep {
	var deps []ir.Dep
	seen := make(map[ir.Dep]bool)
	for _, col := range r.Columns() {
		for _, d := range r.ingredients[col].Deps(value(row, col), row, circular) {
			if seen[d] {
				continue
			}
			seen[d] = true
			deps = append(deps, d)
		}
	}
	return deps
}

// SerializeRow serializes every configured column of row. Columns present
// in row but absent from the recipe are dropped.
func (r *Recipe) SerializeRow(row ir.Row, books bookkeeper.BookKeeper, circular bool) SerializedRow {
	out := SerializedRow{Row: make(ir.Row, len(r.ingredients))}
	for _, col := range r.Columns() {
		v, ok := r.ingredients[col].Serialize(value(row, col), row, books, circular)
		if !ok {
			out.Unresolved = append(out.Unresolved, col)
			continue
		}
		out.Row[col] = v
	}
	return out
}

// DeserializeRow deserializes every configured column of row. Columns
// present in row but absent from the recipe are dropped.
func (r *Recipe) DeserializeRow(row ir.Row, books bookkeeper.BookKeeper) DeserializedRow {
	out := DeserializedRow{Row: make(ir.Row, len(r.ingredients))}
	seen := make(map[ir.Dep]bool)
	for _, col := range r.Columns() {
		dv, ok := r.ingredients[col].Deserialize(value(row, col), row, books)
		if !ok {
			out.Unresolved = append(out.Unresolved, col)
			continue
		}
		out.Row[col] = dv.Value()
		for _, d := range dv.Deps() {
			if seen[d] {
				continue
			}
			seen[d] = true
			out.Deps = append(out.Deps, d)
		}
	}
	return out
}

// RequiredColumns returns, sorted, every column the recipe reads: the
// configured columns plus the extra fields their ingredients consult.
func (r *Recipe) RequiredColumns() []string {
	cols := r.Columns()
	for _, ing := range r.ingredients {
		cols = append(cols, ing.RequiredExtraFields()...)
	}
	slices.Sort(cols)
	return slices.Compact(cols)
}

// MissingColumns returns, sorted, the required columns row does not have.
func (r *Recipe) MissingColumns(row ir.Row) []string {
	var missing []string
	for _, col := range r.RequiredColumns() {
		if _, ok := row[col]; !ok {
			missing = append(missing, col)
		}
	}
	return missing
}
