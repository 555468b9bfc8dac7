package ingredient

import (
	"maps"
	"regexp"
	"slices"

	"github.com/roach88/rowcook/internal/bookkeeper"
	"github.com/roach88/rowcook/internal/ir"
	"github.com/roach88/rowcook/internal/tree"
)

// Pattern routes values matching a regular expression to an ingredient.
type Pattern struct {
	Expr       string
	Ingredient Ingredient
}

type rule struct {
	Pattern
	re *regexp.Regexp // nil when Expr does not compile
}

// Matcher picks a nested ingredient from the text form of another column.
//
// Resolution order: the exact-match table, then patterns in order, then the
// default. All operations delegate to the chosen ingredient; with no match
// Deps is empty and Serialize/Deserialize report ok=false.
type Matcher struct {
	field    string
	on       map[string]Ingredient
	patterns []rule
	def      Ingredient
}

// NewMatcher creates a Matcher inspecting field. def may be nil.
//
// Patterns that fail to compile are kept but never match. A pattern repeating
// an earlier expression is dropped, since the earlier one always wins.
func NewMatcher(field string, on map[string]Ingredient, patterns []Pattern, def Ingredient) Matcher {
	rules := make([]rule, 0, len(patterns))
	seen := make(map[string]bool, len(patterns))
	for _, p := range patterns {
		if seen[p.Expr] {
			continue
		}
		seen[p.Expr] = true
		re, _ := regexp.Compile(p.Expr) // nil on error
		rules = append(rules, rule{Pattern: p, re: re})
	}
	return Matcher{
		field:    field,
		on:       maps.Clone(on),
		patterns: rules,
		def:      def,
	}
}

// Field returns the inspected column.
func (m Matcher) Field() string { return m.field }

// Patterns returns the configured patterns in evaluation order.
func (m Matcher) Patterns() []Pattern {
	out := make([]Pattern, len(m.patterns))
	for i, r := range m.patterns {
		out[i] = r.Pattern
	}
	return out
}

// Match returns the ingredient selected for row.
func (m Matcher) Match(row ir.Row) (Ingredient, bool) {
	val, ok := row.Get(m.field)
	if !ok {
		return nil, false
	}
	text := val.Text()

	if ing, ok := m.on[text]; ok {
		return ing, true
	}
	for _, r := range m.patterns {
		if r.re != nil && r.re.MatchString(text) {
			return r.Ingredient, true
		}
	}
	if m.def != nil {
		return m.def, true
	}
	return nil, false
}

// Tag implements Ingredient.
func (Matcher) Tag() Tag { return TagMatch }

// Deps implements Ingredient.
func (m Matcher) Deps(value ir.FieldValue, row ir.Row, circular bool) []ir.Dep {
	ing, ok := m.Match(row)
	if !ok {
		return nil
	}
	return ing.Deps(value, row, circular)
}

// Serialize implements Ingredient.
func (m Matcher) Serialize(value ir.FieldValue, row ir.Row, books bookkeeper.BookKeeper, circular bool) (ir.FieldValue, bool) {
	ing, ok := m.Match(row)
	if !ok {
		return nil, false
	}
	return ing.Serialize(value, row, books, circular)
}

// Deserialize implements Ingredient.
func (m Matcher) Deserialize(value ir.FieldValue, row ir.Row, books bookkeeper.BookKeeper) (ir.DeserializedValue, bool) {
	ing, ok := m.Match(row)
	if !ok {
		return ir.DeserializedValue{}, false
	}
	return ing.Deserialize(value, row, books)
}

// RequiredExtraFields implements Ingredient. Only the inspected column is
// reported, not the nested ingredients' fields.
func (m Matcher) RequiredExtraFields() []string { return []string{m.field} }

func (m Matcher) config() tree.Object {
	keys := slices.Sorted(maps.Keys(m.on))
	on := make(tree.Object, 0, len(keys))
	for _, k := range keys {
		on = append(on, tree.M(k, Encode(m.on[k])))
	}

	patterns := make(tree.Object, 0, len(m.patterns))
	for _, r := range m.patterns {
		patterns = append(patterns, tree.M(r.Expr, Encode(r.Ingredient)))
	}

	var def tree.Node = tree.Null{}
	if m.def != nil {
		def = Encode(m.def)
	}

	return tree.Object{
		tree.M("field", tree.String(m.field)),
		tree.M("on", on),
		tree.M("patterns", patterns),
		tree.M("default", def),
	}
}
