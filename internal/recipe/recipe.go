package recipe

import (
	"fmt"
	"maps"
	"slices"

	"github.com/roach88/rowcook/internal/ingredient"
)

// Recipe maps column names to ingredients.
type Recipe struct {
	primaryKey  string
	ingredients map[string]ingredient.Ingredient
}

// New builds a Recipe. An empty primaryKey means the row has no single
// primary-key column (synthetic or compound key).
//
// The ingredients map is copied; later changes to it do not affect the
// Recipe.
func New(primaryKey string, ingredients map[string]ingredient.Ingredient) (*Recipe, error) {
	ings := make(map[string]ingredient.Ingredient, len(ingredients))
	for col, ing := range ingredients {
		if col == "" {
			return nil, &ingredient.ConfigError{Path: "ingredients", Message: "column name must not be empty"}
		}
		if ing == nil {
			return nil, &ingredient.ConfigError{
				Path:    ingredient.JoinPath("ingredients", col),
				Message: "ingredient is nil",
			}
		}
		ings[col] = ing
	}
	return &Recipe{primaryKey: primaryKey, ingredients: ings}, nil
}

// MustNew is like New but panics on error. Intended for tests and
// package-level recipes built from literals.
func MustNew(primaryKey string, ingredients map[string]ingredient.Ingredient) *Recipe {
	r, err := New(primaryKey, ingredients)
	if err != nil {
		panic(fmt.Sprintf("recipe.MustNew: %v", err))
	}
	return r
}

// PrimaryKey returns the primary-key column, or false when none is declared.
func (r *Recipe) PrimaryKey() (string, bool) {
	return r.primaryKey, r.primaryKey != ""
}

// Ingredient returns the ingredient for a column.
func (r *Recipe) Ingredient(column string) (ingredient.Ingredient, bool) {
	ing, ok := r.ingredients[column]
	return ing, ok
}

// Columns returns the configured column names in sorted order.
func (r *Recipe) Columns() []string {
	return slices.Sorted(maps.Keys(r.ingredients))
}

// Len returns the number of configured columns.
func (r *Recipe) Len() int {
	return len(r.ingredients)
}
