package recipe

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/roach88/rowcook/internal/ingredient"
	"github.com/roach88/rowcook/internal/tree"
)

// DomainRecipe separates recipe fingerprints from any other SHA-256 use.
const DomainRecipe = "rowcook/recipe/v1"

// FromTree builds a Recipe from a decoded document. The document must
// already have passed Validate; FromTree still rejects every shape error it
// meets, reporting a *ingredient.ConfigError.
func FromTree(n tree.Node) (*Recipe, error) {
	doc, ok := n.(tree.Object)
	if !ok {
		return nil, &ingredient.ConfigError{Message: fmt.Sprintf("recipe must be an object, got %s", tree.Kind(n))}
	}
	for _, m := range doc {
		if m.Key != "primary_key" && m.Key != "ingredients" {
			return nil, &ingredient.ConfigError{Path: m.Key, Message: "unknown field"}
		}
	}

	var primaryKey string
	if pk, ok := doc.Get("primary_key"); ok {
		switch val := pk.(type) {
		case tree.Null:
		case tree.String:
			if val == "" {
				return nil, &ingredient.ConfigError{Path: "primary_key", Message: "primary_key must not be empty"}
			}
			primaryKey = string(val)
		default:
			return nil, &ingredient.ConfigError{
				Path:    "primary_key",
				Message: fmt.Sprintf("expected null or string, got %s", tree.Kind(pk)),
			}
		}
	}

	ingsNode, ok := doc.Get("ingredients")
	if !ok {
		return nil, &ingredient.ConfigError{Path: "ingredients", Message: "ingredients is required"}
	}
	ingsObj, ok := ingsNode.(tree.Object)
	if !ok {
		return nil, &ingredient.ConfigError{
			Path:    "ingredients",
			Message: fmt.Sprintf("expected object, got %s", tree.Kind(ingsNode)),
		}
	}

	ings := make(map[string]ingredient.Ingredient, len(ingsObj))
	for _, m := range ingsObj {
		ing, err := ingredient.Decode(m.Value, ingredient.JoinPath("ingredients", m.Key))
		if err != nil {
			return nil, err
		}
		ings[m.Key] = ing
	}
	return New(primaryKey, ings)
}

// Parse validates and decodes a JSON recipe document.
func Parse(data []byte) (*Recipe, error) {
	n, err := tree.DecodeJSON(data)
	if err != nil {
		return nil, fmt.Errorf("parse recipe: %w", err)
	}
	if err := Validate(n); err != nil {
		return nil, err
	}
	return FromTree(n)
}

// Encode returns the document form of r. Columns are emitted in sorted
// order so that equal recipes encode identically.
func Encode(r *Recipe) tree.Object {
	var pk tree.Node = tree.Null{}
	if col, ok := r.PrimaryKey(); ok {
		pk = tree.String(col)
	}

	cols := r.Columns()
	ings := make(tree.Object, 0, len(cols))
	for _, col := range cols {
		ings = append(ings, tree.M(col, ingredient.Encode(r.ingredients[col])))
	}

	return tree.Object{
		tree.M("primary_key", pk),
		tree.M("ingredients", ings),
	}
}

// Marshal returns the compact JSON document for r.
func Marshal(r *Recipe) ([]byte, error) {
	return tree.Marshal(Encode(r))
}

// MarshalIndent returns the indented JSON document for r.
func MarshalIndent(r *Recipe, indent string) ([]byte, error) {
	return tree.MarshalIndent(Encode(r), indent)
}

// Equal reports whether a and b declare the same primary key and the same
// ingredients with the same configuration.
func Equal(a, b *Recipe) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ea, err := Marshal(a)
	if err != nil {
		return false
	}
	eb, err := Marshal(b)
	if err != nil {
		return false
	}
	return bytes.Equal(ea, eb)
}

// Fingerprint returns a stable content hash of r.
// Format: hex(SHA256(DomainRecipe + 0x00 + canonical document))
func Fingerprint(r *Recipe) (string, error) {
	canonical, err := tree.MarshalCanonical(Encode(r))
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}
	h := sha256.New()
	h.Write([]byte(DomainRecipe))
	h.Write([]byte{0x00})
	h.Write(canonical)
	return hex.EncodeToString(h.Sum(nil)), nil
}
