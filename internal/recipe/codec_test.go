package recipe

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rowcook/internal/ingredient"
	"github.com/roach88/rowcook/internal/ir"
	"github.com/roach88/rowcook/internal/testutil"
	"github.com/roach88/rowcook/internal/tree"
)

func TestExampleRecipeGolden(t *testing.T) {
	r := loadExample(t)

	data, err := MarshalIndent(r, "  ")
	require.NoError(t, err)
	testutil.AssertGolden(t, "example_recipe", data)
}

func TestRoundTrip(t *testing.T) {
	r := loadExample(t)

	data, err := Marshal(r)
	require.NoError(t, err)

	back, err := Parse(data)
	require.NoError(t, err)
	assert.True(t, Equal(r, back))

	for _, col := range r.Columns() {
		a, _ := r.Ingredient(col)
		b, ok := back.Ingredient(col)
		require.True(t, ok, col)
		assert.True(t, ingredient.Equal(a, b), col)
	}

	again, err := Marshal(back)
	require.NoError(t, err)
	assert.Equal(t, string(data), string(again))
}

func TestRoundTripPreservesPatternOrder(t *testing.T) {
	r := loadExample(t)
	payload, ok := r.Ingredient("payload")
	require.True(t, ok)

	m, ok := payload.(ingredient.Matcher)
	require.True(t, ok)

	var exprs []string
	for _, p := range m.Patterns() {
		exprs = append(exprs, p.Expr)
	}
	assert.Equal(t, []string{"^foo_", "^(note|memo)$"}, exprs)
}

func TestParseMinimal(t *testing.T) {
	r, err := Parse([]byte(`{"ingredients": {"a": {"type": "VALUE"}}}`))
	require.NoError(t, err)

	_, ok := r.PrimaryKey()
	assert.False(t, ok)

	data, err := Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, `{"primary_key":null,"ingredients":{"a":{"type":"VALUE","config":{}}}}`, string(data))
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name   string
		doc    string
		schema bool
	}{
		{"syntax", `{"ingredients": `, false},
		{"float", `{"ingredients": {"a": {"type": "RAW", "config": {"value": 1.5}}}}`, false},
		{"not object", `[]`, true},
		{"missing ingredients", `{"primary_key": "id"}`, true},
		{"unknown top-level", `{"ingredients": {}, "version": 2}`, true},
		{"empty primary key", `{"primary_key": "", "ingredients": {}}`, true},
		{"unknown tag", `{"ingredients": {"a": {"type": "LOOKUP", "config": {}}}}`, true},
		{"ref without type", `{"ingredients": {"a": {"type": "REF", "config": {}}}}`, true},
		{"raw bool", `{"ingredients": {"a": {"type": "RAW", "config": {"value": true}}}}`, true},
		{"nested bad", `{"ingredients": {"a": {"type": "CIRCULAR", "config": {
			"ingredient": {"type": "VALUE"},
			"fallback": {"type": "MORPH", "config": {"field": "t"}}}}}}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)

			var se *SchemaError
			assert.Equal(t, tt.schema, errors.As(err, &se))
		})
	}
}

func TestFromTreeReportsPath(t *testing.T) {
	// FromTree does not consult the schema, so shape errors surface as
	// ConfigError with a document path.
	n, err := tree.DecodeJSON([]byte(`{"ingredients": {"bar_id": {"type": "CIRCULAR", "config": {
		"ingredient": {"type": "REF", "config": {"type": "bars"}},
		"fallback": {"type": "NOPE"}}}}}`))
	require.NoError(t, err)

	_, err = FromTree(n)
	require.Error(t, err)

	var ce *ingredient.ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "ingredients.bar_id.config.fallback.type", ce.Path)
}

func TestEqual(t *testing.T) {
	a := MustNew("id", map[string]ingredient.Ingredient{"id": ingredient.NewReference("foos")})
	b := MustNew("id", map[string]ingredient.Ingredient{"id": ingredient.NewReference("foos")})
	c := MustNew("", map[string]ingredient.Ingredient{"id": ingredient.NewReference("foos")})
	d := MustNew("id", map[string]ingredient.Ingredient{"id": ingredient.NewReference("foos", ir.Null{})})

	assert.True(t, Equal(a, b))
	assert.False(t, Equal(a, c))
	assert.False(t, Equal(a, d))
	assert.True(t, Equal(nil, nil))
	assert.False(t, Equal(a, nil))
}

func TestFingerprint(t *testing.T) {
	r := loadExample(t)

	fp, err := Fingerprint(r)
	require.NoError(t, err)
	assert.Len(t, fp, 64)

	again, err := Fingerprint(loadExample(t))
	require.NoError(t, err)
	assert.Equal(t, fp, again)

	reordered := MustNew("", map[string]ingredient.Ingredient{
		"p": ingredient.NewMatcher("k", nil, []ingredient.Pattern{
			{Expr: "^b", Ingredient: ingredient.NewValue()},
			{Expr: "^a", Ingredient: ingredient.NewValue()},
		}, nil),
	})
	original := MustNew("", map[string]ingredient.Ingredient{
		"p": ingredient.NewMatcher("k", nil, []ingredient.Pattern{
			{Expr: "^a", Ingredient: ingredient.NewValue()},
			{Expr: "^b", Ingredient: ingredient.NewValue()},
		}, nil),
	})
	fa, err := Fingerprint(original)
	require.NoError(t, err)
	fb, err := Fingerprint(reordered)
	require.NoError(t, err)
	assert.NotEqual(t, fa, fb)
}

func TestFingerprintNormalizesUnicode(t *testing.T) {
	decomposed := MustNew("", map[string]ingredient.Ingredient{
		"name": ingredient.NewRaw(ir.String("cafe\u0301")),
	})
	composed := MustNew("", map[string]ingredient.Ingredient{
		"name": ingredient.NewRaw(ir.String("caf\u00e9")),
	})

	fa, err := Fingerprint(decomposed)
	require.NoError(t, err)
	fb, err := Fingerprint(composed)
	require.NoError(t, err)
	assert.Equal(t, fa, fb)
	assert.False(t, Equal(decomposed, composed))
}

func TestSchemaEmbedded(t *testing.T) {
	assert.True(t, strings.Contains(Schema(), "draft/2020-12"))
}
