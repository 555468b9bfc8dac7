package ingredient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rowcook/internal/ir"
	"github.com/roach88/rowcook/internal/tree"
)

func decodeString(t *testing.T, doc string) (Ingredient, error) {
	t.Helper()
	n, err := tree.DecodeJSON([]byte(doc))
	require.NoError(t, err)
	return Decode(n, "")
}

func TestDecodeEachTag(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want Ingredient
	}{
		{"value", `{"type": "VALUE", "config": {}}`, NewValue()},
		{"value without config", `{"type": "VALUE"}`, NewValue()},
		{"raw", `{"type": "RAW", "config": {"value": 123}}`, NewRaw(ir.Int(123))},
		{"raw null", `{"type": "RAW", "config": {"value": null}}`, NewRaw(ir.Null{})},
		{"ref", `{"type": "REF", "config": {"type": "foos", "optional_values": [null, 0]}}`,
			NewReference("foos", ir.Null{}, ir.Int(0))},
		{"ref without optional", `{"type": "REF", "config": {"type": "foos"}}`, NewReference("foos")},
		{"morph", `{"type": "MORPH", "config": {"field": "bazable_type", "morph_map": {"FOO": "foos", "BAR": "bars"}, "optional_values": []}}`,
			NewMorph("bazable_type", map[string]ir.EntityType{"FOO": "foos", "BAR": "bars"})},
		{"circular", `{"type": "CIRCULAR", "config": {
			"ingredient": {"type": "REF", "config": {"type": "bars", "optional_values": [null]}},
			"fallback": {"type": "RAW", "config": {"value": null}}}}`,
			NewCircular(NewReference("bars", ir.Null{}), NewRaw(ir.Null{}))},
		{"match", `{"type": "MATCH", "config": {
			"field": "kind",
			"on": {"a": {"type": "VALUE", "config": {}}},
			"patterns": {"^z": {"type": "RAW", "config": {"value": 1}}, "^b": {"type": "VALUE", "config": {}}},
			"default": null}}`,
			NewMatcher("kind", map[string]Ingredient{"a": NewValue()}, []Pattern{
				{Expr: "^z", Ingredient: NewRaw(ir.Int(1))},
				{Expr: "^b", Ingredient: NewValue()},
			}, nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeString(t, tt.doc)
			require.NoError(t, err)
			assert.Equal(t, tt.want.Tag(), got.Tag())
			assert.True(t, Equal(tt.want, got), "decoded ingredient differs from expected")
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		path string
	}{
		{"not an object", `[]`, ""},
		{"missing type", `{"config": {}}`, "type"},
		{"unknown tag", `{"type": "NOPE", "config": {}}`, "type"},
		{"lowercase tag", `{"type": "ref", "config": {"type": "foos"}}`, "type"},
		{"unknown member", `{"type": "VALUE", "cfg": {}}`, "cfg"},
		{"config not object", `{"type": "VALUE", "config": []}`, "config"},
		{"value with config", `{"type": "VALUE", "config": {"x": 1}}`, "config.x"},
		{"raw missing value", `{"type": "RAW", "config": {}}`, "config.value"},
		{"raw bool value", `{"type": "RAW", "config": {"value": true}}`, "config.value"},
		{"ref missing type", `{"type": "REF", "config": {}}`, "config.type"},
		{"ref empty type", `{"type": "REF", "config": {"type": ""}}`, "config.type"},
		{"ref optional not array", `{"type": "REF", "config": {"type": "a", "optional_values": null}}`, "config.optional_values"},
		{"ref optional bad element", `{"type": "REF", "config": {"type": "a", "optional_values": [null, {}]}}`, "config.optional_values[1]"},
		{"morph missing map", `{"type": "MORPH", "config": {"field": "t"}}`, "config.morph_map"},
		{"morph map value", `{"type": "MORPH", "config": {"field": "t", "morph_map": {"A": 1}}}`, "config.morph_map.A"},
		{"match nested error", `{"type": "MATCH", "config": {"field": "k", "patterns": {"^a": {"type": "BAD"}}}}`, "config.patterns.^a.type"},
		{"match default error", `{"type": "MATCH", "config": {"field": "k", "default": {"type": "REF", "config": {}}}}`, "config.default.config.type"},
		{"circular missing fallback", `{"type": "CIRCULAR", "config": {"ingredient": {"type": "VALUE"}}}`, "config.fallback"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeString(t, tt.doc)
			require.Error(t, err)
			assert.True(t, IsConfigError(err))

			var ce *ConfigError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.path, ce.Path)
		})
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	ingredients := []Ingredient{
		NewValue(),
		NewRaw(ir.String("reset")),
		NewReference("foos", ir.Null{}),
		NewMorph("owner_type", map[string]ir.EntityType{"U": "users", "T": "teams"}, ir.Null{}),
		NewMatcher("kind",
			map[string]Ingredient{"x": NewValue(), "a": NewReference("as")},
			[]Pattern{{Expr: "^z", Ingredient: NewValue()}, {Expr: "(", Ingredient: NewRaw(ir.Int(1))}},
			NewCircular(NewReference("self"), NewRaw(ir.Null{}))),
		NewCircular(NewReference("nodes", ir.Null{}), NewRaw(ir.Null{})),
	}

	for _, ing := range ingredients {
		t.Run(string(ing.Tag()), func(t *testing.T) {
			data, err := tree.Marshal(Encode(ing))
			require.NoError(t, err)

			back, err := decodeString(t, string(data))
			require.NoError(t, err)
			assert.True(t, Equal(ing, back))

			again, err := tree.Marshal(Encode(back))
			require.NoError(t, err)
			assert.Equal(t, string(data), string(again))
		})
	}
}

func TestEncodeShape(t *testing.T) {
	data, err := tree.Marshal(Encode(NewMorph("t", map[string]ir.EntityType{"B": "bs", "A": "as"}, ir.Null{})))
	require.NoError(t, err)
	assert.Equal(t,
		`{"type":"MORPH","config":{"field":"t","morph_map":{"A":"as","B":"bs"},"optional_values":[null]}}`,
		string(data))

	data, err = tree.Marshal(Encode(NewMatcher("k", nil, nil, nil)))
	require.NoError(t, err)
	assert.Equal(t, `{"type":"MATCH","config":{"field":"k","on":{},"patterns":{},"default":null}}`, string(data))
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(NewReference("a"), NewReference("a")))
	assert.False(t, Equal(NewReference("a"), NewReference("b")))
	assert.False(t, Equal(NewReference("a"), NewReference("a", ir.Null{})))
	assert.False(t, Equal(NewValue(), NewRaw(ir.Null{})))
	assert.True(t, Equal(nil, nil))
	assert.False(t, Equal(NewValue(), nil))

	order1 := NewMatcher("k", nil, []Pattern{{"^a", NewValue()}, {"^b", NewValue()}}, nil)
	order2 := NewMatcher("k", nil, []Pattern{{"^b", NewValue()}, {"^a", NewValue()}}, nil)
	assert.False(t, Equal(order1, order2), "pattern order is significant")
}
