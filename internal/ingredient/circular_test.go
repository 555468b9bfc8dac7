package ingredient

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rowcook/internal/ir"
)

// circularProbe records the circular flag it was called with.
type circularProbe struct {
	Value
	seen *[]bool
}

func (p circularProbe) Deps(value ir.FieldValue, row ir.Row, circular bool) []ir.Dep {
	*p.seen = append(*p.seen, circular)
	return nil
}

func newParentCircular() Circular {
	return NewCircular(NewReference("nodes").Optional(ir.Null{}), NewRaw(ir.Null{}))
}

func TestCircularTrueUsesPrimary(t *testing.T) {
	c := newParentCircular()
	books := mockBooks()

	assert.Equal(t, []ir.Dep{ir.NewDep("nodes", ir.IntID(3))}, c.Deps(ir.Int(3), emptyRow(), true))

	out, ok := c.Serialize(ir.Int(3), emptyRow(), books, true)
	require.True(t, ok)
	assert.Equal(t, ir.FieldValue(ir.String("MOCK")), out)
}

func TestCircularFalseUsesFallback(t *testing.T) {
	c := newParentCircular()
	books := mockBooks()

	assert.Empty(t, c.Deps(ir.Int(3), emptyRow(), false))

	out, ok := c.Serialize(ir.Int(3), emptyRow(), books, false)
	require.True(t, ok)
	assert.Equal(t, ir.FieldValue(ir.Null{}), out)
	assert.Equal(t, 0, books.callCount())
}

func TestCircularDeserializeAlwaysUsesPrimary(t *testing.T) {
	c := newParentCircular()
	books := mockBooks()

	dv, ok := c.Deserialize(ir.Int(3), emptyRow(), books)
	require.True(t, ok)
	assert.Equal(t, []ir.Dep{ir.NewDep("nodes", ir.IntID(3))}, dv.Deps())
	assert.Equal(t, ir.FieldValue(ir.String("MOCK")), dv.Value())
}

func TestCircularForcesNestedFlagFalse(t *testing.T) {
	var seen []bool
	probe := circularProbe{seen: &seen}
	c := NewCircular(probe, probe)

	c.Deps(ir.Int(1), emptyRow(), true)
	c.Deps(ir.Int(1), emptyRow(), false)

	assert.Equal(t, []bool{false, false}, seen)
}

func TestNestedCircularTakesFallback(t *testing.T) {
	inner := NewCircular(NewReference("inner"), NewReference("inner_fallback"))
	outer := NewCircular(inner, NewRaw(ir.Null{}))

	deps := outer.Deps(ir.Int(1), emptyRow(), true)
	assert.Equal(t, []ir.Dep{ir.NewDep("inner_fallback", ir.IntID(1))}, deps, "the nested Circular never sees circular=true")
}

func TestCircularRequiredExtraFields(t *testing.T) {
	c := NewCircular(NewMorph("a_type", nil), NewMatcher("a_type", nil, nil, NewMorph("b_type", nil)))
	assert.Equal(t, []string{"a_type"}, c.RequiredExtraFields())

	c = NewCircular(NewValue(), NewMorph("b_type", nil))
	assert.Equal(t, []string{"b_type"}, c.RequiredExtraFields())
}

// Property: Circular agrees with its branches for every value.
func TestCircularDelegationProperty(t *testing.T) {
	primary := NewReference("parents").Optional(ir.Int(0))
	fallback := NewMorph("kind", map[string]ir.EntityType{"a": "as"})
	c := NewCircular(primary, fallback)
	books := mockBooks()

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	genValue := gen.Int64Range(-20, 20).Map(func(n int64) ir.FieldValue {
		switch {
		case n == -20:
			return ir.Null{}
		case n < 0:
			return ir.String(fmt.Sprintf("s%d", -n))
		default:
			return ir.Int(n)
		}
	})
	genKind := gen.OneConstOf("a", "b")

	properties.Property("Deps(v, row, true) == primary.Deps(v, row, false)", prop.ForAll(
		func(v ir.FieldValue, kind string) bool {
			row := ir.Row{"kind": ir.String(kind)}
			return assert.ObjectsAreEqual(primary.Deps(v, row, false), c.Deps(v, row, true))
		},
		genValue, genKind,
	))

	properties.Property("Deps(v, row, false) == fallback.Deps(v, row, false)", prop.ForAll(
		func(v ir.FieldValue, kind string) bool {
			row := ir.Row{"kind": ir.String(kind)}
			return assert.ObjectsAreEqual(fallback.Deps(v, row, false), c.Deps(v, row, false))
		},
		genValue, genKind,
	))

	properties.Property("Deserialize == primary.Deserialize", prop.ForAll(
		func(v ir.FieldValue, kind string) bool {
			row := ir.Row{"kind": ir.String(kind)}
			want, wantOK := primary.Deserialize(v, row, books)
			got, gotOK := c.Deserialize(v, row, books)
			return wantOK == gotOK && assert.ObjectsAreEqual(want, got)
		},
		genValue, genKind,
	))

	properties.TestingRun(t)
}
