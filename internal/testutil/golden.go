// Package testutil holds helpers shared by package tests.
package testutil

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/rowcook/internal/ir"
	"github.com/roach88/rowcook/internal/tree"
)

// AssertGolden compares data against testdata/golden/{name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./... -update
func AssertGolden(t *testing.T, name string, data []byte) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
}

// AssertGoldenNode marshals n with two-space indentation and compares it
// against a golden file.
func AssertGoldenNode(t *testing.T, name string, n tree.Node) {
	t.Helper()

	data, err := tree.MarshalIndent(n, "  ")
	if err != nil {
		t.Fatalf("marshal %s: %v", name, err)
	}
	AssertGolden(t, name, data)
}

// Row builds a row from alternating column names and values. Values may be
// nil, string, int or int64.
func Row(t *testing.T, kv ...any) ir.Row {
	t.Helper()

	if len(kv)%2 != 0 {
		t.Fatalf("testutil.Row: odd number of arguments")
	}
	row := make(ir.Row, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		col, ok := kv[i].(string)
		if !ok {
			t.Fatalf("testutil.Row: column %d is %T, want string", i/2, kv[i])
		}
		v, err := ir.FieldValueFromAny(kv[i+1])
		if err != nil {
			t.Fatalf("testutil.Row: column %q: %v", col, err)
		}
		row[col] = v
	}
	return row
}
