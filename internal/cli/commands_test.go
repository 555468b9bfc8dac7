package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rowcook/internal/testutil"
)

const (
	usersRecipe = "testdata/users.json"
	usersRows   = "testdata/users.jsonl"
)

// execute runs the root command with args and returns stdout, stderr and
// the command error.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func decodeResponse(t *testing.T, out string, data any) {
	t.Helper()

	var resp struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	require.Equal(t, "ok", resp.Status)
	require.NoError(t, json.Unmarshal(resp.Data, data))
}

func TestValidateText(t *testing.T) {
	out, _, err := execute(t, "", "validate", usersRecipe)
	require.NoError(t, err)

	assert.Contains(t, out, "✓ Recipe valid")
	assert.Contains(t, out, "primary key: id")
	assert.Contains(t, out, "columns:     id, name, parent_id, team_id")
	assert.Regexp(t, `fingerprint: [0-9a-f]{64}`, out)
}

func TestValidateJSON(t *testing.T) {
	out, _, err := execute(t, "", "--format", "json", "validate", usersRecipe)
	require.NoError(t, err)

	var result ValidationResult
	decodeResponse(t, out, &result)
	assert.True(t, result.Valid)
	require.NotNil(t, result.PrimaryKey)
	assert.Equal(t, "id", *result.PrimaryKey)
	assert.Len(t, result.Fingerprint, 64)
	assert.Equal(t, []string{"id", "name", "parent_id", "team_id"}, result.RequiredColumns)
}

func TestValidateErrors(t *testing.T) {
	dir := t.TempDir()
	badTag := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(badTag, []byte(`{"ingredients": {"a": {"type": "NOPE"}}}`), 0o644))
	ini := filepath.Join(dir, "recipe.ini")
	require.NoError(t, os.WriteFile(ini, []byte("[ingredients]\n"), 0o644))

	tests := []struct {
		name string
		path string
		code string
	}{
		{"missing", filepath.Join(dir, "missing.json"), ErrCodeNotFound},
		{"format", ini, ErrCodeUnsupportedFormat},
		{"schema", badTag, ErrCodeSchemaViolation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errOut, err := execute(t, "", "validate", tt.path)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, errOut, "Error ["+tt.code+"]")
		})
	}
}

func TestValidateErrorJSON(t *testing.T) {
	out, _, err := execute(t, "", "--format", "json", "validate", "testdata/nope.yaml")
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
}

func TestFmtGolden(t *testing.T) {
	out, _, err := execute(t, "", "fmt", usersRecipe)
	require.NoError(t, err)
	testutil.AssertGolden(t, "fmt_users", []byte(out))
}

func TestFmtOutputFile(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "users.json")
	out, _, err := execute(t, "", "fmt", "-o", dest, usersRecipe)
	require.NoError(t, err)
	assert.Empty(t, out)

	written, err := os.ReadFile(dest)
	require.NoError(t, err)

	// The normalized document validates on its own.
	_, _, err = execute(t, "", "validate", dest)
	require.NoError(t, err)

	again, _, err := execute(t, "", "fmt", dest)
	require.NoError(t, err)
	assert.Equal(t, string(written), again)
}

func TestSchemaCommand(t *testing.T) {
	out, _, err := execute(t, "", "schema")
	require.NoError(t, err)
	assert.Contains(t, out, `"$schema": "https://json-schema.org/draft/2020-12/schema"`)
}

func TestDeps(t *testing.T) {
	out, _, err := execute(t, "", "deps", usersRecipe, usersRows)
	require.NoError(t, err)
	assert.Equal(t, "line 1: users:1 teams:10\nline 3: users:2\n", out)

	out, _, err = execute(t, "", "deps", "--circular", usersRecipe, usersRows)
	require.NoError(t, err)
	assert.Equal(t, "line 1: users:1 teams:10\nline 3: users:2 users:1\n", out)
}

func TestDepsJSONFromStdin(t *testing.T) {
	out, _, err := execute(t, `{"id": "a7", "team_id": null}`+"\n", "--format", "json", "deps", usersRecipe, "-")
	require.NoError(t, err)

	var result []struct {
		Line int `json:"line"`
		Deps []struct {
			Type string `json:"type"`
			ID   any    `json:"id"`
		} `json:"deps"`
	}
	decodeResponse(t, out, &result)
	require.Len(t, result, 1)
	assert.Equal(t, 1, result[0].Line)
	require.Len(t, result[0].Deps, 1)
	assert.Equal(t, "users", result[0].Deps[0].Type)
	assert.Equal(t, "a7", result[0].Deps[0].ID)
}

func TestDepsBadRows(t *testing.T) {
	_, errOut, err := execute(t, `{"id": 1.5}`+"\n", "deps", usersRecipe, "-")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, errOut, "Error ["+ErrCodeRowsFailed+"]")
	assert.Contains(t, errOut, "line 1")
}

func TestImportExportRoundTrip(t *testing.T) {
	db := filepath.Join(t.TempDir(), "books.db")

	// Nothing is mapped yet: every row is unresolved.
	_, errOut, err := execute(t, "", "deserialize", "--db", db, usersRecipe, usersRows)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, errOut, "line 1: unresolved columns: id, team_id")

	out, _, err := execute(t, "", "deserialize", "--db", db, "--ids", "sequence", "--allocate", usersRecipe, usersRows)
	require.NoError(t, err)
	assert.Equal(t,
		`{"id":1,"name":"ada","parent_id":null,"team_id":1}`+"\n"+
			`{"id":2,"name":"bob","parent_id":1,"team_id":null}`+"\n",
		out)

	out, _, err = execute(t, "", "serialize", "--db", db, "--circular", usersRecipe, usersRows)
	require.NoError(t, err)
	assert.Equal(t,
		`{"id":1,"name":"ada","parent_id":null,"team_id":1}`+"\n"+
			`{"id":2,"name":"bob","parent_id":1,"team_id":null}`+"\n",
		out)

	out, _, err = execute(t, "", "serialize", "--db", db, usersRecipe, usersRows)
	require.NoError(t, err)
	assert.Contains(t, out, `{"id":2,"name":"bob","parent_id":null,"team_id":null}`)

	out, _, err = execute(t, "", "mappings", "--db", db, "users", "teams")
	require.NoError(t, err)
	assert.Equal(t, "users\t1\t1\nusers\t2\t2\nteams\t10\t1\n", out)

	out, _, err = execute(t, "", "--format", "json", "mappings", "--db", db, "teams")
	require.NoError(t, err)
	var mappings []struct {
		EntityType string `json:"entity_type"`
		Source     int    `json:"source"`
		Target     int    `json:"target"`
	}
	decodeResponse(t, out, &mappings)
	assert.Equal(t, 1, len(mappings))
	assert.Equal(t, 10, mappings[0].Source)

	_, _, err = execute(t, "", "mappings", "--db", db, "--truncate")
	require.NoError(t, err)
	out, _, err = execute(t, "", "mappings", "--db", db, "users")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestDeserializeSequenceContinuesAcrossRuns(t *testing.T) {
	db := filepath.Join(t.TempDir(), "books.db")

	_, _, err := execute(t, "", "deserialize", "--db", db, "--ids", "sequence", "--allocate", usersRecipe, usersRows)
	require.NoError(t, err)

	row := `{"id": 5, "name": "cy", "team_id": null, "parent_id": null}` + "\n"
	out, _, err := execute(t, row, "deserialize", "--db", db, "--ids", "sequence", "--allocate", usersRecipe, "-")
	require.NoError(t, err)
	assert.Equal(t, `{"id":3,"name":"cy","parent_id":null,"team_id":null}`+"\n", out)
}

func TestDeserializeJSON(t *testing.T) {
	db := filepath.Join(t.TempDir(), "books.db")

	out, _, err := execute(t, "", "--format", "json", "deserialize", "--db", db, "--ids", "sequence", "--allocate", usersRecipe, usersRows)
	require.NoError(t, err)

	var result struct {
		Rows []struct {
			Line int            `json:"line"`
			Row  map[string]any `json:"row"`
			Deps []struct {
				Type string `json:"type"`
				ID   any    `json:"id"`
			} `json:"deps"`
		} `json:"rows"`
		Unresolved []UnresolvedRow `json:"unresolved"`
	}
	decodeResponse(t, out, &result)
	require.Len(t, result.Rows, 2)
	assert.Empty(t, result.Unresolved)
	assert.Equal(t, 3, result.Rows[1].Line)
	assert.NotContains(t, result.Rows[1].Row, "legacy")
	require.Len(t, result.Rows[0].Deps, 2)
	assert.Equal(t, "users", result.Rows[0].Deps[0].Type)
	assert.Equal(t, "teams", result.Rows[0].Deps[1].Type)
}

func TestSerializeReportsUnresolvedJSON(t *testing.T) {
	db := filepath.Join(t.TempDir(), "books.db")

	out, _, err := execute(t, "", "--format", "json", "serialize", "--db", db, usersRecipe, usersRows)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeUnresolved)

	var result SerializeResult
	decodeResponse(t, out, &result)
	assert.Empty(t, result.Rows)
	require.Len(t, result.Unresolved, 2)
	assert.Equal(t, UnresolvedRow{Line: 1, Columns: []string{"id", "team_id"}}, result.Unresolved[0])
	assert.Equal(t, UnresolvedRow{Line: 3, Columns: []string{"id"}}, result.Unresolved[1])
}

func TestInvalidIDKind(t *testing.T) {
	db := filepath.Join(t.TempDir(), "books.db")
	_, errOut, err := execute(t, "", "deserialize", "--db", db, "--ids", "serial", usersRecipe, usersRows)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, errOut, "Error ["+ErrCodeInvalidFlags+"]")
}

func TestMappingsArgs(t *testing.T) {
	db := filepath.Join(t.TempDir(), "books.db")

	_, _, err := execute(t, "", "mappings", "--db", db)
	require.Error(t, err)

	_, _, err = execute(t, "", "mappings", "--db", db, "--truncate", "users")
	require.Error(t, err)
}
