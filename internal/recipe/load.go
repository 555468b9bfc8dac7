package recipe

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/rowcook/internal/tree"
)

// Error codes reported by Load.
const (
	ErrCodeNotFound          = "E001" // Recipe file missing or unreadable
	ErrCodeUnsupportedFormat = "E002" // Unknown file extension
	ErrCodeParseFailed       = "E003" // JSON, YAML or CUE syntax error
	ErrCodeSchemaViolation   = "E004" // Document fails the recipe schema
	ErrCodeInvalidRecipe     = "E005" // Ingredient configuration error
)

// LoadError represents an error that occurred while loading a recipe file.
type LoadError struct {
	Code    string
	Path    string // File path
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Path, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// IsLoadError returns true if err is or wraps a LoadError.
func IsLoadError(err error) bool {
	var le *LoadError
	return errors.As(err, &le)
}

// Load reads a recipe file. The format is chosen by extension: .json,
// .yaml/.yml or .cue.
func Load(path string) (*Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Path: path, Message: "cannot read recipe", Err: err}
	}
	return LoadBytes(path, data)
}

// LoadBytes decodes recipe data as if it had been read from path.
func LoadBytes(path string, data []byte) (*Recipe, error) {
	n, err := decodeDocument(path, data)
	if err != nil {
		return nil, err
	}

	if err := Validate(n); err != nil {
		return nil, &LoadError{Code: ErrCodeSchemaViolation, Path: path, Message: err.Error(), Err: err}
	}

	r, err := FromTree(n)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeInvalidRecipe, Path: path, Message: err.Error(), Err: err}
	}

	slog.Debug("loaded recipe", "path", path, "columns", r.Len())
	return r, nil
}

func decodeDocument(path string, data []byte) (tree.Node, error) {
	var (
		n   tree.Node
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		n, err = tree.DecodeJSON(data)
	case ".yaml", ".yml":
		n, err = tree.DecodeYAML(data)
	case ".cue":
		n, err = decodeCUE(path, data)
	default:
		return nil, &LoadError{
			Code:    ErrCodeUnsupportedFormat,
			Path:    path,
			Message: fmt.Sprintf("unsupported recipe format %q (want .json, .yaml, .yml or .cue)", ext),
		}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeParseFailed, Path: path, Message: err.Error(), Err: err}
	}
	return n, nil
}

// decodeCUE evaluates a CUE file and converts the exported value. Defaults
// are applied; any remaining non-concrete field fails the export.
func decodeCUE(path string, data []byte) (tree.Node, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compiling CUE: %w", err)
	}
	exported, err := v.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("exporting CUE: %w", err)
	}
	return tree.DecodeJSON(exported)
}
