package cli

import (
	"errors"
	"fmt"

	"github.com/roach88/rowcook/internal/recipe"
)

// Error code constants. E001-E005 are the recipe loader's codes.
const (
	ErrCodeNotFound          = recipe.ErrCodeNotFound
	ErrCodeUnsupportedFormat = recipe.ErrCodeUnsupportedFormat
	ErrCodeParseFailed       = recipe.ErrCodeParseFailed
	ErrCodeSchemaViolation   = recipe.ErrCodeSchemaViolation
	ErrCodeInvalidRecipe     = recipe.ErrCodeInvalidRecipe
	ErrCodeRowsFailed        = "E006" // Rows file unreadable or malformed
	ErrCodeBackendFailed     = "E007" // Mapping backend unavailable
	ErrCodeUnresolved        = "E008" // Rows with unresolved columns
	ErrCodeWriteFailed       = "E009" // Output write error
	ErrCodeInvalidFlags      = "E010" // Conflicting or missing flags
)

// commandError reports err through the formatter and returns the ExitError
// the command should fail with.
func commandError(f *OutputFormatter, code string, err error) error {
	_ = f.Error(code, err.Error(), nil)
	return WrapExitError(ExitCommandError, code, err)
}

// loadRecipe loads a recipe file, reporting load errors with their code.
func loadRecipe(f *OutputFormatter, path string) (*recipe.Recipe, error) {
	r, err := recipe.Load(path)
	if err != nil {
		var le *recipe.LoadError
		if errors.As(err, &le) {
			return nil, commandError(f, le.Code, err)
		}
		return nil, commandError(f, ErrCodeInvalidRecipe, fmt.Errorf("%s: %w", path, err))
	}
	f.VerboseLog("Loaded recipe %s (%d column(s))", path, r.Len())
	return r, nil
}
