package recipe

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/roach88/rowcook/internal/tree"
)

//go:embed recipe.schema.json
var schemaJSON string

const schemaURL = "https://rowcook.schemas.local/recipe.schema.json"

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(schemaURL, strings.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("recipe schema load failed: %w", err)
	}
	return c.Compile(schemaURL)
})

// SchemaError reports a document that does not conform to the recipe
// schema.
type SchemaError struct {
	Err error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("recipe schema violation: %v", e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// Validate checks a decoded document against the embedded recipe schema.
func Validate(n tree.Node) error {
	sch, err := compiledSchema()
	if err != nil {
		return err
	}
	if err := sch.Validate(tree.Plain(n)); err != nil {
		return &SchemaError{Err: err}
	}
	return nil
}

// Schema returns the embedded JSON Schema document.
func Schema() string {
	return schemaJSON
}
