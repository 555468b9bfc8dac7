package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/rowcook/internal/recipe"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid           bool     `json:"valid"`
	Fingerprint     string   `json:"fingerprint"`
	PrimaryKey      *string  `json:"primary_key"`
	Columns         []string `json:"columns"`
	RequiredColumns []string `json:"required_columns"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <recipe>",
		Short: "Validate a recipe document",
		Long: `Validate a recipe document (.json, .yaml, .yml or .cue).

Checks the document against the recipe schema, builds every ingredient
and prints the recipe fingerprint.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	r, err := loadRecipe(formatter, path)
	if err != nil {
		return err
	}

	fp, err := recipe.Fingerprint(r)
	if err != nil {
		return commandError(formatter, ErrCodeInvalidRecipe, err)
	}

	result := ValidationResult{
		Valid:           true,
		Fingerprint:     fp,
		Columns:         r.Columns(),
		RequiredColumns: r.RequiredColumns(),
	}
	if pk, ok := r.PrimaryKey(); ok {
		result.PrimaryKey = &pk
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintln(w, "✓ Recipe valid")
	fmt.Fprintf(w, "  fingerprint: %s\n", fp)
	if result.PrimaryKey != nil {
		fmt.Fprintf(w, "  primary key: %s\n", *result.PrimaryKey)
	} else {
		fmt.Fprintln(w, "  primary key: (none)")
	}
	fmt.Fprintf(w, "  columns:     %s\n", strings.Join(result.Columns, ", "))
	return nil
}
