package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/rowcook/internal/ir"
)

// DepsOptions holds flags for the deps command.
type DepsOptions struct {
	*RootOptions
	Circular bool
}

// RowDeps lists the dependencies of one input row.
type RowDeps struct {
	Line int      `json:"line"`
	Deps []ir.Dep `json:"deps"`
}

// NewDepsCommand creates the deps command.
func NewDepsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DepsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "deps <recipe> <rows.jsonl>",
		Short: "List the entities each row depends on",
		Long: `List, per row, the (entity type, identifier) pairs a recipe finds in
it. Rows are JSON lines; use "-" to read stdin. No mapping backend is
consulted.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeps(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Circular, "circular", false, "follow the primary ingredient of CIRCULAR columns")
	return cmd
}

func runDeps(opts *DepsOptions, recipePath, rowsPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	r, err := loadRecipe(formatter, recipePath)
	if err != nil {
		return err
	}
	rows, err := readRows(rowsPath, cmd.InOrStdin())
	if err != nil {
		return commandError(formatter, ErrCodeRowsFailed, err)
	}

	result := make([]RowDeps, 0, len(rows))
	for _, in := range rows {
		deps := r.Deps(in.Row, opts.Circular)
		if deps == nil {
			deps = []ir.Dep{}
		}
		result = append(result, RowDeps{Line: in.Line, Deps: deps})
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}

	for _, rd := range result {
		parts := make([]string, len(rd.Deps))
		for i, d := range rd.Deps {
			parts[i] = d.Type + ":" + d.ID.Text()
		}
		fmt.Fprintf(formatter.Writer, "line %d: %s\n", rd.Line, strings.Join(parts, " "))
	}
	return nil
}
