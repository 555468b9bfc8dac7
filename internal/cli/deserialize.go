package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/rowcook/internal/ir"
)

// DeserializeOptions holds flags for the deserialize command.
type DeserializeOptions struct {
	*RootOptions
	Backend  BackendOptions
	Allocate bool
}

// DeserializedRow is one imported row with the dependencies it records.
type DeserializedRow struct {
	Line int      `json:"line"`
	Row  ir.Row   `json:"row"`
	Deps []ir.Dep `json:"deps"`
}

// DeserializeResult is the JSON payload of the deserialize command.
type DeserializeResult struct {
	Rows       []DeserializedRow `json:"rows"`
	Unresolved []UnresolvedRow   `json:"unresolved,omitempty"`
}

// NewDeserializeCommand creates the deserialize command.
func NewDeserializeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DeserializeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "deserialize <recipe> <rows.jsonl>",
		Short: "Import rows through a recipe",
		Long: `Deserialize rows into the target identifier space.

With --allocate every dependency of a row is registered first, creating
a target identifier for any source identifier that has none. Without it
only existing mappings are used.

Rows are JSON lines; use "-" to read stdin. Fully deserialized rows are
written as JSON lines. Exits with code 1 if any row has unresolved columns.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeserialize(opts, args[0], args[1], cmd)
		},
	}

	addBackendFlags(cmd, &opts.Backend)
	cmd.Flags().BoolVar(&opts.Allocate, "allocate", false, "create missing mappings for every dependency")
	return cmd
}

func runDeserialize(opts *DeserializeOptions, recipePath, rowsPath string, cmd *cobra.Command) error {
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

	alloc, err := opts.Backend.allocator()
	if err != nil {
		return commandError(formatter, ErrCodeInvalidFlags, err)
	}
	books, closeBooks, err := openBooks(cmd.Context(), &opts.Backend, alloc)
	if err != nil {
		return commandError(formatter, ErrCodeBackendFailed, err)
	}
	defer func() {
		if err := closeBooks(); err != nil {
			slog.Error("error closing mapping backend", "error", err)
		}
	}()

	result := DeserializeResult{Rows: []DeserializedRow{}}
	for _, in := range rows {
		if opts.Allocate {
			for _, d := range r.Deps(in.Row, true) {
				if _, ok := books.ResolveID(d.Type, d.ID, true); !ok {
					slog.Warn("could not register dependency", "line", in.Line, "entity_type", d.Type, "id", d.ID.Text())
				}
			}
		}

		out := r.DeserializeRow(in.Row, books)
		if !out.OK() {
			result.Unresolved = append(result.Unresolved, UnresolvedRow{Line: in.Line, Columns: out.Unresolved})
			continue
		}
		if !formatter.JSON() {
			if err := writeRow(formatter.Writer, out.Row); err != nil {
				return commandError(formatter, ErrCodeWriteFailed, err)
			}
		}
		deps := out.Deps
		if deps == nil {
			deps = []ir.Dep{}
		}
		result.Rows = append(result.Rows, DeserializedRow{Line: in.Line, Row: out.Row, Deps: deps})
	}
	slog.Info("deserialized rows", "rows", len(rows), "unresolved", len(result.Unresolved))

	return finishRows(formatter, result, result.Unresolved)
}
