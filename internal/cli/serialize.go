package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/rowcook/internal/ir"
)

// SerializeOptions holds flags for the serialize command.
type SerializeOptions struct {
	*RootOptions
	Backend  BackendOptions
	Circular bool
}

// UnresolvedRow names the columns of one input row that did not resolve.
type UnresolvedRow struct {
	Line    int      `json:"line"`
	Columns []string `json:"columns"`
}

// SerializeResult is the JSON payload of the serialize command.
type SerializeResult struct {
	Rows       []ir.Row        `json:"rows"`
	Unresolved []UnresolvedRow `json:"unresolved,omitempty"`
}

// NewSerializeCommand creates the serialize command.
func NewSerializeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SerializeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serialize <recipe> <rows.jsonl>",
		Short: "Export rows through a recipe",
		Long: `Serialize source rows: every identifier is replaced by its mapped
target identifier. Mappings are looked up, never created.

Rows are JSON lines; use "-" to read stdin. Fully serialized rows are
written as JSON lines. Exits with code 1 if any row has unresolved columns.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSerialize(opts, args[0], args[1], cmd)
		},
	}

	addBackendFlags(cmd, &opts.Backend)
	cmd.Flags().BoolVar(&opts.Circular, "circular", false, "follow the primary ingredient of CIRCULAR columns")
	return cmd
}

func runSerialize(opts *SerializeOptions, recipePath, rowsPath string, cmd *cobra.Command) error {
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

	result := SerializeResult{Rows: []ir.Row{}}
	for _, in := range rows {
		if missing := r.MissingColumns(in.Row); len(missing) > 0 {
			slog.Debug("row is missing columns", "line", in.Line, "columns", missing)
		}
		out := r.SerializeRow(in.Row, books, opts.Circular)
		if !out.OK() {
			result.Unresolved = append(result.Unresolved, UnresolvedRow{Line: in.Line, Columns: out.Unresolved})
			continue
		}
		if !formatter.JSON() {
			if err := writeRow(formatter.Writer, out.Row); err != nil {
				return commandError(formatter, ErrCodeWriteFailed, err)
			}
		}
		result.Rows = append(result.Rows, out.Row)
	}
	slog.Info("serialized rows", "rows", len(rows), "unresolved", len(result.Unresolved))

	return finishRows(formatter, result, result.Unresolved)
}

// finishRows writes the JSON payload if needed and reports unresolved rows.
func finishRows(formatter *OutputFormatter, payload any, unresolved []UnresolvedRow) error {
	if formatter.JSON() {
		if err := formatter.Success(payload); err != nil {
			return err
		}
	} else {
		for _, u := range unresolved {
			fmt.Fprintf(formatter.GetErrWriter(), "line %d: unresolved columns: %s\n", u.Line, strings.Join(u.Columns, ", "))
		}
	}

	if len(unresolved) > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%s: %d row(s) unresolved", ErrCodeUnresolved, len(unresolved)))
	}
	return nil
}
