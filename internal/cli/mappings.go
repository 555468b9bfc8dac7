package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/rowcook/internal/ir"
	"github.com/roach88/rowcook/internal/store"
)

// MappingsOptions holds flags for the mappings command.
type MappingsOptions struct {
	*RootOptions
	Database string
	Postgres string
	Truncate bool
}

// MappingJSON is the JSON form of a stored mapping.
type MappingJSON struct {
	EntityType ir.EntityType `json:"entity_type"`
	Source     ir.ID         `json:"source"`
	Target     ir.ID         `json:"target"`
}

// NewMappingsCommand creates the mappings command.
func NewMappingsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MappingsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "mappings <entity-type>...",
		Short: "List or truncate stored identifier mappings",
		Long: `List the identifier mappings stored for the given entity types, or,
with --truncate and no arguments, delete every stored mapping.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if opts.Truncate && len(args) > 0 {
				return fmt.Errorf("--truncate takes no entity types")
			}
			if !opts.Truncate && len(args) == 0 {
				return fmt.Errorf("requires at least 1 entity type")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMappings(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite mapping database")
	cmd.Flags().StringVar(&opts.Postgres, "postgres", "", "Postgres DSN for the mapping database")
	cmd.Flags().BoolVar(&opts.Truncate, "truncate", false, "delete every stored mapping")
	cmd.MarkFlagsMutuallyExclusive("db", "postgres")
	cmd.MarkFlagsOneRequired("db", "postgres")
	return cmd
}

func runMappings(opts *MappingsOptions, etypes []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	s, err := openStore(&BackendOptions{Database: opts.Database, Postgres: opts.Postgres})
	if err != nil {
		return commandError(formatter, ErrCodeBackendFailed, err)
	}
	defer func() {
		if err := s.Close(); err != nil {
			slog.Error("error closing database", "error", err)
		}
	}()

	ctx := cmd.Context()
	if opts.Truncate {
		if err := s.Truncate(ctx); err != nil {
			return commandError(formatter, ErrCodeBackendFailed, err)
		}
		slog.Info("truncated mappings")
		if formatter.JSON() {
			return formatter.Success(map[string]bool{"truncated": true})
		}
		fmt.Fprintln(formatter.Writer, "✓ Mappings truncated")
		return nil
	}

	var all []store.Mapping
	for _, etype := range etypes {
		ms, err := s.Mappings(ctx, etype)
		if err != nil {
			return commandError(formatter, ErrCodeBackendFailed, err)
		}
		formatter.VerboseLog("%s: %d mapping(s)", etype, len(ms))
		all = append(all, ms...)
	}

	if formatter.JSON() {
		out := make([]MappingJSON, len(all))
		for i, m := range all {
			out[i] = MappingJSON{EntityType: m.EntityType, Source: m.Source, Target: m.Target}
		}
		return formatter.Success(out)
	}
	for _, m := range all {
		fmt.Fprintf(formatter.Writer, "%s\t%s\t%s\n", m.EntityType, m.Source.Text(), m.Target.Text())
	}
	return nil
}
