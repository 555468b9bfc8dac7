package cli

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/rowcook/internal/recipe"
)

// FmtOptions holds flags for the fmt command.
type FmtOptions struct {
	*RootOptions
	Output string
}

// NewFmtCommand creates the fmt command.
func NewFmtCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FmtOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "fmt <recipe>",
		Short: "Re-emit a recipe as normalized JSON",
		Long: `Load a recipe from any supported format and write it back as an
indented JSON document with columns sorted and every config field present.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFmt(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write to file instead of stdout")
	return cmd
}

func runFmt(opts *FmtOptions, path string, cmd *cobra.Command) error {
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

	doc, err := recipe.MarshalIndent(r, "  ")
	if err != nil {
		return commandError(formatter, ErrCodeWriteFailed, err)
	}
	doc = append(doc, '\n')

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, doc, 0o644); err != nil {
			return commandError(formatter, ErrCodeWriteFailed, err)
		}
		formatter.VerboseLog("Wrote %s", opts.Output)
		return nil
	}

	if formatter.JSON() {
		return formatter.Success(json.RawMessage(doc))
	}
	_, err = formatter.Writer.Write(doc)
	return err
}
