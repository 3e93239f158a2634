package cmd

import (
	"github.com/spf13/cobra"

	"github.com/deploymenttheory/go-sav/internal/format"
	"github.com/deploymenttheory/go-sav/pkg/app"
)

// Record output flags shared by dump and export
type formatFlags struct {
	kind      string
	delimiter string
	header    bool
}

func (f *formatFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.kind, "kind", "fixed", "record layout (fixed, delimited, csv)")
	cmd.Flags().StringVar(&f.delimiter, "delimiter", "tab", "field delimiter for delimited output (tab, comma, semicolon, pipe, space or a character)")
	cmd.Flags().BoolVar(&f.header, "header", true, "write a header row of variable names")
}

// options starts from the config and applies the flags the user set
func (f *formatFlags) options(cmd *cobra.Command) (format.Options, error) {
	cfg := *config
	flags := cmd.Flags()
	if flags.Changed("kind") {
		cfg.OutputKind = f.kind
	}
	if flags.Changed("delimiter") {
		cfg.Delimiter = f.delimiter
	}
	if flags.Changed("header") {
		cfg.IncludeHeader = f.header
	}

	opts, err := cfg.FormatOptions()
	if err != nil {
		return format.Options{}, app.NewError(app.ErrCodeInvalidInput, "invalid output options", err)
	}
	return opts, nil
}
