package cmd

import (
	"github.com/spf13/cobra"

	"github.com/deploymenttheory/go-sav/pkg/app/inspect"
)

var (
	dumpRows   int
	dumpFormat formatFlags
)

var dumpCmd = &cobra.Command{
	Use:   "dump [file.sav]",
	Short: "Print the dictionary and the first records",
	Long: `Print the dictionary of an SPSS system file followed by its first records.

Examples:
  # First 10 records, fixed width
  go-sav dump survey.sav

  # First 50 records as CSV without a header row
  go-sav dump survey.sav --rows 50 --kind csv --header=false`,

	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDump(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(dumpCmd)

	dumpCmd.Flags().IntVarP(&dumpRows, "rows", "n", 10, "number of records to print")
	dumpFormat.register(dumpCmd)
}

func runDump(cmd *cobra.Command, path string) error {
	ctx, cancel := newContext(cmd).Bounded(timeout, true)
	defer cancel()

	opts, err := dumpFormat.options(cmd)
	if err != nil {
		return err
	}

	svc, err := datasetService()
	if err != nil {
		return err
	}

	request := &inspect.Request{
		Target: newTarget(path),
		Rows:   dumpRows,
		Format: opts,
	}

	response, err := inspect.Handle(ctx, svc, request)
	if err != nil {
		return deadlineError(ctx, "dump", err)
	}

	return inspect.FormatOutput(ctx.Stdout, response, ctx.OutputFormat)
}
