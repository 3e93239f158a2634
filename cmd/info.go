package cmd

import (
	"github.com/spf13/cobra"

	"github.com/deploymenttheory/go-sav/pkg/app/inspect"
)

var (
	infoSummaries bool
	infoVariables []string
)

var infoCmd = &cobra.Command{
	Use:   "info [file.sav]",
	Short: "Describe the dictionary of an SPSS system file",
	Long: `Describe the header, variables, value labels, missing values, documents
and extension records of an SPSS system file.

Examples:
  # Describe a file
  go-sav info survey.sav

  # Include summary statistics for numeric variables
  go-sav info survey.sav --summaries

  # Show two variables as YAML
  go-sav info survey.sav --variables age,region -o yaml`,

	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInfo(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)

	infoCmd.Flags().BoolVarP(&infoSummaries, "summaries", "s", false, "load all records and summarise numeric variables")
	infoCmd.Flags().StringSliceVar(&infoVariables, "variables", nil, "only list these variables")
}

func runInfo(cmd *cobra.Command, path string) error {
	ctx, cancel := newContext(cmd).Bounded(timeout, true)
	defer cancel()

	svc, err := datasetService()
	if err != nil {
		return err
	}

	request := &inspect.Request{
		Target:    newTarget(path),
		Summaries: infoSummaries,
		Variables: infoVariables,
	}

	response, err := inspect.Handle(ctx, svc, request)
	if err != nil {
		return deadlineError(ctx, "info", err)
	}

	if err := inspect.FormatOutput(ctx.Stdout, response, ctx.OutputFormat); err != nil {
		return err
	}
	ctx.Log(inspect.FormatSummary(response))
	return nil
}
