package cmd

import (
	"github.com/spf13/cobra"

	"github.com/deploymenttheory/go-sav/pkg/app"
	"github.com/deploymenttheory/go-sav/pkg/app/export"
)

var (
	exportFormat      formatFlags
	exportCompression string
	exportOverwrite   bool
	exportManifest    bool
	exportVerify      bool
)

var exportCmd = &cobra.Command{
	Use:   "export [file.sav] [output]",
	Short: "Write all records to a text file",
	Long: `Write every record of an SPSS system file to a fixed-width, delimited or
CSV text file, optionally compressed.

Examples:
  # Fixed-width text with a header row
  go-sav export survey.sav survey.txt

  # Tab-delimited, zstd compressed, with a manifest
  go-sav export survey.sav survey.tsv.zst --kind delimited --compression zstd --manifest

  # CSV, verified after writing
  go-sav export survey.sav survey.csv --kind csv --verify`,

	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExport(cmd, args[0], args[1])
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportFormat.register(exportCmd)
	exportCmd.Flags().StringVarP(&exportCompression, "compression", "c", "none", "output compression (none, zstd, s2, lz4)")
	exportCmd.Flags().BoolVarP(&exportOverwrite, "force", "f", false, "overwrite an existing output file")
	exportCmd.Flags().BoolVar(&exportManifest, "manifest", false, "write <output>.manifest.yaml")
	exportCmd.Flags().BoolVar(&exportVerify, "verify", false, "re-read the output and check its checksum")
}

func runExport(cmd *cobra.Command, path, output string) error {
	ctx, cancel := newContext(cmd).Bounded(timeout, false)
	defer cancel()

	opts, err := exportFormat.options(cmd)
	if err != nil {
		return err
	}

	name := config.Compression
	if cmd.Flags().Changed("compression") {
		name = exportCompression
	}
	compression, err := export.ParseCompression(name)
	if err != nil {
		return app.NewError(app.ErrCodeInvalidInput, "invalid compression", err)
	}

	svc, err := datasetService()
	if err != nil {
		return err
	}

	request := &export.Request{
		Target:      newTarget(path),
		OutputPath:  output,
		Format:      opts,
		Compression: compression,
		Overwrite:   exportOverwrite,
		Manifest:    exportManifest,
		Verify:      exportVerify,
	}

	response, err := export.Handle(ctx, svc, request)
	if err != nil {
		return deadlineError(ctx, "export", err)
	}

	if quiet {
		return nil
	}
	return export.FormatOutput(ctx.Stdout, response, ctx.OutputFormat)
}
