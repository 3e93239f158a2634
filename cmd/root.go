package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/deploymenttheory/go-sav/pkg/app"
	"github.com/deploymenttheory/go-sav/pkg/services"
)

var (
	// Global flags
	verbose      bool
	quiet        bool
	outputFormat string
	configPath   string
	charset      string
	bufferSize   int
	timeout      time.Duration

	// Loaded in PersistentPreRunE, flags already applied
	config *app.Config

	factory = services.NewServiceFactory()
)

var rootCmd = &cobra.Command{
	Use:   "go-sav",
	Short: "Read-only SPSS system file (.sav) decoder",
	Long: `go-sav is a cross-platform, read-only command-line tool for inspecting
and exporting SPSS system files (.sav).

It decodes the dictionary (variables, labels, missing values, documents,
extension records) and the case data, uncompressed or bytecode-compressed,
in either byte order.

Commands:
  info        Describe the dictionary, optionally with summary statistics
  dump        Print the dictionary and the first records
  export      Write all records to a fixed, delimited or CSV text file
  version     Print the version`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress output except errors")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "output format (table, json, yaml)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: sav-config.yaml in ., ./config, $HOME/.sav, /etc/sav)")
	rootCmd.PersistentFlags().StringVar(&charset, "charset", "", "force the text encoding (default: from the file, else ISO-8859-1)")
	rootCmd.PersistentFlags().IntVar(&bufferSize, "buffer-size", 0, "read-ahead buffer size in bytes")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "abort after this long (default: 30s for info and dump, no limit for export)")

	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
}

// loadConfig reads the config file and lets explicitly set flags win over it
func loadConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := app.LoadConfig(configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.OutputFormat = outputFormat
	}
	if flags.Changed("charset") {
		cfg.Charset = charset
	}
	if flags.Changed("buffer-size") {
		cfg.BufferSize = bufferSize
	}

	config = cfg
	return nil
}

// newContext creates the application context for a command
func newContext(cmd *cobra.Command) *app.Context {
	ctx := app.NewContext()
	ctx.Context = cmd.Context()
	ctx.OutputFormat = config.OutputFormat
	ctx.Verbose = verbose
	ctx.Quiet = quiet
	ctx.Stdout = cmd.OutOrStdout()
	ctx.Stderr = cmd.ErrOrStderr()

	if verbose && !quiet {
		ctx.SetProgress(func(message string, percent int) {
			fmt.Fprintf(ctx.Stderr, "[%3d%%] %s\n", percent, message)
		})
	}
	return ctx
}

// deadlineError reports a failure caused by the command running out of time
func deadlineError(ctx *app.Context, what string, err error) error {
	if ctx.Err() != nil {
		return app.NewError(app.ErrCodeTimeout, what+" timed out", err)
	}
	return err
}

// newTarget builds the dataset target from the positional path and config
func newTarget(path string) app.DatasetTarget {
	return app.DatasetTarget{
		Path:       path,
		Charset:    config.Charset,
		BufferSize: config.BufferSize,
	}
}

func datasetService() (services.DatasetService, error) {
	return factory.DatasetService()
}
