package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"impactscan/internal/core/errors"
)

const versionString = "1.0.0"

const (
	exitOK         = 0
	exitFailure    = 1
	exitUsage      = 2
	exitEntryError = 3
)

type cliOptions struct {
	configPath  string
	root        string
	changesFile string
	baseRef     string
	format      string
	output      string
	metricsAddr string
	watch       bool
	verbose     bool
}

// Run executes the command line and returns the process exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCommand(stdout, stderr)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCode(err)
	}
	return exitOK
}

func exitCode(err error) int {
	switch errors.CodeOf(err) {
	case errors.CodeValidationError:
		return exitUsage
	case errors.CodeEntryUnreachable:
		return exitEntryError
	}
	return exitFailure
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	opts := &cliOptions{}
	root := &cobra.Command{
		Use:   "impactscan",
		Short: "Show which files are affected by a change set",
		Long: `impactscan walks the import graph from an entry file and marks every
file whose imports touch a changed file or a modified export.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to impactscan.toml (default: searched upward from the working directory)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(newAnalyzeCommand(opts, stdout, stderr))
	root.AddCommand(newVersionCommand(stdout))
	return root
}

func newAnalyzeCommand(opts *cliOptions, stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [entry]",
		Short: "Build the impact tree for an entry file",
		Long: `Build the impact tree for an entry file.

The change set is read from --changes when given, otherwise it is computed
from git against --base (default HEAD).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry := ""
			if len(args) == 1 {
				entry = args[0]
			}
			return runAnalyze(cmd.Context(), *opts, entry, stdout, stderr)
		},
	}

	cmd.Flags().StringVar(&opts.root, "root", "", "Project root (overrides project.root)")
	cmd.Flags().StringVar(&opts.changesFile, "changes", "", "Change set document (YAML or JSON)")
	cmd.Flags().StringVar(&opts.baseRef, "base", "", "Git ref to diff against when no change set document is given")
	cmd.Flags().StringVar(&opts.format, "format", "", "Output format: json or tree")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write the report to this file instead of stdout")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "Re-run the analysis whenever project files change")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve /metrics and /health on this address")
	return cmd
}

func newVersionCommand(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(stdout, "impactscan v%s\n", versionString)
		},
	}
}
