package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/scenaria/pkg/scenario"
)

// DefineFunc registers the shared steps and Go declared scenarios of a
// suite binary. It runs after the suite is configured, so filters and
// observers from the command line are already in place.
type DefineFunc func(s *scenario.Suite) error

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	Env        string
	Scenarios  string
	Text       string
	Focus      bool
	Rerun      bool
	Keep       bool
	Journal    string
	Metrics    string
	NoColor    bool
	Roles      []string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command of a suite binary. Running it
// without a subcommand runs the suite.
func NewRootCommand(define DefineFunc) *cobra.Command {
	return newRootCommand(define, &RootOptions{})
}

func newRootCommand(define DefineFunc, opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenaria",
		Short: "Scenaria - scenario test runner",
		Long: `Run scenario based tests.

Scenarios are declared once and expanded into one execution per
combination of their options and diagonals. Each execution runs its
steps in order, and teardown steps always run.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed, or the run was interrupted
  2 - Command error (bad configuration, build errors, etc.)`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSuite(cmd, opts, define)
		},
	}

	f := cmd.PersistentFlags()
	f.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output (debug logging)")
	f.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	f.StringVarP(&opts.ConfigPath, "config", "c", "", "config file (default scenaria.yaml if present)")
	f.StringVarP(&opts.Env, "env", "e", "", "environment name, read from the environments directory")
	f.StringVar(&opts.Scenarios, "scenarios", "", "directory of YAML scenario files")
	f.StringVarP(&opts.Text, "text", "t", "", "only scenarios whose title contains the text")
	f.BoolVarP(&opts.Focus, "focus", "f", false, "only scenarios with focus metadata")
	f.BoolVarP(&opts.Rerun, "rerun", "r", false, "only scenarios that did not pass in the last journaled run")
	f.BoolVarP(&opts.Keep, "keep", "k", false, "keep data created by the run (cleanup steps can check it)")
	f.StringVar(&opts.Journal, "journal", "", "SQLite journal path")
	f.StringVar(&opts.Metrics, "metrics", "", "write Prometheus metrics to this textfile")
	f.BoolVar(&opts.NoColor, "no-color", false, "disable colored output")
	f.StringSliceVar(&opts.Roles, "as", nil, "only executions running as these roles")

	cmd.AddCommand(NewRunCommand(opts, define))
	cmd.AddCommand(NewListCommand(opts, define))
	cmd.AddCommand(NewValidateCommand(opts, define))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// Execute runs the root command with args and returns the exit code.
// Errors are written to stderr; in JSON format command errors are also
// written to stdout as a CLIResponse.
func Execute(args []string, stdout, stderr io.Writer, define DefineFunc) int {
	opts := &RootOptions{}
	cmd := newRootCommand(define, opts)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.Execute()
	if err == nil {
		return ExitSuccess
	}

	// Usage errors from cobra itself carry no exit code.
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		err = WrapExitError(ExitCommandError, "invalid usage", err)
	}
	code := GetExitCode(err)

	fmt.Fprintf(stderr, "Error: %v\n", err)
	if code == ExitCommandError && opts.Format == "json" {
		formatter := &OutputFormatter{Format: "json", Writer: stdout}
		_ = formatter.Error(GetErrCode(err), err.Error(), nil)
	}
	return code
}
