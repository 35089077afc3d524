package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/scenaria/internal/loader"
)

// Problem is one thing validate found wrong.
type Problem struct {
	Path    string `json:"path,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (p Problem) String() string {
	var b strings.Builder
	if p.Path != "" {
		b.WriteString(p.Path)
		b.WriteString(": ")
	}
	if p.Field != "" {
		b.WriteString(p.Field)
		b.WriteString(": ")
	}
	b.WriteString(p.Message)
	return b.String()
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid      bool      `json:"valid"`
	Files      int       `json:"files"`
	Executions int       `json:"executions"`
	Problems   []Problem `json:"problems,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions, define DefineFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check scenario files without running them",
		Long: `Read every YAML scenario file, check its fields and conditions,
check that every shared step it names is registered, and build it.

All problems are reported, not only the first. Exits 1 when any is
found.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, rootOpts, define)
		},
	}
	return cmd
}

func runValidate(cmd *cobra.Command, opts *RootOptions, define DefineFunc) error {
	sess, err := newSession(cmd, opts, define, false)
	if err != nil {
		return err
	}
	defer sess.Close()

	formatter := &OutputFormatter{
		Format:    sess.cfg.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	files, loadErr := loader.LoadDir(sess.cfg.Scenarios)
	problems := problemsOf(loadErr)
	formatter.VerboseLog("Found %d scenario file(s) in %s", len(files), sess.cfg.Scenarios)

	registered := map[string]bool{}
	for _, name := range sess.suite.Registry().Names() {
		registered[name] = true
	}
	for _, f := range files {
		missing := false
		for _, name := range f.SharedNames() {
			if !registered[name] {
				missing = true
				problems = append(problems, Problem{Path: f.Path, Message: fmt.Sprintf("unknown shared step %q", name)})
			}
		}
		if missing {
			continue
		}
		formatter.VerboseLog("Building %s", f.Path)
		if err := f.Define(sess.suite); err != nil {
			problems = append(problems, Problem{Path: f.Path, Message: err.Error()})
		}
	}

	result := ValidationResult{
		Valid:      len(problems) == 0,
		Files:      len(files),
		Executions: len(sess.suite.World().Executions()),
		Problems:   problems,
	}
	if !result.Valid {
		return outputProblems(formatter, result)
	}
	return formatter.Success(fmt.Sprintf("✓ %d scenario file(s) valid, %d execution(s)", result.Files, result.Executions), result)
}

// outputProblems reports a failed validation. Problems are a validation
// failure (exit 1), not a command error.
func outputProblems(formatter *OutputFormatter, result ValidationResult) error {
	failed := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d problem(s)", len(result.Problems)))

	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   result,
			Error:  &CLIError{Code: ErrCodeScenario, Message: result.Problems[0].String()},
		}
		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}
		return failed
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, p := range result.Problems {
		fmt.Fprintf(formatter.Writer, "  %s\n", p)
	}
	return failed
}

// problemsOf flattens the joined errors of loader.LoadDir.
func problemsOf(err error) []Problem {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []Problem
		for _, e := range joined.Unwrap() {
			out = append(out, problemsOf(e)...)
		}
		return out
	}
	var verr *loader.ValidationError
	if errors.As(err, &verr) {
		return []Problem{{Path: verr.Path, Field: verr.Field, Message: verr.Message}}
	}
	return []Problem{{Message: err.Error()}}
}
