package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/scenaria/pkg/metadata"
)

// ListedExecution is one built execution in list output.
type ListedExecution struct {
	ID       string            `json:"id"`
	Title    string            `json:"title"`
	Metadata metadata.Metadata `json:"metadata,omitempty"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions, define DefineFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the executions a run would perform",
		Long: `Build every declared scenario, apply the filters and print the
title of each execution in running order. Nothing is run.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, rootOpts, define)
		},
	}
	return cmd
}

func runList(cmd *cobra.Command, opts *RootOptions, define DefineFunc) error {
	sess, err := newSession(cmd, opts, define, false)
	if err != nil {
		return err
	}
	defer sess.Close()

	if _, err := sess.loadScenarios(); err != nil {
		return err
	}

	formatter := &OutputFormatter{
		Format:    sess.cfg.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	executions := sess.suite.World().Executions()
	listed := make([]ListedExecution, 0, len(executions))
	titles := make([]string, 0, len(executions))
	for _, e := range executions {
		listed = append(listed, ListedExecution{ID: e.ID, Title: e.Title(), Metadata: e.Metadata()})
		titles = append(titles, e.Title())
		formatter.VerboseLog("%s: %d steps", e.Title(), len(e.Steps()))
	}
	text := strings.Join(titles, "\n")
	if len(titles) == 0 {
		text = "no scenarios"
	}
	return formatter.Success(text, listed)
}
