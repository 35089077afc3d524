package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/roach88/scenaria/internal/log"
	"github.com/roach88/scenaria/pkg/scenario"
)

// NewRunCommand creates the run command. It is also what the root command
// does when no subcommand is given.
func NewRunCommand(rootOpts *RootOptions, define DefineFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Build and run the scenarios",
		Long: `Build every declared scenario, apply the filters and run the
remaining executions one at a time.

Go declared scenarios come from the suite binary; YAML scenario files are
read from the scenarios directory. Interrupting the run (Ctrl-C) lets the
current scenario finish, teardown included, and skips the rest.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSuite(cmd, rootOpts, define)
		},
	}
	return cmd
}

func runSuite(cmd *cobra.Command, opts *RootOptions, define DefineFunc) error {
	sess, err := newSession(cmd, opts, define, true)
	if err != nil {
		return err
	}
	defer sess.Close()

	if _, err := sess.loadScenarios(); err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	executions := len(sess.suite.World().Executions())
	sess.logger.Info("run starting", "env", sess.cfg.Env, "executions", executions)

	summary, err := sess.suite.Run(ctx)
	sess.reportErrors()
	if err != nil {
		sess.logger.Warn("run stopped early", log.Error(err))
		return WrapExitError(ExitFailure, "run interrupted", err)
	}
	if summary.Failed() {
		failed := summary.Total - summary.Count(scenario.StatusPassed)
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d scenarios did not pass", failed, summary.Total))
	}
	return nil
}
