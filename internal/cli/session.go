package cli

import (
	"context"
	"io"
	"log/slog"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/roach88/scenaria/internal/config"
	"github.com/roach88/scenaria/internal/loader"
	"github.com/roach88/scenaria/internal/log"
	"github.com/roach88/scenaria/internal/report"
	"github.com/roach88/scenaria/internal/store"
	"github.com/roach88/scenaria/pkg/filter"
	"github.com/roach88/scenaria/pkg/role"
	"github.com/roach88/scenaria/pkg/scenario"
)

// session is a configured suite plus the resources it holds open.
type session struct {
	cfg     *config.Config
	logger  *slog.Logger
	suite   *scenario.Suite
	journal *store.Store

	metrics    *report.Metrics
	journalObs *report.Journal
	jsonObs    *report.JSON
}

// Close releases the journal. It is safe on a nil session.
func (s *session) Close() {
	if s == nil || s.journal == nil {
		return
	}
	if err := s.journal.Close(); err != nil {
		s.logger.Error("error closing journal", log.Error(err))
	}
	s.journal = nil
}

// loadConfig layers defaults, the config file, SCENARIA_* variables and
// the flags that were set, in that order.
func loadConfig(cmd *cobra.Command, opts *RootOptions) (*config.Config, error) {
	cfg := config.NewDefaultConfig()

	path, optional := opts.ConfigPath, false
	if path == "" {
		path, optional = config.DefaultFile, true
	}
	if err := cfg.LoadFile(path, optional); err != nil {
		return nil, err
	}
	if err := cfg.LoadFromEnv(); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("env") {
		cfg.Env = opts.Env
	}
	if flags.Changed("scenarios") {
		cfg.Scenarios = opts.Scenarios
	}
	if flags.Changed("journal") {
		cfg.Journal = opts.Journal
	}
	if flags.Changed("metrics") {
		cfg.MetricsFile = opts.Metrics
	}
	if flags.Changed("keep") {
		cfg.Keep = opts.Keep
	}
	if flags.Changed("format") {
		cfg.Format = opts.Format
	}
	if opts.NoColor {
		cfg.Color = false
	}
	if opts.Verbose {
		cfg.LogLevel = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newSession configures a suite from the command line and runs define
// against it. Observers are attached only when withObservers is set.
// Errors are ExitErrors with ExitCommandError and a JSON error code.
func newSession(cmd *cobra.Command, opts *RootOptions, define DefineFunc, withObservers bool) (_ *session, err error) {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return nil, codedError(ErrCodeConfig, "invalid configuration", err)
	}

	level, _ := log.ParseLevel(cfg.LogLevel)
	sess := &session{cfg: cfg, logger: log.New(cmd.ErrOrStderr(), level, cfg.LogFormat)}
	defer func() {
		if err != nil {
			sess.Close()
		}
	}()

	env, err := cfg.Environment()
	if err != nil {
		return nil, codedError(ErrCodeConfig, "failed to load environment", err)
	}
	sess.logger.Debug("environment loaded", "env", env.Name, "source", env.Source)

	suiteOpts := []scenario.SuiteOption{
		scenario.WithLogger(sess.logger),
		scenario.WithEnvironment(env),
		scenario.WithKeep(cfg.Keep),
	}

	if cfg.Journal != "" && (withObservers || opts.Rerun) {
		st, err := store.Open(cfg.Journal)
		if err != nil {
			return nil, codedError(ErrCodeJournal, "failed to open journal", err)
		}
		sess.journal = st
	}

	filters, err := sess.filters(opts)
	if err != nil {
		return nil, err
	}
	for _, f := range filters {
		suiteOpts = append(suiteOpts, scenario.WithFilter(f))
	}
	if withObservers {
		for _, o := range sess.observers(cmd.OutOrStdout()) {
			suiteOpts = append(suiteOpts, scenario.WithObserver(o))
		}
	}

	sess.suite = scenario.NewSuite(suiteOpts...)
	if define != nil {
		if err := define(sess.suite); err != nil {
			return nil, codedError(ErrCodeBuild, "failed to define scenarios", err)
		}
	}
	return sess, nil
}

func (s *session) filters(opts *RootOptions) ([]scenario.Filter, error) {
	var out []scenario.Filter
	if opts.Text != "" {
		out = append(out, filter.Text(opts.Text))
	}
	if opts.Focus {
		out = append(out, filter.Focus())
	}
	if len(opts.Roles) > 0 {
		out = append(out, role.Only(opts.Roles...))
	}
	if opts.Rerun {
		if s.journal == nil {
			return nil, codedError(ErrCodeConfig, "--rerun requires a journal (--journal or SCENARIA_JOURNAL)", nil)
		}
		titles, err := s.journal.FailedTitles(context.Background(), s.cfg.Env)
		if err != nil {
			return nil, codedError(ErrCodeJournal, "failed to read the last run", err)
		}
		s.logger.Debug("rerunning scenarios", "count", len(titles))
		out = append(out, filter.Titles(titles))
	}
	return out, nil
}

func (s *session) observers(w io.Writer) []scenario.Observer {
	var out []scenario.Observer
	if s.cfg.Format == config.FormatJSON {
		s.jsonObs = report.NewJSON(w)
		out = append(out, s.jsonObs)
	} else {
		var termOpts []termenv.OutputOption
		if !s.cfg.Color {
			termOpts = append(termOpts, termenv.WithProfile(termenv.Ascii))
		}
		out = append(out, report.NewConsole(w, termOpts...))
	}
	if s.cfg.MetricsFile != "" {
		s.metrics = report.NewMetrics(s.cfg.MetricsFile)
		out = append(out, s.metrics)
	}
	if s.journal != nil {
		s.journalObs = report.NewJournal(s.journal, s.cfg.Env, report.WithJournalLogger(s.logger))
		out = append(out, s.journalObs)
	}
	return out
}

// loadScenarios reads the scenario directory and declares every file.
func (s *session) loadScenarios() ([]*loader.File, error) {
	files, err := loader.LoadDir(s.cfg.Scenarios)
	if err != nil {
		return nil, codedError(ErrCodeBuild, "failed to load scenario files", err)
	}
	s.logger.Debug("scenario files loaded", "dir", s.cfg.Scenarios, "count", len(files))
	if err := loader.DefineAll(s.suite, files); err != nil {
		return nil, codedError(ErrCodeBuild, "failed to define scenario files", err)
	}
	return files, nil
}

// reportErrors logs observers that could not write their output.
func (s *session) reportErrors() {
	if s.metrics != nil && s.metrics.Err() != nil {
		s.logger.Warn("failed to write metrics", log.Error(s.metrics.Err()))
	}
	if s.journalObs != nil && s.journalObs.Err() != nil {
		s.logger.Warn("failed to write journal", log.Error(s.journalObs.Err()))
	}
	if s.jsonObs != nil && s.jsonObs.Err() != nil {
		s.logger.Warn("failed to write report", log.Error(s.jsonObs.Err()))
	}
}
