package scenario

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/roach88/scenaria/internal/ids"
	"github.com/roach88/scenaria/internal/log"
	"github.com/roach88/scenaria/pkg/metadata"
	"github.com/roach88/scenaria/pkg/variant"
)

// Suite owns everything a run shares: the shared step registry, global
// before/after scenario steps, plugins, filters and the World.
type Suite struct {
	logger   *slog.Logger
	ids      ids.Generator
	env      Environment
	keep     bool
	now      func() time.Time
	registry *Registry
	world    *World
	filters  []Filter
	before   []Arg
	after    []Arg
	plugins  []Plugin
}

// SuiteOption configures a Suite.
type SuiteOption func(*Suite)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *slog.Logger) SuiteOption {
	return func(s *Suite) { s.logger = l }
}

// WithIDGenerator sets the execution id generator. The default issues
// UUIDv7 ids.
func WithIDGenerator(g ids.Generator) SuiteOption {
	return func(s *Suite) { s.ids = g }
}

// WithEnvironment sets the environment returned by Scope.Env.
func WithEnvironment(env Environment) SuiteOption {
	return func(s *Suite) { s.env = env }
}

// WithKeep sets the value returned by Scope.Keep.
func WithKeep(keep bool) SuiteOption {
	return func(s *Suite) { s.keep = keep }
}

// WithObserver registers an observer.
func WithObserver(o Observer) SuiteOption {
	return func(s *Suite) { s.world.AddObserver(o) }
}

// WithFilter registers a filter.
func WithFilter(f Filter) SuiteOption {
	return func(s *Suite) { s.filters = append(s.filters, f) }
}

// WithTimeSource replaces time.Now for step timings.
func WithTimeSource(now func() time.Time) SuiteOption {
	return func(s *Suite) { s.now = now }
}

// NewSuite creates a suite.
func NewSuite(opts ...SuiteOption) *Suite {
	s := &Suite{
		logger: log.NewNop(),
		ids:    ids.UUIDv7Generator{},
		now:    time.Now,
		world:  NewWorld(),
	}
	s.registry = NewRegistry(s)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Registry returns the shared step registry.
func (s *Suite) Registry() *Registry { return s.registry }

// World returns the built executions and observers.
func (s *Suite) World() *World { return s.world }

// Logger returns the suite logger.
func (s *Suite) Logger() *slog.Logger { return s.logger }

// SharedStep registers a named step bundle.
func (s *Suite) SharedStep(name string, fn func(*Builder)) error {
	return s.registry.Register(name, fn)
}

// AddFilter registers a filter for subsequent Define calls.
func (s *Suite) AddFilter(f Filter) { s.filters = append(s.filters, f) }

// AddObserver registers an observer for the run.
func (s *Suite) AddObserver(o Observer) { s.world.AddObserver(o) }

// BeforeScenario adds steps run as setup at the start of every scenario.
func (s *Suite) BeforeScenario(args ...Arg) { s.before = append(s.before, args...) }

// AfterScenario adds steps run as teardown at the end of every scenario.
func (s *Suite) AfterScenario(args ...Arg) { s.after = append(s.after, args...) }

// Use installs a plugin.
func (s *Suite) Use(p Plugin) { s.plugins = append(s.plugins, p) }

// XDefine ignores a declaration. Swap Define for XDefine to exclude a
// scenario without deleting it.
func (s *Suite) XDefine(string, func(*Builder), ...metadata.Metadata) error { return nil }

// Define declares a scenario and builds its executions into the World.
//
// Declaration errors abort the whole declaration. A combination whose
// steps cannot be resolved, for example because of an unknown shared
// step, is dropped; the other combinations are still built and all
// resolution errors are returned joined.
func (s *Suite) Define(title string, fn func(*Builder), md ...metadata.Metadata) error {
	b := newBuilder(s, title, "", false)
	for _, m := range md {
		b.Metadata(m)
	}
	if fn != nil {
		fn(b)
	}
	for _, p := range s.plugins {
		ap, ok := p.(AxisProvider)
		if !ok {
			continue
		}
		axes, err := ap.Axes(b)
		if err != nil {
			b.fail(&Error{Code: CodeBuildError, Message: title + ": plugin " + p.Name(), Err: err})
			continue
		}
		for _, a := range axes {
			b.AddAxis(a)
		}
	}
	if err := b.Err(); err != nil {
		return err
	}
	return s.build(b)
}

func (s *Suite) hookSteps() (before, after []*StepDef) {
	beforeArgs := append([]Arg(nil), s.before...)
	afterArgs := append([]Arg(nil), s.after...)
	for _, p := range s.plugins {
		if bp, ok := p.(BeforeScenarioProvider); ok {
			beforeArgs = append(beforeArgs, bp.BeforeScenario()...)
		}
		if ap, ok := p.(AfterScenarioProvider); ok {
			afterArgs = append(afterArgs, ap.AfterScenario()...)
		}
	}
	if len(beforeArgs) > 0 {
		before = append(before, &StepDef{kind: kindAction, role: RoleSetup, args: beforeArgs})
	}
	if len(afterArgs) > 0 {
		after = append(after, &StepDef{kind: kindAction, role: RoleTeardown, args: afterArgs})
	}
	return before, after
}

func (s *Suite) build(b *Builder) error {
	before, after := s.hookSteps()
	defs := make([]*StepDef, 0, len(before)+len(b.steps)+len(after))
	defs = append(defs, before...)
	defs = append(defs, b.steps...)
	defs = append(defs, after...)

	var errs []error
	for _, set := range variant.Combinations(b.options, b.diagonals, b.skip) {
		md := metadata.Merge(b.md, set.Metadata())
		exec := newExecution(s, b.title, set, md)
		if !s.accept(exec) {
			continue
		}

		r := &resolver{registry: s.registry, md: md, exec: exec}
		children, err := r.resolveAll(defs, exec.root, nil)
		if err != nil {
			s.logger.Warn("combination dropped", log.Scenario(exec.title), log.Error(err))
			errs = append(errs, err)
			continue
		}
		exec.root.children = teardownLast(children)
		exec.ID = s.ids.Generate()
		s.world.add(exec)
	}
	return errors.Join(errs...)
}

func (s *Suite) accept(e *Execution) bool {
	for _, f := range s.filters {
		if !f(e) {
			return false
		}
	}
	return true
}

// Run executes every built execution in build order and notifies
// observers. Cancelling ctx stops the run before the next execution; the
// running execution, including its teardown, completes first.
func (s *Suite) Run(ctx context.Context) (Summary, error) {
	s.world.notify(func(o Observer) { o.Started(s.world) })
	var err error
	for _, e := range s.world.executions {
		if err = ctx.Err(); err != nil {
			s.logger.Warn("run interrupted", log.Error(err))
			break
		}
		s.world.notify(func(o Observer) { o.ScenarioStarted(e) })
		e.run(ctx, s)
		s.logger.Info("scenario finished", log.Scenario(e.title), log.Status(e.Status()))
		s.world.notify(func(o Observer) { o.ScenarioFinished(e) })
	}
	s.world.notify(func(o Observer) { o.Finished(s.world) })
	return s.world.Summary(), err
}
