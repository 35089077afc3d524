package scenario

import (
	"context"
	"log/slog"

	"github.com/roach88/scenaria/pkg/condition"
	"github.com/roach88/scenaria/pkg/metadata"
)

// Environment exposes values of the selected run environment.
type Environment interface {
	// Get returns the value at a dot separated path, or nil.
	Get(path string) any
	// Decode copies the value at path into target. An empty path decodes
	// the whole environment.
	Decode(path string, target any) error
}

type emptyEnvironment struct{}

func (emptyEnvironment) Get(string) any { return nil }
func (emptyEnvironment) Decode(string, any) error { return nil }

// Scope is the live context handed to step bodies, let functions and
// dynamic conditions.
type Scope struct {
	ctx    context.Context
	exec   *Execution
	node   Node
	step   *Step
	logger *slog.Logger
}

func newScope(ctx context.Context, n Node, logger *slog.Logger) *Scope {
	s := &Scope{ctx: ctx, exec: n.Execution(), node: n, logger: logger}
	if step, ok := n.(*Step); ok {
		s.step = step
	}
	return s
}

// Context is cancelled when the run is interrupted.
func (s *Scope) Context() context.Context { return s.ctx }

// Execution returns the running execution.
func (s *Scope) Execution() *Execution { return s.exec }

// Node returns the step or group being evaluated.
func (s *Scope) Node() Node { return s.node }

// Metadata returns the merged metadata of the current node.
func (s *Scope) Metadata() metadata.Metadata { return s.node.Metadata() }

// Logger returns a logger tagged with the execution and node.
func (s *Scope) Logger() *slog.Logger { return s.logger }

// Env returns the run environment. It is never nil.
func (s *Scope) Env() Environment {
	if s.exec.suite.env == nil {
		return emptyEnvironment{}
	}
	return s.exec.suite.env
}

// Keep reports whether data created by the run should be kept rather than
// cleaned up.
func (s *Scope) Keep() bool { return s.exec.suite.keep }

// Get resolves name as a let value, searching from the current group
// outwards, then as a metadata key. Anything else is an
// UNDEFINED_REFERENCE error, as is a let value that looks itself up
// while being computed.
func (s *Scope) Get(name string, args ...any) (any, error) {
	if lv, ok := s.group().findLet(name); ok {
		if lv.def.once && lv.done {
			return lv.value, nil
		}
		if lv.evaluating {
			return nil, newLetCycle(name)
		}
		v, err := lv.compute(s, args)
		if err != nil {
			return nil, err
		}
		if lv.def.once {
			lv.value, lv.done = v, true
		}
		return v, nil
	}
	md := s.Metadata()
	if md.Has(name) {
		return md[name], nil
	}
	return nil, newUndefinedReference(name)
}

// MustGet is Get for step bodies: an error panics and fails the step.
func (s *Scope) MustGet(name string, args ...any) any {
	v, err := s.Get(name, args...)
	if err != nil {
		panic(err)
	}
	return v
}

// Set stores an instance variable for the rest of the execution.
func (s *Scope) Set(name string, v any) { s.exec.vars[name] = v }

// Var reads an instance variable.
func (s *Scope) Var(name string) (any, bool) {
	v, ok := s.exec.vars[name]
	return v, ok
}

// Pending marks the current step as expected to fail. If the step then
// completes without error it fails with PENDING_STEP_FIXED.
func (s *Scope) Pending(message string) {
	if s.step == nil {
		return
	}
	s.step.pending = true
	s.step.pendingMessage = message
	s.step.status = StatusPending
}

func (s *Scope) group() *Group {
	if g, ok := s.node.(*Group); ok {
		return g
	}
	return s.node.Parent()
}

// When turns a predicate over the live scope into a dynamic condition.
func When(fn func(*Scope) bool) *condition.Condition {
	return condition.Func(func(c condition.Context) bool {
		return fn(c.(*Scope))
	})
}
