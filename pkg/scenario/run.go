package scenario

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/scenaria/internal/log"
)

// runner walks one execution tree.
type runner struct {
	ctx    context.Context
	suite  *Suite
	exec   *Execution
	logger *slog.Logger
}

func (e *Execution) run(ctx context.Context, s *Suite) {
	r := &runner{
		ctx:    ctx,
		suite:  s,
		exec:   e,
		logger: s.logger.With(log.Scenario(e.title), log.ExecutionID(e.ID)),
	}
	e.started = s.now()
	r.runGroup(e.root)
	e.finished = s.now()
}

func (r *runner) runNode(n Node) {
	switch t := n.(type) {
	case *Group:
		r.runGroup(t)
	case *Step:
		r.runStep(t)
	}
}

func (r *runner) begin(n Node) {
	b := n.base()
	b.status = StatusRunning
	b.seq = r.exec.clock.Next()
	b.started = r.suite.now()
	if n.Parent() != nil {
		r.suite.world.notify(func(o Observer) { o.StepStarted(n) })
	}
}

func (r *runner) end(n Node) {
	n.base().finished = r.suite.now()
	if n.Parent() != nil {
		r.logger.Debug("step finished", log.Step(n.FullTitle()), log.Status(n.Status()))
		r.suite.world.notify(func(o Observer) { o.StepFinished(n) })
	}
}

func (r *runner) runGroup(g *Group) {
	r.begin(g)
	defer r.end(g)

	ok, err := r.applicable(g)
	if err != nil {
		r.logger.Warn("group condition failed", log.Step(g.FullTitle()), log.Error(err))
	}
	if !ok {
		mark(g, StatusIgnored)
		return
	}

	failed := false
	statuses := make([]Status, 0, len(g.children))
	for _, c := range g.children {
		if failed && !c.Role().IsTeardown() {
			mark(c, StatusSkipped)
		} else {
			r.runNode(c)
			if c.Status() == StatusFailed && c.Role().SkipsRestOnFailure() {
				failed = true
			}
		}
		statuses = append(statuses, c.Status())
	}
	g.status = Aggregate(statuses)
}

func (r *runner) runStep(s *Step) {
	r.begin(s)
	defer r.end(s)

	ok, err := r.applicable(s)
	if err != nil {
		s.status, s.err = StatusFailed, err
		return
	}
	if !ok {
		s.status = StatusIgnored
		return
	}

	err = r.invoke(s)
	switch {
	case s.pending && err != nil:
		s.status, s.err = StatusPending, err
	case s.pending:
		s.status, s.err = StatusFailed, newPendingFixed()
	case err != nil:
		s.status, s.err = StatusFailed, err
	default:
		s.status = StatusPassed
	}
	if s.status == StatusFailed {
		r.logger.Info("step failed", log.Step(s.FullTitle()), log.Error(s.err))
	}
}

// applicable evaluates the node's dynamic conditions. A panicking
// condition counts as not applicable and is reported through err.
func (r *runner) applicable(n Node) (ok bool, err error) {
	conds := n.base().conds
	if len(conds) == 0 {
		return true, nil
	}
	defer func() {
		if v := recover(); v != nil {
			ok, err = false, panicError(fmt.Errorf("condition: %v", v))
		}
	}()
	scope := newScope(r.ctx, n, r.logger)
	for _, c := range conds {
		if !c.MatchDynamic(scope) {
			return false, nil
		}
	}
	return true, nil
}

func (r *runner) invoke(s *Step) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = panicError(v)
		}
	}()
	scope := newScope(r.ctx, s, r.logger.With(log.Step(s.FullTitle())))
	if runErr := s.fn(scope); runErr != nil {
		return stepError(runErr)
	}
	return nil
}
