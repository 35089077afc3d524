package scenario

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/scenaria/internal/ids"
)

func ok(*Scope) error { return nil }

func fail(*Scope) error { return errors.New("boom") }

func newTestSuite(opts ...SuiteOption) *Suite {
	return NewSuite(append([]SuiteOption{WithIDGenerator(ids.NewSequenceGenerator("exec"))}, opts...)...)
}

// runOne defines a single-combination scenario, runs it and returns it.
func runOne(t *testing.T, s *Suite, fn func(*Builder)) *Execution {
	t.Helper()
	require.NoError(t, s.Define("scenario", fn))
	_, err := s.Run(context.Background())
	require.NoError(t, err)
	execs := s.World().Executions()
	require.Len(t, execs, 1)
	return execs[0]
}

// statusTree renders every node as "full title=status" in running order.
func statusTree(e *Execution) []string {
	var out []string
	for _, n := range e.Nodes() {
		out = append(out, fmt.Sprintf("%s=%s", n.FullTitle(), n.Status()))
	}
	return out
}

type recorder struct {
	BaseObserver
	events []string
}

func (r *recorder) Started(w *World) {
	r.events = append(r.events, fmt.Sprintf("started %d", len(w.Executions())))
}

func (r *recorder) Finished(*World) { r.events = append(r.events, "finished") }

func (r *recorder) ScenarioStarted(e *Execution) {
	r.events = append(r.events, "scenario started "+e.Title())
}

func (r *recorder) ScenarioFinished(e *Execution) {
	r.events = append(r.events, fmt.Sprintf("scenario finished %s %s", e.Title(), e.Status()))
}

func (r *recorder) StepStarted(n Node) { r.events = append(r.events, "step started "+n.FullTitle()) }

func (r *recorder) StepFinished(n Node) {
	r.events = append(r.events, fmt.Sprintf("step finished %s %s", n.FullTitle(), n.Status()))
}
