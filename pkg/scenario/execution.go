package scenario

import (
	"strings"
	"time"

	"github.com/roach88/scenaria/internal/ids"
	"github.com/roach88/scenaria/pkg/metadata"
	"github.com/roach88/scenaria/pkg/variant"
)

// Execution is one built combination of a scenario: a title, merged
// metadata and the root group of its step tree. Each execution owns its
// tree, let values and instance variables.
type Execution struct {
	// ID is unique per built execution. It is assigned once the execution
	// passed the filters and its steps resolved.
	ID string
	// Scenario is the declaration title.
	Scenario string
	// Combination is the option set title, possibly empty.
	Combination string

	title    string
	md       metadata.Metadata
	set      *variant.Set
	root     *Group
	suite    *Suite
	vars     map[string]any
	clock    *ids.Clock
	started  time.Time
	finished time.Time
}

func newExecution(s *Suite, scenarioTitle string, set *variant.Set, md metadata.Metadata) *Execution {
	e := &Execution{
		Scenario:    scenarioTitle,
		Combination: set.Title(),
		md:          md,
		set:         set,
		suite:       s,
		vars:        map[string]any{},
		clock:       ids.NewClock(),
	}
	e.title = joinTitle(scenarioTitle, e.Combination)
	e.root = &Group{node: node{exec: e, role: RoleContext, md: md, status: StatusNotRun}}
	return e
}

func joinTitle(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

// Title is the declaration title followed by the combination title.
func (e *Execution) Title() string { return e.title }

// Metadata returns a copy of the merged declaration and combination
// metadata.
func (e *Execution) Metadata() metadata.Metadata { return e.md.Clone() }

// OptionSet returns the combination the execution was built from.
func (e *Execution) OptionSet() *variant.Set { return e.set }

// Root is the synthetic group holding the top-level steps.
func (e *Execution) Root() *Group { return e.root }

// Status is the aggregate status of the root group.
func (e *Execution) Status() Status { return e.root.status }

// Failed reports whether the execution finished as failed.
func (e *Execution) Failed() bool { return e.root.status == StatusFailed }

// Duration is the wall time of the last run.
func (e *Execution) Duration() time.Duration { return e.finished.Sub(e.started) }

// StartedAt returns when the last run began.
func (e *Execution) StartedAt() time.Time { return e.started }

// Steps returns the leaf steps in running order.
func (e *Execution) Steps() []*Step {
	var steps []*Step
	Walk(e.root, func(n Node) bool {
		if s, ok := n.(*Step); ok {
			steps = append(steps, s)
		}
		return true
	})
	return steps
}

// Nodes returns every node below the root in running order.
func (e *Execution) Nodes() []Node {
	var nodes []Node
	Walk(e.root, func(n Node) bool {
		if n != Node(e.root) {
			nodes = append(nodes, n)
		}
		return true
	})
	return nodes
}
