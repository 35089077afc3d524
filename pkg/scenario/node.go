package scenario

import (
	"slices"
	"strings"
	"time"

	"github.com/roach88/scenaria/pkg/condition"
	"github.com/roach88/scenaria/pkg/metadata"
)

// Node is an element of an execution tree: a *Group or a *Step.
type Node interface {
	// Title is the node's own title.
	Title() string
	// FullTitle prefixes the titles of enclosing groups, "outer: inner".
	FullTitle() string
	Role() Role
	Status() Status
	// Parent is nil only for the root group of an execution.
	Parent() *Group
	// Metadata merges the node's own metadata over its ancestors'.
	Metadata() metadata.Metadata
	Execution() *Execution
	// SharedStep names the shared step the node was declared in, if any.
	SharedStep() string
	// Seq is the logical time the node started, 0 if it never ran.
	Seq() int64
	Duration() time.Duration

	base() *node
}

type node struct {
	exec     *Execution
	parent   *Group
	role     Role
	title    string
	shared   string
	md       metadata.Metadata
	conds    []*condition.Condition
	status   Status
	seq      int64
	started  time.Time
	finished time.Time
}

func newNode(exec *Execution, parent *Group, def *StepDef, conds []*condition.Condition) node {
	return node{
		exec:   exec,
		parent: parent,
		role:   def.role,
		title:  def.Title(),
		shared: def.shared,
		md:     def.md,
		conds:  conds,
		status: StatusNotRun,
	}
}

func (n *node) base() *node { return n }
func (n *node) Title() string { return n.title }
func (n *node) Role() Role { return n.role }
func (n *node) Status() Status { return n.status }
func (n *node) Parent() *Group { return n.parent }
func (n *node) Execution() *Execution { return n.exec }
func (n *node) SharedStep() string { return n.shared }
func (n *node) Seq() int64 { return n.seq }
func (n *node) Duration() time.Duration { return n.finished.Sub(n.started) }

func (n *node) FullTitle() string {
	parts := []string{n.title}
	for p := n.parent; p != nil && p.parent != nil; p = p.parent {
		parts = append(parts, p.title)
	}
	slices.Reverse(parts)
	return strings.Join(parts, ": ")
}

func (n *node) Metadata() metadata.Metadata {
	layers := []metadata.Metadata{n.md}
	for p := n.parent; p != nil; p = p.parent {
		layers = append(layers, p.md)
	}
	slices.Reverse(layers)
	return metadata.Merge(layers...)
}

// Group is an ordered list of child nodes with its own let values.
type Group struct {
	node
	children []Node
	lets     map[string]*letValue
}

type letValue struct {
	def        *letDef
	done       bool
	evaluating bool
	value      any
}

// compute runs the let function, marking the value as in progress so a
// lookup of the same name from inside it can be refused.
func (lv *letValue) compute(s *Scope, args []any) (any, error) {
	lv.evaluating = true
	defer func() { lv.evaluating = false }()
	return lv.def.fn(s, args...)
}

func newGroup(exec *Execution, parent *Group, def *StepDef, conds []*condition.Condition) *Group {
	return &Group{node: newNode(exec, parent, def, conds)}
}

// Children returns the child nodes in running order.
func (g *Group) Children() []Node {
	return append([]Node(nil), g.children...)
}

func (g *Group) addLet(def *letDef) {
	if g.lets == nil {
		g.lets = map[string]*letValue{}
	}
	g.lets[def.name] = &letValue{def: def}
}

// findLet searches this group, then its ancestors. The nearest
// registration wins.
func (g *Group) findLet(name string) (*letValue, bool) {
	for cur := g; cur != nil; cur = cur.parent {
		if lv, ok := cur.lets[name]; ok {
			return lv, true
		}
	}
	return nil, false
}

// Step is a leaf holding a body.
type Step struct {
	node
	fn             Func
	err            error
	pending        bool
	pendingMessage string
}

func newStep(exec *Execution, parent *Group, def *StepDef, fn Func, conds []*condition.Condition) *Step {
	return &Step{node: newNode(exec, parent, def, conds), fn: fn}
}

// Err is the captured error of a failed or pending step.
func (s *Step) Err() error { return s.err }

// PendingMessage is the message given to Scope.Pending.
func (s *Step) PendingMessage() string { return s.pendingMessage }

// Walk visits n and its descendants depth first in running order. When fn
// returns false the children of that node are not visited.
func Walk(n Node, fn func(Node) bool) {
	stack := []Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(cur) {
			continue
		}
		if g, ok := cur.(*Group); ok {
			for i := len(g.children) - 1; i >= 0; i-- {
				stack = append(stack, g.children[i])
			}
		}
	}
}

// mark sets status on n and every descendant.
func mark(n Node, status Status) {
	Walk(n, func(c Node) bool {
		c.base().status = status
		return true
	})
}
