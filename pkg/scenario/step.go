package scenario

import (
	"strings"

	"github.com/roach88/scenaria/pkg/condition"
	"github.com/roach88/scenaria/pkg/metadata"
)

type stepKind int

const (
	kindPlain stepKind = iota
	kindAction
	kindGroup
	kindLet
)

// LetFunc computes a named value on demand. It runs with the scope of the
// step that asked for the value.
type LetFunc func(s *Scope, args ...any) (any, error)

type letDef struct {
	name string
	fn   LetFunc
	once bool
}

// StepDef is a declared step. Declaring methods on Builder return it so
// the declaration can be refined fluently:
//
//	b.Setup(scenario.Shared("login")).Do(openDashboard).Meta(md)
type StepDef struct {
	kind   stepKind
	role   Role
	title  string
	args   []Arg
	fn     Func
	cond   *condition.Condition
	md     metadata.Metadata
	shared string
	steps  []*StepDef
	let    *letDef
}

// Do sets the inline body, run after any bodies supplied as arguments.
// Groups have no body and ignore it.
func (d *StepDef) Do(fn Func) *StepDef {
	d.fn = fn
	return d
}

// Meta adds step-local metadata, visible to the step and its descendants.
func (d *StepDef) Meta(md metadata.Metadata) *StepDef {
	d.md = metadata.Merge(d.md, md)
	return d
}

// Titled overrides the generated title.
func (d *StepDef) Titled(title string) *StepDef {
	d.title = title
	return d
}

// Role returns the declaring verb.
func (d *StepDef) Role() Role { return d.role }

// Condition returns the step's own condition, or nil.
func (d *StepDef) Condition() *condition.Condition { return d.cond }

// Steps returns the nested definitions of a group.
func (d *StepDef) Steps() []*StepDef { return append([]*StepDef(nil), d.steps...) }

// Title is the explicit title, else "<Role> <shared step>" for steps
// declared inside a shared step, else "Untitled <role>".
func (d *StepDef) Title() string {
	if d.title != "" {
		return d.title
	}
	if d.shared != "" {
		return d.role.capitalized() + " " + d.shared
	}
	return "Untitled " + string(d.role)
}

// resolver turns definitions into execution nodes for one combination.
type resolver struct {
	registry *Registry
	md       metadata.Metadata
	exec     *Execution
	stack    []string
}

func (r *resolver) resolveAll(defs []*StepDef, parent *Group, inherited []*condition.Condition) ([]Node, error) {
	var nodes []Node
	for _, d := range defs {
		got, err := r.resolve(d, parent, inherited)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, got...)
	}
	return nodes, nil
}

func (r *resolver) resolve(d *StepDef, parent *Group, inherited []*condition.Condition) ([]Node, error) {
	if !d.cond.MatchStatic(r.md) {
		return nil, nil
	}
	conds := inherited
	if d.cond.IsDynamic() {
		conds = append(append([]*condition.Condition(nil), inherited...), d.cond)
	}

	switch d.kind {
	case kindLet:
		parent.addLet(d.let)
		return nil, nil

	case kindPlain:
		if d.fn == nil {
			return nil, nil
		}
		return []Node{newStep(r.exec, parent, d, d.fn, conds)}, nil

	case kindGroup:
		g := newGroup(r.exec, parent, d, conds)
		children, err := r.resolveAll(d.steps, g, nil)
		if err != nil {
			return nil, err
		}
		g.children = teardownLast(children)
		return []Node{g}, nil
	}

	toks, err := resolveArgs(d.args, r.md)
	if err != nil {
		return nil, err
	}
	var nodes []Node
	for _, tok := range toks {
		if tok.fn != nil {
			nodes = append(nodes, newStep(r.exec, parent, d, tok.fn, conds))
			continue
		}
		expanded, err := r.expandShared(tok.name, parent, conds)
		if err != nil {
			return nil, err
		}
		if len(d.md) > 0 {
			for _, n := range expanded {
				n.base().md = metadata.Merge(d.md, n.base().md)
			}
		}
		nodes = append(nodes, expanded...)
	}
	if d.fn != nil {
		nodes = append(nodes, newStep(r.exec, parent, d, d.fn, conds))
	}
	return nodes, nil
}

func (r *resolver) expandShared(name string, parent *Group, conds []*condition.Condition) ([]Node, error) {
	for _, active := range r.stack {
		if active == name {
			return nil, newBuildError("shared step cycle: %s -> %s", strings.Join(r.stack, " -> "), name)
		}
	}
	shared, err := r.registry.Find(name)
	if err != nil {
		return nil, err
	}
	defs, err := shared.Steps()
	if err != nil {
		return nil, err
	}
	r.stack = append(r.stack, name)
	defer func() { r.stack = r.stack[:len(r.stack)-1] }()
	return r.resolveAll(defs, parent, conds)
}

// teardownLast moves teardown and cleanup nodes behind the others. The
// partition is stable.
func teardownLast(nodes []Node) []Node {
	out := make([]Node, 0, len(nodes))
	var teardown []Node
	for _, n := range nodes {
		if n.Role().IsTeardown() {
			teardown = append(teardown, n)
			continue
		}
		out = append(out, n)
	}
	return append(out, teardown...)
}
