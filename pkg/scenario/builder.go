package scenario

import (
	"errors"
	"fmt"

	"github.com/roach88/scenaria/pkg/condition"
	"github.com/roach88/scenaria/pkg/metadata"
	"github.com/roach88/scenaria/pkg/variant"
)

// Builder collects a declaration: steps, metadata and variation axes.
// Scenario declarations, context groups and shared steps each get their
// own Builder. Declaration mistakes are recorded and reported together by
// Err.
type Builder struct {
	suite     *Suite
	title     string
	shared    string
	nested    bool
	steps     []*StepDef
	md        metadata.Metadata
	options   []*variant.Axis
	diagonals []*variant.Axis
	skip      func(*variant.Set) bool
	ext       map[any]any
	errs      []error
}

func newBuilder(s *Suite, title, shared string, nested bool) *Builder {
	return &Builder{suite: s, title: title, shared: shared, nested: nested}
}

// Title is the declaration, group or shared step title.
func (b *Builder) Title() string { return b.title }

// Suite returns the suite the declaration belongs to.
func (b *Builder) Suite() *Suite { return b.suite }

// Steps returns the declared steps in order.
func (b *Builder) Steps() []*StepDef { return append([]*StepDef(nil), b.steps...) }

// Err joins every recorded declaration error.
func (b *Builder) Err() error { return errors.Join(b.errs...) }

// Nested reports whether b declares a group or a shared step rather than
// a scenario.
func (b *Builder) Nested() bool { return b.nested }

// Errorf records a BUILD_ERROR for the declaration. Plugins use it to
// reject misuse of their declaring functions.
func (b *Builder) Errorf(format string, args ...any) {
	b.fail(newBuildError("%s: %s", b.title, fmt.Sprintf(format, args...)))
}

func (b *Builder) fail(err error) {
	b.errs = append(b.errs, err)
}

func (b *Builder) add(d *StepDef) *StepDef {
	d.shared = b.shared
	b.steps = append(b.steps, d)
	return d
}

func (b *Builder) cond(spec any, positive bool) *condition.Condition {
	c, err := condition.Parse(spec)
	if err != nil {
		b.fail(newBuildError("%s: %v", b.title, err))
		return condition.Bool(false)
	}
	if !positive {
		return c.Not()
	}
	return c
}

func (b *Builder) action(role Role, c *condition.Condition, args []Arg) *StepDef {
	return b.add(&StepDef{kind: kindAction, role: role, args: args, cond: c})
}

// Setup declares steps that prepare data.
func (b *Builder) Setup(args ...Arg) *StepDef { return b.action(RoleSetup, nil, args) }

// SetupIf declares setup steps built only when cond matches.
func (b *Builder) SetupIf(cond any, args ...Arg) *StepDef {
	return b.action(RoleSetup, b.cond(cond, true), args)
}

// SetupUnless declares setup steps built only when cond does not match.
func (b *Builder) SetupUnless(cond any, args ...Arg) *StepDef {
	return b.action(RoleSetup, b.cond(cond, false), args)
}

// Action declares steps that emulate a user or external system.
func (b *Builder) Action(args ...Arg) *StepDef { return b.action(RoleAction, nil, args) }

func (b *Builder) ActionIf(cond any, args ...Arg) *StepDef {
	return b.action(RoleAction, b.cond(cond, true), args)
}

func (b *Builder) ActionUnless(cond any, args ...Arg) *StepDef {
	return b.action(RoleAction, b.cond(cond, false), args)
}

// Verify declares checks, usually by shared step name.
func (b *Builder) Verify(args ...Arg) *StepDef { return b.action(RoleVerify, nil, args) }

func (b *Builder) VerifyIf(cond any, args ...Arg) *StepDef {
	return b.action(RoleVerify, b.cond(cond, true), args)
}

func (b *Builder) VerifyUnless(cond any, args ...Arg) *StepDef {
	return b.action(RoleVerify, b.cond(cond, false), args)
}

// Teardown declares steps that run last in their group, even after a
// failure.
func (b *Builder) Teardown(args ...Arg) *StepDef { return b.action(RoleTeardown, nil, args) }

func (b *Builder) TeardownIf(cond any, args ...Arg) *StepDef {
	return b.action(RoleTeardown, b.cond(cond, true), args)
}

func (b *Builder) TeardownUnless(cond any, args ...Arg) *StepDef {
	return b.action(RoleTeardown, b.cond(cond, false), args)
}

// Cleanup is Teardown under its own role name.
func (b *Builder) Cleanup(args ...Arg) *StepDef { return b.action(RoleCleanup, nil, args) }

func (b *Builder) CleanupIf(cond any, args ...Arg) *StepDef {
	return b.action(RoleCleanup, b.cond(cond, true), args)
}

func (b *Builder) CleanupUnless(cond any, args ...Arg) *StepDef {
	return b.action(RoleCleanup, b.cond(cond, false), args)
}

func (b *Builder) it(c *condition.Condition, title string, fn Func) *StepDef {
	return b.add(&StepDef{kind: kindPlain, role: RoleIt, title: title, fn: fn, cond: c})
}

// It declares a single titled check.
func (b *Builder) It(title string, fn Func) *StepDef { return b.it(nil, title, fn) }

func (b *Builder) ItIf(cond any, title string, fn Func) *StepDef {
	return b.it(b.cond(cond, true), title, fn)
}

func (b *Builder) ItUnless(cond any, title string, fn Func) *StepDef {
	return b.it(b.cond(cond, false), title, fn)
}

func (b *Builder) context(c *condition.Condition, title string, fn func(*Builder)) *StepDef {
	nested := newBuilder(b.suite, title, b.shared, true)
	if fn != nil {
		fn(nested)
	}
	b.errs = append(b.errs, nested.errs...)
	return b.add(&StepDef{kind: kindGroup, role: RoleContext, title: title, cond: c, steps: nested.steps})
}

// Context declares a group. fn runs immediately against a nested builder.
// Teardown steps of the group run at the end of the group.
func (b *Builder) Context(title string, fn func(*Builder)) *StepDef {
	return b.context(nil, title, fn)
}

func (b *Builder) ContextIf(cond any, title string, fn func(*Builder)) *StepDef {
	return b.context(b.cond(cond, true), title, fn)
}

func (b *Builder) ContextUnless(cond any, title string, fn func(*Builder)) *StepDef {
	return b.context(b.cond(cond, false), title, fn)
}

func (b *Builder) let(name string, fn LetFunc, once bool) {
	if name == "" || fn == nil {
		b.fail(newBuildError("%s: let needs a name and a function", b.title))
		return
	}
	b.steps = append(b.steps, &StepDef{kind: kindLet, role: RoleLet, title: name, shared: b.shared, let: &letDef{name: name, fn: fn, once: once}})
}

// Let registers a value computed on every lookup. It is visible in the
// enclosing group and its descendants.
func (b *Builder) Let(name string, fn LetFunc) { b.let(name, fn, false) }

// LetOnce registers a value computed on first lookup and reused for the
// rest of the execution.
func (b *Builder) LetOnce(name string, fn LetFunc) { b.let(name, fn, true) }

func (b *Builder) axis(a *variant.Axis) bool {
	if b.nested {
		b.fail(newBuildError("%s: %s %q is only allowed at scenario level", b.title, a.Kind, a.Key))
		return false
	}
	if err := a.Validate(); err != nil {
		b.fail(newBuildError("%s: %v", b.title, err))
		return false
	}
	return true
}

// Option adds an axis crossed with every other option.
func (b *Builder) Option(key string, variants ...variant.Variant) {
	if a := variant.NewOption(key, variants...); b.axis(a) {
		b.options = append(b.options, a)
	}
}

// Diagonal adds an axis whose variants each appear in at least one
// combination.
func (b *Builder) Diagonal(key string, variants ...variant.Variant) {
	if a := variant.NewDiagonal(key, variants...); b.axis(a) {
		b.diagonals = append(b.diagonals, a)
	}
}

// AddAxis adds a prepared axis, for plugins that build their own.
func (b *Builder) AddAxis(a *variant.Axis) {
	if !b.axis(a) {
		return
	}
	if a.Kind == variant.KindDiagonal {
		b.diagonals = append(b.diagonals, a)
	} else {
		b.options = append(b.options, a)
	}
}

// SkipWhen drops combinations for which fn returns true.
func (b *Builder) SkipWhen(fn func(*variant.Set) bool) {
	if b.nested {
		b.fail(newBuildError("%s: skip_when is only allowed at scenario level", b.title))
		return
	}
	b.skip = fn
}

// Metadata adds declaration-level metadata. Combination metadata wins on
// conflict.
func (b *Builder) Metadata(md metadata.Metadata) {
	b.md = metadata.Merge(b.md, md)
}

// Extension returns plugin state stored under key. Each builder has its
// own extensions; groups do not see the scenario's.
func (b *Builder) Extension(key any) any {
	return b.ext[key]
}

// SetExtension stores plugin state for the declaration.
func (b *Builder) SetExtension(key, value any) {
	if b.ext == nil {
		b.ext = map[any]any{}
	}
	b.ext[key] = value
}
