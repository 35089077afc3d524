// Package role runs scenarios once per user role.
//
// Installing the plugin adds a diagonal axis on the "as" metadata key to
// every declaration. Its variants are the roles named with As, or the
// default role when a declaration names none. Variant labels come from the
// role descriptions, so "Login" declared As(b, "admin", "user") builds
// "Login Administrator" and "Login User".
//
//	role.Install(suite, role.Config{
//		Descriptions: map[string]string{"admin": "Administrator", "user": "User"},
//		Default:      "user",
//	})
//	suite.BeforeScenario(scenario.Shared("setup user"))
package role

import (
	"fmt"

	"github.com/roach88/scenaria/pkg/scenario"
	"github.com/roach88/scenaria/pkg/variant"
)

// Key is the metadata key holding the current role.
const Key = "as"

// Config holds the role descriptions and default role.
type Config struct {
	// Descriptions maps role names to the labels used in titles.
	Descriptions map[string]string
	// Default is used by declarations that do not call As. Empty means
	// such declarations run without a role.
	Default string
}

// Plugin contributes the role axis.
type Plugin struct {
	cfg Config
}

type extensionKey struct{}

type declaration struct {
	roles       []any
	withoutUser bool
}

// Install creates the plugin and registers it with the suite.
func Install(s *scenario.Suite, cfg Config) *Plugin {
	p := &Plugin{cfg: cfg}
	s.Use(p)
	return p
}

func (p *Plugin) Name() string { return "role" }

// Axes returns the role diagonal for a declaration, or nothing for
// declarations without a role.
func (p *Plugin) Axes(b *scenario.Builder) ([]*variant.Axis, error) {
	d, _ := b.Extension(extensionKey{}).(*declaration)
	if d != nil && d.withoutUser {
		return nil, nil
	}
	var roles []any
	if d != nil && len(d.roles) > 0 {
		roles = d.roles
	} else if p.cfg.Default != "" {
		roles = []any{p.cfg.Default}
	}
	if len(roles) == 0 {
		return nil, nil
	}

	variants := make([]variant.Variant, 0, len(roles))
	for _, r := range roles {
		switch v := r.(type) {
		case string:
			variants = append(variants, variant.V(p.cfg.Descriptions[v], v))
		case variant.Calculated, func(*variant.Set) any:
			variants = append(variants, variant.V("", v))
		default:
			return nil, fmt.Errorf("role: unsupported role %T", r)
		}
	}
	return []*variant.Axis{variant.NewDiagonal(Key, variants...)}, nil
}

func state(b *scenario.Builder) *declaration {
	d, _ := b.Extension(extensionKey{}).(*declaration)
	if d == nil {
		d = &declaration{}
		b.SetExtension(extensionKey{}, d)
	}
	return d
}

// As lists the roles the declaration runs under. Each role is a string
// or a calculated value, either Calculated or a plain
// func(*variant.Set) any. Replaces any earlier call. Roles belong to the
// scenario: calling As on a group or shared step builder is a build error.
func As(b *scenario.Builder, roles ...any) {
	if b.Nested() {
		b.Errorf("role: as is only allowed at scenario level")
		return
	}
	state(b).roles = append([]any(nil), roles...)
}

// Calculated returns a role computed from the combination, for roles that
// depend on other axes.
func Calculated(fn func(*variant.Set) string) variant.Calculated {
	return func(s *variant.Set) any { return fn(s) }
}

// WithoutUser runs the declaration without any role.
func WithoutUser(b *scenario.Builder) {
	if b.Nested() {
		b.Errorf("role: without_user is only allowed at scenario level")
		return
	}
	state(b).withoutUser = true
}

// Current returns the role of the running execution, or "".
func Current(s *scenario.Scope) string {
	r, _ := s.Metadata().Get(Key).(string)
	return r
}

// Only keeps executions whose role is listed. Executions without a role
// are kept.
func Only(roles ...string) scenario.Filter {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(e *scenario.Execution) bool {
		r, ok := e.Metadata().Get(Key).(string)
		return !ok || allowed[r]
	}
}
