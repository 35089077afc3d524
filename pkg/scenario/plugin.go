package scenario

import "github.com/roach88/scenaria/pkg/variant"

// Plugin extends a suite. Install plugins with Suite.Use before declaring
// scenarios. A plugin takes part through any of the provider interfaces
// below.
type Plugin interface {
	Name() string
}

// AxisProvider contributes axes to every declaration. It is called after
// the declaration function ran, so it can read builder extensions.
type AxisProvider interface {
	Axes(b *Builder) ([]*variant.Axis, error)
}

// BeforeScenarioProvider contributes setup steps run at the start of every
// scenario.
type BeforeScenarioProvider interface {
	BeforeScenario() []Arg
}

// AfterScenarioProvider contributes teardown steps run at the end of every
// scenario.
type AfterScenarioProvider interface {
	AfterScenario() []Arg
}
