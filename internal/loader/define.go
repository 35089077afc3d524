package loader

import (
	"strings"

	"github.com/roach88/scenaria/pkg/role"
	"github.com/roach88/scenaria/pkg/scenario"
	"github.com/roach88/scenaria/pkg/variant"
)

// Define registers the file's declaration with s. Skipped files are
// declared with XDefine and build nothing.
func (f *File) Define(s *scenario.Suite) error {
	if f.Skip {
		return s.XDefine(f.Title, f.declare)
	}
	return s.Define(f.Title, f.declare, f.Metadata)
}

// DefineAll registers every file, stopping at the first failure.
func DefineAll(s *scenario.Suite, files []*File) error {
	for _, f := range files {
		if err := f.Define(s); err != nil {
			return err
		}
	}
	return nil
}

func (f *File) declare(b *scenario.Builder) {
	for _, a := range f.Options {
		b.Option(a.Key, a.variants()...)
	}
	for _, a := range f.Diagonals {
		b.Diagonal(a.Key, a.variants()...)
	}
	switch {
	case f.WithoutUser:
		role.WithoutUser(b)
	case len(f.As) > 0:
		roles := make([]any, len(f.As))
		for i, r := range f.As {
			roles[i] = r
		}
		role.As(b, roles...)
	}
	declareSteps(b, f.Steps)
}

func (a Axis) variants() []variant.Variant {
	out := make([]variant.Variant, len(a.Variants))
	for i, v := range a.Variants {
		out[i] = variant.V(v.Label, v.Value)
	}
	return out
}

type verb struct {
	plain  func(...scenario.Arg) *scenario.StepDef
	when   func(any, ...scenario.Arg) *scenario.StepDef
	unless func(any, ...scenario.Arg) *scenario.StepDef
}

func verbsOf(b *scenario.Builder) map[string]verb {
	return map[string]verb{
		"setup":    {b.Setup, b.SetupIf, b.SetupUnless},
		"action":   {b.Action, b.ActionIf, b.ActionUnless},
		"verify":   {b.Verify, b.VerifyIf, b.VerifyUnless},
		"teardown": {b.Teardown, b.TeardownIf, b.TeardownUnless},
		"cleanup":  {b.Cleanup, b.CleanupIf, b.CleanupUnless},
	}
}

func declareSteps(b *scenario.Builder, steps []Step) {
	verbs := verbsOf(b)
	for _, s := range steps {
		var def *scenario.StepDef
		if s.Context != "" {
			nested := s.Steps
			fn := func(nb *scenario.Builder) { declareSteps(nb, nested) }
			switch {
			case s.If != nil:
				def = b.ContextIf(s.If, s.Context, fn)
			case s.Unless != nil:
				def = b.ContextUnless(s.Unless, s.Context, fn)
			default:
				def = b.Context(s.Context, fn)
			}
		} else {
			v := verbs[s.verbs()[0]]
			arg := scenario.Shared(strings.Join(s.names(), ", "))
			switch {
			case s.If != nil:
				def = v.when(s.If, arg)
			case s.Unless != nil:
				def = v.unless(s.Unless, arg)
			default:
				def = v.plain(arg)
			}
		}
		if len(s.Metadata) > 0 {
			def.Meta(s.Metadata)
		}
		if s.Title != "" {
			def.Titled(s.Title)
		}
	}
}
