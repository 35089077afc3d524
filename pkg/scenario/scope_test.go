package scenario

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/scenaria/pkg/metadata"
	"github.com/roach88/scenaria/pkg/variant"
)

type mapEnv map[string]any

func (m mapEnv) Get(path string) any { return m[path] }

func (m mapEnv) Decode(path string, target any) error {
	p, ok := target.(*string)
	if !ok {
		return errors.New("unsupported target")
	}
	*p, _ = m[path].(string)
	return nil
}

func TestScope_LetRecomputesAndLetOnceMemoizes(t *testing.T) {
	calls, onceCalls := 0, 0
	var values []any

	runOne(t, newTestSuite(), func(b *Builder) {
		b.Let("counter", func(*Scope, ...any) (any, error) {
			calls++
			return calls, nil
		})
		b.LetOnce("user", func(*Scope, ...any) (any, error) {
			onceCalls++
			return "user-1", nil
		})
		b.It("reads", func(s *Scope) error {
			values = append(values, s.MustGet("counter"), s.MustGet("counter"), s.MustGet("user"), s.MustGet("user"))
			return nil
		})
	})

	assert.Equal(t, []any{1, 2, "user-1", "user-1"}, values)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, onceCalls)
}

func TestScope_LetOnceIsPerExecution(t *testing.T) {
	s := newTestSuite()
	calls := 0
	require.NoError(t, s.Define("twice", func(b *Builder) {
		b.Option("n", variant.V("a", 1), variant.V("b", 2))
		b.LetOnce("value", func(*Scope, ...any) (any, error) {
			calls++
			return calls, nil
		})
		b.It("reads", func(s *Scope) error {
			s.MustGet("value")
			s.MustGet("value")
			return nil
		})
	}))

	_, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestScope_NearestLetWins(t *testing.T) {
	var got []any
	read := func(s *Scope) error {
		got = append(got, s.MustGet("name"))
		return nil
	}
	constant := func(v string) LetFunc {
		return func(*Scope, ...any) (any, error) { return v, nil }
	}

	runOne(t, newTestSuite(), func(b *Builder) {
		b.Let("name", constant("outer"))
		b.It("outer read", read)
		b.Context("inner", func(b *Builder) {
			b.Let("name", constant("inner"))
			b.It("inner read", read)
		})
		b.It("outer again", read)
	})

	assert.Equal(t, []any{"outer", "inner", "outer"}, got)
}

func TestScope_LetArgumentsAndErrors(t *testing.T) {
	exec := runOne(t, newTestSuite(), func(b *Builder) {
		b.Let("square", func(_ *Scope, args ...any) (any, error) {
			n := args[0].(int)
			return n * n, nil
		})
		b.Let("broken", func(*Scope, ...any) (any, error) {
			return nil, errors.New("cannot compute")
		})
		b.It("square", func(s *Scope) error {
			v, err := s.Get("square", 4)
			if err != nil {
				return err
			}
			if v != 16 {
				return errors.New("wrong square")
			}
			return nil
		})
		b.It("broken", func(s *Scope) error {
			_, err := s.Get("broken")
			return err
		})
	})

	steps := exec.Steps()
	assert.Equal(t, StatusPassed, steps[0].Status())
	assert.Equal(t, StatusFailed, steps[1].Status())
	assert.ErrorContains(t, steps[1].Err(), "cannot compute")
}

func TestScope_MetadataFallbackAndUndefinedReference(t *testing.T) {
	var fromMeta any
	exec := runOne(t, newTestSuite(), func(b *Builder) {
		b.Metadata(metadata.Metadata{"limit": 10})
		b.It("metadata", func(s *Scope) error {
			fromMeta = s.MustGet("limit")
			return nil
		})
		b.It("undefined", func(s *Scope) error {
			s.MustGet("nope")
			return nil
		})
	})

	assert.Equal(t, 10, fromMeta)
	step := exec.Steps()[1]
	assert.Equal(t, StatusFailed, step.Status())
	assert.True(t, IsUndefinedReference(step.Err()))
}

func TestScope_StepMetadataOverridesInherited(t *testing.T) {
	seen := metadata.Metadata{}
	runOne(t, newTestSuite(), func(b *Builder) {
		b.Metadata(metadata.Metadata{"task": "new", "owner": "me"})
		b.Context("created", func(b *Builder) {
			b.It("reads", func(s *Scope) error {
				seen = s.Metadata()
				return nil
			}).Meta(metadata.Metadata{"step": true})
		}).Meta(metadata.Metadata{"task": "created"})
	})

	assert.Equal(t, metadata.Metadata{"task": "created", "owner": "me", "step": true}, seen)
}

func TestScope_StepMetadataReachesSharedSteps(t *testing.T) {
	s := newTestSuite()
	var seen any
	require.NoError(t, s.SharedStep("pay", func(b *Builder) {
		b.Action().Do(func(s *Scope) error {
			seen = s.Metadata()["amount"]
			return nil
		})
	}))
	runOne(t, s, func(b *Builder) {
		b.Action(Shared("pay")).Meta(metadata.Metadata{"amount": 10})
	})

	assert.Equal(t, 10, seen)
}

func TestScope_InstanceVariablesAreShared(t *testing.T) {
	exec := runOne(t, newTestSuite(), func(b *Builder) {
		b.Setup(Do(func(s *Scope) error {
			s.Set("order", 42)
			return nil
		}))
		b.It("reads", func(s *Scope) error {
			v, ok := s.Var("order")
			if !ok || v != 42 {
				return errors.New("missing order")
			}
			return nil
		})
	})

	assert.Equal(t, StatusPassed, exec.Status())
}

func TestScope_EnvironmentAndKeep(t *testing.T) {
	s := newTestSuite(WithEnvironment(mapEnv{"url": "http://qa"}), WithKeep(true))
	var url string
	var keep bool
	runOne(t, s, func(b *Builder) {
		b.It("reads env", func(s *Scope) error {
			keep = s.Keep()
			return s.Env().Decode("url", &url)
		})
	})

	assert.Equal(t, "http://qa", url)
	assert.True(t, keep)
}

func TestScope_DefaultEnvironmentIsEmpty(t *testing.T) {
	var got any = "unset"
	runOne(t, newTestSuite(), func(b *Builder) {
		b.It("reads env", func(s *Scope) error {
			got = s.Env().Get("anything")
			return nil
		})
	})
	assert.Nil(t, got)
}

func TestScope_LetInsideSharedStep(t *testing.T) {
	s := newTestSuite()
	require.NoError(t, s.SharedStep("with user", func(b *Builder) {
		b.LetOnce("user", func(*Scope, ...any) (any, error) { return "shared-user", nil })
		b.Setup(Do(ok))
	}))
	var got any
	runOne(t, s, func(b *Builder) {
		b.Setup(Shared("with user"))
		b.It("reads", func(s *Scope) error {
			got = s.MustGet("user")
			return nil
		})
	})
	assert.Equal(t, "shared-user", got)
}

func TestScope_SelfReferencingLetFailsTheStep(t *testing.T) {
	s := newTestSuite()
	require.NoError(t, s.Define("cyclic", func(b *Builder) {
		b.LetOnce("user", func(s *Scope, _ ...any) (any, error) { return s.Get("user") })
		b.Let("total", func(s *Scope, _ ...any) (any, error) { return s.MustGet("total"), nil })
		b.It("reads user", func(s *Scope) error {
			_, err := s.Get("user")
			return err
		})
		b.It("reads total", func(s *Scope) error {
			s.MustGet("total")
			return nil
		})
		b.Teardown(Do(ok)).Titled("cleanup")
	}))
	require.NoError(t, s.Define("independent", func(b *Builder) {
		b.It("runs", ok)
	}))

	_, err := s.Run(context.Background())
	require.NoError(t, err)

	execs := s.World().Executions()
	require.Len(t, execs, 2)
	steps := execs[0].Steps()
	require.Len(t, steps, 3)
	assert.Equal(t, StatusFailed, steps[0].Status())
	assert.True(t, IsUndefinedReference(steps[0].Err()))
	assert.ErrorContains(t, steps[0].Err(), "let cycle")
	assert.Equal(t, StatusFailed, steps[1].Status())
	assert.True(t, IsUndefinedReference(steps[1].Err()))
	assert.Equal(t, StatusPassed, steps[2].Status())
	assert.Equal(t, StatusPassed, execs[1].Status())
}
