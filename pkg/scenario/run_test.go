package scenario

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_FailureSkipsRestButRunsTeardown(t *testing.T) {
	exec := runOne(t, newTestSuite(), func(b *Builder) {
		b.Setup(Do(ok)).Titled("setup")
		b.Action(Do(fail)).Titled("action")
		b.Verify(Do(ok)).Titled("verify")
		b.Teardown(Do(ok)).Titled("teardown")
	})

	want := []string{
		"setup=passed",
		"action=failed",
		"verify=skipped",
		"teardown=passed",
	}
	if diff := cmp.Diff(want, statusTree(exec)); diff != "" {
		t.Errorf("status tree mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, StatusFailed, exec.Status())
}

func TestRun_VerifyFailureDoesNotSkip(t *testing.T) {
	exec := runOne(t, newTestSuite(), func(b *Builder) {
		b.Verify(Do(fail)).Titled("check")
		b.It("still runs", ok)
	})

	assert.Equal(t, []string{"check=failed", "still runs=passed"}, statusTree(exec))
}

func TestRun_TeardownDeclaredFirstRunsLast(t *testing.T) {
	var order []string
	track := func(name string) Func {
		return func(*Scope) error {
			order = append(order, name)
			return nil
		}
	}

	runOne(t, newTestSuite(), func(b *Builder) {
		b.Context("group", func(b *Builder) {
			b.Teardown(Do(track("teardown")))
			b.Cleanup(Do(track("cleanup")))
			b.Setup(Do(track("setup")))
			b.It("check", track("it"))
		})
		b.It("after group", track("after"))
	})

	assert.Equal(t, []string{"setup", "it", "teardown", "cleanup", "after"}, order)
}

func TestRun_SkipPropagatesIntoGroups(t *testing.T) {
	ran := false
	exec := runOne(t, newTestSuite(), func(b *Builder) {
		b.Setup(Do(fail)).Titled("broken")
		b.Context("later", func(b *Builder) {
			b.It("inner", func(*Scope) error {
				ran = true
				return nil
			})
			b.Teardown(Do(ok)).Titled("inner teardown")
		})
	})

	assert.False(t, ran)
	assert.Equal(t, []string{
		"broken=failed",
		"later=skipped",
		"later: inner=skipped",
		"later: inner teardown=skipped",
	}, statusTree(exec))
}

func TestRun_GroupFailureDoesNotSkipSiblings(t *testing.T) {
	exec := runOne(t, newTestSuite(), func(b *Builder) {
		b.Context("first", func(b *Builder) {
			b.Action(Do(fail)).Titled("act")
			b.It("skipped", ok)
		})
		b.It("sibling", ok)
	})

	assert.Equal(t, []string{
		"first=failed",
		"first: act=failed",
		"first: skipped=skipped",
		"sibling=passed",
	}, statusTree(exec))
}

func TestRun_PendingContract(t *testing.T) {
	exec := runOne(t, newTestSuite(), func(b *Builder) {
		b.It("known bug", func(s *Scope) error {
			s.Pending("ticket 12")
			return errors.New("still broken")
		})
		b.It("fixed bug", func(s *Scope) error {
			s.Pending("ticket 13")
			return nil
		})
	})

	steps := exec.Steps()
	require.Len(t, steps, 2)

	assert.Equal(t, StatusPending, steps[0].Status())
	assert.Equal(t, "ticket 12", steps[0].PendingMessage())
	assert.EqualError(t, errors.Unwrap(steps[0].Err()), "still broken")

	assert.Equal(t, StatusFailed, steps[1].Status())
	assert.True(t, IsPendingFixed(steps[1].Err()))
}

func TestRun_PendingGroupCoercedToPassed(t *testing.T) {
	exec := runOne(t, newTestSuite(), func(b *Builder) {
		b.Context("group", func(b *Builder) {
			b.It("passes", ok)
			b.It("pending", func(s *Scope) error {
				s.Pending("")
				return errors.New("expected")
			})
		})
	})

	assert.Equal(t, []string{
		"group=passed",
		"group: passes=passed",
		"group: pending=pending",
	}, statusTree(exec))
	assert.Equal(t, StatusPassed, exec.Status())
}

func TestRun_PanicIsCaptured(t *testing.T) {
	exec := runOne(t, newTestSuite(), func(b *Builder) {
		b.It("panics", func(*Scope) error { panic("kaboom") })
		b.It("next", ok)
	})

	steps := exec.Steps()
	assert.Equal(t, StatusFailed, steps[0].Status())
	assert.True(t, IsStepRuntime(steps[0].Err()))
	assert.Contains(t, steps[0].Err().Error(), "kaboom")
	assert.Equal(t, StatusPassed, steps[1].Status())
}

func TestRun_DynamicConditionIgnoresSubtree(t *testing.T) {
	calls := 0
	count := func(*Scope) error {
		calls++
		return nil
	}

	exec := runOne(t, newTestSuite(), func(b *Builder) {
		b.Setup(Do(func(s *Scope) error {
			s.Set("ready", false)
			return nil
		})).Titled("prepare")
		b.ContextIf(When(func(s *Scope) bool {
			v, _ := s.Var("ready")
			return v == true
		}), "when ready", func(b *Builder) {
			b.It("a", count)
			b.Context("nested", func(b *Builder) {
				b.It("b", count)
			})
		})
		b.ItUnless(When(func(s *Scope) bool {
			v, _ := s.Var("ready")
			return v == true
		}), "when not ready", count)
	})

	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{
		"prepare=passed",
		"when ready=ignored",
		"when ready: a=ignored",
		"when ready: nested=ignored",
		"when ready: nested: b=ignored",
		"when not ready=passed",
	}, statusTree(exec))
	assert.Equal(t, StatusPassed, exec.Status())
}

func TestRun_DynamicConditionPanicFailsStep(t *testing.T) {
	exec := runOne(t, newTestSuite(), func(b *Builder) {
		b.ItIf(When(func(*Scope) bool { panic("bad predicate") }), "guarded", ok)
	})

	step := exec.Steps()[0]
	assert.Equal(t, StatusFailed, step.Status())
	assert.True(t, IsStepRuntime(step.Err()))
}

func TestRun_ObserverEvents(t *testing.T) {
	rec := &recorder{}
	s := newTestSuite(WithObserver(rec))
	require.NoError(t, s.Define("obs", func(b *Builder) {
		b.Context("group", func(b *Builder) {
			b.It("inner", ok)
		})
		b.Setup(Do(fail)).Titled("broken")
		b.It("skipped", ok)
	}))

	_, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"started 1",
		"scenario started obs",
		"step started group",
		"step started group: inner",
		"step finished group: inner passed",
		"step finished group passed",
		"step started broken",
		"step finished broken failed",
		"scenario finished obs failed",
		"finished",
	}, rec.events)
}

func TestRun_CancelledContextStopsBeforeNextScenario(t *testing.T) {
	s := newTestSuite()
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Define("first", func(b *Builder) {
		b.It("cancels", func(*Scope) error {
			cancel()
			return nil
		})
		b.Teardown(Do(ok)).Titled("cleanup")
	}))
	require.NoError(t, s.Define("second", func(b *Builder) {
		b.It("never", ok)
	}))

	summary, err := s.Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	execs := s.World().Executions()
	assert.Equal(t, StatusPassed, execs[0].Status())
	assert.Equal(t, StatusNotRun, execs[1].Status())
	assert.Equal(t, 1, summary.Count(StatusNotRun))
	assert.True(t, summary.Failed())
}

func TestRun_StepSequenceFollowsRunningOrder(t *testing.T) {
	exec := runOne(t, newTestSuite(), func(b *Builder) {
		b.Teardown(Do(ok)).Titled("last")
		b.It("first", ok)
	})

	steps := exec.Steps()
	require.Len(t, steps, 2)
	assert.Equal(t, "first", steps[0].Title())
	assert.Less(t, steps[0].Seq(), steps[1].Seq())
}
