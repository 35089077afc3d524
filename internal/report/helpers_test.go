package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/scenaria/internal/ids"
	"github.com/roach88/scenaria/pkg/scenario"
	"github.com/roach88/scenaria/pkg/variant"
)

var fixedTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func ok(*scenario.Scope) error { return nil }

// runCheckout runs two executions of a checkout scenario: paying by card
// fails, paying by invoice passes. Observers see the whole run.
func runCheckout(t *testing.T, observers ...scenario.Observer) *scenario.Suite {
	t.Helper()
	opts := []scenario.SuiteOption{
		scenario.WithIDGenerator(ids.NewSequenceGenerator("exec")),
		scenario.WithTimeSource(func() time.Time { return fixedTime }),
	}
	for _, o := range observers {
		opts = append(opts, scenario.WithObserver(o))
	}
	s := scenario.NewSuite(opts...)

	require.NoError(t, s.Define("Checkout", func(b *scenario.Builder) {
		b.Option("payment", variant.V("by card", "card"), variant.V("by invoice", "invoice"))
		b.Setup(scenario.Do(ok)).Titled("open shop")
		b.Action(scenario.Do(func(s *scenario.Scope) error {
			if s.Metadata()["payment"] == "card" {
				return errors.New("card declined")
			}
			return nil
		})).Titled("pay")
		b.Verify(scenario.Do(ok)).Titled("receipt sent")
		b.VerifyIf(map[string]any{"payment": "invoice"}, scenario.Do(ok)).Titled("invoice mailed")
		b.Teardown(scenario.Do(ok)).Titled("empty cart")
		b.Teardown(scenario.Do(func(s *scenario.Scope) error {
			s.Pending("archive is flaky")
			return errors.New("archive unavailable")
		})).Titled("archive order")
	}))

	_, err := s.Run(context.Background())
	require.NoError(t, err)
	return s
}
