package report

import (
	"bytes"
	"testing"

	"github.com/muesli/termenv"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"

	"github.com/roach88/scenaria/pkg/scenario"
)

func TestConsole_Golden(t *testing.T) {
	var buf bytes.Buffer
	runCheckout(t, NewConsole(&buf, termenv.WithProfile(termenv.Ascii)))

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "console_checkout", buf.Bytes())
}

func TestConsole_Colors(t *testing.T) {
	var buf bytes.Buffer
	runCheckout(t, NewConsole(&buf, termenv.WithProfile(termenv.ANSI)))

	out := buf.String()
	assert.Contains(t, out, "\x1b[31m")
	assert.Contains(t, out, "\x1b[32m")
	assert.Contains(t, out, "\x1b[1m")
	assert.Contains(t, out, "card declined")
}

func TestConsole_EmptyRun(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, termenv.WithProfile(termenv.Ascii))
	c.Finished(scenario.NewWorld())
	assert.Equal(t, "0 scenarios\n", buf.String())
}

func TestMarker(t *testing.T) {
	assert.Equal(t, "[!]", marker(scenario.StatusFailed))
	assert.Equal(t, "[-]", marker(scenario.StatusSkipped))
	assert.Equal(t, "[?]", marker(scenario.StatusPending))
	assert.Equal(t, "[+]", marker(scenario.StatusPassed))
}

func TestIndent(t *testing.T) {
	assert.Equal(t, "  a\n  b", indent(2, "a\nb\n"))
}
