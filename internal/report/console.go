package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"

	"github.com/roach88/scenaria/pkg/scenario"
)

// Console prints one line per finished scenario and, for failed
// scenarios, every reportable step with its marker:
//
//	Checkout by card FAILED
//	  [+] Setup open shop
//	  [!] Action pay
//	      STEP_RUNTIME: step failed: card declined
//	  [-] Verify receipt sent
//	  [+] Teardown empty cart
//	2 scenarios (1 passed, 1 failed)
type Console struct {
	scenario.BaseObserver
	out *termenv.Output
}

// NewConsole creates a console observer writing to w. Colors follow the
// terminal unless an option fixes the profile, e.g.
// termenv.WithProfile(termenv.Ascii) for plain text.
func NewConsole(w io.Writer, opts ...termenv.OutputOption) *Console {
	return &Console{out: termenv.NewOutput(w, opts...)}
}

func (c *Console) ScenarioFinished(e *scenario.Execution) {
	status := e.Status()
	line := e.Title() + " " + c.out.String(strings.ToUpper(string(status))).Bold().String()
	fmt.Fprintln(c.out, c.colored(line, status))
	if !e.Failed() {
		return
	}

	for _, step := range reportable(e) {
		fmt.Fprintln(c.out, c.colored(fmt.Sprintf("  %s %s", marker(step.Status()), step.FullTitle()), step.Status()))
		if step.Status() == scenario.StatusFailed && step.Err() != nil {
			fmt.Fprintln(c.out, indent(6, step.Err().Error()))
		}
	}
}

func (c *Console) Finished(w *scenario.World) {
	sum := w.Summary()
	noun := "scenarios"
	if sum.Total == 1 {
		noun = "scenario"
	}
	if len(sum.Statuses) == 0 {
		fmt.Fprintf(c.out, "%d %s\n", sum.Total, noun)
		return
	}
	counts := make([]string, len(sum.Statuses))
	for i, st := range sum.Statuses {
		counts[i] = c.colored(fmt.Sprintf("%d %s", sum.Count(st), st), st)
	}
	fmt.Fprintf(c.out, "%d %s (%s)\n", sum.Total, noun, strings.Join(counts, ", "))
}

func (c *Console) colored(text string, status scenario.Status) string {
	var color termenv.Color
	switch status {
	case scenario.StatusFailed:
		color = c.out.Color("1")
	case scenario.StatusPassed:
		color = c.out.Color("2")
	case scenario.StatusSkipped:
		color = c.out.Color("6")
	default:
		return text
	}
	return c.out.String(text).Foreground(color).String()
}

// reportable returns the leaf steps that were reached, in running order.
// Ignored steps are left out.
func reportable(e *scenario.Execution) []*scenario.Step {
	var out []*scenario.Step
	for _, s := range e.Steps() {
		switch s.Status() {
		case scenario.StatusIgnored, scenario.StatusNotRun:
			continue
		}
		out = append(out, s)
	}
	return out
}

func marker(status scenario.Status) string {
	switch status {
	case scenario.StatusFailed:
		return "[!]"
	case scenario.StatusSkipped:
		return "[-]"
	case scenario.StatusPending:
		return "[?]"
	}
	return "[+]"
}

func indent(cols int, text string) string {
	pad := strings.Repeat(" ", cols)
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, l := range lines {
		lines[i] = pad + l
	}
	return strings.Join(lines, "\n")
}
