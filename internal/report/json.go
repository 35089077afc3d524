package report

import (
	"encoding/json"
	"io"

	"github.com/roach88/scenaria/pkg/scenario"
)

// JSON writes one document describing the whole run when it finishes.
type JSON struct {
	scenario.BaseObserver
	w   io.Writer
	err error
}

// RunReport is the document written by JSON.
type RunReport struct {
	Status    string           `json:"status"` // "ok" or "failed"
	Summary   SummaryReport    `json:"summary"`
	Scenarios []ScenarioReport `json:"scenarios"`
}

type SummaryReport struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"by_status"`
}

type ScenarioReport struct {
	ID         string       `json:"id"`
	Title      string       `json:"title"`
	Status     string       `json:"status"`
	DurationMS int64        `json:"duration_ms"`
	Steps      []StepReport `json:"steps,omitempty"`
}

type StepReport struct {
	Title   string `json:"title"`
	Role    string `json:"role"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
	Pending string `json:"pending,omitempty"`
}

// NewJSON creates a JSON report observer writing to w.
func NewJSON(w io.Writer) *JSON {
	return &JSON{w: w}
}

// Err returns the error from writing the report, if any.
func (j *JSON) Err() error { return j.err }

func (j *JSON) Finished(w *scenario.World) {
	j.err = json.NewEncoder(j.w).Encode(BuildReport(w))
}

// BuildReport describes the executions of w. Steps are listed for every
// scenario that did not pass.
func BuildReport(w *scenario.World) RunReport {
	sum := w.Summary()
	r := RunReport{
		Status:    "ok",
		Summary:   SummaryReport{Total: sum.Total, ByStatus: map[string]int{}},
		Scenarios: []ScenarioReport{},
	}
	if sum.Failed() {
		r.Status = "failed"
	}
	for st, n := range sum.ByStatus {
		r.Summary.ByStatus[string(st)] = n
	}

	for _, e := range w.Executions() {
		sr := ScenarioReport{
			ID:         e.ID,
			Title:      e.Title(),
			Status:     string(e.Status()),
			DurationMS: e.Duration().Milliseconds(),
		}
		if e.Status() != scenario.StatusPassed {
			for _, s := range reportable(e) {
				sr.Steps = append(sr.Steps, stepReport(s))
			}
		}
		r.Scenarios = append(r.Scenarios, sr)
	}
	return r
}

func stepReport(s *scenario.Step) StepReport {
	rep := StepReport{
		Title:   s.FullTitle(),
		Role:    string(s.Role()),
		Status:  string(s.Status()),
		Pending: s.PendingMessage(),
	}
	if s.Err() != nil {
		rep.Error = s.Err().Error()
	}
	return rep
}
