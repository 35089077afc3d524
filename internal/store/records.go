package store

import "time"

// Run is one invocation of the runner.
type Run struct {
	ID         string
	Env        string
	StartedAt  time.Time
	FinishedAt time.Time // zero while the run is in progress
	Total      int
	Failed     int
}

// Finished reports whether the run was closed with FinishRun.
func (r Run) Finished() bool { return !r.FinishedAt.IsZero() }

// ScenarioRecord is one execution within a run.
type ScenarioRecord struct {
	ID         string
	RunID      string
	Seq        int64
	Title      string
	Status     string
	Metadata   map[string]any
	StartedAt  time.Time
	FinishedAt time.Time
}

// StepRecord is one reported step of a scenario.
type StepRecord struct {
	ScenarioID     string
	Seq            int64
	Title          string
	Role           string
	Status         string
	Error          string
	PendingMessage string
}

func toUnix(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromUnix(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}
