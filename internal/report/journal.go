package report

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/roach88/scenaria/internal/ids"
	"github.com/roach88/scenaria/internal/log"
	"github.com/roach88/scenaria/internal/store"
	"github.com/roach88/scenaria/pkg/scenario"
)

// Journal records the run in the SQLite store. Observer callbacks cannot
// fail, so write errors are logged and collected for Err.
type Journal struct {
	scenario.BaseObserver

	store  *store.Store
	env    string
	ids    ids.Generator
	now    func() time.Time
	logger *slog.Logger

	runID string
	seq   int64
	errs  []error
}

// JournalOption configures a Journal.
type JournalOption func(*Journal)

// WithJournalIDs sets the run id generator.
func WithJournalIDs(g ids.Generator) JournalOption {
	return func(j *Journal) { j.ids = g }
}

// WithJournalClock sets the time source for run timestamps.
func WithJournalClock(now func() time.Time) JournalOption {
	return func(j *Journal) { j.now = now }
}

// WithJournalLogger sets the logger for write failures.
func WithJournalLogger(l *slog.Logger) JournalOption {
	return func(j *Journal) { j.logger = l }
}

// NewJournal creates a journal observer recording runs of env into s.
func NewJournal(s *store.Store, env string, opts ...JournalOption) *Journal {
	j := &Journal{
		store:  s,
		env:    env,
		ids:    ids.UUIDv7Generator{},
		now:    time.Now,
		logger: log.NewNop(),
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// RunID is the id of the run being recorded, "" before Started.
func (j *Journal) RunID() string { return j.runID }

// Err joins every write error of the run.
func (j *Journal) Err() error { return errors.Join(j.errs...) }

func (j *Journal) fail(err error) {
	j.logger.Warn("journal write failed", log.RunID(j.runID), log.Error(err))
	j.errs = append(j.errs, err)
}

func (j *Journal) Started(*scenario.World) {
	j.runID = j.ids.Generate()
	j.seq = 0
	j.errs = nil
	if err := j.store.StartRun(context.Background(), store.Run{ID: j.runID, Env: j.env, StartedAt: j.now()}); err != nil {
		j.fail(err)
	}
}

func (j *Journal) ScenarioFinished(e *scenario.Execution) {
	j.seq++
	rec := store.ScenarioRecord{
		ID:         e.ID,
		RunID:      j.runID,
		Seq:        j.seq,
		Title:      e.Title(),
		Status:     string(e.Status()),
		Metadata:   e.Metadata(),
		StartedAt:  e.StartedAt(),
		FinishedAt: e.StartedAt().Add(e.Duration()),
	}

	steps := e.Steps()
	recs := make([]store.StepRecord, 0, len(steps))
	for _, s := range steps {
		if s.Status() == scenario.StatusNotRun {
			continue
		}
		st := store.StepRecord{
			Seq:            int64(len(recs) + 1),
			Title:          s.FullTitle(),
			Role:           string(s.Role()),
			Status:         string(s.Status()),
			PendingMessage: s.PendingMessage(),
		}
		if s.Err() != nil {
			st.Error = s.Err().Error()
		}
		recs = append(recs, st)
	}

	if err := j.store.WriteScenario(context.Background(), rec, recs); err != nil {
		j.fail(err)
	}
}

func (j *Journal) Finished(w *scenario.World) {
	sum := w.Summary()
	failed := sum.Total - sum.Count(scenario.StatusPassed)
	if err := j.store.FinishRun(context.Background(), j.runID, j.now(), sum.Total, failed); err != nil {
		j.fail(err)
	}
}
