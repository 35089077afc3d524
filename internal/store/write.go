package store

import (
	"context"
	"fmt"
	"time"
)

// StartRun inserts an open run record.
func (s *Store) StartRun(ctx context.Context, run Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, env, started_at)
		VALUES (?, ?, ?)
	`, run.ID, run.Env, toUnix(run.StartedAt))
	if err != nil {
		return fmt.Errorf("start run: %w", err)
	}
	return nil
}

// FinishRun closes a run with its final counts.
func (s *Store) FinishRun(ctx context.Context, id string, finishedAt time.Time, total, failed int) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE runs SET finished_at = ?, total = ?, failed = ?
		WHERE id = ?
	`, toUnix(finishedAt), total, failed, id)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("finish run: %w: %s", ErrRunNotFound, id)
	}
	return nil
}

// WriteScenario inserts a scenario and its steps in one transaction.
// Writing the same scenario id twice is a no-op.
func (s *Store) WriteScenario(ctx context.Context, sc ScenarioRecord, steps []StepRecord) error {
	mdJSON, err := marshalMetadata(sc.Metadata)
	if err != nil {
		return fmt.Errorf("write scenario: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write scenario: begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO scenarios (id, run_id, seq, title, status, metadata, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		sc.ID,
		sc.RunID,
		sc.Seq,
		sc.Title,
		sc.Status,
		mdJSON,
		toUnix(sc.StartedAt),
		toUnix(sc.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("write scenario: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil
	}

	for _, st := range steps {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO steps (scenario_id, seq, title, role, status, error, pending_message)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, sc.ID, st.Seq, st.Title, st.Role, st.Status, st.Error, st.PendingMessage)
		if err != nil {
			return fmt.Errorf("write step %d: %w", st.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write scenario: commit: %w", err)
	}
	return nil
}
