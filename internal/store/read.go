package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrRunNotFound is returned when no matching run exists.
var ErrRunNotFound = errors.New("run not found")

// ReadRun returns the run with the given id.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, env, started_at, COALESCE(finished_at, 0), total, failed
		FROM runs
		WHERE id = ?
	`, id)
	return scanRun(row)
}

// LatestRun returns the most recently started finished run, optionally
// limited to one environment. Returns ErrRunNotFound if there is none.
func (s *Store) LatestRun(ctx context.Context, env string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, env, started_at, COALESCE(finished_at, 0), total, failed
		FROM runs
		WHERE finished_at IS NOT NULL AND (? = '' OR env = ?)
		ORDER BY started_at DESC, id COLLATE BINARY DESC
		LIMIT 1
	`, env, env)
	return scanRun(row)
}

func scanRun(row *sql.Row) (Run, error) {
	var (
		r                 Run
		started, finished int64
	)
	err := row.Scan(&r.ID, &r.Env, &started, &finished, &r.Total, &r.Failed)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrRunNotFound
	}
	if err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	r.StartedAt = fromUnix(started)
	r.FinishedAt = fromUnix(finished)
	return r, nil
}

// ReadScenarios returns the scenarios of a run in running order.
// Returns an empty slice (not nil) if the run has none.
func (s *Store) ReadScenarios(ctx context.Context, runID string) ([]ScenarioRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run_id, seq, title, status, metadata, started_at, finished_at
		FROM scenarios
		WHERE run_id = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query scenarios: %w", err)
	}
	defer rows.Close()

	scenarios := []ScenarioRecord{}
	for rows.Next() {
		var (
			sc                ScenarioRecord
			mdJSON            string
			started, finished int64
		)
		if err := rows.Scan(&sc.ID, &sc.RunID, &sc.Seq, &sc.Title, &sc.Status, &mdJSON, &started, &finished); err != nil {
			return nil, fmt.Errorf("scan scenario: %w", err)
		}
		md, err := unmarshalMetadata(mdJSON)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", sc.ID, err)
		}
		sc.Metadata = md
		sc.StartedAt = fromUnix(started)
		sc.FinishedAt = fromUnix(finished)
		scenarios = append(scenarios, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scenarios: %w", err)
	}
	return scenarios, nil
}

// ReadSteps returns the steps of a scenario in running order.
func (s *Store) ReadSteps(ctx context.Context, scenarioID string) ([]StepRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT scenario_id, seq, title, role, status, error, pending_message
		FROM steps
		WHERE scenario_id = ?
		ORDER BY seq ASC
	`, scenarioID)
	if err != nil {
		return nil, fmt.Errorf("query steps: %w", err)
	}
	defer rows.Close()

	steps := []StepRecord{}
	for rows.Next() {
		var st StepRecord
		if err := rows.Scan(&st.ScenarioID, &st.Seq, &st.Title, &st.Role, &st.Status, &st.Error, &st.PendingMessage); err != nil {
			return nil, fmt.Errorf("scan step: %w", err)
		}
		steps = append(steps, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate steps: %w", err)
	}
	return steps, nil
}

// FailedTitles returns the titles of scenarios that did not pass in the
// latest finished run of env, in running order. An empty journal yields
// no titles.
func (s *Store) FailedTitles(ctx context.Context, env string) ([]string, error) {
	run, err := s.LatestRun(ctx, env)
	if errors.Is(err, ErrRunNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT title
		FROM scenarios
		WHERE run_id = ? AND status <> 'passed'
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, run.ID)
	if err != nil {
		return nil, fmt.Errorf("query failed titles: %w", err)
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, fmt.Errorf("scan title: %w", err)
		}
		titles = append(titles, title)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate titles: %w", err)
	}
	return titles, nil
}
