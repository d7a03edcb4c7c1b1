package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Patch run statuses
const (
	RunStatusStarted   = "STARTED"
	RunStatusCompleted = "COMPLETED"
	RunStatusPartial   = "PARTIAL"
	RunStatusFailed    = "FAILED"
)

// PatchRun summarizes one multi-file patch. Only counts are kept, never file
// contents.
type PatchRun struct {
	RunID       string     `json:"runId"`
	ProjectPath string     `json:"projectPath"`
	NumFiles    int        `json:"numFiles"`
	NumEdits    int        `json:"numEdits"`
	StartedAt   time.Time  `json:"startedAt"`
	FinishedAt  *time.Time `json:"finishedAt,omitempty"`
	Status      string     `json:"status"`
	Succeeded   int        `json:"succeeded"`
	Failed      int        `json:"failed"`
}

// RecordPatchStart inserts a run with status STARTED
func (d *DB) RecordPatchStart(ctx context.Context, runID, projectPath string, numFiles, numEdits int, startTime time.Time) error {
	query := `INSERT INTO patch_runs (run_id, project_path, num_files, num_edits, started_at, status) VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := d.db.ExecContext(ctx, query, runID, projectPath, numFiles, numEdits, startTime.UTC(), RunStatusStarted); err != nil {
		d.logger.Error().Err(err).Str("run_id", runID).Msg("Failed to record patch start")
		return fmt.Errorf("failed to insert patch run: %w", err)
	}
	d.logger.Debug().Str("run_id", runID).Str("project", projectPath).Msg("Recorded patch start")
	return nil
}

// UpdatePatchCompletion stores the outcome counts of a run
func (d *DB) UpdatePatchCompletion(ctx context.Context, runID string, endTime time.Time, succeeded, failed int) error {
	status := RunStatusCompleted
	switch {
	case failed > 0 && succeeded == 0:
		status = RunStatusFailed
	case failed > 0:
		status = RunStatusPartial
	}

	query := `UPDATE patch_runs SET finished_at = ?, status = ?, succeeded = ?, failed = ? WHERE run_id = ?`
	result, err := d.db.ExecContext(ctx, query, endTime.UTC(), status, succeeded, failed, runID)
	if err != nil {
		d.logger.Error().Err(err).Str("run_id", runID).Msg("Failed to update patch completion")
		return fmt.Errorf("failed to update patch run %s: %w", runID, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("patch run %s not found", runID)
	}
	return nil
}

// RecentPatchRuns returns up to limit runs, newest first
func (d *DB) RecentPatchRuns(ctx context.Context, limit int) ([]PatchRun, error) {
	query := `SELECT run_id, project_path, num_files, num_edits, started_at, finished_at, status, succeeded, failed
		FROM patch_runs ORDER BY started_at DESC, run_id LIMIT ?`
	rows, err := d.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query patch runs: %w", err)
	}
	defer rows.Close()

	var runs []PatchRun
	for rows.Next() {
		var run PatchRun
		var finishedAt sql.NullTime
		if err := rows.Scan(&run.RunID, &run.ProjectPath, &run.NumFiles, &run.NumEdits, &run.StartedAt, &finishedAt, &run.Status, &run.Succeeded, &run.Failed); err != nil {
			return nil, fmt.Errorf("failed to scan patch run: %w", err)
		}
		if finishedAt.Valid {
			run.FinishedAt = &finishedAt.Time
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
