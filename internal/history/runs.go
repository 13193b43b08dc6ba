package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"reelforge/internal/pipeline"
	"reelforge/internal/services"
)

// timestampLayout is fixed width so text ordering in SQLite matches time order.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

const runColumns = "id, job_id, status, failure_kind, error_message, render_path, fallback_reason, background_path, audio_path, output_path, narration_chars, captions, rasterizations, frames, audio_duration, loops, width, height, frame_rate, started_at, finished_at"

// Insert stores run and returns its row id.
func (s *Store) Insert(ctx context.Context, run Run) (int64, error) {
	if strings.TrimSpace(run.JobID) == "" {
		return 0, errors.New("history run requires a job id")
	}
	if run.Status == "" {
		run.Status = StatusSucceeded
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	if run.FinishedAt.IsZero() {
		run.FinishedAt = run.StartedAt
	}
	res, err := s.execWithRetry(ctx,
		`INSERT INTO render_runs (`+strings.TrimPrefix(runColumns, "id, ")+`)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.JobID,
		string(run.Status),
		nullableString(run.FailureKind),
		nullableString(run.ErrorMessage),
		nullableString(run.RenderPath),
		nullableString(run.FallbackReason),
		run.Background,
		run.Audio,
		run.Output,
		run.NarrationChars,
		run.Captions,
		run.Rasterizations,
		run.Frames,
		run.AudioDuration,
		run.Loops,
		run.Width,
		run.Height,
		run.FrameRate,
		run.StartedAt.UTC().Format(timestampLayout),
		run.FinishedAt.UTC().Format(timestampLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("insert render run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// RecordRender stores the outcome of a pipeline render.
func (s *Store) RecordRender(ctx context.Context, req pipeline.Request, res pipeline.Result, renderErr error) error {
	run := Run{
		JobID:          res.JobID,
		Status:         StatusSucceeded,
		RenderPath:     string(res.Path),
		FallbackReason: res.FallbackReason,
		Background:     req.Background,
		Audio:          req.Audio,
		Output:         res.Output,
		NarrationChars: len([]rune(req.Narration)),
		Captions:       res.Captions,
		Rasterizations: res.Rasterizations,
		Frames:         res.Frames,
		AudioDuration:  res.AudioDuration,
		Loops:          res.Loops,
		Width:          res.Width,
		Height:         res.Height,
		FrameRate:      res.FrameRate,
		StartedAt:      res.StartedAt,
		FinishedAt:     res.FinishedAt,
	}
	if renderErr != nil {
		run.Status = StatusFailed
		run.FailureKind = services.FailureKind(renderErr)
		run.ErrorMessage = renderErr.Error()
	}
	_, err := s.Insert(ctx, run)
	return err
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM render_runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query render runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate render runs: %w", err)
	}
	return runs, nil
}

// GetByJobID returns the run for jobID, or nil when none exists.
func (s *Store) GetByJobID(ctx context.Context, jobID string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM render_runs WHERE job_id = ?`, jobID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// Summary counts runs by status.
func (s *Store) Summary(ctx context.Context) (Summary, error) {
	var summary Summary
	var frames sql.NullInt64
	err := s.db.QueryRowContext(ctx, `SELECT
            COUNT(1),
            COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
            COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
            SUM(frames)
        FROM render_runs`, string(StatusSucceeded), string(StatusFailed),
	).Scan(&summary.Total, &summary.Succeeded, &summary.Failed, &frames)
	if err != nil {
		return Summary{}, fmt.Errorf("summarize render runs: %w", err)
	}
	summary.Frames = frames.Int64
	return summary, nil
}

// PruneBefore deletes runs that started before cutoff.
func (s *Store) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM render_runs WHERE started_at < ?`, cutoff.UTC().Format(timestampLayout))
	if err != nil {
		return 0, fmt.Errorf("prune render runs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (Run, error) {
	var (
		run            Run
		status         string
		failureKind    sql.NullString
		errorMessage   sql.NullString
		renderPath     sql.NullString
		fallbackReason sql.NullString
		startedRaw     string
		finishedRaw    string
	)
	if err := scanner.Scan(
		&run.ID,
		&run.JobID,
		&status,
		&failureKind,
		&errorMessage,
		&renderPath,
		&fallbackReason,
		&run.Background,
		&run.Audio,
		&run.Output,
		&run.NarrationChars,
		&run.Captions,
		&run.Rasterizations,
		&run.Frames,
		&run.AudioDuration,
		&run.Loops,
		&run.Width,
		&run.Height,
		&run.FrameRate,
		&startedRaw,
		&finishedRaw,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan render run: %w", err)
	}
	run.Status = Status(status)
	run.FailureKind = failureKind.String
	run.ErrorMessage = errorMessage.String
	run.RenderPath = renderPath.String
	run.FallbackReason = fallbackReason.String
	run.StartedAt = parseTime(startedRaw)
	run.FinishedAt = parseTime(finishedRaw)
	return run, nil
}

func parseTime(raw string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
