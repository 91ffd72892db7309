package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jobscout/platform/internal/domain/jobs"
)

// RunRepository persists scrape runs in the scrape_runs table.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository returns a repository backed by a pooled DB connection.
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

const runColumns = `id, job_title, location, easy_apply, max_jobs, status, postings, job_count, error, started_at, finished_at`

// FindByID fetches a run by primary key.
func (r *RunRepository) FindByID(ctx context.Context, id string) (jobs.Run, error) {
	if _, err := uuid.Parse(id); err != nil {
		return jobs.Run{}, jobs.ErrNotFound
	}

	query := `
        SELECT ` + runColumns + `
          FROM scrape_runs
         WHERE id = $1
    `

	run, err := scanRun(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return jobs.Run{}, jobs.ErrNotFound
		}
		return jobs.Run{}, fmt.Errorf("find run: %w", err)
	}
	return run, nil
}

// Save inserts a new run or updates the mutable fields of an existing one.
func (r *RunRepository) Save(ctx context.Context, run jobs.Run) (jobs.Run, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.Postings == nil {
		run.Postings = []jobs.Posting{}
	}
	postings, err := json.Marshal(run.Postings)
	if err != nil {
		return jobs.Run{}, fmt.Errorf("encode postings: %w", err)
	}

	const upsert = `
        INSERT INTO scrape_runs (id, job_title, location, easy_apply, max_jobs, status, postings, job_count, error, started_at, finished_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        ON CONFLICT (id) DO UPDATE
           SET status = EXCLUDED.status,
               postings = EXCLUDED.postings,
               job_count = EXCLUDED.job_count,
               error = EXCLUDED.error,
               finished_at = EXCLUDED.finished_at
    `
	var finished sql.NullTime
	if run.FinishedAt != nil {
		finished = sql.NullTime{Time: *run.FinishedAt, Valid: true}
	}

	if _, err := r.db.ExecContext(ctx, upsert,
		run.ID,
		run.Search.JobTitle,
		run.Search.Location,
		run.Search.EasyApply,
		run.Search.MaxJobs,
		string(run.Status),
		string(postings),
		len(run.Postings),
		run.Error,
		run.StartedAt,
		finished,
	); err != nil {
		return jobs.Run{}, fmt.Errorf("save run: %w", err)
	}

	run.Count = len(run.Postings)
	return run, nil
}

// List returns runs newest first. A zero limit returns everything after offset.
func (r *RunRepository) List(ctx context.Context, offset, limit int) ([]jobs.Run, error) {
	query := `
        SELECT ` + runColumns + `
          FROM scrape_runs
         ORDER BY started_at DESC
        OFFSET $1
    `
	args := []any{offset}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	list := []jobs.Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		list = append(list, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("runs rows err: %w", err)
	}
	return list, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (jobs.Run, error) {
	var (
		run      jobs.Run
		status   string
		postings []byte
		finished sql.NullTime
	)
	if err := row.Scan(
		&run.ID,
		&run.Search.JobTitle,
		&run.Search.Location,
		&run.Search.EasyApply,
		&run.Search.MaxJobs,
		&status,
		&postings,
		&run.Count,
		&run.Error,
		&run.StartedAt,
		&finished,
	); err != nil {
		return jobs.Run{}, err
	}

	run.Status = jobs.Status(status)
	if finished.Valid {
		t := finished.Time
		run.FinishedAt = &t
	}
	if err := json.Unmarshal(postings, &run.Postings); err != nil {
		return jobs.Run{}, fmt.Errorf("decode postings: %w", err)
	}
	return run, nil
}
