package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobscout/platform/internal/domain/jobs"
)

const runID = "7d0b2f8e-3c3b-4b8e-9a35-3e3c7b9a2f10"

var runRowColumns = []string{"id", "job_title", "location", "easy_apply", "max_jobs", "status", "postings", "job_count", "error", "started_at", "finished_at"}

func newMock(t *testing.T) (*RunRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRunRepository(db), mock
}

func TestRunRepositorySaveInsertsWithGeneratedID(t *testing.T) {
	repo, mock := newMock(t)
	started := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO scrape_runs")).
		WithArgs(sqlmock.AnyArg(), "Data Scientist", "New York", true, 25, "running", "[]", 0, "", started, sql.NullTime{}).
		WillReturnResult(sqlmock.NewResult(0, 1))

	run, err := repo.Save(context.Background(), jobs.Run{
		Search:    jobs.Search{JobTitle: "Data Scientist", Location: "New York", EasyApply: true, MaxJobs: 25},
		Status:    jobs.StatusRunning,
		StartedAt: started,
	})
	require.NoError(t, err)
	assert.Len(t, run.ID, 36)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunRepositorySaveUpdatesPostings(t *testing.T) {
	repo, mock := newMock(t)
	started := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	finished := started.Add(42 * time.Second)

	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (id) DO UPDATE")).
		WithArgs(runID, "SRE", "Austin", false, 1, "succeeded",
			`[{"company":"Acme","role":"SRE","link":"https://www.linkedin.com/jobs/view/1"}]`,
			1, "", started, sql.NullTime{Time: finished, Valid: true}).
		WillReturnResult(sqlmock.NewResult(0, 1))

	run, err := repo.Save(context.Background(), jobs.Run{
		ID:         runID,
		Search:     jobs.Search{JobTitle: "SRE", Location: "Austin", MaxJobs: 1},
		Status:     jobs.StatusSucceeded,
		Postings:   []jobs.Posting{{Company: "Acme", Role: "SRE", Link: "https://www.linkedin.com/jobs/view/1"}},
		StartedAt:  started,
		FinishedAt: &finished,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, run.Count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunRepositorySaveError(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectExec("INSERT INTO scrape_runs").WillReturnError(errors.New("connection reset"))

	_, err := repo.Save(context.Background(), jobs.Run{Status: jobs.StatusRunning})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save run")
}

func TestRunRepositoryFindByID(t *testing.T) {
	repo, mock := newMock(t)
	started := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM scrape_runs")).
		WithArgs(runID).
		WillReturnRows(sqlmock.NewRows(runRowColumns).AddRow(
			runID, "SRE", "Austin", false, 5, "failed", []byte(`[]`), 0, "navigate: timeout", started, nil,
		))

	run, err := repo.FindByID(context.Background(), runID)
	require.NoError(t, err)
	assert.Equal(t, jobs.StatusFailed, run.Status)
	assert.Equal(t, "navigate: timeout", run.Error)
	assert.Nil(t, run.FinishedAt)
	assert.Empty(t, run.Postings)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunRepositoryFindByIDNotFound(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery("FROM scrape_runs").WithArgs(runID).WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), runID)
	assert.ErrorIs(t, err, jobs.ErrNotFound)

	_, err = repo.FindByID(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, jobs.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunRepositoryList(t *testing.T) {
	repo, mock := newMock(t)
	started := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	finished := started.Add(time.Minute)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY started_at DESC")).
		WithArgs(10, 2).
		WillReturnRows(sqlmock.NewRows(runRowColumns).
			AddRow(runID, "SRE", "Austin", false, 5, "succeeded",
				[]byte(`[{"company":"Acme","role":"SRE","link":"https://x.example/1"}]`), 1, "", started, finished))

	list, err := repo.List(context.Background(), 10, 2)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Acme", list[0].Postings[0].Company)
	require.NotNil(t, list[0].FinishedAt)
	assert.Equal(t, finished, *list[0].FinishedAt)

	mock.ExpectQuery("ORDER BY started_at DESC").WithArgs(0).WillReturnRows(sqlmock.NewRows(runRowColumns))
	list, err = repo.List(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NoError(t, mock.ExpectationsWereMet())
}
