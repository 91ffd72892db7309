package memory

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobscout/platform/internal/domain/jobs"
)

func TestRunRepositorySaveAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewRunRepository()

	saved, err := repo.Save(ctx, jobs.Run{
		Search:    jobs.Search{JobTitle: "Data Scientist", Location: "New York", MaxJobs: 10},
		Status:    jobs.StatusRunning,
		StartedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	require.NotEmpty(t, saved.ID)

	saved.Status = jobs.StatusSucceeded
	saved.Postings = []jobs.Posting{{Company: "Acme", Role: "DS", Link: "https://example.com/1"}}
	_, err = repo.Save(ctx, saved)
	require.NoError(t, err)

	found, err := repo.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, jobs.StatusSucceeded, found.Status)
	assert.Len(t, found.Postings, 1)

	saved.Postings[0].Company = "mutated"
	found, err = repo.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", found.Postings[0].Company)
}

func TestRunRepositoryFindMissing(t *testing.T) {
	_, err := NewRunRepository().FindByID(context.Background(), "nope")
	assert.ErrorIs(t, err, jobs.ErrNotFound)
}

func TestRunRepositoryListNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewRunRepository()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		_, err := repo.Save(ctx, jobs.Run{
			Search:    jobs.Search{JobTitle: "role", Location: "here", MaxJobs: i + 1},
			StartedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	list, err := repo.List(ctx, 0, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 3, list[0].Search.MaxJobs)
	assert.Equal(t, 2, list[1].Search.MaxJobs)

	rest, err := repo.List(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, 1, rest[0].Search.MaxJobs)

	empty, err := repo.List(ctx, 10, 5)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestRunRepositoryListHugeLimit(t *testing.T) {
	ctx := context.Background()
	repo := NewRunRepository()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		_, err := repo.Save(ctx, jobs.Run{StartedAt: base.Add(time.Duration(i) * time.Minute)})
		require.NoError(t, err)
	}

	list, err := repo.List(ctx, 1, math.MaxInt)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	list, err = repo.List(ctx, 3, math.MaxInt)
	require.NoError(t, err)
	assert.Empty(t, list)
}
