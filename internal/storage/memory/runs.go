package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/jobscout/platform/internal/domain/jobs"
)

// RunRepository is an in-memory implementation of jobs.Repository.
type RunRepository struct {
	mu   sync.RWMutex
	runs map[string]jobs.Run
}

// NewRunRepository creates an in-memory run repo.
func NewRunRepository() *RunRepository {
	return &RunRepository{
		runs: make(map[string]jobs.Run),
	}
}

func (r *RunRepository) FindByID(ctx context.Context, id string) (jobs.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	run, ok := r.runs[id]
	if !ok {
		return jobs.Run{}, jobs.ErrNotFound
	}
	return run, nil
}

func (r *RunRepository) Save(ctx context.Context, run jobs.Run) (jobs.Run, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if run.ID == "" {
		run.ID = uuid.NewString()
	} else if existing, ok := r.runs[run.ID]; ok && run.StartedAt.IsZero() {
		run.StartedAt = existing.StartedAt
	}

	// copy so callers cannot mutate stored postings
	run.Postings = append([]jobs.Posting(nil), run.Postings...)
	r.runs[run.ID] = run
	return run, nil
}

// List returns runs newest first.
func (r *RunRepository) List(ctx context.Context, offset, limit int) ([]jobs.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]jobs.Run, 0, len(r.runs))
	for _, run := range r.runs {
		list = append(list, run)
	}

	sort.Slice(list, func(i, j int) bool {
		return list[i].StartedAt.After(list[j].StartedAt)
	})

	if offset > len(list) {
		return []jobs.Run{}, nil
	}
	end := len(list)
	if limit > 0 && limit < end-offset {
		end = offset + limit
	}
	return list[offset:end], nil
}
