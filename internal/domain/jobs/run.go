package jobs

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotImplemented     = errors.New("runs repository: not implemented")
	ErrNotFound           = errors.New("scrape run not found")
	ErrInvalidSearch      = errors.New("invalid search")
	ErrBrowserUnavailable = errors.New("browser unavailable")
	ErrClosed             = errors.New("jobs service closed")
)

// Status represents the lifecycle state of a scrape run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Run records one executed scrape.
type Run struct {
	ID         string     `json:"id"`
	Search     Search     `json:"search"`
	Status     Status     `json:"status"`
	Postings   []Posting  `json:"jobs"`
	Count      int        `json:"count"`
	Error      string     `json:"error,omitempty"`
	Cached     bool       `json:"cached"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Repository abstracts run persistence.
type Repository interface {
	FindByID(ctx context.Context, id string) (Run, error)
	Save(ctx context.Context, run Run) (Run, error)
	List(ctx context.Context, offset, limit int) ([]Run, error)
}

// NullRepository returns ErrNotImplemented for all operations.
type NullRepository struct{}

func (NullRepository) FindByID(ctx context.Context, id string) (Run, error) {
	return Run{}, ErrNotImplemented
}

func (NullRepository) Save(ctx context.Context, run Run) (Run, error) {
	return Run{}, ErrNotImplemented
}

func (NullRepository) List(ctx context.Context, offset, limit int) ([]Run, error) {
	return nil, ErrNotImplemented
}
