package domain

import (
	"log/slog"
	"time"

	"github.com/jobscout/platform/internal/domain/jobs"
)

// Container wires domain services together.
type Container struct {
	Jobs jobs.Service
}

// Options configures the domain container.
type Options struct {
	RunRepo  jobs.Repository
	Scraper  jobs.Scraper
	Recorder jobs.Recorder
	Logger   *slog.Logger

	MaxConcurrent  int
	ScrapeTimeout  time.Duration
	CacheTTL       time.Duration
	MaxJobsLimit   int
	DefaultMaxJobs int
}

// New constructs a domain container with provided repositories.
func New(opts Options) Container {
	runRepo := opts.RunRepo
	if runRepo == nil {
		runRepo = jobs.NullRepository{}
	}

	return Container{
		Jobs: jobs.NewService(jobs.Options{
			Scraper:        opts.Scraper,
			Repo:           runRepo,
			Recorder:       opts.Recorder,
			Logger:         opts.Logger,
			MaxConcurrent:  opts.MaxConcurrent,
			Timeout:        opts.ScrapeTimeout,
			CacheTTL:       opts.CacheTTL,
			MaxJobsLimit:   opts.MaxJobsLimit,
			DefaultMaxJobs: opts.DefaultMaxJobs,
		}),
	}
}
