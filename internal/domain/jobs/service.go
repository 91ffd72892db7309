package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"
)

// Scraper drives a browser session for a single search.
type Scraper interface {
	Scrape(ctx context.Context, search Search) ([]Posting, error)
}

// Recorder receives scrape telemetry.
type Recorder interface {
	ScrapeFinished(outcome string, elapsed time.Duration, postings int)
	CacheHit()
}

// Outcomes passed to Recorder.ScrapeFinished.
const (
	OutcomeSuccess  = "success"
	OutcomeError    = "error"
	OutcomeTimeout  = "timeout"
	OutcomeCanceled = "canceled"
)

// Service provides the scraping use cases.
type Service interface {
	Scrape(ctx context.Context, search Search) (Run, error)
	Get(ctx context.Context, id string) (Run, error)
	List(ctx context.Context, offset, limit int) ([]Run, error)
	// Close cancels in-flight scrapes and waits for their runs to be
	// recorded, or for ctx to expire. Later scrapes fail with ErrClosed.
	Close(ctx context.Context) error
}

// Options configures the jobs service.
type Options struct {
	Scraper  Scraper
	Repo     Repository
	Recorder Recorder
	Logger   *slog.Logger

	MaxConcurrent  int
	Timeout        time.Duration
	CacheTTL       time.Duration
	MaxJobsLimit   int
	DefaultMaxJobs int

	Now func() time.Time
}

// NewService builds a jobs service.
func NewService(opts Options) Service {
	s := &service{
		scraper:        opts.Scraper,
		repo:           opts.Repo,
		recorder:       opts.Recorder,
		logger:         opts.Logger,
		timeout:        opts.Timeout,
		maxJobsLimit:   opts.MaxJobsLimit,
		defaultMaxJobs: opts.DefaultMaxJobs,
		now:            opts.Now,
	}
	s.root, s.stop = context.WithCancel(context.Background())
	if s.repo == nil {
		s.repo = NullRepository{}
	}
	if s.recorder == nil {
		s.recorder = nopRecorder{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	maxConcurrent := opts.MaxConcurrent
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	s.sem = semaphore.NewWeighted(int64(maxConcurrent))
	if opts.CacheTTL > 0 {
		s.cache = cache.New(opts.CacheTTL, 2*opts.CacheTTL)
	}
	return s
}

type service struct {
	scraper  Scraper
	repo     Repository
	recorder Recorder
	logger   *slog.Logger

	sem    *semaphore.Weighted
	flight singleflight.Group
	cache  *cache.Cache

	// root outlives callers and is cancelled by Close.
	root     context.Context
	stop     context.CancelFunc
	mu       sync.Mutex
	inflight sync.WaitGroup

	timeout        time.Duration
	maxJobsLimit   int
	defaultMaxJobs int
	now            func() time.Time
}

func (s *service) Scrape(ctx context.Context, search Search) (Run, error) {
	search.Normalize(s.defaultMaxJobs)
	if err := search.Validate(s.maxJobsLimit); err != nil {
		return Run{}, fmt.Errorf("%w: %v", ErrInvalidSearch, err)
	}
	if s.scraper == nil {
		return Run{}, ErrBrowserUnavailable
	}

	key := search.Key()
	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			s.recorder.CacheHit()
			run := cached.(Run)
			run.Cached = true
			return run, nil
		}
	}

	// The shared scrape must outlive any single caller that gives up, so it
	// runs under the service root rather than ctx.
	ch := s.flight.DoChan(key, func() (any, error) {
		if !s.track() {
			return Run{}, ErrClosed
		}
		defer s.inflight.Done()
		return s.execute(s.root, search)
	})

	select {
	case <-ctx.Done():
		return Run{}, ctx.Err()
	case res := <-ch:
		run, _ := res.Val.(Run)
		if res.Err != nil {
			return run, res.Err
		}
		return run, nil
	}
}

// track registers an in-flight scrape unless the service is closed.
func (s *service) track() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.root.Err() != nil {
		return false
	}
	s.inflight.Add(1)
	return true
}

func (s *service) Close(ctx context.Context) error {
	s.mu.Lock()
	s.stop()
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait for in-flight scrapes: %w", ctx.Err())
	}
}

func (s *service) execute(ctx context.Context, search Search) (Run, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := s.now()
	run := Run{
		Search:    search,
		Status:    StatusRunning,
		StartedAt: start.UTC(),
	}

	if err := s.sem.Acquire(ctx, 1); err != nil {
		return s.fail(ctx, run, start, fmt.Errorf("wait for browser slot: %w", err))
	}
	defer s.sem.Release(1)

	run = s.persist(ctx, run)

	s.logger.Info("scrape started", "run_id", run.ID, "job_title", search.JobTitle, "location", search.Location, "max_jobs", search.MaxJobs)

	postings, err := s.scraper.Scrape(ctx, search)
	run.Postings = postings
	if err != nil {
		return s.fail(ctx, run, start, err)
	}

	finished := s.now().UTC()
	elapsed := finished.Sub(start)
	run.FinishedAt = &finished
	if run.Postings == nil {
		run.Postings = []Posting{}
	}
	run.Count = len(run.Postings)
	run.Status = StatusSucceeded

	s.recorder.ScrapeFinished(OutcomeSuccess, elapsed, run.Count)
	s.logger.Info("scrape finished", "run_id", run.ID, "count", run.Count, "duration", elapsed)
	run = s.persist(ctx, run)

	if s.cache != nil {
		s.cache.Set(search.Key(), run, cache.DefaultExpiration)
	}
	return run, nil
}

// fail records run as failed. Runs cut short by Close report ErrClosed.
func (s *service) fail(ctx context.Context, run Run, start time.Time, err error) (Run, error) {
	finished := s.now().UTC()
	elapsed := finished.Sub(start)

	run.FinishedAt = &finished
	if run.Postings == nil {
		run.Postings = []Posting{}
	}
	run.Count = len(run.Postings)
	run.Status = StatusFailed
	run.Error = err.Error()

	outcome := OutcomeError
	switch {
	case s.root.Err() != nil:
		outcome = OutcomeCanceled
		err = fmt.Errorf("%w: %w", ErrClosed, err)
	case errors.Is(err, context.DeadlineExceeded):
		outcome = OutcomeTimeout
	}
	s.recorder.ScrapeFinished(outcome, elapsed, run.Count)
	s.logger.Error("scrape failed", "run_id", run.ID, "outcome", outcome, "err", err, "duration", elapsed)

	run = s.persist(ctx, run)
	return run, fmt.Errorf("scrape %q in %q: %w", run.Search.JobTitle, run.Search.Location, err)
}

// persist stores the run. History is best effort and never fails a scrape.
// It ignores cancellation so cancelled and timed-out runs are still recorded.
func (s *service) persist(ctx context.Context, run Run) Run {
	saved, err := s.repo.Save(context.WithoutCancel(ctx), run)
	if err != nil {
		if !errors.Is(err, ErrNotImplemented) {
			s.logger.Warn("failed to persist scrape run", "run_id", run.ID, "err", err)
		}
		return run
	}
	return saved
}

func (s *service) Get(ctx context.Context, id string) (Run, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) List(ctx context.Context, offset, limit int) ([]Run, error) {
	return s.repo.List(ctx, offset, limit)
}

type nopRecorder struct{}

func (nopRecorder) ScrapeFinished(string, time.Duration, int) {}
func (nopRecorder) CacheHit()                                 {}
