package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobscout/platform/internal/config"
	"github.com/jobscout/platform/internal/domain/jobs"
	"github.com/jobscout/platform/internal/httpapi"
)

type recordingScraper struct {
	got      jobs.Search
	postings []jobs.Posting
	err      error
}

func (s *recordingScraper) Scrape(ctx context.Context, search jobs.Search) ([]jobs.Posting, error) {
	s.got = search
	return s.postings, s.err
}

func testDeps(cfg config.Config, scraper jobs.Scraper) deps {
	return deps{
		loadConfig: func() (config.Config, error) { return cfg, nil },
		newScraper: func(config.Config, *slog.Logger) jobs.Scraper { return scraper },
	}
}

func testConfig() config.Config {
	return config.Config{
		Env:         "test",
		LogLevel:    "error",
		DataBackend: "memory",
		Scrape: config.ScrapeConfig{
			MaxConcurrent:  1,
			Timeout:        time.Minute,
			MaxJobsLimit:   500,
			DefaultMaxJobs: 50,
		},
	}
}

func execute(t *testing.T, d deps, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd(d)
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestScrapeCommandPrintsPostings(t *testing.T) {
	scraper := &recordingScraper{postings: []jobs.Posting{
		{Company: "Acme", Role: "Backend Engineer", Link: "https://www.linkedin.com/jobs/view/1"},
	}}

	out, _, err := execute(t, testDeps(testConfig(), scraper),
		"scrape", "--title", "Backend Engineer", "--location", "Lisbon", "--easy-apply", "--max", "5")
	require.NoError(t, err)

	assert.Equal(t, jobs.Search{JobTitle: "Backend Engineer", Location: "Lisbon", EasyApply: true, MaxJobs: 5}, scraper.got)

	var resp httpapi.ScrapeResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, "Acme", resp.Jobs[0].Company)
}

func TestScrapeCommandDefaultsMax(t *testing.T) {
	scraper := &recordingScraper{}
	_, _, err := execute(t, testDeps(testConfig(), scraper), "scrape", "--title", "SRE", "--location", "Remote")
	require.NoError(t, err)
	assert.Equal(t, 50, scraper.got.MaxJobs)
}

func TestScrapeCommandRequiresFlags(t *testing.T) {
	_, _, err := execute(t, testDeps(testConfig(), &recordingScraper{}), "scrape", "--title", "SRE")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "location")
}

func TestScrapeCommandReportsFailures(t *testing.T) {
	scraper := &recordingScraper{err: errors.New("navigate: net::ERR_NAME_NOT_RESOLVED")}
	_, _, err := execute(t, testDeps(testConfig(), scraper), "scrape", "--title", "SRE", "--location", "Remote")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ERR_NAME_NOT_RESOLVED")

	_, _, err = execute(t, testDeps(testConfig(), &recordingScraper{}), "scrape", "--title", "SRE", "--location", "Remote", "--max", "9999")
	assert.ErrorIs(t, err, jobs.ErrInvalidSearch)
}

func TestMigrateRequiresPostgres(t *testing.T) {
	_, _, err := execute(t, testDeps(testConfig(), nil), "migrate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATA_BACKEND=postgres")
}

func TestTokenCommand(t *testing.T) {
	out, _, err := execute(t, testDeps(testConfig(), nil), "token")
	require.NoError(t, err)
	assert.Len(t, strings.TrimSpace(out), 43)
}

type blockingScraper struct {
	started chan struct{}
	stopped atomic.Bool
}

func (s *blockingScraper) Scrape(ctx context.Context, search jobs.Search) ([]jobs.Posting, error) {
	close(s.started)
	<-ctx.Done()
	s.stopped.Store(true)
	return nil, ctx.Err()
}

func TestScrapeCommandStopsBrowserOnInterrupt(t *testing.T) {
	scraper := &blockingScraper{started: make(chan struct{})}
	root := newRootCmd(testDeps(testConfig(), scraper))
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"scrape", "--title", "SRE", "--location", "Remote"})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-scraper.started
		cancel()
	}()

	err := root.ExecuteContext(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.True(t, scraper.stopped.Load())
}
