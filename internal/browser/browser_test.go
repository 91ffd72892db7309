package browser

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobscout/platform/internal/domain/jobs"
)

func TestNewAppliesWindowDefaults(t *testing.T) {
	s := New(Options{})
	assert.Equal(t, 1366, s.opts.WindowWidth)
	assert.Equal(t, 900, s.opts.WindowHeight)
	assert.NotNil(t, s.logger)
}

func TestAllocatorOptionsGrowWithSettings(t *testing.T) {
	bare := New(Options{Headless: true})
	full := New(Options{Headless: true, NoSandbox: true, UserAgent: "ua", ChromePath: "/usr/bin/chromium"})

	assert.Len(t, full.allocatorOptions(), len(bare.allocatorOptions())+3)
}

func TestScrapeMissingBrowser(t *testing.T) {
	s := New(Options{
		ChromePath: "/nonexistent/chromium-for-tests",
		Headless:   true,
		SearchURL:  "http://127.0.0.1/jobs/search/",
	})

	_, err := s.Scrape(context.Background(), jobs.Search{JobTitle: "a", Location: "b", MaxJobs: 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, jobs.ErrBrowserUnavailable), "got %v", err)

	_, err = s.Probe(context.Background())
	assert.ErrorIs(t, err, jobs.ErrBrowserUnavailable)
}
