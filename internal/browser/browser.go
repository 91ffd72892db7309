// Package browser drives a headless Chromium over the DevTools protocol to
// read job search result pages.
package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	cdpbrowser "github.com/chromedp/cdproto/browser"
	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp"

	"github.com/jobscout/platform/internal/domain/jobs"
)

// Options configures browser launch and page handling.
type Options struct {
	ChromePath         string
	Headless           bool
	NoSandbox          bool
	UserAgent          string
	WindowWidth        int
	WindowHeight       int
	NavigationTimeout  time.Duration
	ResultsWaitTimeout time.Duration

	SearchURL string
	Collect   jobs.CollectOptions
	Logger    *slog.Logger
}

// Scraper implements jobs.Scraper with one fresh browser per search.
type Scraper struct {
	opts   Options
	logger *slog.Logger
}

// New constructs a Scraper.
func New(opts Options) *Scraper {
	if opts.WindowWidth <= 0 {
		opts.WindowWidth = 1366
	}
	if opts.WindowHeight <= 0 {
		opts.WindowHeight = 900
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Scraper{opts: opts, logger: log}
}

func (s *Scraper) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.Flag("headless", s.opts.Headless),
		chromedp.WindowSize(s.opts.WindowWidth, s.opts.WindowHeight),
	)
	if s.opts.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(s.opts.UserAgent))
	}
	if s.opts.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	if s.opts.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(s.opts.ChromePath))
	}
	return opts
}

// launch starts a browser. The returned cancel func closes it.
func (s *Scraper) launch(ctx context.Context) (context.Context, context.CancelFunc, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, s.allocatorOptions()...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			s.logger.Debug(fmt.Sprintf(format, args...), "component", "chromedp")
		}),
	)
	cancel := func() {
		cancelBrowser()
		cancelAlloc()
	}

	if err := chromedp.Run(browserCtx); err != nil {
		cancel()
		return nil, nil, fmt.Errorf("%w: %v", jobs.ErrBrowserUnavailable, err)
	}
	return browserCtx, cancel, nil
}

// Scrape opens the results page for search and collects postings.
func (s *Scraper) Scrape(ctx context.Context, search jobs.Search) ([]jobs.Posting, error) {
	target := search.URL(s.opts.SearchURL)
	base, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("parse search url: %w", err)
	}

	browserCtx, cancel, err := s.launch(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	if err := s.navigate(browserCtx, target); err != nil {
		return nil, err
	}
	s.waitForResults(browserCtx)

	page := &cdpPage{
		base:   base,
		width:  s.opts.WindowWidth,
		height: s.opts.WindowHeight,
	}
	return jobs.Collect(browserCtx, page, search.MaxJobs, s.opts.Collect)
}

func (s *Scraper) navigate(ctx context.Context, target string) error {
	if s.opts.NavigationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.NavigationTimeout)
		defer cancel()
	}
	if err := chromedp.Run(ctx, chromedp.Navigate(target)); err != nil {
		return fmt.Errorf("navigate to %s: %w", target, err)
	}
	return nil
}

// waitForResults gives the list a chance to render. A timeout is not fatal:
// the collect loop copes with an empty or late list.
func (s *Scraper) waitForResults(ctx context.Context) {
	if s.opts.ResultsWaitTimeout <= 0 {
		return
	}
	waitCtx, cancel := context.WithTimeout(ctx, s.opts.ResultsWaitTimeout)
	defer cancel()

	err := chromedp.Run(waitCtx, chromedp.WaitReady(cardSelector, chromedp.ByQuery))
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		s.logger.Debug("results list not ready", "err", err)
	}
}

// Probe starts and stops a browser, returning its product string.
func (s *Scraper) Probe(ctx context.Context) (string, error) {
	browserCtx, cancel, err := s.launch(ctx)
	if err != nil {
		return "", err
	}
	defer cancel()

	var product string
	err = chromedp.Run(browserCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		_, product, _, _, _, err = cdpbrowser.GetVersion().Do(ctx)
		return err
	}))
	if err != nil {
		return "", fmt.Errorf("browser version: %w", err)
	}
	return product, nil
}

const listHTMLScript = `(() => {
	const el = document.querySelector(%q);
	return el ? el.outerHTML : "";
})()`

// cdpPage adapts a chromedp target to jobs.Page.
type cdpPage struct {
	base   *url.URL
	width  int
	height int
}

func (p *cdpPage) Cards(ctx context.Context) ([]jobs.Card, error) {
	var html string
	if err := chromedp.Run(ctx, chromedp.Evaluate(fmt.Sprintf(listHTMLScript, ResultsListSelector), &html)); err != nil {
		return nil, fmt.Errorf("read results list: %w", err)
	}
	if html == "" {
		return nil, nil
	}
	return ParseCards(strings.NewReader(html), p.base)
}

func (p *cdpPage) Scroll(ctx context.Context, deltaY float64) error {
	x, y := float64(p.width)/2, float64(p.height)/2
	return chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		return input.DispatchMouseEvent(input.MouseWheel, x, y).
			WithDeltaX(0).
			WithDeltaY(deltaY).
			Do(ctx)
	}))
}
