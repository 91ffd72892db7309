package jobs

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

// Page is a live results page that can be read and scrolled.
type Page interface {
	Cards(ctx context.Context) ([]Card, error)
	Scroll(ctx context.Context, deltaY float64) error
}

// CollectOptions tunes the scroll-and-collect loop.
type CollectOptions struct {
	MaxPasses    int
	StablePasses int
	ScrollDelta  float64
	PauseMin     time.Duration
	PauseMax     time.Duration

	// Sleep and Jitter are replaceable for tests. Jitter returns a value in [0,1).
	Sleep  func(ctx context.Context, d time.Duration) error
	Jitter func() float64
}

// DefaultCollectOptions mirrors the pacing used against the live site.
func DefaultCollectOptions() CollectOptions {
	return CollectOptions{
		MaxPasses:    60,
		StablePasses: 4,
		ScrollDelta:  2500,
		PauseMin:     800 * time.Millisecond,
		PauseMax:     1800 * time.Millisecond,
	}
}

func (o CollectOptions) withDefaults() CollectOptions {
	def := DefaultCollectOptions()
	if o.MaxPasses <= 0 {
		o.MaxPasses = def.MaxPasses
	}
	if o.StablePasses <= 0 {
		o.StablePasses = def.StablePasses
	}
	if o.ScrollDelta == 0 {
		o.ScrollDelta = def.ScrollDelta
	}
	if o.PauseMin == 0 && o.PauseMax == 0 {
		o.PauseMin, o.PauseMax = def.PauseMin, def.PauseMax
	}
	if o.PauseMax < o.PauseMin {
		o.PauseMax = o.PauseMin
	}
	if o.Sleep == nil {
		o.Sleep = sleepContext
	}
	if o.Jitter == nil {
		o.Jitter = rand.Float64
	}
	return o
}

func (o CollectOptions) pause() time.Duration {
	span := o.PauseMax - o.PauseMin
	return o.PauseMin + time.Duration(o.Jitter()*float64(span))
}

// Collect scrolls through page gathering up to limit unique postings.
// It stops early once StablePasses consecutive passes add nothing.
// Returning fewer than limit postings is not an error.
func Collect(ctx context.Context, page Page, limit int, opts CollectOptions) ([]Posting, error) {
	if limit < 1 {
		return nil, nil
	}
	opts = opts.withDefaults()

	results := make([]Posting, 0, limit)
	seen := make(map[string]struct{})
	stable, lastCount := 0, 0

	for pass := 0; pass < opts.MaxPasses; pass++ {
		cards, err := page.Cards(ctx)
		if err != nil {
			return results, fmt.Errorf("read cards (pass %d): %w", pass+1, err)
		}

		for _, card := range cards {
			posting, ok := card.Posting()
			if !ok {
				continue
			}
			if _, dup := seen[posting.Link]; dup {
				continue
			}
			seen[posting.Link] = struct{}{}
			results = append(results, posting)
			if len(results) >= limit {
				return results, nil
			}
		}

		if len(results) == lastCount {
			stable++
		} else {
			stable = 0
			lastCount = len(results)
		}
		if stable >= opts.StablePasses {
			break
		}

		if err := page.Scroll(ctx, opts.ScrollDelta); err != nil {
			return results, fmt.Errorf("scroll (pass %d): %w", pass+1, err)
		}
		if err := opts.Sleep(ctx, opts.pause()); err != nil {
			return results, err
		}
	}

	return results, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
