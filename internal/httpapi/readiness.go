package httpapi

import (
	"context"
	"net/http"
	"sync"
	"time"

	"log/slog"
)

const (
	probeTimeout  = 20 * time.Second
	probeCacheTTL = 30 * time.Second
)

// readiness caches the last browser probe so /readyz does not launch a
// browser on every poll.
type readiness struct {
	prober Prober
	now    func() time.Time

	mu      sync.Mutex
	checked time.Time
	product string
	err     error
}

func (rd *readiness) check(ctx context.Context) (string, error) {
	rd.mu.Lock()
	defer rd.mu.Unlock()

	if !rd.checked.IsZero() && rd.now().Sub(rd.checked) < probeCacheTTL {
		return rd.product, rd.err
	}

	// The result is shared with later polls, so a caller hanging up must not
	// cut the check short.
	probeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), probeTimeout)
	defer cancel()
	rd.product, rd.err = rd.prober.Probe(probeCtx)
	rd.checked = rd.now()
	return rd.product, rd.err
}

func registerReadinessRoute(mux *http.ServeMux, logger *slog.Logger, prober Prober) {
	if prober == nil {
		mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
			respondJSON(w, http.StatusOK, map[string]any{"status": "ok", "browser": "not configured"})
		})
		return
	}

	rd := &readiness{prober: prober, now: time.Now}
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		product, err := rd.check(r.Context())
		if err != nil {
			logger.Warn("browser probe failed", "err", err)
			respondJSON(w, http.StatusServiceUnavailable, map[string]any{
				"status": "unavailable",
				"error":  err.Error(),
			})
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{"status": "ok", "browser": product})
	})
}
