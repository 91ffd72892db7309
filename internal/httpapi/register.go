package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"log/slog"

	"github.com/jobscout/platform/internal/auth"
	"github.com/jobscout/platform/internal/domain"
)

// Prober reports whether the browser runtime can be started.
type Prober interface {
	Probe(ctx context.Context) (string, error)
}

// Options carries optional route dependencies.
type Options struct {
	APIToken string
	Prober   Prober
}

// Register attaches API routes to the provided mux.
func Register(mux *http.ServeMux, logger *slog.Logger, domainServices domain.Container, opts Options) {
	mux.HandleFunc("/v1/ping", func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{
			"status":  "ok",
			"time":    time.Now().UTC().Format(time.RFC3339),
			"server":  "jobscout",
			"version": "v1",
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			logger.Error("failed to write ping response", "err", err)
		}
	})

	protected := http.NewServeMux()
	registerScrapeRoutes(protected, logger, domainServices.Jobs)
	guarded := auth.RequireBearer(opts.APIToken, protected)
	mux.Handle("/scrape", guarded)
	mux.Handle("/v1/scrapes", guarded)
	mux.Handle("/v1/scrapes/", guarded)

	registerReadinessRoute(mux, logger, opts.Prober)
}
