package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"log/slog"

	"github.com/jobscout/platform/internal/domain/jobs"
)

func registerScrapeRoutes(mux *http.ServeMux, logger *slog.Logger, service jobs.Service) {
	mux.HandleFunc("/scrape", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		run, ok := runScrape(w, r, logger, service)
		if !ok {
			return
		}
		respondJSON(w, http.StatusOK, ScrapeResponse{Count: len(run.Postings), Jobs: run.Postings})
	})

	mux.HandleFunc("/v1/scrapes", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			run, ok := runScrape(w, r, logger, service)
			if !ok {
				return
			}
			status := http.StatusCreated
			if run.Cached {
				status = http.StatusOK
			}
			respondJSON(w, status, run)
		case http.MethodGet:
			handleRunList(w, r, logger, service)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/v1/scrapes/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		handleRunGet(w, r, logger, service)
	})
}

// ScrapeRequest is the body accepted by the scrape endpoints.
// easy_apply must be present; max_jobs defaults server-side.
type ScrapeRequest struct {
	JobTitle  string `json:"job_title"`
	EasyApply *bool  `json:"easy_apply"`
	Location  string `json:"location"`
	MaxJobs   int    `json:"max_jobs"`
}

// ScrapeResponse is the body returned by POST /scrape.
type ScrapeResponse struct {
	Count int            `json:"count"`
	Jobs  []jobs.Posting `json:"jobs"`
}

func (req ScrapeRequest) search() (jobs.Search, error) {
	if req.EasyApply == nil {
		return jobs.Search{}, errors.New("easy_apply is required")
	}
	return jobs.Search{
		JobTitle:  req.JobTitle,
		EasyApply: *req.EasyApply,
		Location:  req.Location,
		MaxJobs:   req.MaxJobs,
	}, nil
}

// runScrape decodes the request and executes it, writing any error response.
func runScrape(w http.ResponseWriter, r *http.Request, logger *slog.Logger, service jobs.Service) (jobs.Run, bool) {
	var payload ScrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON payload")
		return jobs.Run{}, false
	}
	search, err := payload.search()
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return jobs.Run{}, false
	}

	run, err := service.Scrape(r.Context(), search)
	if err != nil {
		switch {
		case errors.Is(err, jobs.ErrInvalidSearch):
			respondError(w, http.StatusUnprocessableEntity, strings.TrimPrefix(err.Error(), jobs.ErrInvalidSearch.Error()+": "))
		case errors.Is(err, jobs.ErrBrowserUnavailable):
			logger.Error("browser unavailable", "err", err)
			respondError(w, http.StatusServiceUnavailable, "browser unavailable")
		case errors.Is(err, jobs.ErrClosed):
			respondError(w, http.StatusServiceUnavailable, "service shutting down")
		case errors.Is(err, context.DeadlineExceeded):
			respondError(w, http.StatusGatewayTimeout, "scrape timed out")
		case errors.Is(err, context.Canceled):
			logger.Info("scrape abandoned by client", "job_title", search.JobTitle)
		default:
			logger.Error("scrape failed", "err", err, "run_id", run.ID)
			respondError(w, http.StatusBadGateway, "scrape failed")
		}
		return jobs.Run{}, false
	}
	return run, true
}

func handleRunGet(w http.ResponseWriter, r *http.Request, logger *slog.Logger, service jobs.Service) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/scrapes/")
	if id == "" {
		respondError(w, http.StatusBadRequest, "missing run id")
		return
	}

	run, err := service.Get(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, jobs.ErrNotImplemented):
			respondError(w, http.StatusNotImplemented, "run history not enabled")
		case errors.Is(err, jobs.ErrNotFound):
			respondError(w, http.StatusNotFound, "run not found")
		default:
			logger.Error("get run failed", "err", err)
			respondError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	respondJSON(w, http.StatusOK, run)
}

func handleRunList(w http.ResponseWriter, r *http.Request, logger *slog.Logger, service jobs.Service) {
	query := r.URL.Query()
	offset, limit := 0, 50
	if v := query.Get("offset"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			respondError(w, http.StatusBadRequest, "invalid offset parameter")
			return
		}
		offset = parsed
	}
	if v := query.Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			respondError(w, http.StatusBadRequest, "invalid limit parameter")
			return
		}
		limit = parsed
	}

	runs, err := service.List(r.Context(), offset, limit)
	if err != nil {
		if errors.Is(err, jobs.ErrNotImplemented) {
			respondError(w, http.StatusNotImplemented, "run history not enabled")
			return
		}
		logger.Error("list runs failed", "err", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"data":  runs,
		"count": len(runs),
	})
}
