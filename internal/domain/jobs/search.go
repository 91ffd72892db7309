package jobs

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// DefaultMaxJobs is applied when a search does not set max_jobs.
const DefaultMaxJobs = 50

// Search describes one job-search query against the results page.
type Search struct {
	JobTitle  string `json:"job_title"`
	EasyApply bool   `json:"easy_apply"`
	Location  string `json:"location"`
	MaxJobs   int    `json:"max_jobs"`
}

// Normalize trims whitespace and applies the max_jobs default.
func (s *Search) Normalize(defaultMax int) {
	s.JobTitle = strings.TrimSpace(s.JobTitle)
	s.Location = strings.TrimSpace(s.Location)
	if defaultMax <= 0 {
		defaultMax = DefaultMaxJobs
	}
	if s.MaxJobs == 0 {
		s.MaxJobs = defaultMax
	}
}

// Validate reports every problem with the search at once.
func (s Search) Validate(limit int) error {
	var result *multierror.Error
	if s.JobTitle == "" {
		result = multierror.Append(result, errRequiredField("job_title"))
	}
	if s.Location == "" {
		result = multierror.Append(result, errRequiredField("location"))
	}
	if s.MaxJobs < 1 {
		result = multierror.Append(result, errors.New("max_jobs must be at least 1"))
	}
	if limit > 0 && s.MaxJobs > limit {
		result = multierror.Append(result, fmt.Errorf("max_jobs must not exceed %d", limit))
	}
	if result == nil {
		return nil
	}
	result.ErrorFormat = listFormat
	return result
}

// URL builds the results page address for the search.
func (s Search) URL(base string) string {
	var b strings.Builder
	b.WriteString(base)
	if strings.Contains(base, "?") {
		b.WriteString("&")
	} else {
		b.WriteString("?")
	}
	b.WriteString("keywords=")
	b.WriteString(url.QueryEscape(s.JobTitle))
	b.WriteString("&location=")
	b.WriteString(url.QueryEscape(s.Location))
	if s.EasyApply {
		b.WriteString("&f_AL=true")
	}
	return b.String()
}

// Key identifies searches that would produce the same results.
func (s Search) Key() string {
	return fmt.Sprintf("%s|%s|%t|%d",
		strings.ToLower(s.JobTitle),
		strings.ToLower(s.Location),
		s.EasyApply,
		s.MaxJobs,
	)
}

func errRequiredField(field string) error {
	return &validationError{field: field}
}

type validationError struct {
	field string
}

func (v *validationError) Error() string {
	return v.field + " is required"
}

func listFormat(errs []error) string {
	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}
