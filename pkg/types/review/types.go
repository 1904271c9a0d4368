// Package review defines the JSON bodies of the review API.  The HTTP
// handlers encode them and pkg/client decodes them.
package review

import (
	"time"

	domain "github.com/turtacn/meisai-checker/internal/domain/review"
)

// Shared with the domain so that the API, the report file and the history
// store agree on one encoding.
type (
	Suggestion = domain.Suggestion
	Location   = domain.Location
	Summary    = domain.Summary
	Run        = domain.Run
)

// Multipart form fields of POST /api/v1/reviews.
const (
	FormFieldDocument = "document"
	FormFieldUseLLM   = "use_llm"
)

// Markdown media type served by GET /api/v1/reviews/:id?format=markdown.
const MarkdownContentType = "text/markdown; charset=utf-8"

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// CreateReviewResponse is the body of POST /api/v1/reviews.
type CreateReviewResponse struct {
	RunID       string       `json:"run_id"`
	Document    string       `json:"document"`
	UseLLM      bool         `json:"use_llm"`
	DurationMs  int64        `json:"duration_ms"`
	Summary     Summary      `json:"summary"`
	Suggestions []Suggestion `json:"suggestions"`
}

// RunListItem is one entry of GET /api/v1/reviews.
type RunListItem struct {
	ID         string    `json:"id"`
	Document   string    `json:"document"`
	Source     string    `json:"source"`
	UseLLM     bool      `json:"use_llm"`
	StartedAt  time.Time `json:"started_at"`
	DurationMs int64     `json:"duration_ms"`
	Summary    Summary   `json:"summary"`
}

// ListReviewsResponse is the body of GET /api/v1/reviews.
type ListReviewsResponse struct {
	Runs []RunListItem `json:"runs"`
}

// NewRunListItem condenses run for listings.
func NewRunListItem(run *Run) RunListItem {
	return RunListItem{
		ID:         run.ID,
		Document:   run.Document,
		Source:     run.Source,
		UseLLM:     run.UseLLM,
		StartedAt:  run.StartedAt,
		DurationMs: run.Duration.Milliseconds(),
		Summary:    run.Summarize(),
	}
}

//Personal.AI order the ending
