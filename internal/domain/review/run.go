package review

import "time"

// Run sources.
const (
	SourceCLI   = "cli"
	SourceHTTP  = "http"
	SourceWatch = "watch"
)

// Run is the outcome of one review, as kept in history and published as an
// event.
type Run struct {
	ID          string        `json:"id"`
	Document    string        `json:"document"`
	Source      string        `json:"source"`
	UseLLM      bool          `json:"use_llm"`
	Model       string        `json:"model,omitempty"`
	StartedAt   time.Time     `json:"started_at"`
	Duration    time.Duration `json:"duration_ns"`
	Paragraphs  int           `json:"paragraphs"`
	ReportPath  string        `json:"report_path"`
	FixedPath   string        `json:"fixed_path"`
	ArchiveKeys []string      `json:"archive_keys,omitempty"`
	Suggestions []Suggestion  `json:"suggestions"`
}

// Summary counts a run's suggestions.
type Summary struct {
	Total      int            `json:"total"`
	ByCategory map[string]int `json:"by_category"`
	BySeverity map[string]int `json:"by_severity"`
}

// Summarize counts the suggestions of r.
func (r *Run) Summarize() Summary {
	return Summary{
		Total:      len(r.Suggestions),
		ByCategory: CountBy(r.Suggestions, func(s Suggestion) string { return s.Category }),
		BySeverity: CountBy(r.Suggestions, func(s Suggestion) string { return s.Severity }),
	}
}

//Personal.AI order the ending
