// Package review defines the Suggestion value type shared by every detector
// and every output surface (report file, HTTP API, history store, events).
package review

import "fmt"

// Categories the detectors emit or the chat prompt asks for.  The field is an
// open tag: any string is accepted.
const (
	CategoryTypo        = "typo"
	CategoryStyle       = "style"
	CategorySupport     = "support"
	CategoryEnablement  = "enablement"
	CategoryClarity     = "clarity"
	CategoryConsistency = "consistency"
	CategoryOther       = "other"
)

// Recommended severities.  Also open.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// RecommendedCategories lists the category tags in documentation order.
var RecommendedCategories = []string{
	CategoryTypo,
	CategoryStyle,
	CategorySupport,
	CategoryEnablement,
	CategoryClarity,
	CategoryConsistency,
	CategoryOther,
}

// RecommendedSeverities lists the severity tags from least to most severe.
var RecommendedSeverities = []string{SeverityLow, SeverityMedium, SeverityHigh}

// Location addresses a character span inside one paragraph.  Offsets are
// rune offsets, End is exclusive.  The zero value means "unknown".
type Location struct {
	ParagraphIndex int `json:"paragraph_index"`
	Start          int `json:"start"`
	End            int `json:"end"`
}

func (l Location) String() string {
	return fmt.Sprintf("¶%d[%d:%d]", l.ParagraphIndex, l.Start, l.End)
}

// Suggestion is one flagged issue.  It is created once by a detector and
// never modified afterwards.
type Suggestion struct {
	ID           string   `json:"id"`
	Category     string   `json:"category"`
	Severity     string   `json:"severity"`
	Message      string   `json:"message"`
	Location     Location `json:"location"`
	SuggestedFix *string  `json:"suggested_fix"`
	Evidence     *string  `json:"evidence"`
	Autofix      bool     `json:"autofix"`
}

// Option sets an optional Suggestion field at construction time.
type Option func(*Suggestion)

// WithSuggestedFix attaches replacement text.
func WithSuggestedFix(fix string) Option {
	return func(s *Suggestion) { s.SuggestedFix = &fix }
}

// WithEvidence attaches the citation or reasoning backing the finding.
func WithEvidence(evidence string) Option {
	return func(s *Suggestion) { s.Evidence = &evidence }
}

// WithAutofix marks the suggestion as eligible for automatic application.
func WithAutofix(autofix bool) Option {
	return func(s *Suggestion) { s.Autofix = autofix }
}

// New builds a Suggestion.  No validation is performed; callers are trusted
// to supply a unique ID.
func New(id, category, severity, message string, loc Location, opts ...Option) Suggestion {
	s := Suggestion{
		ID:       id,
		Category: category,
		Severity: severity,
		Message:  message,
		Location: loc,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Fix returns the suggested fix or "" when absent.
func (s Suggestion) Fix() string {
	if s.SuggestedFix == nil {
		return ""
	}
	return *s.SuggestedFix
}

// EvidenceText returns the evidence or "" when absent.
func (s Suggestion) EvidenceText() string {
	if s.Evidence == nil {
		return ""
	}
	return *s.Evidence
}

// ToRecord returns the flat record form used by the report writer.  Absent
// optional fields map to nil.
func (s Suggestion) ToRecord() map[string]any {
	var fix, evidence any
	if s.SuggestedFix != nil {
		fix = *s.SuggestedFix
	}
	if s.Evidence != nil {
		evidence = *s.Evidence
	}
	return map[string]any{
		"id":       s.ID,
		"category": s.Category,
		"severity": s.Severity,
		"message":  s.Message,
		"location": map[string]any{
			"paragraph_index": s.Location.ParagraphIndex,
			"start":           s.Location.Start,
			"end":             s.Location.End,
		},
		"suggested_fix": fix,
		"evidence":      evidence,
		"autofix":       s.Autofix,
	}
}

// Records converts a slice of suggestions into records, preserving order.
func Records(items []Suggestion) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, s := range items {
		out = append(out, s.ToRecord())
	}
	return out
}

// CountBy groups suggestions by the key returned from fn.
func CountBy(items []Suggestion, fn func(Suggestion) string) map[string]int {
	out := make(map[string]int)
	for _, s := range items {
		out[fn(s)]++
	}
	return out
}

//Personal.AI order the ending
