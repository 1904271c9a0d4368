package review_gpt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/turtacn/meisai-checker/internal/domain/review"
	"github.com/turtacn/meisai-checker/internal/intelligence/rule_checker"
)

// FallbackIDPrefix marks semantic suggestions whose record carried no id.
const FallbackIDPrefix = "L-"

// ParseStats describes what happened to a reply during parsing.
type ParseStats struct {
	// Valid is false when the reply was not a JSON array.
	Valid bool
	// Entries is the length of the decoded array.
	Entries int
	// Dropped counts entries that were not objects or failed coercion.
	Dropped int
}

// ParseSuggestions turns the model's reply into suggestions.  It never
// fails: an empty reply counts as "[]", a reply that is not a JSON array
// yields nothing, and individual entries that are not objects or cannot be
// coerced are skipped.  Entries without an id get L-0001, L-0002, … in
// order; the counter only advances for entries that are kept.
//
// Ids are unique within the result and never carry the heuristic "H-"
// prefix, so they cannot shadow a rule-checker finding in a merged report.
// An offending id is replaced with the first unused L-nnnn at or after the
// entry's own counter value.
func ParseSuggestions(content string) []review.Suggestion {
	out, _ := parseWithStats(content)
	return out
}

func parseWithStats(content string) ([]review.Suggestion, ParseStats) {
	if content == "" {
		content = "[]"
	}

	var decoded any
	if err := json.Unmarshal([]byte(content), &decoded); err != nil {
		return nil, ParseStats{}
	}
	items, ok := decoded.([]any)
	if !ok {
		return nil, ParseStats{}
	}

	stats := ParseStats{Valid: true, Entries: len(items)}
	var out []review.Suggestion
	used := make(map[string]bool, len(items))
	seq := 1
	for _, item := range items {
		rec, ok := item.(map[string]any)
		if !ok {
			stats.Dropped++
			continue
		}
		s, err := review.FromRecord(rec, fmt.Sprintf("%s%04d", FallbackIDPrefix, seq))
		if err != nil {
			stats.Dropped++
			continue
		}
		if s.ID == "" || used[s.ID] || strings.HasPrefix(s.ID, rule_checker.IDPrefix) {
			s.ID = freeFallbackID(used, seq)
		}
		used[s.ID] = true
		seq++
		out = append(out, s)
	}
	return out, stats
}

func freeFallbackID(used map[string]bool, from int) string {
	for n := from; ; n++ {
		if id := fmt.Sprintf("%s%04d", FallbackIDPrefix, n); !used[id] {
			return id
		}
	}
}

//Personal.AI order the ending
