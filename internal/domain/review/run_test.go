package review

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Summarize(t *testing.T) {
	r := &Run{Suggestions: []Suggestion{
		New("H-0001", CategoryStyle, SeverityLow, "a", Location{}),
		New("H-0002", CategoryStyle, SeverityMedium, "b", Location{}),
		New("L-0001", CategorySupport, SeverityHigh, "c", Location{}),
	}}

	sum := r.Summarize()
	assert.Equal(t, 3, sum.Total)
	assert.Equal(t, map[string]int{CategoryStyle: 2, CategorySupport: 1}, sum.ByCategory)
	assert.Equal(t, map[string]int{SeverityLow: 1, SeverityMedium: 1, SeverityHigh: 1}, sum.BySeverity)
}

func TestRun_JSON(t *testing.T) {
	r := Run{
		ID:        "6f1c",
		Document:  "spec.docx",
		Source:    SourceCLI,
		StartedAt: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
		Duration:  1500 * time.Millisecond,
	}
	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"duration_ns":1500000000`)
	assert.NotContains(t, string(data), "model")

	var back Run
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, r, back)
}

//Personal.AI order the ending
