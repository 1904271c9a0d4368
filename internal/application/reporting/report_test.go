package reporting

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/meisai-checker/internal/domain/review"
)

func TestPaths(t *testing.T) {
	assert.Equal(t, "spec", Stem("/data/in/spec.docx"))
	assert.Equal(t, "a.b", Stem("a.b.docx"))
	assert.Equal(t, filepath.Join("reports", "spec_report.json"), ReportPath("reports", "/data/in/spec.docx"))
	assert.Equal(t, filepath.Join("out", "spec_fixed.docx"), FixedPath("out", "spec.docx"))
}

func TestMarshalSuggestions(t *testing.T) {
	items := []review.Suggestion{
		review.New("H-0001", review.CategoryTypo, review.SeverityLow, "句読点が連続しています",
			review.Location{ParagraphIndex: 0, Start: 3, End: 6}, review.WithSuggestedFix("。")),
	}

	data, err := MarshalSuggestions(items)
	require.NoError(t, err)

	want := `[
  {
    "id": "H-0001",
    "category": "typo",
    "severity": "low",
    "message": "句読点が連続しています",
    "location": {
      "paragraph_index": 0,
      "start": 3,
      "end": 6
    },
    "suggested_fix": "。",
    "evidence": null,
    "autofix": false
  }
]`
	assert.Equal(t, want, string(data))
}

func TestMarshalSuggestions_EmptyAndNoHTMLEscape(t *testing.T) {
	data, err := MarshalSuggestions(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	data, err = MarshalSuggestions([]review.Suggestion{
		review.New("L-0001", review.CategoryClarity, review.SeverityMedium, "<A> & <B>", review.Location{}),
	})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message": "<A> & <B>"`)
}

func TestWriteJSON_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "reports", "x_report.json")
	require.NoError(t, WriteJSON(path, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestRenderMarkdown(t *testing.T) {
	fix := "。"
	run := &review.Run{
		ID:         "run-1",
		Document:   "spec|v2.docx",
		StartedAt:  time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
		Duration:   1234567890,
		Paragraphs: 3,
		UseLLM:     true,
		Model:      "gpt-4o-mini",
		Suggestions: []review.Suggestion{
			{ID: "H-0001", Category: review.CategoryTypo, Severity: review.SeverityLow, Message: "二重\n句点",
				Location: review.Location{ParagraphIndex: 1, Start: 2, End: 4}, SuggestedFix: &fix},
			review.New("L-0001", review.CategorySupport, review.SeverityHigh, "サポート要件", review.Location{}),
			review.New("L-0002", review.CategorySupport, review.SeverityHigh, "再度", review.Location{}),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, RenderMarkdown(&buf, run))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, `# 明細書チェック結果: spec\|v2.docx`))
	assert.Contains(t, out, "- 所要時間: 1.235s")
	assert.Contains(t, out, "- LLM: gpt-4o-mini")
	assert.Contains(t, out, "- 指摘件数: 3")
	assert.Contains(t, out, "| support | 2 |\n| typo | 1 |")
	assert.Contains(t, out, "| H-0001 | typo | low | ¶1[2:4] | 二重 句点 | 。 |")
	assert.Contains(t, out, "| L-0001 | support | high | ¶0[0:0] | サポート要件 |  |")
}

func TestRenderMarkdown_NoSuggestions(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderMarkdown(&buf, &review.Run{ID: "r", Document: "d.docx"}))
	assert.Contains(t, buf.String(), "- LLM: 無効")
	assert.NotContains(t, buf.String(), "## 指摘一覧")

	assert.Error(t, RenderMarkdown(&buf, nil))
}

//Personal.AI order the ending
