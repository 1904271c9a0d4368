package reporting

import (
	"io"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/turtacn/meisai-checker/internal/domain/review"
	"github.com/turtacn/meisai-checker/pkg/errors"
)

type countRow struct {
	Key   string
	Count int
}

type summaryView struct {
	Run        *review.Run
	Total      int
	ByCategory []countRow
	BySeverity []countRow
}

var summaryFuncs = template.FuncMap{
	"cell": markdownCell,
	"deref": func(p *string) string {
		if p == nil {
			return ""
		}
		return *p
	},
	"elapsed": func(r *review.Run) string { return r.Duration.Round(time.Millisecond).String() },
}

var summaryTemplate = template.Must(template.New("summary").Funcs(summaryFuncs).Parse(
	`# 明細書チェック結果: {{cell .Run.Document}}

- 実行 ID: {{.Run.ID}}
- 開始: {{.Run.StartedAt.Format "2006-01-02 15:04:05 MST"}}
- 所要時間: {{elapsed .Run}}
- 段落数: {{.Run.Paragraphs}}
- LLM: {{if .Run.UseLLM}}{{if .Run.Model}}{{.Run.Model}}{{else}}有効{{end}}{{else}}無効{{end}}
- 指摘件数: {{.Total}}
{{if .Total}}
## カテゴリ別

| カテゴリ | 件数 |
|---|---|
{{range .ByCategory}}| {{cell .Key}} | {{.Count}} |
{{end}}
## 重要度別

| 重要度 | 件数 |
|---|---|
{{range .BySeverity}}| {{cell .Key}} | {{.Count}} |
{{end}}
## 指摘一覧

| ID | カテゴリ | 重要度 | 位置 | 内容 | 修正案 |
|---|---|---|---|---|---|
{{range .Run.Suggestions}}| {{cell .ID}} | {{cell .Category}} | {{cell .Severity}} | {{.Location}} | {{cell .Message}} | {{cell (deref .SuggestedFix)}} |
{{end}}{{end}}`))

// markdownCell makes s safe inside a table cell.
func markdownCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "\r\n", " ")
	return strings.ReplaceAll(s, "\n", " ")
}

func sortedCounts(m map[string]int) []countRow {
	rows := make([]countRow, 0, len(m))
	for k, v := range m {
		rows = append(rows, countRow{Key: k, Count: v})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Key < rows[j].Key
	})
	return rows
}

// RenderMarkdown writes a human-readable summary of run to w.
func RenderMarkdown(w io.Writer, run *review.Run) error {
	if run == nil {
		return errors.InvalidParam("run is required")
	}
	sum := run.Summarize()
	view := summaryView{
		Run:        run,
		Total:      sum.Total,
		ByCategory: sortedCounts(sum.ByCategory),
		BySeverity: sortedCounts(sum.BySeverity),
	}
	if err := summaryTemplate.Execute(w, view); err != nil {
		return errors.Wrap(err, errors.ErrCodeReportWriteFailed, "render summary")
	}
	return nil
}

//Personal.AI order the ending
