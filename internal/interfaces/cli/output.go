package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	domain "github.com/turtacn/meisai-checker/internal/domain/review"
)

var (
	headingColor = color.New(color.Bold)
	pathColor    = color.New(color.FgCyan)
	errorColor   = color.New(color.FgRed, color.Bold)
)

// maxMessageWidth bounds the message column of the suggestion table.
const maxMessageWidth = 60

// PrintError writes err to w in the CLI's error style.
func PrintError(w io.Writer, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(w, "%s %s\n", errorColor.Sprint("エラー:"), err.Error())
}

// printCheckResult prints the same three lines the check command has always
// printed; scripts parse them.
func printCheckResult(w io.Writer, reportPath, fixedPath string) {
	fmt.Fprintln(w, headingColor.Sprint("解析完了:"))
	fmt.Fprintln(w, "- レポート:", pathColor.Sprint(reportPath))
	fmt.Fprintln(w, "- 修正版(現状は原文コピー):", pathColor.Sprint(fixedPath))
}

// severityColor highlights high severities.
func severityColor(severity string) string {
	switch severity {
	case domain.SeverityHigh:
		return color.RedString(severity)
	case domain.SeverityMedium:
		return color.YellowString(severity)
	case domain.SeverityLow:
		return color.GreenString(severity)
	default:
		return severity
	}
}

// suggestionTable renders items as a table; messages are cut to
// maxMessageWidth display columns.
func suggestionTable(items []domain.Suggestion) string {
	headers := []string{"ID", "カテゴリ", "重要度", "位置", "内容"}
	rows := make([][]string, 0, len(items))
	for _, s := range items {
		rows = append(rows, []string{
			s.ID,
			s.Category,
			severityColor(s.Severity),
			s.Location.String(),
			runewidth.Truncate(oneLine(s.Message), maxMessageWidth, "…"),
		})
	}
	return FormatTable(headers, rows)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// FormatTable renders headers and rows as an aligned table.  Widths are
// display widths, so full-width Japanese text lines up; ANSI colour codes
// are not counted.
func FormatTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = displayWidth(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			if w := displayWidth(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var sb strings.Builder
	writeRow := func(cells []string) {
		for i := range headers {
			if i > 0 {
				sb.WriteString("  ")
			}
			val := ""
			if i < len(cells) {
				val = cells[i]
			}
			if i == len(headers)-1 {
				sb.WriteString(val)
				continue
			}
			sb.WriteString(val)
			sb.WriteString(strings.Repeat(" ", widths[i]-displayWidth(val)))
		}
		sb.WriteString("\n")
	}

	writeRow(headers)
	sep := make([]string, len(headers))
	for i, w := range widths {
		sep[i] = strings.Repeat("-", w)
	}
	writeRow(sep)
	for _, row := range rows {
		writeRow(row)
	}
	return sb.String()
}

func displayWidth(s string) int {
	return runewidth.StringWidth(stripANSI(s))
}

// stripANSI removes SGR escape sequences.
func stripANSI(s string) string {
	if !strings.Contains(s, "\x1b[") {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == 0x1b && i+1 < len(s) && s[i+1] == '[' {
			j := i + 2
			for j < len(s) && s[j] != 'm' {
				j++
			}
			i = j
			continue
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}

//Personal.AI order the ending
