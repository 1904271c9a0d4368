// Package reporting writes review output: the JSON suggestion report, the
// paths of generated artefacts and a Markdown summary.
package reporting

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/turtacn/meisai-checker/internal/domain/review"
	"github.com/turtacn/meisai-checker/pkg/errors"
)

const (
	reportSuffix = "_report.json"
	fixedSuffix  = "_fixed.docx"
)

// Stem returns the input file name without directory and extension.
func Stem(input string) string {
	base := filepath.Base(input)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ReportPath returns <outDir>/<stem>_report.json.
func ReportPath(outDir, input string) string {
	return filepath.Join(outDir, Stem(input)+reportSuffix)
}

// FixedPath returns <outDir>/<stem>_fixed.docx.
func FixedPath(outDir, input string) string {
	return filepath.Join(outDir, Stem(input)+fixedSuffix)
}

// MarshalSuggestions renders items as a JSON array with two-space
// indentation, keys in record order.  Non-ASCII text is written as is.
func MarshalSuggestions(items []review.Suggestion) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if items == nil {
		items = []review.Suggestion{}
	}
	if err := enc.Encode(items); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "encode suggestions")
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// WriteJSON writes items to path, creating the parent directory.
func WriteJSON(path string, items []review.Suggestion) error {
	data, err := MarshalSuggestions(items)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, errors.ErrCodeReportWriteFailed, "create report directory").WithDetail(filepath.Dir(path))
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, errors.ErrCodeReportWriteFailed, "write report").WithDetail(path)
	}
	return nil
}

//Personal.AI order the ending
