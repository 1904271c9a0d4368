// Package guidelines aggregates the reference material in the guidelines
// directory into one text block for the semantic detector.
package guidelines

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"

	"github.com/turtacn/meisai-checker/internal/infrastructure/document/docx"
	"github.com/turtacn/meisai-checker/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/meisai-checker/pkg/errors"
)

// EmptyNotice is returned when the directory holds no files.
const EmptyNotice = "[INFO] guidelines フォルダに参照ファイルがありません。README.md を参照してください。"

// Extractor turns one file into text.
type Extractor func(path string) (string, error)

// Loader reads every file under a directory, dispatching on extension.
type Loader struct {
	extractors map[string]Extractor
	logger     logging.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithExtractor registers ext (with leading dot, any case) to fn.
func WithExtractor(ext string, fn Extractor) LoaderOption {
	return func(l *Loader) {
		if fn != nil {
			l.extractors[strings.ToLower(ext)] = fn
		}
	}
}

// NewLoader returns a Loader handling .txt, .md, .docx and .pdf.
func NewLoader(logger logging.Logger, opts ...LoaderOption) *Loader {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	l := &Loader{
		extractors: map[string]Extractor{
			".txt":  readText,
			".md":   readText,
			".docx": readDocx,
			".pdf":  readPDF,
		},
		logger: logger.Named("guidelines"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load creates dir when it does not exist and returns the aggregated text of
// every regular file below it, ordered by path.  Symlinks to regular files
// are followed.  A file or subdirectory that cannot be read is reported
// inline and does not fail the load; only an unreadable dir itself does.
func (l *Loader) Load(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeGuidelinesDirFailed, "create guidelines directory").WithDetail(dir)
	}

	entries, err := listFiles(dir)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeGuidelinesWalk, "walk guidelines directory").WithDetail(dir)
	}
	if len(entries) == 0 {
		l.logger.Info("no guideline files", logging.String("dir", dir))
		return EmptyNotice, nil
	}

	sections := make([]string, 0, len(entries))
	for _, e := range entries {
		name := filepath.Base(e.path)
		header := fmt.Sprintf("\n\n===== SOURCE: %s =====\n", name)

		if e.err != nil {
			l.logger.Warn("guideline entry unreadable", logging.String("path", e.path), logging.Err(e.err))
			sections = append(sections, header+unreadable(name, e.err))
			continue
		}
		extract, ok := l.extractors[strings.ToLower(filepath.Ext(e.path))]
		if !ok {
			sections = append(sections, header+fmt.Sprintf("[INFO] 未対応形式のため読み飛ばし: %s\n", name))
			continue
		}
		body, err := extract(e.path)
		if err != nil {
			l.logger.Warn("guideline file unreadable", logging.String("file", e.path), logging.Err(err))
			body = unreadable(name, err)
		}
		sections = append(sections, header+body)
	}

	l.logger.Debug("guidelines loaded", logging.String("dir", dir), logging.Int("entries", len(entries)))
	return strings.Join(sections, "\n"), nil
}

func unreadable(name string, err error) string {
	return fmt.Sprintf("[WARN] %s を読み込めませんでした: %v\n", name, err)
}

// Load uses a Loader without logging.
func Load(dir string) (string, error) {
	return NewLoader(nil).Load(dir)
}

// walkEntry is a file to extract, or a path the walk could not read.
type walkEntry struct {
	path string
	err  error
}

// listFiles returns every regular file below dir, ordered component-wise.
// Symlinks resolving to regular files are included; symlinked directories
// are not descended.  Unreadable entries below dir come back with err set
// and their subtree skipped.
func listFiles(dir string) ([]walkEntry, error) {
	var entries []walkEntry
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			entries = append(entries, walkEntry{path: path, err: err})
			if d == nil || d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		switch {
		case d.Type().IsRegular():
			entries = append(entries, walkEntry{path: path})
		case d.Type()&fs.ModeSymlink != 0:
			info, statErr := os.Stat(path)
			if statErr != nil {
				entries = append(entries, walkEntry{path: path, err: statErr})
			} else if info.Mode().IsRegular() {
				entries = append(entries, walkEntry{path: path})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return lessPath(entries[i].path, entries[j].path)
	})
	return entries, nil
}

func lessPath(a, b string) bool {
	pa := strings.Split(filepath.ToSlash(a), "/")
	pb := strings.Split(filepath.ToSlash(b), "/")
	for i := 0; i < len(pa) && i < len(pb); i++ {
		if pa[i] != pb[i] {
			return pa[i] < pb[i]
		}
	}
	return len(pa) < len(pb)
}

// readText returns the file as UTF-8.  Bytes that are not valid UTF-8 are
// decoded as Shift_JIS; whatever still fails to decode is dropped.
func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return decodeText(data), nil
}

func decodeText(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	if decoded, err := japanese.ShiftJIS.NewDecoder().Bytes(data); err == nil && utf8.Valid(decoded) {
		return string(decoded)
	}
	return strings.ToValidUTF8(string(data), "")
}

func readDocx(path string) (string, error) {
	doc, err := docx.Read(path)
	if err != nil {
		return "", err
	}
	return doc.FullText(), nil
}

//Personal.AI order the ending
