// Package docx reads paragraph text from Word (.docx) packages and writes
// copies with text replacements applied.  Parts the writer does not change
// are copied byte-for-byte.
package docx

import (
	"archive/zip"
	stderrors "errors"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/turtacn/meisai-checker/pkg/errors"
)

// documentPart is the main story of a WordprocessingML package.
const documentPart = "word/document.xml"

// Document is the paragraph view of a .docx file.
type Document struct {
	Path       string
	Paragraphs []string
}

// FullText joins the paragraphs with "\n".
func (d *Document) FullText() string {
	return strings.Join(d.Paragraphs, "\n")
}

// Read opens path and returns its body-level paragraphs in order.  Empty
// paragraphs are kept as "".
func Read(path string) (*Document, error) {
	zr, err := openPackage(path)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	data, err := readPart(&zr.Reader, documentPart)
	if err != nil {
		return nil, err
	}
	spans, err := scanParagraphs(data)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDocumentReadFailed, "parse document.xml").WithDetail(path)
	}

	doc := &Document{Path: path, Paragraphs: make([]string, 0, len(spans))}
	for _, p := range spans {
		doc.Paragraphs = append(doc.Paragraphs, p.text)
	}
	return doc, nil
}

func openPackage(path string) (*zip.ReadCloser, error) {
	zr, err := zip.OpenReader(path)
	if err == nil {
		return zr, nil
	}
	if stderrors.Is(err, fs.ErrNotExist) {
		return nil, errors.New(errors.ErrCodeDocumentNotFound, "document not found").WithDetail(path)
	}
	if _, statErr := os.Stat(path); statErr != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDocumentReadFailed, "open document").WithDetail(path)
	}
	return nil, errors.Wrap(err, errors.ErrCodeDocumentInvalid, "not a docx package").WithDetail(path)
}

func readPart(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDocumentReadFailed, "open "+name)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDocumentReadFailed, "read "+name)
		}
		return data, nil
	}
	return nil, errors.New(errors.ErrCodeDocumentInvalid, "docx package has no "+name)
}

//Personal.AI order the ending
