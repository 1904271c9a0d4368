package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/turtacn/meisai-checker/pkg/errors"
)

// WriteWithReplacements copies the package at in to out.  Every key of repl
// found in a body-level paragraph's text is replaced by its value; keys are
// applied in sorted order and empty keys are ignored.  In a changed
// paragraph the first run receives the whole new text (its run properties
// are kept) and the remaining runs are emptied; a paragraph without runs
// gets a new one.  Everything else, including every other part of the
// package, is copied unchanged.  The parent directory of out is created.
func WriteWithReplacements(in, out string, repl map[string]string) error {
	zr, err := openPackage(in)
	if err != nil {
		return err
	}
	defer zr.Close()

	var document []byte
	if hasReplacements(repl) {
		data, err := readPart(&zr.Reader, documentPart)
		if err != nil {
			return err
		}
		document, err = rewriteDocument(data, repl)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeDocumentReadFailed, "parse document.xml").WithDetail(in)
		}
	}

	dir := filepath.Dir(out)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, errors.ErrCodeDocumentWriteFailed, "create output directory").WithDetail(dir)
	}
	tmp, err := os.CreateTemp(dir, ".meisai-*.docx")
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDocumentWriteFailed, "create temp file").WithDetail(dir)
	}
	defer os.Remove(tmp.Name())

	zw := zip.NewWriter(tmp)
	for _, f := range zr.File {
		if document != nil && f.Name == documentPart {
			hdr := f.FileHeader
			hdr.Extra = nil
			w, err := zw.CreateHeader(&hdr)
			if err == nil {
				_, err = w.Write(document)
			}
			if err != nil {
				tmp.Close()
				return errors.Wrap(err, errors.ErrCodeDocumentWriteFailed, "write "+documentPart)
			}
			continue
		}
		if err := zw.Copy(f); err != nil {
			tmp.Close()
			return errors.Wrap(err, errors.ErrCodeDocumentWriteFailed, "copy "+f.Name)
		}
	}
	if err := zw.Close(); err != nil {
		tmp.Close()
		return errors.Wrap(err, errors.ErrCodeDocumentWriteFailed, "finish package")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, errors.ErrCodeDocumentWriteFailed, "close temp file")
	}
	if err := os.Rename(tmp.Name(), out); err != nil {
		return errors.Wrap(err, errors.ErrCodeDocumentWriteFailed, "move output into place").WithDetail(out)
	}
	return nil
}

func hasReplacements(repl map[string]string) bool {
	for k := range repl {
		if k != "" {
			return true
		}
	}
	return false
}

// applyReplacements runs every non-empty key over text in sorted key order.
func applyReplacements(text string, repl map[string]string) string {
	keys := make([]string, 0, len(repl))
	for k := range repl {
		if k != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		text = strings.ReplaceAll(text, k, repl[k])
	}
	return text
}

// rewriteDocument splices rebuilt paragraphs into data.  Bytes outside
// changed paragraphs are kept verbatim.
func rewriteDocument(data []byte, repl map[string]string) ([]byte, error) {
	paragraphs, err := scanParagraphs(data)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(len(data))
	pos := 0
	for _, p := range paragraphs {
		updated := applyReplacements(p.text, repl)
		if updated == p.text {
			continue
		}
		buf.Write(data[pos:p.whole.start])
		buf.Write(rebuildParagraph(data, p, updated))
		pos = p.whole.end
	}
	buf.Write(data[pos:])
	return buf.Bytes(), nil
}

func rebuildParagraph(data []byte, p paragraphSpan, text string) []byte {
	var buf bytes.Buffer
	prefix := prefixOf(data[p.open.start:p.open.end])

	if len(p.runs) == 0 {
		if p.selfClosing() {
			buf.Write(openTag(data[p.open.start:p.open.end]))
			writeRun(&buf, prefix, []byte("<"+qualify(prefix, "r")+">"), nil, text)
			buf.WriteString("</" + qualify(prefix, "p") + ">")
			return buf.Bytes()
		}
		buf.Write(data[p.whole.start:p.close.start])
		writeRun(&buf, prefix, []byte("<"+qualify(prefix, "r")+">"), nil, text)
		buf.Write(data[p.close.start:p.whole.end])
		return buf.Bytes()
	}

	pos := p.whole.start
	for i, r := range p.runs {
		buf.Write(data[pos:r.whole.start])
		var props []byte
		if r.props.valid() {
			props = data[r.props.start:r.props.end]
		}
		runPrefix := prefixOf(data[r.open.start:r.open.end])
		if i == 0 {
			writeRun(&buf, runPrefix, openTag(data[r.open.start:r.open.end]), props, text)
		} else {
			buf.Write(openTag(data[r.open.start:r.open.end]))
			buf.Write(props)
			buf.WriteString("</" + qualify(runPrefix, "r") + ">")
		}
		pos = r.whole.end
	}
	buf.Write(data[pos:p.whole.end])
	return buf.Bytes()
}

func writeRun(buf *bytes.Buffer, prefix string, open, props []byte, text string) {
	buf.Write(open)
	buf.Write(props)
	buf.WriteString("<" + qualify(prefix, "t") + ` xml:space="preserve">`)
	_ = xml.EscapeText(buf, []byte(text))
	buf.WriteString("</" + qualify(prefix, "t") + ">")
	buf.WriteString("</" + qualify(prefix, "r") + ">")
}

// openTag turns a self-closing start tag into an opening one.
func openTag(raw []byte) []byte {
	trimmed := bytes.TrimRight(raw, " \t\r\n")
	if bytes.HasSuffix(trimmed, []byte("/>")) {
		out := make([]byte, 0, len(trimmed))
		out = append(out, trimmed[:len(trimmed)-2]...)
		return append(out, '>')
	}
	return raw
}

// prefixOf returns the namespace prefix of a raw start tag ("w" for <w:p>).
func prefixOf(raw []byte) string {
	name := raw
	if len(name) > 0 && name[0] == '<' {
		name = name[1:]
	}
	if i := bytes.IndexAny(name, " \t\r\n/>"); i >= 0 {
		name = name[:i]
	}
	if i := bytes.IndexByte(name, ':'); i >= 0 {
		return string(name[:i])
	}
	return ""
}

func qualify(prefix, local string) string {
	if prefix == "" {
		return local
	}
	return prefix + ":" + local
}

//Personal.AI order the ending
