package testutil

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/><Default Extension="xml" ContentType="application/xml"/><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/></Types>`

const relsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/></Relationships>`

// DocumentXML wraps body XML in a w:document element.
func DocumentXML(body string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" ` +
		`xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">` +
		`<w:body>` + body + `<w:sectPr/></w:body></w:document>`
}

// ParagraphsXML renders one single-run paragraph per entry; "" becomes an
// empty <w:p/>.
func ParagraphsXML(paragraphs ...string) string {
	var buf bytes.Buffer
	for _, p := range paragraphs {
		if p == "" {
			buf.WriteString("<w:p/>")
			continue
		}
		buf.WriteString(`<w:p><w:r><w:t xml:space="preserve">`)
		_ = xml.EscapeText(&buf, []byte(p))
		buf.WriteString(`</w:t></w:r></w:p>`)
	}
	return buf.String()
}

// WriteDocxXML writes a minimal .docx package whose document.xml is the
// given string.
func WriteDocxXML(t testing.TB, path, documentXML string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, part := range []struct{ name, body string }{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", relsXML},
		{"word/document.xml", documentXML},
	} {
		w, err := zw.Create(part.name)
		require.NoError(t, err)
		_, err = w.Write([]byte(part.body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

// WriteDocx writes a minimal .docx with one paragraph per entry.
func WriteDocx(t testing.TB, path string, paragraphs ...string) string {
	t.Helper()
	return WriteDocxXML(t, path, DocumentXML(ParagraphsXML(paragraphs...)))
}

//Personal.AI order the ending
