package docx

import (
	"archive/zip"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/meisai-checker/internal/testutil"
	"github.com/turtacn/meisai-checker/pkg/errors"
)

func readEntries(t *testing.T, path string) map[string][]byte {
	t.Helper()
	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()

	out := map[string][]byte{}
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		out[f.Name] = data
	}
	return out
}

func TestWriteWithReplacements_EmptyMappingIsIdentity(t *testing.T) {
	dir := t.TempDir()
	in := testutil.WriteDocx(t, filepath.Join(dir, "in.docx"), "これは。。。テスト", "", "日本語 言葉")
	out := filepath.Join(dir, "nested", "reports", "in_fixed.docx")

	require.NoError(t, WriteWithReplacements(in, out, map[string]string{}))
	require.NoError(t, WriteWithReplacements(in, out+".nil", nil))

	before, err := Read(in)
	require.NoError(t, err)
	after, err := Read(out)
	require.NoError(t, err)
	assert.Equal(t, before.Paragraphs, after.Paragraphs)
	assert.Equal(t, readEntries(t, in), readEntries(t, out))
}

func TestWriteWithReplacements_ReplacesAcrossRuns(t *testing.T) {
	body := `<w:p><w:pPr><w:jc w:val="both"/></w:pPr>` +
		`<w:r w:rsidR="00A1"><w:rPr><w:b/></w:rPr><w:t>これは。</w:t></w:r>` +
		`<w:r><w:rPr><w:i/></w:rPr><w:t>。。テスト</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>変更なし</w:t></w:r></w:p>`
	dir := t.TempDir()
	in := testutil.WriteDocxXML(t, filepath.Join(dir, "in.docx"), testutil.DocumentXML(body))
	out := filepath.Join(dir, "out.docx")

	require.NoError(t, WriteWithReplacements(in, out, map[string]string{"。。。": "。"}))

	doc, err := Read(out)
	require.NoError(t, err)
	assert.Equal(t, []string{"これは。テスト", "変更なし"}, doc.Paragraphs)

	xmlOut := string(readEntries(t, out)["word/document.xml"])
	assert.Contains(t, xmlOut, `<w:pPr><w:jc w:val="both"/></w:pPr>`)
	assert.Contains(t, xmlOut, `<w:r w:rsidR="00A1"><w:rPr><w:b/></w:rPr><w:t xml:space="preserve">これは。テスト</w:t></w:r>`)
	assert.Contains(t, xmlOut, `<w:r><w:rPr><w:i/></w:rPr></w:r>`)
	assert.Contains(t, xmlOut, `<w:p><w:r><w:t>変更なし</w:t></w:r></w:p>`)
}

func TestWriteWithReplacements_SortedKeyOrder(t *testing.T) {
	dir := t.TempDir()
	in := testutil.WriteDocx(t, filepath.Join(dir, "in.docx"), "abc")
	out := filepath.Join(dir, "out.docx")

	// "a" runs before "ab": a→x turns "abc" into "xbc", so "ab" never matches.
	require.NoError(t, WriteWithReplacements(in, out, map[string]string{"ab": "Z", "a": "x", "": "ignored"}))

	doc, err := Read(out)
	require.NoError(t, err)
	assert.Equal(t, []string{"xbc"}, doc.Paragraphs)
}

func TestRebuildParagraph_WithoutRuns(t *testing.T) {
	assert.Equal(t, "", applyReplacements("", map[string]string{"": "x"}))

	data := []byte(testutil.DocumentXML(`<w:p w14:paraId="1" xmlns:w14="urn:w14"></w:p><w:p/>`))
	spans, err := scanParagraphs(data)
	require.NoError(t, err)
	require.Len(t, spans, 2)

	open := string(rebuildParagraph(data, spans[0], "追加"))
	assert.Equal(t, `<w:p w14:paraId="1" xmlns:w14="urn:w14"><w:r><w:t xml:space="preserve">追加</w:t></w:r></w:p>`, open)

	self := string(rebuildParagraph(data, spans[1], "<&>"))
	assert.Equal(t, `<w:p><w:r><w:t xml:space="preserve">&lt;&amp;&gt;</w:t></w:r></w:p>`, self)
}

func TestWriteWithReplacements_MissingInput(t *testing.T) {
	dir := t.TempDir()
	err := WriteWithReplacements(filepath.Join(dir, "none.docx"), filepath.Join(dir, "out.docx"), nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeDocumentNotFound))
}

func TestWriteWithReplacements_InPlace(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteDocx(t, filepath.Join(dir, "same.docx"), "旧文言")

	require.NoError(t, WriteWithReplacements(path, path, map[string]string{"旧": "新"}))

	doc, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"新文言"}, doc.Paragraphs)
}

func TestPrefixOfAndOpenTag(t *testing.T) {
	assert.Equal(t, "w", prefixOf([]byte(`<w:p w:rsidR="1">`)))
	assert.Equal(t, "", prefixOf([]byte(`<p>`)))
	assert.Equal(t, `<w:r w:x="1">`, string(openTag([]byte(`<w:r w:x="1"/>`))))
	assert.Equal(t, `<w:r>`, string(openTag([]byte(`<w:r>`))))
}

//Personal.AI order the ending
