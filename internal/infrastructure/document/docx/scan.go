package docx

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"
)

// WordprocessingML namespaces (transitional and strict).
const (
	nsMain       = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsMainStrict = "http://purl.oclc.org/ooxml/wordprocessingml/main"
)

func isW(n xml.Name, local string) bool {
	return n.Local == local && (n.Space == nsMain || n.Space == nsMainStrict)
}

// span is a half-open byte range into document.xml.
type span struct {
	start, end int
}

func (s span) valid() bool { return s.end > s.start }

// runSpan locates one w:r inside a paragraph.
type runSpan struct {
	whole span // <w:r ...> … </w:r>
	open  span // the start tag alone
	props span // <w:rPr> … </w:rPr>, zero when absent
}

// paragraphSpan locates one body-level w:p and carries its extracted text.
type paragraphSpan struct {
	whole span
	open  span
	close span // the end tag; empty for a self-closing <w:p/>
	runs  []runSpan
	text  string
}

func (p paragraphSpan) selfClosing() bool { return !p.close.valid() }

// scanParagraphs walks document.xml once and returns every paragraph that is
// a direct child of w:body, in document order.  Paragraph text is the
// concatenation of w:t content across all runs, with w:tab as "\t" and
// w:br / w:cr as "\n".  Text boxes are not part of the paragraph text.
func scanParagraphs(data []byte) ([]paragraphSpan, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	var (
		stack     []xml.Name
		out       []paragraphSpan
		cur       *paragraphSpan
		text      strings.Builder
		paraDepth int
		skipDepth int
		runDepth  int
		run       runSpan
		propsFrom int
		inText    bool
	)

	for {
		before := int(dec.InputOffset())
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		after := int(dec.InputOffset())

		switch t := tok.(type) {
		case xml.StartElement:
			parent := xml.Name{}
			if len(stack) > 0 {
				parent = stack[len(stack)-1]
			}
			stack = append(stack, t.Name)
			depth := len(stack)

			if cur == nil {
				if isW(t.Name, "p") && isW(parent, "body") {
					cur = &paragraphSpan{whole: span{start: before}, open: span{before, after}}
					paraDepth = depth
					text.Reset()
				}
				continue
			}
			if skipDepth > 0 {
				continue
			}

			switch {
			case isW(t.Name, "txbxContent"):
				skipDepth = depth
			case isW(t.Name, "r") && runDepth == 0:
				runDepth = depth
				run = runSpan{whole: span{start: before}, open: span{before, after}}
			case runDepth == 0:
			case isW(t.Name, "rPr") && depth == runDepth+1:
				propsFrom = before
			case isW(t.Name, "t"):
				inText = true
			case isW(t.Name, "tab") && depth == runDepth+1:
				text.WriteByte('\t')
			case (isW(t.Name, "br") || isW(t.Name, "cr")) && depth == runDepth+1:
				text.WriteByte('\n')
			}

		case xml.EndElement:
			depth := len(stack)
			if cur != nil {
				switch {
				case skipDepth > 0:
					if depth == skipDepth {
						skipDepth = 0
					}
				case depth == paraDepth:
					cur.close = span{before, after}
					cur.whole.end = after
					cur.text = text.String()
					out = append(out, *cur)
					cur = nil
				case runDepth > 0 && depth == runDepth:
					run.whole.end = after
					cur.runs = append(cur.runs, run)
					runDepth = 0
				case runDepth > 0 && depth == runDepth+1 && isW(t.Name, "rPr"):
					run.props = span{propsFrom, after}
				case isW(t.Name, "t"):
					inText = false
				}
			}
			stack = stack[:len(stack)-1]

		case xml.CharData:
			if cur != nil && inText && runDepth > 0 && skipDepth == 0 {
				text.Write(t)
			}
		}
	}
	return out, nil
}

//Personal.AI order the ending
