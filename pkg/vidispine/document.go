package vidispine

import (
	"fmt"

	"github.com/beevik/etree"
	"golang.org/x/text/encoding/unicode"
)

// Document is a successful response body. XML responses carry a parsed tree;
// other content types only carry the decoded text.
type Document struct {
	tree *etree.Document
	raw  []byte
}

// NoContent is returned when the server answers with an empty body.
var NoContent = &Document{}

// Empty reports whether the server returned no body.
func (d *Document) Empty() bool {
	return d == nil || len(d.raw) == 0
}

// Root returns the document element, or nil for empty and non-XML documents.
func (d *Document) Root() *etree.Element {
	if d == nil || d.tree == nil {
		return nil
	}
	return d.tree.Root()
}

// Tree exposes the underlying etree document.
func (d *Document) Tree() *etree.Document {
	if d == nil {
		return nil
	}
	return d.tree
}

// Bytes returns the body as received, after UTF-8 repair.
func (d *Document) Bytes() []byte {
	if d == nil {
		return nil
	}
	return d.raw
}

// Text returns the body as a string.
func (d *Document) Text() string {
	return string(d.Bytes())
}

// ChildText returns the text of the root's first child with the given tag.
func (d *Document) ChildText(tag string) (string, bool) {
	root := d.Root()
	if root == nil {
		return "", false
	}
	el := root.SelectElement(tag)
	if el == nil {
		return "", false
	}
	return el.Text(), true
}

// ParseDocument parses an XML body. Byte sequences that are not valid UTF-8
// are replaced rather than rejected; malformed XML is an ErrParse error.
func ParseDocument(body []byte) (*Document, error) {
	if len(body) == 0 {
		return NoContent, nil
	}
	text := decodeText(body)
	tree := etree.NewDocument()
	if err := tree.ReadFromBytes(text); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	if tree.Root() == nil {
		return nil, fmt.Errorf("%w: no root element", ErrParse)
	}
	return &Document{tree: tree, raw: text}, nil
}

// TextDocument wraps a non-XML body.
func TextDocument(body []byte) *Document {
	if len(body) == 0 {
		return NoContent
	}
	return &Document{raw: decodeText(body)}
}

// NewXMLDocument returns an empty etree document rooted at tag in the
// Vidispine namespace, for building request bodies.
func NewXMLDocument(rootTag string) (*etree.Document, *etree.Element) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement(rootTag)
	root.CreateAttr("xmlns", Namespace)
	return doc, root
}

// decodeText replaces invalid UTF-8 with U+FFFD and drops a leading BOM.
func decodeText(b []byte) []byte {
	out, err := unicode.UTF8BOM.NewDecoder().Bytes(b)
	if err != nil {
		return b
	}
	return out
}
