package parser

import (
	"mime"
	"strings"
)

// MIMEHTML is the only media type ParseDocument understands.
const MIMEHTML = "text/html"

// Node is one of *Element, *Text or *Comment.
type Node interface {
	node()
}

// Element is an HTML element. TagName keeps the spelling of the source.
type Element struct {
	TagName    string
	Attributes []Attribute
	Children   []Node
}

// Text is a run of character data, kept verbatim.
type Text struct {
	Data string
}

// Comment holds the text between <!-- and -->.
type Comment struct {
	Data string
}

func (*Element) node() {}
func (*Text) node()    {}
func (*Comment) node() {}

// GetAttribute returns the value of the first attribute called name,
// ignoring case.
func (e *Element) GetAttribute(name string) (string, bool) {
	for _, a := range e.Attributes {
		if strings.EqualFold(a.Name, name) {
			return a.Value, true
		}
	}
	return "", false
}

// Is reports whether e is a tag element, ignoring case.
func (e *Element) Is(tag string) bool {
	return strings.EqualFold(e.TagName, tag)
}

// TextContent concatenates the text of all descendants in document order.
func (e *Element) TextContent() string {
	var b strings.Builder
	Walk(e.Children, func(n Node) bool {
		if t, ok := n.(*Text); ok {
			b.WriteString(t.Data)
		}
		return true
	})
	return b.String()
}

// ParsedDocument is the result of ParseDocument. Callers switch on the
// concrete type; *Document is the only one today.
type ParsedDocument interface {
	MIMEType() string
}

// Document is a parsed HTML document. It shares nothing with the input and
// belongs to the caller.
type Document struct {
	RootNodes []Node
}

// MIMEType returns text/html.
func (d *Document) MIMEType() string { return MIMEHTML }

// Elements returns all elements called tag in document order, ignoring case.
func (d *Document) Elements(tag string) []*Element {
	var out []*Element
	Walk(d.RootNodes, func(n Node) bool {
		if el, ok := n.(*Element); ok && el.Is(tag) {
			out = append(out, el)
		}
		return true
	})
	return out
}

// Walk visits nodes and their descendants depth first, in document order.
// Children of a node are skipped when fn returns false for it.
func Walk(nodes []Node, fn func(Node) bool) {
	for _, n := range nodes {
		if !fn(n) {
			continue
		}
		if el, ok := n.(*Element); ok {
			Walk(el.Children, fn)
		}
	}
}

// ParseHTML tokenizes input and builds its DOM tree. An element that is
// never closed is an error.
func ParseHTML(input string) (*Document, error) {
	tokens, err := Tokenize(input)
	if err != nil {
		return nil, err
	}
	b := &treeBuilder{tokens: tokens}
	nodes, err := b.parseNodes()
	if err != nil {
		tracer().Debugf("tree builder stopped at token %d of %d: %v", b.pos, len(tokens), err)
		return nil, err
	}
	return &Document{RootNodes: nodes}, nil
}

// ParseDocument parses input according to mimeType. Only text/html is
// supported; parameters such as charset are ignored.
func ParseDocument(input, mimeType string) (ParsedDocument, error) {
	mt, _, err := mime.ParseMediaType(mimeType)
	if err != nil || mt != MIMEHTML {
		return nil, &ParserError{Kind: KindUnsupportedMimeType, Msg: mimeType}
	}
	doc, err := ParseHTML(input)
	if err != nil {
		return nil, err
	}
	return doc, nil
}
