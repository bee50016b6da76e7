package parser

import "strings"

// Elements that never have children or an end tag.
var voidElements = map[string]bool{
	"area":     true,
	"base":     true,
	"br":       true,
	"col":      true,
	"embed":    true,
	"hr":       true,
	"img":      true,
	"input":    true,
	"link":     true,
	"meta":     true,
	"param":    true,
	"source":   true,
	"track":    true,
	"wbr":      true,
	"!doctype": true,
}

// IsVoid reports whether tag names a void element, ignoring case.
func IsVoid(tag string) bool {
	return voidElements[strings.ToLower(tag)]
}

// treeBuilder is a cursor over a token stream. It descends recursively and
// never backtracks.
type treeBuilder struct {
	tokens []Token
	pos    int
}

func (b *treeBuilder) current() (Token, error) {
	if b.pos >= len(b.tokens) {
		return Token{}, errorf(KindOther, "read beyond end of token stream")
	}
	return b.tokens[b.pos], nil
}

func (b *treeBuilder) advance() {
	if b.pos < len(b.tokens) {
		b.pos++
	}
}

func (b *treeBuilder) parseNodes() ([]Node, error) {
	var nodes []Node
	for {
		tok, err := b.current()
		if err != nil {
			return nil, err
		}
		if tok.Type == EOFToken {
			return nodes, nil
		}
		n, err := b.parseNode()
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
}

func (b *treeBuilder) parseNode() (Node, error) {
	tok, err := b.current()
	if err != nil {
		return nil, err
	}
	switch tok.Type {
	case StartTagToken:
		return b.parseElement()
	case TextToken:
		b.advance()
		return &Text{Data: tok.Data}, nil
	case CommentToken:
		b.advance()
		return &Comment{Data: tok.Data}, nil
	}
	return nil, errorf(KindUnexpectedToken, "unexpected %s at token %d", tok, b.pos)
}

func (b *treeBuilder) parseElement() (*Element, error) {
	tok, err := b.current()
	if err != nil {
		return nil, err
	}
	if tok.Type != StartTagToken {
		return nil, errorf(KindUnexpectedToken, "expected start tag, found %s", tok)
	}
	b.advance()

	el := &Element{TagName: tok.Data, Attributes: tok.Attr}
	if tok.SelfClosing || IsVoid(tok.Data) {
		return el, nil
	}

	if el.Children, err = b.parseChildren(); err != nil {
		return nil, err
	}

	end, err := b.current()
	if err != nil {
		return nil, err
	}
	switch {
	case end.Type == EndTagToken && strings.EqualFold(end.Data, tok.Data):
		b.advance()
		return el, nil
	case end.Type == EndTagToken:
		return nil, errorf(KindSyntax, "expected </%s>, found </%s>", tok.Data, end.Data)
	}
	return nil, errorf(KindSyntax, "expected </%s>, found %s", tok.Data, end)
}

// parseChildren collects nodes up to the next end tag or EOF. parseElement
// checks that the end tag matches.
func (b *treeBuilder) parseChildren() ([]Node, error) {
	var children []Node
	for {
		tok, err := b.current()
		if err != nil {
			return nil, err
		}
		if tok.Type == EndTagToken || tok.Type == EOFToken {
			return children, nil
		}
		n, err := b.parseNode()
		if err != nil {
			return nil, err
		}
		children = append(children, n)
	}
}
