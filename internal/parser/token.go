package parser

import (
	"fmt"
	"strings"
)

// TokenType is the type of a Token.
type TokenType int

const (
	EOFToken TokenType = iota
	StartTagToken
	EndTagToken
	TextToken
	CommentToken
)

func (t TokenType) String() string {
	switch t {
	case StartTagToken:
		return "StartTag"
	case EndTagToken:
		return "EndTag"
	case TextToken:
		return "Text"
	case CommentToken:
		return "Comment"
	}
	return "EOF"
}

// Attribute is a name/value pair from a start tag. Names keep their source
// spelling; an attribute written without '=' has an empty value.
type Attribute struct {
	Name  string
	Value string
}

// Token is one item of the stream produced by Tokenize. Data holds the tag
// name for tags and the literal text for text and comment tokens.
type Token struct {
	Type        TokenType
	Data        string
	Attr        []Attribute
	SelfClosing bool
}

func (t Token) String() string {
	switch t.Type {
	case StartTagToken:
		var b strings.Builder
		b.WriteString("<" + t.Data)
		for _, a := range t.Attr {
			fmt.Fprintf(&b, " %s=%q", a.Name, a.Value)
		}
		if t.SelfClosing {
			b.WriteString("/")
		}
		b.WriteString(">")
		return b.String()
	case EndTagToken:
		return "</" + t.Data + ">"
	case TextToken:
		return fmt.Sprintf("Text(%q)", t.Data)
	case CommentToken:
		return "<!--" + t.Data + "-->"
	}
	return "EOF"
}
