package parser

import "fmt"

// Kind classifies a ParserError.
type Kind int

const (
	KindOther Kind = iota
	KindUnexpectedToken
	KindSyntax
	KindUnsupportedMimeType
)

func (k Kind) String() string {
	switch k {
	case KindUnexpectedToken:
		return "unexpected token"
	case KindSyntax:
		return "syntax error"
	case KindUnsupportedMimeType:
		return "unsupported mime type"
	}
	return "parser error"
}

// Sentinels for errors.Is. They match any ParserError of the same kind.
var (
	ErrUnexpectedToken     = &ParserError{Kind: KindUnexpectedToken}
	ErrSyntax              = &ParserError{Kind: KindSyntax}
	ErrUnsupportedMimeType = &ParserError{Kind: KindUnsupportedMimeType}
	ErrOther               = &ParserError{Kind: KindOther}
)

// ParserError is returned by the tokenizer, the tree builder and
// ParseDocument.
type ParserError struct {
	Kind Kind
	Msg  string
}

func (e *ParserError) Error() string {
	if e.Msg == "" {
		return "flux: " + e.Kind.String()
	}
	return "flux: " + e.Kind.String() + ": " + e.Msg
}

// Is reports whether target is the sentinel for e's kind.
func (e *ParserError) Is(target error) bool {
	t, ok := target.(*ParserError)
	return ok && t.Msg == "" && t.Kind == e.Kind
}

func errorf(kind Kind, format string, args ...any) error {
	return &ParserError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}
