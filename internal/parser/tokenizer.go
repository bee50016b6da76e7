package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Contents of these elements are returned as a single text token, up to the
// matching end tag.
var rawTextElements = map[string]bool{
	"script": true,
	"style":  true,
}

type tokenizer struct {
	src    string
	pos    int
	tokens []Token
}

// Tokenize scans input left to right and returns the token stream,
// terminated by a single EOF token. Whitespace between tokens is skipped;
// text runs are kept verbatim.
func Tokenize(input string) ([]Token, error) {
	z := &tokenizer{src: input}
	for {
		z.skipSpace()
		if z.pos >= len(z.src) {
			break
		}

		var err error
		switch {
		case strings.HasPrefix(z.src[z.pos:], "<!--"):
			err = z.comment()
		case z.src[z.pos] == '<':
			err = z.tag()
		default:
			z.text()
		}
		if err != nil {
			return nil, err
		}
	}
	z.tokens = append(z.tokens, Token{Type: EOFToken})

	tracer().Debugf("tokenized %d bytes into %d tokens", len(z.src), len(z.tokens))
	return z.tokens, nil
}

func (z *tokenizer) skipSpace() {
	for z.pos < len(z.src) {
		r, size := utf8.DecodeRuneInString(z.src[z.pos:])
		if !unicode.IsSpace(r) {
			return
		}
		z.pos += size
	}
}

func (z *tokenizer) comment() error {
	start := z.pos + len("<!--")
	end := strings.Index(z.src[start:], "-->")
	if end < 0 {
		return errorf(KindSyntax, "comment at offset %d is not closed", z.pos)
	}
	z.tokens = append(z.tokens, Token{Type: CommentToken, Data: z.src[start : start+end]})
	z.pos = start + end + len("-->")
	return nil
}

func (z *tokenizer) tag() error {
	end := strings.IndexByte(z.src[z.pos+1:], '>')
	if end < 0 {
		return errorf(KindSyntax, "tag at offset %d is not closed", z.pos)
	}
	offset := z.pos
	body := z.src[z.pos+1 : z.pos+1+end]
	z.pos += end + 2

	if strings.HasPrefix(body, "/") {
		z.tokens = append(z.tokens, Token{Type: EndTagToken, Data: strings.TrimSpace(body[1:])})
		return nil
	}

	tok, ok := parseStartTag(body)
	if !ok {
		return errorf(KindSyntax, "tag at offset %d has no name", offset)
	}
	z.tokens = append(z.tokens, tok)

	if !tok.SelfClosing && rawTextElements[strings.ToLower(tok.Data)] {
		return z.rawText(tok.Data, offset)
	}
	return nil
}

// rawText emits everything up to the end tag of name as one text token.
// The end tag itself is left for the main loop.
// Leading whitespace is skipped like between any other tokens.
func (z *tokenizer) rawText(name string, offset int) error {
	z.skipSpace()
	for i := z.pos; ; {
		k := strings.Index(z.src[i:], "</")
		if k < 0 {
			return errorf(KindSyntax, "<%s> at offset %d is not closed", name, offset)
		}
		i += k
		rest := z.src[i+2:]
		if len(rest) >= len(name) && strings.EqualFold(rest[:len(name)], name) &&
			(len(rest) == len(name) || isTagBoundary(rest[len(name)])) {
			if i > z.pos {
				z.tokens = append(z.tokens, Token{Type: TextToken, Data: z.src[z.pos:i]})
			}
			z.pos = i
			return nil
		}
		i += 2
	}
}

func (z *tokenizer) text() {
	start := z.pos
	if k := strings.IndexByte(z.src[z.pos:], '<'); k >= 0 {
		z.pos += k
	} else {
		z.pos = len(z.src)
	}
	z.tokens = append(z.tokens, Token{Type: TextToken, Data: z.src[start:z.pos]})
}

// parseStartTag splits a tag body such as `a href="/x" hidden` into a tag
// name and its attributes. A trailing '/' marks the tag self-closing. It
// reports false when the body has no tag name.
func parseStartTag(body string) (Token, bool) {
	i := skipSpaceByte(body, 0)
	start := i
	for i < len(body) && !isSpaceByte(body[i]) && body[i] != '/' {
		i++
	}
	if i == start {
		return Token{}, false
	}
	tok := Token{Type: StartTagToken, Data: body[start:i]}

	for {
		i = skipSpaceByte(body, i)
		if i >= len(body) {
			break
		}
		if body[i] == '/' {
			i++
			if strings.TrimSpace(body[i:]) == "" {
				tok.SelfClosing = true
			}
			continue
		}

		nameStart := i
		for i < len(body) && !isSpaceByte(body[i]) && body[i] != '=' && body[i] != '/' {
			i++
		}
		attr := Attribute{Name: body[nameStart:i]}

		if j := skipSpaceByte(body, i); j < len(body) && body[j] == '=' {
			attr.Value, i = scanAttrValue(body, skipSpaceByte(body, j+1))
		}
		if attr.Name != "" {
			tok.Attr = append(tok.Attr, attr)
		}
	}
	return tok, true
}

// scanAttrValue reads a quoted or unquoted value starting at i and returns
// it with the position after it. Quoted values are taken verbatim; an
// unterminated quote runs to the end of the tag body.
func scanAttrValue(body string, i int) (string, int) {
	if i >= len(body) {
		return "", i
	}
	if q := body[i]; q == '"' || q == '\'' {
		end := strings.IndexByte(body[i+1:], q)
		if end < 0 {
			return body[i+1:], len(body)
		}
		return body[i+1 : i+1+end], i + end + 2
	}
	start := i
	for i < len(body) && !isSpaceByte(body[i]) && body[i] != '/' {
		i++
	}
	return body[start:i], i
}

func isSpaceByte(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}

func skipSpaceByte(s string, i int) int {
	for i < len(s) && isSpaceByte(s[i]) {
		i++
	}
	return i
}

func isTagBoundary(c byte) bool {
	return c == '>' || c == '/' || isSpaceByte(c)
}
