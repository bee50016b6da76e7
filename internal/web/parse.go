package web

import (
	"bytes"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	crlfcrlf = []byte("\r\n\r\n")
	lflf     = []byte("\n\n")
)

// SplitHeadersAndBody splits raw at the first blank line, whichever of
// CRLF CRLF or LF LF occurs first.
func SplitHeadersAndBody(raw []byte) (head, body []byte, err error) {
	crlf := bytes.Index(raw, crlfcrlf)
	lf := bytes.Index(raw, lflf)
	switch {
	case crlf >= 0 && (lf < 0 || crlf < lf):
		return raw[:crlf], raw[crlf+len(crlfcrlf):], nil
	case lf >= 0:
		return raw[:lf], raw[lf+len(lflf):], nil
	}
	return nil, nil, InvalidData("no blank line between headers and body")
}

// ParseStatusLine parses "HTTP/1.1 200 OK" into its code and reason phrase.
// The protocol version is not checked.
func ParseStatusLine(line string) (uint16, string, error) {
	parts := strings.Fields(line)
	if len(parts) < 2 {
		return 0, "", InvalidData("malformed status line %q", line)
	}
	code, err := strconv.ParseUint(parts[1], 10, 16)
	if err != nil {
		return 0, "", InvalidData("malformed status code %q", parts[1])
	}
	return uint16(code), strings.Join(parts[2:], " "), nil
}

// ParseHeaders turns "Name: value" lines into fields. Lines without a colon
// are skipped.
func ParseHeaders(lines []string) Header {
	h := make(Header, 0, len(lines))
	for _, line := range lines {
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		h = h.Add(strings.TrimSpace(name), strings.TrimSpace(value))
	}
	return h
}

// ParseResponse parses a complete raw response as produced by the transport.
// Chunked bodies are decoded.
func ParseResponse(raw []byte) (*Response, error) {
	head, body, err := SplitHeadersAndBody(raw)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(head) {
		return nil, InvalidData("response headers are not valid UTF-8")
	}

	lines := splitLines(string(head))
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return nil, InvalidData("missing status line")
	}
	code, reason, err := ParseStatusLine(lines[0])
	if err != nil {
		return nil, err
	}
	headers := ParseHeaders(lines[1:])

	if headers.IsChunked() {
		body, err = DecodeChunked(body)
		if err != nil {
			return nil, err
		}
	} else {
		body = append([]byte(nil), body...)
	}

	tracer().Debugf("parsed response %d %s, %d headers, %d body bytes", code, reason, len(headers), len(body))
	return &Response{
		StatusCode:   code,
		ReasonPhrase: reason,
		Headers:      headers,
		Body:         body,
	}, nil
}

func splitLines(s string) []string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// DecodeChunked removes chunked transfer framing from b. Chunk extensions
// and trailer fields are ignored.
func DecodeChunked(b []byte) ([]byte, error) {
	out := make([]byte, 0, len(b))
	for {
		nl := bytes.IndexByte(b, '\n')
		if nl < 0 {
			return nil, ParseError("chunk size line not terminated")
		}
		size, err := ParseChunkSize(string(b[:nl]))
		if err != nil {
			return nil, err
		}
		b = b[nl+1:]
		if size == 0 {
			return out, nil
		}
		if uint64(len(b)) < size {
			return nil, ParseError("chunk of %d bytes truncated to %d", size, len(b))
		}
		out = append(out, b[:size]...)
		b = b[size:]
		switch {
		case bytes.HasPrefix(b, []byte("\r\n")):
			b = b[2:]
		case bytes.HasPrefix(b, []byte("\n")):
			b = b[1:]
		default:
			return nil, ParseError("missing CRLF after chunk data")
		}
	}
}

// ParseChunkSize parses a chunk size line such as "1a;name=value\r\n".
func ParseChunkSize(line string) (uint64, error) {
	s := strings.TrimRight(line, "\r\n")
	if i := strings.IndexByte(s, ';'); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSpace(s)
	n, err := strconv.ParseUint(s, 16, 63)
	if err != nil {
		return 0, ParseError("invalid chunk size %q", s)
	}
	return n, nil
}
