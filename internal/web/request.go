package web

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// Method is an HTTP request method.
type Method int

const (
	MethodGet Method = iota
	MethodPost
	MethodPut
	MethodDelete
)

func (m Method) String() string {
	switch m {
	case MethodGet:
		return "GET"
	case MethodPost:
		return "POST"
	case MethodPut:
		return "PUT"
	case MethodDelete:
		return "DELETE"
	default:
		return "Method(" + strconv.Itoa(int(m)) + ")"
	}
}

// ParseMethod maps a method name to a Method, ignoring case.
func ParseMethod(s string) (Method, error) {
	switch strings.ToUpper(s) {
	case "GET":
		return MethodGet, nil
	case "POST":
		return MethodPost, nil
	case "PUT":
		return MethodPut, nil
	case "DELETE":
		return MethodDelete, nil
	}
	return 0, fmt.Errorf("flux: unsupported method %q", s)
}

// Request is an outgoing HTTP request. It is built up with AddHeader and
// SetBody and treated as frozen once serialized.
type Request struct {
	Method  Method
	Path    string
	Headers Header
	Body    []byte
}

// NewRequest returns a request without headers or body.
func NewRequest(method Method, path string) *Request {
	if path == "" {
		path = "/"
	}
	return &Request{Method: method, Path: path}
}

// AddHeader appends a header. Duplicates are kept in insertion order.
func (r *Request) AddHeader(key, value string) {
	r.Headers = r.Headers.Add(key, value)
}

// SetBody replaces the body with a copy of data.
func (r *Request) SetBody(data []byte) {
	r.Body = append([]byte(nil), data...)
}

// Serialize renders the request in HTTP/1.1 wire format. A Host header
// for host is emitted first unless one was added explicitly, and a
// Content-Length header is computed when the body is non-empty.
func (r *Request) Serialize(host string) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "%s %s HTTP/1.1\r\n", r.Method, r.Path)
	if _, ok := r.Headers.Get("Host"); !ok && host != "" {
		fmt.Fprintf(&b, "Host: %s\r\n", host)
	}
	for _, f := range r.Headers {
		if strings.EqualFold(f.Name, "Content-Length") {
			continue
		}
		fmt.Fprintf(&b, "%s: %s\r\n", f.Name, sanitizeHeaderValue(f.Value))
	}
	if len(r.Body) > 0 {
		fmt.Fprintf(&b, "Content-Length: %d\r\n", len(r.Body))
	}
	b.WriteString("\r\n")
	b.Write(r.Body)
	return b.Bytes()
}

// sanitizeHeaderValue drops CR, LF and other control bytes except HTAB.
func sanitizeHeaderValue(v string) string {
	return strings.Map(func(r rune) rune {
		if r == '\t' {
			return r
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, v)
}
