/*
Package web holds the wire-level vocabulary of the fetch pipeline: the URL
parser, request and response messages, the HTTP response parser and the
error taxonomy shared by everything below the public API.
*/
package web

import (
	"mime"
	"strings"
)

// Response is a parsed HTTP response. It is not modified after
// construction and belongs to the caller once returned.
type Response struct {
	StatusCode   uint16
	ReasonPhrase string
	Headers      Header
	Body         []byte
}

// GetHeader returns the first header value named key, ignoring case.
func (r *Response) GetHeader(key string) (string, bool) {
	return r.Headers.Get(key)
}

// ContentType returns the media type of the body without parameters,
// lower-cased. It falls back to text/html when the header is missing or
// cannot be parsed.
func (r *Response) ContentType() string {
	v, ok := r.GetHeader("Content-Type")
	if !ok {
		return "text/html"
	}
	mt, _, err := mime.ParseMediaType(v)
	if err != nil {
		return "text/html"
	}
	return strings.ToLower(mt)
}

// Text returns the body as a string.
func (r *Response) Text() string {
	return string(r.Body)
}
