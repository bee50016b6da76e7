package web

import "strings"

// Field is a single header line.
type Field struct {
	Name  string
	Value string
}

// Header is an ordered list of header fields. Names may repeat.
type Header []Field

// Add returns h with the field appended.
func (h Header) Add(name, value string) Header {
	return append(h, Field{Name: name, Value: value})
}

// Get returns the value of the first field whose name matches name
// case-insensitively.
func (h Header) Get(name string) (string, bool) {
	for _, f := range h {
		if strings.EqualFold(f.Name, name) {
			return f.Value, true
		}
	}
	return "", false
}

// Values returns every value stored under name, in order.
func (h Header) Values(name string) []string {
	var out []string
	for _, f := range h {
		if strings.EqualFold(f.Name, name) {
			out = append(out, f.Value)
		}
	}
	return out
}

// IsChunked reports whether any Transfer-Encoding field mentions chunked.
func (h Header) IsChunked() bool {
	for _, v := range h.Values("Transfer-Encoding") {
		if strings.Contains(strings.ToLower(v), "chunked") {
			return true
		}
	}
	return false
}
