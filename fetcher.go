/*
Copyright 2024 Henri Remonen

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

/*
Package flux turns URLs into DOM trees.

The two entry points are Fetch, which retrieves a page over a plain
HTTP/1.1 connection, and ParseDocument, which turns its body into a
Document:

	res, err := flux.Fetch("http://example.com/")
	if err != nil {
		log.Fatal(err)
	}
	parsed, err := flux.ParseDocument(res.Text(), res.ContentType())
	if err != nil {
		log.Fatal(err)
	}
	doc := parsed.(*flux.Document)

Pages under the flux:// pseudo-scheme, such as flux://hello, are served
from an in-memory registry and never touch the network.

Harvester adds the crawling concerns on top: URL allow and deny lists,
robots.txt, a visit store, a depth limit and request, response and HTML
middlewares.
*/
package flux

import (
	"github.com/npillmayer/schuko/tracing"

	"github.com/HRemonen/Flux/internal/fetcher"
	"github.com/HRemonen/Flux/internal/parser"
	"github.com/HRemonen/Flux/internal/settings"
	"github.com/HRemonen/Flux/internal/web"
)

type (
	// URL is a parsed URL. See ParseURL.
	URL = web.URL
	// Method is an HTTP request method.
	Method = web.Method
	// HTTPResponse is a parsed HTTP response as returned by Fetch.
	HTTPResponse = web.Response
	// Header is an ordered list of header fields with case-insensitive lookup.
	Header = web.Header
	// NetworkError is returned for transport, framing and HTTP parsing failures.
	NetworkError = web.NetworkError
	// Transport is what a Harvester fetches through.
	Transport = fetcher.Fetcher

	// Document is a parsed HTML document.
	Document = parser.Document
	// Node is one of *Element, *Text or *Comment.
	Node = parser.Node
	// Element is an HTML element node.
	Element = parser.Element
	// Text is a text node.
	Text = parser.Text
	// Comment is a comment node.
	Comment = parser.Comment
	// Attribute is an element attribute.
	Attribute = parser.Attribute
	// ParsedDocument is the result of ParseDocument.
	ParsedDocument = parser.ParsedDocument
	// ParserError is returned by the HTML parser.
	ParserError = parser.ParserError
)

// Sentinels for errors.Is.
var (
	ErrConnection    = web.ErrConnection
	ErrIO            = web.ErrIO
	ErrParse         = web.ErrParse
	ErrInvalidData   = web.ErrInvalidData
	ErrNotFound      = web.ErrNotFound
	ErrOther         = web.ErrOther
	ErrMissingScheme = web.ErrMissingScheme
	ErrInvalidPort   = web.ErrInvalidPort

	ErrUnexpectedToken     = parser.ErrUnexpectedToken
	ErrSyntax              = parser.ErrSyntax
	ErrUnsupportedMimeType = parser.ErrUnsupportedMimeType
)

const (
	MethodGet    = web.MethodGet
	MethodPost   = web.MethodPost
	MethodPut    = web.MethodPut
	MethodDelete = web.MethodDelete
)

// tracer traces with key 'flux'.
func tracer() tracing.Trace {
	return tracing.Select("flux")
}

// ParseURL parses a URL of the form
// scheme://[user[:password]@]host[:port][/path][?query][#fragment].
func ParseURL(input string) (*URL, error) {
	return web.ParseURL(input)
}

// Fetch retrieves url with a GET request over a new connection using the
// default transport settings. flux:// URLs are answered from the built-in
// page registry.
func Fetch(url string) (*HTTPResponse, error) {
	return fetcher.NewTCPFetcher(fetcher.DefaultConfig()).Fetch(url)
}

// ParseDocument parses input as the given media type. Only text/html is
// supported; the result is then a *Document.
func ParseDocument(input, mimeType string) (ParsedDocument, error) {
	return parser.ParseDocument(input, mimeType)
}

// ParseHTML parses input as HTML.
func ParseHTML(input string) (*Document, error) {
	return parser.ParseHTML(input)
}

// RegisterPage serves html under flux://host.
func RegisterPage(host string, html []byte) {
	settings.Register(host, html)
}
