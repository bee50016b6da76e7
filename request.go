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
package flux

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"golang.org/x/net/html"

	"github.com/HRemonen/Flux/internal/parser"
	"github.com/HRemonen/Flux/internal/web"
)

// Request is a request the Harvester is about to send. RequestDo
// middlewares may add headers before it goes out.
type Request struct {
	// ID identifies the request in traces and in the visit history.
	ID      uuid.UUID
	URL     *URL
	Method  Method
	Headers Header
	// Depth is the number of Request.Visit hops from the first Visit call.
	Depth     int
	harvester *Harvester
}

// AddHeader appends a header field to the request.
func (r *Request) AddHeader(name, value string) {
	r.Headers = r.Headers.Add(name, value)
}

// AbsoluteURL resolves link against the request URL. Fragment-only links
// and links that do not parse resolve to the empty string.
func (r *Request) AbsoluteURL(link string) string {
	abs, err := r.URL.Resolve(link)
	if err != nil {
		tracer().Debugf("cannot resolve %q against %s: %v", link, r.URL.Redacted(), err)
		return ""
	}
	return abs
}

// Visit fetches u one level deeper than r, so the depth limit applies.
func (r *Request) Visit(u string) error {
	return r.harvester.fetch(u, r.Depth+1)
}

// Response is a fetched page together with the request that produced it.
// Document is set when the body is HTML and parsed without error.
type Response struct {
	StatusCode   uint16
	ReasonPhrase string
	Headers      Header
	Body         []byte
	Request      *Request
	Document     *Document
}

func newResponse(req *Request, res *web.Response) *Response {
	return &Response{
		StatusCode:   res.StatusCode,
		ReasonPhrase: res.ReasonPhrase,
		Headers:      res.Headers,
		Body:         res.Body,
		Request:      req,
	}
}

// ContentType returns the media type of the body, lower-cased and without
// parameters.
func (r *Response) ContentType() string {
	return (&web.Response{Headers: r.Headers}).ContentType()
}

// Text returns the body as a string.
func (r *Response) Text() string {
	return string(r.Body)
}

// Links returns the hrefs of the anchors in Document, resolved against the
// request URL. Links that cannot be resolved are left out.
func (r *Response) Links() []string {
	if r.Document == nil {
		return nil
	}
	var out []string
	for _, href := range parser.ExtractLinks(r.Document) {
		if abs := r.Request.AbsoluteURL(href); abs != "" {
			out = append(out, abs)
		}
	}
	return out
}

// HtmlElement is an element matched by an HtmlDo selector.
type HtmlElement struct {
	// Name is the lower-cased tag name.
	Name      string
	Text      string
	Request   *Request
	Response  *Response
	Selection *goquery.Selection

	attributes []html.Attribute
}

func newHtmlElement(res *Response, s *goquery.Selection, n *html.Node) *HtmlElement {
	return &HtmlElement{
		Name:       n.Data,
		Text:       s.Text(),
		Request:    res.Request,
		Response:   res,
		Selection:  s,
		attributes: n.Attr,
	}
}

// Attribute returns the value of the named attribute, or the empty string.
func (e *HtmlElement) Attribute(name string) string {
	for _, a := range e.attributes {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}
