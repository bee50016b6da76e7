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
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"github.com/temoto/robotstxt"

	"github.com/HRemonen/Flux/internal/fetcher"
	"github.com/HRemonen/Flux/internal/parser"
	"github.com/HRemonen/Flux/internal/settings"
	"github.com/HRemonen/Flux/internal/web"
)

var (
	// ErrForbiddenURL is returned when a URL is excluded by the allowed or disallowed URL lists.
	ErrForbiddenURL = errors.New("URL is forbidden")
	// ErrRobotsDisallowed is returned when a URL is disallowed by robots.txt.
	ErrRobotsDisallowed = errors.New("URL is disallowed by robots.txt")
	// ErrVisitedURL is returned when a URL has already been visited.
	ErrVisitedURL = errors.New("URL has already been visited")
	// ErrDepthLimitExceeded is returned when the maximum depth limit is exceeded.
	ErrDepthLimitExceeded = errors.New("depth limit exceeded")
)

// Options is a type for functional options that can be used to configure a Harvester.
type Options func(h *Harvester)

// ReqMiddleware is a type for request middlewares that can be used to modify a Request before it is fetched.
type ReqMiddleware func(req *Request)

// ResMiddleware is a type for response middlewares that can be used to inspect a Response after it is fetched.
type ResMiddleware func(res *Response)

type (
	HtmlCallback   func(el *HtmlElement)
	HtmlMiddleware struct {
		Selector string
		Function HtmlCallback
	}
)

// Harvester fetches pages through a Transport, applies the URL filters and
// robots.txt policy, parses HTML bodies and runs the registered middlewares.
type Harvester struct {
	// Transport performs the fetches. Defaults to a TCP transport built from the timeout and user agent options.
	Transport Transport
	// AllowedURLs is a list of URL prefixes that are allowed to be fetched. Can be set with the WithAllowedURLs functional option.
	AllowedURLs []string
	// DisallowedURLs is a list of URL prefixes that are never fetched. Can be set with the WithDisallowedURLs functional option.
	DisallowedURLs []string
	// DepthLimit is the maximum depth of links to follow. If set to 0, all links are followed. Can be set with the WithDepthLimit functional option.
	DepthLimit int
	// AllowRevisit determines whether URLs can be fetched again after a successful visit. Defaults to false.
	AllowRevisit bool
	// Context stops the harvester from starting new fetches once it is done. Fetches already in flight run to completion.
	Context context.Context
	// UserAgent is sent with every request and used for robots.txt matching.
	UserAgent string
	// config holds the transport settings used when no Transport is given.
	config fetcher.Config
	// store is a Storer that is used to cache visited URLs.
	store Storer
	// requestMiddlewares is a list of request middlewares that are applied to each request. Can be set with RequestDo.
	requestMiddlewares []ReqMiddleware
	// responseMiddlewares is a list of response middlewares that are applied to each response. Can be set with ResponseDo.
	responseMiddlewares []ResMiddleware
	// htmlMiddlewares is a list of middlewares applied to matching elements of each HTML page. Can be set with HtmlDo.
	htmlMiddlewares []HtmlMiddleware
	// ignoreRobots is a flag that determines whether robots.txt should be ignored, defaults to false. Can be set with the WithIgnoreRobots functional option.
	ignoreRobots bool
	// robotsMap caches robots.txt data by scheme and host.
	robotsMap map[string]*robotstxt.RobotsData
	// mu guards the middlewares and the robotsMap.
	mu *sync.RWMutex
}

// NewHarvester creates a new Harvester configured by options.
func NewHarvester(options ...Options) *Harvester {
	cfg := fetcher.DefaultConfig()
	h := &Harvester{
		AllowedURLs:         []string{},
		DisallowedURLs:      []string{},
		DepthLimit:          0,
		AllowRevisit:        false,
		Context:             context.Background(),
		UserAgent:           cfg.UserAgent,
		config:              cfg,
		store:               NewInMemoryStore(),
		requestMiddlewares:  make([]ReqMiddleware, 0, 4),
		responseMiddlewares: make([]ResMiddleware, 0, 4),
		htmlMiddlewares:     make([]HtmlMiddleware, 0, 4),
		ignoreRobots:        false,
		robotsMap:           make(map[string]*robotstxt.RobotsData),
		mu:                  &sync.RWMutex{},
	}

	for _, option := range options {
		option(h)
	}

	if h.Transport == nil {
		h.config.UserAgent = h.UserAgent
		h.Transport = fetcher.NewTCPFetcher(h.config)
	}

	return h
}

// Clone returns a new Harvester with the same options as the original
// except for the middleware functions. The clone shares the store and the
// robots.txt cache.
func (h *Harvester) Clone() *Harvester {
	return &Harvester{
		Transport:           h.Transport,
		AllowedURLs:         h.AllowedURLs,
		DisallowedURLs:      h.DisallowedURLs,
		DepthLimit:          h.DepthLimit,
		AllowRevisit:        h.AllowRevisit,
		Context:             h.Context,
		UserAgent:           h.UserAgent,
		config:              h.config,
		store:               h.store,
		requestMiddlewares:  make([]ReqMiddleware, 0, 4),
		responseMiddlewares: make([]ResMiddleware, 0, 4),
		htmlMiddlewares:     make([]HtmlMiddleware, 0, 4),
		ignoreRobots:        h.ignoreRobots,
		robotsMap:           h.robotsMap,
		mu:                  h.mu,
	}
}

// WithTransport is a functional option that replaces the transport used by the Harvester.
func WithTransport(t Transport) Options {
	return func(h *Harvester) {
		h.Transport = t
	}
}

// WithUserAgent is a functional option that sets the User-Agent header and the robots.txt agent name.
func WithUserAgent(ua string) Options {
	return func(h *Harvester) {
		h.UserAgent = ua
	}
}

// WithDialTimeout is a functional option that bounds how long connecting may take.
func WithDialTimeout(d time.Duration) Options {
	return func(h *Harvester) {
		h.config.DialTimeout = d
	}
}

// WithReadTimeout is a functional option that sets the idle timeout used when a
// response has neither Content-Length nor chunked framing.
func WithReadTimeout(d time.Duration) Options {
	return func(h *Harvester) {
		h.config.IdleReadTimeout = d
	}
}

// WithAllowRevisit is a functional option that sets the AllowRevisit flag for the Harvester.
func WithAllowRevisit(allow bool) Options {
	return func(h *Harvester) {
		h.AllowRevisit = allow
	}
}

// WithAllowedURLs is a functional option that sets the allowed URLs for the Harvester.
func WithAllowedURLs(urls []string) Options {
	return func(h *Harvester) {
		h.AllowedURLs = urls
	}
}

// WithDisallowedURLs is a functional option that sets the disallowed URLs for the Harvester.
func WithDisallowedURLs(urls []string) Options {
	return func(h *Harvester) {
		h.DisallowedURLs = urls
	}
}

// WithDepthLimit is a functional option that sets the maximum depth for the Harvester.
func WithDepthLimit(depth int) Options {
	return func(h *Harvester) {
		h.DepthLimit = depth
	}
}

// WithContext is a functional option that sets the context for the Harvester.
func WithContext(ctx context.Context) Options {
	return func(h *Harvester) {
		h.Context = ctx
	}
}

// WithStore is a functional option that sets the Storer for the Harvester.
// See the Storer interface in store.go for more information.
func WithStore(store Storer) Options {
	return func(h *Harvester) {
		h.store = store
	}
}

// WithIgnoreRobots is a functional option that sets the ignoreRobots flag for the Harvester.
func WithIgnoreRobots(ignore bool) Options {
	return func(h *Harvester) {
		h.ignoreRobots = ignore
	}
}

// RequestDo adds a request middleware to the Harvester.
// Triggers the given ReqMiddleware for each request before it is fetched.
func (h *Harvester) RequestDo(mw ReqMiddleware) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.requestMiddlewares = append(h.requestMiddlewares, mw)
}

// ResponseDo adds a response middleware to the Harvester.
// Triggers the given ResMiddleware for each response after a request.
func (h *Harvester) ResponseDo(mw ResMiddleware) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.responseMiddlewares = append(h.responseMiddlewares, mw)
}

// HtmlDo adds an Html middleware to the Harvester.
// HtmlCallback is a function that is executed on every HtmlElement that matches the given GoQuery selector.
//
// SEE GoQuery documentation for more information on selectors: https://pkg.go.dev/github.com/PuerkitoBio/goquery
func (h *Harvester) HtmlDo(gqSelector string, fn HtmlCallback) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.htmlMiddlewares = append(h.htmlMiddlewares, HtmlMiddleware{
		Selector: gqSelector,
		Function: fn,
	})
}

// Visit fetches the page at the given URL if the filters allow it and runs
// the middlewares on the result.
func (h *Harvester) Visit(u string) error {
	return h.fetch(u, 0)
}

func (h *Harvester) fetch(u string, depth int) error {
	if err := h.Context.Err(); err != nil {
		return err
	}

	parsedURL, err := web.ParseURL(u)
	if err != nil {
		return err
	}

	if err := h.checkRobots(parsedURL); err != nil {
		return err
	}

	if err := h.checkFilters(parsedURL); err != nil {
		return err
	}

	if err := h.checkDepth(depth); err != nil {
		return err
	}

	request := &Request{
		ID:        uuid.New(),
		URL:       parsedURL,
		Method:    web.MethodGet,
		Headers:   fetcher.NewGetRequest(parsedURL, h.UserAgent).Headers,
		Depth:     depth,
		harvester: h,
	}

	h.handleRequestDo(request)

	wire := web.NewRequest(request.Method, parsedURL.RequestTarget())
	wire.Headers = request.Headers

	tracer().Debugf("[%s] %s %s (depth %d)", request.ID, request.Method, parsedURL.Redacted(), depth)
	res, err := h.Transport.FetchURL(parsedURL, wire)
	if err != nil {
		return err
	}

	h.markVisited(parsedURL.Redacted(), res.StatusCode)

	response := newResponse(request, res)
	h.parseDocument(response)

	h.handleResponseDo(response)

	h.handleHtmlDo(response)

	return nil
}

func (h *Harvester) markVisited(u string, status uint16) {
	if rs, ok := h.store.(ResultStorer); ok {
		rs.VisitResult(u, status)
		return
	}
	h.store.Visit(u)
}

func (h *Harvester) parseDocument(res *Response) {
	if res.ContentType() != parser.MIMEHTML {
		return
	}
	doc, err := parser.ParseHTML(res.Text())
	if err != nil {
		tracer().Errorf("[%s] error parsing response body: %v", res.Request.ID, err)
		return
	}
	res.Document = doc
}

func (h *Harvester) handleRequestDo(req *Request) {
	h.mu.RLock()
	mws := h.requestMiddlewares
	h.mu.RUnlock()

	for _, m := range mws {
		m(req)
	}
}

func (h *Harvester) handleResponseDo(res *Response) {
	h.mu.RLock()
	mws := h.responseMiddlewares
	h.mu.RUnlock()

	for _, m := range mws {
		m(res)
	}
}

func (h *Harvester) handleHtmlDo(res *Response) {
	h.mu.RLock()
	mws := h.htmlMiddlewares
	h.mu.RUnlock()

	if res.Document == nil || len(mws) == 0 {
		return
	}

	doc := goquery.NewDocumentFromNode(parser.ToNetHTML(res.Document))
	for _, m := range mws {
		doc.Find(m.Selector).Each(func(i int, s *goquery.Selection) {
			for _, n := range s.Nodes {
				m.Function(newHtmlElement(res, s, n))
			}
		})
	}
}

// checkRobots consults the robots.txt of the URL's host, fetching and
// caching it on first use. Pseudo-scheme pages are never checked.
func (h *Harvester) checkRobots(parsedURL *web.URL) error {
	if h.ignoreRobots || settings.IsScheme(parsedURL.Scheme) {
		return nil
	}

	origin := strings.ToLower(parsedURL.Scheme) + "://" + parsedURL.HostHeader()

	h.mu.RLock()
	robot, ok := h.robotsMap[origin]
	h.mu.RUnlock()

	if !ok {
		res, err := h.Transport.Fetch(origin + "/robots.txt")
		if err != nil {
			return fmt.Errorf("fetching robots.txt for %s: %w", origin, err)
		}

		robot, err = robotstxt.FromStatusAndBytes(int(res.StatusCode), res.Body)
		if err != nil {
			return err
		}

		h.mu.Lock()
		h.robotsMap[origin] = robot
		h.mu.Unlock()
	}

	if !robot.TestAgent(parsedURL.Path, h.UserAgent) {
		return fmt.Errorf("%w: %s", ErrRobotsDisallowed, parsedURL.Redacted())
	}

	return nil
}

func (h *Harvester) checkFilters(parsedURL *web.URL) error {
	u := parsedURL.Redacted()

	if !h.AllowRevisit && h.store.Visited(u) {
		return fmt.Errorf("%w: %s", ErrVisitedURL, u)
	}

	if !h.isURLAllowed(u) {
		return fmt.Errorf("%w: %s", ErrForbiddenURL, u)
	}

	return nil
}

func (h *Harvester) checkDepth(depth int) error {
	if h.DepthLimit != 0 && depth >= h.DepthLimit {
		return fmt.Errorf("%w: %d >= %d", ErrDepthLimitExceeded, depth, h.DepthLimit)
	}

	return nil
}

// isURLAllowed checks if the given URL is allowed to be fetched.
func (h *Harvester) isURLAllowed(u string) bool {
	for _, disallowed := range h.DisallowedURLs {
		if strings.HasPrefix(u, disallowed) {
			return false
		}
	}

	if len(h.AllowedURLs) == 0 {
		return true
	}

	for _, allowed := range h.AllowedURLs {
		if strings.HasPrefix(u, allowed) {
			return true
		}
	}

	return false
}
