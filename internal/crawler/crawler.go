package crawler

import (
	"errors"

	"github.com/npillmayer/schuko/tracing"

	"github.com/HRemonen/Flux/internal/fetcher"
	"github.com/HRemonen/Flux/internal/parser"
	"github.com/HRemonen/Flux/internal/web"
)

// tracer traces with key 'flux.crawler'.
func tracer() tracing.Trace {
	return tracing.Select("flux.crawler")
}

// Crawler is an interface that defines the behavior of a web crawler.
type Crawler interface {
	Crawl(url string, depth int) ([]Page, error)
}

// Page is one fetched page of a crawl.
type Page struct {
	URL    string
	Status uint16
	// Links holds the absolute targets of the page's anchors in document order.
	Links []string
	// Err is set when the page could not be fetched or parsed. Links is then empty.
	Err error
}

// HttpCrawler is a web crawler that uses a Fetcher to fetch web pages.
type HttpCrawler struct {
	Fetcher fetcher.Fetcher
	// SameHost restricts the crawl to the host of the start URL.
	SameHost bool
}

var _ Crawler = (*HttpCrawler)(nil)

// NewHttpCrawler creates a new HttpCrawler with the given Fetcher.
func NewHttpCrawler(fetcher fetcher.Fetcher) *HttpCrawler {
	return &HttpCrawler{
		Fetcher: fetcher,
	}
}

// Crawl fetches the web page at the given URL and crawls the pages linked
// from it up to the given depth, breadth first. Every URL is fetched at most
// once, at the smallest distance from the start page. Pages are returned in
// the order they were fetched; a failing page is recorded and does not stop
// the crawl. Only an invalid start URL is an error.
func (c *HttpCrawler) Crawl(url string, depth int) ([]Page, error) {
	start, err := web.ParseURL(url)
	if err != nil {
		return nil, err
	}

	var pages []Page
	seen := map[string]bool{start.Redacted(): true}
	queue := []target{{url: start, depth: depth}}

	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if next.depth == 0 {
			continue
		}

		tracer().Debugf("crawling %s at depth %d", next.url.Redacted(), next.depth)
		page, links := c.fetch(next.url)
		pages = append(pages, page)
		if page.Err != nil {
			tracer().Infof("skipping %s: %v", page.URL, page.Err)
			continue
		}

		for _, link := range links {
			if c.SameHost && link.Host != start.Host {
				continue
			}
			key := link.Redacted()
			if seen[key] {
				continue
			}
			seen[key] = true
			queue = append(queue, target{url: link, depth: next.depth - 1})
		}
	}
	return pages, nil
}

// target is a queued URL with the depth still left to crawl from it.
type target struct {
	url   *web.URL
	depth int
}

// fetch returns the page record for u together with the parsed targets of
// its links. Credentials are kept on the targets but left out of the page.
func (c *HttpCrawler) fetch(u *web.URL) (Page, []*web.URL) {
	page := Page{URL: u.Redacted()}

	res, err := c.Fetcher.FetchURL(u, nil)
	if err != nil {
		page.Err = err
		return page, nil
	}
	page.Status = res.StatusCode
	if res.ContentType() != parser.MIMEHTML {
		return page, nil
	}

	doc, err := parser.ParseHTML(res.Text())
	if err != nil {
		page.Err = err
		return page, nil
	}

	var links []*web.URL
	for _, href := range parser.ExtractLinks(doc) {
		abs, err := u.Resolve(href)
		if err != nil || abs == "" {
			continue
		}
		link, err := web.ParseURL(abs)
		if err != nil {
			continue
		}
		// "http://h" and "http://h/#x" are the same page as "http://h/"
		link.Fragment = ""
		links = append(links, link)
		page.Links = append(page.Links, link.Redacted())
	}
	tracer().Debugf("found %d links on %s", len(page.Links), page.URL)
	return page, links
}

// Errors returns the errors of the failed pages joined into one, or nil.
func Errors(pages []Page) error {
	var errs []error
	for _, p := range pages {
		if p.Err != nil {
			errs = append(errs, p.Err)
		}
	}
	return errors.Join(errs...)
}
