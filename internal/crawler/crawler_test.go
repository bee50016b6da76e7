package crawler

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HRemonen/Flux/internal/fetcher"
	"github.com/HRemonen/Flux/internal/web"
)

type mapFetcher struct {
	pages map[string]string
	calls []string
}

func (m *mapFetcher) Fetch(url string) (*web.Response, error) {
	u, err := web.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return m.FetchURL(u, nil)
}

func (m *mapFetcher) FetchURL(u *web.URL, _ *web.Request) (*web.Response, error) {
	m.calls = append(m.calls, u.String())
	body, ok := m.pages[u.String()]
	if !ok {
		return nil, web.NotFound(u.String())
	}
	return &web.Response{
		StatusCode:   200,
		ReasonPhrase: "OK",
		Headers:      web.Header{{Name: "Content-Type", Value: "text/html"}},
		Body:         []byte(body),
	}, nil
}

var _ fetcher.Fetcher = (*mapFetcher)(nil)

func newSite() *mapFetcher {
	return &mapFetcher{pages: map[string]string{
		"http://site.test/":  `<a href="/a">a</a> <a href="b#top">b</a> <a href="http://other.test/">other</a>`,
		"http://site.test/a": `<a href="/">home</a><a href="/missing">gone</a>`,
		"http://site.test/b": `<p>leaf</p>`,
		"http://other.test/": `<a href="/deep">deep</a>`,
	}}
}

func TestCrawl(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "flux.crawler")
	defer teardown()

	site := newSite()
	pages, err := NewHttpCrawler(site).Crawl("http://site.test", 2)
	require.NoError(t, err)

	var urls []string
	for _, p := range pages {
		urls = append(urls, p.URL)
	}
	assert.Equal(t, []string{
		"http://site.test/",
		"http://site.test/a",
		"http://site.test/b",
		"http://other.test/",
	}, urls)
	assert.Equal(t, []string{
		"http://site.test/a",
		"http://site.test/b",
		"http://other.test/",
	}, pages[0].Links)
	assert.NoError(t, Errors(pages))
}

func TestCrawl_SameHostAndErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "flux.crawler")
	defer teardown()

	site := newSite()
	c := NewHttpCrawler(site)
	c.SameHost = true

	pages, err := c.Crawl("http://site.test/", 3)
	require.NoError(t, err)

	assert.NotContains(t, site.calls, "http://other.test/")
	assert.Contains(t, site.calls, "http://site.test/missing")

	err = Errors(pages)
	assert.ErrorIs(t, err, web.ErrNotFound)

	for _, p := range pages {
		if p.URL == "http://site.test/missing" {
			assert.Error(t, p.Err)
			assert.Empty(t, p.Links)
		}
	}
}

func TestCrawl_ZeroDepth(t *testing.T) {
	site := newSite()
	pages, err := NewHttpCrawler(site).Crawl("http://site.test/", 0)
	require.NoError(t, err)
	assert.Empty(t, pages)
	assert.Empty(t, site.calls)
}

func TestCrawl_InvalidStart(t *testing.T) {
	_, err := NewHttpCrawler(newSite()).Crawl("site.test", 1)
	assert.ErrorIs(t, err, web.ErrMissingScheme)
}

func TestCrawl_ExpandsAtShallowestDepth(t *testing.T) {
	site := &mapFetcher{pages: map[string]string{
		"http://site.test/":  `<a href="/a">a</a><a href="/c">c</a>`,
		"http://site.test/a": `<a href="/c">c</a>`,
		"http://site.test/c": `<a href="/d">d</a>`,
		"http://site.test/d": `<p>d</p>`,
	}}

	pages, err := NewHttpCrawler(site).Crawl("http://site.test/", 3)
	require.NoError(t, err)

	var urls []string
	for _, p := range pages {
		urls = append(urls, p.URL)
	}
	assert.Equal(t, []string{
		"http://site.test/",
		"http://site.test/a",
		"http://site.test/c",
		"http://site.test/d",
	}, urls)
	assert.Equal(t, urls, site.calls)
}

func TestCrawl_CredentialsStayOutOfPages(t *testing.T) {
	site := &mapFetcher{pages: map[string]string{
		"http://bob:pw@site.test/":  `<a href="/a">a</a>`,
		"http://bob:pw@site.test/a": `<p>a</p>`,
	}}

	pages, err := NewHttpCrawler(site).Crawl("http://bob:pw@site.test/", 2)
	require.NoError(t, err)
	require.NoError(t, Errors(pages))

	assert.Equal(t, []string{"http://bob:pw@site.test/", "http://bob:pw@site.test/a"}, site.calls)
	require.Len(t, pages, 2)
	assert.Equal(t, "http://site.test/", pages[0].URL)
	assert.Equal(t, []string{"http://site.test/a"}, pages[0].Links)
	assert.Equal(t, "http://site.test/a", pages[1].URL)
}
