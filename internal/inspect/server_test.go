package inspect

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HRemonen/Flux/internal/fetcher"
)

func newTestServer() *Server {
	return NewServer(":0", fetcher.NewTCPFetcher(fetcher.DefaultConfig()))
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(v), "body: %s", rec.Body.String())
}

func TestFetch_PseudoScheme(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "flux.inspect")
	defer teardown()

	rec := get(t, newTestServer(), "/fetch?url="+url.QueryEscape("flux://hello"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var out FetchResult
	decodeJSON(t, rec, &out)

	assert.Equal(t, "flux://hello/", out.URL)
	assert.Equal(t, uint16(200), out.Status)
	assert.Equal(t, "OK", out.Reason)
	assert.Equal(t, "text/html", out.ContentType)
	assert.Equal(t, []HeaderField{{Name: "Content-Type", Value: "text/html; charset=utf-8"}}, out.Headers)
	assert.True(t, strings.HasPrefix(out.Outline, "#document\n"))
	assert.Contains(t, out.Outline, "<h1>")
	assert.Equal(t, []string{"flux://about"}, out.Links)
	assert.Empty(t, out.ParseError)
}

func TestFetch_HTTP(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "flux.inspect")
	defer teardown()

	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/broken":
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte("<div>"))
		case "/plain":
			w.Header().Set("Content-Type", "text/plain")
			w.Write([]byte("hi"))
		default:
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte(`<p><a href="/next">next</a></p>`))
		}
	}))
	defer origin.Close()

	s := newTestServer()

	var out FetchResult
	rec := get(t, s, "/fetch?url="+url.QueryEscape(origin.URL+"/page"))
	require.Equal(t, http.StatusOK, rec.Code)
	decodeJSON(t, rec, &out)
	assert.Equal(t, []string{origin.URL + "/next"}, out.Links)
	assert.Equal(t, "#document\n└── <p>\n    └── <a href=\"/next\">\n        └── \"next\"\n", out.Outline)

	out = FetchResult{}
	rec = get(t, s, "/fetch?url="+url.QueryEscape(origin.URL+"/broken"))
	require.Equal(t, http.StatusOK, rec.Code)
	decodeJSON(t, rec, &out)
	assert.Empty(t, out.Outline)
	assert.Contains(t, out.ParseError, "expected </div>")

	out = FetchResult{}
	rec = get(t, s, "/fetch?url="+url.QueryEscape(origin.URL+"/plain"))
	require.Equal(t, http.StatusOK, rec.Code)
	decodeJSON(t, rec, &out)
	assert.Equal(t, "text/plain", out.ContentType)
	assert.Contains(t, out.ParseError, "unsupported mime type")
}

func TestFetch_Errors(t *testing.T) {
	s := newTestServer()

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"missing url", "/fetch", http.StatusBadRequest},
		{"no scheme", "/fetch?url=example.com", http.StatusBadRequest},
		{"unknown page", "/fetch?url=" + url.QueryEscape("flux://nowhere"), http.StatusNotFound},
		{"unsupported scheme", "/fetch?url=" + url.QueryEscape("https://example.com/"), http.StatusBadRequest},
		{"refused", "/fetch?url=" + url.QueryEscape("http://127.0.0.1:1/"), http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, s, tt.path)
			assert.Equal(t, tt.status, rec.Code)

			var body map[string]string
			decodeJSON(t, rec, &body)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestSettings(t *testing.T) {
	rec := get(t, newTestServer(), "/settings")
	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		Scheme string   `json:"scheme"`
		Pages  []string `json:"pages"`
	}
	decodeJSON(t, rec, &out)
	assert.Equal(t, "flux", out.Scheme)
	assert.Contains(t, out.Pages, "flux://hello")
	assert.Contains(t, out.Pages, "flux://about")
}

func TestUnknownRoute(t *testing.T) {
	rec := get(t, newTestServer(), "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
