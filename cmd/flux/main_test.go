package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgs(t *testing.T) {
	a, err := ParseArgs([]string{"-url", " flux://hello ", "-depth", "2", "-raw", "-ua", "X/1", "-timeout", "3s"})
	require.NoError(t, err)
	assert.Equal(t, "flux://hello", a.URL)
	assert.Equal(t, 2, a.Depth)
	assert.True(t, a.Raw)
	assert.Equal(t, "X/1", a.UserAgent)
	assert.Equal(t, 3*time.Second, a.Timeout)
	assert.Equal(t, "Error", a.TraceLevel)

	a, err = ParseArgs([]string{"http://example.com/"})
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/", a.URL)
	assert.Equal(t, 10*time.Second, a.Timeout)

	a, err = ParseArgs([]string{"-serve", ":8080"})
	require.NoError(t, err)
	assert.Equal(t, ":8080", a.Serve)
}

func TestParseArgs_Errors(t *testing.T) {
	for _, args := range [][]string{
		{},
		{"-depth", "1"},
		{"-url", "flux://hello", "-depth", "-1"},
		{"-nope"},
	} {
		_, err := ParseArgs(args)
		assert.Error(t, err, "args %q", args)
	}
}

func TestRun_Outline(t *testing.T) {
	var out bytes.Buffer
	err := run(&Args{URL: "flux://about", Timeout: time.Second}, &out)
	require.NoError(t, err)

	lines := strings.Split(out.String(), "\n")
	assert.Equal(t, "200 OK", lines[0])
	assert.Equal(t, "#document", lines[1])
	assert.Contains(t, out.String(), "<h1>")
}

func TestRun_Raw(t *testing.T) {
	var out bytes.Buffer
	err := run(&Args{URL: "flux://hello", Raw: true, Timeout: time.Second}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "<h1>Hello!</h1>")
}

func TestRun_NotHTML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	var out bytes.Buffer
	require.NoError(t, run(&Args{URL: server.URL, Timeout: time.Second}, &out))
	assert.Equal(t, "200 OK\n(application/json body, 2 bytes)\n", out.String())
}

func TestRun_Crawl(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		if r.URL.Path == "/" {
			w.Write([]byte(`<a href="/a">a</a><a href="http://elsewhere.invalid/">x</a>`))
			return
		}
		w.Write([]byte(`<p>leaf</p>`))
	}))
	defer server.Close()

	var out bytes.Buffer
	require.NoError(t, run(&Args{URL: server.URL + "/", Depth: 2, Timeout: time.Second}, &out))
	assert.Equal(t,
		server.URL+"/  200  2 links\n"+
			server.URL+"/a  200  0 links\n",
		out.String())
}

func TestRun_History(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		switch r.URL.Path {
		case "/robots.txt":
			http.NotFound(w, r)
		case "/":
			w.Write([]byte(`<a href="/a">a</a>`))
		default:
			w.Write([]byte(`<p>leaf</p>`))
		}
	}))
	defer server.Close()

	db := filepath.Join(t.TempDir(), "visits.db")
	args := &Args{URL: server.URL + "/", Depth: 1, History: db, Timeout: time.Second}

	var out bytes.Buffer
	require.NoError(t, run(args, &out))
	assert.Contains(t, out.String(), "200 OK  "+server.URL+"/a\n")
	assert.Contains(t, out.String(), "recent visits:\n")
	assert.Equal(t, 2, strings.Count(out.String(), "  200  "))

	out.Reset()
	require.NoError(t, run(args, &out))
	assert.Equal(t, 4, strings.Count(out.String(), "  200  "))
}
