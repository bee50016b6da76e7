package main

import (
	"errors"
	"flag"
	"io"
	"strings"
	"time"
)

// Args are the command-line arguments of a single run.
type Args struct {
	// URL is the page to fetch. Required unless Serve is set.
	URL string
	// Depth > 0 crawls links up to that many levels instead of printing one page.
	Depth int
	// Raw prints the response body instead of the DOM outline.
	Raw bool
	// History is the path of a SQLite visit history. Empty disables it.
	History string
	// Serve is the listen address of the inspection API. Empty disables it.
	Serve string
	// UserAgent overrides the default User-Agent header.
	UserAgent string
	Timeout   time.Duration
	// TraceLevel is one of Debug, Info or Error.
	TraceLevel string
}

// ParseArgs parses args (without the program name). It does not read
// os.Args and writes nothing.
func ParseArgs(args []string) (*Args, error) {
	fs := flag.NewFlagSet("flux", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	a := &Args{}
	fs.StringVar(&a.URL, "url", "", "URL to fetch, e.g. http://example.com/ or flux://hello")
	fs.IntVar(&a.Depth, "depth", 0, "crawl links up to this depth (0 = fetch a single page)")
	fs.BoolVar(&a.Raw, "raw", false, "print the response body instead of the DOM outline")
	fs.StringVar(&a.History, "history", "", "record visits in this SQLite database and print the latest")
	fs.StringVar(&a.Serve, "serve", "", "serve the inspection API on this address, e.g. :8080")
	fs.StringVar(&a.UserAgent, "ua", "", "User-Agent header")
	fs.DurationVar(&a.Timeout, "timeout", 10*time.Second, "dial and idle read timeout")
	fs.StringVar(&a.TraceLevel, "trace", "Error", "trace level: Debug, Info or Error")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if a.URL == "" && fs.NArg() > 0 {
		a.URL = fs.Arg(0)
	}
	a.URL = strings.TrimSpace(a.URL)

	if a.URL == "" && a.Serve == "" {
		return nil, errors.New("missing -url argument")
	}
	if a.Depth < 0 {
		return nil, errors.New("-depth must not be negative")
	}
	return a, nil
}
