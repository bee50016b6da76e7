/*
Package fetcher implements the transport half of the fetch pipeline.

Client owns a single socket and moves through two states, disconnected and
connected. It serializes a web.Request, then reads back one response and
frames it by chunked transfer encoding, Content-Length or connection close.
TCPFetcher strings URL parsing, the Client and response parsing together:

	f := fetcher.NewTCPFetcher(fetcher.DefaultConfig())
	res, err := f.Fetch("http://example.com/")
	if err != nil {
		log.Fatal(err)
	}

There is no pooling and no TLS. Every call dials a new connection and
releases it before returning.
*/
package fetcher

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'flux.fetcher'.
func tracer() tracing.Trace {
	return tracing.Select("flux.fetcher")
}
