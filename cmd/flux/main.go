// Command flux fetches a page over plain HTTP/1.1 (or from the built-in
// flux:// pages) and prints its DOM outline.
//
// Usage:
//
//	flux -url http://example.com/
//	flux -url flux://hello -raw
//	flux -url http://example.com/ -depth 2
//	flux -url http://example.com/ -history visits.db
//	flux -serve :8080
package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"

	flux "github.com/HRemonen/Flux"
	"github.com/HRemonen/Flux/internal/crawler"
	"github.com/HRemonen/Flux/internal/fetcher"
	"github.com/HRemonen/Flux/internal/inspect"
	"github.com/HRemonen/Flux/internal/parser"
)

const historyLimit = 10

func main() {
	args, err := ParseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "flux:", err)
		os.Exit(2)
	}

	tracer := gologadapter.New()
	tracer.SetTraceLevel(tracing.TraceLevelFromString(args.TraceLevel))
	tracing.SetTraceSelector(tracing.SelectorForAdapter(func() tracing.Trace { return tracer }))

	if err := run(args, os.Stdout); err != nil {
		log.Fatalf("flux: %v", err)
	}
}

func transportConfig(args *Args) fetcher.Config {
	cfg := fetcher.DefaultConfig()
	cfg.DialTimeout = args.Timeout
	cfg.IdleReadTimeout = args.Timeout
	if args.UserAgent != "" {
		cfg.UserAgent = args.UserAgent
	}
	return cfg
}

func run(args *Args, out io.Writer) error {
	cfg := transportConfig(args)

	switch {
	case args.Serve != "":
		s := inspect.NewServer(args.Serve, fetcher.NewTCPFetcher(cfg))
		fmt.Fprintf(out, "inspection API listening on %s\n", args.Serve)
		return s.HTTPServer().ListenAndServe()
	case args.History != "":
		return visitWithHistory(args, cfg, out)
	case args.Depth > 0:
		return crawl(args, cfg, out)
	}

	res, err := fetcher.NewTCPFetcher(cfg).Fetch(args.URL)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%d %s\n", res.StatusCode, res.ReasonPhrase)
	return printBody(out, res.Text(), res.ContentType(), args.Raw)
}

func printBody(out io.Writer, body, contentType string, raw bool) error {
	if raw {
		_, err := io.WriteString(out, body)
		return err
	}
	parsed, err := parser.ParseDocument(body, contentType)
	if errors.Is(err, parser.ErrUnsupportedMimeType) {
		fmt.Fprintf(out, "(%s body, %d bytes)\n", contentType, len(body))
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprint(out, parser.Outline(parsed.(*parser.Document)))
	return nil
}

func crawl(args *Args, cfg fetcher.Config, out io.Writer) error {
	c := crawler.NewHttpCrawler(fetcher.NewTCPFetcher(cfg))
	c.SameHost = true

	pages, err := c.Crawl(args.URL, args.Depth)
	if err != nil {
		return err
	}
	for _, p := range pages {
		if p.Err != nil {
			fmt.Fprintf(out, "%s  error: %v\n", p.URL, p.Err)
			continue
		}
		fmt.Fprintf(out, "%s  %d  %d links\n", p.URL, p.Status, len(p.Links))
	}
	return nil
}

func visitWithHistory(args *Args, cfg fetcher.Config, out io.Writer) error {
	store, err := flux.OpenSQLiteStore(args.History)
	if err != nil {
		return err
	}
	defer store.Close()

	h := flux.NewHarvester(
		flux.WithTransport(fetcher.NewTCPFetcher(cfg)),
		flux.WithUserAgent(cfg.UserAgent),
		flux.WithStore(store),
		flux.WithAllowRevisit(true),
		flux.WithDepthLimit(args.Depth+1),
	)

	var printErr error
	h.ResponseDo(func(res *flux.Response) {
		fmt.Fprintf(out, "%d %s  %s\n", res.StatusCode, res.ReasonPhrase, res.Request.URL)
		if res.Request.Depth == 0 {
			if printErr = printBody(out, res.Text(), res.ContentType(), args.Raw); printErr != nil {
				return
			}
		}
		if res.Request.Depth >= args.Depth {
			return
		}
		for _, link := range res.Links() {
			if err := res.Request.Visit(link); err != nil {
				fmt.Fprintf(out, "skipped %s: %v\n", link, err)
			}
		}
	})

	if err := h.Visit(args.URL); err != nil {
		return err
	}
	if printErr != nil {
		return printErr
	}

	history, err := store.History(historyLimit)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "recent visits:")
	for _, v := range history {
		fmt.Fprintf(out, "  %s  %3d  %s\n", v.VisitedAt.Format("2006-01-02 15:04:05"), v.Status, v.URL)
	}
	return nil
}
