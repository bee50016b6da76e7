package web

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'flux.web'.
func tracer() tracing.Trace {
	return tracing.Select("flux.web")
}
