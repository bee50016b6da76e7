package fetcher

import "time"

// Config holds the transport knobs of a Client.
type Config struct {
	// DialTimeout bounds Connect. Zero means no limit.
	DialTimeout time.Duration
	// IdleReadTimeout ends a response body that has neither Content-Length
	// nor chunked framing once the server stays silent this long.
	IdleReadTimeout time.Duration
	// MaxHeaderBytes caps the header block. Zero means no limit.
	MaxHeaderBytes int
	// UserAgent is sent with every request built by the pipeline.
	UserAgent string
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() Config {
	return Config{
		DialTimeout:     10 * time.Second,
		IdleReadTimeout: 10 * time.Second,
		MaxHeaderBytes:  64 << 10,
		UserAgent:       "Flux/0.1",
	}
}
