package fetcher

import (
	"encoding/base64"
	"strings"

	"github.com/HRemonen/Flux/internal/settings"
	"github.com/HRemonen/Flux/internal/web"
)

// Fetcher is an interface that defines the behavior of a web page fetcher.
type Fetcher interface {
	// Fetch sends a GET request for url.
	Fetch(url string) (*web.Response, error)
	// FetchURL sends req to u, or a default GET request when req is nil.
	FetchURL(u *web.URL, req *web.Request) (*web.Response, error)
}

var _ Fetcher = (*TCPFetcher)(nil)

// TCPFetcher fetches pages over plain TCP, one fresh connection per call.
// It holds no per-call state and may be shared between goroutines.
type TCPFetcher struct {
	Config Config
}

// NewTCPFetcher creates a new TCPFetcher with the given Config.
func NewTCPFetcher(cfg Config) *TCPFetcher {
	return &TCPFetcher{Config: cfg}
}

// Fetch parses rawURL and fetches it with a GET request.
func (f *TCPFetcher) Fetch(rawURL string) (*web.Response, error) {
	u, err := web.ParseURL(rawURL)
	if err != nil {
		return nil, err
	}
	return f.FetchURL(u, nil)
}

// FetchURL fetches u. When req is nil a GET request is built with
// NewGetRequest. Pages under the flux:// pseudo-scheme never touch the
// network.
func (f *TCPFetcher) FetchURL(u *web.URL, req *web.Request) (*web.Response, error) {
	if settings.IsScheme(u.Scheme) {
		return settings.Lookup(u.Host)
	}
	if !strings.EqualFold(u.Scheme, "http") {
		return nil, web.Other("unsupported scheme "+u.Scheme, nil)
	}
	if req == nil {
		req = NewGetRequest(u, f.Config.UserAgent)
	}

	c := NewClient(f.Config)
	defer func() {
		if err := c.Close(); err != nil {
			tracer().Errorf("error closing connection: %v for request of: %s", err, u.Redacted())
		}
	}()

	if err := c.Connect(u.DialHost(), u.Port); err != nil {
		return nil, err
	}
	if err := c.SendRequest(req); err != nil {
		return nil, err
	}
	raw, err := c.ReceiveRawResponse()
	if err != nil {
		return nil, err
	}
	res, err := c.ParseResponse(raw)
	if err != nil {
		return nil, err
	}

	tracer().Infof("%s %s -> %d %s", req.Method, u.Redacted(), res.StatusCode, res.ReasonPhrase)
	return res, nil
}

// NewGetRequest builds the GET request the pipeline sends for u.
func NewGetRequest(u *web.URL, userAgent string) *web.Request {
	req := web.NewRequest(web.MethodGet, u.RequestTarget())
	req.AddHeader("Host", u.HostHeader())
	if userAgent != "" {
		req.AddHeader("User-Agent", userAgent)
	}
	req.AddHeader("Accept", "*/*")
	req.AddHeader("Connection", "close")
	if u.User != nil {
		cred := u.User.Username + ":" + u.User.Password
		req.AddHeader("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(cred)))
	}
	return req
}
