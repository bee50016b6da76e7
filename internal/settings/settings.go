/*
Package settings serves the built-in pages of the flux:// pseudo-scheme.

Pages are registered by host name and resolved without any network
access. The registry ships with "hello" and "about"; Register adds or
replaces pages at runtime.
*/
package settings

import (
	"embed"
	"sort"
	"strings"
	"sync"

	"github.com/HRemonen/Flux/internal/web"
)

// Scheme is the reserved pseudo-scheme.
const Scheme = "flux"

//go:embed pages/*.html
var builtin embed.FS

var (
	mu    sync.RWMutex
	pages = map[string][]byte{}
)

func init() {
	for _, host := range []string{"hello", "about"} {
		b, err := builtin.ReadFile("pages/" + host + ".html")
		if err != nil {
			panic(err)
		}
		pages[host] = b
	}
}

// IsScheme reports whether scheme is the pseudo-scheme, ignoring case.
func IsScheme(scheme string) bool {
	return strings.EqualFold(scheme, Scheme)
}

// Register adds or replaces the page served for host. Host names are
// lower-cased internally.
func Register(host string, html []byte) {
	if host == "" {
		return
	}
	mu.Lock()
	defer mu.Unlock()

	pages[strings.ToLower(host)] = append([]byte(nil), html...)
}

// Lookup returns a 200 response carrying the page registered for host,
// or a NotFound error.
func Lookup(host string) (*web.Response, error) {
	mu.RLock()
	page, ok := pages[strings.ToLower(host)]
	mu.RUnlock()

	if !ok {
		return nil, web.NotFound(Scheme + "://" + host)
	}
	return &web.Response{
		StatusCode:   200,
		ReasonPhrase: "OK",
		Headers:      web.Header{{Name: "Content-Type", Value: "text/html; charset=utf-8"}},
		Body:         append([]byte(nil), page...),
	}, nil
}

// Hosts returns the registered host names in sorted order.
func Hosts() []string {
	mu.RLock()
	defer mu.RUnlock()

	out := make([]string, 0, len(pages))
	for k := range pages {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
