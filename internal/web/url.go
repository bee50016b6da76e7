package web

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/net/idna"
)

var (
	// ErrMissingScheme is returned when the input has no "://" separator.
	ErrMissingScheme = errors.New("flux: url is missing its scheme")
	// ErrInvalidPort is returned when the port is not a valid 16-bit number.
	ErrInvalidPort = errors.New("flux: url has an invalid port")
)

// Credentials holds the userinfo part of a URL.
type Credentials struct {
	Username string
	Password string
	// HasPassword distinguishes "user:" from "user".
	HasPassword bool
}

// URL is a parsed absolute URL. It is created once per fetch and never
// modified afterwards.
type URL struct {
	Scheme   string
	Host     string
	Port     uint16
	Path     string // always starts with "/"
	Query    string // without the leading "?"
	Fragment string // without the leading "#"
	// User is nil when the URL carries no credentials.
	User *Credentials
}

// DefaultPort returns the port used for scheme when the URL names none.
func DefaultPort(scheme string) uint16 {
	switch strings.ToLower(scheme) {
	case "http":
		return 80
	case "https":
		return 443
	case "ftp":
		return 21
	default:
		return 80
	}
}

// ParseURL splits input into its components.
//
// Credentials are only extracted when the remainder after "://" contains
// exactly one '@'. With zero or several the whole remainder is treated as
// host[:port]/path, so "http://a@b@c/" has host "a@b@c" and no user.
func ParseURL(input string) (*URL, error) {
	schemeEnd := strings.Index(input, "://")
	if schemeEnd < 0 {
		return nil, fmt.Errorf("%w: %q", ErrMissingScheme, input)
	}

	u := &URL{Scheme: input[:schemeEnd]}
	rest := input[schemeEnd+3:]

	if strings.Count(rest, "@") == 1 {
		creds, after, _ := strings.Cut(rest, "@")
		u.User = parseCredentials(creds)
		rest = after
	}

	hostPort, pathPart := rest, ""
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		hostPort, pathPart = rest[:i], rest[i:]
	}

	host, portStr, hasPort := splitHostPort(hostPort)
	u.Host = host
	u.Port = DefaultPort(u.Scheme)
	if hasPort {
		p, err := strconv.ParseUint(portStr, 10, 16)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPort, portStr)
		}
		u.Port = uint16(p)
	}

	path := ""
	if pathPart != "" {
		path = pathPart[1:]
		if before, frag, ok := strings.Cut(path, "#"); ok {
			u.Fragment = frag
			path = before
		}
		if before, query, ok := strings.Cut(path, "?"); ok {
			u.Query = query
			path = before
		}
	}
	u.Path = "/" + path

	return u, nil
}

func parseCredentials(s string) *Credentials {
	if user, pass, ok := strings.Cut(s, ":"); ok {
		return &Credentials{Username: user, Password: pass, HasPassword: true}
	}
	return &Credentials{Username: s}
}

// splitHostPort splits at the first ':' of the authority. Bracketed IPv6
// literals are kept whole.
func splitHostPort(s string) (host, port string, hasPort bool) {
	if strings.HasPrefix(s, "[") {
		if end := strings.IndexByte(s, ']'); end >= 0 {
			host, rest := s[:end+1], s[end+1:]
			if strings.HasPrefix(rest, ":") {
				return host, rest[1:], true
			}
			return host, "", false
		}
	}
	if i := strings.IndexByte(s, ':'); i >= 0 {
		return s[:i], s[i+1:], true
	}
	return s, "", false
}

// IsDefaultPort reports whether u.Port is the default for u.Scheme.
func (u *URL) IsDefaultPort() bool {
	return u.Port == DefaultPort(u.Scheme)
}

// RequestTarget is the origin-form target sent on the request line.
func (u *URL) RequestTarget() string {
	if u.Query == "" {
		return u.Path
	}
	return u.Path + "?" + u.Query
}

// HostHeader is the value for the Host request header.
func (u *URL) HostHeader() string {
	if u.IsDefaultPort() {
		return u.Host
	}
	return u.Host + ":" + strconv.Itoa(int(u.Port))
}

// DialHost returns the host in ASCII form suitable for name resolution.
func (u *URL) DialHost() string {
	host := strings.TrimSuffix(strings.TrimPrefix(u.Host, "["), "]")
	if ascii, err := idna.Lookup.ToASCII(host); err == nil {
		return ascii
	}
	return host
}

// Address is the host:port pair to dial.
func (u *URL) Address() string {
	return net.JoinHostPort(u.DialHost(), strconv.Itoa(int(u.Port)))
}

func (u *URL) String() string {
	var b strings.Builder
	b.WriteString(u.Scheme)
	b.WriteString("://")
	if u.User != nil {
		b.WriteString(u.User.Username)
		if u.User.HasPassword {
			b.WriteByte(':')
			b.WriteString(u.User.Password)
		}
		b.WriteByte('@')
	}
	b.WriteString(u.HostHeader())
	b.WriteString(u.RequestTarget())
	if u.Fragment != "" {
		b.WriteByte('#')
		b.WriteString(u.Fragment)
	}
	return b.String()
}

// Redacted returns String without the user name and password. Use it for
// anything that is logged or stored.
func (u *URL) Redacted() string {
	if u.User == nil {
		return u.String()
	}
	c := *u
	c.User = nil
	return c.String()
}

// Resolve returns ref as an absolute URL string relative to u.
// Fragment-only references resolve to the empty string.
func (u *URL) Resolve(ref string) (string, error) {
	if strings.HasPrefix(ref, "#") {
		return "", nil
	}
	base, err := url.Parse(u.String())
	if err != nil {
		return "", fmt.Errorf("parsing base url %s: %w", u, err)
	}
	href, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return "", fmt.Errorf("parsing href %q: %w", ref, err)
	}
	return base.ResolveReference(href).String(), nil
}
