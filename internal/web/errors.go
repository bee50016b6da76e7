package web

import (
	"errors"
	"fmt"
)

// Kind classifies a NetworkError.
type Kind int

const (
	// KindOther is the catch-all kind.
	KindOther Kind = iota
	// KindConnection means the client is not connected or the connect failed.
	KindConnection
	// KindIO means a read, write or flush on the socket failed.
	KindIO
	// KindParse means low-level framing was malformed, e.g. a non-hex chunk size.
	KindParse
	// KindInvalidData means the HTTP text itself was malformed.
	KindInvalidData
	// KindNotFound means a pseudo-scheme host is not registered.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindConnection:
		return "connection error"
	case KindIO:
		return "io error"
	case KindParse:
		return "parse error"
	case KindInvalidData:
		return "invalid data"
	case KindNotFound:
		return "not found"
	default:
		return "error"
	}
}

var (
	// ErrConnection matches every NetworkError of KindConnection with errors.Is.
	ErrConnection = &NetworkError{Kind: KindConnection}
	// ErrIO matches every NetworkError of KindIO with errors.Is.
	ErrIO = &NetworkError{Kind: KindIO}
	// ErrParse matches every NetworkError of KindParse with errors.Is.
	ErrParse = &NetworkError{Kind: KindParse}
	// ErrInvalidData matches every NetworkError of KindInvalidData with errors.Is.
	ErrInvalidData = &NetworkError{Kind: KindInvalidData}
	// ErrNotFound matches every NetworkError of KindNotFound with errors.Is.
	ErrNotFound = &NetworkError{Kind: KindNotFound}
	// ErrOther matches every NetworkError of KindOther with errors.Is.
	ErrOther = &NetworkError{Kind: KindOther}
)

// NetworkError is returned by everything between a URL string and a parsed Response.
type NetworkError struct {
	Kind Kind
	// Op names the failing operation for KindIO errors ("read", "write", "flush").
	Op  string
	Msg string
	Err error
}

func (e *NetworkError) Error() string {
	s := "flux: " + e.Kind.String()
	if e.Op != "" {
		s += " (" + e.Op + ")"
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for e's kind.
func (e *NetworkError) Is(target error) bool {
	t, ok := target.(*NetworkError)
	if !ok {
		return false
	}
	return t.Op == "" && t.Msg == "" && t.Err == nil && t.Kind == e.Kind
}

// ConnectionError builds a KindConnection error.
func ConnectionError(msg string, err error) error {
	return &NetworkError{Kind: KindConnection, Msg: msg, Err: err}
}

// IOError builds a KindIO error tagged with the failing operation.
func IOError(op string, err error) error {
	return &NetworkError{Kind: KindIO, Op: op, Err: err}
}

// ParseError builds a KindParse error.
func ParseError(format string, args ...any) error {
	return &NetworkError{Kind: KindParse, Msg: fmt.Sprintf(format, args...)}
}

// InvalidData builds a KindInvalidData error.
func InvalidData(format string, args ...any) error {
	return &NetworkError{Kind: KindInvalidData, Msg: fmt.Sprintf(format, args...)}
}

// NotFound builds a KindNotFound error.
func NotFound(what string) error {
	return &NetworkError{Kind: KindNotFound, Msg: what}
}

// Other builds a KindOther error.
func Other(msg string, err error) error {
	return &NetworkError{Kind: KindOther, Msg: msg, Err: err}
}

// KindOf returns the kind of the first NetworkError in err's chain, or KindOther.
func KindOf(err error) Kind {
	var ne *NetworkError
	if errors.As(err, &ne) {
		return ne.Kind
	}
	return KindOther
}
