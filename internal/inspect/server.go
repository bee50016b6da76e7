package inspect

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/npillmayer/schuko/tracing"

	"github.com/HRemonen/Flux/internal/fetcher"
	"github.com/HRemonen/Flux/internal/parser"
	"github.com/HRemonen/Flux/internal/settings"
	"github.com/HRemonen/Flux/internal/web"
)

// tracer traces with key 'flux.inspect'.
func tracer() tracing.Trace {
	return tracing.Select("flux.inspect")
}

// Server is a small JSON API that runs the fetch pipeline on demand and
// reports what each stage produced.
type Server struct {
	addr    string
	fetcher fetcher.Fetcher
	router  chi.Router
}

// NewServer creates a Server listening on addr once HTTPServer is started.
func NewServer(addr string, f fetcher.Fetcher) *Server {
	s := &Server{
		addr:    addr,
		fetcher: f,
		router:  chi.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router

	r.Get("/fetch", s.handleFetch)
	r.Get("/settings", s.handleSettings)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	tracer().Infof("%s %s", r.Method, r.URL.Path)
	s.router.ServeHTTP(w, r)
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:        s.addr,
		Handler:     s,
		ReadTimeout: 15 * time.Second,
	}
}

// HeaderField is one response header in a FetchResult.
type HeaderField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// FetchResult is the body of a successful GET /fetch.
type FetchResult struct {
	URL         string        `json:"url"`
	Status      uint16        `json:"status"`
	Reason      string        `json:"reason"`
	Headers     []HeaderField `json:"headers"`
	ContentType string        `json:"content_type"`
	Outline     string        `json:"outline,omitempty"`
	Links       []string      `json:"links,omitempty"`
	// ParseError is set when the body could not be turned into a document.
	ParseError string `json:"parse_error,omitempty"`
}

func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("url")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "missing url parameter")
		return
	}

	u, err := web.ParseURL(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.fetcher.FetchURL(u, nil)
	if err != nil {
		tracer().Errorf("fetching %s: %v", u.Redacted(), err)
		writeError(w, statusFor(err), err.Error())
		return
	}

	out := FetchResult{
		URL:         u.Redacted(),
		Status:      res.StatusCode,
		Reason:      res.ReasonPhrase,
		Headers:     make([]HeaderField, 0, len(res.Headers)),
		ContentType: res.ContentType(),
	}
	for _, f := range res.Headers {
		out.Headers = append(out.Headers, HeaderField{Name: f.Name, Value: f.Value})
	}

	parsed, err := parser.ParseDocument(res.Text(), res.ContentType())
	if err != nil {
		out.ParseError = err.Error()
		writeJSON(w, http.StatusOK, out)
		return
	}
	if doc, ok := parsed.(*parser.Document); ok {
		out.Outline = parser.Outline(doc)
		for _, href := range parser.ExtractLinks(doc) {
			if abs, err := u.Resolve(href); err == nil && abs != "" {
				out.Links = append(out.Links, abs)
			}
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	hosts := settings.Hosts()
	pages := make([]string, 0, len(hosts))
	for _, h := range hosts {
		pages = append(pages, settings.Scheme+"://"+h)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"scheme": settings.Scheme,
		"pages":  pages,
	})
}

// statusFor maps a pipeline error onto the status the API answers with.
func statusFor(err error) int {
	switch {
	case errors.Is(err, web.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, web.ErrOther):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
