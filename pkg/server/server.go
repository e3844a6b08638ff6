package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aleksaelezovic/grom/pkg/graph"
	"github.com/aleksaelezovic/grom/pkg/grom"
	"github.com/aleksaelezovic/grom/pkg/store"
)

// Server represents the HTTP graph endpoint
type Server struct {
	client    *grom.Client
	archive   *store.Archive
	decorator graph.Decorator
	headers   map[string]string
	resolve   func(ref string) (string, error)
	logger    *slog.Logger
	addr      string
}

// Option configures a Server
type Option func(*Server)

// WithArchive serves /archive from a
func WithArchive(a *store.Archive) Option {
	return func(s *Server) {
		s.archive = a
	}
}

// WithDecorator applies d to every graph the server builds
func WithDecorator(d graph.Decorator) Option {
	return func(s *Server) {
		s.decorator = d
	}
}

// WithHeaders sends headers with every upstream request
func WithHeaders(headers map[string]string) Option {
	return func(s *Server) {
		s.headers = headers
	}
}

// WithResolver turns the uri query parameter into an absolute URI, so
// clients may pass paths relative to a configured endpoint
func WithResolver(resolve func(ref string) (string, error)) Option {
	return func(s *Server) {
		s.resolve = resolve
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new graph HTTP server
func NewServer(client *grom.Client, addr string, opts ...Option) *Server {
	s := &Server{
		client: client,
		addr:   addr,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routes served by the endpoint
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/graph", s.handleGraph)
	mux.HandleFunc("/archive", s.handleArchive)
	mux.HandleFunc("/", s.handleRoot)
	return mux
}

// Start starts the HTTP server
func (s *Server) Start() error {
	server := &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting graph endpoint", "url", "http://"+s.addr+"/graph")
	return server.ListenAndServe()
}
