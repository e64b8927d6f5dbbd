// Package server exposes the explorer over HTTP and a WebSocket event
// stream.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/brianly1003/fuzzy-explorer/internal/commands"
	"github.com/brianly1003/fuzzy-explorer/internal/server/websocket"
	"github.com/gorilla/mux"
)

// Index is the read side of the explorer index used by search.
type Index interface {
	Items() []string
}

// Options configures a Server. Events may be nil to disable /ws.
type Options struct {
	Host       string
	Port       int
	Index      Index
	Commands   *commands.Registry
	Events     *websocket.Handler
	MaxResults int
	Version    string
	Logger     *slog.Logger

	// Lifetime bounds commands sent over the event stream.
	Lifetime context.Context
}

// Server is the explorer HTTP server.
type Server struct {
	opts      Options
	logger    *slog.Logger
	router    *mux.Router
	startTime time.Time

	addr       string
	httpServer *http.Server
	listener   net.Listener
}

// New creates a server and its routes.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Lifetime == nil {
		opts.Lifetime = context.Background()
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = 50
	}

	s := &Server{
		opts:      opts,
		logger:    opts.Logger,
		startTime: time.Now(),
		addr:      net.JoinHostPort(opts.Host, fmt.Sprint(opts.Port)),
	}

	router := mux.NewRouter()
	router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	api.HandleFunc("/items", s.handleItems).Methods(http.MethodGet)
	api.HandleFunc("/search", s.handleSearch).Methods(http.MethodGet)
	api.HandleFunc("/rebuild", s.handleRebuild).Methods(http.MethodPost)
	api.HandleFunc("/commands", s.handleListCommands).Methods(http.MethodGet)
	api.HandleFunc("/commands/{id}", s.handleCommand).Methods(http.MethodPost)

	if opts.Events != nil {
		opts.Events.SetCommandHandler(s.handleStreamCommand)
		router.Handle("/ws", opts.Events)
	}

	s.router = router
	return s
}

// Handler returns the root handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return corsMiddleware(s.requestLoggingMiddleware(s.router))
}

// Addr returns the listen address. After Start it reflects the bound port.
func (s *Server) Addr() string {
	return s.addr
}

// Start binds the listener and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.listener = ln
	s.addr = ln.Addr().String()

	// No read/write timeouts: they would cut long-lived WebSocket streams.
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	if s.opts.Events != nil {
		s.opts.Events.Start()
	}

	s.logger.Info("Starting fuzzy-explorer HTTP server", "addr", s.addr)
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server error", "error", err)
		}
	}()
	return nil
}

// Stop closes the event stream and shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping fuzzy-explorer HTTP server")
	if s.opts.Events != nil {
		s.opts.Events.Stop()
	}
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("Failed to encode JSON response", "error", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, code, message string) {
	s.respondJSON(w, status, ErrorResponse{Error: message, Code: code})
}
