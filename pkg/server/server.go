// Package server exposes the reasoning sessions over an HTTP API. Each
// session is created explicitly, holds its own vector memory, and is
// addressed by a generated session id.
package server

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/cogmap/pkg/model"
	"github.com/m-mizutani/cogmap/pkg/usecase/session"
	"github.com/m-mizutani/cogmap/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// SessionFactory builds a fresh session with its own store; invoked
// once per created session.
type SessionFactory func() (*session.Session, error)

// Server is the HTTP server for the cogmap API.
type Server struct {
	addr       string
	newSession SessionFactory

	mu       sync.RWMutex
	sessions map[model.SessionID]*session.Session

	httpServer *http.Server
}

// New creates a server listening on addr, creating sessions through
// the given factory.
func New(addr string, factory SessionFactory) *Server {
	return &Server{
		addr:       addr,
		newSession: factory,
		sessions:   map[model.SessionID]*session.Session{},
	}
}

// Router assembles the chi router for the API.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Post("/api/v1/sessions", s.handleCreateSession)
	r.Route("/api/v1/sessions/{id}", func(r chi.Router) {
		r.Post("/reason", s.handleReason)
		r.Post("/search", s.handleSearch)
		r.Get("/graph", s.handleGraph)
		r.Get("/stats", s.handleStats)
		r.Post("/clear", s.handleClear)
	})
	r.Get("/health", s.handleHealth)

	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	logging.From(ctx).Info("starting HTTP server", "addr", s.addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return goerr.Wrap(err, "http server failed", goerr.V("addr", s.addr))
	}
	return nil
}

// Shutdown stops the HTTP server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return goerr.Wrap(err, "failed to shutdown http server")
	}
	return nil
}

func (s *Server) getSession(id model.SessionID) (*session.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

func (s *Server) addSession(id model.SessionID, sess *session.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = sess
}
