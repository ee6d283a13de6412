// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package debugsrv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/jeranaias/sessionwatch/internal/config"
	"github.com/jeranaias/sessionwatch/internal/session"
)

// ============================================================================
// CONSTANTS
// ============================================================================

const (
	// DefaultAddr is the default listen address.
	DefaultAddr = "127.0.0.1:7787"

	shutdownTimeout = 5 * time.Second
)

var (
	// ErrNotLoopback is returned when asked to listen on a public address.
	ErrNotLoopback = errors.New("diagnostics server only listens on loopback")

	// ErrNotAttached is reported while no monitor is attached.
	ErrNotAttached = errors.New("no monitor attached")
)

// ============================================================================
// SERVER
// ============================================================================

// Server serves one monitor's diagnostics.
type Server struct {
	mu   sync.RWMutex
	diag *session.Diagnostics

	hub    *hub
	router *mux.Router
	logger *log.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// New creates a Server. Attach a monitor's diagnostics handle before serving
// actions; until then they answer 503.
func New(opts ...Option) *Server {
	s := &Server{
		hub:    newHub(),
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

// Attach binds the diagnostics handle.
func (s *Server) Attach(d *session.Diagnostics) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.diag = d
}

// Observer streams monitor events to WebSocket clients. It never blocks.
func (s *Server) Observer() session.Observer {
	return s.hub.broadcast
}

// Clients returns the number of connected event stream clients.
func (s *Server) Clients() int {
	return s.hub.count()
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(RecoveryMiddleware, LoopbackOnly, LoggingMiddleware(s.logger), NoStoreMiddleware)

	r.HandleFunc("/debug/session", s.handleState).Methods("GET")
	r.HandleFunc("/debug/session/reset", s.action(func(d *session.Diagnostics) { d.Reset() })).Methods("POST")
	r.HandleFunc("/debug/session/show-warning", s.action(func(d *session.Diagnostics) { d.ShowWarning() })).Methods("POST")
	r.HandleFunc("/debug/session/extend", s.action(func(d *session.Diagnostics) { d.ExtendSession() })).Methods("POST")
	r.HandleFunc("/debug/session/logout", s.action(func(d *session.Diagnostics) { d.Logout() })).Methods("POST")
	r.HandleFunc("/debug/session/events", s.handleEvents).Methods("GET")

	return r
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	if !config.IsLoopback(addr) {
		return fmt.Errorf("%w: %s", ErrNotLoopback, addr)
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("DEBUG_SERVER_STARTED | addr=%s", ln.Addr())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		s.hub.closeAll()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.hub.closeAll()
		err := srv.Shutdown(shutdownCtx)
		log.Printf("DEBUG_SERVER_STOPPED | addr=%s", ln.Addr())
		return err
	}
}

// ============================================================================
// HANDLERS
// ============================================================================

// configView is the monitor configuration in seconds.
type configView struct {
	WarningTimeSecs int    `json:"warning_time_secs"`
	LogoutTimeSecs  int    `json:"logout_time_secs"`
	LogoutURL       string `json:"logout_url"`
	KeepAliveURL    string `json:"keep_alive_url"`
}

// StateResponse is the body of GET /debug/session and of every action.
type StateResponse struct {
	ID     string        `json:"id"`
	State  session.State `json:"state"`
	Config configView    `json:"config"`
}

func (s *Server) diagnostics() *session.Diagnostics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.diag
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	d := s.diagnostics()
	if d == nil {
		writeError(w, http.StatusServiceUnavailable, ErrNotAttached)
		return
	}
	writeState(w, d)
}

func (s *Server) action(fn func(*session.Diagnostics)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d := s.diagnostics()
		if d == nil {
			writeError(w, http.StatusServiceUnavailable, ErrNotAttached)
			return
		}
		fn(d)
		writeState(w, d)
	}
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("DEBUG_WS_UPGRADE | error=%v", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer), hub: s.hub}
	s.hub.add(c)

	go c.writePump()
	go c.readPump()
}

func writeState(w http.ResponseWriter, d *session.Diagnostics) {
	cfg := d.Config()
	writeJSON(w, http.StatusOK, StateResponse{
		ID:    d.ID(),
		State: d.State(),
		Config: configView{
			WarningTimeSecs: int(cfg.SilentDuration / time.Second),
			LogoutTimeSecs:  int(cfg.WarningDuration / time.Second),
			LogoutURL:       cfg.LogoutURL,
			KeepAliveURL:    cfg.KeepAliveURL,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("DEBUG_RESPONSE_ENCODE_FAILED | error=%v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
