// Package server provides the local HTTP control and observation port.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ayusman/noel/internal/gesture"
	"github.com/ayusman/noel/internal/logging"
	"github.com/ayusman/noel/internal/mode"
	"github.com/ayusman/noel/internal/scene"
	"github.com/ayusman/noel/internal/server/api"
	"github.com/ayusman/noel/internal/store"
)

// ShutdownTimeout bounds how long Run waits for in-flight requests.
const ShutdownTimeout = 2 * time.Second

// Status is the live session state reported by /api/status.
type Status struct {
	Started     bool         `json:"started"`
	Mode        mode.Mode    `json:"mode"`
	Gesture     gesture.Kind `json:"gesture"`
	Hand        bool         `json:"hand"`
	Palm        gesture.Palm `json:"palm"`
	ActivePhoto int          `json:"active_photo"`
	// Samples counts gesture samples published since launch; zero means the
	// detection pipeline has produced nothing.
	Samples uint64 `json:"samples"`
}

// Controller is the running session as seen by the server.
type Controller interface {
	Status() Status
	Summary() scene.Summary
	// Start opens the intro gate, like a click on the window.
	Start()
}

// Config holds the server configuration.
type Config struct {
	Store      *store.Store
	Controller Controller
	Preview    Preview
	Logger     *log.Logger
}

// Server represents the HTTP server.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
	frames *FramesHandler
	stream *StreamHandler
	logger *log.Logger
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	logger := config.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
		logger: logger,
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Controller != nil {
		s.mux.HandleFunc("/api/status", s.handleStatus)
		s.mux.HandleFunc("/api/start", s.handleStart)

		s.frames = NewFramesHandler(s.config.Controller, s.logger)
		s.mux.Handle("/api/frames", s.frames)
	}

	if s.config.Store != nil {
		photos := api.NewPhotoHandler(s.config.Store)
		s.mux.Handle("/api/photos", photos)
		s.mux.Handle("/api/photos/", photos)
		s.mux.Handle("/api/settings/", api.NewSettingsHandler(s.config.Store))
	}

	if s.config.Preview != nil {
		s.stream = NewStreamHandler(s.config.Preview)
		s.mux.Handle("/api/stream", s.stream)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	})
}

// handleStatus handles GET /api/status.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.config.Controller.Status())
}

// handleStart handles POST /api/start. Starting twice is harmless.
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.config.Controller.Start()
	writeJSON(w, http.StatusOK, s.config.Controller.Status())
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
// The frame broadcaster runs for the same lifetime.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener. It closes ln.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}
	if s.stream != nil {
		srv.RegisterOnShutdown(s.stream.Close)
	}

	if s.frames != nil {
		go s.frames.Run(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
