// Package server provides the HTTP server for airtype: the renderer state
// WebSocket, the camera stream and the REST API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ayusman/airtype/internal/plugin"
	"github.com/ayusman/airtype/internal/server/api"
	"github.com/ayusman/airtype/internal/store"
)

// Config holds the server configuration. Routes whose dependency is nil
// are not registered.
type Config struct {
	StaticDir  string
	Store      *store.Store
	Frames     FrameSource
	Controller api.Controller
	Plugins    *plugin.Manager
	Hub        *StateHub
}

// Server represents the HTTP server for airtype.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) handle(path string, h http.Handler) {
	s.mux.Handle(path, h)
	s.mux.Handle(path+"/", h)
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Hub != nil {
		s.mux.Handle("/api/state", s.config.Hub)
	}

	if s.config.Frames != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Frames))
	}

	if s.config.Store != nil {
		s.handle("/api/sessions", api.NewSessionHandler(s.config.Store))
		s.handle("/api/hooks", api.NewHookHandler(s.config.Store, s.config.Plugins))
	}

	if s.config.Controller != nil {
		s.mux.Handle("/api/settings", api.NewSettingsHandler(s.config.Controller))
		s.mux.Handle("/api/text", api.NewTextHandler(s.config.Controller))
	}

	if s.config.Plugins != nil {
		s.mux.Handle("/api/plugins", api.NewPluginHandler(s.config.Plugins))
	}

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
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

	response := map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}
	if s.config.Hub != nil {
		response["clients"] = s.config.Hub.Clients()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}

// Run serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	if s.config.Hub != nil {
		s.config.Hub.Close()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
