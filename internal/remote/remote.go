// Package remote exposes the gallery controls over HTTP and a websocket so
// another device can drive a running viewer.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
)

// Actions accepted in a Command
var Actions = []string{
	"next", "prev", "goto", "play", "pause", "toggle-play", "close",
	"zoom-in", "zoom-out", "zoom", "autofit", "theme", "fullscreen",
	"menu", "download", "control",
}

// Command is one call of the control surface
type Command struct {
	Action string  `json:"action"`
	Index  int     `json:"index,omitempty"`  // goto
	Factor float64 `json:"factor,omitempty"` // zoom
	Name   string  `json:"name,omitempty"`   // control, theme
}

// Validate checks the action and its arguments
func (c Command) Validate() error {
	known := false
	for _, a := range Actions {
		if a == c.Action {
			known = true
			break
		}
	}
	switch {
	case !known:
		return fmt.Errorf("unknown action %q", c.Action)
	case c.Action == "goto" && c.Index < 1:
		return fmt.Errorf("goto needs an index >= 1")
	case c.Action == "zoom" && c.Factor <= 0:
		return fmt.Errorf("zoom needs a positive factor")
	case c.Action == "control" && c.Name == "":
		return fmt.Errorf("control needs a name")
	}
	return nil
}

// Status is the state pushed to clients after every change
type Status struct {
	Open    bool    `json:"open"`
	Slide   int     `json:"slide"`
	Count   int     `json:"count"`
	Scale   float64 `json:"scale"`
	Playing bool    `json:"playing"`
	Theme   string  `json:"theme,omitempty"`
	Src     string  `json:"src,omitempty"`
	Title   string  `json:"title,omitempty"`
}

// Target is the viewer side. Dispatch must be safe to call from any
// goroutine; it normally queues the command for the UI loop.
type Target interface {
	Dispatch(cmd Command)
	Status() Status
}

// Config holds server configuration
type Config struct {
	Addr     string
	AllowAll bool // allow all CORS origins
}

// Server serves the remote control API
type Server struct {
	cfg        Config
	target     Target
	router     chi.Router
	hub        *hub
	upgrader   websocket.Upgrader
	httpServer *http.Server
}

// New creates a server for target
func New(cfg Config, target Target) *Server {
	s := &Server{
		cfg:    cfg,
		target: target,
		hub:    newHub(),
	}
	s.upgrader = websocket.Upgrader{CheckOrigin: s.allowedOrigin}
	s.router = s.buildRouter()
	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	corsOpts := cors.Options{
		AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))
	r.Use(s.requireOrigin)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Post("/commands", s.handleCommand)
		r.Post("/goto/{index}", s.handleGoto)
	})
	r.Get("/ws", s.handleWebSocket)

	return r
}

// allowedOrigin accepts requests without an Origin header (non-browser
// clients), same-origin requests and local pages. Any origin passes with
// AllowAll.
func (s *Server) allowedOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || s.cfg.AllowAll {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if strings.EqualFold(u.Host, r.Host) {
		return true
	}
	switch u.Hostname() {
	case "localhost", "127.0.0.1":
		return u.Scheme == "http"
	}
	return false
}

// requireOrigin rejects cross-site requests. CORS alone leaves simple
// POSTs from foreign pages able to dispatch commands.
func (s *Server) requireOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.allowedOrigin(r) {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "origin not allowed"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Handler returns the HTTP handler, mainly for tests
func (s *Server) Handler() http.Handler { return s.router }

// Start listens on the configured address. It blocks until the server is
// shut down.
func (s *Server) Start() error {
	log.Printf("Remote control listening on %s", s.cfg.Addr)
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops the server and disconnects websocket clients
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.closeAll()
	return s.httpServer.Shutdown(ctx)
}

// Broadcast pushes st to every websocket client. Slow clients miss
// updates rather than block the caller.
func (s *Server) Broadcast(st Status) {
	s.hub.broadcast(st)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.target.Status())
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var cmd Command
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	s.dispatch(w, cmd)
}

func (s *Server) handleGoto(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "index must be a number"})
		return
	}
	s.dispatch(w, Command{Action: "goto", Index: index})
}

func (s *Server) dispatch(w http.ResponseWriter, cmd Command) {
	if err := cmd.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	s.target.Dispatch(cmd)
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
