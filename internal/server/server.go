// Package server implements the Black Oil game server: a REST API over the
// session store and a WebSocket endpoint for interactive play.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"black-oil/internal/game"
	"black-oil/internal/metrics"
	"black-oil/internal/store"
)

// Server is the main game server.
type Server struct {
	store    store.Store
	sessions *Sessions
	hub      *Hub
	log      *slog.Logger
	upgrader websocket.Upgrader
	origins  []string
	addr     string
	server   *http.Server
	hubOnce  sync.Once
}

// Config holds server configuration.
type Config struct {
	Addr           string
	Store          store.Store
	Catalog        *game.Catalog
	Logger         *slog.Logger
	AllowedOrigins []string // "*" allows any origin
}

// New creates a new server.
func New(cfg Config) *Server {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	catalog := cfg.Catalog
	if catalog == nil {
		catalog, _ = game.NewCatalog()
	}
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	sessions := NewSessions(cfg.Store, catalog, log)
	handlers := NewHandlers(sessions, log)
	hub := NewHub(handlers, log)
	handlers.hub = hub

	s := &Server{
		store:    cfg.Store,
		sessions: sessions,
		hub:      hub,
		log:      log,
		origins:  origins,
		addr:     cfg.Addr,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

// Handler returns the HTTP routes and starts the hub on first use.
func (s *Server) Handler() http.Handler {
	s.hubOnce.Do(func() { go s.hub.Run() })

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(s.cors)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","service":"blackoil"}`))
	})
	r.Handle("/metrics", metrics.Handler())
	r.Get("/ws", s.handleWebSocket)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))
		r.Get("/scenarios", s.handleListScenarios)
		r.Get("/sessions", s.handleListSessions)
		r.Post("/sessions", s.handleCreateSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.Post("/actions", s.handleAction)
			r.Post("/next-day", s.handleNextDay)
			r.Get("/offers", s.handleOffers)
			r.Get("/reports", s.handleReports)
		})
	})
	return r
}

// Start serves until Stop is called.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	s.log.Info("blackoil server listening", "addr", s.addr, "websocket", "/ws")
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server and closes the store.
func (s *Server) Stop(ctx context.Context) error {
	s.hub.Stop()
	if s.server != nil {
		if err := s.server.Shutdown(ctx); err != nil {
			return err
		}
	}
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "err", err)
		return
	}

	client := NewClient(s.hub, conn)
	s.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	return origin == "" || slices.Contains(s.origins, "*") || slices.Contains(s.origins, origin)
}

// cors answers preflight requests and sets the allowed origin.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" && s.checkOrigin(r) {
			allowed := origin
			if slices.Contains(s.origins, "*") {
				allowed = "*"
			}
			w.Header().Set("Access-Control-Allow-Origin", allowed)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
