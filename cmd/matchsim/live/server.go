package live

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Server is the HTTP/WebSocket frontend for a running match.
type Server struct {
	router *chi.Mux
	hub    *Hub
}

// NewServer builds a router exposing GET /state (a single StateView
// snapshot), GET /ws (a live stream of snapshots) and GET /healthz.
// getState is called on every request and every broadcast tick, so it
// must be safe to call concurrently with match.ApplyMove — callers
// typically guard it with the same mutex that serializes ApplyMove.
func NewServer(getState func() StateView) *Server {
	hub := NewHub()
	go hub.Run()

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods: []string{"GET"},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Get("/state", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(getState())
	})
	r.Get("/ws", hub.ServeHTTP)

	stop := make(chan struct{})
	go hub.BroadcastLoop(100*time.Millisecond, getState, stop)

	return &Server{router: r, hub: hub}
}

// Start blocks serving addr until the listener fails.
func (s *Server) Start(addr string) error {
	return http.ListenAndServe(addr, s.router)
}

// ViewerCount reports how many WebSocket viewers are currently connected.
func (s *Server) ViewerCount() int {
	return s.hub.ClientCount()
}
