package server

import (
	"net/http"
	"time"

	"roomrelay/internal/metrics"
	"roomrelay/internal/relay"
)

// New creates a configured HTTP server with all routes registered.
func New(addr string, disp *Dispatcher, registry *relay.Registry, rooms *relay.Store) *http.Server {
	mux := http.NewServeMux()
	h := &Handlers{
		Registry:  registry,
		Rooms:     rooms,
		StartTime: time.Now(),
	}

	mux.HandleFunc("GET /api/health", h.Health)
	mux.HandleFunc("GET /api/rooms", h.ListRooms)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		ServeWS(disp, w, r)
	})

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
