package server

import (
	"encoding/json"
	"net/http"
	"time"

	"roomrelay/internal/protocol"
	"roomrelay/internal/relay"
)

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status      string  `json:"status"`
	Uptime      string  `json:"uptime"`
	UptimeSec   float64 `json:"uptime_seconds"`
	Rooms       int     `json:"rooms"`
	Connections int     `json:"connections"`
}

// RoomList is the body of GET /api/rooms.
type RoomList struct {
	Rooms []protocol.Room `json:"rooms"`
	Count int             `json:"count"`
}

// Handlers holds references needed by the HTTP endpoints.
type Handlers struct {
	Registry  *relay.Registry
	Rooms     *relay.Store
	StartTime time.Time
}

// Health handles GET /api/health.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(h.StartTime)
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:      "ok",
		Uptime:      uptime.Round(time.Second).String(),
		UptimeSec:   uptime.Seconds(),
		Rooms:       h.Rooms.Len(),
		Connections: h.Registry.Len(),
	})
}

// ListRooms handles GET /api/rooms: the room directory without logs.
func (h *Handlers) ListRooms(w http.ResponseWriter, r *http.Request) {
	rooms := h.Rooms.ListRooms()
	summaries := make([]protocol.Room, len(rooms))
	for i, room := range rooms {
		summaries[i] = room.Summary()
	}
	writeJSON(w, http.StatusOK, RoomList{Rooms: summaries, Count: len(summaries)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
