package relay

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"roomrelay/internal/metrics"
	"roomrelay/internal/protocol"
)

// Fanout delivers messages to room members and server-wide audiences.
// Delivery is fire-and-forget: it waits for a successful enqueue onto
// each recipient's queue, never for transport acknowledgment.
type Fanout struct {
	log      *slog.Logger
	registry *Registry
	rooms    *Store
}

func NewFanout(log *slog.Logger, registry *Registry, rooms *Store) *Fanout {
	return &Fanout{log: log, registry: registry, rooms: rooms}
}

// BroadcastToRoom appends the message to the room's log, then delivers a
// room_broadcast event to every member present in that atomic snapshot.
// A member missing from the registry is logged and skipped; it neither
// aborts delivery to other members nor rolls back the append. Returns
// the message's position in the room log.
func (f *Fanout) BroadcastToRoom(roomID, senderID, text string) (int, error) {
	room, pos, err := f.rooms.AppendMessage(roomID, senderID, text)
	if err != nil {
		return 0, err
	}

	frame, err := json.Marshal(protocol.NewRoomBroadcast(senderID, text))
	if err != nil {
		return pos, fmt.Errorf("encode broadcast: %w", err)
	}
	for _, member := range room.Users {
		if err := f.registry.Send(member, frame); err != nil {
			f.log.Warn("member not reachable, skipping", "room", roomID, "member", member)
		}
	}
	metrics.MessagesBroadcast.Inc()
	return pos, nil
}

// BroadcastToAll delivers an event to every currently registered
// connection, independent of room membership. Ids listed in except are
// skipped (room_available announcements exclude the creator).
func (f *Fanout) BroadcastToAll(event any, except ...string) error {
	frame, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	skip := make(map[string]struct{}, len(except))
	for _, id := range except {
		skip[id] = struct{}{}
	}
	for _, id := range f.registry.List() {
		if _, ok := skip[id]; ok {
			continue
		}
		if err := f.registry.Send(id, frame); err != nil {
			f.log.Warn("connection vanished during broadcast, skipping", "conn", id)
		}
	}
	return nil
}
