package server

import (
	"encoding/json"
	"log/slog"

	"roomrelay/internal/protocol"
	"roomrelay/internal/relay"
)

// Dispatcher translates decoded client commands into calls against the
// connection registry, the room store and the fanout, and replies to the
// issuing connection through its delivery queue. A failed command turns
// into an error event; the connection stays open.
type Dispatcher struct {
	log      *slog.Logger
	registry *relay.Registry
	rooms    *relay.Store
	fanout   *relay.Fanout
}

func NewDispatcher(log *slog.Logger, registry *relay.Registry, rooms *relay.Store, fanout *relay.Fanout) *Dispatcher {
	return &Dispatcher{log: log, registry: registry, rooms: rooms, fanout: fanout}
}

// Dispatch handles one raw inbound frame from connID. Malformed or
// unrecognized payloads get an echo response, not an error.
func (d *Dispatcher) Dispatch(connID string, raw []byte) {
	cmd, err := protocol.ParseCommand(raw)
	if err != nil {
		d.log.Warn("invalid command, echoing", "conn", connID, "err", err)
		if err := d.registry.Send(connID, []byte("Echo: "+string(raw))); err != nil {
			d.log.Warn("echo undeliverable", "conn", connID, "err", err)
		}
		return
	}

	switch cmd.Type {
	case protocol.CmdInfo:
		d.reply(connID, protocol.NewInfo(connID))

	case protocol.CmdJoin:
		room, err := d.rooms.Join(cmd.Room, connID)
		if err != nil {
			d.log.Warn("join failed", "conn", connID, "room", cmd.Room, "err", err)
			d.reply(connID, protocol.NewError("Room not found"))
			return
		}
		d.reply(connID, protocol.NewRoomJoined(room.ID, room.Name))
		d.log.Info("user joined room", "conn", connID, "room", room.ID)

	case protocol.CmdCreateRoom:
		room := d.rooms.Create(cmd.RoomName, connID)
		d.reply(connID, protocol.NewRoomCreated(room.ID, room.Name))
		// Everyone but the creator learns a new room is available.
		if err := d.fanout.BroadcastToAll(protocol.NewRoomAvailable(room.ID, room.Name), connID); err != nil {
			d.log.Error("announce room", "room", room.ID, "err", err)
		}
		d.log.Info("room created", "conn", connID, "room", room.ID, "name", room.Name)

	case protocol.CmdGetRooms:
		d.reply(connID, protocol.NewRoomsAvailable(d.rooms.ListRooms()))

	case protocol.CmdSendMessage:
		if _, err := d.fanout.BroadcastToRoom(cmd.Room, connID, cmd.Message); err != nil {
			d.log.Warn("broadcast failed", "conn", connID, "room", cmd.Room, "err", err)
			d.reply(connID, protocol.NewError("Room not found"))
		}

	case protocol.CmdListMessages:
		// An unknown room answers with an empty log rather than an error.
		room, err := d.rooms.Get(cmd.Room)
		if err != nil {
			d.reply(connID, protocol.NewListMessages(nil))
			return
		}
		d.reply(connID, protocol.NewListMessages(room.Messages))

	case protocol.CmdGetRoom:
		room, err := d.rooms.Get(cmd.Room)
		if err != nil {
			d.reply(connID, protocol.NewError("Room not found"))
			return
		}
		d.reply(connID, room)

	case protocol.CmdLeaveRoom:
		user := cmd.User
		if user == "" {
			user = connID
		}
		room, deleted, err := d.rooms.Leave(cmd.Room, user)
		if err != nil {
			d.reply(connID, protocol.NewError("Room not found"))
			return
		}
		d.reply(connID, protocol.NewRoomLeft(room.ID, room.Name))
		if deleted {
			if err := d.fanout.BroadcastToAll(protocol.NewRoomsAvailable(d.rooms.ListRooms())); err != nil {
				d.log.Error("announce room directory", "err", err)
			}
		}

	case protocol.CmdGetClients:
		d.reply(connID, protocol.NewListClients(d.registry.List()))

	case protocol.CmdListConnections:
		d.reply(connID, protocol.NewListConnections(d.registry.List()))
	}
}

// Disconnect finishes a closing connection: it deregisters the id and
// issues one leave per room the user belonged to. Deleted rooms trigger
// a directory broadcast so clients drop stale entries.
func (d *Dispatcher) Disconnect(connID string) {
	d.registry.Unregister(connID)
	deleted := d.rooms.LeaveAll(connID)
	if len(deleted) > 0 {
		if err := d.fanout.BroadcastToAll(protocol.NewRoomsAvailable(d.rooms.ListRooms())); err != nil {
			d.log.Error("announce room directory", "err", err)
		}
	}
}

func (d *Dispatcher) reply(connID string, event any) {
	frame, err := json.Marshal(event)
	if err != nil {
		d.log.Error("encode reply", "conn", connID, "err", err)
		return
	}
	if err := d.registry.Send(connID, frame); err != nil {
		d.log.Warn("reply undeliverable", "conn", connID, "err", err)
	}
}
