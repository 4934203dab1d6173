package protocol

import (
	"encoding/json"
	"fmt"
)

// Command types accepted on the wire, tagged by a "type" field.
const (
	CmdJoin            = "join"
	CmdCreateRoom      = "create_room"
	CmdInfo            = "info"
	CmdGetRooms        = "get_rooms"
	CmdGetClients      = "get_clients"
	CmdSendMessage     = "send_message"
	CmdListMessages    = "list_messages"
	CmdGetRoom         = "get_room"
	CmdListConnections = "list_connections"
	CmdLeaveRoom       = "leave_room"
)

// Command is a decoded client command. Only the fields relevant to the
// command's Type are populated.
type Command struct {
	Type     string `json:"type"`
	Room     string `json:"room,omitempty"`
	RoomName string `json:"room_name,omitempty"`
	Message  string `json:"message,omitempty"`
	User     string `json:"user,omitempty"`
}

// ParseCommand decodes a raw client frame into a Command. It returns an
// error for frames that are not JSON, carry an unknown type, or miss a
// required field; the caller decides how to answer (the dispatcher echoes).
func ParseCommand(raw []byte) (Command, error) {
	var cmd Command
	if err := json.Unmarshal(raw, &cmd); err != nil {
		return Command{}, fmt.Errorf("decode command: %w", err)
	}

	switch cmd.Type {
	case CmdInfo, CmdGetRooms, CmdGetClients, CmdListConnections:
		return cmd, nil
	case CmdJoin, CmdListMessages, CmdGetRoom:
		if cmd.Room == "" {
			return Command{}, fmt.Errorf("%s: missing room", cmd.Type)
		}
		return cmd, nil
	case CmdCreateRoom:
		if cmd.RoomName == "" {
			return Command{}, fmt.Errorf("%s: missing room_name", cmd.Type)
		}
		return cmd, nil
	case CmdSendMessage:
		if cmd.Room == "" {
			return Command{}, fmt.Errorf("%s: missing room", cmd.Type)
		}
		return cmd, nil
	case CmdLeaveRoom:
		if cmd.Room == "" {
			return Command{}, fmt.Errorf("%s: missing room", cmd.Type)
		}
		return cmd, nil
	case "":
		return Command{}, fmt.Errorf("missing command type")
	default:
		return Command{}, fmt.Errorf("unknown command type %q", cmd.Type)
	}
}
