package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Command
		wantErr bool
	}{
		{
			name: "join",
			raw:  `{"type":"join","room":"r1"}`,
			want: Command{Type: CmdJoin, Room: "r1"},
		},
		{
			name: "create room",
			raw:  `{"type":"create_room","room_name":"lobby"}`,
			want: Command{Type: CmdCreateRoom, RoomName: "lobby"},
		},
		{
			name: "send message",
			raw:  `{"type":"send_message","room":"r1","message":"hi"}`,
			want: Command{Type: CmdSendMessage, Room: "r1", Message: "hi"},
		},
		{
			name: "leave room with explicit user",
			raw:  `{"type":"leave_room","room":"r1","user":"u1"}`,
			want: Command{Type: CmdLeaveRoom, Room: "r1", User: "u1"},
		},
		{
			name: "info needs no fields",
			raw:  `{"type":"info"}`,
			want: Command{Type: CmdInfo},
		},
		{
			name:    "join without room",
			raw:     `{"type":"join"}`,
			wantErr: true,
		},
		{
			name:    "create room without name",
			raw:     `{"type":"create_room"}`,
			wantErr: true,
		},
		{
			name:    "unknown type",
			raw:     `{"type":"dance"}`,
			wantErr: true,
		},
		{
			name:    "missing type",
			raw:     `{"room":"r1"}`,
			wantErr: true,
		},
		{
			name:    "not json",
			raw:     `hello there`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCommand([]byte(tt.raw))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestRoomWireShape(t *testing.T) {
	req := require.New(t)
	room := Room{
		ID:       "r1",
		Name:     "lobby",
		Users:    []string{"u1", "u2"},
		Admin:    "u1",
		Messages: []Message{{By: "u2", Text: "hi"}},
	}

	data, err := json.Marshal(room)
	req.NoError(err)
	req.JSONEq(`{
		"room": "r1",
		"room_name": "lobby",
		"users": ["u1", "u2"],
		"admin": "u1",
		"messages": [{"by": "u2", "message": "hi"}]
	}`, string(data))

	// Summaries drop the log entirely instead of sending an empty array.
	data, err = json.Marshal(room.Summary())
	req.NoError(err)
	req.NotContains(string(data), "messages")
}

func TestRoomsAvailableStripsMessages(t *testing.T) {
	req := require.New(t)
	rooms := []Room{
		{ID: "r1", Name: "a", Users: []string{"u1"}, Admin: "u1", Messages: []Message{{By: "u1", Text: "hi"}}},
		{ID: "r2", Name: "b", Users: []string{"u2"}, Admin: "u2"},
	}

	ev := NewRoomsAvailable(rooms)
	req.Equal(EventRoomsAvailable, ev.Type)
	req.Len(ev.Rooms, 2)
	for _, r := range ev.Rooms {
		req.Nil(r.Messages)
	}
	// The input is untouched.
	req.Len(rooms[0].Messages, 1)
}

func TestEventTypeTags(t *testing.T) {
	req := require.New(t)

	cases := []struct {
		event    any
		wantType string
	}{
		{NewInfo("u1"), EventInfo},
		{NewRoomJoined("r1", "lobby"), EventRoomJoined},
		{NewRoomCreated("r1", "lobby"), EventRoomCreated},
		{NewRoomAvailable("r1", "lobby"), EventRoomAvailable},
		{NewRoomLeft("r1", "lobby"), EventRoomLeft},
		{NewRoomBroadcast("u1", "hi"), EventRoomBroadcast},
		{NewListMessages(nil), EventListMessages},
		{NewRoomsAvailable(nil), EventRoomsAvailable},
		{NewListClients(nil), EventListClients},
		{NewListConnections(nil), EventListConnections},
		{NewError("nope"), EventError},
	}
	for _, c := range cases {
		data, err := json.Marshal(c.event)
		req.NoError(err)
		var tagged struct {
			Type string `json:"type"`
		}
		req.NoError(json.Unmarshal(data, &tagged))
		req.Equal(c.wantType, tagged.Type)
	}
}

func TestEmptyCollectionsEncodeAsArrays(t *testing.T) {
	req := require.New(t)

	data, err := json.Marshal(NewListMessages(nil))
	req.NoError(err)
	req.JSONEq(`{"type":"list_messages","messages":[]}`, string(data))

	data, err = json.Marshal(NewListClients(nil))
	req.NoError(err)
	req.JSONEq(`{"type":"list_clients","clients":[]}`, string(data))

	data, err = json.Marshal(NewListConnections(nil))
	req.NoError(err)
	req.JSONEq(`{"type":"list_connections","connections":[],"total":0}`, string(data))
}
