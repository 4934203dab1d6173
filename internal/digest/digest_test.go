package digest

import (
	"testing"

	"github.com/stretchr/testify/require"

	"roomrelay/internal/protocol"
)

func TestBuild(t *testing.T) {
	req := require.New(t)
	room := protocol.Room{
		ID:    "r1",
		Name:  "lobby",
		Users: []string{"alice", "bob"},
		Admin: "alice",
		Messages: []protocol.Message{
			{By: "alice", Text: "hello"},
			{By: "carol", Text: "drive-by"},
			{By: "alice", Text: "bye"},
		},
	}

	out := Build(room)
	req.Contains(out, "**Room**: lobby (r1)")
	req.Contains(out, "**Admin**: alice")
	req.Contains(out, "**Members**: alice, bob")
	// carol left the room but still appears once among senders.
	req.Contains(out, "**Senders**: alice, carol")
	req.Contains(out, "**Messages**: 3")
	req.Contains(out, "**alice**: hello")
	req.Contains(out, "**carol**: drive-by")
}

func TestBuildEmptyRoom(t *testing.T) {
	out := Build(protocol.Room{ID: "r1", Name: "quiet", Users: []string{"u"}, Admin: "u"})
	require.Contains(t, out, "**Messages**: 0")
	require.Contains(t, out, "_No messages._")
}
