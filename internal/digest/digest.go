// Package digest renders a room's message log as a markdown transcript.
package digest

import (
	"fmt"
	"strings"
	"time"

	"roomrelay/internal/protocol"
)

// Build creates a markdown digest of a room record: participants, counts
// and the full transcript in log order.
func Build(room protocol.Room) string {
	var b strings.Builder

	now := time.Now().Local().Format("2006-01-02 15:04")

	fmt.Fprintf(&b, "# Room Digest — %s\n\n", now)
	fmt.Fprintf(&b, "**Room**: %s (%s)\n", room.Name, room.ID)
	fmt.Fprintf(&b, "**Admin**: %s\n", room.Admin)
	fmt.Fprintf(&b, "**Members**: %s\n", strings.Join(room.Users, ", "))

	// Senders may include users who already left the room.
	seen := map[string]bool{}
	senders := make([]string, 0, len(room.Users))
	for _, msg := range room.Messages {
		if !seen[msg.By] {
			seen[msg.By] = true
			senders = append(senders, msg.By)
		}
	}
	fmt.Fprintf(&b, "**Senders**: %s\n", strings.Join(senders, ", "))
	fmt.Fprintf(&b, "**Messages**: %d\n", len(room.Messages))
	fmt.Fprintf(&b, "\n---\n\n## Transcript\n\n")

	if len(room.Messages) == 0 {
		b.WriteString("_No messages._\n")
		return b.String()
	}
	for _, msg := range room.Messages {
		fmt.Fprintf(&b, "**%s**: %s\n\n", msg.By, msg.Text)
	}
	return b.String()
}
