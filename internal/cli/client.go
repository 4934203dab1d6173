package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"roomrelay/internal/protocol"
	"roomrelay/internal/server"
)

var httpClient = &http.Client{Timeout: 10 * time.Second}

func apiURL(base, path string) string {
	return strings.TrimRight(base, "/") + path
}

func getRooms(base string) (*server.RoomList, error) {
	url := apiURL(base, "/api/rooms")
	resp, err := httpClient.Get(url)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}

	var list server.RoomList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &list, nil
}

// dialWS opens the command WebSocket against the server base URL.
func dialWS(base string) (*websocket.Conn, error) {
	u := strings.TrimRight(base, "/")
	u = strings.Replace(u, "https://", "wss://", 1)
	u = strings.Replace(u, "http://", "ws://", 1)
	conn, _, err := websocket.DefaultDialer.Dial(u+"/ws", nil)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", u, err)
	}
	return conn, nil
}

// serverEvent is a loose union of every event the server emits; only the
// fields matching the Type are set.
type serverEvent struct {
	Type        string             `json:"type"`
	UserID      string             `json:"user_id,omitempty"`
	RoomID      string             `json:"room_id,omitempty"`
	RoomName    string             `json:"room_name,omitempty"`
	By          string             `json:"by,omitempty"`
	Message     string             `json:"message,omitempty"`
	Messages    []protocol.Message `json:"messages,omitempty"`
	Rooms       []protocol.Room    `json:"rooms,omitempty"`
	Clients     []string           `json:"clients,omitempty"`
	Connections []string           `json:"connections,omitempty"`
	Total       int                `json:"total,omitempty"`
}

// awaitEvent reads frames until one of the wanted event types (or an
// error event) arrives. Non-JSON frames, such as echoes, are skipped.
func awaitEvent(conn *websocket.Conn, timeout time.Duration, wanted ...string) (serverEvent, error) {
	deadline := time.Now().Add(timeout)
	conn.SetReadDeadline(deadline)
	for {
		var ev serverEvent
		_, data, err := conn.ReadMessage()
		if err != nil {
			return serverEvent{}, fmt.Errorf("read: %w", err)
		}
		if err := json.Unmarshal(data, &ev); err != nil {
			continue
		}
		if ev.Type == protocol.EventError {
			return ev, fmt.Errorf("server error: %s", ev.Message)
		}
		for _, t := range wanted {
			if ev.Type == t {
				conn.SetReadDeadline(time.Time{})
				return ev, nil
			}
		}
	}
}

// formatEvent renders a server event for terminal output.
func formatEvent(ev serverEvent) string {
	ts := time.Now().Format("15:04:05")
	switch ev.Type {
	case protocol.EventRoomBroadcast:
		return fmt.Sprintf("[%s] %s: %s", ts, shortID(ev.By), ev.Message)
	case protocol.EventRoomJoined:
		return fmt.Sprintf("[%s] --- joined room %q (%s)", ts, ev.RoomName, ev.RoomID)
	case protocol.EventRoomAvailable:
		return fmt.Sprintf("[%s] --- new room available: %q (%s)", ts, ev.RoomName, ev.RoomID)
	case protocol.EventRoomLeft:
		return fmt.Sprintf("[%s] --- left room %q", ts, ev.RoomName)
	case protocol.EventRoomsAvailable:
		names := make([]string, len(ev.Rooms))
		for i, r := range ev.Rooms {
			names[i] = r.Name
		}
		return fmt.Sprintf("[%s] --- rooms: %s", ts, strings.Join(names, ", "))
	case protocol.EventError:
		return fmt.Sprintf("[%s] !!! %s", ts, ev.Message)
	default:
		return fmt.Sprintf("[%s] (%s)", ts, ev.Type)
	}
}

// shortID trims uuid senders down to something readable.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
