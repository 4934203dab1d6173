package protocol

// Event types emitted to clients, tagged by a "type" field.
const (
	EventInfo            = "info"
	EventRoomJoined      = "room_joined"
	EventRoomCreated     = "room_created"
	EventRoomAvailable   = "room_available"
	EventRoomBroadcast   = "room_broadcast"
	EventListMessages    = "list_messages"
	EventRoomLeft        = "room_left"
	EventRoomsAvailable  = "rooms_available"
	EventListClients     = "list_clients"
	EventListConnections = "list_connections"
	EventError           = "error"
)

// Message is one entry in a room's log.
type Message struct {
	By   string `json:"by"`
	Text string `json:"message"`
}

// Room is the wire representation of a room record. Messages is omitted
// in directory listings.
type Room struct {
	ID       string    `json:"room"`
	Name     string    `json:"room_name"`
	Users    []string  `json:"users"`
	Admin    string    `json:"admin"`
	Messages []Message `json:"messages,omitempty"`
}

// Summary returns a copy of the room without its message log, for
// directory events.
func (r Room) Summary() Room {
	r.Messages = nil
	return r
}

// InfoEvent answers an "info" command with the caller's connection id.
type InfoEvent struct {
	Type   string `json:"type"`
	UserID string `json:"user_id"`
}

func NewInfo(userID string) InfoEvent {
	return InfoEvent{Type: EventInfo, UserID: userID}
}

// RoomEvent covers room_joined, room_created, room_available and room_left,
// which all carry the same two fields.
type RoomEvent struct {
	Type     string `json:"type"`
	RoomID   string `json:"room_id"`
	RoomName string `json:"room_name"`
}

func NewRoomJoined(roomID, roomName string) RoomEvent {
	return RoomEvent{Type: EventRoomJoined, RoomID: roomID, RoomName: roomName}
}

func NewRoomCreated(roomID, roomName string) RoomEvent {
	return RoomEvent{Type: EventRoomCreated, RoomID: roomID, RoomName: roomName}
}

func NewRoomAvailable(roomID, roomName string) RoomEvent {
	return RoomEvent{Type: EventRoomAvailable, RoomID: roomID, RoomName: roomName}
}

func NewRoomLeft(roomID, roomName string) RoomEvent {
	return RoomEvent{Type: EventRoomLeft, RoomID: roomID, RoomName: roomName}
}

// BroadcastEvent is a message fanned out to every member of a room.
type BroadcastEvent struct {
	Type    string `json:"type"`
	By      string `json:"by"`
	Message string `json:"message"`
}

func NewRoomBroadcast(by, message string) BroadcastEvent {
	return BroadcastEvent{Type: EventRoomBroadcast, By: by, Message: message}
}

// MessagesEvent answers a list_messages command with a room's log.
type MessagesEvent struct {
	Type     string    `json:"type"`
	Messages []Message `json:"messages"`
}

func NewListMessages(messages []Message) MessagesEvent {
	if messages == nil {
		messages = []Message{}
	}
	return MessagesEvent{Type: EventListMessages, Messages: messages}
}

// RoomsEvent carries the room directory.
type RoomsEvent struct {
	Type  string `json:"type"`
	Rooms []Room `json:"rooms"`
}

func NewRoomsAvailable(rooms []Room) RoomsEvent {
	summaries := make([]Room, len(rooms))
	for i, r := range rooms {
		summaries[i] = r.Summary()
	}
	return RoomsEvent{Type: EventRoomsAvailable, Rooms: summaries}
}

// ClientsEvent answers a get_clients command.
type ClientsEvent struct {
	Type    string   `json:"type"`
	Clients []string `json:"clients"`
}

func NewListClients(clients []string) ClientsEvent {
	if clients == nil {
		clients = []string{}
	}
	return ClientsEvent{Type: EventListClients, Clients: clients}
}

// ConnectionsEvent answers a list_connections command.
type ConnectionsEvent struct {
	Type        string   `json:"type"`
	Connections []string `json:"connections"`
	Total       int      `json:"total"`
}

func NewListConnections(connections []string) ConnectionsEvent {
	if connections == nil {
		connections = []string{}
	}
	return ConnectionsEvent{Type: EventListConnections, Connections: connections, Total: len(connections)}
}

// ErrorEvent reports a failed command back to its issuer. The connection
// stays open.
type ErrorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func NewError(message string) ErrorEvent {
	return ErrorEvent{Type: EventError, Message: message}
}
