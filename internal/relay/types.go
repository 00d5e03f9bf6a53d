package relay

import "encoding/json"

// Frame kinds accepted from clients.
const (
	KindCreateRoom    = "create_room"
	KindJoinRoom      = "join_room"
	KindLeaveRoom     = "leave_room"
	KindGameEvent     = "game_event"
	KindDirectMessage = "direct_message"
)

// Frame kinds emitted by the relay.
const (
	KindWelcome      = "welcome"
	KindRoomCreated  = "room_created"
	KindRoomJoined   = "room_joined"
	KindPlayerJoined = "player_joined"
	KindPlayerLeft   = "player_left"
	KindError        = "error"
)

// Error codes carried by error frames.
const (
	CodeRoomNotFound     = "room_not_found"
	CodeCapacityExceeded = "capacity_exceeded"
	CodeInvalidMessage   = "invalid_message"
	CodeDeliveryFailed   = "delivery_failed"
)

// Frame is the single wire envelope for every message in either direction.
// Payload is opaque to the relay; it is forwarded verbatim and never inspected.
type Frame struct {
	Kind         string          `json:"kind"`
	RoomID       string          `json:"roomId,omitempty"`
	Target       string          `json:"target,omitempty"`
	Event        string          `json:"event,omitempty"`
	Payload      json.RawMessage `json:"payload,omitempty"`
	Sender       string          `json:"sender,omitempty"`
	ConnectionID string          `json:"connectionId,omitempty"`
	Members      []string        `json:"members,omitempty"`
	Code         string          `json:"code,omitempty"`
	Message      string          `json:"message,omitempty"`
}

type RoomRes struct {
	ID        string `json:"id"`
	Members   int    `json:"members"`
	CreatedAt int64  `json:"createdAt"`
}
