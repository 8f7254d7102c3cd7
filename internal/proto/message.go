package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	ID   string          `json:"id,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

const (
	InboundTypeCreateRoom = "createRoom"
	InboundTypeJoinRoom   = "joinRoom"
	InboundTypeLeaveRoom  = "leaveRoom"
	InboundTypeCloseRoom  = "closeRoom"
	InboundTypeBuzzer     = "buzzer"
	InboundTypeSetName    = "setName"
	InboundTypeMessage    = "message"

	OutboundTypeEvent = "event"
	OutboundTypeAck   = "ack"
	OutboundTypeError = "error"
)

// CreateRoomData selects the buzz mode of a new room.
type CreateRoomData struct {
	BuzzMode string `json:"buzzMode" validate:"omitempty,oneof=single multiple"`
}

// JoinRoomData requests to join a specific room.
type JoinRoomData struct {
	RoomID string `json:"roomId" validate:"required,max=64"`
}

// SetNameData changes the display name.
type SetNameData struct {
	Name string `json:"name" validate:"max=64"`
}

// MessageData is a chat line from the client.
type MessageData struct {
	Text string `json:"text" validate:"required,max=2000"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	ID    string `json:"id,omitempty"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// User is one entry of a users snapshot.
type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	IsHost bool   `json:"isHost"`
}

// EventBuzzer announces an accepted buzz. Timestamp is a display string;
// TS carries the same instant in Unix milliseconds.
type EventBuzzer struct {
	Name      string `json:"name"`
	Timestamp string `json:"timestamp"`
	TS        int64  `json:"ts"`
}

// JoinAck answers joinRoom.
type JoinAck struct {
	OK     bool   `json:"ok"`
	RoomID string `json:"roomId,omitempty"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
