package core

import "time"

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventUsers delivers a membership snapshot.
	EventUsers EventKind = iota
	// EventNotification carries free-text room notices (joins, departures, welcome).
	EventNotification
	// EventBuzzer announces an accepted buzz.
	EventBuzzer
	// EventMessage relays a chat line.
	EventMessage
	// EventRoomClosed tells former members their room is gone.
	EventRoomClosed

	// Caller-only acknowledgements and notices.

	// EventRoomCreated acknowledges createRoom with the new room id.
	EventRoomCreated
	// EventJoinAck acknowledges joinRoom with success or failure.
	EventJoinAck
	// EventLeaveAck acknowledges a successful leaveRoom.
	EventLeaveAck
	// EventHostLeaveRejected tells a host that leaveRoom is not allowed.
	EventHostLeaveRejected
	// EventBuzzRejected tells a participant its repeated buzz was refused.
	EventBuzzRejected
	// EventError notifies clients about a protocol or domain error.
	EventError
)

var eventNames = [...]string{
	EventUsers:             "users",
	EventNotification:      "notification",
	EventBuzzer:            "buzzer",
	EventMessage:           "message",
	EventRoomClosed:        "roomClosed",
	EventRoomCreated:       "roomCreated",
	EventJoinAck:           "joinRoom",
	EventLeaveAck:          "leaveRoom",
	EventHostLeaveRejected: "hostLeaveRoomAttempt",
	EventBuzzRejected:      "buzzRejected",
	EventError:             "error",
}

// String returns the wire name of the event.
func (k EventKind) String() string {
	if int(k) < len(eventNames) {
		return eventNames[k]
	}
	return "unknown"
}

// IsAck reports whether the event answers a specific request.
func (k EventKind) IsAck() bool {
	switch k {
	case EventRoomCreated, EventJoinAck, EventLeaveAck, EventHostLeaveRejected:
		return true
	}
	return false
}

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind      EventKind
	RequestID string
	Room      string
	Text      string
	OK        bool
	Users     []Member
	Buzz      *Buzz
	Error     *CoreError
}

// Buzz is the payload of an accepted buzz. At is display data only; the
// delivery order of buzz events is what ranks them.
type Buzz struct {
	Name string
	At   time.Time
}
