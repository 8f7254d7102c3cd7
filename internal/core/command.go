package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandCreateRoom creates a room hosted by the caller.
	CommandCreateRoom CommandKind = iota
	// CommandJoinRoom adds the caller to an existing room.
	CommandJoinRoom
	// CommandLeaveRoom removes the caller from its room. Hosts are refused.
	CommandLeaveRoom
	// CommandCloseRoom deletes the caller's room. Host only.
	CommandCloseRoom
	// CommandBuzz presses the buzzer in the caller's room.
	CommandBuzz
	// CommandSetName changes the caller's display name.
	CommandSetName
	// CommandSendMessage relays a chat line to the caller's room.
	CommandSendMessage
)

var commandNames = [...]string{
	CommandCreateRoom:  "createRoom",
	CommandJoinRoom:    "joinRoom",
	CommandLeaveRoom:   "leaveRoom",
	CommandCloseRoom:   "closeRoom",
	CommandBuzz:        "buzzer",
	CommandSetName:     "setName",
	CommandSendMessage: "message",
}

func (k CommandKind) String() string {
	if int(k) < len(commandNames) {
		return commandNames[k]
	}
	return "unknown"
}

// Command represents an action requested by a client.
type Command struct {
	Kind CommandKind
	// RequestID is echoed on acknowledgements so transports can correlate them.
	RequestID string
	Room      string
	Mode      BuzzMode
	Name      string
	Text      string
	// Reply, when set, receives the acknowledgement instead of the client's
	// event stream. The hub closes it once the command has been handled.
	Reply chan *Event
}
