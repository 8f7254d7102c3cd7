package core

import (
	"strings"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/buzzer-server/internal/utils"
)

const (
	noticeHostCannotLeave = "You are the host. Close the room instead of leaving it."
	noticeAlreadyBuzzed   = "You have already buzzed in this room."
	noticeRoomClosed      = "The room has been closed by the host."
	noticeHostLeft        = "The host has left. The room is closed."
	leaveSuccess          = "success"
)

// Delivery is one outbound event and the connections that must receive it.
type Delivery struct {
	To    []string
	Event *Event
}

// CoordinatorOptions configures a Coordinator. Zero values pick defaults.
type CoordinatorOptions struct {
	// NewRoomID generates room ids; defaults to utils.NewRoomID(3).
	NewRoomID func() string
	// Clock stamps buzz events; defaults to the wall clock.
	Clock clock.Clock
	// AnnounceUsersOnConnect sends every new connection the list of connected users.
	AnnounceUsersOnConnect bool
	Logger                 *zerolog.Logger
}

// Coordinator applies client commands to the room state. Each call runs under
// a single lock, so no command observes another one half-applied.
type Coordinator struct {
	mu            sync.Mutex
	registry      *Registry
	gate          *BuzzGate
	rooms         *Directory
	clock         clock.Clock
	announceUsers bool
	log           *zerolog.Logger
}

// NewCoordinator builds a coordinator with empty state.
func NewCoordinator(opts CoordinatorOptions) *Coordinator {
	if opts.NewRoomID == nil {
		opts.NewRoomID = func() string { return utils.NewRoomID(utils.DefaultRoomIDBytes) }
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Logger == nil {
		nop := zerolog.Nop()
		opts.Logger = &nop
	}

	registry := NewRegistry()
	gate := NewBuzzGate()
	return &Coordinator{
		registry:      registry,
		gate:          gate,
		rooms:         NewDirectory(registry, gate, opts.NewRoomID, opts.Clock.Now),
		clock:         opts.Clock,
		announceUsers: opts.AnnounceUsersOnConnect,
		log:           opts.Logger,
	}
}

// Connect registers a new connection.
func (c *Coordinator) Connect(connID string) ([]Delivery, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, err := c.registry.Register(connID)
	if err != nil {
		return nil, err
	}
	c.log.Info().Str("conn_id", connID).Str("name", p.Name).Msg("participant connected")

	if !c.announceUsers {
		return nil, nil
	}
	all := c.registry.All()
	users := make([]Member, 0, len(all))
	for _, other := range all {
		users = append(users, Member{ID: other.ID, Name: other.Name, IsHost: other.Host})
	}
	return []Delivery{to(connID, &Event{Kind: EventUsers, Users: users})}, nil
}

// Disconnect removes the connection and everything scoped to it. It is safe
// to call for unknown or already removed connections.
func (c *Coordinator) Disconnect(connID string) []Delivery {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.registry.Get(connID)
	if !ok {
		return nil
	}
	out := c.depart(p)
	c.registry.Unregister(connID)
	c.log.Info().Str("conn_id", connID).Msg("participant disconnected")
	return out
}

// Handle applies one command on behalf of connID and returns what to deliver,
// in order.
func (c *Coordinator) Handle(connID string, cmd *Command) []Delivery {
	if cmd == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.registry.Get(connID)
	if !ok {
		c.log.Debug().Str("conn_id", connID).Str("command", cmd.Kind.String()).Msg("command from unknown connection")
		return nil
	}

	switch cmd.Kind {
	case CommandCreateRoom:
		return c.createRoom(p, cmd)
	case CommandJoinRoom:
		return c.joinRoom(p, cmd)
	case CommandSetName:
		return c.setName(p, cmd)
	}

	room, ok := c.roomOf(p)
	if !ok {
		c.ignore(p, cmd, ErrCodeUnaffiliated)
		return nil
	}

	switch cmd.Kind {
	case CommandLeaveRoom:
		return c.leaveRoom(p, room, cmd)
	case CommandCloseRoom:
		return c.closeRoom(p, room, cmd)
	case CommandBuzz:
		return c.buzz(p, room)
	case CommandSendMessage:
		return c.message(p, room, cmd)
	default:
		c.ignore(p, cmd, ErrCodeUnknownType)
		return nil
	}
}

func (c *Coordinator) createRoom(p *Participant, cmd *Command) []Delivery {
	mode, err := ParseBuzzMode(string(cmd.Mode))
	if err != nil {
		c.ignore(p, cmd, ErrCodeValidation)
		return nil
	}

	// A connection is in at most one room, so creating a new one leaves the old.
	out := c.depart(p)
	roomID := c.rooms.CreateRoom(p.ID, mode)
	c.log.Info().Str("conn_id", p.ID).Str("room_id", roomID).Str("mode", string(mode)).Msg("room created")

	out = append(out,
		to(p.ID, &Event{Kind: EventRoomCreated, RequestID: cmd.RequestID, Room: roomID, OK: true}),
		c.usersDelivery(roomID),
	)
	return out
}

func (c *Coordinator) joinRoom(p *Participant, cmd *Command) []Delivery {
	roomID := strings.TrimSpace(cmd.Room)
	room, ok := c.rooms.Get(roomID)
	if !ok {
		c.ignore(p, cmd, ErrCodeRoomNotFound)
		return []Delivery{to(p.ID, &Event{
			Kind:      EventJoinAck,
			RequestID: cmd.RequestID,
			Room:      roomID,
			Error:     coreError(ErrCodeRoomNotFound, "room not found"),
		})}
	}

	if p.Room == roomID {
		return []Delivery{
			to(p.ID, &Event{Kind: EventUsers, Room: roomID, Users: c.rooms.MembersOf(roomID)}),
			to(p.ID, &Event{Kind: EventJoinAck, RequestID: cmd.RequestID, Room: roomID, OK: true}),
		}
	}

	out := c.depart(p)
	c.rooms.Join(room.ID, p.ID)
	c.log.Info().Str("conn_id", p.ID).Str("room_id", roomID).Msg("participant joined room")

	out = append(out,
		c.usersDelivery(roomID),
		c.toRoom(roomID, &Event{Kind: EventNotification, Room: roomID, Text: p.Name + " has joined the room"}),
		to(p.ID, &Event{Kind: EventNotification, Room: roomID, Text: "Welcome to room " + roomID}),
		to(p.ID, &Event{Kind: EventJoinAck, RequestID: cmd.RequestID, Room: roomID, OK: true}),
	)
	return out
}

func (c *Coordinator) setName(p *Participant, cmd *Command) []Delivery {
	if err := c.registry.Rename(p.ID, cmd.Name); err != nil {
		c.ignore(p, cmd, ErrCodeValidation)
		return nil
	}
	c.log.Debug().Str("conn_id", p.ID).Str("name", p.Name).Msg("participant renamed")

	if room, ok := c.roomOf(p); ok {
		return []Delivery{c.usersDelivery(room.ID)}
	}
	return nil
}

func (c *Coordinator) leaveRoom(p *Participant, room *Room, cmd *Command) []Delivery {
	if room.Host == p.ID {
		c.ignore(p, cmd, ErrCodePolicyViolation)
		return []Delivery{to(p.ID, &Event{
			Kind:      EventHostLeaveRejected,
			RequestID: cmd.RequestID,
			Room:      room.ID,
			Text:      noticeHostCannotLeave,
			Error:     coreError(ErrCodePolicyViolation, noticeHostCannotLeave),
		})}
	}

	name := p.Name
	var out []Delivery
	if !c.rooms.Leave(room.ID, p.ID) {
		out = c.departureNotice(room.ID, name)
	}
	c.log.Info().Str("conn_id", p.ID).Str("room_id", room.ID).Msg("participant left room")

	return append(out, to(p.ID, &Event{Kind: EventLeaveAck, RequestID: cmd.RequestID, Room: room.ID, Text: leaveSuccess, OK: true}))
}

func (c *Coordinator) closeRoom(p *Participant, room *Room, cmd *Command) []Delivery {
	if room.Host != p.ID {
		c.ignore(p, cmd, ErrCodePolicyViolation)
		return nil
	}
	members := c.rooms.CloseRoom(room.ID)
	c.log.Info().Str("conn_id", p.ID).Str("room_id", room.ID).Int("members", len(members)).Msg("room closed")
	return []Delivery{{To: members, Event: &Event{Kind: EventRoomClosed, Room: room.ID, Text: noticeRoomClosed}}}
}

func (c *Coordinator) buzz(p *Participant, room *Room) []Delivery {
	if c.gate.TryBuzz(room.ID, p.ID, room.Mode) == BuzzAlreadyBuzzed {
		c.log.Debug().Str("conn_id", p.ID).Str("room_id", room.ID).Msg("buzz rejected")
		return []Delivery{to(p.ID, &Event{
			Kind:  EventBuzzRejected,
			Room:  room.ID,
			Text:  noticeAlreadyBuzzed,
			Error: coreError(ErrCodePolicyViolation, noticeAlreadyBuzzed),
		})}
	}
	return []Delivery{c.toRoom(room.ID, &Event{
		Kind: EventBuzzer,
		Room: room.ID,
		Buzz: &Buzz{Name: p.Name, At: c.clock.Now()},
	})}
}

func (c *Coordinator) message(p *Participant, room *Room, cmd *Command) []Delivery {
	if strings.TrimSpace(cmd.Text) == "" {
		c.ignore(p, cmd, ErrCodeValidation)
		return nil
	}
	msg := Message{Room: room.ID, From: p.Name, Text: cmd.Text}
	return []Delivery{c.toRoom(room.ID, &Event{Kind: EventMessage, Room: room.ID, Text: msg.String()})}
}

// depart takes p out of its current room. A departing host closes the room
// for everyone else; anyone else leaves it and the rest are told.
func (c *Coordinator) depart(p *Participant) []Delivery {
	room, ok := c.roomOf(p)
	if !ok {
		p.Room, p.Host = "", false
		return nil
	}

	if room.Host == p.ID {
		rest := without(c.rooms.CloseRoom(room.ID), p.ID)
		c.log.Info().Str("conn_id", p.ID).Str("room_id", room.ID).Int("members", len(rest)).Msg("host departed, room closed")
		if len(rest) == 0 {
			return nil
		}
		return []Delivery{{To: rest, Event: &Event{Kind: EventRoomClosed, Room: room.ID, Text: noticeHostLeft}}}
	}

	name := p.Name
	if c.rooms.Leave(room.ID, p.ID) {
		return nil
	}
	return c.departureNotice(room.ID, name)
}

func (c *Coordinator) departureNotice(roomID, name string) []Delivery {
	return []Delivery{
		c.usersDelivery(roomID),
		c.toRoom(roomID, &Event{Kind: EventNotification, Room: roomID, Text: name + " has left the room"}),
	}
}

func (c *Coordinator) roomOf(p *Participant) (*Room, bool) {
	if p.Room == "" {
		return nil, false
	}
	return c.rooms.Get(p.Room)
}

func (c *Coordinator) usersDelivery(roomID string) Delivery {
	return c.toRoom(roomID, &Event{Kind: EventUsers, Room: roomID, Users: c.rooms.MembersOf(roomID)})
}

func (c *Coordinator) toRoom(roomID string, ev *Event) Delivery {
	var members []string
	if room, ok := c.rooms.Get(roomID); ok {
		members = room.Members()
	}
	return Delivery{To: members, Event: ev}
}

func (c *Coordinator) ignore(p *Participant, cmd *Command, code string) {
	c.log.Debug().
		Str("conn_id", p.ID).
		Str("room_id", p.Room).
		Str("command", cmd.Kind.String()).
		Str("code", code).
		Msg("command not applied")
}

// RoomOf reports the room a connection is in.
func (c *Coordinator) RoomOf(connID string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rooms.RoomOf(connID)
}

// Rooms lists live rooms.
func (c *Coordinator) Rooms() []RoomSummary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rooms.List()
}

// Room returns a summary and member snapshot of a live room.
func (c *Coordinator) Room(roomID string) (RoomSummary, []Member, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	room, ok := c.rooms.Get(roomID)
	if !ok {
		return RoomSummary{}, nil, false
	}
	summary := RoomSummary{
		ID:          room.ID,
		Host:        room.Host,
		Mode:        room.Mode,
		MemberCount: len(room.members),
		CreatedAt:   room.CreatedAt,
	}
	return summary, c.rooms.MembersOf(roomID), true
}

// Stats returns the number of live rooms and connected participants.
func (c *Coordinator) Stats() (rooms, participants int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rooms.Len(), c.registry.Len()
}

func to(connID string, ev *Event) Delivery {
	return Delivery{To: []string{connID}, Event: ev}
}

func without(ids []string, drop string) []string {
	out := ids[:0]
	for _, id := range ids {
		if id != drop {
			out = append(out, id)
		}
	}
	return out
}
