package core

import (
	"sort"
	"time"
)

// maxIDAttempts bounds id regeneration on collision before the generator is
// considered broken.
const maxIDAttempts = 64

// Member is one row of a membership snapshot.
type Member struct {
	ID     string
	Name   string
	IsHost bool
}

// RoomSummary describes a live room for introspection.
type RoomSummary struct {
	ID          string
	Host        string
	Mode        BuzzMode
	MemberCount int
	CreatedAt   time.Time
}

// Directory owns room existence and membership. It keeps each participant's
// Room back-reference in step with the member lists.
// Not safe for concurrent use; the Coordinator serializes access.
type Directory struct {
	rooms    map[string]*Room
	registry *Registry
	gate     *BuzzGate
	newID    func() string
	now      func() time.Time
}

// NewDirectory builds an empty directory. newID must return short random tokens.
func NewDirectory(registry *Registry, gate *BuzzGate, newID func() string, now func() time.Time) *Directory {
	if now == nil {
		now = time.Now
	}
	return &Directory{
		rooms:    make(map[string]*Room),
		registry: registry,
		gate:     gate,
		newID:    newID,
		now:      now,
	}
}

// CreateRoom allocates a fresh room hosted by hostID.
func (d *Directory) CreateRoom(hostID string, mode BuzzMode) string {
	id := d.freshID()
	d.rooms[id] = NewRoom(id, hostID, mode, d.now())
	if p, ok := d.registry.Get(hostID); ok {
		p.Room = id
		p.Host = true
	}
	return id
}

func (d *Directory) freshID() string {
	var id string
	for range maxIDAttempts {
		id = d.newID()
		if _, taken := d.rooms[id]; !taken {
			return id
		}
	}
	panic("core: room id generator keeps colliding: " + id)
}

// Join adds connID to the room. It fails only for an unknown room; joining a
// room the connection is already in is a successful no-op.
func (d *Directory) Join(roomID, connID string) bool {
	room, ok := d.rooms[roomID]
	if !ok {
		return false
	}
	if room.AddMember(connID) {
		if p, ok := d.registry.Get(connID); ok {
			p.Room = roomID
		}
	}
	return true
}

// Leave removes connID from the room, clears its buzz record and deletes the
// room once it is empty. The host is never reassigned.
func (d *Directory) Leave(roomID, connID string) (deleted bool) {
	room, ok := d.rooms[roomID]
	if !ok {
		return false
	}
	room.RemoveMember(connID)
	d.gate.Clear(roomID, connID)
	if p, ok := d.registry.Get(connID); ok && p.Room == roomID {
		p.Room = ""
		p.Host = false
	}
	if room.Empty() {
		d.delete(roomID)
		return true
	}
	return false
}

// CloseRoom deletes the room unconditionally and returns its former members.
func (d *Directory) CloseRoom(roomID string) []string {
	room, ok := d.rooms[roomID]
	if !ok {
		return nil
	}
	members := room.Members()
	for _, id := range members {
		if p, ok := d.registry.Get(id); ok && p.Room == roomID {
			p.Room = ""
			p.Host = false
		}
	}
	d.delete(roomID)
	return members
}

func (d *Directory) delete(roomID string) {
	delete(d.rooms, roomID)
	d.gate.ClearRoom(roomID)
}

// RoomOf returns the room the connection is in.
func (d *Directory) RoomOf(connID string) (string, bool) {
	p, ok := d.registry.Get(connID)
	if !ok || p.Room == "" {
		return "", false
	}
	return p.Room, true
}

// Get returns the live room with the given id.
func (d *Directory) Get(roomID string) (*Room, bool) {
	room, ok := d.rooms[roomID]
	return room, ok
}

// MembersOf builds a fresh snapshot in join order. Unknown rooms yield nil.
func (d *Directory) MembersOf(roomID string) []Member {
	room, ok := d.rooms[roomID]
	if !ok {
		return nil
	}
	out := make([]Member, 0, len(room.members))
	for _, id := range room.members {
		m := Member{ID: id, Name: DefaultName(id), IsHost: id == room.Host}
		if p, ok := d.registry.Get(id); ok {
			m.Name = p.Name
		}
		out = append(out, m)
	}
	return out
}

// List summarizes live rooms, oldest first.
func (d *Directory) List() []RoomSummary {
	out := make([]RoomSummary, 0, len(d.rooms))
	for _, room := range d.rooms {
		out = append(out, RoomSummary{
			ID:          room.ID,
			Host:        room.Host,
			Mode:        room.Mode,
			MemberCount: len(room.members),
			CreatedAt:   room.CreatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Len returns the number of live rooms.
func (d *Directory) Len() int {
	return len(d.rooms)
}
