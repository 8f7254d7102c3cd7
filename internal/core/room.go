package core

import "time"

// Room groups the connections that share buzzes and chat.
type Room struct {
	ID        string
	Host      string
	Mode      BuzzMode
	CreatedAt time.Time
	members   []string
}

// NewRoom constructs a room whose only member is the host.
func NewRoom(id, host string, mode BuzzMode, createdAt time.Time) *Room {
	return &Room{
		ID:        id,
		Host:      host,
		Mode:      mode,
		CreatedAt: createdAt,
		members:   []string{host},
	}
}

// AddMember appends a connection. Returns true if newly added.
func (r *Room) AddMember(connID string) bool {
	if r.HasMember(connID) {
		return false
	}
	r.members = append(r.members, connID)
	return true
}

// RemoveMember deletes a connection. Returns true if removed.
func (r *Room) RemoveMember(connID string) bool {
	for i, id := range r.members {
		if id == connID {
			r.members = append(r.members[:i], r.members[i+1:]...)
			return true
		}
	}
	return false
}

// HasMember reports membership.
func (r *Room) HasMember(connID string) bool {
	for _, id := range r.members {
		if id == connID {
			return true
		}
	}
	return false
}

// Members returns the member ids in join order.
func (r *Room) Members() []string {
	out := make([]string, len(r.members))
	copy(out, r.members)
	return out
}

// Empty returns true if no connections are in the room.
func (r *Room) Empty() bool {
	return len(r.members) == 0
}
