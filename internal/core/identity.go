package core

import (
	"fmt"
	"sort"
	"strings"
)

// Participant is a connected client as seen by the room logic.
type Participant struct {
	ID   string
	Name string
	Host bool
	// Room is the id of the room the participant is in, empty when unaffiliated.
	Room string
}

// Registry maps connection ids to participants.
// It is not safe for concurrent use; the Coordinator serializes access.
type Registry struct {
	participants map[string]*Participant
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{participants: make(map[string]*Participant)}
}

// DefaultName derives the initial display name from a connection id.
func DefaultName(connID string) string {
	prefix := connID
	if len(prefix) > 2 {
		prefix = prefix[:2]
	}
	return "User" + prefix
}

// Register creates a participant with a default name.
func (r *Registry) Register(connID string) (*Participant, error) {
	if _, exists := r.participants[connID]; exists {
		return nil, fmt.Errorf("register %q: %w", connID, ErrAlreadyRegistered)
	}
	p := &Participant{ID: connID, Name: DefaultName(connID)}
	r.participants[connID] = p
	return p, nil
}

// Rename replaces the display name. Names that are blank after trimming are
// refused with ErrBlankName and leave the current name in place.
func (r *Registry) Rename(connID, name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrBlankName
	}
	p, ok := r.participants[connID]
	if !ok {
		return fmt.Errorf("rename %q: %w", connID, ErrNotRegistered)
	}
	p.Name = name
	return nil
}

// Unregister removes the participant. Safe to call more than once.
func (r *Registry) Unregister(connID string) {
	delete(r.participants, connID)
}

// Get looks up a participant.
func (r *Registry) Get(connID string) (*Participant, bool) {
	p, ok := r.participants[connID]
	return p, ok
}

// Len returns the number of registered participants.
func (r *Registry) Len() int {
	return len(r.participants)
}

// All returns a copy of every participant, ordered by id.
func (r *Registry) All() []Participant {
	out := make([]Participant, 0, len(r.participants))
	for _, p := range r.participants {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
