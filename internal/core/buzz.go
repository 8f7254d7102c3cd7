package core

import (
	"fmt"
	"strings"
)

// BuzzMode is the per-room buzzing policy.
type BuzzMode string

const (
	// BuzzSingle allows one accepted buzz per participant per membership.
	BuzzSingle BuzzMode = "single"
	// BuzzMultiple accepts every buzz.
	BuzzMultiple BuzzMode = "multiple"
)

// ParseBuzzMode converts a wire value. An empty value means single.
func ParseBuzzMode(s string) (BuzzMode, error) {
	switch BuzzMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", BuzzSingle:
		return BuzzSingle, nil
	case BuzzMultiple:
		return BuzzMultiple, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidBuzzMode, s)
	}
}

// BuzzResult is the outcome of a buzz attempt.
type BuzzResult int

const (
	BuzzAccepted BuzzResult = iota
	BuzzAlreadyBuzzed
)

// BuzzGate remembers who already buzzed in single-mode rooms.
// Not safe for concurrent use; the Coordinator serializes access.
type BuzzGate struct {
	records map[string]map[string]struct{}
}

// NewBuzzGate returns a gate with no records.
func NewBuzzGate() *BuzzGate {
	return &BuzzGate{records: make(map[string]map[string]struct{})}
}

// TryBuzz checks and records a buzz in one step.
func (g *BuzzGate) TryBuzz(roomID, connID string, mode BuzzMode) BuzzResult {
	if mode == BuzzMultiple {
		return BuzzAccepted
	}
	room, ok := g.records[roomID]
	if !ok {
		room = make(map[string]struct{})
		g.records[roomID] = room
	}
	if _, buzzed := room[connID]; buzzed {
		return BuzzAlreadyBuzzed
	}
	room[connID] = struct{}{}
	return BuzzAccepted
}

// Clear forgets the participant's record in the room.
func (g *BuzzGate) Clear(roomID, connID string) {
	room, ok := g.records[roomID]
	if !ok {
		return
	}
	delete(room, connID)
	if len(room) == 0 {
		delete(g.records, roomID)
	}
}

// ClearRoom drops every record of the room.
func (g *BuzzGate) ClearRoom(roomID string) {
	delete(g.records, roomID)
}

// Buzzed reports whether a record exists.
func (g *BuzzGate) Buzzed(roomID, connID string) bool {
	_, ok := g.records[roomID][connID]
	return ok
}
