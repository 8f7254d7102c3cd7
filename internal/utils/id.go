package utils

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"time"
)

// DefaultRoomIDBytes gives six hex characters, enough for a room code people
// can read out loud.
const DefaultRoomIDBytes = 3

// NewRoomID returns a short random hex token of size random bytes.
func NewRoomID(size int) string {
	if size <= 0 {
		size = DefaultRoomIDBytes
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err == nil {
		return hex.EncodeToString(buf)
	}

	// Fallback to timestamp if crypto/rand is unavailable.
	ts := strconv.FormatInt(time.Now().UnixNano(), 16)
	if len(ts) > size*2 {
		ts = ts[len(ts)-size*2:]
	}
	return ts
}
