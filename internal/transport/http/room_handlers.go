package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/buzzer-server/internal/core"
	"github.com/vovakirdan/buzzer-server/internal/proto"
)

// RoomHandlers serves read-only views of the live room state.
type RoomHandlers struct {
	coord *core.Coordinator
	log   *zerolog.Logger
}

// NewRoomHandlers creates a new room handlers instance.
func NewRoomHandlers(coord *core.Coordinator, logger *zerolog.Logger) *RoomHandlers {
	return &RoomHandlers{
		coord: coord,
		log:   logger,
	}
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatsResponse counts live rooms and connections.
type StatsResponse struct {
	Rooms        int `json:"rooms"`
	Participants int `json:"participants"`
}

// RoomResponse represents a room in API responses.
type RoomResponse struct {
	ID          string `json:"id"`
	Host        string `json:"host"`
	BuzzMode    string `json:"buzzMode"`
	MemberCount int    `json:"memberCount"`
	CreatedAt   string `json:"createdAt"`
}

// RoomDetailResponse is a room with its member snapshot.
type RoomDetailResponse struct {
	RoomResponse
	Members []proto.User `json:"members"`
}

// Stats reports live counters.
// GET /api/stats
func (h *RoomHandlers) Stats(c *gin.Context) {
	rooms, participants := h.coord.Stats()
	c.JSON(http.StatusOK, StatsResponse{Rooms: rooms, Participants: participants})
}

// ListRooms lists live rooms, oldest first.
// GET /api/rooms
func (h *RoomHandlers) ListRooms(c *gin.Context) {
	summaries := h.coord.Rooms()
	resp := make([]RoomResponse, 0, len(summaries))
	for _, s := range summaries {
		resp = append(resp, roomResponse(s))
	}
	c.JSON(http.StatusOK, resp)
}

// GetRoom returns one room with its members.
// GET /api/rooms/:id
func (h *RoomHandlers) GetRoom(c *gin.Context) {
	roomID := c.Param("id")
	summary, members, ok := h.coord.Room(roomID)
	if !ok {
		h.log.Debug().Str("room", roomID).Msg("room lookup miss")
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "room not found"})
		return
	}
	c.JSON(http.StatusOK, RoomDetailResponse{
		RoomResponse: roomResponse(summary),
		Members:      proto.Users(members),
	})
}

func roomResponse(s core.RoomSummary) RoomResponse {
	return RoomResponse{
		ID:          s.ID,
		Host:        s.Host,
		BuzzMode:    string(s.Mode),
		MemberCount: s.MemberCount,
		CreatedAt:   s.CreatedAt.UTC().Format(time.RFC3339),
	}
}
