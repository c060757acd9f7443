package router

import (
	"encoding/json"

	"github.com/pixil98/go-tileworld/internal/game"
)

type updateRequest struct {
	X      *float64 `json:"x"`
	Y      *float64 `json:"y"`
	RoomID *int     `json:"roomId"`
}

// handleUpdate takes the client's reported position as authoritative and
// relays it to everyone else.
func handleUpdate(s *Session, raw json.RawMessage) error {
	var req updateRequest
	if err := decode(raw, &req); err != nil {
		return err
	}
	if req.X == nil || req.Y == nil {
		return NewValidationError("Position requires x and y")
	}

	c := s.player
	roomID := c.RoomID
	if req.RoomID != nil {
		roomID = *req.RoomID
	}
	if _, err := s.router.sim.World().Room(c.Zone, roomID); err != nil {
		return NewValidationError("Unknown room")
	}

	players := s.router.sim.Players()
	players.UpdatePosition(c.ID, *req.X, *req.Y, roomID)

	return players.BroadcastAll(game.UpdateMessage{
		Type:   game.MsgUpdate,
		ID:     c.ID,
		X:      c.X,
		Y:      c.Y,
		RoomID: c.RoomID,
	}, c.ID)
}
