package router

import (
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/pixil98/go-tileworld/internal/game"
)

type objectRequest struct {
	InstanceID string   `json:"instanceId"`
	X          *float64 `json:"x"`
	Y          *float64 `json:"y"`
}

// objectError turns registry refusals into messages for the player.
func objectError(err error) error {
	switch {
	case errors.Is(err, game.ErrObjectNotFound):
		return NewValidationError("Object not found")
	case errors.Is(err, game.ErrObjectOwned):
		return NewUserError("Someone already has that")
	case errors.Is(err, game.ErrWrongRoom):
		return NewValidationError("That object is not here")
	case errors.Is(err, game.ErrNotOwner):
		return NewUserError("You are not carrying that")
	}
	return err
}

func handlePickup(s *Session, raw json.RawMessage) error {
	var req objectRequest
	if err := decode(raw, &req); err != nil {
		return err
	}
	if req.InstanceID == "" {
		return NewValidationError("Missing instanceId")
	}

	sim := s.router.sim
	c := s.player
	o, err := sim.Objects().Pickup(req.InstanceID, c.Name(), c.Zone, c.RoomID, sim.CurrentTick())
	if err != nil {
		return objectError(err)
	}

	sim.BroadcastToRoom(c.Zone, c.RoomID, game.ObjectPickedMessage{
		Type:       game.MsgObjectPicked,
		InstanceID: o.InstanceID,
		PlayerID:   c.ID,
		PlayerName: c.Name(),
	})
	s.send(sim.Inventory(c.Name()))
	return nil
}

// handleDrop puts a held object down at the given position, or at the
// player's feet when none is given.
func handleDrop(s *Session, raw json.RawMessage) error {
	var req objectRequest
	if err := decode(raw, &req); err != nil {
		return err
	}
	if req.InstanceID == "" {
		return NewValidationError("Missing instanceId")
	}

	sim := s.router.sim
	c := s.player
	x, y := c.X, c.Y
	if req.X != nil && req.Y != nil {
		x, y = *req.X, *req.Y
	}

	o, err := sim.Objects().Drop(req.InstanceID, c.Name(), c.Zone, c.RoomID, x, y)
	if err != nil {
		return objectError(err)
	}
	if err := sim.SavePlayer(c); err != nil {
		slog.Error("saving inventory after drop", "name", c.Name(), "category", "persistence", "error", err)
	}

	sim.BroadcastToRoom(c.Zone, c.RoomID, game.ObjectDroppedMessage{
		Type:     game.MsgObjectDropped,
		Instance: o,
		PlayerID: c.ID,
	})
	s.send(sim.Inventory(c.Name()))
	return nil
}

type snapshotRequest struct {
	Zone   string `json:"zone"`
	RoomID *int   `json:"roomId"`
}

// handleRequestSnapshot replies with the objects and NPCs of a room, the
// caller's own room by default.
func handleRequestSnapshot(s *Session, raw json.RawMessage) error {
	var req snapshotRequest
	if err := decode(raw, &req); err != nil {
		return err
	}

	sim := s.router.sim
	zone, roomID := s.player.Zone, s.player.RoomID
	if req.Zone != "" {
		zone = req.Zone
	}
	if req.RoomID != nil {
		roomID = *req.RoomID
	}
	if _, err := sim.World().Room(zone, roomID); err != nil {
		return NewValidationError("Unknown room")
	}

	s.send(sim.RoomObjects(zone, roomID))
	s.send(sim.RoomNPCs(zone, roomID))
	return nil
}
