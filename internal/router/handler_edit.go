package router

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/pixil98/go-tileworld/internal/game"
	"github.com/pixil98/go-tileworld/internal/world"
)

// requireEditor refuses the request unless the character may edit the world.
func requireEditor(h HandlerFunc) HandlerFunc {
	return func(s *Session, raw json.RawMessage) error {
		if !s.player.Record.CanEdit() {
			return NewAuthorizationError(msgNoPrivilege)
		}
		return h(s, raw)
	}
}

type editRequest struct {
	RoomID    *int            `json:"roomId"`
	X         *int            `json:"x"`
	Y         *int            `json:"y"`
	Terrain   string          `json:"terrain"`
	TileExits json.RawMessage `json:"tileExits"`
	Width     int             `json:"width"`
	Height    int             `json:"height"`
}

// target resolves the edited room. Edits always apply to the caller's zone.
func (r *editRequest) target(s *Session) (string, int) {
	roomID := s.player.RoomID
	if r.RoomID != nil {
		roomID = *r.RoomID
	}
	return s.player.Zone, roomID
}

func (r *editRequest) cell() (int, int, error) {
	if r.X == nil || r.Y == nil {
		return 0, 0, NewValidationError("Missing tile coordinates")
	}
	return *r.X, *r.Y, nil
}

// editError turns world store refusals into messages for the editor. Anything
// else, including a failed write, is a system failure.
func editError(err error) error {
	switch {
	case errors.Is(err, world.ErrZoneNotFound), errors.Is(err, world.ErrRoomNotFound):
		return NewValidationError("Room not found")
	case errors.Is(err, world.ErrOutOfBounds):
		return NewValidationError("Coordinates out of bounds")
	case errors.Is(err, world.ErrInvalidTerrain):
		return NewValidationError("Invalid terrain")
	case errors.Is(err, world.ErrInvalidExits):
		reason := strings.TrimPrefix(err.Error(), world.ErrInvalidExits.Error()+": ")
		return NewValidationError("Invalid tile exits: " + reason)
	case errors.Is(err, world.ErrInvalidDimensions):
		return NewValidationError(fmt.Sprintf("Room size must be between %d and %d",
			world.MinRoomDimension, world.MaxRoomDimension))
	}
	return err
}

func handleEditTile(s *Session, raw json.RawMessage) error {
	var req editRequest
	if err := decode(raw, &req); err != nil {
		return err
	}
	x, y, err := req.cell()
	if err != nil {
		return err
	}
	zone, roomID := req.target(s)

	room, err := s.router.sim.World().EditTile(zone, roomID, x, y, req.Terrain)
	if err != nil {
		return editError(err)
	}
	return broadcastTile(s, zone, room, x, y)
}

func handleEditTileExits(s *Session, raw json.RawMessage) error {
	var req editRequest
	if err := decode(raw, &req); err != nil {
		return err
	}
	x, y, err := req.cell()
	if err != nil {
		return err
	}
	exits, err := world.ParseTileExits(req.TileExits)
	if err != nil {
		return editError(err)
	}
	zone, roomID := req.target(s)

	room, err := s.router.sim.World().EditTileExits(zone, roomID, x, y, exits)
	if err != nil {
		return editError(err)
	}
	return broadcastTile(s, zone, room, x, y)
}

func handleResizeRoom(s *Session, raw json.RawMessage) error {
	var req editRequest
	if err := decode(raw, &req); err != nil {
		return err
	}
	zone, roomID := req.target(s)

	room, err := s.router.sim.World().ResizeRoom(zone, roomID, req.Width, req.Height)
	if err != nil {
		return editError(err)
	}

	return s.router.sim.Players().BroadcastAll(game.RoomResizedMessage{
		Type:   game.MsgRoomResized,
		Zone:   zone,
		RoomID: room.ID,
		Width:  room.Width,
		Height: room.Height,
		Tiles:  room.Tiles,
	})
}

func broadcastTile(s *Session, zone string, room *world.Room, x, y int) error {
	tile, _ := room.Tile(x, y)
	return s.router.sim.Players().BroadcastAll(game.RoomUpdatedMessage{
		Type:   game.MsgRoomUpdated,
		Zone:   zone,
		RoomID: room.ID,
		X:      x,
		Y:      y,
		Tile:   tile,
	})
}
