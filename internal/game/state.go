package game

import "github.com/pixil98/go-tileworld/internal/player"

// TileSize is the edge of one tile in the pixel coordinates clients report.
const TileSize = 32

// GameState is the view of the simulation handed to behaviors.
type GameState interface {
	// CurrentTick is the clock tick being processed.
	CurrentTick() int64

	PlayersInRoom(zone string, roomID int) []*player.Connection
	// PlayersNear lists players in the room within radius tiles of the tile
	// (x, y) on both axes.
	PlayersNear(zone string, roomID int, x, y, radius int) []*player.Connection

	BroadcastToRoom(zone string, roomID int, msg any)
	SendToPlayer(connID int, msg any)

	// SpawnObject creates an unowned object and announces it to the room.
	SpawnObject(typeID, zone string, roomID int, x, y float64) (*ObjectInstance, error)

	// PersistNPCs saves NPC state, including behavior extension state.
	PersistNPCs()
}
