package world

import (
	"encoding/json"
	"fmt"

	"github.com/pixil98/go-errors"
)

const (
	MinRoomDimension = 1
	MaxRoomDimension = 100
)

// Position is a tile coordinate inside a room.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Exit is a long-range teleport from a tile to a tile in another room.
type Exit struct {
	From Position   `json:"from"`
	To   ExitTarget `json:"to"`
}

// ObjectSpawn guarantees one object instance of TypeID at the tile.
type ObjectSpawn struct {
	TypeID          string `json:"typeId"`
	X               int    `json:"x"`
	Y               int    `json:"y"`
	RespawnAfterSec *int   `json:"respawnAfterSec,omitempty"`
}

// NPCSpawn places one NPC of TypeID when NPC state is regenerated.
type NPCSpawn struct {
	TypeID string `json:"typeId"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
}

// Room is a tile grid plus its exits and spawn definitions.
type Room struct {
	ID         int           `json:"id"`
	Width      int           `json:"width"`
	Height     int           `json:"height"`
	Tiles      [][]Tile      `json:"tiles"`
	Exits      []Exit        `json:"exits"`
	Background string        `json:"background,omitempty"`
	Ambience   string        `json:"ambience,omitempty"`
	Spawns     []ObjectSpawn `json:"spawns,omitempty"`
	NPCs       []NPCSpawn    `json:"npcs,omitempty"`

	extra map[string]json.RawMessage
}

func (r *Room) UnmarshalJSON(b []byte) error {
	type alias Room
	extra, err := unmarshalWithExtra(b, (*alias)(r))
	if err != nil {
		return err
	}
	r.extra = extra
	return nil
}

func (r Room) MarshalJSON() ([]byte, error) {
	type alias Room
	if r.Exits == nil {
		r.Exits = []Exit{}
	}
	return marshalWithExtra((*alias)(&r), r.extra)
}

// Validate checks that the tile grid fits the declared dimensions. Short
// grids are allowed and are padded on load.
func (r *Room) Validate() error {
	el := errors.NewErrorList()

	if r.Width < MinRoomDimension || r.Height < MinRoomDimension {
		el.Add(fmt.Errorf("room %d: dimensions must be positive", r.ID))
	}
	if len(r.Tiles) > r.Height {
		el.Add(fmt.Errorf("room %d: has %d rows, expected %d", r.ID, len(r.Tiles), r.Height))
	}
	for y, row := range r.Tiles {
		if len(row) > r.Width {
			el.Add(fmt.Errorf("room %d: row %d has %d tiles, expected %d", r.ID, y, len(row), r.Width))
		}
	}
	for i, s := range r.Spawns {
		if s.TypeID == "" {
			el.Add(fmt.Errorf("room %d: spawn %d: typeId is required", r.ID, i))
		}
	}
	for i, n := range r.NPCs {
		if n.TypeID == "" {
			el.Add(fmt.Errorf("room %d: npc %d: typeId is required", r.ID, i))
		}
	}

	return el.Err()
}

// InBounds reports whether x,y addresses a tile of the room.
func (r *Room) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && y < len(r.Tiles) && x < len(r.Tiles[y])
}

// Tile returns the tile at x,y. ok is false when out of bounds.
func (r *Room) Tile(x, y int) (Tile, bool) {
	if !r.InBounds(x, y) {
		return Tile{}, false
	}
	return r.Tiles[y][x], true
}

// Passable reports whether the tile at x,y exists and is not void.
func (r *Room) Passable(x, y int) bool {
	t, ok := r.Tile(x, y)
	return ok && t.Passable()
}

// Size returns the grid dimensions.
func (r *Room) Size() (int, int) {
	return r.Width, r.Height
}

// clone returns a deep copy of the tile grid and shallow copies of the
// definition lists, which are never mutated in place.
func (r *Room) clone() *Room {
	c := *r
	c.Tiles = make([][]Tile, len(r.Tiles))
	for y, row := range r.Tiles {
		c.Tiles[y] = make([]Tile, len(row))
		for x, t := range row {
			c.Tiles[y][x] = t.clone()
		}
	}
	return &c
}

// complete reports whether every row and column of the grid is present.
func (r *Room) complete() bool {
	if len(r.Tiles) != r.Height {
		return false
	}
	for _, row := range r.Tiles {
		if len(row) != r.Width {
			return false
		}
	}
	return true
}

// resize grows or truncates the grid. New cells get the fill terrain.
func (r *Room) resize(width, height int, fill string) {
	tiles := r.Tiles
	if len(tiles) > height {
		tiles = tiles[:height]
	}
	for len(tiles) < height {
		tiles = append(tiles, nil)
	}
	for y := range tiles {
		row := tiles[y]
		if len(row) > width {
			row = row[:width]
		}
		for len(row) < width {
			row = append(row, Tile{Terrain: fill})
		}
		tiles[y] = row
	}

	r.Tiles = tiles
	r.Width = width
	r.Height = height
}
