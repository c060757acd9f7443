package world

import (
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"strings"
)

// TerrainVoid marks a tile as impassable. Rooms grown by a resize are padded
// with it.
const TerrainVoid = "void"

var terrainPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ExitTarget is a destination tile in another room of the same zone.
type ExitTarget struct {
	RoomID int `json:"roomId"`
	X      int `json:"x"`
	Y      int `json:"y"`
}

// TileExits are walk-into transitions keyed by the edge a player leaves through.
type TileExits struct {
	Up    *ExitTarget `json:"up,omitempty"`
	Down  *ExitTarget `json:"down,omitempty"`
	Left  *ExitTarget `json:"left,omitempty"`
	Right *ExitTarget `json:"right,omitempty"`
}

// Empty reports whether no direction is set.
func (e *TileExits) Empty() bool {
	return e == nil || (e.Up == nil && e.Down == nil && e.Left == nil && e.Right == nil)
}

// Tile is one cell of a room grid. Fields the server does not interpret are
// kept in extra so that rewriting a room file never drops them.
type Tile struct {
	Terrain    string          `json:"terrain"`
	Layers     json.RawMessage `json:"layers,omitempty"`
	Physics    string          `json:"physics,omitempty"`
	Properties json.RawMessage `json:"properties,omitempty"`
	TileExits  *TileExits      `json:"tileExits,omitempty"`

	extra map[string]json.RawMessage
}

// Passable reports whether entities may path through the tile.
func (t Tile) Passable() bool {
	return t.Terrain != TerrainVoid
}

func (t *Tile) UnmarshalJSON(b []byte) error {
	type alias Tile
	extra, err := unmarshalWithExtra(b, (*alias)(t))
	if err != nil {
		return err
	}
	t.extra = extra
	return nil
}

func (t Tile) MarshalJSON() ([]byte, error) {
	type alias Tile
	return marshalWithExtra((*alias)(&t), t.extra)
}

func (t Tile) clone() Tile {
	c := t
	if t.TileExits != nil {
		ex := *t.TileExits
		c.TileExits = &ex
	}
	if t.extra != nil {
		c.extra = make(map[string]json.RawMessage, len(t.extra))
		for k, v := range t.extra {
			c.extra[k] = v
		}
	}
	return c
}

// ValidateTerrain checks a terrain tag submitted by an editor.
func ValidateTerrain(terrain string) error {
	if !terrainPattern.MatchString(terrain) {
		return fmt.Errorf("%w: %q", ErrInvalidTerrain, terrain)
	}
	return nil
}

type rawExitTarget struct {
	RoomID *int `json:"roomId"`
	X      *int `json:"x"`
	Y      *int `json:"y"`
}

// ParseTileExits decodes an edit-tile-exits payload. A JSON null deletes the
// tile's exits and yields nil, as does an object with no directions left. A
// direction set to null is left unset. Every other direction must carry
// roomId, x and y as non-negative integers. An absent payload is an error.
func ParseTileExits(raw json.RawMessage) (*TileExits, error) {
	switch strings.TrimSpace(string(raw)) {
	case "":
		return nil, fmt.Errorf("%w: missing tileExits", ErrInvalidExits)
	case "null":
		return nil, nil
	}

	var dirs map[string]*rawExitTarget
	if err := json.Unmarshal(raw, &dirs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidExits, err)
	}

	exits := &TileExits{}
	for dir, rt := range dirs {
		var slot **ExitTarget
		switch dir {
		case "up":
			slot = &exits.Up
		case "down":
			slot = &exits.Down
		case "left":
			slot = &exits.Left
		case "right":
			slot = &exits.Right
		default:
			return nil, fmt.Errorf("%w: unknown direction %q", ErrInvalidExits, dir)
		}
		if rt == nil {
			continue
		}

		if rt.RoomID == nil || rt.X == nil || rt.Y == nil {
			return nil, fmt.Errorf("%w: %s must have roomId, x and y", ErrInvalidExits, dir)
		}
		if *rt.RoomID < 0 || *rt.X < 0 || *rt.Y < 0 {
			return nil, fmt.Errorf("%w: %s values must be non-negative", ErrInvalidExits, dir)
		}
		*slot = &ExitTarget{RoomID: *rt.RoomID, X: *rt.X, Y: *rt.Y}
	}

	if exits.Empty() {
		return nil, nil
	}
	return exits, nil
}

// unmarshalWithExtra decodes b into v and returns the top-level keys that v
// has no field for.
func unmarshalWithExtra(b []byte, v any) (map[string]json.RawMessage, error) {
	if err := json.Unmarshal(b, v); err != nil {
		return nil, err
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(b, &all); err != nil {
		return nil, err
	}

	for _, name := range jsonFieldNames(reflect.TypeOf(v).Elem()) {
		delete(all, name)
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all, nil
}

func marshalWithExtra(v any, extra map[string]json.RawMessage) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil || len(extra) == 0 {
		return b, err
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(b, &all); err != nil {
		return nil, err
	}
	for k, raw := range extra {
		if _, known := all[k]; !known {
			all[k] = raw
		}
	}
	return json.Marshal(all)
}

func jsonFieldNames(t reflect.Type) []string {
	var names []string
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		names = append(names, name)
	}
	return names
}
