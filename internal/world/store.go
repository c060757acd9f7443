package world

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-tileworld/internal/storage"
)

// Store holds the static world definition. Rooms handed out by the store are
// shared and must be treated as read-only; edits go through the Edit*
// methods, which replace the room in a single step once its file is written.
//
// A Store is not safe for concurrent use. The simulation loop owns it.
type Store struct {
	dir   string
	order []string
	zones map[string]*Zone
}

// Load reads the world manifest in dir and every zone and room it lists.
// Rooms whose grids are short of their declared size are padded in memory.
func Load(dir string, opts ...LoadOpt) (*Store, error) {
	o := loadOptions{fill: TerrainVoid}
	for _, opt := range opts {
		opt(&o)
	}

	var m Manifest
	found, err := storage.ReadJSON(filepath.Join(dir, ManifestFile), &m)
	if err != nil {
		return nil, fmt.Errorf("loading world manifest: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("world manifest %s not found in %s", ManifestFile, dir)
	}

	s := &Store{
		dir:   dir,
		zones: map[string]*Zone{},
	}

	el := errors.NewErrorList()
	for _, def := range m.Zones {
		if err := def.Validate(); err != nil {
			el.Add(err)
			continue
		}
		if _, dup := s.zones[def.ID]; dup {
			el.Add(fmt.Errorf("duplicate zone id %q", def.ID))
			continue
		}

		z, err := loadZone(dir, def, o.fill)
		if err != nil {
			el.Add(err)
			continue
		}
		s.zones[def.ID] = z
		s.order = append(s.order, def.ID)
	}

	if err := el.Err(); err != nil {
		return nil, err
	}

	slog.Info("world loaded", "dir", dir, "zones", len(s.order))
	return s, nil
}

// Zones returns every zone in manifest order.
func (s *Store) Zones() []*Zone {
	zones := make([]*Zone, 0, len(s.order))
	for _, id := range s.order {
		zones = append(zones, s.zones[id])
	}
	return zones
}

func (s *Store) Zone(id string) (*Zone, error) {
	z, ok := s.zones[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrZoneNotFound, id)
	}
	return z, nil
}

func (s *Store) Room(zone string, id int) (*Room, error) {
	z, err := s.Zone(zone)
	if err != nil {
		return nil, err
	}
	r := z.Room(id)
	if r == nil {
		return nil, fmt.Errorf("%w: %s/%d", ErrRoomNotFound, zone, id)
	}
	return r, nil
}

// DefaultLocation returns the first room of the first zone.
func (s *Store) DefaultLocation() (string, int, bool) {
	for _, zid := range s.order {
		z := s.zones[zid]
		if len(z.order) > 0 {
			return zid, z.order[0], true
		}
	}
	return "", 0, false
}

// ForEachRoom calls fn for every room of every zone in load order.
func (s *Store) ForEachRoom(fn func(z *Zone, r *Room)) {
	for _, zid := range s.order {
		z := s.zones[zid]
		for _, rid := range z.order {
			fn(z, z.rooms[rid])
		}
	}
}

// EditTile sets the terrain of one tile. Nothing else in the tile changes.
func (s *Store) EditTile(zone string, roomID, x, y int, terrain string) (*Room, error) {
	if err := ValidateTerrain(terrain); err != nil {
		return nil, err
	}
	return s.update(zone, roomID, func(r *Room) error {
		if !r.InBounds(x, y) {
			return fmt.Errorf("%w: %d,%d", ErrOutOfBounds, x, y)
		}
		r.Tiles[y][x].Terrain = terrain
		return nil
	})
}

// EditTileExits replaces the walk-into exits of one tile. nil removes them.
func (s *Store) EditTileExits(zone string, roomID, x, y int, exits *TileExits) (*Room, error) {
	return s.update(zone, roomID, func(r *Room) error {
		if !r.InBounds(x, y) {
			return fmt.Errorf("%w: %d,%d", ErrOutOfBounds, x, y)
		}
		if exits.Empty() {
			r.Tiles[y][x].TileExits = nil
		} else {
			ex := *exits
			r.Tiles[y][x].TileExits = &ex
		}
		return nil
	})
}

// ResizeRoom grows or shrinks a room's grid. Growing pads with void tiles;
// shrinking discards the cut rows and columns.
func (s *Store) ResizeRoom(zone string, roomID, width, height int) (*Room, error) {
	if width < MinRoomDimension || width > MaxRoomDimension || height < MinRoomDimension || height > MaxRoomDimension {
		return nil, fmt.Errorf("%w: %dx%d, each side must be %d to %d",
			ErrInvalidDimensions, width, height, MinRoomDimension, MaxRoomDimension)
	}
	return s.update(zone, roomID, func(r *Room) error {
		r.resize(width, height, TerrainVoid)
		return nil
	})
}

// SaveRoom writes room to its file and replaces the in-memory copy.
func (s *Store) SaveRoom(zone string, room *Room) error {
	z, err := s.Zone(zone)
	if err != nil {
		return err
	}
	if z.Room(room.ID) == nil {
		return fmt.Errorf("%w: %s/%d", ErrRoomNotFound, zone, room.ID)
	}
	if err := room.Validate(); err != nil {
		return err
	}

	if err := storage.WriteJSON(z.roomPath(room.ID), room); err != nil {
		return fmt.Errorf("saving room %s/%d: %w", zone, room.ID, err)
	}
	z.rooms[room.ID] = room
	return nil
}

// update runs fn against a copy of the room, writes the copy and then swaps
// it in. On any failure the stored room is left untouched.
func (s *Store) update(zone string, roomID int, fn func(*Room) error) (*Room, error) {
	cur, err := s.Room(zone, roomID)
	if err != nil {
		return nil, err
	}

	next := cur.clone()
	if err := fn(next); err != nil {
		return nil, err
	}

	if err := s.SaveRoom(zone, next); err != nil {
		return nil, err
	}
	return next, nil
}
