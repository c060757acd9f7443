package world

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-tileworld/internal/storage"
)

const (
	ManifestFile = "world.json"
	IndexFile    = "index.json"
)

// ZoneDef is one entry of the world manifest.
type ZoneDef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Path  string `json:"path"`
	Rooms []int  `json:"rooms"`
}

func (z *ZoneDef) Validate() error {
	el := errors.NewErrorList()

	if z.ID == "" {
		el.Add(fmt.Errorf("zone id is required"))
	} else if !storage.ValidIdentifier(z.ID) {
		el.Add(fmt.Errorf("zone id %q must be alphanumeric", z.ID))
	}
	if z.Path == "" {
		el.Add(fmt.Errorf("zone %q: path is required", z.ID))
	} else if !filepath.IsLocal(z.Path) {
		el.Add(fmt.Errorf("zone %q: path must be relative to the world directory", z.ID))
	}

	return el.Err()
}

// Manifest is the top-level world file.
type Manifest struct {
	Zones []ZoneDef `json:"zones"`
}

// IndexEntry maps a room id to its file. Key is an optional layout name; a
// key of the form "x,y" places the room on the zone's grid.
type IndexEntry struct {
	ID   int    `json:"id"`
	File string `json:"file"`
	Key  string `json:"key,omitempty"`
}

type Index struct {
	Rooms []IndexEntry `json:"rooms"`
}

// Zone is a loaded partition of the world.
type Zone struct {
	ZoneDef

	dir   string
	order []int
	rooms map[int]*Room
	files map[int]string
	keys  map[string]int
}

// Room returns the room with id, or nil.
func (z *Zone) Room(id int) *Room {
	return z.rooms[id]
}

// RoomIDs returns the zone's room ids in load order.
func (z *Zone) RoomIDs() []int {
	return append([]int(nil), z.order...)
}

// RoomByKey returns the room registered under key in the zone index.
func (z *Zone) RoomByKey(key string) *Room {
	id, ok := z.keys[key]
	if !ok {
		return nil
	}
	return z.rooms[id]
}

// Keys returns every layout key in the zone index, sorted.
func (z *Zone) Keys() []string {
	keys := make([]string, 0, len(z.keys))
	for k := range z.keys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (z *Zone) roomPath(id int) string {
	return filepath.Join(z.dir, z.files[id])
}

func loadZone(worldDir string, def ZoneDef, fill string) (*Zone, error) {
	z := &Zone{
		ZoneDef: def,
		dir:     filepath.Join(worldDir, def.Path),
		rooms:   map[int]*Room{},
		files:   map[int]string{},
		keys:    map[string]int{},
	}

	var idx Index
	_, err := storage.ReadJSON(filepath.Join(z.dir, IndexFile), &idx)
	if err != nil {
		return nil, fmt.Errorf("zone %q: %w", def.ID, err)
	}

	ids := append([]int(nil), def.Rooms...)
	for _, e := range idx.Rooms {
		if e.File != "" {
			if !filepath.IsLocal(e.File) {
				return nil, fmt.Errorf("zone %q: room %d: file must be relative", def.ID, e.ID)
			}
			z.files[e.ID] = e.File
		}
		if e.Key != "" {
			z.keys[e.Key] = e.ID
		}
		ids = append(ids, e.ID)
	}

	el := errors.NewErrorList()
	for _, id := range ids {
		if _, seen := z.rooms[id]; seen {
			continue
		}
		if _, ok := z.files[id]; !ok {
			z.files[id] = fmt.Sprintf("room-%d.json", id)
		}

		room := &Room{}
		found, err := storage.ReadJSON(z.roomPath(id), room)
		if err != nil {
			el.Add(fmt.Errorf("zone %q: %w", def.ID, err))
			continue
		}
		if !found {
			el.Add(fmt.Errorf("zone %q: room %d: file %s not found", def.ID, id, z.files[id]))
			continue
		}
		if room.ID != id {
			el.Add(fmt.Errorf("zone %q: room file %s has id %d, expected %d", def.ID, z.files[id], room.ID, id))
			continue
		}
		if err := room.Validate(); err != nil {
			el.Add(fmt.Errorf("zone %q: %w", def.ID, err))
			continue
		}
		if !room.complete() {
			slog.Warn("padding incomplete room grid", "zone", def.ID, "room", id, "terrain", fill)
			room.resize(room.Width, room.Height, fill)
		}

		z.rooms[id] = room
		z.order = append(z.order, id)
	}

	if err := el.Err(); err != nil {
		return nil, err
	}

	return z, nil
}
