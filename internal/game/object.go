package game

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-tileworld/internal/storage"
	"github.com/pixil98/go-tileworld/internal/world"
)

// ObjectTemplate defines a kind of pickable object. Many instances can share
// one template.
type ObjectTemplate struct {
	Name        string `json:"name"`
	Sprite      string `json:"sprite"`
	Description string `json:"description,omitempty"`

	// Animated objects cycle Frames sprite frames.
	Animated bool `json:"animated,omitempty"`
	Frames   int  `json:"frames,omitempty"`
}

// Validate satisfies storage.ValidatingSpec
func (o *ObjectTemplate) Validate() error {
	el := errors.NewErrorList()
	if o.Name == "" {
		el.Add(fmt.Errorf("object name is required"))
	}
	if o.Sprite == "" {
		el.Add(fmt.Errorf("object sprite is required"))
	}
	if o.Animated && o.Frames < 1 {
		el.Add(fmt.Errorf("animated objects need at least one frame"))
	}
	return el.Err()
}

// ObjectInstance is one live object. It either lies in a room
// (PickedUpBy is nil) or is held by exactly one player.
type ObjectInstance struct {
	InstanceID      string  `json:"instanceId"`
	TypeID          string  `json:"typeId"`
	Zone            string  `json:"zone"`
	RoomID          int     `json:"roomId"`
	X               float64 `json:"x"`
	Y               float64 `json:"y"`
	PickedUpBy      *string `json:"pickedUpBy"`
	RemovedAt       *int64  `json:"removedAt"`
	RespawnAfterSec *int    `json:"respawnAfterSec"`
}

func (o *ObjectInstance) Owned() bool {
	return o.PickedUpBy != nil
}

func (o *ObjectInstance) OwnedBy(name string) bool {
	return o.PickedUpBy != nil && *o.PickedUpBy == name
}

// Respawned describes an object that came back into the world during a sweep.
type Respawned struct {
	Instance  *ObjectInstance
	PrevOwner string
}

// ObjectRegistry holds every object instance and rewrites the instance
// snapshot after each change. It is owned by the simulation loop.
type ObjectRegistry struct {
	path      string
	templates *storage.Catalog[*ObjectTemplate]
	instances []*ObjectInstance
	byID      map[string]*ObjectInstance
}

// LoadObjects restores the instance snapshot at path and then makes sure every
// spawn point in the world has an instance.
func LoadObjects(templates *storage.Catalog[*ObjectTemplate], path string, w *world.Store) (*ObjectRegistry, error) {
	r := &ObjectRegistry{
		path:      path,
		templates: templates,
		byID:      map[string]*ObjectInstance{},
	}

	var snapshot []*ObjectInstance
	_, err := storage.ReadJSON(path, &snapshot)
	if err != nil {
		slog.Warn("object snapshot unreadable, rebuilding from spawn points", "path", path, "category", "persistence", "error", err)
		snapshot = nil
	}
	for _, o := range snapshot {
		if o == nil || o.InstanceID == "" {
			continue
		}
		if _, dup := r.byID[o.InstanceID]; dup {
			slog.Warn("duplicate object instance in snapshot", "instance", o.InstanceID, "category", "persistence")
			continue
		}
		if !templates.Has(o.TypeID) {
			slog.Warn("object instance has unknown type", "instance", o.InstanceID, "type", o.TypeID)
		}
		r.add(o)
	}

	added, err := r.reconcile(w)
	if err != nil {
		return nil, err
	}
	if added > 0 {
		slog.Info("spawned missing objects", "count", added)
		if err := r.Save(); err != nil {
			return nil, err
		}
	}

	return r, nil
}

type spawnKey struct {
	typeID string
	zone   string
	roomID int
	x, y   float64
}

// reconcile creates one instance for each spawn point that has none. Spawn
// points are in tiles and instances in pixels. An instance matches a spawn
// point by type and location whether or not it is currently held.
func (r *ObjectRegistry) reconcile(w *world.Store) (int, error) {
	existing := map[spawnKey]bool{}
	for _, o := range r.instances {
		existing[spawnKey{o.TypeID, o.Zone, o.RoomID, o.X, o.Y}] = true
	}

	el := errors.NewErrorList()
	added := 0
	w.ForEachRoom(func(z *world.Zone, room *world.Room) {
		for _, sp := range room.Spawns {
			x, y := float64(sp.X*TileSize), float64(sp.Y*TileSize)
			key := spawnKey{sp.TypeID, z.ID, room.ID, x, y}
			if existing[key] {
				continue
			}
			if !r.templates.Has(sp.TypeID) {
				el.Add(fmt.Errorf("zone %q room %d: spawn of unknown object %q", z.ID, room.ID, sp.TypeID))
				continue
			}
			existing[key] = true
			r.add(&ObjectInstance{
				InstanceID:      uuid.NewString(),
				TypeID:          sp.TypeID,
				Zone:            z.ID,
				RoomID:          room.ID,
				X:               x,
				Y:               y,
				RespawnAfterSec: sp.RespawnAfterSec,
			})
			added++
		}
	})

	return added, el.Err()
}

func (r *ObjectRegistry) add(o *ObjectInstance) {
	r.instances = append(r.instances, o)
	r.byID[o.InstanceID] = o
}

func (r *ObjectRegistry) Template(typeID string) *ObjectTemplate {
	return r.templates.Get(typeID)
}

func (r *ObjectRegistry) FindByInstance(id string) *ObjectInstance {
	return r.byID[id]
}

// ListByRoom returns the instances located in a room. With unownedOnly set,
// held instances are left out.
func (r *ObjectRegistry) ListByRoom(zone string, roomID int, unownedOnly bool) []*ObjectInstance {
	out := []*ObjectInstance{}
	for _, o := range r.instances {
		if o.Zone != zone || o.RoomID != roomID {
			continue
		}
		if unownedOnly && o.Owned() {
			continue
		}
		out = append(out, o)
	}
	return out
}

func (r *ObjectRegistry) ListByOwner(name string) []*ObjectInstance {
	out := []*ObjectInstance{}
	for _, o := range r.instances {
		if o.OwnedBy(name) {
			out = append(out, o)
		}
	}
	return out
}

// Pickup gives an unowned instance in the caller's room to name and stamps
// the tick it left the world.
func (r *ObjectRegistry) Pickup(id, name, zone string, roomID int, tick int64) (*ObjectInstance, error) {
	o := r.byID[id]
	if o == nil {
		return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, id)
	}
	if o.Owned() {
		return nil, fmt.Errorf("%w: %s", ErrObjectOwned, id)
	}
	if o.Zone != zone || o.RoomID != roomID {
		return nil, fmt.Errorf("%w: %s", ErrWrongRoom, id)
	}

	owner := name
	removed := tick
	o.PickedUpBy = &owner
	o.RemovedAt = &removed

	r.persist()
	return o, nil
}

// Drop returns an instance held by name to the world at the given position.
func (r *ObjectRegistry) Drop(id, name, zone string, roomID int, x, y float64) (*ObjectInstance, error) {
	o := r.byID[id]
	if o == nil {
		return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, id)
	}
	if !o.OwnedBy(name) {
		return nil, fmt.Errorf("%w: %s", ErrNotOwner, id)
	}

	o.PickedUpBy = nil
	o.RemovedAt = nil
	o.Zone, o.RoomID = zone, roomID
	o.X, o.Y = x, y

	r.persist()
	return o, nil
}

// Spawn creates a new unowned instance of typeID.
func (r *ObjectRegistry) Spawn(typeID, zone string, roomID int, x, y float64) (*ObjectInstance, error) {
	if !r.templates.Has(typeID) {
		return nil, fmt.Errorf("%w: object %q", ErrUnknownTemplate, typeID)
	}

	o := &ObjectInstance{
		InstanceID: uuid.NewString(),
		TypeID:     typeID,
		Zone:       zone,
		RoomID:     roomID,
		X:          x,
		Y:          y,
	}
	r.add(o)

	r.persist()
	return o, nil
}

// SweepRespawns returns to the world every held instance whose respawn delay
// has elapsed at tick.
func (r *ObjectRegistry) SweepRespawns(tick int64) []Respawned {
	var out []Respawned
	for _, o := range r.instances {
		if !o.Owned() || o.RespawnAfterSec == nil || o.RemovedAt == nil {
			continue
		}
		if tick-*o.RemovedAt < int64(*o.RespawnAfterSec) {
			continue
		}

		out = append(out, Respawned{Instance: o, PrevOwner: *o.PickedUpBy})
		o.PickedUpBy = nil
		o.RemovedAt = nil
	}

	if len(out) > 0 {
		r.persist()
	}
	return out
}

// Save rewrites the instance snapshot.
func (r *ObjectRegistry) Save() error {
	if r.path == "" {
		return nil
	}
	if err := storage.WriteJSON(r.path, r.instances); err != nil {
		return fmt.Errorf("saving objects: %w", err)
	}
	return nil
}

// persist saves in the background sense: failures are logged and the
// in-memory state stays authoritative.
func (r *ObjectRegistry) persist() {
	if err := r.Save(); err != nil {
		slog.Error("saving object instances", "path", r.path, "category", "persistence", "error", err)
	}
}
