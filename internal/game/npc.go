package game

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-tileworld/internal/pathfind"
	"github.com/pixil98/go-tileworld/internal/storage"
	"github.com/pixil98/go-tileworld/internal/world"
)

const RoamRandom = "random"

// RoamPolicy controls random wandering. Frequency is the percent chance per
// tick of trying a walk; durations bound the walk length in tiles.
type RoamPolicy struct {
	Type        string  `json:"type"`
	Frequency   float64 `json:"frequency"`
	MinDuration int     `json:"minDuration"`
	MaxDuration int     `json:"maxDuration"`
	Rate        float64 `json:"rate"`
}

func (p *RoamPolicy) Validate() error {
	el := errors.NewErrorList()
	if p.Type != RoamRandom {
		el.Add(fmt.Errorf("roam type %q is invalid (must be %s)", p.Type, RoamRandom))
	}
	if p.Frequency < 0 || p.Frequency > 100 {
		el.Add(fmt.Errorf("roam frequency must be between 0 and 100"))
	}
	if p.MinDuration < 0 || p.MaxDuration < p.MinDuration {
		el.Add(fmt.Errorf("roam durations must satisfy 0 <= minDuration <= maxDuration"))
	}
	if p.Rate < 0 {
		el.Add(fmt.Errorf("roam rate must not be negative"))
	}
	return el.Err()
}

// BehaviorRef names the behavior kind an NPC template runs and its settings.
type BehaviorRef struct {
	Kind   string          `json:"kind"`
	Config json.RawMessage `json:"config,omitempty"`
}

// NPCTemplate defines a kind of NPC.
type NPCTemplate struct {
	Name     string       `json:"name"`
	Sprite   string       `json:"sprite"`
	Roam     *RoamPolicy  `json:"roam,omitempty"`
	Behavior *BehaviorRef `json:"behavior,omitempty"`
}

// Validate satisfies storage.ValidatingSpec
func (n *NPCTemplate) Validate() error {
	el := errors.NewErrorList()
	if n.Name == "" {
		el.Add(fmt.Errorf("npc name is required"))
	}
	if n.Sprite == "" {
		el.Add(fmt.Errorf("npc sprite is required"))
	}
	if n.Roam != nil {
		el.Add(n.Roam.Validate())
	}
	if n.Behavior != nil && n.Behavior.Kind == "" {
		el.Add(fmt.Errorf("behavior kind is required"))
	}
	return el.Err()
}

// NPCInstance is one live NPC. Position is in tiles.
type NPCInstance struct {
	InstanceID string                 `json:"instanceId"`
	TypeID     string                 `json:"typeId"`
	Zone       string                 `json:"zone"`
	RoomID     int                    `json:"roomId"`
	X          int                    `json:"x"`
	Y          int                    `json:"y"`
	Name       string                 `json:"name,omitempty"`
	Ext        storage.ExtensionState `json:"ext,omitempty"`

	// Movement bookkeeping only lives as long as the pending timer. It is
	// sent to clients joining mid-walk and ignored when a snapshot is loaded.
	MovePath      []pathfind.Point `json:"movePath"`
	MoveStartTick int64            `json:"moveStartTick,omitempty"`
	MoveDuration  int64            `json:"moveDuration,omitempty"`
}

func (n *NPCInstance) Pos() pathfind.Point {
	return pathfind.Pt(n.X, n.Y)
}

// NPCRegistry holds every NPC instance and the behavior bound to each
// template. It is owned by the simulation loop.
type NPCRegistry struct {
	path      string
	templates *storage.Catalog[*NPCTemplate]
	behaviors map[string]Behavior
	instances []*NPCInstance
	byID      map[string]*NPCInstance
}

// LoadNPCs binds template behaviors and restores the NPC snapshot at path. If
// the snapshot is missing or unreadable every NPC is created afresh from the
// room definitions.
func LoadNPCs(templates *storage.Catalog[*NPCTemplate], set *BehaviorSet, path string, w *world.Store) (*NPCRegistry, error) {
	r := &NPCRegistry{
		path:      path,
		templates: templates,
		behaviors: map[string]Behavior{},
		byID:      map[string]*NPCInstance{},
	}

	el := errors.NewErrorList()
	for id, t := range templates.GetAll() {
		if t.Behavior == nil {
			continue
		}
		b, err := set.Build(t.Behavior)
		if err != nil {
			el.Add(fmt.Errorf("npc %q: %w", id, err))
			continue
		}
		r.behaviors[id] = b
	}
	if err := el.Err(); err != nil {
		return nil, err
	}

	var snapshot []*NPCInstance
	found, err := storage.ReadJSON(path, &snapshot)
	if err != nil {
		slog.Warn("npc snapshot unreadable", "path", path, "category", "persistence", "error", err)
	}
	if err != nil || !found {
		if err := r.regenerate(w); err != nil {
			return nil, err
		}
		slog.Info("npcs created from room definitions", "count", len(r.instances))
		if err := r.Save(); err != nil {
			return nil, err
		}
		return r, nil
	}

	for _, n := range snapshot {
		if n == nil || n.InstanceID == "" {
			continue
		}
		if !templates.Has(n.TypeID) {
			slog.Warn("dropping npc with unknown type", "instance", n.InstanceID, "type", n.TypeID)
			continue
		}
		n.MovePath = nil
		n.MoveStartTick, n.MoveDuration = 0, 0
		r.add(n)
	}

	return r, nil
}

func (r *NPCRegistry) regenerate(w *world.Store) error {
	r.instances = nil
	r.byID = map[string]*NPCInstance{}

	el := errors.NewErrorList()
	w.ForEachRoom(func(z *world.Zone, room *world.Room) {
		for _, sp := range room.NPCs {
			t := r.templates.Get(sp.TypeID)
			if t == nil {
				el.Add(fmt.Errorf("zone %q room %d: unknown npc %q", z.ID, room.ID, sp.TypeID))
				continue
			}
			r.add(&NPCInstance{
				InstanceID: uuid.NewString(),
				TypeID:     sp.TypeID,
				Zone:       z.ID,
				RoomID:     room.ID,
				X:          sp.X,
				Y:          sp.Y,
				Name:       t.Name,
			})
		}
	})
	return el.Err()
}

func (r *NPCRegistry) add(n *NPCInstance) {
	r.instances = append(r.instances, n)
	r.byID[n.InstanceID] = n
}

func (r *NPCRegistry) Template(typeID string) *NPCTemplate {
	return r.templates.Get(typeID)
}

// Behavior returns the behavior bound to the NPC's template, or nil.
func (r *NPCRegistry) Behavior(n *NPCInstance) Behavior {
	return r.behaviors[n.TypeID]
}

func (r *NPCRegistry) Find(id string) *NPCInstance {
	return r.byID[id]
}

func (r *NPCRegistry) ListByRoom(zone string, roomID int) []*NPCInstance {
	out := []*NPCInstance{}
	for _, n := range r.instances {
		if n.Zone == zone && n.RoomID == roomID {
			out = append(out, n)
		}
	}
	return out
}

// All returns every instance in load order.
func (r *NPCRegistry) All() []*NPCInstance {
	return append([]*NPCInstance(nil), r.instances...)
}

// Save rewrites the NPC snapshot.
func (r *NPCRegistry) Save() error {
	if r.path == "" {
		return nil
	}
	if err := storage.WriteJSON(r.path, r.instances); err != nil {
		return fmt.Errorf("saving npcs: %w", err)
	}
	return nil
}

func (r *NPCRegistry) persist() {
	if err := r.Save(); err != nil {
		slog.Error("saving npc instances", "path", r.path, "category", "persistence", "error", err)
	}
}
