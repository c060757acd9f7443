package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	goerrors "github.com/pixil98/go-errors"
	"github.com/pixil98/go-tileworld/internal/player"
	"github.com/pixil98/go-tileworld/internal/storage"
	"github.com/pixil98/go-tileworld/internal/world"
)

const DefaultBaseStepDuration = 400 * time.Millisecond

// Scheduler runs keyed one-shot callbacks on the simulation loop. Scheduling
// a key that is already pending replaces the earlier callback.
type Scheduler interface {
	Schedule(key string, delay time.Duration, fn func())
	Cancel(key string)
}

// Simulation owns all mutable world state. Every method must be called from
// the single driver loop.
type Simulation struct {
	world   *world.Store
	objects *ObjectRegistry
	npcs    *NPCRegistry
	players *player.Registry
	records storage.Storer[*player.Record]
	clock   *Clock
	timers  Scheduler

	rng         *rand.Rand
	baseStep    time.Duration
	defaultZone string
	defaultRoom int
}

func NewSimulation(
	w *world.Store,
	objects *ObjectRegistry,
	npcs *NPCRegistry,
	players *player.Registry,
	records storage.Storer[*player.Record],
	clock *Clock,
	timers Scheduler,
	opts ...SimulationOpt,
) *Simulation {
	s := &Simulation{
		world:    w,
		objects:  objects,
		npcs:     npcs,
		players:  players,
		records:  records,
		clock:    clock,
		timers:   timers,
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		baseStep: DefaultBaseStepDuration,
	}
	s.defaultZone, s.defaultRoom, _ = w.DefaultLocation()

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Simulation) World() *world.Store                     { return s.world }
func (s *Simulation) Objects() *ObjectRegistry                { return s.objects }
func (s *Simulation) NPCs() *NPCRegistry                      { return s.npcs }
func (s *Simulation) Players() *player.Registry               { return s.players }
func (s *Simulation) Records() storage.Storer[*player.Record] { return s.records }
func (s *Simulation) Clock() *Clock                           { return s.clock }

func (s *Simulation) DefaultLocation() (string, int) {
	return s.defaultZone, s.defaultRoom
}

// Tick advances the world by one step.
func (s *Simulation) Tick(ctx context.Context) error {
	if s.clock.Advance() {
		slog.DebugContext(ctx, "hour changed", "hour", s.clock.Hour, "day", s.clock.Day)
		s.broadcastAll(NewTimeUpdate(s.clock))
		if err := s.clock.Save(); err != nil {
			slog.ErrorContext(ctx, "saving clock", "category", "persistence", "error", err)
		}
	}

	for _, r := range s.objects.SweepRespawns(s.clock.Tick) {
		o := r.Instance
		s.BroadcastToRoom(o.Zone, o.RoomID, ObjectSpawnedMessage{Type: MsgObjectSpawned, Instance: o})
		if c := s.players.LookupName(r.PrevOwner); c != nil {
			s.SendToPlayer(c.ID, s.Inventory(c.Name()))
		}
	}

	npcs := s.npcs.All()
	for _, n := range npcs {
		s.roam(n)
	}
	for _, n := range npcs {
		b := s.npcs.Behavior(n)
		tb, ok := b.(TickBehavior)
		if !ok {
			continue
		}
		if err := guard(func() error { return tb.OnTick(n, s) }); err != nil {
			logBehaviorError(n, b, "tick", err)
		}
	}

	return nil
}

// Inventory builds the init-inventory message for a character.
func (s *Simulation) Inventory(name string) InventoryMessage {
	return InventoryMessage{Type: MsgInitInventory, Objects: s.objects.ListByOwner(name)}
}

// RoomObjects builds the init-objects message for a room.
func (s *Simulation) RoomObjects(zone string, roomID int) RoomObjectsMessage {
	return RoomObjectsMessage{
		Type:    MsgInitObjects,
		Zone:    zone,
		RoomID:  roomID,
		Objects: s.objects.ListByRoom(zone, roomID, true),
	}
}

// RoomNPCs builds the init-npcs message for a room.
func (s *Simulation) RoomNPCs(zone string, roomID int) RoomNPCsMessage {
	return RoomNPCsMessage{
		Type:   MsgInitNPCs,
		Zone:   zone,
		RoomID: roomID,
		NPCs:   s.npcs.ListByRoom(zone, roomID),
	}
}

// SavePlayer writes the connection's position and current inventory to its
// record file.
func (s *Simulation) SavePlayer(c *player.Connection) error {
	rec := c.Record
	rec.Zone, rec.RoomID = c.Zone, c.RoomID
	rec.X, rec.Y = c.X, c.Y

	rec.Inventory = []string{}
	for _, o := range s.objects.ListByOwner(c.Name()) {
		rec.Inventory = append(rec.Inventory, o.InstanceID)
	}

	if err := s.records.Save(player.Key(rec.Name), rec); err != nil {
		return fmt.Errorf("saving player %s: %w", rec.Name, err)
	}
	return nil
}

// ContextMenu asks the NPC's behavior for the options it offers p. An NPC
// without a menu offers nothing.
func (s *Simulation) ContextMenu(npcID string, p *player.Connection) ([]MenuOption, error) {
	n := s.npcs.Find(npcID)
	if n == nil {
		return nil, fmt.Errorf("%w: %s", ErrNPCNotFound, npcID)
	}

	b := s.npcs.Behavior(n)
	mb, ok := b.(MenuBehavior)
	if !ok {
		return []MenuOption{}, nil
	}

	var opts []MenuOption
	err := guard(func() error {
		opts = mb.ContextMenu(n, p, s)
		return nil
	})
	if err != nil {
		logBehaviorError(n, b, "menu", err)
		return []MenuOption{}, nil
	}
	if opts == nil {
		opts = []MenuOption{}
	}
	return opts, nil
}

// ContextAction hands a chosen menu action to the NPC's behavior.
func (s *Simulation) ContextAction(npcID, action string, p *player.Connection) error {
	n := s.npcs.Find(npcID)
	if n == nil {
		return fmt.Errorf("%w: %s", ErrNPCNotFound, npcID)
	}

	b := s.npcs.Behavior(n)
	ab, ok := b.(ActionBehavior)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoActions, npcID)
	}

	err := guard(func() error { return ab.OnContextAction(action, n, p, s) })
	if err != nil {
		if !errors.Is(err, ErrUnknownAction) {
			logBehaviorError(n, b, "action", err)
		}
		return fmt.Errorf("npc %s action %q: %w", npcID, action, err)
	}
	return nil
}

// Shutdown flushes every piece of live state to disk.
func (s *Simulation) Shutdown(ctx context.Context) error {
	el := goerrors.NewErrorList()

	el.Add(s.clock.Save())
	el.Add(s.objects.Save())
	el.Add(s.npcs.Save())
	s.players.ForEach(func(c *player.Connection) {
		el.Add(s.SavePlayer(c))
	})

	err := el.Err()
	if err != nil {
		slog.ErrorContext(ctx, "flushing state", "category", "persistence", "error", err)
	} else {
		slog.InfoContext(ctx, "state flushed", "tick", s.clock.Tick, "players", s.players.Count())
	}
	return err
}

func (s *Simulation) broadcastAll(msg any) {
	if err := s.players.BroadcastAll(msg); err != nil {
		slog.Error("broadcasting", "error", err)
	}
}

// CurrentTick satisfies GameState.
func (s *Simulation) CurrentTick() int64 {
	return s.clock.Tick
}

func (s *Simulation) PlayersInRoom(zone string, roomID int) []*player.Connection {
	var out []*player.Connection
	s.players.ForEachInRoom(zone, roomID, func(c *player.Connection) {
		out = append(out, c)
	})
	return out
}

// PlayersNear compares positions in pixels, with the NPC's tile scaled by
// TileSize.
func (s *Simulation) PlayersNear(zone string, roomID int, x, y, radius int) []*player.Connection {
	var out []*player.Connection
	s.players.ForEachInProximity(zone, roomID,
		float64(x*TileSize), float64(y*TileSize), float64(radius*TileSize),
		func(c *player.Connection) {
			out = append(out, c)
		})
	return out
}

func (s *Simulation) BroadcastToRoom(zone string, roomID int, msg any) {
	if err := s.players.BroadcastRoom(zone, roomID, msg); err != nil {
		slog.Error("broadcasting to room", "zone", zone, "room", roomID, "error", err)
	}
}

func (s *Simulation) SendToPlayer(connID int, msg any) {
	if err := s.players.Send(connID, msg); err != nil {
		slog.Warn("sending to player", "conn", connID, "error", err)
	}
}

func (s *Simulation) SpawnObject(typeID, zone string, roomID int, x, y float64) (*ObjectInstance, error) {
	o, err := s.objects.Spawn(typeID, zone, roomID, x, y)
	if err != nil {
		return nil, err
	}
	s.BroadcastToRoom(zone, roomID, ObjectSpawnedMessage{Type: MsgObjectSpawned, Instance: o})
	return o, nil
}

func (s *Simulation) PersistNPCs() {
	s.npcs.persist()
}
