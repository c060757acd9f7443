package game

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pixil98/go-tileworld/internal/messaging"
	"github.com/pixil98/go-tileworld/internal/player"
	"github.com/pixil98/go-tileworld/internal/storage"
	"github.com/pixil98/go-tileworld/internal/world"
)

func writeFile(t *testing.T, path string, data string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// roomJSON renders a room from text rows where '#' is void and anything else
// is grass. extra is appended inside the object, e.g. `"spawns":[...]`.
func roomJSON(id int, rows []string, extra string) string {
	var out []string
	for _, row := range rows {
		var cells []string
		for _, ch := range row {
			terrain := "grass"
			if ch == '#' {
				terrain = "void"
			}
			cells = append(cells, fmt.Sprintf(`{"terrain":%q}`, terrain))
		}
		out = append(out, "["+strings.Join(cells, ",")+"]")
	}
	body := fmt.Sprintf(`"id":%d,"width":%d,"height":%d,"tiles":[%s],"exits":[]`,
		id, len(rows[0]), len(rows), strings.Join(out, ","))
	if extra != "" {
		body += "," + extra
	}
	return "{" + body + "}"
}

// writeWorld writes a one-zone world called "town" and returns its directory.
func writeWorld(t *testing.T, dir string, rooms map[int]string) string {
	t.Helper()
	worldDir := filepath.Join(dir, "world")

	var ids []int
	var idx world.Index
	for id := 1; id <= len(rooms); id++ {
		ids = append(ids, id)
		file := fmt.Sprintf("room-%d.json", id)
		idx.Rooms = append(idx.Rooms, world.IndexEntry{ID: id, File: file})
		writeFile(t, filepath.Join(worldDir, "town", file), rooms[id])
	}

	manifest, _ := json.Marshal(world.Manifest{
		Zones: []world.ZoneDef{{ID: "town", Name: "Town", Path: "town", Rooms: ids}},
	})
	index, _ := json.Marshal(idx)
	writeFile(t, filepath.Join(worldDir, world.ManifestFile), string(manifest))
	writeFile(t, filepath.Join(worldDir, "town", world.IndexFile), string(index))
	return worldDir
}

type fakeTimer struct {
	delay time.Duration
	fn    func()
}

type fakeTimers struct {
	pending map[string]fakeTimer
}

func newFakeTimers() *fakeTimers {
	return &fakeTimers{pending: map[string]fakeTimer{}}
}

func (f *fakeTimers) Schedule(key string, delay time.Duration, fn func()) {
	f.pending[key] = fakeTimer{delay: delay, fn: fn}
}

func (f *fakeTimers) Cancel(key string) {
	delete(f.pending, key)
}

func (f *fakeTimers) fire(key string) bool {
	tm, ok := f.pending[key]
	if !ok {
		return false
	}
	delete(f.pending, key)
	tm.fn()
	return true
}

type sink struct {
	msgs [][]byte
}

func (s *sink) Deliver(data []byte) bool {
	s.msgs = append(s.msgs, data)
	return true
}

func (s *sink) types() []string {
	var out []string
	for _, m := range s.msgs {
		var env struct {
			Type string `json:"type"`
		}
		_ = json.Unmarshal(m, &env)
		out = append(out, env.Type)
	}
	return out
}

func (s *sink) count(msgType string) int {
	n := 0
	for _, typ := range s.types() {
		if typ == msgType {
			n++
		}
	}
	return n
}

// last decodes the most recent message of msgType into out.
func (s *sink) last(t *testing.T, msgType string, out any) {
	t.Helper()
	types := s.types()
	for i := len(types) - 1; i >= 0; i-- {
		if types[i] == msgType {
			if err := json.Unmarshal(s.msgs[i], out); err != nil {
				t.Fatalf("decoding %s: %v", msgType, err)
			}
			return
		}
	}
	t.Fatalf("no %s message in %v", msgType, types)
}

type fixture struct {
	dir     string
	world   *world.Store
	objects *ObjectRegistry
	npcs    *NPCRegistry
	players *player.Registry
	records *storage.FileStore[*player.Record]
	clock   *Clock
	timers  *fakeTimers
	sim     *Simulation
}

type fixtureConfig struct {
	rooms     map[int]string
	objects   map[string]*ObjectTemplate
	npcs      map[string]*NPCTemplate
	behaviors *BehaviorSet
	opts      []SimulationOpt
}

func newFixture(t *testing.T, cfg fixtureConfig) *fixture {
	t.Helper()
	dir := t.TempDir()
	f := &fixture{dir: dir, timers: newFakeTimers()}

	var err error
	f.world, err = world.Load(writeWorld(t, dir, cfg.rooms))
	if err != nil {
		t.Fatalf("loading world: %v", err)
	}

	f.objects, err = LoadObjects(storage.NewStaticCatalog(cfg.objects), filepath.Join(dir, "objects.json"), f.world)
	if err != nil {
		t.Fatalf("loading objects: %v", err)
	}

	set := cfg.behaviors
	if set == nil {
		set = NewBehaviorSet()
	}
	f.npcs, err = LoadNPCs(storage.NewStaticCatalog(cfg.npcs), set, filepath.Join(dir, "npcs.json"), f.world)
	if err != nil {
		t.Fatalf("loading npcs: %v", err)
	}

	if err := os.MkdirAll(filepath.Join(dir, "players"), 0755); err != nil {
		t.Fatalf("creating players dir: %v", err)
	}
	f.records, err = storage.NewFileStore[*player.Record](filepath.Join(dir, "players"))
	if err != nil {
		t.Fatalf("opening records: %v", err)
	}

	f.players = player.NewRegistry(messaging.NewLocalBus())
	f.clock = LoadClock(filepath.Join(dir, "clock.json"))

	opts := append([]SimulationOpt{WithRand(rand.New(rand.NewPCG(1, 2)))}, cfg.opts...)
	f.sim = NewSimulation(f.world, f.objects, f.npcs, f.players, f.records, f.clock, f.timers, opts...)
	return f
}

// join registers a connected character in the given room.
func (f *fixture) join(t *testing.T, name string, roomID int, x, y float64) (*player.Connection, *sink) {
	t.Helper()
	s := &sink{}
	rec := &player.Record{Name: name, Zone: "town", RoomID: roomID, X: x, Y: y, Inventory: []string{}}
	c, err := f.players.Register(f.players.NextID(), rec, s)
	if err != nil {
		t.Fatalf("registering %s: %v", name, err)
	}
	return c, s
}

func ptr[T any](v T) *T {
	return &v
}
