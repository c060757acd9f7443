package router

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pixil98/go-tileworld/internal/game"
	"github.com/pixil98/go-tileworld/internal/messaging"
	"github.com/pixil98/go-tileworld/internal/player"
	"github.com/pixil98/go-tileworld/internal/storage"
	"github.com/pixil98/go-tileworld/internal/world"
)

type fakeConn struct {
	msgs   [][]byte
	closed bool
}

func (c *fakeConn) Deliver(data []byte) bool {
	c.msgs = append(c.msgs, data)
	return true
}

func (c *fakeConn) Close() {
	c.closed = true
}

func (c *fakeConn) types() []string {
	var out []string
	for _, m := range c.msgs {
		var env struct {
			Type string `json:"type"`
		}
		_ = json.Unmarshal(m, &env)
		out = append(out, env.Type)
	}
	return out
}

func (c *fakeConn) count(msgType string) int {
	n := 0
	for _, typ := range c.types() {
		if typ == msgType {
			n++
		}
	}
	return n
}

func (c *fakeConn) last(t *testing.T, msgType string, out any) {
	t.Helper()
	types := c.types()
	for i := len(types) - 1; i >= 0; i-- {
		if types[i] == msgType {
			if err := json.Unmarshal(c.msgs[i], out); err != nil {
				t.Fatalf("decoding %s: %v", msgType, err)
			}
			return
		}
	}
	t.Fatalf("no %s message in %v", msgType, types)
}

func (c *fakeConn) lastError(t *testing.T) string {
	t.Helper()
	var msg game.ErrorMessage
	c.last(t, game.MsgError, &msg)
	return msg.Message
}

func (c *fakeConn) reset() {
	c.msgs = nil
}

func writeFile(t *testing.T, path string, data string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func grassRoom(id, width, height int, extra string) string {
	rows := make([]string, height)
	for y := range rows {
		cells := make([]string, width)
		for x := range cells {
			cells[x] = `{"terrain":"grass","layers":["flowers"]}`
		}
		rows[y] = "[" + strings.Join(cells, ",") + "]"
	}
	body := fmt.Sprintf(`"id":%d,"width":%d,"height":%d,"tiles":[%s],"exits":[]`,
		id, width, height, strings.Join(rows, ","))
	if extra != "" {
		body += "," + extra
	}
	return "{" + body + "}"
}

// talker offers a single "talk" action that notifies the caller.
type talker struct{}

func (talker) Kind() string { return "talker" }

func (talker) ContextMenu(*game.NPCInstance, *player.Connection, game.GameState) []game.MenuOption {
	return []game.MenuOption{{ID: "talk", Label: "Talk"}}
}

func (talker) OnContextAction(action string, _ *game.NPCInstance, p *player.Connection, gs game.GameState) error {
	gs.SendToPlayer(p.ID, game.NewNotification("Hoo "+p.Name()))
	return nil
}

type testEnv struct {
	dir     string
	router  *Router
	sim     *game.Simulation
	records *storage.FileStore[*player.Record]
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	worldDir := filepath.Join(dir, "world")

	writeFile(t, filepath.Join(worldDir, world.ManifestFile),
		`{"zones":[{"id":"town","name":"Town","path":"town","rooms":[1,2]}]}`)
	writeFile(t, filepath.Join(worldDir, "town", world.IndexFile),
		`{"rooms":[{"id":1,"file":"room-1.json"},{"id":2,"file":"room-2.json"}]}`)
	writeFile(t, filepath.Join(worldDir, "town", "room-1.json"), grassRoom(1, 5, 5,
		`"spawns":[{"typeId":"apple","x":1,"y":1,"respawnAfterSec":30}],"npcs":[{"typeId":"owl","x":2,"y":2},{"typeId":"cat","x":4,"y":4}]`))
	writeFile(t, filepath.Join(worldDir, "town", "room-2.json"), grassRoom(2, 3, 3, ""))

	w, err := world.Load(worldDir)
	if err != nil {
		t.Fatalf("loading world: %v", err)
	}

	objects, err := game.LoadObjects(storage.NewStaticCatalog(map[string]*game.ObjectTemplate{
		"apple": {Name: "Apple", Sprite: "apple.png"},
	}), filepath.Join(dir, "objects.json"), w)
	if err != nil {
		t.Fatalf("loading objects: %v", err)
	}

	set := game.NewBehaviorSet()
	set.Register("talker", func(json.RawMessage) (game.Behavior, error) { return talker{}, nil })
	npcs, err := game.LoadNPCs(storage.NewStaticCatalog(map[string]*game.NPCTemplate{
		"owl": {Name: "Owl", Sprite: "owl.png", Behavior: &game.BehaviorRef{Kind: "talker"}},
		"cat": {Name: "Cat", Sprite: "cat.png"},
	}), set, filepath.Join(dir, "npcs.json"), w)
	if err != nil {
		t.Fatalf("loading npcs: %v", err)
	}

	if err := os.MkdirAll(filepath.Join(dir, "players"), 0755); err != nil {
		t.Fatalf("creating players dir: %v", err)
	}
	records, err := storage.NewFileStore[*player.Record](filepath.Join(dir, "players"))
	if err != nil {
		t.Fatalf("opening records: %v", err)
	}

	sim := game.NewSimulation(w, objects, npcs,
		player.NewRegistry(messaging.NewLocalBus()),
		records,
		game.LoadClock(filepath.Join(dir, "clock.json")),
		noTimers{})

	return &testEnv{dir: dir, router: New(sim), sim: sim, records: records}
}

type noTimers struct{}

func (noTimers) Schedule(string, time.Duration, func()) {}
func (noTimers) Cancel(string)                          {}

// seed stores a character with a real password hash.
func (e *testEnv) seed(t *testing.T, name, password string, privilege int) {
	t.Helper()
	salt, hash, err := player.HashPassword(password)
	if err != nil {
		t.Fatalf("hashing: %v", err)
	}
	rec := player.NewRecord(name, "town", 1, salt, hash)
	rec.Privilege = privilege
	if err := e.records.Save(player.Key(name), rec); err != nil {
		t.Fatalf("saving record: %v", err)
	}
}

func authFrame(name, password string, create bool) []byte {
	b, _ := json.Marshal(authRequest{Name: name, Password: password, Create: create})
	return b
}

// login opens a session and authenticates it, failing the test if the login
// is refused.
func (e *testEnv) login(t *testing.T, name, password string, create bool) (*Session, *fakeConn) {
	t.Helper()
	conn := &fakeConn{}
	s := e.router.Open(conn)
	s.Handle(authFrame(name, password, create))
	if conn.closed || s.Player() == nil {
		t.Fatalf("login %s refused: %v", name, conn.types())
	}
	return s, conn
}

func send(s *Session, v any) {
	b, _ := json.Marshal(v)
	s.Handle(b)
}

func (e *testEnv) roomFile(t *testing.T, id int) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(e.dir, "world", "town", fmt.Sprintf("room-%d.json", id)))
	if err != nil {
		t.Fatalf("reading room file: %v", err)
	}
	return data
}

func (e *testEnv) npcID(typeID string) string {
	for _, n := range e.sim.NPCs().All() {
		if n.TypeID == typeID {
			return n.InstanceID
		}
	}
	return ""
}
