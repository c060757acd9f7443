package player

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/pixil98/go-tileworld/internal/messaging"
)

// Sink is the outbound side of a client connection.
type Sink interface {
	// Deliver queues data for the client and reports false when it had to be
	// dropped.
	Deliver(data []byte) bool
}

// Connection is one authenticated client bound to its character record.
type Connection struct {
	ID     int
	Record *Record

	Zone   string
	RoomID int
	X      float64
	Y      float64

	unsubscribe func()
}

func (c *Connection) Name() string {
	return c.Record.Name
}

// Subject is the bus subject carrying messages for connection id.
func Subject(id int) string {
	return fmt.Sprintf("conn.%d", id)
}

// Registry maps connection ids to characters and positions and fans
// messages out to them through the bus. It is owned by the simulation loop
// and is not safe for concurrent use.
type Registry struct {
	bus    messaging.Bus
	nextID int
	conns  map[int]*Connection
	byKey  map[string]int
	order  []int
}

func NewRegistry(bus messaging.Bus) *Registry {
	return &Registry{
		bus:   bus,
		conns: map[int]*Connection{},
		byKey: map[string]int{},
	}
}

// NextID allocates a connection id. Ids are never reused within a process.
func (r *Registry) NextID() int {
	r.nextID++
	return r.nextID
}

// Register binds id to rec, placing the connection at the record's saved
// position, and routes the connection's subject to sink.
func (r *Registry) Register(id int, rec *Record, sink Sink) (*Connection, error) {
	if _, ok := r.conns[id]; ok {
		return nil, fmt.Errorf("connection %d already registered", id)
	}

	unsub, err := r.bus.Subscribe(Subject(id), func(data []byte) {
		if !sink.Deliver(data) {
			slog.Warn("send buffer full, dropping message", "conn", id, "category", "protocol")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("subscribing connection %d: %w", id, err)
	}

	c := &Connection{
		ID:          id,
		Record:      rec,
		Zone:        rec.Zone,
		RoomID:      rec.RoomID,
		X:           rec.X,
		Y:           rec.Y,
		unsubscribe: unsub,
	}
	r.conns[id] = c
	r.byKey[Key(rec.Name)] = id
	r.order = append(r.order, id)

	return c, nil
}

func (r *Registry) Lookup(id int) *Connection {
	return r.conns[id]
}

// LookupName finds the connection playing the named character.
func (r *Registry) LookupName(name string) *Connection {
	id, ok := r.byKey[Key(name)]
	if !ok {
		return nil
	}
	return r.conns[id]
}

// UpdatePosition overwrites the position of a connection. It reports false if
// the connection is not registered.
func (r *Registry) UpdatePosition(id int, x, y float64, roomID int) bool {
	c, ok := r.conns[id]
	if !ok {
		return false
	}
	c.X, c.Y, c.RoomID = x, y, roomID
	return true
}

// Deregister removes a connection and stops its delivery. The removed
// connection is returned so its record can be saved.
func (r *Registry) Deregister(id int) *Connection {
	c, ok := r.conns[id]
	if !ok {
		return nil
	}
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
	delete(r.conns, id)
	if r.byKey[Key(c.Name())] == id {
		delete(r.byKey, Key(c.Name()))
	}
	r.order = slices.DeleteFunc(r.order, func(v int) bool { return v == id })
	return c
}

func (r *Registry) Count() int {
	return len(r.order)
}

// ForEach calls fn for every connection in registration order.
func (r *Registry) ForEach(fn func(*Connection)) {
	for _, id := range slices.Clone(r.order) {
		if c, ok := r.conns[id]; ok {
			fn(c)
		}
	}
}

func (r *Registry) ForEachInRoom(zone string, roomID int, fn func(*Connection)) {
	r.ForEach(func(c *Connection) {
		if c.Zone == zone && c.RoomID == roomID {
			fn(c)
		}
	})
}

// ForEachInProximity calls fn for connections in the room whose position is
// within radius of the centre on both axes. The test is inclusive.
func (r *Registry) ForEachInProximity(zone string, roomID int, cx, cy, radius float64, fn func(*Connection)) {
	r.ForEachInRoom(zone, roomID, func(c *Connection) {
		if math.Abs(c.X-cx) <= radius && math.Abs(c.Y-cy) <= radius {
			fn(c)
		}
	})
}

// Send delivers msg to a single connection.
func (r *Registry) Send(id int, msg any) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshalling message: %w", err)
	}
	return r.publish(id, data)
}

// BroadcastRoom delivers msg to every connection in the room except those
// listed in exclude.
func (r *Registry) BroadcastRoom(zone string, roomID int, msg any, exclude ...int) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshalling message: %w", err)
	}
	r.ForEachInRoom(zone, roomID, func(c *Connection) {
		if !slices.Contains(exclude, c.ID) {
			_ = r.publish(c.ID, data)
		}
	})
	return nil
}

// BroadcastAll delivers msg to every connection except those in exclude.
func (r *Registry) BroadcastAll(msg any, exclude ...int) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshalling message: %w", err)
	}
	r.ForEach(func(c *Connection) {
		if !slices.Contains(exclude, c.ID) {
			_ = r.publish(c.ID, data)
		}
	})
	return nil
}

func (r *Registry) publish(id int, data []byte) error {
	if err := r.bus.Publish(Subject(id), data); err != nil {
		slog.Warn("publishing message", "conn", id, "category", "protocol", "error", err)
		return fmt.Errorf("publishing to connection %d: %w", id, err)
	}
	return nil
}
