package router

import (
	"encoding/json"
	"fmt"

	"github.com/pixil98/go-tileworld/internal/game"
	"github.com/pixil98/go-tileworld/internal/player"
)

// Client message types.
const (
	MsgUpdate          = "update"
	MsgPickup          = "pickup"
	MsgDrop            = "drop"
	MsgRequestSnapshot = "request-objects-and-npcs"
	MsgGetContextMenu  = "get-context-menu"
	MsgContextAction   = "context-action"
	MsgEditTile        = "edit-tile"
	MsgEditTileExits   = "edit-tile-exits"
	MsgResizeRoom      = "resize-room"
)

// Conn is the transport side of one client.
type Conn interface {
	player.Sink
	// Close sends anything still queued and then closes the connection.
	Close()
}

// HandlerFunc handles one typed message from an authenticated session. raw is
// the whole envelope.
type HandlerFunc func(s *Session, raw json.RawMessage) error

// Router authenticates new connections and dispatches their messages to the
// simulation. It must only be used from the simulation loop.
type Router struct {
	sim      *game.Simulation
	handlers map[string]HandlerFunc
}

func New(sim *game.Simulation) *Router {
	r := &Router{
		sim:      sim,
		handlers: map[string]HandlerFunc{},
	}

	r.Register(MsgUpdate, handleUpdate)
	r.Register(MsgPickup, handlePickup)
	r.Register(MsgDrop, handleDrop)
	r.Register(MsgRequestSnapshot, handleRequestSnapshot)
	r.Register(MsgGetContextMenu, handleGetContextMenu)
	r.Register(MsgContextAction, handleContextAction)
	r.Register(MsgEditTile, requireEditor(handleEditTile))
	r.Register(MsgEditTileExits, requireEditor(handleEditTileExits))
	r.Register(MsgResizeRoom, requireEditor(handleResizeRoom))

	return r
}

// Register binds a handler to a message type, replacing any earlier one.
func (r *Router) Register(msgType string, h HandlerFunc) {
	r.handlers[msgType] = h
}

// Open starts a session for a freshly accepted connection.
func (r *Router) Open(conn Conn) *Session {
	return &Session{router: r, conn: conn}
}

// decode unmarshals a message body into out, reporting malformed input as a
// protocol failure.
func decode(raw json.RawMessage, out any) error {
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding message: %w", err)
	}
	return nil
}
