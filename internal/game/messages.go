package game

import (
	"github.com/pixil98/go-tileworld/internal/pathfind"
	"github.com/pixil98/go-tileworld/internal/player"
	"github.com/pixil98/go-tileworld/internal/world"
)

// Server to client message types.
const (
	MsgInit          = "init"
	MsgJoin          = "join"
	MsgUpdate        = "update"
	MsgLeave         = "leave"
	MsgRoomUpdated   = "room-updated"
	MsgRoomResized   = "room-resized"
	MsgError         = "error"
	MsgTimeUpdate    = "time-update"
	MsgInitInventory = "init-inventory"
	MsgInitObjects   = "init-objects"
	MsgInitNPCs      = "init-npcs"
	MsgObjectPicked  = "object-picked"
	MsgObjectDropped = "object-dropped"
	MsgObjectSpawned = "object-spawned"
	MsgNPCStartPath  = "npc-start-path"
	MsgNPCMove       = "npc-move"
	MsgEmote         = "emote"
	MsgPlayAudio     = "play-audio"
	MsgContextMenu   = "context-menu"
	MsgContextAction = "context-action"
	MsgNotification  = "notification"
)

// PlayerInfo is how a connection is described to other clients.
type PlayerInfo struct {
	ID     int     `json:"id"`
	Name   string  `json:"name"`
	Zone   string  `json:"zone"`
	RoomID int     `json:"roomId"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Color  string  `json:"color"`
}

func NewPlayerInfo(c *player.Connection) PlayerInfo {
	return PlayerInfo{
		ID:     c.ID,
		Name:   c.Name(),
		Zone:   c.Zone,
		RoomID: c.RoomID,
		X:      c.X,
		Y:      c.Y,
		Color:  c.Record.Color,
	}
}

type InitMessage struct {
	Type          string       `json:"type"`
	ID            int          `json:"id"`
	Players       []PlayerInfo `json:"players"`
	DefaultZone   string       `json:"defaultZone"`
	DefaultRoomID int          `json:"defaultRoomId"`
}

type JoinMessage struct {
	Type   string     `json:"type"`
	Player PlayerInfo `json:"player"`
}

type UpdateMessage struct {
	Type   string  `json:"type"`
	ID     int     `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	RoomID int     `json:"roomId"`
}

type LeaveMessage struct {
	Type string `json:"type"`
	ID   int    `json:"id"`
}

type RoomUpdatedMessage struct {
	Type   string     `json:"type"`
	Zone   string     `json:"zone"`
	RoomID int        `json:"roomId"`
	X      int        `json:"x"`
	Y      int        `json:"y"`
	Tile   world.Tile `json:"tile"`
}

type RoomResizedMessage struct {
	Type   string         `json:"type"`
	Zone   string         `json:"zone"`
	RoomID int            `json:"roomId"`
	Width  int            `json:"width"`
	Height int            `json:"height"`
	Tiles  [][]world.Tile `json:"tiles"`
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func NewError(msg string) ErrorMessage {
	return ErrorMessage{Type: MsgError, Message: msg}
}

type TimeUpdateMessage struct {
	Type   string `json:"type"`
	Tick   int64  `json:"tick"`
	Hour   int    `json:"hour"`
	Day    int    `json:"day"`
	Season string `json:"season"`
	Year   int    `json:"year"`
}

func NewTimeUpdate(c *Clock) TimeUpdateMessage {
	return TimeUpdateMessage{
		Type:   MsgTimeUpdate,
		Tick:   c.Tick,
		Hour:   c.Hour,
		Day:    c.Day,
		Season: c.Season(),
		Year:   c.Year(),
	}
}

type InventoryMessage struct {
	Type    string            `json:"type"`
	Objects []*ObjectInstance `json:"objects"`
}

type RoomObjectsMessage struct {
	Type    string            `json:"type"`
	Zone    string            `json:"zone"`
	RoomID  int               `json:"roomId"`
	Objects []*ObjectInstance `json:"objects"`
}

type RoomNPCsMessage struct {
	Type   string         `json:"type"`
	Zone   string         `json:"zone"`
	RoomID int            `json:"roomId"`
	NPCs   []*NPCInstance `json:"npcs"`
}

type ObjectPickedMessage struct {
	Type       string `json:"type"`
	InstanceID string `json:"instanceId"`
	PlayerID   int    `json:"playerId"`
	PlayerName string `json:"playerName"`
}

type ObjectDroppedMessage struct {
	Type     string          `json:"type"`
	Instance *ObjectInstance `json:"instance"`
	PlayerID int             `json:"playerId"`
}

type ObjectSpawnedMessage struct {
	Type     string          `json:"type"`
	Instance *ObjectInstance `json:"instance"`
}

type NPCStartPathMessage struct {
	Type         string           `json:"type"`
	InstanceID   string           `json:"instanceId"`
	Path         []pathfind.Point `json:"path"`
	StepDuration int64            `json:"stepDuration"`
}

type NPCMoveMessage struct {
	Type       string `json:"type"`
	InstanceID string `json:"instanceId"`
	X          int    `json:"x"`
	Y          int    `json:"y"`
}

type EmoteMessage struct {
	Type       string `json:"type"`
	InstanceID string `json:"instanceId"`
	Emote      string `json:"emote"`
}

type PlayAudioMessage struct {
	Type       string `json:"type"`
	InstanceID string `json:"instanceId"`
	Key        string `json:"key"`
}

// MenuOption is one entry of an NPC context menu.
type MenuOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type ContextMenuMessage struct {
	Type     string       `json:"type"`
	TargetID string       `json:"targetId"`
	Options  []MenuOption `json:"options"`
}

type ContextActionMessage struct {
	Type     string `json:"type"`
	TargetID string `json:"targetId"`
	ActionID string `json:"actionId"`
	Result   string `json:"result,omitempty"`
}

type NotificationMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func NewNotification(msg string) NotificationMessage {
	return NotificationMessage{Type: MsgNotification, Message: msg}
}
