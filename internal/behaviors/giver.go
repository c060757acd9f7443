package behaviors

import (
	"encoding/json"
	"fmt"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-tileworld/internal/game"
	"github.com/pixil98/go-tileworld/internal/player"
)

const actionAsk = "ask"

type GiverConfig struct {
	TypeID      string `json:"typeId"`
	CooldownSec int64  `json:"cooldownSec"`
}

func (c *GiverConfig) Validate() error {
	el := errors.NewErrorList()
	if c.TypeID == "" {
		el.Add(fmt.Errorf("typeId is required"))
	}
	if c.CooldownSec < 0 {
		el.Add(fmt.Errorf("cooldownSec must not be negative"))
	}
	return el.Err()
}

// giverState is kept in the NPC's extension state.
type giverState struct {
	LastGift int64 `json:"lastGift"`
}

// giver hands out a fresh object on request, at most once per cooldown.
type giver struct {
	cfg GiverConfig
}

func newGiver(raw json.RawMessage) (game.Behavior, error) {
	cfg := GiverConfig{CooldownSec: 60}
	if err := decodeConfig(raw, &cfg); err != nil {
		return nil, err
	}
	return &giver{cfg: cfg}, nil
}

func (g *giver) Kind() string { return KindGiver }

func (g *giver) ContextMenu(*game.NPCInstance, *player.Connection, game.GameState) []game.MenuOption {
	return []game.MenuOption{{ID: actionAsk, Label: "Ask for a gift"}}
}

func (g *giver) OnContextAction(action string, npc *game.NPCInstance, p *player.Connection, gs game.GameState) error {
	if action != actionAsk {
		return unknownAction(KindGiver, action)
	}

	var st giverState
	found, err := npc.Ext.Get(KindGiver, &st)
	if err != nil {
		return err
	}
	now := gs.CurrentTick()
	if found && now-st.LastGift < g.cfg.CooldownSec {
		gs.SendToPlayer(p.ID, game.NewNotification(fmt.Sprintf("%s has nothing for you right now.", npcName(npc))))
		return nil
	}

	x, y := float64(npc.X*game.TileSize), float64(npc.Y*game.TileSize)
	if _, err := gs.SpawnObject(g.cfg.TypeID, npc.Zone, npc.RoomID, x, y); err != nil {
		return fmt.Errorf("spawning gift: %w", err)
	}

	if err := npc.Ext.Set(KindGiver, giverState{LastGift: now}); err != nil {
		return err
	}
	gs.PersistNPCs()
	gs.SendToPlayer(p.ID, game.NewNotification(fmt.Sprintf("%s leaves something at your feet.", npcName(npc))))
	return nil
}
