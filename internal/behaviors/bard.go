package behaviors

import (
	"encoding/json"
	"fmt"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-tileworld/internal/game"
	"github.com/pixil98/go-tileworld/internal/player"
)

const actionRequest = "request"

type BardConfig struct {
	Key        string `json:"key"`
	EveryTicks int64  `json:"everyTicks"`
	Radius     int    `json:"radius"`
}

func (c *BardConfig) Validate() error {
	el := errors.NewErrorList()
	if c.Key == "" {
		el.Add(fmt.Errorf("key is required"))
	}
	if c.EveryTicks <= 0 {
		el.Add(fmt.Errorf("everyTicks must be positive"))
	}
	if c.Radius < 0 {
		el.Add(fmt.Errorf("radius must not be negative"))
	}
	return el.Err()
}

// bard plays a tune to nearby players on a fixed beat, or to one player on
// request.
type bard struct {
	cfg BardConfig
}

func newBard(raw json.RawMessage) (game.Behavior, error) {
	cfg := BardConfig{EveryTicks: 30, Radius: 4}
	if err := decodeConfig(raw, &cfg); err != nil {
		return nil, err
	}
	return &bard{cfg: cfg}, nil
}

func (b *bard) Kind() string { return KindBard }

func (b *bard) OnTick(npc *game.NPCInstance, gs game.GameState) error {
	if gs.CurrentTick()%b.cfg.EveryTicks != 0 {
		return nil
	}
	msg := b.tune(npc)
	for _, p := range gs.PlayersNear(npc.Zone, npc.RoomID, npc.X, npc.Y, b.cfg.Radius) {
		gs.SendToPlayer(p.ID, msg)
	}
	return nil
}

func (b *bard) ContextMenu(*game.NPCInstance, *player.Connection, game.GameState) []game.MenuOption {
	return []game.MenuOption{{ID: actionRequest, Label: "Request a song"}}
}

func (b *bard) OnContextAction(action string, npc *game.NPCInstance, p *player.Connection, gs game.GameState) error {
	if action != actionRequest {
		return unknownAction(KindBard, action)
	}
	gs.SendToPlayer(p.ID, b.tune(npc))
	return nil
}

func (b *bard) tune(npc *game.NPCInstance) game.PlayAudioMessage {
	return game.PlayAudioMessage{
		Type:       game.MsgPlayAudio,
		InstanceID: npc.InstanceID,
		Key:        b.cfg.Key,
	}
}
