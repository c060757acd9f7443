// Package behaviors holds the NPC behavior kinds the server ships with.
package behaviors

import (
	"encoding/json"
	"fmt"

	"github.com/pixil98/go-tileworld/internal/display"
	"github.com/pixil98/go-tileworld/internal/game"
	"github.com/pixil98/go-tileworld/internal/player"
)

const (
	KindGreeter = "greeter"
	KindGiver   = "giver"
	KindBard    = "bard"
)

// Register adds every behavior kind to set.
func Register(set *game.BehaviorSet) {
	set.Register(KindGreeter, newGreeter)
	set.Register(KindGiver, newGiver)
	set.Register(KindBard, newBard)
}

type validator interface {
	Validate() error
}

// decodeConfig fills cfg from raw on top of its defaults and validates it.
// An absent config keeps the defaults.
func decodeConfig(raw json.RawMessage, cfg validator) error {
	if len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, cfg); err != nil {
			return fmt.Errorf("decoding config: %w", err)
		}
	}
	return cfg.Validate()
}

// templateData is what greeting and dialogue templates can refer to.
type templateData struct {
	Npc    string
	Player string
	Tick   int64
}

func newTemplateData(npc *game.NPCInstance, p *player.Connection, gs game.GameState) templateData {
	return templateData{
		Npc:    npcName(npc),
		Player: p.Name(),
		Tick:   gs.CurrentTick(),
	}
}

func npcName(npc *game.NPCInstance) string {
	if npc.Name != "" {
		return display.Capitalize(npc.Name)
	}
	return display.Capitalize(npc.TypeID)
}

func unknownAction(kind, action string) error {
	return fmt.Errorf("%w: %s has no %q", game.ErrUnknownAction, kind, action)
}
