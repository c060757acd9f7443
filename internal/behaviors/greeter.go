package behaviors

import (
	"encoding/json"
	"fmt"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-tileworld/internal/display"
	"github.com/pixil98/go-tileworld/internal/game"
	"github.com/pixil98/go-tileworld/internal/player"
)

const actionTalk = "talk"

type GreeterConfig struct {
	Radius   int    `json:"radius"`
	Emote    string `json:"emote"`
	Greeting string `json:"greeting"`
	Dialogue string `json:"dialogue"`
	Width    int    `json:"width"`
}

func (c *GreeterConfig) Validate() error {
	el := errors.NewErrorList()
	if c.Radius < 0 {
		el.Add(fmt.Errorf("radius must not be negative"))
	}
	if c.Emote == "" {
		el.Add(fmt.Errorf("emote is required"))
	}
	if c.Width < 0 {
		el.Add(fmt.Errorf("width must not be negative"))
	}
	return el.Err()
}

// greeter waves at players the first time they come near and will talk when
// asked. Players it has greeted are remembered across restarts.
type greeter struct {
	cfg      GreeterConfig
	greeting *display.Template
	dialogue *display.Template
}

func newGreeter(raw json.RawMessage) (game.Behavior, error) {
	cfg := GreeterConfig{
		Radius:   2,
		Emote:    "wave",
		Greeting: "Welcome, {{ .Player }}!",
		Dialogue: "{{ .Npc }} has nothing more to say.",
	}
	if err := decodeConfig(raw, &cfg); err != nil {
		return nil, err
	}

	greeting, err := display.ParseTemplate("greeting", cfg.Greeting)
	if err != nil {
		return nil, err
	}
	dialogue, err := display.ParseTemplate("dialogue", cfg.Dialogue)
	if err != nil {
		return nil, err
	}

	return &greeter{cfg: cfg, greeting: greeting, dialogue: dialogue}, nil
}

func (g *greeter) Kind() string { return KindGreeter }

func (g *greeter) OnTick(npc *game.NPCInstance, gs game.GameState) error {
	var greeted []string
	if _, err := npc.Ext.Get(KindGreeter, &greeted); err != nil {
		return err
	}
	seen := make(map[string]bool, len(greeted))
	for _, k := range greeted {
		seen[k] = true
	}

	var fresh []string
	for _, p := range gs.PlayersNear(npc.Zone, npc.RoomID, npc.X, npc.Y, g.cfg.Radius) {
		key := player.Key(p.Name())
		if seen[key] {
			continue
		}
		text, err := g.greeting.Render(newTemplateData(npc, p, gs))
		if err != nil {
			return err
		}
		gs.SendToPlayer(p.ID, game.NewNotification(display.Wrap(text, g.cfg.Width)))
		seen[key] = true
		fresh = append(fresh, key)
	}
	if len(fresh) == 0 {
		return nil
	}

	gs.BroadcastToRoom(npc.Zone, npc.RoomID, game.EmoteMessage{
		Type:       game.MsgEmote,
		InstanceID: npc.InstanceID,
		Emote:      g.cfg.Emote,
	})

	if err := npc.Ext.Set(KindGreeter, append(greeted, fresh...)); err != nil {
		return err
	}
	gs.PersistNPCs()
	return nil
}

func (g *greeter) ContextMenu(*game.NPCInstance, *player.Connection, game.GameState) []game.MenuOption {
	return []game.MenuOption{{ID: actionTalk, Label: "Talk"}}
}

func (g *greeter) OnContextAction(action string, npc *game.NPCInstance, p *player.Connection, gs game.GameState) error {
	if action != actionTalk {
		return unknownAction(KindGreeter, action)
	}
	text, err := g.dialogue.Render(newTemplateData(npc, p, gs))
	if err != nil {
		return err
	}
	gs.SendToPlayer(p.ID, game.NewNotification(display.Wrap(text, g.cfg.Width)))
	return nil
}
