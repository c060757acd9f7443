package game

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/pixil98/go-tileworld/internal/player"
)

// Behavior is the per-template logic bound to NPCs. A behavior implements
// any of TickBehavior, MenuBehavior and ActionBehavior.
type Behavior interface {
	Kind() string
}

// TickBehavior runs once per tick for every NPC of its template, after roam
// decisions have been made.
type TickBehavior interface {
	OnTick(npc *NPCInstance, gs GameState) error
}

// MenuBehavior lists the actions a player can take on an NPC.
type MenuBehavior interface {
	ContextMenu(npc *NPCInstance, p *player.Connection, gs GameState) []MenuOption
}

// ActionBehavior handles an action chosen from the context menu.
type ActionBehavior interface {
	OnContextAction(action string, npc *NPCInstance, p *player.Connection, gs GameState) error
}

// BehaviorFactory builds a behavior from a template's config block.
type BehaviorFactory func(config json.RawMessage) (Behavior, error)

// BehaviorSet is the closed set of behavior kinds known to the server.
type BehaviorSet struct {
	factories map[string]BehaviorFactory
}

func NewBehaviorSet() *BehaviorSet {
	return &BehaviorSet{factories: map[string]BehaviorFactory{}}
}

// Register adds a kind. Registering the same kind twice replaces the factory.
func (s *BehaviorSet) Register(kind string, f BehaviorFactory) {
	s.factories[kind] = f
}

func (s *BehaviorSet) Build(ref *BehaviorRef) (Behavior, error) {
	f, ok := s.factories[ref.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBehavior, ref.Kind)
	}
	b, err := f(ref.Config)
	if err != nil {
		return nil, fmt.Errorf("configuring behavior %q: %w", ref.Kind, err)
	}
	return b, nil
}

// guard runs fn and turns a panic into an error so one broken NPC cannot
// stop the loop.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}

func logBehaviorError(npc *NPCInstance, b Behavior, hook string, err error) {
	slog.Error("behavior failed",
		"category", "behavior",
		"kind", b.Kind(),
		"hook", hook,
		"instance", npc.InstanceID,
		"error", err)
}
