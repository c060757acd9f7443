package command

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-tileworld/internal/game"
	"github.com/pixil98/go-tileworld/internal/player"
	"github.com/pixil98/go-tileworld/internal/storage"
	"github.com/pixil98/go-tileworld/internal/world"
)

const instancesFile = "instances.json"

type StorageConfig struct {
	World   string `json:"world"`
	Objects string `json:"objects"`
	NPCs    string `json:"npcs"`
	Players string `json:"players"`
	Clock   string `json:"clock"`
}

func (c *StorageConfig) Validate() error {
	el := errors.NewErrorList()
	el.Add(validateDir("world", c.World))
	el.Add(validateDir("objects", c.Objects))
	el.Add(validateDir("npcs", c.NPCs))
	if c.Players == "" {
		el.Add(fmt.Errorf("players: path is required"))
	}
	if c.Clock == "" {
		el.Add(fmt.Errorf("clock: path is required"))
	}
	return el.Err()
}

func validateDir(name, path string) error {
	if path == "" {
		return fmt.Errorf("%s: path is required", name)
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%s: invalid path %q: %w", name, path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: %q is not a directory", name, path)
	}
	return nil
}

func (c *StorageConfig) LoadWorld() (*world.Store, error) {
	w, err := world.Load(c.World)
	if err != nil {
		return nil, fmt.Errorf("loading world: %w", err)
	}
	return w, nil
}

func (c *StorageConfig) LoadObjects(w *world.Store) (*game.ObjectRegistry, error) {
	templates, err := storage.NewCatalog[*game.ObjectTemplate](c.Objects, "objects")
	if err != nil {
		return nil, fmt.Errorf("loading object templates: %w", err)
	}
	slog.Info("loaded object templates", "ids", templates.Ids())
	return game.LoadObjects(templates, filepath.Join(c.Objects, instancesFile), w)
}

func (c *StorageConfig) LoadNPCs(set *game.BehaviorSet, w *world.Store) (*game.NPCRegistry, error) {
	templates, err := storage.NewCatalog[*game.NPCTemplate](c.NPCs, "npcs")
	if err != nil {
		return nil, fmt.Errorf("loading npc templates: %w", err)
	}
	slog.Info("loaded npc templates", "ids", templates.Ids())
	return game.LoadNPCs(templates, set, filepath.Join(c.NPCs, instancesFile), w)
}

func (c *StorageConfig) BuildPlayerStore() (*storage.FileStore[*player.Record], error) {
	if err := os.MkdirAll(c.Players, 0755); err != nil {
		return nil, fmt.Errorf("creating players dir: %w", err)
	}
	return storage.NewFileStore[*player.Record](c.Players)
}

func (c *StorageConfig) LoadClock() *game.Clock {
	return game.LoadClock(c.Clock)
}
