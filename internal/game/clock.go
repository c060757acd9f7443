package game

import (
	"fmt"
	"log/slog"

	"github.com/pixil98/go-tileworld/internal/storage"
)

const (
	TicksPerHour   = 60
	HoursPerDay    = 24
	DaysPerSeason  = 30
	SeasonsPerYear = 4
)

var seasons = [SeasonsPerYear]string{"spring", "summer", "autumn", "winter"}

// ClockState is the persisted form of the clock.
type ClockState struct {
	Tick int64 `json:"tick"`
	Hour int   `json:"hour"`
	Day  int   `json:"day"`
}

// Clock is the shared in-game calendar. One tick is one scheduler period.
type Clock struct {
	ClockState
	path string
}

// LoadClock restores the clock saved at path. A missing or unreadable file
// starts a new calendar at tick zero.
func LoadClock(path string) *Clock {
	c := &Clock{path: path}

	var st ClockState
	found, err := storage.ReadJSON(path, &st)
	switch {
	case err != nil:
		slog.Warn("clock file unreadable, starting new calendar", "path", path, "category", "persistence", "error", err)
	case found:
		c.ClockState = st
	}

	return c
}

// Advance moves the clock forward one tick and reports whether the hour
// changed.
func (c *Clock) Advance() bool {
	c.Tick++
	if c.Tick%TicksPerHour != 0 {
		return false
	}

	c.Hour++
	if c.Hour >= HoursPerDay {
		c.Hour = 0
		c.Day++
	}
	return true
}

func (c *Clock) Season() string {
	return seasons[(c.Day/DaysPerSeason)%SeasonsPerYear]
}

func (c *Clock) Year() int {
	return c.Day / (DaysPerSeason * SeasonsPerYear)
}

// Save writes the clock to its file.
func (c *Clock) Save() error {
	if c.path == "" {
		return nil
	}
	if err := storage.WriteJSON(c.path, c.ClockState); err != nil {
		return fmt.Errorf("saving clock: %w", err)
	}
	return nil
}
