package command

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/pixil98/go-errors"
)

const (
	defaultTickInterval    = time.Second
	defaultShutdownTimeout = 10 * time.Second
)

type Config struct {
	TickInterval    string           `json:"tick_interval"`
	ShutdownTimeout string           `json:"shutdown_timeout"`
	LogLevel        string           `json:"log_level"`
	Listeners       []ListenerConfig `json:"listeners"`
	Storage         StorageConfig    `json:"storage"`
	Bus             BusConfig        `json:"bus"`
	Simulation      SimulationConfig `json:"simulation"`
}

func (c *Config) Validate() error {
	el := errors.NewErrorList()

	if d, err := parseDuration(c.TickInterval, defaultTickInterval); err != nil {
		el.Add(fmt.Errorf("parsing tick_interval: %w", err))
	} else if d < time.Second {
		el.Add(fmt.Errorf("tick_interval must be at least 1 second"))
	}

	if d, err := parseDuration(c.ShutdownTimeout, defaultShutdownTimeout); err != nil {
		el.Add(fmt.Errorf("parsing shutdown_timeout: %w", err))
	} else if d <= 0 {
		el.Add(fmt.Errorf("shutdown_timeout must be positive"))
	}

	if _, err := c.logLevel(); err != nil {
		el.Add(err)
	}

	if len(c.Listeners) == 0 {
		el.Add(fmt.Errorf("at least one listener is required"))
	}
	for i, l := range c.Listeners {
		if err := l.Validate(); err != nil {
			el.Add(fmt.Errorf("listener %d: %w", i, err))
		}
	}

	el.Add(c.Storage.Validate())
	el.Add(c.Bus.Validate())
	el.Add(c.Simulation.Validate())

	return el.Err()
}

func (c *Config) tickInterval() time.Duration {
	d, _ := parseDuration(c.TickInterval, defaultTickInterval)
	return d
}

func (c *Config) shutdownTimeout() time.Duration {
	d, _ := parseDuration(c.ShutdownTimeout, defaultShutdownTimeout)
	return d
}

func (c *Config) logLevel() (slog.Level, error) {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("log_level %q is invalid (must be debug, info, warn or error)", c.LogLevel)
}

// parseDuration parses s, falling back to def when s is empty.
func parseDuration(s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	return time.ParseDuration(s)
}
