package command

import (
	"fmt"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-tileworld/internal/driver"
	"github.com/pixil98/go-tileworld/internal/game"
	"github.com/pixil98/go-tileworld/internal/listener"
	"github.com/pixil98/go-tileworld/internal/world"
)

type SimulationConfig struct {
	DefaultZone      string `json:"default_zone"`
	DefaultRoom      int    `json:"default_room"`
	BaseStepDuration string `json:"base_step_duration"`
	SendBuffer       int    `json:"send_buffer"`
	ReadLimit        int64  `json:"read_limit"`
	QueueSize        int    `json:"queue_size"`
}

func (c *SimulationConfig) Validate() error {
	el := errors.NewErrorList()

	if c.DefaultZone == "" && c.DefaultRoom != 0 {
		el.Add(fmt.Errorf("default_room requires default_zone"))
	}
	if d, err := parseDuration(c.BaseStepDuration, game.DefaultBaseStepDuration); err != nil {
		el.Add(fmt.Errorf("parsing base_step_duration: %w", err))
	} else if d <= 0 {
		el.Add(fmt.Errorf("base_step_duration must be positive"))
	}
	if c.SendBuffer < 0 {
		el.Add(fmt.Errorf("send_buffer must not be negative"))
	}
	if c.ReadLimit < 0 {
		el.Add(fmt.Errorf("read_limit must not be negative"))
	}
	if c.QueueSize < 0 {
		el.Add(fmt.Errorf("queue_size must not be negative"))
	}

	return el.Err()
}

// Options turns the section into simulation options, checking the default
// location against the loaded world.
func (c *SimulationConfig) Options(w *world.Store) ([]game.SimulationOpt, error) {
	var opts []game.SimulationOpt

	if c.DefaultZone != "" {
		if _, err := w.Room(c.DefaultZone, c.DefaultRoom); err != nil {
			return nil, fmt.Errorf("default location: %w", err)
		}
		opts = append(opts, game.WithDefaultLocation(c.DefaultZone, c.DefaultRoom))
	}

	d, err := parseDuration(c.BaseStepDuration, game.DefaultBaseStepDuration)
	if err != nil {
		return nil, fmt.Errorf("parsing base_step_duration: %w", err)
	}
	opts = append(opts, game.WithBaseStepDuration(d))

	return opts, nil
}

func (c *SimulationConfig) ConnectionOptions() []listener.ConnectionManagerOpt {
	return []listener.ConnectionManagerOpt{
		listener.WithSendBuffer(c.SendBuffer),
		listener.WithReadLimit(c.ReadLimit),
	}
}

// DriverOptions sizes the loop's task queue. Zero keeps the default.
func (c *SimulationConfig) DriverOptions() []driver.DriverOpt {
	return []driver.DriverOpt{
		driver.WithQueueSize(c.QueueSize),
	}
}
