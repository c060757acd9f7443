package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-tileworld/internal/messaging"
)

const (
	BusModeNats  = "nats"
	BusModeLocal = "local"
)

type BusConfig struct {
	Mode         string `json:"mode"`
	Host         string `json:"host"`
	Port         int    `json:"port"`
	StartTimeout string `json:"start_timeout"`
}

func (c *BusConfig) Validate() error {
	el := errors.NewErrorList()

	switch c.Mode {
	case "", BusModeNats, BusModeLocal:
	default:
		el.Add(fmt.Errorf("bus mode %q is invalid (must be %s or %s)", c.Mode, BusModeNats, BusModeLocal))
	}
	if c.Port < 0 || c.Port > 65535 {
		el.Add(fmt.Errorf("bus port must be between 0 and 65535"))
	}
	if c.StartTimeout != "" {
		_, err := time.ParseDuration(c.StartTimeout)
		if err != nil {
			el.Add(fmt.Errorf("parsing start_timeout: %w", err))
		}
	}

	return el.Err()
}

// usesNats reports whether messages go through an embedded NATS server.
// NATS is the default.
func (c *BusConfig) usesNats() bool {
	return c.Mode != BusModeLocal
}

func (c *BusConfig) buildNatsServer() (*messaging.NatsServer, error) {
	var opts []messaging.NatsServerOpt
	if c.StartTimeout != "" {
		d, err := time.ParseDuration(c.StartTimeout)
		if err != nil {
			return nil, fmt.Errorf("parsing start_timeout: %w", err)
		}
		opts = append(opts, messaging.WithStartTimeout(d))
	}
	if c.Host != "" {
		opts = append(opts, messaging.WithHost(c.Host))
	}
	if c.Port != 0 {
		opts = append(opts, messaging.WithPort(c.Port))
	}

	s, err := messaging.NewNatsServer(opts...)
	if err != nil {
		return nil, err
	}

	return s, nil
}
