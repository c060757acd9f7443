package game

import (
	"math/rand/v2"
	"time"
)

type SimulationOpt func(*Simulation)

// WithRand replaces the random source used for roam decisions.
func WithRand(r *rand.Rand) SimulationOpt {
	return func(s *Simulation) {
		s.rng = r
	}
}

// WithBaseStepDuration sets how long an NPC with rate 1 takes per tile.
func WithBaseStepDuration(d time.Duration) SimulationOpt {
	return func(s *Simulation) {
		if d > 0 {
			s.baseStep = d
		}
	}
}

// WithDefaultLocation sets where new characters start. By default it is the
// first room of the first zone.
func WithDefaultLocation(zone string, roomID int) SimulationOpt {
	return func(s *Simulation) {
		if zone != "" {
			s.defaultZone, s.defaultRoom = zone, roomID
		}
	}
}
