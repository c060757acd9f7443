package command

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/pixil98/go-service"
	"github.com/pixil98/go-tileworld/internal/behaviors"
	"github.com/pixil98/go-tileworld/internal/driver"
	"github.com/pixil98/go-tileworld/internal/game"
	"github.com/pixil98/go-tileworld/internal/listener"
	"github.com/pixil98/go-tileworld/internal/messaging"
	"github.com/pixil98/go-tileworld/internal/player"
	"github.com/pixil98/go-tileworld/internal/router"
)

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}

	level, err := cfg.logLevel()
	if err != nil {
		return nil, err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	workers := service.WorkerList{}

	// Setup the message bus
	var bus messaging.Bus
	ready := make(chan struct{})
	if cfg.Bus.usesNats() {
		ns, err := cfg.Bus.buildNatsServer()
		if err != nil {
			return nil, fmt.Errorf("creating nats server: %w", err)
		}
		bus = ns
		workers["nats"] = ns
		go func() {
			<-ns.Ready()
			close(ready)
		}()
	} else {
		bus = messaging.NewLocalBus()
		close(ready)
	}

	// Load the world and everything in it
	w, err := cfg.Storage.LoadWorld()
	if err != nil {
		return nil, err
	}
	objects, err := cfg.Storage.LoadObjects(w)
	if err != nil {
		return nil, fmt.Errorf("loading objects: %w", err)
	}
	set := game.NewBehaviorSet()
	behaviors.Register(set)
	npcs, err := cfg.Storage.LoadNPCs(set, w)
	if err != nil {
		return nil, fmt.Errorf("loading npcs: %w", err)
	}
	records, err := cfg.Storage.BuildPlayerStore()
	if err != nil {
		return nil, fmt.Errorf("creating player store: %w", err)
	}
	simOpts, err := cfg.Simulation.Options(w)
	if err != nil {
		return nil, err
	}

	// Setup the simulation and the loop that drives it
	timers := driver.NewTimers()
	sim := game.NewSimulation(w, objects, npcs,
		player.NewRegistry(bus),
		records,
		cfg.Storage.LoadClock(),
		timers,
		simOpts...)
	driverOpts := append([]driver.DriverOpt{
		driver.WithTickLength(cfg.tickInterval()),
		driver.WithShutdown(sim.Shutdown),
	}, cfg.Simulation.DriverOptions()...)
	d := driver.NewDriver([]driver.Manager{sim}, timers, driverOpts...)
	workers["driver"] = d

	// Create listeners
	cm := listener.NewConnectionManager(router.New(sim), d, cfg.Simulation.ConnectionOptions()...)
	listeners := make(service.WorkerList, len(cfg.Listeners))
	for i, l := range cfg.Listeners {
		lw, err := l.BuildListener(cm)
		if err != nil {
			return nil, fmt.Errorf("creating listener %d: %w", i, err)
		}
		listeners[fmt.Sprintf("listener-%d", i)] = &afterReady{ready: ready, worker: lw}
	}
	workers["listeners"] = &listeners

	workers["watchdog"] = &shutdownWatchdog{timeout: cfg.shutdownTimeout()}

	return workers, nil
}

// afterReady holds a worker back until the message bus can carry traffic.
type afterReady struct {
	ready  <-chan struct{}
	worker service.Worker
}

func (a *afterReady) Start(ctx context.Context) error {
	select {
	case <-a.ready:
	case <-ctx.Done():
		return nil
	}
	return a.worker.Start(ctx)
}

// shutdownWatchdog exits the process if a graceful stop runs longer than
// timeout.
type shutdownWatchdog struct {
	timeout time.Duration
}

func (w *shutdownWatchdog) Start(ctx context.Context) error {
	<-ctx.Done()
	time.AfterFunc(w.timeout, func() {
		slog.Error("shutdown timed out, forcing exit", "timeout", w.timeout)
		os.Exit(1)
	})
	return nil
}
