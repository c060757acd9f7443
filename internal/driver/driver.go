package driver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goerrors "github.com/pixil98/go-errors"
)

const (
	DefaultTickLength = time.Second
	DefaultQueueSize  = 1024
)

var ErrStopped = errors.New("driver stopped")

type Manager interface {
	Tick(context.Context) error
}

// ShutdownFunc runs on the loop after ticks and timers have stopped.
type ShutdownFunc func(context.Context) error

// Driver serialises every change to the world onto one goroutine. Ticks,
// timer callbacks and tasks posted with Do never run concurrently.
type Driver struct {
	tickLength time.Duration
	queueSize  int
	managers   []Manager
	timers     *Timers
	shutdown   []ShutdownFunc

	tasks   chan func()
	done    chan struct{}
	stopped bool
}

func NewDriver(managers []Manager, timers *Timers, opts ...DriverOpt) *Driver {
	d := &Driver{
		tickLength: DefaultTickLength,
		queueSize:  DefaultQueueSize,
		managers:   managers,
		timers:     timers,
		done:       make(chan struct{}),
	}

	for _, opt := range opts {
		opt(d)
	}

	d.tasks = make(chan func(), d.queueSize)

	return d
}

// Do queues fn to run on the loop. It fails once the loop has stopped.
func (d *Driver) Do(ctx context.Context, fn func()) error {
	select {
	case <-d.done:
		return ErrStopped
	default:
	}

	select {
	case d.tasks <- fn:
		return nil
	case <-d.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Start runs the loop until ctx is cancelled, then stops timers and runs the
// shutdown hooks. A panic on the loop is treated like a shutdown request and
// reported as an error.
func (d *Driver) Start(ctx context.Context) (err error) {
	ticker := time.NewTicker(d.tickLength)
	defer ticker.Stop()

	wake := time.NewTimer(time.Hour)
	defer wake.Stop()

	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "panic on simulation loop", "panic", r)
			err = errors.Join(fmt.Errorf("simulation loop panic: %v", r), d.stop(ctx))
		}
	}()

	for {
		d.arm(wake)

		select {
		case <-ctx.Done():
			return d.stop(ctx)
		case <-ticker.C:
			err := d.Tick(ctx)
			if err != nil {
				return errors.Join(err, d.stop(ctx))
			}
		case fn := <-d.tasks:
			fn()
		case now := <-wake.C:
			d.timers.RunDue(now)
		}
	}
}

func (d *Driver) Tick(ctx context.Context) error {
	for _, m := range d.managers {
		err := m.Tick(ctx)
		if err != nil {
			return err
		}
	}
	return nil
}

func (d *Driver) arm(wake *time.Timer) {
	next, ok := d.timers.Next()
	if !ok {
		wake.Stop()
		return
	}
	wake.Reset(max(time.Until(next), 0))
}

func (d *Driver) stop(ctx context.Context) error {
	if d.stopped {
		return nil
	}
	d.stopped = true
	close(d.done)
	pending := d.timers.Len()
	d.timers.Clear()

	ctx = context.WithoutCancel(ctx)
	el := goerrors.NewErrorList()
	for _, fn := range d.shutdown {
		el.Add(fn(ctx))
	}

	slog.InfoContext(ctx, "simulation stopped", "dropped_timers", pending)
	return el.Err()
}
