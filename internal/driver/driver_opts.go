package driver

import "time"

type DriverOpt func(*Driver)

func WithTickLength(tickLength time.Duration) DriverOpt {
	return func(d *Driver) {
		d.tickLength = tickLength
	}
}

// WithQueueSize bounds how many posted tasks may wait for the loop.
func WithQueueSize(n int) DriverOpt {
	return func(d *Driver) {
		if n > 0 {
			d.queueSize = n
		}
	}
}

// WithShutdown adds a hook run when the loop stops. Hooks run in the order
// they were added.
func WithShutdown(fn ShutdownFunc) DriverOpt {
	return func(d *Driver) {
		d.shutdown = append(d.shutdown, fn)
	}
}
