package driver

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pixil98/go-testutil"
)

type countingManager struct {
	ticks atomic.Int32
	err   error
}

func (m *countingManager) Tick(context.Context) error {
	m.ticks.Add(1)
	return m.err
}

func startDriver(t *testing.T, d *Driver) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- d.Start(ctx)
	}()
	t.Cleanup(cancel)
	return cancel, errCh
}

func waitErr(t *testing.T, errCh <-chan error) error {
	t.Helper()
	select {
	case err := <-errCh:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("driver did not stop")
		return nil
	}
}

// call runs fn on the loop and waits for it to finish.
func call(t *testing.T, d *Driver, fn func()) {
	t.Helper()
	done := make(chan struct{})
	if err := d.Do(context.Background(), func() {
		fn()
		close(done)
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("task did not run")
	}
}

func TestDriver_TasksRunInOrder(t *testing.T) {
	d := NewDriver(nil, NewTimers(), WithTickLength(time.Hour))
	cancel, errCh := startDriver(t, d)

	var order []int
	for i := range 5 {
		if err := d.Do(context.Background(), func() { order = append(order, i) }); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	var got []int
	call(t, d, func() { got = append(got, order...) })

	testutil.AssertEqual(t, "count", len(got), 5)
	for i, v := range got {
		testutil.AssertEqual(t, "order", v, i)
	}

	cancel()
	if err := waitErr(t, errCh); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDriver_Ticks(t *testing.T) {
	m := &countingManager{}
	d := NewDriver([]Manager{m}, NewTimers(), WithTickLength(5*time.Millisecond))
	cancel, errCh := startDriver(t, d)

	deadline := time.Now().Add(5 * time.Second)
	for m.ticks.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	if err := waitErr(t, errCh); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "ticked", m.ticks.Load() >= 3, true)
}

func TestDriver_TickErrorStops(t *testing.T) {
	m := &countingManager{err: errors.New("disk on fire")}
	hooks := 0
	d := NewDriver([]Manager{m}, NewTimers(),
		WithTickLength(time.Millisecond),
		WithShutdown(func(context.Context) error { hooks++; return nil }))
	_, errCh := startDriver(t, d)

	err := waitErr(t, errCh)
	testutil.AssertErrorContains(t, err, "disk on fire")
	testutil.AssertEqual(t, "hooks", hooks, 1)
}

func TestDriver_TimersFire(t *testing.T) {
	timers := NewTimers()
	d := NewDriver(nil, timers, WithTickLength(time.Hour))
	startDriver(t, d)

	fired := make(chan string, 2)
	call(t, d, func() {
		timers.Schedule("slow", time.Hour, func() { fired <- "slow" })
		timers.Schedule("fast", 10*time.Millisecond, func() { fired <- "fast" })
	})

	select {
	case got := <-fired:
		testutil.AssertEqual(t, "fired", got, "fast")
	case <-time.After(5 * time.Second):
		t.Fatal("timer did not fire")
	}
}

func TestDriver_Shutdown(t *testing.T) {
	timers := NewTimers()
	var order []string
	d := NewDriver(nil, timers,
		WithTickLength(time.Hour),
		WithShutdown(func(context.Context) error { order = append(order, "first"); return nil }),
		WithShutdown(func(ctx context.Context) error {
			order = append(order, "second")
			return ctx.Err()
		}))
	cancel, errCh := startDriver(t, d)

	call(t, d, func() {
		timers.Schedule("npc", time.Hour, func() { t.Error("timer ran after shutdown") })
	})
	cancel()

	if err := waitErr(t, errCh); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "hooks", len(order), 2)
	testutil.AssertEqual(t, "first", order[0], "first")
	testutil.AssertEqual(t, "timers cleared", timers.Len(), 0)

	err := d.Do(context.Background(), func() {})
	testutil.AssertEqual(t, "stopped", errors.Is(err, ErrStopped), true)
}

func TestDriver_PanicStops(t *testing.T) {
	flushed := false
	d := NewDriver(nil, NewTimers(),
		WithTickLength(time.Hour),
		WithShutdown(func(context.Context) error { flushed = true; return nil }))
	_, errCh := startDriver(t, d)

	if err := d.Do(context.Background(), func() { panic("boom") }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := waitErr(t, errCh)
	testutil.AssertErrorContains(t, err, "panic: boom")
	testutil.AssertEqual(t, "flushed", flushed, true)
}

func TestNewDriver_QueueSize(t *testing.T) {
	tests := map[string]struct {
		opts     []DriverOpt
		expQueue int
	}{
		"default": {
			expQueue: DefaultQueueSize,
		},
		"configured": {
			opts:     []DriverOpt{WithQueueSize(16)},
			expQueue: 16,
		},
		"zero keeps default": {
			opts:     []DriverOpt{WithQueueSize(0)},
			expQueue: DefaultQueueSize,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			d := NewDriver(nil, NewTimers(), tt.opts...)
			testutil.AssertEqual(t, "queue", cap(d.tasks), tt.expQueue)
		})
	}
}
