package driver

import (
	"container/heap"
	"time"
)

type timer struct {
	key   string
	at    time.Time
	fn    func()
	index int
}

type timerHeap []*timer

func (h timerHeap) Len() int           { return len(h) }
func (h timerHeap) Less(i, j int) bool { return h[i].at.Before(h[j].at) }

func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *timerHeap) Push(x any) {
	t := x.(*timer)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}

// Timers is a table of keyed one-shot callbacks ordered by deadline. At most
// one callback is pending per key. It is not safe for concurrent use; the
// driver loop owns it.
type Timers struct {
	now   func() time.Time
	queue timerHeap
	byKey map[string]*timer
}

func NewTimers() *Timers {
	return &Timers{
		now:   time.Now,
		byKey: map[string]*timer{},
	}
}

// Schedule arms fn to run after delay, replacing anything pending for key.
func (t *Timers) Schedule(key string, delay time.Duration, fn func()) {
	t.Cancel(key)
	tm := &timer{key: key, at: t.now().Add(delay), fn: fn}
	heap.Push(&t.queue, tm)
	t.byKey[key] = tm
}

func (t *Timers) Cancel(key string) {
	tm, ok := t.byKey[key]
	if !ok {
		return
	}
	heap.Remove(&t.queue, tm.index)
	delete(t.byKey, key)
}

// Next returns the earliest deadline.
func (t *Timers) Next() (time.Time, bool) {
	if len(t.queue) == 0 {
		return time.Time{}, false
	}
	return t.queue[0].at, true
}

// RunDue runs every callback whose deadline is not after now, earliest first,
// and returns how many ran. A callback may schedule its own key again.
func (t *Timers) RunDue(now time.Time) int {
	ran := 0
	for len(t.queue) > 0 && !t.queue[0].at.After(now) {
		tm := heap.Pop(&t.queue).(*timer)
		delete(t.byKey, tm.key)
		tm.fn()
		ran++
	}
	return ran
}

// Clear drops every pending callback without running it.
func (t *Timers) Clear() {
	t.queue = nil
	t.byKey = map[string]*timer{}
}

func (t *Timers) Len() int {
	return len(t.queue)
}
