package listener

import "time"

type ConnectionManagerOpt func(*ConnectionManager)

// WithSendBuffer sets how many outbound frames may queue per connection
// before new ones are dropped.
func WithSendBuffer(n int) ConnectionManagerOpt {
	return func(m *ConnectionManager) {
		if n > 0 {
			m.sendBuffer = n
		}
	}
}

func WithReadLimit(n int64) ConnectionManagerOpt {
	return func(m *ConnectionManager) {
		if n > 0 {
			m.readLimit = n
		}
	}
}

// WithPongWait sets how long a silent peer is kept. Pings go out a little
// more often than that.
func WithPongWait(d time.Duration) ConnectionManagerOpt {
	return func(m *ConnectionManager) {
		if d > 0 {
			m.pongWait = d
		}
	}
}
