package team

import "time"

// Option configures a Manager.
type Option func(*Manager)

// WithLockTimeout sets the document lock acquisition timeout.
// Zero or negative values leave the default in place.
func WithLockTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.lockTimeout = d
		}
	}
}

// WithClock overrides the clock used for creation timestamps. Used in tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}
