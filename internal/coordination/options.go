package coordination

import "time"

// hubConfig holds optional configuration for a Hub.
type hubConfig struct {
	lockTimeout time.Duration
	waitPoll    time.Duration
	now         func() time.Time
}

// Option configures a Hub.
type Option func(*hubConfig)

// WithLockTimeout sets the document lock timeout used by all stores.
// A value of 0 uses the store default.
func WithLockTimeout(d time.Duration) Option {
	return func(c *hubConfig) { c.lockTimeout = d }
}

// WithWaitPoll sets the roster poll interval used by WaitForTeammates.
// Zero or negative values leave the default of 500ms in place.
func WithWaitPoll(d time.Duration) Option {
	return func(c *hubConfig) {
		if d > 0 {
			c.waitPoll = d
		}
	}
}

// WithClock sets the time source used for message timestamps.
// Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(c *hubConfig) { c.now = now }
}
