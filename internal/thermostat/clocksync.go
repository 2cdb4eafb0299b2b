package thermostat

import "time"

// SyncState is the clock sync state machine position.
type SyncState int

const (
	// SyncArmed waits for the sync hour
	SyncArmed SyncState = iota
	// SyncDoneToday holds until the sync hour has passed
	SyncDoneToday
)

// String returns the state name
func (s SyncState) String() string {
	if s == SyncDoneToday {
		return "done-today"
	}
	return "armed"
}

// ClockSync decides when a status read should first push the wall clock to
// the device: once per day, at the first read during the sync hour.
type ClockSync struct {
	Enabled bool
	Hour    int

	now   func() time.Time
	state SyncState
}

// NewClockSync creates an armed policy. A nil now uses time.Now.
func NewClockSync(enabled bool, hour int, now func() time.Time) *ClockSync {
	if now == nil {
		now = time.Now
	}
	return &ClockSync{Enabled: enabled, Hour: hour, now: now}
}

// Due advances the state machine for the current time and reports whether
// a time-set should be sent, along with the time to send.
//
// DoneToday falls back to Armed as soon as the hour differs from the sync
// hour. Armed reports due while the hour equals the sync hour; the caller
// marks success with Done.
func (c *ClockSync) Due() (time.Time, bool) {
	now := c.now()
	if !c.Enabled {
		return now, false
	}

	inWindow := now.Hour() == c.Hour
	if c.state == SyncDoneToday {
		if !inWindow {
			c.state = SyncArmed
		}
		return now, false
	}
	return now, inWindow
}

// Done records a successful time-set.
func (c *ClockSync) Done() {
	c.state = SyncDoneToday
}

// State returns the current position
func (c *ClockSync) State() SyncState {
	return c.state
}
