package sim

import "time"

// DeltaTimer measures the wall-clock time between successive ticks.
type DeltaTimer struct {
	now  func() time.Time
	last time.Time
	// MaxStep bounds a single delta so a stalled process does not
	// produce one huge step. Zero disables the bound.
	MaxStep time.Duration
}

func NewDeltaTimer() *DeltaTimer {
	return newDeltaTimer(time.Now)
}

func newDeltaTimer(now func() time.Time) *DeltaTimer {
	return &DeltaTimer{now: now, last: now(), MaxStep: 250 * time.Millisecond}
}

// Reset restarts measurement from the present instant.
func (d *DeltaTimer) Reset() { d.last = d.now() }

// Tick returns the time since the previous Tick or Reset. It never
// returns a negative duration.
func (d *DeltaTimer) Tick() time.Duration {
	now := d.now()
	dt := now.Sub(d.last)
	d.last = now
	if dt < 0 {
		return 0
	}
	if d.MaxStep > 0 && dt > d.MaxStep {
		return d.MaxStep
	}
	return dt
}
