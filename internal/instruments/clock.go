// Package instruments holds the independent cockpit instruments that are
// advanced with the simulation tick but take no part in power flow.
package instruments

import (
	"fmt"
	"time"
)

// ClockMode selects what a Clock displays.
type ClockMode int

const (
	ModeUTC ClockMode = iota
	ModeET
	ModeCHR
)

func (m ClockMode) String() string {
	switch m {
	case ModeUTC:
		return "UTC"
	case ModeET:
		return "ET"
	case ModeCHR:
		return "CHR"
	default:
		return "unknown"
	}
}

// ParseClockMode accepts "utc", "et" or "chr" in any case.
func ParseClockMode(s string) (ClockMode, error) {
	switch s {
	case "utc", "UTC", "":
		return ModeUTC, nil
	case "et", "ET":
		return ModeET, nil
	case "chr", "CHR":
		return ModeCHR, nil
	}
	return 0, fmt.Errorf("instruments: unknown clock mode %q", s)
}

const day = 24 * time.Hour

// Clock provides UTC time of day, elapsed time and a chronograph.
// UTC always runs; ET and CHR run only while started.
type Clock struct {
	mode ClockMode

	utc time.Duration
	et  time.Duration
	chr time.Duration

	etRunning  bool
	chrRunning bool
}

// NewClock returns a clock in UTC mode reading utc after midnight.
func NewClock(utc time.Duration) *Clock {
	return &Clock{utc: wrapDay(utc)}
}

func (c *Clock) SetMode(m ClockMode) { c.mode = m }
func (c *Clock) Mode() ClockMode     { return c.mode }

func (c *Clock) SetUTC(t time.Duration) { c.utc = wrapDay(t) }

func (c *Clock) StartET() { c.etRunning = true }

// ResetET stops and zeroes elapsed time.
func (c *Clock) ResetET() {
	c.etRunning = false
	c.et = 0
}

// ToggleCHR starts or stops the chronograph.
func (c *Clock) ToggleCHR() { c.chrRunning = !c.chrRunning }

func (c *Clock) ResetCHR() {
	c.chrRunning = false
	c.chr = 0
}

func (c *Clock) UTC() time.Duration { return c.utc }
func (c *Clock) ET() time.Duration  { return c.et }
func (c *Clock) CHR() time.Duration { return c.chr }

// Time is the reading for the selected mode.
func (c *Clock) Time() time.Duration {
	switch c.mode {
	case ModeET:
		return c.et
	case ModeCHR:
		return c.chr
	default:
		return c.utc
	}
}

// Display formats the selected reading as HH:MM:SS.
func (c *Clock) Display() string {
	t := c.Time()
	return fmt.Sprintf("%s %02d:%02d:%02d", c.mode,
		int(t/time.Hour), int(t%time.Hour/time.Minute), int(t%time.Minute/time.Second))
}

func (c *Clock) Update(dt time.Duration) {
	if dt <= 0 {
		return
	}
	c.utc = wrapDay(c.utc + dt)
	if c.etRunning {
		c.et += dt
	}
	if c.chrRunning {
		c.chr += dt
	}
}

func wrapDay(t time.Duration) time.Duration {
	t %= day
	if t < 0 {
		t += day
	}
	return t
}
