package instruments

import "time"

// Chronometer shows hours and minutes of accumulated simulator time.
type Chronometer struct {
	elapsed time.Duration
}

func NewChronometer() *Chronometer { return &Chronometer{} }

// Set moves the chronometer to hours:minutes and drops any seconds.
func (c *Chronometer) Set(hours, minutes int) {
	c.elapsed = time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute
}

func (c *Chronometer) Hours() int   { return int(c.elapsed / time.Hour) }
func (c *Chronometer) Minutes() int { return int(c.elapsed % time.Hour / time.Minute) }

func (c *Chronometer) Update(dt time.Duration) {
	if dt > 0 {
		c.elapsed += dt
	}
}
