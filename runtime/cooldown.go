package runtime

import (
	"sync"
	"time"
)

// Cooldown remembers when the low-frequency trigger gate was last probed.
type Cooldown struct {
	mu       sync.Mutex
	period   time.Duration
	baseline time.Time
}

func NewCooldown(period time.Duration, start time.Time) *Cooldown {
	return &Cooldown{period: period, baseline: start}
}

// Probe reports whether at least one period elapsed since the baseline,
// then moves the baseline to now whatever the answer.
func (c *Cooldown) Probe(now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	elapsed := now.Sub(c.baseline) >= c.period
	c.baseline = now
	return elapsed
}

func (c *Cooldown) Baseline() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.baseline
}
