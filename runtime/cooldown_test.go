package runtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCooldown_Probe(t *testing.T) {
	req := require.New(t)
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	cooldown := NewCooldown(5*time.Minute, start)

	// Given the period has not elapsed
	req.False(cooldown.Probe(start.Add(2 * time.Minute)))
	// Then the baseline still moved
	req.Equal(start.Add(2*time.Minute), cooldown.Baseline())

	// When probing four minutes later, measured from the new baseline
	req.False(cooldown.Probe(start.Add(6 * time.Minute)))

	// When a full period elapses since the last probe
	req.True(cooldown.Probe(start.Add(11 * time.Minute)))
	req.Equal(start.Add(11*time.Minute), cooldown.Baseline())
}

func TestCooldown_Probe_Exactly_One_Period(t *testing.T) {
	req := require.New(t)
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	cooldown := NewCooldown(time.Minute, start)

	req.True(cooldown.Probe(start.Add(time.Minute)))
}
