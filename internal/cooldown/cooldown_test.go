package cooldown

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fixedClock returns a settable clock for the tracker.
func fixedClock(start time.Time) (*time.Time, func() time.Time) {
	now := start
	return &now, func() time.Time { return now }
}

func TestCheckAllowsFirstInvocation(t *testing.T) {
	tr := New()
	res := tr.Check("u1", "ping", 3*time.Second)

	assert.True(t, res.Allowed)
	assert.Zero(t, res.TimeLeft)
	assert.Equal(t, 1, tr.Len())
}

func TestCheckBlocksInsideWindow(t *testing.T) {
	tr := New()
	now, clock := fixedClock(time.Unix(1000, 0))
	tr.Now = clock

	assert.True(t, tr.Check("u1", "ping", 3*time.Second).Allowed)

	*now = now.Add(1 * time.Second)
	res := tr.Check("u1", "ping", 3*time.Second)
	assert.False(t, res.Allowed)
	assert.Equal(t, 2*time.Second, res.TimeLeft)
}

func TestCheckAllowsAfterWindow(t *testing.T) {
	tr := New()
	now, clock := fixedClock(time.Unix(1000, 0))
	tr.Now = clock

	assert.True(t, tr.Check("u1", "ping", 3*time.Second).Allowed)

	*now = now.Add(3 * time.Second)
	assert.True(t, tr.Check("u1", "ping", 3*time.Second).Allowed)
}

func TestCheckIsPerUserPerCommand(t *testing.T) {
	tr := New()
	now, clock := fixedClock(time.Unix(1000, 0))
	tr.Now = clock

	assert.True(t, tr.Check("u1", "ping", 10*time.Second).Allowed)
	assert.True(t, tr.Check("u2", "ping", 10*time.Second).Allowed)
	assert.True(t, tr.Check("u1", "whois", 10*time.Second).Allowed)

	*now = now.Add(time.Second)
	assert.False(t, tr.Check("u1", "ping", 10*time.Second).Allowed)
	assert.False(t, tr.Check("u2", "ping", 10*time.Second).Allowed)
}

func TestReset(t *testing.T) {
	tr := New()
	assert.True(t, tr.Check("u1", "ping", time.Minute).Allowed)
	assert.False(t, tr.Check("u1", "ping", time.Minute).Allowed)

	tr.Reset("u1", "ping")
	assert.True(t, tr.Check("u1", "ping", time.Minute).Allowed)
}

func TestSweepPurgesStaleEntries(t *testing.T) {
	tr := New()
	now, clock := fixedClock(time.Unix(1000, 0))
	tr.Now = clock

	tr.Check("old", "ping", time.Minute)
	*now = now.Add(30 * time.Minute)
	tr.Check("mid", "ping", time.Minute)
	*now = now.Add(31 * time.Minute)
	tr.Check("fresh", "ping", time.Minute)

	// "old" is now 61m old, "mid" 31m, "fresh" 0m.
	tr.Sweep()
	assert.Equal(t, 2, tr.Len())

	*now = now.Add(30 * time.Minute)
	tr.Sweep()
	assert.Equal(t, 1, tr.Len())
}
