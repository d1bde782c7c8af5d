package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCrankTracker(t *testing.T) {
	var tracker crankTracker

	_, ok := tracker.update(100, 1024)
	assert.False(t, ok, "first sample primes only")

	// +2 revs over 1024 ticks (1 s) = 120 rpm.
	rpm, ok := tracker.update(102, 2048)
	require.True(t, ok)
	assert.InDelta(t, 120.0, rpm, 0.001)
}

func TestCrankTracker_Rollover(t *testing.T) {
	var tracker crankTracker
	tracker.update(0xFFFF, 0xFC00)

	// Both counters wrap; unsigned subtraction still gives +1 rev over
	// 1024 ticks = 60 rpm.
	rpm, ok := tracker.update(0x0000, 0x0000)
	require.True(t, ok)
	assert.InDelta(t, 60.0, rpm, 0.001)
}

func TestCrankTracker_ZeroTimeDelta(t *testing.T) {
	var tracker crankTracker
	tracker.update(10, 1024)
	_, ok := tracker.update(11, 1024)
	assert.False(t, ok)
}

func TestCrankTracker_ImplausibleCadenceDropped(t *testing.T) {
	var tracker crankTracker
	tracker.update(0, 0)
	// 100 revs in one tick is garbage data, not pedaling.
	_, ok := tracker.update(100, 1)
	assert.False(t, ok)
}

func TestCrankTracker_Reset(t *testing.T) {
	var tracker crankTracker
	tracker.update(10, 1024)
	tracker.reset()
	_, ok := tracker.update(12, 2048)
	assert.False(t, ok, "first sample after reset primes only")
}
