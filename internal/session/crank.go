package session

import "sync"

// crankTracker derives an RPM from cumulative crank counters (CSC and
// Cycling Power measurements). Both counters are uint16 and roll over;
// unsigned subtraction handles that for free.
type crankTracker struct {
	mu          sync.Mutex
	lastRevs    uint16
	lastTime    uint16
	hasPrevious bool
}

// update feeds one sample and returns the cadence since the previous one.
// The first sample and zero-time deltas yield no cadence, as do values
// outside the plausible 0-300 RPM band.
func (c *crankTracker) update(revolutions, eventTime uint16) (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.hasPrevious {
		c.lastRevs = revolutions
		c.lastTime = eventTime
		c.hasPrevious = true
		return 0, false
	}

	revDiff := revolutions - c.lastRevs
	timeDiff := eventTime - c.lastTime
	c.lastRevs = revolutions
	c.lastTime = eventTime

	if timeDiff == 0 {
		return 0, false
	}

	// eventTime ticks at 1024 Hz.
	rpm := float64(revDiff) * 60.0 * 1024.0 / float64(timeDiff)
	if rpm < 0 || rpm > 300 {
		return 0, false
	}
	return rpm, true
}

func (c *crankTracker) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hasPrevious = false
}
