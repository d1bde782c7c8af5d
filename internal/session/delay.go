package session

import "time"

// DelayPolicy holds the settle delays that follow each control write.
// Trainers process commands slowly and back-to-back writes get dropped, so
// the session waits a fixed time after every write. The timing is a
// cooperative convention, not a lock.
type DelayPolicy struct {
	// Simple follows resistance, power, and simulation writes.
	Simple time.Duration
	// StartStop follows start, stop, pause, reset, and request control.
	StartStop time.Duration
	// VendorInit follows FitShow vendor init sequences.
	VendorInit time.Duration

	// await performs the wait; tests replace it to run instantly.
	await func(time.Duration)
}

// DefaultDelayPolicy returns the delays real hardware needs.
func DefaultDelayPolicy() DelayPolicy {
	return DelayPolicy{
		Simple:     500 * time.Millisecond,
		StartStop:  1000 * time.Millisecond,
		VendorInit: 3 * time.Second,
		await:      time.Sleep,
	}
}

func (p DelayPolicy) sleep(d time.Duration) {
	if p.await != nil {
		p.await(d)
		return
	}
	time.Sleep(d)
}
