package protocol

import "encoding/binary"

// Cycling Power Measurement flag bits.
const (
	cpsFlagPedalBalance   = 1 << 0
	cpsFlagAccumTorque    = 1 << 2
	cpsFlagWheelRevs      = 1 << 4
	cpsFlagCrankRevs      = 1 << 5
	cpsFlagExtremeForce   = 1 << 6
	cpsFlagExtremeTorque  = 1 << 7
	cpsFlagExtremeAngles  = 1 << 8
	cpsFlagTopDeadSpot    = 1 << 9
	cpsFlagBottomDeadSpot = 1 << 10
	cpsFlagAccumEnergy    = 1 << 11
)

// DecodeCPSData decodes a Cycling Power Measurement notification. The
// instantaneous power is mandatory; every other block is consumed in
// flag-bit order while the buffer lasts. Like the CSC codec, the crank
// block carries cumulative counters, surfaced raw for delta math upstream.
func DecodeCPSData(buf []byte) TelemetryRecord {
	rec := newRecord(buf)
	if len(buf) < 4 {
		return rec
	}

	flags := binary.LittleEndian.Uint16(buf[0:2])
	rec.Flags = flags
	rec.HasInstantaneousPower = true
	rec.InstantaneousPowerWatts = int16(binary.LittleEndian.Uint16(buf[2:4]))
	offset := 4

	skip := func(n int) bool {
		if offset+n > len(buf) {
			offset = len(buf)
			return false
		}
		offset += n
		return true
	}

	if flags&cpsFlagPedalBalance != 0 {
		skip(1)
	}
	if flags&cpsFlagAccumTorque != 0 {
		skip(2)
	}
	if flags&cpsFlagWheelRevs != 0 {
		skip(6)
	}
	if flags&cpsFlagCrankRevs != 0 && offset+4 <= len(buf) {
		rec.HasCrankData = true
		rec.CrankRevolutions = binary.LittleEndian.Uint16(buf[offset : offset+2])
		rec.CrankEventTime = binary.LittleEndian.Uint16(buf[offset+2 : offset+4])
		offset += 4
		// Single-sample estimate from the cumulative counters; the session
		// replaces it with delta-based rpm once two samples exist.
		if rec.CrankEventTime > 0 {
			rec.HasInstantaneousCadence = true
			rec.InstantaneousCadenceRpm = float64(rec.CrankRevolutions) /
				(float64(rec.CrankEventTime) / 1024.0) * 60.0
		}
	}
	if flags&cpsFlagExtremeForce != 0 {
		skip(4)
	}
	if flags&cpsFlagExtremeTorque != 0 {
		skip(4)
	}
	if flags&cpsFlagExtremeAngles != 0 {
		skip(3)
	}
	if flags&cpsFlagTopDeadSpot != 0 {
		skip(2)
	}
	if flags&cpsFlagBottomDeadSpot != 0 {
		skip(2)
	}
	if flags&cpsFlagAccumEnergy != 0 && offset+2 <= len(buf) {
		rec.HasExpendedEnergy = true
		rec.ExpendedEnergyKJ = binary.LittleEndian.Uint16(buf[offset : offset+2])
		offset += 2
	}

	return rec
}
