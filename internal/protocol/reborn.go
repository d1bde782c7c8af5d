package protocol

import "math"

// Reborn telemetry frames are fixed 16-byte packets with the length echoed
// at byte 1 and a 0x00/0x80 marker pair at bytes 2 and 3.
const rebornFrameLen = 16

// DecodeRebornData decodes a Reborn vendor telemetry notification. Frames
// that fail the length or marker checks yield only the raw capture.
func DecodeRebornData(buf []byte) TelemetryRecord {
	rec := newRecord(buf)
	if len(buf) != rebornFrameLen || int(buf[1]) != len(buf) ||
		buf[2] != 0x00 || buf[3] != 0x80 {
		return rec
	}

	if buf[11] > 0 {
		rec.HasInstantaneousCadence = true
		rec.InstantaneousCadenceRpm = math.Round(60 / (60 / float64(buf[11])))
	}

	gear := int(math.Ceil(float64(buf[14]) / 14.3))
	if gear < 1 {
		gear = 1
	}
	if gear > 7 {
		gear = 7
	}
	rec.HasGearLevel = true
	rec.GearLevel = gear

	rec.HasBatteryLevel = true
	rec.BatteryLevel = 100

	return rec
}

// IsRebornAuthFailure reports whether a notification on the Reborn data
// characteristic is the bike announcing that authentication was refused.
func IsRebornAuthFailure(buf []byte) bool {
	return len(buf) >= 5 && buf[2] == 0x80 && buf[3] == 0xE1 && buf[4] == 0x01
}
