package protocol

import "encoding/binary"

// CSC Measurement flag bits.
const (
	cscFlagWheelRevs = 1 << 0
	cscFlagCrankRevs = 1 << 1
)

// DecodeCSCData decodes a CSC Measurement notification. The crank fields
// are cumulative counters; turning them into an RPM requires two samples,
// so the codec surfaces the raw revolution count and event time (1/1024 s
// units) and leaves the delta math to the caller.
func DecodeCSCData(buf []byte) TelemetryRecord {
	rec := newRecord(buf)
	if len(buf) < 1 {
		return rec
	}

	flags := buf[0]
	rec.Flags = uint16(flags)
	offset := 1

	if flags&cscFlagWheelRevs != 0 {
		// Cumulative wheel revs (4B) + last event time (2B), unused here.
		offset += 6
	}
	if flags&cscFlagCrankRevs != 0 && offset+4 <= len(buf) {
		rec.HasCrankData = true
		rec.CrankRevolutions = binary.LittleEndian.Uint16(buf[offset : offset+2])
		rec.CrankEventTime = binary.LittleEndian.Uint16(buf[offset+2 : offset+4])
		rec.HasInstantaneousCadence = true
		rec.InstantaneousCadenceRpm = float64(rec.CrankRevolutions)
	}
	return rec
}
