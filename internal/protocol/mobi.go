package protocol

// DecodeMobiData decodes a Mobi vendor telemetry notification. The frame
// carries a big-endian cadence pair and packs gear and resistance into a
// single status byte; Mobi bikes report no battery characteristic, so the
// level is pinned at full.
func DecodeMobiData(buf []byte) TelemetryRecord {
	rec := newRecord(buf)
	if len(buf) <= 14 {
		return rec
	}

	rec.HasInstantaneousCadence = true
	rec.InstantaneousCadenceRpm = float64(uint16(buf[9])<<8 | uint16(buf[10]))

	rec.HasGearLevel = true
	rec.GearLevel = int(buf[13])

	rec.HasResistanceLevel = true
	rec.ResistanceLevel = float64(buf[13])

	rec.HasBatteryLevel = true
	rec.BatteryLevel = 100

	return rec
}
