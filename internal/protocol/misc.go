package protocol

import (
	"encoding/binary"
	"strings"
)

// DecodeHeartRateData decodes a Heart Rate Measurement notification. Flag
// bit 0 selects the 8- or 16-bit heart rate encoding; RR intervals and
// energy fields are not surfaced.
func DecodeHeartRateData(buf []byte) TelemetryRecord {
	rec := newRecord(buf)
	if len(buf) < 2 {
		return rec
	}
	rec.Flags = uint16(buf[0])
	if buf[0]&0x01 != 0 {
		if len(buf) < 3 {
			return rec
		}
		hr := binary.LittleEndian.Uint16(buf[1:3])
		if hr > 255 {
			hr = 255
		}
		rec.HasHeartRate = true
		rec.HeartRateBpm = uint8(hr)
		return rec
	}
	rec.HasHeartRate = true
	rec.HeartRateBpm = buf[1]
	return rec
}

// DecodeBatteryLevel decodes the Battery Level characteristic (a single
// percentage byte).
func DecodeBatteryLevel(buf []byte) TelemetryRecord {
	rec := newRecord(buf)
	if len(buf) < 1 || buf[0] > 100 {
		return rec
	}
	rec.HasBatteryLevel = true
	rec.BatteryLevel = int(buf[0])
	return rec
}

// DecodeDeviceInfoString decodes a Device Information characteristic value
// (model number, firmware revision, and friends) into a trimmed string.
func DecodeDeviceInfoString(buf []byte) string {
	return strings.TrimRight(string(buf), "\x00 ")
}

// DecodeNUSData wraps a Nordic UART notification. NUS payloads are opaque
// vendor bytes with no standard framing, so only the raw capture is kept.
func DecodeNUSData(buf []byte) TelemetryRecord {
	return newRecord(buf)
}
