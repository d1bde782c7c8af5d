package protocol

import (
	"fmt"
	"math"
)

// Tacx FE-C over BLE. Frames are 13 bytes: a 4-byte header, a page id, a
// 7-byte payload, and an XOR checksum over the first 12 bytes.
const (
	tacxSync     = 0xA4
	tacxLength   = 0x09
	tacxMsgType  = 0x4F
	tacxChannel  = 0x05
	tacxFrameLen = 13
)

// Tacx data page ids.
const (
	tacxPageBasicResistance = 0x30
	tacxPageTargetPower     = 0x31
	tacxPageTrackResistance = 0x33
	tacxPageSpecificTrainer = 0x19
	tacxPageGearStatus      = 0xFB
)

// tacxChecksum XORs all bytes of the frame prefix.
func tacxChecksum(frame []byte) byte {
	var chk byte
	for _, b := range frame {
		chk ^= b
	}
	return chk
}

// encodeTacxFrame builds a complete FE-C frame for the given page. The
// payload must be exactly 7 bytes.
func encodeTacxFrame(page byte, payload []byte) ([]byte, error) {
	if len(payload) != 7 {
		return nil, fmt.Errorf("tacx: page 0x%02X payload must be 7 bytes, got %d: %w",
			page, len(payload), ErrMalformedPayload)
	}
	frame := make([]byte, 0, tacxFrameLen)
	frame = append(frame, tacxSync, tacxLength, tacxMsgType, tacxChannel, page)
	frame = append(frame, payload...)
	frame = append(frame, tacxChecksum(frame))
	return frame, nil
}

// encodeTacxResistance builds a Basic Resistance page. Levels map to the
// 0.5% unit byte, clamped to the page's range.
func encodeTacxResistance(level int) ([]byte, error) {
	scaled := level * 2
	if scaled < 0 {
		scaled = 0
	}
	if scaled > 255 {
		scaled = 255
	}
	return encodeTacxFrame(tacxPageBasicResistance,
		[]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, byte(scaled)})
}

// encodeTacxTargetPower builds a Target Power page (0.25 W units).
func encodeTacxTargetPower(watts int) ([]byte, error) {
	quarter := watts * 4
	return encodeTacxFrame(tacxPageTargetPower,
		[]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, byte(quarter), byte(quarter >> 8)})
}

// encodeTacxSimulation builds a Track Resistance page. Grade is offset by
// 200% and carried in 0.01% units; rolling resistance in 5e-5 units.
func encodeTacxSimulation(sim SimulationParams) ([]byte, error) {
	grade := int(math.Round((sim.GradePercent + 200) / 0.01))
	if grade < 0 {
		grade = 0
	}
	if grade > 0xFFFF {
		grade = 0xFFFF
	}
	crr := int(math.Round(sim.Crr / 0.00005))
	if crr < 0 {
		crr = 0
	}
	if crr > 255 {
		crr = 255
	}
	return encodeTacxFrame(tacxPageTrackResistance,
		[]byte{0xFF, 0xFF, 0xFF, 0xFF, byte(grade), byte(grade >> 8), byte(crr)})
}

// tacxGearThresholds bucket the front-rear gear difference into levels 1-7.
var tacxGearThresholds = []int{-8, -4, 0, 4, 8, 12}

// DecodeTacxData decodes telemetry notifications from the FE-C read
// characteristic. Only the Specific Trainer Data and Gear Status pages
// carry fields we surface; everything else yields an empty record.
func DecodeTacxData(buf []byte) TelemetryRecord {
	rec := newRecord(buf)
	if len(buf) < tacxFrameLen || buf[0] != tacxSync {
		return rec
	}

	switch buf[4] {
	case tacxPageSpecificTrainer:
		rec.HasInstantaneousCadence = true
		rec.InstantaneousCadenceRpm = float64(buf[6])
	case tacxPageGearStatus:
		front := int(buf[10])
		rear := int(buf[11])
		diff := front - rear
		level := 1
		for _, t := range tacxGearThresholds {
			if diff > t {
				level++
			}
		}
		rec.HasGearLevel = true
		rec.GearLevel = level
	}
	return rec
}
