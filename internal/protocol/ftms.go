package protocol

import "encoding/binary"

// Indoor Bike Data flag bits (FTMS 1.0). Bit 0 is inverted: a clear bit
// means instantaneous speed IS present.
const (
	ibdFlagMoreData             = 1 << 0
	ibdFlagAverageSpeed         = 1 << 1
	ibdFlagInstantaneousCadence = 1 << 2
	ibdFlagAverageCadence       = 1 << 3
	ibdFlagTotalDistance        = 1 << 4
	ibdFlagResistanceLevel      = 1 << 5
	ibdFlagInstantaneousPower   = 1 << 6
	ibdFlagAveragePower         = 1 << 7
	ibdFlagExpendedEnergy       = 1 << 8
	ibdFlagHeartRate            = 1 << 9
	ibdFlagMetabolicEquivalent  = 1 << 10
	ibdFlagElapsedTime          = 1 << 11
	ibdFlagRemainingTime        = 1 << 12
)

// DecodeIndoorBikeData decodes an FTMS Indoor Bike Data frame. The decoder
// is total: fields are consumed in flag-bit order only while the buffer has
// enough bytes left, so a truncated frame yields the fields that fit and
// nothing else.
func DecodeIndoorBikeData(buf []byte) TelemetryRecord {
	rec := newRecord(buf)
	if len(buf) < 2 {
		return rec
	}

	flags := binary.LittleEndian.Uint16(buf[0:2])
	rec.Flags = flags
	offset := 2

	u16 := func() (uint16, bool) {
		if offset+2 > len(buf) {
			return 0, false
		}
		v := binary.LittleEndian.Uint16(buf[offset : offset+2])
		offset += 2
		return v, true
	}

	if flags&ibdFlagMoreData == 0 {
		if v, ok := u16(); ok {
			rec.HasInstantaneousSpeed = true
			rec.InstantaneousSpeedKmh = float64(v) / 100
		}
	}
	if flags&ibdFlagAverageSpeed != 0 {
		if v, ok := u16(); ok {
			rec.HasAverageSpeed = true
			rec.AverageSpeedKmh = float64(v) / 100
		}
	}
	if flags&ibdFlagInstantaneousCadence != 0 {
		if v, ok := u16(); ok {
			rec.HasInstantaneousCadence = true
			rec.InstantaneousCadenceRpm = float64(v) / 2
		}
	}
	if flags&ibdFlagAverageCadence != 0 {
		if v, ok := u16(); ok {
			rec.HasAverageCadence = true
			rec.AverageCadenceRpm = float64(v) / 2
		}
	}
	if flags&ibdFlagTotalDistance != 0 {
		if offset+3 <= len(buf) {
			rec.HasTotalDistance = true
			rec.TotalDistanceMeters = uint32(buf[offset]) |
				uint32(buf[offset+1])<<8 | uint32(buf[offset+2])<<16
			offset += 3
		}
	}
	if flags&ibdFlagResistanceLevel != 0 {
		if v, ok := u16(); ok {
			rec.HasResistanceLevel = true
			rec.ResistanceLevel = float64(int16(v))
		}
	}
	if flags&ibdFlagInstantaneousPower != 0 {
		if v, ok := u16(); ok {
			rec.HasInstantaneousPower = true
			rec.InstantaneousPowerWatts = int16(v)
		}
	}
	if flags&ibdFlagAveragePower != 0 {
		if v, ok := u16(); ok {
			rec.HasAveragePower = true
			rec.AveragePowerWatts = int16(v)
		}
	}
	if flags&ibdFlagExpendedEnergy != 0 {
		if v, ok := u16(); ok {
			rec.HasExpendedEnergy = true
			rec.ExpendedEnergyKJ = v
		}
	}
	if flags&ibdFlagHeartRate != 0 {
		if offset+1 <= len(buf) {
			rec.HasHeartRate = true
			rec.HeartRateBpm = buf[offset]
			offset++
		}
	}
	if flags&ibdFlagMetabolicEquivalent != 0 {
		if offset+1 <= len(buf) {
			rec.HasMetabolicEquivalent = true
			rec.MetabolicEquivalent = float64(buf[offset]) / 10
			offset++
		}
	}
	if flags&ibdFlagElapsedTime != 0 {
		if v, ok := u16(); ok {
			rec.HasElapsedTime = true
			rec.ElapsedTimeSeconds = v
		}
	}
	if flags&ibdFlagRemainingTime != 0 {
		if v, ok := u16(); ok {
			rec.HasRemainingTime = true
			rec.RemainingTimeSeconds = v
		}
	}

	return rec
}

// FrameMerger reassembles Indoor Bike Data frames that trainers split
// across notifications. Two consecutive frames with non-overlapping flags
// words are one logical frame: the flags are OR'd and the second payload is
// appended past its own flags word.
//
// Push returns zero or more complete frames ready for decoding; Flush
// returns the buffered frame, if any, and must be called on disconnect.
type FrameMerger struct {
	buf   []byte
	flags uint16
	has   bool
}

func (m *FrameMerger) Push(frame []byte) [][]byte {
	if len(frame) < 2 {
		return [][]byte{frame}
	}
	flags := binary.LittleEndian.Uint16(frame[0:2])

	if !m.has {
		m.store(frame, flags)
		return nil
	}

	if m.flags&flags == 0 {
		merged := make([]byte, 0, len(m.buf)+len(frame)-2)
		merged = append(merged, m.buf...)
		merged = append(merged, frame[2:]...)
		binary.LittleEndian.PutUint16(merged[0:2], m.flags|flags)
		m.reset()
		return [][]byte{merged}
	}

	// Overlapping flags: the buffered frame stands on its own.
	prev := m.buf
	m.store(frame, flags)
	return [][]byte{prev}
}

// Flush emits the buffered frame, if any, and clears the merger.
func (m *FrameMerger) Flush() ([]byte, bool) {
	if !m.has {
		return nil, false
	}
	buf := m.buf
	m.reset()
	return buf, true
}

func (m *FrameMerger) store(frame []byte, flags uint16) {
	m.buf = append([]byte(nil), frame...)
	m.flags = flags
	m.has = true
}

func (m *FrameMerger) reset() {
	m.buf = nil
	m.flags = 0
	m.has = false
}

// MachineFeatures is the decoded FTMS feature bitmap (characteristic
// 0x2ACC), read once during session initialization.
type MachineFeatures struct {
	Bits uint32

	AverageSpeed        bool
	Cadence             bool
	TotalDistance       bool
	Inclination         bool
	ElevationGain       bool
	Pace                bool
	StepCount           bool
	ResistanceLevel     bool
	StrideCount         bool
	ExpendedEnergy      bool
	HeartRate           bool
	MetabolicEquivalent bool
	ElapsedTime         bool
	RemainingTime       bool
	PowerMeasurement    bool
	ForceOnBelt         bool
}

// DecodeMachineFeatures decodes the static machine feature characteristic.
func DecodeMachineFeatures(buf []byte) MachineFeatures {
	var bits uint32
	for i := 0; i < len(buf) && i < 4; i++ {
		bits |= uint32(buf[i]) << (8 * i)
	}
	return MachineFeatures{
		Bits:                bits,
		AverageSpeed:        bits&0x0001 != 0,
		Cadence:             bits&0x0002 != 0,
		TotalDistance:       bits&0x0004 != 0,
		Inclination:         bits&0x0008 != 0,
		ElevationGain:       bits&0x0010 != 0,
		Pace:                bits&0x0020 != 0,
		StepCount:           bits&0x0040 != 0,
		ResistanceLevel:     bits&0x0080 != 0,
		StrideCount:         bits&0x0100 != 0,
		ExpendedEnergy:      bits&0x0200 != 0,
		HeartRate:           bits&0x0400 != 0,
		MetabolicEquivalent: bits&0x0800 != 0,
		ElapsedTime:         bits&0x1000 != 0,
		RemainingTime:       bits&0x2000 != 0,
		PowerMeasurement:    bits&0x4000 != 0,
		ForceOnBelt:         bits&0x8000 != 0,
	}
}

// SupportRange is a min/max/increment triple from one of the FTMS supported
// range characteristics, already scaled to its natural unit.
type SupportRange struct {
	Min       float64
	Max       float64
	Increment float64
}

func decodeRange(buf []byte, scale float64, signed bool) (SupportRange, bool) {
	if len(buf) < 6 {
		return SupportRange{}, false
	}
	read := func(off int) float64 {
		v := binary.LittleEndian.Uint16(buf[off : off+2])
		if signed {
			return float64(int16(v)) * scale
		}
		return float64(v) * scale
	}
	return SupportRange{Min: read(0), Max: read(2), Increment: read(4)}, true
}

// DecodeSpeedRange decodes 0x2AD4 (km/h at 0.01 resolution).
func DecodeSpeedRange(buf []byte) (SupportRange, bool) {
	return decodeRange(buf, 0.01, false)
}

// DecodeInclinationRange decodes 0x2AD5 (percent at 0.1 resolution, signed).
func DecodeInclinationRange(buf []byte) (SupportRange, bool) {
	return decodeRange(buf, 0.1, true)
}

// DecodeResistanceRange decodes 0x2AD6 (unitless levels).
func DecodeResistanceRange(buf []byte) (SupportRange, bool) {
	return decodeRange(buf, 1, false)
}

// DecodePowerRange decodes 0x2AD8 (watts).
func DecodePowerRange(buf []byte) (SupportRange, bool) {
	return decodeRange(buf, 1, false)
}
