package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeTacxResistance(t *testing.T) {
	frame, err := encodeTacxResistance(50)
	require.NoError(t, err)
	require.Len(t, frame, 13)

	assert.Equal(t, []byte{0xA4, 0x09, 0x4F, 0x05, 0x30}, frame[:5])
	assert.Equal(t, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 100}, frame[5:12])
	assert.Equal(t, tacxChecksum(frame[:12]), frame[12])
}

func TestEncodeTacxResistance_Clamped(t *testing.T) {
	frame, err := encodeTacxResistance(200)
	require.NoError(t, err)
	assert.Equal(t, byte(255), frame[11])

	frame, err = encodeTacxResistance(-5)
	require.NoError(t, err)
	assert.Equal(t, byte(0), frame[11])
}

func TestEncodeTacxTargetPower(t *testing.T) {
	// 250 W in 0.25 W units = 1000 = 0x03E8 LE.
	frame, err := encodeTacxTargetPower(250)
	require.NoError(t, err)
	assert.Equal(t, byte(0x31), frame[4])
	assert.Equal(t, byte(0xE8), frame[10])
	assert.Equal(t, byte(0x03), frame[11])
}

func TestEncodeTacxSimulation(t *testing.T) {
	// Grade 0% offsets to 200 / 0.01 = 20000 = 0x4E20 LE.
	frame, err := encodeTacxSimulation(SimulationParams{GradePercent: 0, Crr: 0.004})
	require.NoError(t, err)
	assert.Equal(t, byte(0x33), frame[4])
	assert.Equal(t, byte(0x20), frame[9])
	assert.Equal(t, byte(0x4E), frame[10])
	assert.Equal(t, byte(80), frame[11]) // 0.004 / 0.00005

	// Grade 5%: (205)/0.01 = 20500 = 0x5014.
	frame, err = encodeTacxSimulation(SimulationParams{GradePercent: 5})
	require.NoError(t, err)
	assert.Equal(t, byte(0x14), frame[9])
	assert.Equal(t, byte(0x50), frame[10])
}

func TestEncodeTacxFrame_ChecksumProperty(t *testing.T) {
	// XOR of the full 13-byte frame must be zero: the checksum cancels
	// the first 12 bytes.
	frames := [][]byte{}
	for level := 0; level <= 100; level += 7 {
		f, err := encodeTacxResistance(level)
		require.NoError(t, err)
		frames = append(frames, f)
	}
	for w := 0; w <= 800; w += 55 {
		f, err := encodeTacxTargetPower(w)
		require.NoError(t, err)
		frames = append(frames, f)
	}
	for _, frame := range frames {
		assert.Equal(t, byte(0), tacxChecksum(frame))
	}
}

func TestEncodeTacxFrame_BadPayloadWidth(t *testing.T) {
	_, err := encodeTacxFrame(0x30, []byte{0xFF, 0xFF})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedPayload)

	_, err = encodeTacxFrame(0x30, make([]byte, 8))
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestDecodeTacxData_SpecificTrainerPage(t *testing.T) {
	frame := make([]byte, 13)
	frame[0] = 0xA4
	frame[4] = 0x19
	frame[6] = 85 // cadence
	rec := DecodeTacxData(frame)
	require.True(t, rec.HasInstantaneousCadence)
	assert.InDelta(t, 85.0, rec.InstantaneousCadenceRpm, 0.001)
}

func TestDecodeTacxData_GearPage(t *testing.T) {
	tests := []struct {
		name  string
		front byte
		rear  byte
		level int
	}{
		{"lowest", 0, 20, 1},
		{"below middle", 0, 6, 2},
		{"middle", 2, 0, 4},
		{"high", 10, 0, 6},
		{"highest", 20, 0, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame := make([]byte, 13)
			frame[0] = 0xA4
			frame[4] = 0xFB
			frame[10] = tt.front
			frame[11] = tt.rear
			rec := DecodeTacxData(frame)
			require.True(t, rec.HasGearLevel)
			assert.Equal(t, tt.level, rec.GearLevel)
		})
	}
}

func TestDecodeTacxData_UnknownOrShort(t *testing.T) {
	assert.True(t, DecodeTacxData([]byte{0xA4, 0x09}).IsEmpty())

	frame := make([]byte, 13)
	frame[0] = 0xA4
	frame[4] = 0x42
	assert.True(t, DecodeTacxData(frame).IsEmpty())

	// Wrong sync byte.
	frame[0] = 0x00
	frame[4] = 0x19
	assert.True(t, DecodeTacxData(frame).IsEmpty())
}
