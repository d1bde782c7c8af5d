package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeFitShowWorkoutCommands(t *testing.T) {
	assert.Equal(t, []byte{0x02, 0x44, 0x01, 0x45, 0x03}, encodeFitShowInit())
	assert.Equal(t, []byte{0x02, 0x44, 0x02, 0x46, 0x03}, encodeFitShowStart())
	assert.Equal(t, []byte{0x02, 0x44, 0x03, 0x47, 0x03}, encodeFitShowPause())
	assert.Equal(t, []byte{0x02, 0x44, 0x04, 0x40, 0x03}, encodeFitShowStop())
}

func TestEncodeFitShowResistance(t *testing.T) {
	frame := encodeFitShowResistance(10)
	assert.Equal(t, []byte{0x02, 0x04, 0x0A, 0x0E, 0x03}, frame)

	// Clamped to [1, 32].
	assert.Equal(t, byte(1), encodeFitShowResistance(0)[2])
	assert.Equal(t, byte(1), encodeFitShowResistance(-3)[2])
	assert.Equal(t, byte(32), encodeFitShowResistance(99)[2])
}

func TestDecodeFitShowData(t *testing.T) {
	frame := []byte{
		0x02, 0x42,
		0xE8, 0x03, // speed: (232 + 3*255) * 0.01 = 9.97 km/h
		0xB4, 0x00, // cadence: 180 * 0.5 = 90 rpm
		0x00, 0x00, 0x00,
		0x64, 0x00, // resistance: 100 * 0.1 = 10
		0x96, // power 150 W
	}
	rec := DecodeFitShowData(frame)

	require.True(t, rec.HasInstantaneousSpeed)
	assert.InDelta(t, 9.97, rec.InstantaneousSpeedKmh, 0.001)
	require.True(t, rec.HasInstantaneousCadence)
	assert.InDelta(t, 90.0, rec.InstantaneousCadenceRpm, 0.001)
	require.True(t, rec.HasResistanceLevel)
	assert.InDelta(t, 10.0, rec.ResistanceLevel, 0.001)
	require.True(t, rec.HasInstantaneousPower)
	assert.Equal(t, int16(150), rec.InstantaneousPowerWatts)
	require.True(t, rec.HasBatteryLevel)
	assert.Equal(t, 100, rec.BatteryLevel)
}

func TestDecodeFitShowData_FractionalResistance(t *testing.T) {
	frame := []byte{
		0x02, 0x42,
		0x00, 0x00,
		0x00, 0x00,
		0x00, 0x00, 0x00,
		0x0F, 0x00, // resistance: 15 * 0.1 = 1.5, kept fractional
		0x00,
	}
	rec := DecodeFitShowData(frame)

	require.True(t, rec.HasResistanceLevel)
	assert.InDelta(t, 1.5, rec.ResistanceLevel, 0.001)
}

func TestDecodeFitShowData_TooShort(t *testing.T) {
	// 11 bytes is below the minimum telemetry frame; only the raw capture
	// survives.
	rec := DecodeFitShowData(make([]byte, 11))
	assert.True(t, rec.IsEmpty())
	assert.NotEmpty(t, rec.Raw)
}
