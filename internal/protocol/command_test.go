package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeFTMSPayload_SimpleOps(t *testing.T) {
	tests := []struct {
		op       CommandOp
		expected []byte
	}{
		{OpRequestControl, []byte{0x00}},
		{OpReset, []byte{0x01}},
		{OpStart, []byte{0x07}},
		{OpStop, []byte{0x08}},
		{OpPause, []byte{0x09}},
	}
	for _, tt := range tests {
		payload, err := encodeFTMSPayload(Command{Op: tt.op})
		require.NoError(t, err, tt.op)
		assert.Equal(t, tt.expected, payload, tt.op)
	}
}

func TestEncodeFTMSPayload_Resistance(t *testing.T) {
	payload, err := encodeFTMSPayload(Command{Op: OpSetResistance, ResistanceLevel: 12})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x04, 12}, payload)

	payload, err = encodeFTMSPayload(Command{Op: OpSetResistance, ResistanceLevel: 999})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x04, 0xFF}, payload)
}

func TestEncodeFTMSPayload_TargetPower(t *testing.T) {
	payload, err := encodeFTMSPayload(Command{Op: OpSetTargetPower, TargetPower: 250})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x05, 0xFA, 0x00}, payload)

	payload, err = encodeFTMSPayload(Command{Op: OpSetTargetPower, TargetPower: -10})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x05, 0xF6, 0xFF}, payload)
}

func TestEncodeFTMSPayload_Simulation(t *testing.T) {
	payload, err := encodeFTMSPayload(Command{Op: OpSetSimulation, Sim: SimulationParams{
		WindSpeedMps: 2.5,  // 2500 = 0x09C4
		GradePercent: -1.5, // -150 = 0xFF6A
		Crr:          0.004,
		Cw:           0.51,
	}})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x11, 0xC4, 0x09, 0x6A, 0xFF, 80, 51}, payload)
}
