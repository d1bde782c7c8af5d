package compat

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/9916bernard/isYafit-mobile-sub001/internal/protocol"
	"github.com/9916bernard/isYafit-mobile-sub001/internal/session"
)

func reportInput() Input {
	resistance := protocol.SupportRange{Min: 1, Max: 32, Increment: 1}
	speed := protocol.SupportRange{Min: 2, Max: 65.53, Increment: 0.01}
	return Input{
		Connected: true,
		Device: protocol.DeviceDescriptor{
			ID:           "AA:BB:CC:DD:EE:FF",
			Name:         "Yafit Bike S4",
			ServiceUUIDs: []string{protocol.ServiceUUIDFTMS},
		},
		Detection: protocol.DetectionResult{Resolved: protocol.KindYafitS4},
		Profile: session.DeviceProfile{
			Manufacturer:    "YAFIT",
			ModelNumber:     "S4",
			HasBattery:      true,
			BatteryLevel:    72,
			Features:        &protocol.MachineFeatures{Cadence: true, ResistanceLevel: true},
			ResistanceRange: &resistance,
			SpeedRange:      &speed,
		},
		Records: fullTelemetry(),
		Probe: session.ProbeReport{
			Kind: protocol.KindYafitS4,
			Steps: []session.ProbeStep{
				{Op: protocol.OpRequestControl, Outcome: session.ProbeAcknowledged},
				{Op: protocol.OpSetTargetPower, Outcome: session.ProbeRefused, Result: "OP_CODE_NOT_SUPPORTED"},
				{Op: protocol.OpSetSimulation, Outcome: session.ProbeAcknowledged},
			},
		},
	}
}

func TestWriteReport_Sections(t *testing.T) {
	in := reportInput()
	eval := Analyze(in)
	at := time.Date(2026, 8, 29, 14, 30, 0, 0, time.UTC)

	var buf strings.Builder
	require.NoError(t, WriteReport(&buf, in, eval, at))
	out := buf.String()

	assert.Contains(t, out, "Device Compatibility Report")
	assert.Contains(t, out, "Tested at: 2026-08-29 14:30:00")
	assert.Contains(t, out, "Name:     Yafit Bike S4")
	assert.Contains(t, out, "Address:  AA:BB:CC:DD:EE:FF")
	assert.Contains(t, out, "Protocol: YAFIT_S4")
	assert.Contains(t, out, "Battery:      72%")
	assert.Contains(t, out, "Connected: yes")
	assert.Contains(t, out, "[O] Cadence")
	assert.Contains(t, out, "[X] Heart rate")
	assert.Contains(t, out, "Speed:       2.00 ~ 65.53 km/h (step 0.01)")
	assert.Contains(t, out, "Resistance:  1 ~ 32 (step 1)")
	assert.Contains(t, out, "SET_TARGET_POWER")
	assert.Contains(t, out, "refused (OP_CODE_NOT_SUPPORTED)")
	assert.Contains(t, out, "Fully compatible")
}

func TestWriteReport_FallbackProtocolMarked(t *testing.T) {
	in := reportInput()
	in.Detection = protocol.DetectionResult{Resolved: protocol.KindCSC, Fallback: true}
	in.Probe = session.ProbeReport{}

	var buf strings.Builder
	require.NoError(t, WriteReport(&buf, in, Analyze(in), time.Now()))

	assert.Contains(t, buf.String(), "Protocol: CSC (assumed)")
	assert.NotContains(t, buf.String(), "[Control tests]")
}

func TestWriteReport_IssuesSection(t *testing.T) {
	in := reportInput()
	in.Issues = []string{IssueResistanceAutoChange}

	var buf strings.Builder
	require.NoError(t, WriteReport(&buf, in, Analyze(in), time.Now()))

	assert.Contains(t, buf.String(), "[Issues]")
	assert.Contains(t, buf.String(), IssueResistanceAutoChange)
}

func TestSaveReport_FileNameAndContents(t *testing.T) {
	dir := t.TempDir()
	in := reportInput()
	at := time.Date(2026, 8, 29, 9, 5, 0, 0, time.UTC)

	path, err := SaveReport(dir, in, Analyze(in), at)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "Yafit_Bike_S4_09-05_report.txt"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Device Compatibility Report")
}

func TestSaveReport_SanitizesHostileName(t *testing.T) {
	dir := t.TempDir()
	in := reportInput()
	in.Device.Name = "../weird/bike!?"

	path, err := SaveReport(dir, in, Analyze(in), time.Now())
	require.NoError(t, err)

	assert.Equal(t, dir, filepath.Dir(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "weirdbike_"))
}

func TestSaveReport_EmptyNameFallsBack(t *testing.T) {
	dir := t.TempDir()
	in := reportInput()
	in.Device.Name = ""

	path, err := SaveReport(dir, in, Analyze(in), time.Now())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(filepath.Base(path), "device_"))
}
