package compat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/9916bernard/isYafit-mobile-sub001/internal/protocol"
	"github.com/9916bernard/isYafit-mobile-sub001/internal/session"
)

func fullTelemetry() []protocol.TelemetryRecord {
	return []protocol.TelemetryRecord{
		{
			HasInstantaneousSpeed:   true,
			InstantaneousSpeedKmh:   25.0,
			HasInstantaneousCadence: true,
			InstantaneousCadenceRpm: 90,
			HasInstantaneousPower:   true,
			InstantaneousPowerWatts: 180,
		},
	}
}

func ftmsInput(records []protocol.TelemetryRecord, simOutcome session.ProbeOutcome) Input {
	return Input{
		Connected: true,
		Device: protocol.DeviceDescriptor{
			ID:           "AA:BB:CC:DD:EE:FF",
			Name:         "Test Bike",
			ServiceUUIDs: []string{protocol.ServiceUUIDFTMS},
		},
		Detection: protocol.DetectionResult{Resolved: protocol.KindFTMS},
		Records:   records,
		Probe: session.ProbeReport{
			Kind: protocol.KindFTMS,
			Steps: []session.ProbeStep{
				{Op: protocol.OpRequestControl, Outcome: session.ProbeAcknowledged},
				{Op: protocol.OpSetSimulation, Outcome: simOutcome},
			},
		},
	}
}

func TestAnalyze_NotConnected(t *testing.T) {
	eval := Analyze(Input{Connected: false})

	assert.Equal(t, LevelIncompatible, eval.Level)
	require.NotEmpty(t, eval.Reasons)
	assert.Contains(t, eval.Reasons[0], "connection failed")
}

func TestAnalyze_NoSpeedCadenceAnywhere(t *testing.T) {
	eval := Analyze(Input{
		Connected: true,
		Device: protocol.DeviceDescriptor{
			Name:         "Power Meter",
			ServiceUUIDs: []string{protocol.ServiceUUIDCyclingPower},
		},
		Detection: protocol.DetectionResult{Resolved: protocol.KindCPS},
		Records: []protocol.TelemetryRecord{
			{HasInstantaneousPower: true, InstantaneousPowerWatts: 200},
		},
	})

	assert.Equal(t, LevelIncompatible, eval.Level)
	assert.Contains(t, eval.Reasons[0], "speed and cadence are required")
}

func TestAnalyze_CSCServiceSatisfiesSensorRequirement(t *testing.T) {
	// A CSC service counts even before any telemetry arrived.
	eval := Analyze(Input{
		Connected: true,
		Device: protocol.DeviceDescriptor{
			Name:         "Cadence Pod",
			ServiceUUIDs: []string{"1816"},
		},
		Detection: protocol.DetectionResult{Resolved: protocol.KindCSC},
	})

	assert.Equal(t, LevelPartial, eval.Level)
}

func TestAnalyze_VendorProtocolsUnverifiable(t *testing.T) {
	for _, kind := range []protocol.Kind{
		protocol.KindMobi, protocol.KindReborn, protocol.KindTacx, protocol.KindFitShow,
	} {
		t.Run(string(kind), func(t *testing.T) {
			eval := Analyze(Input{
				Connected: true,
				Device: protocol.DeviceDescriptor{
					Name:         "Vendor Bike",
					ServiceUUIDs: []string{protocol.ServiceUUIDCSC},
				},
				Detection: protocol.DetectionResult{Resolved: kind},
			})

			assert.Equal(t, LevelUnverifiable, eval.Level)
			assert.Contains(t, eval.Reasons[0], "vendor protocol")
		})
	}
}

func TestAnalyze_FTMSFullyCompatible(t *testing.T) {
	eval := Analyze(ftmsInput(fullTelemetry(), session.ProbeAcknowledged))

	assert.Equal(t, LevelFull, eval.Level)
	assert.True(t, eval.Coverage.Speed)
	assert.True(t, eval.Coverage.Cadence)
	assert.True(t, eval.Coverage.Power)
}

func TestAnalyze_FTMSPartialWithoutSimulation(t *testing.T) {
	eval := Analyze(ftmsInput(fullTelemetry(), session.ProbeRefused))

	assert.Equal(t, LevelPartial, eval.Level)
}

func TestAnalyze_FTMSPartialFixableOnResistanceDrift(t *testing.T) {
	in := ftmsInput(fullTelemetry(), session.ProbeRefused)
	in.Issues = []string{IssueResistanceAutoChange}

	eval := Analyze(in)

	assert.Equal(t, LevelPartialFixable, eval.Level)
	assert.Contains(t, eval.Reasons[0], "settings fix")
}

func TestAnalyze_FTMSMissingCadenceIncompatible(t *testing.T) {
	records := []protocol.TelemetryRecord{
		{HasInstantaneousSpeed: true, InstantaneousSpeedKmh: 20},
	}
	in := ftmsInput(records, session.ProbeAcknowledged)
	in.Device.ServiceUUIDs = append(in.Device.ServiceUUIDs, protocol.ServiceUUIDCSC)

	eval := Analyze(in)

	assert.Equal(t, LevelIncompatible, eval.Level)
	assert.Contains(t, eval.Reasons[0], "missing")
}

func TestAnalyze_YafitGradesLikeFTMS(t *testing.T) {
	in := ftmsInput(fullTelemetry(), session.ProbeAcknowledged)
	in.Detection.Resolved = protocol.KindYafitS4

	eval := Analyze(in)

	assert.Equal(t, LevelFull, eval.Level)
}

func TestCoverage_FoldsAcrossRecords(t *testing.T) {
	records := []protocol.TelemetryRecord{
		{HasInstantaneousSpeed: true},
		{HasCrankData: true},
		{HasResistanceLevel: true, ResistanceLevel: 4},
		{HasBatteryLevel: true, BatteryLevel: 90},
	}

	c := Coverage(records)

	assert.True(t, c.Speed)
	assert.True(t, c.Cadence) // crank data counts as cadence
	assert.True(t, c.Resistance)
	assert.True(t, c.Battery)
	assert.False(t, c.Power)
	assert.False(t, c.Gear)
}

func TestDetectIssues_ResistanceDrift(t *testing.T) {
	records := []protocol.TelemetryRecord{
		{HasResistanceLevel: true, ResistanceLevel: 3},
		{HasResistanceLevel: true, ResistanceLevel: 3},
		{HasResistanceLevel: true, ResistanceLevel: 7},
	}

	issues := DetectIssues(records, session.ProbeReport{})

	require.Len(t, issues, 1)
	assert.Equal(t, IssueResistanceAutoChange, issues[0])
}

func TestDetectIssues_NoDriftAfterCommand(t *testing.T) {
	records := []protocol.TelemetryRecord{
		{HasResistanceLevel: true, ResistanceLevel: 3},
		{HasResistanceLevel: true, ResistanceLevel: 7},
	}
	probe := session.ProbeReport{Steps: []session.ProbeStep{
		{Op: protocol.OpSetResistance, Outcome: session.ProbeAcknowledged},
	}}

	assert.Empty(t, DetectIssues(records, probe))
}

func TestDetectIssues_StableResistance(t *testing.T) {
	records := []protocol.TelemetryRecord{
		{HasResistanceLevel: true, ResistanceLevel: 5},
		{HasResistanceLevel: true, ResistanceLevel: 5},
	}

	assert.Empty(t, DetectIssues(records, session.ProbeReport{}))
}
