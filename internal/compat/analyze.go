// Package compat grades how well a probed device would work with the app:
// which telemetry it actually produced, which control commands it honored,
// and the overall verdict a support engineer can hand to the rider.
package compat

import (
	"github.com/9916bernard/isYafit-mobile-sub001/internal/protocol"
	"github.com/9916bernard/isYafit-mobile-sub001/internal/session"
)

// Level is the compatibility verdict.
type Level string

const (
	// LevelFull: all required telemetry plus working simulation control.
	LevelFull Level = "fully_compatible"
	// LevelPartialFixable: partial today, full after a settings fix on
	// the machine (resistance drifting without commands).
	LevelPartialFixable Level = "partially_compatible_fixable"
	// LevelPartial: usable telemetry but no simulation control.
	LevelPartial Level = "partially_compatible"
	// LevelUnverifiable: vendor protocols whose control surface cannot be
	// graded yet.
	LevelUnverifiable Level = "verification_unavailable"
	// LevelIncompatible: connection or required telemetry missing.
	LevelIncompatible Level = "incompatible"
)

// Known issue strings the analyzer keys on.
const (
	IssueResistanceAutoChange = "resistance changed without any resistance-related command"
)

// Input is everything one probing session produced.
type Input struct {
	Connected bool
	Device    protocol.DeviceDescriptor
	Detection protocol.DetectionResult
	Profile   session.DeviceProfile
	Records   []protocol.TelemetryRecord
	Probe     session.ProbeReport
	Issues    []string
}

// FieldCoverage says which telemetry fields at least one record carried.
type FieldCoverage struct {
	Speed      bool
	Cadence    bool
	Power      bool
	Resistance bool
	Gear       bool
	HeartRate  bool
	Distance   bool
	Battery    bool
}

// Coverage folds the presence flags of every record.
func Coverage(records []protocol.TelemetryRecord) FieldCoverage {
	var c FieldCoverage
	for _, rec := range records {
		c.Speed = c.Speed || rec.HasInstantaneousSpeed || rec.HasAverageSpeed
		c.Cadence = c.Cadence || rec.HasInstantaneousCadence || rec.HasCrankData
		c.Power = c.Power || rec.HasInstantaneousPower || rec.HasAveragePower
		c.Resistance = c.Resistance || rec.HasResistanceLevel
		c.Gear = c.Gear || rec.HasGearLevel
		c.HeartRate = c.HeartRate || rec.HasHeartRate
		c.Distance = c.Distance || rec.HasTotalDistance
		c.Battery = c.Battery || rec.HasBatteryLevel
	}
	return c
}

// Evaluation is the verdict plus the human-readable reasons behind it.
type Evaluation struct {
	Level    Level
	Reasons  []string
	Coverage FieldCoverage
}

// vendorKinds cannot be graded for control compatibility yet; their
// command surfaces are reverse engineered and give no acknowledgements.
var vendorKinds = map[protocol.Kind]bool{
	protocol.KindMobi:    true,
	protocol.KindReborn:  true,
	protocol.KindTacx:    true,
	protocol.KindFitShow: true,
}

// Analyze grades one session's results. The rules, in order: no connection
// is incompatible; a device with neither a cadence service nor observed
// speed/cadence data is incompatible; vendor protocols are unverifiable;
// CSC is partial by construction; FTMS machines grade on telemetry plus
// whether simulation mode took.
func Analyze(in Input) Evaluation {
	coverage := Coverage(in.Records)

	if !in.Connected {
		return Evaluation{
			Level:    LevelIncompatible,
			Reasons:  []string{"device connection failed; check the Bluetooth link"},
			Coverage: coverage,
		}
	}

	hasCSCService := false
	for _, uuid := range in.Device.ServiceUUIDs {
		if protocol.NormalizeUUID(uuid) == protocol.ServiceUUIDCSC {
			hasCSCService = true
			break
		}
	}
	if !hasCSCService && !(coverage.Speed && coverage.Cadence) {
		return Evaluation{
			Level:    LevelIncompatible,
			Reasons:  []string{"no speed/cadence sensor or data found; speed and cadence are required"},
			Coverage: coverage,
		}
	}

	kind := in.Detection.Resolved
	if vendorKinds[kind] {
		return Evaluation{
			Level:    LevelUnverifiable,
			Reasons:  []string{string(kind) + " is a vendor protocol; compatibility cannot be verified yet"},
			Coverage: coverage,
		}
	}

	switch kind {
	case protocol.KindFTMS, protocol.KindYafitS3, protocol.KindYafitS4:
		// graded below
	case protocol.KindCSC:
		return Evaluation{
			Level:    LevelPartial,
			Reasons:  []string{"CSC provides speed/cadence telemetry only"},
			Coverage: coverage,
		}
	default:
		return Evaluation{
			Level:    LevelIncompatible,
			Reasons:  []string{"unsupported protocol " + string(kind)},
			Coverage: coverage,
		}
	}

	simWorking := false
	for _, step := range in.Probe.Steps {
		if step.Op == protocol.OpSetSimulation && step.Outcome == session.ProbeAcknowledged {
			simWorking = true
		}
	}

	hasSpeedAndCadence := coverage.Speed && coverage.Cadence
	switch {
	case hasSpeedAndCadence && simWorking:
		return Evaluation{
			Level:    LevelFull,
			Reasons:  []string{"speed and cadence present and simulation mode works"},
			Coverage: coverage,
		}
	case hasSpeedAndCadence:
		for _, issue := range in.Issues {
			if issue == IssueResistanceAutoChange {
				return Evaluation{
					Level:    LevelPartialFixable,
					Reasons:  []string{"resistance drifts without commands; full compatibility after a machine settings fix"},
					Coverage: coverage,
				}
			}
		}
		return Evaluation{
			Level:    LevelPartial,
			Reasons:  []string{"speed and cadence present but simulation mode is not supported"},
			Coverage: coverage,
		}
	default:
		return Evaluation{
			Level:    LevelIncompatible,
			Reasons:  []string{"speed or cadence telemetry missing"},
			Coverage: coverage,
		}
	}
}

// DetectIssues derives known issues from the collected telemetry and the
// probe outcomes. Today that is one rule: resistance values changing while
// no resistance command was acknowledged.
func DetectIssues(records []protocol.TelemetryRecord, probe session.ProbeReport) []string {
	resistanceCommanded := false
	for _, step := range probe.Steps {
		if step.Op == protocol.OpSetResistance &&
			(step.Outcome == session.ProbeAcknowledged || step.Outcome == session.ProbeSent) {
			resistanceCommanded = true
		}
	}
	if resistanceCommanded {
		return nil
	}

	var seen *float64
	for _, rec := range records {
		if !rec.HasResistanceLevel {
			continue
		}
		if seen == nil {
			v := rec.ResistanceLevel
			seen = &v
			continue
		}
		if rec.ResistanceLevel != *seen {
			return []string{IssueResistanceAutoChange}
		}
	}
	return nil
}
