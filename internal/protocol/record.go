package protocol

import "encoding/hex"

// TelemetryRecord is the canonical telemetry value every decoder produces.
// Each Has flag marks a field as reported by the frame; a clear flag means
// the frame did not carry that field, never that its value was zero. The
// only exception is battery level, which several vendor protocols hard-wire
// to 100 because their hardware does not report it.
type TelemetryRecord struct {
	HasInstantaneousSpeed   bool
	HasAverageSpeed         bool
	HasInstantaneousCadence bool
	HasAverageCadence       bool
	HasTotalDistance        bool
	HasResistanceLevel      bool
	HasInstantaneousPower   bool
	HasAveragePower         bool
	HasExpendedEnergy       bool
	HasHeartRate            bool
	HasMetabolicEquivalent  bool
	HasElapsedTime          bool
	HasRemainingTime        bool
	HasGearLevel            bool
	HasBatteryLevel         bool
	HasCrankData            bool

	InstantaneousSpeedKmh   float64 // km/h
	AverageSpeedKmh         float64 // km/h
	InstantaneousCadenceRpm float64 // rpm
	AverageCadenceRpm       float64 // rpm
	TotalDistanceMeters     uint32  // meters
	ResistanceLevel         float64 // unitless
	InstantaneousPowerWatts int16   // watts
	AveragePowerWatts       int16   // watts
	ExpendedEnergyKJ        uint16  // kJ
	HeartRateBpm            uint8   // bpm
	MetabolicEquivalent     float64 // MET
	ElapsedTimeSeconds      uint16  // seconds
	RemainingTimeSeconds    uint16  // seconds
	GearLevel               int     // 1..7 system gear
	BatteryLevel            int     // percent

	// Raw cumulative crank data for protocols that report revolutions
	// instead of rpm. The session layer derives true cadence from deltas
	// between consecutive records.
	CrankRevolutions uint16
	CrankEventTime   uint16 // 1/1024 s units

	// Flags is the frame's own presence word where the protocol has one.
	Flags uint16
	// Raw is the hex capture of the frame the record was decoded from.
	Raw string
}

// newRecord stamps the raw capture; every decoder starts from this so even
// an empty frame yields a record with Raw populated.
func newRecord(buf []byte) TelemetryRecord {
	return TelemetryRecord{Raw: hex.EncodeToString(buf)}
}

// IsEmpty reports whether the record carries no decoded fields beyond the
// raw capture.
func (r TelemetryRecord) IsEmpty() bool {
	return !(r.HasInstantaneousSpeed || r.HasAverageSpeed ||
		r.HasInstantaneousCadence || r.HasAverageCadence ||
		r.HasTotalDistance || r.HasResistanceLevel ||
		r.HasInstantaneousPower || r.HasAveragePower ||
		r.HasExpendedEnergy || r.HasHeartRate ||
		r.HasMetabolicEquivalent || r.HasElapsedTime ||
		r.HasRemainingTime || r.HasGearLevel ||
		r.HasBatteryLevel || r.HasCrankData)
}
