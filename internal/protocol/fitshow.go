package protocol

// FitShow vendor frames: [0x02, cmd, data..., checksum, 0x03] where the
// checksum XORs everything between the start and stop bytes.
const (
	fitshowStart = 0x02
	fitshowStop  = 0x03

	fitshowCmdWorkout    = 0x44
	fitshowCmdResistance = 0x04

	fitshowWorkoutInit  = 0x01
	fitshowWorkoutStart = 0x02
	fitshowWorkoutPause = 0x03
	fitshowWorkoutStop  = 0x04
)

func encodeFitShowFrame(body ...byte) []byte {
	var chk byte
	for _, b := range body {
		chk ^= b
	}
	frame := make([]byte, 0, len(body)+3)
	frame = append(frame, fitshowStart)
	frame = append(frame, body...)
	frame = append(frame, chk, fitshowStop)
	return frame
}

func encodeFitShowInit() []byte {
	return encodeFitShowFrame(fitshowCmdWorkout, fitshowWorkoutInit)
}

func encodeFitShowStart() []byte {
	return encodeFitShowFrame(fitshowCmdWorkout, fitshowWorkoutStart)
}

func encodeFitShowPause() []byte {
	return encodeFitShowFrame(fitshowCmdWorkout, fitshowWorkoutPause)
}

func encodeFitShowStop() []byte {
	return encodeFitShowFrame(fitshowCmdWorkout, fitshowWorkoutStop)
}

// encodeFitShowResistance targets a resistance level clamped to the
// machine's 1-32 range.
func encodeFitShowResistance(level int) []byte {
	if level < 1 {
		level = 1
	}
	if level > 32 {
		level = 32
	}
	return encodeFitShowFrame(fitshowCmdResistance, byte(level))
}

// DecodeFitShowData decodes a FitShow telemetry notification. Frames
// shorter than 12 bytes carry no decodable fields and yield only the raw
// capture.
func DecodeFitShowData(buf []byte) TelemetryRecord {
	rec := newRecord(buf)
	if len(buf) < 12 {
		return rec
	}

	rec.HasInstantaneousSpeed = true
	rec.InstantaneousSpeedKmh = (float64(buf[2]) + float64(buf[3])*255) * 0.01

	rec.HasInstantaneousCadence = true
	rec.InstantaneousCadenceRpm = (float64(buf[4]) + float64(buf[5])*255) * 0.5

	rec.HasResistanceLevel = true
	rec.ResistanceLevel = (float64(buf[9]) + float64(buf[10])*255) * 0.1

	rec.HasInstantaneousPower = true
	rec.InstantaneousPowerWatts = int16(buf[11])

	rec.HasBatteryLevel = true
	rec.BatteryLevel = 100

	return rec
}
