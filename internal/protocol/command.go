package protocol

import (
	"fmt"
	"math"
)

// CommandOp is a logical control operation, independent of how any one
// protocol frames it on the wire.
type CommandOp int

const (
	OpRequestControl CommandOp = iota
	OpReset
	OpStart
	OpStop
	OpPause
	OpSetResistance
	OpSetTargetPower
	OpSetSimulation
)

func (op CommandOp) String() string {
	switch op {
	case OpRequestControl:
		return "request_control"
	case OpReset:
		return "reset"
	case OpStart:
		return "start"
	case OpStop:
		return "stop"
	case OpPause:
		return "pause"
	case OpSetResistance:
		return "set_resistance"
	case OpSetTargetPower:
		return "set_target_power"
	case OpSetSimulation:
		return "set_simulation"
	default:
		return fmt.Sprintf("op(%d)", int(op))
	}
}

// SimulationParams carries the grade/wind model for simulation mode.
type SimulationParams struct {
	WindSpeedMps float64 // m/s
	GradePercent float64 // %
	Crr          float64 // rolling resistance coefficient
	Cw           float64 // wind resistance coefficient, kg/m
}

// Command pairs an operation with its parameters. Only the field matching
// Op is meaningful.
type Command struct {
	Op              CommandOp
	ResistanceLevel int
	TargetPower     int16
	Sim             SimulationParams
}

// CommandFrame is the encoded result: the bytes and the characteristic they
// must be written to. Only the transport collaborator consumes it.
type CommandFrame struct {
	ServiceUUID        string
	CharacteristicUUID string
	Payload            []byte
	WithResponse       bool
}

// FTMS Control Point op codes (Fitness Machine Service 1.0).
const (
	FTMSOpRequestControl byte = 0x00
	FTMSOpReset          byte = 0x01
	FTMSOpSetResistance  byte = 0x04
	FTMSOpSetTargetPower byte = 0x05
	FTMSOpStart          byte = 0x07
	FTMSOpStop           byte = 0x08
	FTMSOpPause          byte = 0x09
	FTMSOpSetSimParams   byte = 0x11
	FTMSOpResponseCode   byte = 0x80
)

// FTMS Control Point result codes.
const (
	FTMSResultSuccess             byte = 0x01
	FTMSResultOpCodeNotSupported  byte = 0x02
	FTMSResultInvalidParameter    byte = 0x03
	FTMSResultOperationFailed     byte = 0x04
	FTMSResultControlNotPermitted byte = 0x05
)

// encodeFTMSPayload builds the control point payload for the FTMS family
// (FTMS proper, Yafit S3/S4, and the subset Reborn accepts): one op code
// byte followed by little-endian parameters.
func encodeFTMSPayload(cmd Command) ([]byte, error) {
	switch cmd.Op {
	case OpRequestControl:
		return []byte{FTMSOpRequestControl}, nil
	case OpReset:
		return []byte{FTMSOpReset}, nil
	case OpStart:
		return []byte{FTMSOpStart}, nil
	case OpStop:
		return []byte{FTMSOpStop}, nil
	case OpPause:
		return []byte{FTMSOpPause}, nil
	case OpSetResistance:
		level := cmd.ResistanceLevel
		if level < 0 {
			level = 0
		}
		if level > 0xFF {
			level = 0xFF
		}
		return []byte{FTMSOpSetResistance, byte(level)}, nil
	case OpSetTargetPower:
		w := uint16(cmd.TargetPower)
		return []byte{FTMSOpSetTargetPower, byte(w), byte(w >> 8)}, nil
	case OpSetSimulation:
		// Wind speed 0.001 m/s, grade 0.01 %, crr 1/20000, cw 0.01 kg/m.
		wind := int16(math.Round(cmd.Sim.WindSpeedMps / 0.001))
		grade := int16(math.Round(cmd.Sim.GradePercent / 0.01))
		crr := clampByte(math.Round(cmd.Sim.Crr / 0.00005))
		cw := clampByte(math.Round(cmd.Sim.Cw / 0.01))
		return []byte{
			FTMSOpSetSimParams,
			byte(uint16(wind)), byte(uint16(wind) >> 8),
			byte(uint16(grade)), byte(uint16(grade) >> 8),
			crr,
			cw,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedOperation, cmd.Op)
	}
}

func clampByte(v float64) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}
