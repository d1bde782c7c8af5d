package protocol

import "fmt"

// CharacteristicRef names one notify/read characteristic inside its service.
type CharacteristicRef struct {
	ServiceUUID        string
	CharacteristicUUID string
}

// Handler binds one protocol kind to its codec: which characteristics carry
// telemetry, how to decode their notifications, and how to frame control
// commands. Handlers are stateless and shared; per-session state (frame
// merging, crank deltas, auth) lives in the session layer.
type Handler interface {
	Kind() Kind
	// Decode turns one notification into a telemetry record. Decoders are
	// total: malformed or truncated input yields a record carrying only
	// the raw capture, never an error or a panic.
	Decode(buf []byte) TelemetryRecord
	// Encode frames a control command for this protocol. Kinds without
	// control support fail with ErrUnsupportedOperation before any
	// transport involvement.
	Encode(cmd Command) (CommandFrame, error)
	// DataCharacteristics lists the characteristics to subscribe to for
	// telemetry, in subscription order.
	DataCharacteristics() []CharacteristicRef
}

// HandlerFor returns the handler for a kind. The set is closed: every Kind
// constant has a handler, and an unknown kind is a programming error.
func HandlerFor(kind Kind) (Handler, error) {
	h, ok := handlers[kind]
	if !ok {
		return nil, fmt.Errorf("protocol: no handler for kind %q", kind)
	}
	return h, nil
}

var handlers = map[Kind]Handler{
	KindFTMS:    ftmsHandler{kind: KindFTMS},
	KindYafitS3: ftmsHandler{kind: KindYafitS3},
	KindYafitS4: ftmsHandler{kind: KindYafitS4},
	KindCSC:     cscHandler{},
	KindCPS:     cpsHandler{},
	KindMobi:    mobiHandler{},
	KindReborn:  rebornHandler{},
	KindTacx:    tacxHandler{},
	KindFitShow: fitshowHandler{},
	KindNUS:     nusHandler{},
	KindHRS:     hrsHandler{},
	KindBMS:     bmsHandler{},
	KindDIS:     disHandler{},
}

// ftmsHandler serves FTMS proper and the Yafit S3/S4 bikes, which speak
// standard FTMS frames behind vendor names.
type ftmsHandler struct {
	kind Kind
}

func (h ftmsHandler) Kind() Kind                    { return h.kind }
func (h ftmsHandler) Decode(buf []byte) TelemetryRecord { return DecodeIndoorBikeData(buf) }

func (h ftmsHandler) Encode(cmd Command) (CommandFrame, error) {
	payload, err := encodeFTMSPayload(cmd)
	if err != nil {
		return CommandFrame{}, err
	}
	return CommandFrame{
		ServiceUUID:        ServiceUUIDFTMS,
		CharacteristicUUID: CharUUIDFTMSControlPoint,
		Payload:            payload,
		WithResponse:       true,
	}, nil
}

func (h ftmsHandler) DataCharacteristics() []CharacteristicRef {
	return []CharacteristicRef{
		{ServiceUUIDFTMS, CharUUIDIndoorBikeData},
		{ServiceUUIDFTMS, CharUUIDFTMSControlPoint},
	}
}

type cscHandler struct{}

func (cscHandler) Kind() Kind                        { return KindCSC }
func (cscHandler) Decode(buf []byte) TelemetryRecord { return DecodeCSCData(buf) }

func (cscHandler) Encode(cmd Command) (CommandFrame, error) {
	return CommandFrame{}, fmt.Errorf("%w: %s on read-only protocol csc", ErrUnsupportedOperation, cmd.Op)
}

func (cscHandler) DataCharacteristics() []CharacteristicRef {
	return []CharacteristicRef{{ServiceUUIDCSC, CharUUIDCSCMeasurement}}
}

type cpsHandler struct{}

func (cpsHandler) Kind() Kind                        { return KindCPS }
func (cpsHandler) Decode(buf []byte) TelemetryRecord { return DecodeCPSData(buf) }

func (cpsHandler) Encode(cmd Command) (CommandFrame, error) {
	return CommandFrame{}, fmt.Errorf("%w: %s on read-only protocol cycling_power", ErrUnsupportedOperation, cmd.Op)
}

func (cpsHandler) DataCharacteristics() []CharacteristicRef {
	return []CharacteristicRef{{ServiceUUIDCyclingPower, CharUUIDCyclingPowerMeasurement}}
}

type mobiHandler struct{}

func (mobiHandler) Kind() Kind                        { return KindMobi }
func (mobiHandler) Decode(buf []byte) TelemetryRecord { return DecodeMobiData(buf) }

func (mobiHandler) Encode(cmd Command) (CommandFrame, error) {
	return CommandFrame{}, fmt.Errorf("%w: %s on read-only protocol mobi", ErrUnsupportedOperation, cmd.Op)
}

func (mobiHandler) DataCharacteristics() []CharacteristicRef {
	return []CharacteristicRef{{ServiceUUIDMobi, CharUUIDMobiData}}
}

// rebornHandler decodes Reborn telemetry. The bike accepts a small FTMS
// opcode subset on its write characteristic, but resistance is rider
// controlled and the session never drives it, so commands stay unsupported.
type rebornHandler struct{}

func (rebornHandler) Kind() Kind                        { return KindReborn }
func (rebornHandler) Decode(buf []byte) TelemetryRecord { return DecodeRebornData(buf) }

func (rebornHandler) Encode(cmd Command) (CommandFrame, error) {
	return CommandFrame{}, fmt.Errorf("%w: %s on read-only protocol reborn", ErrUnsupportedOperation, cmd.Op)
}

func (rebornHandler) DataCharacteristics() []CharacteristicRef {
	return []CharacteristicRef{{ServiceUUIDReborn, CharUUIDRebornData}}
}

type tacxHandler struct{}

func (tacxHandler) Kind() Kind                        { return KindTacx }
func (tacxHandler) Decode(buf []byte) TelemetryRecord { return DecodeTacxData(buf) }

func (tacxHandler) Encode(cmd Command) (CommandFrame, error) {
	var (
		payload []byte
		err     error
	)
	switch cmd.Op {
	case OpSetResistance:
		payload, err = encodeTacxResistance(cmd.ResistanceLevel)
	case OpSetTargetPower:
		payload, err = encodeTacxTargetPower(int(cmd.TargetPower))
	case OpSetSimulation:
		payload, err = encodeTacxSimulation(cmd.Sim)
	default:
		return CommandFrame{}, fmt.Errorf("%w: %s on tacx", ErrUnsupportedOperation, cmd.Op)
	}
	if err != nil {
		return CommandFrame{}, err
	}
	return CommandFrame{
		ServiceUUID:        ServiceUUIDTacx,
		CharacteristicUUID: CharUUIDTacxWrite,
		Payload:            payload,
		WithResponse:       false,
	}, nil
}

func (tacxHandler) DataCharacteristics() []CharacteristicRef {
	return []CharacteristicRef{{ServiceUUIDTacx, CharUUIDTacxRead}}
}

type fitshowHandler struct{}

func (fitshowHandler) Kind() Kind                        { return KindFitShow }
func (fitshowHandler) Decode(buf []byte) TelemetryRecord { return DecodeFitShowData(buf) }

func (fitshowHandler) Encode(cmd Command) (CommandFrame, error) {
	var payload []byte
	switch cmd.Op {
	case OpRequestControl, OpReset:
		payload = encodeFitShowInit()
	case OpStart:
		payload = encodeFitShowStart()
	case OpStop:
		payload = encodeFitShowStop()
	case OpPause:
		payload = encodeFitShowPause()
	case OpSetResistance:
		payload = encodeFitShowResistance(cmd.ResistanceLevel)
	default:
		return CommandFrame{}, fmt.Errorf("%w: %s on fitshow", ErrUnsupportedOperation, cmd.Op)
	}
	return CommandFrame{
		ServiceUUID:        ServiceUUIDFitShow,
		CharacteristicUUID: CharUUIDFitShowWrite,
		Payload:            payload,
		WithResponse:       false,
	}, nil
}

func (fitshowHandler) DataCharacteristics() []CharacteristicRef {
	return []CharacteristicRef{{ServiceUUIDFitShow, CharUUIDFitShowBikeData}}
}

type nusHandler struct{}

func (nusHandler) Kind() Kind                        { return KindNUS }
func (nusHandler) Decode(buf []byte) TelemetryRecord { return DecodeNUSData(buf) }

func (nusHandler) Encode(cmd Command) (CommandFrame, error) {
	return CommandFrame{}, fmt.Errorf("%w: %s on nus", ErrUnsupportedOperation, cmd.Op)
}

func (nusHandler) DataCharacteristics() []CharacteristicRef {
	return []CharacteristicRef{{ServiceUUIDNUS, CharUUIDNUSTX}}
}

type hrsHandler struct{}

func (hrsHandler) Kind() Kind                        { return KindHRS }
func (hrsHandler) Decode(buf []byte) TelemetryRecord { return DecodeHeartRateData(buf) }

func (hrsHandler) Encode(cmd Command) (CommandFrame, error) {
	return CommandFrame{}, fmt.Errorf("%w: %s on heart_rate", ErrUnsupportedOperation, cmd.Op)
}

func (hrsHandler) DataCharacteristics() []CharacteristicRef {
	return []CharacteristicRef{{ServiceUUIDHeartRate, CharUUIDHeartRateMeasurement}}
}

type bmsHandler struct{}

func (bmsHandler) Kind() Kind                        { return KindBMS }
func (bmsHandler) Decode(buf []byte) TelemetryRecord { return DecodeBatteryLevel(buf) }

func (bmsHandler) Encode(cmd Command) (CommandFrame, error) {
	return CommandFrame{}, fmt.Errorf("%w: %s on battery", ErrUnsupportedOperation, cmd.Op)
}

func (bmsHandler) DataCharacteristics() []CharacteristicRef {
	return []CharacteristicRef{{ServiceUUIDBattery, CharUUIDBatteryLevel}}
}

// disHandler exists so the kind set stays closed; device information is
// read with plain characteristic reads, not notifications.
type disHandler struct{}

func (disHandler) Kind() Kind                        { return KindDIS }
func (disHandler) Decode(buf []byte) TelemetryRecord { return newRecord(buf) }

func (disHandler) Encode(cmd Command) (CommandFrame, error) {
	return CommandFrame{}, fmt.Errorf("%w: %s on device_information", ErrUnsupportedOperation, cmd.Op)
}

func (disHandler) DataCharacteristics() []CharacteristicRef { return nil }
