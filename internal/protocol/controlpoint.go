package protocol

import "fmt"

// ControlPointResponse is the 3-byte acknowledgement FTMS-family devices
// send after a control point write.
type ControlPointResponse struct {
	ResponseOpCode byte
	RequestOpCode  byte
	ResultCode     byte
}

// Success reports whether the device accepted the command.
func (r ControlPointResponse) Success() bool {
	return r.ResultCode == FTMSResultSuccess
}

// RequestName names the acknowledged command for logs.
func (r ControlPointResponse) RequestName() string {
	switch r.RequestOpCode {
	case FTMSOpRequestControl:
		return "REQUEST_CONTROL"
	case FTMSOpReset:
		return "RESET"
	case FTMSOpSetResistance:
		return "SET_RESISTANCE_LEVEL"
	case FTMSOpSetTargetPower:
		return "SET_TARGET_POWER"
	case FTMSOpStart:
		return "START"
	case FTMSOpStop:
		return "STOP"
	case FTMSOpPause:
		return "PAUSE"
	case FTMSOpSetSimParams:
		return "SET_SIM_PARAMS"
	default:
		return fmt.Sprintf("UNKNOWN_0x%02x", r.RequestOpCode)
	}
}

// ResultName names the result code for logs.
func (r ControlPointResponse) ResultName() string {
	switch r.ResultCode {
	case FTMSResultSuccess:
		return "SUCCESS"
	case FTMSResultOpCodeNotSupported:
		return "OP_CODE_NOT_SUPPORTED"
	case FTMSResultInvalidParameter:
		return "INVALID_PARAMETER"
	case FTMSResultOperationFailed:
		return "OPERATION_FAILED"
	case FTMSResultControlNotPermitted:
		return "CONTROL_NOT_PERMITTED"
	default:
		return fmt.Sprintf("RESULT_0x%02x", r.ResultCode)
	}
}

// ParseControlPointResponse decodes a control point acknowledgement frame.
func ParseControlPointResponse(buf []byte) (ControlPointResponse, error) {
	if len(buf) < 3 {
		return ControlPointResponse{}, fmt.Errorf("control point response too short: %d bytes", len(buf))
	}
	if buf[0] != FTMSOpResponseCode {
		return ControlPointResponse{}, fmt.Errorf("unexpected control point response op code 0x%02x", buf[0])
	}
	return ControlPointResponse{
		ResponseOpCode: buf[0],
		RequestOpCode:  buf[1],
		ResultCode:     buf[2],
	}, nil
}
