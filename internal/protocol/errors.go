package protocol

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure classes a caller can act on. Transport
// failures are wrapped and propagated by the session layer; decoders never
// return errors at all (malformed telemetry yields a partial record).
var (
	// ErrUnsupportedOperation is returned when a control command is
	// requested against a read-only protocol, before any transport call.
	ErrUnsupportedOperation = errors.New("protocol does not support control commands")

	// ErrMalformedPayload is returned by encoders handed a payload of the
	// wrong fixed width. Encoding fails fast rather than emitting a broken
	// frame for the device to choke on.
	ErrMalformedPayload = errors.New("malformed command payload")

	// ErrAuthRejected is reported when the Reborn handshake response does
	// not match the expected signature. The caller must restart the
	// connection; there is no automatic retry.
	ErrAuthRejected = errors.New("authentication handshake rejected")
)

// DetectionError wraps a service-discovery failure during protocol
// detection. Detection never silently falls back when discovery itself
// fails; absence of markers is the only path to the CSC fallback.
type DetectionError struct {
	Device string
	Err    error
}

func (e *DetectionError) Error() string {
	return fmt.Sprintf("protocol detection failed for %s: %v", e.Device, e.Err)
}

func (e *DetectionError) Unwrap() error { return e.Err }
