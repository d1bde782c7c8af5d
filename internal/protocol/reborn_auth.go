package protocol

import (
	"crypto/rand"
	"fmt"
)

// AuthState tracks the Reborn challenge-response handshake.
type AuthState int

const (
	AuthIdle AuthState = iota
	AuthChallengeSent
	AuthVerified
	AuthRejected
)

func (s AuthState) String() string {
	switch s {
	case AuthIdle:
		return "idle"
	case AuthChallengeSent:
		return "challenge_sent"
	case AuthVerified:
		return "verified"
	case AuthRejected:
		return "rejected"
	default:
		return fmt.Sprintf("auth_state(%d)", int(s))
	}
}

var rebornAuthKey = [5]byte{0x15, 0x25, 0x80, 0x13, 0xF0}

// Reborn handshake acknowledgement frames written back to the bike after
// the reply has been checked.
var (
	rebornAckVerified = []byte{0xAA, 0x06, 0x80, 0xE1, 0x00, 0x11}
	rebornAckRejected = []byte{0xAA, 0x06, 0x80, 0xE1, 0x01, 0x12}
)

// RebornAuthenticator runs the Reborn challenge-response handshake. It is
// single-session state: build and send the challenge, check the bike's
// reply, and write back the matching acknowledgement. Not safe for
// concurrent use.
type RebornAuthenticator struct {
	state     AuthState
	challenge []byte
}

func NewRebornAuthenticator() *RebornAuthenticator {
	return &RebornAuthenticator{state: AuthIdle}
}

func (a *RebornAuthenticator) State() AuthState { return a.state }

// Challenge builds a fresh 15-byte challenge frame: a 4-byte header, 10
// random bytes, and a trailing mod-256 sum over the first 14 bytes. The
// authenticator moves to the challenge-sent state.
func (a *RebornAuthenticator) Challenge() ([]byte, error) {
	nonce := make([]byte, 10)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("reborn auth: generating nonce: %w", err)
	}

	frame := make([]byte, 0, 15)
	frame = append(frame, 0xAA, 0x0F, 0x8A, 0x03)
	frame = append(frame, nonce...)
	var sum byte
	for _, b := range frame {
		sum += b
	}
	frame = append(frame, sum)

	a.challenge = frame
	a.state = AuthChallengeSent
	return frame, nil
}

// HandleReply checks the bike's reply against the outstanding challenge and
// returns the acknowledgement frame to write back. A reply that fails the
// frame checks or the key math moves the authenticator to rejected.
func (a *RebornAuthenticator) HandleReply(reply []byte) ([]byte, error) {
	if a.state != AuthChallengeSent {
		return nil, fmt.Errorf("reborn auth: reply in state %s: %w",
			a.state, ErrUnsupportedOperation)
	}
	if len(reply) < 9 || reply[2] != 0x8A || reply[3] != 0x03 {
		a.state = AuthRejected
		return rebornAckRejected, fmt.Errorf("reborn auth: malformed reply: %w", ErrAuthRejected)
	}

	for i := 0; i < 5; i++ {
		expected := byte(int(a.challenge[4+i]) + int(a.challenge[9+i]) + int(rebornAuthKey[i]))
		if reply[4+i] != expected {
			a.state = AuthRejected
			return rebornAckRejected, fmt.Errorf("reborn auth: digest mismatch at byte %d: %w",
				i, ErrAuthRejected)
		}
	}

	a.state = AuthVerified
	a.challenge = nil
	return rebornAckVerified, nil
}

// Reset returns the authenticator to idle so a reconnect can start a new
// handshake. Safe to call in any state.
func (a *RebornAuthenticator) Reset() {
	a.state = AuthIdle
	a.challenge = nil
}
