package session

import "fmt"

// State is the lifecycle of one device session. Transitions only move
// forward until Active; Disconnecting and Disconnected are reachable from
// anywhere.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateDetecting
	StateInitializing
	StateActive
	StateDisconnecting
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateDetecting:
		return "detecting"
	case StateInitializing:
		return "initializing"
	case StateActive:
		return "active"
	case StateDisconnecting:
		return "disconnecting"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}
