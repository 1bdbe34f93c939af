package session

import "sync/atomic"

// State is the session lifecycle state. The background loop is the only
// writer; the capture callback and external observers read it atomically.
type State int32

const (
	// StateStandby buffers microphone audio and scans it for the wake word.
	StateStandby State = iota

	// StateActivating is the transient state while the activation
	// acknowledgment plays. Incoming audio is not treated as a command.
	StateActivating

	// StateActive listens for spoken commands.
	StateActive

	// StateAwaitingConfirmation holds a pending execution until the user
	// confirms, declines, or the confirmation window expires.
	StateAwaitingConfirmation
)

// String returns the human-readable name of the state.
func (s State) String() string {
	switch s {
	case StateStandby:
		return "standby"
	case StateActivating:
		return "activating"
	case StateActive:
		return "active"
	case StateAwaitingConfirmation:
		return "awaiting-confirmation"
	default:
		return "unknown"
	}
}

// stateBox holds the session state behind atomic loads and stores.
type stateBox struct {
	v atomic.Int32
}

func (b *stateBox) load() State {
	return State(b.v.Load())
}

func (b *stateBox) store(s State) {
	b.v.Store(int32(s))
}
