package models

import "time"

// ChangeType classifies a state-change notification pushed to observers.
type ChangeType int

const (
	ChangeValue ChangeType = iota
	ChangeOnline
	ChangeOffline
	ChangeRestored
	ChangeAck
)

// String returns a human-readable name for the change type.
func (t ChangeType) String() string {
	switch t {
	case ChangeValue:
		return "value"
	case ChangeOnline:
		return "online"
	case ChangeOffline:
		return "offline"
	case ChangeRestored:
		return "restored"
	case ChangeAck:
		return "ack"
	default:
		return "unknown"
	}
}

// Change is pushed to registered observers after every cache or liveness
// mutation. Value is set only for ChangeValue; Payload carries the raw
// message body for ChangeAck.
type Change struct {
	Type      ChangeType
	DeviceID  string
	Keyword   string
	Value     *TelemetryValue
	Payload   string
	Timestamp time.Time
}
