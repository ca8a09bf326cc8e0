package models

// EventType classifies an inbound MQTT message after parsing.
type EventType int

const (
	// EventUnrecognized marks messages whose topic does not match the
	// device/{id}/... grammar. They are discarded without side effects.
	EventUnrecognized EventType = iota
	EventTelemetry
	EventStatus
	EventAck
)

// String returns a human-readable name for the event type.
func (t EventType) String() string {
	switch t {
	case EventTelemetry:
		return "telemetry"
	case EventStatus:
		return "status"
	case EventAck:
		return "ack"
	default:
		return "unrecognized"
	}
}

// Event is the structured form of a raw (topic, payload) message.
// Value is nil when no numeric reading could be extracted; such telemetry
// still counts for liveness but never touches the cache.
type Event struct {
	Type     EventType
	DeviceID string
	Keyword  string
	Value    *float64
	Unit     string
	Payload  string
}
