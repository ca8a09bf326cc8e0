// Package parser turns raw MQTT (topic, payload) pairs into structured
// events. Parsing is pure: no logging, no side effects, malformed input
// simply yields an unrecognized event or a telemetry event without a value.
package parser

import (
	"strings"

	"github.com/Martius108/mc-connect-hub/internal/models"
)

const topicPrefix = "device"

// Parse maps a raw message onto one of the event variants.
//
// Recognized topic shapes:
//
//	device/{id}/telemetry/{keyword...}
//	device/{id}/status
//	device/{id}/ack
//
// Anything else is EventUnrecognized and must be discarded by the caller.
func Parse(topic, payload string) models.Event {
	segments := strings.Split(topic, "/")
	if len(segments) < 3 || segments[0] != topicPrefix || segments[1] == "" {
		return models.Event{Type: models.EventUnrecognized, Payload: payload}
	}

	deviceID := segments[1]

	switch segments[2] {
	case "telemetry":
		if len(segments) < 4 || segments[3] == "" {
			return models.Event{Type: models.EventUnrecognized, Payload: payload}
		}
		// Keywords may nest (subscription uses telemetry/#); deeper
		// segments stay part of the keyword.
		keyword := strings.Join(segments[3:], "/")
		return models.Event{
			Type:     models.EventTelemetry,
			DeviceID: deviceID,
			Keyword:  keyword,
			Value:    ExtractValue(payload),
			Unit:     ExtractUnit(payload),
			Payload:  payload,
		}
	case "status":
		if len(segments) != 3 {
			return models.Event{Type: models.EventUnrecognized, Payload: payload}
		}
		return models.Event{Type: models.EventStatus, DeviceID: deviceID, Payload: payload}
	case "ack":
		if len(segments) != 3 {
			return models.Event{Type: models.EventUnrecognized, Payload: payload}
		}
		return models.Event{Type: models.EventAck, DeviceID: deviceID, Payload: payload}
	default:
		return models.Event{Type: models.EventUnrecognized, Payload: payload}
	}
}
