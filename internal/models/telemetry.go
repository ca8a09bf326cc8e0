package models

import "time"

// TelemetryValue is the latest reading for one (device, keyword) pair.
// Immutable once constructed; a newer reading replaces it wholesale.
type TelemetryValue struct {
	Value     float64   `json:"value"`
	Unit      string    `json:"unit,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// DeviceState is the liveness view of a single device.
type DeviceState struct {
	DeviceID         string    `json:"device_id"`
	Online           bool      `json:"online"`
	LastSeen         time.Time `json:"last_seen,omitempty"`
	Firmware         string    `json:"firmware,omitempty"`
	FirmwareOutdated bool      `json:"firmware_outdated,omitempty"`
}
