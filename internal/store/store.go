// Package store persists device status and latest telemetry so the hub can
// restore its view after a restart or reconnect. All calls are best-effort
// from the caller's perspective; the engine degrades to a cold start when
// the store is unavailable.
package store

import (
	"time"

	"github.com/Martius108/mc-connect-hub/internal/models"
)

// Repository is the narrow persistence surface the reconciliation engine
// depends on. Implementations must be safe for concurrent use.
type Repository interface {
	// FetchOnlineDeviceIDs returns the devices flagged online in the store.
	FetchOnlineDeviceIDs() ([]string, error)

	// FetchLatestByDevice returns the latest persisted reading per keyword
	// for one device. An unknown device yields an empty map.
	FetchLatestByDevice(deviceID string) (map[string]models.TelemetryValue, error)

	// SaveValue mirrors a new reading.
	SaveValue(deviceID, keyword string, value models.TelemetryValue) error

	// UpsertDeviceStatus records a device's online flag and lastSeen.
	UpsertDeviceStatus(deviceID string, online bool, lastSeen time.Time) error

	// DeleteDevice removes all persisted data for a device.
	DeleteDevice(deviceID string) error
}
