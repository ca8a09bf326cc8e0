// Package cache holds the latest telemetry reading per device and keyword.
//
// The outer map is a sharded concurrent map keyed by device ID; the inner
// per-device map is treated as immutable and replaced wholesale on every
// write. Readers therefore always observe a complete, consistent snapshot
// of a device, never a half-updated one.
package cache

import (
	cmap "github.com/orcaman/concurrent-map/v2"

	"github.com/Martius108/mc-connect-hub/internal/models"
)

// TelemetryCache is a concurrency-safe latest-value store. The zero value
// is not usable; call New.
type TelemetryCache struct {
	devices cmap.ConcurrentMap[string, map[string]models.TelemetryValue]
}

// New creates an empty telemetry cache.
func New() *TelemetryCache {
	return &TelemetryCache{
		devices: cmap.New[map[string]models.TelemetryValue](),
	}
}

// Put replaces the reading for (deviceID, keyword). The device snapshot is
// copied and swapped under the shard lock, so concurrent readers keep the
// old snapshot until the new one is complete.
func (c *TelemetryCache) Put(deviceID, keyword string, value models.TelemetryValue) {
	c.devices.Upsert(deviceID, nil, func(exists bool, current, _ map[string]models.TelemetryValue) map[string]models.TelemetryValue {
		next := make(map[string]models.TelemetryValue, len(current)+1)
		for k, v := range current {
			next[k] = v
		}
		next[keyword] = value
		return next
	})
}

// PutAll installs a full set of readings for a device in one atomic swap.
// Used by the restore-from-persistence path.
func (c *TelemetryCache) PutAll(deviceID string, values map[string]models.TelemetryValue) {
	if len(values) == 0 {
		return
	}
	c.devices.Upsert(deviceID, nil, func(exists bool, current, _ map[string]models.TelemetryValue) map[string]models.TelemetryValue {
		next := make(map[string]models.TelemetryValue, len(current)+len(values))
		for k, v := range current {
			next[k] = v
		}
		for k, v := range values {
			next[k] = v
		}
		return next
	})
}

// Get returns the latest reading for (deviceID, keyword).
func (c *TelemetryCache) Get(deviceID, keyword string) (models.TelemetryValue, bool) {
	snapshot, ok := c.devices.Get(deviceID)
	if !ok {
		return models.TelemetryValue{}, false
	}
	value, ok := snapshot[keyword]
	return value, ok
}

// GetAll returns a copy of the device's readings. The copy is owned by the
// caller; mutating it never affects the cache.
func (c *TelemetryCache) GetAll(deviceID string) map[string]models.TelemetryValue {
	snapshot, ok := c.devices.Get(deviceID)
	if !ok {
		return map[string]models.TelemetryValue{}
	}
	out := make(map[string]models.TelemetryValue, len(snapshot))
	for k, v := range snapshot {
		out[k] = v
	}
	return out
}

// HasData reports whether the device has at least one cached reading.
func (c *TelemetryCache) HasData(deviceID string) bool {
	snapshot, ok := c.devices.Get(deviceID)
	return ok && len(snapshot) > 0
}

// DropDevice removes every reading for the device. Called when a device
// goes offline or is deleted.
func (c *TelemetryCache) DropDevice(deviceID string) {
	c.devices.Remove(deviceID)
}

// DropAll empties the whole cache. Called on a verified cold disconnect.
func (c *TelemetryCache) DropAll() {
	c.devices.Clear()
}

// Len returns the number of devices with cached readings.
func (c *TelemetryCache) Len() int {
	return c.devices.Count()
}

// DeviceIDs returns the IDs of all devices with cached readings.
func (c *TelemetryCache) DeviceIDs() []string {
	return c.devices.Keys()
}
