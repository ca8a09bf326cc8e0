// Package liveness tracks which devices are currently reachable, based on
// recent message activity, and demotes stale devices with a periodic sweep.
package liveness

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Martius108/mc-connect-hub/internal/models"
)

type deviceState struct {
	online           bool
	lastSeen         time.Time
	firmware         string
	firmwareOutdated bool
}

// Tracker maintains per-device online/lastSeen state. All mutations are
// serialized through one mutex; reads return copies.
type Tracker struct {
	timeout       time.Duration
	sweepInterval time.Duration

	// hasData reports whether a device has cached telemetry. An online
	// device without cache entries is a contradiction the sweep repairs.
	hasData func(deviceID string) bool

	// onExpired is called once per device the sweep demotes, after the
	// state change, outside the tracker lock.
	onExpired func(deviceID string)

	logger zerolog.Logger

	mu      sync.RWMutex
	devices map[string]*deviceState

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewTracker initializes a tracker. hasData and onExpired must be non-nil.
func NewTracker(timeout, sweepInterval time.Duration, hasData func(string) bool,
	onExpired func(string), logger zerolog.Logger) *Tracker {

	return &Tracker{
		timeout:       timeout,
		sweepInterval: sweepInterval,
		hasData:       hasData,
		onExpired:     onExpired,
		logger:        logger,
		devices:       make(map[string]*deviceState),
	}
}

// Start launches the periodic sweep goroutine.
func (t *Tracker) Start() error {
	if t.ctx != nil {
		t.logger.Warn().Msg("Liveness tracker is already running")
		return errors.New("liveness tracker is already running")
	}

	t.ctx, t.cancel = context.WithCancel(context.Background())

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		t.runSweepLoop()
	}()

	t.logger.Info().
		Dur("timeout", t.timeout).
		Dur("sweep_interval", t.sweepInterval).
		Msg("Liveness tracker started")
	return nil
}

// Stop halts the sweep goroutine. After Stop returns no further sweep
// mutations are scheduled.
func (t *Tracker) Stop() error {
	if t.ctx == nil {
		t.logger.Warn().Msg("Liveness tracker is not running")
		return errors.New("liveness tracker is not running")
	}

	t.cancel()
	t.wg.Wait()

	t.ctx = nil
	t.cancel = nil

	t.logger.Info().Msg("Liveness tracker stopped")
	return nil
}

func (t *Tracker) runSweepLoop() {
	ticker := time.NewTicker(t.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			for _, id := range t.Sweep(time.Now()) {
				t.onExpired(id)
			}
		case <-t.ctx.Done():
			return
		}
	}
}

// Sweep demotes every online device whose last message is older than the
// timeout, or that has no cached telemetry. Returns the demoted IDs.
// Idempotent: a second sweep with no new messages demotes nothing.
func (t *Tracker) Sweep(now time.Time) []string {
	t.mu.Lock()
	var expired []string
	for id, st := range t.devices {
		if !st.online {
			continue
		}
		stale := now.Sub(st.lastSeen) > t.timeout
		if stale || !t.hasData(id) {
			st.online = false
			expired = append(expired, id)
		}
	}
	t.mu.Unlock()

	for _, id := range expired {
		t.logger.Info().Str("device_id", id).Msg("Device timed out, marked offline")
	}
	return expired
}

// Touch records message activity for a device. Returns true if the device
// transitioned from offline (or unknown) to online.
func (t *Tracker) Touch(deviceID string, at time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	st, ok := t.devices[deviceID]
	if !ok {
		st = &deviceState{}
		t.devices[deviceID] = st
	}
	becameOnline := !st.online
	st.online = true
	if at.After(st.lastSeen) {
		st.lastSeen = at
	}
	return becameOnline
}

// SetOnline forces a device online with the given lastSeen, without
// requiring message activity. Used by the restore path.
func (t *Tracker) SetOnline(deviceID string, lastSeen time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	st, ok := t.devices[deviceID]
	if !ok {
		st = &deviceState{}
		t.devices[deviceID] = st
	}
	st.online = true
	st.lastSeen = lastSeen
}

// MarkOffline demotes one device. Returns true if it was online.
func (t *Tracker) MarkOffline(deviceID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	st, ok := t.devices[deviceID]
	if !ok || !st.online {
		return false
	}
	st.online = false
	return true
}

// MarkAllOffline demotes every device, returning the IDs that were online.
// Used on transport disconnect.
func (t *Tracker) MarkAllOffline() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	var demoted []string
	for id, st := range t.devices {
		if st.online {
			st.online = false
			demoted = append(demoted, id)
		}
	}
	return demoted
}

// SetFirmware records the firmware version a device reported.
func (t *Tracker) SetFirmware(deviceID, firmware string, outdated bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	st, ok := t.devices[deviceID]
	if !ok {
		st = &deviceState{}
		t.devices[deviceID] = st
	}
	st.firmware = firmware
	st.firmwareOutdated = outdated
}

// Online reports whether the device is currently considered reachable.
func (t *Tracker) Online(deviceID string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	st, ok := t.devices[deviceID]
	return ok && st.online
}

// Get returns the liveness view of one device.
func (t *Tracker) Get(deviceID string) (models.DeviceState, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	st, ok := t.devices[deviceID]
	if !ok {
		return models.DeviceState{}, false
	}
	return models.DeviceState{
		DeviceID:         deviceID,
		Online:           st.online,
		LastSeen:         st.lastSeen,
		Firmware:         st.firmware,
		FirmwareOutdated: st.firmwareOutdated,
	}, true
}

// Snapshot returns the liveness view of every known device.
func (t *Tracker) Snapshot() []models.DeviceState {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]models.DeviceState, 0, len(t.devices))
	for id, st := range t.devices {
		out = append(out, models.DeviceState{
			DeviceID:         id,
			Online:           st.online,
			LastSeen:         st.lastSeen,
			Firmware:         st.firmware,
			FirmwareOutdated: st.firmwareOutdated,
		})
	}
	return out
}

// Forget drops all liveness state for a device. Called on device deletion.
func (t *Tracker) Forget(deviceID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.devices, deviceID)
}
