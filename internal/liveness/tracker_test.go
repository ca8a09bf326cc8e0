package liveness

import (
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func alwaysHasData(string) bool { return true }
func neverExpires(string)       {}

func newTestTracker(hasData func(string) bool) *Tracker {
	return NewTracker(30*time.Second, 5*time.Second, hasData, neverExpires, zerolog.Nop())
}

func TestTracker_TouchFlipsOnline(t *testing.T) {
	tr := newTestTracker(alwaysHasData)

	assert.False(t, tr.Online("esp01"))
	assert.True(t, tr.Touch("esp01", time.Now()))
	assert.True(t, tr.Online("esp01"))

	// Already online: no flip reported, lastSeen refreshed.
	assert.False(t, tr.Touch("esp01", time.Now()))
	assert.True(t, tr.Online("esp01"))
}

func TestTracker_TouchKeepsLatestLastSeen(t *testing.T) {
	tr := newTestTracker(alwaysHasData)

	now := time.Now()
	tr.Touch("esp01", now)
	tr.Touch("esp01", now.Add(-time.Minute)) // out-of-order activity

	state, ok := tr.Get("esp01")
	assert.True(t, ok)
	assert.Equal(t, now, state.LastSeen)
}

func TestTracker_SweepExpiresStaleDevices(t *testing.T) {
	tr := newTestTracker(alwaysHasData)

	now := time.Now()
	tr.Touch("stale", now.Add(-time.Minute))
	tr.Touch("fresh", now)

	expired := tr.Sweep(now)

	assert.Equal(t, []string{"stale"}, expired)
	assert.False(t, tr.Online("stale"))
	assert.True(t, tr.Online("fresh"))
}

func TestTracker_SweepIsIdempotent(t *testing.T) {
	tr := newTestTracker(alwaysHasData)

	now := time.Now()
	tr.Touch("esp01", now.Add(-time.Minute))

	assert.Len(t, tr.Sweep(now), 1)
	assert.Empty(t, tr.Sweep(now))
	assert.Empty(t, tr.Sweep(now))
}

func TestTracker_SweepRepairsEmptyCacheContradiction(t *testing.T) {
	tr := newTestTracker(func(string) bool { return false })

	now := time.Now()
	tr.Touch("esp01", now) // fresh, but no cached telemetry

	expired := tr.Sweep(now)

	assert.Equal(t, []string{"esp01"}, expired)
	assert.False(t, tr.Online("esp01"))
}

func TestTracker_MarkOffline(t *testing.T) {
	tr := newTestTracker(alwaysHasData)

	assert.False(t, tr.MarkOffline("unknown"))

	tr.Touch("esp01", time.Now())
	assert.True(t, tr.MarkOffline("esp01"))
	assert.False(t, tr.MarkOffline("esp01"))
	assert.False(t, tr.Online("esp01"))
}

func TestTracker_MarkAllOffline(t *testing.T) {
	tr := newTestTracker(alwaysHasData)

	tr.Touch("esp01", time.Now())
	tr.Touch("pico01", time.Now())
	tr.MarkOffline("pico01")

	demoted := tr.MarkAllOffline()

	assert.Equal(t, []string{"esp01"}, demoted)
	assert.False(t, tr.Online("esp01"))
	assert.Empty(t, tr.MarkAllOffline())
}

func TestTracker_SetOnline(t *testing.T) {
	tr := newTestTracker(alwaysHasData)

	lastSeen := time.Now()
	tr.SetOnline("esp01", lastSeen)

	state, ok := tr.Get("esp01")
	assert.True(t, ok)
	assert.True(t, state.Online)
	assert.Equal(t, lastSeen, state.LastSeen)
}

func TestTracker_Forget(t *testing.T) {
	tr := newTestTracker(alwaysHasData)

	tr.Touch("esp01", time.Now())
	tr.Forget("esp01")

	_, ok := tr.Get("esp01")
	assert.False(t, ok)
	assert.Empty(t, tr.Snapshot())
}

func TestTracker_Firmware(t *testing.T) {
	tr := newTestTracker(alwaysHasData)

	tr.Touch("esp01", time.Now())
	tr.SetFirmware("esp01", "0.9.0", true)

	state, ok := tr.Get("esp01")
	assert.True(t, ok)
	assert.Equal(t, "0.9.0", state.Firmware)
	assert.True(t, state.FirmwareOutdated)
}

func TestTracker_StartStopLifecycle(t *testing.T) {
	tr := NewTracker(30*time.Second, 10*time.Millisecond, alwaysHasData, neverExpires, zerolog.Nop())

	assert.NoError(t, tr.Start())
	assert.Error(t, tr.Start())

	assert.NoError(t, tr.Stop())
	assert.Error(t, tr.Stop())
}

func TestTracker_SweepLoopInvokesOnExpired(t *testing.T) {
	var mu sync.Mutex
	var expired []string

	tr := NewTracker(20*time.Millisecond, 10*time.Millisecond, alwaysHasData, func(id string) {
		mu.Lock()
		expired = append(expired, id)
		mu.Unlock()
	}, zerolog.Nop())

	tr.Touch("esp01", time.Now())

	assert.NoError(t, tr.Start())
	defer tr.Stop()

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(expired) == 1 && expired[0] == "esp01"
	}, time.Second, 5*time.Millisecond)

	assert.False(t, tr.Online("esp01"))
}
