// Package controller orchestrates parsing, caching, liveness and
// subscriptions into one authoritative view of what every device is doing,
// and reconciles that view across connect/disconnect/restore cycles.
package controller

import (
	"sync"
	"time"

	"github.com/Masterminds/semver/v3"
	mqttLib "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	"github.com/Martius108/mc-connect-hub/internal/cache"
	"github.com/Martius108/mc-connect-hub/internal/liveness"
	"github.com/Martius108/mc-connect-hub/internal/models"
	"github.com/Martius108/mc-connect-hub/internal/notifier"
	"github.com/Martius108/mc-connect-hub/internal/parser"
	"github.com/Martius108/mc-connect-hub/internal/store"
	"github.com/Martius108/mc-connect-hub/internal/subscription"
	"github.com/Martius108/mc-connect-hub/pkg/mqtt"
)

// Config carries the controller's tunables.
type Config struct {
	OfflineTimeout  time.Duration
	SweepInterval   time.Duration
	DefaultUnit     string
	MinimumFirmware string
	QOS             byte
}

// Controller is the reconciliation engine. All state mutations funnel
// through it; reads go straight to the cache and tracker, which hand out
// consistent snapshots.
type Controller struct {
	mqttClient  mqtt.MQTTClient
	cache       *cache.TelemetryCache
	tracker     *liveness.Tracker
	subs        *subscription.Manager
	repo        store.Repository
	notifier    *notifier.Notifier
	logger      zerolog.Logger
	defaultUnit string
	minFirmware *semver.Version
	qos         byte

	// mu makes the controller a single writer: message handling, the sweep
	// callback and connection transitions all mutate cache and tracker
	// under it, so a message can never interleave with a bulk wipe and
	// leave an offline device holding data.
	mu        sync.Mutex
	connState mqtt.ConnectionState
}

// New wires a controller. It registers itself for connection-state changes
// on the client; Start must still be called to run the liveness sweep.
func New(client mqtt.MQTTClient, repo store.Repository, notify *notifier.Notifier,
	cfg Config, logger zerolog.Logger) *Controller {

	c := &Controller{
		mqttClient:  client,
		cache:       cache.New(),
		repo:        repo,
		notifier:    notify,
		logger:      logger,
		defaultUnit: cfg.DefaultUnit,
		qos:         cfg.QOS,
	}

	if cfg.MinimumFirmware != "" {
		min, err := semver.NewVersion(cfg.MinimumFirmware)
		if err != nil {
			logger.Warn().Err(err).Str("version", cfg.MinimumFirmware).
				Msg("Invalid minimum firmware version in config, firmware gate disabled")
		} else {
			c.minFirmware = min
		}
	}

	c.tracker = liveness.NewTracker(cfg.OfflineTimeout, cfg.SweepInterval,
		c.cache.HasData, c.handleExpired, logger)
	c.subs = subscription.NewManager(client, cfg.QOS, c.handleMessage, logger)

	client.OnConnectionStateChange(c.OnConnectionStateChange)

	return c
}

// Start launches the liveness sweep.
func (c *Controller) Start() error {
	return c.tracker.Start()
}

// Stop halts the sweep and drains pending change notifications.
func (c *Controller) Stop() error {
	err := c.tracker.Stop()
	c.notifier.Close()
	return err
}

// handleMessage adapts the paho handler signature onto OnMessage.
func (c *Controller) handleMessage(_ mqttLib.Client, msg mqttLib.Message) {
	c.OnMessage(msg.Topic(), string(msg.Payload()))
}

// OnMessage runs one raw message through the pipeline. A malformed message
// is absorbed here and can never disturb other devices' state.
func (c *Controller) OnMessage(topic, payload string) {
	event := parser.Parse(topic, payload)

	c.mu.Lock()
	defer c.mu.Unlock()

	switch event.Type {
	case models.EventTelemetry:
		c.handleTelemetry(event)
	case models.EventStatus:
		c.handleStatus(event)
	case models.EventAck:
		now := time.Now()
		c.markActivity(event.DeviceID, now)
		c.notifier.Publish(models.Change{
			Type:      models.ChangeAck,
			DeviceID:  event.DeviceID,
			Payload:   event.Payload,
			Timestamp: now,
		})
	default:
		c.logger.Debug().Str("topic", topic).Msg("Discarding unrecognized message")
	}
}

func (c *Controller) handleTelemetry(event models.Event) {
	now := time.Now()
	c.markActivity(event.DeviceID, now)

	// No extractable number: the message counted for liveness only.
	if event.Value == nil {
		c.logger.Debug().
			Str("device_id", event.DeviceID).
			Str("keyword", event.Keyword).
			Msg("Telemetry payload without numeric value")
		return
	}

	unit := event.Unit
	if unit == "" {
		unit = c.defaultUnit
	}
	value := models.TelemetryValue{Value: *event.Value, Unit: unit, Timestamp: now}
	c.cache.Put(event.DeviceID, event.Keyword, value)

	if err := c.repo.SaveValue(event.DeviceID, event.Keyword, value); err != nil {
		c.logger.Warn().Err(err).Str("device_id", event.DeviceID).Msg("Failed to mirror reading to store")
	}

	c.notifier.Publish(models.Change{
		Type:      models.ChangeValue,
		DeviceID:  event.DeviceID,
		Keyword:   event.Keyword,
		Value:     &value,
		Timestamp: now,
	})
}

func (c *Controller) handleStatus(event models.Event) {
	info := parser.ParseStatus(event.Payload)
	now := time.Now()

	// An explicit "offline" is honored immediately, even if telemetry
	// arrived moments ago. The next message of any kind re-onlines.
	if info.Explicit && !info.Online {
		c.setOffline(event.DeviceID, now)
		return
	}

	c.markActivity(event.DeviceID, now)

	if info.Firmware != "" {
		c.checkFirmware(event.DeviceID, info.Firmware)
	}
}

// markActivity refreshes liveness and, on an offline→online flip, mirrors
// the new status and notifies observers.
func (c *Controller) markActivity(deviceID string, at time.Time) {
	if !c.tracker.Touch(deviceID, at) {
		return
	}

	c.logger.Info().Str("device_id", deviceID).Msg("Device online")
	if err := c.repo.UpsertDeviceStatus(deviceID, true, at); err != nil {
		c.logger.Warn().Err(err).Str("device_id", deviceID).Msg("Failed to persist online status")
	}
	c.notifier.Publish(models.Change{Type: models.ChangeOnline, DeviceID: deviceID, Timestamp: at})
}

// setOffline demotes one device and drops its cache entries, keeping the
// cache invariant that only online devices have data.
func (c *Controller) setOffline(deviceID string, at time.Time) {
	c.tracker.MarkOffline(deviceID)
	c.cache.DropDevice(deviceID)

	c.logger.Info().Str("device_id", deviceID).Msg("Device offline")
	if err := c.repo.UpsertDeviceStatus(deviceID, false, at); err != nil {
		c.logger.Warn().Err(err).Str("device_id", deviceID).Msg("Failed to persist offline status")
	}
	c.notifier.Publish(models.Change{Type: models.ChangeOffline, DeviceID: deviceID, Timestamp: at})
}

// handleExpired is invoked by the sweep for every timed-out device.
func (c *Controller) handleExpired(deviceID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache.DropDevice(deviceID)

	if err := c.repo.UpsertDeviceStatus(deviceID, false, time.Time{}); err != nil {
		c.logger.Warn().Err(err).Str("device_id", deviceID).Msg("Failed to persist offline status")
	}
	c.notifier.Publish(models.Change{Type: models.ChangeOffline, DeviceID: deviceID, Timestamp: time.Now()})
}

func (c *Controller) checkFirmware(deviceID, firmware string) {
	if c.minFirmware == nil {
		c.tracker.SetFirmware(deviceID, firmware, false)
		return
	}

	version, err := semver.NewVersion(firmware)
	if err != nil {
		c.logger.Debug().Str("device_id", deviceID).Str("firmware", firmware).
			Msg("Device reported unparseable firmware version")
		c.tracker.SetFirmware(deviceID, firmware, false)
		return
	}

	outdated := version.LessThan(c.minFirmware)
	c.tracker.SetFirmware(deviceID, firmware, outdated)
	if outdated {
		c.logger.Warn().
			Str("device_id", deviceID).
			Str("firmware", firmware).
			Str("minimum", c.minFirmware.String()).
			Msg("Device firmware below configured minimum")
	}
}

// OnConnectionStateChange owns the bulk state transitions of the engine.
func (c *Controller) OnConnectionStateChange(state mqtt.ConnectionState, reason error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.connState
	c.connState = state

	switch state {
	case mqtt.StateDisconnected, mqtt.StateError:
		c.logger.Warn().Err(reason).Str("state", state.String()).Msg("Transport down, marking all devices offline")
		c.subs.SetConnected(false)

		demoted := c.tracker.MarkAllOffline()
		c.cache.DropAll()
		// Persisted history is left untouched: it drives the restore on
		// the next connect.
		now := time.Now()
		for _, id := range demoted {
			c.notifier.Publish(models.Change{Type: models.ChangeOffline, DeviceID: id, Timestamp: now})
		}

	case mqtt.StateConnecting:
		c.logger.Info().Msg("Transport connecting")

	case mqtt.StateConnected:
		if prev == mqtt.StateConnected && c.cache.Len() > 0 {
			// A duplicate "connected" echo; wiping state here would lose
			// live data.
			c.logger.Info().Msg("Redundant connect signal, keeping state")
			return
		}

		c.subs.Reset()

		if c.cache.Len() > 0 {
			// In-flight data from the prior session survived; the devices
			// stay reachable and only subscriptions need rebuilding.
			c.logger.Info().Int("devices", c.cache.Len()).Msg("Connected with live cache, preserving state")
			c.subs.SetConnected(true)
			return
		}

		if c.restoreFromStore() {
			c.logger.Info().Msg("Connected, state restored from persistence")
		} else {
			c.coldStart()
			c.logger.Info().Msg("Connected, cold start")
		}
		c.subs.SetConnected(true)
	}
}

// restoreFromStore rebuilds cache and liveness from persisted state.
// Returns false when persistence is unavailable or holds nothing usable.
func (c *Controller) restoreFromStore() bool {
	ids, err := c.repo.FetchOnlineDeviceIDs()
	if err != nil {
		c.logger.Warn().Err(err).Msg("Persistence unavailable, skipping restore")
		return false
	}

	restored := false
	now := time.Now()
	for _, id := range ids {
		values, err := c.repo.FetchLatestByDevice(id)
		if err != nil {
			c.logger.Warn().Err(err).Str("device_id", id).Msg("Failed to fetch persisted readings")
			continue
		}
		if len(values) == 0 {
			continue
		}

		c.cache.PutAll(id, values)
		// A restore asserts present reachability: the device gets a full
		// timeout window before the sweep may demote it.
		c.tracker.SetOnline(id, now)
		// Without a subscription the restored device would never be heard
		// from again and expire one timeout later.
		c.subs.Add(id)
		restored = true

		c.logger.Info().Str("device_id", id).Int("keywords", len(values)).Msg("Device restored from persistence")
		c.notifier.Publish(models.Change{Type: models.ChangeRestored, DeviceID: id, Timestamp: now})
	}
	return restored
}

// coldStart clears persisted online flags: a device is online only once it
// has actually sent a message after this connect.
func (c *Controller) coldStart() {
	ids, err := c.repo.FetchOnlineDeviceIDs()
	if err != nil {
		return
	}
	for _, id := range ids {
		if err := c.repo.UpsertDeviceStatus(id, false, time.Time{}); err != nil {
			c.logger.Warn().Err(err).Str("device_id", id).Msg("Failed to clear persisted online flag")
		}
	}
}

// AddDevices extends the set of devices the hub receives telemetry for.
func (c *Controller) AddDevices(deviceIDs ...string) {
	c.subs.Add(deviceIDs...)
}

// RemoveDevice drops a device entirely: subscriptions, cache, liveness and
// persisted history.
func (c *Controller) RemoveDevice(deviceID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.subs.Remove(deviceID)
	c.cache.DropDevice(deviceID)
	c.tracker.Forget(deviceID)

	if err := c.repo.DeleteDevice(deviceID); err != nil {
		c.logger.Warn().Err(err).Str("device_id", deviceID).Msg("Failed to delete persisted device data")
	}
}

// Get returns the latest reading for (deviceID, keyword).
func (c *Controller) Get(deviceID, keyword string) (models.TelemetryValue, bool) {
	return c.cache.Get(deviceID, keyword)
}

// GetAll returns a snapshot of the device's readings.
func (c *Controller) GetAll(deviceID string) map[string]models.TelemetryValue {
	return c.cache.GetAll(deviceID)
}

// DeviceState returns the liveness view of one device.
func (c *Controller) DeviceState(deviceID string) (models.DeviceState, bool) {
	return c.tracker.Get(deviceID)
}

// Devices returns the liveness view of every known device.
func (c *Controller) Devices() []models.DeviceState {
	return c.tracker.Snapshot()
}

// ConnectionState returns the last transport state seen by the controller.
func (c *Controller) ConnectionState() mqtt.ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connState
}

// SubscribeChanges registers an observer for state-change notifications.
func (c *Controller) SubscribeChanges(observer notifier.Observer) string {
	return c.notifier.Subscribe(observer)
}

// UnsubscribeChanges removes a previously registered observer.
func (c *Controller) UnsubscribeChanges(token string) {
	c.notifier.Unsubscribe(token)
}
