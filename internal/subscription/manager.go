// Package subscription reconciles the set of devices the hub wants
// telemetry for against the subscriptions actually held on the broker.
package subscription

import (
	"fmt"
	"sync"

	mqttLib "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	"github.com/Martius108/mc-connect-hub/internal/utils"
	"github.com/Martius108/mc-connect-hub/pkg/mqtt"
)

// Manager tracks a desired device set and a subscribed device set and
// issues the minimal subscribe/unsubscribe batches to converge them.
// Reconciling the same desired set twice issues no transport calls the
// second time. While disconnected the desired set is only remembered;
// Flush converges once the connection is up.
type Manager struct {
	client  mqtt.MQTTClient
	qos     byte
	handler mqttLib.MessageHandler
	logger  zerolog.Logger

	mu         sync.Mutex
	desired    map[string]struct{}
	subscribed map[string]struct{}
	connected  bool
}

// NewManager creates a subscription manager. handler receives every message
// on the subscribed topics.
func NewManager(client mqtt.MQTTClient, qos byte, handler mqttLib.MessageHandler, logger zerolog.Logger) *Manager {
	return &Manager{
		client:     client,
		qos:        qos,
		handler:    handler,
		logger:     logger,
		desired:    make(map[string]struct{}),
		subscribed: make(map[string]struct{}),
	}
}

// TopicsFor returns the three topic filters subscribed per device.
func TopicsFor(deviceID string) []string {
	return []string{
		fmt.Sprintf("device/%s/telemetry/#", deviceID),
		fmt.Sprintf("device/%s/status", deviceID),
		fmt.Sprintf("device/%s/ack", deviceID),
	}
}

// Reconcile replaces the desired device set and converges subscriptions.
func (m *Manager) Reconcile(deviceIDs []string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.desired = utils.SliceToSet(deviceIDs)
	m.flush()
}

// Add extends the desired set and converges subscriptions.
func (m *Manager) Add(deviceIDs ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range deviceIDs {
		m.desired[id] = struct{}{}
	}
	m.flush()
}

// Remove drops one device from the desired set and unsubscribes it.
func (m *Manager) Remove(deviceID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.desired, deviceID)
	m.flush()
}

// SetConnected informs the manager about the transport state. On becoming
// connected, the remembered desired set is flushed.
func (m *Manager) SetConnected(connected bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.connected = connected
	if connected {
		m.flush()
	}
}

// Reset clears the subscribed-set bookkeeping without touching the desired
// set. After a reconnect the broker holds no session state, so the next
// flush must resubscribe everything.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.subscribed = make(map[string]struct{})
}

// Desired returns a copy of the current desired device set.
func (m *Manager) Desired() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, 0, len(m.desired))
	for id := range m.desired {
		out = append(out, id)
	}
	return out
}

// flush converges subscriptions while holding the lock. Bookkeeping is
// updated per device only when the transport call succeeds, so failures
// are retried on the next flush.
func (m *Manager) flush() {
	if !m.connected {
		return
	}

	for id := range m.desired {
		if _, ok := m.subscribed[id]; ok {
			continue
		}
		if err := m.subscribeDevice(id); err != nil {
			m.logger.Error().Err(err).Str("device_id", id).Msg("Failed to subscribe device topics")
			continue
		}
		m.subscribed[id] = struct{}{}
		m.logger.Info().Str("device_id", id).Msg("Subscribed device topics")
	}

	for id := range m.subscribed {
		if _, ok := m.desired[id]; ok {
			continue
		}
		if err := m.client.Unsubscribe(TopicsFor(id)...); err != nil {
			m.logger.Error().Err(err).Str("device_id", id).Msg("Failed to unsubscribe device topics")
			continue
		}
		delete(m.subscribed, id)
		m.logger.Info().Str("device_id", id).Msg("Unsubscribed device topics")
	}
}

func (m *Manager) subscribeDevice(deviceID string) error {
	for _, topic := range TopicsFor(deviceID) {
		if err := m.client.Subscribe(topic, m.qos, m.handler); err != nil {
			return err
		}
	}
	return nil
}
