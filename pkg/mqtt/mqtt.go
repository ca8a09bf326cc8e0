// Package mqtt wraps the paho MQTT client behind a mock-friendly interface
// and fans out connection-state transitions to registered handlers.
package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"sync"
	"time"

	mqttLib "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	"github.com/Martius108/mc-connect-hub/pkg/file"
)

// ConnectionState mirrors the transport's lifecycle as seen by the hub.
type ConnectionState int

const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StateConnected
	StateError
)

// String returns a human-readable name for the connection state.
func (s ConnectionState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateError:
		return "error"
	default:
		return "disconnected"
	}
}

// ConnectionStateHandler receives connection transitions. reason is non-nil
// only for StateError.
type ConnectionStateHandler func(state ConnectionState, reason error)

// MQTTClient defines the transport surface the hub depends on.
type MQTTClient interface {
	Connect() error
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) error
	Subscribe(topic string, qos byte, callback mqttLib.MessageHandler) error
	Unsubscribe(topics ...string) error
	IsConnected() bool
	OnConnectionStateChange(handler ConnectionStateHandler)
	WaitForConnection(timeout time.Duration) bool
}

// MqttService implements MQTTClient on top of paho.
type MqttService struct {
	client       mqttLib.Client
	fileClient   file.FileOperations
	logger       zerolog.Logger
	pollInterval time.Duration

	mu       sync.RWMutex
	handlers []ConnectionStateHandler
}

// NewMqttService creates an uninitialized MQTT service.
func NewMqttService(fileClient file.FileOperations, logger zerolog.Logger) *MqttService {
	return &MqttService{
		fileClient:   fileClient,
		logger:       logger,
		pollInterval: 150 * time.Millisecond,
	}
}

// Initialize configures the paho client. caCertPath is optional; when set,
// the broker connection uses TLS with that CA. Auto-reconnect stays on so
// the broker link heals itself; every transition is fanned out to the
// registered handlers.
func (s *MqttService) Initialize(broker, clientID, username, password, caCertPath string) error {
	opts := mqttLib.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)

	if username != "" {
		opts.SetUsername(username)
		opts.SetPassword(password)
	}

	if caCertPath != "" {
		caCert, err := s.fileClient.ReadFileRaw(caCertPath)
		if err != nil {
			return fmt.Errorf("failed to read CA certificate: %w", err)
		}
		caCertPool := x509.NewCertPool()
		if !caCertPool.AppendCertsFromPEM(caCert) {
			return fmt.Errorf("failed to append CA certificate")
		}
		opts.SetTLSConfig(&tls.Config{RootCAs: caCertPool})
	}

	opts.SetOnConnectHandler(func(mqttLib.Client) {
		s.logger.Info().Str("broker", broker).Msg("MQTT connected")
		s.notify(StateConnected, nil)
	})
	opts.SetConnectionLostHandler(func(_ mqttLib.Client, err error) {
		s.logger.Warn().Err(err).Msg("MQTT connection lost")
		s.notify(StateError, err)
	})
	opts.SetReconnectingHandler(func(mqttLib.Client, *mqttLib.ClientOptions) {
		s.logger.Info().Msg("MQTT reconnecting")
		s.notify(StateConnecting, nil)
	})

	s.client = mqttLib.NewClient(opts)
	return nil
}

// OnConnectionStateChange registers a handler for connection transitions.
// Handlers are invoked synchronously in registration order.
func (s *MqttService) OnConnectionStateChange(handler ConnectionStateHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers = append(s.handlers, handler)
}

func (s *MqttService) notify(state ConnectionState, reason error) {
	s.mu.RLock()
	handlers := make([]ConnectionStateHandler, len(s.handlers))
	copy(handlers, s.handlers)
	s.mu.RUnlock()

	for _, handler := range handlers {
		handler(state, reason)
	}
}

// Connect starts the connection attempt, reporting StateConnecting first.
// The outcome is reported through the connection-state handlers; callers
// that need to block use WaitForConnection. Paho's reconnecting handler
// covers only reconnects, so the initial attempt is reported here.
func (s *MqttService) Connect() error {
	s.notify(StateConnecting, nil)
	token := s.client.Connect()
	token.Wait()
	return token.Error()
}

// Disconnect closes the broker link and reports StateDisconnected. Paho
// does not invoke the lost handler on a deliberate disconnect.
func (s *MqttService) Disconnect(quiesce uint) {
	s.client.Disconnect(quiesce)
	s.notify(StateDisconnected, nil)
}

// Publish sends a message. Fire-and-forget beyond the broker handshake.
func (s *MqttService) Publish(topic string, qos byte, retained bool, payload interface{}) error {
	token := s.client.Publish(topic, qos, retained, payload)
	token.Wait()
	return token.Error()
}

// Subscribe registers a message handler for the topic filter.
func (s *MqttService) Subscribe(topic string, qos byte, callback mqttLib.MessageHandler) error {
	token := s.client.Subscribe(topic, qos, callback)
	token.Wait()
	return token.Error()
}

// Unsubscribe removes the given topic filters.
func (s *MqttService) Unsubscribe(topics ...string) error {
	token := s.client.Unsubscribe(topics...)
	token.Wait()
	return token.Error()
}

// IsConnected reports whether the broker link is currently up.
func (s *MqttService) IsConnected() bool {
	return s.client != nil && s.client.IsConnected()
}

// WaitForConnection polls the connection until it is up or the budget runs
// out. A deterministic give-up, not a retry loop.
func (s *MqttService) WaitForConnection(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		if s.IsConnected() {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(s.pollInterval)
	}
}
