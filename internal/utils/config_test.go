package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Martius108/mc-connect-hub/pkg/file"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	assert.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
mqtt:
  broker: "tcp://broker:1883"
  client_id: "hub"
  qos: 2
telemetry:
  offline_timeout: 10s
  sweep_interval: 2s
  minimum_firmware: "1.0.0"
storage:
  state_file: "data/store.json"
devices:
  - esp01
  - pico01
`)

	config, err := LoadConfig(path, file.NewFileService())
	assert.NoError(t, err)

	assert.Equal(t, "tcp://broker:1883", config.MQTT.Broker)
	assert.Equal(t, 2, config.MQTT.QOS)
	assert.Equal(t, 10*time.Second, config.Telemetry.OfflineTimeout)
	assert.Equal(t, 2*time.Second, config.Telemetry.SweepInterval)
	assert.Equal(t, "1.0.0", config.Telemetry.MinimumFirmware)
	assert.Equal(t, "data/store.json", config.Storage.StateFile)
	assert.Equal(t, []string{"esp01", "pico01"}, config.Devices)
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfig(t, `
mqtt:
  broker: "tcp://broker:1883"
  client_id: "hub"
`)

	config, err := LoadConfig(path, file.NewFileService())
	assert.NoError(t, err)

	assert.Equal(t, 1, config.MQTT.QOS)
	assert.Equal(t, 30*time.Second, config.Telemetry.OfflineTimeout)
	assert.Equal(t, 5*time.Second, config.Telemetry.SweepInterval)
	assert.Equal(t, 30*time.Second, config.Stats.Interval)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"), file.NewFileService())
	assert.Error(t, err)
}
