package utils

import (
	"time"

	"github.com/Martius108/mc-connect-hub/internal/constants"
	"github.com/Martius108/mc-connect-hub/pkg/file"
)

// Config represents the structure of the configuration file.
type Config struct {
	MQTT struct {
		Broker        string `yaml:"broker"`         // MQTT broker address
		ClientID      string `yaml:"client_id"`      // MQTT client ID (a uuid suffix is appended at startup)
		Username      string `yaml:"username"`       // Optional broker username
		Password      string `yaml:"password"`       // Optional broker password
		CACertificate string `yaml:"ca_certificate"` // Optional path to a CA certificate for TLS
		QOS           int    `yaml:"qos"`            // MQTT QoS level for all hub traffic
	} `yaml:"mqtt"`

	Telemetry struct {
		OfflineTimeout  time.Duration `yaml:"offline_timeout"`  // No message for this long marks a device offline
		SweepInterval   time.Duration `yaml:"sweep_interval"`   // Period of the liveness sweep
		DefaultUnit     string        `yaml:"default_unit"`     // Unit used when a payload carries none
		MinimumFirmware string        `yaml:"minimum_firmware"` // Devices reporting older firmware are flagged
	} `yaml:"telemetry"`

	Storage struct {
		StateFile string `yaml:"state_file"` // Path to the JSON persistence file
	} `yaml:"storage"`

	// Devices lists the device IDs to subscribe to at startup. The UI layer
	// can add and remove devices at runtime on top of this.
	Devices []string `yaml:"devices"`

	Stats struct {
		Enabled  bool          `yaml:"enabled"`  // Enable/disable the engine self-stats reporter
		Interval time.Duration `yaml:"interval"` // Interval between stats reports
	} `yaml:"stats"`
}

// LoadConfig loads the YAML configuration from the specified file and fills
// in defaults for unset durations and levels.
func LoadConfig(filename string, fileClient file.FileOperations) (*Config, error) {
	var config Config
	if err := fileClient.ReadYamlFile(filename, &config); err != nil {
		return nil, err
	}

	if config.MQTT.QOS == 0 {
		config.MQTT.QOS = constants.DefaultQOS
	}
	if config.Telemetry.OfflineTimeout == 0 {
		config.Telemetry.OfflineTimeout = constants.DefaultOfflineTimeout
	}
	if config.Telemetry.SweepInterval == 0 {
		config.Telemetry.SweepInterval = constants.DefaultSweepInterval
	}
	if config.Stats.Interval == 0 {
		config.Stats.Interval = 30 * time.Second
	}

	return &config, nil
}
