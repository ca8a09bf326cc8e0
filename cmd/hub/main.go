package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Martius108/mc-connect-hub/internal/constants"
	"github.com/Martius108/mc-connect-hub/internal/controller"
	"github.com/Martius108/mc-connect-hub/internal/notifier"
	"github.com/Martius108/mc-connect-hub/internal/stats"
	"github.com/Martius108/mc-connect-hub/internal/store"
	"github.com/Martius108/mc-connect-hub/internal/utils"
	"github.com/Martius108/mc-connect-hub/pkg/file"
	"github.com/Martius108/mc-connect-hub/pkg/mqtt"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	fileClient := file.NewFileService()

	config, err := utils.LoadConfig("configs/config.yaml", fileClient)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Unique client ID per run so a stale session on the broker never
	// steals our messages.
	clientID := config.MQTT.ClientID + "-" + uuid.New().String()
	logger.Info().Str("client_id", clientID).Msg("Using MQTT client ID")

	mqttClient := mqtt.NewMqttService(fileClient, logger)
	err = mqttClient.Initialize(config.MQTT.Broker, clientID, config.MQTT.Username,
		config.MQTT.Password, config.MQTT.CACertificate)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize MQTT client")
	}

	repo, err := store.NewFileStore(config.Storage.StateFile, fileClient, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("path", config.Storage.StateFile).Msg("Failed to open persistence store")
	}

	changeNotifier := notifier.New(logger)

	engine := controller.New(mqttClient, repo, changeNotifier, controller.Config{
		OfflineTimeout:  config.Telemetry.OfflineTimeout,
		SweepInterval:   config.Telemetry.SweepInterval,
		DefaultUnit:     config.Telemetry.DefaultUnit,
		MinimumFirmware: config.Telemetry.MinimumFirmware,
		QOS:             byte(config.MQTT.QOS),
	}, logger)

	engine.AddDevices(config.Devices...)

	if err := engine.Start(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start reconciliation engine")
	}

	if err := mqttClient.Connect(); err != nil {
		logger.Warn().Err(err).Msg("Initial MQTT connect failed, relying on auto-reconnect")
	}
	if !mqttClient.WaitForConnection(constants.DefaultConnectWait) {
		logger.Warn().Msg("Broker not reachable yet, continuing in background")
	}

	statsRegistry := stats.NewRegistry(config.Stats.Interval, logger)
	if config.Stats.Enabled {
		if err := statsRegistry.Start(); err != nil {
			logger.Error().Err(err).Msg("Failed to start stats registry")
		}
	}

	logger.Info().Msg("Telemetry hub running")

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)
	<-stopCh

	logger.Info().Msg("Shutting down gracefully...")
	if config.Stats.Enabled {
		_ = statsRegistry.Stop()
	}
	if err := engine.Stop(); err != nil {
		logger.Error().Err(err).Msg("Failed to stop reconciliation engine")
	}
	mqttClient.Disconnect(250)
}
