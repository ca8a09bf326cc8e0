package controller

import (
	"encoding/json"
	"fmt"

	"github.com/Martius108/mc-connect-hub/internal/constants"
	"github.com/Martius108/mc-connect-hub/internal/models"
)

// SendGPIOCommand publishes a GPIO command to a device. Fire-and-forget:
// the device answers on its ack topic, which observers see as a ChangeAck.
func (c *Controller) SendGPIOCommand(deviceID string, pin, value int, mode string) error {
	if mode == "" {
		mode = "output"
	}

	command := models.GPIOCommand{
		Type:  constants.CommandTypeGPIO,
		Pin:   pin,
		Value: value,
		Mode:  mode,
	}
	payload, err := json.Marshal(command)
	if err != nil {
		return fmt.Errorf("failed to serialize gpio command: %w", err)
	}

	topic := fmt.Sprintf("device/%s/command", deviceID)
	c.logger.Info().Str("topic", topic).Int("pin", pin).Int("value", value).Msg("Publishing GPIO command")

	if err := c.mqttClient.Publish(topic, c.qos, false, payload); err != nil {
		c.logger.Error().Err(err).Str("topic", topic).Msg("Failed to publish GPIO command")
		return err
	}
	return nil
}
