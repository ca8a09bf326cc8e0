package constants

import "time"

// Liveness defaults. A device with no message for DefaultOfflineTimeout is
// demoted on the next sweep.
const (
	DefaultOfflineTimeout = 30 * time.Second
	DefaultSweepInterval  = 5 * time.Second
)

// Connection-establishment poll helper bounds.
const (
	ConnectPollInterval = 150 * time.Millisecond
	DefaultConnectWait  = 3 * time.Second
)

// DefaultQOS is the MQTT QoS level used when the config leaves it unset.
const DefaultQOS = 1

// Wire-protocol literals shared between parser and controller.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"

	AckStatusSuccess = "success"
	AckStatusError   = "error"

	CommandTypeGPIO = "gpio"
)
