package models

// GPIOCommand is the outbound command payload understood by MC-Connect
// firmware. Published on device/{id}/command.
type GPIOCommand struct {
	Type  string `json:"type"`  // Command type, currently always "gpio".
	Pin   int    `json:"pin"`   // Target GPIO pin on the microcontroller.
	Value int    `json:"value"` // PWM/level value to apply.
	Mode  string `json:"mode"`  // Pin mode, "input" or "output".
}

// AckPayload is the acknowledgment a device publishes on device/{id}/ack
// after executing a command.
type AckPayload struct {
	Status string                 `json:"status"`          // "success" or "error".
	Error  string                 `json:"error,omitempty"` // Error description when status is "error".
	Data   map[string]interface{} `json:"data,omitempty"`  // Echo of the applied command parameters.
}
