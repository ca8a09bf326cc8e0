package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Martius108/mc-connect-hub/internal/models"
)

func TestParse_TelemetryTopic(t *testing.T) {
	event := Parse("device/esp01/telemetry/temperature", "23.5")

	assert.Equal(t, models.EventTelemetry, event.Type)
	assert.Equal(t, "esp01", event.DeviceID)
	assert.Equal(t, "temperature", event.Keyword)
	if assert.NotNil(t, event.Value) {
		assert.Equal(t, 23.5, *event.Value)
	}
}

func TestParse_NestedKeyword(t *testing.T) {
	event := Parse("device/esp01/telemetry/sensors/bme280/humidity", "55")

	assert.Equal(t, models.EventTelemetry, event.Type)
	assert.Equal(t, "sensors/bme280/humidity", event.Keyword)
}

func TestParse_StatusTopic(t *testing.T) {
	event := Parse("device/pico01/status", "online")

	assert.Equal(t, models.EventStatus, event.Type)
	assert.Equal(t, "pico01", event.DeviceID)
	assert.Equal(t, "online", event.Payload)
}

func TestParse_AckTopic(t *testing.T) {
	event := Parse("device/pico01/ack", `{"status":"success"}`)

	assert.Equal(t, models.EventAck, event.Type)
	assert.Equal(t, "pico01", event.DeviceID)
}

func TestParse_UnrecognizedTopics(t *testing.T) {
	topics := []string{
		"",
		"device",
		"device/esp01",
		"device/esp01/unknown",
		"device//status",
		"device/esp01/telemetry",
		"device/esp01/telemetry/",
		"device/esp01/status/extra",
		"device/esp01/ack/extra",
		"sensor/esp01/telemetry/temperature",
	}

	for _, topic := range topics {
		event := Parse(topic, "1")
		assert.Equal(t, models.EventUnrecognized, event.Type, "topic %q", topic)
	}
}

func TestExtractValue_PlainNumber(t *testing.T) {
	v := ExtractValue(" 23.5 ")
	if assert.NotNil(t, v) {
		assert.Equal(t, 23.5, *v)
	}

	v = ExtractValue("-4")
	if assert.NotNil(t, v) {
		assert.Equal(t, -4.0, *v)
	}
}

func TestExtractValue_NumericValueField(t *testing.T) {
	v := ExtractValue(`{"value": 1, "unit": ""}`)
	if assert.NotNil(t, v) {
		assert.Equal(t, 1.0, *v)
	}
}

func TestExtractValue_StringValueField(t *testing.T) {
	v := ExtractValue(`{"value": "42.5"}`)
	if assert.NotNil(t, v) {
		assert.Equal(t, 42.5, *v)
	}

	assert.Nil(t, ExtractValue(`{"value": "not a number"}`))
}

func TestExtractValue_ObstacleField(t *testing.T) {
	v := ExtractValue(`{"obstacle": true}`)
	if assert.NotNil(t, v) {
		assert.Equal(t, 1.0, *v)
	}

	v = ExtractValue(`{"obstacle": false}`)
	if assert.NotNil(t, v) {
		assert.Equal(t, 0.0, *v)
	}
}

func TestExtractValue_StatusStringField(t *testing.T) {
	cases := map[string]float64{
		`{"status": "on"}`:    1.0,
		`{"status": "true"}`:  1.0,
		`{"status": "1"}`:     1.0,
		`{"status": "off"}`:   0.0,
		`{"status": "false"}`: 0.0,
		`{"status": "0"}`:     0.0,
	}
	for payload, want := range cases {
		v := ExtractValue(payload)
		if assert.NotNil(t, v, "payload %s", payload) {
			assert.Equal(t, want, *v, "payload %s", payload)
		}
	}

	assert.Nil(t, ExtractValue(`{"status": "booting"}`))
}

func TestExtractValue_StatusBoolField(t *testing.T) {
	v := ExtractValue(`{"status": true}`)
	if assert.NotNil(t, v) {
		assert.Equal(t, 1.0, *v)
	}
}

func TestExtractValue_RuleOrder(t *testing.T) {
	// A numeric value field outranks the obstacle and status rules.
	v := ExtractValue(`{"value": 7, "obstacle": true, "status": "off"}`)
	if assert.NotNil(t, v) {
		assert.Equal(t, 7.0, *v)
	}
}

func TestExtractValue_NoMatch(t *testing.T) {
	assert.Nil(t, ExtractValue("not json at all"))
	assert.Nil(t, ExtractValue(`{"message": "hello"}`))
	assert.Nil(t, ExtractValue(`{"value": {"nested": 1}}`))
	assert.Nil(t, ExtractValue(`[1, 2, 3]`))
}

func TestExtractUnit(t *testing.T) {
	assert.Equal(t, "°C", ExtractUnit(`{"value": 23.5, "unit": "°C"}`))
	assert.Equal(t, "", ExtractUnit(`{"value": 23.5}`))
	assert.Equal(t, "", ExtractUnit("23.5"))
	assert.Equal(t, "", ExtractUnit(`{"unit": 42}`))
}

func TestParseStatus_PlainStrings(t *testing.T) {
	info := ParseStatus("online")
	assert.True(t, info.Explicit)
	assert.True(t, info.Online)

	info = ParseStatus("offline")
	assert.True(t, info.Explicit)
	assert.False(t, info.Online)

	info = ParseStatus(`"offline"`)
	assert.True(t, info.Explicit)
	assert.False(t, info.Online)
}

func TestParseStatus_JSON(t *testing.T) {
	info := ParseStatus(`{"status":"online","firmware":"1.2.0"}`)
	assert.True(t, info.Explicit)
	assert.True(t, info.Online)
	assert.Equal(t, "1.2.0", info.Firmware)

	info = ParseStatus(`{"status":"offline"}`)
	assert.True(t, info.Explicit)
	assert.False(t, info.Online)
}

func TestParseStatus_Other(t *testing.T) {
	info := ParseStatus(`{"status":"booting"}`)
	assert.False(t, info.Explicit)

	info = ParseStatus("whatever")
	assert.False(t, info.Explicit)
}
