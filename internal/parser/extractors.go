package parser

import (
	"encoding/json"
	"strconv"
	"strings"
)

// extractor is one rule for pulling a numeric reading out of a decoded JSON
// payload. Rules run in a fixed priority order; the first match wins.
type extractor func(obj map[string]interface{}) (float64, bool)

// valueExtractors is the ordered rule ladder applied to JSON object
// payloads. The plain-number case is handled before decoding, see
// ExtractValue.
var valueExtractors = []extractor{
	numericValueField,
	stringValueField,
	obstacleBoolField,
	statusStringField,
	statusBoolField,
}

// ExtractValue tries to pull a numeric reading out of a telemetry payload.
// Returns nil when no rule matches; the message then still refreshes
// liveness but never reaches the cache.
func ExtractValue(payload string) *float64 {
	trimmed := strings.TrimSpace(payload)

	// Whole payload is a plain decimal number.
	if v, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return &v
	}

	obj, ok := decodeObject(trimmed)
	if !ok {
		return nil
	}

	for _, extract := range valueExtractors {
		if v, ok := extract(obj); ok {
			return &v
		}
	}
	return nil
}

// ExtractUnit returns the payload's "unit" string field, or "" when the
// payload is not a JSON object or carries no unit. Callers fall back to
// their configured default unit.
func ExtractUnit(payload string) string {
	obj, ok := decodeObject(strings.TrimSpace(payload))
	if !ok {
		return ""
	}
	unit, _ := obj["unit"].(string)
	return unit
}

func decodeObject(payload string) (map[string]interface{}, bool) {
	if !strings.HasPrefix(payload, "{") {
		return nil, false
	}
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(payload), &obj); err != nil {
		return nil, false
	}
	return obj, true
}

// numericValueField matches {"value": 23.5}.
func numericValueField(obj map[string]interface{}) (float64, bool) {
	v, ok := obj["value"].(float64)
	return v, ok
}

// stringValueField matches {"value": "23.5"}.
func stringValueField(obj map[string]interface{}) (float64, bool) {
	s, ok := obj["value"].(string)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// obstacleBoolField matches {"obstacle": true} from distance sensors.
func obstacleBoolField(obj map[string]interface{}) (float64, bool) {
	b, ok := obj["obstacle"].(bool)
	if !ok {
		return 0, false
	}
	return boolToFloat(b), true
}

// statusStringField matches {"status": "on"} and friends.
func statusStringField(obj map[string]interface{}) (float64, bool) {
	s, ok := obj["status"].(string)
	if !ok {
		return 0, false
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "true", "1":
		return 1.0, true
	case "off", "false", "0":
		return 0.0, true
	default:
		return 0, false
	}
}

// statusBoolField matches {"status": true}.
func statusBoolField(obj map[string]interface{}) (float64, bool) {
	b, ok := obj["status"].(bool)
	if !ok {
		return 0, false
	}
	return boolToFloat(b), true
}

func boolToFloat(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.0
}
