package parser

import "strings"

// StatusInfo is the decoded form of a device/{id}/status payload.
// Explicit is true only when the payload unambiguously said online or
// offline; other status payloads merely count as device activity.
type StatusInfo struct {
	Online   bool
	Explicit bool
	Firmware string
}

// ParseStatus decodes a status payload. Accepted forms are the plain
// strings "online"/"offline" and JSON objects such as
// {"status":"online","firmware":"1.2.0"}.
func ParseStatus(payload string) StatusInfo {
	trimmed := strings.TrimSpace(payload)

	switch strings.ToLower(strings.Trim(trimmed, `"`)) {
	case "online":
		return StatusInfo{Online: true, Explicit: true}
	case "offline":
		return StatusInfo{Online: false, Explicit: true}
	}

	obj, ok := decodeObject(trimmed)
	if !ok {
		return StatusInfo{}
	}

	info := StatusInfo{}
	if s, ok := obj["status"].(string); ok {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "online":
			info.Online = true
			info.Explicit = true
		case "offline":
			info.Explicit = true
		}
	}
	if fw, ok := obj["firmware"].(string); ok {
		info.Firmware = fw
	}
	return info
}
