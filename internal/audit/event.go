package audit

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/mssola/user_agent"
)

// FromStreamValues builds an audit row from one Redis stream message. Stream
// values always arrive as strings; a message without a type field is
// malformed and dropped. The raw User-Agent header is broken into the
// browser/os/device columns here so the table never stores only the blob.
func FromStreamValues(values map[string]interface{}) (AuthEvent, bool) {
	eventType, ok := values["type"].(string)
	if !ok {
		return AuthEvent{}, false
	}

	event := AuthEvent{
		EventID:    uuid.New().String(),
		EventType:  eventType,
		UserID:     stringValue(values, "user_id"),
		UserName:   stringValue(values, "user_name"),
		IPAddress:  stringValue(values, "ip"),
		UserAgent:  stringValue(values, "user_agent"),
		OccurredAt: time.Now(),
	}

	if ts := stringValue(values, "timestamp"); ts != "" {
		if unix, err := strconv.ParseInt(ts, 10, 64); err == nil {
			event.OccurredAt = time.Unix(unix, 0)
		}
	}

	if event.UserAgent != "" {
		ua := user_agent.New(event.UserAgent)
		event.Browser, _ = ua.Browser()
		event.OS = ua.OS()
		event.DeviceType = deviceType(ua)
	}

	return event, true
}

func deviceType(ua *user_agent.UserAgent) string {
	switch {
	case ua.Bot():
		return "bot"
	case ua.Mobile():
		return "mobile"
	default:
		return "desktop"
	}
}

func stringValue(values map[string]interface{}, key string) string {
	if v, ok := values[key].(string); ok {
		return v
	}
	return ""
}
