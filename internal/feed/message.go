package feed

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/nerrad567/devicedash/internal/infrastructure/mqtt"
)

// Kind classifies a message by its topic.
type Kind string

const (
	KindReport Kind = "report"
	KindStatus Kind = "status"
	KindOther  Kind = "other"
)

// Message is one received MQTT message.
type Message struct {
	ID         int64     `json:"id"`
	Topic      string    `json:"topic"`
	Payload    string    `json:"payload"`
	DeviceID   string    `json:"deviceId"`
	Kind       Kind      `json:"kind"`
	ReceivedAt time.Time `json:"receivedAt"`
}

// Timestamp is ReceivedAt in Unix milliseconds.
func (m Message) Timestamp() int64 {
	return m.ReceivedAt.UnixMilli()
}

// wire is the JSON pushed to browsers for m.
func (m Message) wire() map[string]any {
	return map[string]any{
		"id":        m.ID,
		"topic":     m.Topic,
		"payload":   m.Payload,
		"deviceId":  m.DeviceID,
		"kind":      m.Kind,
		"timestamp": m.Timestamp(),
	}
}

// NewMessage classifies a raw MQTT message received at ts.
func NewMessage(topic string, payload []byte, ts time.Time) Message {
	return Message{
		Topic:      topic,
		Payload:    string(payload),
		DeviceID:   mqtt.DeviceIDFromTopic(topic),
		Kind:       Classify(topic),
		ReceivedAt: ts.UTC(),
	}
}

// Classify returns the kind of a topic.
func Classify(topic string) Kind {
	parts := strings.SplitN(topic, "/", 3)
	if len(parts) < 2 || parts[0] != mqtt.TopicPrefixDevice {
		return KindOther
	}
	switch parts[1] {
	case "report":
		return KindReport
	case "status":
		return KindStatus
	default:
		return KindOther
	}
}

// Fields decodes the payload as a JSON object. ok is false for anything else.
func (m Message) Fields() (fields map[string]any, ok bool) {
	if err := json.Unmarshal([]byte(m.Payload), &fields); err != nil || fields == nil {
		return nil, false
	}
	return fields, true
}

// Status returns the "status" string of a status payload.
func (m Message) Status() (string, error) {
	fields, ok := m.Fields()
	if !ok {
		return "", ErrNoStatus
	}
	status, ok := fields["status"].(string)
	if !ok || status == "" {
		return "", ErrNoStatus
	}
	return status, nil
}
