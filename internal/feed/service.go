package feed

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/nerrad567/devicedash/internal/infrastructure/mqtt"
)

// ChannelMessage is the WebSocket channel live messages are published on.
const ChannelMessage = "mqtt.message"

const storeTimeout = 5 * time.Second

// Subscriber is satisfied by *mqtt.Client.
type Subscriber interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
}

// Publisher is satisfied by the WebSocket hub.
type Publisher interface {
	Broadcast(channel string, payload any)
}

// Telemetry is satisfied by *influxdb.Client.
type Telemetry interface {
	WriteDeviceReport(deviceID string, fields map[string]any, ts time.Time) bool
	WriteDeviceStatus(deviceID, status string, ts time.Time)
}

// Logger is the subset of logging.Logger the feed uses.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// DeviceStatus is the last status a device announced.
type DeviceStatus struct {
	DeviceID  string    `json:"deviceId"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Service handles incoming MQTT messages. Safe for concurrent use; paho
// calls Handle from its own goroutines.
type Service struct {
	store     Store
	publisher Publisher
	telemetry Telemetry
	logger    Logger
	now       func() time.Time

	mu       sync.RWMutex
	statuses map[string]DeviceStatus
}

// Option configures a Service.
type Option func(*Service)

// WithPublisher broadcasts each message.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithTelemetry writes reports and statuses to a time-series sink.
func WithTelemetry(t Telemetry) Option {
	return func(s *Service) { s.telemetry = t }
}

// WithLogger sets the logger.
func WithLogger(l Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a feed service backed by store.
func New(store Store, opts ...Option) *Service {
	s := &Service{
		store:    store,
		now:      time.Now,
		statuses: make(map[string]DeviceStatus),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start subscribes Handle to every topic.
//
// Parameters:
//   - sub: Connected MQTT client
//   - topics: Topic filters, e.g. ["test/topic", "device/report/#"]
//   - qos: Subscription QoS
//
// Returns:
//   - error: ErrNoTopics, or the first subscription failure
func (s *Service) Start(sub Subscriber, topics []string, qos byte) error {
	if len(topics) == 0 {
		return ErrNoTopics
	}
	for _, topic := range topics {
		if err := sub.Subscribe(topic, qos, s.Handle); err != nil {
			return fmt.Errorf("subscribing to %s: %w", topic, err)
		}
		if s.logger != nil {
			s.logger.Info("subscribed to MQTT topic", "topic", topic)
		}
	}
	return nil
}

// Handle processes one message. It is the mqtt.MessageHandler registered
// by Start; storage failures are returned so the MQTT client logs them, but
// the message is broadcast regardless.
func (s *Service) Handle(topic string, payload []byte) error {
	m := NewMessage(topic, payload, s.now())

	if s.logger != nil {
		s.logger.Debug("MQTT message received", "topic", topic, "device_id", m.DeviceID, "kind", m.Kind)
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	var storeErr error
	if s.store != nil {
		stored, err := s.store.Append(ctx, m)
		if err != nil {
			storeErr = fmt.Errorf("storing message from %s: %w", topic, err)
		} else {
			m = stored
		}
	}

	if s.publisher != nil {
		s.publisher.Broadcast(ChannelMessage, m.wire())
	}

	switch m.Kind {
	case KindReport:
		s.handleReport(m)
	case KindStatus:
		s.handleStatus(m)
	}

	return storeErr
}

func (s *Service) handleReport(m Message) {
	if s.telemetry == nil || m.DeviceID == mqtt.UnknownDeviceID {
		return
	}
	fields, ok := m.Fields()
	if !ok {
		return
	}
	s.telemetry.WriteDeviceReport(m.DeviceID, fields, m.ReceivedAt)
}

func (s *Service) handleStatus(m Message) {
	if m.DeviceID == mqtt.UnknownDeviceID {
		if s.logger != nil {
			s.logger.Warn("status message without device id", "topic", m.Topic)
		}
		return
	}

	status, err := m.Status()
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("status message has no status field", "device_id", m.DeviceID, "payload", m.Payload)
		}
		return
	}

	s.mu.Lock()
	s.statuses[m.DeviceID] = DeviceStatus{DeviceID: m.DeviceID, Status: status, UpdatedAt: m.ReceivedAt}
	s.mu.Unlock()

	if s.telemetry != nil {
		s.telemetry.WriteDeviceStatus(m.DeviceID, status, m.ReceivedAt)
	}
}

// Recent returns up to limit stored messages, newest first.
func (s *Service) Recent(ctx context.Context, limit int) ([]Message, error) {
	if s.store == nil {
		return []Message{}, nil
	}
	return s.store.Recent(ctx, limit)
}

// Statuses returns the last announced status of every device, by device ID.
func (s *Service) Statuses() []DeviceStatus {
	s.mu.RLock()
	out := make([]DeviceStatus, 0, len(s.statuses))
	for _, st := range s.statuses {
		out = append(out, st)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].DeviceID < out[j].DeviceID })
	return out
}
