package notify

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ChannelNotification is the WebSocket channel toasts are published on.
const ChannelNotification = "notification"

// Publisher pushes a payload to every subscriber of a channel.
type Publisher interface {
	Broadcast(channel string, payload any)
}

// Logger is the subset of logging.Logger the center uses.
type Logger interface {
	Debug(msg string, args ...any)
}

// Center is the application's Notifier. It is safe for concurrent use.
type Center struct {
	publisher Publisher
	logger    Logger
	duration  time.Duration
	now       func() time.Time

	mu     sync.Mutex
	active map[string]Notification
}

// Option configures a Center.
type Option func(*Center)

// WithPublisher pushes every notification to p.
func WithPublisher(p Publisher) Option {
	return func(c *Center) { c.publisher = p }
}

// WithDuration sets the display time used when a notification has none.
func WithDuration(d time.Duration) Option {
	return func(c *Center) {
		if d > 0 {
			c.duration = d
		}
	}
}

// WithLogger logs each notification at debug level.
func WithLogger(l Logger) Option {
	return func(c *Center) { c.logger = l }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Center) { c.now = now }
}

// NewCenter creates a notification center.
func NewCenter(opts ...Option) *Center {
	c := &Center{
		duration: DefaultDuration,
		now:      time.Now,
		active:   make(map[string]Notification),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetPublisher replaces the publisher. The WebSocket hub is created after
// the center, so main wires it in late.
func (c *Center) SetPublisher(p Publisher) {
	c.mu.Lock()
	c.publisher = p
	c.mu.Unlock()
}

// Notify fills in ID, Kind, Duration, and CreatedAt when unset, stores the
// notification until it expires, and publishes it.
func (c *Center) Notify(_ context.Context, n Notification) {
	now := c.now()
	if n.ID == "" {
		n.ID = "ntf-" + uuid.NewString()[:8]
	}
	if n.Kind == "" {
		n.Kind = KindInfo
	}
	if n.Duration <= 0 {
		n.Duration = c.duration
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now
	}

	c.mu.Lock()
	c.pruneLocked(now)
	c.active[n.ID] = n
	publisher := c.publisher
	c.mu.Unlock()

	if c.logger != nil {
		c.logger.Debug("notification", "id", n.ID, "kind", n.Kind, "message", n.Message)
	}
	if publisher != nil {
		publisher.Broadcast(ChannelNotification, Payload(n))
	}
}

// Active returns the unexpired notifications, oldest first.
func (c *Center) Active() []Notification {
	now := c.now()

	c.mu.Lock()
	c.pruneLocked(now)
	out := make([]Notification, 0, len(c.active))
	for _, n := range c.active {
		out = append(out, n)
	}
	c.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Dismiss removes a notification before it expires.
func (c *Center) Dismiss(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.active[id]; !ok {
		return false
	}
	delete(c.active, id)
	return true
}

func (c *Center) pruneLocked(now time.Time) {
	for id, n := range c.active {
		if !now.Before(n.ExpiresAt()) {
			delete(c.active, id)
		}
	}
}

// Payload is the JSON shape sent to the browser.
func Payload(n Notification) map[string]any {
	return map[string]any{
		"id":          n.ID,
		"kind":        n.Kind,
		"message":     n.Message,
		"duration_ms": n.DurationMillis(),
		"created_at":  n.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}
