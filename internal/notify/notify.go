package notify

import (
	"context"
	"time"
)

// Kind is the visual style of a notification.
type Kind string

const (
	KindError   Kind = "error"
	KindWarning Kind = "warning"
	KindSuccess Kind = "success"
	KindInfo    Kind = "info"
)

// DefaultDuration is how long a notification stays visible when none is set.
const DefaultDuration = 5 * time.Second

// Notification is a single toast.
type Notification struct {
	ID        string        `json:"id"`
	Kind      Kind          `json:"kind"`
	Message   string        `json:"message"`
	Duration  time.Duration `json:"-"`
	CreatedAt time.Time     `json:"created_at"`
}

// DurationMillis is the display time in milliseconds, as the browser expects.
func (n Notification) DurationMillis() int64 {
	return n.Duration.Milliseconds()
}

// ExpiresAt is when the notification stops being displayed.
func (n Notification) ExpiresAt() time.Time {
	return n.CreatedAt.Add(n.Duration)
}

// Notifier shows a notification to the user.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// Noop discards notifications.
type Noop struct{}

// Notify implements Notifier.
func (Noop) Notify(context.Context, Notification) {}
