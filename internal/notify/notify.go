package notify

import "context"

// Notification is one user-visible message.
type Notification struct {
	Title   string
	Message string
}

// Notifier delivers reminder notifications. Delivery is best-effort: failures
// are reported but never retried.
type Notifier interface {
	Send(ctx context.Context, id string, n Notification) error
}
