package services

import (
	"context"

	"github.com/drmelom/technical-test-BTG-Pactual/internal/core/domain"
)

// Notifier delivers a single notification over one or more channels.
type Notifier interface {
	Notify(ctx context.Context, notification domain.Notification) error
}

// NotificationDispatcher hands notifications off for asynchronous delivery. Dispatch never blocks on delivery.
type NotificationDispatcher interface {
	Dispatch(notification domain.Notification)
}
