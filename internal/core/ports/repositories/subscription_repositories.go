package repositories

import (
	"context"
	"time"

	"github.com/drmelom/technical-test-BTG-Pactual/internal/core/domain"
)

// SubscriptionReader defines read operations for subscriptions
type SubscriptionReader interface {
	// FindActiveSubscription returns the active subscription for (account, fund) or apperrors.ErrNotFound.
	FindActiveSubscription(ctx context.Context, accountID string, fundID int) (*domain.Subscription, error)

	// ListActiveSubscriptions returns the account's active subscriptions, oldest first.
	ListActiveSubscriptions(ctx context.Context, accountID string) ([]domain.Subscription, error)
}

// SubscriptionWriter defines write operations for subscriptions
type SubscriptionWriter interface {
	// CreateActiveSubscription inserts an active subscription. The store enforces at most one
	// active row per (account, fund) and returns apperrors.ErrDuplicate on violation.
	CreateActiveSubscription(ctx context.Context, subscription domain.Subscription) error

	// DeactivateSubscription marks the active (account, fund) subscription inactive.
	// Returns apperrors.ErrNotFound when there is no active row.
	DeactivateSubscription(ctx context.Context, accountID string, fundID int, cancelledAt time.Time) error
}

// SubscriptionRepositoryFacade combines all subscription-related repository interfaces
type SubscriptionRepositoryFacade interface {
	SubscriptionReader
	SubscriptionWriter
}
