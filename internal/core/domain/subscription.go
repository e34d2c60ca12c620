package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Subscription is an account's position in a fund. Rows are deactivated, never deleted.
// At most one active subscription exists per (account, fund).
type Subscription struct {
	SubscriptionID string          `json:"subscriptionID"`
	AccountID      string          `json:"accountID"`
	FundID         int             `json:"fundID"`
	FundName       string          `json:"fundName,omitempty"` // filled by readers that join the catalog
	Amount         decimal.Decimal `json:"amount"`
	IsActive       bool            `json:"isActive"`
	SubscribedAt   time.Time       `json:"subscribedAt"`
	CancelledAt    *time.Time      `json:"cancelledAt,omitempty"`
}
