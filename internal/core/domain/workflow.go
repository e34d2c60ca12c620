package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SubscribeResult is returned by a completed subscription.
type SubscribeResult struct {
	TransactionID  string
	SubscriptionID string
	NewBalance     decimal.Decimal
}

// CancelResult is returned by a completed cancellation.
type CancelResult struct {
	TransactionID  string
	RefundedAmount decimal.Decimal
	NewBalance     decimal.Decimal
}

// Notification describes a completed workflow outcome to be delivered to the account holder.
type Notification struct {
	AccountID     string
	FullName      string
	Email         string
	Phone         string
	Preference    NotificationPreference
	Kind          TransactionKind
	TransactionID string
	FundID        int
	FundName      string
	Amount        decimal.Decimal
	NewBalance    decimal.Decimal
	OccurredAt    time.Time
}
