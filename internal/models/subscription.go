package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Subscription is one (account, fund) position. At most one row per pair may be active.
type Subscription struct {
	SubscriptionID string          `db:"subscription_id"`
	AccountID      string          `db:"account_id"`
	FundID         int             `db:"fund_id"`
	Amount         decimal.Decimal `db:"amount"`
	IsActive       bool            `db:"is_active"`
	SubscribedAt   time.Time       `db:"subscribed_at"`
	CancelledAt    sql.NullTime    `db:"cancelled_at"`
}
