package models

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

// Account is the persisted form of a client account, including its cash balance.
type Account struct {
	AccountID              string          `db:"account_id"`
	Email                  string          `db:"email"` // stored lower-cased, unique
	FullName               string          `db:"full_name"`
	Phone                  sql.NullString  `db:"phone"`
	Role                   string          `db:"role"`
	NotificationPreference string          `db:"notification_preference"`
	PasswordHash           string          `db:"password_hash"`
	Balance                decimal.Decimal `db:"balance"`
	IsActive               bool            `db:"is_active"`
	RefreshTokenHash       sql.NullString  `db:"refresh_token_hash"` // SHA256 of the current refresh token
	RefreshTokenExpiresAt  sql.NullTime    `db:"refresh_token_expires_at"`
	AuditFields
}
