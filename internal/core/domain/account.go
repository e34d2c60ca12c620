package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Role defines what an authenticated account is allowed to do.
type Role string

const (
	RoleClient Role = "client"
	RoleAdmin  Role = "admin"
)

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	switch r {
	case RoleClient, RoleAdmin:
		return true
	}
	return false
}

// NotificationPreference selects the channel(s) used to notify an account holder.
type NotificationPreference string

const (
	NotifyByEmail NotificationPreference = "email"
	NotifyBySMS   NotificationPreference = "sms"
	NotifyByBoth  NotificationPreference = "both"
)

// IsValid reports whether p is a known preference.
func (p NotificationPreference) IsValid() bool {
	switch p {
	case NotifyByEmail, NotifyBySMS, NotifyByBoth:
		return true
	}
	return false
}

// Account is a client holding a single COP cash balance.
type Account struct {
	AccountID              string                 `json:"accountID"`
	Email                  string                 `json:"email"`
	FullName               string                 `json:"fullName"`
	Phone                  string                 `json:"phone"`
	Role                   Role                   `json:"role"`
	NotificationPreference NotificationPreference `json:"notificationPreference"`
	PasswordHash           string                 `json:"-"`
	Balance                decimal.Decimal        `json:"balance"` // never negative
	IsActive               bool                   `json:"isActive"`
	RefreshTokenHash       string                 `json:"-"`
	RefreshTokenExpiresAt  *time.Time             `json:"-"`
	AuditFields
}

// AccountProfile holds the fields an account holder may change about themselves.
type AccountProfile struct {
	FullName               string
	Phone                  string
	NotificationPreference NotificationPreference
}

// Profile returns the editable part of the account.
func (a Account) Profile() AccountProfile {
	return AccountProfile{
		FullName:               a.FullName,
		Phone:                  a.Phone,
		NotificationPreference: a.NotificationPreference,
	}
}

// Validate checks that the preference is known and that SMS delivery has a phone to go to.
func (p AccountProfile) Validate() error {
	if !p.NotificationPreference.IsValid() {
		return fmt.Errorf("unknown notification preference %q", p.NotificationPreference)
	}
	if p.NotificationPreference != NotifyByEmail && p.Phone == "" {
		return fmt.Errorf("phone is required for %s notifications", p.NotificationPreference)
	}
	return nil
}

// IsAdmin reports whether the account carries the admin role.
func (a Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}
