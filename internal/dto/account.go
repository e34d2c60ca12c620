package dto

import (
	"time"

	"github.com/drmelom/technical-test-BTG-Pactual/internal/core/domain"
	"github.com/shopspring/decimal"
)

// RegisterRequest defines the data needed to open a client account.
type RegisterRequest struct {
	Email                  string                        `json:"email" binding:"required,email"`
	Password               string                        `json:"password" binding:"required,min=8,max=72"`
	FullName               string                        `json:"fullName" binding:"required,min=2,max=100"`
	Phone                  string                        `json:"phone" binding:"omitempty,e164"`
	NotificationPreference domain.NotificationPreference `json:"notificationPreference" binding:"omitempty,oneof=email sms both"`
}

// UpdateProfileRequest changes the caller's profile. Omitted fields are left as they are.
type UpdateProfileRequest struct {
	FullName               *string                        `json:"fullName" binding:"omitempty,min=2,max=100"`
	Phone                  *string                        `json:"phone" binding:"omitempty,e164"`
	NotificationPreference *domain.NotificationPreference `json:"notificationPreference" binding:"omitempty,oneof=email sms both"`
}

// IsEmpty reports whether the request changes nothing.
func (r UpdateProfileRequest) IsEmpty() bool {
	return r.FullName == nil && r.Phone == nil && r.NotificationPreference == nil
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID              string                        `json:"accountID"`
	Email                  string                        `json:"email"`
	FullName               string                        `json:"fullName"`
	Phone                  string                        `json:"phone,omitempty"`
	Role                   domain.Role                   `json:"role"`
	NotificationPreference domain.NotificationPreference `json:"notificationPreference"`
	Balance                decimal.Decimal               `json:"balance"`
	Currency               string                        `json:"currency"`
	IsActive               bool                          `json:"isActive"`
	CreatedAt              time.Time                     `json:"createdAt"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:              acc.AccountID,
		Email:                  acc.Email,
		FullName:               acc.FullName,
		Phone:                  acc.Phone,
		Role:                   acc.Role,
		NotificationPreference: acc.NotificationPreference,
		Balance:                acc.Balance,
		Currency:               domain.CurrencyCOP,
		IsActive:               acc.IsActive,
		CreatedAt:              acc.CreatedAt,
	}
}
