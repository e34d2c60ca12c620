package dto

import (
	"time"

	"github.com/drmelom/technical-test-BTG-Pactual/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SubscribeRequest opens a position in a fund.
type SubscribeRequest struct {
	FundID int             `json:"fundID" binding:"required,gt=0"`
	Amount decimal.Decimal `json:"amount" binding:"required,decimal_gt0,currency_units"`
}

// CancelRequest closes the caller's position in a fund.
type CancelRequest struct {
	FundID int `json:"fundID" binding:"required,gt=0"`
}

// SubscribeResponse is returned after a completed subscription.
type SubscribeResponse struct {
	TransactionID  string          `json:"transactionID"`
	SubscriptionID string          `json:"subscriptionID"`
	FundID         int             `json:"fundID"`
	Amount         decimal.Decimal `json:"amount"`
	NewBalance     decimal.Decimal `json:"newBalance"`
}

// CancelResponse is returned after a completed cancellation.
type CancelResponse struct {
	TransactionID  string          `json:"transactionID"`
	FundID         int             `json:"fundID"`
	RefundedAmount decimal.Decimal `json:"refundedAmount"`
	NewBalance     decimal.Decimal `json:"newBalance"`
}

// SubscriptionResponse defines the data returned for an active position.
type SubscriptionResponse struct {
	SubscriptionID string          `json:"subscriptionID"`
	FundID         int             `json:"fundID"`
	FundName       string          `json:"fundName"`
	Amount         decimal.Decimal `json:"amount"`
	IsActive       bool            `json:"isActive"`
	SubscribedAt   time.Time       `json:"subscribedAt"`
	CancelledAt    *time.Time      `json:"cancelledAt,omitempty"`
}

// ToSubscriptionResponses converts domain subscriptions to response DTOs
func ToSubscriptionResponses(subs []domain.Subscription) []SubscriptionResponse {
	res := make([]SubscriptionResponse, len(subs))
	for i, s := range subs {
		res[i] = SubscriptionResponse{
			SubscriptionID: s.SubscriptionID,
			FundID:         s.FundID,
			FundName:       s.FundName,
			Amount:         s.Amount,
			IsActive:       s.IsActive,
			SubscribedAt:   s.SubscribedAt,
			CancelledAt:    s.CancelledAt,
		}
	}
	return res
}
