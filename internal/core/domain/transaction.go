package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind distinguishes money leaving the balance for a fund from money coming back.
type TransactionKind string

const (
	KindSubscription TransactionKind = "subscription"
	KindCancellation TransactionKind = "cancellation"
)

// IsValid reports whether k is a known kind.
func (k TransactionKind) IsValid() bool {
	switch k {
	case KindSubscription, KindCancellation:
		return true
	}
	return false
}

// TransactionStatus tracks a ledger entry through the workflow.
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusCompleted TransactionStatus = "completed"
	StatusFailed    TransactionStatus = "failed"
)

// IsValid reports whether s is a known status.
func (s TransactionStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is allowed out of s.
func (s TransactionStatus) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed:
		return true
	case StatusPending:
		return false
	}
	return false
}

// CanTransitionTo reports whether moving from s to next is allowed.
// Only pending -> completed and pending -> failed are.
func (s TransactionStatus) CanTransitionTo(next TransactionStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusCompleted || next == StatusFailed
	case StatusCompleted, StatusFailed:
		return false
	}
	return false
}

// Transaction is an immutable-once-terminal ledger entry recording a subscription or cancellation.
type Transaction struct {
	TransactionID string            `json:"transactionID"`
	AccountID     string            `json:"accountID"`
	FundID        int               `json:"fundID"`
	Kind          TransactionKind   `json:"kind"`
	Amount        decimal.Decimal   `json:"amount"` // always positive
	Status        TransactionStatus `json:"status"`
	Description   string            `json:"description"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
	CompletedAt   *time.Time        `json:"completedAt,omitempty"` // set on completion only
}

// TransitionTo moves the transaction to next, stamping the update and completion times.
func (t *Transaction) TransitionTo(next TransactionStatus, at time.Time) error {
	if !t.Status.CanTransitionTo(next) {
		return fmt.Errorf("transaction %s: %s -> %s not allowed", t.TransactionID, t.Status, next)
	}
	t.Status = next
	t.UpdatedAt = at
	if next == StatusCompleted {
		completedAt := at
		t.CompletedAt = &completedAt
	}
	return nil
}

// TransactionFilter narrows a ledger query. Nil fields match everything.
type TransactionFilter struct {
	Kind   *TransactionKind
	Status *TransactionStatus
}

// Matches reports whether t passes the filter.
func (f TransactionFilter) Matches(t Transaction) bool {
	if f.Kind != nil && t.Kind != *f.Kind {
		return false
	}
	if f.Status != nil && t.Status != *f.Status {
		return false
	}
	return true
}

// TransactionPage is one page of an account's history.
type TransactionPage struct {
	Items      []Transaction
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}
