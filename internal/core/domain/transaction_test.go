package domain_test

import (
	"testing"
	"time"

	"github.com/drmelom/technical-test-BTG-Pactual/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from domain.TransactionStatus
		to   domain.TransactionStatus
		want bool
	}{
		{name: "pending to completed", from: domain.StatusPending, to: domain.StatusCompleted, want: true},
		{name: "pending to failed", from: domain.StatusPending, to: domain.StatusFailed, want: true},
		{name: "pending to pending", from: domain.StatusPending, to: domain.StatusPending, want: false},
		{name: "completed to failed", from: domain.StatusCompleted, to: domain.StatusFailed, want: false},
		{name: "failed to completed", from: domain.StatusFailed, to: domain.StatusCompleted, want: false},
		{name: "completed to pending", from: domain.StatusCompleted, to: domain.StatusPending, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestTransactionStatus_IsTerminal(t *testing.T) {
	assert.False(t, domain.StatusPending.IsTerminal())
	assert.True(t, domain.StatusCompleted.IsTerminal())
	assert.True(t, domain.StatusFailed.IsTerminal())
}

func TestTransaction_TransitionTo(t *testing.T) {
	created := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	txn := domain.Transaction{
		TransactionID: "TXN_20250110_ABCDEF12",
		Kind:          domain.KindSubscription,
		Amount:        decimal.NewFromInt(100000),
		Status:        domain.StatusPending,
		CreatedAt:     created,
		UpdatedAt:     created,
	}

	done := created.Add(time.Second)
	require.NoError(t, txn.TransitionTo(domain.StatusCompleted, done))
	assert.Equal(t, domain.StatusCompleted, txn.Status)
	require.NotNil(t, txn.CompletedAt)
	assert.True(t, done.Equal(*txn.CompletedAt))

	err := txn.TransitionTo(domain.StatusFailed, done.Add(time.Second))
	assert.Error(t, err)
	assert.Equal(t, domain.StatusCompleted, txn.Status, "terminal status must not change")
}

func TestTransactionFilter_Matches(t *testing.T) {
	sub := domain.KindSubscription
	failed := domain.StatusFailed
	txn := domain.Transaction{Kind: domain.KindSubscription, Status: domain.StatusCompleted}

	assert.True(t, domain.TransactionFilter{}.Matches(txn))
	assert.True(t, domain.TransactionFilter{Kind: &sub}.Matches(txn))
	assert.False(t, domain.TransactionFilter{Status: &failed}.Matches(txn))
	assert.False(t, domain.TransactionFilter{Kind: &sub, Status: &failed}.Matches(txn))
}
