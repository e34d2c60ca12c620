package services

import (
	"context"

	"github.com/drmelom/technical-test-BTG-Pactual/internal/core/domain"
	"github.com/shopspring/decimal"
)

// WorkflowSvc runs the subscribe and cancel workflows across balance, subscriptions and ledger.
type WorkflowSvc interface {
	// Subscribe debits amount from the account and opens an active subscription to the fund.
	Subscribe(ctx context.Context, accountID string, fundID int, amount decimal.Decimal) (*domain.SubscribeResult, error)

	// Cancel closes the active subscription to the fund and refunds its amount.
	Cancel(ctx context.Context, accountID string, fundID int) (*domain.CancelResult, error)
}
