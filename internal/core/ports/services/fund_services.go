package services

import (
	"context"

	"github.com/drmelom/technical-test-BTG-Pactual/internal/core/domain"
)

// FundSvcFacade exposes the catalog and an account's positions.
type FundSvcFacade interface {
	ListFunds(ctx context.Context) ([]domain.Fund, error)
	GetFund(ctx context.Context, fundID int) (*domain.Fund, error)

	// ListAccountSubscriptions returns the active subscriptions of an account with fund names filled in.
	ListAccountSubscriptions(ctx context.Context, accountID string) ([]domain.Subscription, error)

	// InitializeFunds seeds the default catalog. Existing funds are left untouched.
	InitializeFunds(ctx context.Context) error
}
