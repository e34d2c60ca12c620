package repositories

import (
	"context"

	"github.com/drmelom/technical-test-BTG-Pactual/internal/core/domain"
)

// FundReader is the read-only catalog view used by the workflow.
type FundReader interface {
	// FindFundByID returns the fund or apperrors.ErrNotFound.
	FindFundByID(ctx context.Context, fundID int) (*domain.Fund, error)

	// ListFunds returns the catalog ordered by fund ID.
	ListFunds(ctx context.Context, activeOnly bool) ([]domain.Fund, error)
}

// FundWriter manages catalog entries.
type FundWriter interface {
	// SaveFund inserts a fund. Returns apperrors.ErrDuplicate if the ID exists.
	SaveFund(ctx context.Context, fund domain.Fund) error
}

// FundRepositoryFacade combines all fund-related repository interfaces
type FundRepositoryFacade interface {
	FundReader
	FundWriter
}
