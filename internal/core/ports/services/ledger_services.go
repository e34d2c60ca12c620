package services

import (
	"context"

	"github.com/drmelom/technical-test-BTG-Pactual/internal/core/domain"
)

// HistoryQuery selects one page of an account's transaction history.
type HistoryQuery struct {
	Page     int
	PageSize int
	Filter   domain.TransactionFilter
}

// LedgerReaderSvc exposes the account-scoped ledger views.
type LedgerReaderSvc interface {
	// History returns one page of the account's transactions, newest first.
	History(ctx context.Context, accountID string, query HistoryQuery) (*domain.TransactionPage, error)

	// GetTransaction returns a transaction owned by requestingAccountID.
	GetTransaction(ctx context.Context, transactionID string, requestingAccountID string) (*domain.Transaction, error)
}

// LedgerAdminSvc exposes the unrestricted views.
type LedgerAdminSvc interface {
	GetTransactionAdmin(ctx context.Context, transactionID string) (*domain.Transaction, error)
	RecentTransactions(ctx context.Context, limit int) ([]domain.Transaction, error)
}

// LedgerSvcFacade combines all ledger-related service interfaces
type LedgerSvcFacade interface {
	LedgerReaderSvc
	LedgerAdminSvc
}
