package repositories

import (
	"context"
	"time"

	"github.com/drmelom/technical-test-BTG-Pactual/internal/core/domain"
)

// LedgerReader defines read operations for ledger transactions
type LedgerReader interface {
	// FindTransactionByID returns the transaction or apperrors.ErrNotFound.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// QueryTransactions returns one window of an account's transactions ordered by
	// created_at desc, transaction_id desc, together with the total number of matches.
	QueryTransactions(ctx context.Context, accountID string, filter domain.TransactionFilter, limit int, offset int) ([]domain.Transaction, int, error)

	// ListRecentTransactions returns the newest transactions across all accounts.
	ListRecentTransactions(ctx context.Context, limit int) ([]domain.Transaction, error)
}

// LedgerWriter defines write operations for ledger transactions
type LedgerWriter interface {
	// CreateTransaction inserts a new entry. Returns apperrors.ErrDuplicate on an ID collision.
	CreateTransaction(ctx context.Context, txn domain.Transaction) error

	// UpdateTransactionStatus moves a pending entry to status, stamping completed_at on completion.
	// Returns apperrors.ErrNotFound or apperrors.ErrInvalidStatusTransition.
	UpdateTransactionStatus(ctx context.Context, transactionID string, status domain.TransactionStatus, at time.Time) error
}

// LedgerRepositoryFacade combines all ledger-related repository interfaces
type LedgerRepositoryFacade interface {
	LedgerReader
	LedgerWriter
}
