package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/drmelom/technical-test-BTG-Pactual/internal/apperrors"
	"github.com/drmelom/technical-test-BTG-Pactual/internal/core/domain"
	portsrepo "github.com/drmelom/technical-test-BTG-Pactual/internal/core/ports/repositories"
	portssvc "github.com/drmelom/technical-test-BTG-Pactual/internal/core/ports/services"
	"github.com/drmelom/technical-test-BTG-Pactual/internal/utils/pagination"
)

const (
	defaultRecentLimit = 50
	maxRecentLimit     = 500
)

type ledgerService struct {
	BaseService
	ledgerRepo  portsrepo.LedgerReader
	accountRepo portsrepo.AccountReader
}

// NewLedgerService creates a new ledger query service.
func NewLedgerService(ledgerRepo portsrepo.LedgerReader, accountRepo portsrepo.AccountReader) portssvc.LedgerSvcFacade {
	return &ledgerService{
		ledgerRepo:  ledgerRepo,
		accountRepo: accountRepo,
	}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// History returns a page of the account's transactions. Pages past the end are empty but carry the real totals.
func (s *ledgerService) History(ctx context.Context, accountID string, query portssvc.HistoryQuery) (*domain.TransactionPage, error) {
	page, err := pagination.NewPage(query.Page, query.PageSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	if f := query.Filter; (f.Kind != nil && !f.Kind.IsValid()) || (f.Status != nil && !f.Status.IsValid()) {
		return nil, fmt.Errorf("%w: unknown transaction type or status filter", apperrors.ErrValidation)
	}

	if _, err := s.accountRepo.FindAccountByID(ctx, accountID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, accountID)
		}
		s.LogError(ctx, err, "Failed to load account for history", slog.String("account_id", accountID))
		return nil, fmt.Errorf("failed to load account %s: %w", accountID, err)
	}

	items, total, err := s.ledgerRepo.QueryTransactions(ctx, accountID, query.Filter, page.Limit(), page.Offset())
	if err != nil {
		s.LogError(ctx, err, "Failed to query transactions", slog.String("account_id", accountID))
		return nil, fmt.Errorf("failed to query transactions for account %s: %w", accountID, err)
	}
	if items == nil {
		items = []domain.Transaction{}
	}

	s.LogDebug(ctx, "History page served",
		slog.String("account_id", accountID),
		slog.Int("page", page.Number),
		slog.Int("items", len(items)),
		slog.Int("total", total))

	return &domain.TransactionPage{
		Items:      items,
		Total:      total,
		Page:       page.Number,
		PageSize:   page.Size,
		TotalPages: page.TotalPages(total),
	}, nil
}

// GetTransaction returns the transaction if requestingAccountID owns it.
func (s *ledgerService) GetTransaction(ctx context.Context, transactionID string, requestingAccountID string) (*domain.Transaction, error) {
	txn, err := s.GetTransactionAdmin(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if txn.AccountID != requestingAccountID {
		s.LogWarn(ctx, "Transaction access denied",
			slog.String("transaction_id", transactionID),
			slog.String("requesting_account_id", requestingAccountID))
		return nil, apperrors.ErrNotAuthorized
	}
	return txn, nil
}

// GetTransactionAdmin returns any transaction without an ownership check.
func (s *ledgerService) GetTransactionAdmin(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	txn, err := s.ledgerRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrTransactionNotFound, transactionID)
		}
		s.LogError(ctx, err, "Failed to load transaction", slog.String("transaction_id", transactionID))
		return nil, fmt.Errorf("failed to load transaction %s: %w", transactionID, err)
	}
	return txn, nil
}

// RecentTransactions returns the newest transactions across all accounts.
func (s *ledgerService) RecentTransactions(ctx context.Context, limit int) ([]domain.Transaction, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}
	txns, err := s.ledgerRepo.ListRecentTransactions(ctx, limit)
	if err != nil {
		s.LogError(ctx, err, "Failed to list recent transactions")
		return nil, fmt.Errorf("failed to list recent transactions: %w", err)
	}
	return txns, nil
}
