package repositories

import (
	"context"
	"time"

	"github.com/drmelom/technical-test-BTG-Pactual/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AccountReader defines read operations for account data
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountByEmail retrieves an account by its (case-insensitive) email.
	FindAccountByEmail(ctx context.Context, email string) (*domain.Account, error)
}

// AccountWriter defines write operations for account data
type AccountWriter interface {
	// SaveAccount persists a new account. Returns apperrors.ErrDuplicate when the ID or email is taken.
	SaveAccount(ctx context.Context, account domain.Account) error

	// UpdateAccountProfile overwrites name, phone and notification preference. Balance is untouched.
	UpdateAccountProfile(ctx context.Context, accountID string, profile domain.AccountProfile, now time.Time) error

	// SetRefreshToken stores the hash of the account's current refresh token.
	// An empty hash clears it.
	SetRefreshToken(ctx context.Context, accountID string, tokenHash string, expiresAt time.Time, now time.Time) error
}

// BalanceStore is the compare-and-set view of an account's cash balance.
type BalanceStore interface {
	// GetBalance returns the current balance, or apperrors.ErrNotFound.
	GetBalance(ctx context.Context, accountID string) (decimal.Decimal, error)

	// CompareAndSetBalance replaces the balance with newBalance only if it still equals expected.
	// Returns apperrors.ErrConflict when it does not, apperrors.ErrNotFound for an unknown account.
	CompareAndSetBalance(ctx context.Context, accountID string, expected, newBalance decimal.Decimal, now time.Time) error
}

// AccountRepositoryFacade combines all account-related repository interfaces
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	BalanceStore
}
