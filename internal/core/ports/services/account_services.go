package services

import (
	"context"
	"time"

	"github.com/drmelom/technical-test-BTG-Pactual/internal/core/domain"
	"github.com/drmelom/technical-test-BTG-Pactual/internal/dto"
	"github.com/shopspring/decimal"
)

// AccountSvcFacade manages client accounts.
type AccountSvcFacade interface {
	// Register creates a client account funded with the configured opening balance.
	Register(ctx context.Context, req dto.RegisterRequest) (*domain.Account, error)

	// Authenticate checks credentials and returns the account. Returns apperrors.ErrUnauthorized on mismatch.
	Authenticate(ctx context.Context, email string, password string) (*domain.Account, error)

	GetAccount(ctx context.Context, accountID string) (*domain.Account, error)

	// UpdateProfile applies the non-nil fields of req and returns the updated account.
	UpdateProfile(ctx context.Context, accountID string, req dto.UpdateProfileRequest) (*domain.Account, error)

	// EnsureAdmin creates the administrator account if its email is not registered yet.
	EnsureAdmin(ctx context.Context, email string, password string, balance decimal.Decimal) error
}

// TokenSvcFacade issues access tokens and rotating refresh tokens.
type TokenSvcFacade interface {
	GenerateAccessToken(ctx context.Context, account *domain.Account) (string, time.Time, error)

	// GenerateRefreshToken issues a new refresh token for the account, replacing any previous one.
	GenerateRefreshToken(ctx context.Context, account *domain.Account) (string, time.Time, error)

	// ValidateAndParseRefreshToken returns the active account the token belongs to.
	// Returns apperrors.ErrUnauthorized for unknown or superseded tokens and apperrors.ErrRefreshTokenExpired when expired.
	ValidateAndParseRefreshToken(ctx context.Context, refreshToken string) (*domain.Account, error)

	// RevokeRefreshToken clears the account's refresh token.
	RevokeRefreshToken(ctx context.Context, accountID string) error
}
