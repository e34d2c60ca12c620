package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/drmelom/technical-test-BTG-Pactual/internal/apperrors"
	"github.com/drmelom/technical-test-BTG-Pactual/internal/core/domain"
	portsrepo "github.com/drmelom/technical-test-BTG-Pactual/internal/core/ports/repositories"
	portssvc "github.com/drmelom/technical-test-BTG-Pactual/internal/core/ports/services"
	"github.com/drmelom/technical-test-BTG-Pactual/internal/platform/config"
	"github.com/drmelom/technical-test-BTG-Pactual/internal/utils"
)

// tokenService issues JWT access tokens carrying the account ID and role,
// and opaque refresh tokens whose hash is kept on the account.
type tokenService struct {
	BaseService
	cfg         *config.Config
	accountRepo portsrepo.AccountRepositoryFacade
	now         func() time.Time
}

// NewTokenService creates a new instance of tokenService.
func NewTokenService(cfg *config.Config, accountRepo portsrepo.AccountRepositoryFacade) portssvc.TokenSvcFacade {
	return &tokenService{
		cfg:         cfg,
		accountRepo: accountRepo,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// GenerateAccessToken creates a new JWT access token for the given account.
func (s *tokenService) GenerateAccessToken(ctx context.Context, account *domain.Account) (string, time.Time, error) {
	return utils.GenerateJWT(account.AccountID, string(account.Role), s.cfg.JWTSecret, s.cfg.JWTExpiryDuration, s.cfg.JWTIssuer)
}

// GenerateRefreshToken creates a new refresh token and stores its hash, invalidating the previous one.
func (s *tokenService) GenerateRefreshToken(ctx context.Context, account *domain.Account) (string, time.Time, error) {
	rawRefreshToken, err := utils.NewRefreshToken(account.AccountID)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	now := s.now()
	expiryTime := now.Add(s.cfg.RefreshTokenExpiryDuration)
	if err := s.accountRepo.SetRefreshToken(ctx, account.AccountID, utils.HashRefreshToken(rawRefreshToken), expiryTime, now); err != nil {
		s.LogError(ctx, err, "Failed to store refresh token", slog.String("account_id", account.AccountID))
		return "", time.Time{}, fmt.Errorf("failed to store refresh token: %w", err)
	}
	return rawRefreshToken, expiryTime, nil
}

// ValidateAndParseRefreshToken checks the token against the hash stored on its account.
func (s *tokenService) ValidateAndParseRefreshToken(ctx context.Context, refreshToken string) (*domain.Account, error) {
	accountID, ok := utils.ParseRefreshToken(refreshToken)
	if !ok {
		return nil, apperrors.ErrUnauthorized
	}

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to retrieve account for refresh token validation: %w", err)
	}
	if !account.IsActive || account.RefreshTokenHash == "" || account.RefreshTokenExpiresAt == nil {
		return nil, apperrors.ErrUnauthorized
	}
	if !utils.CompareRefreshTokenHash(refreshToken, account.RefreshTokenHash) {
		s.LogWarn(ctx, "Refresh token mismatch", slog.String("account_id", accountID))
		return nil, apperrors.ErrUnauthorized
	}
	if !s.now().Before(*account.RefreshTokenExpiresAt) {
		return nil, apperrors.ErrRefreshTokenExpired
	}
	return account, nil
}

// RevokeRefreshToken clears the stored hash so no outstanding refresh token is accepted.
func (s *tokenService) RevokeRefreshToken(ctx context.Context, accountID string) error {
	now := s.now()
	if err := s.accountRepo.SetRefreshToken(ctx, accountID, "", time.Time{}, now); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, accountID)
		}
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}
