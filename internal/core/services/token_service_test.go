package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/drmelom/technical-test-BTG-Pactual/internal/apperrors"
	"github.com/drmelom/technical-test-BTG-Pactual/internal/core/domain"
	portssvc "github.com/drmelom/technical-test-BTG-Pactual/internal/core/ports/services"
	"github.com/drmelom/technical-test-BTG-Pactual/internal/core/services"
	"github.com/drmelom/technical-test-BTG-Pactual/internal/platform/config"
	"github.com/drmelom/technical-test-BTG-Pactual/internal/repositories/memory"
	"github.com/drmelom/technical-test-BTG-Pactual/internal/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type TokenServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	store   *memory.Store
	cfg     *config.Config
	svc     portssvc.TokenSvcFacade
	account *domain.Account
}

func TestTokenServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TokenServiceTestSuite))
}

func (s *TokenServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memory.New()
	s.cfg = &config.Config{
		JWTSecret:                  "test-secret",
		JWTExpiryDuration:          15 * time.Minute,
		JWTIssuer:                  "funds-backend",
		RefreshTokenExpiryDuration: time.Hour,
	}
	s.svc = services.NewTokenService(s.cfg, s.store)

	s.account = &domain.Account{AccountID: "acc-1", Email: "ana@example.com", Role: domain.RoleClient, Balance: decimal.NewFromInt(500000), IsActive: true}
	s.Require().NoError(s.store.SaveAccount(s.ctx, *s.account))
}

func (s *TokenServiceTestSuite) TestAccessTokenCarriesRole() {
	token, expiresAt, err := s.svc.GenerateAccessToken(s.ctx, s.account)
	s.Require().NoError(err)
	s.WithinDuration(time.Now().Add(15*time.Minute), expiresAt, 5*time.Second)

	claims, err := utils.ParseAndValidateJWT(token, s.cfg.JWTSecret)
	s.Require().NoError(err)
	s.Equal("acc-1", claims.Subject)
	s.Equal(string(domain.RoleClient), claims.Role)
}

func (s *TokenServiceTestSuite) TestRefreshTokenRotation() {
	first, expiresAt, err := s.svc.GenerateRefreshToken(s.ctx, s.account)
	s.Require().NoError(err)
	s.WithinDuration(time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	stored, err := s.store.FindAccountByID(s.ctx, "acc-1")
	s.Require().NoError(err)
	s.Equal(utils.HashRefreshToken(first), stored.RefreshTokenHash, "only the hash is persisted")

	account, err := s.svc.ValidateAndParseRefreshToken(s.ctx, first)
	s.Require().NoError(err)
	s.Equal("acc-1", account.AccountID)

	second, _, err := s.svc.GenerateRefreshToken(s.ctx, account)
	s.Require().NoError(err)

	_, err = s.svc.ValidateAndParseRefreshToken(s.ctx, first)
	s.ErrorIs(err, apperrors.ErrUnauthorized, "a rotated token is no longer accepted")

	_, err = s.svc.ValidateAndParseRefreshToken(s.ctx, second)
	s.NoError(err)

	s.Require().NoError(s.svc.RevokeRefreshToken(s.ctx, "acc-1"))
	_, err = s.svc.ValidateAndParseRefreshToken(s.ctx, second)
	s.ErrorIs(err, apperrors.ErrUnauthorized)
}

func (s *TokenServiceTestSuite) TestRefreshTokenExpired() {
	s.cfg.RefreshTokenExpiryDuration = -time.Minute
	token, _, err := s.svc.GenerateRefreshToken(s.ctx, s.account)
	s.Require().NoError(err)

	_, err = s.svc.ValidateAndParseRefreshToken(s.ctx, token)
	s.ErrorIs(err, apperrors.ErrRefreshTokenExpired)
	s.ErrorIs(err, apperrors.ErrUnauthorized)
}

func (s *TokenServiceTestSuite) TestRefreshTokenRejections() {
	token, _, err := s.svc.GenerateRefreshToken(s.ctx, s.account)
	s.Require().NoError(err)

	_, err = s.svc.ValidateAndParseRefreshToken(s.ctx, "garbage")
	s.ErrorIs(err, apperrors.ErrUnauthorized)

	forged, err := utils.NewRefreshToken("acc-1")
	s.Require().NoError(err)
	_, err = s.svc.ValidateAndParseRefreshToken(s.ctx, forged)
	s.ErrorIs(err, apperrors.ErrUnauthorized)

	unknown, err := utils.NewRefreshToken("ghost")
	s.Require().NoError(err)
	_, err = s.svc.ValidateAndParseRefreshToken(s.ctx, unknown)
	s.ErrorIs(err, apperrors.ErrUnauthorized)

	s.ErrorIs(s.svc.RevokeRefreshToken(s.ctx, "ghost"), apperrors.ErrAccountNotFound)

	_, err = s.svc.ValidateAndParseRefreshToken(s.ctx, token)
	s.NoError(err)
}
