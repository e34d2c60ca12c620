package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/drmelom/technical-test-BTG-Pactual/internal/apperrors"
	"github.com/drmelom/technical-test-BTG-Pactual/internal/core/domain"
	portsrepo "github.com/drmelom/technical-test-BTG-Pactual/internal/core/ports/repositories"
	"github.com/drmelom/technical-test-BTG-Pactual/internal/core/services"
	"github.com/drmelom/technical-test-BTG-Pactual/internal/dto"
	"github.com/drmelom/technical-test-BTG-Pactual/internal/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock AccountRepository ---
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) GetBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockAccountRepository) CompareAndSetBalance(ctx context.Context, accountID string, expected, newBalance decimal.Decimal, now time.Time) error {
	args := m.Called(ctx, accountID, expected, newBalance, now)
	return args.Error(0)
}

func (m *MockAccountRepository) UpdateAccountProfile(ctx context.Context, accountID string, profile domain.AccountProfile, now time.Time) error {
	args := m.Called(ctx, accountID, profile, now)
	return args.Error(0)
}

func (m *MockAccountRepository) SetRefreshToken(ctx context.Context, accountID string, tokenHash string, expiresAt time.Time, now time.Time) error {
	args := m.Called(ctx, accountID, tokenHash, expiresAt, now)
	return args.Error(0)
}

var _ portsrepo.AccountRepositoryFacade = (*MockAccountRepository)(nil)

type AccountServiceTestSuite struct {
	suite.Suite
	ctx      context.Context
	mockRepo *MockAccountRepository
}

func TestAccountServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}

func (s *AccountServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.mockRepo = new(MockAccountRepository)
}

func (s *AccountServiceTestSuite) TestRegister_Success() {
	svc := services.NewAccountService(s.mockRepo, decimal.NewFromInt(500000))
	s.mockRepo.On("SaveAccount", s.ctx, mock.MatchedBy(func(a domain.Account) bool {
		return a.Email == "ana@example.com" &&
			a.Role == domain.RoleClient &&
			a.NotificationPreference == domain.NotifyByEmail &&
			a.Balance.Equal(decimal.NewFromInt(500000)) &&
			a.PasswordHash != "s3cret-pass" &&
			a.IsActive
	})).Return(nil).Once()

	account, err := svc.Register(s.ctx, dto.RegisterRequest{Email: "  Ana@Example.com ", Password: "s3cret-pass", FullName: "Ana"})
	s.Require().NoError(err)
	s.NotEmpty(account.AccountID)
	s.True(utils.CheckPasswordHash("s3cret-pass", account.PasswordHash))
	s.mockRepo.AssertExpectations(s.T())
}

func (s *AccountServiceTestSuite) TestRegister_SMSRequiresPhone() {
	svc := services.NewAccountService(s.mockRepo, decimal.NewFromInt(500000))
	_, err := svc.Register(s.ctx, dto.RegisterRequest{Email: "a@b.co", Password: "s3cret-pass", NotificationPreference: domain.NotifyBySMS})
	s.ErrorIs(err, apperrors.ErrValidation)
	s.mockRepo.AssertNotCalled(s.T(), "SaveAccount", mock.Anything, mock.Anything)
}

func (s *AccountServiceTestSuite) TestRegister_PasswordOverBcryptLimit() {
	svc := services.NewAccountService(s.mockRepo, decimal.NewFromInt(500000))
	_, err := svc.Register(s.ctx, dto.RegisterRequest{Email: "a@b.co", Password: strings.Repeat("ñ", 40), FullName: "Ana"})
	s.ErrorIs(err, apperrors.ErrValidation)
	s.mockRepo.AssertNotCalled(s.T(), "SaveAccount", mock.Anything, mock.Anything)
}

func (s *AccountServiceTestSuite) TestRegister_DuplicateEmail() {
	svc := services.NewAccountService(s.mockRepo, decimal.NewFromInt(500000))
	s.mockRepo.On("SaveAccount", s.ctx, mock.AnythingOfType("domain.Account")).Return(apperrors.ErrDuplicate).Once()

	_, err := svc.Register(s.ctx, dto.RegisterRequest{Email: "a@b.co", Password: "s3cret-pass"})
	s.ErrorIs(err, apperrors.ErrDuplicate)
}

func (s *AccountServiceTestSuite) TestAuthenticate() {
	svc := services.NewAccountService(s.mockRepo, decimal.Zero)
	hash, err := utils.HashPassword("s3cret-pass")
	s.Require().NoError(err)
	stored := &domain.Account{AccountID: "acc-1", Email: "a@b.co", PasswordHash: hash, IsActive: true}

	s.mockRepo.On("FindAccountByEmail", s.ctx, "a@b.co").Return(stored, nil)
	s.mockRepo.On("FindAccountByEmail", s.ctx, "nobody@b.co").Return(nil, apperrors.ErrNotFound)

	account, err := svc.Authenticate(s.ctx, "A@B.co", "s3cret-pass")
	s.Require().NoError(err)
	s.Equal("acc-1", account.AccountID)

	_, err = svc.Authenticate(s.ctx, "a@b.co", "wrong-pass")
	s.ErrorIs(err, apperrors.ErrUnauthorized)

	_, err = svc.Authenticate(s.ctx, "nobody@b.co", "s3cret-pass")
	s.ErrorIs(err, apperrors.ErrUnauthorized)
}

func (s *AccountServiceTestSuite) TestGetAccount() {
	svc := services.NewAccountService(s.mockRepo, decimal.Zero)
	s.mockRepo.On("FindAccountByID", s.ctx, "missing").Return(nil, apperrors.ErrNotFound).Once()
	s.mockRepo.On("FindAccountByID", s.ctx, "broken").Return(nil, errors.New("connection refused")).Once()

	_, err := svc.GetAccount(s.ctx, "missing")
	s.ErrorIs(err, apperrors.ErrAccountNotFound)

	_, err = svc.GetAccount(s.ctx, "broken")
	s.Error(err)
	s.NotErrorIs(err, apperrors.ErrAccountNotFound)
}

func (s *AccountServiceTestSuite) TestEnsureAdmin() {
	svc := services.NewAccountService(s.mockRepo, decimal.NewFromInt(500000))
	s.mockRepo.On("SaveAccount", s.ctx, mock.MatchedBy(func(a domain.Account) bool {
		return a.Email == "admin@btgpactual.com" &&
			a.Role == domain.RoleAdmin &&
			a.Balance.Equal(decimal.NewFromInt(1000000))
	})).Return(nil).Once()

	err := svc.EnsureAdmin(s.ctx, "Admin@BTGPactual.com", "Admin123!", decimal.NewFromInt(1000000))
	s.Require().NoError(err)

	s.mockRepo.On("SaveAccount", s.ctx, mock.AnythingOfType("domain.Account")).Return(apperrors.ErrDuplicate).Once()
	s.NoError(svc.EnsureAdmin(s.ctx, "admin@btgpactual.com", "Admin123!", decimal.NewFromInt(1000000)))

	s.ErrorIs(svc.EnsureAdmin(s.ctx, "admin@btgpactual.com", "", decimal.Zero), apperrors.ErrValidation)
	s.mockRepo.AssertExpectations(s.T())
}

func strPtr(v string) *string { return &v }

func (s *AccountServiceTestSuite) TestUpdateProfile() {
	svc := services.NewAccountService(s.mockRepo, decimal.Zero)
	stored := &domain.Account{AccountID: "acc-1", FullName: "Ana", NotificationPreference: domain.NotifyByEmail, IsActive: true}
	s.mockRepo.On("FindAccountByID", s.ctx, "acc-1").Return(stored, nil)

	sms := domain.NotifyBySMS
	s.mockRepo.On("UpdateAccountProfile", s.ctx, "acc-1", domain.AccountProfile{
		FullName:               "Ana Maria",
		Phone:                  "+573001112233",
		NotificationPreference: domain.NotifyBySMS,
	}, mock.AnythingOfType("time.Time")).Return(nil).Once()

	account, err := svc.UpdateProfile(s.ctx, "acc-1", dto.UpdateProfileRequest{
		FullName:               strPtr(" Ana Maria "),
		Phone:                  strPtr("+573001112233"),
		NotificationPreference: &sms,
	})
	s.Require().NoError(err)
	s.Equal("Ana Maria", account.FullName)
	s.Equal(domain.NotifyBySMS, account.NotificationPreference)
	s.mockRepo.AssertExpectations(s.T())
}

func (s *AccountServiceTestSuite) TestUpdateProfile_Rejections() {
	svc := services.NewAccountService(s.mockRepo, decimal.Zero)
	s.mockRepo.On("FindAccountByID", s.ctx, "acc-1").
		Return(&domain.Account{AccountID: "acc-1", FullName: "Ana", NotificationPreference: domain.NotifyByEmail, IsActive: true}, nil)
	s.mockRepo.On("FindAccountByID", s.ctx, "closed").
		Return(&domain.Account{AccountID: "closed", FullName: "Old", NotificationPreference: domain.NotifyByEmail}, nil)
	s.mockRepo.On("FindAccountByID", s.ctx, "ghost").Return(nil, apperrors.ErrNotFound)

	both := domain.NotifyByBoth
	_, err := svc.UpdateProfile(s.ctx, "acc-1", dto.UpdateProfileRequest{NotificationPreference: &both})
	s.ErrorIs(err, apperrors.ErrValidation, "sms delivery needs a phone")

	_, err = svc.UpdateProfile(s.ctx, "acc-1", dto.UpdateProfileRequest{FullName: strPtr("   ")})
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = svc.UpdateProfile(s.ctx, "closed", dto.UpdateProfileRequest{FullName: strPtr("New")})
	s.ErrorIs(err, apperrors.ErrAccountNotFound)

	_, err = svc.UpdateProfile(s.ctx, "ghost", dto.UpdateProfileRequest{FullName: strPtr("New")})
	s.ErrorIs(err, apperrors.ErrAccountNotFound)

	unchanged, err := svc.UpdateProfile(s.ctx, "acc-1", dto.UpdateProfileRequest{})
	s.Require().NoError(err)
	s.Equal("Ana", unchanged.FullName)

	s.mockRepo.AssertNotCalled(s.T(), "UpdateAccountProfile", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
