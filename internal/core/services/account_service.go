package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/drmelom/technical-test-BTG-Pactual/internal/apperrors"
	"github.com/drmelom/technical-test-BTG-Pactual/internal/core/domain"
	portsrepo "github.com/drmelom/technical-test-BTG-Pactual/internal/core/ports/repositories"
	portssvc "github.com/drmelom/technical-test-BTG-Pactual/internal/core/ports/services"
	"github.com/drmelom/technical-test-BTG-Pactual/internal/dto"
	"github.com/drmelom/technical-test-BTG-Pactual/internal/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type accountService struct {
	BaseService
	accountRepo    portsrepo.AccountRepositoryFacade
	initialBalance decimal.Decimal
}

// NewAccountService creates the account service. New client accounts open with initialBalance.
func NewAccountService(repo portsrepo.AccountRepositoryFacade, initialBalance decimal.Decimal) portssvc.AccountSvcFacade {
	return &accountService{
		accountRepo:    repo,
		initialBalance: initialBalance,
	}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

func (s *accountService) Register(ctx context.Context, req dto.RegisterRequest) (*domain.Account, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", apperrors.ErrValidation)
	}
	preference := req.NotificationPreference
	if preference == "" {
		preference = domain.NotifyByEmail
	}
	profile := domain.AccountProfile{FullName: req.FullName, Phone: req.Phone, NotificationPreference: preference}
	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	account, err := newAccount(email, req.FullName, req.Phone, req.Password, domain.RoleClient, preference, s.initialBalance)
	if err != nil {
		if !errors.Is(err, apperrors.ErrValidation) {
			s.LogError(ctx, err, "Failed to hash password")
		}
		return nil, err
	}

	if err := s.accountRepo.SaveAccount(ctx, *account); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, fmt.Errorf("%w: email %s is already registered", apperrors.ErrDuplicate, email)
		}
		s.LogError(ctx, err, "Failed to save account")
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	s.LogInfo(ctx, "Account registered", slog.String("account_id", account.AccountID))
	return account, nil
}

// EnsureAdmin creates the administrator account unless the email is already registered.
func (s *accountService) EnsureAdmin(ctx context.Context, email string, password string, balance decimal.Decimal) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return fmt.Errorf("%w: admin email and password are required", apperrors.ErrValidation)
	}

	account, err := newAccount(email, "Administrator", "", password, domain.RoleAdmin, domain.NotifyByEmail, balance)
	if err != nil {
		return err
	}
	err = s.accountRepo.SaveAccount(ctx, *account)
	if errors.Is(err, apperrors.ErrDuplicate) {
		s.LogDebug(ctx, "Admin account already exists", slog.String("email", email))
		return nil
	}
	if err != nil {
		s.LogError(ctx, err, "Failed to save admin account")
		return fmt.Errorf("failed to save admin account: %w", err)
	}
	s.LogInfo(ctx, "Admin account created", slog.String("account_id", account.AccountID))
	return nil
}

func newAccount(email, fullName, phone, password string, role domain.Role, preference domain.NotificationPreference, balance decimal.Decimal) (*domain.Account, error) {
	hash, err := utils.HashPassword(password)
	if errors.Is(err, utils.ErrPasswordTooLong) {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	return &domain.Account{
		AccountID:              uuid.NewString(),
		Email:                  email,
		FullName:               strings.TrimSpace(fullName),
		Phone:                  phone,
		Role:                   role,
		NotificationPreference: preference,
		PasswordHash:           hash,
		Balance:                balance,
		IsActive:               true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			LastUpdatedAt: now,
		},
	}, nil
}

func (s *accountService) Authenticate(ctx context.Context, email string, password string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			utils.CheckPasswordHash(password, "")
			return nil, apperrors.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	if !account.IsActive || !utils.CheckPasswordHash(password, account.PasswordHash) {
		return nil, apperrors.ErrUnauthorized
	}
	return account, nil
}

func (s *accountService) GetAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, accountID)
		}
		return nil, fmt.Errorf("failed to get account %s: %w", accountID, err)
	}
	return account, nil
}

// UpdateProfile merges the provided fields into the stored profile. An empty request returns the account unchanged.
func (s *accountService) UpdateProfile(ctx context.Context, accountID string, req dto.UpdateProfileRequest) (*domain.Account, error) {
	account, err := s.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !account.IsActive {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, accountID)
	}

	profile := account.Profile()
	if req.IsEmpty() {
		return account, nil
	}
	if req.FullName != nil {
		profile.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Phone != nil {
		profile.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.NotificationPreference != nil {
		profile.NotificationPreference = *req.NotificationPreference
	}
	if profile.FullName == "" {
		return nil, fmt.Errorf("%w: full name must not be empty", apperrors.ErrValidation)
	}
	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	now := time.Now().UTC()
	if err := s.accountRepo.UpdateAccountProfile(ctx, accountID, profile, now); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, accountID)
		}
		s.LogError(ctx, err, "Failed to update profile", slog.String("account_id", accountID))
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	account.FullName = profile.FullName
	account.Phone = profile.Phone
	account.NotificationPreference = profile.NotificationPreference
	account.LastUpdatedAt = now
	s.LogInfo(ctx, "Profile updated",
		slog.String("account_id", accountID),
		slog.String("notification_preference", string(profile.NotificationPreference)))
	return account, nil
}
