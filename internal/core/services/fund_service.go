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
)

type fundService struct {
	BaseService
	fundRepo         portsrepo.FundRepositoryFacade
	subscriptionRepo portsrepo.SubscriptionReader
}

// NewFundService creates the catalog service.
func NewFundService(fundRepo portsrepo.FundRepositoryFacade, subscriptionRepo portsrepo.SubscriptionReader) portssvc.FundSvcFacade {
	return &fundService{
		fundRepo:         fundRepo,
		subscriptionRepo: subscriptionRepo,
	}
}

var _ portssvc.FundSvcFacade = (*fundService)(nil)

func (s *fundService) ListFunds(ctx context.Context) ([]domain.Fund, error) {
	funds, err := s.fundRepo.ListFunds(ctx, true)
	if err != nil {
		s.LogError(ctx, err, "Failed to list funds")
		return nil, fmt.Errorf("failed to list funds: %w", err)
	}
	return funds, nil
}

func (s *fundService) GetFund(ctx context.Context, fundID int) (*domain.Fund, error) {
	fund, err := s.fundRepo.FindFundByID(ctx, fundID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %d", apperrors.ErrFundNotFound, fundID)
		}
		return nil, fmt.Errorf("failed to get fund %d: %w", fundID, err)
	}
	return fund, nil
}

func (s *fundService) ListAccountSubscriptions(ctx context.Context, accountID string) ([]domain.Subscription, error) {
	subs, err := s.subscriptionRepo.ListActiveSubscriptions(ctx, accountID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list subscriptions", slog.String("account_id", accountID))
		return nil, fmt.Errorf("failed to list subscriptions for account %s: %w", accountID, err)
	}
	if len(subs) == 0 {
		return []domain.Subscription{}, nil
	}

	funds, err := s.fundRepo.ListFunds(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list funds: %w", err)
	}
	names := make(map[int]string, len(funds))
	for _, f := range funds {
		names[f.FundID] = f.Name
	}
	for i := range subs {
		subs[i].FundName = names[subs[i].FundID]
	}
	return subs, nil
}

// InitializeFunds inserts every default fund that is not in the catalog yet.
func (s *fundService) InitializeFunds(ctx context.Context) error {
	now := time.Now().UTC()
	created := 0
	for _, fund := range domain.DefaultFunds() {
		fund.CreatedAt = now
		fund.LastUpdatedAt = now
		err := s.fundRepo.SaveFund(ctx, fund)
		if errors.Is(err, apperrors.ErrDuplicate) {
			continue
		}
		if err != nil {
			s.LogError(ctx, err, "Failed to seed fund", slog.Int("fund_id", fund.FundID))
			return fmt.Errorf("failed to seed fund %d: %w", fund.FundID, err)
		}
		created++
	}
	s.LogInfo(ctx, "Fund catalog initialized", slog.Int("created", created))
	return nil
}
