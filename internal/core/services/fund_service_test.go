package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/drmelom/technical-test-BTG-Pactual/internal/apperrors"
	"github.com/drmelom/technical-test-BTG-Pactual/internal/core/domain"
	portsrepo "github.com/drmelom/technical-test-BTG-Pactual/internal/core/ports/repositories"
	"github.com/drmelom/technical-test-BTG-Pactual/internal/core/services"
	"github.com/drmelom/technical-test-BTG-Pactual/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mock FundRepository ---
type MockFundRepository struct {
	mock.Mock
}

func (m *MockFundRepository) FindFundByID(ctx context.Context, fundID int) (*domain.Fund, error) {
	args := m.Called(ctx, fundID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Fund), args.Error(1)
}

func (m *MockFundRepository) ListFunds(ctx context.Context, activeOnly bool) ([]domain.Fund, error) {
	args := m.Called(ctx, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Fund), args.Error(1)
}

func (m *MockFundRepository) SaveFund(ctx context.Context, fund domain.Fund) error {
	args := m.Called(ctx, fund)
	return args.Error(0)
}

var _ portsrepo.FundRepositoryFacade = (*MockFundRepository)(nil)

func TestInitializeFunds_SkipsExisting(t *testing.T) {
	ctx := context.Background()
	repo := new(MockFundRepository)
	repo.On("SaveFund", ctx, mock.MatchedBy(func(f domain.Fund) bool { return f.FundID == 1 })).Return(apperrors.ErrDuplicate).Once()
	repo.On("SaveFund", ctx, mock.MatchedBy(func(f domain.Fund) bool { return f.FundID != 1 })).Return(nil).Times(4)

	svc := services.NewFundService(repo, memory.New())
	require.NoError(t, svc.InitializeFunds(ctx))
	repo.AssertExpectations(t)
}

func TestInitializeFunds_PropagatesStoreFailure(t *testing.T) {
	ctx := context.Background()
	repo := new(MockFundRepository)
	repo.On("SaveFund", ctx, mock.Anything).Return(errors.New("relation \"funds\" does not exist")).Once()

	svc := services.NewFundService(repo, memory.New())
	err := svc.InitializeFunds(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to seed fund 1")
}

func TestFundService_CatalogAndSubscriptions(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := services.NewFundService(store, store)
	require.NoError(t, svc.InitializeFunds(ctx))
	require.NoError(t, svc.InitializeFunds(ctx), "seeding is idempotent")
	require.NoError(t, store.SaveFund(ctx, domain.Fund{FundID: 6, Name: "RETIRED", IsActive: false}))

	funds, err := svc.ListFunds(ctx)
	require.NoError(t, err)
	assert.Len(t, funds, 5)

	_, err = svc.GetFund(ctx, 99)
	assert.ErrorIs(t, err, apperrors.ErrFundNotFound)

	fund, err := svc.GetFund(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, "FDO-ACCIONES", fund.Name)

	subs, err := svc.ListAccountSubscriptions(ctx, "acc-1")
	require.NoError(t, err)
	assert.NotNil(t, subs)
	assert.Empty(t, subs)

	require.NoError(t, store.CreateActiveSubscription(ctx, domain.Subscription{SubscriptionID: "s1", AccountID: "acc-1", FundID: 6, Amount: decimal.NewFromInt(1000), IsActive: true}))
	subs, err = svc.ListAccountSubscriptions(ctx, "acc-1")
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "RETIRED", subs[0].FundName, "names resolve for inactive funds too")
}
