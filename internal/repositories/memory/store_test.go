package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/drmelom/technical-test-BTG-Pactual/internal/apperrors"
	"github.com/drmelom/technical-test-BTG-Pactual/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompareAndSetBalance(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.SaveAccount(ctx, domain.Account{AccountID: "a1", Email: "a@x.co", Balance: decimal.NewFromInt(500000)}))

	now := time.Now()
	err := s.CompareAndSetBalance(ctx, "a1", decimal.NewFromInt(1), decimal.NewFromInt(2), now)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	require.NoError(t, s.CompareAndSetBalance(ctx, "a1", decimal.NewFromInt(500000), decimal.NewFromInt(400000), now))
	bal, err := s.GetBalance(ctx, "a1")
	require.NoError(t, err)
	assert.True(t, bal.Equal(decimal.NewFromInt(400000)))

	err = s.CompareAndSetBalance(ctx, "missing", decimal.Zero, decimal.Zero, now)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSaveAccount_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.SaveAccount(ctx, domain.Account{AccountID: "a1", Email: "Ana@x.co"}))
	err := s.SaveAccount(ctx, domain.Account{AccountID: "a2", Email: "ana@x.co"})
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)

	acc, err := s.FindAccountByEmail(ctx, "ANA@X.CO")
	require.NoError(t, err)
	assert.Equal(t, "a1", acc.AccountID)
}

func TestActiveSubscriptionUniqueness(t *testing.T) {
	ctx := context.Background()
	s := New()
	sub := domain.Subscription{SubscriptionID: "s1", AccountID: "a1", FundID: 1, Amount: decimal.NewFromInt(75000), SubscribedAt: time.Now()}

	require.NoError(t, s.CreateActiveSubscription(ctx, sub))
	sub.SubscriptionID = "s2"
	assert.ErrorIs(t, s.CreateActiveSubscription(ctx, sub), apperrors.ErrDuplicate)

	cancelledAt := time.Now()
	require.NoError(t, s.DeactivateSubscription(ctx, "a1", 1, cancelledAt))
	assert.ErrorIs(t, s.DeactivateSubscription(ctx, "a1", 1, cancelledAt), apperrors.ErrNotFound)

	// a new active row is allowed once the previous one is inactive
	require.NoError(t, s.CreateActiveSubscription(ctx, sub))

	rows := s.SubscriptionsForAccount("a1")
	assert.Len(t, rows, 2)
}

func TestActiveSubscriptionUniqueness_Concurrent(t *testing.T) {
	ctx := context.Background()
	s := New()

	var wg sync.WaitGroup
	var mu sync.Mutex
	created := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := s.CreateActiveSubscription(ctx, domain.Subscription{SubscriptionID: fmt.Sprintf("s%d", i), AccountID: "a1", FundID: 3})
			if err == nil {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1, created)
}

func TestUpdateTransactionStatus(t *testing.T) {
	ctx := context.Background()
	s := New()
	now := time.Now()
	require.NoError(t, s.CreateTransaction(ctx, domain.Transaction{TransactionID: "t1", AccountID: "a1", Status: domain.StatusPending, CreatedAt: now}))
	assert.ErrorIs(t, s.CreateTransaction(ctx, domain.Transaction{TransactionID: "t1"}), apperrors.ErrDuplicate)

	require.NoError(t, s.UpdateTransactionStatus(ctx, "t1", domain.StatusCompleted, now))
	assert.ErrorIs(t, s.UpdateTransactionStatus(ctx, "t1", domain.StatusFailed, now), apperrors.ErrInvalidStatusTransition)
	assert.ErrorIs(t, s.UpdateTransactionStatus(ctx, "nope", domain.StatusFailed, now), apperrors.ErrNotFound)

	txn, err := s.FindTransactionByID(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, txn.Status)
	assert.NotNil(t, txn.CompletedAt)
}

func TestQueryTransactions_OrderAndWindow(t *testing.T) {
	ctx := context.Background()
	s := New()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"TXN_A", "TXN_B", "TXN_C"} {
		require.NoError(t, s.CreateTransaction(ctx, domain.Transaction{
			TransactionID: id,
			AccountID:     "a1",
			Kind:          domain.KindSubscription,
			Status:        domain.StatusCompleted,
			CreatedAt:     base.Add(time.Duration(i) * time.Minute),
		}))
	}
	// same timestamp as TXN_C, ordered by ID desc
	require.NoError(t, s.CreateTransaction(ctx, domain.Transaction{TransactionID: "TXN_D", AccountID: "a1", Kind: domain.KindCancellation, Status: domain.StatusFailed, CreatedAt: base.Add(2 * time.Minute)}))
	require.NoError(t, s.CreateTransaction(ctx, domain.Transaction{TransactionID: "TXN_X", AccountID: "other", CreatedAt: base}))

	items, total, err := s.QueryTransactions(ctx, "a1", domain.TransactionFilter{}, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	require.Len(t, items, 2)
	assert.Equal(t, "TXN_D", items[0].TransactionID)
	assert.Equal(t, "TXN_C", items[1].TransactionID)

	items, total, err = s.QueryTransactions(ctx, "a1", domain.TransactionFilter{}, 2, 10)
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	assert.Empty(t, items)

	failed := domain.StatusFailed
	items, total, err = s.QueryTransactions(ctx, "a1", domain.TransactionFilter{Status: &failed}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "TXN_D", items[0].TransactionID)

	recent, err := s.ListRecentTransactions(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, recent, 3)
}

func TestQueryTransactions_RejectsNegativeWindow(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.CreateTransaction(ctx, domain.Transaction{TransactionID: "TXN_A", AccountID: "a1", Kind: domain.KindSubscription, Status: domain.StatusCompleted}))

	_, _, err := s.QueryTransactions(ctx, "a1", domain.TransactionFilter{}, 2, -4)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, _, err = s.QueryTransactions(ctx, "a1", domain.TransactionFilter{}, 0, 0)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestUpdateAccountProfile_KeepsBalance(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.SaveAccount(ctx, domain.Account{AccountID: "a1", Email: "a@x.co", FullName: "Ana", NotificationPreference: domain.NotifyByEmail, Balance: decimal.NewFromInt(500000)}))

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.UpdateAccountProfile(ctx, "a1", domain.AccountProfile{FullName: "Ana Maria", Phone: "+573001112233", NotificationPreference: domain.NotifyByBoth}, now))

	a, err := s.FindAccountByID(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "Ana Maria", a.FullName)
	assert.Equal(t, domain.NotifyByBoth, a.NotificationPreference)
	assert.True(t, a.Balance.Equal(decimal.NewFromInt(500000)))
	assert.Equal(t, now, a.LastUpdatedAt)

	assert.ErrorIs(t, s.UpdateAccountProfile(ctx, "ghost", domain.AccountProfile{}, now), apperrors.ErrNotFound)
}

func TestSetRefreshToken(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.SaveAccount(ctx, domain.Account{AccountID: "a1", Email: "a@x.co"}))

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.SetRefreshToken(ctx, "a1", "hash-1", now.Add(time.Hour), now))
	a, err := s.FindAccountByID(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "hash-1", a.RefreshTokenHash)
	require.NotNil(t, a.RefreshTokenExpiresAt)
	assert.Equal(t, now.Add(time.Hour), *a.RefreshTokenExpiresAt)

	require.NoError(t, s.SetRefreshToken(ctx, "a1", "", time.Time{}, now))
	a, err = s.FindAccountByID(ctx, "a1")
	require.NoError(t, err)
	assert.Empty(t, a.RefreshTokenHash)
	assert.Nil(t, a.RefreshTokenExpiresAt)

	assert.ErrorIs(t, s.SetRefreshToken(ctx, "ghost", "hash", now, now), apperrors.ErrNotFound)
}
