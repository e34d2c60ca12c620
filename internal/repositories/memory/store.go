// Package memory is a process-local store used for development and tests.
// All four repositories share one lock, so each call is atomic on its own.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/drmelom/technical-test-BTG-Pactual/internal/apperrors"
	"github.com/drmelom/technical-test-BTG-Pactual/internal/core/domain"
	portsrepo "github.com/drmelom/technical-test-BTG-Pactual/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

type activeKey struct {
	accountID string
	fundID    int
}

type Store struct {
	mu sync.RWMutex

	accounts       map[string]domain.Account
	accountByEmail map[string]string

	funds map[int]domain.Fund

	subscriptions map[string]domain.Subscription
	active        map[activeKey]string // (account, fund) -> active subscription ID

	transactions map[string]domain.Transaction
}

func New() *Store {
	return &Store{
		accounts:       make(map[string]domain.Account),
		accountByEmail: make(map[string]string),
		funds:          make(map[int]domain.Fund),
		subscriptions:  make(map[string]domain.Subscription),
		active:         make(map[activeKey]string),
		transactions:   make(map[string]domain.Transaction),
	}
}

// NewRepositoryProvider wires a fresh Store into every repository slot.
func NewRepositoryProvider() portsrepo.RepositoryProvider {
	s := New()
	return portsrepo.RepositoryProvider{
		AccountRepo:      s,
		FundRepo:         s,
		SubscriptionRepo: s,
		LedgerRepo:       s,
	}
}

var (
	_ portsrepo.AccountRepositoryFacade      = (*Store)(nil)
	_ portsrepo.FundRepositoryFacade         = (*Store)(nil)
	_ portsrepo.SubscriptionRepositoryFacade = (*Store)(nil)
	_ portsrepo.LedgerRepositoryFacade       = (*Store)(nil)
)

// Accounts

func (s *Store) SaveAccount(_ context.Context, account domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(account.Email)
	if _, exists := s.accounts[account.AccountID]; exists {
		return apperrors.ErrDuplicate
	}
	if _, exists := s.accountByEmail[email]; exists {
		return apperrors.ErrDuplicate
	}
	s.accounts[account.AccountID] = account
	s.accountByEmail[email] = account.AccountID
	return nil
}

func (s *Store) FindAccountByID(_ context.Context, accountID string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if a, ok := s.accounts[accountID]; ok {
		return &a, nil
	}
	return nil, apperrors.ErrNotFound
}

func (s *Store) FindAccountByEmail(_ context.Context, email string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.accountByEmail[strings.ToLower(email)]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	a := s.accounts[id]
	return &a, nil
}

func (s *Store) UpdateAccountProfile(ctx context.Context, accountID string, profile domain.AccountProfile, now time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[accountID]
	if !ok {
		return apperrors.ErrNotFound
	}
	a.FullName = profile.FullName
	a.Phone = profile.Phone
	a.NotificationPreference = profile.NotificationPreference
	a.LastUpdatedAt = now
	s.accounts[accountID] = a
	return nil
}

func (s *Store) SetRefreshToken(ctx context.Context, accountID string, tokenHash string, expiresAt time.Time, now time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[accountID]
	if !ok {
		return apperrors.ErrNotFound
	}
	a.RefreshTokenHash = tokenHash
	a.RefreshTokenExpiresAt = nil
	if tokenHash != "" {
		a.RefreshTokenExpiresAt = &expiresAt
	}
	a.LastUpdatedAt = now
	s.accounts[accountID] = a
	return nil
}

func (s *Store) GetBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	if err := ctx.Err(); err != nil {
		return decimal.Zero, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[accountID]
	if !ok {
		return decimal.Zero, apperrors.ErrNotFound
	}
	return a.Balance, nil
}

func (s *Store) CompareAndSetBalance(ctx context.Context, accountID string, expected, newBalance decimal.Decimal, now time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[accountID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if !a.Balance.Equal(expected) {
		return apperrors.ErrConflict
	}
	a.Balance = newBalance
	a.LastUpdatedAt = now
	s.accounts[accountID] = a
	return nil
}

// Funds

func (s *Store) SaveFund(_ context.Context, fund domain.Fund) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.funds[fund.FundID]; exists {
		return apperrors.ErrDuplicate
	}
	s.funds[fund.FundID] = fund
	return nil
}

func (s *Store) FindFundByID(_ context.Context, fundID int) (*domain.Fund, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if f, ok := s.funds[fundID]; ok {
		return &f, nil
	}
	return nil, apperrors.ErrNotFound
}

func (s *Store) ListFunds(_ context.Context, activeOnly bool) ([]domain.Fund, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	funds := make([]domain.Fund, 0, len(s.funds))
	for _, f := range s.funds {
		if activeOnly && !f.IsActive {
			continue
		}
		funds = append(funds, f)
	}
	sort.Slice(funds, func(i, j int) bool { return funds[i].FundID < funds[j].FundID })
	return funds, nil
}

// Subscriptions

func (s *Store) CreateActiveSubscription(ctx context.Context, sub domain.Subscription) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := activeKey{sub.AccountID, sub.FundID}
	if _, exists := s.active[key]; exists {
		return apperrors.ErrDuplicate
	}
	if _, exists := s.subscriptions[sub.SubscriptionID]; exists {
		return apperrors.ErrDuplicate
	}
	sub.IsActive = true
	sub.CancelledAt = nil
	s.subscriptions[sub.SubscriptionID] = sub
	s.active[key] = sub.SubscriptionID
	return nil
}

func (s *Store) DeactivateSubscription(ctx context.Context, accountID string, fundID int, cancelledAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := activeKey{accountID, fundID}
	id, ok := s.active[key]
	if !ok {
		return apperrors.ErrNotFound
	}
	sub := s.subscriptions[id]
	sub.IsActive = false
	at := cancelledAt
	sub.CancelledAt = &at
	s.subscriptions[id] = sub
	delete(s.active, key)
	return nil
}

func (s *Store) FindActiveSubscription(_ context.Context, accountID string, fundID int) (*domain.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.active[activeKey{accountID, fundID}]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	sub := s.subscriptions[id]
	return &sub, nil
}

func (s *Store) ListActiveSubscriptions(_ context.Context, accountID string) ([]domain.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	subs := make([]domain.Subscription, 0)
	for key, id := range s.active {
		if key.accountID == accountID {
			subs = append(subs, s.subscriptions[id])
		}
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].SubscribedAt.Before(subs[j].SubscribedAt) })
	return subs, nil
}

// SubscriptionsForAccount returns every subscription row of an account, active or not.
func (s *Store) SubscriptionsForAccount(accountID string) []domain.Subscription {
	s.mu.RLock()
	defer s.mu.RUnlock()

	subs := make([]domain.Subscription, 0)
	for _, sub := range s.subscriptions {
		if sub.AccountID == accountID {
			subs = append(subs, sub)
		}
	}
	return subs
}

// Ledger

func (s *Store) CreateTransaction(ctx context.Context, txn domain.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.transactions[txn.TransactionID]; exists {
		return apperrors.ErrDuplicate
	}
	s.transactions[txn.TransactionID] = txn
	return nil
}

func (s *Store) UpdateTransactionStatus(ctx context.Context, transactionID string, status domain.TransactionStatus, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	txn, ok := s.transactions[transactionID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if err := txn.TransitionTo(status, at); err != nil {
		return apperrors.ErrInvalidStatusTransition
	}
	s.transactions[transactionID] = txn
	return nil
}

func (s *Store) FindTransactionByID(_ context.Context, transactionID string) (*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if t, ok := s.transactions[transactionID]; ok {
		return &t, nil
	}
	return nil, apperrors.ErrNotFound
}

func (s *Store) QueryTransactions(_ context.Context, accountID string, filter domain.TransactionFilter, limit int, offset int) ([]domain.Transaction, int, error) {
	s.mu.RLock()
	matched := make([]domain.Transaction, 0)
	for _, t := range s.transactions {
		if t.AccountID == accountID && filter.Matches(t) {
			matched = append(matched, t)
		}
	}
	s.mu.RUnlock()

	sortNewestFirst(matched)
	total := len(matched)
	if offset < 0 || limit < 1 {
		return nil, 0, fmt.Errorf("%w: offset %d limit %d", apperrors.ErrValidation, offset, limit)
	}
	if offset >= total {
		return []domain.Transaction{}, total, nil
	}
	end := min(offset+limit, total)
	return matched[offset:end], total, nil
}

func (s *Store) ListRecentTransactions(_ context.Context, limit int) ([]domain.Transaction, error) {
	s.mu.RLock()
	all := make([]domain.Transaction, 0, len(s.transactions))
	for _, t := range s.transactions {
		all = append(all, t)
	}
	s.mu.RUnlock()

	sortNewestFirst(all)
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func sortNewestFirst(txns []domain.Transaction) {
	sort.Slice(txns, func(i, j int) bool {
		if !txns[i].CreatedAt.Equal(txns[j].CreatedAt) {
			return txns[i].CreatedAt.After(txns[j].CreatedAt)
		}
		return txns[i].TransactionID > txns[j].TransactionID
	})
}
