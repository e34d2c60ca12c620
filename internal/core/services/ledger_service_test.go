package services_test

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/drmelom/technical-test-BTG-Pactual/internal/apperrors"
	"github.com/drmelom/technical-test-BTG-Pactual/internal/core/domain"
	portssvc "github.com/drmelom/technical-test-BTG-Pactual/internal/core/ports/services"
	"github.com/drmelom/technical-test-BTG-Pactual/internal/core/services"
	"github.com/drmelom/technical-test-BTG-Pactual/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type LedgerServiceTestSuite struct {
	suite.Suite
	ctx   context.Context
	store *memory.Store
	svc   portssvc.LedgerSvcFacade
	base  time.Time
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}

func (s *LedgerServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memory.New()
	s.svc = services.NewLedgerService(s.store, s.store)
	s.base = time.Date(2025, 5, 10, 9, 0, 0, 0, time.UTC)

	for _, id := range []string{"owner", "intruder"} {
		s.Require().NoError(s.store.SaveAccount(s.ctx, domain.Account{AccountID: id, Email: id + "@example.com", Balance: decimal.NewFromInt(500000), IsActive: true}))
	}
	kinds := []domain.TransactionKind{domain.KindSubscription, domain.KindSubscription, domain.KindCancellation}
	for i, kind := range kinds {
		s.Require().NoError(s.store.CreateTransaction(s.ctx, domain.Transaction{
			TransactionID: fmt.Sprintf("TXN_20250510_0000000%d", i+1),
			AccountID:     "owner",
			FundID:        1,
			Kind:          kind,
			Amount:        decimal.NewFromInt(75000),
			Status:        domain.StatusCompleted,
			CreatedAt:     s.base.Add(time.Duration(i) * time.Minute),
		}))
	}
}

func (s *LedgerServiceTestSuite) TestHistory_Pagination() {
	page, err := s.svc.History(s.ctx, "owner", portssvc.HistoryQuery{Page: 2, PageSize: 2})
	s.Require().NoError(err)
	s.Equal(3, page.Total)
	s.Equal(2, page.TotalPages)
	s.Equal(2, page.Page)
	s.Require().Len(page.Items, 1)
	s.Equal("TXN_20250510_00000001", page.Items[0].TransactionID, "oldest entry lands on the last page")

	first, err := s.svc.History(s.ctx, "owner", portssvc.HistoryQuery{Page: 1, PageSize: 2})
	s.Require().NoError(err)
	s.Require().Len(first.Items, 2)
	s.Equal("TXN_20250510_00000003", first.Items[0].TransactionID)
}

func (s *LedgerServiceTestSuite) TestHistory_PastTheEnd() {
	page, err := s.svc.History(s.ctx, "owner", portssvc.HistoryQuery{Page: 5, PageSize: 2})
	s.Require().NoError(err)
	s.NotNil(page.Items)
	s.Empty(page.Items)
	s.Equal(3, page.Total)
	s.Equal(2, page.TotalPages)
}

func (s *LedgerServiceTestSuite) TestHistory_HugePageNumber() {
	for _, n := range []int{1 << 62, math.MaxInt} {
		page, err := s.svc.History(s.ctx, "owner", portssvc.HistoryQuery{Page: n, PageSize: 4})
		s.Require().NoError(err, "page=%d", n)
		s.Empty(page.Items)
		s.Equal(3, page.Total)
		s.Equal(1, page.TotalPages)
		s.Equal(n, page.Page)
	}
}

func (s *LedgerServiceTestSuite) TestHistory_Filter() {
	kind := domain.KindCancellation
	page, err := s.svc.History(s.ctx, "owner", portssvc.HistoryQuery{Page: 1, PageSize: 10, Filter: domain.TransactionFilter{Kind: &kind}})
	s.Require().NoError(err)
	s.Equal(1, page.Total)
	s.Equal(domain.KindCancellation, page.Items[0].Kind)
}

func (s *LedgerServiceTestSuite) TestHistory_EmptyAccount() {
	page, err := s.svc.History(s.ctx, "intruder", portssvc.HistoryQuery{Page: 1, PageSize: 10})
	s.Require().NoError(err)
	s.Empty(page.Items)
	s.Zero(page.Total)
	s.Zero(page.TotalPages)
}

func (s *LedgerServiceTestSuite) TestHistory_Validation() {
	_, err := s.svc.History(s.ctx, "owner", portssvc.HistoryQuery{Page: 0, PageSize: 10})
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = s.svc.History(s.ctx, "owner", portssvc.HistoryQuery{Page: 1, PageSize: 101})
	s.ErrorIs(err, apperrors.ErrValidation)

	bogus := domain.TransactionStatus("reversed")
	_, err = s.svc.History(s.ctx, "owner", portssvc.HistoryQuery{Page: 1, PageSize: 10, Filter: domain.TransactionFilter{Status: &bogus}})
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = s.svc.History(s.ctx, "ghost", portssvc.HistoryQuery{Page: 1, PageSize: 10})
	s.ErrorIs(err, apperrors.ErrAccountNotFound)
}

func (s *LedgerServiceTestSuite) TestGetTransaction_Ownership() {
	txn, err := s.svc.GetTransaction(s.ctx, "TXN_20250510_00000002", "owner")
	s.Require().NoError(err)
	s.Equal("owner", txn.AccountID)

	_, err = s.svc.GetTransaction(s.ctx, "TXN_20250510_00000002", "intruder")
	s.ErrorIs(err, apperrors.ErrNotAuthorized)

	_, err = s.svc.GetTransaction(s.ctx, "TXN_MISSING", "owner")
	s.ErrorIs(err, apperrors.ErrTransactionNotFound)
}

func (s *LedgerServiceTestSuite) TestAdminQueries() {
	txn, err := s.svc.GetTransactionAdmin(s.ctx, "TXN_20250510_00000002")
	s.Require().NoError(err)
	s.Equal("owner", txn.AccountID)

	_, err = s.svc.GetTransactionAdmin(s.ctx, "TXN_MISSING")
	s.ErrorIs(err, apperrors.ErrTransactionNotFound)

	recent, err := s.svc.RecentTransactions(s.ctx, 2)
	s.Require().NoError(err)
	s.Require().Len(recent, 2)
	s.Equal("TXN_20250510_00000003", recent[0].TransactionID)

	all, err := s.svc.RecentTransactions(s.ctx, 0)
	s.Require().NoError(err)
	s.Len(all, 3)
}
