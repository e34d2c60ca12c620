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
	"github.com/drmelom/technical-test-BTG-Pactual/internal/middleware"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	defaultStoreTimeout  = 5 * time.Second
	defaultCASRetries    = 1
	defaultTxnIDAttempts = 3

	// compensating balance writes get extra CAS attempts on top of the configured retries
	compensationExtraRetries = 3
)

// workflowService implements the subscribe and cancel workflows. The stores share no
// transaction, so every write after the pending ledger entry is undone explicitly on failure.
type workflowService struct {
	BaseService
	fundRepo         portsrepo.FundReader
	accountRepo      portsrepo.AccountRepositoryFacade
	subscriptionRepo portsrepo.SubscriptionRepositoryFacade
	ledgerRepo       portsrepo.LedgerRepositoryFacade
	notifier         portssvc.NotificationDispatcher

	newTxnID      TransactionIDGenerator
	now           func() time.Time
	storeTimeout  time.Duration
	casRetries    int
	txnIDAttempts int
}

// WorkflowOption is a functional option for configuring the workflow service
type WorkflowOption func(*workflowService)

// WithNotificationDispatcher sets where completed outcomes are reported.
func WithNotificationDispatcher(d portssvc.NotificationDispatcher) WorkflowOption {
	return func(s *workflowService) {
		s.notifier = d
	}
}

// WithStoreTimeout bounds every individual store call.
func WithStoreTimeout(d time.Duration) WorkflowOption {
	return func(s *workflowService) {
		if d > 0 {
			s.storeTimeout = d
		}
	}
}

// WithCASRetries sets how many times a lost balance compare-and-set is retried.
func WithCASRetries(n int) WorkflowOption {
	return func(s *workflowService) {
		if n >= 0 {
			s.casRetries = n
		}
	}
}

// WithTransactionIDGenerator replaces the ledger ID generator and the number of attempts made on collision.
func WithTransactionIDGenerator(gen TransactionIDGenerator, maxAttempts int) WorkflowOption {
	return func(s *workflowService) {
		if gen != nil {
			s.newTxnID = gen
		}
		if maxAttempts > 0 {
			s.txnIDAttempts = maxAttempts
		}
	}
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) WorkflowOption {
	return func(s *workflowService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewWorkflowService creates the workflow engine over the given stores.
func NewWorkflowService(
	fundRepo portsrepo.FundReader,
	accountRepo portsrepo.AccountRepositoryFacade,
	subscriptionRepo portsrepo.SubscriptionRepositoryFacade,
	ledgerRepo portsrepo.LedgerRepositoryFacade,
	options ...WorkflowOption,
) portssvc.WorkflowSvc {
	svc := &workflowService{
		fundRepo:         fundRepo,
		accountRepo:      accountRepo,
		subscriptionRepo: subscriptionRepo,
		ledgerRepo:       ledgerRepo,
		newTxnID:         NewTransactionID,
		now:              func() time.Time { return time.Now().UTC() },
		storeTimeout:     defaultStoreTimeout,
		casRetries:       defaultCASRetries,
		txnIDAttempts:    defaultTxnIDAttempts,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.WorkflowSvc = (*workflowService)(nil)

// Subscribe validates, records a pending ledger entry, debits the balance, opens the
// subscription and completes the entry, in that order.
func (s *workflowService) Subscribe(ctx context.Context, accountID string, fundID int, amount decimal.Decimal) (*domain.SubscribeResult, error) {
	ctx = middleware.WithLogger(ctx, s.GetLogger(ctx).With(
		slog.String("workflow", string(domain.KindSubscription)),
		slog.String("account_id", accountID),
		slog.Int("fund_id", fundID),
		slog.String("amount", amount.String()),
	))

	if !domain.IsWholeUnits(amount) {
		return nil, fmt.Errorf("%w: amount %s has more than %d decimal places", apperrors.ErrValidation, amount.String(), domain.CurrencyScale)
	}
	fund, err := s.loadFund(ctx, fundID)
	if err != nil {
		return nil, err
	}
	if !fund.IsActive {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrFundInactive, fund.Name)
	}
	if amount.LessThan(fund.MinimumAmount) {
		return nil, fmt.Errorf("%w: minimum for %s is %s", apperrors.ErrBelowMinimumAmount, fund.Name, fund.MinimumAmount.String())
	}
	account, err := s.loadAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.Balance.LessThan(amount) {
		return nil, fmt.Errorf("%w: balance %s, requested %s", apperrors.ErrInsufficientFunds, account.Balance.String(), amount.String())
	}
	if err := s.ensureNotSubscribed(ctx, accountID, fundID); err != nil {
		return nil, err
	}

	txn, err := s.openTransaction(ctx, accountID, fund.FundID, domain.KindSubscription, amount, "Subscription to fund "+fund.Name)
	if err != nil {
		return nil, err
	}
	ctx = middleware.WithLogger(ctx, s.GetLogger(ctx).With(slog.String("transaction_id", txn.TransactionID)))

	newBalance, err := s.adjustBalance(ctx, accountID, amount.Neg(), s.casRetries)
	if err != nil {
		s.LogWarn(ctx, "Debit failed", slog.String("error", err.Error()))
		if rbErr := s.rollback(ctx, txn, compensation{}, err); rbErr != nil {
			return nil, operationFailed("debit balance", err)
		}
		return nil, workflowError("debit balance", err)
	}

	subscription := domain.Subscription{
		SubscriptionID: uuid.NewString(),
		AccountID:      accountID,
		FundID:         fund.FundID,
		Amount:         amount,
		IsActive:       true,
		SubscribedAt:   s.now(),
	}
	err = s.exec(ctx, func(ctx context.Context) error {
		return s.subscriptionRepo.CreateActiveSubscription(ctx, subscription)
	})
	if err != nil {
		rbErr := s.rollback(ctx, txn, compensation{balanceDelta: amount}, err)
		if rbErr == nil && errors.Is(err, apperrors.ErrDuplicate) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrAlreadySubscribed, fund.Name)
		}
		return nil, operationFailed("create subscription", err)
	}

	if err := s.completeTransaction(ctx, txn); err != nil {
		_ = s.rollback(ctx, txn, compensation{deactivate: true, balanceDelta: amount}, err)
		return nil, operationFailed("complete transaction", err)
	}

	s.LogInfo(ctx, "Subscription completed", slog.String("new_balance", newBalance.String()))
	s.notify(account, txn, fund.Name, newBalance)

	return &domain.SubscribeResult{
		TransactionID:  txn.TransactionID,
		SubscriptionID: subscription.SubscriptionID,
		NewBalance:     newBalance,
	}, nil
}

// Cancel records a pending ledger entry, refunds the subscribed amount, deactivates
// the subscription and completes the entry, in that order.
func (s *workflowService) Cancel(ctx context.Context, accountID string, fundID int) (*domain.CancelResult, error) {
	ctx = middleware.WithLogger(ctx, s.GetLogger(ctx).With(
		slog.String("workflow", string(domain.KindCancellation)),
		slog.String("account_id", accountID),
		slog.Int("fund_id", fundID),
	))

	account, err := s.loadAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	subscription, err := call(ctx, s.storeTimeout, func(ctx context.Context) (*domain.Subscription, error) {
		return s.subscriptionRepo.FindActiveSubscription(ctx, accountID, fundID)
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: fund %d", apperrors.ErrSubscriptionNotFound, fundID)
		}
		return nil, operationFailed("find subscription", err)
	}
	fundName := s.fundName(ctx, fundID)
	refund := subscription.Amount

	txn, err := s.openTransaction(ctx, accountID, fundID, domain.KindCancellation, refund, "Cancellation of subscription to fund "+fundName)
	if err != nil {
		return nil, err
	}
	ctx = middleware.WithLogger(ctx, s.GetLogger(ctx).With(slog.String("transaction_id", txn.TransactionID)))

	newBalance, err := s.adjustBalance(ctx, accountID, refund, s.casRetries)
	if err != nil {
		if rbErr := s.rollback(ctx, txn, compensation{}, err); rbErr != nil {
			return nil, operationFailed("credit balance", err)
		}
		return nil, workflowError("credit balance", err)
	}

	err = s.exec(ctx, func(ctx context.Context) error {
		return s.subscriptionRepo.DeactivateSubscription(ctx, accountID, fundID, s.now())
	})
	if err != nil {
		rbErr := s.rollback(ctx, txn, compensation{balanceDelta: refund.Neg()}, err)
		if rbErr == nil && errors.Is(err, apperrors.ErrNotFound) {
			// cancelled concurrently by another request
			return nil, fmt.Errorf("%w: fund %d", apperrors.ErrSubscriptionNotFound, fundID)
		}
		return nil, operationFailed("deactivate subscription", err)
	}

	if err := s.completeTransaction(ctx, txn); err != nil {
		restored := *subscription
		restored.SubscriptionID = uuid.NewString()
		restored.IsActive = true
		restored.CancelledAt = nil
		_ = s.rollback(ctx, txn, compensation{reactivate: &restored, balanceDelta: refund.Neg()}, err)
		return nil, operationFailed("complete transaction", err)
	}

	s.LogInfo(ctx, "Cancellation completed", slog.String("refunded", refund.String()), slog.String("new_balance", newBalance.String()))
	s.notify(account, txn, fundName, newBalance)

	return &domain.CancelResult{
		TransactionID:  txn.TransactionID,
		RefundedAmount: refund,
		NewBalance:     newBalance,
	}, nil
}

func (s *workflowService) loadFund(ctx context.Context, fundID int) (*domain.Fund, error) {
	fund, err := call(ctx, s.storeTimeout, func(ctx context.Context) (*domain.Fund, error) {
		return s.fundRepo.FindFundByID(ctx, fundID)
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %d", apperrors.ErrFundNotFound, fundID)
		}
		return nil, operationFailed("load fund", err)
	}
	return fund, nil
}

// fundName is informational only; a missing catalog entry does not block a cancellation.
func (s *workflowService) fundName(ctx context.Context, fundID int) string {
	fund, err := call(ctx, s.storeTimeout, func(ctx context.Context) (*domain.Fund, error) {
		return s.fundRepo.FindFundByID(ctx, fundID)
	})
	if err != nil {
		s.LogWarn(ctx, "Fund lookup failed during cancellation", slog.String("error", err.Error()))
		return fmt.Sprintf("#%d", fundID)
	}
	return fund.Name
}

func (s *workflowService) loadAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := call(ctx, s.storeTimeout, func(ctx context.Context) (*domain.Account, error) {
		return s.accountRepo.FindAccountByID(ctx, accountID)
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, accountID)
		}
		return nil, operationFailed("load account", err)
	}
	if !account.IsActive {
		return nil, fmt.Errorf("%w: %s is inactive", apperrors.ErrAccountNotFound, accountID)
	}
	return account, nil
}

func (s *workflowService) ensureNotSubscribed(ctx context.Context, accountID string, fundID int) error {
	_, err := call(ctx, s.storeTimeout, func(ctx context.Context) (*domain.Subscription, error) {
		return s.subscriptionRepo.FindActiveSubscription(ctx, accountID, fundID)
	})
	switch {
	case err == nil:
		return fmt.Errorf("%w: fund %d", apperrors.ErrAlreadySubscribed, fundID)
	case errors.Is(err, apperrors.ErrNotFound):
		return nil
	default:
		return operationFailed("check subscription", err)
	}
}

// openTransaction persists a pending entry, regenerating the ID on collision.
func (s *workflowService) openTransaction(ctx context.Context, accountID string, fundID int, kind domain.TransactionKind, amount decimal.Decimal, description string) (*domain.Transaction, error) {
	now := s.now()
	txn := domain.Transaction{
		AccountID:   accountID,
		FundID:      fundID,
		Kind:        kind,
		Amount:      amount,
		Status:      domain.StatusPending,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for attempt := 1; attempt <= s.txnIDAttempts; attempt++ {
		txn.TransactionID = s.newTxnID(now)
		err := s.exec(ctx, func(ctx context.Context) error {
			return s.ledgerRepo.CreateTransaction(ctx, txn)
		})
		if err == nil {
			return &txn, nil
		}
		if !errors.Is(err, apperrors.ErrDuplicate) {
			s.LogError(ctx, err, "Failed to record pending transaction")
			return nil, operationFailed("record transaction", err)
		}
		s.LogWarn(ctx, "Transaction ID collision, regenerating", slog.String("transaction_id", txn.TransactionID), slog.Int("attempt", attempt))
	}
	return nil, fmt.Errorf("%w: no unique transaction ID after %d attempts", apperrors.ErrOperationFailed, s.txnIDAttempts)
}

// completeTransaction marks txn completed. An error is only returned when the stored
// entry is not Completed, since the write can commit before its error surfaces.
func (s *workflowService) completeTransaction(ctx context.Context, txn *domain.Transaction) error {
	at := s.now()
	err := s.exec(ctx, func(ctx context.Context) error {
		return s.ledgerRepo.UpdateTransactionStatus(ctx, txn.TransactionID, domain.StatusCompleted, at)
	})
	if err != nil {
		stored, readErr := call(context.WithoutCancel(ctx), s.storeTimeout, func(ctx context.Context) (*domain.Transaction, error) {
			return s.ledgerRepo.FindTransactionByID(ctx, txn.TransactionID)
		})
		if readErr != nil || stored.Status != domain.StatusCompleted {
			return err
		}
		s.LogWarn(ctx, "Completion reported an error after it was committed", slog.String("error", err.Error()))
		if stored.CompletedAt != nil {
			at = *stored.CompletedAt
		}
	}
	return txn.TransitionTo(domain.StatusCompleted, at)
}

func (s *workflowService) failTransaction(ctx context.Context, txn *domain.Transaction) error {
	at := s.now()
	err := s.exec(ctx, func(ctx context.Context) error {
		return s.ledgerRepo.UpdateTransactionStatus(ctx, txn.TransactionID, domain.StatusFailed, at)
	})
	if err != nil {
		return err
	}
	return txn.TransitionTo(domain.StatusFailed, at)
}

// adjustBalance applies delta with compare-and-set, re-reading and re-validating after a lost race.
func (s *workflowService) adjustBalance(ctx context.Context, accountID string, delta decimal.Decimal, retries int) (decimal.Decimal, error) {
	for attempt := 0; ; attempt++ {
		current, err := call(ctx, s.storeTimeout, func(ctx context.Context) (decimal.Decimal, error) {
			return s.accountRepo.GetBalance(ctx, accountID)
		})
		if err != nil {
			return decimal.Zero, fmt.Errorf("read balance: %w", err)
		}
		next := current.Add(delta)
		if next.IsNegative() {
			return decimal.Zero, fmt.Errorf("%w: balance %s cannot cover %s", apperrors.ErrInsufficientFunds, current.String(), delta.Neg().String())
		}
		err = s.exec(ctx, func(ctx context.Context) error {
			return s.accountRepo.CompareAndSetBalance(ctx, accountID, current, next, s.now())
		})
		if err == nil {
			return next, nil
		}
		if !errors.Is(err, apperrors.ErrConflict) {
			return decimal.Zero, fmt.Errorf("write balance: %w", err)
		}
		if attempt >= retries {
			return decimal.Zero, fmt.Errorf("%w: balance of %s changed %d times", apperrors.ErrConcurrencyConflict, accountID, attempt+1)
		}
		s.LogDebug(ctx, "Balance changed concurrently, retrying", slog.Int("attempt", attempt+1))
	}
}

// compensation lists the writes that undo a partially applied workflow.
type compensation struct {
	deactivate   bool                 // deactivate the (account, fund) subscription
	reactivate   *domain.Subscription // re-create this subscription as active
	balanceDelta decimal.Decimal      // re-apply to the balance; zero skips
}

// rollback applies comp and marks txn failed. It runs detached from the caller's
// cancellation so a timed-out request still leaves the ledger terminal.
func (s *workflowService) rollback(ctx context.Context, txn *domain.Transaction, comp compensation, cause error) error {
	ctx = context.WithoutCancel(ctx)
	var errs []error

	if comp.deactivate {
		err := s.exec(ctx, func(ctx context.Context) error {
			return s.subscriptionRepo.DeactivateSubscription(ctx, txn.AccountID, txn.FundID, s.now())
		})
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			errs = append(errs, fmt.Errorf("deactivate subscription: %w", err))
		}
	}
	if comp.reactivate != nil {
		err := s.exec(ctx, func(ctx context.Context) error {
			return s.subscriptionRepo.CreateActiveSubscription(ctx, *comp.reactivate)
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("restore subscription: %w", err))
		}
	}
	if !comp.balanceDelta.IsZero() {
		if _, err := s.adjustBalance(ctx, txn.AccountID, comp.balanceDelta, s.casRetries+compensationExtraRetries); err != nil {
			errs = append(errs, fmt.Errorf("restore balance by %s: %w", comp.balanceDelta.String(), err))
		}
	}
	if err := s.failTransaction(ctx, txn); err != nil {
		errs = append(errs, fmt.Errorf("mark transaction failed: %w", err))
	}

	if len(errs) > 0 {
		err := errors.Join(errs...)
		s.LogError(ctx, err, "Compensation incomplete",
			slog.Bool("reconciliation_required", true),
			slog.String("cause", cause.Error()),
			slog.String("pending_balance_delta", comp.balanceDelta.String()))
		return err
	}
	s.LogWarn(ctx, "Workflow rolled back", slog.String("cause", cause.Error()))
	return nil
}

func (s *workflowService) notify(account *domain.Account, txn *domain.Transaction, fundName string, newBalance decimal.Decimal) {
	if s.notifier == nil {
		return
	}
	s.notifier.Dispatch(domain.Notification{
		AccountID:     account.AccountID,
		FullName:      account.FullName,
		Email:         account.Email,
		Phone:         account.Phone,
		Preference:    account.NotificationPreference,
		Kind:          txn.Kind,
		TransactionID: txn.TransactionID,
		FundID:        txn.FundID,
		FundName:      fundName,
		Amount:        txn.Amount,
		NewBalance:    newBalance,
		OccurredAt:    txn.UpdatedAt,
	})
}

func (s *workflowService) exec(ctx context.Context, fn func(context.Context) error) error {
	_, err := call(ctx, s.storeTimeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// call runs one store operation under its own timeout.
func call[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(ctx)
}

// workflowError keeps client-meaningful kinds and folds everything else into ErrOperationFailed.
func workflowError(step string, err error) error {
	if errors.Is(err, apperrors.ErrInsufficientFunds) || errors.Is(err, apperrors.ErrConcurrencyConflict) {
		return err
	}
	return operationFailed(step, err)
}

func operationFailed(step string, err error) error {
	return fmt.Errorf("%w: %s: %v", apperrors.ErrOperationFailed, step, err)
}
