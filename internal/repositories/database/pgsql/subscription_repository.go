package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/drmelom/technical-test-BTG-Pactual/internal/apperrors"
	"github.com/drmelom/technical-test-BTG-Pactual/internal/core/domain"
	portsrepo "github.com/drmelom/technical-test-BTG-Pactual/internal/core/ports/repositories"
	"github.com/drmelom/technical-test-BTG-Pactual/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const subscriptionColumns = `subscription_id, account_id, fund_id, amount, is_active, subscribed_at, cancelled_at`

// PgxSubscriptionRepository relies on the partial unique index
// subscriptions_one_active_idx (account_id, fund_id) WHERE is_active.
type PgxSubscriptionRepository struct {
	BaseRepository
}

func newPgxSubscriptionRepository(pool *pgxpool.Pool) portsrepo.SubscriptionRepositoryFacade {
	return &PgxSubscriptionRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.SubscriptionRepositoryFacade = (*PgxSubscriptionRepository)(nil)

func toDomainSubscription(m models.Subscription) domain.Subscription {
	d := domain.Subscription{
		SubscriptionID: m.SubscriptionID,
		AccountID:      m.AccountID,
		FundID:         m.FundID,
		Amount:         m.Amount,
		IsActive:       m.IsActive,
		SubscribedAt:   m.SubscribedAt,
	}
	if m.CancelledAt.Valid {
		cancelledAt := m.CancelledAt.Time
		d.CancelledAt = &cancelledAt
	}
	return d
}

func scanSubscription(row pgx.Row) (domain.Subscription, error) {
	var m models.Subscription
	err := row.Scan(&m.SubscriptionID, &m.AccountID, &m.FundID, &m.Amount, &m.IsActive, &m.SubscribedAt, &m.CancelledAt)
	if err != nil {
		return domain.Subscription{}, err
	}
	return toDomainSubscription(m), nil
}

// CreateActiveSubscription inserts an active row. The partial unique index rejects a second active row.
func (r *PgxSubscriptionRepository) CreateActiveSubscription(ctx context.Context, sub domain.Subscription) error {
	query := `
		INSERT INTO subscriptions (subscription_id, account_id, fund_id, amount, is_active, subscribed_at)
		VALUES ($1, $2, $3, $4, TRUE, $5);
	`
	_, err := r.Pool.Exec(ctx, query, sub.SubscriptionID, sub.AccountID, sub.FundID, sub.Amount, sub.SubscribedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: active subscription for account %s and fund %d", apperrors.ErrDuplicate, sub.AccountID, sub.FundID)
		}
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	return nil
}

// DeactivateSubscription closes the active (account, fund) row.
func (r *PgxSubscriptionRepository) DeactivateSubscription(ctx context.Context, accountID string, fundID int, cancelledAt time.Time) error {
	query := `
		UPDATE subscriptions
		SET is_active = FALSE, cancelled_at = $3
		WHERE account_id = $1 AND fund_id = $2 AND is_active = TRUE;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, accountID, fundID, cancelledAt)
	if err != nil {
		return fmt.Errorf("failed to deactivate subscription for account %s and fund %d: %w", accountID, fundID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindActiveSubscription returns the active (account, fund) row.
func (r *PgxSubscriptionRepository) FindActiveSubscription(ctx context.Context, accountID string, fundID int) (*domain.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE account_id = $1 AND fund_id = $2 AND is_active = TRUE;`
	sub, err := scanSubscription(r.Pool.QueryRow(ctx, query, accountID, fundID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find subscription for account %s and fund %d: %w", accountID, fundID, err)
	}
	return &sub, nil
}

// ListActiveSubscriptions returns the account's open positions, oldest first.
func (r *PgxSubscriptionRepository) ListActiveSubscriptions(ctx context.Context, accountID string) ([]domain.Subscription, error) {
	query := `
		SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE account_id = $1 AND is_active = TRUE
		ORDER BY subscribed_at, subscription_id;
	`
	rows, err := r.Pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query subscriptions for account %s: %w", accountID, err)
	}
	defer rows.Close()

	subs := []domain.Subscription{}
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subscription row: %w", err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subscription rows for account %s: %w", accountID, err)
	}
	return subs, nil
}
