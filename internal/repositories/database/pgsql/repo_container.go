package pgsql

import (
	"context"

	portsrepo "github.com/drmelom/technical-test-BTG-Pactual/internal/core/ports/repositories"
	"github.com/drmelom/technical-test-BTG-Pactual/pkg/database"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires the pgx repositories over one pool. Close releases the pool.
func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	accountRepo := newPgxAccountRepository(dbPool)
	fundRepo := newPgxFundRepository(dbPool)
	subscriptionRepo := newPgxSubscriptionRepository(dbPool)
	ledgerRepo := newPgxLedgerRepository(dbPool)

	return portsrepo.RepositoryProvider{
		AccountRepo:      accountRepo,
		FundRepo:         fundRepo,
		SubscriptionRepo: subscriptionRepo,
		LedgerRepo:       ledgerRepo,
		Close: func(context.Context) error {
			database.ClosePgxPool(dbPool)
			return nil
		},
	}
}
