package repositories

import "context"

// RepositoryProvider holds all repository interfaces needed by services.
// Every store driver (postgres, mongo, memory) builds one.
type RepositoryProvider struct {
	AccountRepo      AccountRepositoryFacade
	FundRepo         FundRepositoryFacade
	SubscriptionRepo SubscriptionRepositoryFacade
	LedgerRepo       LedgerRepositoryFacade

	// Close releases the driver's connections. May be nil.
	Close func(ctx context.Context) error
}
