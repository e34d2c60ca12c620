package services

import (
	portsrepo "github.com/drmelom/technical-test-BTG-Pactual/internal/core/ports/repositories"
	portssvc "github.com/drmelom/technical-test-BTG-Pactual/internal/core/ports/services"
	"github.com/drmelom/technical-test-BTG-Pactual/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, notifier portssvc.NotificationDispatcher) *portssvc.ServiceContainer {
	return &portssvc.ServiceContainer{
		Account: NewAccountService(repos.AccountRepo, cfg.InitialClientBalance),
		Token:   NewTokenService(cfg, repos.AccountRepo),
		Fund:    NewFundService(repos.FundRepo, repos.SubscriptionRepo),
		Ledger:  NewLedgerService(repos.LedgerRepo, repos.AccountRepo),
		Workflow: NewWorkflowService(
			repos.FundRepo,
			repos.AccountRepo,
			repos.SubscriptionRepo,
			repos.LedgerRepo,
			WithNotificationDispatcher(notifier),
			WithStoreTimeout(cfg.StoreTimeout),
			WithCASRetries(cfg.CASRetries),
			WithTransactionIDGenerator(NewTransactionID, cfg.TxnIDMaxAttempts),
		),
	}
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.AccountSvcFacade = (*accountService)(nil)
	_ portssvc.TokenSvcFacade   = (*tokenService)(nil)
)
