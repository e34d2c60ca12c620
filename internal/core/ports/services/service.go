package services

// ServiceContainer holds instances of all the application services.
// It is the entry point the handlers use.
type ServiceContainer struct {
	Account  AccountSvcFacade
	Token    TokenSvcFacade
	Fund     FundSvcFacade
	Workflow WorkflowSvc
	Ledger   LedgerSvcFacade
}
