package services

// ServiceContainer holds all service facades for dependency injection.
type ServiceContainer struct {
	Account       AccountSvcFacade
	Entity        EntitySvcFacade
	Entry         EntrySvcFacade
	Batch         BatchSvcFacade
	Consolidation ConsolidationSvcFacade
}
