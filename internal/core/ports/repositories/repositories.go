package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	AccountRepo       AccountRepositoryFacade
	EntityRepo        EntityRepositoryFacade
	EntryRepo         EntryRepositoryWithTx
	GroupRepo         GroupRepositoryFacade
	ConsolidationRepo ConsolidationReader
	Sequencer         ReferenceSequencer
}
