package memory

import (
	portsrepo "github.com/finbooks/general_ledger/internal/core/ports/repositories"
)

// NewRepositoryProvider wires every in-memory repository onto one shared
// store. Useful for embedding the engine without PostgreSQL and for tests.
func NewRepositoryProvider(store *Store) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:       newAccountRepository(store),
		EntityRepo:        newEntityRepository(store),
		EntryRepo:         newEntryRepository(store),
		GroupRepo:         newGroupRepository(store),
		ConsolidationRepo: newConsolidationRepository(store),
		Sequencer:         newSequenceRepository(store),
	}
}
