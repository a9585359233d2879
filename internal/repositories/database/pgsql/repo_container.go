package pgsql

import (
	portsrepo "github.com/finbooks/general_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	accountRepo := newPgxAccountRepository(dbPool)
	entityRepo := newPgxEntityRepository(dbPool)
	entryRepo := newPgxEntryRepository(dbPool)
	groupRepo := newPgxGroupRepository(dbPool)
	consolidationRepo := newPgxConsolidationRepository(dbPool)
	sequencer := newPgxSequenceRepository(dbPool)

	return portsrepo.RepositoryProvider{
		AccountRepo:       accountRepo,
		EntityRepo:        entityRepo,
		EntryRepo:         entryRepo,
		GroupRepo:         groupRepo,
		ConsolidationRepo: consolidationRepo,
		Sequencer:         sequencer,
	}
}
