package services

import (
	portsrepo "github.com/finbooks/general_ledger/internal/core/ports/repositories"
	portssvc "github.com/finbooks/general_ledger/internal/core/ports/services"
	"github.com/finbooks/general_ledger/pkg/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies.
// A nil authorizer grants every request, which is the embedded library mode.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, authorizer portssvc.ClientAuthorizer) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Account service first since the entry aggregate depends on its
	// reference validation gate.
	container.Account = NewAccountService(repos.AccountRepo, authorizer)
	container.Entity = NewEntityService(repos.EntityRepo, authorizer)

	container.Entry = NewEntryService(
		repos.EntryRepo,
		repos.EntityRepo,
		container.Account,
		repos.Sequencer,
		authorizer,
		WithReferenceFormatter(ReferenceFormatter{Prefix: cfg.ReferencePrefix, PadWidth: cfg.ReferencePadWidth}),
		WithPostRetries(cfg.PostRetries),
	)

	container.Batch = NewBatchService(repos.EntryRepo, repos.EntityRepo, container.Account, authorizer)
	container.Consolidation = NewConsolidationService(repos.GroupRepo, repos.EntityRepo, repos.ConsolidationRepo, authorizer)

	return container
}
