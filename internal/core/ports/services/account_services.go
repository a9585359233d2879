package services

import (
	"context"

	"github.com/finbooks/general_ledger/internal/core/domain"
	"github.com/finbooks/general_ledger/internal/dto"
)

// AccountSvcFacade exposes chart-of-accounts operations, most importantly the
// account reference validation the journal entry aggregate depends on.
type AccountSvcFacade interface {
	// ValidateAccountRefs confirms every ID names an active, non-folder
	// account owned by the client, returning the resolved accounts. It is
	// read-only and side-effect free.
	ValidateAccountRefs(ctx context.Context, clientID string, accountIDs []string) (map[string]domain.Account, error)

	CreateAccount(ctx context.Context, clientID string, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error)
	GetAccountByID(ctx context.Context, clientID string, accountID string, requestingUserID string) (*domain.Account, error)
	ListAccounts(ctx context.Context, clientID string, limit int, offset int, requestingUserID string) ([]domain.Account, error)
	DeactivateAccount(ctx context.Context, clientID string, accountID string, requestingUserID string) error
}

// EntitySvcFacade exposes entity registration and lookup.
type EntitySvcFacade interface {
	CreateEntity(ctx context.Context, clientID string, req dto.CreateEntityRequest, creatorUserID string) (*domain.Entity, error)
	GetEntityByID(ctx context.Context, clientID string, entityID string, requestingUserID string) (*domain.Entity, error)
	ListEntities(ctx context.Context, clientID string, requestingUserID string) ([]domain.Entity, error)
}
