package repositories

import (
	"context"
	"time"

	"github.com/finbooks/general_ledger/internal/core/domain"
)

// AccountReader defines read operations for chart-of-accounts data.
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountsByIDs retrieves multiple accounts by their IDs, keyed by ID.
	// Missing IDs are simply absent from the result map.
	FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)

	// ListAccounts retrieves accounts belonging to a client.
	ListAccounts(ctx context.Context, clientID string, limit int, offset int) ([]domain.Account, error)
}

// AccountWriter defines write operations for chart-of-accounts data.
type AccountWriter interface {
	// SaveAccount persists a new account.
	SaveAccount(ctx context.Context, account domain.Account) error

	// UpdateAccount updates an existing account's details.
	UpdateAccount(ctx context.Context, account domain.Account) error

	// DeactivateAccount marks an account as inactive.
	DeactivateAccount(ctx context.Context, accountID string, userID string, now time.Time) error
}

// AccountRepositoryFacade combines all account-related repository interfaces.
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
}

// EntityReader defines read operations for entity data.
type EntityReader interface {
	// FindEntityByID retrieves a specific entity by its unique identifier.
	FindEntityByID(ctx context.Context, entityID string) (*domain.Entity, error)

	// FindEntitiesByIDs retrieves multiple entities by their IDs, keyed by ID.
	FindEntitiesByIDs(ctx context.Context, entityIDs []string) (map[string]domain.Entity, error)

	// ListEntities retrieves entities belonging to a client.
	ListEntities(ctx context.Context, clientID string) ([]domain.Entity, error)
}

// EntityWriter defines write operations for entity data.
type EntityWriter interface {
	// SaveEntity persists a new entity.
	SaveEntity(ctx context.Context, entity domain.Entity) error
}

// EntityRepositoryFacade combines all entity-related repository interfaces.
type EntityRepositoryFacade interface {
	EntityReader
	EntityWriter
}
