package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/finbooks/general_ledger/internal/apperrors"
	"github.com/finbooks/general_ledger/internal/core/domain"
	portsrepo "github.com/finbooks/general_ledger/internal/core/ports/repositories"
)

// AccountRepository is the in-memory chart-of-accounts adapter.
type AccountRepository struct {
	store *Store
}

func newAccountRepository(store *Store) portsrepo.AccountRepositoryFacade {
	return &AccountRepository{store: store}
}

var _ portsrepo.AccountRepositoryFacade = (*AccountRepository)(nil)

// SaveAccount persists a new account.
func (r *AccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	defer r.store.lock(ctx)()
	if _, exists := r.store.accounts[account.AccountID]; exists {
		return fmt.Errorf("%w: account %s already exists", apperrors.ErrConflict, account.AccountID)
	}
	r.store.accounts[account.AccountID] = account
	return nil
}

// UpdateAccount updates an existing account's details.
func (r *AccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	defer r.store.lock(ctx)()
	if _, exists := r.store.accounts[account.AccountID]; !exists {
		return apperrors.NewNotFoundError("account " + account.AccountID + " not found for update")
	}
	r.store.accounts[account.AccountID] = account
	return nil
}

// DeactivateAccount marks an account as inactive.
func (r *AccountRepository) DeactivateAccount(ctx context.Context, accountID string, userID string, now time.Time) error {
	defer r.store.lock(ctx)()
	account, exists := r.store.accounts[accountID]
	if !exists {
		return apperrors.NewNotFoundError("account " + accountID + " not found for deactivation")
	}
	account.IsActive = false
	account.LastUpdatedAt = now
	account.LastUpdatedBy = userID
	r.store.accounts[accountID] = account
	return nil
}

// FindAccountByID retrieves a specific account by its unique identifier.
func (r *AccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	defer r.store.rlock(ctx)()
	account, exists := r.store.accounts[accountID]
	if !exists {
		return nil, apperrors.ErrNotFound
	}
	return &account, nil
}

// FindAccountsByIDs retrieves multiple accounts keyed by ID. Missing IDs are
// simply absent from the result map.
func (r *AccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	defer r.store.rlock(ctx)()
	accounts := make(map[string]domain.Account, len(accountIDs))
	for _, id := range accountIDs {
		if account, exists := r.store.accounts[id]; exists {
			accounts[id] = account
		}
	}
	return accounts, nil
}

// ListAccounts retrieves accounts belonging to a client ordered by code.
func (r *AccountRepository) ListAccounts(ctx context.Context, clientID string, limit int, offset int) ([]domain.Account, error) {
	defer r.store.rlock(ctx)()
	accounts := []domain.Account{}
	for _, account := range r.store.accounts {
		if account.ClientID == clientID {
			accounts = append(accounts, account)
		}
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].Code < accounts[j].Code
	})

	if offset >= len(accounts) {
		return []domain.Account{}, nil
	}
	accounts = accounts[offset:]
	if limit > 0 && limit < len(accounts) {
		accounts = accounts[:limit]
	}
	return accounts, nil
}

// EntityRepository is the in-memory entity adapter.
type EntityRepository struct {
	store *Store
}

func newEntityRepository(store *Store) portsrepo.EntityRepositoryFacade {
	return &EntityRepository{store: store}
}

var _ portsrepo.EntityRepositoryFacade = (*EntityRepository)(nil)

// SaveEntity persists a new entity.
func (r *EntityRepository) SaveEntity(ctx context.Context, entity domain.Entity) error {
	defer r.store.lock(ctx)()
	if _, exists := r.store.entities[entity.EntityID]; exists {
		return fmt.Errorf("%w: entity %s already exists", apperrors.ErrConflict, entity.EntityID)
	}
	r.store.entities[entity.EntityID] = entity
	return nil
}

// FindEntityByID retrieves a specific entity by its unique identifier.
func (r *EntityRepository) FindEntityByID(ctx context.Context, entityID string) (*domain.Entity, error) {
	defer r.store.rlock(ctx)()
	entity, exists := r.store.entities[entityID]
	if !exists {
		return nil, apperrors.ErrNotFound
	}
	return &entity, nil
}

// FindEntitiesByIDs retrieves multiple entities keyed by ID.
func (r *EntityRepository) FindEntitiesByIDs(ctx context.Context, entityIDs []string) (map[string]domain.Entity, error) {
	defer r.store.rlock(ctx)()
	entities := make(map[string]domain.Entity, len(entityIDs))
	for _, id := range entityIDs {
		if entity, exists := r.store.entities[id]; exists {
			entities[id] = entity
		}
	}
	return entities, nil
}

// ListEntities retrieves entities belonging to a client ordered by name.
func (r *EntityRepository) ListEntities(ctx context.Context, clientID string) ([]domain.Entity, error) {
	defer r.store.rlock(ctx)()
	entities := []domain.Entity{}
	for _, entity := range r.store.entities {
		if entity.ClientID == clientID {
			entities = append(entities, entity)
		}
	}
	sort.Slice(entities, func(i, j int) bool {
		return entities[i].Name < entities[j].Name
	})
	return entities, nil
}
