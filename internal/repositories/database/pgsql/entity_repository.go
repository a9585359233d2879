package pgsql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finbooks/general_ledger/internal/apperrors"
	"github.com/finbooks/general_ledger/internal/core/domain"
	portsrepo "github.com/finbooks/general_ledger/internal/core/ports/repositories"
	"github.com/finbooks/general_ledger/internal/models"
	"github.com/finbooks/general_ledger/internal/utils/mapping"
)

type PgxEntityRepository struct {
	BaseRepository
}

// newPgxEntityRepository creates a new repository for entity data.
func newPgxEntityRepository(pool *pgxpool.Pool) portsrepo.EntityRepositoryFacade {
	return &PgxEntityRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.EntityRepositoryFacade = (*PgxEntityRepository)(nil)

const entityColumns = `entity_id, client_id, name, currency_code, created_at, created_by, last_updated_at, last_updated_by`

func scanEntity(row pgx.Row) (*models.Entity, error) {
	var m models.Entity
	err := row.Scan(
		&m.EntityID,
		&m.ClientID,
		&m.Name,
		&m.CurrencyCode,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// SaveEntity persists a new entity.
func (r *PgxEntityRepository) SaveEntity(ctx context.Context, entity domain.Entity) error {
	m := mapping.ToModelEntity(entity)
	query := `
		INSERT INTO entities (` + entityColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := r.conn(ctx).Exec(ctx, query,
		m.EntityID,
		m.ClientID,
		m.Name,
		m.CurrencyCode,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewStorageError("failed to insert entity "+m.EntityID, err)
	}
	return nil
}

// FindEntityByID retrieves a specific entity by its unique identifier.
func (r *PgxEntityRepository) FindEntityByID(ctx context.Context, entityID string) (*domain.Entity, error) {
	query := `SELECT ` + entityColumns + ` FROM entities WHERE entity_id = $1;`
	m, err := scanEntity(r.conn(ctx).QueryRow(ctx, query, entityID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewStorageError("failed to find entity by ID "+entityID, err)
	}
	entity := mapping.ToDomainEntity(*m)
	return &entity, nil
}

// FindEntitiesByIDs retrieves multiple entities keyed by ID.
func (r *PgxEntityRepository) FindEntitiesByIDs(ctx context.Context, entityIDs []string) (map[string]domain.Entity, error) {
	if len(entityIDs) == 0 {
		return map[string]domain.Entity{}, nil
	}

	query := `SELECT ` + entityColumns + ` FROM entities WHERE entity_id = ANY($1);`
	rows, err := r.conn(ctx).Query(ctx, query, entityIDs)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to query entities by IDs", err)
	}
	defer rows.Close()

	entities := make(map[string]domain.Entity, len(entityIDs))
	for rows.Next() {
		m, err := scanEntity(rows)
		if err != nil {
			return nil, apperrors.NewStorageError("failed to scan entity row", err)
		}
		entities[m.EntityID] = mapping.ToDomainEntity(*m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("error iterating entity rows", err)
	}
	return entities, nil
}

// ListEntities retrieves entities belonging to a client ordered by name.
func (r *PgxEntityRepository) ListEntities(ctx context.Context, clientID string) ([]domain.Entity, error) {
	query := `SELECT ` + entityColumns + ` FROM entities WHERE client_id = $1 ORDER BY name;`
	rows, err := r.conn(ctx).Query(ctx, query, clientID)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to query entities for client "+clientID, err)
	}
	defer rows.Close()

	entities := []domain.Entity{}
	for rows.Next() {
		m, err := scanEntity(rows)
		if err != nil {
			return nil, apperrors.NewStorageError("failed to scan entity row", err)
		}
		entities = append(entities, mapping.ToDomainEntity(*m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("error iterating entity rows", err)
	}
	return entities, nil
}
