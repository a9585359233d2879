package pgsql

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finbooks/general_ledger/internal/apperrors"
	portsrepo "github.com/finbooks/general_ledger/internal/core/ports/repositories"
)

type PgxSequenceRepository struct {
	BaseRepository
}

// newPgxSequenceRepository creates a new repository for reference sequence data.
func newPgxSequenceRepository(pool *pgxpool.Pool) portsrepo.ReferenceSequencer {
	return &PgxSequenceRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.ReferenceSequencer = (*PgxSequenceRepository)(nil)

// Next atomically increments and returns the sequence for the scope. The
// upsert takes a row lock, so two racing allocations serialize and never
// observe the same number. The first allocation for a scope returns 1.
func (r *PgxSequenceRepository) Next(ctx context.Context, entityID string, fiscalPeriod string) (int64, error) {
	query := `
		INSERT INTO entry_sequences (entity_id, fiscal_period, last_value)
		VALUES ($1, $2, 1)
		ON CONFLICT (entity_id, fiscal_period)
		DO UPDATE SET last_value = entry_sequences.last_value + 1
		RETURNING last_value;
	`
	var next int64
	err := r.conn(ctx).QueryRow(ctx, query, entityID, fiscalPeriod).Scan(&next)
	if err != nil {
		return 0, apperrors.NewStorageError("failed to allocate sequence for entity "+entityID+" period "+fiscalPeriod, err)
	}
	return next, nil
}
