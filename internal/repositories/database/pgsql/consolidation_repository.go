package pgsql

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finbooks/general_ledger/internal/apperrors"
	"github.com/finbooks/general_ledger/internal/core/domain"
	portsrepo "github.com/finbooks/general_ledger/internal/core/ports/repositories"
)

type PgxConsolidationRepository struct {
	BaseRepository
}

// newPgxConsolidationRepository creates a new repository for consolidation reads.
func newPgxConsolidationRepository(pool *pgxpool.Pool) portsrepo.ConsolidationReader {
	return &PgxConsolidationRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.ConsolidationReader = (*PgxConsolidationRepository)(nil)

// GetPostedLines returns every line of POSTED entries for the given entities
// dated at or before asOf, joined with account information. The read runs in
// a repeatable-read snapshot so a concurrently posting entry is either fully
// visible or fully absent.
func (r *PgxConsolidationRepository) GetPostedLines(ctx context.Context, clientID string, entityIDs []string, asOf time.Time) ([]domain.ConsolidationLine, error) {
	if len(entityIDs) == 0 {
		return []domain.ConsolidationLine{}, nil
	}

	tx, err := r.Pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return nil, apperrors.NewStorageError("failed to begin snapshot read", err)
	}
	defer tx.Rollback(ctx)

	query := `
		SELECT e.entity_id, l.account_id, a.code, a.name, a.account_type, a.is_cash,
		       l.side, l.amount, l.intercompany_entity_id
		FROM journal_entry_lines l
		JOIN journal_entries e ON l.entry_id = e.entry_id
		JOIN accounts a ON l.account_id = a.account_id
		WHERE e.client_id = $1
		  AND e.entity_id = ANY($2)
		  AND e.status = 'POSTED'
		  AND e.entry_date <= $3
		ORDER BY a.code, e.entity_id;
	`
	rows, err := tx.Query(ctx, query, clientID, entityIDs, asOf)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to query posted lines for consolidation", err)
	}
	defer rows.Close()

	lines := []domain.ConsolidationLine{}
	for rows.Next() {
		var line domain.ConsolidationLine
		var accountType, side string
		err := rows.Scan(
			&line.EntityID,
			&line.AccountID,
			&line.AccountCode,
			&line.AccountName,
			&accountType,
			&line.IsCash,
			&side,
			&line.Amount,
			&line.IntercompanyEntityID,
		)
		if err != nil {
			return nil, apperrors.NewStorageError("failed to scan consolidation line", err)
		}
		line.AccountType = domain.AccountType(accountType)
		line.Side = domain.EntrySide(side)
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("error iterating consolidation lines", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperrors.NewStorageError("failed to close snapshot read", err)
	}
	return lines, nil
}
