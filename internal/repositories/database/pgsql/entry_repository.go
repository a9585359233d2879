package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finbooks/general_ledger/internal/apperrors"
	"github.com/finbooks/general_ledger/internal/core/domain"
	portsrepo "github.com/finbooks/general_ledger/internal/core/ports/repositories"
	"github.com/finbooks/general_ledger/internal/models"
	"github.com/finbooks/general_ledger/internal/utils/mapping"
	"github.com/finbooks/general_ledger/internal/utils/pagination"
)

type PgxEntryRepository struct {
	BaseRepository
}

// newPgxEntryRepository creates a new repository for journal entry data.
func newPgxEntryRepository(pool *pgxpool.Pool) portsrepo.EntryRepositoryWithTx {
	return &PgxEntryRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.EntryRepositoryWithTx = (*PgxEntryRepository)(nil)

const entryColumns = `entry_id, client_id, entity_id, entry_date, fiscal_period, reference, description, status, void_reason, reverses_entry_id, reversed_by_entry_id, created_at, created_by, last_updated_at, last_updated_by`

const lineColumns = `line_id, entry_id, line_position, account_id, side, amount, currency_code, memo, intercompany_entity_id`

func scanEntryRow(row pgx.Row) (*models.JournalEntry, error) {
	var m models.JournalEntry
	err := row.Scan(
		&m.EntryID,
		&m.ClientID,
		&m.EntityID,
		&m.EntryDate,
		&m.FiscalPeriod,
		&m.Reference,
		&m.Description,
		&m.Status,
		&m.VoidReason,
		&m.ReversesEntryID,
		&m.ReversedByEntryID,
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

func scanLineRow(row pgx.Row) (*models.EntryLine, error) {
	var m models.EntryLine
	err := row.Scan(
		&m.LineID,
		&m.EntryID,
		&m.LinePosition,
		&m.AccountID,
		&m.Side,
		&m.Amount,
		&m.CurrencyCode,
		&m.Memo,
		&m.IntercompanyEntityID,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// CreateEntry persists a new draft entry with its lines atomically. A
// caller-supplied reference colliding within (entity, fiscal period) returns
// ErrConflict.
func (r *PgxEntryRepository) CreateEntry(ctx context.Context, entry domain.JournalEntry) error {
	return r.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := r.insertEntry(ctx, entry); err != nil {
			return err
		}
		return r.insertLines(ctx, entry.EntryID, entry.Lines)
	})
}

func (r *PgxEntryRepository) insertEntry(ctx context.Context, entry domain.JournalEntry) error {
	m := mapping.ToModelEntry(entry)
	query := `
		INSERT INTO journal_entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err := r.conn(ctx).Exec(ctx, query,
		m.EntryID,
		m.ClientID,
		m.EntityID,
		m.EntryDate,
		m.FiscalPeriod,
		m.Reference,
		m.Description,
		m.Status,
		m.VoidReason,
		m.ReversesEntryID,
		m.ReversedByEntryID,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: reference %s already exists for entity %s in period %s",
				apperrors.ErrConflict, m.Reference, m.EntityID, m.FiscalPeriod)
		}
		return apperrors.NewStorageError("failed to insert entry "+m.EntryID, err)
	}
	return nil
}

func (r *PgxEntryRepository) insertLines(ctx context.Context, entryID string, lines []domain.EntryLine) error {
	if len(lines) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	lineQuery := `
		INSERT INTO journal_entry_lines (` + lineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	for i, line := range lines {
		m := mapping.ToModelLine(line, i)
		batch.Queue(lineQuery,
			m.LineID,
			entryID,
			m.LinePosition,
			m.AccountID,
			m.Side,
			m.Amount,
			m.CurrencyCode,
			m.Memo,
			m.IntercompanyEntityID,
		)
	}

	br := r.conn(ctx).SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewStorageError("failed to insert lines for entry "+entryID, err)
	}
	return nil
}

// UpdateEntry replaces the header and lines of a draft entry. The
// expectedUpdatedAt optimistic check returns ErrConflict when another writer
// got there first.
func (r *PgxEntryRepository) UpdateEntry(ctx context.Context, entry domain.JournalEntry, expectedUpdatedAt time.Time) error {
	return r.WithinTransaction(ctx, func(ctx context.Context) error {
		m := mapping.ToModelEntry(entry)
		query := `
			UPDATE journal_entries
			SET entry_date = $2,
			    fiscal_period = $3,
			    reference = $4,
			    description = $5,
			    last_updated_at = $6,
			    last_updated_by = $7
			WHERE entry_id = $1 AND status = 'DRAFT' AND last_updated_at = $8;
		`
		cmdTag, err := r.conn(ctx).Exec(ctx, query,
			m.EntryID,
			m.EntryDate,
			m.FiscalPeriod,
			m.Reference,
			m.Description,
			m.LastUpdatedAt,
			m.LastUpdatedBy,
			expectedUpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: reference %s already exists for entity %s in period %s",
					apperrors.ErrConflict, m.Reference, m.EntityID, m.FiscalPeriod)
			}
			return apperrors.NewStorageError("failed to update entry "+m.EntryID, err)
		}
		if cmdTag.RowsAffected() == 0 {
			return r.explainMissedUpdate(ctx, m.EntryID)
		}

		if _, err := r.conn(ctx).Exec(ctx, `DELETE FROM journal_entry_lines WHERE entry_id = $1;`, m.EntryID); err != nil {
			return apperrors.NewStorageError("failed to clear lines for entry "+m.EntryID, err)
		}
		return r.insertLines(ctx, m.EntryID, entry.Lines)
	})
}

// PostEntry persists the already-transitioned POSTED entry. The status guard
// and the optimistic check make the draft-to-posted flip atomic; the unique
// reference index is the backstop against racing posters.
func (r *PgxEntryRepository) PostEntry(ctx context.Context, entry domain.JournalEntry, expectedUpdatedAt time.Time) error {
	m := mapping.ToModelEntry(entry)
	query := `
		UPDATE journal_entries
		SET status = 'POSTED',
		    reference = $2,
		    fiscal_period = $3,
		    last_updated_at = $4,
		    last_updated_by = $5
		WHERE entry_id = $1 AND status = 'DRAFT' AND last_updated_at = $6;
	`
	cmdTag, err := r.conn(ctx).Exec(ctx, query,
		m.EntryID,
		m.Reference,
		m.FiscalPeriod,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
		expectedUpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: reference %s already exists for entity %s in period %s",
				apperrors.ErrConflict, m.Reference, m.EntityID, m.FiscalPeriod)
		}
		return apperrors.NewStorageError("failed to post entry "+m.EntryID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return r.explainMissedUpdate(ctx, m.EntryID)
	}
	return nil
}

// VoidEntry persists the already-transitioned VOIDED entry. Line data is
// untouched.
func (r *PgxEntryRepository) VoidEntry(ctx context.Context, entry domain.JournalEntry, expectedUpdatedAt time.Time) error {
	m := mapping.ToModelEntry(entry)
	query := `
		UPDATE journal_entries
		SET status = 'VOIDED',
		    void_reason = $2,
		    last_updated_at = $3,
		    last_updated_by = $4
		WHERE entry_id = $1 AND status = 'POSTED' AND last_updated_at = $5;
	`
	cmdTag, err := r.conn(ctx).Exec(ctx, query,
		m.EntryID,
		m.VoidReason,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
		expectedUpdatedAt,
	)
	if err != nil {
		return apperrors.NewStorageError("failed to void entry "+m.EntryID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return r.explainMissedUpdate(ctx, m.EntryID)
	}
	return nil
}

// explainMissedUpdate distinguishes a vanished entry from a lost optimistic
// race after a guarded UPDATE touched zero rows.
func (r *PgxEntryRepository) explainMissedUpdate(ctx context.Context, entryID string) error {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM journal_entries WHERE entry_id = $1);`, entryID).Scan(&exists)
	if err != nil {
		return apperrors.NewStorageError("failed to re-check entry "+entryID, err)
	}
	if !exists {
		return apperrors.NewNotFoundError("entry " + entryID + " not found for update")
	}
	return fmt.Errorf("%w: entry %s was modified concurrently", apperrors.ErrConflict, entryID)
}

// DeleteEntry removes a draft entry, first cascade-deleting any draft
// reversals that reference it. A posted or voided reversal blocks deletion.
func (r *PgxEntryRepository) DeleteEntry(ctx context.Context, entryID string) error {
	return r.WithinTransaction(ctx, func(ctx context.Context) error {
		var blocked bool
		err := r.conn(ctx).QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM journal_entries WHERE reverses_entry_id = $1 AND status <> 'DRAFT');`,
			entryID,
		).Scan(&blocked)
		if err != nil {
			return apperrors.NewStorageError("failed to check reversals of entry "+entryID, err)
		}
		if blocked {
			return fmt.Errorf("%w: entry %s has a posted reversal and cannot be deleted", apperrors.ErrStateTransition, entryID)
		}

		// Cascade draft reversals first so the reverses_entry_id foreign key
		// never dangles.
		rows, err := r.conn(ctx).Query(ctx,
			`SELECT entry_id FROM journal_entries WHERE reverses_entry_id = $1 AND status = 'DRAFT';`,
			entryID,
		)
		if err != nil {
			return apperrors.NewStorageError("failed to find draft reversals of entry "+entryID, err)
		}
		reversalIDs := []string{}
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return apperrors.NewStorageError("failed to scan reversal ID", err)
			}
			reversalIDs = append(reversalIDs, id)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return apperrors.NewStorageError("error iterating reversal rows", err)
		}

		if len(reversalIDs) > 0 {
			if _, err := r.conn(ctx).Exec(ctx, `DELETE FROM journal_entry_lines WHERE entry_id = ANY($1);`, reversalIDs); err != nil {
				return apperrors.NewStorageError("failed to delete reversal lines of entry "+entryID, err)
			}
			if _, err := r.conn(ctx).Exec(ctx, `DELETE FROM journal_entries WHERE entry_id = ANY($1);`, reversalIDs); err != nil {
				return apperrors.NewStorageError("failed to delete draft reversals of entry "+entryID, err)
			}
		}

		// When the deleted draft is itself a reversal, release the original
		// so it can be reversed again.
		if _, err := r.conn(ctx).Exec(ctx, `UPDATE journal_entries SET reversed_by_entry_id = NULL WHERE reversed_by_entry_id = $1;`, entryID); err != nil {
			return apperrors.NewStorageError("failed to unlink reversal "+entryID, err)
		}

		if _, err := r.conn(ctx).Exec(ctx, `DELETE FROM journal_entry_lines WHERE entry_id = $1;`, entryID); err != nil {
			return apperrors.NewStorageError("failed to delete lines of entry "+entryID, err)
		}
		cmdTag, err := r.conn(ctx).Exec(ctx, `DELETE FROM journal_entries WHERE entry_id = $1 AND status = 'DRAFT';`, entryID)
		if err != nil {
			return apperrors.NewStorageError("failed to delete entry "+entryID, err)
		}
		if cmdTag.RowsAffected() == 0 {
			return apperrors.NewNotFoundError("entry " + entryID + " not found for deletion")
		}
		return nil
	})
}

// SaveReversal inserts the reversal draft and sets the original's back-link in
// one transaction. The guarded back-link update rejects a second reversal of
// the same entry.
func (r *PgxEntryRepository) SaveReversal(ctx context.Context, original domain.JournalEntry, reversal domain.JournalEntry) error {
	return r.WithinTransaction(ctx, func(ctx context.Context) error {
		query := `
			UPDATE journal_entries
			SET reversed_by_entry_id = $2,
			    last_updated_at = $3,
			    last_updated_by = $4
			WHERE entry_id = $1 AND status = 'POSTED' AND reversed_by_entry_id IS NULL;
		`
		cmdTag, err := r.conn(ctx).Exec(ctx, query,
			original.EntryID,
			reversal.EntryID,
			original.LastUpdatedAt,
			original.LastUpdatedBy,
		)
		if err != nil {
			return apperrors.NewStorageError("failed to link reversal to entry "+original.EntryID, err)
		}
		if cmdTag.RowsAffected() == 0 {
			return fmt.Errorf("%w: entry %s is already reversed or no longer posted", apperrors.ErrConflict, original.EntryID)
		}

		if err := r.insertEntry(ctx, reversal); err != nil {
			return err
		}
		return r.insertLines(ctx, reversal.EntryID, reversal.Lines)
	})
}

// FindEntryByID retrieves an entry with its lines in insertion order.
func (r *PgxEntryRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE entry_id = $1;`
	m, err := scanEntryRow(r.conn(ctx).QueryRow(ctx, query, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewStorageError("failed to find entry by ID "+entryID, err)
	}

	linesByEntry, err := r.findLinesByEntryIDs(ctx, []string{entryID})
	if err != nil {
		return nil, err
	}

	entry := mapping.ToDomainEntry(*m)
	entry.Lines = linesByEntry[entryID]
	return &entry, nil
}

// findLinesByEntryIDs loads the lines of the given entries keyed by entry ID,
// each slice ordered by line position.
func (r *PgxEntryRepository) findLinesByEntryIDs(ctx context.Context, entryIDs []string) (map[string][]domain.EntryLine, error) {
	linesByEntry := make(map[string][]domain.EntryLine, len(entryIDs))
	for _, id := range entryIDs {
		linesByEntry[id] = []domain.EntryLine{}
	}
	if len(entryIDs) == 0 {
		return linesByEntry, nil
	}

	query := `
		SELECT ` + lineColumns + `
		FROM journal_entry_lines
		WHERE entry_id = ANY($1)
		ORDER BY entry_id, line_position;
	`
	rows, err := r.conn(ctx).Query(ctx, query, entryIDs)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to query entry lines", err)
	}
	defer rows.Close()

	for rows.Next() {
		m, err := scanLineRow(rows)
		if err != nil {
			return nil, apperrors.NewStorageError("failed to scan line row", err)
		}
		linesByEntry[m.EntryID] = append(linesByEntry[m.EntryID], mapping.ToDomainLine(*m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("error iterating line rows", err)
	}
	return linesByEntry, nil
}

// ListEntries retrieves a filtered, cursor-paginated list of entries with
// lines for a client. Amount filters are a line-level predicate: an entry
// matches when any of its lines falls within the range.
func (r *PgxEntryRepository) ListEntries(ctx context.Context, clientID string, filter portsrepo.EntryFilter, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// Fetch one extra item to determine if there's a next page.
	fetchLimit := limit + 1

	baseQuery := `
		SELECT ` + entryColumns + `
		FROM journal_entries
	`
	filterClause := `WHERE client_id = $1`
	args := []interface{}{clientID}

	addArg := func(clause string, value interface{}) {
		args = append(args, value)
		filterClause += " AND " + clause + "$" + strconv.Itoa(len(args))
	}

	if filter.EntityID != "" {
		addArg("entity_id = ", filter.EntityID)
	}
	if filter.DateFrom != nil {
		addArg("entry_date >= ", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		addArg("entry_date <= ", *filter.DateTo)
	}
	if filter.Description != "" {
		addArg("description ILIKE '%' || ", filter.Description)
		filterClause += " || '%'"
	}
	if filter.AccountID != "" {
		addArg("EXISTS (SELECT 1 FROM journal_entry_lines l WHERE l.entry_id = journal_entries.entry_id AND l.account_id = ", filter.AccountID)
		filterClause += ")"
	}
	if filter.AmountMin != nil || filter.AmountMax != nil {
		amountClause := `EXISTS (SELECT 1 FROM journal_entry_lines l WHERE l.entry_id = journal_entries.entry_id`
		if filter.AmountMin != nil {
			args = append(args, *filter.AmountMin)
			amountClause += ` AND l.amount >= $` + strconv.Itoa(len(args))
		}
		if filter.AmountMax != nil {
			args = append(args, *filter.AmountMax)
			amountClause += ` AND l.amount <= $` + strconv.Itoa(len(args))
		}
		filterClause += " AND " + amountClause + ")"
	}

	// Ordering must be stable for the cursor to be correct; the entry id
	// breaks timestamp ties.
	orderByClause := `ORDER BY entry_date DESC, created_at DESC, entry_id DESC`

	if nextToken != nil && *nextToken != "" {
		lastDate, lastCreatedAt, lastEntryID, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, fmt.Errorf("%w: invalid nextToken: %v", apperrors.ErrValidation, decodeErr)
		}
		args = append(args, lastDate, lastCreatedAt, lastEntryID)
		filterClause += ` AND (entry_date, created_at, entry_id) < ($` + strconv.Itoa(len(args)-2) + `, $` + strconv.Itoa(len(args)-1) + `, $` + strconv.Itoa(len(args)) + `)`
	}

	args = append(args, fetchLimit)
	query := baseQuery + " " + filterClause + " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)) + ";"

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewStorageError("failed to query entries for client "+clientID, err)
	}
	defer rows.Close()

	modelEntries := make([]models.JournalEntry, 0, fetchLimit)
	for rows.Next() {
		m, err := scanEntryRow(rows)
		if err != nil {
			return nil, nil, apperrors.NewStorageError("failed to scan entry row", err)
		}
		modelEntries = append(modelEntries, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewStorageError("error iterating entry rows", err)
	}

	var nextTokenVal *string
	results := modelEntries
	if len(modelEntries) > limit {
		last := modelEntries[limit-1]
		token := pagination.EncodeToken(last.EntryDate, last.CreatedAt, last.EntryID)
		nextTokenVal = &token
		results = modelEntries[:limit]
	}

	entryIDs := make([]string, len(results))
	for i, m := range results {
		entryIDs[i] = m.EntryID
	}
	linesByEntry, err := r.findLinesByEntryIDs(ctx, entryIDs)
	if err != nil {
		return nil, nil, err
	}

	entries := make([]domain.JournalEntry, len(results))
	for i, m := range results {
		entries[i] = mapping.ToDomainEntry(m)
		entries[i].Lines = linesByEntry[m.EntryID]
	}
	return entries, nextTokenVal, nil
}

// FindDraftReversals returns the draft entries whose ReversesEntryID points at
// the given entry.
func (r *PgxEntryRepository) FindDraftReversals(ctx context.Context, entryID string) ([]domain.JournalEntry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM journal_entries
		WHERE reverses_entry_id = $1 AND status = 'DRAFT'
		ORDER BY created_at;
	`
	rows, err := r.conn(ctx).Query(ctx, query, entryID)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to query draft reversals of entry "+entryID, err)
	}
	defer rows.Close()

	modelEntries := []models.JournalEntry{}
	for rows.Next() {
		m, err := scanEntryRow(rows)
		if err != nil {
			return nil, apperrors.NewStorageError("failed to scan entry row", err)
		}
		modelEntries = append(modelEntries, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("error iterating entry rows", err)
	}

	entryIDs := make([]string, len(modelEntries))
	for i, m := range modelEntries {
		entryIDs[i] = m.EntryID
	}
	linesByEntry, err := r.findLinesByEntryIDs(ctx, entryIDs)
	if err != nil {
		return nil, err
	}

	entries := make([]domain.JournalEntry, len(modelEntries))
	for i, m := range modelEntries {
		entries[i] = mapping.ToDomainEntry(m)
		entries[i].Lines = linesByEntry[m.EntryID]
	}
	return entries, nil
}

// HasPostedReversal reports whether a posted reversal references the entry.
func (r *PgxEntryRepository) HasPostedReversal(ctx context.Context, entryID string) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM journal_entries WHERE reverses_entry_id = $1 AND status = 'POSTED');`,
		entryID,
	).Scan(&exists)
	if err != nil {
		return false, apperrors.NewStorageError("failed to check posted reversals of entry "+entryID, err)
	}
	return exists, nil
}
