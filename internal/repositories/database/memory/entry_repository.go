package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/finbooks/general_ledger/internal/apperrors"
	"github.com/finbooks/general_ledger/internal/core/domain"
	portsrepo "github.com/finbooks/general_ledger/internal/core/ports/repositories"
	"github.com/finbooks/general_ledger/internal/utils/pagination"
)

// EntryRepository is the in-memory journal entry adapter.
type EntryRepository struct {
	store *Store
}

func newEntryRepository(store *Store) portsrepo.EntryRepositoryWithTx {
	return &EntryRepository{store: store}
}

var _ portsrepo.EntryRepositoryWithTx = (*EntryRepository)(nil)

// WithinTransaction delegates to the shared store transaction.
func (r *EntryRepository) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.store.WithinTransaction(ctx, fn)
}

// referenceInUse reports whether another entry already holds the reference
// within the (entity, fiscal period) scope. Callers must hold the store lock.
func (r *EntryRepository) referenceInUse(entityID, fiscalPeriod, reference, excludeEntryID string) bool {
	if reference == "" {
		return false
	}
	for _, e := range r.store.entries {
		if e.EntryID == excludeEntryID {
			continue
		}
		if e.EntityID == entityID && e.FiscalPeriod == fiscalPeriod && e.Reference == reference {
			return true
		}
	}
	return false
}

// CreateEntry persists a new draft entry with its lines.
func (r *EntryRepository) CreateEntry(ctx context.Context, entry domain.JournalEntry) error {
	defer r.store.lock(ctx)()
	if _, exists := r.store.entries[entry.EntryID]; exists {
		return fmt.Errorf("%w: entry %s already exists", apperrors.ErrConflict, entry.EntryID)
	}
	if r.referenceInUse(entry.EntityID, entry.FiscalPeriod, entry.Reference, entry.EntryID) {
		return fmt.Errorf("%w: reference %s already exists for entity %s in period %s",
			apperrors.ErrConflict, entry.Reference, entry.EntityID, entry.FiscalPeriod)
	}
	r.store.entries[entry.EntryID] = copyEntry(entry)
	return nil
}

// UpdateEntry replaces the header and lines of a draft entry with an
// optimistic last-updated check.
func (r *EntryRepository) UpdateEntry(ctx context.Context, entry domain.JournalEntry, expectedUpdatedAt time.Time) error {
	defer r.store.lock(ctx)()
	stored, exists := r.store.entries[entry.EntryID]
	if !exists {
		return apperrors.NewNotFoundError("entry " + entry.EntryID + " not found for update")
	}
	if stored.Status != domain.Draft {
		return fmt.Errorf("%w: entry %s is no longer a draft", apperrors.ErrConflict, entry.EntryID)
	}
	if !stored.LastUpdatedAt.Equal(expectedUpdatedAt) {
		return fmt.Errorf("%w: entry %s was modified concurrently", apperrors.ErrConflict, entry.EntryID)
	}
	if r.referenceInUse(entry.EntityID, entry.FiscalPeriod, entry.Reference, entry.EntryID) {
		return fmt.Errorf("%w: reference %s already exists for entity %s in period %s",
			apperrors.ErrConflict, entry.Reference, entry.EntityID, entry.FiscalPeriod)
	}
	r.store.entries[entry.EntryID] = copyEntry(entry)
	return nil
}

// PostEntry persists the already-transitioned POSTED entry, guarding the
// draft status, the optimistic check and reference uniqueness.
func (r *EntryRepository) PostEntry(ctx context.Context, entry domain.JournalEntry, expectedUpdatedAt time.Time) error {
	defer r.store.lock(ctx)()
	stored, exists := r.store.entries[entry.EntryID]
	if !exists {
		return apperrors.NewNotFoundError("entry " + entry.EntryID + " not found for update")
	}
	if stored.Status != domain.Draft {
		return fmt.Errorf("%w: entry %s is no longer a draft", apperrors.ErrConflict, entry.EntryID)
	}
	if !stored.LastUpdatedAt.Equal(expectedUpdatedAt) {
		return fmt.Errorf("%w: entry %s was modified concurrently", apperrors.ErrConflict, entry.EntryID)
	}
	if r.referenceInUse(entry.EntityID, entry.FiscalPeriod, entry.Reference, entry.EntryID) {
		return fmt.Errorf("%w: reference %s already exists for entity %s in period %s",
			apperrors.ErrConflict, entry.Reference, entry.EntityID, entry.FiscalPeriod)
	}

	stored.Status = domain.Posted
	stored.Reference = entry.Reference
	stored.FiscalPeriod = entry.FiscalPeriod
	stored.LastUpdatedAt = entry.LastUpdatedAt
	stored.LastUpdatedBy = entry.LastUpdatedBy
	r.store.entries[entry.EntryID] = stored
	return nil
}

// VoidEntry persists the already-transitioned VOIDED entry. Line data is
// untouched.
func (r *EntryRepository) VoidEntry(ctx context.Context, entry domain.JournalEntry, expectedUpdatedAt time.Time) error {
	defer r.store.lock(ctx)()
	stored, exists := r.store.entries[entry.EntryID]
	if !exists {
		return apperrors.NewNotFoundError("entry " + entry.EntryID + " not found for update")
	}
	if stored.Status != domain.Posted {
		return fmt.Errorf("%w: entry %s is not posted", apperrors.ErrConflict, entry.EntryID)
	}
	if !stored.LastUpdatedAt.Equal(expectedUpdatedAt) {
		return fmt.Errorf("%w: entry %s was modified concurrently", apperrors.ErrConflict, entry.EntryID)
	}

	stored.Status = domain.Voided
	stored.VoidReason = entry.VoidReason
	stored.LastUpdatedAt = entry.LastUpdatedAt
	stored.LastUpdatedBy = entry.LastUpdatedBy
	r.store.entries[entry.EntryID] = stored
	return nil
}

// DeleteEntry removes a draft entry, first cascade-deleting any draft
// reversals that reference it. A posted or voided reversal blocks deletion.
func (r *EntryRepository) DeleteEntry(ctx context.Context, entryID string) error {
	defer r.store.lock(ctx)()
	stored, exists := r.store.entries[entryID]
	if !exists {
		return apperrors.NewNotFoundError("entry " + entryID + " not found for deletion")
	}
	if stored.Status != domain.Draft {
		return fmt.Errorf("%w: cannot delete a %s entry", apperrors.ErrStateTransition, stored.Status)
	}

	reversalIDs := []string{}
	for _, e := range r.store.entries {
		if e.ReversesEntryID != nil && *e.ReversesEntryID == entryID {
			if e.Status != domain.Draft {
				return fmt.Errorf("%w: entry %s has a posted reversal and cannot be deleted", apperrors.ErrStateTransition, entryID)
			}
			reversalIDs = append(reversalIDs, e.EntryID)
		}
	}

	for _, id := range reversalIDs {
		delete(r.store.entries, id)
	}

	// When the deleted draft is itself a reversal, release the original so
	// it can be reversed again.
	for id, e := range r.store.entries {
		if e.ReversedByEntryID != nil && *e.ReversedByEntryID == entryID {
			e.ReversedByEntryID = nil
			r.store.entries[id] = e
		}
	}

	delete(r.store.entries, entryID)
	return nil
}

// SaveReversal inserts the reversal draft and sets the original's back-link
// atomically.
func (r *EntryRepository) SaveReversal(ctx context.Context, original domain.JournalEntry, reversal domain.JournalEntry) error {
	defer r.store.lock(ctx)()
	stored, exists := r.store.entries[original.EntryID]
	if !exists {
		return apperrors.NewNotFoundError("entry " + original.EntryID + " not found for reversal")
	}
	if stored.Status != domain.Posted || stored.ReversedByEntryID != nil {
		return fmt.Errorf("%w: entry %s is already reversed or no longer posted", apperrors.ErrConflict, original.EntryID)
	}
	if _, exists := r.store.entries[reversal.EntryID]; exists {
		return fmt.Errorf("%w: entry %s already exists", apperrors.ErrConflict, reversal.EntryID)
	}

	reversalID := reversal.EntryID
	stored.ReversedByEntryID = &reversalID
	stored.LastUpdatedAt = original.LastUpdatedAt
	stored.LastUpdatedBy = original.LastUpdatedBy
	r.store.entries[original.EntryID] = stored
	r.store.entries[reversal.EntryID] = copyEntry(reversal)
	return nil
}

// FindEntryByID retrieves an entry with its lines in insertion order.
func (r *EntryRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	defer r.store.rlock(ctx)()
	stored, exists := r.store.entries[entryID]
	if !exists {
		return nil, apperrors.ErrNotFound
	}
	entry := copyEntry(stored)
	return &entry, nil
}

// matchesFilter applies the list filters to one entry.
func matchesFilter(e domain.JournalEntry, filter portsrepo.EntryFilter) bool {
	if filter.EntityID != "" && e.EntityID != filter.EntityID {
		return false
	}
	if filter.DateFrom != nil && e.EntryDate.Before(*filter.DateFrom) {
		return false
	}
	if filter.DateTo != nil && e.EntryDate.After(*filter.DateTo) {
		return false
	}
	if filter.Description != "" &&
		!strings.Contains(strings.ToLower(e.Description), strings.ToLower(filter.Description)) {
		return false
	}
	if filter.AccountID != "" {
		found := false
		for _, line := range e.Lines {
			if line.AccountID == filter.AccountID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.AmountMin != nil || filter.AmountMax != nil {
		found := false
		for _, line := range e.Lines {
			if filter.AmountMin != nil && line.Amount.LessThan(*filter.AmountMin) {
				continue
			}
			if filter.AmountMax != nil && line.Amount.GreaterThan(*filter.AmountMax) {
				continue
			}
			found = true
			break
		}
		if !found {
			return false
		}
	}
	return true
}

// ListEntries retrieves a filtered, cursor-paginated list of entries for a
// client, newest first.
func (r *EntryRepository) ListEntries(ctx context.Context, clientID string, filter portsrepo.EntryFilter, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	defer r.store.rlock(ctx)()
	if limit <= 0 {
		limit = 20
	}

	matched := []domain.JournalEntry{}
	for _, e := range r.store.entries {
		if e.ClientID != clientID {
			continue
		}
		if !matchesFilter(e, filter) {
			continue
		}
		matched = append(matched, copyEntry(e))
	}

	// Newest first, entry id breaking timestamp ties, matching the SQL
	// adapter's ordering so cursors behave identically.
	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].EntryDate.Equal(matched[j].EntryDate) {
			return matched[i].EntryDate.After(matched[j].EntryDate)
		}
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].EntryID > matched[j].EntryID
	})

	if nextToken != nil && *nextToken != "" {
		lastDate, lastCreatedAt, lastEntryID, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: invalid nextToken: %v", apperrors.ErrValidation, err)
		}
		after := matched[:0:0]
		for _, e := range matched {
			if e.EntryDate.Before(lastDate) ||
				(e.EntryDate.Equal(lastDate) && e.CreatedAt.Before(lastCreatedAt)) ||
				(e.EntryDate.Equal(lastDate) && e.CreatedAt.Equal(lastCreatedAt) && e.EntryID < lastEntryID) {
				after = append(after, e)
			}
		}
		matched = after
	}

	var nextTokenVal *string
	if len(matched) > limit {
		last := matched[limit-1]
		token := pagination.EncodeToken(last.EntryDate, last.CreatedAt, last.EntryID)
		nextTokenVal = &token
		matched = matched[:limit]
	}
	return matched, nextTokenVal, nil
}

// FindDraftReversals returns the draft entries whose ReversesEntryID points at
// the given entry.
func (r *EntryRepository) FindDraftReversals(ctx context.Context, entryID string) ([]domain.JournalEntry, error) {
	defer r.store.rlock(ctx)()
	reversals := []domain.JournalEntry{}
	for _, e := range r.store.entries {
		if e.Status == domain.Draft && e.ReversesEntryID != nil && *e.ReversesEntryID == entryID {
			reversals = append(reversals, copyEntry(e))
		}
	}
	sort.Slice(reversals, func(i, j int) bool {
		return reversals[i].CreatedAt.Before(reversals[j].CreatedAt)
	})
	return reversals, nil
}

// HasPostedReversal reports whether a posted reversal references the entry.
func (r *EntryRepository) HasPostedReversal(ctx context.Context, entryID string) (bool, error) {
	defer r.store.rlock(ctx)()
	for _, e := range r.store.entries {
		if e.Status == domain.Posted && e.ReversesEntryID != nil && *e.ReversesEntryID == entryID {
			return true, nil
		}
	}
	return false, nil
}
