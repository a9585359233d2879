package repositories

import (
	"context"
	"time"

	"github.com/finbooks/general_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// EntryFilter narrows ListEntries results. Zero values mean "no constraint".
// AmountMin/AmountMax are a line-level predicate: an entry matches when ANY of
// its lines has an amount within the range.
type EntryFilter struct {
	EntityID    string
	AccountID   string
	DateFrom    *time.Time
	DateTo      *time.Time
	Description string // Case-insensitive substring match on the entry description
	AmountMin   *decimal.Decimal
	AmountMax   *decimal.Decimal
}

// EntryReader defines read operations for journal entry data.
type EntryReader interface {
	// FindEntryByID retrieves an entry with its lines in insertion order.
	FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// ListEntries retrieves a filtered, cursor-paginated list of entries
	// (with lines) for a client. It returns the entries, a token for the
	// next page, and an error.
	ListEntries(ctx context.Context, clientID string, filter EntryFilter, limit int, nextToken *string) ([]domain.JournalEntry, *string, error)

	// FindDraftReversals returns the draft entries whose ReversesEntryID
	// points at the given entry.
	FindDraftReversals(ctx context.Context, entryID string) ([]domain.JournalEntry, error)

	// HasPostedReversal reports whether a posted reversal references the
	// given entry.
	HasPostedReversal(ctx context.Context, entryID string) (bool, error)
}

// EntryWriter defines write operations for journal entry data. Every method
// that changes state persists header, lines and status atomically; on error
// nothing is written.
type EntryWriter interface {
	// CreateEntry persists a new draft entry with its lines. Returns
	// ErrConflict when a caller-supplied reference collides within the
	// entry's (entity, fiscal period) scope.
	CreateEntry(ctx context.Context, entry domain.JournalEntry) error

	// UpdateEntry replaces the header and lines of a draft entry. The
	// expectedUpdatedAt optimistic check returns ErrConflict when another
	// writer got there first.
	UpdateEntry(ctx context.Context, entry domain.JournalEntry, expectedUpdatedAt time.Time) error

	// DeleteEntry removes a draft entry, first cascade-deleting any draft
	// reversals that reference it. It returns ErrStateTransition when a
	// posted reversal references the entry.
	DeleteEntry(ctx context.Context, entryID string) error

	// PostEntry persists the already-transitioned POSTED entry (status,
	// reference, fiscal period). Returns ErrConflict on a duplicate
	// reference or when expectedUpdatedAt no longer matches.
	PostEntry(ctx context.Context, entry domain.JournalEntry, expectedUpdatedAt time.Time) error

	// VoidEntry persists the already-transitioned VOIDED entry.
	VoidEntry(ctx context.Context, entry domain.JournalEntry, expectedUpdatedAt time.Time) error

	// SaveReversal inserts the reversal draft and sets the original's
	// ReversedByEntryID in one transaction.
	SaveReversal(ctx context.Context, original domain.JournalEntry, reversal domain.JournalEntry) error
}

// EntryRepositoryFacade combines all entry-related repository interfaces.
type EntryRepositoryFacade interface {
	EntryReader
	EntryWriter
}

// EntryRepositoryWithTx extends EntryRepositoryFacade with transaction
// capabilities, required by the batch processor.
type EntryRepositoryWithTx interface {
	EntryRepositoryFacade
	TransactionManager
}
