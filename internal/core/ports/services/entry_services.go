package services

import (
	"context"
	"time"

	"github.com/finbooks/general_ledger/internal/core/domain"
	"github.com/finbooks/general_ledger/internal/dto"
)

// EntrySvcFacade exposes the journal entry aggregate's operations. Every
// status-changing operation returns the full updated entry.
type EntrySvcFacade interface {
	// CreateEntry creates a draft entry. Lines may be empty; balance is not
	// checked until post. A caller-supplied reference is checked for
	// uniqueness within (entity, fiscal period).
	CreateEntry(ctx context.Context, clientID string, req dto.CreateEntryRequest, creatorUserID string) (*domain.JournalEntry, error)

	// GetEntryByID retrieves an entry with its lines.
	GetEntryByID(ctx context.Context, clientID string, entryID string, requestingUserID string) (*domain.JournalEntry, error)

	// ListEntries retrieves a filtered, paginated entry list.
	ListEntries(ctx context.Context, clientID string, params dto.ListEntriesParams, requestingUserID string) (*dto.ListEntriesResponse, error)

	// UpdateEntry replaces header/lines of a draft entry.
	UpdateEntry(ctx context.Context, clientID string, entryID string, req dto.UpdateEntryRequest, requestingUserID string) (*domain.JournalEntry, error)

	// PostEntry validates balance and account references, assigns or
	// confirms the reference, and transitions the draft to POSTED
	// atomically. On any failure the entry remains a draft.
	PostEntry(ctx context.Context, clientID string, entryID string, requestingUserID string) (*domain.JournalEntry, error)

	// VoidEntry transitions a posted entry to VOIDED. Requires the admin
	// role and a non-empty reason; line data is untouched.
	VoidEntry(ctx context.Context, clientID string, entryID string, reason string, requestingUserID string) (*domain.JournalEntry, error)

	// ReverseEntry creates a linked draft whose lines mirror the posted
	// original with sides flipped. The original is never mutated beyond
	// its ReversedByEntryID back-link.
	ReverseEntry(ctx context.Context, clientID string, entryID string, reversalDate time.Time, requestingUserID string) (*domain.JournalEntry, error)

	// DeleteEntry removes a draft entry, cascade-deleting draft reversals
	// that reference it and rejecting when a posted reversal does.
	DeleteEntry(ctx context.Context, clientID string, entryID string, requestingUserID string) error

	// CanMutateAttachments reports whether the file-storage subsystem may
	// mutate attachments for the entry in its current status.
	CanMutateAttachments(ctx context.Context, clientID string, entryID string, requestingUserID string) (bool, error)
}

// BatchSvcFacade ingests many candidate entries in one unit of work with
// per-entry validation and partial-failure reporting.
type BatchSvcFacade interface {
	ProcessBatch(ctx context.Context, clientID string, createdBy string, entries []dto.CreateEntryRequest) (*dto.BatchResult, error)
}
