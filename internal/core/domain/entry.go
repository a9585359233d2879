package domain

import (
	"fmt"
	"strconv"
	"time"

	"github.com/finbooks/general_ledger/internal/apperrors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryStatus indicates the lifecycle state of a journal entry.
type EntryStatus string

const (
	Draft  EntryStatus = "DRAFT"
	Posted EntryStatus = "POSTED"
	Voided EntryStatus = "VOIDED"
)

// EntrySide indicates whether a line is a Debit or a Credit.
type EntrySide string

const (
	Debit  EntrySide = "DEBIT"
	Credit EntrySide = "CREDIT"
)

// Flip returns the opposite side, used when building reversal entries.
func (s EntrySide) Flip() EntrySide {
	if s == Debit {
		return Credit
	}
	return Debit
}

// EntryLine represents a single debit or credit within a journal entry,
// affecting one account.
type EntryLine struct {
	LineID       string          `json:"lineID"`    // Primary key (UUID)
	EntryID      string          `json:"entryID"`   // FK -> JournalEntry.EntryID
	AccountID    string          `json:"accountID"` // FK -> Account.AccountID
	Side         EntrySide       `json:"side"`      // DEBIT or CREDIT
	Amount       decimal.Decimal `json:"amount"`    // Always positive
	CurrencyCode string          `json:"currencyCode"`
	Memo         string          `json:"memo"` // Nullable line note
	// IntercompanyEntityID tags the line as owed to/from another entity so
	// consolidation can eliminate the offsetting balances. Empty when not
	// intercompany.
	IntercompanyEntityID string `json:"intercompanyEntityID,omitempty"`
}

// JournalEntry is the aggregate root: header, ordered lines and the status
// state machine. Status only changes through the transition methods below;
// repositories persist whatever the aggregate decided.
type JournalEntry struct {
	EntryID      string      `json:"entryID"` // Primary key (UUID), immutable once assigned
	ClientID     string      `json:"clientID"`
	EntityID     string      `json:"entityID"`
	EntryDate    time.Time   `json:"entryDate"`
	FiscalPeriod string      `json:"fiscalPeriod"` // Derived from EntryDate, see FiscalPeriodOf
	Reference    string      `json:"reference"`    // Human-readable, unique per (entity, period)
	Description  string      `json:"description"`
	Status       EntryStatus `json:"status"`
	VoidReason   string      `json:"voidReason,omitempty"` // Set only when Status == VOIDED
	// Reversal linkage, both nullable and self-referential.
	ReversesEntryID   *string     `json:"reversesEntryID,omitempty"`
	ReversedByEntryID *string     `json:"reversedByEntryID,omitempty"`
	Lines             []EntryLine `json:"lines"`
	AuditFields
}

// FiscalPeriodOf derives the fiscal period key for an entry date. Reference
// uniqueness and sequencing are scoped to (entity, fiscal period).
func FiscalPeriodOf(date time.Time) string {
	return strconv.Itoa(date.UTC().Year())
}

// IsDraftReversal reports whether the entry is an unposted reversal of a
// posted entry.
func (e *JournalEntry) IsDraftReversal() bool {
	return e.Status == Draft && e.ReversesEntryID != nil
}

// CanMutateAttachments reports whether the file-storage subsystem may add or
// remove attachments for this entry. Permitted only while the entry is a
// draft (including draft reversals).
func (e *JournalEntry) CanMutateAttachments() bool {
	return e.Status == Draft
}

// EnsureUpdatable returns an error unless the entry's header and lines may be
// freely replaced.
func (e *JournalEntry) EnsureUpdatable() error {
	switch e.Status {
	case Draft:
		return nil
	case Posted:
		return fmt.Errorf("%w: cannot mutate a posted entry's lines", apperrors.ErrStateTransition)
	default:
		return fmt.Errorf("%w: cannot update a %s entry", apperrors.ErrStateTransition, e.Status)
	}
}

// EnsureDeletable returns an error unless the entry itself may be removed.
// The cascade rule for draft reversals referencing this entry is enforced by
// the repositories, not here.
func (e *JournalEntry) EnsureDeletable() error {
	switch e.Status {
	case Draft:
		return nil
	case Posted:
		return fmt.Errorf("%w: cannot delete a posted entry", apperrors.ErrStateTransition)
	default:
		return fmt.Errorf("%w: cannot delete a %s entry", apperrors.ErrStateTransition, e.Status)
	}
}

// Post transitions the entry from DRAFT to POSTED with the given reference.
// Balance and account validation happen in the service before this is called;
// Post guards the transition itself.
func (e *JournalEntry) Post(reference string, userID string, now time.Time) error {
	if e.Status != Draft {
		return fmt.Errorf("%w: only a draft entry can be posted, status is %s", apperrors.ErrStateTransition, e.Status)
	}
	if reference == "" {
		return fmt.Errorf("%w: reference is required to post an entry", apperrors.ErrValidation)
	}
	if len(e.Lines) < 2 {
		return fmt.Errorf("%w: entry must have at least two lines to post", apperrors.ErrValidation)
	}
	e.Status = Posted
	e.Reference = reference
	e.FiscalPeriod = FiscalPeriodOf(e.EntryDate)
	e.LastUpdatedAt = now
	e.LastUpdatedBy = userID
	return nil
}

// MarkVoided transitions the entry from POSTED to VOIDED. Line data is left
// untouched; the reason is recorded on the header.
func (e *JournalEntry) MarkVoided(reason string, userID string, now time.Time) error {
	if e.Status != Posted {
		return fmt.Errorf("%w: only a posted entry can be voided, status is %s", apperrors.ErrStateTransition, e.Status)
	}
	if reason == "" {
		return fmt.Errorf("%w: a reason is required to void an entry", apperrors.ErrValidation)
	}
	e.Status = Voided
	e.VoidReason = reason
	e.LastUpdatedAt = now
	e.LastUpdatedBy = userID
	return nil
}

// BuildReversal constructs a new draft entry whose lines mirror this entry
// with debit/credit sides flipped. The receiver is not mutated; the caller
// links ReversedByEntryID when persisting both atomically.
func (e *JournalEntry) BuildReversal(date time.Time, userID string, now time.Time) (*JournalEntry, error) {
	if e.Status != Posted {
		return nil, fmt.Errorf("%w: only a posted entry can be reversed, status is %s", apperrors.ErrStateTransition, e.Status)
	}
	if e.ReversesEntryID != nil {
		return nil, fmt.Errorf("%w: cannot reverse an entry that is itself a reversal", apperrors.ErrStateTransition)
	}
	if e.ReversedByEntryID != nil {
		return nil, fmt.Errorf("%w: entry %s already has a reversal", apperrors.ErrConflict, e.EntryID)
	}
	if date.Before(e.EntryDate) {
		return nil, fmt.Errorf("%w: reversal date must be on or after the original entry date", apperrors.ErrValidation)
	}

	reversalID := uuid.NewString()
	lines := make([]EntryLine, len(e.Lines))
	for i, orig := range e.Lines {
		lines[i] = EntryLine{
			LineID:               uuid.NewString(),
			EntryID:              reversalID,
			AccountID:            orig.AccountID,
			Side:                 orig.Side.Flip(),
			Amount:               orig.Amount,
			CurrencyCode:         orig.CurrencyCode,
			Memo:                 orig.Memo,
			IntercompanyEntityID: orig.IntercompanyEntityID,
		}
	}

	originalID := e.EntryID
	return &JournalEntry{
		EntryID:         reversalID,
		ClientID:        e.ClientID,
		EntityID:        e.EntityID,
		EntryDate:       date,
		FiscalPeriod:    FiscalPeriodOf(date),
		Description:     fmt.Sprintf("Reversal of %s", e.Reference),
		Status:          Draft,
		ReversesEntryID: &originalID,
		Lines:           lines,
		AuditFields: AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}, nil
}
