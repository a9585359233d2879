package dto

import (
	"time"

	"github.com/finbooks/general_ledger/internal/core/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryLineRequest is one debit/credit line of an inbound entry payload.
type EntryLineRequest struct {
	AccountID string           `json:"accountID" validate:"required"`
	Side      domain.EntrySide `json:"side" validate:"required,oneof=DEBIT CREDIT"`
	Amount    decimal.Decimal  `json:"amount" validate:"required"`
	// CurrencyCode overrides the entry currency for this line when set.
	CurrencyCode         string `json:"currencyCode,omitempty" validate:"omitempty,len=3"`
	Memo                 string `json:"memo,omitempty"`
	IntercompanyEntityID string `json:"intercompanyEntityID,omitempty"`
}

// CreateEntryRequest is the inbound payload for creating a draft entry.
// Reference is optional: when empty it is auto-assigned at post time; when
// supplied it is validated for uniqueness within (entity, fiscal period).
// Lines may be empty on create; balance is only enforced at post.
type CreateEntryRequest struct {
	EntityID     string             `json:"entityID" validate:"required"`
	Date         time.Time          `json:"date" validate:"required"`
	Description  string             `json:"description" validate:"required"`
	Reference    string             `json:"reference,omitempty" validate:"omitempty,max=64"`
	CurrencyCode string             `json:"currencyCode" validate:"required,len=3"`
	Lines        []EntryLineRequest `json:"lines" validate:"omitempty,dive"`
}

// UpdateEntryRequest is the inbound payload for updating a draft entry.
// Nil fields are left unchanged; a non-nil Lines slice replaces all lines.
type UpdateEntryRequest struct {
	Date         *time.Time          `json:"date,omitempty"`
	Description  *string             `json:"description,omitempty"`
	CurrencyCode *string             `json:"currencyCode,omitempty" validate:"omitempty,len=3"`
	Lines        *[]EntryLineRequest `json:"lines,omitempty" validate:"omitempty,dive"`
}

// ListEntriesParams carries list filters and cursor pagination inputs.
type ListEntriesParams struct {
	EntityID    string           `json:"entityID,omitempty"`
	AccountID   string           `json:"accountID,omitempty"`
	DateFrom    *time.Time       `json:"dateFrom,omitempty"`
	DateTo      *time.Time       `json:"dateTo,omitempty"`
	Description string           `json:"description,omitempty"`
	AmountMin   *decimal.Decimal `json:"amountMin,omitempty"`
	AmountMax   *decimal.Decimal `json:"amountMax,omitempty"`
	Limit       int              `json:"limit,omitempty"`
	NextToken   *string          `json:"nextToken,omitempty"`
}

// EntryLineResponse is the outbound shape of a single line.
type EntryLineResponse struct {
	LineID               string          `json:"lineID"`
	AccountID            string          `json:"accountID"`
	Side                 string          `json:"side"`
	Amount               decimal.Decimal `json:"amount"`
	CurrencyCode         string          `json:"currencyCode"`
	Memo                 string          `json:"memo,omitempty"`
	IntercompanyEntityID string          `json:"intercompanyEntityID,omitempty"`
}

// EntryResponse is the full outbound shape of an entry. Every status-changing
// operation returns it so callers can refresh derived views without a second
// round trip.
type EntryResponse struct {
	EntryID           string              `json:"entryID"`
	ClientID          string              `json:"clientID"`
	EntityID          string              `json:"entityID"`
	Date              time.Time           `json:"date"`
	FiscalPeriod      string              `json:"fiscalPeriod,omitempty"`
	Reference         string              `json:"reference,omitempty"`
	Description       string              `json:"description"`
	Status            string              `json:"status"`
	VoidReason        string              `json:"voidReason,omitempty"`
	ReversesEntryID   *string             `json:"reversesEntryID,omitempty"`
	ReversedByEntryID *string             `json:"reversedByEntryID,omitempty"`
	Lines             []EntryLineResponse `json:"lines"`
	CreatedAt         time.Time           `json:"createdAt"`
	CreatedBy         string              `json:"createdBy"`
	LastUpdatedAt     time.Time           `json:"lastUpdatedAt"`
}

// ListEntriesResponse wraps a page of entries with the next-page cursor.
type ListEntriesResponse struct {
	Entries   []EntryResponse `json:"entries"`
	NextToken *string         `json:"nextToken,omitempty"`
}

// ToDomainLines converts line payloads into domain lines for the given entry,
// defaulting each line's currency to the entry currency.
func ToDomainLines(entryID string, entryCurrency string, lines []EntryLineRequest) []domain.EntryLine {
	domainLines := make([]domain.EntryLine, len(lines))
	for i, l := range lines {
		currency := l.CurrencyCode
		if currency == "" {
			currency = entryCurrency
		}
		domainLines[i] = domain.EntryLine{
			LineID:               uuid.NewString(),
			EntryID:              entryID,
			AccountID:            l.AccountID,
			Side:                 l.Side,
			Amount:               l.Amount,
			CurrencyCode:         currency,
			Memo:                 l.Memo,
			IntercompanyEntityID: l.IntercompanyEntityID,
		}
	}
	return domainLines
}

// ToEntryLineResponse converts a domain line to its outbound shape.
func ToEntryLineResponse(line domain.EntryLine) EntryLineResponse {
	return EntryLineResponse{
		LineID:               line.LineID,
		AccountID:            line.AccountID,
		Side:                 string(line.Side),
		Amount:               line.Amount,
		CurrencyCode:         line.CurrencyCode,
		Memo:                 line.Memo,
		IntercompanyEntityID: line.IntercompanyEntityID,
	}
}

// ToEntryResponse converts a domain entry (with lines) to its outbound shape.
func ToEntryResponse(e *domain.JournalEntry) EntryResponse {
	lines := make([]EntryLineResponse, len(e.Lines))
	for i, l := range e.Lines {
		lines[i] = ToEntryLineResponse(l)
	}
	return EntryResponse{
		EntryID:           e.EntryID,
		ClientID:          e.ClientID,
		EntityID:          e.EntityID,
		Date:              e.EntryDate,
		FiscalPeriod:      e.FiscalPeriod,
		Reference:         e.Reference,
		Description:       e.Description,
		Status:            string(e.Status),
		VoidReason:        e.VoidReason,
		ReversesEntryID:   e.ReversesEntryID,
		ReversedByEntryID: e.ReversedByEntryID,
		Lines:             lines,
		CreatedAt:         e.CreatedAt,
		CreatedBy:         e.CreatedBy,
		LastUpdatedAt:     e.LastUpdatedAt,
	}
}

// ToEntryResponses converts a slice of domain entries.
func ToEntryResponses(entries []domain.JournalEntry) []EntryResponse {
	responses := make([]EntryResponse, len(entries))
	for i := range entries {
		responses[i] = ToEntryResponse(&entries[i])
	}
	return responses
}
