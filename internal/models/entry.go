package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalEntry is the persistence row for the journal_entries table.
type JournalEntry struct {
	EntryID           string    `db:"entry_id"`
	ClientID          string    `db:"client_id"`
	EntityID          string    `db:"entity_id"`
	EntryDate         time.Time `db:"entry_date"`
	FiscalPeriod      string    `db:"fiscal_period"`
	Reference         string    `db:"reference"` // Empty until posted (or client-supplied)
	Description       string    `db:"description"`
	Status            string    `db:"status"`
	VoidReason        string    `db:"void_reason"`
	ReversesEntryID   *string   `db:"reverses_entry_id"`
	ReversedByEntryID *string   `db:"reversed_by_entry_id"`
	AuditFields
}

// EntryLine is the persistence row for the journal_entry_lines table.
type EntryLine struct {
	LineID               string          `db:"line_id"`
	EntryID              string          `db:"entry_id"`
	LinePosition         int             `db:"line_position"` // Preserves caller ordering
	AccountID            string          `db:"account_id"`
	Side                 string          `db:"side"`
	Amount               decimal.Decimal `db:"amount"`
	CurrencyCode         string          `db:"currency_code"`
	Memo                 string          `db:"memo"`
	IntercompanyEntityID string          `db:"intercompany_entity_id"` // Empty when not intercompany
}
