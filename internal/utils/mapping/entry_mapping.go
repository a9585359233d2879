package mapping

import (
	"github.com/finbooks/general_ledger/internal/core/domain"
	"github.com/finbooks/general_ledger/internal/models"
)

// ToModelEntry converts a domain JournalEntry to a model JournalEntry
func ToModelEntry(d domain.JournalEntry) models.JournalEntry {
	return models.JournalEntry{
		EntryID:           d.EntryID,
		ClientID:          d.ClientID,
		EntityID:          d.EntityID,
		EntryDate:         d.EntryDate,
		FiscalPeriod:      d.FiscalPeriod,
		Reference:         d.Reference,
		Description:       d.Description,
		Status:            string(d.Status),
		VoidReason:        d.VoidReason,
		ReversesEntryID:   d.ReversesEntryID,
		ReversedByEntryID: d.ReversedByEntryID,
		AuditFields:       ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainEntry converts a model JournalEntry to a domain JournalEntry
// (without lines; repositories attach those separately).
func ToDomainEntry(m models.JournalEntry) domain.JournalEntry {
	return domain.JournalEntry{
		EntryID:           m.EntryID,
		ClientID:          m.ClientID,
		EntityID:          m.EntityID,
		EntryDate:         m.EntryDate,
		FiscalPeriod:      m.FiscalPeriod,
		Reference:         m.Reference,
		Description:       m.Description,
		Status:            domain.EntryStatus(m.Status),
		VoidReason:        m.VoidReason,
		ReversesEntryID:   m.ReversesEntryID,
		ReversedByEntryID: m.ReversedByEntryID,
		AuditFields:       ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelLine converts a domain EntryLine to a model EntryLine at a position.
func ToModelLine(d domain.EntryLine, position int) models.EntryLine {
	return models.EntryLine{
		LineID:               d.LineID,
		EntryID:              d.EntryID,
		LinePosition:         position,
		AccountID:            d.AccountID,
		Side:                 string(d.Side),
		Amount:               d.Amount,
		CurrencyCode:         d.CurrencyCode,
		Memo:                 d.Memo,
		IntercompanyEntityID: d.IntercompanyEntityID,
	}
}

// ToDomainLine converts a model EntryLine to a domain EntryLine
func ToDomainLine(m models.EntryLine) domain.EntryLine {
	return domain.EntryLine{
		LineID:               m.LineID,
		EntryID:              m.EntryID,
		AccountID:            m.AccountID,
		Side:                 domain.EntrySide(m.Side),
		Amount:               m.Amount,
		CurrencyCode:         m.CurrencyCode,
		Memo:                 m.Memo,
		IntercompanyEntityID: m.IntercompanyEntityID,
	}
}

// ToDomainLineSlice converts a slice of model lines ordered by position.
func ToDomainLineSlice(ms []models.EntryLine) []domain.EntryLine {
	ds := make([]domain.EntryLine, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainLine(m)
	}
	return ds
}
