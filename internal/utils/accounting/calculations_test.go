package accounting_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/finbooks/general_ledger/internal/apperrors"
	"github.com/finbooks/general_ledger/internal/core/domain"
	"github.com/finbooks/general_ledger/internal/utils/accounting"
)

func line(side domain.EntrySide, amount string, currency string) domain.EntryLine {
	return domain.EntryLine{
		Side:         side,
		Amount:       decimal.RequireFromString(amount),
		CurrencyCode: currency,
	}
}

func TestSignedAmount(t *testing.T) {
	debit := line(domain.Debit, "10.50", "USD")
	credit := line(domain.Credit, "10.50", "USD")

	assert.True(t, accounting.SignedAmount(debit).Equal(decimal.RequireFromString("10.50")))
	assert.True(t, accounting.SignedAmount(credit).Equal(decimal.RequireFromString("-10.50")))
}

func TestValidateLines(t *testing.T) {
	t.Run("accepts valid lines", func(t *testing.T) {
		lines := []domain.EntryLine{
			line(domain.Debit, "100", "USD"),
			line(domain.Credit, "100", "USD"),
		}
		assert.NoError(t, accounting.ValidateLines(lines))
	})

	t.Run("rejects a zero amount with the line index", func(t *testing.T) {
		lines := []domain.EntryLine{
			line(domain.Debit, "100", "USD"),
			line(domain.Credit, "0", "USD"),
		}
		err := accounting.ValidateLines(lines)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
		assert.Contains(t, err.Error(), "line 1")
	})

	t.Run("rejects a negative amount", func(t *testing.T) {
		lines := []domain.EntryLine{line(domain.Debit, "-5", "USD")}
		assert.ErrorIs(t, accounting.ValidateLines(lines), apperrors.ErrValidation)
	})

	t.Run("rejects an unknown side", func(t *testing.T) {
		lines := []domain.EntryLine{{Side: "BOTH", Amount: decimal.NewFromInt(1), CurrencyCode: "USD"}}
		err := accounting.ValidateLines(lines)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
		assert.Contains(t, err.Error(), "BOTH")
	})
}

func TestValidateBalance(t *testing.T) {
	t.Run("accepts a balanced entry", func(t *testing.T) {
		lines := []domain.EntryLine{
			line(domain.Debit, "600", "USD"),
			line(domain.Debit, "400", "USD"),
			line(domain.Credit, "1000", "USD"),
		}
		assert.NoError(t, accounting.ValidateBalance(lines))
	})

	t.Run("rejects an unbalanced entry with the difference", func(t *testing.T) {
		lines := []domain.EntryLine{
			line(domain.Debit, "1000", "USD"),
			line(domain.Credit, "999", "USD"),
		}
		err := accounting.ValidateBalance(lines)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
		assert.Contains(t, err.Error(), "off by 1")
	})

	t.Run("tolerates rounding within epsilon", func(t *testing.T) {
		lines := []domain.EntryLine{
			line(domain.Debit, "100.0000004", "USD"),
			line(domain.Credit, "100", "USD"),
		}
		assert.NoError(t, accounting.ValidateBalance(lines))
	})

	t.Run("rejects a difference just past epsilon", func(t *testing.T) {
		lines := []domain.EntryLine{
			line(domain.Debit, "100.000002", "USD"),
			line(domain.Credit, "100", "USD"),
		}
		assert.ErrorIs(t, accounting.ValidateBalance(lines), apperrors.ErrValidation)
	})

	t.Run("balances each currency independently", func(t *testing.T) {
		lines := []domain.EntryLine{
			line(domain.Debit, "100", "USD"),
			line(domain.Credit, "100", "USD"),
			line(domain.Debit, "50", "EUR"),
			line(domain.Credit, "50", "EUR"),
		}
		assert.NoError(t, accounting.ValidateBalance(lines))
	})

	t.Run("rejects currencies that only balance in aggregate", func(t *testing.T) {
		lines := []domain.EntryLine{
			line(domain.Debit, "100", "USD"),
			line(domain.Credit, "100", "EUR"),
		}
		err := accounting.ValidateBalance(lines)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("rejects fewer than two lines", func(t *testing.T) {
		lines := []domain.EntryLine{line(domain.Debit, "100", "USD")}
		assert.ErrorIs(t, accounting.ValidateBalance(lines), apperrors.ErrValidation)
	})
}
