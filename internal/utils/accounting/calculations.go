package accounting

import (
	"fmt"

	"github.com/finbooks/general_ledger/internal/apperrors"
	"github.com/finbooks/general_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BalanceEpsilon is the maximum tolerated difference between debit and credit
// sums, covering decimal rounding of imported data. Anything larger is an
// unbalanced entry.
var BalanceEpsilon = decimal.RequireFromString("0.000001")

// SignedAmount applies the conventional sign to a line amount: debits are
// positive, credits negative. Used by balance checks and consolidation math.
func SignedAmount(line domain.EntryLine) decimal.Decimal {
	if line.Side == domain.Credit {
		return line.Amount.Neg()
	}
	return line.Amount
}

// ValidateLines checks the structural line invariants: a valid side and a
// strictly positive amount on every line. The line index in error messages is
// zero-based and refers to the caller's ordering.
func ValidateLines(lines []domain.EntryLine) error {
	for i, line := range lines {
		if line.Side != domain.Debit && line.Side != domain.Credit {
			return fmt.Errorf("%w: line %d: side must be DEBIT or CREDIT, got %q", apperrors.ErrValidation, i, line.Side)
		}
		if line.Amount.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("%w: line %d: amount must be positive, got %s", apperrors.ErrValidation, i, line.Amount.String())
		}
	}
	return nil
}

// ValidateBalance checks that debits equal credits within BalanceEpsilon,
// independently for every currency appearing on the lines.
func ValidateBalance(lines []domain.EntryLine) error {
	if len(lines) < 2 {
		return fmt.Errorf("%w: entry must have at least two lines to balance", apperrors.ErrValidation)
	}

	debits := make(map[string]decimal.Decimal)
	credits := make(map[string]decimal.Decimal)
	for _, line := range lines {
		if line.Side == domain.Debit {
			debits[line.CurrencyCode] = debits[line.CurrencyCode].Add(line.Amount)
		} else {
			credits[line.CurrencyCode] = credits[line.CurrencyCode].Add(line.Amount)
		}
	}

	currencies := make(map[string]struct{}, len(debits)+len(credits))
	for c := range debits {
		currencies[c] = struct{}{}
	}
	for c := range credits {
		currencies[c] = struct{}{}
	}

	for currency := range currencies {
		diff := debits[currency].Sub(credits[currency])
		if diff.Abs().GreaterThan(BalanceEpsilon) {
			return fmt.Errorf("%w: debits must equal credits: off by %s (%s)",
				apperrors.ErrValidation, diff.Abs().String(), currency)
		}
	}
	return nil
}
