package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReportType selects which consolidated view the consolidation engine builds.
type ReportType string

const (
	ReportTrialBalance    ReportType = "TRIAL_BALANCE"
	ReportIncomeStatement ReportType = "INCOME_STATEMENT"
	ReportBalanceSheet    ReportType = "BALANCE_SHEET"
	ReportCashFlow        ReportType = "CASH_FLOW"
)

// TrialBalanceRow represents a single account row in a trial balance report.
type TrialBalanceRow struct {
	AccountID   string          `json:"accountID"`
	AccountCode string          `json:"accountCode"`
	AccountName string          `json:"accountName"`
	AccountType AccountType     `json:"accountType"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// AccountAmount represents an account with its net amount for financial reports.
type AccountAmount struct {
	AccountID   string          `json:"accountID"`
	AccountCode string          `json:"accountCode"`
	Name        string          `json:"name"`
	NetAmount   decimal.Decimal `json:"netAmount"`
}

// IncomeStatementReport represents a combined income statement.
type IncomeStatementReport struct {
	Revenue   []AccountAmount `json:"revenue"`
	Expenses  []AccountAmount `json:"expenses"`
	NetIncome decimal.Decimal `json:"netIncome"` // Total revenue minus total expenses
}

// BalanceSheetReport represents a combined balance sheet.
type BalanceSheetReport struct {
	Assets           []AccountAmount `json:"assets"`
	Liabilities      []AccountAmount `json:"liabilities"`
	Equity           []AccountAmount `json:"equity"`
	TotalAssets      decimal.Decimal `json:"totalAssets"`
	TotalLiabilities decimal.Decimal `json:"totalLiabilities"`
	TotalEquity      decimal.Decimal `json:"totalEquity"`
}

// CashFlowReport represents a combined cash flow view derived from posted
// movements: revenue/expense activity is operating, asset movements are
// investing, liability/equity movements are financing.
type CashFlowReport struct {
	Operating   []AccountAmount `json:"operating"`
	Investing   []AccountAmount `json:"investing"`
	Financing   []AccountAmount `json:"financing"`
	NetCashFlow decimal.Decimal `json:"netCashFlow"`
}

// IntercompanyElimination records an intercompany balance removed from the
// rollup so it is not double-counted. NetAmount is the debit-minus-credit
// residual of the eliminated pair; zero means the pair offset exactly.
type IntercompanyElimination struct {
	EntityID             string          `json:"entityID"`
	CounterpartyEntityID string          `json:"counterpartyEntityID"`
	AccountID            string          `json:"accountID"`
	Debit                decimal.Decimal `json:"debit"`
	Credit               decimal.Decimal `json:"credit"`
	NetAmount            decimal.Decimal `json:"netAmount"`
}

// ConsolidatedReport is the output of a consolidation run. Exactly one of the
// report payload fields is populated, selected by ReportType.
type ConsolidatedReport struct {
	GroupID         string                    `json:"groupID"`
	GroupName       string                    `json:"groupName"`
	ReportType      ReportType                `json:"reportType"`
	AsOf            time.Time                 `json:"asOf"`
	MemberEntityIDs []string                  `json:"memberEntityIDs"`
	Eliminations    []IntercompanyElimination `json:"eliminations"`

	TrialBalance    []TrialBalanceRow      `json:"trialBalance,omitempty"`
	IncomeStatement *IncomeStatementReport `json:"incomeStatement,omitempty"`
	BalanceSheet    *BalanceSheetReport    `json:"balanceSheet,omitempty"`
	CashFlow        *CashFlowReport        `json:"cashFlow,omitempty"`
}

// ConsolidationLine is one posted line joined with its account and entity,
// the raw material of a consolidation run.
type ConsolidationLine struct {
	EntityID             string
	AccountID            string
	AccountCode          string
	AccountName          string
	AccountType          AccountType
	IsCash               bool
	Side                 EntrySide
	Amount               decimal.Decimal
	IntercompanyEntityID string
}
