package domain

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// Account represents one node of a client's chart of accounts.
// Folder nodes exist purely for hierarchy and may never carry entry lines.
type Account struct {
	AccountID       string      `json:"accountID"`       // Primary key (UUID)
	ClientID        string      `json:"clientID"`        // Owning client (NON-NULL)
	Code            string      `json:"code"`            // User-facing account code, e.g. "1000"
	Name            string      `json:"name"`            // User-defined name
	AccountType     AccountType `json:"accountType"`     // ASSET, LIABILITY, etc.
	ParentAccountID *string     `json:"parentAccountID"` // Nullable self-reference (hierarchy)
	IsFolder        bool        `json:"isFolder"`        // Grouping node, not postable
	IsCash          bool        `json:"isCash"`          // Cash/equivalents, drives the cash flow view
	IsActive        bool        `json:"isActive"`        // Soft delete / status flag
	Description     string      `json:"description"`
	AuditFields
}

// Postable reports whether entry lines may reference this account.
func (a *Account) Postable() bool {
	return a.IsActive && !a.IsFolder
}

// Entity represents a legal/reporting entity whose ledger the engine maintains.
// Journal entries belong to exactly one entity; consolidation groups span many.
type Entity struct {
	EntityID     string `json:"entityID"`
	ClientID     string `json:"clientID"`
	Name         string `json:"name"`
	CurrencyCode string `json:"currencyCode"` // Default reporting currency
	AuditFields
}
