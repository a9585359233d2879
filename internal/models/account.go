package models

// Account is the persistence row for the accounts table.
type Account struct {
	AccountID       string  `db:"account_id"`
	ClientID        string  `db:"client_id"`
	Code            string  `db:"code"`
	Name            string  `db:"name"`
	AccountType     string  `db:"account_type"`
	ParentAccountID *string `db:"parent_account_id"`
	IsFolder        bool    `db:"is_folder"`
	IsCash          bool    `db:"is_cash"`
	IsActive        bool    `db:"is_active"`
	Description     string  `db:"description"`
	AuditFields
}

// Entity is the persistence row for the entities table.
type Entity struct {
	EntityID     string `db:"entity_id"`
	ClientID     string `db:"client_id"`
	Name         string `db:"name"`
	CurrencyCode string `db:"currency_code"`
	AuditFields
}
