package dto

import (
	"github.com/finbooks/general_ledger/internal/core/domain"
)

// CreateAccountRequest is the inbound payload for adding an account to a
// client's chart of accounts.
type CreateAccountRequest struct {
	Code            string             `json:"code" validate:"required,max=32"`
	Name            string             `json:"name" validate:"required"`
	AccountType     domain.AccountType `json:"accountType" validate:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	ParentAccountID *string            `json:"parentAccountID,omitempty"`
	IsFolder        bool               `json:"isFolder"`
	IsCash          bool               `json:"isCash"`
	Description     string             `json:"description,omitempty"`
}

// AccountResponse is the outbound shape of an account.
type AccountResponse struct {
	AccountID       string  `json:"accountID"`
	ClientID        string  `json:"clientID"`
	Code            string  `json:"code"`
	Name            string  `json:"name"`
	AccountType     string  `json:"accountType"`
	ParentAccountID *string `json:"parentAccountID,omitempty"`
	IsFolder        bool    `json:"isFolder"`
	IsCash          bool    `json:"isCash"`
	IsActive        bool    `json:"isActive"`
	Description     string  `json:"description,omitempty"`
}

// ToAccountResponse converts a domain account to its outbound shape.
func ToAccountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:       a.AccountID,
		ClientID:        a.ClientID,
		Code:            a.Code,
		Name:            a.Name,
		AccountType:     string(a.AccountType),
		ParentAccountID: a.ParentAccountID,
		IsFolder:        a.IsFolder,
		IsCash:          a.IsCash,
		IsActive:        a.IsActive,
		Description:     a.Description,
	}
}

// CreateEntityRequest is the inbound payload for registering an entity.
type CreateEntityRequest struct {
	Name         string `json:"name" validate:"required"`
	CurrencyCode string `json:"currencyCode" validate:"required,len=3"`
}
