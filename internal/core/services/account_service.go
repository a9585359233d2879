package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/finbooks/general_ledger/internal/apperrors"
	"github.com/finbooks/general_ledger/internal/core/domain"
	portsrepo "github.com/finbooks/general_ledger/internal/core/ports/repositories"
	portssvc "github.com/finbooks/general_ledger/internal/core/ports/services"
	"github.com/finbooks/general_ledger/internal/dto"
)

// accountService provides chart-of-accounts operations, including the
// account reference validation gate used by the entry aggregate.
type accountService struct {
	BaseService
	accountRepo portsrepo.AccountRepositoryFacade
}

// NewAccountService creates a new AccountService.
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade, authorizer portssvc.ClientAuthorizer) portssvc.AccountSvcFacade {
	return &accountService{
		BaseService: BaseService{Authorizer: authorizer},
		accountRepo: accountRepo,
	}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// ValidateAccountRefs confirms each account ID names an active, non-folder
// account belonging to the client. Read-only: it returns the resolved
// accounts so callers avoid a second fetch.
func (s *accountService) ValidateAccountRefs(ctx context.Context, clientID string, accountIDs []string) (map[string]domain.Account, error) {
	unique := uniqueStrings(accountIDs)
	if len(unique) == 0 {
		return map[string]domain.Account{}, nil
	}

	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, unique)
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch accounts for reference validation", slog.String("client_id", clientID))
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}

	for _, id := range unique {
		acc, found := accounts[id]
		if !found {
			return nil, fmt.Errorf("%w: account %s not found", apperrors.ErrValidation, id)
		}
		if acc.ClientID != clientID {
			s.LogDebug(ctx, "Account belongs to a different client",
				slog.String("account_id", id),
				slog.String("account_client", acc.ClientID),
				slog.String("requested_client", clientID))
			// Obscure existence of other clients' accounts.
			return nil, fmt.Errorf("%w: account %s not found", apperrors.ErrValidation, id)
		}
		if !acc.IsActive {
			return nil, fmt.Errorf("%w: account %s (%s) is inactive", apperrors.ErrValidation, acc.Code, id)
		}
		if acc.IsFolder {
			return nil, fmt.Errorf("%w: account %s (%s) is a folder and cannot carry entry lines", apperrors.ErrValidation, acc.Code, id)
		}
	}
	return accounts, nil
}

// CreateAccount adds a new account to the client's chart of accounts.
func (s *accountService) CreateAccount(ctx context.Context, clientID string, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error) {
	if err := s.AuthorizeUser(ctx, creatorUserID, clientID, domain.RoleMember); err != nil {
		return nil, err
	}
	if err := dto.Validate(req); err != nil {
		return nil, err
	}

	if req.ParentAccountID != nil {
		parent, err := s.accountRepo.FindAccountByID(ctx, *req.ParentAccountID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: parent account %s not found", apperrors.ErrValidation, *req.ParentAccountID)
			}
			return nil, fmt.Errorf("failed to fetch parent account: %w", err)
		}
		if parent.ClientID != clientID {
			return nil, fmt.Errorf("%w: parent account %s not found", apperrors.ErrValidation, *req.ParentAccountID)
		}
	}

	now := time.Now().UTC()
	account := domain.Account{
		AccountID:       uuid.NewString(),
		ClientID:        clientID,
		Code:            req.Code,
		Name:            req.Name,
		AccountType:     req.AccountType,
		ParentAccountID: req.ParentAccountID,
		IsFolder:        req.IsFolder,
		IsCash:          req.IsCash,
		IsActive:        true,
		Description:     req.Description,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		s.LogError(ctx, err, "Failed to save account", slog.String("client_id", clientID))
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	s.LogInfo(ctx, "Account created", slog.String("account_id", account.AccountID), slog.String("client_id", clientID))
	return &account, nil
}

// GetAccountByID retrieves an account, hiding other clients' accounts.
func (s *accountService) GetAccountByID(ctx context.Context, clientID string, accountID string, requestingUserID string) (*domain.Account, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, clientID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.ClientID != clientID {
		return nil, apperrors.ErrNotFound
	}
	return account, nil
}

// ListAccounts retrieves accounts belonging to the client.
func (s *accountService) ListAccounts(ctx context.Context, clientID string, limit int, offset int, requestingUserID string) ([]domain.Account, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, clientID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	return s.accountRepo.ListAccounts(ctx, clientID, limit, offset)
}

// DeactivateAccount marks an account inactive so new entry lines can no
// longer reference it. Historical posted lines are unaffected.
func (s *accountService) DeactivateAccount(ctx context.Context, clientID string, accountID string, requestingUserID string) error {
	if err := s.AuthorizeUser(ctx, requestingUserID, clientID, domain.RoleMember); err != nil {
		return err
	}

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return err
	}
	if account.ClientID != clientID {
		return apperrors.ErrNotFound
	}

	return s.accountRepo.DeactivateAccount(ctx, accountID, requestingUserID, time.Now().UTC())
}

// uniqueStrings returns a slice containing only the unique strings from the input.
func uniqueStrings(input []string) []string {
	seen := make(map[string]struct{}, len(input))
	result := make([]string, 0, len(input))
	for _, str := range input {
		if _, ok := seen[str]; !ok {
			seen[str] = struct{}{}
			result = append(result, str)
		}
	}
	return result
}
