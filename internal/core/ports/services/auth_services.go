package services

import (
	"context"

	"github.com/finbooks/general_ledger/internal/core/domain"
)

// ClientAuthorizer answers whether a user may act at a given role level
// within a client. The session/auth subsystem that decides this is out of
// scope; the core only consumes the policy. Implementations return
// apperrors.ErrForbidden (or ErrNotFound to obscure existence) on denial.
type ClientAuthorizer interface {
	AuthorizeUserAction(ctx context.Context, userID string, clientID string, requiredRole domain.UserClientRole) error
}
