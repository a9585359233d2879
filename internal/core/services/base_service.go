package services

import (
	"context"
	"log/slog"

	"github.com/finbooks/general_ledger/internal/core/domain"
	portssvc "github.com/finbooks/general_ledger/internal/core/ports/services"
	"github.com/finbooks/general_ledger/internal/platform/logging"
)

// BaseService provides common functionality for all services
type BaseService struct {
	Authorizer portssvc.ClientAuthorizer
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+2)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// AuthorizeUser checks if a user has the required role within a client.
// A nil authorizer grants access; embedded/library deployments wire their own
// policy or none at all.
func (s *BaseService) AuthorizeUser(ctx context.Context, userID, clientID string, requiredRole domain.UserClientRole) error {
	if s.Authorizer != nil {
		return s.Authorizer.AuthorizeUserAction(ctx, userID, clientID, requiredRole)
	}
	s.LogDebug(ctx, "No client authorizer provided, access granted by default",
		slog.String("user_id", userID),
		slog.String("client_id", clientID),
		slog.String("required_role", string(requiredRole)))
	return nil
}
