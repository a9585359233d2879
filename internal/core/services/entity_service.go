package services

import (
	"context"
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

// entityService manages the entities whose ledgers the engine maintains.
type entityService struct {
	BaseService
	entityRepo portsrepo.EntityRepositoryFacade
}

// NewEntityService creates a new EntityService.
func NewEntityService(entityRepo portsrepo.EntityRepositoryFacade, authorizer portssvc.ClientAuthorizer) portssvc.EntitySvcFacade {
	return &entityService{
		BaseService: BaseService{Authorizer: authorizer},
		entityRepo:  entityRepo,
	}
}

var _ portssvc.EntitySvcFacade = (*entityService)(nil)

// CreateEntity registers a new entity for the client.
func (s *entityService) CreateEntity(ctx context.Context, clientID string, req dto.CreateEntityRequest, creatorUserID string) (*domain.Entity, error) {
	if err := s.AuthorizeUser(ctx, creatorUserID, clientID, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if err := dto.Validate(req); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	entity := domain.Entity{
		EntityID:     uuid.NewString(),
		ClientID:     clientID,
		Name:         req.Name,
		CurrencyCode: req.CurrencyCode,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.entityRepo.SaveEntity(ctx, entity); err != nil {
		s.LogError(ctx, err, "Failed to save entity", slog.String("client_id", clientID))
		return nil, fmt.Errorf("failed to save entity: %w", err)
	}

	s.LogInfo(ctx, "Entity created", slog.String("entity_id", entity.EntityID), slog.String("client_id", clientID))
	return &entity, nil
}

// GetEntityByID retrieves an entity, hiding other clients' entities.
func (s *entityService) GetEntityByID(ctx context.Context, clientID string, entityID string, requestingUserID string) (*domain.Entity, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, clientID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	entity, err := s.entityRepo.FindEntityByID(ctx, entityID)
	if err != nil {
		return nil, err
	}
	if entity.ClientID != clientID {
		return nil, apperrors.ErrNotFound
	}
	return entity, nil
}

// ListEntities retrieves the client's entities.
func (s *entityService) ListEntities(ctx context.Context, clientID string, requestingUserID string) ([]domain.Entity, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, clientID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	return s.entityRepo.ListEntities(ctx, clientID)
}
