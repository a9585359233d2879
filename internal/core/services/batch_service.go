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
	"github.com/finbooks/general_ledger/internal/utils/accounting"
)

// batchService ingests candidate entries in one transaction with per-entry
// validation. A failing entry is recorded against its original index and
// never blocks its siblings; a storage fault fails the whole batch.
type batchService struct {
	BaseService
	entryRepo  portsrepo.EntryRepositoryWithTx
	entityRepo portsrepo.EntityReader
	accountSvc portssvc.AccountSvcFacade
}

// NewBatchService creates a new BatchService.
func NewBatchService(
	entryRepo portsrepo.EntryRepositoryWithTx,
	entityRepo portsrepo.EntityReader,
	accountSvc portssvc.AccountSvcFacade,
	authorizer portssvc.ClientAuthorizer,
) portssvc.BatchSvcFacade {
	return &batchService{
		BaseService: BaseService{Authorizer: authorizer},
		entryRepo:   entryRepo,
		entityRepo:  entityRepo,
		accountSvc:  accountSvc,
	}
}

var _ portssvc.BatchSvcFacade = (*batchService)(nil)

// ProcessBatch validates and inserts each candidate entry independently
// inside a single transaction. Batch-ingested entries must already balance;
// they are stored as drafts awaiting an explicit post.
func (s *batchService) ProcessBatch(ctx context.Context, clientID string, createdBy string, entries []dto.CreateEntryRequest) (*dto.BatchResult, error) {
	if err := s.AuthorizeUser(ctx, createdBy, clientID, domain.RoleMember); err != nil {
		return nil, err
	}

	result := &dto.BatchResult{
		Errors:          []dto.BatchEntryError{},
		CreatedEntryIDs: []string{},
	}
	if len(entries) == 0 {
		return result, nil
	}

	now := time.Now().UTC()
	err := s.entryRepo.WithinTransaction(ctx, func(ctx context.Context) error {
		for i, req := range entries {
			entry, verr := s.buildCandidate(ctx, clientID, createdBy, req, now)
			if verr != nil {
				result.Errors = append(result.Errors, dto.BatchEntryError{Index: i, Message: verr.Error()})
				continue
			}

			if err := s.entryRepo.CreateEntry(ctx, *entry); err != nil {
				// Per-item rejections (duplicate client-supplied
				// reference) are collected; a storage fault aborts
				// and rolls back the entire batch.
				if errors.Is(err, apperrors.ErrConflict) || errors.Is(err, apperrors.ErrValidation) {
					result.Errors = append(result.Errors, dto.BatchEntryError{Index: i, Message: err.Error()})
					continue
				}
				return err
			}

			result.SuccessCount++
			result.CreatedEntryIDs = append(result.CreatedEntryIDs, entry.EntryID)
		}
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Batch ingest rolled back", slog.String("client_id", clientID), slog.Int("batch_size", len(entries)))
		failed := &dto.BatchResult{Errors: make([]dto.BatchEntryError, len(entries)), CreatedEntryIDs: []string{}}
		for i := range entries {
			failed.Errors[i] = dto.BatchEntryError{Index: i, Message: fmt.Sprintf("batch aborted: %v", err)}
		}
		return failed, err
	}

	s.LogInfo(ctx, "Batch processed",
		slog.String("client_id", clientID),
		slog.Int("batch_size", len(entries)),
		slog.Int("success_count", result.SuccessCount),
		slog.Int("error_count", len(result.Errors)))
	return result, nil
}

// buildCandidate validates one batch item and assembles its draft entry.
func (s *batchService) buildCandidate(ctx context.Context, clientID string, createdBy string, req dto.CreateEntryRequest, now time.Time) (*domain.JournalEntry, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	if err := s.checkEntity(ctx, clientID, req.EntityID); err != nil {
		return nil, err
	}

	entryID := uuid.NewString()
	lines := dto.ToDomainLines(entryID, req.CurrencyCode, req.Lines)
	if err := accounting.ValidateLines(lines); err != nil {
		return nil, err
	}
	if err := accounting.ValidateBalance(lines); err != nil {
		return nil, err
	}

	accountIDs := make([]string, 0, len(lines))
	for _, line := range lines {
		accountIDs = append(accountIDs, line.AccountID)
	}
	if _, err := s.accountSvc.ValidateAccountRefs(ctx, clientID, accountIDs); err != nil {
		return nil, err
	}

	return &domain.JournalEntry{
		EntryID:      entryID,
		ClientID:     clientID,
		EntityID:     req.EntityID,
		EntryDate:    req.Date,
		FiscalPeriod: domain.FiscalPeriodOf(req.Date),
		Reference:    req.Reference,
		Description:  req.Description,
		Status:       domain.Draft,
		Lines:        lines,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     createdBy,
			LastUpdatedAt: now,
			LastUpdatedBy: createdBy,
		},
	}, nil
}

// checkEntity confirms the entity exists and belongs to the client.
func (s *batchService) checkEntity(ctx context.Context, clientID string, entityID string) error {
	entity, err := s.entityRepo.FindEntityByID(ctx, entityID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: entity %s not found", apperrors.ErrValidation, entityID)
		}
		return fmt.Errorf("failed to fetch entity: %w", err)
	}
	if entity.ClientID != clientID {
		return fmt.Errorf("%w: entity %s not found", apperrors.ErrValidation, entityID)
	}
	return nil
}
