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

// defaultPostRetries bounds the allocate-and-post loop when concurrent
// posters race for the same sequence number.
const defaultPostRetries = 3

// entryService provides the journal entry aggregate's operations: the full
// draft/posted/voided lifecycle plus reversal and deletion rules.
type entryService struct {
	BaseService
	entryRepo   portsrepo.EntryRepositoryWithTx
	entityRepo  portsrepo.EntityReader
	accountSvc  portssvc.AccountSvcFacade
	sequencer   portsrepo.ReferenceSequencer
	refFormat   ReferenceFormatter
	postRetries int
}

// EntryServiceOption is a functional option for configuring the entry service.
type EntryServiceOption func(*entryService)

// WithReferenceFormatter overrides the reference formatting policy.
func WithReferenceFormatter(f ReferenceFormatter) EntryServiceOption {
	return func(s *entryService) {
		s.refFormat = f
	}
}

// WithPostRetries overrides the bounded retry budget for reference conflicts.
func WithPostRetries(n int) EntryServiceOption {
	return func(s *entryService) {
		if n > 0 {
			s.postRetries = n
		}
	}
}

// NewEntryService creates a new EntryService.
func NewEntryService(
	entryRepo portsrepo.EntryRepositoryWithTx,
	entityRepo portsrepo.EntityReader,
	accountSvc portssvc.AccountSvcFacade,
	sequencer portsrepo.ReferenceSequencer,
	authorizer portssvc.ClientAuthorizer,
	options ...EntryServiceOption,
) portssvc.EntrySvcFacade {
	svc := &entryService{
		BaseService: BaseService{Authorizer: authorizer},
		entryRepo:   entryRepo,
		entityRepo:  entityRepo,
		accountSvc:  accountSvc,
		sequencer:   sequencer,
		refFormat:   DefaultReferenceFormatter(),
		postRetries: defaultPostRetries,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.EntrySvcFacade = (*entryService)(nil)

// CreateEntry creates a new draft entry. Lines are structurally validated
// (sides, positive amounts, account references) but balance is not enforced
// until post.
func (s *entryService) CreateEntry(ctx context.Context, clientID string, req dto.CreateEntryRequest, creatorUserID string) (*domain.JournalEntry, error) {
	if err := s.AuthorizeUser(ctx, creatorUserID, clientID, domain.RoleMember); err != nil {
		return nil, err
	}
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	if err := s.checkEntity(ctx, clientID, req.EntityID); err != nil {
		return nil, err
	}

	entryID := uuid.NewString()
	lines := dto.ToDomainLines(entryID, req.CurrencyCode, req.Lines)
	if len(lines) > 0 {
		if err := accounting.ValidateLines(lines); err != nil {
			return nil, err
		}
		if err := s.validateLineAccounts(ctx, clientID, lines); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	entry := domain.JournalEntry{
		EntryID:      entryID,
		ClientID:     clientID,
		EntityID:     req.EntityID,
		EntryDate:    req.Date,
		FiscalPeriod: domain.FiscalPeriodOf(req.Date),
		Reference:    req.Reference, // Empty unless client-supplied; uniqueness enforced on insert
		Description:  req.Description,
		Status:       domain.Draft,
		Lines:        lines,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.entryRepo.CreateEntry(ctx, entry); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, fmt.Errorf("%w: reference %q already exists for entity %s in period %s",
				apperrors.ErrConflict, req.Reference, req.EntityID, entry.FiscalPeriod)
		}
		s.LogError(ctx, err, "Failed to create entry", slog.String("client_id", clientID))
		return nil, fmt.Errorf("failed to create entry: %w", err)
	}

	s.LogInfo(ctx, "Entry created", slog.String("entry_id", entryID), slog.String("client_id", clientID))
	return &entry, nil
}

// GetEntryByID retrieves an entry with its lines.
func (s *entryService) GetEntryByID(ctx context.Context, clientID string, entryID string, requestingUserID string) (*domain.JournalEntry, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, clientID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	return s.fetchOwnedEntry(ctx, clientID, entryID)
}

// ListEntries retrieves a filtered, cursor-paginated list of entries.
func (s *entryService) ListEntries(ctx context.Context, clientID string, params dto.ListEntriesParams, requestingUserID string) (*dto.ListEntriesResponse, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, clientID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	filter := portsrepo.EntryFilter{
		EntityID:    params.EntityID,
		AccountID:   params.AccountID,
		DateFrom:    params.DateFrom,
		DateTo:      params.DateTo,
		Description: params.Description,
		AmountMin:   params.AmountMin,
		AmountMax:   params.AmountMax,
	}

	entries, nextToken, err := s.entryRepo.ListEntries(ctx, clientID, filter, limit, params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list entries", slog.String("client_id", clientID))
		return nil, fmt.Errorf("failed to retrieve entries: %w", err)
	}

	return &dto.ListEntriesResponse{
		Entries:   dto.ToEntryResponses(entries),
		NextToken: nextToken,
	}, nil
}

// UpdateEntry replaces header fields and, when provided, the full line set of
// a draft entry.
func (s *entryService) UpdateEntry(ctx context.Context, clientID string, entryID string, req dto.UpdateEntryRequest, requestingUserID string) (*domain.JournalEntry, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, clientID, domain.RoleMember); err != nil {
		return nil, err
	}
	if err := dto.Validate(req); err != nil {
		return nil, err
	}

	entry, err := s.fetchOwnedEntry(ctx, clientID, entryID)
	if err != nil {
		return nil, err
	}
	if err := entry.EnsureUpdatable(); err != nil {
		return nil, err
	}

	expectedUpdatedAt := entry.LastUpdatedAt

	if req.Date != nil {
		entry.EntryDate = *req.Date
		entry.FiscalPeriod = domain.FiscalPeriodOf(*req.Date)
	}
	if req.Description != nil {
		entry.Description = *req.Description
	}
	currency := ""
	if req.CurrencyCode != nil {
		currency = *req.CurrencyCode
	}
	if req.Lines != nil {
		if currency == "" && len(entry.Lines) > 0 {
			currency = entry.Lines[0].CurrencyCode
		}
		lines := dto.ToDomainLines(entry.EntryID, currency, *req.Lines)
		if err := accounting.ValidateLines(lines); err != nil {
			return nil, err
		}
		if err := s.validateLineAccounts(ctx, clientID, lines); err != nil {
			return nil, err
		}
		entry.Lines = lines
	}

	now := time.Now().UTC()
	entry.LastUpdatedAt = now
	entry.LastUpdatedBy = requestingUserID

	if err := s.entryRepo.UpdateEntry(ctx, *entry, expectedUpdatedAt); err != nil {
		s.LogError(ctx, err, "Failed to update entry", slog.String("entry_id", entryID))
		return nil, err
	}

	s.LogInfo(ctx, "Entry updated", slog.String("entry_id", entryID))
	return entry, nil
}

// PostEntry validates and atomically transitions a draft to POSTED. On any
// failure no partial state is persisted and the entry remains a draft.
func (s *entryService) PostEntry(ctx context.Context, clientID string, entryID string, requestingUserID string) (*domain.JournalEntry, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, clientID, domain.RoleMember); err != nil {
		return nil, err
	}

	entry, err := s.fetchOwnedEntry(ctx, clientID, entryID)
	if err != nil {
		return nil, err
	}
	if entry.Status != domain.Draft {
		return nil, fmt.Errorf("%w: only a draft entry can be posted, status is %s", apperrors.ErrStateTransition, entry.Status)
	}

	if err := accounting.ValidateLines(entry.Lines); err != nil {
		return nil, err
	}
	if err := accounting.ValidateBalance(entry.Lines); err != nil {
		return nil, err
	}
	if err := s.validateLineAccounts(ctx, clientID, entry.Lines); err != nil {
		return nil, err
	}

	expectedUpdatedAt := entry.LastUpdatedAt
	now := time.Now().UTC()
	period := domain.FiscalPeriodOf(entry.EntryDate)

	// A client-supplied reference is confirmed, not regenerated, so a
	// collision surfaces immediately. Auto-assigned references retry under
	// the bounded budget: the unique index rejects the loser of a race and
	// the next attempt allocates a fresh sequence number.
	autoAssign := entry.Reference == ""
	attempts := 1
	if autoAssign {
		attempts = s.postRetries
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		reference := entry.Reference
		if autoAssign {
			seq, err := s.sequencer.Next(ctx, entry.EntityID, period)
			if err != nil {
				s.LogError(ctx, err, "Failed to allocate reference sequence", slog.String("entry_id", entryID))
				return nil, fmt.Errorf("failed to allocate reference: %w", err)
			}
			reference = s.refFormat.Format(period, seq)
		}

		candidate := *entry
		if err := candidate.Post(reference, requestingUserID, now); err != nil {
			return nil, err
		}

		err := s.entryRepo.PostEntry(ctx, candidate, expectedUpdatedAt)
		if err == nil {
			s.LogInfo(ctx, "Entry posted",
				slog.String("entry_id", entryID),
				slog.String("reference", reference))
			return &candidate, nil
		}
		lastErr = err
		if !autoAssign || !errors.Is(err, apperrors.ErrConflict) {
			s.LogError(ctx, err, "Failed to post entry", slog.String("entry_id", entryID))
			return nil, err
		}
		s.LogDebug(ctx, "Reference conflict while posting, retrying",
			slog.String("entry_id", entryID),
			slog.String("reference", reference),
			slog.Int("attempt", attempt+1))
	}

	return nil, fmt.Errorf("%w: could not allocate a unique reference after %d attempts: %w",
		apperrors.ErrConflict, attempts, lastErr)
}

// VoidEntry administratively nullifies a posted entry. Requires the admin
// role and a reason; line data is never altered.
func (s *entryService) VoidEntry(ctx context.Context, clientID string, entryID string, reason string, requestingUserID string) (*domain.JournalEntry, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, clientID, domain.RoleAdmin); err != nil {
		return nil, err
	}

	entry, err := s.fetchOwnedEntry(ctx, clientID, entryID)
	if err != nil {
		return nil, err
	}

	expectedUpdatedAt := entry.LastUpdatedAt
	if err := entry.MarkVoided(reason, requestingUserID, time.Now().UTC()); err != nil {
		return nil, err
	}

	if err := s.entryRepo.VoidEntry(ctx, *entry, expectedUpdatedAt); err != nil {
		s.LogError(ctx, err, "Failed to void entry", slog.String("entry_id", entryID))
		return nil, err
	}

	s.LogInfo(ctx, "Entry voided", slog.String("entry_id", entryID), slog.String("reason", reason))
	return entry, nil
}

// ReverseEntry creates a draft whose lines mirror the posted original with
// sides flipped, linking the two entries atomically.
func (s *entryService) ReverseEntry(ctx context.Context, clientID string, entryID string, reversalDate time.Time, requestingUserID string) (*domain.JournalEntry, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, clientID, domain.RoleMember); err != nil {
		return nil, err
	}

	var reversal *domain.JournalEntry
	err := s.entryRepo.WithinTransaction(ctx, func(ctx context.Context) error {
		original, err := s.fetchOwnedEntry(ctx, clientID, entryID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		reversal, err = original.BuildReversal(reversalDate, requestingUserID, now)
		if err != nil {
			return err
		}

		original.ReversedByEntryID = &reversal.EntryID
		original.LastUpdatedAt = now
		original.LastUpdatedBy = requestingUserID

		return s.entryRepo.SaveReversal(ctx, *original, *reversal)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to reverse entry", slog.String("entry_id", entryID))
		return nil, err
	}

	s.LogInfo(ctx, "Entry reversed",
		slog.String("entry_id", entryID),
		slog.String("reversal_entry_id", reversal.EntryID))
	return reversal, nil
}

// DeleteEntry removes a draft entry. Draft reversals referencing it are
// cascade-deleted first; a posted reversal blocks deletion outright.
func (s *entryService) DeleteEntry(ctx context.Context, clientID string, entryID string, requestingUserID string) error {
	if err := s.AuthorizeUser(ctx, requestingUserID, clientID, domain.RoleMember); err != nil {
		return err
	}

	err := s.entryRepo.WithinTransaction(ctx, func(ctx context.Context) error {
		entry, err := s.fetchOwnedEntry(ctx, clientID, entryID)
		if err != nil {
			return err
		}
		if err := entry.EnsureDeletable(); err != nil {
			return err
		}
		return s.entryRepo.DeleteEntry(ctx, entryID)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to delete entry", slog.String("entry_id", entryID))
		return err
	}

	s.LogInfo(ctx, "Entry deleted", slog.String("entry_id", entryID))
	return nil
}

// CanMutateAttachments tells the out-of-scope file-storage subsystem whether
// attachment upload/delete is permitted for the entry's current status.
func (s *entryService) CanMutateAttachments(ctx context.Context, clientID string, entryID string, requestingUserID string) (bool, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, clientID, domain.RoleReadOnly); err != nil {
		return false, err
	}

	entry, err := s.fetchOwnedEntry(ctx, clientID, entryID)
	if err != nil {
		return false, err
	}
	return entry.CanMutateAttachments(), nil
}

// fetchOwnedEntry loads an entry and hides entries of other clients.
func (s *entryService) fetchOwnedEntry(ctx context.Context, clientID string, entryID string) (*domain.JournalEntry, error) {
	entry, err := s.entryRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.ClientID != clientID {
		return nil, apperrors.ErrNotFound
	}
	return entry, nil
}

// checkEntity confirms the entity exists and belongs to the client.
func (s *entryService) checkEntity(ctx context.Context, clientID string, entityID string) error {
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

// validateLineAccounts runs the account reference validation gate over the
// accounts referenced by the lines.
func (s *entryService) validateLineAccounts(ctx context.Context, clientID string, lines []domain.EntryLine) error {
	accountIDs := make([]string, 0, len(lines))
	for _, line := range lines {
		accountIDs = append(accountIDs, line.AccountID)
	}
	_, err := s.accountSvc.ValidateAccountRefs(ctx, clientID, accountIDs)
	return err
}
