package services_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/finbooks/general_ledger/internal/apperrors"
	"github.com/finbooks/general_ledger/internal/core/domain"
	portsrepo "github.com/finbooks/general_ledger/internal/core/ports/repositories"
	portssvc "github.com/finbooks/general_ledger/internal/core/ports/services"
	"github.com/finbooks/general_ledger/internal/core/services"
	"github.com/finbooks/general_ledger/internal/dto"
	"github.com/finbooks/general_ledger/internal/repositories/database/memory"
)

const (
	testClientID = "client-1"
	testUserID   = "user-1"
)

type EntryServiceTestSuite struct {
	suite.Suite
	ctx context.Context

	repos      portsrepo.RepositoryProvider
	accountSvc portssvc.AccountSvcFacade
	entitySvc  portssvc.EntitySvcFacade
	entrySvc   portssvc.EntrySvcFacade

	entityID      string
	cashAccountID string
	rentAccountID string
}

func (s *EntryServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.repos = memory.NewRepositoryProvider(memory.NewStore())
	s.accountSvc = services.NewAccountService(s.repos.AccountRepo, nil)
	s.entitySvc = services.NewEntityService(s.repos.EntityRepo, nil)
	s.entrySvc = services.NewEntryService(s.repos.EntryRepo, s.repos.EntityRepo, s.accountSvc, s.repos.Sequencer, nil)

	entity, err := s.entitySvc.CreateEntity(s.ctx, testClientID, dto.CreateEntityRequest{
		Name:         "Acme US",
		CurrencyCode: "USD",
	}, testUserID)
	s.Require().NoError(err)
	s.entityID = entity.EntityID

	s.cashAccountID = s.createAccount("1000", "Cash", domain.Asset, true)
	s.rentAccountID = s.createAccount("6000", "Rent Expense", domain.Expense, false)
}

func (s *EntryServiceTestSuite) createAccount(code, name string, accountType domain.AccountType, isCash bool) string {
	account, err := s.accountSvc.CreateAccount(s.ctx, testClientID, dto.CreateAccountRequest{
		Code:        code,
		Name:        name,
		AccountType: accountType,
		IsCash:      isCash,
	}, testUserID)
	s.Require().NoError(err)
	return account.AccountID
}

func (s *EntryServiceTestSuite) balancedRequest(amount string) dto.CreateEntryRequest {
	return dto.CreateEntryRequest{
		EntityID:     s.entityID,
		Date:         time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
		Description:  "Office rent June",
		CurrencyCode: "USD",
		Lines: []dto.EntryLineRequest{
			{AccountID: s.rentAccountID, Side: domain.Debit, Amount: decimal.RequireFromString(amount)},
			{AccountID: s.cashAccountID, Side: domain.Credit, Amount: decimal.RequireFromString(amount)},
		},
	}
}

func (s *EntryServiceTestSuite) createDraft(amount string) *domain.JournalEntry {
	entry, err := s.entrySvc.CreateEntry(s.ctx, testClientID, s.balancedRequest(amount), testUserID)
	s.Require().NoError(err)
	return entry
}

func (s *EntryServiceTestSuite) TestCreateEntryDraft() {
	entry := s.createDraft("1000")

	s.Equal(domain.Draft, entry.Status)
	s.Empty(entry.Reference)
	s.Equal("2025", entry.FiscalPeriod)
	s.Len(entry.Lines, 2)
	s.Equal("USD", entry.Lines[0].CurrencyCode)

	fetched, err := s.entrySvc.GetEntryByID(s.ctx, testClientID, entry.EntryID, testUserID)
	s.Require().NoError(err)
	s.Equal(entry.EntryID, fetched.EntryID)
}

func (s *EntryServiceTestSuite) TestCreateEntryWithoutLines() {
	req := s.balancedRequest("100")
	req.Lines = nil

	entry, err := s.entrySvc.CreateEntry(s.ctx, testClientID, req, testUserID)

	s.Require().NoError(err)
	s.Empty(entry.Lines)
	s.Equal(domain.Draft, entry.Status)
}

func (s *EntryServiceTestSuite) TestCreateEntryUnknownEntity() {
	req := s.balancedRequest("100")
	req.EntityID = "nope"

	_, err := s.entrySvc.CreateEntry(s.ctx, testClientID, req, testUserID)

	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *EntryServiceTestSuite) TestCreateEntryInactiveAccount() {
	s.Require().NoError(s.accountSvc.DeactivateAccount(s.ctx, testClientID, s.rentAccountID, testUserID))

	_, err := s.entrySvc.CreateEntry(s.ctx, testClientID, s.balancedRequest("100"), testUserID)

	s.ErrorIs(err, apperrors.ErrValidation)
	s.Contains(err.Error(), "inactive")
}

func (s *EntryServiceTestSuite) TestCreateEntryFolderAccount() {
	folderID := s.createAccountFolder("9000", "Expenses")
	req := s.balancedRequest("100")
	req.Lines[0].AccountID = folderID

	_, err := s.entrySvc.CreateEntry(s.ctx, testClientID, req, testUserID)

	s.ErrorIs(err, apperrors.ErrValidation)
	s.Contains(err.Error(), "folder")
}

func (s *EntryServiceTestSuite) createAccountFolder(code, name string) string {
	account, err := s.accountSvc.CreateAccount(s.ctx, testClientID, dto.CreateAccountRequest{
		Code:        code,
		Name:        name,
		AccountType: domain.Expense,
		IsFolder:    true,
	}, testUserID)
	s.Require().NoError(err)
	return account.AccountID
}

func (s *EntryServiceTestSuite) TestPostAssignsSequentialReferences() {
	first := s.createDraft("100")
	second := s.createDraft("200")

	posted1, err := s.entrySvc.PostEntry(s.ctx, testClientID, first.EntryID, testUserID)
	s.Require().NoError(err)
	posted2, err := s.entrySvc.PostEntry(s.ctx, testClientID, second.EntryID, testUserID)
	s.Require().NoError(err)

	s.Equal("JE-2025-0001", posted1.Reference)
	s.Equal("JE-2025-0002", posted2.Reference)
	s.Equal(domain.Posted, posted1.Status)
}

func (s *EntryServiceTestSuite) TestPostKeepsClientReference() {
	req := s.balancedRequest("100")
	req.Reference = "MANUAL-7"
	entry, err := s.entrySvc.CreateEntry(s.ctx, testClientID, req, testUserID)
	s.Require().NoError(err)

	posted, err := s.entrySvc.PostEntry(s.ctx, testClientID, entry.EntryID, testUserID)

	s.Require().NoError(err)
	s.Equal("MANUAL-7", posted.Reference)
}

func (s *EntryServiceTestSuite) TestDuplicateClientReferenceConflicts() {
	req := s.balancedRequest("100")
	req.Reference = "MANUAL-7"
	_, err := s.entrySvc.CreateEntry(s.ctx, testClientID, req, testUserID)
	s.Require().NoError(err)

	_, err = s.entrySvc.CreateEntry(s.ctx, testClientID, req, testUserID)

	s.ErrorIs(err, apperrors.ErrConflict)
}

func (s *EntryServiceTestSuite) TestPostRetriesPastTakenReference() {
	// A manually referenced entry occupies the first slot the sequencer
	// would produce; the auto-assign loop must skip past it.
	manual := s.balancedRequest("50")
	manual.Reference = "JE-2025-0001"
	entry, err := s.entrySvc.CreateEntry(s.ctx, testClientID, manual, testUserID)
	s.Require().NoError(err)
	_, err = s.entrySvc.PostEntry(s.ctx, testClientID, entry.EntryID, testUserID)
	s.Require().NoError(err)

	auto := s.createDraft("75")
	posted, err := s.entrySvc.PostEntry(s.ctx, testClientID, auto.EntryID, testUserID)

	s.Require().NoError(err)
	s.Equal("JE-2025-0002", posted.Reference)
}

func (s *EntryServiceTestSuite) TestPostUnbalancedStaysDraft() {
	req := s.balancedRequest("100")
	req.Lines[1].Amount = decimal.RequireFromString("99")
	entry, err := s.entrySvc.CreateEntry(s.ctx, testClientID, req, testUserID)
	s.Require().NoError(err)

	_, err = s.entrySvc.PostEntry(s.ctx, testClientID, entry.EntryID, testUserID)
	s.ErrorIs(err, apperrors.ErrValidation)

	fetched, ferr := s.entrySvc.GetEntryByID(s.ctx, testClientID, entry.EntryID, testUserID)
	s.Require().NoError(ferr)
	s.Equal(domain.Draft, fetched.Status)
	s.Empty(fetched.Reference)
}

func (s *EntryServiceTestSuite) TestPostWithoutLinesFails() {
	req := s.balancedRequest("100")
	req.Lines = nil
	entry, err := s.entrySvc.CreateEntry(s.ctx, testClientID, req, testUserID)
	s.Require().NoError(err)

	_, err = s.entrySvc.PostEntry(s.ctx, testClientID, entry.EntryID, testUserID)

	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *EntryServiceTestSuite) TestPostTwiceFails() {
	entry := s.createDraft("100")
	_, err := s.entrySvc.PostEntry(s.ctx, testClientID, entry.EntryID, testUserID)
	s.Require().NoError(err)

	_, err = s.entrySvc.PostEntry(s.ctx, testClientID, entry.EntryID, testUserID)

	s.ErrorIs(err, apperrors.ErrStateTransition)
}

func (s *EntryServiceTestSuite) TestConcurrentPostsGetUniqueReferences() {
	const n = 10
	drafts := make([]*domain.JournalEntry, n)
	for i := range drafts {
		drafts[i] = s.createDraft(fmt.Sprintf("%d", 100+i))
	}

	references := make([]string, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := range drafts {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			posted, err := s.entrySvc.PostEntry(s.ctx, testClientID, drafts[i].EntryID, testUserID)
			errs[i] = err
			if err == nil {
				references[i] = posted.Reference
			}
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		s.Require().NoError(errs[i])
		s.False(seen[references[i]], "duplicate reference %s", references[i])
		seen[references[i]] = true
	}
}

func (s *EntryServiceTestSuite) TestUpdateDraftReplacesLines() {
	entry := s.createDraft("100")
	newDesc := "Office rent June, corrected"
	newLines := []dto.EntryLineRequest{
		{AccountID: s.rentAccountID, Side: domain.Debit, Amount: decimal.RequireFromString("150")},
		{AccountID: s.cashAccountID, Side: domain.Credit, Amount: decimal.RequireFromString("150")},
	}

	updated, err := s.entrySvc.UpdateEntry(s.ctx, testClientID, entry.EntryID, dto.UpdateEntryRequest{
		Description: &newDesc,
		Lines:       &newLines,
	}, testUserID)

	s.Require().NoError(err)
	s.Equal(newDesc, updated.Description)
	s.Require().Len(updated.Lines, 2)
	s.True(updated.Lines[0].Amount.Equal(decimal.RequireFromString("150")))
}

func (s *EntryServiceTestSuite) TestUpdatePostedFails() {
	entry := s.createDraft("100")
	_, err := s.entrySvc.PostEntry(s.ctx, testClientID, entry.EntryID, testUserID)
	s.Require().NoError(err)

	desc := "tampering"
	_, err = s.entrySvc.UpdateEntry(s.ctx, testClientID, entry.EntryID, dto.UpdateEntryRequest{Description: &desc}, testUserID)

	s.ErrorIs(err, apperrors.ErrStateTransition)
}

func (s *EntryServiceTestSuite) TestVoidPostedEntry() {
	entry := s.createDraft("100")
	_, err := s.entrySvc.PostEntry(s.ctx, testClientID, entry.EntryID, testUserID)
	s.Require().NoError(err)

	voided, err := s.entrySvc.VoidEntry(s.ctx, testClientID, entry.EntryID, "duplicate import", testUserID)

	s.Require().NoError(err)
	s.Equal(domain.Voided, voided.Status)
	s.Equal("duplicate import", voided.VoidReason)
	s.Len(voided.Lines, 2)
}

func (s *EntryServiceTestSuite) TestVoidDraftFails() {
	entry := s.createDraft("100")

	_, err := s.entrySvc.VoidEntry(s.ctx, testClientID, entry.EntryID, "reason", testUserID)

	s.ErrorIs(err, apperrors.ErrStateTransition)
}

func (s *EntryServiceTestSuite) TestVoidWithoutReasonFails() {
	entry := s.createDraft("100")
	_, err := s.entrySvc.PostEntry(s.ctx, testClientID, entry.EntryID, testUserID)
	s.Require().NoError(err)

	_, err = s.entrySvc.VoidEntry(s.ctx, testClientID, entry.EntryID, "", testUserID)

	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *EntryServiceTestSuite) TestReversePostedEntry() {
	entry := s.createDraft("100")
	posted, err := s.entrySvc.PostEntry(s.ctx, testClientID, entry.EntryID, testUserID)
	s.Require().NoError(err)

	reversal, err := s.entrySvc.ReverseEntry(s.ctx, testClientID, entry.EntryID, posted.EntryDate.AddDate(0, 1, 0), testUserID)

	s.Require().NoError(err)
	s.Equal(domain.Draft, reversal.Status)
	s.Require().NotNil(reversal.ReversesEntryID)
	s.Equal(entry.EntryID, *reversal.ReversesEntryID)
	s.Equal(domain.Credit, reversal.Lines[0].Side)

	original, err := s.entrySvc.GetEntryByID(s.ctx, testClientID, entry.EntryID, testUserID)
	s.Require().NoError(err)
	s.Require().NotNil(original.ReversedByEntryID)
	s.Equal(reversal.EntryID, *original.ReversedByEntryID)
}

func (s *EntryServiceTestSuite) TestReverseTwiceConflicts() {
	entry := s.createDraft("100")
	posted, err := s.entrySvc.PostEntry(s.ctx, testClientID, entry.EntryID, testUserID)
	s.Require().NoError(err)
	_, err = s.entrySvc.ReverseEntry(s.ctx, testClientID, entry.EntryID, posted.EntryDate, testUserID)
	s.Require().NoError(err)

	_, err = s.entrySvc.ReverseEntry(s.ctx, testClientID, entry.EntryID, posted.EntryDate, testUserID)

	s.ErrorIs(err, apperrors.ErrConflict)
}

func (s *EntryServiceTestSuite) TestReverseDraftFails() {
	entry := s.createDraft("100")

	_, err := s.entrySvc.ReverseEntry(s.ctx, testClientID, entry.EntryID, entry.EntryDate, testUserID)

	s.ErrorIs(err, apperrors.ErrStateTransition)
}

func (s *EntryServiceTestSuite) TestDeleteDraft() {
	entry := s.createDraft("100")

	s.Require().NoError(s.entrySvc.DeleteEntry(s.ctx, testClientID, entry.EntryID, testUserID))

	_, err := s.entrySvc.GetEntryByID(s.ctx, testClientID, entry.EntryID, testUserID)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *EntryServiceTestSuite) TestDeleteDraftReversalReleasesOriginal() {
	entry := s.createDraft("100")
	posted, err := s.entrySvc.PostEntry(s.ctx, testClientID, entry.EntryID, testUserID)
	s.Require().NoError(err)
	reversal, err := s.entrySvc.ReverseEntry(s.ctx, testClientID, entry.EntryID, posted.EntryDate, testUserID)
	s.Require().NoError(err)

	s.Require().NoError(s.entrySvc.DeleteEntry(s.ctx, testClientID, reversal.EntryID, testUserID))

	original, err := s.entrySvc.GetEntryByID(s.ctx, testClientID, entry.EntryID, testUserID)
	s.Require().NoError(err)
	s.Equal(domain.Posted, original.Status)
	s.Nil(original.ReversedByEntryID)

	// The original is reversible again.
	_, err = s.entrySvc.ReverseEntry(s.ctx, testClientID, entry.EntryID, posted.EntryDate, testUserID)
	s.NoError(err)
}

func (s *EntryServiceTestSuite) TestDeletePostedFails() {
	entry := s.createDraft("100")
	_, err := s.entrySvc.PostEntry(s.ctx, testClientID, entry.EntryID, testUserID)
	s.Require().NoError(err)

	err = s.entrySvc.DeleteEntry(s.ctx, testClientID, entry.EntryID, testUserID)

	s.ErrorIs(err, apperrors.ErrStateTransition)
}

func (s *EntryServiceTestSuite) TestCanMutateAttachments() {
	entry := s.createDraft("100")

	ok, err := s.entrySvc.CanMutateAttachments(s.ctx, testClientID, entry.EntryID, testUserID)
	s.Require().NoError(err)
	s.True(ok)

	_, err = s.entrySvc.PostEntry(s.ctx, testClientID, entry.EntryID, testUserID)
	s.Require().NoError(err)

	ok, err = s.entrySvc.CanMutateAttachments(s.ctx, testClientID, entry.EntryID, testUserID)
	s.Require().NoError(err)
	s.False(ok)
}

func (s *EntryServiceTestSuite) TestCrossClientEntryHidden() {
	entry := s.createDraft("100")

	_, err := s.entrySvc.GetEntryByID(s.ctx, "other-client", entry.EntryID, testUserID)

	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *EntryServiceTestSuite) TestListEntriesFiltersAndPaginates() {
	for i := 0; i < 3; i++ {
		req := s.balancedRequest(fmt.Sprintf("%d", 100*(i+1)))
		req.Date = time.Date(2025, 6, 10+i, 0, 0, 0, 0, time.UTC)
		req.Description = fmt.Sprintf("rent installment %d", i+1)
		_, err := s.entrySvc.CreateEntry(s.ctx, testClientID, req, testUserID)
		s.Require().NoError(err)
	}

	// Description substring match is case-insensitive.
	page, err := s.entrySvc.ListEntries(s.ctx, testClientID, dto.ListEntriesParams{Description: "INSTALLMENT 2"}, testUserID)
	s.Require().NoError(err)
	s.Require().Len(page.Entries, 1)
	s.Equal("rent installment 2", page.Entries[0].Description)

	// Amount range matches when any line falls inside it.
	min := decimal.RequireFromString("250")
	page, err = s.entrySvc.ListEntries(s.ctx, testClientID, dto.ListEntriesParams{AmountMin: &min}, testUserID)
	s.Require().NoError(err)
	s.Len(page.Entries, 1)

	// Cursor pagination walks newest first without repeats.
	page, err = s.entrySvc.ListEntries(s.ctx, testClientID, dto.ListEntriesParams{Limit: 2}, testUserID)
	s.Require().NoError(err)
	s.Require().Len(page.Entries, 2)
	s.Require().NotNil(page.NextToken)
	s.Equal("rent installment 3", page.Entries[0].Description)

	page2, err := s.entrySvc.ListEntries(s.ctx, testClientID, dto.ListEntriesParams{Limit: 2, NextToken: page.NextToken}, testUserID)
	s.Require().NoError(err)
	s.Require().Len(page2.Entries, 1)
	s.Nil(page2.NextToken)
	s.Equal("rent installment 1", page2.Entries[0].Description)
}

func TestEntryServiceTestSuite(t *testing.T) {
	suite.Run(t, new(EntryServiceTestSuite))
}
