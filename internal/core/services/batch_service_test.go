package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/finbooks/general_ledger/internal/core/domain"
	portsrepo "github.com/finbooks/general_ledger/internal/core/ports/repositories"
	portssvc "github.com/finbooks/general_ledger/internal/core/ports/services"
	"github.com/finbooks/general_ledger/internal/core/services"
	"github.com/finbooks/general_ledger/internal/dto"
	"github.com/finbooks/general_ledger/internal/repositories/database/memory"
)

type BatchServiceTestSuite struct {
	suite.Suite
	ctx context.Context

	repos    portsrepo.RepositoryProvider
	batchSvc portssvc.BatchSvcFacade
	entrySvc portssvc.EntrySvcFacade

	entityID      string
	cashAccountID string
	feesAccountID string
}

func (s *BatchServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.repos = memory.NewRepositoryProvider(memory.NewStore())
	accountSvc := services.NewAccountService(s.repos.AccountRepo, nil)
	entitySvc := services.NewEntityService(s.repos.EntityRepo, nil)
	s.batchSvc = services.NewBatchService(s.repos.EntryRepo, s.repos.EntityRepo, accountSvc, nil)
	s.entrySvc = services.NewEntryService(s.repos.EntryRepo, s.repos.EntityRepo, accountSvc, s.repos.Sequencer, nil)

	entity, err := entitySvc.CreateEntity(s.ctx, testClientID, dto.CreateEntityRequest{Name: "Acme US", CurrencyCode: "USD"}, testUserID)
	s.Require().NoError(err)
	s.entityID = entity.EntityID

	cash, err := accountSvc.CreateAccount(s.ctx, testClientID, dto.CreateAccountRequest{
		Code: "1000", Name: "Cash", AccountType: domain.Asset, IsCash: true,
	}, testUserID)
	s.Require().NoError(err)
	s.cashAccountID = cash.AccountID

	fees, err := accountSvc.CreateAccount(s.ctx, testClientID, dto.CreateAccountRequest{
		Code: "6100", Name: "Bank Fees", AccountType: domain.Expense,
	}, testUserID)
	s.Require().NoError(err)
	s.feesAccountID = fees.AccountID
}

func (s *BatchServiceTestSuite) batchItem(amount string, description string) dto.CreateEntryRequest {
	return dto.CreateEntryRequest{
		EntityID:     s.entityID,
		Date:         time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
		Description:  description,
		CurrencyCode: "USD",
		Lines: []dto.EntryLineRequest{
			{AccountID: s.feesAccountID, Side: domain.Debit, Amount: decimal.RequireFromString(amount)},
			{AccountID: s.cashAccountID, Side: domain.Credit, Amount: decimal.RequireFromString(amount)},
		},
	}
}

func (s *BatchServiceTestSuite) TestProcessBatchAllValid() {
	batch := []dto.CreateEntryRequest{
		s.batchItem("10", "fee 1"),
		s.batchItem("20", "fee 2"),
		s.batchItem("30", "fee 3"),
	}

	result, err := s.batchSvc.ProcessBatch(s.ctx, testClientID, testUserID, batch)

	s.Require().NoError(err)
	s.Equal(3, result.SuccessCount)
	s.Empty(result.Errors)
	s.Require().Len(result.CreatedEntryIDs, 3)

	entry, err := s.entrySvc.GetEntryByID(s.ctx, testClientID, result.CreatedEntryIDs[0], testUserID)
	s.Require().NoError(err)
	s.Equal(domain.Draft, entry.Status)
}

func (s *BatchServiceTestSuite) TestProcessBatchPartialFailure() {
	batch := make([]dto.CreateEntryRequest, 5)
	for i := range batch {
		batch[i] = s.batchItem(fmt.Sprintf("%d", 10*(i+1)), fmt.Sprintf("fee %d", i+1))
	}
	// One unbalanced entry must not block its siblings.
	batch[3].Lines[1].Amount = decimal.RequireFromString("39")

	result, err := s.batchSvc.ProcessBatch(s.ctx, testClientID, testUserID, batch)

	s.Require().NoError(err)
	s.Equal(4, result.SuccessCount)
	s.Require().Len(result.Errors, 1)
	s.Equal(3, result.Errors[0].Index)
	s.Contains(result.Errors[0].Message, "off by 1")
	s.Len(result.CreatedEntryIDs, 4)
}

func (s *BatchServiceTestSuite) TestProcessBatchUnknownEntity() {
	bad := s.batchItem("10", "orphan fee")
	bad.EntityID = "nope"
	batch := []dto.CreateEntryRequest{bad, s.batchItem("20", "fee 2")}

	result, err := s.batchSvc.ProcessBatch(s.ctx, testClientID, testUserID, batch)

	s.Require().NoError(err)
	s.Equal(1, result.SuccessCount)
	s.Require().Len(result.Errors, 1)
	s.Equal(0, result.Errors[0].Index)
	s.Contains(result.Errors[0].Message, "entity nope not found")
}

func (s *BatchServiceTestSuite) TestProcessBatchUnbalancedRejected() {
	// Batch items are stored as drafts but must already balance on ingest.
	bad := s.batchItem("10", "skewed")
	bad.Lines = bad.Lines[:1]

	result, err := s.batchSvc.ProcessBatch(s.ctx, testClientID, testUserID, []dto.CreateEntryRequest{bad})

	s.Require().NoError(err)
	s.Equal(0, result.SuccessCount)
	s.Require().Len(result.Errors, 1)
}

func (s *BatchServiceTestSuite) TestProcessBatchDuplicateReference() {
	first := s.batchItem("10", "fee 1")
	first.Reference = "IMP-001"
	second := s.batchItem("20", "fee 2")
	second.Reference = "IMP-001"
	// A sibling after the conflicting item must still go through: the
	// conflict rolls back that item alone, not the batch transaction.
	third := s.batchItem("30", "fee 3")

	result, err := s.batchSvc.ProcessBatch(s.ctx, testClientID, testUserID, []dto.CreateEntryRequest{first, second, third})

	s.Require().NoError(err)
	s.Equal(2, result.SuccessCount)
	s.Require().Len(result.Errors, 1)
	s.Equal(1, result.Errors[0].Index)
	s.Contains(result.Errors[0].Message, "IMP-001")
	s.Require().Len(result.CreatedEntryIDs, 2)

	last, err := s.entrySvc.GetEntryByID(s.ctx, testClientID, result.CreatedEntryIDs[1], testUserID)
	s.Require().NoError(err)
	s.Equal("fee 3", last.Description)
	s.Equal(domain.Draft, last.Status)
}

func (s *BatchServiceTestSuite) TestProcessBatchEmpty() {
	result, err := s.batchSvc.ProcessBatch(s.ctx, testClientID, testUserID, nil)

	s.Require().NoError(err)
	s.Equal(0, result.SuccessCount)
	s.Empty(result.Errors)
	s.Empty(result.CreatedEntryIDs)
}

func TestBatchServiceTestSuite(t *testing.T) {
	suite.Run(t, new(BatchServiceTestSuite))
}
