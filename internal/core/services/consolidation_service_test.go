package services_test

import (
	"context"
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

type ConsolidationServiceTestSuite struct {
	suite.Suite
	ctx context.Context

	repos    portsrepo.RepositoryProvider
	entrySvc portssvc.EntrySvcFacade
	consoSvc portssvc.ConsolidationSvcFacade

	entityA string
	entityB string

	cashID    string
	arID      string
	dueFromID string
	dueToID   string
	revenueID string
	expenseID string
}

func (s *ConsolidationServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.repos = memory.NewRepositoryProvider(memory.NewStore())
	accountSvc := services.NewAccountService(s.repos.AccountRepo, nil)
	entitySvc := services.NewEntityService(s.repos.EntityRepo, nil)
	s.entrySvc = services.NewEntryService(s.repos.EntryRepo, s.repos.EntityRepo, accountSvc, s.repos.Sequencer, nil)
	s.consoSvc = services.NewConsolidationService(s.repos.GroupRepo, s.repos.EntityRepo, s.repos.ConsolidationRepo, nil)

	a, err := entitySvc.CreateEntity(s.ctx, testClientID, dto.CreateEntityRequest{Name: "Acme US", CurrencyCode: "USD"}, testUserID)
	s.Require().NoError(err)
	s.entityA = a.EntityID
	b, err := entitySvc.CreateEntity(s.ctx, testClientID, dto.CreateEntityRequest{Name: "Acme UK", CurrencyCode: "USD"}, testUserID)
	s.Require().NoError(err)
	s.entityB = b.EntityID

	create := func(code, name string, accountType domain.AccountType, isCash bool) string {
		account, err := accountSvc.CreateAccount(s.ctx, testClientID, dto.CreateAccountRequest{
			Code: code, Name: name, AccountType: accountType, IsCash: isCash,
		}, testUserID)
		s.Require().NoError(err)
		return account.AccountID
	}
	s.cashID = create("1000", "Cash", domain.Asset, true)
	s.arID = create("1100", "Accounts Receivable", domain.Asset, false)
	s.dueFromID = create("1300", "Due from Affiliates", domain.Asset, false)
	s.dueToID = create("2100", "Due to Affiliates", domain.Liability, false)
	s.revenueID = create("4000", "Sales Revenue", domain.Revenue, false)
	s.expenseID = create("5000", "Operating Expense", domain.Expense, false)
}

func (s *ConsolidationServiceTestSuite) postEntry(entityID string, date time.Time, description string, lines []dto.EntryLineRequest) {
	entry, err := s.entrySvc.CreateEntry(s.ctx, testClientID, dto.CreateEntryRequest{
		EntityID:     entityID,
		Date:         date,
		Description:  description,
		CurrencyCode: "USD",
		Lines:        lines,
	}, testUserID)
	s.Require().NoError(err)
	_, err = s.entrySvc.PostEntry(s.ctx, testClientID, entry.EntryID, testUserID)
	s.Require().NoError(err)
}

// seedLedger posts the fixture used by the report tests:
//
//	A: Dr AR 1000 / Cr Revenue 1000
//	A: Dr Due-from-B 200 (intercompany) / Cr Revenue 200
//	B: Dr Expense 200 / Cr Due-to-A 200 (intercompany)
//	A: Dr Expense 300 / Cr Cash 300
//
// plus a draft and a post-dated entry that both reports must ignore.
func (s *ConsolidationServiceTestSuite) seedLedger() {
	march := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	amount := decimal.RequireFromString

	s.postEntry(s.entityA, march, "external sale", []dto.EntryLineRequest{
		{AccountID: s.arID, Side: domain.Debit, Amount: amount("1000")},
		{AccountID: s.revenueID, Side: domain.Credit, Amount: amount("1000")},
	})
	s.postEntry(s.entityA, march, "management fee to UK", []dto.EntryLineRequest{
		{AccountID: s.dueFromID, Side: domain.Debit, Amount: amount("200"), IntercompanyEntityID: s.entityB},
		{AccountID: s.revenueID, Side: domain.Credit, Amount: amount("200")},
	})
	s.postEntry(s.entityB, march, "management fee from US", []dto.EntryLineRequest{
		{AccountID: s.expenseID, Side: domain.Debit, Amount: amount("200")},
		{AccountID: s.dueToID, Side: domain.Credit, Amount: amount("200"), IntercompanyEntityID: s.entityA},
	})
	s.postEntry(s.entityA, march, "office costs", []dto.EntryLineRequest{
		{AccountID: s.expenseID, Side: domain.Debit, Amount: amount("300")},
		{AccountID: s.cashID, Side: domain.Credit, Amount: amount("300")},
	})

	// Still a draft: must never reach a consolidated report.
	_, err := s.entrySvc.CreateEntry(s.ctx, testClientID, dto.CreateEntryRequest{
		EntityID:     s.entityA,
		Date:         march,
		Description:  "unposted sale",
		CurrencyCode: "USD",
		Lines: []dto.EntryLineRequest{
			{AccountID: s.arID, Side: domain.Debit, Amount: amount("999")},
			{AccountID: s.revenueID, Side: domain.Credit, Amount: amount("999")},
		},
	}, testUserID)
	s.Require().NoError(err)

	// Posted but dated after the report cutoff.
	s.postEntry(s.entityA, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), "next year sale", []dto.EntryLineRequest{
		{AccountID: s.arID, Side: domain.Debit, Amount: amount("5000")},
		{AccountID: s.revenueID, Side: domain.Credit, Amount: amount("5000")},
	})
}

func (s *ConsolidationServiceTestSuite) createGroup(members ...string) *domain.ConsolidationGroup {
	group, err := s.consoSvc.CreateGroup(s.ctx, testClientID, dto.CreateGroupRequest{
		Name:            "Acme Global",
		MemberEntityIDs: members,
	}, testUserID)
	s.Require().NoError(err)
	return group
}

func (s *ConsolidationServiceTestSuite) consolidate(groupID string, reportType domain.ReportType) *domain.ConsolidatedReport {
	report, err := s.consoSvc.Consolidate(s.ctx, testClientID, dto.ConsolidateRequest{
		GroupID:    groupID,
		ReportType: reportType,
		AsOf:       time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
	}, testUserID)
	s.Require().NoError(err)
	return report
}

func (s *ConsolidationServiceTestSuite) TestCreateGroupValidatesMembers() {
	_, err := s.consoSvc.CreateGroup(s.ctx, testClientID, dto.CreateGroupRequest{
		Name:            "Broken",
		MemberEntityIDs: []string{s.entityA, "ghost"},
	}, testUserID)

	s.ErrorIs(err, apperrors.ErrValidation)
	s.Contains(err.Error(), "ghost")
}

func (s *ConsolidationServiceTestSuite) TestCreateGroupRequiresMembers() {
	_, err := s.consoSvc.CreateGroup(s.ctx, testClientID, dto.CreateGroupRequest{Name: "Empty"}, testUserID)

	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *ConsolidationServiceTestSuite) TestGroupLifecycle() {
	group := s.createGroup(s.entityA)

	updated, err := s.consoSvc.UpdateGroupMembers(s.ctx, testClientID, group.GroupID, dto.UpdateGroupMembersRequest{
		MemberEntityIDs: []string{s.entityA, s.entityB},
	}, testUserID)
	s.Require().NoError(err)
	s.Len(updated.MemberEntityIDs, 2)

	groups, err := s.consoSvc.ListGroups(s.ctx, testClientID, testUserID)
	s.Require().NoError(err)
	s.Len(groups, 1)

	s.Require().NoError(s.consoSvc.DeleteGroup(s.ctx, testClientID, group.GroupID, testUserID))
	_, err = s.consoSvc.GetGroupByID(s.ctx, testClientID, group.GroupID, testUserID)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *ConsolidationServiceTestSuite) TestCrossClientGroupHidden() {
	group := s.createGroup(s.entityA, s.entityB)

	_, err := s.consoSvc.GetGroupByID(s.ctx, "other-client", group.GroupID, testUserID)

	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *ConsolidationServiceTestSuite) TestConsolidateTrialBalance() {
	s.seedLedger()
	group := s.createGroup(s.entityA, s.entityB)

	report := s.consolidate(group.GroupID, domain.ReportTrialBalance)

	s.Equal(domain.ReportTrialBalance, report.ReportType)
	s.Require().Len(report.TrialBalance, 4)

	byCode := make(map[string]domain.TrialBalanceRow, len(report.TrialBalance))
	for _, row := range report.TrialBalance {
		byCode[row.AccountCode] = row
	}
	s.True(byCode["1000"].Credit.Equal(decimal.RequireFromString("300")))
	s.True(byCode["1100"].Debit.Equal(decimal.RequireFromString("1000")))
	s.True(byCode["4000"].Credit.Equal(decimal.RequireFromString("1200")))
	s.True(byCode["5000"].Debit.Equal(decimal.RequireFromString("500")))
	// Intercompany accounts are fully eliminated from the rollup.
	s.NotContains(byCode, "1300")
	s.NotContains(byCode, "2100")

	s.Require().Len(report.Eliminations, 2)
	byEntity := make(map[string]domain.IntercompanyElimination, 2)
	for _, e := range report.Eliminations {
		byEntity[e.EntityID] = e
	}
	fromA := byEntity[s.entityA]
	s.Equal(s.entityB, fromA.CounterpartyEntityID)
	s.Equal(s.dueFromID, fromA.AccountID)
	s.True(fromA.NetAmount.Equal(decimal.RequireFromString("200")))
	fromB := byEntity[s.entityB]
	s.Equal(s.entityA, fromB.CounterpartyEntityID)
	s.True(fromB.NetAmount.Equal(decimal.RequireFromString("-200")))
}

func (s *ConsolidationServiceTestSuite) TestConsolidateIncomeStatement() {
	s.seedLedger()
	group := s.createGroup(s.entityA, s.entityB)

	report := s.consolidate(group.GroupID, domain.ReportIncomeStatement)

	is := report.IncomeStatement
	s.Require().NotNil(is)
	s.Require().Len(is.Revenue, 1)
	s.True(is.Revenue[0].NetAmount.Equal(decimal.RequireFromString("1200")))
	s.Require().Len(is.Expenses, 1)
	s.True(is.Expenses[0].NetAmount.Equal(decimal.RequireFromString("500")))
	s.True(is.NetIncome.Equal(decimal.RequireFromString("700")))
}

func (s *ConsolidationServiceTestSuite) TestConsolidateBalanceSheet() {
	s.seedLedger()
	group := s.createGroup(s.entityA, s.entityB)

	report := s.consolidate(group.GroupID, domain.ReportBalanceSheet)

	bs := report.BalanceSheet
	s.Require().NotNil(bs)
	s.Require().Len(bs.Assets, 2)
	s.True(bs.TotalAssets.Equal(decimal.RequireFromString("700")))
	s.Empty(bs.Liabilities)
	s.True(bs.TotalLiabilities.IsZero())
}

func (s *ConsolidationServiceTestSuite) TestConsolidateCashFlow() {
	s.seedLedger()
	group := s.createGroup(s.entityA, s.entityB)

	report := s.consolidate(group.GroupID, domain.ReportCashFlow)

	cf := report.CashFlow
	s.Require().NotNil(cf)
	// Revenue 1200 - expenses 500 - receivable growth 1000 matches the
	// 300 drop in cash.
	s.True(cf.NetCashFlow.Equal(decimal.RequireFromString("-300")))
	s.Len(cf.Operating, 2)
	s.Require().Len(cf.Investing, 1)
	s.True(cf.Investing[0].NetAmount.Equal(decimal.RequireFromString("-1000")))
	s.Empty(cf.Financing)
}

func (s *ConsolidationServiceTestSuite) TestConsolidateSingleMemberKeepsIntercompany() {
	s.seedLedger()
	// With only entity A in the group, B is an outsider and A's tagged
	// receivable is a real external balance.
	group := s.createGroup(s.entityA)

	report := s.consolidate(group.GroupID, domain.ReportTrialBalance)

	s.Empty(report.Eliminations)
	byCode := make(map[string]domain.TrialBalanceRow, len(report.TrialBalance))
	for _, row := range report.TrialBalance {
		byCode[row.AccountCode] = row
	}
	s.Require().Contains(byCode, "1300")
	s.True(byCode["1300"].Debit.Equal(decimal.RequireFromString("200")))
	// B's expense entry is outside the group entirely.
	s.True(byCode["5000"].Debit.Equal(decimal.RequireFromString("300")))
}

func TestConsolidationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ConsolidationServiceTestSuite))
}
