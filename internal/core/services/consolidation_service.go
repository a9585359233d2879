package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finbooks/general_ledger/internal/apperrors"
	"github.com/finbooks/general_ledger/internal/core/domain"
	portsrepo "github.com/finbooks/general_ledger/internal/core/ports/repositories"
	portssvc "github.com/finbooks/general_ledger/internal/core/ports/services"
	"github.com/finbooks/general_ledger/internal/dto"
)

// consolidationService manages consolidation groups and builds combined
// financial views over their member entities. It reads posted entries only
// and never mutates ledger data.
type consolidationService struct {
	BaseService
	groupRepo         portsrepo.GroupRepositoryFacade
	entityRepo        portsrepo.EntityReader
	consolidationRepo portsrepo.ConsolidationReader
}

// NewConsolidationService creates a new ConsolidationService.
func NewConsolidationService(
	groupRepo portsrepo.GroupRepositoryFacade,
	entityRepo portsrepo.EntityReader,
	consolidationRepo portsrepo.ConsolidationReader,
	authorizer portssvc.ClientAuthorizer,
) portssvc.ConsolidationSvcFacade {
	return &consolidationService{
		BaseService:       BaseService{Authorizer: authorizer},
		groupRepo:         groupRepo,
		entityRepo:        entityRepo,
		consolidationRepo: consolidationRepo,
	}
}

var _ portssvc.ConsolidationSvcFacade = (*consolidationService)(nil)

// CreateGroup creates a consolidation group after confirming every member
// entity exists and belongs to the client.
func (s *consolidationService) CreateGroup(ctx context.Context, clientID string, req dto.CreateGroupRequest, creatorUserID string) (*domain.ConsolidationGroup, error) {
	if err := s.AuthorizeUser(ctx, creatorUserID, clientID, domain.RoleMember); err != nil {
		return nil, err
	}
	if err := dto.Validate(req); err != nil {
		return nil, err
	}

	members := uniqueStrings(req.MemberEntityIDs)
	if err := s.checkMembers(ctx, clientID, members); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	group := domain.ConsolidationGroup{
		GroupID:         uuid.NewString(),
		ClientID:        clientID,
		Name:            req.Name,
		MemberEntityIDs: members,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.groupRepo.SaveGroup(ctx, group); err != nil {
		s.LogError(ctx, err, "Failed to save consolidation group", slog.String("client_id", clientID))
		return nil, fmt.Errorf("failed to save group: %w", err)
	}

	s.LogInfo(ctx, "Consolidation group created", slog.String("group_id", group.GroupID), slog.Int("members", len(members)))
	return &group, nil
}

// GetGroupByID retrieves a group, hiding other clients' groups.
func (s *consolidationService) GetGroupByID(ctx context.Context, clientID string, groupID string, requestingUserID string) (*domain.ConsolidationGroup, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, clientID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	return s.fetchOwnedGroup(ctx, clientID, groupID)
}

// ListGroups retrieves the client's consolidation groups.
func (s *consolidationService) ListGroups(ctx context.Context, clientID string, requestingUserID string) ([]domain.ConsolidationGroup, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, clientID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	return s.groupRepo.ListGroups(ctx, clientID)
}

// UpdateGroupMembers replaces a group's membership set.
func (s *consolidationService) UpdateGroupMembers(ctx context.Context, clientID string, groupID string, req dto.UpdateGroupMembersRequest, requestingUserID string) (*domain.ConsolidationGroup, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, clientID, domain.RoleMember); err != nil {
		return nil, err
	}
	if err := dto.Validate(req); err != nil {
		return nil, err
	}

	group, err := s.fetchOwnedGroup(ctx, clientID, groupID)
	if err != nil {
		return nil, err
	}

	members := uniqueStrings(req.MemberEntityIDs)
	if err := s.checkMembers(ctx, clientID, members); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.groupRepo.UpdateGroupMembers(ctx, groupID, members, requestingUserID, now); err != nil {
		s.LogError(ctx, err, "Failed to update group members", slog.String("group_id", groupID))
		return nil, err
	}

	group.MemberEntityIDs = members
	group.LastUpdatedAt = now
	group.LastUpdatedBy = requestingUserID
	return group, nil
}

// DeleteGroup removes a group. Member entities and their entries are
// untouched; membership is not ownership.
func (s *consolidationService) DeleteGroup(ctx context.Context, clientID string, groupID string, requestingUserID string) error {
	if err := s.AuthorizeUser(ctx, requestingUserID, clientID, domain.RoleMember); err != nil {
		return err
	}
	if _, err := s.fetchOwnedGroup(ctx, clientID, groupID); err != nil {
		return err
	}
	return s.groupRepo.DeleteGroup(ctx, groupID)
}

// Consolidate builds the requested combined view across the group's member
// entities. Lines tagged with an intercompany counterparty that is also a
// group member are removed from the rollup and reported as eliminations, so
// offsetting balances net to zero instead of double-counting.
func (s *consolidationService) Consolidate(ctx context.Context, clientID string, req dto.ConsolidateRequest, requestingUserID string) (*domain.ConsolidatedReport, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, clientID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	if err := dto.Validate(req); err != nil {
		return nil, err
	}

	group, err := s.fetchOwnedGroup(ctx, clientID, req.GroupID)
	if err != nil {
		return nil, err
	}

	lines, err := s.consolidationRepo.GetPostedLines(ctx, clientID, group.MemberEntityIDs, req.AsOf)
	if err != nil {
		s.LogError(ctx, err, "Failed to read posted lines for consolidation", slog.String("group_id", group.GroupID))
		return nil, fmt.Errorf("failed to read posted lines: %w", err)
	}

	rollup, eliminations := s.rollupWithEliminations(group, lines)

	report := &domain.ConsolidatedReport{
		GroupID:         group.GroupID,
		GroupName:       group.Name,
		ReportType:      req.ReportType,
		AsOf:            req.AsOf,
		MemberEntityIDs: group.MemberEntityIDs,
		Eliminations:    eliminations,
	}

	switch req.ReportType {
	case domain.ReportTrialBalance:
		report.TrialBalance = buildTrialBalance(rollup)
	case domain.ReportIncomeStatement:
		report.IncomeStatement = buildIncomeStatement(rollup)
	case domain.ReportBalanceSheet:
		report.BalanceSheet = buildBalanceSheet(rollup)
	case domain.ReportCashFlow:
		report.CashFlow = buildCashFlow(rollup)
	default:
		return nil, fmt.Errorf("%w: unknown report type %q", apperrors.ErrValidation, req.ReportType)
	}

	s.LogInfo(ctx, "Consolidated report generated",
		slog.String("group_id", group.GroupID),
		slog.String("report_type", string(req.ReportType)),
		slog.Int("line_count", len(lines)),
		slog.Int("elimination_count", len(eliminations)))
	return report, nil
}

// accountRollup accumulates debit/credit totals per account across entities.
type accountRollup struct {
	accountID   string
	code        string
	name        string
	accountType domain.AccountType
	isCash      bool
	debit       decimal.Decimal
	credit      decimal.Decimal
}

// rollupWithEliminations sums lines by account, diverting intercompany lines
// whose counterparty belongs to the group into the eliminations list.
func (s *consolidationService) rollupWithEliminations(group *domain.ConsolidationGroup, lines []domain.ConsolidationLine) (map[string]*accountRollup, []domain.IntercompanyElimination) {
	type elimKey struct {
		entityID     string
		counterparty string
		accountID    string
	}

	rollup := make(map[string]*accountRollup)
	elims := make(map[elimKey]*domain.IntercompanyElimination)

	for _, line := range lines {
		intercompany := line.IntercompanyEntityID != "" &&
			line.IntercompanyEntityID != line.EntityID &&
			group.HasMember(line.IntercompanyEntityID)

		if intercompany {
			key := elimKey{line.EntityID, line.IntercompanyEntityID, line.AccountID}
			agg, ok := elims[key]
			if !ok {
				agg = &domain.IntercompanyElimination{
					EntityID:             line.EntityID,
					CounterpartyEntityID: line.IntercompanyEntityID,
					AccountID:            line.AccountID,
				}
				elims[key] = agg
			}
			if line.Side == domain.Debit {
				agg.Debit = agg.Debit.Add(line.Amount)
			} else {
				agg.Credit = agg.Credit.Add(line.Amount)
			}
			continue
		}

		agg, ok := rollup[line.AccountID]
		if !ok {
			agg = &accountRollup{
				accountID:   line.AccountID,
				code:        line.AccountCode,
				name:        line.AccountName,
				accountType: line.AccountType,
				isCash:      line.IsCash,
			}
			rollup[line.AccountID] = agg
		}
		if line.Side == domain.Debit {
			agg.debit = agg.debit.Add(line.Amount)
		} else {
			agg.credit = agg.credit.Add(line.Amount)
		}
	}

	eliminations := make([]domain.IntercompanyElimination, 0, len(elims))
	for _, agg := range elims {
		agg.NetAmount = agg.Debit.Sub(agg.Credit)
		eliminations = append(eliminations, *agg)
	}
	sort.Slice(eliminations, func(i, j int) bool {
		a, b := eliminations[i], eliminations[j]
		if a.EntityID != b.EntityID {
			return a.EntityID < b.EntityID
		}
		if a.CounterpartyEntityID != b.CounterpartyEntityID {
			return a.CounterpartyEntityID < b.CounterpartyEntityID
		}
		return a.AccountID < b.AccountID
	})

	return rollup, eliminations
}

// naturalNet returns the account's balance on its natural side: debit-minus-
// credit for assets and expenses, credit-minus-debit otherwise.
func naturalNet(agg *accountRollup) decimal.Decimal {
	switch agg.accountType {
	case domain.Asset, domain.Expense:
		return agg.debit.Sub(agg.credit)
	default:
		return agg.credit.Sub(agg.debit)
	}
}

func sortedRollups(rollup map[string]*accountRollup) []*accountRollup {
	aggs := make([]*accountRollup, 0, len(rollup))
	for _, agg := range rollup {
		aggs = append(aggs, agg)
	}
	sort.Slice(aggs, func(i, j int) bool {
		if aggs[i].code != aggs[j].code {
			return aggs[i].code < aggs[j].code
		}
		return aggs[i].accountID < aggs[j].accountID
	})
	return aggs
}

func toAccountAmount(agg *accountRollup, net decimal.Decimal) domain.AccountAmount {
	return domain.AccountAmount{
		AccountID:   agg.accountID,
		AccountCode: agg.code,
		Name:        agg.name,
		NetAmount:   net,
	}
}

func buildTrialBalance(rollup map[string]*accountRollup) []domain.TrialBalanceRow {
	rows := make([]domain.TrialBalanceRow, 0, len(rollup))
	for _, agg := range sortedRollups(rollup) {
		rows = append(rows, domain.TrialBalanceRow{
			AccountID:   agg.accountID,
			AccountCode: agg.code,
			AccountName: agg.name,
			AccountType: agg.accountType,
			Debit:       agg.debit,
			Credit:      agg.credit,
		})
	}
	return rows
}

func buildIncomeStatement(rollup map[string]*accountRollup) *domain.IncomeStatementReport {
	report := &domain.IncomeStatementReport{
		Revenue:  []domain.AccountAmount{},
		Expenses: []domain.AccountAmount{},
	}
	totalRevenue := decimal.Zero
	totalExpenses := decimal.Zero
	for _, agg := range sortedRollups(rollup) {
		net := naturalNet(agg)
		switch agg.accountType {
		case domain.Revenue:
			report.Revenue = append(report.Revenue, toAccountAmount(agg, net))
			totalRevenue = totalRevenue.Add(net)
		case domain.Expense:
			report.Expenses = append(report.Expenses, toAccountAmount(agg, net))
			totalExpenses = totalExpenses.Add(net)
		}
	}
	report.NetIncome = totalRevenue.Sub(totalExpenses)
	return report
}

func buildBalanceSheet(rollup map[string]*accountRollup) *domain.BalanceSheetReport {
	report := &domain.BalanceSheetReport{
		Assets:      []domain.AccountAmount{},
		Liabilities: []domain.AccountAmount{},
		Equity:      []domain.AccountAmount{},
	}
	for _, agg := range sortedRollups(rollup) {
		net := naturalNet(agg)
		switch agg.accountType {
		case domain.Asset:
			report.Assets = append(report.Assets, toAccountAmount(agg, net))
			report.TotalAssets = report.TotalAssets.Add(net)
		case domain.Liability:
			report.Liabilities = append(report.Liabilities, toAccountAmount(agg, net))
			report.TotalLiabilities = report.TotalLiabilities.Add(net)
		case domain.Equity:
			report.Equity = append(report.Equity, toAccountAmount(agg, net))
			report.TotalEquity = report.TotalEquity.Add(net)
		}
	}
	return report
}

// buildCashFlow derives cash impact from non-cash account movements:
// revenue/expense activity is operating, non-cash asset movements are
// investing (an asset increase consumes cash), liability/equity movements
// are financing. The sum equals the change in cash accounts for fully
// balanced data.
func buildCashFlow(rollup map[string]*accountRollup) *domain.CashFlowReport {
	report := &domain.CashFlowReport{
		Operating: []domain.AccountAmount{},
		Investing: []domain.AccountAmount{},
		Financing: []domain.AccountAmount{},
	}
	for _, agg := range sortedRollups(rollup) {
		if agg.isCash {
			continue
		}
		net := naturalNet(agg)
		switch agg.accountType {
		case domain.Revenue:
			report.Operating = append(report.Operating, toAccountAmount(agg, net))
			report.NetCashFlow = report.NetCashFlow.Add(net)
		case domain.Expense:
			impact := net.Neg()
			report.Operating = append(report.Operating, toAccountAmount(agg, impact))
			report.NetCashFlow = report.NetCashFlow.Add(impact)
		case domain.Asset:
			impact := net.Neg()
			report.Investing = append(report.Investing, toAccountAmount(agg, impact))
			report.NetCashFlow = report.NetCashFlow.Add(impact)
		case domain.Liability, domain.Equity:
			report.Financing = append(report.Financing, toAccountAmount(agg, net))
			report.NetCashFlow = report.NetCashFlow.Add(net)
		}
	}
	return report
}

// fetchOwnedGroup loads a group and hides groups of other clients.
func (s *consolidationService) fetchOwnedGroup(ctx context.Context, clientID string, groupID string) (*domain.ConsolidationGroup, error) {
	group, err := s.groupRepo.FindGroupByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group.ClientID != clientID {
		return nil, apperrors.ErrNotFound
	}
	return group, nil
}

// checkMembers confirms every member entity exists and belongs to the client.
func (s *consolidationService) checkMembers(ctx context.Context, clientID string, entityIDs []string) error {
	entities, err := s.entityRepo.FindEntitiesByIDs(ctx, entityIDs)
	if err != nil {
		return fmt.Errorf("failed to fetch member entities: %w", err)
	}
	for _, id := range entityIDs {
		entity, found := entities[id]
		if !found || entity.ClientID != clientID {
			return fmt.Errorf("%w: entity %s not found", apperrors.ErrValidation, id)
		}
	}
	return nil
}
