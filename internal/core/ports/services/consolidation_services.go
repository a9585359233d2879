package services

import (
	"context"

	"github.com/finbooks/general_ledger/internal/core/domain"
	"github.com/finbooks/general_ledger/internal/dto"
)

// ConsolidationSvcFacade exposes consolidation group management and the
// consolidation engine. Consolidation reads posted entries only and mutates
// nothing.
type ConsolidationSvcFacade interface {
	CreateGroup(ctx context.Context, clientID string, req dto.CreateGroupRequest, creatorUserID string) (*domain.ConsolidationGroup, error)
	GetGroupByID(ctx context.Context, clientID string, groupID string, requestingUserID string) (*domain.ConsolidationGroup, error)
	ListGroups(ctx context.Context, clientID string, requestingUserID string) ([]domain.ConsolidationGroup, error)
	UpdateGroupMembers(ctx context.Context, clientID string, groupID string, req dto.UpdateGroupMembersRequest, requestingUserID string) (*domain.ConsolidationGroup, error)
	DeleteGroup(ctx context.Context, clientID string, groupID string, requestingUserID string) error

	// Consolidate builds the requested combined view over the group's
	// member entities, netting intercompany balances between members
	// before rollup.
	Consolidate(ctx context.Context, clientID string, req dto.ConsolidateRequest, requestingUserID string) (*domain.ConsolidatedReport, error)
}
