package dto

import (
	"time"

	"github.com/finbooks/general_ledger/internal/core/domain"
)

// CreateGroupRequest is the inbound payload for creating a consolidation group.
type CreateGroupRequest struct {
	Name            string   `json:"name" validate:"required"`
	MemberEntityIDs []string `json:"memberEntityIDs" validate:"required,min=1,dive,required"`
}

// UpdateGroupMembersRequest replaces a group's membership set.
type UpdateGroupMembersRequest struct {
	MemberEntityIDs []string `json:"memberEntityIDs" validate:"required,min=1,dive,required"`
}

// GroupResponse is the outbound shape of a consolidation group.
type GroupResponse struct {
	GroupID         string   `json:"groupID"`
	ClientID        string   `json:"clientID"`
	Name            string   `json:"name"`
	MemberEntityIDs []string `json:"memberEntityIDs"`
}

// ToGroupResponse converts a domain group to its outbound shape.
func ToGroupResponse(g *domain.ConsolidationGroup) GroupResponse {
	return GroupResponse{
		GroupID:         g.GroupID,
		ClientID:        g.ClientID,
		Name:            g.Name,
		MemberEntityIDs: g.MemberEntityIDs,
	}
}

// ConsolidateRequest selects a consolidated report over a group.
type ConsolidateRequest struct {
	GroupID    string            `json:"groupID" validate:"required"`
	ReportType domain.ReportType `json:"reportType" validate:"required,oneof=TRIAL_BALANCE INCOME_STATEMENT BALANCE_SHEET CASH_FLOW"`
	AsOf       time.Time         `json:"asOf" validate:"required"`
}
