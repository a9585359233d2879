package repositories

import (
	"context"
	"time"

	"github.com/finbooks/general_ledger/internal/core/domain"
)

// GroupReader defines read operations for consolidation group data.
type GroupReader interface {
	// FindGroupByID retrieves a group with its member entity IDs.
	FindGroupByID(ctx context.Context, groupID string) (*domain.ConsolidationGroup, error)

	// ListGroups retrieves the groups belonging to a client.
	ListGroups(ctx context.Context, clientID string) ([]domain.ConsolidationGroup, error)
}

// GroupWriter defines write operations for consolidation group data.
type GroupWriter interface {
	// SaveGroup persists a new group with its initial members.
	SaveGroup(ctx context.Context, group domain.ConsolidationGroup) error

	// UpdateGroupMembers replaces a group's membership set.
	UpdateGroupMembers(ctx context.Context, groupID string, memberEntityIDs []string, userID string, now time.Time) error

	// DeleteGroup removes a group and its membership rows. Entries and
	// entities are untouched; membership is not ownership.
	DeleteGroup(ctx context.Context, groupID string) error
}

// GroupRepositoryFacade combines all group-related repository interfaces.
type GroupRepositoryFacade interface {
	GroupReader
	GroupWriter
}

// ConsolidationReader supplies the raw material for a consolidation run.
type ConsolidationReader interface {
	// GetPostedLines returns every line of POSTED entries for the given
	// entities dated at or before asOf, joined with account information.
	// The read is snapshot-consistent: it never observes a mix of pre- and
	// post-commit state from a concurrently posting entry.
	GetPostedLines(ctx context.Context, clientID string, entityIDs []string, asOf time.Time) ([]domain.ConsolidationLine, error)
}
