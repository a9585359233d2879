package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/finbooks/general_ledger/internal/apperrors"
	"github.com/finbooks/general_ledger/internal/core/domain"
	portsrepo "github.com/finbooks/general_ledger/internal/core/ports/repositories"
)

// GroupRepository is the in-memory consolidation group adapter.
type GroupRepository struct {
	store *Store
}

func newGroupRepository(store *Store) portsrepo.GroupRepositoryFacade {
	return &GroupRepository{store: store}
}

var _ portsrepo.GroupRepositoryFacade = (*GroupRepository)(nil)

// SaveGroup persists a new group with its initial members.
func (r *GroupRepository) SaveGroup(ctx context.Context, group domain.ConsolidationGroup) error {
	defer r.store.lock(ctx)()
	if _, exists := r.store.groups[group.GroupID]; exists {
		return fmt.Errorf("%w: group %s already exists", apperrors.ErrConflict, group.GroupID)
	}
	r.store.groups[group.GroupID] = copyGroup(group)
	return nil
}

// UpdateGroupMembers replaces a group's membership set.
func (r *GroupRepository) UpdateGroupMembers(ctx context.Context, groupID string, memberEntityIDs []string, userID string, now time.Time) error {
	defer r.store.lock(ctx)()
	group, exists := r.store.groups[groupID]
	if !exists {
		return apperrors.NewNotFoundError("group " + groupID + " not found for update")
	}
	members := make([]string, len(memberEntityIDs))
	copy(members, memberEntityIDs)
	group.MemberEntityIDs = members
	group.LastUpdatedAt = now
	group.LastUpdatedBy = userID
	r.store.groups[groupID] = group
	return nil
}

// DeleteGroup removes a group. Entries and entities are untouched.
func (r *GroupRepository) DeleteGroup(ctx context.Context, groupID string) error {
	defer r.store.lock(ctx)()
	if _, exists := r.store.groups[groupID]; !exists {
		return apperrors.NewNotFoundError("group " + groupID + " not found for deletion")
	}
	delete(r.store.groups, groupID)
	return nil
}

// FindGroupByID retrieves a group with its member entity IDs.
func (r *GroupRepository) FindGroupByID(ctx context.Context, groupID string) (*domain.ConsolidationGroup, error) {
	defer r.store.rlock(ctx)()
	group, exists := r.store.groups[groupID]
	if !exists {
		return nil, apperrors.ErrNotFound
	}
	result := copyGroup(group)
	return &result, nil
}

// ListGroups retrieves the groups belonging to a client ordered by name.
func (r *GroupRepository) ListGroups(ctx context.Context, clientID string) ([]domain.ConsolidationGroup, error) {
	defer r.store.rlock(ctx)()
	groups := []domain.ConsolidationGroup{}
	for _, group := range r.store.groups {
		if group.ClientID == clientID {
			groups = append(groups, copyGroup(group))
		}
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Name < groups[j].Name
	})
	return groups, nil
}

// ConsolidationRepository is the in-memory consolidation read adapter.
type ConsolidationRepository struct {
	store *Store
}

func newConsolidationRepository(store *Store) portsrepo.ConsolidationReader {
	return &ConsolidationRepository{store: store}
}

var _ portsrepo.ConsolidationReader = (*ConsolidationRepository)(nil)

// GetPostedLines returns every line of POSTED entries for the given entities
// dated at or before asOf, joined with account information. The whole read
// happens under one lock acquisition, so it is snapshot-consistent.
func (r *ConsolidationRepository) GetPostedLines(ctx context.Context, clientID string, entityIDs []string, asOf time.Time) ([]domain.ConsolidationLine, error) {
	defer r.store.rlock(ctx)()

	members := make(map[string]struct{}, len(entityIDs))
	for _, id := range entityIDs {
		members[id] = struct{}{}
	}

	lines := []domain.ConsolidationLine{}
	for _, e := range r.store.entries {
		if e.ClientID != clientID || e.Status != domain.Posted || e.EntryDate.After(asOf) {
			continue
		}
		if _, ok := members[e.EntityID]; !ok {
			continue
		}
		for _, line := range e.Lines {
			account, exists := r.store.accounts[line.AccountID]
			if !exists {
				return nil, apperrors.NewNotFoundError("account " + line.AccountID + " referenced by posted line")
			}
			lines = append(lines, domain.ConsolidationLine{
				EntityID:             e.EntityID,
				AccountID:            line.AccountID,
				AccountCode:          account.Code,
				AccountName:          account.Name,
				AccountType:          account.AccountType,
				IsCash:               account.IsCash,
				Side:                 line.Side,
				Amount:               line.Amount,
				IntercompanyEntityID: line.IntercompanyEntityID,
			})
		}
	}

	sort.SliceStable(lines, func(i, j int) bool {
		if lines[i].AccountCode != lines[j].AccountCode {
			return lines[i].AccountCode < lines[j].AccountCode
		}
		return lines[i].EntityID < lines[j].EntityID
	})
	return lines, nil
}
