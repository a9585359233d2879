package pgsql

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finbooks/general_ledger/internal/apperrors"
	"github.com/finbooks/general_ledger/internal/core/domain"
	portsrepo "github.com/finbooks/general_ledger/internal/core/ports/repositories"
	"github.com/finbooks/general_ledger/internal/models"
	"github.com/finbooks/general_ledger/internal/utils/mapping"
)

type PgxGroupRepository struct {
	BaseRepository
}

// newPgxGroupRepository creates a new repository for consolidation group data.
func newPgxGroupRepository(pool *pgxpool.Pool) portsrepo.GroupRepositoryFacade {
	return &PgxGroupRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.GroupRepositoryFacade = (*PgxGroupRepository)(nil)

// SaveGroup persists a new group with its initial members atomically.
func (r *PgxGroupRepository) SaveGroup(ctx context.Context, group domain.ConsolidationGroup) error {
	return r.WithinTransaction(ctx, func(ctx context.Context) error {
		m := mapping.ToModelGroup(group)
		query := `
			INSERT INTO consolidation_groups (group_id, client_id, name, created_at, created_by, last_updated_at, last_updated_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7);
		`
		_, err := r.conn(ctx).Exec(ctx, query,
			m.GroupID,
			m.ClientID,
			m.Name,
			m.CreatedAt,
			m.CreatedBy,
			m.LastUpdatedAt,
			m.LastUpdatedBy,
		)
		if err != nil {
			return apperrors.NewStorageError("failed to insert group "+m.GroupID, err)
		}
		return r.insertMembers(ctx, m.GroupID, group.MemberEntityIDs)
	})
}

func (r *PgxGroupRepository) insertMembers(ctx context.Context, groupID string, memberEntityIDs []string) error {
	if len(memberEntityIDs) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	memberQuery := `
		INSERT INTO consolidation_group_members (group_id, entity_id, member_position)
		VALUES ($1, $2, $3);
	`
	for i, entityID := range memberEntityIDs {
		batch.Queue(memberQuery, groupID, entityID, i)
	}

	br := r.conn(ctx).SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewStorageError("failed to insert members for group "+groupID, err)
	}
	return nil
}

// UpdateGroupMembers replaces a group's membership set atomically.
func (r *PgxGroupRepository) UpdateGroupMembers(ctx context.Context, groupID string, memberEntityIDs []string, userID string, now time.Time) error {
	return r.WithinTransaction(ctx, func(ctx context.Context) error {
		query := `
			UPDATE consolidation_groups
			SET last_updated_at = $2,
			    last_updated_by = $3
			WHERE group_id = $1;
		`
		cmdTag, err := r.conn(ctx).Exec(ctx, query, groupID, now, userID)
		if err != nil {
			return apperrors.NewStorageError("failed to touch group "+groupID, err)
		}
		if cmdTag.RowsAffected() == 0 {
			return apperrors.NewNotFoundError("group " + groupID + " not found for update")
		}

		if _, err := r.conn(ctx).Exec(ctx, `DELETE FROM consolidation_group_members WHERE group_id = $1;`, groupID); err != nil {
			return apperrors.NewStorageError("failed to clear members for group "+groupID, err)
		}
		return r.insertMembers(ctx, groupID, memberEntityIDs)
	})
}

// DeleteGroup removes a group and its membership rows. Entries and entities
// are untouched; membership is not ownership.
func (r *PgxGroupRepository) DeleteGroup(ctx context.Context, groupID string) error {
	return r.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := r.conn(ctx).Exec(ctx, `DELETE FROM consolidation_group_members WHERE group_id = $1;`, groupID); err != nil {
			return apperrors.NewStorageError("failed to delete members for group "+groupID, err)
		}
		cmdTag, err := r.conn(ctx).Exec(ctx, `DELETE FROM consolidation_groups WHERE group_id = $1;`, groupID)
		if err != nil {
			return apperrors.NewStorageError("failed to delete group "+groupID, err)
		}
		if cmdTag.RowsAffected() == 0 {
			return apperrors.NewNotFoundError("group " + groupID + " not found for deletion")
		}
		return nil
	})
}

// FindGroupByID retrieves a group with its member entity IDs.
func (r *PgxGroupRepository) FindGroupByID(ctx context.Context, groupID string) (*domain.ConsolidationGroup, error) {
	query := `
		SELECT group_id, client_id, name, created_at, created_by, last_updated_at, last_updated_by
		FROM consolidation_groups
		WHERE group_id = $1;
	`
	var m models.ConsolidationGroup
	err := r.conn(ctx).QueryRow(ctx, query, groupID).Scan(
		&m.GroupID,
		&m.ClientID,
		&m.Name,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewStorageError("failed to find group by ID "+groupID, err)
	}

	membersByGroup, err := r.findMembersByGroupIDs(ctx, []string{groupID})
	if err != nil {
		return nil, err
	}

	group := mapping.ToDomainGroup(m, membersByGroup[groupID])
	return &group, nil
}

// ListGroups retrieves the groups belonging to a client with their members.
func (r *PgxGroupRepository) ListGroups(ctx context.Context, clientID string) ([]domain.ConsolidationGroup, error) {
	query := `
		SELECT group_id, client_id, name, created_at, created_by, last_updated_at, last_updated_by
		FROM consolidation_groups
		WHERE client_id = $1
		ORDER BY name;
	`
	rows, err := r.conn(ctx).Query(ctx, query, clientID)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to query groups for client "+clientID, err)
	}
	defer rows.Close()

	modelGroups := []models.ConsolidationGroup{}
	for rows.Next() {
		var m models.ConsolidationGroup
		err := rows.Scan(
			&m.GroupID,
			&m.ClientID,
			&m.Name,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		)
		if err != nil {
			return nil, apperrors.NewStorageError("failed to scan group row", err)
		}
		modelGroups = append(modelGroups, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("error iterating group rows", err)
	}

	groupIDs := make([]string, len(modelGroups))
	for i, m := range modelGroups {
		groupIDs[i] = m.GroupID
	}
	membersByGroup, err := r.findMembersByGroupIDs(ctx, groupIDs)
	if err != nil {
		return nil, err
	}

	groups := make([]domain.ConsolidationGroup, len(modelGroups))
	for i, m := range modelGroups {
		groups[i] = mapping.ToDomainGroup(m, membersByGroup[m.GroupID])
	}
	return groups, nil
}

// findMembersByGroupIDs loads member entity IDs keyed by group ID, each slice
// ordered by member position.
func (r *PgxGroupRepository) findMembersByGroupIDs(ctx context.Context, groupIDs []string) (map[string][]string, error) {
	membersByGroup := make(map[string][]string, len(groupIDs))
	for _, id := range groupIDs {
		membersByGroup[id] = []string{}
	}
	if len(groupIDs) == 0 {
		return membersByGroup, nil
	}

	query := `
		SELECT group_id, entity_id
		FROM consolidation_group_members
		WHERE group_id = ANY($1)
		ORDER BY group_id, member_position;
	`
	rows, err := r.conn(ctx).Query(ctx, query, groupIDs)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to query group members", err)
	}
	defer rows.Close()

	for rows.Next() {
		var groupID, entityID string
		if err := rows.Scan(&groupID, &entityID); err != nil {
			return nil, apperrors.NewStorageError("failed to scan member row", err)
		}
		membersByGroup[groupID] = append(membersByGroup[groupID], entityID)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("error iterating member rows", err)
	}
	return membersByGroup, nil
}
