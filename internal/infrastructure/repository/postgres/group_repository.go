package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/hockey-predictor/internal/domain/group"
	qb "github.com/riskibarqy/hockey-predictor/internal/platform/querybuilder"
)

type GroupRepository struct {
	db *sqlx.DB
}

func NewGroupRepository(db *sqlx.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

func (r *GroupRepository) GetByID(ctx context.Context, groupID string) (group.Group, bool, error) {
	query, args, err := qb.Select("*").From("groups").
		Where(
			qb.Eq("public_id", groupID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return group.Group{}, false, fmt.Errorf("build get group by id query: %w", err)
	}

	var row groupTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return group.Group{}, false, nil
		}
		return group.Group{}, false, fmt.Errorf("get group by id: %w", err)
	}
	return groupFromRow(row), true, nil
}

func (r *GroupRepository) GetMember(ctx context.Context, groupID, userID string) (group.Member, bool, error) {
	query, args, err := qb.Select("*").From("group_members").
		Where(
			qb.Eq("group_public_id", groupID),
			qb.Eq("user_id", userID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return group.Member{}, false, fmt.Errorf("build get group member query: %w", err)
	}

	var row groupMemberTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return group.Member{}, false, nil
		}
		return group.Member{}, false, fmt.Errorf("get group member: %w", err)
	}
	return memberFromRow(row), true, nil
}

func (r *GroupRepository) ListMembers(ctx context.Context, groupID string) ([]group.Member, error) {
	query, args, err := qb.Select("*").From("group_members").
		Where(
			qb.Eq("group_public_id", groupID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("score DESC", "joined_at ASC", "user_id ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list group members query: %w", err)
	}

	var rows []groupMemberTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list group members: %w", err)
	}

	out := make([]group.Member, 0, len(rows))
	for _, row := range rows {
		out = append(out, memberFromRow(row))
	}
	return out, nil
}

func groupFromRow(row groupTableModel) group.Group {
	return group.Group{
		ID:          row.PublicID,
		Name:        row.Name,
		OwnerUserID: row.OwnerUserID,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

func memberFromRow(row groupMemberTableModel) group.Member {
	return group.Member{
		GroupID:  row.GroupID,
		UserID:   row.UserID,
		Role:     group.Role(row.Role),
		Score:    row.Score,
		JoinedAt: row.JoinedAt,
	}
}
