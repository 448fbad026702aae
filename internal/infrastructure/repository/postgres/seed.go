package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/hockey-predictor/internal/infrastructure/repository/memory"
	qb "github.com/riskibarqy/hockey-predictor/internal/platform/querybuilder"
)

// BootstrapSeed inserts the demo groups and members into an empty database.
func BootstrapSeed(ctx context.Context, db *sqlx.DB) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(1) FROM groups WHERE deleted_at IS NULL`); err != nil {
		return fmt.Errorf("count groups for bootstrap seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, g := range memory.SeedGroups() {
		query, args, err := qb.InsertModel("groups", groupInsertModel{
			PublicID:    g.ID,
			Name:        g.Name,
			OwnerUserID: g.OwnerUserID,
		}, "ON CONFLICT (public_id) DO NOTHING")
		if err != nil {
			return fmt.Errorf("build seed group %s query: %w", g.ID, err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("seed group %s: %w", g.ID, err)
		}
	}

	for _, m := range memory.SeedMembers() {
		query, args, err := qb.InsertModel("group_members", groupMemberInsertModel{
			GroupID:  m.GroupID,
			UserID:   m.UserID,
			Role:     string(m.Role),
			Score:    m.Score,
			JoinedAt: m.JoinedAt,
		}, "ON CONFLICT (group_public_id, user_id) WHERE deleted_at IS NULL DO NOTHING")
		if err != nil {
			return fmt.Errorf("build seed member %s/%s query: %w", m.GroupID, m.UserID, err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("seed member %s/%s: %w", m.GroupID, m.UserID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}
	return nil
}
