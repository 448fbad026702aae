package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/hockey-predictor/internal/domain/prediction"
	qb "github.com/riskibarqy/hockey-predictor/internal/platform/querybuilder"
)

type PredictionRepository struct {
	db *sqlx.DB
}

func NewPredictionRepository(db *sqlx.DB) *PredictionRepository {
	return &PredictionRepository{db: db}
}

func (r *PredictionRepository) GetByKey(ctx context.Context, userID, groupID string, matchID int64) (prediction.Prediction, bool, error) {
	query, args, err := qb.Select("*").From("predictions").
		Where(
			qb.Eq("user_id", userID),
			qb.Eq("group_public_id", groupID),
			qb.Eq("external_match_id", matchID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return prediction.Prediction{}, false, fmt.Errorf("build get prediction query: %w", err)
	}

	var row predictionTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return prediction.Prediction{}, false, nil
		}
		return prediction.Prediction{}, false, fmt.Errorf("get prediction: %w", err)
	}
	return predictionFromRow(row), true, nil
}

// Upsert writes the guess keyed by (user, group, match). A scored row is never
// touched and yields prediction.ErrPredictionLocked.
func (r *PredictionRepository) Upsert(ctx context.Context, item prediction.Prediction) (prediction.Prediction, error) {
	insertModel := predictionInsertModel{
		PublicID:  item.ID,
		UserID:    item.UserID,
		GroupID:   item.GroupID,
		MatchID:   item.MatchID,
		HomeScore: item.PredictedHome,
		AwayScore: item.PredictedAway,
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
	query, args, err := qb.InsertModel("predictions", insertModel, `ON CONFLICT (user_id, group_public_id, external_match_id) WHERE deleted_at IS NULL
DO UPDATE SET
    home_score = EXCLUDED.home_score,
    away_score = EXCLUDED.away_score,
    updated_at = EXCLUDED.updated_at
WHERE predictions.points IS NULL
RETURNING *`)
	if err != nil {
		return prediction.Prediction{}, fmt.Errorf("build upsert prediction query: %w", err)
	}

	var row predictionTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return prediction.Prediction{}, prediction.ErrPredictionLocked
		}
		if isUniqueViolation(err) {
			return prediction.Prediction{}, fmt.Errorf("upsert prediction: duplicate public id: %w", err)
		}
		return prediction.Prediction{}, fmt.Errorf("upsert prediction: %w", err)
	}
	return predictionFromRow(row), nil
}

func (r *PredictionRepository) ListByGroup(ctx context.Context, groupID string, matchID *int64) ([]prediction.Prediction, error) {
	conditions := []qb.Condition{
		qb.Eq("group_public_id", groupID),
		qb.IsNull("deleted_at"),
	}
	if matchID != nil {
		conditions = append(conditions, qb.Eq("external_match_id", *matchID))
	}

	query, args, err := qb.Select("*").From("predictions").
		Where(conditions...).
		OrderBy("created_at DESC", "id DESC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list predictions by group query: %w", err)
	}
	return r.selectPredictions(ctx, query, args, "list predictions by group")
}

func (r *PredictionRepository) ListUnscoredByGroupMatch(ctx context.Context, groupID string, matchID int64) ([]prediction.Prediction, error) {
	query, args, err := qb.Select("*").From("predictions").
		Where(
			qb.Eq("group_public_id", groupID),
			qb.Eq("external_match_id", matchID),
			qb.IsNull("points"),
			qb.IsNull("deleted_at"),
		).
		OrderBy("id ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list unscored predictions query: %w", err)
	}
	return r.selectPredictions(ctx, query, args, "list unscored predictions")
}

// ListGroupIDsByMatch returns the groups that still hold unscored predictions for the match.
func (r *PredictionRepository) ListGroupIDsByMatch(ctx context.Context, matchID int64) ([]string, error) {
	query, args, err := qb.Select("DISTINCT group_public_id").From("predictions").
		Where(
			qb.Eq("external_match_id", matchID),
			qb.IsNull("points"),
			qb.IsNull("deleted_at"),
		).
		OrderBy("group_public_id ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list groups by match query: %w", err)
	}

	var out []string
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("list groups by match: %w", err)
	}
	return out, nil
}

// ApplyAwards claims each award with a conditional update so a prediction is
// scored at most once, then credits the member with what this call claimed.
func (r *PredictionRepository) ApplyAwards(ctx context.Context, groupID, userID string, awards []prediction.Award) (prediction.AwardResult, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return prediction.AwardResult{}, fmt.Errorf("begin tx apply awards: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var result prediction.AwardResult
	for _, award := range awards {
		query, args, err := qb.Update("predictions").
			Set("points", award.Points).
			SetExpr("scored_at", "NOW()").
			SetExpr("updated_at", "NOW()").
			Where(
				qb.Eq("public_id", award.PredictionID),
				qb.Eq("group_public_id", groupID),
				qb.Eq("user_id", userID),
				qb.IsNull("points"),
				qb.IsNull("deleted_at"),
			).
			ToSQL()
		if err != nil {
			return prediction.AwardResult{}, fmt.Errorf("build claim prediction query: %w", err)
		}

		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return prediction.AwardResult{}, fmt.Errorf("claim prediction %s: %w", award.PredictionID, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return prediction.AwardResult{}, fmt.Errorf("rows affected claim prediction: %w", err)
		}
		if affected == 0 {
			continue
		}
		result.Claimed++
		result.Points += award.Points
	}

	if result.Points > 0 {
		query, args, err := qb.Update("group_members").
			Increment("score", result.Points).
			SetExpr("updated_at", "NOW()").
			Where(
				qb.Eq("group_public_id", groupID),
				qb.Eq("user_id", userID),
				qb.IsNull("deleted_at"),
			).
			ToSQL()
		if err != nil {
			return prediction.AwardResult{}, fmt.Errorf("build credit member query: %w", err)
		}

		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return prediction.AwardResult{}, fmt.Errorf("credit member score: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return prediction.AwardResult{}, fmt.Errorf("rows affected credit member: %w", err)
		}
		result.MemberCredited = affected > 0
	}

	if err := tx.Commit(); err != nil {
		return prediction.AwardResult{}, fmt.Errorf("commit apply awards tx: %w", err)
	}
	return result, nil
}

func (r *PredictionRepository) selectPredictions(ctx context.Context, query string, args []any, op string) ([]prediction.Prediction, error) {
	var rows []predictionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]prediction.Prediction, 0, len(rows))
	for _, row := range rows {
		out = append(out, predictionFromRow(row))
	}
	return out, nil
}

func predictionFromRow(row predictionTableModel) prediction.Prediction {
	out := prediction.Prediction{
		ID:            row.PublicID,
		UserID:        row.UserID,
		GroupID:       row.GroupID,
		MatchID:       row.MatchID,
		PredictedHome: row.HomeScore,
		PredictedAway: row.AwayScore,
		ScoredAt:      row.ScoredAt,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
	if row.Points.Valid {
		points := int(row.Points.Int64)
		out.Points = &points
	}
	return out
}
