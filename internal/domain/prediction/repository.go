package prediction

import "context"

type Repository interface {
	GetByKey(ctx context.Context, userID, groupID string, matchID int64) (Prediction, bool, error)
	Upsert(ctx context.Context, item Prediction) (Prediction, error)
	ListByGroup(ctx context.Context, groupID string, matchID *int64) ([]Prediction, error)
	ListUnscoredByGroupMatch(ctx context.Context, groupID string, matchID int64) ([]Prediction, error)
	ListGroupIDsByMatch(ctx context.Context, matchID int64) ([]string, error)
	// ApplyAwards atomically stamps points on the awarded predictions that are still
	// unscored and credits the member score with the sum of the stamped points.
	ApplyAwards(ctx context.Context, groupID, userID string, awards []Award) (AwardResult, error)
}
