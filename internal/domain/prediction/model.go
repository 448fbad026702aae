package prediction

import (
	"errors"
	"time"
)

var (
	ErrNegativeScore    = errors.New("predicted scores must be non-negative")
	ErrPredictionLocked = errors.New("prediction is already scored")
)

// Prediction is one user's guess for one match inside one group.
// (UserID, GroupID, MatchID) is unique.
type Prediction struct {
	ID            string
	UserID        string
	GroupID       string
	MatchID       int64
	PredictedHome int
	PredictedAway int
	Points        *int
	ScoredAt      *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (p Prediction) IsScored() bool {
	return p.Points != nil
}

func (p Prediction) Validate() error {
	if p.PredictedHome < 0 || p.PredictedAway < 0 {
		return ErrNegativeScore
	}
	return nil
}

// Award is a point value computed for a still unscored prediction.
type Award struct {
	PredictionID string
	Points       int
}

// AwardResult reports what a single per-user settlement write actually changed.
type AwardResult struct {
	Claimed        int
	Points         int
	MemberCredited bool
}
