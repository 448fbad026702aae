package memory

import (
	"context"
	"sort"
	"time"

	"github.com/riskibarqy/hockey-predictor/internal/domain/prediction"
)

type PredictionRepository struct {
	store *Store
	now   func() time.Time
}

func NewPredictionRepository(store *Store) *PredictionRepository {
	return &PredictionRepository{store: store, now: time.Now}
}

func (r *PredictionRepository) GetByKey(_ context.Context, userID, groupID string, matchID int64) (prediction.Prediction, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	id, ok := r.store.byKey[predictionKey{userID: userID, groupID: groupID, matchID: matchID}]
	if !ok {
		return prediction.Prediction{}, false, nil
	}
	return clonePrediction(r.store.predictions[id]), true, nil
}

func (r *PredictionRepository) Upsert(_ context.Context, item prediction.Prediction) (prediction.Prediction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	key := predictionKey{userID: item.UserID, groupID: item.GroupID, matchID: item.MatchID}
	if id, ok := r.store.byKey[key]; ok {
		existing := r.store.predictions[id]
		if existing.IsScored() {
			return prediction.Prediction{}, prediction.ErrPredictionLocked
		}
		existing.PredictedHome = item.PredictedHome
		existing.PredictedAway = item.PredictedAway
		existing.UpdatedAt = item.UpdatedAt
		r.store.predictions[id] = existing
		return clonePrediction(existing), nil
	}

	item.Points = nil
	item.ScoredAt = nil
	r.store.predictions[item.ID] = item
	r.store.byKey[key] = item.ID
	return clonePrediction(item), nil
}

func (r *PredictionRepository) ListByGroup(_ context.Context, groupID string, matchID *int64) ([]prediction.Prediction, error) {
	return r.filter(func(p prediction.Prediction) bool {
		return p.GroupID == groupID && (matchID == nil || p.MatchID == *matchID)
	}), nil
}

func (r *PredictionRepository) ListUnscoredByGroupMatch(_ context.Context, groupID string, matchID int64) ([]prediction.Prediction, error) {
	return r.filter(func(p prediction.Prediction) bool {
		return p.GroupID == groupID && p.MatchID == matchID && !p.IsScored()
	}), nil
}

func (r *PredictionRepository) ListGroupIDsByMatch(_ context.Context, matchID int64) ([]string, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, p := range r.store.predictions {
		if p.MatchID != matchID || p.IsScored() {
			continue
		}
		if _, ok := seen[p.GroupID]; ok {
			continue
		}
		seen[p.GroupID] = struct{}{}
		out = append(out, p.GroupID)
	}
	sort.Strings(out)
	return out, nil
}

func (r *PredictionRepository) ApplyAwards(_ context.Context, groupID, userID string, awards []prediction.Award) (prediction.AwardResult, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := r.now().UTC()
	var result prediction.AwardResult
	for _, award := range awards {
		p, ok := r.store.predictions[award.PredictionID]
		if !ok || p.GroupID != groupID || p.UserID != userID || p.IsScored() {
			continue
		}
		points := award.Points
		scoredAt := now
		p.Points = &points
		p.ScoredAt = &scoredAt
		p.UpdatedAt = now
		r.store.predictions[award.PredictionID] = p

		result.Claimed++
		result.Points += points
	}

	if result.Points > 0 {
		key := memberKey{groupID: groupID, userID: userID}
		if m, ok := r.store.members[key]; ok {
			m.Score += result.Points
			r.store.members[key] = m
			result.MemberCredited = true
		}
	}
	return result, nil
}

func (r *PredictionRepository) filter(keep func(prediction.Prediction) bool) []prediction.Prediction {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]prediction.Prediction, 0)
	for _, p := range r.store.predictions {
		if keep(p) {
			out = append(out, clonePrediction(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func clonePrediction(p prediction.Prediction) prediction.Prediction {
	if p.Points != nil {
		points := *p.Points
		p.Points = &points
	}
	if p.ScoredAt != nil {
		scoredAt := *p.ScoredAt
		p.ScoredAt = &scoredAt
	}
	return p
}
