package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/hockey-predictor/internal/domain/group"
	"github.com/riskibarqy/hockey-predictor/internal/domain/prediction"
	"github.com/stretchr/testify/require"
)

func newTestStore() *Store {
	return NewStore(
		[]group.Group{{ID: "grp-1"}},
		[]group.Member{{GroupID: "grp-1", UserID: "u-1"}, {GroupID: "grp-1", UserID: "u-2"}},
	)
}

func TestPredictionRepository_ApplyAwardsClaimsOnce(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore()
	repo := NewPredictionRepository(store)
	groups := NewGroupRepository(store)

	_, err := repo.Upsert(ctx, prediction.Prediction{ID: "p-1", UserID: "u-1", GroupID: "grp-1", MatchID: 3, PredictedHome: 2, PredictedAway: 1})
	require.NoError(t, err)

	awards := []prediction.Award{{PredictionID: "p-1", Points: 5}}
	var wg sync.WaitGroup
	results := make([]prediction.AwardResult, 8)
	errs := make([]error, len(results))
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = repo.ApplyAwards(ctx, "grp-1", "u-1", awards)
		}(i)
	}
	wg.Wait()

	claimed := 0
	for i, res := range results {
		require.NoError(t, errs[i])
		claimed += res.Claimed
	}
	require.Equal(t, 1, claimed)

	member, ok, err := groups.GetMember(ctx, "grp-1", "u-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 5, member.Score)

	unscored, err := repo.ListUnscoredByGroupMatch(ctx, "grp-1", 3)
	require.NoError(t, err)
	require.Empty(t, unscored)

	groupIDs, err := repo.ListGroupIDsByMatch(ctx, 3)
	require.NoError(t, err)
	require.Empty(t, groupIDs)
}

func TestPredictionRepository_ApplyAwardsWithoutMember(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewPredictionRepository(newTestStore())

	_, err := repo.Upsert(ctx, prediction.Prediction{ID: "p-9", UserID: "left", GroupID: "grp-1", MatchID: 3})
	require.NoError(t, err)

	res, err := repo.ApplyAwards(ctx, "grp-1", "left", []prediction.Award{{PredictionID: "p-9", Points: 3}})
	require.NoError(t, err)
	require.Equal(t, prediction.AwardResult{Claimed: 1, Points: 3, MemberCredited: false}, res)
}

func TestPredictionRepository_UpsertKeepsIdentityAndLocksScored(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewPredictionRepository(newTestStore())
	created := time.Date(2026, 1, 2, 3, 0, 0, 0, time.UTC)

	first, err := repo.Upsert(ctx, prediction.Prediction{ID: "p-1", UserID: "u-1", GroupID: "grp-1", MatchID: 4, PredictedHome: 1, CreatedAt: created})
	require.NoError(t, err)

	second, err := repo.Upsert(ctx, prediction.Prediction{ID: "ignored", UserID: "u-1", GroupID: "grp-1", MatchID: 4, PredictedHome: 3, CreatedAt: created.Add(time.Hour)})
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, created, second.CreatedAt)
	require.Equal(t, 3, second.PredictedHome)

	_, err = repo.ApplyAwards(ctx, "grp-1", "u-1", []prediction.Award{{PredictionID: "p-1", Points: 0}})
	require.NoError(t, err)

	_, err = repo.Upsert(ctx, prediction.Prediction{ID: "p-1", UserID: "u-1", GroupID: "grp-1", MatchID: 4, PredictedHome: 9})
	require.ErrorIs(t, err, prediction.ErrPredictionLocked)
}
