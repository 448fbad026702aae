package livefeed

import (
	"testing"
	"time"

	"github.com/riskibarqy/hockey-predictor/internal/domain/match"
	"github.com/stretchr/testify/require"
)

func TestUpdates_ApplyPreservesIdentityWhenNothingChanged(t *testing.T) {
	t.Parallel()

	updates := NewUpdates()
	current := &match.Snapshot{Match: match.Match{ID: 1, HomeScore: 2, AwayScore: 1}, Status: match.StatusLive}

	require.Same(t, current, updates.Apply(current))

	updates.Merge([]match.Snapshot{{Match: match.Match{ID: 1, HomeScore: 2, AwayScore: 1}, Status: match.StatusLive}})
	require.Same(t, current, updates.Apply(current))
	require.Nil(t, updates.Apply(nil))
}

func TestUpdates_ApplyReplacesOnlyScoreAndStatus(t *testing.T) {
	t.Parallel()

	kickoff := time.Date(2026, 3, 3, 18, 0, 0, 0, time.UTC)
	current := &match.Snapshot{
		Match:  match.Match{ID: 4, HomeTeamID: 10, AwayTeamID: 20, HomeScore: 0, AwayScore: 0, PlayedAt: kickoff, TournamentID: 3},
		Status: match.StatusLive,
	}

	updates := NewUpdates()
	updates.Merge([]match.Snapshot{{
		Match:  match.Match{ID: 4, HomeTeamID: 99, HomeScore: 3, AwayScore: 1, PlayedAt: kickoff.Add(time.Hour)},
		Status: match.StatusFinished,
	}})

	merged := updates.Apply(current)
	require.NotSame(t, current, merged)
	require.Equal(t, 3, merged.HomeScore)
	require.Equal(t, 1, merged.AwayScore)
	require.Equal(t, match.StatusFinished, merged.Status)
	require.Equal(t, int64(10), merged.HomeTeamID)
	require.Equal(t, kickoff, merged.PlayedAt)
	require.Equal(t, int64(3), merged.TournamentID)
	require.Equal(t, 0, current.HomeScore, "input must not be mutated")

	again := updates.Apply(merged)
	require.Same(t, merged, again)
}

func TestUpdates_MergeKeepsLatest(t *testing.T) {
	t.Parallel()

	updates := NewUpdates()
	require.Equal(t, 1, updates.Merge([]match.Snapshot{{Match: match.Match{ID: 1, HomeScore: 1}}}))
	require.Equal(t, 2, updates.Merge([]match.Snapshot{{Match: match.Match{ID: 1, HomeScore: 2}}, {Match: match.Match{ID: 2}}}))

	got, ok := updates.Get(1)
	require.True(t, ok)
	require.Equal(t, 2, got.HomeScore)
	require.Equal(t, 2, updates.Len())
}

func TestUpdates_MergeSkipsUnchangedEntries(t *testing.T) {
	t.Parallel()

	updates := NewUpdates()
	first := match.Snapshot{Match: match.Match{ID: 4, HomeScore: 1, TournamentID: 9}, Status: match.StatusLive}
	require.Equal(t, 1, updates.Merge([]match.Snapshot{first}))

	sameState := first
	sameState.TournamentID = 10
	require.Zero(t, updates.Merge([]match.Snapshot{sameState}))

	got, ok := updates.Get(4)
	require.True(t, ok)
	require.Equal(t, int64(9), got.TournamentID)

	finished := first
	finished.Status = match.StatusFinished
	require.Equal(t, 1, updates.Merge([]match.Snapshot{finished}))
	got, _ = updates.Get(4)
	require.Equal(t, match.StatusFinished, got.Status)
}

func TestFinishWatcher_FiresOncePerTransition(t *testing.T) {
	t.Parallel()

	w := NewFinishWatcher()
	require.False(t, w.Observe(1, match.StatusFinished), "first sighting is not an edge")
	require.False(t, w.Observe(1, match.StatusFinished))

	require.False(t, w.Observe(2, match.StatusScheduled))
	require.False(t, w.Observe(2, match.StatusLive))
	require.True(t, w.Observe(2, match.StatusFinished))
	require.False(t, w.Observe(2, match.StatusFinished))
}

func TestTracker_IngestReportsFinishedEdges(t *testing.T) {
	t.Parallel()

	tracker := NewTracker()
	live := match.Snapshot{Match: match.Match{ID: 8, HomeScore: 1}, Status: match.StatusLive}
	done := match.Snapshot{Match: match.Match{ID: 9, HomeScore: 2, AwayScore: 2}, Status: match.StatusFinished}

	require.Empty(t, tracker.Ingest([]match.Snapshot{live, done}))

	final := live
	final.HomeScore = 4
	final.Status = match.StatusFinished
	finished := tracker.Ingest([]match.Snapshot{final})
	require.Len(t, finished, 1)
	require.Equal(t, int64(8), finished[0].ID)
	require.Equal(t, 4, finished[0].HomeScore)

	require.Empty(t, tracker.Ingest([]match.Snapshot{final}))
	require.Len(t, tracker.Matches(), 2)
}
