package livefeed

import (
	"sort"
	"sync"

	"github.com/riskibarqy/hockey-predictor/internal/domain/match"
)

// Tracker is the merged local view of every match the relay has reported.
type Tracker struct {
	updates *Updates
	watcher *FinishWatcher

	mu   sync.Mutex
	view map[int64]*match.Snapshot
}

func NewTracker() *Tracker {
	return &Tracker{
		updates: NewUpdates(),
		watcher: NewFinishWatcher(),
		view:    make(map[int64]*match.Snapshot),
	}
}

// Ingest merges relay snapshots into the view and returns the matches that
// just became finished, in input order.
func (t *Tracker) Ingest(items []match.Snapshot) []match.Snapshot {
	t.updates.Merge(items)

	t.mu.Lock()
	defer t.mu.Unlock()

	finished := make([]match.Snapshot, 0)
	for _, item := range items {
		current, ok := t.view[item.ID]
		if !ok {
			fresh := item
			current = &fresh
		} else {
			current = t.updates.Apply(current)
		}
		t.view[item.ID] = current

		if t.watcher.Observe(item.ID, current.Status) {
			finished = append(finished, *current)
		}
	}
	return finished
}

// Matches returns a copy of the view ordered by kickoff.
func (t *Tracker) Matches() []match.Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]match.Snapshot, 0, len(t.view))
	for _, item := range t.view {
		out = append(out, *item)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PlayedAt.Equal(out[j].PlayedAt) {
			return out[i].PlayedAt.Before(out[j].PlayedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
