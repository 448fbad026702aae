package livefeed

import (
	"sync"

	"github.com/riskibarqy/hockey-predictor/internal/domain/match"
)

// Updates keeps the latest relay delta per match id.
type Updates struct {
	mu   sync.RWMutex
	byID map[int64]match.Snapshot
}

func NewUpdates() *Updates {
	return &Updates{byID: make(map[int64]match.Snapshot)}
}

// Merge records the deltas whose score or status differs from the last value
// kept for that match and reports how many were written.
func (u *Updates) Merge(items []match.Snapshot) int {
	u.mu.Lock()
	defer u.mu.Unlock()

	written := 0
	for _, item := range items {
		if prev, ok := u.byID[item.ID]; ok && prev.SameState(item) {
			continue
		}
		u.byID[item.ID] = item
		written++
	}
	return written
}

func (u *Updates) Get(matchID int64) (match.Snapshot, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()

	item, ok := u.byID[matchID]
	return item, ok
}

func (u *Updates) Len() int {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return len(u.byID)
}

// Apply overlays the latest known score and status onto current. It returns
// current itself when there is no update or nothing differs, otherwise a new
// snapshot with only HomeScore, AwayScore and Status replaced.
func (u *Updates) Apply(current *match.Snapshot) *match.Snapshot {
	if current == nil {
		return nil
	}

	update, ok := u.Get(current.ID)
	if !ok || update.SameState(*current) {
		return current
	}

	next := *current
	next.HomeScore = update.HomeScore
	next.AwayScore = update.AwayScore
	next.Status = update.Status
	return &next
}
