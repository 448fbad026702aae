package livefeed

import (
	"sync"

	"github.com/riskibarqy/hockey-predictor/internal/domain/match"
)

// FinishWatcher detects the moment a match is first seen finished after being
// seen in another status.
type FinishWatcher struct {
	mu   sync.Mutex
	last map[int64]match.Status
}

func NewFinishWatcher() *FinishWatcher {
	return &FinishWatcher{last: make(map[int64]match.Status)}
}

// Observe records status and reports whether this observation is the
// not-finished to finished edge. The first observation of a match never is.
func (w *FinishWatcher) Observe(matchID int64, status match.Status) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	previous, seen := w.last[matchID]
	w.last[matchID] = status
	return seen && previous != match.StatusFinished && status == match.StatusFinished
}
