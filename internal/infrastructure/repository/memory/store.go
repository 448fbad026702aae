package memory

import (
	"sync"

	"github.com/riskibarqy/hockey-predictor/internal/domain/group"
	"github.com/riskibarqy/hockey-predictor/internal/domain/prediction"
)

type memberKey struct {
	groupID string
	userID  string
}

type predictionKey struct {
	userID  string
	groupID string
	matchID int64
}

// Store is the shared state behind the in-memory repositories. Settlement
// touches predictions and member scores under the same lock.
type Store struct {
	mu sync.RWMutex

	groups  map[string]group.Group
	members map[memberKey]group.Member

	predictions map[string]prediction.Prediction
	byKey       map[predictionKey]string
}

func NewStore(groups []group.Group, members []group.Member) *Store {
	s := &Store{
		groups:      make(map[string]group.Group, len(groups)),
		members:     make(map[memberKey]group.Member, len(members)),
		predictions: make(map[string]prediction.Prediction),
		byKey:       make(map[predictionKey]string),
	}
	for _, g := range groups {
		s.groups[g.ID] = g
	}
	for _, m := range members {
		s.members[memberKey{groupID: m.GroupID, userID: m.UserID}] = m
	}
	return s
}
