package memory

import (
	"context"
	"sort"

	"github.com/riskibarqy/hockey-predictor/internal/domain/group"
)

type GroupRepository struct {
	store *Store
}

func NewGroupRepository(store *Store) *GroupRepository {
	return &GroupRepository{store: store}
}

func (r *GroupRepository) GetByID(_ context.Context, groupID string) (group.Group, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	g, ok := r.store.groups[groupID]
	return g, ok, nil
}

func (r *GroupRepository) GetMember(_ context.Context, groupID, userID string) (group.Member, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	m, ok := r.store.members[memberKey{groupID: groupID, userID: userID}]
	return m, ok, nil
}

func (r *GroupRepository) ListMembers(_ context.Context, groupID string) ([]group.Member, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]group.Member, 0)
	for key, m := range r.store.members {
		if key.groupID == groupID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}
